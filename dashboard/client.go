package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"student-grade-api/models"
)

// APIError is a non-200 answer from the prediction API. Body is kept verbatim
// so the page can show exactly what the API said.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Body)
}

// Client calls the prediction API.
type Client struct {
	apiRoot    string
	httpClient *http.Client
}

func NewClient(apiRoot string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{apiRoot: strings.TrimRight(apiRoot, "/"), httpClient: httpClient}
}

type predictResponse struct {
	PredictionG3 float64 `json:"prediction_G3"`
}

func (c *Client) Predict(ctx context.Context, student models.Student) (float64, error) {
	payload, err := json.Marshal(student)
	if err != nil {
		return 0, err
	}
	body, err := c.post(ctx, "/predict", payload)
	if err != nil {
		return 0, err
	}
	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	return resp.PredictionG3, nil
}

// Retrain triggers a retrain job and returns the acknowledgement as received.
func (c *Client) Retrain(ctx context.Context) (json.RawMessage, error) {
	body, err := c.post(ctx, "/retrain", nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("retrain: response is not json")
	}
	return body, nil
}

// Jobs returns the most recent retrain jobs.
func (c *Client) Jobs(ctx context.Context, limit int) ([]models.RetrainJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/retrain/jobs?limit=%d", c.apiRoot, limit), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var page struct {
		Data []models.RetrainJob `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return page.Data, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiRoot+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
