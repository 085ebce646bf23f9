package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MLflowTracker talks to an MLflow tracking server over its REST API.
type MLflowTracker struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	experiments map[string]string
}

// NewMLflowTracker returns a tracker for the server at baseURL. A nil client
// gets one with a 10s timeout.
func NewMLflowTracker(baseURL string, client *http.Client) *MLflowTracker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MLflowTracker{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  client,
		experiments: map[string]string{},
	}
}

// APIError is a non-2xx answer from the tracking server.
type APIError struct {
	Status    int    `json:"-"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("mlflow: status %d", e.Status)
	}
	return fmt.Sprintf("mlflow: status %d: %s: %s", e.Status, e.ErrorCode, e.Message)
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type metric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int64   `json:"step"`
}

func (t *MLflowTracker) LogRun(ctx context.Context, run Run) (string, error) {
	experimentID, err := t.experimentID(ctx, run.Experiment)
	if err != nil {
		return "", err
	}

	started := startTime(run)
	var created struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}
	err = t.post(ctx, "/api/2.0/mlflow/runs/create", map[string]any{
		"experiment_id": experimentID,
		"run_name":      run.Name,
		"start_time":    started.UnixMilli(),
		"tags":          []keyValue{{Key: "mlflow.runName", Value: run.Name}},
	}, &created)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	runID := created.Run.Info.RunID

	if err := t.logBatch(ctx, runID, run, started); err != nil {
		t.finish(ctx, runID, "FAILED")
		return runID, err
	}
	for _, name := range sortedKeys(run.Artifacts) {
		if err := t.uploadArtifact(ctx, experimentID, runID, name, run.Artifacts[name]); err != nil {
			t.finish(ctx, runID, "FAILED")
			return runID, fmt.Errorf("upload artifact %s: %w", name, err)
		}
	}
	if err := t.finish(ctx, runID, "FINISHED"); err != nil {
		return runID, fmt.Errorf("finish run: %w", err)
	}
	return runID, nil
}

// experimentID resolves an experiment by name, creating it on first use.
func (t *MLflowTracker) experimentID(ctx context.Context, name string) (string, error) {
	t.mu.Lock()
	id, ok := t.experiments[name]
	t.mu.Unlock()
	if ok {
		return id, nil
	}

	var found struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	err := t.get(ctx, "/api/2.0/mlflow/experiments/get-by-name?experiment_name="+url.QueryEscape(name), &found)
	var apiErr *APIError
	switch {
	case err == nil:
		id = found.Experiment.ExperimentID
	case errors.As(err, &apiErr) && apiErr.ErrorCode == "RESOURCE_DOES_NOT_EXIST":
		var created struct {
			ExperimentID string `json:"experiment_id"`
		}
		if err := t.post(ctx, "/api/2.0/mlflow/experiments/create", map[string]any{"name": name}, &created); err != nil {
			return "", fmt.Errorf("create experiment %s: %w", name, err)
		}
		id = created.ExperimentID
	default:
		return "", fmt.Errorf("get experiment %s: %w", name, err)
	}

	t.mu.Lock()
	t.experiments[name] = id
	t.mu.Unlock()
	return id, nil
}

func (t *MLflowTracker) logBatch(ctx context.Context, runID string, run Run, at time.Time) error {
	params := make([]keyValue, 0, len(run.Params))
	for _, k := range sortedKeys(run.Params) {
		params = append(params, keyValue{Key: k, Value: run.Params[k]})
	}
	tags := make([]keyValue, 0, len(run.Tags))
	for _, k := range sortedKeys(run.Tags) {
		tags = append(tags, keyValue{Key: k, Value: run.Tags[k]})
	}
	metrics := make([]metric, 0, len(run.Metrics))
	for _, k := range sortedKeys(run.Metrics) {
		metrics = append(metrics, metric{Key: k, Value: run.Metrics[k], Timestamp: at.UnixMilli()})
	}
	if len(params)+len(tags)+len(metrics) == 0 {
		return nil
	}
	err := t.post(ctx, "/api/2.0/mlflow/runs/log-batch", map[string]any{
		"run_id":  runID,
		"params":  params,
		"tags":    tags,
		"metrics": metrics,
	}, nil)
	if err != nil {
		return fmt.Errorf("log batch: %w", err)
	}
	return nil
}

func (t *MLflowTracker) uploadArtifact(ctx context.Context, experimentID, runID, name string, data []byte) error {
	path := fmt.Sprintf("/api/2.0/mlflow-artifacts/artifacts/%s/%s/artifacts/%s",
		url.PathEscape(experimentID), url.PathEscape(runID), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	return t.do(req, nil)
}

func (t *MLflowTracker) finish(ctx context.Context, runID, status string) error {
	return t.post(ctx, "/api/2.0/mlflow/runs/update", map[string]any{
		"run_id":   runID,
		"status":   status,
		"end_time": time.Now().UnixMilli(),
	}, nil)
}

func (t *MLflowTracker) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

func (t *MLflowTracker) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *MLflowTracker) do(req *http.Request, out any) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
