package models

import "time"

// PredictionLog is the write-once record of one scored request. It is sent to
// the experiment tracker and published as an event; the service never reads
// it back.
type PredictionLog struct {
	TS           time.Time         `json:"ts"`
	Params       map[string]string `json:"params"`
	PredictionG3 float64           `json:"prediction_G3"`
	ModelVersion string            `json:"model_version"`
}
