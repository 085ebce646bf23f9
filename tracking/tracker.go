// Package tracking records training runs and scored predictions in an
// experiment tracker. Trackers are write-only from the service's point of view.
package tracking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"student-grade-api/config"
)

// Run is one tracked unit of work: a training run or a prediction request.
type Run struct {
	Experiment string
	Name       string
	StartedAt  time.Time
	Params     map[string]string
	Metrics    map[string]float64
	Tags       map[string]string
	Artifacts  map[string][]byte
}

type Tracker interface {
	LogRun(ctx context.Context, run Run) (runID string, err error)
}

// New builds the tracker selected by cfg.Backend. pool is only used by the
// postgres backend and may be nil otherwise.
func New(cfg config.TrackerConfig, pool Pool, logger *zap.Logger) (Tracker, error) {
	switch cfg.Backend {
	case "mlflow":
		return NewMLflowTracker(cfg.MLflowURI, nil), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres tracker requires a database pool")
		}
		return NewPostgresTracker(pool), nil
	case "log":
		return NewLogTracker(logger), nil
	default:
		return nil, fmt.Errorf("unknown tracker backend %q", cfg.Backend)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func startTime(run Run) time.Time {
	if run.StartedAt.IsZero() {
		return time.Now().UTC()
	}
	return run.StartedAt
}
