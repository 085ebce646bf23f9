package tracking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of pgxpool.Pool the postgres tracker needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tracking_runs (
	run_id      UUID PRIMARY KEY,
	experiment  TEXT NOT NULL,
	name        TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	params      JSONB NOT NULL,
	metrics     JSONB NOT NULL,
	tags        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS tracking_runs_experiment_idx ON tracking_runs (experiment, started_at DESC);
CREATE TABLE IF NOT EXISTS tracking_artifacts (
	run_id  UUID NOT NULL REFERENCES tracking_runs (run_id) ON DELETE CASCADE,
	name    TEXT NOT NULL,
	data    BYTEA NOT NULL,
	PRIMARY KEY (run_id, name)
);`

// PostgresTracker stores runs in the service database.
type PostgresTracker struct {
	pool Pool
}

func NewPostgresTracker(pool Pool) *PostgresTracker {
	return &PostgresTracker{pool: pool}
}

// EnsureSchema creates the tracking tables if they do not exist.
func (t *PostgresTracker) EnsureSchema(ctx context.Context) error {
	if _, err := t.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tracking schema: %w", err)
	}
	return nil
}

func (t *PostgresTracker) LogRun(ctx context.Context, run Run) (string, error) {
	params, err := jsonOrEmpty(run.Params)
	if err != nil {
		return "", err
	}
	metrics, err := jsonOrEmpty(run.Metrics)
	if err != nil {
		return "", err
	}
	tags, err := jsonOrEmpty(run.Tags)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = t.pool.Exec(ctx, `
		INSERT INTO tracking_runs (run_id, experiment, name, started_at, params, metrics, tags)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb)
	`, id, run.Experiment, run.Name, startTime(run), params, metrics, tags)
	if err != nil {
		return "", fmt.Errorf("insert tracking run: %w", err)
	}

	for _, name := range sortedKeys(run.Artifacts) {
		_, err := t.pool.Exec(ctx, `
			INSERT INTO tracking_artifacts (run_id, name, data) VALUES ($1, $2, $3)
		`, id, name, run.Artifacts[name])
		if err != nil {
			return id, fmt.Errorf("insert artifact %s: %w", name, err)
		}
	}
	return id, nil
}

func jsonOrEmpty[V any](m map[string]V) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal run fields: %w", err)
	}
	return string(b), nil
}
