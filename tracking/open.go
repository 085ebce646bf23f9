package tracking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"student-grade-api/config"
)

// Open builds the configured tracker along with any connection it needs. The
// returned close function releases those connections.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Tracker, func(), error) {
	if cfg.Tracker.Backend != "postgres" {
		tr, err := New(cfg.Tracker, nil, logger)
		return tr, func() {}, err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("tracker db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("tracker db ping: %w", err)
	}
	tr := NewPostgresTracker(pool)
	if err := tr.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("tracker connected", zap.String("backend", "postgres"))
	return tr, pool.Close, nil
}
