package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"storefront/config"
)

// Fallbacks when database.poolMonitor is unset.
const (
	defaultPoolMonitorInterval = 5 * time.Second
	defaultPoolWaitWarn        = 50 * time.Millisecond
)

// poolMonitor samples sql.DBStats and reports callers that had to wait for a
// connection since the previous sample.
type poolMonitor struct {
	db       *sql.DB
	logger   *slog.Logger
	interval time.Duration
	warnWait time.Duration
}

func newPoolMonitor(db *sql.DB, logger *slog.Logger, cfg config.DatabaseConfig) *poolMonitor {
	m := &poolMonitor{
		db:       db,
		logger:   logger,
		interval: cfg.PoolMonitor.Interval,
		warnWait: cfg.PoolMonitor.WaitWarnThreshold,
	}
	if m.interval <= 0 {
		m.interval = defaultPoolMonitorInterval
	}
	if m.warnWait <= 0 {
		m.warnWait = defaultPoolWaitWarn
	}

	return m
}

// run blocks until ctx is cancelled.
func (m *poolMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	prev := m.db.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := m.db.Stats()
			if level, attrs, ok := m.compare(prev, cur); ok {
				m.logger.LogAttrs(ctx, level, "Postgres pool wait", attrs...)
			}
			prev = cur
		}
	}
}

// compare reports whether any caller waited between two samples, and at
// which level: warn once the added wait reaches the threshold.
func (m *poolMonitor) compare(prev, cur sql.DBStats) (slog.Level, []slog.Attr, bool) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return 0, nil, false
	}

	waited := cur.WaitDuration - prev.WaitDuration
	attrs := []slog.Attr{
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
	}

	level := slog.LevelDebug
	if waited >= m.warnWait {
		level = slog.LevelWarn
	}

	return level, attrs, true
}
