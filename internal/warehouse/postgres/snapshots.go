package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
)

// Snapshot is one persisted metrics report with its load metadata.
type Snapshot struct {
	ID        int64           `db:"id"`
	Source    string          `db:"source"`
	Report    json.RawMessage `db:"report"`
	CreatedAt time.Time       `db:"created_at"`
}

// SnapshotRepository persists calculated reports so dashboards can read
// the latest state without re-running the pipeline.
type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(ctx context.Context, source string, report *metrics.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO metrics_snapshots (source, report) VALUES ($1, $2)`,
		source, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save report snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent report for a source, or (nil, nil) when
// no snapshot exists yet.
func (r *SnapshotRepository) Latest(ctx context.Context, source string) (*metrics.Report, error) {
	var snap Snapshot
	err := r.db.GetContext(ctx, &snap,
		`SELECT id, source, report, created_at
		 FROM metrics_snapshots
		 WHERE source = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, source)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report snapshot: %w", err)
	}

	var report metrics.Report
	if err := json.Unmarshal(snap.Report, &report); err != nil {
		return nil, fmt.Errorf("decode report snapshot: %w", err)
	}
	return &report, nil
}

// History lists snapshot metadata for a source, newest first. The report
// payloads are left out; callers read a specific report through Latest.
func (r *SnapshotRepository) History(ctx context.Context, source string, limit int) ([]domain.SnapshotInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	snaps := []domain.SnapshotInfo{}
	err := r.db.SelectContext(ctx, &snaps,
		`SELECT id, source, created_at
		 FROM metrics_snapshots
		 WHERE source = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list report snapshots: %w", err)
	}
	return snaps, nil
}
