package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"notesync/database"
	"notesync/models"
)

// NoteStore is the local side of a sync cycle.
type NoteStore interface {
	GetLastSyncTimestamp(ctx context.Context) (int64, error)
	GetDirtyNotes(ctx context.Context) ([]database.NoteWithMeta, error)
	ApplySync(ctx context.Context, pushed []database.NoteWithMeta, resp *models.SyncResponse) (*database.ApplyStats, error)
}

// Remote is the server side of a sync cycle.
type Remote interface {
	Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error)
}

// Result describes one completed sync cycle.
type Result struct {
	Baseline      int64
	SyncTimestamp int64
	Pushed        int
	database.ApplyStats
}

// HadChanges reports whether the cycle moved any data in either direction.
func (r *Result) HadChanges() bool {
	return r.Pushed > 0 || r.Upserted > 0 || r.Deleted > 0
}

// Engine runs note sync cycles. Cycles never overlap.
type Engine struct {
	store  NoteStore
	remote Remote
	logger *slog.Logger
	mu     sync.Mutex
}

func NewEngine(store NoteStore, remote Remote, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, remote: remote, logger: logger}
}

// Sync pushes dirty notes (soft-deleted ones included) and merges the
// server's changes since the stored baseline. If the request fails or the
// server reports success=false the local store is not touched.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	baseline, err := e.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync baseline: %w", err)
	}

	dirty, err := e.store.GetDirtyNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect dirty notes: %w", err)
	}

	req := models.SyncRequest{
		LastSyncTimestamp: baseline,
		Notes:             make([]models.Note, 0, len(dirty)),
	}
	for _, n := range dirty {
		req.Notes = append(req.Notes, n.Note)
	}

	resp, err := e.remote.Sync(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}

	stats, err := e.store.ApplySync(ctx, dirty, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to apply sync response: %w", err)
	}

	result := &Result{
		Baseline:      baseline,
		SyncTimestamp: resp.SyncTimestamp,
		Pushed:        len(dirty),
		ApplyStats:    *stats,
	}
	e.logger.Info("sync completed",
		"baseline", baseline,
		"sync_timestamp", resp.SyncTimestamp,
		"pushed", result.Pushed,
		"acknowledged", stats.Acknowledged,
		"upserted", stats.Upserted,
		"skipped", stats.Skipped,
		"deleted", stats.Deleted,
	)
	return result, nil
}
