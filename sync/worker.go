package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"notesync/api"
	"notesync/session"
)

// Syncer runs one sync cycle.
type Syncer interface {
	Sync(ctx context.Context) (*Result, error)
}

// WorkerConfig configures the background worker.
type WorkerConfig struct {
	BaseInterval time.Duration
	MaxInterval  time.Duration
	// Ready gates each cycle, e.g. on the user being signed in. Nil means always.
	Ready  func() bool
	Logger *slog.Logger
}

// Worker runs sync cycles in the background with an adaptive interval. It is
// the only component that schedules sync; a failed cycle is not retried
// until the next tick.
type Worker struct {
	syncer          Syncer
	ready           func() bool
	logger          *slog.Logger
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

func NewWorker(syncer Syncer, cfg WorkerConfig) *Worker {
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = 2 * time.Minute
	}
	if cfg.MaxInterval < cfg.BaseInterval {
		cfg.MaxInterval = cfg.BaseInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{
		syncer:          syncer,
		ready:           cfg.Ready,
		logger:          cfg.Logger,
		baseInterval:    cfg.BaseInterval,
		maxInterval:     cfg.MaxInterval,
		currentInterval: cfg.BaseInterval,
		trigger:         make(chan struct{}, 1),
	}
}

// Start begins the background loop. Calling Start on a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})
	w.currentInterval = w.baseInterval

	w.logger.Info("[Sync Worker] Starting background sync worker", "interval", w.currentInterval)
	go w.run(ctx, w.done)
}

// Stop cancels the loop and waits for an in-flight cycle to return.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.logger.Info("[Sync Worker] Stopping background sync worker")
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
}

// Trigger requests a cycle as soon as the current one (if any) finishes.
// Repeated triggers before that collapse into one.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.cycle(ctx, ticker)

	for {
		select {
		case <-ticker.C:
			w.cycle(ctx, ticker)
		case <-w.trigger:
			w.cycle(ctx, ticker)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) cycle(ctx context.Context, ticker *time.Ticker) {
	if w.ready != nil && !w.ready() {
		w.logger.Debug("[Sync Worker] Not signed in, skipping cycle")
		return
	}

	result, err := w.syncer.Sync(ctx)
	failed := err != nil
	hadWork := false

	switch {
	case err == nil:
		hadWork = result.HadChanges()
	case ctx.Err() != nil:
		return
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, session.ErrNoToken):
		w.logger.Warn("[Sync Worker] Authentication rejected, please sign in again", "error", err)
	default:
		w.logger.Error("[Sync Worker] Sync failed", "error", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	next := nextInterval(w.currentInterval, w.baseInterval, w.maxInterval, hadWork, failed)
	if next != w.currentInterval {
		w.currentInterval = next
		ticker.Reset(next)
		w.logger.Debug("[Sync Worker] Adjusted interval", "interval", next, "had_work", hadWork, "failed", failed)
	}
}

// Interval returns the delay currently used between cycles.
func (w *Worker) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentInterval
}
