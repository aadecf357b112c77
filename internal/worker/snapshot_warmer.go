package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"prodi/pkg/logx"
)

type snapshotRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// SnapshotWarmer reloads the search snapshot on a fixed interval so that
// searches rarely hit a cold cache.
type SnapshotWarmer struct {
	refresher snapshotRefresher
	interval  time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewSnapshotWarmer(refresher snapshotRefresher, interval time.Duration) *SnapshotWarmer {
	return &SnapshotWarmer{
		refresher: refresher,
		interval:  interval,
	}
}

func (w *SnapshotWarmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("snapshot warmer is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		_ = w.Run(runCtx)
	}()

	return nil
}

func (w *SnapshotWarmer) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *SnapshotWarmer) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (w *SnapshotWarmer) Run(ctx context.Context) error {
	logger(ctx).Info("snapshot warmer started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.refresh(ctx)

		select {
		case <-ctx.Done():
			logger(ctx).Info("snapshot warmer stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *SnapshotWarmer) refresh(ctx context.Context) {
	count, err := w.refresher.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger(ctx).Warn("refresher.Refresh", logx.Error(err))
		}

		return
	}

	logger(ctx).Debug("search snapshot refreshed", slog.Int("profiles", count))
}
