package orchestrator

import (
	"context"
	"sync"

	"bytemomo/scylla/internal/domain"
)

// handle tracks one in-flight batch. Pause and cancel are cooperative:
// the batch loop consults the handle between targets, never while a
// scanner process is running, so an in-flight probe always finishes.
type handle struct {
	id     string
	cancel context.CancelFunc

	mu       sync.Mutex
	paused   bool
	canceled bool
	unpaused chan struct{}
	results  []domain.ScanResult
}

func newHandle(id string, cancel context.CancelFunc) *handle {
	return &handle{id: id, cancel: cancel}
}

// pause marks the batch paused. Pausing an already-paused batch is a
// no-op.
func (h *handle) pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused || h.canceled {
		return
	}
	h.paused = true
	h.unpaused = make(chan struct{})
}

// resume releases a paused batch. Resuming a running batch is a no-op.
func (h *handle) resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.paused {
		return
	}
	h.paused = false
	close(h.unpaused)
	h.unpaused = nil
}

// abort marks the batch canceled, releases any paused waiter, and ends
// the control context so between-target waits return. It never touches
// the context a probe process runs on.
func (h *handle) abort() {
	h.mu.Lock()
	if h.paused {
		h.paused = false
		close(h.unpaused)
		h.unpaused = nil
	}
	h.canceled = true
	h.mu.Unlock()
	h.cancel()
}

func (h *handle) appendResult(res domain.ScanResult) {
	h.mu.Lock()
	h.results = append(h.results, res)
	h.mu.Unlock()
}

// snapshot copies the finalized results so far.
func (h *handle) snapshot() []domain.ScanResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.ScanResult, len(h.results))
	copy(out, h.results)
	return out
}

func (h *handle) isCanceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}

// awaitResume blocks while the batch is paused. It returns ctx.Err()
// when the context ends first, so a paused batch can still be torn
// down.
func (h *handle) awaitResume(ctx context.Context) error {
	h.mu.Lock()
	ch := h.unpaused
	h.mu.Unlock()

	if ch == nil {
		return ctx.Err()
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
