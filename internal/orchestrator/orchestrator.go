// Package orchestrator drives scan batches end to end: validation,
// rate-limited tool invocation, output parsing, and lifecycle control
// of in-flight batches.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"bytemomo/scylla/internal/domain"
	"bytemomo/scylla/internal/parser"
	"bytemomo/scylla/internal/ratelimit"
	"bytemomo/scylla/internal/scanner"
)

// ProgressFunc receives batch progress: a percentage in [0,100] and a
// human-readable message.
type ProgressFunc func(percent int, message string)

// BatchJob is a submitted batch. Results delivers the finalized results
// exactly once, then the channel is closed.
type BatchJob struct {
	ID      string
	Results <-chan []domain.ScanResult
}

// Orchestrator owns the scan lifecycle. One handle exists per in-flight
// batch; it disappears from the registry the moment the batch ends.
type Orchestrator struct {
	runner    CommandRunner
	limiter   *ratelimit.Limiter
	binary    string
	intensity domain.ScanIntensity

	mu      sync.Mutex
	active  map[string]*handle
	history []domain.ScanResult
}

// New builds an orchestrator from configuration. A nil runner selects
// the operating-system runner.
func New(cfg domain.Config, runner CommandRunner) *Orchestrator {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Orchestrator{
		runner:    runner,
		limiter:   ratelimit.New(cfg.Scanner.RateLimit),
		binary:    cfg.Scanner.Binary,
		intensity: cfg.Scanner.DefaultIntensity,
		active:    make(map[string]*handle),
	}
}

// RunSingle scans one target synchronously. The result is always
// returned, error status included; the error return covers only
// admission failures such as a canceled context.
func (o *Orchestrator) RunSingle(ctx context.Context, target domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity) (domain.ScanResult, error) {
	if err := o.limiter.Admit(ctx); err != nil {
		return domain.ScanResult{}, fmt.Errorf("rate limiter: %w", err)
	}
	res := o.scanOne(ctx, target, mode, intensity)
	o.record(res)
	return res, nil
}

// SubmitBatch starts scanning the targets in order on a background
// goroutine and returns a job whose Results channel delivers the
// finalized results. Pause, Resume, and Cancel act on the returned ID
// while the batch is in flight.
func (o *Orchestrator) SubmitBatch(ctx context.Context, targets []domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity, progress ProgressFunc) (*BatchJob, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("batch has no targets")
	}
	if intensity == "" {
		intensity = o.intensity
	}

	// The control context gates only the waits between targets (pause,
	// rate-limiter admission). The probe processes run on the caller's
	// ctx, so Cancel never kills an in-flight probe.
	ctrlCtx, cancel := context.WithCancel(ctx)
	h := newHandle(newID(), cancel)

	o.mu.Lock()
	o.active[h.id] = h
	o.mu.Unlock()

	out := make(chan []domain.ScanResult, 1)
	go func() {
		defer cancel()
		results := o.runBatch(ctx, ctrlCtx, h, targets, mode, intensity, progress)

		o.mu.Lock()
		delete(o.active, h.id)
		o.mu.Unlock()

		out <- results
		close(out)
	}()

	return &BatchJob{ID: h.id, Results: out}, nil
}

// RunBatch scans the targets in order and blocks until the batch ends.
func (o *Orchestrator) RunBatch(ctx context.Context, targets []domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity, progress ProgressFunc) ([]domain.ScanResult, error) {
	job, err := o.SubmitBatch(ctx, targets, mode, intensity, progress)
	if err != nil {
		return nil, err
	}
	return <-job.Results, nil
}

// Pause suspends the identified batch at the next safe point. It
// reports whether the batch was found.
func (o *Orchestrator) Pause(id string) bool {
	if h, ok := o.lookup(id); ok {
		h.pause()
		log.WithField("batch", id).Info("batch paused")
		return true
	}
	return false
}

// Resume releases a paused batch. It reports whether the batch was
// found.
func (o *Orchestrator) Resume(id string) bool {
	if h, ok := o.lookup(id); ok {
		h.resume()
		log.WithField("batch", id).Info("batch resumed")
		return true
	}
	return false
}

// Cancel stops the identified batch. A probe already in flight runs to
// completion and its result is kept; only targets not yet started are
// skipped. It reports whether the batch was found.
func (o *Orchestrator) Cancel(id string) bool {
	if h, ok := o.lookup(id); ok {
		h.abort()
		log.WithField("batch", id).Info("batch canceled")
		return true
	}
	return false
}

// GetResult returns the finalized results accumulated so far by an
// in-flight batch. It reports false when no such batch exists; finished
// batches are served by History.
func (o *Orchestrator) GetResult(id string) ([]domain.ScanResult, bool) {
	if h, ok := o.lookup(id); ok {
		return h.snapshot(), true
	}
	return nil, false
}

// Active returns the IDs of batches currently in flight.
func (o *Orchestrator) Active() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.active))
	for id := range o.active {
		ids = append(ids, id)
	}
	return ids
}

// History returns a snapshot of every finalized result, oldest first.
func (o *Orchestrator) History() []domain.ScanResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.ScanResult, len(o.history))
	copy(out, o.history)
	return out
}

// runBatch drives the targets in order. ctrlCtx ends the between-target
// waits on cancel; procCtx backs the probe processes themselves and is
// untouched by Cancel.
func (o *Orchestrator) runBatch(procCtx, ctrlCtx context.Context, h *handle, targets []domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity, progress ProgressFunc) []domain.ScanResult {
	total := len(targets)

	if progress != nil {
		progress(0, fmt.Sprintf("starting batch of %d targets", total))
	}

	for i, target := range targets {
		if h.isCanceled() {
			break
		}
		if err := h.awaitResume(ctrlCtx); err != nil {
			break
		}
		if h.isCanceled() {
			break
		}

		if progress != nil {
			progress(i*100/total, fmt.Sprintf("scanning %s (%d/%d)", target.Address, i+1, total))
		}

		if err := o.limiter.Admit(ctrlCtx); err != nil {
			log.WithError(err).WithField("batch", h.id).Warn("batch ended while waiting for rate limiter")
			break
		}

		res := o.scanOne(procCtx, target, mode, intensity)
		h.appendResult(res)
		o.record(res)
	}

	results := h.snapshot()
	if progress != nil {
		progress(100, fmt.Sprintf("batch complete: %d of %d targets scanned", len(results), total))
	}
	return results
}

// scanOne runs one target to a finalized result. Failures surface as
// data on the result, never as a panic or a dropped target: an invalid
// target or failed process yields an error-status result, and
// unparseable output yields a completed result with an error note.
func (o *Orchestrator) scanOne(ctx context.Context, target domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity) domain.ScanResult {
	res := domain.ScanResult{
		Target:    target.Address,
		Mode:      mode,
		Status:    domain.StatusRunning,
		StartedAt: time.Now(),
	}

	if err := target.Validate(); err != nil {
		log.WithError(err).WithField("target", target.Address).Warn("target rejected")
		res.Status = domain.StatusError
		res.Errors = append(res.Errors, err.Error())
		res.EndedAt = time.Now()
		return res
	}

	args := scanner.BuildArgs(target, mode, intensity)
	log.WithFields(log.Fields{
		"target": target.Address,
		"mode":   mode,
		"args":   args,
	}).Info("starting scan")

	stdout, stderr, err := o.runner.Run(ctx, o.binary, args)
	res.RawOutput = string(stdout)

	if err != nil {
		// Captured stderr is the error entry; the exit error fills in
		// only when stderr is empty.
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = fmt.Sprintf("scanner process: %v", err)
		}
		res.Status = domain.StatusError
		res.Errors = append(res.Errors, msg)
		res.EndedAt = time.Now()
		return res
	}

	var findings domain.Findings
	var parseErr error
	if mode == domain.ModePingSweep {
		findings, parseErr = parser.ParsePingSweep(res.RawOutput)
	} else {
		findings, parseErr = parser.ParsePortScan(res.RawOutput)
	}

	// Output the parser cannot read is a data-quality note on an
	// otherwise successful scan.
	if parseErr != nil {
		res.Errors = append(res.Errors, parseErr.Error())
	} else {
		res.Findings = findings
	}
	res.Status = domain.StatusCompleted
	res.EndedAt = time.Now()

	log.WithFields(log.Fields{
		"target":     target.Address,
		"open_ports": len(res.Findings.OpenPorts()),
		"hosts":      len(res.Findings.Hosts),
	}).Info("scan finished")
	return res
}

func (o *Orchestrator) record(res domain.ScanResult) {
	o.mu.Lock()
	o.history = append(o.history, res)
	o.mu.Unlock()
}

func (o *Orchestrator) lookup(id string) (*handle, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.active[id]
	return h, ok
}

func newID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("batch-%d", time.Now().UnixNano())
	}
	return "batch-" + hex.EncodeToString(buf)
}
