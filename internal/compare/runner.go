package compare

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrSuperseded is returned to a caller whose comparison was replaced by a newer one for the same key.
var ErrSuperseded = errors.New("comparison superseded by a newer request")

type runnerJob struct {
	seq    uint64
	cancel context.CancelFunc
}

// Runner executes comparisons on background goroutines. At most one comparison per key is
// current: submitting a new one cancels the previous one and its result is discarded.
type Runner struct {
	mu       sync.Mutex
	inflight map[string]*runnerJob
	seq      uint64
	logger   zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{
		inflight: make(map[string]*runnerJob),
		logger:   logger.With().Str("component", "Runner").Logger(),
	}
}

// InFlight returns the number of keys with a running comparison.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

func (r *Runner) begin(ctx context.Context, key string) (context.Context, *runnerJob) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.inflight[key]; ok {
		prev.cancel()
		r.logger.Debug().Str("key", key).Uint64("seq", prev.seq).Msg("Superseding running comparison")
	}

	r.seq++
	jobCtx, cancel := context.WithCancel(ctx)
	job := &runnerJob{seq: r.seq, cancel: cancel}
	r.inflight[key] = job
	return jobCtx, job
}

// finish releases the key and reports whether job was still the current one.
func (r *Runner) finish(key string, job *runnerJob) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.cancel()

	if r.inflight[key] != job {
		return false
	}
	delete(r.inflight, key)
	return true
}

// Submit runs fn for key on a background goroutine and waits for it. If another Submit for
// the same key starts first, this call returns ErrSuperseded and fn's result is dropped.
func Submit[T any](ctx context.Context, r *Runner, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	jobCtx, job := r.begin(ctx, key)

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(jobCtx)
		done <- outcome{value: v, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-jobCtx.Done():
		res = outcome{err: jobCtx.Err()}
	}

	if !r.finish(key, job) {
		return zero, ErrSuperseded
	}
	if res.err != nil {
		return zero, res.err
	}
	return res.value, nil
}
