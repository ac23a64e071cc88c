// File: pkg/export/worker.go
package export

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrBusy is returned by Runner.Start while a job is still running.
var ErrBusy = errors.New("an export is already running")

// Runner runs at most one export at a time on a background goroutine.
// The zero value is ready to use.
type Runner struct {
	mu      sync.Mutex
	current *Job
}

// Job is a running or finished export.
type Job struct {
	progress atomic.Uint64 // math.Float64bits of the completed fraction.
	done     chan struct{}
	result   Result
	err      error
}

// Start launches Run in the background. Selected and includes must not be
// modified until the job is done. There is no cancellation.
func (r *Runner) Start(selected, includes []string, opts Options) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		select {
		case <-r.current.done:
		default:
			return nil, ErrBusy
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	job := &Job{done: make(chan struct{})}
	report := opts.Progress
	opts.Progress = func(done, total int) {
		job.setProgress(done, total)
		if report != nil {
			report(done, total)
		}
	}
	r.current = job

	go func() {
		defer close(job.done)
		logger.Debug("Export worker started")
		job.result, job.err = Run(selected, includes, opts)
		logger.Debug("Export worker finished", zap.Int("written", job.result.Written), zap.Error(job.err))
	}()
	return job, nil
}

func (j *Job) setProgress(done, total int) {
	frac := 1.0
	if total > 0 {
		frac = float64(done) / float64(total)
	}
	j.progress.Store(math.Float64bits(frac))
}

// Progress returns the processed fraction in [0, 1].
func (j *Job) Progress() float64 {
	return math.Float64frombits(j.progress.Load())
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its outcome.
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.result, j.err
}
