// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run; zero means Interval.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner drives a set of jobs, one goroutine per job, until Stop.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRunner creates a runner for jobs. Nothing runs until Start.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{
		jobs:   jobs,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Add registers j. It must be called before Start.
func (r *Runner) Add(j Job) {
	r.jobs = append(r.jobs, j)
}

// Start launches every job loop. Each job first runs after one interval.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		if j.Interval <= 0 || j.Run == nil {
			r.log.Warn("skipping job with no interval or body", zap.String("job", j.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every loop to exit and waits for in-flight runs.
func (r *Runner) Stop() {
	r.once.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		r.log.Info("background jobs stopped")
	})
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.RunOnce(j)
		}
	}
}

// RunOnce executes j synchronously with its timeout and logs the outcome.
func (r *Runner) RunOnce(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = j.Interval
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Abort the run early on shutdown.
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		r.log.Error("background job failed",
			zap.String("job", j.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}
	r.log.Debug("background job finished",
		zap.String("job", j.Name),
		zap.Duration("took", time.Since(start)))
}
