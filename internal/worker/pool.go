package worker

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/notebot/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Group runs a bounded batch of jobs and waits for all of them. A failing job
// never cancels its siblings; each job records its own outcome.
type Group struct {
	sem chan struct{}
	wg  sync.WaitGroup
	log *logger.Logger
}

func NewGroup(ctx context.Context, workers int) *Group {
	if workers <= 0 {
		workers = 2
	}
	log := logger.FromContext(ctx).WithPrefix("worker-group")
	log.Debug("creating worker group with %d workers", workers)
	return &Group{
		sem: make(chan struct{}, workers),
		log: log,
	}
}

// Go schedules job, blocking while all workers are busy. It returns false
// without running the job if ctx is done first.
func (g *Group) Go(ctx context.Context, job Job) bool {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		g.log.Warn("job %s not started: %v", job.Name(), ctx.Err())
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.sem }()

		jobLog := g.log.WithField("job", job.Name())
		jobLog.Debug("starting job")
		start := time.Now()

		jobCtx := logger.NewContext(ctx, jobLog)
		if err := job.Run(jobCtx); err != nil {
			jobLog.Error("job failed after %v: %v", time.Since(start), err)
		} else {
			jobLog.Debug("job completed in %v", time.Since(start))
		}
	}()
	return true
}

// Wait blocks until every scheduled job has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
