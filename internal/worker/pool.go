package worker

import (
	"context"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool whose jobs observe ctx; cancelling ctx stops
// the workers after their current job.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It reports false when the pool was shut down
// before the job could be queued.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Results exposes the result stream. Callers that submit more jobs than
// the queue holds must drain it concurrently; see Run.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops accepting jobs and closes Results once every worker is done
func (p *Pool) Close() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		p.closeResults()
		p.cancelFunc()
	}()
}

// Shutdown stops the workers after their current job
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Run submits every job, waits for them and returns the results in
// completion order. Jobs not queued before ctx is cancelled produce no result.
func Run(ctx context.Context, workers int, jobs []Job) []Result {
	pool := NewPool(ctx, workers)
	pool.Start()

	go func() {
		for _, job := range jobs {
			if !pool.Submit(job) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]Result, 0, len(jobs))
	for result := range pool.Results() {
		results = append(results, result)
	}
	return results
}
