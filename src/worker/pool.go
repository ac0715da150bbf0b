package worker

import (
	"context"
	"log"
	"sync"

	"screen-capture-tool/src/session"
)

// ResultCallback is invoked when a snapshot job completes (from a worker
// goroutine). The event loop should pass a closure that posts back into the
// event loop safely.
type ResultCallback func(res session.SnapshotResult, err error)

// Pool runs snapshot jobs off the event loop with a 1-slot input queue
// (strict back-pressure). Encoding and writing a large capture can take a
// noticeable moment; the pool keeps the coordinator responsive while making
// a second hotkey press during that moment bounce instead of piling up.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	opts session.SnapshotOptions
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to 1 when size<=0; captures are
// serialized by the event loop anyway, so extra workers only matter for
// delegated bursts. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				res, err := session.Snapshot(j.ctx, j.opts)
				if err != nil {
					log.Printf("Worker: snapshot failed: %v", err)
				} else {
					log.Printf("Worker: snapshot saved to %s", res.Path)
				}
				j.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a snapshot job if the single-slot queue is free. Returns
// false if dropped.
func (p *Pool) Submit(ctx context.Context, opts session.SnapshotOptions, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, opts: opts, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
