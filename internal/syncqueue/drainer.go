package syncqueue

import (
	"context"
	"log"
	"sync"
	"time"
)

// Status holds the result of the last drain pass.
type Status struct {
	LastRun   time.Time
	NextRun   time.Time
	Delivered int
	Dropped   int
	Pending   int
}

// Drainer drains a queue in the background at a fixed interval.
type Drainer struct {
	queue    *Queue
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}

	mu     sync.RWMutex
	status Status
}

// NewDrainer creates a drainer for q.
func NewDrainer(q *Queue, interval time.Duration) *Drainer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Drainer{
		queue:    q,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs an initial pass immediately and then one per interval. Call
// Stop to shut down.
func (d *Drainer) Start() {
	go d.run()
	log.Printf("syncqueue: drainer started (every %s)", d.interval)
}

// Stop signals the drainer to shut down and waits for it to finish.
func (d *Drainer) Stop() {
	close(d.stop)
	<-d.done
}

// Status returns the result of the last pass.
func (d *Drainer) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Drainer) run() {
	defer close(d.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The startup pass always completes.
	d.drainOnce(ctx)

	go func() {
		select {
		case <-d.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.drainOnce(ctx)
		case <-d.stop:
			return
		}
	}
}

func (d *Drainer) drainOnce(ctx context.Context) {
	res, err := d.queue.Drain(ctx)
	if err != nil && ctx.Err() == nil {
		log.Printf("syncqueue: drain: %v", err)
	}
	if res.Delivered > 0 || res.Dropped > 0 {
		log.Printf("syncqueue: delivered %d, dropped %d", res.Delivered, res.Dropped)
	}

	now := time.Now()
	d.mu.Lock()
	d.status = Status{
		LastRun:   now,
		NextRun:   now.Add(d.interval),
		Delivered: d.status.Delivered + res.Delivered,
		Dropped:   d.status.Dropped + res.Dropped,
		Pending:   d.queue.Len(),
	}
	d.mu.Unlock()
}
