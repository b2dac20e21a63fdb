// Package syncqueue is the outbox for progress changes. Items are delivered
// to an injected Transport only while the queue is flagged online; each item
// gets up to MaxAttempts tries and is then dropped with a warning. Local
// saves never wait on it.
package syncqueue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/carpenike/repcal/internal/metrics"
	"github.com/carpenike/repcal/internal/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// MaxAttempts is the number of delivery tries per item.
const MaxAttempts = 3

// DefaultRetryDelay is the pause between attempts.
const DefaultRetryDelay = 2 * time.Second

// MaxPending bounds the queue. Enqueueing into a full queue drops the
// oldest item.
const MaxPending = 1000

// Item is one queued change.
type Item struct {
	ID       string         `json:"id"`
	Key      models.SlotKey `json:"key"`
	Payload  []byte         `json:"payload"`
	Attempts int            `json:"attempts"`
	Enqueued time.Time      `json:"enqueued"`
}

// Transport delivers an item somewhere.
type Transport interface {
	Deliver(ctx context.Context, item Item) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, item Item) error

// Deliver implements Transport.
func (f TransportFunc) Deliver(ctx context.Context, item Item) error { return f(ctx, item) }

// Result summarizes one Drain.
type Result struct {
	Delivered int
	Dropped   int
}

// Queue is an ordered outbox.
type Queue struct {
	transport  Transport
	retryDelay time.Duration
	maxPending int

	mu     sync.Mutex
	items  []Item
	online bool

	// draining serializes Drain calls.
	draining sync.Mutex
}

// New returns an offline queue delivering through t.
func New(t Transport, retryDelay time.Duration) *Queue {
	if retryDelay <= 0 {
		retryDelay = time.Millisecond
	}
	return &Queue{transport: t, retryDelay: retryDelay, maxPending: MaxPending}
}

// Enqueue appends a change and returns the queued item.
func (q *Queue) Enqueue(key models.SlotKey, payload []byte) Item {
	item := Item{
		ID:       uuid.NewString(),
		Key:      key,
		Payload:  append([]byte(nil), payload...),
		Enqueued: time.Now().UTC(),
	}
	q.mu.Lock()
	var evicted []Item
	if over := len(q.items) + 1 - q.maxPending; over > 0 {
		evicted = append(evicted, q.items[:over]...)
		q.items = q.items[over:]
	}
	q.items = append(q.items, item)
	n := len(q.items)
	q.mu.Unlock()

	for _, old := range evicted {
		log.Printf("syncqueue: queue full, dropping oldest item %s (%s)", old.ID, old.Key)
		metrics.RecordSyncItem("evicted")
	}
	metrics.SetSyncQueueDepth(n)
	return item
}

// SetOnline flags connectivity.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	q.online = online
	q.mu.Unlock()
}

// Online reports the connectivity flag.
func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a copy of the queued items in order.
func (q *Queue) Pending() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Item(nil), q.items...)
}

// Drain delivers queued items in order. It does nothing while offline.
// Items enqueued during a drain wait for the next one. A cancelled context
// stops the drain and leaves the remaining items queued.
func (q *Queue) Drain(ctx context.Context) (Result, error) {
	q.draining.Lock()
	defer q.draining.Unlock()

	var res Result
	if !q.Online() {
		return res, nil
	}

	for {
		item, ok := q.head()
		if !ok {
			return res, nil
		}

		err := q.deliver(ctx, &item)
		if err == nil {
			q.popHead(item.ID)
			metrics.RecordSyncItem("delivered")
			res.Delivered++
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		if ctx.Err() != nil {
			q.updateHead(item)
			return res, ctx.Err()
		}

		q.popHead(item.ID)
		log.Printf("syncqueue: dropping item %s (%s) after %d attempts: %v", item.ID, item.Key, item.Attempts, err)
		metrics.RecordSyncItem("dropped")
		res.Dropped++
	}
}

func (q *Queue) deliver(ctx context.Context, item *Item) error {
	b := retry.WithMaxRetries(MaxAttempts-1, retry.NewConstant(q.retryDelay))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		item.Attempts++
		start := time.Now()
		err := q.transport.Deliver(ctx, *item)
		metrics.RecordSyncAttempt(time.Since(start).Seconds())
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (q *Queue) head() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

func (q *Queue) updateHead(item Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 && q.items[0].ID == item.ID {
		q.items[0] = item
	}
}

// popHead removes the head if it is still the item with id; it may have
// been evicted while it was being delivered.
func (q *Queue) popHead(id string) {
	q.mu.Lock()
	if len(q.items) > 0 && q.items[0].ID == id {
		q.items = q.items[1:]
	}
	n := len(q.items)
	q.mu.Unlock()
	metrics.SetSyncQueueDepth(n)
}

// ErrSimulatedFailure is returned by a SimulatorTransport configured to fail.
var ErrSimulatedFailure = errors.New("simulated sync failure")

// SimulatorTransport pretends to sync: it waits Delay and then succeeds, or
// fails with ErrSimulatedFailure when Fail is set.
type SimulatorTransport struct {
	Delay time.Duration
	Fail  bool
}

// Deliver implements Transport.
func (s SimulatorTransport) Deliver(ctx context.Context, _ Item) error {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.Fail {
		return ErrSimulatedFailure
	}
	return nil
}
