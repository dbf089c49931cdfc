package enrich

import (
	"context"
	"runtime/debug"
	"sync"
)

// queueDepth is the bounded per-user channel depth from spec.md §9's
// "hashmap of user_id -> bounded work queue + single consumer task".
const queueDepth = 64

type userQueue struct {
	events chan rawMessage
	once   sync.Once
}

type rawMessage struct {
	value  []byte
	offset uint64
}

// Dispatcher routes incoming Kafka messages to a per-user goroutine so
// that same-user events are processed in arrival order while different
// users' events run fully in parallel.
type Dispatcher struct {
	pipeline *Pipeline

	mu     sync.Mutex
	queues map[uint64]*userQueue
	wg     sync.WaitGroup
}

// NewDispatcher wires a Dispatcher over pipeline.
func NewDispatcher(pipeline *Pipeline) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		queues:   make(map[uint64]*userQueue),
	}
}

// Dispatch routes one raw message, keyed by userID, to its per-user
// queue, spinning up a worker goroutine the first time userID is seen.
// It never blocks on a different user's queue.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uint64, value []byte, offset uint64) {
	q := d.queueFor(ctx, userID)
	select {
	case q.events <- rawMessage{value: value, offset: offset}:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) queueFor(ctx context.Context, userID uint64) *userQueue {
	d.mu.Lock()
	q, ok := d.queues[userID]
	if !ok {
		q = &userQueue{events: make(chan rawMessage, queueDepth)}
		d.queues[userID] = q
		d.wg.Add(1)
		go d.runWorker(ctx, q)
	}
	d.mu.Unlock()
	return q
}

func (d *Dispatcher) runWorker(ctx context.Context, q *userQueue) {
	defer d.wg.Done()
	for {
		select {
		case msg := <-q.events:
			func() {
				defer func() {
					if r := recover(); r != nil {
						d.pipeline.Logger.Error("recovered from panic while processing event",
							"panic", r, "stack", string(debug.Stack()))
					}
				}()
				d.pipeline.ProcessOne(ctx, msg.value, msg.offset)
			}()
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until every per-user worker goroutine has exited
// (reached after ctx is cancelled).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
