package world

import (
	"sync"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout delivers event payloads to computed audiences. A single sequencer
// goroutine drains the job queue, so for any given recipient events are
// enqueued in exactly the order the router asked for them: a leave is never
// observed before the matching join, and updates keep submission order.
type Fanout struct {
	jobs     chan fanoutJob
	onDrop   func(connID string)
	stopOnce sync.Once
	done     chan struct{}
}

// NewFanout creates the fan-out queue. onDrop is invoked (may be nil) when a
// recipient's send queue is full and the frame is discarded instead of
// buffered without bound.
func NewFanout(queue int, onDrop func(connID string)) *Fanout {
	if queue <= 0 {
		queue = 1024
	}
	f := &Fanout{
		jobs:   make(chan fanoutJob, queue),
		onDrop: onDrop,
		done:   make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *Fanout) run() {
	for {
		select {
		case job := <-f.jobs:
			for _, c := range job.conns {
				if !c.Enqueue(job.payload) && f.onDrop != nil {
					// slow or closing client: skip, never block the sequencer
					f.onDrop(c.ConnID)
				}
			}
		case <-f.done:
			return
		}
	}
}

// Broadcast queues one payload for every listed connection.
func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	select {
	case f.jobs <- fanoutJob{conns: conns, payload: payload}:
	case <-f.done:
	}
}

// Unicast queues one payload for a single connection, through the same
// sequencer so it keeps its order relative to broadcasts.
func (f *Fanout) Unicast(c *Client, payload []byte) {
	if c == nil || len(payload) == 0 {
		return
	}
	f.Broadcast([]*Client{c}, payload)
}

// Close stops the sequencer; queued jobs past this point are discarded.
func (f *Fanout) Close() {
	f.stopOnce.Do(func() { close(f.done) })
}
