// Package sischedule implements the bounded, byte-accounted FIFO that
// sits between a protocol's Submit callers and its single writer task
// (spec.md §4.3). Grounded on internal/minitunnel/mux.go's guarded-map
// pattern for the locking shape, and src/meshage/node.go's dedicated
// "one channel, one consumer goroutine" pump for the writer loop.
package sischedule

import (
	"sync"

	"github.com/sandia-minimega/smartinspect-go/v2/internal/sidebug"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// Action identifies what a Command asks the writer task to do.
type Action int

const (
	ActionConnect Action = iota
	ActionWritePacket
	ActionDisconnect
	ActionDispatch
)

// Command is one unit of scheduler work. Packet is nil for Disconnect;
// CustomState carries caller-supplied context for Dispatch commands.
type Command struct {
	Action      Action
	Packet      sipacket.Packet
	CustomState interface{}
}

// size is the byte cost the queue accounts this command against its
// capacity: the wrapped packet's Size() plus management overhead.
func (c Command) size() int64 {
	n := int64(sipacket.SchedulerOverhead)
	if c.Packet != nil {
		n += int64(c.Packet.Size())
	}
	return n
}

// Queue is a bounded, byte-accounted FIFO of Commands. Throttle selects
// the overflow policy: true blocks Enqueue until room frees up; false
// evicts the oldest WritePacket commands to make room, dropping the new
// command outright if it still doesn't fit after the queue is emptied
// of every evictable WritePacket.
type Queue struct {
	mu        sync.Mutex
	notEmpty  *sync.Cond
	notFull   *sync.Cond
	cap       int64
	sizeBytes int64
	items     []Command
	closed    bool

	Throttle bool

	// OnDrop, if set, is called (outside the lock) whenever a command is
	// evicted or refused for lack of room. bytes is the size of the
	// dropped command.
	OnDrop func(bytes int64)
}

// NewQueue returns a Queue capped at capBytes.
func NewQueue(capBytes int64) *Queue {
	q := &Queue{cap: capBytes}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds cmd to the tail of the queue, applying the configured
// overflow policy if it would exceed capacity. It reports false if cmd
// was refused because the queue is closed — the caller (spec.md §4.3,
// §7) must surface that as a protocol-closed error rather than silently
// swallowing the command.
func (q *Queue) Enqueue(cmd Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	sz := cmd.size()

	if q.Throttle {
		for !q.closed && q.sizeBytes+sz > q.cap && q.sizeBytes > 0 {
			q.notFull.Wait()
		}
		if q.closed {
			return false
		}
	} else {
		q.trim(sz)
		if q.sizeBytes+sz > q.cap {
			// Still doesn't fit even with every WritePacket evicted (or
			// the queue is already empty and this one command alone
			// exceeds capacity): drop the incoming command instead.
			if q.OnDrop != nil {
				go q.OnDrop(sz)
			}
			sidebug.Warn("queue: dropped incoming command (%d bytes), queue full even after trim", sz)
			return true
		}
	}

	q.items = append(q.items, cmd)
	q.sizeBytes += sz
	q.notEmpty.Signal()
	return true
}

// trim evicts the oldest WritePacket commands (never Connect/Disconnect/
// Dispatch) until adding need bytes would fit within capacity, or there
// is nothing left worth evicting. Caller holds q.mu.
func (q *Queue) trim(need int64) {
	i := 0
	for q.sizeBytes+need > q.cap && i < len(q.items) {
		if q.items[i].Action != ActionWritePacket {
			i++
			continue
		}
		dropped := q.items[i].size()
		q.items = append(q.items[:i], q.items[i+1:]...)
		q.sizeBytes -= dropped
		if q.OnDrop != nil {
			go q.OnDrop(dropped)
		}
		sidebug.Debug("queue: trimmed oldest write packet (%d bytes) to make room", dropped)
		// Don't advance i: the slice shifted left under us.
	}
}

// Dequeue blocks until a command is available (or the queue is closed,
// in which case ok is false) and returns the head of the FIFO.
func (q *Queue) Dequeue() (cmd Command, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return Command{}, false
	}

	cmd = q.items[0]
	q.items = q.items[1:]
	q.sizeBytes -= cmd.size()
	q.notFull.Broadcast()
	return cmd, true
}

// Backlog reports the current queue depth and byte footprint.
func (q *Queue) Backlog() (count int, bytes int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), q.sizeBytes
}

// Close unblocks any Enqueue/Dequeue waiters; further Enqueue calls are
// no-ops and Dequeue returns ok=false once drained.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
