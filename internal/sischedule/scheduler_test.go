package sischedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

func sizedEntry(dataLen int) *sipacket.LogEntry {
	e := sipacket.NewLogEntry(sipacket.Message)
	e.Data = make([]byte, dataLen)
	return e
}

// Invariant 6: FIFO order is preserved end to end.
func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(1 << 20)
	for i := 0; i < 5; i++ {
		e := sizedEntry(1)
		e.ProcessID = int32(i)
		q.Enqueue(Command{Action: ActionWritePacket, Packet: e})
	}

	var got []sipacket.Packet
	for i := 0; i < 5; i++ {
		cmd, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue %d: closed early", i)
		}
		got = append(got, cmd.Packet)
	}
	if len(got) != 5 {
		t.Fatalf("got %d commands, want 5", len(got))
	}
	for i, p := range got {
		if pid := p.(*sipacket.LogEntry).ProcessID; pid != int32(i) {
			t.Fatalf("got[%d].ProcessID = %d, want %d", i, pid, i)
		}
	}
}

// Invariant 7: after Enqueue, sizeBytes never exceeds cap in throttled mode.
func TestQueueByteCapThrottled(t *testing.T) {
	q := NewQueue(1024)
	q.Throttle = true

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			q.Enqueue(Command{Action: ActionWritePacket, Packet: sizedEntry(176)})
		}
		close(done)
	}()

	drained := 0
	for drained < 20 {
		if _, ok := q.Dequeue(); ok {
			drained++
		}
		_, bytes := q.Backlog()
		if bytes > 1024 {
			t.Fatalf("sizeBytes = %d, want <= 1024", bytes)
		}
	}
	<-done
}

// S5: async.queue=1024, throttle=false, 100 writes of 200 bytes each ⇒
// at most 5 packets survive, no block, drops are reported via OnDrop.
func TestQueueOverflowDropScenarioS5(t *testing.T) {
	q := NewQueue(1024)
	q.Throttle = false

	var drops int64
	dropped := make(chan struct{}, 100)
	q.OnDrop = func(bytes int64) {
		atomic.AddInt64(&drops, 1)
		dropped <- struct{}{}
	}

	for i := 0; i < 100; i++ {
		q.Enqueue(Command{Action: ActionWritePacket, Packet: sizedEntry(200 - sipacket.SchedulerOverhead)})
	}

	count, bytes := q.Backlog()
	if count > 5 {
		t.Fatalf("queue holds %d commands, want <= 5", count)
	}
	if bytes > 1024 {
		t.Fatalf("sizeBytes = %d, want <= 1024", bytes)
	}

	deadline := time.After(time.Second)
	for int(atomic.LoadInt64(&drops)) < 95 {
		select {
		case <-dropped:
		case <-deadline:
			t.Fatalf("only %d drops observed, want >= 95", atomic.LoadInt64(&drops))
		}
	}
}

// Invariant 7 edge case: a single command larger than cap must be
// dropped even when trim() has already emptied the queue (no carve-out
// for an otherwise-empty queue, spec.md §4.3).
func TestQueueDropsOversizedCommandOnEmptyQueue(t *testing.T) {
	q := NewQueue(100)
	q.Throttle = false

	// OnDrop runs on its own goroutine, so wait for it before counting.
	var drops int64
	dropped := make(chan struct{}, 2)
	q.OnDrop = func(bytes int64) {
		atomic.AddInt64(&drops, 1)
		dropped <- struct{}{}
	}

	q.Enqueue(Command{Action: ActionWritePacket, Packet: sizedEntry(500)})

	count, bytes := q.Backlog()
	if count != 0 {
		t.Fatalf("queue holds %d commands, want 0", count)
	}
	if bytes > 100 {
		t.Fatalf("sizeBytes = %d, want <= 100", bytes)
	}
	select {
	case <-dropped:
	case <-time.After(time.Second):
	}
	if n := atomic.LoadInt64(&drops); n != 1 {
		t.Fatalf("drops = %d, want 1", n)
	}
}

// Enqueue on a closed queue reports false so the caller can surface a
// closed error, rather than silently dropping the command.
func TestQueueEnqueueAfterCloseReportsFalse(t *testing.T) {
	q := NewQueue(1 << 20)
	q.Close()

	if ok := q.Enqueue(Command{Action: ActionWritePacket, Packet: sizedEntry(1)}); ok {
		t.Fatal("Enqueue on a closed queue returned true, want false")
	}
}

// Admin commands (Connect/Disconnect/Dispatch) are never trimmed even
// when a burst of WritePackets would otherwise evict them.
func TestQueueNeverTrimsAdminCommands(t *testing.T) {
	q := NewQueue(300)
	q.Throttle = false

	q.Enqueue(Command{Action: ActionConnect})
	for i := 0; i < 10; i++ {
		q.Enqueue(Command{Action: ActionWritePacket, Packet: sizedEntry(200)})
	}

	cmd, ok := q.Dequeue()
	if !ok || cmd.Action != ActionConnect {
		t.Fatalf("head = %+v, ok=%v, want ActionConnect", cmd, ok)
	}
}

func TestWriterDrainsInOrder(t *testing.T) {
	q := NewQueue(1 << 20)
	var seen []int
	done := make(chan struct{})
	w := NewWriter(q, func(cmd Command) {
		seen = append(seen, int(cmd.Packet.(*sipacket.LogEntry).ProcessID))
		if len(seen) == 3 {
			close(done)
		}
	})
	go w.Run()

	for i := 1; i <= 3; i++ {
		e := sizedEntry(1)
		e.ProcessID = int32(i)
		q.Enqueue(Command{Action: ActionWritePacket, Packet: e})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writer did not process all commands")
	}
	for i, v := range seen {
		if v != i+1 {
			t.Fatalf("seen = %v, want [1 2 3]", seen)
		}
	}
	q.Close()
}
