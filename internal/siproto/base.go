// Package siproto implements the protocol base (spec.md §4.2-§4.4) and
// the five concrete sinks (file, text, tcp, pipe, memory). Grounded on
// internal/ron/heartbeat.go's jittered retry loop for reconnect, and on
// src/meshage/node.go's connect/handshake/dispatch shape for the base
// lifecycle.
package siproto

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/internal/sidebug"
	"github.com/sandia-minimega/smartinspect-go/v2/internal/sischedule"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
)

// Sink is what a concrete protocol implements; Base drives it through
// the lifecycle and hands it already level-gated, already-queued work.
type Sink interface {
	// Name is the protocol's connection-string identifier ("file", "tcp", ...).
	Name() string
	// ValidOptions lists option keys this sink recognises beyond the base set.
	ValidOptions() []string
	// DefaultCaption is used when the caption option is absent.
	DefaultCaption() string
	// Connect opens the underlying resource. Called with the base lock held.
	Connect() error
	// Disconnect closes the underlying resource. Called with the base lock held.
	Disconnect() error
	// WriteFormatted writes one already-formatted frame to the sink.
	// Called with the base lock held.
	WriteFormatted(frame []byte) error
	// Format encodes p for this sink (binary or text formatter).
	Format(p sipacket.Packet) ([]byte, error)
	// Dispatch handles a caller-submitted custom action; most sinks no-op.
	Dispatch(state interface{}) error
}

var baseOptionKeys = []string{
	"level", "reconnect", "reconnect.interval", "caption",
	"async.enabled", "async.queue", "async.throttle", "async.clearondisconnect",
	"backlog.enabled", "backlog.queue", "backlog.flushon", "backlog.keepopen",
}

type baseOptions struct {
	Level                  sipacket.Level
	Reconnect              bool
	ReconnectInterval      time.Duration
	Caption                string
	AsyncEnabled           bool
	AsyncQueueBytes        int64
	AsyncThrottle          bool
	AsyncClearOnDisconnect bool
	BacklogEnabled         bool
	BacklogQueueBytes      int64
	BacklogFlushOn         sipacket.Level
	BacklogKeepOpen        bool
}

func parseBaseOptions(lk *sioptions.Lookup, defaultCaption string) baseOptions {
	return baseOptions{
		Level:                  lk.Level("level", sipacket.Debug),
		Reconnect:              lk.Bool("reconnect", false),
		ReconnectInterval:      time.Duration(lk.Timespan("reconnect.interval", 0)) * time.Millisecond,
		Caption:                lk.String("caption", defaultCaption),
		AsyncEnabled:           lk.Bool("async.enabled", false),
		AsyncQueueBytes:        lk.Size("async.queue", 2<<20),
		AsyncThrottle:          lk.Bool("async.throttle", true),
		AsyncClearOnDisconnect: lk.Bool("async.clearondisconnect", false),
		BacklogEnabled:         lk.Bool("backlog.enabled", false),
		BacklogQueueBytes:      lk.Size("backlog.queue", 2<<20),
		BacklogFlushOn:         lk.Level("backlog.flushon", sipacket.Error),
		BacklogKeepOpen:        lk.Bool("backlog.keepopen", true),
	}
}

// Base implements spec.md §4.2-§4.4's shared machinery: option binding,
// sync/async dispatch, reconnect-with-throttle, and a secondary backlog.
// Concrete protocols implement Sink; their constructors wrap the sink in
// a Base.
type Base struct {
	sink          Sink
	optionsString string
	opts          baseOptions

	mu                 sync.Mutex
	connected          bool
	lastConnectAttempt time.Time

	queue  *sischedule.Queue
	writer *sischedule.Writer

	backlog      []sipacket.Packet
	backlogBytes int64

	OnError func(*Error)
}

// NewBase validates optionsString's keys against the sink's own
// ValidOptions plus the base set, then binds the base options. Unknown
// keys are a fatal configuration error per spec.md §4.1.
func NewBase(sink Sink, lk *sioptions.Lookup) (*Base, error) {
	known := map[string]bool{}
	for _, k := range baseOptionKeys {
		known[k] = true
	}
	for _, k := range sink.ValidOptions() {
		known[k] = true
	}
	for _, k := range lk.Keys() {
		if !known[k] {
			return nil, &Error{
				Protocol: sink.Name(),
				Kind:     KindConfiguration,
				Cause:    fmt.Errorf("unknown option %q", k),
			}
		}
	}

	b := &Base{
		sink: sink,
		opts: parseBaseOptions(lk, sink.DefaultCaption()),
	}
	return b, nil
}

// Start brings the protocol up: synchronously connects, or spins up the
// async queue+writer and enqueues an initial Connect command.
func (b *Base) Start() {
	if !b.opts.AsyncEnabled {
		b.mu.Lock()
		b.connectLocked()
		b.mu.Unlock()
		return
	}

	b.queue = sischedule.NewQueue(b.opts.AsyncQueueBytes)
	b.queue.Throttle = b.opts.AsyncThrottle
	b.queue.OnDrop = func(bytes int64) {
		b.report(KindQueueOverflow, fmt.Errorf("dropped %d bytes", bytes))
	}
	b.writer = sischedule.NewWriter(b.queue, b.handle)
	go b.writer.Run()
	b.queue.Enqueue(sischedule.Command{Action: sischedule.ActionConnect})
}

// Stop submits a poison Disconnect and waits for the writer to exit (if
// async), or disconnects synchronously.
func (b *Base) Stop() {
	if !b.opts.AsyncEnabled {
		b.mu.Lock()
		b.disconnectLocked()
		b.mu.Unlock()
		return
	}
	if b.queue == nil {
		return // Start was never called
	}

	b.queue.Enqueue(sischedule.Command{Action: sischedule.ActionDisconnect})
	b.queue.Close()
	<-b.writer.Done()
}

// Submit is the inbound entrypoint (spec.md §6): level-gates p, then
// writes synchronously or enqueues it for the writer task.
func (b *Base) Submit(p sipacket.Packet) {
	if p.Level() != sipacket.Control && p.Level() < b.opts.Level {
		return
	}

	if !b.opts.AsyncEnabled {
		b.mu.Lock()
		b.writeLocked(p)
		b.mu.Unlock()
		return
	}

	if !b.queue.Enqueue(sischedule.Command{Action: sischedule.ActionWritePacket, Packet: p}) {
		b.report(KindClosed, fmt.Errorf("packet dropped: protocol closed"))
	}
}

// Dispatch submits a custom action, routed through the queue in async
// mode so it preserves ordering relative to writes (spec.md §4.3).
func (b *Base) Dispatch(state interface{}) {
	if !b.opts.AsyncEnabled {
		b.mu.Lock()
		b.sink.Dispatch(state)
		b.mu.Unlock()
		return
	}
	if !b.queue.Enqueue(sischedule.Command{Action: sischedule.ActionDispatch, CustomState: state}) {
		b.report(KindClosed, fmt.Errorf("dispatch dropped: protocol closed"))
	}
}

func (b *Base) handle(cmd sischedule.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch cmd.Action {
	case sischedule.ActionConnect:
		b.connectLocked()
	case sischedule.ActionWritePacket:
		b.writeLocked(cmd.Packet)
	case sischedule.ActionDispatch:
		b.sink.Dispatch(cmd.CustomState)
	case sischedule.ActionDisconnect:
		if b.opts.AsyncClearOnDisconnect && b.queue != nil {
			for {
				if n, _ := b.queue.Backlog(); n == 0 {
					break
				}
				if _, ok := b.queue.Dequeue(); !ok {
					break
				}
			}
		}
		b.disconnectLocked()
	}
}

// connectLocked opens the sink and, on success, immediately writes the
// hostname/appname LogHeader (spec.md §4.4 "a successful reconnect
// triggers a LogHeader write"; §4.8 "after handshake, immediately write
// a LogHeader packet" for TCP/pipe — unified here as one rule that
// applies to every successful connect, initial or reconnect).
func (b *Base) connectLocked() {
	b.lastConnectAttempt = time.Now()
	if err := b.sink.Connect(); err != nil {
		b.report(KindConnect, err)
		return
	}
	b.connected = true
	b.writeRawLocked(sipacket.ConnectHeader(hostname(), appname()))
}

func (b *Base) disconnectLocked() {
	if !b.connected {
		return
	}
	if err := b.sink.Disconnect(); err != nil {
		b.report(KindConnect, err)
	}
	b.connected = false
}

// writeLocked implements the write path including reconnect-with-
// throttle (spec.md §4.4) and backlog capture/flush.
func (b *Base) writeLocked(p sipacket.Packet) {
	if !b.connected {
		if !b.opts.Reconnect {
			b.report(KindClosed, fmt.Errorf("protocol not connected"))
			return
		}
		if time.Since(b.lastConnectAttempt) < b.opts.ReconnectInterval {
			b.report(KindConnect, fmt.Errorf("packet dropped: reconnect throttled"))
			return
		}
		b.connectLocked()
		if !b.connected {
			return
		}
		b.flushBacklogLocked()
	}

	if err := b.writeRawLocked(p); err != nil {
		b.connected = false
		b.report(KindWrite, err)
		if b.opts.Reconnect {
			b.lastConnectAttempt = time.Now()
		}
		return
	}

	if b.opts.BacklogEnabled {
		b.appendBacklogLocked(p)
		if p.Level() >= b.opts.BacklogFlushOn {
			b.flushBacklogLocked()
			if !b.opts.BacklogKeepOpen {
				b.disconnectLocked()
			}
		}
	}
}

func (b *Base) writeRawLocked(p sipacket.Packet) error {
	frame, err := b.sink.Format(p)
	if err != nil {
		return err
	}
	return b.sink.WriteFormatted(frame)
}

func (b *Base) appendBacklogLocked(p sipacket.Packet) {
	b.backlog = append(b.backlog, p)
	b.backlogBytes += int64(p.Size())
	for b.backlogBytes > b.opts.BacklogQueueBytes && len(b.backlog) > 0 {
		b.backlogBytes -= int64(b.backlog[0].Size())
		b.backlog = b.backlog[1:]
	}
}

func (b *Base) flushBacklogLocked() {
	for _, p := range b.backlog {
		b.writeRawLocked(p)
	}
	b.backlog = nil
	b.backlogBytes = 0
}

func (b *Base) report(kind Kind, cause error) {
	sidebug.Warn("%s: %s: %v", b.sink.Name(), kind, cause)
	if b.OnError == nil {
		return
	}
	b.OnError(&Error{Protocol: b.sink.Name(), Options: b.optionsString, Kind: kind, Cause: cause})
}

// Backlog reports async queue depth/bytes for diagnostics and tests.
func (b *Base) Backlog() (count int, bytes int64) {
	if b.queue == nil {
		return 0, 0
	}
	return b.queue.Backlog()
}

// Caption returns the effective caption option.
func (b *Base) Caption() string { return b.opts.Caption }

// SetOptionsString records the raw connection-string fragment for this
// protocol, used only for error diagnostics.
func (b *Base) SetOptionsString(s string) { b.optionsString = s }
