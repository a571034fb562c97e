// Package smartinspect is the transport core described by spec.md: it
// takes packets from many concurrent producers and fans them out to a
// set of protocol sinks built from a connections string. Session
// registries, convenience log methods, and viewer-context builders are
// out of scope (spec.md §1) — callers submit already-built
// pkg/sipacket.Packet values.
//
// Grounded on src/minilog's package-level `loggers` map guarded by a
// single RWMutex plus its `AddLogger`/`DelLogger`/`Init()` shape,
// generalized here from "named loggers" to "named protocol instances."
package smartinspect

import (
	"fmt"
	"os"
	"sync"

	"github.com/sandia-minimega/smartinspect-go/v2/internal/siproto"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siconn"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// Error is what an error callback receives: protocol name, its raw
// options string, and the underlying cause (spec.md §6/§7).
type Error = siproto.Error

const (
	KindConfiguration = siproto.KindConfiguration
	KindConnect       = siproto.KindConnect
	KindWrite         = siproto.KindWrite
	KindQueueOverflow = siproto.KindQueueOverflow
	KindClosed        = siproto.KindClosed
)

type protocolInstance struct {
	name string // siconn.Entry.Protocol, e.g. "file", "tcp"
	opts string // raw options fragment, for diagnostics
	base *siproto.Base
}

// SmartInspect owns a fan-out set of protocol instances built from a
// connections string (spec.md §3 "a SmartInspect root exclusively owns
// its list of protocols"). The zero value is not usable; use New.
type SmartInspect struct {
	appName string

	mu        sync.RWMutex
	protocols []*protocolInstance

	// OnError receives every recoverable and unrecoverable protocol
	// error (spec.md §6). May be nil.
	OnError func(*Error)
}

// New returns a SmartInspect with no protocols configured; call
// SetConnections to add sinks.
func New(appName string) *SmartInspect {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	siproto.SetIdentity(hostname, appName)
	return &SmartInspect{appName: appName}
}

// SetConnections replaces the protocol set atomically: the new set is
// built and started in full before the old set is stopped, and on any
// build error the existing set is left running unchanged and a
// KindConfiguration error is returned synchronously (spec.md §6
// "best-effort: build new list, then swap; on parse error, leave
// existing set unchanged").
func (si *SmartInspect) SetConnections(s string) error {
	entries, err := siconn.Parse(s)
	if err != nil {
		return &Error{Kind: KindConfiguration, Cause: fmt.Errorf("invalid connections string: %w", err)}
	}

	next := make([]*protocolInstance, 0, len(entries))
	for _, e := range entries {
		base, err := si.buildProtocol(e)
		if err != nil {
			for _, p := range next {
				p.base.Stop()
			}
			return err
		}
		next = append(next, &protocolInstance{name: e.Protocol, opts: optionsString(e), base: base})
	}

	for _, p := range next {
		p.base.Start()
	}

	si.mu.Lock()
	old := si.protocols
	si.protocols = next
	si.mu.Unlock()

	for _, p := range old {
		p.base.Stop()
	}
	return nil
}

func (si *SmartInspect) buildProtocol(e siconn.Entry) (*siproto.Base, error) {
	lk := sioptions.New(e.Options)

	var base *siproto.Base
	var err error
	switch normalizeProtocolName(e.Protocol) {
	case "file":
		base, _, err = siproto.NewFileProtocol(lk)
	case "text":
		base, _, err = siproto.NewTextProtocol(lk)
	case "tcp":
		base, _, err = siproto.NewTCPProtocol(lk)
	case "pipe":
		base, _, err = siproto.NewPipeProtocol(lk)
	case "mem":
		base, _, err = siproto.NewMemoryProtocol(lk)
	default:
		return nil, &Error{Protocol: e.Protocol, Kind: KindConfiguration, Cause: fmt.Errorf("unknown protocol %q", e.Protocol)}
	}
	if err != nil {
		if _, ok := err.(*Error); !ok {
			err = &Error{Protocol: e.Protocol, Kind: KindConfiguration, Cause: err}
		}
		return nil, err
	}
	base.SetOptionsString(optionsString(e))
	base.OnError = si.OnError
	return base, nil
}

// Submit is the inbound entrypoint (spec.md §6): it fans p out to every
// configured protocol. Each protocol's own Submit decides whether this
// blocks (throttled async) or returns immediately.
func (si *SmartInspect) Submit(p sipacket.Packet) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	for _, pi := range si.protocols {
		pi.base.Submit(p)
	}
}

// Dispatch submits state as a custom Dispatch command to every protocol
// whose name matches protocolFilter, an exact protocol name or "*" for
// all (spec.md §6, grounded on pkg/minicli's literal-or-wildcard token
// matching).
func (si *SmartInspect) Dispatch(protocolFilter string, state interface{}) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	for _, pi := range si.protocols {
		if protocolFilter == "*" || protocolFilter == pi.name {
			pi.base.Dispatch(state)
		}
	}
}

// Close stops every configured protocol and clears the set.
func (si *SmartInspect) Close() {
	si.mu.Lock()
	old := si.protocols
	si.protocols = nil
	si.mu.Unlock()

	for _, p := range old {
		p.base.Stop()
	}
}

func normalizeProtocolName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func optionsString(e siconn.Entry) string {
	s := ""
	for k, v := range e.Options {
		if s != "" {
			s += ","
		}
		s += k + "=" + v
	}
	return s
}
