package siproto

import "fmt"

// Kind classifies an Error the way spec.md §7 does, so callers can decide
// whether it's worth surfacing to an operator or just counting it.
type Kind int

const (
	KindConfiguration Kind = iota
	KindConnect
	KindWrite
	KindQueueOverflow
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnect:
		return "connect"
	case KindWrite:
		return "write"
	case KindQueueOverflow:
		return "queue overflow"
	case KindClosed:
		return "closed"
	}
	return "unknown"
}

// Error is what the protocol layer hands back to a SmartInspect error
// callback: protocol name, its raw options string, and the underlying
// cause (spec.md §6, "error callback carrying (protocol name, options
// string, cause)").
type Error struct {
	Protocol string
	Options  string
	Kind     Kind
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("siproto: %s(%s): %s: %v", e.Protocol, e.Options, e.Kind, e.Cause)
	}
	return fmt.Sprintf("siproto: %s(%s): %s", e.Protocol, e.Options, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }
