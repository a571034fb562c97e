// Package sipacket defines the typed log records that flow through the
// SmartInspect transport core: LogEntry, Watch, ControlCommand,
// ProcessFlow and LogHeader, plus the small enums each one carries.
package sipacket

import (
	"errors"
	"fmt"
)

// Level gates which packets a protocol will accept. Control always
// passes the gate regardless of a protocol's configured minimum.
type Level int

const (
	Debug Level = iota
	Verbose
	Message
	Warning
	Error
	Fatal
	Control
)

// ParseLevel returns the level for a case-insensitive enum name.
func ParseLevel(s string) (Level, error) {
	switch normalizeLevel(s) {
	case "debug":
		return Debug, nil
	case "verbose":
		return Verbose, nil
	case "message":
		return Message, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	case "fatal":
		return Fatal, nil
	case "control":
		return Control, nil
	}
	return Debug, errors.New("sipacket: invalid level: " + s)
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "Debug"
	case Verbose:
		return "Verbose"
	case Message:
		return "Message"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	case Control:
		return "Control"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func normalizeLevel(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
