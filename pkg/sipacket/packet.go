package sipacket

// Type tags the wire layout of a packet. Values are part of the wire
// contract (they are written as a little-endian uint16) and must never be
// renumbered.
type Type uint16

const (
	TypeControlCommand Type = 1
	TypeLogEntry       Type = 2
	TypeWatch          Type = 3
	TypeProcessFlow    Type = 4
	TypeLogHeader      Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeControlCommand:
		return "ControlCommand"
	case TypeLogEntry:
		return "LogEntry"
	case TypeWatch:
		return "Watch"
	case TypeProcessFlow:
		return "ProcessFlow"
	case TypeLogHeader:
		return "LogHeader"
	}
	return "Unknown"
}

// SchedulerOverhead is the constant SchedulerCommand management overhead per
// spec.md §3, added on top of a packet's own Size() by the scheduler.
const SchedulerOverhead = 24

// Packet is the common operation set every packet variant implements.
// packetType is fixed at construction and never mutates afterward.
type Packet interface {
	PacketType() Type
	Level() Level
	// Size returns the in-memory footprint, including per-type overhead
	// and the UTF-8 byte length of any string fields. Stable once all
	// fields are set.
	Size() uint32
}

// stringBytes returns the UTF-8 byte length of a packet string field. Go
// strings are always valid to range over as bytes; len() already counts
// UTF-8 bytes, not runes, so this is just len() with an intention-revealing
// name matching how the spec talks about "string UTF-8 byte lengths".
func stringBytes(s string) int {
	return len(s)
}

// packetHeaderOverhead approximates the fixed bookkeeping every packet
// variant pays beyond its fields (type tag, length prefixes, etc.), per
// spec.md §3's "computed in-memory size including per-type overhead".
const packetHeaderOverhead = 24
