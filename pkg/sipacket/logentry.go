package sipacket

// LogEntry is the workhorse packet: a titled, timestamped message
// optionally carrying opaque viewer data (source code, binary dumps,
// rendered objects, ...).
type LogEntry struct {
	EntryType   LogEntryType
	ViewerID    ViewerID
	AppName     string
	SessionName string
	Title       string
	HostName    string
	Data        []byte
	ProcessID   int32
	ThreadID    int32
	TimestampUS int64 // UTC microseconds since the Unix epoch
	Color       Color

	level Level
}

// NewLogEntry constructs a LogEntry at the given level. level determines
// where it sits in the Debug..Fatal ordering for protocol-level gating;
// EntryType is the Console-facing sub-kind (Message, Warning, ...) and is
// set independently by the caller.
func NewLogEntry(level Level) *LogEntry {
	return &LogEntry{level: level, ViewerID: NoViewer}
}

func (e *LogEntry) PacketType() Type { return TypeLogEntry }
func (e *LogEntry) Level() Level     { return e.level }

// Size returns the in-memory footprint per spec.md §3: per-type overhead
// plus the UTF-8 byte length of every string field.
func (e *LogEntry) Size() uint32 {
	n := packetHeaderOverhead
	n += stringBytes(e.AppName)
	n += stringBytes(e.SessionName)
	n += stringBytes(e.Title)
	n += stringBytes(e.HostName)
	n += len(e.Data)
	return uint32(n)
}
