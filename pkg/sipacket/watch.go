package sipacket

// Watch reports the current value of a named variable.
type Watch struct {
	WatchType   WatchType
	Name        string
	Value       string
	TimestampUS int64

	level Level
}

func NewWatch(level Level) *Watch {
	return &Watch{level: level}
}

func (w *Watch) PacketType() Type { return TypeWatch }
func (w *Watch) Level() Level     { return w.level }

func (w *Watch) Size() uint32 {
	n := packetHeaderOverhead
	n += stringBytes(w.Name)
	n += stringBytes(w.Value)
	return uint32(n)
}
