package sipacket

// ProcessFlow marks an enter/leave transition for a method, thread or
// process; used to drive Console call-stack indentation.
type ProcessFlow struct {
	FlowType    ProcessFlowType
	Title       string
	HostName    string
	ProcessID   int32
	ThreadID    int32
	TimestampUS int64

	level Level
}

func NewProcessFlow(level Level) *ProcessFlow {
	return &ProcessFlow{level: level}
}

func (p *ProcessFlow) PacketType() Type { return TypeProcessFlow }
func (p *ProcessFlow) Level() Level     { return p.level }

func (p *ProcessFlow) Size() uint32 {
	n := packetHeaderOverhead
	n += stringBytes(p.Title)
	n += stringBytes(p.HostName)
	return uint32(n)
}
