package sipacket

import "strings"

// LogHeader carries metadata as CRLF-separated "key=value" pairs. It is
// emitted automatically by a protocol right after every (re)connect.
type LogHeader struct {
	Content string
}

// NewLogHeader serializes pairs, in order, as "k=v\r\n..." per spec.md §3.
func NewLogHeader(pairs ...[2]string) *LogHeader {
	var b strings.Builder
	for _, kv := range pairs {
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(kv[1])
		b.WriteString("\r\n")
	}
	return &LogHeader{Content: b.String()}
}

// ConnectHeader builds the LogHeader a protocol writes on every successful
// (re)connect, per spec.md §4.4.
func ConnectHeader(hostname, appName string) *LogHeader {
	return NewLogHeader(
		[2]string{"hostname", hostname},
		[2]string{"appname", appName},
	)
}

func (h *LogHeader) PacketType() Type { return TypeLogHeader }
func (h *LogHeader) Level() Level     { return Control }

func (h *LogHeader) Size() uint32 {
	return uint32(packetHeaderOverhead + stringBytes(h.Content))
}
