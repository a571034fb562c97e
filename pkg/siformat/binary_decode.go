package siformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// Decode parses one complete wire frame. It exists so this module's own
// test suite can exercise the wire round-trip invariant (spec.md §8,
// invariant 1); the SmartInspect Console is the format's only normative
// production reader.
func Decode(frame []byte) (sipacket.Packet, error) {
	r := bytes.NewReader(frame)

	var typ uint16
	if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
		return nil, err
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	switch sipacket.Type(typ) {
	case sipacket.TypeLogEntry:
		return decodeLogEntry(pr)
	case sipacket.TypeControlCommand:
		return decodeControlCommand(pr)
	case sipacket.TypeWatch:
		return decodeWatch(pr)
	case sipacket.TypeProcessFlow:
		return decodeProcessFlow(pr)
	case sipacket.TypeLogHeader:
		return decodeLogHeader(pr)
	default:
		return nil, fmt.Errorf("siformat: unknown packet type %d", typ)
	}
}

func r32(r *bytes.Reader) uint32 {
	var v uint32
	binary.Read(r, binary.LittleEndian, &v)
	return v
}

func ri32(r *bytes.Reader) int32 {
	var v int32
	binary.Read(r, binary.LittleEndian, &v)
	return v
}

func rf64(r *bytes.Reader) float64 {
	var v float64
	binary.Read(r, binary.LittleEndian, &v)
	return v
}

func readString(r *bytes.Reader, n uint32) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	io.ReadFull(r, b)
	return string(b)
}

func readBytes(r *bytes.Reader, n uint32) []byte {
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	io.ReadFull(r, b)
	return b
}

func decodeLogEntry(r *bytes.Reader) (*sipacket.LogEntry, error) {
	entryType := sipacket.LogEntryType(ri32(r))
	viewerID := sipacket.ViewerID(ri32(r))
	lenApp := r32(r)
	lenSession := r32(r)
	lenTitle := r32(r)
	lenHost := r32(r)
	lenData := r32(r)
	pid := ri32(r)
	tid := ri32(r)
	ts := rf64(r)
	color := r32(r)

	e := sipacket.NewLogEntry(sipacket.Message)
	e.EntryType = entryType
	e.ViewerID = viewerID
	e.AppName = readString(r, lenApp)
	e.SessionName = readString(r, lenSession)
	e.Title = readString(r, lenTitle)
	e.HostName = readString(r, lenHost)
	e.Data = readBytes(r, lenData)
	e.ProcessID = pid
	e.ThreadID = tid
	e.TimestampUS = sipacket.DecodeTimestamp(ts)
	e.Color = sipacket.DecodeColor(color)
	return e, nil
}

func decodeControlCommand(r *bytes.Reader) (*sipacket.ControlCommand, error) {
	ctype := sipacket.ControlCommandType(ri32(r))
	lenData := r32(r)
	c := sipacket.NewControlCommand(ctype)
	c.Data = readBytes(r, lenData)
	return c, nil
}

func decodeWatch(r *bytes.Reader) (*sipacket.Watch, error) {
	lenName := r32(r)
	lenValue := r32(r)
	wtype := sipacket.WatchType(ri32(r))
	ts := rf64(r)
	w := sipacket.NewWatch(sipacket.Message)
	w.WatchType = wtype
	w.TimestampUS = sipacket.DecodeTimestamp(ts)
	w.Name = readString(r, lenName)
	w.Value = readString(r, lenValue)
	return w, nil
}

func decodeProcessFlow(r *bytes.Reader) (*sipacket.ProcessFlow, error) {
	ftype := sipacket.ProcessFlowType(ri32(r))
	lenTitle := r32(r)
	lenHost := r32(r)
	pid := ri32(r)
	tid := ri32(r)
	ts := rf64(r)
	p := sipacket.NewProcessFlow(sipacket.Message)
	p.FlowType = ftype
	p.ProcessID = pid
	p.ThreadID = tid
	p.TimestampUS = sipacket.DecodeTimestamp(ts)
	p.Title = readString(r, lenTitle)
	p.HostName = readString(r, lenHost)
	return p, nil
}

func decodeLogHeader(r *bytes.Reader) (*sipacket.LogHeader, error) {
	lenContent := r32(r)
	return &sipacket.LogHeader{Content: readString(r, lenContent)}, nil
}
