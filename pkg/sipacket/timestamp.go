package sipacket

// Timestamps are recorded as UTC microseconds since the Unix epoch. The
// wire format (spec.md §4.5) encodes them as an IEEE-754 double counting
// days + fraction-of-day since 1899-12-30, the OLE Automation Date epoch
// the Console reader expects. Per spec.md §9's open question, this module
// does not attempt to reproduce the original local-time-adjusted
// microsecond math; it records UTC and applies the shift only in the
// formatter, documented here rather than guessed at.
const (
	microsPerDay         = 86_400_000_000
	automationDateOffset = 25569.0 // days between 1899-12-30 and 1970-01-01
)

// EncodeTimestamp converts UTC microseconds since the Unix epoch into the
// double the wire format expects.
func EncodeTimestamp(micros int64) float64 {
	days := float64(micros/microsPerDay) + automationDateOffset
	frac := float64(micros%microsPerDay) / float64(microsPerDay)
	return days + frac
}

// DecodeTimestamp inverts EncodeTimestamp.
func DecodeTimestamp(v float64) int64 {
	days := v - automationDateOffset
	return int64(days * microsPerDay)
}
