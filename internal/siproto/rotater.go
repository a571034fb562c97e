package siproto

import (
	"strings"
	"time"
)

// RotateMode selects the time-bucket granularity FileRotater watches.
type RotateMode int

const (
	RotateNone RotateMode = iota
	RotateHourly
	RotateDaily
	RotateWeekly
	RotateMonthly
)

// ParseRotateMode parses the case-insensitive `rotate` option value.
func ParseRotateMode(s string) RotateMode {
	switch strings.ToLower(s) {
	case "hourly":
		return RotateHourly
	case "daily":
		return RotateDaily
	case "weekly":
		return RotateWeekly
	case "monthly":
		return RotateMonthly
	default:
		return RotateNone
	}
}

// FileRotater tracks which coarse time bucket now falls into and reports
// whether it changed since the last observation (spec.md §3, §4.7).
type FileRotater struct {
	Mode   RotateMode
	bucket int64
	init   bool
}

// Update reports whether now's bucket differs from the last-seen one
// (always true on the very first call, when no bucket has been recorded
// yet), and records the new bucket.
func (r *FileRotater) Update(now time.Time) bool {
	if r.Mode == RotateNone {
		return false
	}
	b := bucketFor(r.Mode, now)
	changed := !r.init || b != r.bucket
	r.bucket = b
	r.init = true
	return changed
}

func bucketFor(mode RotateMode, now time.Time) int64 {
	u := now.UTC()
	switch mode {
	case RotateHourly:
		return u.Unix() / 3600
	case RotateDaily:
		return u.Unix() / 86400
	case RotateWeekly:
		days := u.Unix() / 86400
		// Unix epoch (1970-01-01) was a Thursday; shift to a Monday anchor.
		return (days + 3) / 7
	case RotateMonthly:
		return int64(u.Year())*12 + int64(u.Month())
	default:
		return 0
	}
}
