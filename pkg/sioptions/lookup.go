// Package sioptions implements the typed option lookup table used by every
// protocol: a flat string-to-string map plus per-kind parsers (int, bool,
// level, size, timespan, color, bytes) with the exact fallback-to-default
// behavior spec.md §4.1 describes. Grounded on pkg/minilog/level.go's
// small, independently testable parse-function shape.
package sioptions

import (
	"strconv"
	"strings"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// Lookup is a typed view over a protocol's option=value pairs.
type Lookup struct {
	values map[string]string
}

// New wraps a parsed option map. A nil map is treated as empty.
func New(values map[string]string) *Lookup {
	if values == nil {
		values = map[string]string{}
	}
	return &Lookup{values: values}
}

// Has reports whether key was present in the connections string.
func (l *Lookup) Has(key string) bool {
	_, ok := l.values[key]
	return ok
}

// Keys returns the option names present, for isValidOption validation.
func (l *Lookup) Keys() []string {
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	return keys
}

func (l *Lookup) String(key, def string) string {
	if v, ok := l.values[key]; ok {
		return v
	}
	return def
}

// Int parses a non-negative decimal integer; any other input, including a
// negative number, falls back to def.
func (l *Lookup) Int(key string, def int) int {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Bool recognises "true", "1" and "yes" (case-insensitively) as true;
// everything else, including an absent key, is false unless def says
// otherwise.
func (l *Lookup) Bool(key string, def bool) bool {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (l *Lookup) Level(key string, def sipacket.Level) sipacket.Level {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	lvl, err := sipacket.ParseLevel(v)
	if err != nil {
		return def
	}
	return lvl
}

// Size parses a byte count with an optional binary KB/MB/GB suffix
// (1024-based). Falls back to def on any parse failure.
func (l *Lookup) Size(key string, def int64) int64 {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	n, ok2 := parseSize(v)
	if !ok2 {
		return def
	}
	return n
}

// Timespan parses a millisecond duration with an optional s/m/h/d suffix.
func (l *Lookup) Timespan(key string, def int64) int64 {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	n, ok2 := parseTimespan(v)
	if !ok2 {
		return def
	}
	return n
}

// Color parses a 0x/&H/$-prefixed hex color. Falls back to def (typically
// sipacket.NoColor) on any malformed input.
func (l *Lookup) Color(key string, def sipacket.Color) sipacket.Color {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	c, ok2 := parseColor(v)
	if !ok2 {
		return def
	}
	return c
}

// Bytes returns the raw UTF-8 bytes of the option value, left-padded with
// zero bytes (or right-truncated) to exactly n bytes.
func (l *Lookup) Bytes(key string, n int, def []byte) []byte {
	v, ok := l.values[key]
	if !ok {
		return def
	}
	raw := []byte(v)
	out := make([]byte, n)
	if len(raw) >= n {
		copy(out, raw[:n])
	} else {
		copy(out[n-len(raw):], raw)
	}
	return out
}

func parseSize(v string) (int64, bool) {
	mult := int64(1)
	lower := strings.ToLower(v)
	switch {
	case strings.HasSuffix(lower, "kb"):
		mult = 1024
		v = v[:len(v)-2]
	case strings.HasSuffix(lower, "mb"):
		mult = 1024 * 1024
		v = v[:len(v)-2]
	case strings.HasSuffix(lower, "gb"):
		mult = 1024 * 1024 * 1024
		v = v[:len(v)-2]
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

func parseTimespan(v string) (int64, bool) {
	mult := int64(1)
	if len(v) > 0 {
		switch v[len(v)-1] {
		case 's':
			mult = 1000
			v = v[:len(v)-1]
		case 'm':
			mult = 60 * 1000
			v = v[:len(v)-1]
		case 'h':
			mult = 60 * 60 * 1000
			v = v[:len(v)-1]
		case 'd':
			mult = 24 * 60 * 60 * 1000
			v = v[:len(v)-1]
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

func parseColor(v string) (sipacket.Color, bool) {
	hex := v
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		hex = v[2:]
	case strings.HasPrefix(v, "&H"), strings.HasPrefix(v, "&h"):
		hex = v[2:]
	case strings.HasPrefix(v, "$"):
		hex = v[1:]
	default:
		return sipacket.NoColor, false
	}

	if len(hex)%2 != 0 {
		hex = "0" + hex
	}

	switch len(hex) {
	case 6:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return sipacket.NoColor, false
		}
		r := byte(n >> 16)
		g := byte(n >> 8)
		b := byte(n)
		return sipacket.RGB(r, g, b), true
	case 8:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return sipacket.NoColor, false
		}
		a := byte(n >> 24)
		r := byte(n >> 16)
		g := byte(n >> 8)
		b := byte(n)
		return sipacket.ARGB(a, r, g, b), true
	default:
		return sipacket.NoColor, false
	}
}
