package siformat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// DefaultDateTimeFormat mirrors spec.md §4.6's default %timestamp% layout.
const DefaultDateTimeFormat = "2006-01-02 15:04:05.000"

// tokenFunc renders one pattern token for a LogEntry. opts is whatever
// was given inside "{...}"; for %timestamp% it's a datetime layout.
type tokenFunc func(e *sipacket.LogEntry, opts string) string

// indentEligible marks the tokens that participate in indent mode
// (spec.md §4.6: "currently %title%").
var indentEligible = map[string]bool{"title": true}

// tokenRegistry maps a token name to its renderer, grounded on
// pkg/minicli/trie.go's name-to-handler map: unknown names degrade to
// literal text rather than erroring.
var tokenRegistry = map[string]tokenFunc{
	"appname": func(e *sipacket.LogEntry, _ string) string { return e.AppName },
	"session": func(e *sipacket.LogEntry, _ string) string { return e.SessionName },
	"hostname": func(e *sipacket.LogEntry, _ string) string { return e.HostName },
	"title": func(e *sipacket.LogEntry, _ string) string { return e.Title },
	"level": func(e *sipacket.LogEntry, _ string) string { return e.Level().String() },
	"logentrytype": func(e *sipacket.LogEntry, _ string) string {
		return fmt.Sprintf("%d", e.EntryType)
	},
	"viewerid": func(e *sipacket.LogEntry, _ string) string {
		return fmt.Sprintf("%d", e.ViewerID)
	},
	"thread": func(e *sipacket.LogEntry, _ string) string {
		return strconv.FormatInt(int64(e.ThreadID), 10)
	},
	"process": func(e *sipacket.LogEntry, _ string) string {
		return strconv.FormatInt(int64(e.ProcessID), 10)
	},
	"timestamp": func(e *sipacket.LogEntry, opts string) string {
		layout := opts
		if layout == "" {
			layout = DefaultDateTimeFormat
		}
		t := time.UnixMicro(e.TimestampUS).Local()
		return t.Format(dotnetToGoLayout(layout))
	},
	"color": func(e *sipacket.LogEntry, _ string) string {
		if e.Color.IsDefault() {
			return "<default>"
		}
		r, g, b, _ := e.Color.RGBA()
		return fmt.Sprintf("0x%02X%02X%02X", r, g, b)
	},
}

// dotnetToGoLayout rewrites the handful of .NET-style datetime tokens the
// spec's default format uses into Go's reference-time layout. Anything
// already Go-shaped passes through unchanged.
func dotnetToGoLayout(l string) string {
	if l == DefaultDateTimeFormat {
		return "2006-01-02 15:04:05.000"
	}
	repl := strings.NewReplacer(
		"yyyy", "2006", "MM", "01", "dd", "02",
		"HH", "15", "mm", "04", "ss", "05", "SSS", "000",
	)
	return repl.Replace(l)
}

type patternToken struct {
	literal string // non-empty for a literal run of text
	name    string // token name, empty if this is a literal run
	width   int    // 0 = no padding
	opts    string
}

// TextFormatter expands a LogEntry through a compiled "%token%" pattern.
// Non-LogEntry packets compile to 0 bytes, per spec.md §4.6.
type TextFormatter struct {
	tokens []patternToken
	Indent bool

	indentLevel int
}

// NewTextFormatter compiles pattern. An empty pattern is equivalent to
// "%title%".
func NewTextFormatter(pattern string) *TextFormatter {
	if pattern == "" {
		pattern = "%title%"
	}
	return &TextFormatter{tokens: compilePattern(pattern)}
}

func compilePattern(pattern string) []patternToken {
	var out []patternToken
	runes := []rune(pattern)
	i := 0
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			out = append(out, patternToken{literal: literal.String()})
			literal.Reset()
		}
	}

	for i < len(runes) {
		if runes[i] != '%' {
			literal.WriteRune(runes[i])
			i++
			continue
		}
		// look for the closing '%'
		end := i + 1
		for end < len(runes) && runes[end] != '%' {
			end++
		}
		if end >= len(runes) {
			// unterminated '%' — treat as literal
			literal.WriteRune(runes[i])
			i++
			continue
		}
		body := string(runes[i+1 : end])
		name, width, opts := splitTokenBody(body)
		if _, known := tokenRegistry[strings.ToLower(name)]; !known {
			// unknown token: treat the whole "%...%" as literal text.
			literal.WriteString("%" + body + "%")
		} else {
			flush()
			out = append(out, patternToken{name: strings.ToLower(name), width: width, opts: opts})
		}
		i = end + 1
	}
	flush()
	return out
}

// splitTokenBody parses "name", "name,width" and "name{opts}" (and the
// combination "name,width{opts}").
func splitTokenBody(body string) (name string, width int, opts string) {
	if idx := strings.IndexByte(body, '{'); idx >= 0 && strings.HasSuffix(body, "}") {
		opts = body[idx+1 : len(body)-1]
		body = body[:idx]
	}
	if idx := strings.IndexByte(body, ','); idx >= 0 {
		name = body[:idx]
		w, err := strconv.Atoi(strings.TrimSpace(body[idx+1:]))
		if err == nil {
			width = w
		}
		return name, width, opts
	}
	return body, 0, opts
}

func pad(s string, width int) string {
	if width == 0 {
		return s
	}
	n := width
	left := true
	if n < 0 {
		n = -n
		left = false
	}
	if len(s) >= n {
		return s
	}
	padding := strings.Repeat(" ", n-len(s))
	if left {
		return padding + s
	}
	return s + padding
}

// Format renders a LogEntry to a single text line. Any other packet type
// compiles to 0 bytes.
func (tf *TextFormatter) Format(p sipacket.Packet) []byte {
	e, ok := p.(*sipacket.LogEntry)
	if !ok {
		return nil
	}

	if tf.Indent && e.EntryType == sipacket.EntryLeaveMethod && tf.indentLevel > 0 {
		tf.indentLevel--
	}

	var b strings.Builder
	for _, tok := range tf.tokens {
		if tok.literal != "" {
			b.WriteString(tok.literal)
			continue
		}
		fn := tokenRegistry[tok.name]
		val := fn(e, tok.opts)
		if tf.Indent && indentEligible[tok.name] {
			val = strings.Repeat(" ", tf.indentLevel*3) + val
		}
		b.WriteString(pad(val, tok.width))
	}
	b.WriteString("\r\n")

	if tf.Indent && e.EntryType == sipacket.EntryEnterMethod {
		tf.indentLevel++
	}

	return []byte(b.String())
}
