// Package siconn implements the connections-string mini-language from
// spec.md §4.1: "name(k=v,...),name(k=v,...)" — a hand-rolled
// recursive-descent scanner over runes, grounded on pkg/minicli's own
// tokenizer (quote and escape handling, no parser-combinator library).
package siconn

import (
	"fmt"
)

// Entry is one parsed "name(options)" clause.
type Entry struct {
	Protocol string
	Options  map[string]string
}

// ParseError carries the rune position (or, for unterminated quotes, the
// protocol name) of a malformed connections string, per spec.md §4.1.
type ParseError struct {
	Pos      int
	Protocol string
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Protocol != "" {
		return fmt.Sprintf("siconn: %s (protocol %q)", e.Msg, e.Protocol)
	}
	return fmt.Sprintf("siconn: %s (position %d)", e.Msg, e.Pos)
}

// Parse splits a connections string into its protocol entries.
func Parse(s string) ([]Entry, error) {
	p := &parser{runes: []rune(s)}
	return p.entries()
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) entries() ([]Entry, error) {
	var out []Entry
	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		e, err := p.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		p.skipSpace()
		if p.atEnd() {
			break
		}
		if p.peek() != ',' {
			return nil, &ParseError{Pos: p.pos, Msg: "expected ',' between entries"}
		}
		p.pos++ // consume ','
	}
	return out, nil
}

func (p *parser) entry() (Entry, error) {
	name := p.ident()
	p.skipSpace()
	if p.atEnd() || p.peek() != '(' {
		return Entry{}, &ParseError{Pos: p.pos, Msg: "expected '('"}
	}
	p.pos++ // consume '('

	opts := map[string]string{}
	p.skipSpace()
	if !p.atEnd() && p.peek() != ')' {
		for {
			key, value, err := p.pair(name)
			if err != nil {
				return Entry{}, err
			}
			opts[key] = value
			p.skipSpace()
			if p.atEnd() {
				return Entry{}, &ParseError{Pos: p.pos, Msg: "expected ')'"}
			}
			if p.peek() == ',' {
				p.pos++
				p.skipSpace()
				continue
			}
			break
		}
	}

	if p.atEnd() || p.peek() != ')' {
		return Entry{}, &ParseError{Pos: p.pos, Msg: "expected ')'"}
	}
	p.pos++ // consume ')'

	return Entry{Protocol: trimSpace(name), Options: opts}, nil
}

func (p *parser) pair(protocol string) (key, value string, err error) {
	key = trimSpace(p.ident())
	p.skipSpace()
	if p.atEnd() || p.peek() != '=' {
		return "", "", &ParseError{Pos: p.pos, Msg: "expected '=' in option"}
	}
	p.pos++ // consume '='
	p.skipSpace()

	if !p.atEnd() && p.peek() == '"' {
		v, err := p.quoted(protocol)
		if err != nil {
			return "", "", err
		}
		return key, v, nil
	}

	return key, trimSpace(p.unquoted()), nil
}

// ident reads up to the first '(', ')', '=' or ',' — used both for
// protocol names and option keys.
func (p *parser) ident() string {
	start := p.pos
	for !p.atEnd() {
		r := p.peek()
		if r == '(' || r == ')' || r == '=' || r == ',' {
			break
		}
		p.pos++
	}
	return string(p.runes[start:p.pos])
}

// unquoted reads a raw value up to the first unescaped ',' or ')'.
func (p *parser) unquoted() string {
	start := p.pos
	for !p.atEnd() {
		r := p.peek()
		if r == ',' || r == ')' {
			break
		}
		p.pos++
	}
	return string(p.runes[start:p.pos])
}

// quoted reads a double-quoted value where "" encodes a literal quote.
func (p *parser) quoted(protocol string) (string, error) {
	p.pos++ // consume opening '"'
	var out []rune
	for {
		if p.atEnd() {
			return "", &ParseError{Protocol: protocol, Msg: "unterminated quoted value"}
		}
		r := p.peek()
		if r == '"' {
			p.pos++
			if !p.atEnd() && p.peek() == '"' {
				out = append(out, '"')
				p.pos++
				continue
			}
			return string(out), nil
		}
		out = append(out, r)
		p.pos++
	}
}

func (p *parser) skipSpace() {
	for !p.atEnd() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *parser) atEnd() bool { return p.pos >= len(p.runes) }
func (p *parser) peek() rune  { return p.runes[p.pos] }

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
