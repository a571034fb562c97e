package siconn

import "testing"

func TestParseS1(t *testing.T) {
	in := `file(filename="c:\a.sil", append=true), tcp(host=10.0.0.1,port=4228)`
	entries, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	if entries[0].Protocol != "file" {
		t.Errorf("entries[0].Protocol = %q, want file", entries[0].Protocol)
	}
	if entries[0].Options["filename"] != `c:\a.sil` {
		t.Errorf("filename = %q", entries[0].Options["filename"])
	}
	if entries[0].Options["append"] != "true" {
		t.Errorf("append = %q", entries[0].Options["append"])
	}

	if entries[1].Protocol != "tcp" {
		t.Errorf("entries[1].Protocol = %q, want tcp", entries[1].Protocol)
	}
	if entries[1].Options["host"] != "10.0.0.1" {
		t.Errorf("host = %q", entries[1].Options["host"])
	}
	if entries[1].Options["port"] != "4228" {
		t.Errorf("port = %q", entries[1].Options["port"])
	}
}

func TestParseQuoteEscaping(t *testing.T) {
	entries, err := Parse(`file(filename="a ""quoted"" value")`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := `a "quoted" value`
	if got := entries[0].Options["filename"]; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
}

func TestParseMissingCloseParen(t *testing.T) {
	_, err := Parse("file(filename=a.sil")
	if err == nil {
		t.Fatal("expected error for missing ')'")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if pe.Pos != len("file(filename=a.sil") {
		t.Errorf("Pos = %d, want %d", pe.Pos, len("file(filename=a.sil"))
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`tcp(host="10.0.0.1)`)
	if err == nil {
		t.Fatal("expected error for unterminated quote")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if pe.Protocol != "tcp" {
		t.Errorf("Protocol = %q, want tcp", pe.Protocol)
	}
}

func TestParseEmptyOptions(t *testing.T) {
	entries, err := Parse("mem()")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Protocol != "mem" {
		t.Fatalf("entries = %+v", entries)
	}
	if len(entries[0].Options) != 0 {
		t.Errorf("expected no options, got %v", entries[0].Options)
	}
}
