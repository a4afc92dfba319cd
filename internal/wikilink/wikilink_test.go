package wikilink

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in         string
		wantTarget string
		wantAlias  string
	}{
		{in: "[[A|B]]", wantTarget: "A", wantAlias: "B"},
		{in: "[[people/freya|@Freya]]", wantTarget: "people/freya", wantAlias: "@Freya"},
		{in: "[[A|]]", wantTarget: "A", wantAlias: ""},
		{in: "[[A|B|C]]", wantTarget: "A", wantAlias: "B|C"},
		{in: "[[A]]"},
		{in: "[[A|B"},
		{in: "A|B]]"},
		{in: "[[A|[[B]]"},
		{in: "[[A]]|B]]"},
		{in: ""},
		{in: "[[]]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			target, alias := Parse(tt.in)
			if target != tt.wantTarget || alias != tt.wantAlias {
				t.Fatalf("Parse(%q) = (%q, %q), want (%q, %q)", tt.in, target, alias, tt.wantTarget, tt.wantAlias)
			}
		})
	}
}

func TestScanAt(t *testing.T) {
	line := `x [[people/freya|Freya]] y`
	tok, ok := ScanAt(line, 2)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if got := line[tok.Start:tok.End]; got != "[[people/freya|Freya]]" {
		t.Fatalf("literal = %q", got)
	}
	if got := line[tok.TargetStart:tok.TargetEnd]; got != "people/freya" {
		t.Fatalf("target = %q", got)
	}
	if !tok.HasAlias() || line[tok.PipeAt] != '|' {
		t.Fatalf("expected pipe at %d", tok.PipeAt)
	}
	if got := line[tok.AliasStart:tok.AliasEnd]; got != "Freya" {
		t.Fatalf("alias = %q", got)
	}
}

func TestScanAtRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "no opener", line: "people"},
		{name: "unclosed", line: "[[people"},
		{name: "single close", line: "[[people]"},
		{name: "nested opener", line: "[[a [[b]]"},
		{name: "line break", line: "[[a\nb]]"},
		{name: "empty target", line: "[[|alias]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ScanAt(tt.line, 0); ok {
				t.Fatalf("expected ScanAt(%q) to fail", tt.line)
			}
		})
	}
}

func TestFindAll(t *testing.T) {
	line := "See [[a]] and [[b|B]] and [[[c]]]"
	toks := FindAll(line)
	if len(toks) != 2 {
		t.Fatalf("expected 2 links, got %d", len(toks))
	}
	if toks[0].HasAlias() {
		t.Error("first link should have no alias")
	}
	if got := line[toks[1].AliasStart:toks[1].AliasEnd]; got != "B" {
		t.Errorf("alias = %q, want B", got)
	}
}
