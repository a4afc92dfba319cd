// Package wikilink implements the bracket-pipe-bracket link grammar:
//
//	[[target]]
//	[[target|alias]]
//
// Offsets are byte offsets. Scanning is line-oriented; callers decide which
// regions of a document (for example, outside code) are scanned at all.
package wikilink

import "strings"

const (
	Open  = "[["
	Close = "]]"
	Pipe  = '|'
)

// Token describes the parts of one link found in a line. All offsets are
// relative to the scanned string. PipeAt is -1 when the link has no alias.
type Token struct {
	Start       int
	End         int
	TargetStart int
	TargetEnd   int
	PipeAt      int
	AliasStart  int
	AliasEnd    int
}

// HasAlias reports whether the link carries a pipe separator.
func (t Token) HasAlias() bool { return t.PipeAt >= 0 }

// Parse splits an exact link literal into target and alias. A literal without
// a pipe, without the closing pair, or with another opening pair inside it
// yields two empty strings.
func Parse(s string) (target, alias string) {
	if len(s) < len(Open)+len(Close) || !strings.HasPrefix(s, Open) || !strings.HasSuffix(s, Close) {
		return "", ""
	}
	inner := s[len(Open) : len(s)-len(Close)]
	if strings.Contains(inner, Open) || strings.Contains(inner, Close) {
		return "", ""
	}
	p := strings.IndexByte(inner, Pipe)
	if p < 0 {
		return "", ""
	}
	return inner[:p], inner[p+1:]
}

// ScanAt scans a link whose opening pair starts at start. The target must be
// non-empty and neither part may contain '[' or a line break.
func ScanAt(line string, start int) (Token, bool) {
	if start < 0 || start+1 >= len(line) || line[start] != '[' || line[start+1] != '[' {
		return Token{}, false
	}

	tok := Token{Start: start, TargetStart: start + len(Open), PipeAt: -1}
	for i := tok.TargetStart; i < len(line); i++ {
		switch line[i] {
		case '\n', '[':
			return Token{}, false
		case Pipe:
			if tok.PipeAt < 0 {
				tok.PipeAt = i
			}
		case ']':
			if i+1 >= len(line) || line[i+1] != ']' {
				return Token{}, false
			}
			tok.End = i + len(Close)
			if tok.PipeAt >= 0 {
				tok.TargetEnd = tok.PipeAt
				tok.AliasStart = tok.PipeAt + 1
				tok.AliasEnd = i
			} else {
				tok.TargetEnd = i
			}
			if tok.TargetEnd == tok.TargetStart {
				return Token{}, false
			}
			return tok, true
		}
	}
	return Token{}, false
}

// FindAll returns every link in line from left to right. Matches preceded by
// '[' are skipped so array syntax like [[[ref]]] is not read as a link.
func FindAll(line string) []Token {
	var out []Token
	i := 0
	for i < len(line) {
		next := strings.Index(line[i:], Open)
		if next < 0 {
			break
		}
		i += next
		if i > 0 && line[i-1] == '[' {
			i++
			continue
		}
		tok, ok := ScanAt(line, i)
		if !ok {
			i++
			continue
		}
		out = append(out, tok)
		i = tok.End
	}
	return out
}
