package lsp

import (
	"strings"
	"unicode/utf8"
)

// offsetToPosition converts a byte offset to an LSP position. Characters
// are counted in UTF-16 code units.
func offsetToPosition(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return Position{Line: line, Character: utf16Len(text[lineStart:offset])}
}

// positionToOffset converts an LSP position to a byte offset, clamping to
// the end of the line or document.
func positionToOffset(text string, pos Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}

	units := 0
	for offset < len(text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		units += runeUTF16Len(r)
		offset += size
	}
	return offset
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUTF16Len(r)
	}
	return n
}

func runeUTF16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func toRange(text string, from, to int) Range {
	return Range{Start: offsetToPosition(text, from), End: offsetToPosition(text, to)}
}
