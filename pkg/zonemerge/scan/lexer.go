package scan

import (
	"fmt"
	"unicode/utf8"
)

const (
	// TagPrefix is the prefix shared by every zone and row delimiter.
	TagPrefix = "ls_"
	// RowName is the reserved tag name for repeating-row blocks.
	RowName = "row"
)

// Kind identifies the type of a lexed token
type Kind int

const (
	Text Kind = iota
	ZoneOpen
	ZoneClose
	RowOpen
	RowClose
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "Text"
	case ZoneOpen:
		return "ZoneOpen"
	case ZoneClose:
		return "ZoneClose"
	case RowOpen:
		return "RowOpen"
	case RowClose:
		return "RowClose"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position locates a token in the source text. Line and Column are 1-based;
// Column counts runes, Offset counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a run of text or a single delimiter tag.
type Token struct {
	Kind Kind
	// Value is the text for Text tokens and the zone name for zone tags.
	Value string
	// Raw is the exact source slice the token was lexed from.
	Raw string
	Pos Position
}

// Lex splits input into text runs and delimiter tags. Adjacent text is always
// merged into a single Text token, and input that merely resembles a tag
// (for example "<ls_>" or "<ls_a b>") stays inside the surrounding text.
func Lex(input string) []Token {
	var tokens []Token
	pos := &tracker{src: input, line: 1, col: 1}
	textStart := 0

	for i := 0; i < len(input); {
		if input[i] != '<' {
			i++
			continue
		}
		kind, name, end, ok := matchTag(input, i)
		if !ok {
			i++
			continue
		}
		if i > textStart {
			tokens = append(tokens, Token{
				Kind:  Text,
				Value: input[textStart:i],
				Raw:   input[textStart:i],
				Pos:   pos.at(textStart),
			})
		}
		tokens = append(tokens, Token{
			Kind:  kind,
			Value: name,
			Raw:   input[i:end],
			Pos:   pos.at(i),
		})
		i = end
		textStart = end
	}

	if textStart < len(input) {
		tokens = append(tokens, Token{
			Kind:  Text,
			Value: input[textStart:],
			Raw:   input[textStart:],
			Pos:   pos.at(textStart),
		})
	}
	return tokens
}

// tag matcher states
const (
	tagStart = iota
	tagSlash
	tagPrefix
	tagName
)

// matchTag tries to read a delimiter tag starting at input[start] == '<'.
// It returns the tag kind, the name, and the offset just past '>'.
func matchTag(input string, start int) (Kind, string, int, bool) {
	state := tagStart
	closing := false
	prefixSeen := 0
	nameStart := 0

	for i := start + 1; i < len(input); i++ {
		c := input[i]
		switch state {
		case tagStart:
			if c == '/' {
				closing = true
				state = tagSlash
				continue
			}
			fallthrough
		case tagSlash:
			if c != TagPrefix[0] {
				return Text, "", 0, false
			}
			prefixSeen = 1
			state = tagPrefix
		case tagPrefix:
			if c != TagPrefix[prefixSeen] {
				return Text, "", 0, false
			}
			prefixSeen++
			if prefixSeen == len(TagPrefix) {
				nameStart = i + 1
				state = tagName
			}
		case tagName:
			if c == '>' {
				name := input[nameStart:i]
				if name == "" {
					return Text, "", 0, false
				}
				return tagKind(name, closing), name, i + 1, true
			}
			if !IsNameByte(c) {
				return Text, "", 0, false
			}
		}
	}
	return Text, "", 0, false
}

func tagKind(name string, closing bool) Kind {
	switch {
	case name == RowName && closing:
		return RowClose
	case name == RowName:
		return RowOpen
	case closing:
		return ZoneClose
	default:
		return ZoneOpen
	}
}

// IsNameByte reports whether c may appear in a zone name.
func IsNameByte(c byte) bool {
	return IsKeyByte(c) || c == '-' || c == '.'
}

// OpenTag returns the opening delimiter for the named zone.
func OpenTag(name string) string {
	return "<" + TagPrefix + name + ">"
}

// CloseTag returns the closing delimiter for the named zone.
func CloseTag(name string) string {
	return "</" + TagPrefix + name + ">"
}

// tracker converts byte offsets to line/column positions. Offsets must be
// requested in non-decreasing order.
type tracker struct {
	src  string
	off  int
	line int
	col  int
}

func (t *tracker) at(offset int) Position {
	for t.off < offset {
		r, size := utf8.DecodeRuneInString(t.src[t.off:])
		if r == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		t.off += size
	}
	return Position{Offset: offset, Line: t.line, Column: t.col}
}
