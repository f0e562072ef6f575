package scan

import "strings"

// Resolver maps a placeholder key to its value. ok is false when the key is
// unknown, in which case the placeholder is left in the output verbatim.
type Resolver func(key string) (value string, ok bool)

// Placeholder is a single [[Key]] occurrence.
type Placeholder struct {
	Key    string
	Offset int // byte offset of the opening "[["
}

// Raw returns the placeholder as it appears in template text.
func (p Placeholder) Raw() string {
	return "[[" + p.Key + "]]"
}

// placeholder scanner states
const (
	phText   = iota
	phOpen1  // seen "["
	phOpen2  // seen "[["
	phKey    // inside the key
	phClose1 // seen the first "]"
)

// walk drives the placeholder state machine over input, calling text for
// every literal run and key for every well-formed placeholder, in order.
func walk(input string, text func(string), key func(Placeholder)) {
	state := phText
	textStart := 0
	tokStart := 0

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch state {
		case phText:
			if c == '[' {
				tokStart = i
				state = phOpen1
			}
		case phOpen1:
			if c == '[' {
				state = phOpen2
			} else {
				state = phText
			}
		case phOpen2:
			switch {
			case IsKeyByte(c):
				state = phKey
			case c == '[':
				// "[[[": the token can only start at the last two brackets
				tokStart = i - 1
			default:
				state = phText
			}
		case phKey:
			switch {
			case IsKeyByte(c):
			case c == ']':
				state = phClose1
			case c == '[':
				tokStart = i
				state = phOpen1
			default:
				state = phText
			}
		case phClose1:
			switch c {
			case ']':
				if tokStart > textStart {
					text(input[textStart:tokStart])
				}
				key(Placeholder{Key: input[tokStart+2 : i-1], Offset: tokStart})
				textStart = i + 1
				state = phText
			case '[':
				tokStart = i
				state = phOpen1
			default:
				state = phText
			}
		}
	}

	if textStart < len(input) {
		text(input[textStart:])
	}
}

// Replace substitutes every [[Key]] in input using resolve. Unresolved and
// malformed placeholders are kept as literal text. Substituted values are
// written as-is and never scanned again.
func Replace(input string, resolve Resolver) string {
	if !strings.Contains(input, "[[") {
		return input
	}

	var out strings.Builder
	out.Grow(len(input))
	walk(input,
		func(s string) { out.WriteString(s) },
		func(p Placeholder) {
			if v, ok := resolve(p.Key); ok {
				out.WriteString(v)
				return
			}
			out.WriteString(p.Raw())
		},
	)
	return out.String()
}

// Placeholders returns every well-formed placeholder in input, in order.
func Placeholders(input string) []Placeholder {
	var found []Placeholder
	walk(input, func(string) {}, func(p Placeholder) {
		found = append(found, p)
	})
	return found
}

// Keys returns the distinct placeholder keys in input in order of first use.
func Keys(input string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range Placeholders(input) {
		if !seen[p.Key] {
			seen[p.Key] = true
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// IsKeyByte reports whether c may appear in a placeholder key.
func IsKeyByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
