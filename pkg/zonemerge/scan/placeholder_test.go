package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapResolver(m map[string]string) Resolver {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestReplace(t *testing.T) {
	values := map[string]string{
		"Name":     "Ann",
		"Order_ID": "42",
		"x1":       "X",
		"Loop":     "[[Name]]",
		"Empty":    "",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text", input: "Hello World", want: "Hello World"},
		{name: "single key", input: "Hi [[Name]]!", want: "Hi Ann!"},
		{name: "adjacent keys", input: "[[Name]][[x1]]", want: "AnnX"},
		{name: "underscore and digits", input: "#[[Order_ID]]", want: "#42"},
		{name: "unresolved key kept", input: "Hi [[Nobody]]", want: "Hi [[Nobody]]"},
		{name: "empty value", input: "a[[Empty]]b", want: "ab"},
		{name: "empty brackets", input: "[[]]", want: "[[]]"},
		{name: "space in key", input: "[[First Name]]", want: "[[First Name]]"},
		{name: "unclosed", input: "Hi [[Name", want: "Hi [[Name"},
		{name: "single closing bracket", input: "Hi [[Name]", want: "Hi [[Name]"},
		{name: "stray closers", input: "]] [[Name]] ]]", want: "]] Ann ]]"},
		{name: "triple open", input: "[[[Name]]", want: "[Ann"},
		{name: "triple close", input: "[[Name]]]", want: "Ann]"},
		{name: "restart inside key", input: "[[ab[[Name]]", want: "[[abAnn"},
		{name: "restart after single close", input: "[[ab][[Name]]", want: "[[ab]Ann"},
		{name: "single brackets", input: "[Name]", want: "[Name]"},
		{name: "value is not rescanned", input: "[[Loop]]", want: "[[Name]]"},
		{name: "case sensitive", input: "[[name]]", want: "[[name]]"},
		{name: "multiline", input: "a\n[[Name]]\nb", want: "a\nAnn\nb"},
		{name: "unicode around key", input: "héllo [[Name]] ✓", want: "héllo Ann ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Replace(tt.input, mapResolver(values)))
		})
	}
}

func TestReplaceNoResolutions(t *testing.T) {
	input := "[[A]] and [[B]] and [[ C ]]"
	got := Replace(input, func(string) (string, bool) { return "", false })
	assert.Equal(t, input, got)
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("x [[A]] y [[B_2]] [[bad key]] [[A]]")
	assert.Equal(t, []Placeholder{
		{Key: "A", Offset: 2},
		{Key: "B_2", Offset: 10},
		{Key: "A", Offset: 30},
	}, got)
	assert.Equal(t, "[[B_2]]", got[1].Raw())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Keys("[[A]][[B]][[A]]"))
	assert.Empty(t, Keys("no placeholders"))
}
