package zonemerge

import (
	"strings"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge/scan"
)

// Merge renders t with in. Keys are looked up in the globals first and in the
// enclosing scope second; unresolved placeholders are left untouched.
func Merge(t *Template, in *MergeInput) (string, error) {
	return DefaultEngine.Merge(t, in)
}

// renderContext holds the per-merge state. It is never shared between merges.
type renderContext struct {
	input  *MergeInput
	logger *Logger
	debug  bool
}

func merge(t *Template, in *MergeInput, logger *Logger) (string, error) {
	if t == nil {
		return "", &NotLoadedError{What: "template"}
	}
	if in == nil {
		return "", &NotLoadedError{What: "input data"}
	}

	ctx := &renderContext{
		input:  in,
		logger: logger,
		debug:  logger.Enabled(LogDebug),
	}

	var out strings.Builder
	out.Grow(len(t.source))
	for _, seg := range t.segments {
		ctx.renderSegment(&out, seg)
	}
	return out.String(), nil
}

func (c *renderContext) renderSegment(out *strings.Builder, seg Segment) {
	switch s := seg.(type) {
	case *PlainText:
		out.WriteString(c.substitute(s.Content, nil))
	case *Zone:
		c.renderZone(out, s)
	case *Row:
		// Not produced at the top level by Parse; rendered like plain text.
		out.WriteString(c.substitute(s.Content, nil))
	}
}

func (c *renderContext) renderZone(out *strings.Builder, zone *Zone) {
	var directive ZoneDirective
	if !zone.Duplicate {
		directive, _ = c.input.Directive(zone.Name)
	}

	if c.debug {
		c.logger.WithFields(Fields{
			"zone":   zone.Name,
			"delete": directive.Delete,
			"rows":   len(directive.Array),
		}).Debug("Rendering zone")
	}

	if directive.Delete {
		return
	}

	for _, seg := range zone.Body {
		switch s := seg.(type) {
		case *PlainText:
			out.WriteString(c.substitute(s.Content, directive.Keys))
		case *Row:
			if !directive.HasArray() {
				out.WriteString(c.substitute(s.Content, directive.Keys))
				continue
			}
			for _, entry := range directive.Array {
				out.WriteString(c.substitute(s.Content, entry))
			}
		}
	}
}

// substitute replaces placeholders in text from the globals, then local.
func (c *renderContext) substitute(text string, local map[string]string) string {
	return scan.Replace(text, func(key string) (string, bool) {
		if v, ok := c.input.Globals[key]; ok {
			return v, true
		}
		if v, ok := local[key]; ok {
			return v, true
		}
		if c.debug {
			c.logger.WithField("key", key).Debug("Unresolved placeholder left in output")
		}
		return "", false
	})
}
