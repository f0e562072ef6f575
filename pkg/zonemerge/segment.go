package zonemerge

import (
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge/scan"
)

// Segment is one piece of a parsed template. The set of implementations is
// closed: *PlainText, *Zone and *Row.
type Segment interface {
	String() string
	segment()
}

// PlainText is literal template text outside any row. At the top level it is
// rendered with global keys only; inside a zone it also sees the zone's keys.
type PlainText struct {
	Content string
}

func (*PlainText) segment() {}

func (s *PlainText) String() string {
	return fmt.Sprintf("Text(%q)", s.Content)
}

// Row is the repeating block between <ls_row> and </ls_row>.
type Row struct {
	Content string
}

func (*Row) segment() {}

func (s *Row) String() string {
	return fmt.Sprintf("Row(%q)", s.Content)
}

// Zone is a named region between <ls_name> and </ls_name>. Its body holds only
// *PlainText and *Row segments.
type Zone struct {
	Name string
	Body []Segment
	// Duplicate is set on every zone after the first one with the same name.
	// Duplicates never receive zone directives.
	Duplicate bool
	Pos       scan.Position
}

func (*Zone) segment() {}

func (s *Zone) String() string {
	parts := make([]string, len(s.Body))
	for i, seg := range s.Body {
		parts[i] = seg.String()
	}
	name := s.Name
	if s.Duplicate {
		name += ",duplicate"
	}
	return fmt.Sprintf("Zone(%s)[%s]", name, strings.Join(parts, " "))
}

// Rows returns the zone's row segments in source order.
func (s *Zone) Rows() []*Row {
	var rows []*Row
	for _, seg := range s.Body {
		if row, ok := seg.(*Row); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Template is a parsed, immutable template. It is safe for concurrent use by
// any number of merges.
type Template struct {
	segments []Segment
	zones    map[string]*Zone
	source   string
}

// Segments returns the template's top-level segments in source order. The
// returned slice must not be modified.
func (t *Template) Segments() []Segment {
	return t.segments
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Zone returns the first zone with the given name.
func (t *Template) Zone(name string) (*Zone, bool) {
	z, ok := t.zones[name]
	return z, ok
}

// ZoneInfo summarizes a zone for inspection tools.
type ZoneInfo struct {
	Name      string   `json:"name" yaml:"name"`
	Rows      int      `json:"rows" yaml:"rows"`
	Keys      []string `json:"keys" yaml:"keys"`
	RowKeys   []string `json:"rowKeys,omitempty" yaml:"rowKeys,omitempty"`
	Duplicate bool     `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
	Line      int      `json:"line" yaml:"line"`
}

// Zones describes every zone in source order, duplicates included.
func (t *Template) Zones() []ZoneInfo {
	var infos []ZoneInfo
	for _, seg := range t.segments {
		z, ok := seg.(*Zone)
		if !ok {
			continue
		}
		info := ZoneInfo{
			Name:      z.Name,
			Duplicate: z.Duplicate,
			Line:      z.Pos.Line,
			Keys:      []string{},
		}
		for _, body := range z.Body {
			switch b := body.(type) {
			case *PlainText:
				info.Keys = appendNew(info.Keys, scan.Keys(b.Content))
			case *Row:
				info.Rows++
				info.RowKeys = appendNew(info.RowKeys, scan.Keys(b.Content))
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Placeholders returns the distinct placeholder keys used anywhere in the
// template, in order of first use.
func (t *Template) Placeholders() []string {
	return scan.Keys(t.source)
}

func (t *Template) String() string {
	parts := make([]string, len(t.segments))
	for i, seg := range t.segments {
		parts[i] = seg.String()
	}
	return strings.Join(parts, " ")
}

func appendNew(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}
