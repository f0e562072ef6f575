package zonemerge

import (
	"fmt"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge/scan"
)

// zoneParser builds a segment list from lexed delimiter tokens
type zoneParser struct {
	tokens []scan.Token
	pos    int
	zones  map[string]*Zone
	logger *Logger
}

// Parse splits template text into plain text, zones and rows. Any unclosed,
// mismatched or misplaced tag fails the whole parse with a *ParseError.
func Parse(text string) (*Template, error) {
	return DefaultEngine.Parse(text)
}

func parse(text string, logger *Logger) (*Template, error) {
	if logger.Enabled(LogDebug) {
		logger.WithField("input_length", len(text)).Debug("Starting template parse")
	}

	p := &zoneParser{
		tokens: scan.Lex(text),
		zones:  make(map[string]*Zone),
		logger: logger,
	}

	segments, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}

	if logger.Enabled(LogDebug) {
		logger.WithFields(Fields{
			"segments": len(segments),
			"zones":    len(p.zones),
		}).Debug("Template parse complete")
	}

	return &Template{
		segments: segments,
		zones:    p.zones,
		source:   text,
	}, nil
}

func (p *zoneParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *zoneParser) current() scan.Token {
	return p.tokens[p.pos]
}

func (p *zoneParser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *zoneParser) parseTopLevel() ([]Segment, error) {
	var segments []Segment

	for !p.done() {
		tok := p.current()
		switch tok.Kind {
		case scan.Text:
			segments = append(segments, &PlainText{Content: tok.Value})
			p.advance()
		case scan.ZoneOpen:
			zone, err := p.parseZone()
			if err != nil {
				return nil, err
			}
			segments = append(segments, zone)
		case scan.ZoneClose:
			return nil, tagError(tok, fmt.Sprintf("closing tag for zone %q without a matching opening tag", tok.Value))
		case scan.RowOpen, scan.RowClose:
			return nil, tagError(tok, "row tag outside of a zone")
		}
	}

	return segments, nil
}

// parseZone consumes a zone from its opening tag through its closing tag.
func (p *zoneParser) parseZone() (*Zone, error) {
	open := p.current()
	p.advance()

	zone := &Zone{Name: open.Value, Pos: open.Pos}

	for !p.done() {
		tok := p.current()
		switch tok.Kind {
		case scan.Text:
			zone.Body = append(zone.Body, &PlainText{Content: tok.Value})
			p.advance()
		case scan.RowOpen:
			row, err := p.parseRow()
			if err != nil {
				return nil, err
			}
			zone.Body = append(zone.Body, row)
		case scan.RowClose:
			return nil, tagError(tok, "closing row tag without a matching opening tag")
		case scan.ZoneOpen:
			return nil, tagError(tok, fmt.Sprintf("zone %q opened inside zone %q; zones cannot be nested", tok.Value, zone.Name))
		case scan.ZoneClose:
			if tok.Value != zone.Name {
				return nil, tagError(tok, fmt.Sprintf("closing tag does not match open zone %q", zone.Name))
			}
			p.advance()
			p.register(zone)
			return zone, nil
		}
	}

	return nil, tagError(open, fmt.Sprintf("zone %q is never closed", zone.Name))
}

// parseRow consumes a row block. Rows hold text only.
func (p *zoneParser) parseRow() (*Row, error) {
	open := p.current()
	p.advance()

	row := &Row{}
	for !p.done() {
		tok := p.current()
		switch tok.Kind {
		case scan.Text:
			row.Content += tok.Value
			p.advance()
		case scan.RowClose:
			p.advance()
			return row, nil
		case scan.RowOpen:
			return nil, tagError(tok, "row opened inside another row")
		default:
			return nil, tagError(tok, "zone tag inside a row")
		}
	}

	return nil, tagError(open, "row is never closed")
}

// register records the first zone of each name; later ones are marked duplicate.
func (p *zoneParser) register(zone *Zone) {
	if _, exists := p.zones[zone.Name]; exists {
		zone.Duplicate = true
		p.logger.WithFields(Fields{
			"zone": zone.Name,
			"line": zone.Pos.Line,
		}).Warn("Duplicate zone name; only the first occurrence receives zone data")
		return
	}
	p.zones[zone.Name] = zone
}

func tagError(tok scan.Token, message string) error {
	return NewParseError(message, tok.Raw, tok.Pos.Offset, tok.Pos.Line, tok.Pos.Column)
}
