package zonemerge

import (
	"strings"
	"sync"
)

// Merger is a staged merge session: load a template and input, merge, then
// read the output. Each supported format provides one.
type Merger interface {
	LoadTemplate(text string) error
	LoadInput(in *MergeInput) error
	PerformMerge() (string, error)
	Output() string
}

// TextMerger is the Merger for .txt, .md and .xml documents. A failed load
// leaves the previously loaded value in place; a failed merge clears the output.
type TextMerger struct {
	engine *Engine
	format Format

	mu       sync.Mutex
	template *Template
	input    *MergeInput
	output   string
}

var _ Merger = (*TextMerger)(nil)

// NewTextMerger returns a session on the default engine.
func NewTextMerger(format Format) *TextMerger {
	return DefaultEngine.NewMerger(format)
}

// Format returns the document format the session writes.
func (m *TextMerger) Format() Format {
	return m.format
}

// LoadTemplate parses and stores template text.
func (m *TextMerger) LoadTemplate(text string) error {
	tmpl, err := m.engine.Parse(text)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.template = tmpl
	m.mu.Unlock()
	return nil
}

// LoadTemplateFile reads, parses and stores a template file. The session
// adopts the file's format.
func (m *TextMerger) LoadTemplateFile(path string) error {
	tmpl, format, err := m.engine.ParseFile(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.template = tmpl
	m.format = format
	m.mu.Unlock()
	return nil
}

// LoadInput stores already-validated merge data.
func (m *TextMerger) LoadInput(in *MergeInput) error {
	if in == nil {
		return &NotLoadedError{What: "input data"}
	}
	m.mu.Lock()
	m.input = in
	m.mu.Unlock()
	return nil
}

// LoadInputJSON decodes and stores JSON merge data.
func (m *TextMerger) LoadInputJSON(data string) error {
	in, err := m.engine.ReadInput(strings.NewReader(data))
	if err != nil {
		return err
	}
	return m.LoadInput(in)
}

// LoadInputFile reads and stores merge data from a .json, .yaml or .yml file.
func (m *TextMerger) LoadInputFile(path string) error {
	in, err := m.engine.ReadInputFile(path)
	if err != nil {
		return err
	}
	return m.LoadInput(in)
}

// PerformMerge merges the loaded template and input and stores the result.
func (m *TextMerger) PerformMerge() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.engine.Merge(m.template, m.input)
	if err != nil {
		m.output = ""
		return "", err
	}
	m.output = out
	return out, nil
}

// Output returns the result of the last successful merge, or "" if there is none.
func (m *TextMerger) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output
}

// SaveOutput writes the last merge result to path.
func (m *TextMerger) SaveOutput(path string) error {
	return WriteOutputFile(path, m.Output())
}
