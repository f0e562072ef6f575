package zonemerge

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Format identifies a supported text document type. Every format is merged
// the same way; the format only decides which file extensions are accepted.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatXML      Format = "xml"
)

var (
	// ErrUnsupportedFormat is the cause of an IOError for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrTooLarge is the cause of an IOError for files over the size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
	// ErrNotUTF8 is the cause of an IOError for templates that are not valid UTF-8.
	ErrNotUTF8 = errors.New("file is not valid UTF-8 text")
)

var formatExtensions = map[string]Format{
	".txt": FormatText,
	".md":  FormatMarkdown,
	".xml": FormatXML,
}

// Extension returns the canonical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatXML:
		return ".xml"
	default:
		return ".txt"
	}
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (supported: .txt, .md, .xml)", ErrUnsupportedFormat, ext)
}

// ReadTemplateFile reads a template from disk. maxSize of 0 disables the size check.
func ReadTemplateFile(path string, maxSize int64) (string, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", "", NewIOError("read template", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", "", NewIOError("read template", path, err)
	}
	if info.IsDir() {
		return "", "", NewIOError("read template", path, errors.New("path is a directory"))
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", "", NewIOError("read template", path,
			fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, info.Size(), maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", NewIOError("read template", path, err)
	}
	if !utf8.Valid(data) {
		return "", "", NewIOError("read template", path, ErrNotUTF8)
	}

	// A UTF-8 byte order mark is not part of the template text.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	return string(data), format, nil
}

// WriteOutputFile writes merged text to path. The extension must be a supported
// format and the directory must already exist. The file is replaced atomically.
func WriteOutputFile(path, text string) error {
	if _, err := FormatFromPath(path); err != nil {
		return NewIOError("write output", path, err)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return NewIOError("write output", path, err)
	}
	if !info.IsDir() {
		return NewIOError("write output", path, fmt.Errorf("%s is not a directory", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return NewIOError("write output", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewIOError("write output", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewIOError("write output", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return NewIOError("write output", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewIOError("write output", path, err)
	}
	return nil
}

// readInputFile decodes a JSON or YAML data file without validating its shape.
func readInputFile(path string) (interface{}, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, NewIOError("read input", path,
			fmt.Errorf("%w: %q (supported: .json, .yaml, .yml)", ErrUnsupportedFormat, ext))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read input", path, err)
	}

	var v interface{}
	if ext == ".json" {
		v, err := decodeJSON(bytes.NewReader(data))
		if err != nil {
			return nil, NewIOError("decode input", path, err)
		}
		return v, nil
	}

	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, NewIOError("decode input", path, err)
	}
	return v, nil
}
