package zonemerge

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"letter.txt", FormatText, true},
		{"README.MD", FormatMarkdown, true},
		{"dir/feed.xml", FormatXML, true},
		{"report.docx", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(filepath.Ext(tt.path)), got.Extension())
		})
	}
}

func TestReadTemplateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads text", func(t *testing.T) {
		path := writeTestFile(t, dir, "a.md", "# [[Title]]\n")
		text, format, err := ReadTemplateFile(path, 0)
		require.NoError(t, err)
		assert.Equal(t, "# [[Title]]\n", text)
		assert.Equal(t, FormatMarkdown, format)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		path := writeTestFile(t, dir, "bom.txt", "\xef\xbb\xbfHello")
		text, _, err := ReadTemplateFile(path, 0)
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := ReadTemplateFile(filepath.Join(dir, "missing.txt"), 0)
		assert.True(t, IsIOError(err))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTestFile(t, dir, "a.html", "x")
		_, _, err := ReadTemplateFile(path, 0)
		assert.True(t, IsIOError(err))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "sub.txt")
		require.NoError(t, os.Mkdir(sub, 0o755))
		_, _, err := ReadTemplateFile(sub, 0)
		assert.True(t, IsIOError(err))
	})

	t.Run("too large", func(t *testing.T) {
		path := writeTestFile(t, dir, "big.txt", strings.Repeat("x", 64))
		_, _, err := ReadTemplateFile(path, 32)
		assert.ErrorIs(t, err, ErrTooLarge)

		_, _, err = ReadTemplateFile(path, 64)
		assert.NoError(t, err)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		path := writeTestFile(t, dir, "latin1.txt", "caf\xe9")
		_, _, err := ReadTemplateFile(path, 0)
		assert.ErrorIs(t, err, ErrNotUTF8)
	})
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes and replaces", func(t *testing.T) {
		path := filepath.Join(dir, "out.xml")
		require.NoError(t, WriteOutputFile(path, "<a>1</a>"))
		require.NoError(t, WriteOutputFile(path, "<a>2</a>"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<a>2</a>", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files must not be left behind")
	})

	t.Run("empty output is written", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, WriteOutputFile(path, ""))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		err := WriteOutputFile(filepath.Join(dir, "out.pdf"), "x")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := WriteOutputFile(filepath.Join(dir, "nope", "out.txt"), "x")
		var ioErr *IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "write output", ioErr.Operation)
	})
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := writeTestFile(t, dir, "data.json", `{"zones": [{"zonename": "global", "zonekeys": {"N": 1.0}}]}`)
		in, err := ReadInputFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1.0", in.Globals["N"])
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeTestFile(t, dir, "data.yml", "zones:\n  - zonename: z\n    zonedelete: true\n")
		in, err := ReadInputFile(path)
		require.NoError(t, err)
		assert.True(t, in.Zones["z"].Delete)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTestFile(t, dir, "data.toml", "zones = []")
		_, err := ReadInputFile(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeTestFile(t, dir, "bad.json", `{"zones": `)
		_, err := ReadInputFile(path)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "decode input", ioErr.Operation)
	})

	t.Run("json with trailing data", func(t *testing.T) {
		path := writeTestFile(t, dir, "trailing.json", `{"zones": []} extra`)
		_, err := ReadInputFile(path)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "decode input", ioErr.Operation)
		assert.Equal(t, path, ioErr.Path)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTestFile(t, dir, "bad.yaml", "zones: [")
		_, err := ReadInputFile(path)
		assert.True(t, IsIOError(err))
	})

	t.Run("valid file with invalid shape", func(t *testing.T) {
		path := writeTestFile(t, dir, "shape.json", `{"zones": "all"}`)
		_, err := ReadInputFile(path)
		assert.True(t, IsValidationError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadInputFile(filepath.Join(dir, "missing.json"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
