package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
	assert.False(t, FileExists(dir), "directories are not files")
}

func TestTrimText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "plain", input: []byte(`[]`), want: `[]`},
		{name: "bom", input: append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...), want: `{"a":1}`},
		{name: "bom and whitespace", input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("\n  [1]\r\n")...), want: `[1]`},
		{name: "leading whitespace before bom", input: append([]byte(" "), append([]byte{0xEF, 0xBB, 0xBF}, '[', ']')...), want: `[]`},
		{name: "empty", input: []byte("   \n"), want: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(TrimText(tt.input)))
		})
	}
}

func TestReadTextFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(file, append([]byte{0xEF, 0xBB, 0xBF}, []byte("  []  ")...), 0644))

	data, err := ReadTextFile(file)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = ReadTextFile(filepath.Join(dir, "nope.json"))
	require.Error(t, err)
}

func TestWriteJSONFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "report.json")

	written, err := WriteJSONFile(map[string]int{"added": 2}, file, false)
	require.NoError(t, err)
	assert.True(t, written)

	var got map[string]int
	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got["added"])

	written, err = WriteJSONFile(map[string]int{"added": 3}, file, false)
	require.NoError(t, err)
	assert.False(t, written, "existing file must not be overwritten")

	written, err = WriteJSONFile(map[string]int{"added": 3}, file, true)
	require.NoError(t, err)
	assert.True(t, written)
}
