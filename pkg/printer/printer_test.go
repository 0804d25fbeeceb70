package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablePrinter_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tp := NewTablePrinter(&buf)
	tp.SetHeaders("Key", "Stars")
	tp.AddRow("slack", "42")
	tp.AddRow("google-drive", "7")
	require.NoError(t, tp.Render())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "42"), strings.Index(lines[2], "7"))
	assert.True(t, strings.HasPrefix(lines[2], "google-drive  "))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcdefg...", TruncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "unbounded", TruncateString("unbounded", 0))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}
