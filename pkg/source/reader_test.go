package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"data/source.csv": FormatCSV,
		"data/SOURCE.TSV": FormatTSV,
		"doc.pdf":         FormatPDF,
		"notes.txt":       FormatText,
		"README":          FormatText,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatOf(path), path)
	}
}

func TestRead_CSVUsesTextColumn(t *testing.T) {
	in := "id,text,lang\n1,Paris is the capital of France.,en\n2,,en\n3,\"Quoted, with comma\",en\n"
	docs, err := Read(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris is the capital of France.", "Quoted, with comma"}, docs)
}

func TestRead_TSVFallsBackToFirstColumn(t *testing.T) {
	in := "body\tlang\nfirst doc\ten\n   \ten\nsecond doc\tfr\n"
	docs, err := Read(strings.NewReader(in), FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"first doc", "second doc"}, docs)
}

func TestRead_EmptyTable(t *testing.T) {
	_, err := Read(strings.NewReader(""), FormatCSV)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestRead_TextIsOneDocument(t *testing.T) {
	docs, err := Read(strings.NewReader("line one\nline two\n"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one\nline two\n"}, docs)

	_, err = Read(strings.NewReader("\xff\xfe"), FormatText)
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestRead_MalformedPDF(t *testing.T) {
	_, err := Read(strings.NewReader("not a pdf"), FormatPDF)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.csv")
	require.NoError(t, os.WriteFile(path, []byte("text\nalpha\nbeta\n"), 0o644))

	docs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, docs)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
