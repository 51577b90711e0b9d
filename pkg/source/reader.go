package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// TextColumn is the preferred column of tabular sources. When absent the first column is used.
const TextColumn = "text"

var (
	ErrEmptyTable = errors.New("table has no header row")
	ErrNoText     = errors.New("no text extracted")
	ErrNotUTF8    = errors.New("source is not valid UTF-8")
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".pdf":
		return FormatPDF
	default:
		return FormatText
	}
}

// Load reads the file at path and returns its raw documents.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Read(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	return docs, nil
}

// Read parses r according to format. Tabular formats yield one document per
// non-blank row; every other format yields the whole input as one document.
func Read(r io.Reader, format Format) ([]string, error) {
	switch format {
	case FormatCSV:
		return readTable(r, ',')
	case FormatTSV:
		return readTable(r, '\t')
	case FormatPDF:
		return readPDF(r)
	default:
		return readText(r)
	}
}

func readTable(r io.Reader, sep rune) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, err
	}

	col := 0
	for i, name := range header {
		if strings.TrimSpace(name) == TextColumn {
			col = i
			break
		}
	}

	var docs []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(record) || strings.TrimSpace(record[col]) == "" {
			continue
		}
		docs = append(docs, record[col])
	}
	return docs, nil
}

func readText(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, ErrNotUTF8
	}
	return []string{string(b)}, nil
}

func readPDF(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rdr, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := rdr.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, err
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	return []string{text}, nil
}
