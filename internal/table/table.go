// Package table reads and writes the delimited, gzip-compressed and xlsx
// tables exchanged between the syntenic matrix steps.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/klauspost/pgzip"
)

// ErrMissingHeader is returned when a table that must carry a header row is empty.
var ErrMissingHeader = errors.New("missing header row")

// FieldCountError reports a data row whose width differs from the header.
type FieldCountError struct {
	Path string
	Row  int // 1-based record number, header is record 1
	Line int // source line, 0 when unknown (xlsx)
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	loc := fmt.Sprintf("row %d", e.Row)
	if e.Line > 0 {
		loc = fmt.Sprintf("row %d (line %d)", e.Row, e.Line)
	}
	name := e.Path
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s: %s: expected %d fields, got %d", name, loc, e.Want, e.Got)
}

// Table is an in-memory table. Header is nil for headerless tables.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
	// Lines holds the source line of each row in Rows, 0 when unknown.
	Lines []int
}

// Width returns the number of header columns, or the widest row when the
// table has no header.
func (t *Table) Width() int {
	if t.Header != nil {
		return len(t.Header)
	}
	w := 0
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// CheckWidth verifies every row has exactly len(Header) fields.
func (t *Table) CheckWidth() error {
	if len(t.Header) == 0 {
		return ErrMissingHeader
	}
	want := len(t.Header)
	for i, r := range t.Rows {
		if len(r) != want {
			line := 0
			if i < len(t.Lines) {
				line = t.Lines[i]
			}
			return &FieldCountError{Path: t.Path, Row: i + 2, Line: line, Want: want, Got: len(r)}
		}
	}
	return nil
}

// ReadOptions controls how a table file is decoded.
type ReadOptions struct {
	// Delimiter for text tables. If 0, sniffed from the file name.
	Delimiter rune
	// Header treats the first record as column names.
	Header bool
	// Sheet and SheetIndex (1-based) select an xlsx worksheet.
	Sheet      string
	SheetIndex int
}

// Read loads a table from path. The format is chosen by extension:
// .xlsx workbooks, .gz compressed text, anything else as delimited text.
func Read(path string, opt ReadOptions) (*Table, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		rows, err := readXLSX(path, opt.Sheet, opt.SheetIndex)
		if err != nil {
			return nil, err
		}
		return fromRecords(path, rows, nil, opt.Header)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(lower, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	t, err := Decode(r, delim, opt.Header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Decode parses delimited text from r. Blank lines are skipped; field counts
// are not enforced.
func Decode(r io.Reader, delim rune, header bool) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	var recs [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read record %d: %w", len(recs)+1, err)
		}
		line, _ := cr.FieldPos(0)
		recs = append(recs, rec)
		lines = append(lines, line)
	}
	return fromRecords("", recs, lines, header)
}

func fromRecords(path string, recs [][]string, lines []int, header bool) (*Table, error) {
	t := &Table{Path: path}
	if header {
		if len(recs) == 0 {
			if path != "" {
				return nil, fmt.Errorf("%s: %w", path, ErrMissingHeader)
			}
			return nil, ErrMissingHeader
		}
		t.Header = recs[0]
		recs = recs[1:]
		if lines != nil {
			lines = lines[1:]
		}
	}
	t.Rows = recs
	t.Lines = lines
	return t, nil
}

// Encode writes the header (if any) and rows of t to w.
func Encode(w io.Writer, t *Table, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if t.Header != nil {
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes t and atomically replaces path. Paths ending in .gz are
// gzip-compressed.
func Write(path string, t *Table, delim rune) error {
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	var buf bytes.Buffer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zw := pgzip.NewWriter(&buf)
		if err := Encode(zw, t, delim); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	} else if err := Encode(&buf, t, delim); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// SniffDelimiter guesses the delimiter from the file name: tab for .tsv and
// .tab (optionally gzipped), comma otherwise.
func SniffDelimiter(path string) rune {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(path)), ".gz")
	switch filepath.Ext(name) {
	case ".tsv", ".tab", ".txt":
		return '\t'
	}
	return ','
}

// ParseDelimiter converts a --delimiter flag value into a rune. An empty
// value yields 0 (sniff).
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab' | '|')", s)
	}
}
