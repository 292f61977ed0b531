package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSVWithHeaderAndLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "m.csv")
	if err := os.WriteFile(p, []byte("key,f1,f2\nA,1,0\n\nB,0,0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tb, err := Read(p, ReadOptions{Header: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if strings.Join(tb.Header, "|") != "key|f1|f2" {
		t.Fatalf("header = %#v", tb.Header)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tb.Rows))
	}
	if tb.Lines[0] != 2 || tb.Lines[1] != 4 {
		t.Fatalf("lines = %v, want [2 4]", tb.Lines)
	}
	if tb.Path != p {
		t.Fatalf("path = %q", tb.Path)
	}
}

func TestReadEmptyFileMissingHeader(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Read(p, ReadOptions{Header: true})
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("err = %v, want ErrMissingHeader", err)
	}
	if !strings.Contains(err.Error(), p) {
		t.Fatalf("error should name the path: %v", err)
	}
}

func TestReadMissingFileNamesPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.csv")
	_, err := Read(p, ReadOptions{Header: true})
	if err == nil || !strings.Contains(err.Error(), "nope.csv") {
		t.Fatalf("expected error naming the path, got %v", err)
	}
}

func TestCheckWidth(t *testing.T) {
	tb := &Table{
		Path:   "x.csv",
		Header: []string{"key", "f1", "f2"},
		Rows:   [][]string{{"A", "1", "0"}, {"B", "1"}},
		Lines:  []int{2, 3},
	}
	err := tb.CheckWidth()
	var fe *FieldCountError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldCountError", err)
	}
	if fe.Row != 3 || fe.Line != 3 || fe.Want != 3 || fe.Got != 2 {
		t.Fatalf("field error = %+v", fe)
	}
	if got := fe.Error(); got != "x.csv: row 3 (line 3): expected 3 fields, got 2" {
		t.Fatalf("message = %q", got)
	}
	if err := (&Table{}).CheckWidth(); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("empty header err = %v", err)
	}
}

func TestWriteGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.tsv.gz")
	in := &Table{Header: []string{"key", "a b"}, Rows: [][]string{{"g1", "3"}, {"g,2", "0"}}}
	if err := Write(p, in, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(p, ReadOptions{Header: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if strings.Join(got.Header, "|") != "key|a b" {
		t.Fatalf("header = %#v", got.Header)
	}
	if len(got.Rows) != 2 || got.Rows[1][0] != "g,2" || got.Rows[0][1] != "3" {
		t.Fatalf("rows = %#v", got.Rows)
	}
}

func TestSniffAndParseDelimiter(t *testing.T) {
	for name, want := range map[string]rune{"a.csv": ',', "a.tsv": '\t', "A.TSV.GZ": '\t', "a.csv.gz": ',', "noext": ','} {
		if got := SniffDelimiter(name); got != want {
			t.Errorf("SniffDelimiter(%q) = %q, want %q", name, got, want)
		}
	}
	for in, want := range map[string]rune{"": 0, ",": ',', "tab": '\t', ";": ';', "pipe": '|'} {
		got, err := ParseDelimiter(in)
		if err != nil || got != want {
			t.Errorf("ParseDelimiter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDelimiter("#"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}

func TestWidthHeaderless(t *testing.T) {
	tb := &Table{Rows: [][]string{{"a"}, {"b", "c", "d"}, {"e", "f"}}}
	if tb.Width() != 3 {
		t.Fatalf("width = %d, want 3", tb.Width())
	}
}
