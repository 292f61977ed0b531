package seqs

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func asMap(t *testing.T, b []byte) (ids []string, byID map[string]string) {
	t.Helper()
	recs, err := Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	byID = map[string]string{}
	for _, s := range recs {
		ids = append(ids, s.ID)
		byID[s.ID] = string(letters(s))
	}
	return ids, byID
}

func TestSortIDs(t *testing.T) {
	ids := []string{"b", "10", "a", "2", "1"}
	SortIDs(ids)
	want := []string{"1", "2", "10", "a", "b"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
}

func TestConcatenatePadsMissingTaxa(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "g1.fas", ">2\nAC-T\n>1\nAAAA\n")
	b := writeFile(t, dir, "g2.fas", ">1\nGG\n>3\nTT\n")

	var buf bytes.Buffer
	st, err := Concatenate([]string{a, b}, &buf, ConcatOptions{Width: 60})
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	if st.Files != 2 || st.Taxa != 3 || st.Length != 6 {
		t.Fatalf("stats = %+v", st)
	}
	if st.Blocks[1] != (Block{Name: "g2.fas", Start: 5, End: 6}) {
		t.Fatalf("blocks = %+v", st.Blocks)
	}
	ids, byID := asMap(t, buf.Bytes())
	if !reflect.DeepEqual(ids, []string{"1", "2", "3"}) {
		t.Fatalf("ids = %v", ids)
	}
	want := map[string]string{"1": "AAAAGG", "2": "AC-T--", "3": "----TT"}
	if !reflect.DeepEqual(byID, want) {
		t.Fatalf("seqs = %v", byID)
	}
}

func TestConcatenateRejectsRaggedAlignment(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "bad.fas", ">1\nAAA\n>2\nAA\n")
	_, err := Concatenate([]string{a}, &bytes.Buffer{}, ConcatOptions{Width: 60})
	if err == nil || !strings.Contains(err.Error(), "not aligned") {
		t.Fatalf("expected alignment error, got %v", err)
	}
}

func TestConcatenateRejectsDuplicateTaxon(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "dup.fas", ">1\nAC\n>1\nGT\n")
	if _, err := Concatenate([]string{a}, &bytes.Buffer{}, ConcatOptions{Width: 60}); err == nil || !strings.Contains(err.Error(), `duplicate sequence id "1"`) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	b := writeFile(t, dir, "cp.fas", ">At_rbcL\nAC\n>At_matK\nGT\n")
	if _, err := Concatenate([]string{b}, &bytes.Buffer{}, ConcatOptions{Width: 60, SpeciesPrefix: true}); err == nil || !strings.Contains(err.Error(), `taxon "At"`) {
		t.Fatalf("expected duplicate taxon error, got %v", err)
	}
}

func TestConcatenateSpeciesPrefix(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "rbcL.fas", ">Os_rbcL\nAAA\n>At_rbcL\nCCC\n")
	b := writeFile(t, dir, "matK.fas", ">At_matK_1\nGG\n>Zm\nTT\n")

	var buf bytes.Buffer
	st, err := Concatenate([]string{a, b}, &buf, ConcatOptions{Width: 60, SpeciesPrefix: true})
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	if st.Taxa != 3 || st.Length != 5 {
		t.Fatalf("stats = %+v", st)
	}
	ids, byID := asMap(t, buf.Bytes())
	if !reflect.DeepEqual(ids, []string{"At", "Os", "Zm"}) {
		t.Fatalf("ids = %v", ids)
	}
	want := map[string]string{"At": "CCCGG", "Os": "AAA--", "Zm": "---TT"}
	if !reflect.DeepEqual(byID, want) {
		t.Fatalf("seqs = %v", byID)
	}
}

func TestListDirFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.fa", ">x\nA\n")
	writeFile(t, dir, "a.FASTA", ">x\nA\n")
	writeFile(t, dir, "notes.txt", "x")
	got, err := ListDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "a.FASTA" || filepath.Base(got[1]) != "b.fa" {
		t.Fatalf("files = %v", got)
	}
}

func TestReadIndexDuplicate(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "dup.fa", ">g1\nAA\n>g1\nCC\n")
	if _, err := ReadIndex(p); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestExtractRows(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "pep.fa", ">At1\nMKV\n>Os1\nMKL\n>At2\nMAA\n")
	idx, err := ReadIndex(p)
	if err != nil {
		t.Fatal(err)
	}
	mx := &table.Table{Rows: [][]string{
		{"At1", "", "Os1"},
		{"At2", "Zm9", ""},
		{"", "", ""},
	}}
	out := filepath.Join(dir, "genes")
	st, err := ExtractRows(mx, idx, out, 60)
	if err != nil {
		t.Fatalf("ExtractRows: %v", err)
	}
	if st.Files != 2 || st.Sequences != 3 || !reflect.DeepEqual(st.Missing, []string{"Zm9"}) {
		t.Fatalf("stats = %+v", st)
	}
	b, err := os.ReadFile(filepath.Join(out, "At1.fa"))
	if err != nil {
		t.Fatal(err)
	}
	ids, byID := asMap(t, b)
	if !reflect.DeepEqual(ids, []string{"1", "3"}) || byID["3"] != "MKL" {
		t.Fatalf("At1.fa = %v %v", ids, byID)
	}

	mx.Header = []string{"Ath", "Zma", "Osa"}
	if _, err := ExtractRows(mx, idx, out, 60); err != nil {
		t.Fatal(err)
	}
	b, _ = os.ReadFile(filepath.Join(out, "At1.fa"))
	ids, _ = asMap(t, b)
	if !reflect.DeepEqual(ids, []string{"Ath", "Osa"}) {
		t.Fatalf("labelled ids = %v", ids)
	}
}

func TestExtractRowsRejectsSharedFirstGene(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "pep.fa", ">At1\nMKV\n>Os1\nMKL\n>Os2\nMAA\n")
	idx, err := ReadIndex(p)
	if err != nil {
		t.Fatal(err)
	}
	mx := &table.Table{Rows: [][]string{
		{"At1", "Os1"},
		{"At1", "Os2"},
	}}
	_, err = ExtractRows(mx, idx, filepath.Join(dir, "genes"), 60)
	if err == nil || !strings.Contains(err.Error(), "rows 1 and 2") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
}

func TestSampleWindows(t *testing.T) {
	recs, err := Decode(strings.NewReader(">a\nACGTACGTAC\n>b\nTTTTGGGGCC\n"))
	if err != nil {
		t.Fatal(err)
	}
	wins, err := SampleWindows(recs, 4, 5, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("SampleWindows: %v", err)
	}
	for _, w := range wins {
		if w.End-w.Start != 4 || w.Start < 0 || w.End > 10 {
			t.Fatalf("bad window %+v", w)
		}
	}
	dir := t.TempDir()
	paths, err := WriteWindows(recs, wins[:2], dir, 60)
	if err != nil {
		t.Fatalf("WriteWindows: %v", err)
	}
	if filepath.Base(paths[1]) != "random_002.fasta" {
		t.Fatalf("paths = %v", paths)
	}
	b, _ := os.ReadFile(paths[0])
	_, byID := asMap(t, b)
	if byID["a"] != "ACGTACGTAC"[wins[0].Start:wins[0].End] {
		t.Fatalf("window content = %v", byID)
	}

	if _, err := SampleWindows(recs, 11, 1, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected length error")
	}
	ragged, _ := Decode(strings.NewReader(">a\nAC\n>b\nA\n"))
	if _, err := SampleWindows(ragged, 1, 1, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected rectangular error")
	}
}
