package orthology

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

func decode(t *testing.T, s string) *table.Table {
	t.Helper()
	tb, err := table.Decode(strings.NewReader(s), ',', false)
	if err != nil {
		t.Fatal(err)
	}
	return tb
}

func TestGeneSpeciesFirstWins(t *testing.T) {
	m := GeneSpecies(decode(t, "ath,g1,g2\nosa,g2,g3,\n"))
	want := map[string]string{"g1": "ath", "g2": "ath", "g3": "osa"}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("species = %v", m)
	}
}

func TestReferencesPrefixAndRepeats(t *testing.T) {
	refs := References(decode(t, "acek_1,g1,,g2\nother,g9\nacek_2,g3\nacek_1,g4\n"), "acek")
	want := []Reference{{Name: "acek_1", Genes: []string{"g4"}}, {Name: "acek_2", Genes: []string{"g3"}}}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("refs = %+v", refs)
	}
}

func TestLookupAndHitTable(t *testing.T) {
	files := []HitFile{
		{Name: "a_blast_filtered.txt", Lines: []string{"ath|g1\tq1", "ath|g1\tq2", "osa|g1\tq3"}},
		{Name: "b_blast_filtered.txt", Lines: []string{"ath|g1\tq9"}},
	}
	hits := []GeneHit{
		Lookup("g1", "ath", files),
		Lookup("g2", "ath", files),
		Lookup("g1", "", files),
	}
	if hits[0].Hits != 3 || !reflect.DeepEqual(hits[0].Files, []string{"a_blast_filtered.txt", "b_blast_filtered.txt"}) {
		t.Fatalf("hit = %+v", hits[0])
	}
	tb := HitTable(hits)
	want := [][]string{
		{"g1", "ath", "yes", "3", "a_blast_filtered.txt;b_blast_filtered.txt"},
		{"g2", "ath", "no", "0", ""},
		{"g1", "", "no", "0", ""},
	}
	if !reflect.DeepEqual(tb.Rows, want) {
		t.Fatalf("rows = %v", tb.Rows)
	}
}

const hitHeader = "gene_id,species_code,found_in_blast,total_hits,files\n"

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("r1.final.csv", hitHeader+"g1,ath,yes,2,a.txt\ng2,ath,no,0,\ng3,osa,no,0,\ng4,zma,YES,1,b.txt\n")
	write("r2.final.csv", hitHeader+"g5,ath,no,0,\n")

	order := ReferenceOrder(decode(t, "gene_id,x\nr1,g1\nr2,g5\nr3,g6\n"))
	if !reflect.DeepEqual(order, []string{"r1", "r2", "r3"}) {
		t.Fatalf("order = %v", order)
	}
	got, err := Summarize(order, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"2", "r1.final.csv", "a.txt"},
		{"DUP", "ath=>g1[yes]|g2[no]", ""},
		{"0", "r3.final.csv (MISSING)", ""},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v", got.Rows)
	}
}

func TestRemap(t *testing.T) {
	out, missing, err := Remap(decode(t, "a, b,c,a\n1,2,3,9\nc,a,z\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Rows, [][]string{{"c", "a", "z"}, {"3", "1", ""}}) {
		t.Fatalf("rows = %v", out.Rows)
	}
	if !reflect.DeepEqual(missing, []string{"z"}) {
		t.Fatalf("missing = %v", missing)
	}
	if _, _, err := Remap(decode(t, "a,b\n1\nb\n")); err == nil || !strings.Contains(err.Error(), "2 IDs") {
		t.Fatalf("expected length mismatch, got %v", err)
	}
	if _, _, err := Remap(decode(t, "a\n1\n")); err == nil {
		t.Fatalf("expected error for two rows")
	}
}
