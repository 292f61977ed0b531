// Package orthology checks inferred orthologs against BLAST evidence and
// summarizes the per-reference-gene results.
package orthology

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/klauspost/pgzip"
)

// HitHeader is the header of a per-reference-gene hit table.
var HitHeader = []string{"gene_id", "species_code", "found_in_blast", "total_hits", "files"}

// HitSuffix names the hit table of a reference gene: <gene><HitSuffix>.
const HitSuffix = ".final.csv"

// Reference is one reference gene and the gene IDs inferred as its orthologs.
type Reference struct {
	Name  string
	Genes []string
}

// GeneSpecies maps gene IDs to species codes from a headerless
// species,gene,gene,... table. The first species listing a gene wins.
func GeneSpecies(t *table.Table) map[string]string {
	out := map[string]string{}
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		sp := strings.TrimSpace(row[0])
		for _, g := range row[1:] {
			g = strings.TrimSpace(g)
			if _, ok := out[g]; g != "" && !ok {
				out[g] = sp
			}
		}
	}
	return out
}

// References reads a headerless reference,gene,gene,... table keeping rows
// whose reference starts with prefix (all rows when prefix is empty). A
// repeated reference replaces the earlier genes but keeps its first position.
func References(t *table.Table, prefix string) []Reference {
	var out []Reference
	pos := map[string]int{}
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || !strings.HasPrefix(name, prefix) {
			continue
		}
		var genes []string
		for _, g := range row[1:] {
			if g = strings.TrimSpace(g); g != "" {
				genes = append(genes, g)
			}
		}
		if i, ok := pos[name]; ok {
			out[i].Genes = genes
			continue
		}
		pos[name] = len(out)
		out = append(out, Reference{Name: name, Genes: genes})
	}
	return out
}

// KnownReferences reads the first tab-separated field of each line of path,
// skipping blank and '#' lines. A missing file yields an empty set.
func KnownReferences(path string) (map[string]bool, error) {
	out := map[string]bool{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[strings.SplitN(line, "\t", 2)[0]] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// HitFile is the text of one BLAST result file, one hit per line.
type HitFile struct {
	Name  string
	Lines []string
}

// LoadHitFiles reads every file in dir matching pattern, sorted by name.
// Files ending in .gz are decompressed.
func LoadHitFiles(dir, pattern string) ([]HitFile, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("BLAST directory not found: %s", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)
	var out []HitFile
	for _, p := range paths {
		if fi, err := os.Stat(p); err != nil || fi.IsDir() {
			continue
		}
		lines, err := readLines(p)
		if err != nil {
			return nil, err
		}
		out = append(out, HitFile{Name: filepath.Base(p), Lines: lines})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no %s found in %s", pattern, dir)
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// GeneHit is the BLAST evidence for one gene.
type GeneHit struct {
	Gene    string
	Species string
	Hits    int
	Files   []string
}

// Lookup counts the lines mentioning both species and gene across files.
// A gene with no species code is never searched.
func Lookup(gene, species string, files []HitFile) GeneHit {
	h := GeneHit{Gene: gene, Species: species}
	if species == "" {
		return h
	}
	for _, f := range files {
		n := 0
		for _, l := range f.Lines {
			if strings.Contains(l, species) && strings.Contains(l, gene) {
				n++
			}
		}
		if n > 0 {
			h.Hits += n
			h.Files = append(h.Files, f.Name)
		}
	}
	return h
}

// HitTable renders the hits of one reference gene with HitHeader.
func HitTable(hits []GeneHit) *table.Table {
	t := &table.Table{Header: HitHeader}
	for _, h := range hits {
		found := "no"
		if h.Hits > 0 {
			found = "yes"
		}
		t.Rows = append(t.Rows, []string{h.Gene, h.Species, found, strconv.Itoa(h.Hits), strings.Join(h.Files, ";")})
	}
	return t
}
