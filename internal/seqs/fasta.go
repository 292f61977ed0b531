// Package seqs builds the FASTA inputs of the gene-tree workflow: per-gene
// files pulled out of a syntenic matrix, concatenated supermatrices and random
// alignment windows for dating replicates.
package seqs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultWidth is the FASTA line width used when none is configured.
const DefaultWidth = 60

// Extensions recognised as FASTA files when scanning a directory.
var Extensions = []string{".fasta", ".fa", ".fas", ".fna", ".faa"}

// Decode reads every record from r. The protein alphabet is used as a
// permissive template so nucleotide, amino-acid and gap letters all pass.
func Decode(r io.Reader) ([]*linear.Seq, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	var out []*linear.Seq
	for sc.Next() {
		out = append(out, sc.Seq().(*linear.Seq))
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadFile reads all records of a FASTA file.
func ReadFile(path string) ([]*linear.Seq, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	defer f.Close()
	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read fasta %s: %w", path, err)
	}
	return recs, nil
}

// ReadIndex loads a FASTA file into a map keyed by sequence ID.
func ReadIndex(path string) (map[string]*linear.Seq, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*linear.Seq, len(recs))
	for _, s := range recs {
		if _, dup := idx[s.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate sequence id %q", path, s.ID)
		}
		idx[s.ID] = s
	}
	return idx, nil
}

// Encode writes records to w wrapped at width letters per line.
func Encode(w io.Writer, recs []*linear.Seq, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	fw := fasta.NewWriter(w, width)
	for _, s := range recs {
		if _, err := fw.Write(s); err != nil {
			return fmt.Errorf("write %s: %w", s.ID, err)
		}
	}
	return nil
}

// ListDir returns the FASTA files directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !hasFASTAExt(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func hasFASTAExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func newSeq(id string, letters []byte) *linear.Seq {
	return linear.NewSeq(id, alphabet.BytesToLetters(letters), alphabet.Protein)
}

func letters(s *linear.Seq) []byte {
	return alphabet.LettersToBytes(s.Seq)
}
