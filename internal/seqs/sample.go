package seqs

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/biogo/biogo/seq/linear"
)

// ErrNotRectangular is returned when the records of an alignment differ in length.
var ErrNotRectangular = errors.New("all sequences must have the same length")

// Window is a half-open, 0-based alignment interval.
type Window struct {
	Start int
	End   int
}

// SampleWindows draws n random windows of the given length from a
// rectangular alignment.
func SampleWindows(recs []*linear.Seq, length, n int, rng *rand.Rand) ([]Window, error) {
	if len(recs) == 0 {
		return nil, errors.New("alignment has no sequences")
	}
	if length <= 0 || n <= 0 {
		return nil, fmt.Errorf("window length and count must be positive (got %d, %d)", length, n)
	}
	full := recs[0].Len()
	for _, s := range recs[1:] {
		if s.Len() != full {
			return nil, fmt.Errorf("%w: %q has %d, expected %d", ErrNotRectangular, s.ID, s.Len(), full)
		}
	}
	if length > full {
		return nil, fmt.Errorf("window length %d exceeds alignment length %d", length, full)
	}
	out := make([]Window, n)
	for i := range out {
		start := rng.Intn(full - length + 1)
		out[i] = Window{Start: start, End: start + length}
	}
	return out, nil
}

// WriteWindows writes each window to outDir/random_NNN.fasta and returns the
// written paths.
func WriteWindows(recs []*linear.Seq, wins []Window, outDir string, width int) ([]string, error) {
	paths := make([]string, 0, len(wins))
	for i, w := range wins {
		sub := make([]*linear.Seq, len(recs))
		for k, s := range recs {
			sub[k] = newSeq(s.ID, letters(s)[w.Start:w.End])
		}
		var buf bytes.Buffer
		if err := Encode(&buf, sub, width); err != nil {
			return nil, err
		}
		p := filepath.Join(outDir, fmt.Sprintf("random_%03d.fasta", i+1))
		if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
