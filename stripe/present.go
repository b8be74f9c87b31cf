package stripe

import (
	"io"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// presentReader returns a boolean decoder over the column's PRESENT
// stream, or nil if the column has none, in which case all rows are
// present.
func presentReader(s *Stripe, col *Column) (*rle.BoolReader, error) {
	r, ok := s.stream(col.ID(), meta.StreamPresent)
	if !ok {
		return nil, nil
	}
	return rle.NewBoolReader(r), nil
}

// derivePresent combines a column's own presence stream with the mask
// inherited from its parent for a batch of n rows. A nil result means all
// n rows are present.
//
// The single invariant making presence composable under nesting: a row the
// parent marks null is forced null in the result without consuming from
// the child's own presence stream.
func derivePresent(own *rle.BoolReader, parent []bool, n int) ([]bool, error) {
	switch {
	case own == nil && parent == nil:
		return nil, nil
	case own == nil:
		// Clone; the caller may retain the result beyond the parent's reuse
		// of its buffer.
		out := make([]bool, n)
		copy(out, parent)
		return out, nil
	case parent == nil:
		out := make([]bool, n)
		for i := range out {
			v, err := own.Next()
			if err != nil {
				return nil, presentErr(err)
			}
			out[i] = v
		}
		return out, nil
	}
	out := make([]bool, n)
	for i := range out {
		if !parent[i] {
			continue
		}
		v, err := own.Next()
		if err != nil {
			return nil, presentErr(err)
		}
		out[i] = v
	}
	return out, nil
}

// countPresent returns the number of present rows of a batch of n rows.
func countPresent(present []bool, n int) int {
	if present == nil {
		return n
	}
	k := 0
	for _, p := range present {
		if p {
			k++
		}
	}
	return k
}

// populateLengths expands the lengths fetched for the present rows of a
// batch into one entry per row, inserting zero at each null position. Null
// rows thus contribute empty children without consuming from the child
// value stream.
func populateLengths(lengths []int64, n int, present []bool) []int64 {
	if present == nil {
		return lengths
	}
	out := make([]int64, n)
	next := 0
	for i, p := range present {
		if p {
			out[i] = lengths[next]
			next++
		}
	}
	return out
}

// presentErr converts an early end of a PRESENT stream into the
// out-of-spec error it is.
func presentErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return orcerror.New(orcerror.OutOfSpec, "PRESENT stream ended before batch")
	}
	return err
}

// valueErr converts an early end of a value stream into the out-of-spec
// error it is.
func valueErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return orcerror.New(orcerror.OutOfSpec, "value stream ended before batch")
	}
	return err
}
