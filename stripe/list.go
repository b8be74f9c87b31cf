package stripe

import (
	"math"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// A listDecoder decodes list columns: an unsigned run-length encoded
// LENGTH stream with one entry per present row, delimiting the rows of a
// single child column.
type listDecoder struct {
	inner   Decoder
	lengths rle.IntReader
	present *rle.BoolReader
	dtype   arrow.DataType
}

func newListDecoder(col *Column, s *Stripe) (Decoder, error) {
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	lengths, err := intReader(s, col, meta.StreamLength, false)
	if err != nil {
		return nil, err
	}
	inner, err := NewDecoder(col.Children()[0], s)
	if err != nil {
		return nil, err
	}
	dtype, err := col.DataType().ArrowType()
	if err != nil {
		return nil, err
	}
	return &listDecoder{inner: inner, lengths: lengths, present: present, dtype: dtype}, nil
}

func (d *listDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	lengths, total, err := fetchLengths(d.lengths, countPresent(present, n))
	if err != nil {
		return nil, err
	}
	// Child positions are dense: null rows contribute zero length, so the
	// child batch needs no presence hint.
	child, err := d.inner.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}
	offsetBuf := offsets(populateLengths(lengths, n, present), n)
	buf, nulls := validity(present)
	data := array.NewData(d.dtype, n, []*memory.Buffer{buf, offsetBuf}, []arrow.ArrayData{child.Data()}, nulls, 0)
	return array.MakeFromData(data), nil
}

// fetchLengths draws exactly k entries from a LENGTH stream and sums them.
// Fewer entries than present rows is an error.
func fetchLengths(r rle.IntReader, k int) (lengths []int64, total int64, err error) {
	lengths = make([]int64, k)
	for i := range lengths {
		v, err := r.Next()
		if err != nil {
			return nil, 0, valueErr(err)
		}
		if v < 0 {
			return nil, 0, orcerror.Newf(orcerror.OutOfSpec, "negative length %d", v)
		}
		lengths[i] = v
		total += v
	}
	if total > math.MaxInt32 {
		return nil, 0, orcerror.Newf(orcerror.OutOfBound, "batch spans %d child rows", total)
	}
	return lengths, total, nil
}

// offsets builds the offset buffer of a list or map array from the
// per-row lengths: n+1 monotonically non-decreasing entries starting at
// zero, where null rows repeat the previous offset.
func offsets(lengths []int64, n int) *memory.Buffer {
	out := make([]int32, n+1)
	for i, length := range lengths {
		out[i+1] = out[i] + int32(length)
	}
	return memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(out))
}
