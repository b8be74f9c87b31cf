package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// A mapDecoder decodes map columns. Maps share the list layout, with the
// child being a struct of key and value: both children decode the same
// dense count of entry rows per batch.
type mapDecoder struct {
	keys    Decoder
	values  Decoder
	lengths rle.IntReader
	present *rle.BoolReader
	dtype   *arrow.MapType
}

func newMapDecoder(col *Column, s *Stripe) (Decoder, error) {
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	lengths, err := intReader(s, col, meta.StreamLength, false)
	if err != nil {
		return nil, err
	}
	children := col.Children()
	keys, err := NewDecoder(children[0], s)
	if err != nil {
		return nil, err
	}
	values, err := NewDecoder(children[1], s)
	if err != nil {
		return nil, err
	}
	dtype, err := col.DataType().ArrowType()
	if err != nil {
		return nil, err
	}
	mt, ok := dtype.(*arrow.MapType)
	if !ok {
		return nil, orcerror.Newf(orcerror.MismatchedSchema, "map decoder on %v column %q", col.DataType().Kind, col.Name())
	}
	return &mapDecoder{keys: keys, values: values, lengths: lengths, present: present, dtype: mt}, nil
}

func (d *mapDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	lengths, total, err := fetchLengths(d.lengths, countPresent(present, n))
	if err != nil {
		return nil, err
	}
	keys, err := d.keys.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}
	values, err := d.values.NextBatch(int(total), nil)
	if err != nil {
		return nil, err
	}
	entries := array.NewData(d.dtype.ValueType(), int(total), []*memory.Buffer{nil},
		[]arrow.ArrayData{keys.Data(), values.Data()}, 0, 0)
	offsetBuf := offsets(populateLengths(lengths, n, present), n)
	buf, nulls := validity(present)
	data := array.NewData(d.dtype, n, []*memory.Buffer{buf, offsetBuf}, []arrow.ArrayData{entries}, nulls, 0)
	return array.MakeFromData(data), nil
}
