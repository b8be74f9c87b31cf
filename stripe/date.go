package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
)

// A dateDecoder decodes date columns: signed run-length encoded days since
// 1970-01-01.
type dateDecoder struct {
	values  rle.IntReader
	present *rle.BoolReader
	b       *array.Date32Builder
}

func newDateDecoder(col *Column, s *Stripe) (Decoder, error) {
	if err := requireDirect(col); err != nil {
		return nil, err
	}
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	values, err := intReader(s, col, meta.StreamData, true)
	if err != nil {
		return nil, err
	}
	return &dateDecoder{
		values:  values,
		present: present,
		b:       array.NewDate32Builder(mem),
	}, nil
}

func (d *dateDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	d.b.Reserve(n)
	for i := 0; i < n; i++ {
		if present != nil && !present[i] {
			d.b.AppendNull()
			continue
		}
		v, err := d.values.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		d.b.Append(arrow.Date32(v))
	}
	return d.b.NewArray(), nil
}
