package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
)

// A booleanDecoder decodes boolean columns. Values are bit-unpacked MSB
// first from a byte run-length encoded DATA stream, the same scheme the
// PRESENT stream uses.
type booleanDecoder struct {
	values  *rle.BoolReader
	present *rle.BoolReader
	b       *array.BooleanBuilder
}

func newBooleanDecoder(col *Column, s *Stripe) (Decoder, error) {
	if err := requireDirect(col); err != nil {
		return nil, err
	}
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	data, err := s.requiredStream(col.ID(), meta.StreamData)
	if err != nil {
		return nil, err
	}
	return &booleanDecoder{
		values:  rle.NewBoolReader(data),
		present: present,
		b:       array.NewBooleanBuilder(mem),
	}, nil
}

func (d *booleanDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		d.b.Append(v)
	}
	return d.b.NewArray(), nil
}
