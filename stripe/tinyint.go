package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
)

// A tinyintDecoder decodes tinyint columns. Unlike the wider integer
// types, tinyint values come from a byte run-length encoded DATA stream,
// one byte per present row, interpreted as signed.
type tinyintDecoder struct {
	values  *rle.ByteReader
	present *rle.BoolReader
	b       *array.Int8Builder
}

func newTinyintDecoder(col *Column, s *Stripe) (Decoder, error) {
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
	return &tinyintDecoder{
		values:  rle.NewByteReader(data),
		present: present,
		b:       array.NewInt8Builder(mem),
	}, nil
}

func (d *tinyintDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		d.b.Append(int8(v))
	}
	return d.b.NewArray(), nil
}
