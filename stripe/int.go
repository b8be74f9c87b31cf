package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// An intDecoder decodes the signed run-length encoded integer columns:
// smallint, int and bigint.
type intDecoder struct {
	values  rle.IntReader
	present *rle.BoolReader
	b       array.Builder
	// append narrows the decoded 64-bit value into the builder.
	append func(int64)
}

func newIntDecoder(col *Column, s *Stripe) (Decoder, error) {
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
	d := &intDecoder{values: values, present: present}
	switch col.DataType().Kind {
	case meta.KindShort:
		b := array.NewInt16Builder(mem)
		d.b, d.append = b, func(v int64) { b.Append(int16(v)) }
	case meta.KindInt:
		b := array.NewInt32Builder(mem)
		d.b, d.append = b, func(v int64) { b.Append(int32(v)) }
	case meta.KindLong:
		b := array.NewInt64Builder(mem)
		d.b, d.append = b, func(v int64) { b.Append(v) }
	default:
		return nil, orcerror.Newf(orcerror.MismatchedSchema, "integer decoder on %v column %q", col.DataType().Kind, col.Name())
	}
	return d, nil
}

func (d *intDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		d.append(v)
	}
	return d.b.NewArray(), nil
}
