package stripe

import (
	"math/big"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/decimal128"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// A decimalDecoder decodes decimal columns: one signed varint unscaled
// value from the DATA stream and one signed run-length encoded scale from
// the SECONDARY stream per present row. Values are rescaled to the scale
// the schema declares and produced as 128-bit decimals.
type decimalDecoder struct {
	data    *codec.Reader
	scales  rle.IntReader
	present *rle.BoolReader
	// Scale declared by the schema.
	scale int64
	b     *array.Decimal128Builder
}

func newDecimalDecoder(col *Column, s *Stripe) (Decoder, error) {
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
	scales, err := intReader(s, col, meta.StreamSecondary, true)
	if err != nil {
		return nil, err
	}
	dt := col.DataType()
	return &decimalDecoder{
		data:    data,
		scales:  scales,
		present: present,
		scale:   int64(dt.Scale),
		b: array.NewDecimal128Builder(mem, &arrow.Decimal128Type{
			Precision: int32(dt.Precision),
			Scale:     int32(dt.Scale),
		}),
	}, nil
}

func (d *decimalDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		unscaled, err := rle.ReadBigVarint(d.data)
		if err != nil {
			return nil, valueErr(err)
		}
		scale, err := d.scales.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		v, err := rescale(unscaled, scale, d.scale)
		if err != nil {
			return nil, err
		}
		num, err := decimal128.FromBigInt(v)
		if err != nil {
			return nil, orcerror.Wrapf(orcerror.OutOfBound, err, "decimal %v exceeds 128 bits", v)
		}
		d.b.Append(num)
	}
	return d.b.NewArray(), nil
}

// rescale adjusts an unscaled value from the scale it was stored with to
// the scale the schema declares. Downscaling truncates toward zero.
func rescale(unscaled *big.Int, from, to int64) (*big.Int, error) {
	if from == to {
		return unscaled, nil
	}
	diff := to - from
	if diff < -38 || diff > 38 {
		return nil, orcerror.Newf(orcerror.OutOfSpec, "decimal scale %d out of range of declared scale %d", from, to)
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(abs64(diff)), nil)
	if diff > 0 {
		return unscaled.Mul(unscaled, factor), nil
	}
	return unscaled.Quo(unscaled, factor), nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
