package stripe

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// A floatDecoder decodes float and double columns: little-endian IEEE-754
// values, 4 or 8 bytes per present row, straight from the DATA stream.
type floatDecoder struct {
	data    *codec.Reader
	present *rle.BoolReader
	// Scratch for one value; 4 or 8 bytes.
	scratch []byte
	b       array.Builder
	append  func([]byte)
}

func newFloatDecoder(col *Column, s *Stripe) (Decoder, error) {
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
	d := &floatDecoder{data: data, present: present}
	if col.DataType().Kind == meta.KindFloat {
		b := array.NewFloat32Builder(mem)
		d.scratch = make([]byte, 4)
		d.b, d.append = b, func(p []byte) {
			b.Append(math.Float32frombits(binary.LittleEndian.Uint32(p)))
		}
	} else {
		b := array.NewFloat64Builder(mem)
		d.scratch = make([]byte, 8)
		d.b, d.append = b, func(p []byte) {
			b.Append(math.Float64frombits(binary.LittleEndian.Uint64(p)))
		}
	}
	return d, nil
}

func (d *floatDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		if _, err := io.ReadFull(d.data, d.scratch); err != nil {
			return nil, orcerror.Wrap(orcerror.DecodeFloat, err, "truncated IEEE-754 value")
		}
		d.append(d.scratch)
	}
	return d.b.NewArray(), nil
}
