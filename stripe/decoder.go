package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/bitutil"
	"github.com/apache/arrow/go/v15/arrow/memory"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// mem is the allocator backing all array buffers.
var mem = memory.DefaultAllocator

// A Decoder produces the Arrow arrays of one column, batch by batch.
type Decoder interface {
	// NextBatch decodes the next n rows of the column. The returned array
	// has exactly n elements including nulls. parentPresent, if non-nil,
	// has length n and dictates which rows are null regardless of the
	// column's own presence; the decoder advances its value streams only
	// for rows present in both. A decoder that has returned an error is
	// poisoned and must not be reused.
	NextBatch(n int, parentPresent []bool) (arrow.Array, error)
}

// NewDecoder constructs the decoder tree for the given column. Decoders
// are constructed once per stripe, drained batch by batch, then discarded.
func NewDecoder(col *Column, s *Stripe) (Decoder, error) {
	switch col.DataType().Kind {
	case meta.KindBoolean:
		return newBooleanDecoder(col, s)
	case meta.KindByte:
		return newTinyintDecoder(col, s)
	case meta.KindShort, meta.KindInt, meta.KindLong:
		return newIntDecoder(col, s)
	case meta.KindFloat, meta.KindDouble:
		return newFloatDecoder(col, s)
	case meta.KindString, meta.KindVarchar, meta.KindChar:
		return newStringDecoder(col, s)
	case meta.KindBinary:
		return newBinaryDecoder(col, s)
	case meta.KindTimestamp, meta.KindTimestampInstant:
		return newTimestampDecoder(col, s)
	case meta.KindDate:
		return newDateDecoder(col, s)
	case meta.KindDecimal:
		return newDecimalDecoder(col, s)
	case meta.KindList:
		return newListDecoder(col, s)
	case meta.KindMap:
		return newMapDecoder(col, s)
	case meta.KindStruct:
		return newStructDecoder(col, s)
	case meta.KindUnion:
		return nil, orcerror.Newf(orcerror.UnsupportedType, "union column %q", col.Name())
	}
	return nil, orcerror.Newf(orcerror.UnsupportedType, "%v column %q", col.DataType().Kind, col.Name())
}

// intReader returns an integer decoder over the named stream of the
// column, using the RLE version its encoding declares.
func intReader(s *Stripe, col *Column, kind meta.StreamKind, signed bool) (rle.IntReader, error) {
	enc, err := col.Encoding()
	if err != nil {
		return nil, err
	}
	r, err := s.requiredStream(col.ID(), kind)
	if err != nil {
		return nil, err
	}
	switch enc.Kind {
	case meta.EncodingDirect, meta.EncodingDictionary:
		return rle.NewIntV1Reader(r, signed), nil
	case meta.EncodingDirectV2, meta.EncodingDictionaryV2:
		return rle.NewIntV2Reader(r, signed), nil
	}
	return nil, orcerror.Newf(orcerror.InvalidColumnEncoding, "column %q declares %v", col.Name(), enc.Kind)
}

// requireDirect rejects dictionary encodings on columns whose type has no
// dictionary form.
func requireDirect(col *Column) error {
	enc, err := col.Encoding()
	if err != nil {
		return err
	}
	switch enc.Kind {
	case meta.EncodingDirect, meta.EncodingDirectV2:
		return nil
	}
	return orcerror.Newf(orcerror.InvalidColumnEncoding, "column %q of type %v declares %v", col.Name(), col.DataType().Kind, enc.Kind)
}

// validity builds an Arrow validity bitmap from a presence vector,
// returning the buffer and the null count. A nil presence vector yields a
// nil buffer: all rows present.
func validity(present []bool) (*memory.Buffer, int) {
	if present == nil {
		return nil, 0
	}
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(int(bitutil.BytesForBits(int64(len(present)))))
	nulls := 0
	for i, p := range present {
		if p {
			bitutil.SetBit(buf.Bytes(), i)
		} else {
			nulls++
		}
	}
	return buf, nulls
}
