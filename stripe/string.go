package stripe

import (
	"io"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// newStringDecoder decodes string, varchar and char columns. Two
// sub-encodings exist: direct, with a length stream delimiting the value
// bytes of the DATA stream, and dictionary, with the DATA stream holding
// indices into a per-stripe dictionary. Char values keep their raw bytes;
// no padding is stripped and declared lengths are not validated.
func newStringDecoder(col *Column, s *Stripe) (Decoder, error) {
	enc, err := col.Encoding()
	if err != nil {
		return nil, err
	}
	b := array.NewStringBuilder(mem)
	appendValue := func(p []byte) { b.Append(string(p)) }
	switch enc.Kind {
	case meta.EncodingDirect, meta.EncodingDirectV2:
		return newDirectBytesDecoder(col, s, b, appendValue)
	case meta.EncodingDictionary, meta.EncodingDictionaryV2:
		return newDictionaryDecoder(col, s, b, appendValue)
	}
	return nil, orcerror.Newf(orcerror.InvalidColumnEncoding, "column %q declares %v", col.Name(), enc.Kind)
}

// newBinaryDecoder decodes binary columns; direct-only, a length stream
// plus value bytes.
func newBinaryDecoder(col *Column, s *Stripe) (Decoder, error) {
	if err := requireDirect(col); err != nil {
		return nil, err
	}
	b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	return newDirectBytesDecoder(col, s, b, func(p []byte) { b.Append(p) })
}

// A directBytesDecoder decodes variable-length values stored directly: an
// unsigned length per present row and as many bytes from the DATA stream.
type directBytesDecoder struct {
	lengths rle.IntReader
	data    *codec.Reader
	present *rle.BoolReader
	scratch []byte
	b       array.Builder
	append  func([]byte)
}

func newDirectBytesDecoder(col *Column, s *Stripe, b array.Builder, appendValue func([]byte)) (Decoder, error) {
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	lengths, err := intReader(s, col, meta.StreamLength, false)
	if err != nil {
		return nil, err
	}
	data, err := s.requiredStream(col.ID(), meta.StreamData)
	if err != nil {
		return nil, err
	}
	return &directBytesDecoder{
		lengths: lengths,
		data:    data,
		present: present,
		b:       b,
		append:  appendValue,
	}, nil
}

func (d *directBytesDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		length, err := d.lengths.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		if length < 0 {
			return nil, orcerror.Newf(orcerror.OutOfSpec, "negative value length %d", length)
		}
		if int64(len(d.scratch)) < length {
			d.scratch = make([]byte, length)
		}
		p := d.scratch[:length]
		if _, err := io.ReadFull(d.data, p); err != nil {
			return nil, valueErr(err)
		}
		d.append(p)
	}
	return d.b.NewArray(), nil
}

// A dictionaryDecoder decodes dictionary-encoded values: the DATA stream
// holds unsigned indices into a dictionary loaded once per stripe from the
// DICTIONARY_DATA bytes delimited by the LENGTH stream.
type dictionaryDecoder struct {
	indices rle.IntReader
	present *rle.BoolReader
	dict    [][]byte
	b       array.Builder
	append  func([]byte)
}

func newDictionaryDecoder(col *Column, s *Stripe, b array.Builder, appendValue func([]byte)) (Decoder, error) {
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	indices, err := intReader(s, col, meta.StreamData, false)
	if err != nil {
		return nil, err
	}
	size, err := col.DictionarySize()
	if err != nil {
		return nil, err
	}
	lengths, err := intReader(s, col, meta.StreamLength, false)
	if err != nil {
		return nil, err
	}
	data, err := s.requiredStream(col.ID(), meta.StreamDictionaryData)
	if err != nil {
		return nil, err
	}
	dict := make([][]byte, size)
	for i := range dict {
		length, err := lengths.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		if length < 0 {
			return nil, orcerror.Newf(orcerror.OutOfSpec, "negative dictionary entry length %d", length)
		}
		entry := make([]byte, length)
		if _, err := io.ReadFull(data, entry); err != nil {
			return nil, valueErr(err)
		}
		dict[i] = entry
	}
	dbg.Println("dictionary loaded:", len(dict), "entries")
	return &dictionaryDecoder{
		indices: indices,
		present: present,
		dict:    dict,
		b:       b,
		append:  appendValue,
	}, nil
}

func (d *dictionaryDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
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
		index, err := d.indices.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		if index < 0 || index >= int64(len(d.dict)) {
			return nil, orcerror.Newf(orcerror.OutOfBound, "dictionary index %d of %d entries", index, len(d.dict))
		}
		d.append(d.dict[index])
	}
	return d.b.NewArray(), nil
}
