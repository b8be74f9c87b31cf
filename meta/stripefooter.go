package meta

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// StreamKind enumerates the kinds of byte streams a column may own within a
// stripe.
type StreamKind uint8

// Stream kinds, numbered as in the stripe footer.
const (
	StreamPresent StreamKind = iota
	StreamData
	StreamLength
	StreamDictionaryData
	StreamDictionaryCount
	StreamSecondary
	StreamRowIndex
	StreamBloomFilter
	StreamBloomFilterUTF8
)

func (kind StreamKind) String() string {
	names := [...]string{
		"PRESENT", "DATA", "LENGTH", "DICTIONARY_DATA", "DICTIONARY_COUNT",
		"SECONDARY", "ROW_INDEX", "BLOOM_FILTER", "BLOOM_FILTER_UTF8",
	}
	if int(kind) < len(names) {
		return names[kind]
	}
	return fmt.Sprintf("unknown stream kind (%d)", uint8(kind))
}

// A StreamInfo is one entry of a stripe's stream directory. Streams are
// stored back to back in directory order.
type StreamInfo struct {
	// Kind of the stream.
	Kind StreamKind
	// Column the stream belongs to.
	Column uint32
	// Length in bytes of the stream.
	Length uint64
}

// ColumnEncodingKind enumerates the encodings of a column's streams.
type ColumnEncodingKind uint8

// Column encodings. The V2 variants use version 2 of the integer run-length
// encoding.
const (
	EncodingDirect ColumnEncodingKind = iota
	EncodingDictionary
	EncodingDirectV2
	EncodingDictionaryV2
)

func (kind ColumnEncodingKind) String() string {
	names := [...]string{"DIRECT", "DICTIONARY", "DIRECT_V2", "DICTIONARY_V2"}
	if int(kind) < len(names) {
		return names[kind]
	}
	return fmt.Sprintf("unknown column encoding (%d)", uint8(kind))
}

// A ColumnEncoding declares how one column's streams are encoded, and the
// dictionary size for dictionary encodings.
type ColumnEncoding struct {
	// Kind of the encoding.
	Kind ColumnEncodingKind
	// Number of entries of the dictionary.
	DictionarySize uint32
}

// A StripeFooter is the footer of one stripe: the stream directory, one
// encoding per column and the timezone of the writer.
type StripeFooter struct {
	// Stream directory, in storage order.
	Streams []StreamInfo
	// Encodings, indexed by column.
	Columns []ColumnEncoding
	// Timezone the stripe was written in.
	WriterTimezone string
}

// ParseStripeFooter parses a stripe footer from its decompressed bytes.
func ParseStripeFooter(body []byte) (*StripeFooter, error) {
	sf := new(StripeFooter)
	err := fields(body, "stripeFooter", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(body, "stripeFooter.streams")
			if err != nil {
				return 0, err
			}
			stream, err := parseStreamInfo(v)
			if err != nil {
				return 0, err
			}
			sf.Streams = append(sf.Streams, stream)
			return n, nil
		case 2:
			v, n, err := consumeBytes(body, "stripeFooter.columns")
			if err != nil {
				return 0, err
			}
			enc, err := parseColumnEncoding(v)
			if err != nil {
				return 0, err
			}
			sf.Columns = append(sf.Columns, enc)
			return n, nil
		case 3:
			v, n, err := consumeBytes(body, "stripeFooter.writerTimezone")
			sf.WriterTimezone = string(v)
			return n, err
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	return sf, nil
}

// parseStreamInfo parses one entry of the stream directory.
func parseStreamInfo(body []byte) (stream StreamInfo, err error) {
	err = fields(body, "stream", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.VarintType {
			return -1, nil
		}
		v, n, err := consumeVarint(body, "stream")
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			stream.Kind = StreamKind(v)
		case 2:
			stream.Column = uint32(v)
		case 3:
			stream.Length = v
		}
		return n, nil
	})
	return stream, err
}

// parseColumnEncoding parses one column encoding entry.
func parseColumnEncoding(body []byte) (enc ColumnEncoding, err error) {
	err = fields(body, "columnEncoding", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.VarintType {
			return -1, nil
		}
		v, n, err := consumeVarint(body, "columnEncoding")
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			enc.Kind = ColumnEncodingKind(v)
		case 2:
			enc.DictionarySize = uint32(v)
		}
		return n, nil
	})
	return enc, err
}
