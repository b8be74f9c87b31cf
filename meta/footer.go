package meta

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// A StripeInformation locates one stripe within the file. The index
// streams, data streams and stripe footer are stored back to back starting
// at Offset.
type StripeInformation struct {
	// Offset in bytes of the stripe from the start of the file.
	Offset uint64
	// Length in bytes of the index streams.
	IndexLength uint64
	// Length in bytes of the data streams.
	DataLength uint64
	// Length in bytes of the stripe footer.
	FooterLength uint64
	// Number of rows in the stripe.
	NumberOfRows uint64
}

// A Footer is the file footer: the stripe directory, the type tree and the
// total row count.
type Footer struct {
	// Length in bytes of the file header, i.e. the magic.
	HeaderLength uint64
	// Length in bytes of everything before the file metadata section.
	ContentLength uint64
	// Stripe directory.
	Stripes []StripeInformation
	// Flattened type tree in pre-order, with the synthetic root at index 0.
	Types []Type
	// Total number of rows of the file.
	NumberOfRows uint64
	// Number of rows between row index entries.
	RowIndexStride uint32
}

// A Type is one node of the flattened type tree.
type Type struct {
	// Kind of the type.
	Kind TypeKind
	// Column indices of the child types.
	Subtypes []uint32
	// Field names of a struct type, one per subtype.
	FieldNames []string
	// Maximum length of varchar and char types.
	MaximumLength uint32
	// Precision and scale of decimal types.
	Precision uint32
	Scale     uint32
}

// TypeKind enumerates the ORC column types.
type TypeKind uint8

// Column types, numbered as in the type tree.
const (
	KindBoolean TypeKind = iota
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindTimestamp
	KindList
	KindMap
	KindStruct
	KindUnion
	KindDecimal
	KindDate
	KindVarchar
	KindChar
	KindTimestampInstant
)

func (kind TypeKind) String() string {
	names := [...]string{
		"boolean", "tinyint", "smallint", "int", "bigint", "float", "double",
		"string", "binary", "timestamp", "list", "map", "struct", "union",
		"decimal", "date", "varchar", "char", "timestamp_instant",
	}
	if int(kind) < len(names) {
		return names[kind]
	}
	return fmt.Sprintf("unknown type kind (%d)", uint8(kind))
}

// ParseFooter parses the file footer from its decompressed bytes.
func ParseFooter(body []byte) (*Footer, error) {
	f := new(Footer)
	err := fields(body, "footer", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(body, "footer.headerLength")
			f.HeaderLength = v
			return n, err
		case 2:
			v, n, err := consumeVarint(body, "footer.contentLength")
			f.ContentLength = v
			return n, err
		case 3:
			v, n, err := consumeBytes(body, "footer.stripes")
			if err != nil {
				return 0, err
			}
			si, err := parseStripeInformation(v)
			if err != nil {
				return 0, err
			}
			f.Stripes = append(f.Stripes, si)
			return n, nil
		case 4:
			v, n, err := consumeBytes(body, "footer.types")
			if err != nil {
				return 0, err
			}
			t, err := parseType(v)
			if err != nil {
				return 0, err
			}
			f.Types = append(f.Types, t)
			return n, nil
		case 6:
			v, n, err := consumeVarint(body, "footer.numberOfRows")
			f.NumberOfRows = v
			return n, err
		case 8:
			v, n, err := consumeVarint(body, "footer.rowIndexStride")
			f.RowIndexStride = uint32(v)
			return n, err
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// parseStripeInformation parses one entry of the stripe directory.
func parseStripeInformation(body []byte) (si StripeInformation, err error) {
	err = fields(body, "stripeInformation", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		if typ != protowire.VarintType {
			return -1, nil
		}
		v, n, err := consumeVarint(body, "stripeInformation")
		if err != nil {
			return 0, err
		}
		switch num {
		case 1:
			si.Offset = v
		case 2:
			si.IndexLength = v
		case 3:
			si.DataLength = v
		case 4:
			si.FooterLength = v
		case 5:
			si.NumberOfRows = v
		}
		return n, nil
	})
	return si, err
}

// parseType parses one node of the flattened type tree.
func parseType(body []byte) (t Type, err error) {
	err = fields(body, "type", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(body, "type.kind")
			t.Kind = TypeKind(v)
			return n, err
		case 2:
			vs, n, err := consumeUint32s(t.Subtypes, typ, body, "type.subtypes")
			t.Subtypes = vs
			return n, err
		case 3:
			v, n, err := consumeBytes(body, "type.fieldNames")
			t.FieldNames = append(t.FieldNames, string(v))
			return n, err
		case 4:
			v, n, err := consumeVarint(body, "type.maximumLength")
			t.MaximumLength = uint32(v)
			return n, err
		case 5:
			v, n, err := consumeVarint(body, "type.precision")
			t.Precision = uint32(v)
			return n, err
		case 6:
			v, n, err := consumeVarint(body, "type.scale")
			t.Scale = uint32(v)
			return n, err
		}
		return -1, nil
	})
	return t, err
}
