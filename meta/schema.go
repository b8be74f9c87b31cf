package meta

import (
	"github.com/apache/arrow/go/v15/arrow"

	"github.com/mewkiz/orc/orcerror"
)

// A DataType is one node of the ORC schema tree. It is immutable after
// construction and shared by reference between all decoders of a stripe.
type DataType struct {
	// Kind of the type.
	Kind TypeKind
	// Stable index of the column, assigned by pre-order traversal of the
	// schema tree with the synthetic root at 0. Encodings and streams are
	// looked up in the stripe footer by this index.
	ColumnIndex int
	// Maximum length of varchar and char types.
	MaximumLength int
	// Precision and scale of decimal types.
	Precision int
	Scale     int
	// Field names of a struct type, one per child.
	FieldNames []string
	// Child types, in declaration order.
	Children []*DataType
}

// NewSchema assembles the schema tree from the flattened pre-order type
// list of the file footer. The node at index 0 is the synthetic root.
func NewSchema(types []Type) (*DataType, error) {
	if len(types) == 0 {
		return nil, orcerror.New(orcerror.OutOfSpec, "no types in file footer")
	}
	return newDataType(types, 0)
}

// newDataType builds the subtree rooted at column index i.
func newDataType(types []Type, i int) (*DataType, error) {
	t := types[i]
	dt := &DataType{
		Kind:          t.Kind,
		ColumnIndex:   i,
		MaximumLength: int(t.MaximumLength),
		Precision:     int(t.Precision),
		Scale:         int(t.Scale),
		FieldNames:    t.FieldNames,
	}
	for _, sub := range t.Subtypes {
		// Pre-order assignment means every child index is strictly greater
		// than its parent's; anything else cannot be a tree.
		if int(sub) <= i || int(sub) >= len(types) {
			return nil, orcerror.Newf(orcerror.OutOfSpec, "type %d references invalid subtype %d", i, sub)
		}
		child, err := newDataType(types, int(sub))
		if err != nil {
			return nil, err
		}
		dt.Children = append(dt.Children, child)
	}
	switch {
	case dt.Kind == KindStruct && len(dt.FieldNames) != len(dt.Children):
		return nil, orcerror.Newf(orcerror.OutOfSpec, "struct type %d has %d field names for %d children", i, len(dt.FieldNames), len(dt.Children))
	case dt.Kind == KindList && len(dt.Children) != 1:
		return nil, orcerror.Newf(orcerror.OutOfSpec, "list type %d has %d children", i, len(dt.Children))
	case dt.Kind == KindMap && len(dt.Children) != 2:
		return nil, orcerror.Newf(orcerror.OutOfSpec, "map type %d has %d children", i, len(dt.Children))
	}
	return dt, nil
}

// ArrowType returns the Arrow data type the ORC type decodes to. Char and
// varchar lower to plain strings; timestamps decode to nanoseconds.
func (dt *DataType) ArrowType() (arrow.DataType, error) {
	switch dt.Kind {
	case KindBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case KindByte:
		return arrow.PrimitiveTypes.Int8, nil
	case KindShort:
		return arrow.PrimitiveTypes.Int16, nil
	case KindInt:
		return arrow.PrimitiveTypes.Int32, nil
	case KindLong:
		return arrow.PrimitiveTypes.Int64, nil
	case KindFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case KindDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case KindString, KindVarchar, KindChar:
		return arrow.BinaryTypes.String, nil
	case KindBinary:
		return arrow.BinaryTypes.Binary, nil
	case KindTimestamp, KindTimestampInstant:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	case KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	case KindDecimal:
		return &arrow.Decimal128Type{Precision: int32(dt.Precision), Scale: int32(dt.Scale)}, nil
	case KindList:
		item, err := dt.Children[0].ArrowType()
		if err != nil {
			return nil, err
		}
		return arrow.ListOfField(arrow.Field{Name: "item", Type: item, Nullable: true}), nil
	case KindMap:
		key, err := dt.Children[0].ArrowType()
		if err != nil {
			return nil, err
		}
		value, err := dt.Children[1].ArrowType()
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(key, value), nil
	case KindStruct:
		fields := make([]arrow.Field, len(dt.Children))
		for i, child := range dt.Children {
			typ, err := child.ArrowType()
			if err != nil {
				return nil, err
			}
			fields[i] = arrow.Field{Name: dt.FieldNames[i], Type: typ, Nullable: true}
		}
		return arrow.StructOf(fields...), nil
	case KindUnion:
		return nil, orcerror.New(orcerror.UnsupportedType, "union")
	}
	return nil, orcerror.Newf(orcerror.UnsupportedType, "%v", dt.Kind)
}
