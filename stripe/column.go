package stripe

import (
	"fmt"

	"github.com/apache/arrow/go/v15/arrow"

	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// A Column describes one column of a stripe: its name, type, and a shared
// reference to the stripe footer holding its encoding and dictionary size.
// Columns are immutable values; cloning one for a child is cheap.
type Column struct {
	// Number of rows of the stripe.
	numberOfRows uint64
	// Shared stripe footer; read-only after construction.
	footer *meta.StripeFooter
	// Name of the column within its parent.
	name string
	// Type of the column.
	dataType *meta.DataType
}

// NewColumn returns a column descriptor for the given schema node.
func NewColumn(name string, dataType *meta.DataType, footer *meta.StripeFooter, numberOfRows uint64) *Column {
	return &Column{
		numberOfRows: numberOfRows,
		footer:       footer,
		name:         name,
		dataType:     dataType,
	}
}

// Name returns the name of the column within its parent.
func (col *Column) Name() string {
	return col.name
}

// DataType returns the schema node of the column.
func (col *Column) DataType() *meta.DataType {
	return col.dataType
}

// ID returns the stable column index used to look up encodings and streams
// in the stripe footer.
func (col *Column) ID() int {
	return col.dataType.ColumnIndex
}

// NumberOfRows returns the row count of the stripe the column belongs to.
func (col *Column) NumberOfRows() uint64 {
	return col.numberOfRows
}

// Encoding returns the declared encoding of the column.
func (col *Column) Encoding() (meta.ColumnEncoding, error) {
	if col.ID() >= len(col.footer.Columns) {
		return meta.ColumnEncoding{}, orcerror.Newf(orcerror.OutOfSpec, "column %d has no encoding in stripe footer", col.ID())
	}
	return col.footer.Columns[col.ID()], nil
}

// DictionarySize returns the number of dictionary entries of a
// dictionary-encoded column.
func (col *Column) DictionarySize() (int, error) {
	enc, err := col.Encoding()
	if err != nil {
		return 0, err
	}
	return int(enc.DictionarySize), nil
}

// Field returns the Arrow field the column decodes to.
func (col *Column) Field() (arrow.Field, error) {
	typ, err := col.dataType.ArrowType()
	if err != nil {
		return arrow.Field{}, err
	}
	return arrow.Field{Name: col.name, Type: typ, Nullable: true}, nil
}

// Children derives the child columns of a composite column. Scalars have
// none; a list has one child named "item"; a map has two children named
// "key" and "value"; a struct has one child per declared field in
// declaration order; a union has one child per variant, named by ordinal.
func (col *Column) Children() []*Column {
	dt := col.dataType
	switch dt.Kind {
	case meta.KindStruct:
		children := make([]*Column, len(dt.Children))
		for i, child := range dt.Children {
			children[i] = NewColumn(dt.FieldNames[i], child, col.footer, col.numberOfRows)
		}
		return children
	case meta.KindList:
		return []*Column{NewColumn("item", dt.Children[0], col.footer, col.numberOfRows)}
	case meta.KindMap:
		return []*Column{
			NewColumn("key", dt.Children[0], col.footer, col.numberOfRows),
			NewColumn("value", dt.Children[1], col.footer, col.numberOfRows),
		}
	case meta.KindUnion:
		children := make([]*Column, len(dt.Children))
		for i, child := range dt.Children {
			children[i] = NewColumn(fmt.Sprintf("%d", i), child, col.footer, col.numberOfRows)
		}
		return children
	}
	return nil
}
