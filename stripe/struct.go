package stripe

import (
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"

	"github.com/mewkiz/orc/internal/rle"
)

// A structDecoder decodes struct columns. Each child contributes one value
// at the same logical position of every present row; all children are
// invoked with the same batch size and the effective presence the struct
// has derived, so a null struct row never consumes from any child stream.
type structDecoder struct {
	present  *rle.BoolReader
	children []Decoder
	dtype    arrow.DataType
}

func newStructDecoder(col *Column, s *Stripe) (Decoder, error) {
	if err := requireDirect(col); err != nil {
		return nil, err
	}
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	dtype, err := col.DataType().ArrowType()
	if err != nil {
		return nil, err
	}
	cols := col.Children()
	children := make([]Decoder, len(cols))
	for i, child := range cols {
		if children[i], err = NewDecoder(child, s); err != nil {
			return nil, err
		}
	}
	return &structDecoder{present: present, children: children, dtype: dtype}, nil
}

func (d *structDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	childData := make([]arrow.ArrayData, len(d.children))
	for i, child := range d.children {
		arr, err := child.NextBatch(n, present)
		if err != nil {
			return nil, err
		}
		childData[i] = arr.Data()
	}
	buf, nulls := validity(present)
	data := array.NewData(d.dtype, n, []*memory.Buffer{buf}, childData, nulls, 0)
	return array.MakeFromData(data), nil
}
