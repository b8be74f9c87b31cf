// Package orc provides access to ORC (Optimized Row Columnar) files,
// materializing their contents as Arrow record batches.
//
// The basic structure of an ORC file is:
//   - The three byte string "ORC".
//   - One or more stripes, each holding per-column streams and a stripe
//     footer.
//   - The file footer with the stripe directory and the type tree.
//   - The postscript, naming the compression codec, and its one-byte
//     length as the very last byte of the file.
//
// ref: https://orc.apache.org/specification/ORCv1/
package orc

import (
	"io"

	"github.com/apache/arrow/go/v15/arrow"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// maxTailLength bounds the first speculative read at the file tail, from
// which the postscript is parsed; the footer is read separately.
const maxTailLength = 16 << 10

// A Reader is an opened ORC file: its parsed tail and a chunk reader over
// its bytes. It is read-only after construction and safe for concurrent
// use; record readers derived from it each own their decode state.
type Reader struct {
	r      ChunkReader
	ps     *meta.PostScript
	footer *meta.Footer
	// Root of the schema tree; always a struct.
	schema *meta.DataType
	// Closer of the underlying mapping, if the reader owns one.
	c io.Closer
}

// Open opens the provided file and returns a parsed ORC reader. The file
// is memory-mapped; Close releases the mapping.
func Open(path string) (*Reader, error) {
	mr, err := openMmap(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(mr)
	if err != nil {
		mr.Close()
		return nil, err
	}
	r.c = mr
	return r, nil
}

// NewReader parses the tail of the given file and returns a reader for its
// record batches.
func NewReader(cr ChunkReader) (*Reader, error) {
	size := cr.Size()
	if size == 0 {
		return nil, orcerror.New(orcerror.EmptyFile, "no content")
	}
	tailLength := min(size, maxTailLength)
	tail, err := cr.GetBytes(size-tailLength, tailLength)
	if err != nil {
		return nil, orcerror.Wrap(orcerror.IO, err, "read file tail")
	}

	// The last byte of the file holds the length of the postscript in
	// front of it.
	psLength := uint64(tail[len(tail)-1])
	if psLength+1 > tailLength {
		return nil, orcerror.Newf(orcerror.OutOfSpec, "postscript length %d exceeds file size %d", psLength, size)
	}
	ps, err := meta.ParsePostScript(tail[tailLength-1-psLength : tailLength-1])
	if err != nil {
		return nil, err
	}

	footerEnd := size - 1 - psLength
	if ps.FooterLength > footerEnd {
		return nil, orcerror.Newf(orcerror.OutOfSpec, "footer length %d exceeds file size %d", ps.FooterLength, size)
	}
	raw, err := cr.GetBytes(footerEnd-ps.FooterLength, ps.FooterLength)
	if err != nil {
		return nil, orcerror.Wrap(orcerror.IO, err, "read file footer")
	}
	body, err := codec.Decompress(ps.Compression, int(ps.CompressionBlockSize), raw)
	if err != nil {
		return nil, err
	}
	footer, err := meta.ParseFooter(body)
	if err != nil {
		return nil, err
	}
	schema, err := meta.NewSchema(footer.Types)
	if err != nil {
		return nil, err
	}
	if schema.Kind != meta.KindStruct {
		return nil, orcerror.Newf(orcerror.UnsupportedTypeVariant, "non-struct root type %v", schema.Kind)
	}
	return &Reader{r: cr, ps: ps, footer: footer, schema: schema}, nil
}

// Close releases the resources the reader owns. Readers over
// caller-supplied chunk readers own none.
func (r *Reader) Close() error {
	if r.c != nil {
		return r.c.Close()
	}
	return nil
}

// NumberOfRows returns the total row count of the file.
func (r *Reader) NumberOfRows() uint64 {
	return r.footer.NumberOfRows
}

// PostScript returns the parsed postscript of the file.
func (r *Reader) PostScript() *meta.PostScript {
	return r.ps
}

// Footer returns the parsed file footer.
func (r *Reader) Footer() *meta.Footer {
	return r.footer
}

// Schema returns the Arrow schema of the file, or of the named subset of
// its top-level fields.
func (r *Reader) Schema(fields ...string) (*arrow.Schema, error) {
	children, err := r.project(fields)
	if err != nil {
		return nil, err
	}
	out := make([]arrow.Field, len(children))
	for i, child := range children {
		typ, err := child.dataType.ArrowType()
		if err != nil {
			return nil, err
		}
		out[i] = arrow.Field{Name: child.name, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(out, nil), nil
}

// A projectedField pairs a top-level field name with its schema subtree.
type projectedField struct {
	name     string
	dataType *meta.DataType
}

// project resolves a projection of top-level field names, preserving
// declaration order. An empty projection selects every field.
func (r *Reader) project(fields []string) ([]projectedField, error) {
	want := make(map[string]bool, len(fields))
	for _, name := range fields {
		want[name] = true
	}
	var out []projectedField
	for i, name := range r.schema.FieldNames {
		if len(fields) > 0 && !want[name] {
			continue
		}
		delete(want, name)
		out = append(out, projectedField{name: name, dataType: r.schema.Children[i]})
	}
	for name := range want {
		return nil, orcerror.Newf(orcerror.InvalidInput, "field %q not found in schema", name)
	}
	return out, nil
}

// include collects the column indices of the projected subtrees, so that
// stripe loading can skip the streams of everything else. The root column
// is always included.
func include(children []projectedField) map[int]bool {
	out := map[int]bool{0: true}
	var walk func(dt *meta.DataType)
	walk = func(dt *meta.DataType) {
		out[dt.ColumnIndex] = true
		for _, child := range dt.Children {
			walk(child)
		}
	}
	for _, child := range children {
		walk(child.dataType)
	}
	return out
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
