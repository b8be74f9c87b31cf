package meta

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/orcerror"
)

// appendPostScript encodes a postscript message on the protobuf wire level.
func appendPostScript(footerLength uint64, compression codec.Kind, blockSize uint64, magic string) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, footerLength)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(compression))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, blockSize)
	b = protowire.AppendTag(b, 8000, protowire.BytesType)
	b = protowire.AppendString(b, magic)
	return b
}

func TestParsePostScript(t *testing.T) {
	body := appendPostScript(1234, codec.Snappy, 64<<10, "ORC")
	ps, err := ParsePostScript(body)
	if err != nil {
		t.Fatalf("error while parsing postscript; %v", err)
	}
	if ps.FooterLength != 1234 {
		t.Errorf("footer length mismatch; expected 1234, got %d", ps.FooterLength)
	}
	if ps.Compression != codec.Snappy {
		t.Errorf("compression mismatch; expected SNAPPY, got %v", ps.Compression)
	}
	if ps.CompressionBlockSize != 64<<10 {
		t.Errorf("block size mismatch; expected %d, got %d", 64<<10, ps.CompressionBlockSize)
	}
}

func TestParsePostScriptBadMagic(t *testing.T) {
	body := appendPostScript(1, codec.None, 0, "CRO")
	if _, err := ParsePostScript(body); !orcerror.Is(err, orcerror.OutOfSpec) {
		t.Errorf("expected out-of-spec error for invalid magic, got %v", err)
	}
}

// appendType encodes one node of the type tree.
func appendType(kind TypeKind, subtypes []uint64, fieldNames []string) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kind))
	if len(subtypes) > 0 {
		var packed []byte
		for _, sub := range subtypes {
			packed = protowire.AppendVarint(packed, sub)
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	for _, name := range fieldNames {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	return b
}

func TestParseFooter(t *testing.T) {
	// struct<id:bigint,tags:list<string>>
	var body []byte
	for _, typ := range [][]byte{
		appendType(KindStruct, []uint64{1, 2}, []string{"id", "tags"}),
		appendType(KindLong, nil, nil),
		appendType(KindList, []uint64{3}, nil),
		appendType(KindString, nil, nil),
	} {
		body = protowire.AppendTag(body, 4, protowire.BytesType)
		body = protowire.AppendBytes(body, typ)
	}
	var stripe []byte
	stripe = protowire.AppendTag(stripe, 1, protowire.VarintType)
	stripe = protowire.AppendVarint(stripe, 3)
	stripe = protowire.AppendTag(stripe, 5, protowire.VarintType)
	stripe = protowire.AppendVarint(stripe, 100)
	body = protowire.AppendTag(body, 3, protowire.BytesType)
	body = protowire.AppendBytes(body, stripe)
	body = protowire.AppendTag(body, 6, protowire.VarintType)
	body = protowire.AppendVarint(body, 100)

	f, err := ParseFooter(body)
	if err != nil {
		t.Fatalf("error while parsing footer; %v", err)
	}
	if f.NumberOfRows != 100 {
		t.Errorf("row count mismatch; expected 100, got %d", f.NumberOfRows)
	}
	if len(f.Stripes) != 1 || f.Stripes[0].Offset != 3 || f.Stripes[0].NumberOfRows != 100 {
		t.Errorf("stripe directory mismatch; got %+v", f.Stripes)
	}
	if len(f.Types) != 4 {
		t.Fatalf("type count mismatch; expected 4, got %d", len(f.Types))
	}

	schema, err := NewSchema(f.Types)
	if err != nil {
		t.Fatalf("error while assembling schema; %v", err)
	}
	if schema.Kind != KindStruct || len(schema.Children) != 2 {
		t.Fatalf("root mismatch; got kind %v with %d children", schema.Kind, len(schema.Children))
	}
	if schema.Children[0].Kind != KindLong || schema.Children[0].ColumnIndex != 1 {
		t.Errorf("child 0 mismatch; got kind %v, index %d", schema.Children[0].Kind, schema.Children[0].ColumnIndex)
	}
	list := schema.Children[1]
	if list.Kind != KindList || list.Children[0].Kind != KindString || list.Children[0].ColumnIndex != 3 {
		t.Errorf("child 1 mismatch; got %+v", list)
	}
}

func TestNewSchemaRejectsCycles(t *testing.T) {
	types := []Type{
		{Kind: KindStruct, Subtypes: []uint32{1}, FieldNames: []string{"a"}},
		{Kind: KindList, Subtypes: []uint32{0}},
	}
	if _, err := NewSchema(types); !orcerror.Is(err, orcerror.OutOfSpec) {
		t.Errorf("expected out-of-spec error for cyclic subtypes, got %v", err)
	}
}

func TestParseStripeFooter(t *testing.T) {
	var stream []byte
	stream = protowire.AppendTag(stream, 1, protowire.VarintType)
	stream = protowire.AppendVarint(stream, uint64(StreamData))
	stream = protowire.AppendTag(stream, 2, protowire.VarintType)
	stream = protowire.AppendVarint(stream, 1)
	stream = protowire.AppendTag(stream, 3, protowire.VarintType)
	stream = protowire.AppendVarint(stream, 42)

	var enc []byte
	enc = protowire.AppendTag(enc, 1, protowire.VarintType)
	enc = protowire.AppendVarint(enc, uint64(EncodingDirectV2))

	var body []byte
	body = protowire.AppendTag(body, 1, protowire.BytesType)
	body = protowire.AppendBytes(body, stream)
	body = protowire.AppendTag(body, 2, protowire.BytesType)
	body = protowire.AppendBytes(body, enc)
	body = protowire.AppendTag(body, 3, protowire.BytesType)
	body = protowire.AppendString(body, "UTC")

	sf, err := ParseStripeFooter(body)
	if err != nil {
		t.Fatalf("error while parsing stripe footer; %v", err)
	}
	if len(sf.Streams) != 1 || sf.Streams[0].Kind != StreamData || sf.Streams[0].Column != 1 || sf.Streams[0].Length != 42 {
		t.Errorf("stream directory mismatch; got %+v", sf.Streams)
	}
	if len(sf.Columns) != 1 || sf.Columns[0].Kind != EncodingDirectV2 {
		t.Errorf("column encodings mismatch; got %+v", sf.Columns)
	}
	if sf.WriterTimezone != "UTC" {
		t.Errorf("timezone mismatch; expected UTC, got %q", sf.WriterTimezone)
	}
}
