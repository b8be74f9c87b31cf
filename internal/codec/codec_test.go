package codec

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// frame prepends the 3-byte chunk header to a chunk body.
func frame(chunk []byte, isOriginal bool) []byte {
	header := uint32(len(chunk)) << 1
	if isOriginal {
		header |= 1
	}
	out := []byte{byte(header), byte(header >> 8), byte(header >> 16)}
	return append(out, chunk...)
}

func TestReaderOriginalChunks(t *testing.T) {
	want := []byte("columnar at rest, rowwise in flight")
	// Split across two original chunks.
	data := frame(want[:10], true)
	data = append(data, frame(want[10:], true)...)

	got, err := io.ReadAll(NewReader(Zlib, 64, data))
	if err != nil {
		t.Fatalf("error while reading original chunks; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %q, got %q", want, got)
	}
}

func TestReaderNone(t *testing.T) {
	want := []byte{0x01, 0x02, 0x03}
	got, err := io.ReadAll(NewReader(None, 64, want))
	if err != nil {
		t.Fatalf("error while reading uncompressed stream; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %v, got %v", want, got)
	}
}

func TestReaderZlib(t *testing.T) {
	want := bytes.Repeat([]byte("orc"), 100)
	buf := new(bytes.Buffer)
	fw, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(NewReader(Zlib, len(want), frame(buf.Bytes(), false)))
	if err != nil {
		t.Fatalf("error while reading DEFLATE chunk; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %q, got %q", want, got)
	}
}

func TestReaderSnappy(t *testing.T) {
	want := bytes.Repeat([]byte("stripe"), 50)
	chunk := snappy.Encode(nil, want)

	got, err := io.ReadAll(NewReader(Snappy, len(want), frame(chunk, false)))
	if err != nil {
		t.Fatalf("error while reading snappy chunk; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %q, got %q", want, got)
	}
}

func TestReaderZstd(t *testing.T) {
	want := bytes.Repeat([]byte("presence"), 40)
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	chunk := enc.EncodeAll(want, nil)
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(NewReader(Zstd, len(want), frame(chunk, false)))
	if err != nil {
		t.Fatalf("error while reading zstd chunk; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %q, got %q", want, got)
	}
}

func TestReaderLz4(t *testing.T) {
	want := bytes.Repeat([]byte("lengths"), 40)
	var c lz4.Compressor
	dst := make([]byte, lz4.CompressBlockBound(len(want)))
	n, err := c.CompressBlock(want, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Skip("input not compressible by LZ4")
	}

	got, err := io.ReadAll(NewReader(Lz4, len(want), frame(dst[:n], false)))
	if err != nil {
		t.Fatalf("error while reading LZ4 chunk; %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("data mismatch; expected %q, got %q", want, got)
	}
}

func TestReaderTruncatedHeader(t *testing.T) {
	if _, err := io.ReadAll(NewReader(Zlib, 64, []byte{0x0B, 0x00})); err == nil {
		t.Error("expected error for truncated chunk header, got none")
	}
}
