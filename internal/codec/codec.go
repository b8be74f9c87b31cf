// Package codec decompresses the framed byte streams of an ORC file.
//
// Every stream of a compressed file is a sequence of chunks, each headed by
// three little-endian bytes: the low bit marks a chunk stored in its
// original form, the remaining 23 bits hold the chunk length. Compressed
// chunks decompress to at most the compression block size declared in the
// file postscript.
//
// ref: https://orc.apache.org/specification/ORCv1/#compression
package codec

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	lzo "github.com/rasky/go-lzo"

	"github.com/mewkiz/orc/orcerror"
)

// Kind enumerates the compression codecs of the ORC format.
type Kind uint8

// Compression kinds, numbered as in the file postscript.
const (
	None Kind = iota
	Zlib
	Snappy
	Lzo
	Lz4
	Zstd
)

func (kind Kind) String() string {
	switch kind {
	case None:
		return "NONE"
	case Zlib:
		return "ZLIB"
	case Snappy:
		return "SNAPPY"
	case Lzo:
		return "LZO"
	case Lz4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	}
	return fmt.Sprintf("unknown compression kind (%d)", uint8(kind))
}

// zstdDecoder is shared by all readers; DecodeAll is safe for concurrent
// use.
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

// A Reader yields the decompressed bytes of one stream. The byte buffers it
// hands out stay valid for its lifetime.
type Reader struct {
	kind Kind
	// Maximum decompressed size of a single chunk.
	blockSize int
	// Remaining framed bytes of the stream.
	data []byte
	// Decompressed bytes of the current chunk.
	buf []byte
	// Read position within buf.
	pos int
}

// NewReader returns a reader yielding the decompressed bytes of the given
// stream. With kind None the data is passed through untouched; otherwise it
// is parsed as a sequence of framed chunks with blockSize bounding the
// decompressed size of each.
func NewReader(kind Kind, blockSize int, data []byte) *Reader {
	return &Reader{kind: kind, blockSize: blockSize, data: data}
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos == len(r.buf) {
		if err := r.refill(); err != nil {
			return 0, err
		}
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if r.pos == len(r.buf) {
			if err := r.refill(); err != nil {
				if err == io.EOF && n > 0 {
					return n, nil
				}
				return n, err
			}
		}
		m := copy(p[n:], r.buf[r.pos:])
		r.pos += m
		n += m
	}
	return n, nil
}

// refill decodes the next chunk into buf.
func (r *Reader) refill() error {
	if len(r.data) == 0 {
		return io.EOF
	}
	if r.kind == None {
		r.buf = r.data
		r.pos = 0
		r.data = nil
		return nil
	}
	if len(r.data) < 3 {
		return orcerror.Newf(orcerror.OutOfSpec, "truncated chunk header: %d bytes remain", len(r.data))
	}
	header := uint32(r.data[0]) | uint32(r.data[1])<<8 | uint32(r.data[2])<<16
	isOriginal := header&1 == 1
	length := int(header >> 1)
	if length > len(r.data)-3 {
		return orcerror.Newf(orcerror.OutOfSpec, "chunk length %d exceeds %d remaining stream bytes", length, len(r.data)-3)
	}
	chunk := r.data[3 : 3+length]
	r.data = r.data[3+length:]
	r.pos = 0
	if isOriginal {
		r.buf = chunk
		return nil
	}
	buf, err := decompress(r.kind, r.blockSize, chunk)
	if err != nil {
		return err
	}
	r.buf = buf
	return nil
}

// decompress expands one compressed chunk.
func decompress(kind Kind, blockSize int, chunk []byte) ([]byte, error) {
	switch kind {
	case Zlib:
		// ORC "ZLIB" chunks are raw DEFLATE, without the zlib wrapper.
		fr := flate.NewReader(bytes.NewReader(chunk))
		defer fr.Close()
		buf, err := io.ReadAll(fr)
		return buf, orcerror.Wrap(orcerror.OutOfSpec, err, "corrupt DEFLATE chunk")
	case Snappy:
		buf, err := snappy.Decode(nil, chunk)
		return buf, orcerror.Wrap(orcerror.OutOfSpec, err, "corrupt snappy chunk")
	case Lzo:
		buf, err := lzo.Decompress1X(bytes.NewReader(chunk), len(chunk), blockSize)
		return buf, orcerror.Wrap(orcerror.OutOfSpec, err, "corrupt LZO chunk")
	case Lz4:
		buf := make([]byte, blockSize)
		n, err := lz4.UncompressBlock(chunk, buf)
		if err != nil {
			return nil, orcerror.Wrap(orcerror.OutOfSpec, err, "corrupt LZ4 chunk")
		}
		return buf[:n], nil
	case Zstd:
		buf, err := zstdDecoder.DecodeAll(chunk, nil)
		return buf, orcerror.Wrap(orcerror.OutOfSpec, err, "corrupt zstd chunk")
	}
	return nil, orcerror.Newf(orcerror.UnsupportedTypeVariant, "compression kind %v", kind)
}

// Decompress expands an entire framed stream at once; used for the file
// footer and stripe footers, whose full size is known up front.
func Decompress(kind Kind, blockSize int, data []byte) ([]byte, error) {
	if kind == None {
		return data, nil
	}
	r := NewReader(kind, blockSize, data)
	return io.ReadAll(r)
}
