package rle

import (
	"io"

	"github.com/icza/bitio"
)

// A ByteReader decodes the byte-oriented run-length encoding used by the
// present stream, boolean values and tinyint columns.
//
// Byte-RLE format (pseudo code):
//
//	type RUN struct {
//	   header uint8 // < 0x80: run of header+3 copies of the next byte.
//	                // >= 0x80: 256-header literal bytes follow.
//	   data   []uint8
//	}
//
// ref: https://orc.apache.org/specification/ORCv1/#byte-run-length-encoding
type ByteReader struct {
	r io.ByteReader
	// Remaining values of the current run.
	remaining int
	// Literal run if true, repeated value otherwise.
	literal bool
	// Repeated value of the current run.
	value byte
}

// NewByteReader returns a new byte run-length decoder reading from r.
func NewByteReader(r io.ByteReader) *ByteReader {
	return &ByteReader{r: r}
}

// Next returns the next decoded byte.
func (br *ByteReader) Next() (byte, error) {
	if br.remaining == 0 {
		if err := br.refill(); err != nil {
			return 0, err
		}
	}
	br.remaining--
	if br.literal {
		b, err := br.r.ReadByte()
		if err != nil {
			return 0, truncated(err)
		}
		return b, nil
	}
	return br.value, nil
}

// refill reads the next run header and, for repeated runs, the repeated
// value.
func (br *ByteReader) refill() error {
	header, err := br.r.ReadByte()
	if err != nil {
		// A clean end on a run boundary.
		return err
	}
	if header < 0x80 {
		// Run of repeated values; length 3-130.
		br.literal = false
		br.remaining = int(header) + 3
		br.value, err = br.r.ReadByte()
		if err != nil {
			return truncated(err)
		}
		return nil
	}
	// Literal run; length 1-128.
	br.literal = true
	br.remaining = 256 - int(header)
	return nil
}

// ReadByte implements io.ByteReader; bit-oriented readers layered on top of
// the decoded byte sequence consume it one byte at a time.
func (br *ByteReader) ReadByte() (byte, error) {
	return br.Next()
}

// Read implements io.Reader.
func (br *ByteReader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		b, err := br.Next()
		if err != nil {
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

// A BoolReader decodes the bit-packed boolean encoding used by the present
// stream and boolean columns: a byte run-length encoded stream whose bytes
// hold eight values each in big-endian bit order, MSB first. Trailing
// padding bits of the final byte are indistinguishable from values; the
// caller stops after the row count it knows.
type BoolReader struct {
	br *bitio.Reader
}

// NewBoolReader returns a new bit-unpacking boolean decoder reading from r.
func NewBoolReader(r io.ByteReader) *BoolReader {
	return &BoolReader{br: bitio.NewReader(NewByteReader(r))}
}

// Next returns the next decoded boolean.
func (br *BoolReader) Next() (bool, error) {
	return br.br.ReadBool()
}
