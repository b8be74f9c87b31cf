// Package rle implements the run-length encodings used by ORC streams.
//
// The package covers the byte-oriented run-length encoding used by the
// present and boolean streams, and both versions of the integer run-length
// encoding signalled by a column's encoding kind. All readers surface their
// values as lazy, fallible sequences; each element is either a value or a
// fatal decode error after which the sequence terminates. A clean end of
// the underlying stream is reported as io.EOF.
//
// ref: https://orc.apache.org/specification/ORCv1/
package rle

import (
	"io"
	"math/big"

	"github.com/mewkiz/orc/internal/bits"
	"github.com/mewkiz/orc/orcerror"
)

// An IntReader is a lazy sequence of decoded 64-bit integers. Next returns
// io.EOF when the underlying stream is exhausted on a run boundary, and an
// out-of-spec error when it is exhausted within a run.
type IntReader interface {
	Next() (int64, error)
}

// maxVarintLen64 is the maximum length of a base-128 varint encoding a
// 64-bit integer.
const maxVarintLen64 = 10

// readUvarint reads an unsigned base-128 varint.
func readUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == maxVarintLen64-1 && b > 1 {
			return 0, orcerror.New(orcerror.VarintTooLarge, "varint exceeds 64 bits")
		}
		x |= uint64(b&0x7F) << s
		if b&0x80 == 0 {
			return x, nil
		}
		s += 7
	}
}

// readSvarint reads a signed, ZigZag encoded base-128 varint.
func readSvarint(r io.ByteReader) (int64, error) {
	x, err := readUvarint(r)
	if err != nil {
		return 0, err
	}
	return bits.DecodeZigZag(x), nil
}

// maxBigVarintLen is the maximum length in bytes of the unbounded varints
// holding decimal unscaled values; 20 bytes cover the 128-bit range of the
// widest ORC decimal with room for the ZigZag bit.
const maxBigVarintLen = 20

// ReadBigVarint reads a signed, ZigZag encoded base-128 varint of arbitrary
// length into a big integer. Decimal unscaled values use this encoding, as
// precisions above 18 digits exceed the 64-bit range.
func ReadBigVarint(r io.ByteReader) (*big.Int, error) {
	x := new(big.Int)
	limb := new(big.Int)
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if i == maxBigVarintLen {
			return nil, orcerror.New(orcerror.VarintTooLarge, "decimal varint exceeds 128 bits")
		}
		limb.SetUint64(uint64(b & 0x7F))
		x.Or(x, limb.Lsh(limb, uint(i)*7))
		if b&0x80 == 0 {
			break
		}
	}
	// ZigZag decode: even values are non-negative halves, odd values are
	// negative halves.
	if x.Bit(0) == 0 {
		return x.Rsh(x, 1), nil
	}
	x.Rsh(x, 1)
	x.Add(x, big.NewInt(1))
	return x.Neg(x), nil
}

// truncated converts the end-of-stream errors of the underlying reader into
// the out-of-spec error mandated for runs cut short mid-decode.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return orcerror.New(orcerror.OutOfSpec, "truncated run")
	}
	return err
}
