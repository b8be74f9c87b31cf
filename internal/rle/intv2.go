package rle

import (
	"io"

	"github.com/JohnCGriffin/overflow"
	"github.com/icza/bitio"

	"github.com/mewkiz/orc/internal/bits"
	"github.com/mewkiz/orc/orcerror"
)

// Sub-encodings of RLEv2, signalled by the top two bits of the first header
// byte of each run.
const (
	subShortRepeat = iota
	subDirect
	subPatchedBase
	subDelta
)

// widthTable maps the 5-bit width codes of RLEv2 headers to bit widths.
//
// ref: https://orc.apache.org/specification/ORCv1/#run-length-encoding-version-2
var widthTable = [32]uint8{
	1, 2, 3, 4, 5, 6, 7, 8,
	9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24,
	26, 28, 30, 32, 40, 48, 56, 64,
}

// maxRunLength is the maximum number of values a single RLEv2 run encodes.
const maxRunLength = 512

// An IntV2Reader decodes version 2 of the ORC integer run-length encoding.
// Each run holds up to 512 values; the reader refills its internal buffer
// one run at a time and surfaces values one by one.
//
// Signed streams apply ZigZag decoding after unpacking where the
// sub-encoding calls for it; unsigned streams return the raw magnitude.
// Bit-packed segments are MSB first and never straddle a run boundary.
type IntV2Reader struct {
	br *bitio.Reader
	// Values of signed streams are ZigZag decoded.
	signed bool
	// Decoded values of the current run.
	buf []int64
	// Index of the next value to surface from buf.
	pos int
}

// NewIntV2Reader returns a new RLEv2 integer decoder reading from r.
func NewIntV2Reader(r io.Reader, signed bool) *IntV2Reader {
	return &IntV2Reader{
		br:     bitio.NewReader(r),
		signed: signed,
		buf:    make([]int64, 0, maxRunLength),
	}
}

// Next returns the next decoded integer.
func (ir *IntV2Reader) Next() (int64, error) {
	if ir.pos == len(ir.buf) {
		if err := ir.refill(); err != nil {
			return 0, err
		}
	}
	v := ir.buf[ir.pos]
	ir.pos++
	return v, nil
}

// refill decodes the next run into the internal buffer.
func (ir *IntV2Reader) refill() error {
	ir.buf = ir.buf[:0]
	ir.pos = 0

	header, err := ir.br.ReadBits(8)
	if err != nil {
		// A clean end on a run boundary.
		return err
	}
	switch header >> 6 {
	case subShortRepeat:
		return ir.shortRepeat(byte(header))
	case subDirect:
		return ir.direct(byte(header))
	case subPatchedBase:
		return ir.patchedBase(byte(header))
	default:
		return ir.delta(byte(header))
	}
}

// shortRepeat decodes a SHORT_REPEAT run: a single value of 1-8 bytes
// repeated 3-10 times.
//
// Header layout (pseudo code):
//
//	type SHORT_REPEAT struct {
//	   encoding uint2 // 0
//	   width    uint3 // value width in bytes, minus 1.
//	   count    uint3 // repeat count, minus 3.
//	   value    []uint8 // width bytes, big-endian.
//	}
func (ir *IntV2Reader) shortRepeat(header byte) error {
	width := uint8(header>>3)&0x7 + 1
	count := int(header&0x7) + 3

	x, err := ir.br.ReadBits(width * 8)
	if err != nil {
		return truncated(err)
	}
	v := int64(x)
	if ir.signed {
		v = bits.DecodeZigZag(x)
	}
	for i := 0; i < count; i++ {
		ir.buf = append(ir.buf, v)
	}
	return nil
}

// runLength reads the low bit of the header byte and the second header byte
// holding the 9-bit run length, minus 1.
func (ir *IntV2Reader) runLength(header byte) (int, error) {
	low, err := ir.br.ReadBits(8)
	if err != nil {
		return 0, truncated(err)
	}
	return (int(header&1)<<8 | int(low)) + 1, nil
}

// direct decodes a DIRECT run: 1-512 fixed-width values at the bit width
// named by the header's 5-bit width code.
//
// Header layout (pseudo code):
//
//	type DIRECT struct {
//	   encoding uint2 // 1
//	   width    uint5 // width code into the width table.
//	   length   uint9 // number of values, minus 1.
//	   data     []bit // length values of width bits, MSB first.
//	}
func (ir *IntV2Reader) direct(header byte) error {
	width := widthTable[header>>1&0x1F]
	n, err := ir.runLength(header)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		x, err := ir.br.ReadBits(width)
		if err != nil {
			return truncated(err)
		}
		v := int64(x)
		if ir.signed {
			v = bits.DecodeZigZag(x)
		}
		ir.buf = append(ir.buf, v)
	}
	ir.br.Align()
	return nil
}

// patchedBase decodes a PATCHED_BASE run: a DIRECT run of offsets from a
// base value, plus a patch list supplying the high bits of outliers.
//
// Header layout (pseudo code):
//
//	type PATCHED_BASE struct {
//	   encoding    uint2 // 2
//	   width       uint5 // width code of the offset data.
//	   length      uint9 // number of values, minus 1.
//	   base_width  uint3 // base value width in bytes, minus 1.
//	   patch_width uint5 // width code of the patch values.
//	   gap_width   uint3 // width of the patch gaps in bits, minus 1.
//	   patch_count uint5 // number of patch list entries.
//	   base        []uint8 // base_width bytes, sign-magnitude.
//	   data        []bit   // length offsets of width bits.
//	   patches     []bit   // patch_count entries of gap_width+patch_width bits.
//	}
func (ir *IntV2Reader) patchedBase(header byte) error {
	width := widthTable[header>>1&0x1F]
	n, err := ir.runLength(header)
	if err != nil {
		return err
	}
	third, err := ir.br.ReadBits(8)
	if err != nil {
		return truncated(err)
	}
	fourth, err := ir.br.ReadBits(8)
	if err != nil {
		return truncated(err)
	}
	baseWidth := uint8(third>>5)&0x7 + 1
	patchWidth := widthTable[third&0x1F]
	gapWidth := uint8(fourth>>5)&0x7 + 1
	patchCount := int(fourth & 0x1F)
	if gapWidth+patchWidth > 64 {
		return orcerror.Newf(orcerror.OutOfSpec, "patched base: gap width %d plus patch width %d exceeds 64 bits", gapWidth, patchWidth)
	}

	// Base value, sign-magnitude encoded.
	raw, err := ir.br.ReadBits(baseWidth * 8)
	if err != nil {
		return truncated(err)
	}
	base := bits.DecodeSignMagnitude(raw, uint(baseWidth)*8)

	// Offset data. Note that PATCHED_BASE never applies ZigZag decoding;
	// the sign lives in the base value.
	for i := 0; i < n; i++ {
		x, err := ir.br.ReadBits(width)
		if err != nil {
			return truncated(err)
		}
		ir.buf = append(ir.buf, int64(x))
	}
	ir.br.Align()

	// Patch list. Each entry holds a gap from the previous patched index
	// and the high bits of the value at that index.
	index := 0
	for i := 0; i < patchCount; i++ {
		entry, err := ir.br.ReadBits(gapWidth + patchWidth)
		if err != nil {
			return truncated(err)
		}
		gap := int(entry >> patchWidth)
		patch := entry & (1<<patchWidth - 1)
		index += gap
		if index >= n {
			return orcerror.Newf(orcerror.OutOfSpec, "patched base: patch index %d walks past run boundary %d", index, n)
		}
		ir.buf[index] |= int64(patch << width)
	}
	ir.br.Align()

	for i := range ir.buf {
		ir.buf[i] += base
	}
	return nil
}

// delta decodes a DELTA run: a base value, a signed first delta and a
// bit-packed sequence of further delta magnitudes applied in the direction
// of the first delta. A width code of zero means the first delta repeats
// for the entire run.
//
// Header layout (pseudo code):
//
//	type DELTA struct {
//	   encoding uint2   // 3
//	   width    uint5   // width code of the packed deltas; 0 means none.
//	   length   uint9   // number of values, minus 1.
//	   base     varint  // first value; ZigZag decoded on signed streams.
//	   delta    varint  // second value minus first; always ZigZag decoded.
//	   deltas   []bit   // length-2 delta magnitudes of width bits.
//	}
func (ir *IntV2Reader) delta(header byte) error {
	code := header >> 1 & 0x1F
	var width uint8
	if code != 0 {
		width = widthTable[code]
	}
	n, err := ir.runLength(header)
	if err != nil {
		return err
	}

	base, err := ir.readBaseVarint()
	if err != nil {
		return truncated(err)
	}
	ir.buf = append(ir.buf, base)
	if n == 1 {
		return nil
	}

	firstDelta, err := readSvarint(byteReaderFunc(ir.br.ReadByte))
	if err != nil {
		return truncated(err)
	}
	v, ok := overflow.Add64(base, firstDelta)
	if !ok {
		return orcerror.New(orcerror.VarintTooLarge, "delta run overflows 64 bits")
	}
	ir.buf = append(ir.buf, v)

	for i := 2; i < n; i++ {
		if width == 0 {
			v, ok = overflow.Add64(v, firstDelta)
		} else {
			x, err := ir.br.ReadBits(width)
			if err != nil {
				return truncated(err)
			}
			if firstDelta < 0 {
				v, ok = overflow.Sub64(v, int64(x))
			} else {
				v, ok = overflow.Add64(v, int64(x))
			}
		}
		if !ok {
			return orcerror.New(orcerror.VarintTooLarge, "delta run overflows 64 bits")
		}
		ir.buf = append(ir.buf, v)
	}
	ir.br.Align()
	return nil
}

// readBaseVarint reads the base value of a DELTA run; ZigZag decoded on
// signed streams, raw magnitude otherwise.
func (ir *IntV2Reader) readBaseVarint() (int64, error) {
	r := byteReaderFunc(ir.br.ReadByte)
	if ir.signed {
		return readSvarint(r)
	}
	x, err := readUvarint(r)
	return int64(x), err
}

// byteReaderFunc adapts a ReadByte method to io.ByteReader.
type byteReaderFunc func() (byte, error)

func (f byteReaderFunc) ReadByte() (byte, error) {
	return f()
}
