package rle

import (
	"bytes"
	"io"
	"math/big"
	"testing"

	"github.com/mewkiz/orc/orcerror"
)

// collect drains up to n values from the reader, failing the test on decode
// errors.
func collect(t *testing.T, ir IntReader, n int) []int64 {
	t.Helper()
	var vs []int64
	for i := 0; i < n; i++ {
		v, err := ir.Next()
		if err != nil {
			t.Fatalf("error while decoding value %d; %v", i, err)
		}
		vs = append(vs, v)
	}
	return vs
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestByteReader(t *testing.T) {
	golden := []struct {
		data []byte
		want []byte
	}{
		// Run of 100 zeros.
		{data: []byte{0x61, 0x00}, want: bytes.Repeat([]byte{0x00}, 100)},
		// Literal run.
		{data: []byte{0xFE, 0x44, 0x45}, want: []byte{0x44, 0x45}},
		// Run followed by literals.
		{data: []byte{0x00, 0x07, 0xFD, 0x01, 0x02, 0x03}, want: []byte{0x07, 0x07, 0x07, 0x01, 0x02, 0x03}},
	}
	for i, g := range golden {
		br := NewByteReader(bytes.NewReader(g.data))
		var got []byte
		for j := 0; j < len(g.want); j++ {
			b, err := br.Next()
			if err != nil {
				t.Fatalf("i=%d: error while decoding byte %d; %v", i, j, err)
			}
			got = append(got, b)
		}
		if !bytes.Equal(g.want, got) {
			t.Errorf("i=%d: byte mismatch; expected %v, got %v", i, g.want, got)
			continue
		}
		if _, err := br.Next(); err != io.EOF {
			t.Errorf("i=%d: expected io.EOF after %d bytes, got %v", i, len(g.want), err)
		}
	}
}

func TestBoolReader(t *testing.T) {
	// One literal byte 0x80; MSB first, so the earliest row is true.
	br := NewBoolReader(bytes.NewReader([]byte{0xFF, 0x80}))
	want := []bool{true, false, false, false, false, false, false, false}
	for i, w := range want {
		got, err := br.Next()
		if err != nil {
			t.Fatalf("error while decoding bit %d; %v", i, err)
		}
		if w != got {
			t.Errorf("bit mismatch at %d; expected %v, got %v", i, w, got)
		}
	}
	if _, err := br.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after final bit, got %v", err)
	}
}

func TestIntV1Reader(t *testing.T) {
	golden := []struct {
		data   []byte
		signed bool
		want   []int64
	}{
		// Run of 100 copies of 7.
		{data: []byte{0x61, 0x00, 0x07}, want: repeat(7, 100)},
		// Run with delta -1: 100 down to 1.
		{data: []byte{0x61, 0xFF, 0x64}, want: countdown(100)},
		// Literal varints.
		{data: []byte{0xFB, 0x02, 0x03, 0x04, 0x07, 0x0B}, want: []int64{2, 3, 4, 7, 11}},
		// Signed literal varints; ZigZag decoded.
		{data: []byte{0xFD, 0x00, 0x01, 0x04}, signed: true, want: []int64{0, -1, 2}},
	}
	for i, g := range golden {
		ir := NewIntV1Reader(bytes.NewReader(g.data), g.signed)
		got := collect(t, ir, len(g.want))
		if !equal(g.want, got) {
			t.Errorf("i=%d: value mismatch; expected %v, got %v", i, g.want, got)
			continue
		}
		if _, err := ir.Next(); err != io.EOF {
			t.Errorf("i=%d: expected io.EOF after %d values, got %v", i, len(g.want), err)
		}
	}
}

// The unsigned SHORT_REPEAT, DIRECT, PATCHED_BASE and first DELTA vectors
// below are the worked examples of the ORC format specification; the
// signed and width-code-0 vectors are hand-built.
//
// ref: https://orc.apache.org/specification/ORCv1/#run-length-encoding-version-2
func TestIntV2Reader(t *testing.T) {
	golden := []struct {
		data   []byte
		signed bool
		want   []int64
	}{
		// SHORT_REPEAT: 10000 repeated 5 times.
		{data: []byte{0x0A, 0x27, 0x10}, want: repeat(10000, 5)},
		// SHORT_REPEAT, signed: -5 repeated 3 times.
		{data: []byte{0x00, 0x09}, signed: true, want: []int64{-5, -5, -5}},
		// DIRECT: four 16-bit values.
		{
			data: []byte{0x5E, 0x03, 0x5C, 0xA1, 0xAB, 0x1E, 0xDE, 0xAD, 0xBE, 0xEF},
			want: []int64{23713, 43806, 57005, 48879},
		},
		// PATCHED_BASE: base 2000, one outlier patched up to 1000000.
		{
			data: []byte{
				0x8E, 0x13, 0x2B, 0x21, 0x07, 0xD0, 0x1E, 0x00, 0x14, 0x70,
				0x28, 0x32, 0x3C, 0x46, 0x50, 0x5A, 0x64, 0x6E, 0x78, 0x82,
				0x8C, 0x96, 0xA0, 0xAA, 0xB4, 0xBE, 0xFC, 0xE8,
			},
			want: []int64{
				2030, 2000, 2020, 1000000, 2040, 2050, 2060, 2070, 2080, 2090,
				2100, 2110, 2120, 2130, 2140, 2150, 2160, 2170, 2180, 2190,
			},
		},
		// DELTA: the first ten primes.
		{
			data: []byte{0xC6, 0x09, 0x02, 0x02, 0x22, 0x42, 0x42, 0x46},
			want: []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29},
		},
		// DELTA, signed, descending: negative first delta subtracts the
		// packed magnitudes.
		{data: []byte{0xC2, 0x03, 0x14, 0x03, 0xA0}, signed: true, want: []int64{10, 8, 6, 4}},
		// DELTA with width code 0: the first delta repeats.
		{data: []byte{0xC0, 0x04, 0x01, 0x02}, want: []int64{1, 2, 3, 4, 5}},
	}
	for i, g := range golden {
		ir := NewIntV2Reader(bytes.NewReader(g.data), g.signed)
		got := collect(t, ir, len(g.want))
		if !equal(g.want, got) {
			t.Errorf("i=%d: value mismatch; expected %v, got %v", i, g.want, got)
			continue
		}
		if _, err := ir.Next(); err != io.EOF {
			t.Errorf("i=%d: expected io.EOF after %d values, got %v", i, len(g.want), err)
		}
	}
}

func TestIntV2ReaderTruncated(t *testing.T) {
	// DIRECT header announcing four 16-bit values, with only one value byte
	// present.
	ir := NewIntV2Reader(bytes.NewReader([]byte{0x5E, 0x03, 0x5C}), false)
	if _, err := ir.Next(); !orcerror.Is(err, orcerror.OutOfSpec) {
		t.Errorf("expected out-of-spec error for truncated run, got %v", err)
	}
}

func TestReadBigVarint(t *testing.T) {
	golden := []struct {
		data []byte
		want string
	}{
		{data: []byte{0x00}, want: "0"},
		{data: []byte{0x02}, want: "1"},
		{data: []byte{0x03}, want: "-2"},
		{data: []byte{0xAC, 0x02}, want: "150"},
		// 2^70, beyond the 64-bit range.
		{
			data: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02},
			want: "1180591620717411303424",
		},
	}
	for i, g := range golden {
		got, err := ReadBigVarint(bytes.NewReader(g.data))
		if err != nil {
			t.Fatalf("i=%d: error while decoding varint; %v", i, err)
		}
		want, _ := new(big.Int).SetString(g.want, 10)
		if want.Cmp(got) != 0 {
			t.Errorf("i=%d: value mismatch; expected %v, got %v", i, want, got)
		}
	}
}

func TestReadBigVarintTooLarge(t *testing.T) {
	data := bytes.Repeat([]byte{0x80}, 21)
	if _, err := ReadBigVarint(bytes.NewReader(data)); !orcerror.Is(err, orcerror.VarintTooLarge) {
		t.Errorf("expected varint-too-large error, got %v", err)
	}
}

// repeat returns n copies of v.
func repeat(v int64, n int) []int64 {
	vs := make([]int64, n)
	for i := range vs {
		vs[i] = v
	}
	return vs
}

// countdown returns n, n-1, ..., 1.
func countdown(n int64) []int64 {
	var vs []int64
	for v := n; v >= 1; v-- {
		vs = append(vs, v)
	}
	return vs
}
