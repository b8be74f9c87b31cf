package stripe

import (
	"bytes"
	"testing"

	"github.com/mewkiz/orc/internal/rle"
)

// boolReader returns a boolean decoder over a literal byte-RLE run holding
// the given bit-packed bytes.
func boolReader(bits ...byte) *rle.BoolReader {
	data := []byte{byte(256 - len(bits))}
	data = append(data, bits...)
	return rle.NewBoolReader(bytes.NewReader(data))
}

func TestDerivePresent(t *testing.T) {
	// Neither side: all present.
	got, err := derivePresent(nil, nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil presence for absent streams, got %v", got)
	}

	// Parent only: cloned.
	parent := []bool{true, false, true}
	got, err = derivePresent(nil, parent, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !equalBools(parent, got) {
		t.Errorf("presence mismatch; expected %v, got %v", parent, got)
	}
	got[0] = false
	if !parent[0] {
		t.Error("derived presence aliases the parent mask")
	}

	// Own only: n bits drawn from the stream.
	got, err = derivePresent(boolReader(0xA0), nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if want := []bool{true, false, true, false}; !equalBools(want, got) {
		t.Errorf("presence mismatch; expected %v, got %v", want, got)
	}
}

// The single invariant making presence composable: rows the parent marks
// null are forced null without consuming from the child stream.
func TestDerivePresentNested(t *testing.T) {
	// Child stream holds bits for the three parent-present rows only:
	// true, false, true.
	own := boolReader(0xA0)
	parent := []bool{true, false, true, false, true}
	got, err := derivePresent(own, parent, 5)
	if err != nil {
		t.Fatal(err)
	}
	if want := []bool{true, false, false, false, true}; !equalBools(want, got) {
		t.Errorf("presence mismatch; expected %v, got %v", want, got)
	}
	// The fourth child bit (false) must still be unread.
	v, err := own.Next()
	if err != nil {
		t.Fatal(err)
	}
	if v {
		t.Error("child stream position is off; expected the unread fourth bit to be false")
	}
}

func TestPopulateLengths(t *testing.T) {
	present := []bool{true, false, true, false, true}
	got := populateLengths([]int64{2, 0, 3}, 5, present)
	if want := []int64{2, 0, 0, 0, 3}; !equalInts(want, got) {
		t.Errorf("length mismatch; expected %v, got %v", want, got)
	}
	// Without presence the lengths pass through.
	lengths := []int64{1, 2, 3}
	if got := populateLengths(lengths, 3, nil); !equalInts(lengths, got) {
		t.Errorf("length mismatch; expected %v, got %v", lengths, got)
	}
}

func TestOffsets(t *testing.T) {
	buf := offsets([]int64{2, 0, 0, 0, 3}, 5)
	got := bytesToInt32s(buf.Bytes())
	if want := []int32{0, 2, 2, 2, 2, 5}; !equalInt32s(want, got) {
		t.Errorf("offset mismatch; expected %v, got %v", want, got)
	}
}

func equalBools(a, b []bool) bool {
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

func equalInts(a, b []int64) bool {
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

func equalInt32s(a, b []int32) bool {
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

func bytesToInt32s(p []byte) []int32 {
	out := make([]int32, len(p)/4)
	for i := range out {
		out[i] = int32(uint32(p[4*i]) | uint32(p[4*i+1])<<8 | uint32(p[4*i+2])<<16 | uint32(p[4*i+3])<<24)
	}
	return out
}
