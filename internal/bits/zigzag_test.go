package bits

import (
	"testing"
)

func TestDecodeZigZag(t *testing.T) {
	golden := []struct {
		x    uint64
		want int64
	}{
		{x: 0, want: 0},
		{x: 1, want: -1},
		{x: 2, want: 1},
		{x: 3, want: -2},
		{x: 4, want: 2},
		{x: 5, want: -3},
		{x: 6, want: 3},
		{x: 18446744073709551615, want: -9223372036854775808},
		{x: 18446744073709551614, want: 9223372036854775807},
	}
	for _, g := range golden {
		got := DecodeZigZag(g.x)
		if g.want != got {
			t.Errorf("result mismatch of DecodeZigZag(x=%d); expected %d, got %d", g.x, g.want, got)
			continue
		}
	}
}

func TestEncodeZigZag(t *testing.T) {
	golden := []struct {
		x    int64
		want uint64
	}{
		{x: 0, want: 0},
		{x: -1, want: 1},
		{x: 1, want: 2},
		{x: -2, want: 3},
		{x: 2, want: 4},
		{x: -3, want: 5},
		{x: 3, want: 6},
		{x: -9223372036854775808, want: 18446744073709551615},
		{x: 9223372036854775807, want: 18446744073709551614},
	}
	for _, g := range golden {
		got := EncodeZigZag(g.x)
		if g.want != got {
			t.Errorf("result mismatch of EncodeZigZag(x=%d); expected %d, got %d", g.x, g.want, got)
			continue
		}
	}
}
