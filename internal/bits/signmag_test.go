package bits

import (
	"testing"
)

func TestDecodeSignMagnitude(t *testing.T) {
	golden := []struct {
		x    uint64
		n    uint
		want int64
	}{
		{x: 0x3, n: 4, want: 3},
		{x: 0x1, n: 4, want: 1},
		{x: 0x0, n: 4, want: 0},
		{x: 0x9, n: 4, want: -1},
		{x: 0xB, n: 4, want: -3},
		{x: 0x7D0, n: 16, want: 2000},
		{x: 0x87D0, n: 16, want: -2000},
	}
	for _, g := range golden {
		got := DecodeSignMagnitude(g.x, g.n)
		if g.want != got {
			t.Errorf("result mismatch of DecodeSignMagnitude(x=%#x, n=%d); expected %d, got %d", g.x, g.n, g.want, got)
			continue
		}
	}
}
