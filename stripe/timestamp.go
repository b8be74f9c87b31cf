package stripe

import (
	"github.com/JohnCGriffin/overflow"
	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"

	"github.com/mewkiz/orc/internal/rle"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

// orcEpoch is the anchor of ORC timestamp seconds, 2015-01-01T00:00:00Z,
// expressed in seconds since the Unix epoch. It is not 1970.
const orcEpoch = 1420070400

// pow10 holds the scale factors restoring the trailing decimal zeros of
// encoded nanosecond values.
var pow10 = [10]uint64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000}

// A timestampDecoder decodes timestamp columns: signed run-length encoded
// seconds since the ORC epoch from the DATA stream, and unsigned run-length
// encoded nanoseconds from the SECONDARY stream. The conversion to
// nanoseconds since the Unix epoch rejects overflow rather than wrap.
type timestampDecoder struct {
	seconds rle.IntReader
	nanos   rle.IntReader
	present *rle.BoolReader
	b       *array.TimestampBuilder
}

func newTimestampDecoder(col *Column, s *Stripe) (Decoder, error) {
	if err := requireDirect(col); err != nil {
		return nil, err
	}
	// The timezone model of timestamp columns is unsettled; fail closed on
	// any writer timezone the decoder would have to interpret.
	switch tz := s.Footer().WriterTimezone; tz {
	case "", "UTC", "GMT", "Etc/UTC":
	default:
		return nil, orcerror.Newf(orcerror.UnsupportedTypeVariant, "timestamp column %q written in timezone %q", col.Name(), tz)
	}
	present, err := presentReader(s, col)
	if err != nil {
		return nil, err
	}
	seconds, err := intReader(s, col, meta.StreamData, true)
	if err != nil {
		return nil, err
	}
	nanos, err := intReader(s, col, meta.StreamSecondary, false)
	if err != nil {
		return nil, err
	}
	return &timestampDecoder{
		seconds: seconds,
		nanos:   nanos,
		present: present,
		b:       array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Nanosecond}),
	}, nil
}

func (d *timestampDecoder) NextBatch(n int, parentPresent []bool) (arrow.Array, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	d.b.Reserve(n)
	for i := 0; i < n; i++ {
		if present != nil && !present[i] {
			d.b.AppendNull()
			continue
		}
		seconds, err := d.seconds.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		encoded, err := d.nanos.Next()
		if err != nil {
			return nil, valueErr(err)
		}
		nanos, err := decodeNanos(uint64(encoded))
		if err != nil {
			return nil, err
		}
		ts, ok := timestampNanos(seconds, nanos)
		if !ok {
			return nil, orcerror.Newf(orcerror.DecodeTimestamp, "overflow while decoding timestamp (seconds=%d, nanoseconds=%d) to nanoseconds", seconds, nanos)
		}
		d.b.Append(arrow.Timestamp(ts))
	}
	return d.b.NewArray(), nil
}

// decodeNanos expands an encoded nanosecond value: the low 3 bits hold one
// less than the number of trailing decimal zeros the writer stripped, or
// zero when none were.
func decodeNanos(encoded uint64) (uint64, error) {
	zeros := encoded & 0x7
	nanos := encoded >> 3
	if zeros != 0 {
		nanos *= pow10[zeros+1]
	}
	if nanos > 999999999 {
		return 0, orcerror.Newf(orcerror.OutOfSpec, "nanosecond value %d exceeds one second", nanos)
	}
	return nanos, nil
}

// timestampNanos converts seconds since the ORC epoch plus nanoseconds
// into nanoseconds since the Unix epoch, reporting overflow.
func timestampNanos(seconds int64, nanos uint64) (int64, bool) {
	unix, ok := overflow.Add64(seconds, orcEpoch)
	if !ok {
		return 0, false
	}
	ns, ok := overflow.Mul64(unix, 1e9)
	if !ok {
		return 0, false
	}
	return overflow.Add64(ns, int64(nanos))
}
