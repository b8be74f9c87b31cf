package rle

import (
	"io"
)

// An IntV1Reader decodes version 1 of the ORC integer run-length encoding.
//
// RLEv1 format (pseudo code):
//
//	type RUN struct {
//	   header uint8  // < 0x80: run of header+3 values.
//	                 // >= 0x80: 256-header literal varints follow.
//	   delta  int8   // run only; added to the value after each repetition.
//	   base   varint // run only; first value of the run.
//	   data   []varint // literal run only.
//	}
//
// Signed streams apply ZigZag decoding to each varint; unsigned streams
// return the raw magnitude.
//
// ref: https://orc.apache.org/specification/ORCv1/#run-length-encoding-version-1
type IntV1Reader struct {
	r io.ByteReader
	// Values of signed streams are ZigZag decoded.
	signed bool
	// Remaining values of the current run.
	remaining int
	// Literal run if true, delta run otherwise.
	literal bool
	// Next value of a delta run.
	value int64
	// Per-repetition delta of the current run.
	delta int64
}

// NewIntV1Reader returns a new RLEv1 integer decoder reading from r.
func NewIntV1Reader(r io.ByteReader, signed bool) *IntV1Reader {
	return &IntV1Reader{r: r, signed: signed}
}

// Next returns the next decoded integer.
func (ir *IntV1Reader) Next() (int64, error) {
	if ir.remaining == 0 {
		if err := ir.refill(); err != nil {
			return 0, err
		}
	}
	ir.remaining--
	if ir.literal {
		return ir.readValue()
	}
	v := ir.value
	ir.value += ir.delta
	return v, nil
}

// refill reads the next run header and, for delta runs, the delta and base
// value.
func (ir *IntV1Reader) refill() error {
	header, err := ir.r.ReadByte()
	if err != nil {
		// A clean end on a run boundary.
		return err
	}
	if header < 0x80 {
		// Delta run; length 3-130.
		ir.literal = false
		ir.remaining = int(header) + 3
		delta, err := ir.r.ReadByte()
		if err != nil {
			return truncated(err)
		}
		ir.delta = int64(int8(delta))
		ir.value, err = ir.readValue()
		if err != nil {
			return truncated(err)
		}
		return nil
	}
	// Literal run; length 1-128.
	ir.literal = true
	ir.remaining = 256 - int(header)
	return nil
}

// readValue reads one varint, ZigZag decoded for signed streams.
func (ir *IntV1Reader) readValue() (int64, error) {
	if ir.signed {
		v, err := readSvarint(ir.r)
		if err != nil {
			return 0, truncated(err)
		}
		return v, nil
	}
	v, err := readUvarint(ir.r)
	if err != nil {
		return 0, truncated(err)
	}
	return int64(v), nil
}
