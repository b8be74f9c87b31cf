// Package meta provides access to the metadata of ORC files: the postscript
// at the file tail, the file footer and the per-stripe footers.
//
// The metadata messages are protobuf encoded; they are decoded field by
// field on the protobuf wire level into plain structs, so that the rest of
// the module never sees wire bytes.
//
// ref: https://orc.apache.org/specification/ORCv1/#file-tail
package meta

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mewkiz/orc/orcerror"
)

// Magic is present in the postscript of each ORC file, and as the header of
// the file.
const Magic = "ORC"

// fields walks the protobuf fields of a message body, invoking fn for each
// field with the remaining body; fn returns the number of bytes it
// consumed, or a negative count to have the field skipped. msg names the
// message in decode errors.
func fields(body []byte, msg string, fn func(num protowire.Number, typ protowire.Type, body []byte) (int, error)) error {
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return orcerror.Wrapf(orcerror.DecodeProto, protowire.ParseError(n), "%s: malformed field tag", msg)
		}
		body = body[n:]
		n, err := fn(num, typ, body)
		if err != nil {
			return err
		}
		if n < 0 {
			if n = protowire.ConsumeFieldValue(num, typ, body); n < 0 {
				return orcerror.Wrapf(orcerror.DecodeProto, protowire.ParseError(n), "%s: malformed field %d", msg, num)
			}
		}
		body = body[n:]
	}
	return nil
}

// consumeVarint reads a varint field value.
func consumeVarint(body []byte, msg string) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(body)
	if n < 0 {
		return 0, 0, orcerror.Wrapf(orcerror.DecodeProto, protowire.ParseError(n), "%s: malformed varint", msg)
	}
	return v, n, nil
}

// consumeBytes reads a length-delimited field value.
func consumeBytes(body []byte, msg string) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(body)
	if n < 0 {
		return nil, 0, orcerror.Wrapf(orcerror.DecodeProto, protowire.ParseError(n), "%s: malformed length-delimited field", msg)
	}
	return v, n, nil
}

// consumeUint32s reads a repeated uint32 field, in either packed or
// expanded form.
func consumeUint32s(vs []uint32, typ protowire.Type, body []byte, msg string) ([]uint32, int, error) {
	if typ == protowire.VarintType {
		v, n, err := consumeVarint(body, msg)
		if err != nil {
			return nil, 0, err
		}
		return append(vs, uint32(v)), n, nil
	}
	packed, n, err := consumeBytes(body, msg)
	if err != nil {
		return nil, 0, err
	}
	for len(packed) > 0 {
		v, m, err := consumeVarint(packed, msg)
		if err != nil {
			return nil, 0, err
		}
		vs = append(vs, uint32(v))
		packed = packed[m:]
	}
	return vs, n, nil
}
