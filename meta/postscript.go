package meta

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/orcerror"
)

// A PostScript is the uncompressed message at the very tail of an ORC file,
// in front of the one-byte postscript length that ends the file. It locates
// the file footer and names the compression codec of every other part of
// the file.
type PostScript struct {
	// Length in bytes of the compressed file footer.
	FooterLength uint64
	// Compression codec of the footer, metadata and stripe streams.
	Compression codec.Kind
	// Maximum decompressed size of a compression chunk.
	CompressionBlockSize uint64
	// Version of the writer that produced the file.
	Version []uint32
	// Length in bytes of the compressed file metadata section.
	MetadataLength uint64
	// Version of the writer implementation.
	WriterVersion uint32
	// Magic is "ORC" for valid files.
	Magic string
}

// ParsePostScript parses the postscript message from its raw bytes and
// validates the trailing magic.
func ParsePostScript(body []byte) (*PostScript, error) {
	ps := &PostScript{
		// A missing block size field defaults to 256 kB, the most common
		// writer configuration.
		CompressionBlockSize: 256 << 10,
	}
	err := fields(body, "postscript", func(num protowire.Number, typ protowire.Type, body []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(body, "postscript.footerLength")
			ps.FooterLength = v
			return n, err
		case 2:
			v, n, err := consumeVarint(body, "postscript.compression")
			if err != nil {
				return 0, err
			}
			if v > uint64(codec.Zstd) {
				return 0, orcerror.Newf(orcerror.UnsupportedTypeVariant, "compression kind %d", v)
			}
			ps.Compression = codec.Kind(v)
			return n, nil
		case 3:
			v, n, err := consumeVarint(body, "postscript.compressionBlockSize")
			ps.CompressionBlockSize = v
			return n, err
		case 4:
			vs, n, err := consumeUint32s(ps.Version, typ, body, "postscript.version")
			ps.Version = vs
			return n, err
		case 5:
			v, n, err := consumeVarint(body, "postscript.metadataLength")
			ps.MetadataLength = v
			return n, err
		case 6:
			v, n, err := consumeVarint(body, "postscript.writerVersion")
			ps.WriterVersion = uint32(v)
			return n, err
		case 8000:
			v, n, err := consumeBytes(body, "postscript.magic")
			ps.Magic = string(v)
			return n, err
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	if ps.Magic != Magic {
		return nil, orcerror.Newf(orcerror.OutOfSpec, "invalid postscript magic; expected %q, got %q", Magic, ps.Magic)
	}
	return ps, nil
}
