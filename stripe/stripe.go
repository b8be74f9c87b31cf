// Package stripe implements the stripe decode pipeline: the per-column
// decoders turning the compressed byte streams of one stripe into typed,
// null-aware Arrow arrays.
//
// A decoder tree is constructed once per stripe and drained batch by
// batch. The caller drives the root; composite decoders read their own
// presence, decide how many child rows each batch requires and recursively
// invoke their children. The pipeline is single threaded and pull based;
// once a decoder has returned an error it is poisoned and must be dropped.
//
// Stream iterators are owned exclusively by the decoder holding them. The
// stripe footer and string dictionaries are read-only after construction
// and shared by reference between sibling decoders.
package stripe

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/orc/internal/codec"
	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
)

func init() {
	dbg.Debug = false
}

// A ChunkReader reads a range of bytes from an ORC file.
type ChunkReader interface {
	// GetBytes returns length bytes starting at the given file offset.
	GetBytes(start, length uint64) ([]byte, error)
}

// A streamID keys the stream registry of a stripe.
type streamID struct {
	column int
	kind   meta.StreamKind
}

// A Stripe holds the stream registry of one stripe: for every column, the
// raw bytes of its named streams, decompressed on demand.
type Stripe struct {
	// Stripe footer with stream directory and column encodings.
	footer *meta.StripeFooter
	// Compression codec of the stream bytes.
	compression codec.Kind
	// Maximum decompressed chunk size.
	blockSize int
	// Number of rows of the stripe.
	numberOfRows uint64
	// Raw stream bytes by column and stream kind.
	streams map[streamID][]byte
}

// NewStripe reads the footer and stream bytes of one stripe. If include is
// non-nil, only the streams of columns present in it are read; the decoder
// factory never touches columns outside the projection, so their bytes are
// skipped entirely.
func NewStripe(r ChunkReader, ps *meta.PostScript, info meta.StripeInformation, include map[int]bool) (*Stripe, error) {
	compression := ps.Compression
	blockSize := int(ps.CompressionBlockSize)

	raw, err := r.GetBytes(info.Offset+info.IndexLength+info.DataLength, info.FooterLength)
	if err != nil {
		return nil, orcerror.Wrap(orcerror.IO, err, "read stripe footer")
	}
	body, err := codec.Decompress(compression, blockSize, raw)
	if err != nil {
		return nil, err
	}
	footer, err := meta.ParseStripeFooter(body)
	if err != nil {
		return nil, err
	}

	s := &Stripe{
		footer:       footer,
		compression:  compression,
		blockSize:    blockSize,
		numberOfRows: info.NumberOfRows,
		streams:      make(map[streamID][]byte, len(footer.Streams)),
	}
	offset := info.Offset
	for _, stream := range footer.Streams {
		start := offset
		offset += stream.Length
		switch stream.Kind {
		case meta.StreamRowIndex, meta.StreamBloomFilter, meta.StreamBloomFilterUTF8:
			// Index streams are not needed for a full-stripe scan.
			continue
		}
		if include != nil && !include[int(stream.Column)] {
			continue
		}
		data, err := r.GetBytes(start, stream.Length)
		if err != nil {
			return nil, orcerror.Wrapf(orcerror.IO, err, "read %v stream of column %d", stream.Kind, stream.Column)
		}
		s.streams[streamID{column: int(stream.Column), kind: stream.Kind}] = data
	}
	dbg.Println("stripe streams loaded:", len(s.streams))
	return s, nil
}

// Footer returns the stripe footer.
func (s *Stripe) Footer() *meta.StripeFooter {
	return s.footer
}

// NumberOfRows returns the row count of the stripe.
func (s *Stripe) NumberOfRows() uint64 {
	return s.numberOfRows
}

// stream returns a decompressing reader over the named stream of the given
// column, or false if the stripe has no such stream.
func (s *Stripe) stream(column int, kind meta.StreamKind) (*codec.Reader, bool) {
	data, ok := s.streams[streamID{column: column, kind: kind}]
	if !ok {
		return nil, false
	}
	return codec.NewReader(s.compression, s.blockSize, data), true
}

// requiredStream returns a decompressing reader over a stream the column's
// encoding requires; its absence is a fatal decode error.
func (s *Stripe) requiredStream(column int, kind meta.StreamKind) (*codec.Reader, error) {
	r, ok := s.stream(column, kind)
	if !ok {
		return nil, orcerror.Newf(orcerror.OutOfSpec, "column %d has no %v stream", column, kind)
	}
	return r, nil
}
