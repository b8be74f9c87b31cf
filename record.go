package orc

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"golang.org/x/sync/errgroup"

	"github.com/mewkiz/orc/meta"
	"github.com/mewkiz/orc/orcerror"
	"github.com/mewkiz/orc/stripe"
)

// DefaultBatchSize is the row count of record batches when the caller does
// not choose one.
const DefaultBatchSize = 8192

// A RecordReader iterates the record batches of an ORC file, stripe by
// stripe. It is single threaded and pull based; a reader that has returned
// an error other than io.EOF is poisoned and must be dropped.
type RecordReader struct {
	r         *Reader
	batchSize int
	fields    []projectedField
	include   map[int]bool
	schema    *arrow.Schema
	// Index of the next stripe to open.
	next int
	// Decoder per projected field of the open stripe.
	decoders []stripe.Decoder
	// Rows left in the open stripe.
	remaining uint64
}

// RecordReader returns an iterator over the record batches of the file,
// batchSize rows at a time; zero selects DefaultBatchSize. An optional
// list of top-level field names projects the output to those columns; the
// streams of unprojected columns are never read.
func (r *Reader) RecordReader(batchSize int, fields ...string) (*RecordReader, error) {
	if batchSize < 0 {
		return nil, orcerror.Newf(orcerror.InvalidInput, "negative batch size %d", batchSize)
	}
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	projected, err := r.project(fields)
	if err != nil {
		return nil, err
	}
	schema, err := r.Schema(fields...)
	if err != nil {
		return nil, err
	}
	return &RecordReader{
		r:         r,
		batchSize: batchSize,
		fields:    projected,
		include:   include(projected),
		schema:    schema,
	}, nil
}

// Schema returns the schema of the records the reader produces.
func (rr *RecordReader) Schema() *arrow.Schema {
	return rr.schema
}

// Next returns the next record batch, or io.EOF after the last one. The
// final batch of each stripe may be short.
func (rr *RecordReader) Next() (arrow.Record, error) {
	for rr.remaining == 0 {
		if rr.next == len(rr.r.footer.Stripes) {
			return nil, io.EOF
		}
		info := rr.r.footer.Stripes[rr.next]
		rr.next++
		decoders, err := rr.r.openStripe(info, rr.fields, rr.include)
		if err != nil {
			return nil, err
		}
		rr.decoders = decoders
		rr.remaining = info.NumberOfRows
	}

	n := rr.remaining
	if n > uint64(rr.batchSize) {
		n = uint64(rr.batchSize)
	}
	cols := make([]arrow.Array, len(rr.decoders))
	for i, dec := range rr.decoders {
		arr, err := dec.NextBatch(int(n), nil)
		if err != nil {
			return nil, err
		}
		cols[i] = arr
	}
	rr.remaining -= n
	return array.NewRecord(rr.schema, cols, int64(n)), nil
}

// openStripe loads one stripe and constructs the decoder per projected
// field.
func (r *Reader) openStripe(info meta.StripeInformation, fields []projectedField, incl map[int]bool) ([]stripe.Decoder, error) {
	s, err := stripe.NewStripe(r.r, r.ps, info, incl)
	if err != nil {
		return nil, err
	}
	decoders := make([]stripe.Decoder, len(fields))
	for i, field := range fields {
		col := stripe.NewColumn(field.name, field.dataType, s.Footer(), info.NumberOfRows)
		if decoders[i], err = stripe.NewDecoder(col, s); err != nil {
			return nil, err
		}
	}
	return decoders, nil
}

// ReadAll decodes the whole file into one record batch per stripe,
// decoding stripes concurrently and preserving stripe order. An optional
// list of top-level field names projects the output.
func (r *Reader) ReadAll(ctx context.Context, fields ...string) ([]arrow.Record, error) {
	projected, err := r.project(fields)
	if err != nil {
		return nil, err
	}
	schema, err := r.Schema(fields...)
	if err != nil {
		return nil, err
	}
	incl := include(projected)

	records := make([]arrow.Record, len(r.footer.Stripes))
	g, ctx := errgroup.WithContext(ctx)
	for i, info := range r.footer.Stripes {
		i, info := i, info
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decoders, err := r.openStripe(info, projected, incl)
			if err != nil {
				return err
			}
			n := int(info.NumberOfRows)
			cols := make([]arrow.Array, len(decoders))
			for j, dec := range decoders {
				if cols[j], err = dec.NextBatch(n, nil); err != nil {
					return err
				}
			}
			records[i] = array.NewRecord(schema, cols, int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
