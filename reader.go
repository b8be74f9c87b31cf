package orc

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/mewkiz/orc/orcerror"
)

// A ChunkReader reads ranges of bytes from an ORC file and knows the total
// file size. Reads are synchronous; callers wanting concurrency run them
// from their own goroutines, as ReadAll does per stripe.
type ChunkReader interface {
	// GetBytes returns length bytes starting at the given file offset.
	GetBytes(start, length uint64) ([]byte, error)
	// Size returns the total size of the file in bytes.
	Size() uint64
}

// A sectionReader adapts an io.ReaderAt of known size to ChunkReader.
type sectionReader struct {
	r    io.ReaderAt
	size uint64
}

// NewChunkReader returns a ChunkReader over the given io.ReaderAt of the
// given size.
func NewChunkReader(r io.ReaderAt, size uint64) ChunkReader {
	return &sectionReader{r: r, size: size}
}

func (sr *sectionReader) GetBytes(start, length uint64) ([]byte, error) {
	if start+length > sr.size {
		return nil, orcerror.Newf(orcerror.InvalidInput, "read of %d bytes at %d beyond file size %d", length, start, sr.size)
	}
	buf := make([]byte, length)
	if _, err := sr.r.ReadAt(buf, int64(start)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (sr *sectionReader) Size() uint64 {
	return sr.size
}

// A bytesReader serves chunks of an in-memory file by reslicing.
type bytesReader struct {
	data []byte
}

// NewBytesReader returns a ChunkReader over an in-memory file.
func NewBytesReader(data []byte) ChunkReader {
	return &bytesReader{data: data}
}

func (br *bytesReader) GetBytes(start, length uint64) ([]byte, error) {
	if start+length > uint64(len(br.data)) {
		return nil, orcerror.Newf(orcerror.InvalidInput, "read of %d bytes at %d beyond file size %d", length, start, len(br.data))
	}
	return br.data[start : start+length], nil
}

func (br *bytesReader) Size() uint64 {
	return uint64(len(br.data))
}

// A mmapReader memory-maps a file and serves chunks by reslicing the
// mapping.
type mmapReader struct {
	f    *os.File
	data mmap.MMap
}

// openMmap memory-maps the named file.
func openMmap(path string) (*mmapReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &mmapReader{f: f, data: data}, nil
}

func (mr *mmapReader) GetBytes(start, length uint64) ([]byte, error) {
	if start+length > uint64(len(mr.data)) {
		return nil, orcerror.Newf(orcerror.InvalidInput, "read of %d bytes at %d beyond file size %d", length, start, len(mr.data))
	}
	return mr.data[start : start+length], nil
}

func (mr *mmapReader) Size() uint64 {
	return uint64(len(mr.data))
}

// Close unmaps and closes the underlying file.
func (mr *mmapReader) Close() error {
	if err := mr.data.Unmap(); err != nil {
		mr.f.Close()
		return err
	}
	return mr.f.Close()
}
