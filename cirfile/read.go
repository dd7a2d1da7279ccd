package cirfile

import (
	"context"

	"github.com/pkg/errors"
)

// ReadNext fills buf starting at the logical offset. Offsets that were
// already evicted are moved up to the oldest readable byte, and the offset
// actually used is returned. At or past the end it returns the logical end
// and 0 bytes. Short reads are normal.
func (f *File) ReadNext(ctx context.Context, buf []byte, offset int64) (int64, int, error) {
	if f.fp == nil {
		return 0, 0, errNoFile
	}
	if err := f.flock(ctx, lockShared); err != nil {
		return 0, 0, err
	}
	defer f.unflock()
	m, err := f.readMeta()
	if err != nil {
		return 0, 0, err
	}
	return f.readAt(m, buf, offset)
}

// ReadAll returns every live byte and the logical offset of the first one.
func (f *File) ReadAll(ctx context.Context) (int64, []byte, error) {
	if f.fp == nil {
		return 0, nil, errNoFile
	}
	if err := f.flock(ctx, lockShared); err != nil {
		return 0, nil, err
	}
	defer f.unflock()
	m, err := f.readMeta()
	if err != nil {
		return 0, nil, err
	}
	buf := make([]byte, m.LiveSize())
	realOffset, nr, err := f.readAt(m, buf, 0)
	return realOffset, buf[:nr], err
}

// ReadAtWithMax reads at most maxSize bytes starting at offset.
func (f *File) ReadAtWithMax(ctx context.Context, offset int64, maxSize int64) (int64, []byte, error) {
	if f.fp == nil {
		return 0, nil, errNoFile
	}
	if err := f.flock(ctx, lockShared); err != nil {
		return 0, nil, err
	}
	defer f.unflock()
	m, err := f.readMeta()
	if err != nil {
		return 0, nil, err
	}
	size := m.LiveSize()
	if maxSize < size {
		size = maxSize
	}
	if size < 0 {
		size = 0
	}
	buf := make([]byte, size)
	realOffset, nr, err := f.readAt(m, buf, offset)
	return realOffset, buf[:nr], err
}

func (f *File) readAt(m Meta, buf []byte, offset int64) (int64, int, error) {
	if offset < m.FileOffset {
		offset = m.FileOffset
	}
	live := m.liveChunks()
	if end := m.FileOffset + live.total(); offset >= end {
		return end, 0, nil
	}
	numRead := 0
	for _, c := range live.advance(offset - m.FileOffset).Slice() {
		if numRead >= len(buf) {
			break
		}
		toRead := len(buf) - numRead
		if int64(toRead) > c.Len {
			toRead = int(c.Len)
		}
		nr, err := f.fp.ReadAt(buf[numRead:numRead+toRead], c.Pos+HeaderLen)
		if err != nil {
			return offset, 0, errors.Wrap(err, "cirfile: reading data")
		}
		numRead += nr
	}
	return offset, numRead, nil
}
