package cirfile

import (
	"context"

	"github.com/pkg/errors"
)

// AppendData writes buf after the newest byte, evicting the oldest bytes as
// needed. If buf is larger than the ring only its tail is kept.
func (f *File) AppendData(ctx context.Context, buf []byte) error {
	if f.fp == nil {
		return errNoFile
	}
	if err := f.flock(ctx, lockExclusive); err != nil {
		return err
	}
	defer f.unflock()
	m, err := f.readMeta()
	if err != nil {
		return err
	}
	_, err = f.appendData(m, buf)
	return err
}

// WriteAt writes buf at the logical position writePos. Bytes before the
// oldest readable offset are dropped, live bytes are overwritten in place,
// and a position past the end is reached by appending zeros first.
func (f *File) WriteAt(ctx context.Context, buf []byte, writePos int64) error {
	if writePos < 0 {
		return errors.Wrapf(ErrInvalidWritePos, "writepos[%d]", writePos)
	}
	if f.fp == nil {
		return errNoFile
	}
	if err := f.flock(ctx, lockExclusive); err != nil {
		return err
	}
	defer f.unflock()
	m, err := f.readMeta()
	if err != nil {
		return err
	}
	_, err = f.writeAt(m, buf, writePos)
	return err
}

func (f *File) writeAt(m Meta, buf []byte, writePos int64) (Meta, error) {
	if writePos < m.FileOffset {
		skip := m.FileOffset - writePos
		if skip >= int64(len(buf)) {
			return m, nil
		}
		buf = buf[skip:]
		writePos = m.FileOffset
	}
	var err error
	if end := m.LogicalEnd(); writePos > end {
		gap := writePos - end
		if m, err = f.ensureFreeSpace(m, gap); err != nil {
			return m, err
		}
		zeroLen := gap
		if zeroLen > m.MaxSize {
			zeroLen = m.MaxSize
		}
		if m, err = f.appendData(m, make([]byte, zeroLen)); err != nil {
			return m, err
		}
	}
	live := m.liveChunks()
	size := live.total()
	if writePos < m.FileOffset || writePos > m.FileOffset+size {
		return m, errors.Errorf("cirfile: write position out of range writepos[%d] fileoffset[%d] size[%d]",
			writePos, m.FileOffset, size)
	}
	if rel := writePos - m.FileOffset; rel < size {
		nw, err := f.overwrite(buf, live.advance(rel))
		if err != nil {
			return m, err
		}
		buf = buf[nw:]
		if len(buf) == 0 {
			return m, nil
		}
	}
	return f.appendData(m, buf)
}

// overwrite writes into already live chunks; the snapshot does not change.
func (f *File) overwrite(buf []byte, chunks chunkList) (int64, error) {
	var numWrite int64
	for _, c := range chunks.Slice() {
		if numWrite >= int64(len(buf)) {
			break
		}
		toWrite := int64(len(buf)) - numWrite
		if toWrite > c.Len {
			toWrite = c.Len
		}
		nw, err := f.fp.WriteAt(buf[numWrite:numWrite+toWrite], c.Pos+HeaderLen)
		if err != nil {
			return numWrite, errors.Wrap(err, "cirfile: writing data")
		}
		numWrite += int64(nw)
	}
	return numWrite, nil
}

func (f *File) appendData(m Meta, buf []byte) (Meta, error) {
	if len(buf) == 0 {
		return m, nil
	}
	m, err := f.ensureFreeSpace(m, int64(len(buf)))
	if err != nil {
		return m, err
	}
	if int64(len(buf)) >= m.MaxSize {
		buf = buf[int64(len(buf))-m.MaxSize:]
	}
	for _, c := range m.freeChunks().Slice() {
		if len(buf) == 0 {
			break
		}
		if c.Len == 0 {
			continue
		}
		toWrite := int64(len(buf))
		if toWrite > c.Len {
			toWrite = c.Len
		}
		nw, err := f.fp.WriteAt(buf[:toWrite], c.Pos+HeaderLen)
		if nw > 0 {
			m = m.advanceWrite(c, int64(nw))
		}
		if err != nil {
			return m, errors.Wrap(err, "cirfile: writing data")
		}
		buf = buf[nw:]
	}
	return m, f.writeMeta(m)
}

func (f *File) ensureFreeSpace(m Meta, required int64) (Meta, error) {
	next, changed := m.ensureFreeSpace(required)
	if !changed {
		return m, nil
	}
	return next, f.writeMeta(next)
}
