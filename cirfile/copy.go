package cirfile

import (
	"context"
	"io"
)

const copyBufferSize = 64 * 1024

// CopyFrom appends everything read from src until EOF and returns the number
// of bytes appended. Each read is appended under its own lock.
func (f *File) CopyFrom(ctx context.Context, src io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64
	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			if err := f.AppendData(ctx, buf[:nr]); err != nil {
				return total, err
			}
			total += int64(nr)
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}

type appender struct {
	ctx context.Context
	f   *File
}

// NewAppender adapts f to an io.Writer whose writes are appends.
func (f *File) NewAppender(ctx context.Context) io.Writer {
	return appender{ctx: ctx, f: f}
}

func (a appender) Write(p []byte) (int, error) {
	if err := a.f.AppendData(a.ctx, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
