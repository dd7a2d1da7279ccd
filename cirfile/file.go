package cirfile

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/termlog/cirstore/utils/log"
)

// File is a handle on one ring file. Every operation reloads the header
// under the file lock, so several processes may share the same file. A File
// is not safe for concurrent use by multiple goroutines.
type File struct {
	fp       *os.File
	name     string
	meta     Meta
	lockMode lockMode
}

// Stat is the summary returned by StatFile.
type Stat struct {
	Location   string
	Version    int
	MaxSize    int64
	FileOffset int64
	DataSize   int64
}

type options struct {
	policy PathPolicy
}

// Option configures Create, Open and StatFile.
type Option func(*options)

// WithPathPolicy replaces DefaultPathPolicy.
func WithPathPolicy(p PathPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func buildOptions(opts []Option) options {
	o := options{policy: DefaultPathPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Create makes a new, empty ring file holding at most maxSize data bytes.
// It fails with ErrExists if the file is already there.
func Create(fileName string, maxSize int64, opts ...Option) (*File, error) {
	return CreateAt(fileName, maxSize, 0, opts...)
}

// CreateAt is Create for a ring whose first byte will have the logical
// offset fileOffset, as when restoring an exported ring.
func CreateAt(fileName string, maxSize int64, fileOffset int64, opts ...Option) (*File, error) {
	o := buildOptions(opts)
	if maxSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidMaxSize, "maxsize[%d]", maxSize)
	}
	if fileOffset < 0 {
		return nil, errors.Wrapf(ErrInvalidWritePos, "fileoffset[%d]", fileOffset)
	}
	if err := o.policy.Validate(fileName); err != nil {
		return nil, err
	}
	fp, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(ErrExists, "file[%s]", fileName)
		}
		return nil, errors.Wrap(err, "cirfile: create")
	}
	m := newMeta(maxSize)
	m.FileOffset = fileOffset
	f := &File{fp: fp, name: fileName, meta: m}
	if err := f.initHeader(); err != nil {
		fp.Close()
		os.Remove(fileName)
		return nil, err
	}
	return f, nil
}

func (f *File) initHeader() error {
	// the file was created with O_EXCL, nobody else can be waiting on it
	if err := f.flock(context.TODO(), lockExclusive); err != nil {
		return err
	}
	defer f.unflock()
	return f.writeMeta(f.meta)
}

// Open opens an existing ring file for reading and writing. The header is
// not parsed until the first operation.
func Open(fileName string, opts ...Option) (*File, error) {
	o := buildOptions(opts)
	if err := o.policy.Validate(fileName); err != nil {
		return nil, err
	}
	fp, err := os.OpenFile(fileName, os.O_RDWR, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "cirfile: open")
	}
	finfo, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, errors.Wrap(err, "cirfile: stat")
	}
	if finfo.Size() < HeaderLen {
		fp.Close()
		return nil, errors.Wrapf(ErrTooSmall, "file length[%d] less than HeaderLen[%d]", finfo.Size(), HeaderLen)
	}
	return &File{fp: fp, name: fileName}, nil
}

// StatFile opens fileName, reads its header and closes it again.
func StatFile(ctx context.Context, fileName string, opts ...Option) (*Stat, error) {
	f, err := Open(fileName, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fileOffset, dataSize, err := f.StartOffsetAndSize(ctx)
	if err != nil {
		return nil, err
	}
	return &Stat{
		Location:   fileName,
		Version:    f.meta.Version,
		MaxSize:    f.meta.MaxSize,
		FileOffset: fileOffset,
		DataSize:   dataSize,
	}, nil
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Close releases the file descriptor and with it any lock still held.
func (f *File) Close() error {
	if f.fp == nil {
		return nil
	}
	err := f.fp.Close()
	f.fp = nil
	f.lockMode = lockNone
	return err
}

// Meta returns the snapshot loaded by the most recent operation. It does not
// touch the file.
func (f *File) Meta() Meta {
	return f.meta
}

// ReadMeta reloads the header under a shared lock.
func (f *File) ReadMeta(ctx context.Context) (Meta, error) {
	if f.fp == nil {
		return Meta{}, errNoFile
	}
	if err := f.flock(ctx, lockShared); err != nil {
		return Meta{}, err
	}
	defer f.unflock()
	return f.readMeta()
}

// StartOffsetAndSize returns the logical offset of the oldest readable byte
// and the number of readable bytes.
func (f *File) StartOffsetAndSize(ctx context.Context) (int64, int64, error) {
	m, err := f.ReadMeta(ctx)
	if err != nil {
		return 0, 0, err
	}
	return m.FileOffset, m.LiveSize(), nil
}

func (f *File) readMeta() (Meta, error) {
	_, m, err := f.loadMeta()
	return m, err
}

// loadMeta returns the header as stored and the healed snapshot.
func (f *File) loadMeta() (Meta, Meta, error) {
	if f.fp == nil {
		return Meta{}, Meta{}, errNoFile
	}
	if !f.hasShLock() {
		return Meta{}, Meta{}, errNeedShLock
	}
	finfo, err := f.fp.Stat()
	if err != nil {
		return Meta{}, Meta{}, errors.Wrap(err, "cirfile: stat")
	}
	if finfo.Size() < HeaderLen {
		return Meta{}, Meta{}, errors.Wrapf(ErrTooSmall, "file length[%d] less than HeaderLen[%d]", finfo.Size(), HeaderLen)
	}
	buf := make([]byte, HeaderLen)
	if _, err := f.fp.ReadAt(buf, 0); err != nil {
		return Meta{}, Meta{}, errors.Wrap(err, "cirfile: reading header")
	}
	raw, err := DecodeHeader(buf)
	if err != nil {
		return Meta{}, Meta{}, err
	}
	raw.DataSize = finfo.Size() - HeaderLen
	m, err := raw.validate()
	if err != nil {
		return raw, Meta{}, err
	}
	if m != raw {
		log.Debug("cirfile: healed header of %s start[%d->%d] end[%d->%d] datasize[%d]",
			f.name, raw.StartPos, m.StartPos, raw.EndPos, m.EndPos, m.DataSize)
	}
	f.meta = m
	return raw, m, nil
}

// Check reloads the header under a shared lock and reports whether it had
// to be healed.
func (f *File) Check(ctx context.Context) (bool, error) {
	if f.fp == nil {
		return false, errNoFile
	}
	if err := f.flock(ctx, lockShared); err != nil {
		return false, err
	}
	defer f.unflock()
	raw, m, err := f.loadMeta()
	if err != nil {
		return false, err
	}
	return raw != m, nil
}

// Repair writes back a header that had to be healed on read. It reports
// whether the stored header changed.
func (f *File) Repair(ctx context.Context) (bool, error) {
	if f.fp == nil {
		return false, errNoFile
	}
	if err := f.flock(ctx, lockExclusive); err != nil {
		return false, err
	}
	defer f.unflock()
	raw, m, err := f.loadMeta()
	if err != nil {
		return false, err
	}
	if raw == m {
		return false, nil
	}
	return true, f.writeMeta(m)
}

// writeMeta persists the header fields of m. It does not validate them.
func (f *File) writeMeta(m Meta) error {
	if f.fp == nil {
		return errNoFile
	}
	if !f.hasExLock() {
		return errNeedExLock
	}
	buf, err := EncodeHeader(m)
	if err != nil {
		return err
	}
	if _, err := f.fp.WriteAt(buf, 0); err != nil {
		return errors.Wrap(err, "cirfile: writing header")
	}
	f.meta = m
	return nil
}
