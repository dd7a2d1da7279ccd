package cirfile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a path fails the PathPolicy checks.
	ErrInvalidPath = errors.New("cirfile: invalid path")
	// ErrExists is returned by Create when the target file already exists.
	ErrExists = errors.New("cirfile: file already exists")
	// ErrInvalidMaxSize is returned by Create for a non-positive capacity.
	ErrInvalidMaxSize = errors.New("cirfile: invalid max size")
	// ErrInvalidWritePos is returned by WriteAt for a negative position.
	ErrInvalidWritePos = errors.New("cirfile: invalid write position")
	// ErrTooSmall is returned when a file is shorter than the header.
	ErrTooSmall = errors.New("cirfile: file shorter than header")

	// ErrWouldBlock is returned when the lock is held elsewhere and the
	// caller's context has no way to be cancelled.
	ErrWouldBlock = errors.New("cirfile: lock would block")

	// ErrBadHeader is returned when the header cannot be parsed.
	ErrBadHeader = errors.New("cirfile: malformed header")
	// ErrInvalidVersion is returned when the header version is unsupported.
	ErrInvalidVersion = errors.New("cirfile: invalid version")
	// ErrCorrupt is the root of every CorruptMetaError.
	ErrCorrupt = errors.New("cirfile: corrupt metadata")

	errNoFile     = errors.New("cirfile: no *os.File")
	errNeedShLock = errors.New("cirfile: reading metadata requires a shared lock")
	errNeedExLock = errors.New("cirfile: writing metadata requires an exclusive lock")
)

// PathError records a path rejected by a PathPolicy.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cirfile: invalid path[%s]: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrInvalidPath }

// CorruptMetaError carries the header values that failed the bounds check
// after self-healing. The data cannot be recovered by clamping.
type CorruptMetaError struct {
	Meta Meta
}

func (e *CorruptMetaError) Error() string {
	m := e.Meta
	return fmt.Sprintf("cirfile: corrupt metadata version[%d] datasize[%d] maxsize[%d] fileoffset[%d] startpos[%d] endpos[%d]",
		m.Version, m.DataSize, m.MaxSize, m.FileOffset, m.StartPos, m.EndPos)
}

func (e *CorruptMetaError) Unwrap() error { return ErrCorrupt }
