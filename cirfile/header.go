package cirfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CBUF[version] [maxsize] [fileoffset] [startpos] [endpos]
const headerFmt = "CBUF%02d %19d %19d %19d %19d\n" // 87 bytes
const fullHeaderFmt = "%-255s\n"                    // 255 + newline

const (
	// HeaderLen is the size of the header region. Data starts right after it.
	HeaderLen = 256
	// CurrentVersion is the only format version this package reads or writes.
	CurrentVersion = 1
	// FilePosEmpty is the StartPos sentinel for a ring with no live bytes.
	FilePosEmpty = -1
)

// fixed columns of the header line produced by headerFmt
const (
	headerMagic   = "CBUF"
	versionCol    = len(headerMagic)
	versionWidth  = 2
	fieldWidth    = 19
	headerLineLen = versionCol + versionWidth + 4*(fieldWidth+1) + 1
)

// Meta is a snapshot of the header plus the data size observed on disk.
// Operations read a Meta, compute the next one and write it back.
type Meta struct {
	Version    int
	MaxSize    int64
	FileOffset int64
	StartPos   int64
	EndPos     int64
	// DataSize is the physical length of the data region. It is never read
	// from the header.
	DataSize int64
}

// IsEmpty reports whether the ring holds no live bytes.
func (m Meta) IsEmpty() bool {
	return m.StartPos == FilePosEmpty
}

func newMeta(maxSize int64) Meta {
	return Meta{Version: CurrentVersion, MaxSize: maxSize, StartPos: FilePosEmpty}
}

// EncodeHeader renders the header fields of m into exactly HeaderLen bytes.
// DataSize is not part of the header.
func EncodeHeader(m Meta) ([]byte, error) {
	line := fmt.Sprintf(headerFmt, m.Version, m.MaxSize, m.FileOffset, m.StartPos, m.EndPos)
	if len(line) != headerLineLen {
		return nil, errors.Wrapf(ErrBadHeader, "header fields do not fit their columns %q", line)
	}
	return []byte(fmt.Sprintf(fullHeaderFmt, line)), nil
}

// DecodeHeader parses the five header fields from buf. The returned Meta has
// DataSize 0; callers fill it from the file size and then call validate.
func DecodeHeader(buf []byte) (Meta, error) {
	var m Meta
	if len(buf) < HeaderLen {
		return m, errors.Wrapf(ErrBadHeader, "short header (%d bytes)", len(buf))
	}
	if string(buf[:versionCol]) != headerMagic {
		return m, errors.Wrapf(ErrBadHeader, "bad magic %q", buf[:versionCol])
	}
	version, err := strconv.Atoi(string(buf[versionCol : versionCol+versionWidth]))
	if err != nil {
		return m, errors.Wrap(ErrBadHeader, err.Error())
	}
	m.Version = version

	fields := [4]*int64{&m.MaxSize, &m.FileOffset, &m.StartPos, &m.EndPos}
	pos := versionCol + versionWidth
	for i, dst := range fields {
		if buf[pos] != ' ' {
			return m, errors.Wrapf(ErrBadHeader, "missing separator before field %d", i+1)
		}
		raw := strings.TrimLeft(string(buf[pos+1:pos+1+fieldWidth]), " ")
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return m, errors.Wrapf(ErrBadHeader, "field %d: %v", i+1, err)
		}
		*dst = v
		pos += fieldWidth + 1
	}
	if buf[pos] != '\n' {
		return m, errors.Wrap(ErrBadHeader, "header line is not newline terminated")
	}
	return m, nil
}

// validate applies the self-healing rules for a header that may reference
// data that never reached the disk, then checks the bounds. It must be called
// with DataSize already set from the file size.
func (m Meta) validate() (Meta, error) {
	if m.Version != CurrentVersion {
		return m, errors.Wrapf(ErrInvalidVersion, "version[%d]", m.Version)
	}
	// possible incomplete write, pull start/end back inside the file
	if m.DataSize == 0 || (m.StartPos >= m.DataSize && m.EndPos >= m.DataSize) {
		m.StartPos = FilePosEmpty
		m.EndPos = 0
	} else if m.StartPos >= m.DataSize {
		m.StartPos = 0
	} else if m.EndPos >= m.DataSize {
		m.EndPos = m.DataSize - 1
	}
	if m.MaxSize <= 0 || m.FileOffset < 0 ||
		(m.StartPos < 0 && m.StartPos != FilePosEmpty) || m.StartPos >= m.MaxSize ||
		m.EndPos < 0 || m.EndPos >= m.MaxSize {
		return m, &CorruptMetaError{Meta: m}
	}
	return m, nil
}
