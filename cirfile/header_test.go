package cirfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHeader(t *testing.T) {
	buf, err := EncodeHeader(Meta{Version: CurrentVersion, MaxSize: 100, FileOffset: 54, StartPos: 4, EndPos: 3})
	require.Nil(t, err)
	assert.Len(t, buf, HeaderLen)
	assert.Equal(t, "CBUF01", string(buf[:6]))
	assert.Equal(t, byte('\n'), buf[headerLineLen-1])
	assert.Equal(t, byte('\n'), buf[HeaderLen-1])
	assert.Equal(t, byte(' '), buf[headerLineLen])
}

func TestDecodeHeader(t *testing.T) {
	var tests = []Meta{
		newMeta(100),
		{Version: CurrentVersion, MaxSize: 5 * 1024 * 1024, FileOffset: 1 << 40, StartPos: 17, EndPos: 16},
		{Version: CurrentVersion, MaxSize: 1, FileOffset: 0, StartPos: 0, EndPos: 0},
	}
	for _, want := range tests {
		buf, err := EncodeHeader(want)
		require.Nil(t, err)
		got, err := DecodeHeader(buf)
		require.Nil(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	good, err := EncodeHeader(newMeta(100))
	require.Nil(t, err)

	_, err = DecodeHeader(good[:100])
	assert.True(t, errors.Is(err, ErrBadHeader))

	bad := append([]byte{}, good...)
	copy(bad, "XBUF")
	_, err = DecodeHeader(bad)
	assert.True(t, errors.Is(err, ErrBadHeader))

	bad = append([]byte{}, good...)
	bad[20] = 'x'
	_, err = DecodeHeader(bad)
	assert.True(t, errors.Is(err, ErrBadHeader))

	bad = append([]byte{}, good...)
	bad[headerLineLen-1] = ' '
	_, err = DecodeHeader(bad)
	assert.True(t, errors.Is(err, ErrBadHeader))
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name     string
		in       Meta
		expected Meta
	}{
		{
			name:     "empty file",
			in:       Meta{Version: 1, MaxSize: 100, StartPos: 0, EndPos: 10, DataSize: 0},
			expected: Meta{Version: 1, MaxSize: 100, StartPos: FilePosEmpty, EndPos: 0, DataSize: 0},
		},
		{
			name:     "both positions past data",
			in:       Meta{Version: 1, MaxSize: 100, StartPos: 50, EndPos: 60, DataSize: 40},
			expected: Meta{Version: 1, MaxSize: 100, StartPos: FilePosEmpty, EndPos: 0, DataSize: 40},
		},
		{
			name:     "start past data",
			in:       Meta{Version: 1, MaxSize: 100, StartPos: 50, EndPos: 10, DataSize: 40},
			expected: Meta{Version: 1, MaxSize: 100, StartPos: 0, EndPos: 10, DataSize: 40},
		},
		{
			name:     "end past data",
			in:       Meta{Version: 1, MaxSize: 100, StartPos: 0, EndPos: 60, DataSize: 40},
			expected: Meta{Version: 1, MaxSize: 100, StartPos: 0, EndPos: 39, DataSize: 40},
		},
		{
			name:     "consistent",
			in:       Meta{Version: 1, MaxSize: 100, FileOffset: 7, StartPos: 4, EndPos: 3, DataSize: 100},
			expected: Meta{Version: 1, MaxSize: 100, FileOffset: 7, StartPos: 4, EndPos: 3, DataSize: 100},
		},
	}
	for _, tt := range tests {
		got, err := tt.in.validate()
		assert.Nil(t, err, tt.name)
		assert.Equal(t, tt.expected, got, tt.name)
	}
}

func TestValidateErrors(t *testing.T) {
	_, err := Meta{Version: 2, MaxSize: 100, StartPos: FilePosEmpty}.validate()
	assert.True(t, errors.Is(err, ErrInvalidVersion))

	_, err = Meta{Version: 1, MaxSize: 0, StartPos: FilePosEmpty}.validate()
	assert.True(t, errors.Is(err, ErrCorrupt))

	_, err = Meta{Version: 1, MaxSize: 100, FileOffset: -1, StartPos: FilePosEmpty}.validate()
	assert.True(t, errors.Is(err, ErrCorrupt))

	_, err = Meta{Version: 1, MaxSize: 10, StartPos: 0, EndPos: 15, DataSize: 20}.validate()
	var corrupt *CorruptMetaError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, int64(15), corrupt.Meta.EndPos)
}
