package cirfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkAdvance(t *testing.T) {
	l := makeChunks(chunk{4, 96}, chunk{0, 4})
	assert.Equal(t, int64(100), l.total())
	assert.Equal(t, l, l.advance(0))
	assert.Equal(t, makeChunks(chunk{10, 90}, chunk{0, 4}), l.advance(6))
	assert.Equal(t, makeChunks(chunk{0, 4}), l.advance(96))
	assert.Equal(t, makeChunks(chunk{2, 2}), l.advance(98))
	assert.Equal(t, 0, l.advance(100).Len())
	assert.Equal(t, 0, l.advance(500).Len())
	assert.Equal(t, "[4+96 0+4]", l.String())
	assert.Panics(t, func() { l.advance(-1) })
}

func TestLiveAndFreeChunks(t *testing.T) {
	var tests = []struct {
		name string
		m    Meta
		live chunkList
		free chunkList
	}{
		{
			name: "empty",
			m:    Meta{MaxSize: 100, StartPos: FilePosEmpty},
			live: chunkList{},
			free: makeChunks(chunk{0, 100}),
		},
		{
			name: "partial",
			m:    Meta{MaxSize: 100, StartPos: 0, EndPos: 29, DataSize: 30},
			live: makeChunks(chunk{0, 30}),
			free: makeChunks(chunk{30, 70}),
		},
		{
			name: "full from zero",
			m:    Meta{MaxSize: 100, StartPos: 0, EndPos: 99, DataSize: 100},
			live: makeChunks(chunk{0, 100}),
			free: chunkList{},
		},
		{
			name: "full wrapped",
			m:    Meta{MaxSize: 100, StartPos: 4, EndPos: 3, DataSize: 100},
			live: makeChunks(chunk{4, 96}, chunk{0, 4}),
			free: chunkList{},
		},
		{
			name: "wrapped with hole",
			m:    Meta{MaxSize: 100, StartPos: 50, EndPos: 9, DataSize: 100},
			live: makeChunks(chunk{50, 50}, chunk{0, 10}),
			free: makeChunks(chunk{10, 40}),
		},
		{
			name: "evicted head",
			m:    Meta{MaxSize: 100, StartPos: 20, EndPos: 79, DataSize: 80},
			live: makeChunks(chunk{20, 60}),
			free: makeChunks(chunk{80, 20}, chunk{0, 20}),
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.live, tt.m.liveChunks(), tt.name)
		assert.Equal(t, tt.free, tt.m.freeChunks(), tt.name)
		assert.Equal(t, tt.m.MaxSize, tt.m.LiveSize()+tt.m.freeChunks().total(), tt.name)
	}
}

func TestEnsureFreeSpace(t *testing.T) {
	m := Meta{MaxSize: 100, StartPos: 0, EndPos: 29, DataSize: 30}
	got, changed := m.ensureFreeSpace(70)
	assert.False(t, changed)
	assert.Equal(t, m, got)

	got, changed = m.ensureFreeSpace(120)
	assert.True(t, changed)
	assert.Equal(t, int64(FilePosEmpty), got.StartPos)
	assert.Equal(t, int64(50), got.FileOffset)

	full := Meta{MaxSize: 100, FileOffset: 50, StartPos: 0, EndPos: 99, DataSize: 100}
	got, changed = full.ensureFreeSpace(4)
	assert.True(t, changed)
	assert.Equal(t, int64(4), got.StartPos)
	assert.Equal(t, int64(54), got.FileOffset)
	assert.Equal(t, int64(96), got.LiveSize())

	wrapped := Meta{MaxSize: 100, StartPos: 98, EndPos: 97, DataSize: 100}
	got, _ = wrapped.ensureFreeSpace(5)
	assert.Equal(t, int64(3), got.StartPos)
	assert.Equal(t, int64(5), got.FileOffset)

	empty := Meta{MaxSize: 100, FileOffset: 10, StartPos: FilePosEmpty}
	got, changed = empty.ensureFreeSpace(150)
	assert.True(t, changed)
	assert.Equal(t, int64(60), got.FileOffset)
}

func TestAdvanceWrite(t *testing.T) {
	m := newMeta(100)
	m = m.advanceWrite(chunk{0, 100}, 5)
	assert.Equal(t, int64(0), m.StartPos)
	assert.Equal(t, int64(4), m.EndPos)
	assert.Equal(t, int64(5), m.DataSize)

	m = Meta{MaxSize: 100, StartPos: 4, EndPos: 99, DataSize: 100}
	m = m.advanceWrite(chunk{0, 4}, 4)
	assert.Equal(t, int64(4), m.StartPos)
	assert.Equal(t, int64(3), m.EndPos)
	assert.Equal(t, int64(100), m.DataSize)
}

func TestRanges(t *testing.T) {
	m := Meta{MaxSize: 100, StartPos: 50, EndPos: 9, DataSize: 100}
	assert.Equal(t, []Range{{50, 50}, {0, 10}}, m.LiveRanges())
	assert.Equal(t, []Range{{10, 40}}, m.FreeRanges())
	assert.Empty(t, newMeta(10).LiveRanges())
}
