package cirfile

// Pure snapshot arithmetic over the wrapping address space. Nothing here
// touches the file.

func (m Meta) liveChunks() chunkList {
	if m.StartPos == FilePosEmpty {
		return chunkList{}
	}
	if m.EndPos >= m.StartPos {
		return makeChunks(chunk{m.StartPos, m.EndPos - m.StartPos + 1})
	}
	return makeChunks(
		chunk{m.StartPos, m.DataSize - m.StartPos},
		chunk{0, m.EndPos + 1},
	)
}

func (m Meta) freeChunks() chunkList {
	if m.StartPos == FilePosEmpty {
		return makeChunks(chunk{0, m.MaxSize})
	}
	if m.EndPos == m.StartPos-1 || (m.StartPos == 0 && m.EndPos == m.MaxSize-1) {
		return chunkList{}
	}
	if m.EndPos < m.StartPos {
		return makeChunks(chunk{m.EndPos + 1, m.StartPos - m.EndPos - 1})
	}
	var rtn chunkList
	if m.EndPos < m.MaxSize-1 {
		rtn.push(chunk{m.EndPos + 1, m.MaxSize - m.EndPos - 1})
	}
	if m.StartPos > 0 {
		rtn.push(chunk{0, m.StartPos})
	}
	return rtn
}

// LiveSize is the number of readable bytes in the ring.
func (m Meta) LiveSize() int64 {
	return m.liveChunks().total()
}

// LogicalEnd is the logical offset one past the newest byte.
func (m Meta) LogicalEnd() int64 {
	return m.FileOffset + m.LiveSize()
}

// ensureFreeSpace evicts the oldest bytes so that required bytes can be
// appended. The bool reports whether the snapshot changed and must be
// persisted.
func (m Meta) ensureFreeSpace(required int64) (Meta, bool) {
	free := m.MaxSize - m.LiveSize()
	if free >= required {
		return m, false
	}
	needed := required - free
	if required >= m.MaxSize || m.StartPos == FilePosEmpty {
		m.StartPos = FilePosEmpty
		m.EndPos = 0
	} else {
		m.StartPos = (m.StartPos + needed) % m.MaxSize
	}
	m.FileOffset += needed
	return m, true
}

// advanceWrite records n bytes written at the start of chunk c.
func (m Meta) advanceWrite(c chunk, n int64) Meta {
	if c.Pos+n > m.DataSize {
		m.DataSize = c.Pos + n
	}
	if m.StartPos == FilePosEmpty {
		m.StartPos = c.Pos
	}
	m.EndPos = c.Pos + n - 1
	return m
}

// Range is a physical byte range of the data region.
type Range struct {
	Pos int64
	Len int64
}

func toRanges(l chunkList) []Range {
	rtn := make([]Range, 0, l.Len())
	for _, c := range l.Slice() {
		rtn = append(rtn, Range{Pos: c.Pos, Len: c.Len})
	}
	return rtn
}

// LiveRanges lists the physical ranges holding readable bytes, oldest first.
func (m Meta) LiveRanges() []Range {
	return toRanges(m.liveChunks())
}

// FreeRanges lists the physical ranges the next append will fill, in order.
func (m Meta) FreeRanges() []Range {
	return toRanges(m.freeChunks())
}
