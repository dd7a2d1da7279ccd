package cirfile

import "fmt"

// chunk is a contiguous physical range of the data region.
type chunk struct {
	Pos int64
	Len int64
}

// chunkList holds at most two chunks: the ring wraps at most once.
type chunkList struct {
	items [2]chunk
	n     int
}

func makeChunks(cs ...chunk) chunkList {
	var l chunkList
	for _, c := range cs {
		l.push(c)
	}
	return l
}

func (l *chunkList) push(c chunk) {
	if l.n == len(l.items) {
		panic("cirfile: chunk list overflow")
	}
	l.items[l.n] = c
	l.n++
}

// Len returns the number of chunks.
func (l chunkList) Len() int { return l.n }

// Slice returns the chunks in order.
func (l chunkList) Slice() []chunk { return l.items[:l.n] }

func (l chunkList) total() int64 {
	var rtn int64
	for _, c := range l.Slice() {
		rtn += c.Len
	}
	return rtn
}

// advance drops the first n bytes, removing or trimming leading chunks.
func (l chunkList) advance(n int64) chunkList {
	if n < 0 {
		panic(fmt.Sprintf("cirfile: invalid negative advance: %d", n))
	}
	if n == 0 {
		return l
	}
	var rtn chunkList
	for _, c := range l.Slice() {
		if n >= c.Len {
			n -= c.Len
			continue
		}
		rtn.push(chunk{Pos: c.Pos + n, Len: c.Len - n})
		n = 0
	}
	return rtn
}

func (l chunkList) String() string {
	s := "["
	for i, c := range l.Slice() {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d+%d", c.Pos, c.Len)
	}
	return s + "]"
}
