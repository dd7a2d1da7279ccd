package cirfile

import (
	"context"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ringModel keeps every byte ever written at its logical offset; the ring
// must hold exactly the part at or after offset.
type ringModel struct {
	maxSize int64
	offset  int64
	stream  []byte
}

func (r *ringModel) writeAt(buf []byte, pos int64) {
	if pos < r.offset {
		skip := r.offset - pos
		if skip >= int64(len(buf)) {
			return
		}
		buf = buf[skip:]
		pos = r.offset
	}
	for int64(len(r.stream)) < pos {
		r.stream = append(r.stream, 0)
	}
	for i, b := range buf {
		if p := pos + int64(i); p < int64(len(r.stream)) {
			r.stream[p] = b
		} else {
			r.stream = append(r.stream, b)
		}
	}
	if oldest := int64(len(r.stream)) - r.maxSize; oldest > r.offset {
		r.offset = oldest
	}
}

func (r *ringModel) end() int64 {
	return int64(len(r.stream))
}

func randomBytes(rnd *rand.Rand, n int) []byte {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789\n"
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = letters[rnd.Intn(len(letters))]
	}
	return buf
}

func TestRandomWrites(t *testing.T) {
	ctx := context.Background()
	for _, seed := range []int64{1, 7, 42, 1234, 99991} {
		rnd := rand.New(rand.NewSource(seed))
		f, fPath := createTestFile(t, "random.cf")
		model := &ringModel{maxSize: 100}
		prevOffset := int64(0)

		for i := 0; i < 300; i++ {
			var buf []byte
			switch rnd.Intn(10) {
			case 0:
				// empty writes are no-ops unless they open a gap
			case 1:
				buf = randomBytes(rnd, 100+rnd.Intn(60))
			default:
				buf = randomBytes(rnd, 1+rnd.Intn(30))
			}

			if rnd.Intn(2) == 0 {
				require.Nil(t, f.AppendData(ctx, buf), "seed[%d] step[%d]", seed, i)
				model.writeAt(buf, model.end())
			} else {
				pos := model.offset - 20 + rnd.Int63n(model.end()-model.offset+170)
				if pos < 0 {
					pos = 0
				}
				require.Nil(t, f.WriteAt(ctx, buf, pos), "seed[%d] step[%d] pos[%d]", seed, i, pos)
				model.writeAt(buf, pos)
			}

			m, err := f.ReadMeta(ctx)
			require.Nil(t, err)
			assert.LessOrEqual(t, m.LiveSize(), m.MaxSize)
			assert.LessOrEqual(t, m.DataSize, m.MaxSize)
			assert.GreaterOrEqual(t, m.FileOffset, prevOffset, "seed[%d] step[%d]", seed, i)
			prevOffset = m.FileOffset

			finfo, err := os.Stat(fPath)
			require.Nil(t, err)
			assert.LessOrEqual(t, finfo.Size(), HeaderLen+m.MaxSize)

			offset, data, err := f.ReadAll(ctx)
			require.Nil(t, err)
			require.Equal(t, model.offset, offset, "seed[%d] step[%d]", seed, i)
			require.Equal(t, string(model.stream[model.offset:]), string(data), "seed[%d] step[%d]", seed, i)
		}
	}
}
