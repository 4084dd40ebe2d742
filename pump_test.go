package streamzip

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func drainPump(t *testing.T, p *pump) [][]byte {
	t.Helper()
	var chunks [][]byte
	for {
		c, err := p.next()
		if err == io.EOF {
			return chunks
		}
		assert.NoError(t, err)
		chunks = append(chunks, append([]byte(nil), c...))
	}
}

func TestPump_Unshaped(t *testing.T) {
	data := []byte("Hello, World!")
	p := newPump("hello.txt", bytes.NewReader(data))

	chunks := drainPump(t, p)
	var got []byte
	for _, c := range chunks {
		got = append(got, c...)
	}

	assert.Equal(t, data, got)
	assert.EqualValues(t, len(data), p.size64())
	assert.NotZero(t, p.crc32())
}

func TestPump_Shaped_ExactMultiple(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 10)
	first, last := uint64(4), uint64(2)
	p := newShapedPump("f", bytes.NewReader(data), &first, &last)

	chunks := drainPump(t, p)
	assert.Equal(t, [][]byte{
		bytes.Repeat([]byte("x"), 4),
		bytes.Repeat([]byte("x"), 4),
		bytes.Repeat([]byte("x"), 2),
	}, chunks)
	assert.EqualValues(t, 10, p.size64())
}

func TestPump_Shaped_MismatchedTail(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 9)
	first, last := uint64(4), uint64(3)
	p := newShapedPump("f", bytes.NewReader(data), &first, &last)

	var err error
	for {
		_, err = p.next()
		if err != nil {
			break
		}
	}

	assert.Error(t, err)
	var malformed *MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

func TestPump_Shaped_NoLastPartSizeConstraint(t *testing.T) {
	data := bytes.Repeat([]byte("y"), 7)
	first := uint64(3)
	p := newShapedPump("f", bytes.NewReader(data), &first, nil)

	chunks := drainPump(t, p)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 1)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestPump_SourceError(t *testing.T) {
	boom := assert.AnError
	p := newPump("bad", errReader{err: boom})

	_, err := p.next()
	assert.Error(t, err)
	var srcErr *SourceError
	assert.ErrorAs(t, err, &srcErr)
	assert.ErrorIs(t, err, boom)
}
