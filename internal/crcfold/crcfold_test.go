package crcfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	// S1
	assert.Equal(t, uint32(0x1b851995), Of([]byte("Hello world!"), 0))
	// S2
	assert.Equal(t, uint32(0), Of(nil, 0))
}

func TestOf_Chunked(t *testing.T) {
	data := []byte("Testing ZIP metadata! Testing ZIP metadata!")

	oneShot := Of(data, 0)

	var chunked uint32
	for _, chunk := range [][]byte{data[:5], data[5:17], data[17:]} {
		chunked = Of(chunk, chunked)
	}

	assert.Equal(t, oneShot, chunked)
}
