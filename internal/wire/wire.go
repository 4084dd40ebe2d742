// Package wire holds small little-endian scratch buffers used to assemble
// the fixed-size portion of ZIP records.
//
// Direct slice writes via encoding/binary.LittleEndian are used instead of
// reflection-driven binary.Write, following the style of the teacher
// repo's zipper/headers.go field-by-field decoding: encoding is the mirror
// image of that decoding.
package wire

import "encoding/binary"

// Buffer is an append-only little-endian byte buffer sized for one ZIP
// record head. The zero value is ready to use.
type Buffer struct {
	b []byte
}

// NewBuffer returns a Buffer with capacity hinted by size, the expected
// final length of the record head being assembled.
func NewBuffer(size int) *Buffer {
	return &Buffer{b: make([]byte, 0, size)}
}

// Bytes returns the accumulated bytes.
func (buf *Buffer) Bytes() []byte {
	return buf.b
}

// Len returns the number of bytes written so far.
func (buf *Buffer) Len() int {
	return len(buf.b)
}

// U16 appends a little-endian uint16.
func (buf *Buffer) U16(v uint16) *Buffer {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.b = append(buf.b, tmp[:]...)
	return buf
}

// U32 appends a little-endian uint32.
func (buf *Buffer) U32(v uint32) *Buffer {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.b = append(buf.b, tmp[:]...)
	return buf
}

// U64 appends a little-endian uint64.
func (buf *Buffer) U64(v uint64) *Buffer {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.b = append(buf.b, tmp[:]...)
	return buf
}

// Raw appends p unchanged (used for name/extra field bytes).
func (buf *Buffer) Raw(p []byte) *Buffer {
	buf.b = append(buf.b, p...)
	return buf
}
