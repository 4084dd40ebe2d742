package streamzip

import (
	"errors"
	"io"

	"github.com/nguyengg/streamzip/internal/crcfold"
)

// pumpReadSize is the buffer size used for unshaped reads from an entry's
// byte source.
const pumpReadSize = 32 * 1024

// pump drains an entry's byte source, maintaining a running CRC-32/IEEE
// fold and uncompressed byte count as it goes (§4.4).
//
// Without a shaping contract, next re-emits the source's own chunks
// unchanged. With firstPartSize/lastPartSize set, next concatenates from
// the source to emit chunks of exactly firstPartSize bytes until the
// remainder falls below it, then emits one final chunk; if the drained
// total does not equal firstPartSize*K + lastPartSize for some K>=0, the
// final call fails with a MalformedInputError.
type pump struct {
	name string
	r    io.Reader

	firstPartSize *uint64
	lastPartSize  *uint64

	crcSeed uint32
	size    uint64

	buf  []byte // accumulation buffer, only used in shaping mode
	eof  bool
	done bool
}

// newPump returns a pump with no shaping contract: next re-emits the
// source's chunks unchanged.
func newPump(name string, r io.Reader) *pump {
	return &pump{name: name, r: r}
}

// newShapedPump returns a pump that reshapes the source's chunks to the
// given firstPartSize/lastPartSize contract. Either may be nil.
func newShapedPump(name string, r io.Reader, firstPartSize, lastPartSize *uint64) *pump {
	return &pump{name: name, r: r, firstPartSize: firstPartSize, lastPartSize: lastPartSize}
}

// crc32 and size are valid only after next has returned io.EOF (I3).
func (p *pump) crc32() uint32 { return p.crcSeed }
func (p *pump) size64() uint64 { return p.size }

func (p *pump) fold(b []byte) {
	if len(b) == 0 {
		return
	}
	p.crcSeed = crcfold.Of(b, p.crcSeed)
	p.size += uint64(len(b))
}

// next returns the next chunk of payload bytes to emit, or io.EOF once the
// source and any buffered remainder are exhausted.
func (p *pump) next() ([]byte, error) {
	if p.done {
		return nil, io.EOF
	}

	if p.firstPartSize == nil {
		chunk := make([]byte, pumpReadSize)
		n, err := p.r.Read(chunk)
		p.fold(chunk[:n])

		switch {
		case err == nil:
			return chunk[:n], nil
		case errors.Is(err, io.EOF):
			p.done = true
			if n > 0 {
				return chunk[:n], nil
			}
			return nil, io.EOF
		default:
			p.done = true
			return nil, &SourceError{Name: p.name, Err: err}
		}
	}

	return p.nextShaped()
}

// fill reads from the source until the accumulation buffer holds at least
// need bytes or the source is exhausted.
func (p *pump) fill(need int) error {
	tmp := make([]byte, pumpReadSize)
	for !p.eof && len(p.buf) < need {
		n, err := p.r.Read(tmp)
		if n > 0 {
			p.buf = append(p.buf, tmp[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.eof = true
				break
			}
			return &SourceError{Name: p.name, Err: err}
		}
	}
	return nil
}

func (p *pump) nextShaped() ([]byte, error) {
	first := *p.firstPartSize
	if first == 0 {
		p.done = true
		return nil, &MalformedInputError{Msg: p.name + ": firstPartSize must be positive"}
	}

	if err := p.fill(int(first) + 1); err != nil {
		p.done = true
		return nil, err
	}

	if len(p.buf) > int(first) {
		chunk := p.buf[:first]
		p.buf = p.buf[first:]
		p.fold(chunk)
		return chunk, nil
	}

	// Source is exhausted; the buffered remainder (possibly empty) is
	// the final chunk.
	p.done = true
	chunk := p.buf
	p.buf = nil
	p.fold(chunk)

	if p.lastPartSize != nil && uint64(len(chunk)) != *p.lastPartSize {
		return nil, newLastPartSizeError(p.name, first, *p.lastPartSize, p.size)
	}

	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}
