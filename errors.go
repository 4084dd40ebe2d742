package streamzip

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// errIteratorStopped is the AbortedError reason when a chunk iterator's
// consumer stops ranging before the archive finished (§4.7 "Cancel").
var errIteratorStopped = errors.New("streamzip: chunk iterator stopped before archive finished")

// AbortedError is returned when archive production stops because of an
// external abort (the context passed to NewWithContext, NewFromSeq or
// NewIteratorFromSeq was canceled) or because the
// consumer released the stream before it finished (§7).
type AbortedError struct {
	// Reason is the cause of the abort, typically ctx.Err() or the error
	// given to Stream.Abort.
	Reason error
}

func (e *AbortedError) Error() string {
	if e.Reason == nil {
		return "streamzip: aborted"
	}
	return fmt.Sprintf("streamzip: aborted: %v", e.Reason)
}

func (e *AbortedError) Unwrap() error {
	return e.Reason
}

// MalformedInputError is returned when an input item cannot be encoded as
// specified: an unsupported item shape, a firstPartSize/lastPartSize
// shaping mismatch, or a declared size contradicted by the number of
// bytes actually drained from the item's body.
type MalformedInputError struct {
	Msg string
	Err error
}

func (e *MalformedInputError) Error() string {
	if e.Err == nil {
		return "streamzip: malformed input: " + e.Msg
	}
	return fmt.Sprintf("streamzip: malformed input: %s: %v", e.Msg, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// newSizeMismatchError reports that an item's declared size didn't match
// the number of bytes actually drained from its body (§9 open question,
// resolved: MalformedInput).
func newSizeMismatchError(name string, declared, drained uint64) *MalformedInputError {
	return &MalformedInputError{
		Msg: fmt.Sprintf("%q: declared size %s does not match drained size %s",
			name, humanize.Bytes(declared), humanize.Bytes(drained)),
	}
}

// newLastPartSizeError reports that the pump's shaping contract
// (firstPartSize/lastPartSize) was violated by the drained byte count.
func newLastPartSizeError(name string, firstPartSize, lastPartSize, drained uint64) *MalformedInputError {
	return &MalformedInputError{
		Msg: fmt.Sprintf("%q: invalid lastPartSize: drained %s is not firstPartSize (%s) * K + lastPartSize (%s) for any K>=0",
			name, humanize.Bytes(drained), humanize.Bytes(firstPartSize), humanize.Bytes(lastPartSize)),
	}
}

// SourceError wraps an error returned by an entry's byte source
// (Item.Body) mid-drain.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("streamzip: read %q body error: %v", e.Name, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IteratorError wraps an error yielded by the caller-supplied item
// iterator.
type IteratorError struct {
	Err error
}

func (e *IteratorError) Error() string {
	return fmt.Sprintf("streamzip: item iterator error: %v", e.Err)
}

func (e *IteratorError) Unwrap() error {
	return e.Err
}
