package streamzip

import (
	"context"
	"io"
	"iter"
	"sync"

	"github.com/nguyengg/streamzip/internal/record"
)

// itemSource pulls one Item at a time. next's ok is false once the source is
// exhausted; a non-nil error terminates the stream immediately.
//
// stop releases any resource the source holds open — for a sliceSource this
// is a no-op, but for a seqSource it is the iter.Pull2 teardown hook. stop
// must be safe to call more than once and must be called on every
// termination path (§5, §7), not only on the source's own natural
// exhaustion, or the goroutine driving a caller's iter.Seq2 leaks.
type itemSource struct {
	next func() (Item, bool, error)
	stop func()
}

func sliceSource(items []Item) itemSource {
	i := 0
	return itemSource{
		next: func() (Item, bool, error) {
			if i >= len(items) {
				return Item{}, false, nil
			}
			it := items[i]
			i++
			return it, true, nil
		},
		stop: func() {},
	}
}

// seqSource adapts a caller-driven iter.Seq2 of items (§9 "entry iterator as
// a pull source") into an itemSource, translating iterator errors into
// IteratorError.
func seqSource(seq iter.Seq2[Item, error]) itemSource {
	next, stop := iter.Pull2(seq)
	var stopOnce sync.Once
	release := func() { stopOnce.Do(stop) }
	closed := false
	return itemSource{
		next: func() (Item, bool, error) {
			if closed {
				return Item{}, false, nil
			}
			it, err, ok := next()
			if !ok {
				closed = true
				release()
				return Item{}, false, nil
			}
			if err != nil {
				closed = true
				release()
				return Item{}, false, &IteratorError{Err: err}
			}
			return it, true, nil
		},
		stop: release,
	}
}

// phase is the archive orchestrator's internal cursor (§4.5). It is a
// superset of the per-entry and per-archive states named in the spec: a
// single enum carries both, since only one entry is ever in flight (I1).
type phase int

const (
	phaseNextItem phase = iota
	phaseData
	phaseDescriptor
	phaseAppendCentral
	phaseCentralDirectory
	phaseFinalize
	phaseDone
)

// engine is the pull-driven producer at the heart of Stream and the chunk
// iterator: each call to next performs just enough work to yield one chunk
// and suspends (§5).
type engine struct {
	src  itemSource
	opts *Options
	ctx  context.Context

	phase phase

	offset            uint64
	fileCount         uint64
	central           []byte
	archiveNeedsZip64 bool

	cur     *entry
	curPump *pump

	centralOut []byte
	tail       [][]byte
	tailIdx    int

	entries []EntryMetadata

	err error
}

func newEngine(ctx context.Context, src itemSource, opts *Options) *engine {
	e := &engine{src: src, opts: opts, ctx: ctx, phase: phaseNextItem}
	if opts.Resume != nil {
		e.offset = opts.Resume.StartingOffset
		e.fileCount = opts.Resume.FileCount
		e.archiveNeedsZip64 = opts.Resume.ArchiveNeedsZip64
		e.central = append([]byte(nil), opts.Resume.CentralDirectory...)
	}
	return e
}

// fail terminates the stream. It always releases both the active entry's
// body and the item source itself (§5, §7) regardless of which path led
// here — a context abort, a malformed/source error, an explicit
// Stream.Abort, or the chunk iterator's consumer breaking out of range
// early.
func (e *engine) fail(err error) ([]byte, error) {
	e.err = err
	e.phase = phaseDone
	e.closeCurrentBody()
	e.src.stop()
	return nil, err
}

// closeCurrentBody releases the active entry's byte source if it
// implements io.Closer (Item.Body doc, "at most one Item's Body is ever
// open at a time").
func (e *engine) closeCurrentBody() {
	if e.cur == nil || e.cur.body == nil {
		return
	}
	if c, ok := e.cur.body.(io.Closer); ok {
		_ = c.Close()
	}
	e.cur.body = nil
}

func (e *engine) checkAbort() error {
	if e.ctx == nil {
		return nil
	}
	if err := e.ctx.Err(); err != nil {
		return &AbortedError{Reason: err}
	}
	return nil
}

// next returns the next chunk of archive bytes, or io.EOF once the
// terminator records have been emitted.
func (e *engine) next() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}

	for {
		switch e.phase {
		case phaseNextItem:
			b, err := e.stepNextItem()
			if b != nil || err != nil {
				return b, err
			}
		case phaseData:
			b, err := e.stepData()
			if b != nil || err != nil {
				return b, err
			}
		case phaseDescriptor:
			return e.stepDescriptor()
		case phaseAppendCentral:
			e.stepAppendCentral()
		case phaseCentralDirectory:
			e.phase = phaseFinalize
			out := e.centralOut
			e.centralOut = nil
			if len(out) > 0 {
				return out, nil
			}
		case phaseFinalize:
			return e.stepFinalize()
		case phaseDone:
			return nil, io.EOF
		}
	}
}

func (e *engine) stepNextItem() ([]byte, error) {
	if err := e.checkAbort(); err != nil {
		return e.fail(err)
	}

	it, ok, err := e.src.next()
	if err != nil {
		return e.fail(err)
	}
	if !ok {
		e.phase = phaseCentralDirectory
		e.centralOut = e.central
		return nil, nil
	}

	en := normalizeItem(it, e.opts)
	if en.isFile && en.body == nil {
		return e.fail(&MalformedInputError{Msg: string(en.name) + ": file item has no Body"})
	}
	en.localHeaderOffset = e.offset
	e.cur = en

	hdr := record.LocalFileHeader{
		Name:          en.name,
		UTF8:          en.utf8,
		ExtraFlags:    e.opts.ExtraFlags,
		HasDescriptor: en.isFile,
	}
	hdr.DOSTime, hdr.DOSDate = en.dosTimeDate()
	headerBytes := hdr.Bytes()
	e.offset += uint64(len(headerBytes))

	if en.isFile {
		e.curPump = newPump(string(en.name), en.body)
		e.phase = phaseData
	} else {
		e.cur.drained = true
		e.phase = phaseAppendCentral
	}

	return headerBytes, nil
}

func (e *engine) stepData() ([]byte, error) {
	if err := e.checkAbort(); err != nil {
		return e.fail(err)
	}

	chunk, err := e.curPump.next()
	switch {
	case err == nil:
		e.offset += uint64(len(chunk))
		return chunk, nil
	case err == io.EOF:
		e.cur.uncompressedSize = e.curPump.size64()
		e.cur.crc32 = e.curPump.crc32()
		e.cur.drained = true
		e.closeCurrentBody()

		if e.cur.declaredSize != nil && *e.cur.declaredSize != e.cur.uncompressedSize {
			return e.fail(newSizeMismatchError(string(e.cur.name), *e.cur.declaredSize, e.cur.uncompressedSize))
		}

		e.phase = phaseDescriptor
		return nil, nil
	default:
		return e.fail(err)
	}
}

func (e *engine) stepDescriptor() ([]byte, error) {
	zip64 := e.cur.needsZip64()
	desc := record.DataDescriptor{
		CRC32:            e.cur.crc32,
		CompressedSize:   e.cur.uncompressedSize,
		UncompressedSize: e.cur.uncompressedSize,
		Zip64:            zip64,
	}
	b := desc.Bytes()
	e.offset += uint64(len(b))
	e.phase = phaseAppendCentral
	return b, nil
}

// stepAppendCentral performs the bookkeeping of orchestrator step 7-9: it
// emits no archive bytes of its own (the central directory streams out
// later, all at once, after every entry).
func (e *engine) stepAppendCentral() {
	zip64 := e.cur.needsZip64()

	ch := record.CentralHeader{
		Name:              e.cur.name,
		UTF8:              e.cur.utf8,
		ExtraFlags:        e.opts.ExtraFlags,
		HasDescriptor:     e.cur.isFile,
		CRC32:             e.cur.crc32,
		CompressedSize:    e.cur.uncompressedSize,
		UncompressedSize:  e.cur.uncompressedSize,
		LocalHeaderOffset: e.cur.localHeaderOffset,
		ExternalAttrs:     e.cur.externalAttrs(),
		Zip64:             zip64,
	}
	ch.DOSTime, ch.DOSDate = e.cur.dosTimeDate()
	e.central = append(e.central, ch.Bytes()...)
	e.fileCount++
	if zip64 {
		e.archiveNeedsZip64 = true
	}

	headerLen := record.HeaderSize(len(e.cur.name))
	meta := EntryMetadata{
		Name:              string(e.cur.name),
		Offset:            e.cur.localHeaderOffset,
		DataOffset:        e.cur.localHeaderOffset + uint64(headerLen),
		CompressedSize:    e.cur.uncompressedSize,
		UncompressedSize:  e.cur.uncompressedSize,
		CRC32:             e.cur.crc32,
		CompressionMethod: 0,
		Flags:             e.cur.flags(e.opts.ExtraFlags),
		HeaderSize:        headerLen,
	}
	e.entries = append(e.entries, meta)

	if e.opts.OnEntry != nil {
		e.opts.OnEntry(meta)
	}
	if e.opts.OnCentralDirectoryUpdate != nil {
		e.opts.OnCentralDirectoryUpdate(append([]byte(nil), e.central...))
	}

	e.cur = nil
	e.curPump = nil
	e.phase = phaseNextItem
}

func (e *engine) stepFinalize() ([]byte, error) {
	if e.tail == nil {
		cdOffset := e.offset
		cdSize := uint64(len(e.central))
		e.offset += cdSize

		if record.NeedsArchiveZip64(e.archiveNeedsZip64, e.fileCount, cdSize, cdOffset) {
			zeocd := record.Zip64EOCD{TotalEntries: e.fileCount, CentralDirectorySize: cdSize, CentralDirectoryOffset: cdOffset}
			loc := record.Zip64Locator{Zip64EOCDOffset: e.offset}
			e.tail = append(e.tail, zeocd.Bytes())
			e.offset += record.Zip64EOCDLen
			e.tail = append(e.tail, loc.Bytes())
			e.offset += record.Zip64LocatorLen
		}

		eocd := record.EOCD{TotalEntries: e.fileCount, CentralDirectorySize: cdSize, CentralDirectoryOffset: cdOffset}
		e.tail = append(e.tail, eocd.Bytes())
		e.offset += record.EOCDLen
	}

	if e.tailIdx >= len(e.tail) {
		e.phase = phaseDone
		return nil, io.EOF
	}

	b := e.tail[e.tailIdx]
	e.tailIdx++
	if e.tailIdx >= len(e.tail) {
		e.phase = phaseDone
	}
	return b, nil
}

// Stream is a pull-driven io.Reader producing one archive's bytes in ZIP
// layout order (§5). The zero value is not usable; construct with New or
// NewFromSeq.
type Stream struct {
	e         *engine
	buf       []byte
	total     uint64
	haveTotal bool
}

// New returns a Stream over a fixed slice of items.
//
// If every file item carries a declared Size, TotalSize reports the exact
// final archive length up front (§6, "additionally exposes total_size").
func New(items []Item, optFns ...func(*Options)) *Stream {
	opts := applyOptions(optFns)
	s := &Stream{e: newEngine(context.Background(), sliceSource(items), opts)}
	if opts.Resume == nil {
		if total, ok := Predict(items, optFns...); ok {
			s.total, s.haveTotal = total, true
		}
	}
	return s
}

// NewWithContext is New with an external cancellation context (§5): ctx is
// checked at every entry boundary and data-pump iteration.
func NewWithContext(ctx context.Context, items []Item, optFns ...func(*Options)) *Stream {
	opts := applyOptions(optFns)
	s := &Stream{e: newEngine(ctx, sliceSource(items), opts)}
	if opts.Resume == nil {
		if total, ok := Predict(items, optFns...); ok {
			s.total, s.haveTotal = total, true
		}
	}
	return s
}

// NewFromSeq returns a Stream over a lazily-produced, potentially
// non-restartable sequence of items (§9 "entry iterator as a pull source").
// TotalSize is never known ahead of time for this constructor.
func NewFromSeq(ctx context.Context, items iter.Seq2[Item, error], optFns ...func(*Options)) *Stream {
	opts := applyOptions(optFns)
	return &Stream{e: newEngine(ctx, seqSource(items), opts)}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		chunk, err := s.e.next()
		if err != nil {
			return 0, err
		}
		s.buf = chunk
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// TotalSize reports the exact final archive length and true, if the Stream
// was built by New or NewWithContext without Options.Resume and every file
// item supplied a declared size; otherwise it reports (0, false).
func (s *Stream) TotalSize() (uint64, bool) {
	return s.total, s.haveTotal
}

// Entries returns the metadata for every entry completed so far. Once Read
// has returned io.EOF, this is the complete entries_promise result (§6).
func (s *Stream) Entries() []EntryMetadata {
	return s.e.entries
}

// Abort stops the stream: the next Read returns an AbortedError wrapping
// reason, the active entry's body (if any) is abandoned, and no terminator
// records are emitted (§4.7 "Cancel").
func (s *Stream) Abort(reason error) {
	if s.e.err != nil {
		return
	}
	s.e.fail(&AbortedError{Reason: reason})
	s.buf = nil
}

// NewIterator returns a chunk-at-a-time iterator equivalent to New's
// Stream, for callers that prefer range-over-func to io.Reader (§6
// make_zip_iterator; used to implement resume, §4.7).
func NewIterator(items []Item, optFns ...func(*Options)) iter.Seq2[[]byte, error] {
	return newChunkSeq(newEngine(context.Background(), sliceSource(items), applyOptions(optFns)))
}

// NewIteratorFromSeq is NewIterator over a lazy item sequence.
func NewIteratorFromSeq(ctx context.Context, items iter.Seq2[Item, error], optFns ...func(*Options)) iter.Seq2[[]byte, error] {
	return newChunkSeq(newEngine(ctx, seqSource(items), applyOptions(optFns)))
}

func newChunkSeq(e *engine) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := e.next()
			if err != nil {
				if err != io.EOF {
					yield(nil, err)
				}
				return
			}
			if len(chunk) == 0 {
				continue
			}
			if !yield(chunk, nil) {
				e.fail(&AbortedError{Reason: errIteratorStopped})
				return
			}
		}
	}
}
