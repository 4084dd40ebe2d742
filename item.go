package streamzip

import (
	"io"
	"io/fs"
	"time"
)

// DefaultFileMode and DefaultDirMode are the permission bits used when an
// Item does not specify Mode (§6).
const (
	DefaultFileMode fs.FileMode = 0664
	DefaultDirMode  fs.FileMode = 0775
)

// Item is one caller-supplied entry to be encoded into the archive.
//
// Items are read lazily, one at a time (invariant I1): New/NewIterator
// never buffers more than the current item's declared size, and never
// opens Body for entry k+1 before entry k's has been fully drained and
// closed.
type Item struct {
	// Name is the path stored in the archive. Text names are UTF-8
	// encoded; a name that, once encoded, contains any byte outside the
	// ASCII range is tagged with the UTF-8 general-purpose flag unless
	// NameIsBytes is set (§9 "Name encoding").
	Name string

	// NameIsBytes marks Name as an opaque byte string rather than text:
	// the UTF-8 flag is suppressed unless Options.BuffersAreUTF8 is set.
	NameIsBytes bool

	// IsFile distinguishes a file entry from a folder entry. Folder
	// entries carry no payload and no data descriptor; by convention
	// Name should end in "/" for a folder, but this package does not
	// enforce or add the slash.
	IsFile bool

	// Body is the item's byte source. Required when IsFile is true,
	// ignored otherwise. If Body implements io.Closer, it is closed
	// after being fully drained or on any abort/error path — at most
	// one Item's Body is ever open at a time (I1).
	Body io.Reader

	// Size is the declared uncompressed byte count, if known ahead of
	// time. Predict uses it to decide per-entry ZIP64 and, when every
	// item supplies it, to compute Stream.TotalSize exactly. The encoder
	// does not use it to choose ZIP64; it decides from the number of
	// bytes drained, which must equal Size.
	//
	// If the number of bytes actually drained from Body disagrees with
	// Size, encoding fails with a MalformedInputError.
	Size *uint64

	// ModTime is the entry's local modification time, packed into the
	// DOS date/time fields (§4.2). The zero value defaults to time.Now.
	ModTime time.Time

	// Mode is the POSIX permission bits stored in the high 16 bits of
	// the central directory's external file attributes. Zero defaults
	// to DefaultFileMode for files, DefaultDirMode for folders.
	Mode fs.FileMode
}

// EntryMetadata describes one completed entry, delivered to
// Options.OnEntry and returned in bulk by Stream.Entries (§6).
type EntryMetadata struct {
	Name              string
	Offset            uint64
	DataOffset        uint64
	CompressedSize    uint64
	UncompressedSize  uint64
	CRC32             uint32
	CompressionMethod uint16 // always 0 (STORE)
	Flags             uint16
	HeaderSize        uint16
}

// ResumeState seeds a new Stream/Iterator to continue a paused archive
// (§4.7).
type ResumeState struct {
	// CentralDirectory is the snapshot most recently observed from
	// Options.OnCentralDirectoryUpdate before the phase was paused.
	CentralDirectory []byte
	// FileCount is the number of entries already emitted in phase 1.
	FileCount uint64
	// StartingOffset is the number of bytes already emitted in phase 1
	// (the phase-1 consumer's accumulated byte count).
	StartingOffset uint64
	// ArchiveNeedsZip64 records whether phase 1 already required ZIP64
	// for any entry.
	ArchiveNeedsZip64 bool
}

// Options customises New, NewIterator, and Predict. The zero value is
// ready to use with all defaults.
type Options struct {
	// BuffersAreUTF8, if true, tags raw-byte names (Item.NameIsBytes)
	// with the UTF-8 general-purpose flag.
	BuffersAreUTF8 bool

	// ExtraFlags is OR'd into every entry's general-purpose flag word,
	// letting a caller set additional bits (spec S5).
	ExtraFlags uint16

	// OnEntry, if set, is invoked once per entry immediately after that
	// entry's central directory record has been appended and before any
	// subsequent entry's local header is emitted (§5).
	OnEntry func(EntryMetadata)

	// OnCentralDirectoryUpdate, if set, is invoked in the same interval
	// as OnEntry with a defensive copy of the central directory bytes
	// accumulated so far (§4.7 pause support).
	OnCentralDirectoryUpdate func(snapshot []byte)

	// Resume continues a previously paused archive. Nil starts a fresh
	// archive at offset 0.
	Resume *ResumeState
}

func defaultOptions() *Options {
	return &Options{}
}

// applyOptions builds an *Options from zero or more functional option
// setters, following the Options/optFns convention used throughout this
// module's teacher (s3reader.Options, s3writer.Options).
func applyOptions(optFns []func(*Options)) *Options {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(opts)
	}
	return opts
}
