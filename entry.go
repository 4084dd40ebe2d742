package streamzip

import (
	"io"
	"time"

	"github.com/nguyengg/streamzip/internal/dostime"
	"github.com/nguyengg/streamzip/internal/record"
)

// entry is the normalized, orchestrator-private view of one Item (§3).
type entry struct {
	name         []byte
	utf8         bool
	isFile       bool
	modTime      time.Time
	mode         uint16
	body         io.Reader
	declaredSize *uint64

	// filled in only after body has been fully drained (I3).
	drained          bool
	uncompressedSize uint64
	crc32            uint32

	localHeaderOffset uint64
}

// normalizeItem builds an entry from a caller-supplied Item, deciding the
// UTF-8 flag and default mode the way the Name/metadata normalizer
// component (§2) is specified to.
func normalizeItem(it Item, opts *Options) *entry {
	name := []byte(it.Name)

	isUTF8 := opts.BuffersAreUTF8 && it.NameIsBytes
	if !it.NameIsBytes {
		// Text names only carry the UTF-8 flag when they actually
		// contain non-ASCII bytes: plain ASCII already round-trips
		// through any decoder without the flag (matches spec S4/S5).
		isUTF8 = containsNonASCII(name)
	}

	modTime := it.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}

	mode := it.Mode.Perm()
	if mode == 0 {
		if it.IsFile {
			mode = DefaultFileMode.Perm()
		} else {
			mode = DefaultDirMode.Perm()
		}
	}

	return &entry{
		name:         name,
		utf8:         isUTF8,
		isFile:       it.IsFile,
		modTime:      modTime,
		mode:         uint16(mode),
		body:         it.Body,
		declaredSize: it.Size,
	}
}

func containsNonASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return true
		}
	}
	return false
}

// needsZip64 reports whether this entry (given its now-known final sizes
// and offset) requires the ZIP64 extra field and 64-bit descriptor.
func (e *entry) needsZip64() bool {
	return record.NeedsZip64Entry(e.uncompressedSize, e.uncompressedSize, e.localHeaderOffset)
}

// dosTimeDate packs the entry's modification time into the local file
// header / central directory header's DOS time and date words.
func (e *entry) dosTimeDate() (dosTime, dosDate uint16) {
	return dostime.PackParts(e.modTime)
}

// externalAttrs computes the central directory's external file attributes
// field (§4.3).
func (e *entry) externalAttrs() uint32 {
	return record.ExternalAttrs(uint32(e.mode), e.isFile)
}

// flags computes the general-purpose bit flag word reported in
// EntryMetadata: bit 3 iff this entry carries a trailing data descriptor
// (files only), bit 11 iff the name is UTF-8 text, OR'd with any
// caller-supplied extra bits.
func (e *entry) flags(extraFlags uint16) uint16 {
	flags := extraFlags
	if e.isFile {
		flags |= record.FlagDataDescriptor
	}
	if e.utf8 {
		flags |= record.FlagUTF8
	}
	return flags
}

