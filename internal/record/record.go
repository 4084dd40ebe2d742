// Package record assembles the byte-exact ZIP records this module emits:
// local file headers, data descriptors, central directory headers, the
// ZIP64 extra field and terminator records, and the classic
// end-of-central-directory record. Every function here is pure: given the
// same inputs it always produces the same bytes, so the predictor
// (package streamzip) can compute archive length from the Len methods and
// length constants without assembling any record.
//
// Field layouts mirror the reverse of how the teacher's zip/scan/eocd.go
// and zipper/headers.go decode a central directory; this package is their
// mirror image, writing instead of reading.
package record

import "github.com/nguyengg/streamzip/internal/wire"

// Signatures, little-endian 32-bit magic numbers per APPNOTE.TXT.
const (
	SigLocalFileHeader = 0x04034b50
	SigDataDescriptor  = 0x08074b50
	SigCentralHeader   = 0x02014b50
	SigZip64EOCD       = 0x06064b50
	SigZip64Locator    = 0x07064b50
	SigEOCD            = 0x06054b50
)

// Version fields. 4.5 (0x2D) is always used because ZIP64 support may be
// required at any point in the archive.
const (
	VersionNeeded = 0x002D
	VersionMadeBy = 0x032D // high byte 0x03 = UNIX host.
)

// General-purpose bit flags.
const (
	FlagDataDescriptor uint16 = 1 << 3
	FlagUTF8           uint16 = 1 << 11
)

// Zip64 extra field tag and payload size (three 8-byte fields, not counting
// the 4-byte tag+size header).
const (
	Zip64ExtraTag     = 0x0001
	Zip64ExtraPayload = 24
)

// Sentinel maxima. A field overflows when its true value strictly exceeds
// these.
const (
	Max16 = 0xFFFF
	Max32 = 0xFFFFFFFF
)

// Overflows32 reports whether v cannot be represented in a 32-bit ZIP field
// and must be replaced by the 0xFFFFFFFF sentinel (with the true value
// carried in the ZIP64 extra field).
func Overflows32(v uint64) bool {
	return v > Max32
}

// Overflows16 reports whether v (an entry count) cannot be represented in a
// 16-bit ZIP field and must be replaced by the 0xFFFF sentinel.
func Overflows16(v uint64) bool {
	return v > Max16
}

// NeedsZip64Entry reports whether an entry's uncompressed size, compressed
// size, or local header offset requires ZIP64: the extra field on its
// central directory record, and 64-bit fields in its data descriptor.
func NeedsZip64Entry(uncompressedSize, compressedSize, localHeaderOffset uint64) bool {
	return Overflows32(uncompressedSize) || Overflows32(compressedSize) || Overflows32(localHeaderOffset)
}

func sentinel32(v uint64) uint32 {
	if Overflows32(v) {
		return Max32
	}
	return uint32(v)
}

// LocalFileHeader assembles the local file header (§4.3) that precedes an
// entry's payload. Sizes and CRC-32 are always zero; they are populated in
// the trailing data descriptor.
type LocalFileHeader struct {
	// Name is the already-encoded name field bytes (UTF-8 text or raw
	// bytes, passed through unchanged).
	Name []byte
	// UTF8 sets general-purpose bit 11.
	UTF8 bool
	// ExtraFlags is OR'd into the general-purpose bit flag word, letting
	// a caller set additional bits (see spec S5).
	ExtraFlags uint16
	// HasDescriptor sets general-purpose bit 3: a trailing data
	// descriptor follows the payload. Folder entries carry no payload
	// and no descriptor, so this is false for them.
	HasDescriptor bool
	// DOSTime, DOSDate are the packed MS-DOS time/date words (§4.2).
	DOSTime, DOSDate uint16
}

// Bytes assembles the header.
func (h LocalFileHeader) Bytes() []byte {
	flags := h.ExtraFlags
	if h.HasDescriptor {
		flags |= FlagDataDescriptor
	}
	if h.UTF8 {
		flags |= FlagUTF8
	}

	buf := wire.NewBuffer(30 + len(h.Name))
	buf.U32(SigLocalFileHeader).
		U16(VersionNeeded).
		U16(flags).
		U16(0). // compression method: STORE
		U16(h.DOSTime).
		U16(h.DOSDate).
		U32(0). // crc-32, deferred to data descriptor
		U32(0). // compressed size, deferred
		U32(0). // uncompressed size, deferred
		U16(uint16(len(h.Name))).
		U16(0). // extra field length: none in the local header
		Raw(h.Name)
	return buf.Bytes()
}

// HeaderSize returns 30 + len(name), the fixed local file header size plus
// the name field (§6, "headerSize = 30 + len(encodedName)").
func HeaderSize(nameLen int) uint16 {
	return uint16(30 + nameLen)
}

// DataDescriptor assembles the trailing data descriptor (§4.3) that follows
// a file entry's payload.
type DataDescriptor struct {
	CRC32                            uint32
	CompressedSize, UncompressedSize uint64
	// Zip64 selects 64-bit size fields; must equal NeedsZip64Entry for
	// this same entry so the predictor and assembler agree on length.
	Zip64 bool
}

// Bytes assembles the descriptor.
func (d DataDescriptor) Bytes() []byte {
	if d.Zip64 {
		buf := wire.NewBuffer(24)
		buf.U32(SigDataDescriptor).U32(d.CRC32).U64(d.CompressedSize).U64(d.UncompressedSize)
		return buf.Bytes()
	}

	buf := wire.NewBuffer(16)
	buf.U32(SigDataDescriptor).U32(d.CRC32).U32(uint32(d.CompressedSize)).U32(uint32(d.UncompressedSize))
	return buf.Bytes()
}

// Len returns the byte length Bytes would produce: 24 with ZIP64, else 16.
func (d DataDescriptor) Len() int {
	if d.Zip64 {
		return 24
	}
	return 16
}

// CentralHeader assembles a central directory file header (§4.3).
type CentralHeader struct {
	Name                              []byte
	UTF8                              bool
	ExtraFlags                        uint16
	HasDescriptor                     bool
	DOSTime, DOSDate                  uint16
	CRC32                             uint32
	CompressedSize, UncompressedSize  uint64
	LocalHeaderOffset                 uint64
	ExternalAttrs                     uint32
	// Zip64 controls whether the 28-byte ZIP64 extra field (4-byte
	// tag+size header plus 24-byte payload) is attached.
	// Must equal NeedsZip64Entry for this entry.
	Zip64 bool
}

// Bytes assembles the header.
func (h CentralHeader) Bytes() []byte {
	flags := h.ExtraFlags
	if h.HasDescriptor {
		flags |= FlagDataDescriptor
	}
	if h.UTF8 {
		flags |= FlagUTF8
	}

	extraLen := 0
	if h.Zip64 {
		extraLen = 4 + Zip64ExtraPayload
	}

	buf := wire.NewBuffer(46 + len(h.Name) + extraLen)
	buf.U32(SigCentralHeader).
		U16(VersionMadeBy).
		U16(VersionNeeded).
		U16(flags).
		U16(0). // compression method: STORE
		U16(h.DOSTime).
		U16(h.DOSDate).
		U32(h.CRC32).
		U32(sentinel32(h.CompressedSize)).
		U32(sentinel32(h.UncompressedSize)).
		U16(uint16(len(h.Name))).
		U16(uint16(extraLen)).
		U16(0). // comment length
		U16(0). // disk number start
		U16(0). // internal attributes
		U32(h.ExternalAttrs).
		U32(sentinel32(h.LocalHeaderOffset)).
		Raw(h.Name)

	if h.Zip64 {
		buf.U16(Zip64ExtraTag).
			U16(Zip64ExtraPayload).
			U64(h.UncompressedSize).
			U64(h.CompressedSize).
			U64(h.LocalHeaderOffset)
	}

	return buf.Bytes()
}

// Len returns the byte length Bytes would produce.
func (h CentralHeader) Len() int {
	n := 46 + len(h.Name)
	if h.Zip64 {
		n += 4 + Zip64ExtraPayload
	}
	return n
}

// ExternalAttrs computes the "external file attributes" field: POSIX mode
// bits in the high 16 bits, plus the MS-DOS directory bit (0x10) for
// folders.
func ExternalAttrs(mode uint32, isFile bool) uint32 {
	attrs := mode << 16
	if !isFile {
		attrs |= 0x10
	}
	return attrs
}

// Zip64EOCD assembles the ZIP64 end-of-central-directory record (§4.3).
type Zip64EOCD struct {
	TotalEntries           uint64
	CentralDirectorySize   uint64
	CentralDirectoryOffset uint64
}

// Bytes assembles the record.
func (r Zip64EOCD) Bytes() []byte {
	buf := wire.NewBuffer(56)
	buf.U32(SigZip64EOCD).
		U64(44). // size of remaining record
		U16(VersionMadeBy).
		U16(VersionNeeded).
		U32(0). // number of this disk
		U32(0). // number of disk with start of CD
		U64(r.TotalEntries).
		U64(r.TotalEntries).
		U64(r.CentralDirectorySize).
		U64(r.CentralDirectoryOffset)
	return buf.Bytes()
}

// Zip64EOCDLen is the fixed size of a ZIP64 EOCD record: 56 bytes.
const Zip64EOCDLen = 56

// Zip64Locator assembles the ZIP64 end-of-central-directory locator
// (§4.3), which precedes the classic EOCD and points at the ZIP64 EOCD.
type Zip64Locator struct {
	Zip64EOCDOffset uint64
}

// Bytes assembles the record.
func (r Zip64Locator) Bytes() []byte {
	buf := wire.NewBuffer(20)
	buf.U32(SigZip64Locator).
		U32(0). // number of disk with start of Zip64 EOCD
		U64(r.Zip64EOCDOffset).
		U32(1) // total number of disks
	return buf.Bytes()
}

// Zip64LocatorLen is the fixed size of a ZIP64 locator record: 20 bytes.
const Zip64LocatorLen = 20

// EOCD assembles the classic end-of-central-directory record (§4.3),
// always the very last bytes of the archive.
type EOCD struct {
	TotalEntries           uint64
	CentralDirectorySize   uint64
	CentralDirectoryOffset uint64
}

// Bytes assembles the record.
func (r EOCD) Bytes() []byte {
	buf := wire.NewBuffer(22)

	entries := uint16(r.TotalEntries)
	if Overflows16(r.TotalEntries) {
		entries = Max16
	}

	buf.U32(SigEOCD).
		U16(0). // disk number
		U16(0). // disk with the start of the central directory
		U16(entries).
		U16(entries).
		U32(sentinel32(r.CentralDirectorySize)).
		U32(sentinel32(r.CentralDirectoryOffset)).
		U16(0) // comment length
	return buf.Bytes()
}

// EOCDLen is the fixed size of the classic EOCD record with no comment: 22
// bytes.
const EOCDLen = 22

// NeedsArchiveZip64 reports whether the archive as a whole requires the
// ZIP64 terminator records: any entry required per-entry ZIP64, or the
// central directory's own size/offset/entry-count overflow their classic
// fields (§4.5, §8 P7).
func NeedsArchiveZip64(anyEntryNeedsZip64 bool, entryCount, centralDirectorySize, centralDirectoryOffset uint64) bool {
	return anyEntryNeedsZip64 ||
		Overflows16(entryCount) ||
		Overflows32(centralDirectorySize) ||
		Overflows32(centralDirectoryOffset)
}
