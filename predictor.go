package streamzip

import "github.com/nguyengg/streamzip/internal/record"

// Predict computes the exact total byte length of the archive New would
// produce for items, without draining any of them (§4.6).
//
// Every item must carry a non-nil Size; folder items (IsFile false) are
// exempt. Predict returns ok=false the moment an item lacking a declared
// size is found — Predict is byte-exact or unknown, never approximate.
func Predict(items []Item, optFns ...func(*Options)) (total uint64, ok bool) {
	opts := applyOptions(optFns)

	var (
		offset            uint64
		entryCount        uint64
		centralSize       uint64
		archiveNeedsZip64 bool
	)

	for _, it := range items {
		e := normalizeItem(it, opts)

		var size uint64
		if it.IsFile {
			if it.Size == nil {
				return 0, false
			}
			size = *it.Size
		}

		zip64 := record.NeedsZip64Entry(size, size, offset)
		if zip64 {
			archiveNeedsZip64 = true
		}

		offset += uint64(record.HeaderSize(len(e.name)))

		if it.IsFile {
			offset += size
			offset += uint64((record.DataDescriptor{Zip64: zip64}).Len())
		}

		centralSize += uint64((record.CentralHeader{Name: e.name, Zip64: zip64}).Len())
		entryCount++
	}

	cdOffset := offset
	offset += centralSize

	if record.NeedsArchiveZip64(archiveNeedsZip64, entryCount, centralSize, cdOffset) {
		offset += record.Zip64EOCDLen + record.Zip64LocatorLen
	}
	offset += record.EOCDLen

	return offset, true
}
