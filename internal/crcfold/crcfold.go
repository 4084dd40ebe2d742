// Package crcfold provides the CRC-32/IEEE folding primitive the file-data
// pump relies on.
//
// The polynomial (0xEDB88320, reflected) and its 256-entry lookup table are
// exactly those of [hash/crc32]'s IEEE table; rather than hand-roll a table
// none of the retrieved examples do better than the standard library's, this
// package is a thin, allocation-free wrapper that exposes the fold as the
// pure function the streaming pipeline needs to chain across chunks.
package crcfold

import "hash/crc32"

// Of folds data into the running CRC-32/IEEE state seed and returns the new
// state.
//
// Pass 0 as seed for the first chunk of a new checksum; pass the return
// value of the previous call as seed for every subsequent chunk of the same
// entry. The final call's return value is the entry's CRC-32.
//
// Of(data, 0) alone (a single call, one chunk) returns the same value as the
// standard CRC-32/IEEE checksum of data: Of(nil, 0) == 0, and chunking a
// larger input never changes the final folded value.
func Of(data []byte, seed uint32) uint32 {
	return crc32.Update(seed, crc32.IEEETable, data)
}
