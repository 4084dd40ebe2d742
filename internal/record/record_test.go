package record

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic(err)
	}
	return b
}

func TestLocalFileHeader_Bytes(t *testing.T) {
	// S4: APPNOTE.TXT, mod-date 2019-04-26T02:00, default options.
	h := LocalFileHeader{
		Name:          []byte("APPNOTE.TXT"),
		HasDescriptor: true,
		DOSTime:       0x1000,
		DOSDate:       0x4e9a,
	}

	want := mustHex("50 4b 03 04 2d 00 08 00 00 00 00 10 9a 4e 00 00 00 00 00 00 00 00 00 00 00 00 0b 00 00 00")
	got := h.Bytes()

	assert.Equal(t, want, got[:30])
	assert.Equal(t, []byte("APPNOTE.TXT"), got[30:])
	assert.EqualValues(t, HeaderSize(len("APPNOTE.TXT")), len(got))
}

func leU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func TestLocalFileHeader_Bytes_ExtraFlags(t *testing.T) {
	// S5: extraFlags=0x808 ORs bit 11 into the flag word; offset 6-7 reads
	// 08 08.
	h := LocalFileHeader{
		Name:          []byte("APPNOTE.TXT"),
		HasDescriptor: true,
		ExtraFlags:    0x0808,
		DOSTime:       0x1000,
		DOSDate:       0x4e9a,
	}

	got := h.Bytes()
	assert.Equal(t, []byte{0x08, 0x08}, got[6:8])
}

func TestLocalFileHeader_Bytes_Folder(t *testing.T) {
	h := LocalFileHeader{Name: []byte("dir/"), HasDescriptor: false}
	got := h.Bytes()
	assert.Equal(t, uint16(0), leU16(got[6:8]))
}

func TestNeedsZip64Entry(t *testing.T) {
	tests := []struct {
		name                                                       string
		uncompressedSize, compressedSize, localHeaderOffset uint64
		want                                                       bool
	}{
		{name: "all under limit", uncompressedSize: Max32, compressedSize: Max32, localHeaderOffset: Max32, want: false},
		{name: "uncompressed over", uncompressedSize: Max32 + 1, want: true},
		{name: "compressed over", compressedSize: Max32 + 1, want: true},
		{name: "offset over", localHeaderOffset: Max32 + 1, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsZip64Entry(tt.uncompressedSize, tt.compressedSize, tt.localHeaderOffset))
		})
	}
}

func TestCentralHeader_Bytes_Zip64Extra(t *testing.T) {
	h := CentralHeader{
		Name:              []byte("big.bin"),
		HasDescriptor:     true,
		CompressedSize:    Max32 + 1,
		UncompressedSize:  Max32 + 1,
		LocalHeaderOffset: 123,
		Zip64:             true,
	}
	got := h.Bytes()

	assert.Equal(t, uint32(Max32), leU32(got[20:24])) // compressed size sentinel
	assert.Equal(t, uint32(Max32), leU32(got[24:28])) // uncompressed size sentinel
	assert.Equal(t, uint16(4+Zip64ExtraPayload), leU16(got[30:32])) // extra field length
	assert.Equal(t, h.Len(), len(got))

	// the trailing zip64 extra field carries the three true 64-bit values.
	extra := got[len(got)-Zip64ExtraPayload-4:]
	assert.EqualValues(t, Zip64ExtraTag, leU16(extra[0:2]))
	assert.EqualValues(t, Zip64ExtraPayload, leU16(extra[2:4]))
	assert.EqualValues(t, h.UncompressedSize, leU64(extra[4:12]))
	assert.EqualValues(t, h.CompressedSize, leU64(extra[12:20]))
	assert.EqualValues(t, h.LocalHeaderOffset, leU64(extra[20:28]))
}

func TestEOCD_Sentinels(t *testing.T) {
	e := EOCD{TotalEntries: 70000, CentralDirectorySize: 10, CentralDirectoryOffset: 20}
	got := e.Bytes()
	assert.EqualValues(t, Max16, leU16(got[8:10]))
	assert.EqualValues(t, Max16, leU16(got[10:12]))
	assert.Len(t, got, EOCDLen)
}

func TestNeedsArchiveZip64(t *testing.T) {
	assert.False(t, NeedsArchiveZip64(false, 100, 100, 100))
	assert.True(t, NeedsArchiveZip64(true, 100, 100, 100))
	assert.True(t, NeedsArchiveZip64(false, 65536, 100, 100))
	assert.False(t, NeedsArchiveZip64(false, 65535, 100, 100))
	assert.True(t, NeedsArchiveZip64(false, 100, Max32+1, 100))
	assert.True(t, NeedsArchiveZip64(false, 100, 100, Max32+1))
}

