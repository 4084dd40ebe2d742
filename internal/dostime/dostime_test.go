package dostime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPack(t *testing.T) {
	// S3: local time 2020-02-15T11:24:18 packs to the 32-bit value
	// 0x504f5b09 (date word 0x504f, time word 0x5b09); 0x095b4f50 is that
	// same value's little-endian byte dump, not the integer itself.
	tm := time.Date(2020, time.February, 15, 11, 24, 18, 0, time.Local)
	assert.Equal(t, uint32(0x504f5b09), Pack(tm))
}

func TestPackParts(t *testing.T) {
	tm := time.Date(2019, time.April, 26, 2, 0, 0, 0, time.Local)
	dosTime, dosDate := PackParts(tm)

	packed := Pack(tm)
	assert.Equal(t, uint16(packed), dosTime)
	assert.Equal(t, uint16(packed>>16), dosDate)
}

func TestUnpack(t *testing.T) {
	tests := []struct {
		name string
		tm   time.Time
	}{
		{name: "S3 scenario", tm: time.Date(2020, time.February, 15, 11, 24, 18, 0, time.Local)},
		{name: "epoch floor", tm: time.Date(1980, time.January, 1, 0, 0, 0, 0, time.Local)},
		{name: "odd second truncates down", tm: time.Date(2021, time.December, 31, 23, 59, 59, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dosTime, dosDate := uint16(Pack(tt.tm)), uint16(Pack(tt.tm)>>16)
			roundTripped := Unpack(dosDate, dosTime)

			// DOS date/time carries no zone; compare wall-clock components
			// against the same local fields Pack extracted.
			local := tt.tm.Local()
			assert.Equal(t, local.Year(), roundTripped.Year())
			assert.Equal(t, local.Month(), roundTripped.Month())
			assert.Equal(t, local.Day(), roundTripped.Day())
			assert.Equal(t, local.Hour(), roundTripped.Hour())
			assert.Equal(t, local.Minute(), roundTripped.Minute())
			assert.Equal(t, local.Second()/2*2, roundTripped.Second())
		})
	}
}
