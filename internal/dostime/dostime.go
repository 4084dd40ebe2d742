// Package dostime packs and unpacks the 32-bit MS-DOS date/time word used
// throughout the ZIP local and central directory headers.
package dostime

import "time"

// Pack returns the 32-bit little-endian DOS date/time value for t, using
// t's local wall-clock components.
//
// The low 16 bits are the DOS time (seconds/2 in bits 0-4, minutes in bits
// 5-10, hours in bits 11-15); the high 16 bits are the DOS date (day in bits
// 0-4, month in bits 5-8, year-1980 in bits 9-15). Sub-second precision is
// truncated to the nearest even second.
//
// See https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime.
func Pack(t time.Time) uint32 {
	t = t.Local()

	year := t.Year() - 1980
	if year < 0 {
		year = 0
	}
	if year > 127 {
		year = 127
	}

	date := uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	clock := uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)

	return uint32(date)<<16 | uint32(clock)
}

// PackParts returns the DOS time and date words separately, matching the
// layout the local file header and central directory header store them in
// (time word followed by date word).
func PackParts(t time.Time) (dosTime, dosDate uint16) {
	packed := Pack(t)
	return uint16(packed), uint16(packed >> 16)
}

// Unpack recovers a time.Time (in UTC, 2-second resolution) from a DOS
// date/time word pair. Used only by tests to round-trip Pack.
func Unpack(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9)+1980,
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.UTC,
	)
}
