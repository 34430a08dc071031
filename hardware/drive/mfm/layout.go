// This file is part of Gopherdrive.
//
// Gopherdrive is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopherdrive is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopherdrive.  If not, see <https://www.gnu.org/licenses/>.

package mfm

// Values found on a raw track.
const (
	Gap      = 0x4e
	Zero     = 0x00
	SyncByte = 0x1a1

	// the data bits of a sync byte, as included in the CRC
	SyncData = 0xa1

	// index address mark, preceded by three 0xc2 sync bytes on a real disk
	// but recorded with 0xa1 syncs by the mechanism
	IAM = 0xfc

	// ID address mark
	IDAM = 0xfe

	// data address mark and deleted data address mark
	DAM        = 0xfb
	DeletedDAM = 0xf8

	// the flag bit in a raw value indicating a missing clock
	SyncFlag = 0x100
)

// IsSync returns true if the raw value is a sync byte.
func IsSync(v uint16) bool {
	return v == SyncByte
}

// Layout of the fields on a track. The same values are used when
// regenerating a track from a disk image and when formatting a track.
const (
	// number of zero bytes before the sync bytes of every field
	SyncZeros = 12

	// number of sync bytes before every mark
	SyncCount = 3

	// gap after the index mark
	GapIndexMark = 50

	// gap before the index mark (or before the first sector on ISO tracks)
	Gap4a    = 80
	Gap4aISO = 32

	// the length of the index hole in raw bytes. the index signal is active
	// while the rotation is within this many bytes of the start of the track
	IndexLength = 16

	// the longest raw track, at 1Mbit/s
	MaxTrackLength = 25000
)

// Writer is anything that a raw value can be written to. Used by Preamble to
// lay down the preamble of a field.
type Writer interface {
	Write(uint16) bool
}

// Preamble writes the zeros, the sync bytes and the mark byte that start
// every field. Returns the CRC of the preamble, suitable for controllers
// that include the sync bytes in the CRC.
func Preamble(w Writer, mark uint8) uint16 {
	crc := uint16(SeedFull)
	for range SyncZeros {
		w.Write(Zero)
	}
	for range SyncCount {
		w.Write(SyncByte)
		crc = CRC(crc, SyncData)
	}
	w.Write(uint16(mark))
	return CRC(crc, mark)
}
