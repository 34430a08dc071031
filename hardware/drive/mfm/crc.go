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

// Seeds for the CRC accumulator.
const (
	SeedFull = 0xffff
	SeedID   = 0xb230
	SeedData = 0xe295
)

// crc table for the polynomial x^16 + x^12 + x^5 + 1
var crcTable [256]uint16

func init() {
	for i := range crcTable {
		w := uint16(i) << 8
		for range 8 {
			if w&0x8000 == 0x8000 {
				w = (w << 1) ^ 0x1021
			} else {
				w <<= 1
			}
		}
		crcTable[i] = w
	}
}

// CRC returns the updated CRC value after accumulating b.
func CRC(crc uint16, b uint8) uint16 {
	return crcTable[uint8(crc>>8)^b] ^ (crc << 8)
}

// CRCBytes accumulates every byte in b.
func CRCBytes(crc uint16, b []uint8) uint16 {
	for _, v := range b {
		crc = CRC(crc, v)
	}
	return crc
}
