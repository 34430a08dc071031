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

// Package mfm contains the parts of the MFM track format that are shared by
// the floppy disk mechanism and both floppy disk controllers.
//
// Values read from or written to a raw track are 9 bits wide. The lower eight
// bits are the decoded byte and bit 8 is set when the byte was recorded with
// the missing clock pattern of an address mark sync. The sync byte is
// therefore 0x1a1 (0xa1 with the missing clock).
//
// The CRC is the CRC-16/CCITT used by every IBM style controller. The CRC of
// an ID or data field includes the three sync bytes and the mark byte. A
// controller that starts counting after the mark uses one of the precomputed
// seeds:
//
//	SeedID    CRC of A1 A1 A1 FE
//	SeedData  CRC of A1 A1 A1 FB
//
// A controller that counts the sync bytes itself starts with SeedFull. The
// seeds are not interchangeable.
//
// The Sync type is a table driven scanner that looks for the sequence of zero
// bytes, sync bytes and a mark byte in a stream of raw values.
package mfm
