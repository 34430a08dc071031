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

package mfm_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/test"
)

func TestCRC(t *testing.T) {
	// standard check value for CRC-16/CCITT-FALSE
	test.ExpectEquality(t, mfm.CRCBytes(mfm.SeedFull, []uint8("123456789")), 0x29b1)

	// the seeds are the CRC of the sync bytes and the mark
	test.ExpectEquality(t, uint16(mfm.SyncData), uint16(mfm.SyncByte&0xff))
	test.ExpectEquality(t, mfm.CRCBytes(mfm.SeedFull, []uint8{mfm.SyncData, mfm.SyncData, mfm.SyncData, mfm.IDAM}), mfm.SeedID)
	test.ExpectEquality(t, mfm.CRCBytes(mfm.SeedFull, []uint8{mfm.SyncData, mfm.SyncData, mfm.SyncData, mfm.DAM}), mfm.SeedData)
	test.ExpectInequality(t, uint16(mfm.SeedID), uint16(mfm.SeedData))

	// appending the CRC to a field results in a zero CRC
	id := []uint8{1, 0, 1, 2}
	crc := mfm.CRCBytes(mfm.SeedID, id)
	test.ExpectEquality(t, crc, 0xbcdb)
	test.ExpectEquality(t, mfm.CRCBytes(crc, []uint8{uint8(crc >> 8), uint8(crc)}), 0)
}

func TestSyncScanner(t *testing.T) {
	var s mfm.Sync

	feed := func(v ...uint16) (uint16, bool) {
		for i, w := range v {
			m, ok := s.Feed(w)
			if ok {
				test.ExpectEquality(t, i, len(v)-1, "mark found early")
				return m, true
			}
		}
		return 0, false
	}

	// a normal ID field preamble
	m, ok := feed(0x4e, 0, 0, 0, mfm.SyncByte, mfm.SyncByte, mfm.SyncByte, mfm.IDAM)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, m, mfm.IDAM)

	// sync bytes without leading zeros are not a mark
	s.Reset()
	_, ok = feed(0x4e, mfm.SyncByte, mfm.SyncByte, mfm.IDAM)
	test.ExpectFailure(t, ok)

	// a zero interrupting the sync bytes is returned as the mark
	s.Reset()
	m, ok = feed(0, mfm.SyncByte, 0)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, m, 0)

	// non-sync value after the zeros resets the scanner
	s.Reset()
	_, ok = feed(0, 0, 0xa1, mfm.SyncByte, mfm.DAM)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, s.State, mfm.StateZeros)
}

func TestSyncStateValid(t *testing.T) {
	for _, st := range []mfm.SyncState{mfm.StateZeros, mfm.StateLeadIn, mfm.StateSync} {
		test.ExpectSuccess(t, st.Valid())
	}
	test.ExpectFailure(t, mfm.SyncState(-1).Valid())
	test.ExpectFailure(t, mfm.SyncState(7).Valid())
}

// blank track of 4e gap bytes
type blank struct {
	size  int
	pos   int
	index int
	reads int
}

func (b *blank) Read() uint16 {
	b.reads++
	b.pos++
	if b.pos >= b.size {
		b.pos = 0
		b.index++
	}
	return mfm.Gap
}

func (b *blank) IndexCount() int {
	return b.index
}

func TestFindSyncRevolution(t *testing.T) {
	b := &blank{size: 6250}
	_, ok := mfm.FindSync(b, 1)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, b.reads, b.size)
	test.ExpectEquality(t, b.pos, 0)
}

type buffer struct {
	data []uint16
}

func (b *buffer) Write(v uint16) bool {
	b.data = append(b.data, v)
	return true
}

func TestPreamble(t *testing.T) {
	var b buffer
	crc := mfm.Preamble(&b, mfm.IDAM)
	test.ExpectEquality(t, crc, mfm.SeedID)
	test.ExpectEquality(t, len(b.data), mfm.SyncZeros+mfm.SyncCount+1)

	var s mfm.Sync
	var found bool
	for _, v := range b.data {
		_, found = s.Feed(v)
	}
	test.ExpectSuccess(t, found)
}
