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

package wd1770

import (
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the controller state followed by the mechanism state.
func (wd *WD1770) Snapshot(s *snapshot.File) {
	m := s.Create(wd.name, snapMajor, snapMinor)
	m.WriteB(wd.data)
	m.WriteB(wd.track)
	m.WriteB(wd.sector)
	m.WriteB(wd.status)
	m.WriteB(wd.cmd)
	m.WriteW(wd.crc)
	m.WriteB(uint8(wd.command))
	m.WriteDW(uint32(int32(wd.typ)))
	m.WriteDW(uint32(int32(wd.step)))
	m.WriteDW(uint32(int32(wd.byteCount)))
	m.WriteDW(uint32(int32(wd.tmp)))
	m.WriteBool(wd.direction)
	m.WriteQW(wd.clkRun)
	m.WriteBool(wd.irq)
	m.WriteBool(wd.dden)
	m.WriteBool(wd.sync)
	m.WriteBool(wd.is1772)
	m.WriteB(uint8(wd.scan.State))

	wd.fdd.Snapshot(s)
}

// Restore the controller and mechanism state. The controller requires an
// exact version match.
func (wd *WD1770) Restore(s *snapshot.File) error {
	m, major, minor, err := s.Open(wd.name)
	if err != nil {
		return err
	}
	if major != snapMajor || minor != snapMinor {
		return curated.Errorf(snapshot.VersionMismatch, wd.name, major, minor, snapMajor, snapMinor)
	}

	n := *wd
	n.data = m.ReadB()
	n.track = m.ReadB()
	n.sector = m.ReadB()
	n.status = m.ReadB()
	n.cmd = m.ReadB()
	n.crc = m.ReadW()
	n.command = Command(m.ReadB())
	n.typ = Type(int32(m.ReadDW()))
	n.step = int(int32(m.ReadDW()))
	n.byteCount = int(int32(m.ReadDW()))
	n.tmp = int(int32(m.ReadDW()))
	n.direction = m.ReadBool()
	n.clkRun = m.ReadQW()
	n.irq = m.ReadBool()
	n.dden = m.ReadBool()
	n.sync = m.ReadBool()
	n.is1772 = m.ReadBool()
	n.scan.State = mfm.SyncState(m.ReadB())
	if err := m.Err(); err != nil {
		return err
	}

	if n.typ < TypeStatus || n.typ > Type4 {
		n.typ = TypeIdle
	}
	if !n.scan.State.Valid() {
		n.scan.Reset()
	}

	if err := wd.fdd.Restore(s); err != nil {
		return err
	}
	*wd = n

	return nil
}
