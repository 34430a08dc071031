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

package fdd

import (
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 0
)

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Snapshot writes the state of the mechanism, including the raw track under
// the head, to the snapshot file. The disk image is not included.
func (drv *Drive) Snapshot(s *snapshot.File) {
	if drv == nil {
		return
	}

	m := s.Create(drv.name, snapMajor, snapMinor)
	m.WriteB(uint8(drv.number))
	m.WriteBool(drv.diskChange)
	m.WriteBool(drv.writeProtect)
	m.WriteB(uint8(drv.track))
	m.WriteB(uint8(drv.geometry.Tracks))
	m.WriteB(uint8(drv.head))
	m.WriteB(uint8(drv.geometry.Sectors))
	m.WriteBool(drv.motor)
	m.WriteB(uint8(drv.rate))
	m.WriteB(uint8(drv.geometry.SectorSize))
	m.WriteBool(drv.geometry.ISO)
	m.WriteB(uint8(drv.geometry.Gap2))
	m.WriteB(uint8(drv.geometry.Gap3))
	m.WriteB(uint8(drv.headInvert))
	m.WriteB(uint8(drv.geometry.DiskRate))
	m.WriteDW(uint32(drv.geometry.ImageSectors))
	m.WriteDW(uint32(drv.indexCount))
	m.WriteDW(uint32(drv.raw.head))
	m.WriteB(uint8(drv.raw.trackHead))
	m.WriteB(b2u(drv.raw.dirty))
	m.WriteBA(drv.raw.data)
	m.WriteBA(drv.raw.sync)
}

// Restore the state of the mechanism from the snapshot file. A module with a
// newer version than supported is rejected and the mechanism is unchanged.
func (drv *Drive) Restore(s *snapshot.File) error {
	if drv == nil {
		return nil
	}

	m, err := s.OpenVersion(drv.name, snapMajor, snapMinor)
	if err != nil {
		return err
	}

	// decode into a copy so that a short module leaves the drive unchanged
	n := *drv
	n.number = int(m.ReadB())
	n.diskChange = m.ReadBool()
	n.writeProtect = m.ReadBool()
	n.track = int(m.ReadB())
	n.geometry.Tracks = int(m.ReadB())
	n.head = int(m.ReadB()) & 1
	n.geometry.Sectors = int(m.ReadB())
	n.motor = m.ReadBool()
	n.rate = int(m.ReadB()) & 3
	n.geometry.SectorSize = int(m.ReadB()) & 3
	n.geometry.ISO = m.ReadBool()
	n.geometry.Gap2 = int(m.ReadB())
	n.geometry.Gap3 = int(m.ReadB())
	n.headInvert = int(m.ReadB()) & 1
	n.geometry.DiskRate = int(m.ReadB()) & 3
	n.geometry.ImageSectors = int(m.ReadDW())
	n.indexCount = int(m.ReadDW())
	n.raw.head = int(m.ReadDW())
	n.raw.trackHead = int(m.ReadB())
	if n.raw.trackHead == 0xff {
		n.raw.trackHead = -1
	}
	n.raw.dirty = m.ReadB() != 0

	n.track = max(0, min(MaxTrack, n.track))
	n.geometry.Tracks = max(0, min(MaxTrack, n.geometry.Tracks))

	n.raw.size = TrackLength(n.geometry.DiskRate)
	n.raw.head %= n.raw.size
	n.raw.data = make([]uint8, n.raw.size)
	n.raw.sync = make([]uint8, (n.raw.size+7)>>3)
	m.ReadBA(n.raw.data)
	m.ReadBA(n.raw.sync)

	if err := m.Err(); err != nil {
		return err
	}
	*drv = n

	return nil
}
