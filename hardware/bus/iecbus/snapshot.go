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

package iecbus

import "github.com/jetsetilly/gopherdrive/snapshot"

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the lines driven by the host and by every unit.
func (b *Bus) Snapshot(s *snapshot.File) {
	m := s.Create("IECBUS", snapMajor, snapMinor)
	m.WriteB(b.cpuBus)
	for i := range b.units {
		m.WriteB(b.units[i].data)
	}
}

// Restore the lines driven by the host and by every unit. Which units are
// attached is not part of the snapshot. Listeners are not told about the
// restored state of ATN.
func (b *Bus) Restore(s *snapshot.File) error {
	m, err := s.OpenVersion("IECBUS", snapMajor, snapMinor)
	if err != nil {
		return err
	}
	cpuBus := m.ReadB()
	var data [NumUnits]uint8
	m.ReadBA(data[:])
	if err := m.Err(); err != nil {
		return err
	}

	b.cpuBus = cpuBus
	for i := range b.units {
		b.units[i].data = data[i]
		if b.units[i].attached {
			b.units[i].bus = driveBus(b.units[i].family, data[i], cpuBus)
		} else {
			b.units[i].bus = 0xff
		}
	}

	// twice so that the trace does not show a change
	atn := cpuBus&CPUATN == CPUATN
	b.atn.Tick(atn)
	b.atn.Tick(atn)

	b.update()
	return nil
}
