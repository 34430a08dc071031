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

package hardware

import (
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// Sentinal error patterns.
const (
	UnitMismatch = "hardware: unit %d does not match the snapshot"
)

// Machine is the machine name written to every snapshot file.
const Machine = "Gopherdrive"

const (
	snapMajor = 1
	snapMinor = 0

	// the kind of a unit is written with an offset so that zero means there
	// is no unit in the slot
	noUnit = 0
)

// Snapshot the state of the system. The disk images are not part of the
// snapshot.
func (sys *System) Snapshot() *snapshot.File {
	s := snapshot.NewFile(Machine)

	m := s.Create("SYSTEM", snapMajor, snapMinor)
	m.WriteQW(sys.Clock.Now())
	m.WriteB(sys.hostPort)
	for _, u := range sys.units {
		if u == nil {
			m.WriteB(noUnit)
		} else {
			m.WriteB(uint8(u.Kind()) + 1)
		}
	}

	sys.IEC.Snapshot(s)
	sys.CMD.Snapshot(s)

	for _, u := range sys.units {
		if u != nil {
			u.Snapshot(s)
		}
	}

	return s
}

// Plumb a previously snapshotted system. The same kinds of drive must be
// attached as the same unit numbers as when the snapshot was taken. The
// system is not changed if this is not the case.
func (sys *System) Plumb(s *snapshot.File) error {
	m, err := s.OpenVersion("SYSTEM", snapMajor, snapMinor)
	if err != nil {
		return err
	}

	now := m.ReadQW()
	hostPort := m.ReadB()
	var kinds [iecbus.NumUnits]uint8
	m.ReadBA(kinds[:])
	if err := m.Err(); err != nil {
		return err
	}

	for i, k := range kinds {
		var have uint8
		if sys.units[i] != nil {
			have = uint8(sys.units[i].Kind()) + 1
		}
		if k != have {
			return curated.Errorf(UnitMismatch, iecbus.FirstUnit+i)
		}
	}

	sys.Clock.Restore(now)
	sys.hostPort = hostPort

	if err := sys.IEC.Restore(s); err != nil {
		return err
	}
	if err := sys.CMD.Restore(s); err != nil {
		return err
	}

	for _, u := range sys.units {
		if u != nil {
			if err := u.Restore(s); err != nil {
				return err
			}
		}
	}

	return nil
}
