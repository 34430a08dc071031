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

package cmdhd

import (
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the state of the controller board followed by the state of
// each chip. The images attached to the SCSI target are not part of the
// snapshot.
func (c *Controller) Snapshot(s *snapshot.File) {
	m := s.Create(c.name, snapMajor, snapMinor)
	m.WriteB(c.leds)
	m.WriteBA(c.in[:])
	m.WriteBA(c.out[:])
	m.WriteBool(c.scsiDir)
	m.WriteBool(c.preadyFF)
	c.ppi.Snapshot(m)

	c.via9.Snapshot(s)
	c.via10.Snapshot(s)
	c.scsi.Snapshot(s)
	c.rtc.snapshot(s)

	r := s.Create(c.name+"RAM", snapMajor, snapMinor)
	r.WriteBA(c.ram[:])
}

// Restore the state of the controller board and its chips. The reset alarm
// is cancelled. The first error is returned and the remaining modules are
// not read.
func (c *Controller) Restore(s *snapshot.File) error {
	m, err := s.OpenVersion(c.name, snapMajor, snapMinor)
	if err != nil {
		return err
	}

	leds := m.ReadB()
	var in, out [3]uint8
	m.ReadBA(in[:])
	m.ReadBA(out[:])
	scsiDir := m.ReadBool()
	preadyFF := m.ReadBool()
	if err := m.Err(); err != nil {
		return err
	}
	c.ppi.Restore(m)
	if err := m.Err(); err != nil {
		return err
	}

	c.leds = leds
	c.in = in
	c.out = out
	c.scsiDir = scsiDir
	c.preadyFF = preadyFF

	c.resetAlarm.Unset()

	if err := c.via9.Restore(s); err != nil {
		return err
	}
	if err := c.via10.Restore(s); err != nil {
		return err
	}
	if err := c.scsi.Restore(s); err != nil {
		return err
	}
	if err := c.rtc.restore(s); err != nil {
		return err
	}

	r, err := s.OpenVersion(c.name+"RAM", snapMajor, snapMinor)
	if err != nil {
		return err
	}
	var ram [ramSize]uint8
	r.ReadBA(ram[:])
	if err := r.Err(); err != nil {
		return err
	}
	c.ram = ram
	return nil
}
