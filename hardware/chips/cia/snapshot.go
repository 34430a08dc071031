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

package cia

import (
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the state of the CIA to a module with the same name as the
// CIA.
func (c *CIA) Snapshot(s *snapshot.File) {
	m := s.Create(c.name, snapMajor, snapMinor)

	m.WriteB(c.regs[PRA])
	m.WriteB(c.regs[PRB])
	m.WriteB(c.regs[DDRA])
	m.WriteB(c.regs[DDRB])
	m.WriteW(c.TA())
	m.WriteW(c.TB())
	m.WriteBA(c.regs[TODTen : TODHr+1])
	m.WriteB(c.regs[SDR])
	m.WriteB(c.mask)
	m.WriteB(c.regs[CRA])
	m.WriteB(c.regs[CRB])
	m.WriteW(c.ta.latch)
	m.WriteW(c.tb.latch)
	m.WriteB(c.peekICR())

	var toggles uint8
	if c.ta.toggle {
		toggles |= 0x40
	}
	if c.tb.toggle {
		toggles |= 0x80
	}
	m.WriteB(toggles)
	m.WriteB(c.srBits)
	m.WriteBA(c.todAlarm[:])

	var tod uint8
	if c.todLatched {
		tod |= 0x01
	}
	if c.todStopped {
		tod |= 0x02
	}
	m.WriteB(tod)
	m.WriteBA(c.todLatch[:])

	m.WriteB(c.shifter)
	var lines uint8
	if c.sp {
		lines |= 0x80
	}
	if c.cnt {
		lines |= 0x40
	}
	m.WriteB(lines)
}

// Restore the state of the CIA. Only snapshots with the same major version
// are accepted. The Ports implementation is not told about the restored
// outputs.
func (c *CIA) Restore(s *snapshot.File) error {
	m, major, minor, err := s.Open(c.name)
	if err != nil {
		return err
	}
	if major != snapMajor || minor > snapMinor {
		return curated.Errorf(snapshot.VersionMismatch, c.name, major, minor, snapMajor, snapMinor)
	}

	var regs [NumRegisters]uint8
	regs[PRA] = m.ReadB()
	regs[PRB] = m.ReadB()
	regs[DDRA] = m.ReadB()
	regs[DDRB] = m.ReadB()
	ta := m.ReadW()
	tb := m.ReadW()
	m.ReadBA(regs[TODTen : TODHr+1])
	regs[SDR] = m.ReadB()
	mask := m.ReadB() & icrMask
	regs[CRA] = m.ReadB() &^ crLoad
	regs[CRB] = m.ReadB() &^ crLoad
	tal := m.ReadW()
	tbl := m.ReadW()
	flags := m.ReadB() & icrMask
	toggles := m.ReadB()
	srBits := m.ReadB()

	var todAlarm [4]uint8
	var todLatch [4]uint8
	m.ReadBA(todAlarm[:])
	tod := m.ReadB()
	m.ReadBA(todLatch[:])
	shifter := m.ReadB()
	lines := m.ReadB()

	if err := m.Err(); err != nil {
		return err
	}

	c.regs = regs
	c.mask = mask
	c.flags = flags
	c.todAlarm = todAlarm
	c.todLatch = todLatch
	c.todLatched = tod&0x01 == 0x01
	c.todStopped = tod&0x02 == 0x02
	c.srBits = min(srBits, 16)
	c.shifter = shifter
	c.sp = lines&0x80 == 0x80
	c.cnt = lines&0x40 == 0x40

	now := c.clk.Now()
	restore := func(t *timer, reg int, count uint16, latch uint16, toggle bool) {
		t.alarm.Unset()
		t.phi2 = false
		t.latch = latch
		t.count = count
		t.toggle = toggle
		t.pulse = 0
		if countsPhi2(reg, c.regs[reg]) {
			t.run(now)
		}
	}
	restore(&c.ta, CRA, ta, tal, toggles&0x40 == 0x40)
	restore(&c.tb, CRB, tb, tbl, toggles&0x80 == 0x80)

	c.update()

	return nil
}
