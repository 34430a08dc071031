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

package via

import (
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 1
)

// bits in the pending timer byte
const (
	snapT1Pending = 0x80
	snapT2Pending = 0x40
)

// Snapshot writes the state of the VIA to a module with the same name as the
// VIA.
func (v *VIA) Snapshot(s *snapshot.File) {
	m := s.Create(v.name, snapMajor, snapMinor)

	m.WriteB(v.regs[PRA])
	m.WriteB(v.regs[DDRA])
	m.WriteB(v.regs[PRB])
	m.WriteB(v.regs[DDRB])

	t2 := v.T2()
	m.WriteW(v.t1Latch())
	m.WriteW(v.T1())
	m.WriteB(v.regs[T2CL])
	m.WriteB(v.regs[T2CH])
	m.WriteB(uint8(t2))
	m.WriteB(uint8(t2 >> 8))
	m.WriteW(t2)

	var pending uint8
	if v.t1Armed || v.regs[ACR]&acrFreeRun == acrFreeRun {
		pending |= snapT1Pending
	}
	if v.t2Armed {
		pending |= snapT2Pending
	}
	m.WriteB(pending)

	m.WriteB(v.regs[SR])
	m.WriteB(v.regs[ACR])
	m.WriteB(v.regs[PCR])
	m.WriteB(v.ifr)
	m.WriteB(v.ier)

	var pb7 uint8
	if v.pb7 {
		pb7 = 0x80
	}
	m.WriteB(pb7)
	m.WriteB(v.shiftState)

	var cab uint8
	if v.ca2 {
		cab |= 0x80
	}
	if v.cb2 {
		cab |= 0x40
	}
	m.WriteB(cab)

	m.WriteB(v.ila)
	m.WriteB(v.ilb)
}

// Restore the state of the VIA. Only snapshots with the same major version
// are accepted. The Ports implementation is not told about the restored
// outputs; the owner of the VIA is expected to restore the state of the
// lines itself.
func (v *VIA) Restore(s *snapshot.File) error {
	m, major, minor, err := s.Open(v.name)
	if err != nil {
		return err
	}
	if major != snapMajor || minor > snapMinor {
		return curated.Errorf(snapshot.VersionMismatch, v.name, major, minor, snapMajor, snapMinor)
	}

	var regs [NumRegisters]uint8
	copy(regs[:], v.regs[:])

	regs[PRA] = m.ReadB()
	regs[DDRA] = m.ReadB()
	regs[PRB] = m.ReadB()
	regs[DDRB] = m.ReadB()

	t1l := m.ReadW()
	t1c := m.ReadW()
	regs[T1LL] = uint8(t1l)
	regs[T1LH] = uint8(t1l >> 8)
	regs[T2CL] = m.ReadB()
	regs[T2CH] = m.ReadB()

	// counter bytes are duplicated by the word that follows them
	_ = m.ReadB()
	_ = m.ReadB()
	t2c := m.ReadW()

	pending := m.ReadB()

	regs[SR] = m.ReadB()
	regs[ACR] = m.ReadB()
	regs[PCR] = m.ReadB()
	ifr := m.ReadB() & 0x7f
	ier := m.ReadB() & 0x7f
	pb7 := m.ReadB()&0x80 == 0x80
	shiftState := m.ReadB()
	cab := m.ReadB()
	ila := m.ReadB()
	ilb := m.ReadB()

	if err := m.Err(); err != nil {
		return err
	}

	v.regs = regs
	v.ifr = ifr
	v.ier = ier
	v.pb7 = pb7
	v.shiftState = shiftState
	v.ca2 = cab&0x80 == 0x80
	v.cb2 = cab&0x40 == 0x40
	v.ila = ila
	v.ilb = ilb
	v.oldPA = v.OutputA()
	v.oldPB = v.OutputB()

	now := v.clk.Now()
	if t1c == 0xffff {
		// snapshot taken on the underflow cycle
		v.t1Under = now
	} else {
		v.t1Under = now + uint64(t1c) + 1
	}
	v.t1Armed = pending&snapT1Pending == snapT1Pending
	if v.t1Armed || v.regs[ACR]&acrFreeRun == acrFreeRun {
		v.t1Alarm.Set(v.t1Next())
	} else {
		v.t1Alarm.Unset()
	}

	v.t2Under = now + uint64(t2c) + 1
	v.t2Count = t2c
	v.t2Armed = pending&snapT2Pending == snapT2Pending
	if v.t2Armed && v.regs[ACR]&acrPulseT2 == 0 {
		v.t2Alarm.Set(v.t2Under)
	} else {
		v.t2Alarm.Unset()
	}

	v.update()

	return nil
}
