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

package pc8477

import (
	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the controller state followed by the state of the built
// in mechanism.
func (pc *PC8477) Snapshot(s *snapshot.File) {
	m := s.Create(pc.name, snapMajor, snapMinor)

	m.WriteB(uint8(pc.command))
	m.WriteB(uint8(pc.phase))
	m.WriteB(pc.cmdFlags)
	m.WriteDW(uint32(int32(pc.intStep)))
	m.WriteDW(uint32(int32(pc.subStep)))
	m.WriteDW(uint32(int32(pc.byteCount)))
	m.WriteW(pc.crc)
	m.WriteB(uint8(pc.scan.State))

	for i := range pc.drives {
		d := &pc.drives[i]
		m.WriteBool(d.motorOut)
		m.WriteW(uint16(d.track))
		m.WriteDW(uint32(int32(d.seekPulses)))
		m.WriteBool(d.seeking)
		m.WriteBool(d.recalibrating)
		m.WriteBool(d.perpendicular)
	}
	m.WriteB(uint8(pc.current))
	m.WriteB(uint8(pc.headSel))

	m.WriteBool(pc.seekingActive)
	m.WriteBool(pc.seekAlarm.Pending())
	m.WriteQW(pc.seekAlarm.At())

	m.WriteBool(pc.irq)
	m.WriteQW(pc.clkRun)
	m.WriteBA(pc.st[:])
	m.WriteB(pc.dor)
	m.WriteB(pc.tdr)
	m.WriteB(uint8(pc.stepRate))
	m.WriteB(uint8(pc.motorOffTime))
	m.WriteB(uint8(pc.motorOnTime))
	m.WriteBool(pc.nodma)
	m.WriteB(pc.config)
	m.WriteB(pc.pretrk)
	m.WriteW(uint16(pc.rate))
	m.WriteB(pc.sector)
	m.WriteBool(pc.is8477)

	m.WriteBA(pc.fifo.data[:])
	m.WriteB(uint8(pc.fifo.size))
	m.WriteB(uint8(pc.fifo.fill))
	m.WriteB(uint8(pc.fifo.host))
	m.WriteB(uint8(pc.fifo.ctrl))

	m.WriteBA(pc.cmd[:])
	m.WriteB(uint8(pc.cmdp))
	m.WriteB(uint8(pc.cmdSize))
	m.WriteBA(pc.res[:])
	m.WriteB(uint8(pc.resp))
	m.WriteB(uint8(pc.resSize))

	pc.Drive().Snapshot(s)
}

// Restore the controller and mechanism state. Modules with a newer major
// version, or a newer minor version of the same major, are rejected and the
// controller is left unchanged.
func (pc *PC8477) Restore(s *snapshot.File) error {
	m, err := s.OpenVersion(pc.name, snapMajor, snapMinor)
	if err != nil {
		return err
	}

	n := *pc
	n.command = Command(m.ReadB())
	n.phase = Phase(m.ReadB())
	n.cmdFlags = m.ReadB()
	n.intStep = int(int32(m.ReadDW()))
	n.subStep = int(int32(m.ReadDW()))
	n.byteCount = int(int32(m.ReadDW()))
	n.crc = m.ReadW()
	n.scan.State = mfm.SyncState(m.ReadB())

	for i := range n.drives {
		d := &n.drives[i]
		d.motorOut = m.ReadBool()
		d.track = int(m.ReadW())
		d.seekPulses = int(int32(m.ReadDW()))
		d.seeking = m.ReadBool()
		d.recalibrating = m.ReadBool()
		d.perpendicular = m.ReadBool()
	}
	n.current = int(m.ReadB()) & 3
	n.headSel = int(m.ReadB()) & 1

	n.seekingActive = m.ReadBool()
	alarmPending := m.ReadBool()
	alarmAt := m.ReadQW()

	n.irq = m.ReadBool()
	n.clkRun = m.ReadQW()
	m.ReadBA(n.st[:])
	n.dor = m.ReadB()
	n.tdr = m.ReadB()
	n.stepRate = int(m.ReadB()) & 0x0f
	n.motorOffTime = int(m.ReadB()) & 0x0f
	n.motorOnTime = int(m.ReadB())
	n.nodma = m.ReadBool()
	n.config = m.ReadB()
	n.pretrk = m.ReadB()
	n.rate = int(m.ReadW())
	n.sector = m.ReadB()
	n.is8477 = m.ReadBool()

	m.ReadBA(n.fifo.data[:])
	n.fifo.size = int(m.ReadB())
	n.fifo.fill = int(m.ReadB())
	n.fifo.host = int(m.ReadB())
	n.fifo.ctrl = int(m.ReadB())

	m.ReadBA(n.cmd[:])
	n.cmdp = int(m.ReadB())
	n.cmdSize = int(m.ReadB())
	m.ReadBA(n.res[:])
	n.resp = int(m.ReadB())
	n.resSize = int(m.ReadB())

	if err := m.Err(); err != nil {
		return err
	}

	// values that would index outside of the buffers are reset
	if n.fifo.size < 1 || n.fifo.size > FIFOCapacity {
		n.fifo.configure(1)
	}
	n.fifo.fill = min(n.fifo.fill, n.fifo.size)
	if n.fifo.host >= n.fifo.size || n.fifo.ctrl >= n.fifo.size {
		n.fifo.restart()
		n.fifo.host = 0
		n.fifo.ctrl = 0
	}
	n.cmdp = min(n.cmdp, len(n.cmd))
	n.cmdSize = min(n.cmdSize, len(n.cmd))
	n.resp = min(n.resp, len(n.res)-1)
	switch n.rate {
	case 250, 300, 500, 1000:
	default:
		n.rate = 250
	}
	if n.phase < PhaseWait || n.phase > PhaseResult {
		n.phase = PhaseWait
	}
	if !n.scan.State.Valid() {
		n.scan.Reset()
	}

	if err := pc.Drive().Restore(s); err != nil {
		return err
	}
	*pc = n

	if alarmPending {
		pc.seekAlarm.Set(alarmAt)
	} else {
		pc.seekAlarm.Unset()
	}

	return nil
}
