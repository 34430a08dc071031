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

package scsi

import (
	"github.com/jetsetilly/gopherdrive/snapshot"
)

const (
	snapMajor = 0
	snapMinor = 0
)

// Snapshot writes the state of the target. Attached images are not part of
// the snapshot.
func (t *Target) Snapshot(s *snapshot.File) {
	m := s.Create(t.name, snapMajor, snapMinor)

	m.WriteB(uint8(t.phase))
	m.WriteB(t.target)
	m.WriteB(t.databus)
	m.WriteBool(t.Ack)
	m.WriteBool(t.req)
	m.WriteBool(t.BsyI)
	m.WriteBool(t.bsyo)
	m.WriteBool(t.Sel)
	m.WriteBool(t.Rst)
	m.WriteBool(t.Atn)
	m.WriteBool(t.cd)
	m.WriteBool(t.io)
	m.WriteBool(t.msg)
	m.WriteBool(t.link)
	m.WriteB(t.status)
	m.WriteB(t.lun)
	m.WriteB(t.command)
	m.WriteB(t.senseKey)
	m.WriteB(t.asc)
	m.WriteBool(t.MsgAfterStatus)
	m.WriteDW(uint32(t.seq))
	m.WriteDW(uint32(t.cmdSize))
	m.WriteDW(t.address)
	m.WriteDW(t.blocks)
	m.WriteDW(uint32(t.dataMax))
	m.WriteDW(t.MaxImageSize)
	m.WriteBA(t.cmd[:])
	m.WriteBA(t.data[:])
}

// Restore the state of the target. A module with a newer version is rejected
// and the target is left unchanged.
func (t *Target) Restore(s *snapshot.File) error {
	m, err := s.OpenVersion(t.name, snapMajor, snapMinor)
	if err != nil {
		return err
	}

	n := *t
	n.phase = Phase(m.ReadB())
	n.target = m.ReadB()
	n.databus = m.ReadB()
	n.Ack = m.ReadBool()
	n.req = m.ReadBool()
	n.BsyI = m.ReadBool()
	n.bsyo = m.ReadBool()
	n.Sel = m.ReadBool()
	n.Rst = m.ReadBool()
	n.Atn = m.ReadBool()
	n.cd = m.ReadBool()
	n.io = m.ReadBool()
	n.msg = m.ReadBool()
	n.link = m.ReadBool()
	n.status = m.ReadB()
	n.lun = m.ReadB() & 0x07
	n.command = m.ReadB()
	n.senseKey = m.ReadB()
	n.asc = m.ReadB()
	n.MsgAfterStatus = m.ReadBool()
	n.seq = int(m.ReadDW())
	n.cmdSize = int(m.ReadDW())
	n.address = m.ReadDW()
	n.blocks = m.ReadDW()
	n.dataMax = int(m.ReadDW())
	n.MaxImageSize = m.ReadDW()
	m.ReadBA(n.cmd[:])
	m.ReadBA(n.data[:])

	if err := m.Err(); err != nil {
		return err
	}

	// counters that would index outside of the buffers
	n.cmdSize = min(n.cmdSize, len(n.cmd))
	n.dataMax = min(n.dataMax, len(n.data))
	n.seq = min(n.seq, len(n.cmd)-1)
	switch n.phase {
	case DataIn:
		n.seq = min(n.seq, n.dataMax)
	case DataOut:
		n.seq = min(n.seq, max(n.dataMax-1, 0))
	}
	if n.phase < BusFree || n.phase > MessageIn {
		n.phase = BusFree
	}

	*t = n
	return nil
}
