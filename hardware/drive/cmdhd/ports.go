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
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/hardware/chips/via"
	"github.com/jetsetilly/gopherdrive/hardware/drive/i8255a"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
)

// the phase of the SCSI bus as decoded by the PLD on the board and presented
// in the low bits of VIA9 port B
const (
	pldDataOut    = 0
	pldCommand    = 1
	pldMessageOut = 3
	pldDataIn     = 4
	pldStatus     = 5
	pldMessageIn  = 7
)

func pldPhase(p scsi.Phase) uint8 {
	switch p {
	case scsi.DataOut:
		return pldDataOut
	case scsi.Command:
		return pldCommand
	case scsi.DataIn:
		return pldDataIn
	case scsi.MessageIn:
		return pldMessageIn
	}
	return pldStatus
}

// VIA9 port A is the SCSI data bus. an access of PRA (rather than PRA_NHS)
// completes a REQ/ACK handshake. port B carries the SCSI control lines
type via9Ports struct {
	via.NullPorts
	c *Controller
}

func (p *via9Ports) handshake(reg int) {
	s := p.c.scsi
	if s.Phase() != scsi.BusFree && reg&0x0f == via.PRA {
		s.ProcessAck()
	} else {
		s.ProcessNoAck()
	}
}

func (p *via9Ports) StorePA(v uint8, _ uint8, reg int) {
	p.c.scsi.SetBus(v)
	p.handshake(reg)
}

func (p *via9Ports) ReadPA(reg int) uint8 {
	v := p.c.scsi.Bus()
	p.handshake(reg)
	return v
}

func (p *via9Ports) StorePB(v uint8, _ uint8, _ int) {
	p.c.scsi.Sel = v&0x10 == 0x10
	p.c.scsiDir = v&0x08 == 0x08
	p.c.scsi.ProcessNoAck()
}

func (p *via9Ports) ReadPB() uint8 {
	s := p.c.scsi
	s.ProcessNoAck()

	// the meaning of bit 5 depends on how the CB lines have been set up
	var busy bool
	if p.c.via9.PCR()&0xf0 == 0xf0 {
		busy = s.Sel && s.BSY()
	} else {
		busy = !s.Sel && s.BSY()
	}

	v := pldPhase(s.Phase())
	if s.Req() {
		v |= 0x80
	}
	if s.Ack {
		v |= 0x40
	}
	if busy {
		v |= 0x20
	}
	if s.Sel {
		v |= 0x10
	}
	if p.c.scsiDir {
		v |= 0x08
	}
	return v
}

// VIA10 port B is the IEC bus. port A is not connected and the shift
// register is the unused fast serial line
type via10Ports struct {
	via.NullPorts
	c *Controller
}

func (p *via10Ports) StorePB(v uint8, old uint8, _ int) {
	if v != old {
		p.c.iec.WriteUnit(p.c.unit, v)
	}
}

func (p *via10Ports) ReadPB() uint8 {
	out := p.c.via10.OutputB() & p.c.via10.Peek(via.DDRB)
	return (out&0x1a | p.c.iec.Read()) ^ 0x85
}

// the PPI ports. A is the data of the parallel bus. B is the control lines
// of the parallel bus and the front panel buttons. C controls the SCSI bus,
// the parallel handshake and the memory map
type ppiPorts struct {
	c *Controller
}

func (p *ppiPorts) Input(port int, peek bool) uint8 {
	c := p.c
	switch port {
	case i8255a.PortA:
		// the data lines are pulled up when the port changes direction
		if peek {
			return 0xff
		}
		return c.cmd.Data()
	case i8255a.PortB:
		bus := ^c.cmd.Bus()
		return (bus<<2)&0x80 | bus&0x40 | (bus>>7)&0x01 | c.in[i8255a.PortB]&0x3e
	}
	return c.in[i8255a.PortC]
}

func (p *ppiPorts) Output(port int, v uint8) {
	c := p.c
	c.out[port] = v

	switch port {
	case i8255a.PortA:
		c.cmd.WriteUnitData(c.unit, v)

	case i8255a.PortC:
		c.scsi.Atn = v&pcSCSIATN == pcSCSIATN
		c.scsi.Rst = v&pcSCSIRST == pcSCSIRST
		c.scsi.BsyI = v&pcSCSIBSY == pcSCSIBSY
		c.scsi.ProcessNoAck()

		patn := c.cmd.Bus()&cmdbus.PATN == 0
		c.patnChanged(patn, patn)

		// PREADY and PATN are kept. PEXT is moved down to bit 4
		bus := c.cmd.UnitBus(c.unit)&(cmdbus.PREADY|cmdbus.PATN) | v&pcPCLK | (v&pcPEXT)>>1 | 0x0f
		c.cmd.WriteUnitBus(c.unit, bus)
	}
}
