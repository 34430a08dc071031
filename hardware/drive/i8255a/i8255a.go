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

// Package i8255a emulates the Intel 8255A programmable peripheral interface
// as used by the CMD-HD. Only mode 0 (basic input/output) is implemented.
// Mode 1 and 2 selections are accepted but behave as mode 0.
package i8255a

import (
	"fmt"

	"github.com/jetsetilly/gopherdrive/snapshot"
)

// List of register addresses.
const (
	PortA = iota
	PortB
	PortC
	Control
)

// Ports is implemented by the owner of the PPI.
type Ports interface {
	// Input returns the value at the pins of a port. peek is true when the
	// value is wanted because of a change of direction rather than because
	// the CPU is reading the port
	Input(port int, peek bool) uint8

	// Output is called with the value at the pins of a port whenever the
	// output latch or the direction of the port changes. Bits that are
	// inputs carry the value returned by Input()
	Output(port int, v uint8)
}

// control word bits
const (
	ctrlModeSet = 0x80
	ctrlAIn     = 0x10
	ctrlCHiIn   = 0x08
	ctrlBIn     = 0x02
	ctrlCLoIn   = 0x01
)

// the control word after reset. every port is an input
const resetControl = 0x9b

// PPI is a single 8255A.
type PPI struct {
	ports Ports
	ctrl  uint8
	latch [3]uint8
}

// NewPPI is the preferred method of initialisation for the PPI type.
func NewPPI(ports Ports) *PPI {
	p := &PPI{ports: ports}
	p.Reset()
	return p
}

func (p *PPI) String() string {
	return fmt.Sprintf("ctrl=%02x a=%02x b=%02x c=%02x", p.ctrl, p.latch[PortA], p.latch[PortB], p.latch[PortC])
}

// Reset puts every port into input mode with cleared latches.
func (p *PPI) Reset() {
	p.Write(Control, resetControl)
}

// the bits of a port that are inputs
func (p *PPI) inputs(port int) uint8 {
	switch port {
	case PortA:
		if p.ctrl&ctrlAIn == ctrlAIn {
			return 0xff
		}
	case PortB:
		if p.ctrl&ctrlBIn == ctrlBIn {
			return 0xff
		}
	case PortC:
		var m uint8
		if p.ctrl&ctrlCLoIn == ctrlCLoIn {
			m |= 0x0f
		}
		if p.ctrl&ctrlCHiIn == ctrlCHiIn {
			m |= 0xf0
		}
		return m
	}
	return 0x00
}

// drive the pins of a port
func (p *PPI) output(port int) {
	in := p.inputs(port)
	v := p.latch[port] &^ in
	if in != 0 {
		v |= p.ports.Input(port, true) & in
	}
	p.ports.Output(port, v)
}

// Read a register.
func (p *PPI) Read(addr int) uint8 {
	return p.read(addr, false)
}

// Peek returns the value of a register as the CPU would see it but without
// the owner treating it as a read of the port.
func (p *PPI) Peek(addr int) uint8 {
	return p.read(addr, true)
}

func (p *PPI) read(addr int, peek bool) uint8 {
	addr &= 0x03
	if addr == Control {
		return p.ctrl
	}
	in := p.inputs(addr)
	v := p.latch[addr] &^ in
	if in != 0 {
		v |= p.ports.Input(addr, peek) & in
	}
	return v
}

// Write a register. A write to the control register either sets the mode of
// every port, clearing the output latches, or sets or resets a single bit of
// port C.
func (p *PPI) Write(addr int, v uint8) {
	addr &= 0x03
	if addr != Control {
		p.latch[addr] = v
		p.output(addr)
		return
	}

	if v&ctrlModeSet == ctrlModeSet {
		p.ctrl = v
		p.latch = [3]uint8{}
		p.output(PortA)
		p.output(PortB)
		p.output(PortC)
		return
	}

	bit := uint8(1) << ((v >> 1) & 0x07)
	if v&0x01 == 0x01 {
		p.latch[PortC] |= bit
	} else {
		p.latch[PortC] &^= bit
	}
	p.output(PortC)
}

// Latch returns the output latch of a port.
func (p *PPI) Latch(port int) uint8 {
	if port < PortA || port > PortC {
		return 0
	}
	return p.latch[port]
}

// Snapshot adds the state of the PPI to a module.
func (p *PPI) Snapshot(m *snapshot.Module) {
	m.WriteB(p.ctrl)
	m.WriteBA(p.latch[:])
}

// Restore the state of the PPI from a module. The ports are not driven;
// the owner is expected to restore its own view of the pins. Errors are
// available through the Err() function of the module.
func (p *PPI) Restore(m *snapshot.Module) {
	ctrl := m.ReadB()
	var latch [3]uint8
	m.ReadBA(latch[:])
	if m.Err() != nil {
		return
	}
	p.ctrl = ctrl | ctrlModeSet
	p.latch = latch
}
