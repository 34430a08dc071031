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
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/hardware/clocks"
)

// Ports connects the CIA to the lines of the drive.
type Ports interface {
	// StorePA and StorePB are called with the new output of the port when
	// the port or the data direction register is written. Bits that are
	// inputs are set
	StorePA(v uint8)
	StorePB(v uint8)

	// ReadPA and ReadPB return the state of the pins
	ReadPA() uint8
	ReadPB() uint8

	// StoreSDR is called when the CPU writes to the serial data register
	StoreSDR(v uint8)
}

// CIA is a single 6526.
type CIA struct {
	name  string
	clk   *clocks.Clock
	ports Ports
	irq   clocks.Interrupt

	regs [NumRegisters]uint8

	// interrupt flags and mask
	flags     uint8
	mask      uint8
	irqActive bool

	ta timer
	tb timer

	// time of day. the TOD is latched on a read of the hours register until
	// the tenths register is read. writing the hours register stops the TOD
	// until the tenths register is written
	todAlarm   [4]uint8
	todLatch   [4]uint8
	todLatched bool
	todStopped bool

	// serial port
	srBits  uint8
	shifter uint8
	sp      bool
	cnt     bool
}

// NewCIA is the preferred method of initialisation for the CIA type. The irq
// argument can be nil.
func NewCIA(name string, clk *clocks.Clock, ports Ports, irq clocks.Interrupt) *CIA {
	c := &CIA{
		name:  name,
		clk:   clk,
		ports: ports,
		irq:   irq,
		cnt:   true,
		sp:    true,
	}
	c.ta.alarm = clk.NewAlarm(fmt.Sprintf("%sTA", name), func() { c.phi2Underflow(&c.ta) })
	c.tb.alarm = clk.NewAlarm(fmt.Sprintf("%sTB", name), func() { c.phi2Underflow(&c.tb) })
	c.ta.icr = IntTA
	c.tb.icr = IntTB
	c.Reset()
	return c
}

// Name returns the name of the CIA.
func (c *CIA) Name() string {
	return c.name
}

func (c *CIA) String() string {
	s := strings.Builder{}
	s.WriteString(c.name)
	s.WriteString(":")
	for _, r := range []int{PRA, PRB, DDRA, DDRB, SDR, CRA, CRB} {
		s.WriteString(fmt.Sprintf(" %s=%02x", RegisterNames[r], c.regs[r]))
	}
	s.WriteString(fmt.Sprintf(" TA=%04x TB=%04x ICR=%02x/%02x", c.TA(), c.TB(), c.flags, c.mask))
	return s.String()
}

// Reset the CIA. The ports are set to inputs and the timers are stopped with
// their latches and counters set to 0xffff.
func (c *CIA) Reset() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.regs[TODHr] = 0x01

	c.ta.reset()
	c.tb.reset()

	c.todAlarm = [4]uint8{}
	copy(c.todLatch[:], c.regs[TODTen:TODHr+1])
	c.todLatched = false
	c.todStopped = true

	c.srBits = 0
	c.shifter = 0

	c.flags = 0
	c.mask = 0
	c.update()

	c.ports.StorePA(0xff)
	c.ports.StorePB(0xff)
}

func (c *CIA) update() {
	active := c.flags&c.mask != 0
	if active == c.irqActive {
		return
	}
	c.irqActive = active
	if c.irq != nil {
		c.irq.SetIRQ(c.name, active)
	}
}

// IRQ returns the state of the interrupt output.
func (c *CIA) IRQ() bool {
	return c.irqActive
}

func (c *CIA) interrupt(bit uint8) {
	c.flags |= bit
	c.update()
}

// Flag signals a negative edge on the FLAG input.
func (c *CIA) Flag() {
	c.interrupt(IntFLAG)
}

// SetSDR loads the serial data register with a byte received through the
// serial port. Ignored if the serial port is an output.
func (c *CIA) SetSDR(data uint8) {
	if c.regs[CRA]&craSPOut == craSPOut {
		return
	}
	c.regs[SDR] = data
	c.interrupt(IntSP)
}

// SetSP sets the state of the serial data input.
func (c *CIA) SetSP(high bool) {
	c.sp = high
}

// SetCNT sets the state of the CNT input. In input mode the serial port
// samples SP on every rising edge and a timer in CNT mode counts the rising
// edges.
func (c *CIA) SetCNT(high bool) {
	if high == c.cnt {
		return
	}
	c.cnt = high

	if c.regs[CRA]&craSPOut == 0 {
		if !high && c.srBits == 0 {
			c.srBits = 8
		}
		if high && c.srBits > 0 {
			c.shifter <<= 1
			if c.sp {
				c.shifter |= 0x01
			}
			c.srBits--
			if c.srBits == 0 {
				c.SetSDR(c.shifter)
			}
		}
	}

	if !high {
		return
	}
	if c.regs[CRA]&(crStart|craCNT) == crStart|craCNT {
		c.count(&c.ta)
	}
	if c.regs[CRB]&crStart == crStart && c.regs[CRB]&crbMode == crbCNT {
		c.count(&c.tb)
	}
}

// Read a register. Reading the ICR clears the interrupt flags.
func (c *CIA) Read(reg int) uint8 {
	reg &= 0x0f

	switch reg {
	case ICR:
		v := c.peekICR()
		c.flags = 0
		c.update()
		return v

	case TODTen:
		v := c.peekTOD(reg)
		c.todLatched = false
		return v

	case TODHr:
		if !c.todLatched {
			copy(c.todLatch[:], c.regs[TODTen:TODHr+1])
			c.todLatched = true
		}
		return c.peekTOD(reg)
	}

	return c.Peek(reg)
}

// Peek returns the value of a register without side effects.
func (c *CIA) Peek(reg int) uint8 {
	reg &= 0x0f

	switch reg {
	case PRA:
		return c.ports.ReadPA()&^c.regs[DDRA] | c.regs[PRA]&c.regs[DDRA]

	case PRB:
		b := c.ports.ReadPB()&^c.regs[DDRB] | c.regs[PRB]&c.regs[DDRB]
		if c.regs[CRA]&crPBOn == crPBOn {
			b &^= 0x40
			if c.ta.output(c.regs[CRA], c.clk.Now()) {
				b |= 0x40
			}
		}
		if c.regs[CRB]&crPBOn == crPBOn {
			b &^= 0x80
			if c.tb.output(c.regs[CRB], c.clk.Now()) {
				b |= 0x80
			}
		}
		return b

	case TAL:
		return uint8(c.TA())
	case TAH:
		return uint8(c.TA() >> 8)
	case TBL:
		return uint8(c.TB())
	case TBH:
		return uint8(c.TB() >> 8)

	case TODTen, TODSec, TODMin, TODHr:
		return c.peekTOD(reg)

	case ICR:
		return c.peekICR()
	}

	return c.regs[reg]
}

func (c *CIA) peekICR() uint8 {
	v := c.flags
	if c.flags&c.mask != 0 {
		v |= IntIR
	}
	return v
}

func (c *CIA) peekTOD(reg int) uint8 {
	if c.todLatched {
		return c.todLatch[reg-TODTen]
	}
	return c.regs[reg]
}

// OutputA returns the value driven on port A. Bits that are inputs are set.
func (c *CIA) OutputA() uint8 {
	return c.regs[PRA] | ^c.regs[DDRA]
}

// OutputB returns the value driven on port B. Bits that are inputs are set.
func (c *CIA) OutputB() uint8 {
	return c.regs[PRB] | ^c.regs[DDRB]
}

// Write a register.
func (c *CIA) Write(reg int, data uint8) {
	reg &= 0x0f

	switch reg {
	case PRA, DDRA:
		c.regs[reg] = data
		c.ports.StorePA(c.OutputA())

	case PRB, DDRB:
		c.regs[reg] = data
		c.ports.StorePB(c.OutputB())

	case TAL:
		c.writeLatch(&c.ta, c.ta.latch&0xff00|uint16(data), c.regs[CRA], false)
	case TAH:
		c.writeLatch(&c.ta, c.ta.latch&0x00ff|uint16(data)<<8, c.regs[CRA], true)
	case TBL:
		c.writeLatch(&c.tb, c.tb.latch&0xff00|uint16(data), c.regs[CRB], false)
	case TBH:
		c.writeLatch(&c.tb, c.tb.latch&0x00ff|uint16(data)<<8, c.regs[CRB], true)

	case TODTen, TODSec, TODMin, TODHr:
		c.writeTOD(reg, data)

	case SDR:
		c.regs[SDR] = data
		if c.regs[CRA]&craSPOut == craSPOut {
			c.srBits = 16
		}
		c.ports.StoreSDR(data)

	case ICR:
		if data&IntIR == IntIR {
			c.mask |= data & icrMask
		} else {
			c.mask &^= data & icrMask
		}
		c.update()

	case CRA:
		c.writeCR(&c.ta, CRA, data)

	case CRB:
		c.writeCR(&c.tb, CRB, data)
	}
}

const icrMask = 0x1f

func (c *CIA) writeTOD(reg int, data uint8) {
	switch reg {
	case TODTen:
		data &= 0x0f
	case TODSec, TODMin:
		data &= 0x7f
	case TODHr:
		data &= 0x9f
	}

	if c.regs[CRB]&crbAlarm == crbAlarm {
		c.todAlarm[reg-TODTen] = data
	} else {
		c.regs[reg] = data
		switch reg {
		case TODHr:
			c.todStopped = true
		case TODTen:
			c.todStopped = false
		}
	}

	if c.todAlarm == [4]uint8(c.regs[TODTen:TODHr+1]) {
		c.interrupt(IntTOD)
	}
}

// TOD returns the time of day registers in the order tenths, seconds,
// minutes and hours.
func (c *CIA) TOD() [4]uint8 {
	return [4]uint8(c.regs[TODTen : TODHr+1])
}
