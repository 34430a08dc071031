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
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/hardware/clocks"
)

// Ports connects the VIA to the lines of the drive. The register argument
// is the register access that caused the call.
type Ports interface {
	// StorePA is called when a write to PRA, PRA_NHS or DDRA changes the port
	// A output. Bits that are inputs are set. The previous output is also
	// supplied
	StorePA(v uint8, old uint8, reg int)

	// ReadPA returns the state of the port A pins
	ReadPA(reg int) uint8

	// StorePB is called when a write to PRB or DDRB changes the port B output
	StorePB(v uint8, old uint8, reg int)

	// ReadPB returns the state of the port B pins. Bits that are outputs are
	// replaced with the output register
	ReadPB() uint8

	// SetCA2 and SetCB2 are called when the VIA drives the CA2 or CB2 line
	SetCA2(high bool)
	SetCB2(high bool)

	// StoreSR is called when the CPU writes to the shift register
	StoreSR(v uint8)
}

// NullPorts implements the Ports interface for a VIA that is not connected to
// anything. It can be embedded to implement only part of the interface.
type NullPorts struct{}

// StorePA implements the Ports interface.
func (NullPorts) StorePA(_ uint8, _ uint8, _ int) {}

// ReadPA implements the Ports interface.
func (NullPorts) ReadPA(_ int) uint8 { return 0xff }

// StorePB implements the Ports interface.
func (NullPorts) StorePB(_ uint8, _ uint8, _ int) {}

// ReadPB implements the Ports interface.
func (NullPorts) ReadPB() uint8 { return 0xff }

// SetCA2 implements the Ports interface.
func (NullPorts) SetCA2(_ bool) {}

// SetCB2 implements the Ports interface.
func (NullPorts) SetCB2(_ bool) {}

// StoreSR implements the Ports interface.
func (NullPorts) StoreSR(_ uint8) {}

// VIA is a single 6522.
type VIA struct {
	name  string
	clk   *clocks.Clock
	ports Ports
	irq   clocks.Interrupt

	regs [NumRegisters]uint8
	ifr  uint8
	ier  uint8

	// the current state of the interrupt output
	irqActive bool

	// output of port A and B on the previous write
	oldPA uint8
	oldPB uint8

	// the last value read from each port
	ila uint8
	ilb uint8

	ca2 bool
	cb2 bool

	// timer 1. the counter reaches 0xffff on cycle t1Under and is then
	// reloaded from the latch. armed is true until a one-shot underflow has
	// raised the interrupt
	t1Under uint64
	t1Armed bool
	t1Alarm *clocks.Alarm
	pb7     bool

	// timer 2. the counter in timed mode is calculated from t2Under. in
	// pulse counting mode the counter is t2Count
	t2Under uint64
	t2Count uint16
	t2Armed bool
	t2Alarm *clocks.Alarm

	// shift register bit count
	shiftState uint8
}

// NewVIA is the preferred method of initialisation for the VIA type. The name
// is used as the interrupt source, as the name of the timer alarms and as
// the snapshot module name. The irq argument can be nil.
func NewVIA(name string, clk *clocks.Clock, ports Ports, irq clocks.Interrupt) *VIA {
	v := &VIA{
		name:  name,
		clk:   clk,
		ports: ports,
		irq:   irq,
	}
	v.t1Alarm = clk.NewAlarm(fmt.Sprintf("%sT1", name), v.t1Underflow)
	v.t2Alarm = clk.NewAlarm(fmt.Sprintf("%sT2", name), v.t2Underflow)
	v.Reset()
	return v
}

// Name returns the name of the VIA.
func (v *VIA) Name() string {
	return v.name
}

func (v *VIA) String() string {
	s := strings.Builder{}
	s.WriteString(v.name)
	s.WriteString(":")
	for i := range v.regs {
		switch i {
		case T1CL, T1CH, T2CL, T2CH, IFR, IER, PRANHS:
			continue
		}
		s.WriteString(fmt.Sprintf(" %s=%02x", RegisterNames[i], v.regs[i]))
	}
	s.WriteString(fmt.Sprintf(" T1=%04x T2=%04x IFR=%02x IER=%02x", v.T1(), v.T2(), v.ifr, v.ier))
	return s.String()
}

// Reset the VIA. The timer latches are set to 0xffff and the shift register
// keeps its value. Timer interrupts are disabled.
func (v *VIA) Reset() {
	for i := PRB; i <= DDRA; i++ {
		v.regs[i] = 0x00
	}
	for i := T1CL; i <= T2CH; i++ {
		v.regs[i] = 0xff
	}
	for i := ACR; i < NumRegisters; i++ {
		v.regs[i] = 0x00
	}

	now := v.clk.Now()
	v.t1Under = now + 0xffff + 1
	v.t1Armed = false
	v.t1Alarm.Unset()
	v.t2Under = now + 0xffff + 1
	v.t2Count = 0xffff
	v.t2Armed = false
	v.t2Alarm.Unset()
	v.pb7 = false
	v.shiftState = 0

	v.ifr = 0
	v.ier = 0
	v.update()

	v.oldPA = 0xff
	v.oldPB = 0xff

	v.ca2 = true
	v.cb2 = true
	v.ports.SetCA2(v.ca2)
	v.ports.SetCB2(v.cb2)
}

// update the interrupt output.
func (v *VIA) update() {
	active := v.ifr&v.ier&0x7f != 0
	if active == v.irqActive {
		return
	}
	v.irqActive = active
	if v.irq != nil {
		v.irq.SetIRQ(v.name, active)
	}
}

// IRQ returns the state of the interrupt output.
func (v *VIA) IRQ() bool {
	return v.irqActive
}

// PCR returns the peripheral control register.
func (v *VIA) PCR() uint8 {
	return v.regs[PCR]
}

// ACR returns the auxiliary control register.
func (v *VIA) ACR() uint8 {
	return v.regs[ACR]
}

// OutputA returns the value driven on port A. Bits that are inputs are set.
func (v *VIA) OutputA() uint8 {
	return v.regs[PRA] | ^v.regs[DDRA]
}

// OutputB returns the value driven on port B. Bits that are inputs are set.
func (v *VIA) OutputB() uint8 {
	return v.regs[PRB] | ^v.regs[DDRB]
}

// CA2 returns the state of the CA2 output.
func (v *VIA) CA2() bool {
	return v.ca2
}

// CB2 returns the state of the CB2 output.
func (v *VIA) CB2() bool {
	return v.cb2
}

func (v *VIA) setCA2(high bool) {
	v.ca2 = high
	v.ports.SetCA2(high)
}

func (v *VIA) setCB2(high bool) {
	v.cb2 = high
	v.ports.SetCB2(high)
}

// Signal an edge on one of the control lines. Rising is true for a positive
// edge.
func (v *VIA) Signal(line Line, rising bool) {
	pcr := v.regs[PCR]
	switch line {
	case CA1:
		if rising != (pcr&0x01 == 0x01) {
			return
		}
		if ca2Toggle(pcr) && !v.ca2 {
			v.setCA2(true)
		}
		v.ifr |= IntCA1
		v.update()
	case CA2:
		// CA2 is an output
		if pcr&0x08 == 0x08 {
			return
		}
		if rising == (pcr&0x04 == 0x04) {
			v.ifr |= IntCA2
			v.update()
		}
	case CB1:
		if rising != (pcr&0x10 == 0x10) {
			return
		}
		if ca2Toggle(pcr>>4) && !v.cb2 {
			v.setCB2(true)
		}
		v.ifr |= IntCB1
		v.update()
	case CB2:
		if pcr&0x80 == 0x80 {
			return
		}
		if rising == (pcr&0x40 == 0x40) {
			v.ifr |= IntCB2
			v.update()
		}
	}
}

// ShiftIn loads the shift register with a complete byte shifted in under
// external control. Ignored unless the shift register is in an input mode.
func (v *VIA) ShiftIn(data uint8) {
	acr := v.regs[ACR]
	if acr&acrShiftOut == 0 && acr&acrShiftMode != 0 {
		v.regs[SR] = data
		v.ifr |= IntSR
		v.update()
	}
}

// PulsePB6 counts a pulse on PB6. Only has an effect when timer 2 is in pulse
// counting mode.
func (v *VIA) PulsePB6() {
	if v.regs[ACR]&acrPulseT2 == 0 {
		return
	}
	v.t2Count--
	if v.t2Count == 0 && v.t2Armed {
		v.t2Armed = false
		v.ifr |= IntT2
		v.update()
	}
}

// Read a register. Reads have side effects on the interrupt flags and the
// handshake lines.
func (v *VIA) Read(reg int) uint8 {
	reg &= 0x0f
	pcr := v.regs[PCR]

	switch reg {
	case PRA:
		v.ifr &^= IntCA1
		if !ca2IndependentInput(pcr) {
			v.ifr &^= IntCA2
		}
		if ca2Handshake(pcr) {
			v.setCA2(false)
			if ca2Pulse(pcr) {
				v.setCA2(true)
			}
		}
		v.update()
		fallthrough

	case PRANHS:
		v.ila = v.ports.ReadPA(reg)
		return v.ila

	case PRB:
		v.ifr &^= IntCB1
		if !ca2IndependentInput(pcr >> 4) {
			v.ifr &^= IntCB2
		}
		v.update()
		v.ilb = v.ports.ReadPB()
		return v.portB(v.ilb)

	case T1CL:
		v.ifr &^= IntT1
		v.update()
		return uint8(v.T1())

	case T1CH:
		return uint8(v.T1() >> 8)

	case T2CL:
		v.ifr &^= IntT2
		v.update()
		return uint8(v.T2())

	case T2CH:
		return uint8(v.T2() >> 8)

	case SR:
		if v.ifr&IntSR == IntSR {
			v.ifr &^= IntSR
			v.update()
			v.shiftState = 0
		}
		return v.regs[SR]

	case IFR:
		return v.readIFR()

	case IER:
		return v.ier | 0x80
	}

	return v.regs[reg]
}

// Peek returns the value of a register without side effects. Port reads
// return the value of the output registers merged with the last value read
// from the port.
func (v *VIA) Peek(reg int) uint8 {
	reg &= 0x0f
	switch reg {
	case PRA, PRANHS:
		return v.ila
	case PRB:
		return v.portB(v.ilb)
	case T1CL:
		return uint8(v.T1())
	case T1CH:
		return uint8(v.T1() >> 8)
	case T2CL:
		return uint8(v.T2())
	case T2CH:
		return uint8(v.T2() >> 8)
	case IFR:
		return v.readIFR()
	case IER:
		return v.ier | 0x80
	}
	return v.regs[reg]
}

func (v *VIA) readIFR() uint8 {
	f := v.ifr
	if v.ifr&v.ier&0x7f != 0 {
		f |= IntIRQ
	}
	return f
}

// merge the pins of port B with the output register and the timer 1 output.
func (v *VIA) portB(pins uint8) uint8 {
	b := pins&^v.regs[DDRB] | v.regs[PRB]&v.regs[DDRB]
	if v.regs[ACR]&acrPB7 == acrPB7 {
		b &= 0x7f
		if v.pb7 {
			b |= 0x80
		}
	}
	return b
}

// Write a register.
func (v *VIA) Write(reg int, data uint8) {
	reg &= 0x0f
	pcr := v.regs[PCR]

	switch reg {
	case PRA:
		v.ifr &^= IntCA1
		if !ca2IndependentInput(pcr) {
			v.ifr &^= IntCA2
		}
		if ca2Handshake(pcr) {
			v.setCA2(false)
			if ca2Pulse(pcr) {
				v.setCA2(true)
			}
		}
		v.update()
		fallthrough

	case PRANHS:
		v.regs[PRA] = data
		v.storePA(reg)

	case DDRA:
		v.regs[DDRA] = data
		v.storePA(reg)

	case PRB:
		v.ifr &^= IntCB1
		if !ca2IndependentInput(pcr >> 4) {
			v.ifr &^= IntCB2
		}
		if ca2Handshake(pcr >> 4) {
			v.setCB2(false)
			if ca2Pulse(pcr >> 4) {
				v.setCB2(true)
			}
		}
		v.update()
		v.regs[PRB] = data
		v.storePB(reg)

	case DDRB:
		v.regs[DDRB] = data
		v.storePB(reg)

	case SR:
		v.regs[SR] = data
		if v.ifr&IntSR == IntSR {
			v.ifr &^= IntSR
			v.update()
			v.shiftState = 0
		}
		v.ports.StoreSR(data)

	case T1CL, T1LL:
		v.catchUpT1()
		v.regs[T1LL] = data
		v.relatchT1()

	case T1LH:
		// does not clear the T1 interrupt
		v.catchUpT1()
		v.regs[T1LH] = data
		v.relatchT1()

	case T1CH:
		v.regs[T1LH] = data
		v.startT1()

	case T2CL:
		// the low byte of the timer 2 latch
		v.regs[T2CL] = data

	case T2CH:
		v.regs[T2CH] = data
		v.startT2()

	case IFR:
		v.ifr &^= data
		v.update()

	case IER:
		if data&IntIRQ == IntIRQ {
			v.ier |= data & 0x7f
		} else {
			v.ier &^= data
		}
		v.update()

	case ACR:
		v.writeACR(data)

	case PCR:
		switch data & 0x0e {
		case 0x0c:
			v.setCA2(false)
		default:
			v.setCA2(true)
		}
		switch data & 0xe0 {
		case 0xc0:
			v.setCB2(false)
		default:
			v.setCB2(true)
		}
		v.regs[PCR] = data

	default:
		v.regs[reg] = data
	}
}

func (v *VIA) storePA(reg int) {
	out := v.OutputA()
	v.ports.StorePA(out, v.oldPA, reg)
	v.oldPA = out
}

func (v *VIA) storePB(reg int) {
	out := v.OutputB()
	v.ports.StorePB(out, v.oldPB, reg)
	v.oldPB = out
}
