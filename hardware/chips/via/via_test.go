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

package via_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/hardware/chips/via"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type store struct {
	v   uint8
	old uint8
	reg int
}

type pins struct {
	via.NullPorts

	pa  uint8
	pb  uint8
	ca2 bool
	cb2 bool

	storesA []store
	storesB []store
}

func (p *pins) StorePA(v uint8, old uint8, reg int) {
	p.storesA = append(p.storesA, store{v: v, old: old, reg: reg})
}

func (p *pins) StorePB(v uint8, old uint8, reg int) {
	p.storesB = append(p.storesB, store{v: v, old: old, reg: reg})
}

func (p *pins) ReadPA(_ int) uint8 {
	return p.pa
}

func (p *pins) ReadPB() uint8 {
	return p.pb
}

func (p *pins) SetCA2(high bool) {
	p.ca2 = high
}

func (p *pins) SetCB2(high bool) {
	p.cb2 = high
}

func newVIA() (*via.VIA, *pins, *clocks.Clock, *clocks.IRQLine) {
	clk := clocks.NewClock(clocks.DefaultMHz)
	irq := clocks.NewIRQLine()
	p := &pins{pa: 0xff, pb: 0xff}
	return via.NewVIA("VIA1", clk, p, irq), p, clk, irq
}

func TestReset(t *testing.T) {
	v, p, _, irq := newVIA()

	test.ExpectSuccess(t, p.ca2)
	test.ExpectSuccess(t, p.cb2)
	test.ExpectFailure(t, irq.Active())
	test.ExpectEquality(t, v.Peek(via.DDRA), uint8(0x00))
	test.ExpectEquality(t, v.Peek(via.T1LL), uint8(0xff))
	test.ExpectEquality(t, v.Peek(via.T1LH), uint8(0xff))
	test.ExpectEquality(t, v.Read(via.IER), uint8(0x80))

	v.Write(via.SR, 0x5a)
	v.Write(via.DDRA, 0xff)
	v.Write(via.PCR, 0x0c)
	test.ExpectFailure(t, p.ca2)

	v.Reset()
	test.ExpectEquality(t, v.Peek(via.SR), uint8(0x5a))
	test.ExpectEquality(t, v.Peek(via.DDRA), uint8(0x00))
	test.ExpectEquality(t, v.PCR(), uint8(0x00))
	test.ExpectSuccess(t, p.ca2)
}

func TestPorts(t *testing.T) {
	v, p, _, _ := newVIA()

	v.Write(via.DDRA, 0x0f)
	test.ExpectEquality(t, len(p.storesA), 1)
	test.ExpectEquality(t, p.storesA[0], store{v: 0xf0, old: 0xff, reg: via.DDRA})

	v.Write(via.PRA, 0x05)
	test.ExpectEquality(t, len(p.storesA), 2)
	test.ExpectEquality(t, p.storesA[1], store{v: 0xf5, old: 0xf0, reg: via.PRA})
	test.ExpectEquality(t, v.OutputA(), uint8(0xf5))

	v.Write(via.PRANHS, 0x06)
	test.ExpectEquality(t, p.storesA[2].reg, via.PRANHS)

	p.pa = 0x3c
	test.ExpectEquality(t, v.Read(via.PRA), uint8(0x3c))
	test.ExpectEquality(t, v.Peek(via.PRA), uint8(0x3c))

	// input bits of port B come from the pins and output bits from the
	// output register
	p.pb = 0xa0
	v.Write(via.DDRB, 0x0f)
	v.Write(via.PRB, 0x03)
	test.ExpectEquality(t, v.Read(via.PRB), uint8(0xa3))
	test.ExpectEquality(t, v.OutputB(), uint8(0xf3))
	test.ExpectEquality(t, p.storesB[len(p.storesB)-1], store{v: 0xf3, old: 0xf0, reg: via.PRB})
}

func TestControlLines(t *testing.T) {
	v, _, _, irq := newVIA()

	// CA1 interrupts on the negative edge by default
	v.Signal(via.CA1, true)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(0x00))
	v.Signal(via.CA1, false)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(via.IntCA1))
	test.ExpectFailure(t, irq.Active())

	v.Write(via.IER, via.IntIRQ|via.IntCA1)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(via.IntIRQ|via.IntCA1))
	test.ExpectSuccess(t, irq.Active())

	// reading port A acknowledges the interrupt
	v.Read(via.PRA)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(0x00))
	test.ExpectFailure(t, irq.Active())

	// positive edge on CB1
	v.Write(via.PCR, 0x10)
	v.Signal(via.CB1, false)
	test.ExpectEquality(t, v.Read(via.IFR)&via.IntCB1, uint8(0x00))
	v.Signal(via.CB1, true)
	test.ExpectEquality(t, v.Read(via.IFR)&via.IntCB1, uint8(via.IntCB1))

	// writing to the IFR clears the flags that are set in the value
	v.Write(via.IFR, via.IntCB1)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(0x00))
}

func TestInterruptEnable(t *testing.T) {
	v, _, _, _ := newVIA()

	v.Write(via.IER, via.IntIRQ|via.IntT1|via.IntCA1)
	test.ExpectEquality(t, v.Read(via.IER), uint8(0xc2))
	v.Write(via.IER, via.IntCA1)
	test.ExpectEquality(t, v.Read(via.IER), uint8(0xc0))
}

func TestCA2Output(t *testing.T) {
	v, p, _, _ := newVIA()

	v.Write(via.PCR, 0x0c)
	test.ExpectFailure(t, p.ca2)
	v.Write(via.PCR, 0x0e)
	test.ExpectSuccess(t, p.ca2)

	// handshake mode. reading port A pulls CA2 low until the next CA1 edge
	v.Write(via.PCR, 0x08)
	test.ExpectSuccess(t, p.ca2)
	v.Read(via.PRA)
	test.ExpectFailure(t, p.ca2)
	test.ExpectFailure(t, v.CA2())
	v.Signal(via.CA1, false)
	test.ExpectSuccess(t, p.ca2)

	// reading without handshake leaves CA2 alone
	v.Read(via.PRANHS)
	test.ExpectSuccess(t, p.ca2)

	// pulse mode returns CA2 high immediately
	v.Write(via.PCR, 0x0a)
	v.Read(via.PRA)
	test.ExpectSuccess(t, p.ca2)

	v.Write(via.PCR, 0xc0)
	test.ExpectFailure(t, p.cb2)
}

func TestTimer1OneShot(t *testing.T) {
	v, _, clk, irq := newVIA()
	v.Write(via.IER, via.IntIRQ|via.IntT1)

	v.Write(via.T1CL, 0x10)
	v.Write(via.T1CH, 0x00)
	clk.Advance(1)
	test.ExpectEquality(t, v.T1(), uint16(0x0010))
	test.ExpectEquality(t, v.Read(via.T1CH), uint8(0x00))

	clk.AdvanceTo(17)
	test.ExpectEquality(t, v.T1(), uint16(0x0000))
	test.ExpectFailure(t, irq.Active())

	clk.AdvanceTo(18)
	test.ExpectEquality(t, v.T1(), uint16(0xffff))
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, v.Peek(via.IFR), uint8(via.IntIRQ|via.IntT1))

	// counter is reloaded from the latch
	clk.Advance(1)
	test.ExpectEquality(t, v.T1(), uint16(0x0010))

	// reading the low byte of the counter acknowledges the interrupt
	v.Read(via.T1CL)
	test.ExpectFailure(t, irq.Active())

	// one shot mode does not interrupt again
	clk.Advance(100)
	test.ExpectEquality(t, v.Peek(via.IFR), uint8(0x00))
	test.ExpectEquality(t, irq.Edges(), 1)
}

func TestTimer1FreeRun(t *testing.T) {
	v, p, clk, irq := newVIA()
	v.Write(via.IER, via.IntIRQ|via.IntT1)
	v.Write(via.ACR, 0xc0)

	v.Write(via.T1LL, 0x04)
	v.Write(via.T1CH, 0x00)

	// PB7 goes low when the timer is started
	p.pb = 0xff
	test.ExpectEquality(t, v.Read(via.PRB), uint8(0x7f))

	clk.AdvanceTo(6)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, v.Read(via.PRB), uint8(0xff))

	v.Write(via.IFR, via.IntT1)
	test.ExpectFailure(t, irq.Active())

	clk.AdvanceTo(12)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, v.Read(via.PRB), uint8(0x7f))
	test.ExpectEquality(t, irq.Edges(), 2)

	// writing the latch does not affect the current period
	v.Write(via.IFR, via.IntT1)
	clk.Advance(1)
	v.Write(via.T1LH, 0x01)
	clk.AdvanceTo(18)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, v.T1(), uint16(0xffff))
	clk.Advance(1)
	test.ExpectEquality(t, v.T1(), uint16(0x0104))
}

func TestTimer2(t *testing.T) {
	v, _, clk, irq := newVIA()
	v.Write(via.IER, via.IntIRQ|via.IntT2)

	v.Write(via.T2CL, 0x05)
	v.Write(via.T2CH, 0x00)
	clk.AdvanceTo(6)
	test.ExpectFailure(t, irq.Active())
	clk.AdvanceTo(7)
	test.ExpectSuccess(t, irq.Active())

	// timer 2 keeps counting down without reloading
	clk.AdvanceTo(8)
	test.ExpectEquality(t, v.T2(), uint16(0xfffe))
	v.Read(via.T2CL)
	test.ExpectFailure(t, irq.Active())

	clk.Advance(0x20000)
	test.ExpectFailure(t, irq.Active())
	test.ExpectEquality(t, irq.Edges(), 1)
}

func TestTimer2PulseCounting(t *testing.T) {
	v, _, clk, irq := newVIA()
	v.Write(via.IER, via.IntIRQ|via.IntT2)
	v.Write(via.ACR, 0x20)

	v.Write(via.T2CL, 0x03)
	v.Write(via.T2CH, 0x00)
	clk.Advance(100)
	test.ExpectEquality(t, v.T2(), uint16(0x0003))

	v.PulsePB6()
	v.PulsePB6()
	test.ExpectEquality(t, v.T2(), uint16(0x0001))
	test.ExpectFailure(t, irq.Active())

	v.PulsePB6()
	test.ExpectEquality(t, v.T2(), uint16(0x0000))
	test.ExpectSuccess(t, irq.Active())

	v.PulsePB6()
	test.ExpectEquality(t, v.T2(), uint16(0xffff))
	test.ExpectEquality(t, irq.Edges(), 1)
}

func TestShiftRegister(t *testing.T) {
	v, _, _, _ := newVIA()

	// shift register disabled
	v.ShiftIn(0x12)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(0x00))

	// shift in under external clock
	v.Write(via.ACR, 0x0c)
	v.ShiftIn(0x34)
	test.ExpectEquality(t, v.Read(via.IFR), uint8(via.IntSR))
	test.ExpectEquality(t, v.Read(via.SR), uint8(0x34))
	test.ExpectEquality(t, v.Read(via.IFR), uint8(0x00))
}

func TestSnapshot(t *testing.T) {
	v, _, clk, irq := newVIA()
	v.Write(via.IER, via.IntIRQ|via.IntT1)
	v.Write(via.DDRA, 0x3c)
	v.Write(via.DDRB, 0xff)
	v.Write(via.PRB, 0x81)
	v.Write(via.PCR, 0x0c)
	v.Write(via.T1CL, 0x00)
	v.Write(via.T1CH, 0x01)
	clk.AdvanceTo(0x50)

	s := snapshot.NewFile("TEST")
	v.Snapshot(s)
	t1 := v.T1()
	test.ExpectEquality(t, t1, uint16(0x00b1))

	v.Write(via.DDRA, 0xff)
	v.Write(via.PCR, 0x00)
	v.Write(via.T1CH, 0x20)
	v.Write(via.IER, via.IntT1)

	test.ExpectSuccess(t, v.Restore(s))
	test.ExpectEquality(t, v.Peek(via.DDRA), uint8(0x3c))
	test.ExpectEquality(t, v.Peek(via.PRB), uint8(0x81))
	test.ExpectEquality(t, v.PCR(), uint8(0x0c))
	test.ExpectFailure(t, v.CA2())
	test.ExpectEquality(t, v.Read(via.IER), uint8(0xc0))
	test.ExpectEquality(t, v.T1(), t1)

	// the restored one shot timer is still armed
	clk.Advance(uint64(t1))
	test.ExpectFailure(t, irq.Active())
	clk.Advance(1)
	test.ExpectSuccess(t, irq.Active())

	// newer major version
	s.Create("VIA1", 2, 0)
	test.ExpectFailure(t, v.Restore(s))
}
