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

package cia_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/hardware/chips/cia"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type pins struct {
	pa  uint8
	pb  uint8
	sdr []uint8

	storesA []uint8
	storesB []uint8
}

func (p *pins) StorePA(v uint8) {
	p.storesA = append(p.storesA, v)
}

func (p *pins) StorePB(v uint8) {
	p.storesB = append(p.storesB, v)
}

func (p *pins) ReadPA() uint8 {
	return p.pa
}

func (p *pins) ReadPB() uint8 {
	return p.pb
}

func (p *pins) StoreSDR(v uint8) {
	p.sdr = append(p.sdr, v)
}

func newCIA() (*cia.CIA, *pins, *clocks.Clock, *clocks.IRQLine) {
	clk := clocks.NewClock(clocks.DefaultMHz)
	irq := clocks.NewIRQLine()
	p := &pins{pa: 0xff, pb: 0xff}
	return cia.NewCIA("CIA", clk, p, irq), p, clk, irq
}

func TestReset(t *testing.T) {
	c, p, _, irq := newCIA()

	test.ExpectEquality(t, len(p.storesA), 1)
	test.ExpectEquality(t, p.storesA[0], uint8(0xff))
	test.ExpectEquality(t, p.storesB[0], uint8(0xff))
	test.ExpectEquality(t, c.TA(), uint16(0xffff))
	test.ExpectEquality(t, c.TB(), uint16(0xffff))
	test.ExpectEquality(t, c.Peek(cia.TODHr), uint8(0x01))
	test.ExpectFailure(t, irq.Active())
}

func TestPorts(t *testing.T) {
	c, p, _, _ := newCIA()

	c.Write(cia.DDRA, 0x0f)
	test.ExpectEquality(t, p.storesA[len(p.storesA)-1], uint8(0xf0))
	c.Write(cia.PRA, 0x05)
	test.ExpectEquality(t, p.storesA[len(p.storesA)-1], uint8(0xf5))
	test.ExpectEquality(t, c.OutputA(), uint8(0xf5))

	p.pa = 0x30
	test.ExpectEquality(t, c.Read(cia.PRA), uint8(0x35))

	c.Write(cia.DDRB, 0xff)
	c.Write(cia.PRB, 0x5a)
	test.ExpectEquality(t, p.storesB[len(p.storesB)-1], uint8(0x5a))
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0x5a))
}

func TestInterruptControl(t *testing.T) {
	c, _, _, irq := newCIA()

	c.Write(cia.ICR, cia.IntIR|cia.IntFLAG)
	c.Flag()
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.Peek(cia.ICR), uint8(cia.IntIR|cia.IntFLAG))

	// reading the ICR clears every flag
	test.ExpectEquality(t, c.Read(cia.ICR), uint8(cia.IntIR|cia.IntFLAG))
	test.ExpectEquality(t, c.Read(cia.ICR), uint8(0x00))
	test.ExpectFailure(t, irq.Active())

	// masked flags are still visible in the ICR
	c.Write(cia.ICR, cia.IntFLAG)
	c.Flag()
	test.ExpectFailure(t, irq.Active())
	test.ExpectEquality(t, c.Read(cia.ICR), uint8(cia.IntFLAG))
	test.ExpectEquality(t, irq.Edges(), 1)
}

func TestTimerAContinuous(t *testing.T) {
	c, _, clk, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntTA)

	c.Write(cia.TAL, 0x05)
	c.Write(cia.TAH, 0x00)
	test.ExpectEquality(t, c.TA(), uint16(0x0005))

	c.Write(cia.CRA, 0x01)
	clk.AdvanceTo(5)
	test.ExpectEquality(t, c.TA(), uint16(0x0000))
	test.ExpectFailure(t, irq.Active())

	clk.AdvanceTo(6)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.TA(), uint16(0x0005))
	test.ExpectEquality(t, c.Read(cia.ICR), uint8(cia.IntIR|cia.IntTA))

	clk.AdvanceTo(11)
	test.ExpectFailure(t, irq.Active())
	clk.AdvanceTo(12)
	test.ExpectSuccess(t, irq.Active())

	// stopping the timer freezes the counter
	c.Read(cia.ICR)
	clk.AdvanceTo(14)
	c.Write(cia.CRA, 0x00)
	test.ExpectEquality(t, c.TA(), uint16(0x0003))
	clk.Advance(100)
	test.ExpectEquality(t, c.TA(), uint16(0x0003))
	test.ExpectFailure(t, irq.Active())

	// force load
	c.Write(cia.CRA, 0x10)
	test.ExpectEquality(t, c.TA(), uint16(0x0005))
	test.ExpectEquality(t, c.Peek(cia.CRA), uint8(0x00))
}

func TestTimerAOneShot(t *testing.T) {
	c, _, clk, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntTA)

	// writing the high byte of the latch starts a timer in one shot mode
	c.Write(cia.CRA, 0x08)
	c.Write(cia.TAL, 0x03)
	c.Write(cia.TAH, 0x00)
	test.ExpectEquality(t, c.Peek(cia.CRA), uint8(0x09))

	clk.AdvanceTo(4)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.Peek(cia.CRA), uint8(0x08))
	test.ExpectEquality(t, c.TA(), uint16(0x0003))

	c.Read(cia.ICR)
	clk.Advance(100)
	test.ExpectFailure(t, irq.Active())
	test.ExpectEquality(t, c.TA(), uint16(0x0003))
}

func TestTimerBCountsTimerA(t *testing.T) {
	c, _, clk, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntTB)

	c.Write(cia.TBL, 0x02)
	c.Write(cia.TBH, 0x00)
	c.Write(cia.CRB, 0x41)

	c.Write(cia.TAL, 0x01)
	c.Write(cia.TAH, 0x00)
	c.Write(cia.CRA, 0x01)

	clk.AdvanceTo(2)
	test.ExpectEquality(t, c.TB(), uint16(0x0001))
	clk.AdvanceTo(5)
	test.ExpectEquality(t, c.TB(), uint16(0x0000))
	test.ExpectFailure(t, irq.Active())

	clk.AdvanceTo(6)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.TB(), uint16(0x0002))
	test.ExpectEquality(t, c.Peek(cia.ICR), uint8(cia.IntIR|cia.IntTA|cia.IntTB))
}

func TestTimerOutput(t *testing.T) {
	c, p, clk, _ := newCIA()
	p.pb = 0xff

	c.Write(cia.TAL, 0x03)
	c.Write(cia.TAH, 0x00)
	c.Write(cia.CRA, 0x07)
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0xff))

	clk.AdvanceTo(4)
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0xbf))
	clk.AdvanceTo(8)
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0xff))

	// pulse mode is high for the underflow cycle only
	c.Write(cia.CRA, 0x03)
	clk.AdvanceTo(12)
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0xff))
	clk.Advance(1)
	test.ExpectEquality(t, c.Read(cia.PRB), uint8(0xbf))
}

func TestTOD(t *testing.T) {
	c, _, _, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntTOD)

	c.Write(cia.TODHr, 0x11)
	c.Write(cia.TODMin, 0x22)
	c.Write(cia.TODSec, 0x33)
	c.Write(cia.TODTen, 0x04)
	test.ExpectEquality(t, c.TOD(), [4]uint8{0x04, 0x33, 0x22, 0x11})

	// reading the hours latches the TOD until the tenths are read
	test.ExpectEquality(t, c.Read(cia.TODHr), uint8(0x11))
	c.Write(cia.TODSec, 0x00)
	test.ExpectEquality(t, c.Read(cia.TODSec), uint8(0x33))
	test.ExpectEquality(t, c.Read(cia.TODTen), uint8(0x04))
	test.ExpectEquality(t, c.Read(cia.TODSec), uint8(0x00))

	// alarm
	c.Write(cia.CRB, 0x80)
	c.Write(cia.TODHr, 0x11)
	c.Write(cia.TODMin, 0x22)
	c.Write(cia.TODSec, 0x00)
	c.Write(cia.TODTen, 0x05)
	test.ExpectFailure(t, irq.Active())
	test.ExpectEquality(t, c.TOD(), [4]uint8{0x04, 0x00, 0x22, 0x11})

	c.Write(cia.CRB, 0x00)
	c.Write(cia.TODTen, 0x05)
	test.ExpectSuccess(t, irq.Active())
}

func TestSerialInput(t *testing.T) {
	c, _, _, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntSP)

	v := uint8(0xa5)
	for i := 0; i < 8; i++ {
		c.SetCNT(false)
		c.SetSP(v&(0x80>>i) != 0)
		c.SetCNT(true)
		if i < 7 {
			test.ExpectFailure(t, irq.Active())
		}
	}
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.Peek(cia.SDR), uint8(0xa5))

	// SetSDR loads a complete byte
	c.Read(cia.ICR)
	c.SetSDR(0x3c)
	test.ExpectSuccess(t, irq.Active())
	test.ExpectEquality(t, c.Read(cia.SDR), uint8(0x3c))
}

func TestSerialOutput(t *testing.T) {
	c, p, clk, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntSP)

	c.Write(cia.TAL, 0x01)
	c.Write(cia.TAH, 0x00)
	c.Write(cia.CRA, 0x41)
	c.Write(cia.SDR, 0x55)
	test.ExpectEquality(t, len(p.sdr), 1)
	test.ExpectEquality(t, p.sdr[0], uint8(0x55))

	// a byte takes sixteen underflows of timer A
	clk.AdvanceTo(31)
	test.ExpectFailure(t, irq.Active())
	clk.AdvanceTo(32)
	test.ExpectSuccess(t, irq.Active())

	// SetSDR is ignored in output mode
	c.SetSDR(0x12)
	test.ExpectEquality(t, c.Peek(cia.SDR), uint8(0x55))
}

func TestSnapshot(t *testing.T) {
	c, _, clk, irq := newCIA()
	c.Write(cia.ICR, cia.IntIR|cia.IntTA)
	c.Write(cia.DDRA, 0x3c)
	c.Write(cia.TODMin, 0x45)
	c.Write(cia.TAL, 0x00)
	c.Write(cia.TAH, 0x01)
	c.Write(cia.CRA, 0x01)
	clk.AdvanceTo(0x40)
	test.ExpectEquality(t, c.TA(), uint16(0x00c0))

	s := snapshot.NewFile("TEST")
	c.Snapshot(s)

	c.Write(cia.CRA, 0x00)
	c.Write(cia.DDRA, 0xff)
	c.Write(cia.ICR, cia.IntTA)
	c.Write(cia.TODMin, 0x00)

	test.ExpectSuccess(t, c.Restore(s))
	test.ExpectEquality(t, c.Peek(cia.DDRA), uint8(0x3c))
	test.ExpectEquality(t, c.Peek(cia.CRA), uint8(0x01))
	test.ExpectEquality(t, c.Peek(cia.TODMin), uint8(0x45))
	test.ExpectEquality(t, c.TA(), uint16(0x00c0))

	clk.AdvanceTo(0x100)
	test.ExpectFailure(t, irq.Active())
	clk.AdvanceTo(0x101)
	test.ExpectSuccess(t, irq.Active())

	s.Create("CIA", 2, 0)
	err := c.Restore(s)
	test.ExpectFailure(t, err)
}
