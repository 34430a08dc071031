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

package i8255a_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/hardware/drive/i8255a"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type pins struct {
	in     [3]uint8
	out    [3]uint8
	writes int
	peeks  int
}

func (p *pins) Input(port int, peek bool) uint8 {
	if peek {
		p.peeks++
	}
	return p.in[port]
}

func (p *pins) Output(port int, v uint8) {
	p.out[port] = v
	p.writes++
}

func TestReset(t *testing.T) {
	p := &pins{in: [3]uint8{0xff, 0x7f, 0xe3}}
	ppi := i8255a.NewPPI(p)

	test.ExpectEquality(t, ppi.Read(i8255a.Control), uint8(0x9b))

	// every port is an input so the pins carry the input values
	test.ExpectEquality(t, p.out, [3]uint8{0xff, 0x7f, 0xe3})
	test.ExpectEquality(t, ppi.Read(i8255a.PortB), uint8(0x7f))

	// writes to an input port are latched but do not reach the pins
	ppi.Write(i8255a.PortA, 0x12)
	test.ExpectEquality(t, p.out[i8255a.PortA], uint8(0xff))
	test.ExpectEquality(t, ppi.Latch(i8255a.PortA), uint8(0x12))
}

func TestModeSet(t *testing.T) {
	p := &pins{in: [3]uint8{0x55, 0x66, 0xa5}}
	ppi := i8255a.NewPPI(p)
	ppi.Write(i8255a.PortC, 0xff)

	// port A output, port B input, port C upper input and lower output
	ppi.Write(i8255a.Control, 0x8a)
	test.ExpectEquality(t, ppi.Latch(i8255a.PortC), uint8(0x00))
	test.ExpectEquality(t, p.out[i8255a.PortA], uint8(0x00))
	test.ExpectEquality(t, p.out[i8255a.PortC], uint8(0xa0))

	ppi.Write(i8255a.PortA, 0x3c)
	test.ExpectEquality(t, p.out[i8255a.PortA], uint8(0x3c))
	test.ExpectEquality(t, ppi.Read(i8255a.PortA), uint8(0x3c))

	ppi.Write(i8255a.PortC, 0x0f)
	test.ExpectEquality(t, p.out[i8255a.PortC], uint8(0xaf))
	test.ExpectEquality(t, ppi.Read(i8255a.PortC), uint8(0xaf))
	test.ExpectEquality(t, ppi.Read(i8255a.PortB), uint8(0x66))
}

func TestBitSetReset(t *testing.T) {
	p := &pins{}
	ppi := i8255a.NewPPI(p)
	ppi.Write(i8255a.Control, 0x80)

	// set bit 7 then bit 2
	ppi.Write(i8255a.Control, 0x0f)
	ppi.Write(i8255a.Control, 0x05)
	test.ExpectEquality(t, ppi.Latch(i8255a.PortC), uint8(0x84))
	test.ExpectEquality(t, p.out[i8255a.PortC], uint8(0x84))

	// reset bit 7
	ppi.Write(i8255a.Control, 0x0e)
	test.ExpectEquality(t, p.out[i8255a.PortC], uint8(0x04))

	// the control word is unchanged by bit set/reset
	test.ExpectEquality(t, ppi.Read(i8255a.Control), uint8(0x80))
}

func TestPeek(t *testing.T) {
	p := &pins{in: [3]uint8{0x01, 0x02, 0x03}}
	ppi := i8255a.NewPPI(p)
	peeks := p.peeks
	test.ExpectEquality(t, ppi.Peek(i8255a.PortA), uint8(0x01))
	test.ExpectEquality(t, p.peeks, peeks+1)
	test.ExpectEquality(t, ppi.Read(i8255a.PortA), uint8(0x01))
	test.ExpectEquality(t, p.peeks, peeks+1)
}

func TestSnapshot(t *testing.T) {
	p := &pins{}
	ppi := i8255a.NewPPI(p)
	ppi.Write(i8255a.Control, 0x90)
	ppi.Write(i8255a.PortB, 0x42)
	ppi.Write(i8255a.PortC, 0x81)

	s := snapshot.NewFile("ppi test")
	m := s.Create("PPI", 1, 0)
	ppi.Snapshot(m)

	q := &pins{}
	cp := i8255a.NewPPI(q)
	writes := q.writes
	m, _, _, err := s.Open("PPI")
	test.DemandSuccess(t, err)
	cp.Restore(m)
	test.DemandSuccess(t, m.Err() == nil)
	test.ExpectEquality(t, cp.String(), ppi.String())
	test.ExpectEquality(t, q.writes, writes)

	// a short module leaves the PPI unchanged
	before := cp.String()
	m = s.Create("PPI", 1, 0)
	m.WriteB(0x80)
	m, _, _, err = s.Open("PPI")
	test.DemandSuccess(t, err)
	cp.Restore(m)
	test.ExpectFailure(t, m.Err())
	test.ExpectEquality(t, cp.String(), before)
}
