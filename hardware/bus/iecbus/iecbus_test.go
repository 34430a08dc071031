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

package iecbus_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type listener struct {
	edges []bool

	// if bus is set the drive port is sampled on every edge
	bus   *iecbus.Bus
	ports []uint8
}

func (l *listener) ATN(asserted bool) {
	l.edges = append(l.edges, asserted)
	if l.bus != nil {
		l.ports = append(l.ports, l.bus.Read())
	}
}

// values written by the host and the drives. a set bit pulls the line low
const (
	hostATN  = 0x08
	hostCLK  = 0x10
	hostDATA = 0x20

	driveDATA = 0x02
	driveCLK  = 0x08
	driveATNA = 0x10
)

func TestReleased(t *testing.T) {
	b := iecbus.NewBus(nil)
	test.ExpectEquality(t, b.ReadCPU(), uint8(0xff))
	test.ExpectEquality(t, b.Read(), uint8(iecbus.DrvATN|iecbus.DrvCLK|iecbus.DrvDATA))
	test.ExpectEquality(t, b.String(), "--- --- ----")
}

func TestLines(t *testing.T) {
	b := iecbus.NewBus(nil)
	test.ExpectSuccess(t, b.Attach(8, iecbus.FamilyCIAVIA, nil))

	b.WriteUnit(8, driveDATA)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(0x00))
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUCLK, uint8(iecbus.CPUCLK))
	test.ExpectEquality(t, b.Read(), uint8(iecbus.DrvATN|iecbus.DrvCLK))

	b.WriteCPU(hostCLK)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUCLK, uint8(0x00))
	test.ExpectEquality(t, b.Read(), uint8(iecbus.DrvATN))
	test.ExpectEquality(t, b.String(), "--- CLK DATA")

	b.WriteUnit(8, 0x00)
	b.WriteCPU(0x00)
	test.ExpectEquality(t, b.ReadCPU()&(iecbus.CPUCLK|iecbus.CPUDATA), uint8(iecbus.CPUCLK|iecbus.CPUDATA))

	// writes from units that are not attached have no effect
	b.WriteUnit(9, driveDATA|driveCLK)
	test.ExpectEquality(t, b.ReadCPU()&(iecbus.CPUCLK|iecbus.CPUDATA), uint8(iecbus.CPUCLK|iecbus.CPUDATA))
}

func TestATNEdges(t *testing.T) {
	b := iecbus.NewBus(nil)
	l8 := &listener{}
	l9 := &listener{}
	test.ExpectSuccess(t, b.Attach(8, iecbus.FamilyCIAVIA, l8))
	test.ExpectSuccess(t, b.Attach(9, iecbus.FamilyCIAVIA, l9))

	b.WriteCPU(hostATN)
	b.WriteCPU(hostATN | hostCLK)
	b.WriteCPU(hostATN)
	b.WriteCPU(0x00)
	b.WriteCPU(hostDATA)

	// one call per transition, not per write
	test.ExpectEquality(t, len(l8.edges), 2)
	test.ExpectSuccess(t, l8.edges[0])
	test.ExpectFailure(t, l8.edges[1])
	test.ExpectEquality(t, len(l9.edges), 2)

	b.Detach(9)
	b.WriteCPU(hostATN)
	test.ExpectEquality(t, len(l8.edges), 3)
	test.ExpectEquality(t, len(l9.edges), 2)
}

func TestATNListenerSeesPort(t *testing.T) {
	b := iecbus.NewBus(nil)
	l := &listener{bus: b}
	test.ExpectSuccess(t, b.Attach(8, iecbus.FamilyCIAVIA, l))

	b.WriteCPU(hostATN)
	b.WriteCPU(0x00)
	test.DemandEquality(t, len(l.ports), 2)
	test.ExpectEquality(t, l.ports[0]&iecbus.DrvATN, uint8(0x00))
	test.ExpectEquality(t, l.ports[1]&iecbus.DrvATN, uint8(iecbus.DrvATN))
}

func TestATNAcknowledge(t *testing.T) {
	b := iecbus.NewBus(nil)
	test.ExpectSuccess(t, b.Attach(8, iecbus.FamilyCIAVIA, nil))

	// the 1581 family pulls DATA while ATN is asserted and the acknowledge
	// output is set
	b.WriteUnit(8, driveATNA)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(iecbus.CPUDATA))
	b.WriteCPU(hostATN)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(0x00))
	b.WriteCPU(0x00)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(iecbus.CPUDATA))

	// the 1541 family pulls DATA while ATN is asserted and the acknowledge
	// output does not match
	b.Detach(8)
	test.ExpectSuccess(t, b.Attach(9, iecbus.Family1541, nil))
	b.WriteUnit(9, 0x00)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(iecbus.CPUDATA))
	b.WriteCPU(hostATN)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(0x00))
	b.WriteUnit(9, driveATNA)
	test.ExpectEquality(t, b.ReadCPU()&iecbus.CPUDATA, uint8(iecbus.CPUDATA))
}

func TestInvalidUnit(t *testing.T) {
	b := iecbus.NewBus(nil)
	err := b.Attach(7, iecbus.FamilyCIAVIA, nil)
	test.ExpectSuccess(t, curated.Is(err, iecbus.InvalidUnit))
	err = b.Attach(12, iecbus.FamilyCIAVIA, nil)
	test.ExpectSuccess(t, curated.Is(err, iecbus.InvalidUnit))
	test.ExpectFailure(t, b.Attached(12))
}

func TestTrace(t *testing.T) {
	tr := iecbus.NewTrace("ATN")
	test.ExpectSuccess(t, tr.Hi())
	test.ExpectFailure(t, tr.Changed())

	tr.Tick(false)
	test.ExpectSuccess(t, tr.Falling())
	test.ExpectSuccess(t, tr.Lo())
	tr.Tick(false)
	test.ExpectFailure(t, tr.Changed())
	tr.Tick(true)
	test.ExpectSuccess(t, tr.Rising())

	a := tr.Activity()
	test.ExpectEquality(t, len(a), 64)
	test.ExpectFailure(t, a[61])
	test.ExpectFailure(t, a[62])
	test.ExpectSuccess(t, a[63])
}

func TestSnapshot(t *testing.T) {
	b := iecbus.NewBus(nil)
	l := &listener{}
	test.DemandSuccess(t, b.Attach(8, iecbus.FamilyCIAVIA, l))

	b.WriteCPU(hostATN)
	b.WriteUnit(8, driveCLK)
	cpu := b.ReadCPU()
	drv := b.Read()

	s := snapshot.NewFile("TEST")
	b.Snapshot(s)

	b.WriteCPU(0)
	b.WriteUnit(8, 0)
	test.ExpectEquality(t, len(l.edges), 2)

	test.ExpectSuccess(t, b.Restore(s))
	test.ExpectEquality(t, b.ReadCPU(), cpu)
	test.ExpectEquality(t, b.Read(), drv)
	test.ExpectEquality(t, len(l.edges), 2)

	// the next change of ATN is seen by the listener
	b.WriteCPU(0)
	test.ExpectEquality(t, len(l.edges), 3)
	test.ExpectFailure(t, l.edges[2])
}
