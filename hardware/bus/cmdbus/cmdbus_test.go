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

package cmdbus_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type patn struct {
	calls [][2]bool
}

func (p *patn) PATN(asserted bool, old bool) {
	p.calls = append(p.calls, [2]bool{asserted, old})
}

func TestPullUp(t *testing.T) {
	b := cmdbus.NewBus()
	test.ExpectEquality(t, b.Bus(), uint8(0xff))
	test.ExpectEquality(t, b.Data(), uint8(0xff))
	test.ExpectFailure(t, b.PATN())
}

func TestAggregate(t *testing.T) {
	b := cmdbus.NewBus()
	test.ExpectSuccess(t, b.SetParallel(8, true, nil))
	test.ExpectSuccess(t, b.SetParallel(9, true, nil))

	b.WriteCPU(0xff, 0xff)
	b.WriteUnit(8, 0xfd, 0x12)
	b.WriteUnit(9, 0xfb, 0x34)
	test.ExpectEquality(t, b.Bus(), uint8(0xf9))
	test.ExpectEquality(t, b.Data(), uint8(0x10))

	// the host only drives the bus when bit 0 is set
	b.WriteCPU(0x00, 0x00)
	test.ExpectEquality(t, b.Bus(), uint8(0xf9))
	test.ExpectEquality(t, b.Data(), uint8(0x10))

	// nor do the drives
	b.WriteUnit(9, 0x00, 0x00)
	test.ExpectEquality(t, b.Bus(), uint8(0xfd))
	test.ExpectEquality(t, b.Data(), uint8(0x12))

	b.Release(8)
	test.ExpectEquality(t, b.Bus(), uint8(0xff))
	test.ExpectEquality(t, b.Data(), uint8(0xff))
}

func TestParallelCable(t *testing.T) {
	b := cmdbus.NewBus()
	b.WriteUnit(10, 0x7f, 0x00)
	test.ExpectEquality(t, b.Bus(), uint8(0xff))

	test.ExpectSuccess(t, b.SetParallel(10, true, nil))
	test.ExpectEquality(t, b.Bus(), uint8(0x7f))
	test.ExpectEquality(t, b.Data(), uint8(0x00))

	test.ExpectSuccess(t, b.SetParallel(10, false, nil))
	test.ExpectEquality(t, b.Bus(), uint8(0xff))

	err := b.SetParallel(12, true, nil)
	test.ExpectSuccess(t, curated.Is(err, cmdbus.InvalidUnit))
}

func TestPATN(t *testing.T) {
	b := cmdbus.NewBus()
	l := &patn{}
	test.ExpectSuccess(t, b.SetParallel(8, true, l))

	b.WriteCPU(0xdf, 0xff)
	test.ExpectSuccess(t, b.PATN())
	b.WriteCPU(0xdf, 0x00)
	b.WriteCPU(0xff, 0x00)
	test.ExpectFailure(t, b.PATN())

	test.ExpectEquality(t, len(l.calls), 2)
	test.ExpectEquality(t, l.calls[0], [2]bool{true, false})
	test.ExpectEquality(t, l.calls[1], [2]bool{false, true})
}

func TestSnapshot(t *testing.T) {
	b := cmdbus.NewBus()
	test.ExpectSuccess(t, b.SetParallel(8, true, nil))
	b.WriteUnit(8, 0x3f, 0xaa)

	s := snapshot.NewFile("TEST")
	b.Snapshot(s)
	b.Release(8)
	test.ExpectEquality(t, b.Bus(), uint8(0xff))

	test.ExpectSuccess(t, b.Restore(s))
	test.ExpectEquality(t, b.Bus(), uint8(0x3f))
	test.ExpectEquality(t, b.Data(), uint8(0xaa))
	test.ExpectEquality(t, b.UnitBus(8), uint8(0x3f))
}
