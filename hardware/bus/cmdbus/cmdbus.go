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

package cmdbus

import (
	"fmt"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// Sentinal error patterns.
const (
	InvalidUnit = "cmdbus: invalid unit number (%d)"
)

// Drive units are numbered from FirstUnit.
const (
	FirstUnit = 8
	NumUnits  = 4
)

// Control lines. The lines are active low.
const (
	PREADY = 0x80
	PCLK   = 0x40
	PATN   = 0x20
	PEXT   = 0x10

	// a participant only drives the bus when this bit is set
	Enable = 0x01
)

// PATNListener is implemented by drives that respond to changes of the PATN
// line caused by the host.
type PATNListener interface {
	// PATN is called with the new and old state of the line. a value of true
	// is an asserted line.
	PATN(asserted bool, old bool)
}

type unit struct {
	parallel bool
	listener PATNListener
	data     uint8
	bus      uint8
}

// Bus is the CMD parallel bus.
type Bus struct {
	cpuData uint8
	cpuBus  uint8

	data uint8
	bus  uint8

	units [NumUnits]unit
}

// NewBus is the preferred method of initialisation for the Bus type. Every
// line is pulled up.
func NewBus() *Bus {
	b := &Bus{}
	b.Reset()
	return b
}

// Reset releases every line. Parallel cables and listeners are kept.
func (b *Bus) Reset() {
	b.cpuData = 0xff
	b.cpuBus = 0xff
	for i := range b.units {
		b.units[i].data = 0xff
		b.units[i].bus = 0xff
	}
	b.update()
}

func (b *Bus) String() string {
	return fmt.Sprintf("data=%02x bus=%02x", b.data, b.bus)
}

func index(u int) (int, error) {
	i := u - FirstUnit
	if i < 0 || i >= NumUnits {
		return 0, curated.Errorf(InvalidUnit, u)
	}
	return i, nil
}

// SetParallel connects or disconnects the parallel cable of a unit. The
// listener can be nil.
func (b *Bus) SetParallel(u int, cable bool, listener PATNListener) error {
	i, err := index(u)
	if err != nil {
		return err
	}
	b.units[i].parallel = cable
	b.units[i].listener = listener
	b.update()
	return nil
}

// Parallel returns true if the unit has a parallel cable.
func (b *Bus) Parallel(u int) bool {
	i, err := index(u)
	if err != nil {
		return false
	}
	return b.units[i].parallel
}

// PATN returns true if the PATN line is asserted.
func (b *Bus) PATN() bool {
	return b.bus&PATN == 0
}

// WriteCPU sets the values driven by the host. Drives with a listener are
// told about a change of the PATN line.
func (b *Bus) WriteCPU(bus uint8, data uint8) {
	old := b.PATN()
	b.cpuBus = bus
	b.cpuData = data
	b.update()

	patn := b.PATN()
	if patn == old {
		return
	}
	for i := range b.units {
		if b.units[i].listener != nil {
			b.units[i].listener.PATN(patn, old)
		}
	}
}

// WriteUnit sets the values driven by a drive.
func (b *Bus) WriteUnit(u int, bus uint8, data uint8) {
	i, err := index(u)
	if err != nil {
		return
	}
	b.units[i].bus = bus
	b.units[i].data = data
	b.update()
}

// WriteUnitData changes the data value driven by a drive and leaves the
// control value unchanged.
func (b *Bus) WriteUnitData(u int, data uint8) {
	i, err := index(u)
	if err != nil {
		return
	}
	b.units[i].data = data
	b.update()
}

// WriteUnitBus changes the control value driven by a drive and leaves the
// data value unchanged.
func (b *Bus) WriteUnitBus(u int, bus uint8) {
	i, err := index(u)
	if err != nil {
		return
	}
	b.units[i].bus = bus
	b.update()
}

// UnitBus returns the control value most recently written by a drive.
func (b *Bus) UnitBus(u int) uint8 {
	i, err := index(u)
	if err != nil {
		return 0xff
	}
	return b.units[i].bus
}

// Release every line driven by a drive.
func (b *Bus) Release(u int) {
	b.WriteUnit(u, 0xff, 0xff)
}

func (b *Bus) update() {
	if b.cpuBus&Enable == Enable {
		b.bus = b.cpuBus
		b.data = b.cpuData
	} else {
		b.bus = 0xff
		b.data = 0xff
	}
	for i := range b.units {
		if b.units[i].bus&Enable == Enable && b.units[i].parallel {
			b.bus &= b.units[i].bus
			b.data &= b.units[i].data
		}
	}
}

// Bus returns the state of the control lines.
func (b *Bus) Bus() uint8 {
	return b.bus
}

// Data returns the state of the data lines.
func (b *Bus) Data() uint8 {
	return b.data
}

const (
	snapMajor = 1
	snapMinor = 0
)

// Snapshot writes the values driven by every participant.
func (b *Bus) Snapshot(s *snapshot.File) {
	m := s.Create("CMDBUS", snapMajor, snapMinor)
	m.WriteB(b.cpuData)
	m.WriteB(b.cpuBus)
	for i := range b.units {
		m.WriteB(b.units[i].data)
		m.WriteB(b.units[i].bus)
	}
}

// Restore the values driven by every participant. Listeners are not told
// about the restored state of PATN.
func (b *Bus) Restore(s *snapshot.File) error {
	m, err := s.OpenVersion("CMDBUS", snapMajor, snapMinor)
	if err != nil {
		return err
	}
	cpuData := m.ReadB()
	cpuBus := m.ReadB()
	var data, bus [NumUnits]uint8
	for i := range b.units {
		data[i] = m.ReadB()
		bus[i] = m.ReadB()
	}
	if err := m.Err(); err != nil {
		return err
	}
	b.cpuData = cpuData
	b.cpuBus = cpuBus
	for i := range b.units {
		b.units[i].data = data[i]
		b.units[i].bus = bus[i]
	}
	b.update()
	return nil
}
