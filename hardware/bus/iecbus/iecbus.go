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

package iecbus

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Sentinal error patterns.
const (
	InvalidUnit = "iecbus: invalid unit number (%d)"
)

// Drive units are numbered from FirstUnit.
const (
	FirstUnit = 8
	NumUnits  = 4
)

// Bits of the host side of the bus. A set bit is a released line.
const (
	CPUATN  = 0x10
	CPUCLK  = 0x40
	CPUDATA = 0x80
)

// Bits of the value returned by Read(). A set bit is a released line.
const (
	DrvDATA = 0x01
	DrvCLK  = 0x04
	DrvATN  = 0x80
)

// Family selects the ATN acknowledge logic of a drive.
type Family int

// List of valid Family values.
const (
	// 1581, FD2000, FD4000 and CMD-HD
	FamilyCIAVIA Family = iota

	// 1541 and compatibles
	Family1541
)

// ATNListener is implemented by drives that want to know when the host
// changes the ATN line.
type ATNListener interface {
	// ATN is called once for every change of the line. asserted is true when
	// the line has been pulled low
	ATN(asserted bool)
}

type unit struct {
	attached bool
	family   Family
	listener ATNListener

	// output of the drive as written by the drive port and the bus lines
	// derived from it
	data uint8
	bus  uint8
}

// Bus is the serial bus connecting the host to the drive units.
type Bus struct {
	perm logger.Permission

	cpuBus  uint8
	cpuPort uint8
	drvPort uint8

	units [NumUnits]unit

	atn Trace
	clk Trace
	dat Trace
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(perm logger.Permission) *Bus {
	if perm == nil {
		perm = logger.Allow
	}
	b := &Bus{
		perm: perm,
		atn:  NewTrace("ATN"),
		clk:  NewTrace("CLK"),
		dat:  NewTrace("DATA"),
	}
	b.Reset()
	return b
}

// Reset releases every line. Attached units remain attached.
func (b *Bus) Reset() {
	b.cpuBus = 0xff
	for i := range b.units {
		b.units[i].data = 0xff
		b.units[i].bus = 0xff
	}
	b.update()
}

func (b *Bus) String() string {
	// drives do not drive ATN so the host side is the state of the line
	lines := b.cpuPort&(CPUCLK|CPUDATA) | b.cpuBus&CPUATN

	s := strings.Builder{}
	for _, l := range []struct {
		name string
		bit  uint8
	}{{"ATN", CPUATN}, {"CLK", CPUCLK}, {"DATA", CPUDATA}} {
		if lines&l.bit == 0 {
			s.WriteString(fmt.Sprintf("%s ", l.name))
		} else {
			s.WriteString(fmt.Sprintf("%s ", strings.Repeat("-", len(l.name))))
		}
	}
	return strings.TrimSpace(s.String())
}

func index(u int) (int, error) {
	i := u - FirstUnit
	if i < 0 || i >= NumUnits {
		return 0, curated.Errorf(InvalidUnit, u)
	}
	return i, nil
}

// Attach a drive unit to the bus. The listener can be nil.
func (b *Bus) Attach(u int, family Family, listener ATNListener) error {
	i, err := index(u)
	if err != nil {
		return err
	}
	if b.units[i].attached {
		logger.Logf(b.perm, "iecbus", "unit %d replaced", u)
	}
	b.units[i] = unit{
		attached: true,
		family:   family,
		listener: listener,
		data:     0xff,
		bus:      0xff,
	}
	b.update()
	return nil
}

// Detach a drive unit from the bus. The lines driven by the unit are
// released.
func (b *Bus) Detach(u int) {
	i, err := index(u)
	if err != nil {
		return
	}
	b.units[i] = unit{data: 0xff, bus: 0xff}
	b.update()
}

// Attached returns true if a unit is attached to the bus.
func (b *Bus) Attached(u int) bool {
	i, err := index(u)
	if err != nil {
		return false
	}
	return b.units[i].attached
}

// WriteCPU is called by the host with the value of its serial port output.
// The host adapter inverts the port so a set bit pulls the line low. Bit 3
// is ATN, bit 4 is CLK and bit 5 is DATA.
func (b *Bus) WriteCPU(v uint8) {
	d := ^v
	b.cpuBus = ((d << 2) & CPUDATA) | ((d << 2) & CPUCLK) | ((d << 1) & CPUATN)

	for i := range b.units {
		if b.units[i].attached {
			b.units[i].bus = driveBus(b.units[i].family, b.units[i].data, b.cpuBus)
		}
	}

	b.update()

	// listeners see the ports as they are after the write
	b.atn.Tick(b.cpuBus&CPUATN == CPUATN)
	if b.atn.Changed() {
		for i := range b.units {
			if b.units[i].attached && b.units[i].listener != nil {
				b.units[i].listener.ATN(b.atn.Lo())
			}
		}
	}
}

// WriteUnit is called by a drive with the value written to its serial port.
// The port is inverted in the same way as the host port. Writes from a unit
// that is not attached are ignored.
func (b *Bus) WriteUnit(u int, v uint8) {
	i, err := index(u)
	if err != nil || !b.units[i].attached {
		return
	}
	b.units[i].data = ^v
	b.units[i].bus = driveBus(b.units[i].family, b.units[i].data, b.cpuBus)
	b.update()
}

// the lines pulled by a drive. bit 1 of the data is DATA out, bit 3 is CLK
// out and bit 4 is the ATN acknowledge. a drive pulls DATA low when ATN is
// asserted and has not been acknowledged.
func driveBus(f Family, data uint8, cpuBus uint8) uint8 {
	switch f {
	case Family1541:
		return ((data << 3) & 0x40) | ((data << 6) & ((^data ^ cpuBus) << 3) & 0x80)
	}
	return ((data << 3) & 0x40) | ((data << 6) & ((data | cpuBus) << 3) & 0x80)
}

func (b *Bus) update() {
	b.cpuPort = b.cpuBus
	for i := range b.units {
		if b.units[i].attached {
			b.cpuPort &= b.units[i].bus
		}
	}
	b.drvPort = ((b.cpuPort >> 4) & DrvCLK) | (b.cpuPort >> 7) | ((b.cpuBus << 3) & DrvATN)

	b.clk.Tick(b.cpuPort&CPUCLK == CPUCLK)
	b.dat.Tick(b.cpuPort&CPUDATA == CPUDATA)
}

// Read returns the state of the bus as seen by the drives. The bits are set
// for lines that are released.
func (b *Bus) Read() uint8 {
	return b.drvPort
}

// ReadCPU returns the state of the bus as seen by the host. The bits are set
// for lines that are released.
func (b *Bus) ReadCPU() uint8 {
	return b.cpuPort
}

// CPUBus returns the lines driven by the host.
func (b *Bus) CPUBus() uint8 {
	return b.cpuBus
}

// DriveBus returns the lines driven by a unit.
func (b *Bus) DriveBus(u int) uint8 {
	i, err := index(u)
	if err != nil {
		return 0xff
	}
	return b.units[i].bus
}

// Traces returns the recent activity of the ATN, CLK and DATA lines.
func (b *Bus) Traces() []*Trace {
	return []*Trace{&b.atn, &b.clk, &b.dat}
}
