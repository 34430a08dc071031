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

package drive

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/fdd"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// Sentinal error patterns.
const (
	UnknownKind = "drive: unknown drive type (%s)"
	InvalidROM  = "drive: %s rom must be %d bytes (not %d)"
	WrongKind   = "drive: snapshot is for a %s not a %s"
)

// Kind of drive unit.
type Kind int

// List of valid Kind values.
const (
	Kind1581 Kind = iota
	KindFD2000
	KindFD4000
	KindCMDHD
)

func (k Kind) String() string {
	switch k {
	case Kind1581:
		return "1581"
	case KindFD2000:
		return "FD2000"
	case KindFD4000:
		return "FD4000"
	case KindCMDHD:
		return "CMDHD"
	}
	return "unknown"
}

// Kinds lists every drive type in the order they are described to the user.
var Kinds = []Kind{Kind1581, KindFD2000, KindFD4000, KindCMDHD}

// ParseKind returns the Kind with the name. The comparison is not case
// sensitive and the FD names can be given without the FD prefix.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds {
		if s == k.String() || "FD"+s == k.String() {
			return k, nil
		}
	}
	return 0, curated.Errorf(UnknownKind, s)
}

// Unit is implemented by every drive type.
type Unit interface {
	fmt.Stringer

	Kind() Kind

	// Number is the device number on the IEC bus
	Number() int

	// memory map of the drive CPU
	Read(addr uint16) uint8
	Peek(addr uint16) uint8
	Write(addr uint16, data uint8)

	// LoadROM copies the drive ROM into the unit. A unit without a ROM reads
	// the high byte of the address in the ROM area
	LoadROM(data []uint8) error

	// Attach a disk image file. Detach() removes the image and flushes any
	// pending writes
	Attach(filename string) error
	Detach()

	Reset()

	// IRQ is the state of the interrupt line of the drive CPU
	IRQ() bool

	// the state of the front panel LEDs
	LEDs() (activity bool, err bool)

	Snapshot(s *snapshot.File)
	Restore(s *snapshot.File) error
}

// Floppy is implemented by the drive units with a floppy mechanism.
type Floppy interface {
	Unit

	// AttachImage attaches an image that has already been opened
	AttachImage(img diskimage.Image) error

	// Mechanism returns the drive mechanism. Used to attach a listener for
	// the head and motor events
	Mechanism() *fdd.Drive
}

// NewUnit creates a drive unit of the specified kind and attaches it to the
// buses. The cmd bus is only used by the CMD-HD and can be nil for the floppy
// units.
func NewUnit(kind Kind, env *environment.Environment, unit int, clk *clocks.Clock,
	iec *iecbus.Bus, cmd *cmdbus.Bus) (Unit, error) {

	switch kind {
	case Kind1581:
		return NewD1581(env, unit, clk, iec)
	case KindFD2000, KindFD4000:
		return NewFD(kind, env, unit, clk, iec)
	case KindCMDHD:
		return NewCMDHD(env, unit, clk, iec, cmd)
	}
	return nil, curated.Errorf(UnknownKind, kind)
}

// memory common to all the drive units
const (
	RAMSize = 0x2000
	ROMSize = 0x8000

	romOrigin = 0x8000
)

// board is the RAM, ROM and interrupt line shared by the floppy units.
type board struct {
	env  *environment.Environment
	kind Kind
	name string
	unit int
	clk  *clocks.Clock
	irq  *clocks.IRQLine
	iec  *iecbus.Bus

	ram [RAMSize]uint8
	rom []uint8
}

func newBoard(env *environment.Environment, kind Kind, unit int, clk *clocks.Clock, iec *iecbus.Bus) board {
	b := board{
		env:  env,
		kind: kind,
		name: fmt.Sprintf("%s_%d", kind, unit),
		unit: unit,
		clk:  clk,
		irq:  clocks.NewIRQLine(),
		iec:  iec,
	}

	// static RAM powers on with indeterminate contents. a reset does not
	// clear it
	if env != nil && env.Random != nil {
		env.Random.Fill(b.ram[:], uint64(unit))
	}

	return b
}

// Kind implements the Unit interface.
func (b *board) Kind() Kind {
	return b.kind
}

// Number implements the Unit interface.
func (b *board) Number() int {
	return b.unit
}

// IRQ implements the Unit interface.
func (b *board) IRQ() bool {
	return b.irq.Active()
}

// LoadROM implements the Unit interface.
func (b *board) LoadROM(data []uint8) error {
	if len(data) != ROMSize {
		return curated.Errorf(InvalidROM, b.kind, ROMSize, len(data))
	}
	b.rom = make([]uint8, ROMSize)
	copy(b.rom, data)
	return nil
}

// readROM returns the ROM or the floating value of the address bus.
func (b *board) readROM(addr uint16) uint8 {
	if b.rom == nil {
		return uint8(addr >> 8)
	}
	return b.rom[addr-romOrigin]
}

// iecPort is the value read from the IEC port of the CIA and VIA drives.
// out is the output of the port and is used for the lines that the drive
// reads back.
func (b *board) iecPort(out uint8) uint8 {
	return (out&0x1a | b.iec.Read()) ^ 0x85
}

// the board module is written before the modules of the chips. the version
// of the module is shared by every unit type.
const (
	snapMajor = 1
	snapMinor = 0
)

func (b *board) snapshot(s *snapshot.File, leds uint8) {
	m := s.Create(b.name, snapMajor, snapMinor)
	m.WriteB(uint8(b.kind))
	m.WriteB(leds)
	m.WriteBA(b.ram[:])
}

func (b *board) restore(s *snapshot.File) (uint8, error) {
	m, err := s.OpenVersion(b.name, snapMajor, snapMinor)
	if err != nil {
		return 0, err
	}
	kind := Kind(m.ReadB())
	leds := m.ReadB()
	var ram [RAMSize]uint8
	m.ReadBA(ram[:])
	if err := m.Err(); err != nil {
		return 0, err
	}
	if kind != b.kind {
		return 0, curated.Errorf(WrongKind, kind, b.kind)
	}
	b.ram = ram
	return leds, nil
}
