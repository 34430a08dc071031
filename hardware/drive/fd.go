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

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/chips/via"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/fdd"
	"github.com/jetsetilly/gopherdrive/hardware/drive/pc8477"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// UnsupportedImage is returned when an image is attached to a drive that
// cannot read the media.
const UnsupportedImage = "drive: %s cannot read %s images"

// FD VIA port A. the activity LED is driven by the motor output of the first
// drive select of the disk controller
const (
	faDevice   = 0x18
	faErrorLED = 0x40
)

// FD is the FD2000 or FD4000 drive. The VIA is at 0x4000 and the disk
// controller at 0x4e00.
type FD struct {
	board

	via *via.VIA
	fdc *pc8477.PC8477

	// output of VIA port B on the previous write
	oldPB uint8

	activityLED bool
}

// NewFD is the preferred method of initialisation for the FD type. The kind
// must be either KindFD2000 or KindFD4000.
func NewFD(kind Kind, env *environment.Environment, unit int, clk *clocks.Clock, iec *iecbus.Bus) (*FD, error) {
	if kind != KindFD2000 && kind != KindFD4000 {
		return nil, curated.Errorf(UnknownKind, kind)
	}

	d := &FD{
		board: newBoard(env, kind, unit, clk, iec),
		oldPB: 0xff,
	}
	if err := iec.Attach(unit, iecbus.FamilyCIAVIA, d); err != nil {
		return nil, err
	}

	d.fdc = pc8477.NewPC8477(env, unit-iecbus.FirstUnit, clk)
	d.fdc.SetMotorOutput(0, func(on bool) {
		d.activityLED = on
	})
	d.via = via.NewVIA(fmt.Sprintf("%sVIA", d.name), clk, &fdPorts{d: d}, d.irq)

	return d, nil
}

func (d *FD) String() string {
	return fmt.Sprintf("%s: %s, %s", d.name, d.via, d.fdc)
}

// VIA returns the interface chip.
func (d *FD) VIA() *via.VIA {
	return d.via
}

// FDC returns the floppy disk controller.
func (d *FD) FDC() *pc8477.PC8477 {
	return d.fdc
}

// Mechanism implements the Floppy interface.
func (d *FD) Mechanism() *fdd.Drive {
	return d.fdc.Drive()
}

// ATN implements the iecbus.ATNListener interface.
func (d *FD) ATN(asserted bool) {
	d.via.Signal(via.CA2, asserted)
}

// Read implements the Unit interface.
func (d *FD) Read(addr uint16) uint8 {
	return d.read(addr, false)
}

// Peek implements the Unit interface.
func (d *FD) Peek(addr uint16) uint8 {
	return d.read(addr, true)
}

func (d *FD) read(addr uint16, peek bool) uint8 {
	switch {
	case addr < 0x4000:
		return d.ram[addr&(RAMSize-1)]
	case addr < 0x4e00:
		if peek {
			return d.via.Peek(int(addr))
		}
		return d.via.Read(int(addr))
	case addr < 0x5000:
		if peek {
			return d.fdc.Peek()
		}
		return d.fdc.Read(addr)
	case addr < romOrigin:
		return uint8(addr >> 8)
	}
	return d.readROM(addr)
}

// Write implements the Unit interface.
func (d *FD) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x4000:
		d.ram[addr&(RAMSize-1)] = data
	case addr < 0x4e00:
		d.via.Write(int(addr), data)
	case addr < 0x5000:
		d.fdc.Write(addr, data)
	}
}

// Reset implements the Unit interface.
func (d *FD) Reset() {
	d.via.Reset()
	d.fdc.Reset()

	// the VIA does not call StorePB on reset but the port pins are now
	// inputs
	d.storePB(d.via.OutputB())
}

func (d *FD) storePB(v uint8) {
	if v != d.oldPB {
		d.iec.WriteUnit(d.unit, v)
		d.oldPB = v
	}
}

// Attach implements the Unit interface.
func (d *FD) Attach(filename string) error {
	img, err := diskimage.Open(filename, false)
	if err != nil {
		return err
	}
	if err := d.AttachImage(img); err != nil {
		img.Close()
		return err
	}
	return nil
}

// AttachImage implements the Floppy interface. The FD2000 mechanism cannot
// read the extra density media of a D4M image.
func (d *FD) AttachImage(img diskimage.Image) error {
	if d.kind == KindFD2000 && img.Type() == diskimage.TypeD4M {
		return curated.Errorf(UnsupportedImage, d.kind, img.Type())
	}
	d.Detach()
	return d.fdc.Attach(img)
}

// Detach implements the Unit interface.
func (d *FD) Detach() {
	img := d.fdc.Drive().Image()
	if img == nil {
		return
	}
	d.fdc.Detach()
	closeImage(d.env, d.name, img)
}

// LEDs implements the Unit interface.
func (d *FD) LEDs() (bool, bool) {
	return d.activityLED, d.via.OutputA()&faErrorLED == faErrorLED
}

// Snapshot implements the Unit interface.
func (d *FD) Snapshot(s *snapshot.File) {
	var leds uint8
	if d.activityLED {
		leds |= 0x01
	}
	d.board.snapshot(s, leds)
	d.via.Snapshot(s)
	d.fdc.Snapshot(s)
}

// Restore implements the Unit interface.
func (d *FD) Restore(s *snapshot.File) error {
	leds, err := d.board.restore(s)
	if err != nil {
		return err
	}
	if err := d.via.Restore(s); err != nil {
		return err
	}
	if err := d.fdc.Restore(s); err != nil {
		return err
	}
	d.activityLED = leds&0x01 == 0x01
	d.oldPB = d.via.OutputB()
	return nil
}

type fdPorts struct {
	via.NullPorts
	d *FD
}

func (p *fdPorts) ReadPA(_ int) uint8 {
	d := p.d
	v := uint8(0xff) &^ faDevice
	v |= uint8((d.unit-iecbus.FirstUnit)<<3) & faDevice
	return v & d.via.OutputA()
}

func (p *fdPorts) StorePB(v uint8, _ uint8, _ int) {
	p.d.storePB(v)
}

func (p *fdPorts) ReadPB() uint8 {
	d := p.d
	return d.iecPort(d.via.OutputB() & d.via.Peek(via.DDRB))
}
