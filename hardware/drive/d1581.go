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

	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/chips/cia"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/fdd"
	"github.com/jetsetilly/gopherdrive/hardware/drive/wd1770"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// 1581 CIA port A
const (
	paSide       = 0x01
	paReady      = 0x02
	paMotor      = 0x04
	paDevice     = 0x18
	paPowerLED   = 0x20
	paActLED     = 0x40
	paDiskChange = 0x80
)

// 1581 CIA port B. the other bits are the IEC lines
const pbWriteProtect = 0x40

// D1581 is the 1581 drive. The CIA is at 0x4000 and the WD1770 at 0x6000.
type D1581 struct {
	board

	cia *cia.CIA
	wd  *wd1770.WD1770

	// output of CIA port B on the previous write
	oldPB uint8

	powerLED    bool
	activityLED bool
}

// NewD1581 is the preferred method of initialisation for the D1581 type.
func NewD1581(env *environment.Environment, unit int, clk *clocks.Clock, iec *iecbus.Bus) (*D1581, error) {
	d := &D1581{
		board: newBoard(env, Kind1581, unit, clk, iec),
		oldPB: 0xff,
	}
	if err := iec.Attach(unit, iecbus.FamilyCIAVIA, d); err != nil {
		return nil, err
	}

	d.wd = wd1770.NewWD1770(env, unit-iecbus.FirstUnit, clk)
	d.cia = cia.NewCIA(fmt.Sprintf("%sCIA", d.name), clk, &ciaPorts{d: d}, d.irq)

	return d, nil
}

func (d *D1581) String() string {
	return fmt.Sprintf("%s: %s, %s", d.name, d.cia, d.wd)
}

// CIA returns the interface chip.
func (d *D1581) CIA() *cia.CIA {
	return d.cia
}

// FDC returns the floppy disk controller.
func (d *D1581) FDC() *wd1770.WD1770 {
	return d.wd
}

// Mechanism implements the Floppy interface.
func (d *D1581) Mechanism() *fdd.Drive {
	return d.wd.Drive()
}

// ATN implements the iecbus.ATNListener interface. The ATN line is connected
// to the FLAG input of the CIA through an inverter so the interrupt is on
// the assertion of ATN.
func (d *D1581) ATN(asserted bool) {
	if asserted {
		d.cia.Flag()
	}
}

// Read implements the Unit interface.
func (d *D1581) Read(addr uint16) uint8 {
	return d.read(addr, false)
}

// Peek implements the Unit interface.
func (d *D1581) Peek(addr uint16) uint8 {
	return d.read(addr, true)
}

func (d *D1581) read(addr uint16, peek bool) uint8 {
	switch {
	case addr < 0x4000:
		return d.ram[addr&(RAMSize-1)]
	case addr < 0x6000:
		if peek {
			return d.cia.Peek(int(addr))
		}
		return d.cia.Read(int(addr))
	case addr < 0x8000:
		if peek {
			return d.wd.Peek(addr)
		}
		return d.wd.Read(addr)
	}
	return d.readROM(addr)
}

// Write implements the Unit interface.
func (d *D1581) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x4000:
		d.ram[addr&(RAMSize-1)] = data
	case addr < 0x6000:
		d.cia.Write(int(addr), data)
	case addr < 0x8000:
		d.wd.Write(addr, data)
	}
}

// Reset implements the Unit interface.
func (d *D1581) Reset() {
	d.cia.Reset()
	d.wd.Reset()
}

// Attach implements the Unit interface.
func (d *D1581) Attach(filename string) error {
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

// AttachImage implements the Floppy interface.
func (d *D1581) AttachImage(img diskimage.Image) error {
	d.Detach()
	return d.wd.Attach(img)
}

// Detach implements the Unit interface.
func (d *D1581) Detach() {
	img := d.wd.Drive().Image()
	if img == nil {
		return
	}
	d.wd.Detach()
	closeImage(d.env, d.name, img)
}

// LEDs implements the Unit interface. The 1581 has no error LED. The power
// LED flashes to show an error.
func (d *D1581) LEDs() (bool, bool) {
	return d.activityLED, !d.powerLED
}

// Snapshot implements the Unit interface.
func (d *D1581) Snapshot(s *snapshot.File) {
	var leds uint8
	if d.powerLED {
		leds |= paPowerLED
	}
	if d.activityLED {
		leds |= paActLED
	}
	d.board.snapshot(s, leds)
	d.cia.Snapshot(s)
	d.wd.Snapshot(s)
}

// Restore implements the Unit interface.
func (d *D1581) Restore(s *snapshot.File) error {
	leds, err := d.board.restore(s)
	if err != nil {
		return err
	}
	if err := d.cia.Restore(s); err != nil {
		return err
	}
	if err := d.wd.Restore(s); err != nil {
		return err
	}
	d.powerLED = leds&paPowerLED == paPowerLED
	d.activityLED = leds&paActLED == paActLED
	d.oldPB = d.cia.OutputB()
	return nil
}

type ciaPorts struct {
	d *D1581
}

func (p *ciaPorts) StorePA(v uint8) {
	d := p.d
	d.wd.SetSide(int(^v & paSide))
	d.wd.SetMotor(v&paMotor == 0)
	d.powerLED = v&paPowerLED == paPowerLED
	d.activityLED = v&paActLED == paActLED
}

func (p *ciaPorts) ReadPA() uint8 {
	d := p.d
	v := uint8(0xff) &^ (paReady | paDevice | paDiskChange)

	mech := d.wd.Drive()
	if !mech.Motor() || mech.Image() == nil {
		v |= paReady
	}
	v |= uint8((d.unit-iecbus.FirstUnit)<<3) & paDevice
	if !d.wd.DiskChange() {
		v |= paDiskChange
	}
	return v
}

func (p *ciaPorts) StorePB(v uint8) {
	d := p.d
	if v != d.oldPB {
		d.iec.WriteUnit(d.unit, v)
		d.oldPB = v
	}
}

func (p *ciaPorts) ReadPB() uint8 {
	d := p.d
	v := d.iecPort(d.cia.OutputB()&d.cia.Peek(cia.DDRB)) &^ pbWriteProtect
	if !d.wd.Drive().WriteProtect() {
		v |= pbWriteProtect
	}
	return v
}

// the fast serial port is not connected.
func (p *ciaPorts) StoreSDR(_ uint8) {}

// closeImage closes an image that has been detached from a mechanism. The
// image is only closed if it implements io.Closer.
func closeImage(env *environment.Environment, name string, img diskimage.Image) {
	if c, ok := img.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			logger.Logf(env, name, "closing image: %v", err)
		}
	}
}
