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

package cmdhd

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/chips/via"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/i8255a"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Sentinal error patterns.
const (
	InvalidROM = "cmdhd: rom must be %d bytes (not %d)"
	NotDHD     = "cmdhd: not a dhd image (%s)"
)

// ROMSize is the size of the controller ROM.
const ROMSize = 0x4000

const ramSize = 0x10000

// buttons held at reset are released after this many cycles. a warm reset
// skips the hardware checks of the ROM so the delay is shorter
const (
	warmResetCycles = 500000
	coldResetCycles = 8000000
)

// an image with fewer blocks than this has not had HDDOS installed
const installSize = 144

// the maximum size reported by READ CAPACITY
const limitImageSize = 0xfffffe

// bits of the LED latch at 0x8fxx. a clear bit is a lit LED
const (
	ledActivity = 0x01
	ledError    = 0x02

	// RAM above 0x8000 can be written when this bit is set
	ledRAMWrite = 0x20
)

// bits of PPI port B that are connected to the front panel buttons. a clear
// bit is a pressed button
const (
	pbSwap8        = 0x02
	pbSwap9        = 0x04
	pbWriteProtect = 0x08
	pbButtons      = pbSwap8 | pbSwap9 | pbWriteProtect
)

// bits of PPI port C
const (
	pcROM     = 0x01
	pcRAMMap  = 0x02
	pcSCSIATN = 0x04
	pcSCSIRST = 0x08
	pcSCSIBSY = 0x10
	pcPEXT    = 0x20
	pcPCLK    = 0x40
	pcPREADY  = 0x80
)

// the value of the PPI inputs after reset. pull-ups and pull-downs on the
// board
var resetInputs = [3]uint8{0xff, 0x7f, 0xe3}

// Controller is the CMD-HD controller board.
type Controller struct {
	perm  logger.Permission
	prefs *preferences.Preferences
	clk   *clocks.Clock

	name string
	unit int

	iec *iecbus.Bus
	cmd *cmdbus.Bus

	via9  *via.VIA
	via10 *via.VIA
	ppi   *i8255a.PPI
	scsi  *scsi.Target
	rtc   *rtc

	ram [ramSize]uint8
	rom [ROMSize]uint8

	leds uint8

	// the values at the pins of the PPI ports
	in  [3]uint8
	out [3]uint8

	scsiDir  bool
	preadyFF bool

	// first block of the HD partition area. invalidBaseLBA if no signature
	// has been found
	baseLBA uint32

	// size of the .dhd image in blocks. grows as blocks are written
	imageSize uint32

	// last block transferred on the first unit, as a track on a 200 track
	// scale
	track int

	// buttons held down. see the preferences.Button* values
	buttons    int
	resetAlarm *clocks.Alarm

	parallel    bool
	installMode bool

	// files opened by Attach()
	files []io.Closer

	// number of times an image has been attached since reset
	numAttached int
}

// NewController is the preferred method of initialisation for the Controller
// type. The unit is the device number of the drive on the IEC bus. The
// controller attaches itself to both buses.
func NewController(perm logger.Permission, unit int, clk *clocks.Clock, irq clocks.Interrupt,
	iec *iecbus.Bus, cmd *cmdbus.Bus, prefs *preferences.Preferences) (*Controller, error) {

	if perm == nil {
		perm = logger.Allow
	}
	if prefs == nil {
		prefs = preferences.NewDefaultPreferences()
	}

	c := &Controller{
		perm:     perm,
		prefs:    prefs,
		clk:      clk,
		name:     fmt.Sprintf("CMDHD%d", unit-iecbus.FirstUnit),
		unit:     unit,
		iec:      iec,
		cmd:      cmd,
		baseLBA:  invalidBaseLBA,
		in:       resetInputs,
		out:      [3]uint8{0xff, 0xff, 0xff},
		buttons:  prefs.Buttons.Get().(int),
		parallel: prefs.ParallelCable.Get().(bool),
	}

	if err := iec.Attach(unit, iecbus.FamilyCIAVIA, c); err != nil {
		return nil, err
	}
	if err := cmd.SetParallel(unit, c.parallel, c); err != nil {
		iec.Detach(unit)
		return nil, err
	}

	c.scsi = scsi.NewTarget(perm, c.name+"SCSI")
	c.scsi.User = &hooks{c: c}
	c.scsi.LimitImageSize = limitImageSize
	c.scsi.MaxImageSize = uint32(prefs.FixedSize.Get().(int))

	c.via9 = via.NewVIA(c.name+"VIA9", clk, &via9Ports{c: c}, irq)
	c.via10 = via.NewVIA(c.name+"VIA10", clk, &via10Ports{c: c}, irq)
	c.ppi = i8255a.NewPPI(&ppiPorts{c: c})
	c.rtc = newRTC(c.name+"RTC", time.Now)
	c.resetAlarm = clk.NewAlarm(c.name+"EXEC", c.releaseButtons)

	return c, nil
}

func (c *Controller) String() string {
	return fmt.Sprintf("%s: leds=%02x pc=%02x base=%s size=%d", c.name, c.leds, c.out[i8255a.PortC],
		lbaString(c.baseLBA), c.imageSize)
}

// Name returns the name of the controller. Also used as the snapshot module
// name.
func (c *Controller) Name() string {
	return c.name
}

// Unit returns the device number of the drive.
func (c *Controller) Unit() int {
	return c.unit
}

// LoadROM copies the data into the controller ROM.
func (c *Controller) LoadROM(data []uint8) error {
	if len(data) != ROMSize {
		return curated.Errorf(InvalidROM, ROMSize, len(data))
	}
	copy(c.rom[:], data)
	return nil
}

// SCSI returns the SCSI target of the controller.
func (c *Controller) SCSI() *scsi.Target {
	return c.scsi
}

// VIA9 returns the VIA connected to the SCSI bus.
func (c *Controller) VIA9() *via.VIA {
	return c.via9
}

// VIA10 returns the VIA connected to the IEC bus.
func (c *Controller) VIA10() *via.VIA {
	return c.via10
}

// PPI returns the 8255A.
func (c *Controller) PPI() *i8255a.PPI {
	return c.ppi
}

// LEDs returns the state of the activity and error LEDs. True is lit.
func (c *Controller) LEDs() (activity bool, err bool) {
	return c.leds&ledActivity == 0, c.leds&ledError == 0
}

// Track returns the position of the last block transferred on the first unit
// as a value between 0 and 199.
func (c *Controller) Track() int {
	return c.track
}

// InstallMode returns true if the controller was reset without an installed
// HDDOS.
func (c *Controller) InstallMode() bool {
	return c.installMode
}

// Press front panel buttons. The buttons are applied at the next reset and
// are released by the reset alarm.
func (c *Controller) Press(buttons int) {
	c.buttons = buttons
}

// Buttons returns the buttons currently held.
func (c *Controller) Buttons() int {
	return c.buttons
}

// SetParallelCable connects or disconnects the parallel cable.
func (c *Controller) SetParallelCable(cable bool) {
	c.parallel = cable
	_ = c.cmd.SetParallel(c.unit, cable, c)
}

// ParallelCable returns true if the parallel cable is connected.
func (c *Controller) ParallelCable() bool {
	return c.parallel
}

// UpdateFixedSize copies the fixed size preference to the SCSI target.
func (c *Controller) UpdateFixedSize() {
	c.scsi.MaxImageSize = uint32(c.prefs.FixedSize.Get().(int))
}

// Reset the controller board.
func (c *Controller) Reset() {
	c.via9.Reset()
	c.via10.Reset()

	c.in = resetInputs
	c.scsiDir = false

	if hasSignature(c.ram[0x9000:]) {
		c.resetAlarm.Set(c.clk.Now() + warmResetCycles)
	} else {
		c.resetAlarm.Set(c.clk.Now() + coldResetCycles)
	}

	c.findBaseLBA()

	if c.buttons&preferences.ButtonWriteProtect == preferences.ButtonWriteProtect {
		c.in[i8255a.PortB] &^= pbWriteProtect
	}
	if c.buttons&preferences.ButtonSwap8 == preferences.ButtonSwap8 {
		c.in[i8255a.PortB] &^= pbSwap8
	}
	if c.buttons&preferences.ButtonSwap9 == preferences.ButtonSwap9 {
		c.in[i8255a.PortB] &^= pbSwap9
	}

	c.installMode = false
	if c.imageSize < installSize {
		if len(c.scsi.Units()) == 1 {
			c.in[i8255a.PortB] &^= pbSwap8 | pbSwap9
			c.installMode = true
			logger.Logf(c.perm, c.name, "image size too small. starting in installation mode")
			if c.parallel {
				c.SetParallelCable(false)
				logger.Logf(c.perm, c.name, "parallel cable of drive %d removed until HDDOS is installed", c.unit)
			}
		} else if c.scsi.Detach(0) {
			logger.Logf(c.perm, c.name, "image on SCSI ID 0 too small. removed")
		}
	}

	c.cmd.Release(c.unit)
	c.scsi.Reset()
	c.ppi.Reset()

	c.numAttached = 1
}

// releaseButtons is called by the reset alarm.
func (c *Controller) releaseButtons() {
	c.in[i8255a.PortB] |= pbButtons
	c.buttons = 0
}

// ATN implements the iecbus.ATNListener interface.
func (c *Controller) ATN(asserted bool) {
	c.via10.Signal(via.CA1, asserted)
}

// PATN implements the cmdbus.PATNListener interface.
func (c *Controller) PATN(asserted bool, old bool) {
	c.patnChanged(asserted, old)
}

// the PREADY flip-flop is cleared by PC7 and set by a rising edge of PATN.
// the output of the flip-flop is NANDed with PATN to drive PREADY. PREADY is
// also pulled low through an open collector buffer driven by PC7
func (c *Controller) patnChanged(patn bool, old bool) {
	pc7 := c.out[i8255a.PortC]&pcPREADY == pcPREADY

	if !pc7 {
		c.preadyFF = false
	} else if patn && !old {
		c.preadyFF = true
	}

	release := !(patn && c.preadyFF) && pc7

	bus := c.cmd.UnitBus(c.unit) &^ cmdbus.PREADY
	if release {
		bus |= cmdbus.PREADY
	}
	c.cmd.WriteUnitBus(c.unit, bus)
}

// the address in RAM of the 0x4000 to 0x7fff window. the ROM expects to find
// RAM at 0xc000 when PC1 is clear
func (c *Controller) window(addr uint16) uint16 {
	if c.out[i8255a.PortC]&pcRAMMap == pcRAMMap {
		return addr&0x3fff | 0x4000
	}
	return addr&0x3fff | 0xc000
}

// Read returns the value at an address of the drive CPU's memory map.
func (c *Controller) Read(addr uint16) uint8 {
	return c.read(addr, false)
}

// Peek returns the value at an address without side effects.
func (c *Controller) Peek(addr uint16) uint8 {
	return c.read(addr, true)
}

func (c *Controller) read(addr uint16, peek bool) uint8 {
	switch addr >> 12 {
	case 0x4, 0x5, 0x6, 0x7:
		return c.ram[c.window(addr)]

	case 0x8:
		switch (addr >> 8) & 0x0f {
		case 0x0, 0x1:
			if peek {
				return c.via10.Peek(int(addr))
			}
			return c.via10.Read(int(addr))
		case 0x4, 0x5:
			if peek {
				return c.via9.Peek(int(addr))
			}
			return c.via9.Read(int(addr))
		case 0x8, 0x9:
			if peek {
				return c.ppi.Peek(int(addr))
			}
			return c.ppi.Read(int(addr))
		case 0xc, 0xd:
			return c.rtc.read(int(addr))
		}

	case 0xc, 0xd, 0xe, 0xf:
		if c.out[i8255a.PortC]&pcROM == pcROM {
			return c.rom[addr&0x3fff]
		}
	}

	return c.ram[addr]
}

// Write a value to an address of the drive CPU's memory map.
func (c *Controller) Write(addr uint16, data uint8) {
	switch addr >> 12 {
	case 0x0, 0x1, 0x2, 0x3:
		c.ram[addr] = data

	case 0x4, 0x5, 0x6, 0x7:
		c.ram[c.window(addr)] = data

	case 0x8:
		switch (addr >> 8) & 0x0f {
		case 0x0, 0x1:
			c.via10.Write(int(addr), data)
		case 0x4, 0x5:
			c.via9.Write(int(addr), data)
		case 0x8, 0x9:
			c.ppi.Write(int(addr), data)
		case 0xc, 0xd:
			c.rtc.write(int(addr), data)
		case 0xe:
			c.ram[addr] = data
		case 0xf:
			// page 0x8f is RAM but every write also goes to the LED latch
			c.leds = data
			c.ram[addr] = data
		default:
			if c.leds&ledRAMWrite == ledRAMWrite {
				c.ram[addr] = data
			}
		}

	default:
		if c.leds&ledRAMWrite == ledRAMWrite {
			c.ram[addr] = data
		}
	}
}
