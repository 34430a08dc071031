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

package hardware

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/drivesound"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Sentinal error patterns.
const (
	NoUnit = "hardware: no drive attached as unit %d"
)

// System is the main container for the emulated components of the drive
// emulation.
type System struct {
	Env *environment.Environment

	Clock *clocks.Clock
	IEC   *iecbus.Bus
	CMD   *cmdbus.Bus

	units [iecbus.NumUnits]drive.Unit

	// filenames of the images attached with AttachImage()
	images [iecbus.NumUnits]string

	// recorder of the mechanical noises of the floppy drives. nil if sound
	// is not enabled in the preferences
	Sound *drivesound.Recorder

	// the last value written to the serial port of the host
	hostPort uint8
}

// NewSystem creates a new System and everything associated with the hardware.
// The clock speed is taken from the preferences of the environment. If env is
// nil a new environment is created with default preferences.
func NewSystem(env *environment.Environment) (*System, error) {
	if env == nil {
		return NewSystemWithPreferences(preferences.NewDefaultPreferences())
	}
	return newSystem(env, env.Prefs)
}

// NewSystemWithPreferences creates a new System with a main emulation
// environment using the supplied preferences. The random number generator of
// the environment is driven by the clock of the new system.
func NewSystemWithPreferences(prefs *preferences.Preferences) (*System, error) {
	return newSystem(nil, prefs)
}

func newSystem(env *environment.Environment, prefs *preferences.Preferences) (*System, error) {
	mhz := clocks.DefaultMHz
	if prefs != nil {
		mhz = prefs.ClockMHz.Get().(int)
	}

	sys := &System{
		Clock:    clocks.NewClock(mhz),
		hostPort: 0x00,
	}

	if env == nil {
		var err error
		env, err = environment.NewEnvironment(sys.Clock, prefs)
		if err != nil {
			return nil, err
		}
	}
	sys.Env = env

	sys.IEC = iecbus.NewBus(env)
	sys.CMD = cmdbus.NewBus()

	if env.Prefs != nil && env.Prefs.SoundEnabled.Get().(bool) {
		sys.Sound = drivesound.NewRecorder(env, sys.Clock)
	}

	return sys, nil
}

func (sys *System) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s [%s]", sys.Clock, sys.IEC))
	for _, u := range sys.units {
		if u != nil {
			s.WriteString("\n")
			s.WriteString(u.String())
		}
	}
	return s.String()
}

func slot(unit int) (int, error) {
	i := unit - iecbus.FirstUnit
	if i < 0 || i >= iecbus.NumUnits {
		return 0, curated.Errorf(iecbus.InvalidUnit, unit)
	}
	return i, nil
}

// AddUnit creates a drive unit of the specified kind and attaches it to the
// buses. An existing unit with the same number is removed first.
func (sys *System) AddUnit(kind drive.Kind, unit int) (drive.Unit, error) {
	i, err := slot(unit)
	if err != nil {
		return nil, err
	}
	sys.RemoveUnit(unit)

	u, err := drive.NewUnit(kind, sys.Env, unit, sys.Clock, sys.IEC, sys.CMD)
	if err != nil {
		return nil, err
	}
	u.Reset()
	sys.units[i] = u

	if f, ok := u.(drive.Floppy); ok && sys.Sound != nil {
		f.Mechanism().SetListener(sys.Sound)
	}

	logger.Logf(sys.Env, "hardware", "%s added as unit %d", kind, unit)
	return u, nil
}

// RemoveUnit detaches the disk image of a unit and removes the unit from the
// buses.
func (sys *System) RemoveUnit(unit int) {
	i, err := slot(unit)
	if err != nil || sys.units[i] == nil {
		return
	}
	sys.units[i].Detach()
	sys.units[i] = nil
	sys.images[i] = ""
	sys.IEC.Detach(unit)
	sys.CMD.Release(unit)
	_ = sys.CMD.SetParallel(unit, false, nil)
}

// Unit returns the drive attached as the unit number.
func (sys *System) Unit(unit int) (drive.Unit, error) {
	i, err := slot(unit)
	if err != nil {
		return nil, err
	}
	if sys.units[i] == nil {
		return nil, curated.Errorf(NoUnit, unit)
	}
	return sys.units[i], nil
}

// Units returns every attached drive in unit order.
func (sys *System) Units() []drive.Unit {
	var l []drive.Unit
	for _, u := range sys.units {
		if u != nil {
			l = append(l, u)
		}
	}
	return l
}

// AttachImage inserts the disk image (given by filename) into the drive and
// resets the drive. An empty filename removes the disk.
func (sys *System) AttachImage(unit int, filename string) error {
	u, err := sys.Unit(unit)
	if err != nil {
		return err
	}
	if filename == "" {
		u.Detach()
	} else if err := u.Attach(filename); err != nil {
		return err
	}
	i, _ := slot(unit)
	sys.images[i] = filename
	u.Reset()
	return nil
}

// ImageName returns the filename of the image attached to the unit. The empty
// string is returned if no image was attached with AttachImage().
func (sys *System) ImageName(unit int) string {
	i, err := slot(unit)
	if err != nil {
		return ""
	}
	return sys.images[i]
}

// Reset every drive unit. The host releases the serial bus.
func (sys *System) Reset() {
	sys.WriteHost(0x00)
	for _, u := range sys.units {
		if u != nil {
			u.Reset()
		}
	}
}

// WriteHost is called with the value the host writes to its serial port. See
// iecbus.Bus.WriteCPU() for the meaning of the bits.
func (sys *System) WriteHost(v uint8) {
	sys.hostPort = v
	sys.IEC.WriteCPU(v)
}

// ReadHost returns the state of the serial bus as seen by the host.
func (sys *System) ReadHost() uint8 {
	return sys.IEC.ReadCPU()
}

// IRQ returns true if the interrupt line of any unit is active.
func (sys *System) IRQ() bool {
	for _, u := range sys.units {
		if u != nil && u.IRQ() {
			return true
		}
	}
	return false
}
