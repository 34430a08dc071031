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

// Package preferences holds the preference values for the drive hardware.
// Values are stored in the global preferences file under the "drive.",
// "cmdhd." and "sound." keys.
package preferences

import (
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/paths"
	"github.com/jetsetilly/gopherdrive/prefs"
)

// Buttons on the CMD-HD front panel. Used as a bit mask for the
// Preferences.Buttons value.
const (
	ButtonWriteProtect = 0x01
	ButtonSwap8        = 0x02
	ButtonSwap9        = 0x04
)

// Preferences defines and collates all the preference values used by the
// drive hardware.
type Preferences struct {
	dsk *prefs.Disk

	// clock speed of the drive CPU in MHz. all timing in the floppy
	// controllers is relative to this value
	ClockMHz prefs.Int

	// use the step rate table of the WD1772 rather than the WD1770
	WD1772 prefs.Bool

	// FD2000/FD4000 controller is a PC8477 rather than the older DP8473
	PC8477 prefs.Bool

	// forced size of SCSI images in 512 byte blocks. zero means the size of
	// the image file is used
	FixedSize prefs.Int

	// the parallel cable is connected between the CMD-HD and the host
	ParallelCable prefs.Bool

	// front panel buttons held at reset. see the Button* constants
	Buttons prefs.Int

	// drive sound recording
	SoundEnabled prefs.Bool
	SoundSamples prefs.String
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	keys := []struct {
		key string
		v   any
	}{
		{"drive.clockmhz", &p.ClockMHz},
		{"drive.wd1772", &p.WD1772},
		{"drive.pc8477", &p.PC8477},
		{"cmdhd.fixedsize", &p.FixedSize},
		{"cmdhd.parallel", &p.ParallelCable},
		{"cmdhd.buttons", &p.Buttons},
		{"sound.enabled", &p.SoundEnabled},
		{"sound.samples", &p.SoundSamples},
	}
	for _, k := range keys {
		if err := p.add(k.key, k.v); err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

func (p *Preferences) add(key string, v any) error {
	switch v := v.(type) {
	case *prefs.Int:
		return p.dsk.Add(key, v)
	case *prefs.Bool:
		return p.dsk.Add(key, v)
	case *prefs.String:
		return p.dsk.Add(key, v)
	}
	return curated.Errorf("preferences: unsupported type for %s", key)
}

// NewDefaultPreferences returns a Preferences instance with default values
// that is not backed by the preferences file. Useful for tests and for
// scripted sessions that should not be affected by the user's settings.
func NewDefaultPreferences() *Preferences {
	p := &Preferences{}
	p.SetDefaults()
	return p
}

// SetDefaults sets the default value for all preferences.
func (p *Preferences) SetDefaults() {
	p.ClockMHz.Set(clocks.DefaultMHz)
	p.WD1772.Set(false)
	p.PC8477.Set(true)
	p.FixedSize.Set(0)
	p.ParallelCable.Set(true)
	p.Buttons.Set(0)
	p.SoundEnabled.Set(false)
	p.SoundSamples.Set("")
}

// Reset all hardware preferences to the default values.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return nil
}

// Load current hardware preferences from disk.
func (p *Preferences) Load() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Load(false)
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		return curated.Errorf("preferences: not backed by a file")
	}
	return p.dsk.Save()
}
