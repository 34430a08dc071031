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

package hardware_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/hardware/govern"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/test"
)

func newSystem(t *testing.T) *hardware.System {
	t.Helper()
	sys, err := hardware.NewSystem(nil)
	test.DemandSuccess(t, err)
	return sys
}

func TestUnits(t *testing.T) {
	sys := newSystem(t)

	_, err := sys.Unit(8)
	test.ExpectSuccess(t, curated.Is(err, hardware.NoUnit))
	_, err = sys.Unit(7)
	test.ExpectSuccess(t, curated.Is(err, iecbus.InvalidUnit))
	_, err = sys.AddUnit(drive.Kind1581, 12)
	test.ExpectSuccess(t, curated.Is(err, iecbus.InvalidUnit))

	_, err = sys.AddUnit(drive.Kind1581, 8)
	test.DemandSuccess(t, err)
	_, err = sys.AddUnit(drive.KindFD2000, 10)
	test.DemandSuccess(t, err)

	u, err := sys.Unit(8)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, u.Kind(), drive.Kind1581)
	test.ExpectEquality(t, u.Number(), 8)
	test.ExpectEquality(t, len(sys.Units()), 2)

	// replacing a unit
	_, err = sys.AddUnit(drive.KindFD4000, 8)
	test.DemandSuccess(t, err)
	u, _ = sys.Unit(8)
	test.ExpectEquality(t, u.Kind(), drive.KindFD4000)
	test.ExpectEquality(t, len(sys.Units()), 2)

	sys.RemoveUnit(10)
	test.ExpectEquality(t, len(sys.Units()), 1)
	test.ExpectSuccess(t, sys.IEC.Attached(8))
	test.ExpectFailure(t, sys.IEC.Attached(10))

	test.ExpectFailure(t, sys.AttachImage(8, "no such image.d81"))
	test.ExpectEquality(t, sys.ImageName(8), "")
	test.ExpectSuccess(t, sys.AttachImage(8, ""))
	test.ExpectFailure(t, sys.AttachImage(9, ""))
}

func TestImageName(t *testing.T) {
	sys := newSystem(t)
	_, err := sys.AddUnit(drive.Kind1581, 8)
	test.DemandSuccess(t, err)

	fn := filepath.Join(t.TempDir(), "work.d81")
	test.DemandSuccess(t, os.WriteFile(fn, make([]uint8, 819200), 0o644))

	test.DemandSuccess(t, sys.AttachImage(8, fn))
	test.ExpectEquality(t, sys.ImageName(8), fn)
	test.ExpectEquality(t, sys.ImageName(9), "")

	test.DemandSuccess(t, sys.AttachImage(8, ""))
	test.ExpectEquality(t, sys.ImageName(8), "")

	test.DemandSuccess(t, sys.AttachImage(8, fn))
	sys.RemoveUnit(8)
	test.ExpectEquality(t, sys.ImageName(8), "")
}

func TestSnapshot(t *testing.T) {
	sys := newSystem(t)
	u, err := sys.AddUnit(drive.Kind1581, 8)
	test.DemandSuccess(t, err)

	u.Write(0x0100, 0x55)
	test.DemandSuccess(t, sys.RunFor(5000, nil))
	s := sys.Snapshot()

	test.DemandSuccess(t, sys.RunFor(5000, nil))
	u.Write(0x0100, 0xaa)
	test.ExpectEquality(t, sys.Clock.Now(), uint64(10000))

	test.DemandSuccess(t, sys.Plumb(s))
	test.ExpectEquality(t, sys.Clock.Now(), uint64(5000))
	test.ExpectEquality(t, u.Read(0x0100), uint8(0x55))

	// a system with different drives can not take the snapshot
	other := newSystem(t)
	_, err = other.AddUnit(drive.KindFD2000, 8)
	test.DemandSuccess(t, err)
	err = other.Plumb(s)
	test.ExpectSuccess(t, curated.Is(err, hardware.UnitMismatch))
	test.ExpectEquality(t, other.Clock.Now(), uint64(0))

	// nor can a system with the drive missing
	other.RemoveUnit(8)
	test.ExpectFailure(t, other.Plumb(s))
}

func TestRun(t *testing.T) {
	sys := newSystem(t)

	var checks int
	err := sys.RunFor(10*hardware.Slice, func(now uint64) (govern.State, error) {
		checks++
		if now >= 3*hardware.Slice {
			return govern.Ending, nil
		}
		return govern.Running, nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, checks, 3)
	test.ExpectEquality(t, sys.Clock.Now(), uint64(3*hardware.Slice))

	checks = 0
	err = sys.Run(func() (govern.State, error) {
		checks++
		switch checks {
		case 1:
			return govern.Paused, nil
		case 2:
			return govern.Running, nil
		}
		return govern.Ending, nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sys.Clock.Now(), uint64(5*hardware.Slice))

	err = sys.Run(func() (govern.State, error) {
		return govern.Rewinding, nil
	})
	test.ExpectFailure(t, err)
}

func TestStep(t *testing.T) {
	sys := newSystem(t)
	test.ExpectEquality(t, sys.Step(), uint64(1))

	var fired bool
	a := sys.Clock.NewAlarm("test", func() { fired = true })
	a.Set(100)
	test.ExpectEquality(t, sys.Step(), uint64(100))
	test.ExpectSuccess(t, fired)
	test.ExpectEquality(t, sys.Step(), uint64(101))
}

func TestRewind(t *testing.T) {
	sys := newSystem(t)
	u, err := sys.AddUnit(drive.Kind1581, 8)
	test.DemandSuccess(t, err)

	r := hardware.NewRewind(sys, 1000)

	for i := range 3 {
		u.Write(0x0200, uint8(i))
		test.DemandSuccess(t, sys.RunFor(1000, nil))
	}
	u.Write(0x0200, 0xff)

	total, pos := r.State()
	test.ExpectEquality(t, total, 4)
	test.ExpectEquality(t, pos, 3)

	// the snapshot at cycle 2000 was taken after the second write
	found, err := r.GotoCycle(2000)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, found)
	test.ExpectEquality(t, sys.Clock.Now(), uint64(2000))
	test.ExpectEquality(t, u.Read(0x0200), uint8(1))

	found, err = r.GotoCycle(1500)
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, found)
	test.ExpectEquality(t, sys.Clock.Now(), uint64(1000))
	test.ExpectEquality(t, u.Read(0x0200), uint8(0))

	_, pos = r.State()
	test.ExpectEquality(t, pos, 1)

	// continuing from an earlier position replaces the later entries
	test.DemandSuccess(t, sys.RunFor(1000, nil))
	total, pos = r.State()
	test.ExpectEquality(t, total, 3)
	test.ExpectEquality(t, pos, 2)

	test.ExpectSuccess(t, r.GotoCurrent())
	test.ExpectEquality(t, sys.Clock.Now(), uint64(2000))
}

func TestSound(t *testing.T) {
	sys := newSystem(t)
	test.ExpectSuccess(t, sys.Sound == nil)

	prefs := preferences.NewDefaultPreferences()
	prefs.SoundEnabled.Set(true)
	env, err := environment.NewEnvironment(clocks.NewClock(clocks.DefaultMHz), prefs)
	test.DemandSuccess(t, err)

	sys, err = hardware.NewSystem(env)
	test.DemandSuccess(t, err)
	test.DemandFailure(t, sys.Sound == nil)

	u, err := sys.AddUnit(drive.Kind1581, 8)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sys.Sound.Len(), 0)

	u.(drive.Floppy).Mechanism().SeekPulse(true)
	test.ExpectInequality(t, sys.Sound.Len(), 0)
}
