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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/prefs"
	"github.com/jetsetilly/gopherdrive/test"
)

func cmpTmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), prefs.WarningBoilerPlate+"\n"+expected)
}

func TestBool(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	var x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("drive.wd1772", &v))
	test.ExpectSuccess(t, dsk.Add("drive.pc8477", &w))
	test.ExpectSuccess(t, dsk.Add("cmdhd.parallel", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("TRUE"))
	test.ExpectFailure(t, x.Set(10))

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "cmdhd.parallel :: true\ndrive.pc8477 :: false\ndrive.wd1772 :: true\n")
}

func TestInt(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	test.ExpectSuccess(t, dsk.Add("cmdhd.fixedsize", &v))
	test.ExpectSuccess(t, v.Set(4096))
	test.ExpectFailure(t, v.Set("not a number"))
	test.ExpectEquality(t, v.Get().(int), 4096)

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "cmdhd.fixedsize :: 4096\n")
}

func TestString(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	test.ExpectSuccess(t, dsk.Add("sound.samples", &v))
	test.ExpectSuccess(t, v.Set("samples/step.wav"))

	v.SetMaxLen(7)
	test.ExpectEquality(t, v.String(), "samples")

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "sound.samples :: samples\n")
}

func TestLoadAndPreserve(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	// first disk saves two values
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	var a prefs.Int
	var b prefs.Float
	test.ExpectSuccess(t, dsk.Add("drive.clockmhz", &a))
	test.ExpectSuccess(t, dsk.Add("sound.volume", &b))
	test.ExpectSuccess(t, a.Set(2))
	test.ExpectSuccess(t, b.Set(0.5))
	test.DemandSuccess(t, dsk.Save())

	// second disk only knows one of the values. the other value should be
	// preserved when saving
	dsk2, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	var c prefs.Int
	test.ExpectSuccess(t, dsk2.Add("drive.clockmhz", &c))
	test.DemandSuccess(t, dsk2.Load(false))
	test.ExpectEquality(t, c.Get().(int), 2)
	test.ExpectSuccess(t, c.Set(4))
	test.DemandSuccess(t, dsk2.Save())

	cmpTmpFile(t, fn, "drive.clockmhz :: 4\nsound.volume :: 0.500\n")
}

func TestNoPrefsFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("drive.wd1772", &v))

	err = dsk.Load(false)
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))

	// save on fail creates the file
	test.ExpectSuccess(t, dsk.Load(true))
	cmpTmpFile(t, fn, "drive.wd1772 :: false\n")
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var post int

	v.SetHookPre(func(value prefs.Value) error {
		if value.(int) < 0 {
			return curated.Errorf("negative")
		}
		return nil
	})
	v.SetHookPost(func(value prefs.Value) error {
		post = value.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, post, 10)
	test.ExpectFailure(t, v.Set(-1))
	test.ExpectEquality(t, v.Get().(int), 10)
}

func TestGeneric(t *testing.T) {
	var w, h int

	g := prefs.NewGeneric(
		func(v prefs.Value) error {
			_, err := fmt.Sscanf(v.(string), "%d,%d", &w, &h)
			return err
		},
		func() prefs.Value {
			return fmt.Sprintf("%d,%d", w, h)
		},
	)

	test.ExpectSuccess(t, g.Set("10,20"))
	test.ExpectEquality(t, w, 10)
	test.ExpectEquality(t, h, 20)
	test.ExpectEquality(t, g.String(), "10,20")
}

func TestCommandLineOverride(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	prefs.PushCommandLineStack("drive.clockmhz::1")
	defer prefs.PopCommandLineStack()

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	test.ExpectSuccess(t, dsk.Add("drive.clockmhz", &v))
	test.ExpectEquality(t, v.Get().(int), 1)

	test.ExpectFailure(t, dsk.Add("drive clock", &v))
}
