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

package logger_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/test"
)

func TestLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Write(w)
	test.ExpectEquality(t, w.String(), "")

	log.Log(logger.Allow, "fdd", "image attached")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "fdd: image attached\n")

	// clear the buffer before continuing, makes comparisons easier to manage
	w.Reset()

	log.Log(logger.Allow, "wd1770", "restore")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "fdd: image attached\nwd1770: restore\n")

	// asking for too many entries in a Tail() should be okay
	w.Reset()
	log.Tail(w, 100)
	test.ExpectEquality(t, w.String(), "fdd: image attached\nwd1770: restore\n")

	// asking for fewer entries is okay too
	w.Reset()
	log.Tail(w, 1)
	test.ExpectEquality(t, w.String(), "wd1770: restore\n")

	// and no entries
	w.Reset()
	log.Tail(w, 0)
	test.ExpectEquality(t, w.String(), "")
}

func TestRepeat(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "scsi", "no image for target 0")
	log.Log(logger.Allow, "scsi", "no image for target 0")
	log.Log(logger.Allow, "scsi", "no image for target 0")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "scsi: no image for target 0 (repeat x3)\n")
}

func TestMaximum(t *testing.T) {
	log := logger.NewLogger(2)
	w := &strings.Builder{}

	log.Log(logger.Allow, "a", 1)
	log.Log(logger.Allow, "b", 2)
	log.Log(logger.Allow, "c", 3)
	log.Write(w)
	test.ExpectEquality(t, w.String(), "b: 2\nc: 3\n")
}

type prohibitLogging struct {
	allow bool
}

func (p prohibitLogging) AllowLogging() bool {
	return p.allow
}

func TestPermissions(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(prohibitLogging{allow: false}, "tag", "detail")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "")

	log.Log(prohibitLogging{allow: true}, "tag", "detail")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: detail\n")

	w.Reset()
	log.Clear()
	log.Logf(logger.Deny, "tag", "unit %d", 8)
	log.Logf(logger.Allow, "tag", "unit %d", 9)
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: unit 9\n")
}

type stringerTest struct{}

func (_ stringerTest) String() string {
	return "stringer test"
}

func TestDetailTypes(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	err := errors.New("test error")
	log.Log(logger.Allow, "tag", err)
	log.Logf(logger.Allow, "tag", "wrapped: %v", err)
	log.Log(logger.Allow, "tag", stringerTest{})
	log.Log(logger.Allow, "tag", 100)
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: test error\ntag: wrapped: test error\ntag: stringer test\ntag: 100\n")
}

func TestEcho(t *testing.T) {
	log := logger.NewLogger(100)
	w := &test.CompareWriter{}

	log.Log(logger.Allow, "tag", "before echo")
	log.SetEcho(w, true)
	test.ExpectSuccess(t, w.Compare("tag: before echo\n"))

	w.Clear()
	log.Log(logger.Allow, "tag", "after echo")
	test.ExpectSuccess(t, w.Compare("tag: after echo\n"))
}
