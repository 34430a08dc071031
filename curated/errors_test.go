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

package curated_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/test"
)

const testError = "test error: %s"
const wrapError = "wrap: %v"

func TestDuplicateParts(t *testing.T) {
	e := curated.Errorf("snapshot: %v", curated.Errorf("snapshot: %s", "bad module"))
	test.ExpectEquality(t, e.Error(), "snapshot: bad module")
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectEquality(t, e.Error(), "test error: foo")
	test.ExpectSuccess(t, curated.Is(e, testError))
	test.ExpectFailure(t, curated.Is(e, wrapError))
	test.ExpectSuccess(t, curated.IsAny(e))

	f := curated.Errorf(wrapError, e)
	test.ExpectFailure(t, curated.Is(f, testError))
	test.ExpectSuccess(t, curated.Has(f, testError))
	test.ExpectSuccess(t, curated.Has(f, wrapError))
}

func TestUncurated(t *testing.T) {
	e := errors.New("plain error")
	test.ExpectFailure(t, curated.IsAny(e))
	test.ExpectFailure(t, curated.Is(e, testError))
	test.ExpectFailure(t, curated.Has(e, testError))
	test.ExpectFailure(t, curated.IsAny(nil))
}

func TestUnwrap(t *testing.T) {
	e := curated.Errorf("diskimage: %v", fs.ErrNotExist)
	test.ExpectSuccess(t, errors.Is(e, fs.ErrNotExist))
	test.ExpectFailure(t, curated.Has(e, testError))

	f := curated.Errorf(wrapError, e)
	test.ExpectSuccess(t, errors.Is(f, fs.ErrNotExist))
	test.ExpectEquality(t, f.Error(), "wrap: diskimage: file does not exist")
}
