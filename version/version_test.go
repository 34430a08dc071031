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

package version_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gopherdrive/test"
	"github.com/jetsetilly/gopherdrive/version"
)

func TestShort(t *testing.T) {
	v, _, _ := version.Version()
	test.ExpectInequality(t, v, "")

	s := version.Short(4)
	test.ExpectEquality(t, len(s), 4)
	test.ExpectSuccess(t, strings.HasPrefix(v, strings.TrimRight(s, " ")))

	s = version.Short(32)
	test.ExpectEquality(t, len(s), 32)
	test.ExpectEquality(t, strings.TrimRight(s, " "), v)
}
