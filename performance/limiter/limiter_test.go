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

package limiter_test

import (
	"testing"
	"time"

	"github.com/jetsetilly/gopherdrive/performance/limiter"
	"github.com/jetsetilly/gopherdrive/test"
)

func TestLimiter(t *testing.T) {
	lim := limiter.NewLimiter(2, 1000)
	test.ExpectEquality(t, lim.Period(), 500*time.Microsecond)

	lim.SetLimit(1, 2000)
	test.ExpectEquality(t, lim.Period(), 2*time.Millisecond)

	// a first wait starts the schedule
	test.ExpectSuccess(t, lim.HasWaited())
	test.ExpectFailure(t, lim.HasWaited())

	lim.SetLimit(2, 100000)
	start := time.Now()
	lim.Wait()
	lim.Wait()
	test.ExpectSuccess(t, time.Since(start) >= 50*time.Millisecond)
}
