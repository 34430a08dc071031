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

// Package limiter provides a rough and ready way of keeping the emulated clock
// in step with real time.
//
// A new Limiter can be created with the clock speed of the emulated hardware
// and the number of cycles in each slice:
//
//	lim := limiter.NewLimiter(2, 1000)
//
// The emulation loop can then be stalled with the Wait() function. For
// example:
//
//	for {
//		lim.Wait()
//		runSlice()
//	}
package limiter

import (
	"time"
)

// Limiter will stall until the real time duration of a slice has elapsed.
type Limiter struct {
	perSlice time.Duration

	// the time the next slice is due
	next time.Time
}

// NewLimiter is the preferred method of initialisation for the Limiter type.
func NewLimiter(mhz int, slice uint64) *Limiter {
	lim := &Limiter{}
	lim.SetLimit(mhz, slice)
	return lim
}

// SetLimit changes the rate at which the Limiter waits.
func (lim *Limiter) SetLimit(mhz int, slice uint64) {
	if mhz <= 0 {
		lim.perSlice = 0
	} else {
		lim.perSlice = time.Duration(float64(slice) / float64(mhz) * float64(time.Microsecond))
	}
	lim.next = time.Time{}
}

// Period returns the real time duration of a single slice.
func (lim *Limiter) Period() time.Duration {
	return lim.perSlice
}

// Wait will block until the slice is due. If the emulation has fallen
// behind by more than a slice the schedule is restarted rather than
// allowing the emulation to race ahead.
func (lim *Limiter) Wait() {
	now := time.Now()
	if lim.next.IsZero() || now.Sub(lim.next) > lim.perSlice {
		lim.next = now.Add(lim.perSlice)
		return
	}
	if d := lim.next.Sub(now); d > 0 {
		time.Sleep(d)
	}
	lim.next = lim.next.Add(lim.perSlice)
}

// HasWaited returns true if the slice is already due and false if it is
// still yet to happen. The schedule is advanced if the slice is due.
func (lim *Limiter) HasWaited() bool {
	if lim.next.IsZero() || !time.Now().Before(lim.next) {
		lim.next = time.Now().Add(lim.perSlice)
		return true
	}
	return false
}
