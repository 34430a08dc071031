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

package clocks

import (
	"cmp"
	"fmt"
	"slices"
)

// DefaultMHz is the clock speed of the drive CPU in the 1581 and the CMD
// drives.
const DefaultMHz = 2

// Clock is the host clock. The zero value is not usable; use NewClock().
type Clock struct {
	now uint64
	mhz int

	// all alarms created with NewAlarm(). pending alarms are those with the
	// pending flag set
	alarms []*Alarm
}

// NewClock is the preferred method of initialisation for the Clock type.
func NewClock(mhz int) *Clock {
	if mhz <= 0 {
		mhz = DefaultMHz
	}
	return &Clock{mhz: mhz}
}

func (c *Clock) String() string {
	return fmt.Sprintf("%d cycles @ %dMHz", c.now, c.mhz)
}

// Now returns the current cycle count.
func (c *Clock) Now() uint64 {
	return c.now
}

// MHz returns the clock frequency in MHz.
func (c *Clock) MHz() int {
	return c.mhz
}

// Advance moves the clock forward by the number of cycles, dispatching any
// alarms that fall due on the way.
func (c *Clock) Advance(cycles uint64) {
	c.AdvanceTo(c.now + cycles)
}

// AdvanceTo moves the clock forward to the specified cycle. Moving to a time
// in the past has no effect.
func (c *Clock) AdvanceTo(target uint64) {
	for {
		a := c.next()
		if a == nil || a.at > target {
			break
		}
		if a.at > c.now {
			c.now = a.at
		}
		a.pending = false
		a.fn()
	}
	if target > c.now {
		c.now = target
	}
}

// Restore sets the cycle counter directly. Used when restoring a snapshot.
// Pending alarms are left as they are and must be restored by their owners.
func (c *Clock) Restore(now uint64) {
	c.now = now
}

// next returns the earliest pending alarm. ties are broken by the order in
// which the alarms were created.
func (c *Clock) next() *Alarm {
	var n *Alarm
	for _, a := range c.alarms {
		if a.pending && (n == nil || a.at < n.at) {
			n = a
		}
	}
	return n
}

// Next returns the cycle of the earliest pending alarm. The boolean is false
// if no alarm is pending.
func (c *Clock) Next() (uint64, bool) {
	a := c.next()
	if a == nil {
		return 0, false
	}
	return a.at, true
}

// Alarm is a callback scheduled to run at a specific cycle.
type Alarm struct {
	Name    string
	clk     *Clock
	at      uint64
	pending bool
	fn      func()
}

// NewAlarm creates a new alarm. The alarm is not pending until Set() is
// called.
func (c *Clock) NewAlarm(name string, fn func()) *Alarm {
	a := &Alarm{
		Name: name,
		clk:  c,
		fn:   fn,
	}
	c.alarms = append(c.alarms, a)
	return a
}

func (a *Alarm) String() string {
	if !a.pending {
		return fmt.Sprintf("%s: unset", a.Name)
	}
	return fmt.Sprintf("%s: %d", a.Name, a.at)
}

// Set the alarm to fire at the specified cycle. An alarm set for a time in
// the past fires on the next call to Advance().
func (a *Alarm) Set(at uint64) {
	a.at = at
	a.pending = true
}

// Unset the alarm.
func (a *Alarm) Unset() {
	a.pending = false
}

// Pending returns true if the alarm has been set and has not yet fired.
func (a *Alarm) Pending() bool {
	return a.pending
}

// At returns the cycle the alarm is set for. Only meaningful if Pending()
// is true.
func (a *Alarm) At() uint64 {
	return a.at
}

// Pending returns the names of all pending alarms in the order in which they
// will fire.
func (c *Clock) Pending() []string {
	p := make([]*Alarm, 0, len(c.alarms))
	for _, a := range c.alarms {
		if a.pending {
			p = append(p, a)
		}
	}
	slices.SortStableFunc(p, func(a, b *Alarm) int { return cmp.Compare(a.at, b.at) })

	n := make([]string, len(p))
	for i := range p {
		n[i] = p[i].Name
	}
	return n
}
