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

// Package clocks is the host clock for the drive emulation. The clock is a
// monotonically increasing cycle counter with an alarm list, and the
// interrupt line that chips raise and lower.
//
// All components advance only in response to a call to Advance(). Components
// that catch up lazily (the floppy controllers for example) compare Now()
// against their own scheduled cycle whenever one of their registers is
// accessed. Components that need to act at a particular time without being
// accessed (the seek stepper of the PC8477 or the button release of the
// CMD-HD) use an Alarm.
//
// Alarms are dispatched in time order. When an alarm fires the clock has been
// advanced to exactly the cycle the alarm was set for, so an alarm handler
// that sets itself again relative to Now() will fire at precisely regular
// intervals.
package clocks
