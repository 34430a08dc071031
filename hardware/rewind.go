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

package hardware

import (
	"fmt"

	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// RewindStep is a single entry in the rewind timeline.
type RewindStep struct {
	// the cycle at which the snapshot was taken
	Cycle uint64

	state *snapshot.File

	// is the snapshot a result of a CurrentState() request
	isCurrent bool
}

func (s RewindStep) String() string {
	if s.isCurrent {
		return "c"
	}
	return fmt.Sprintf("%d", s.Cycle)
}

// Rewind records snapshots of the system at regular intervals of emulated
// time so that the system can be returned to an earlier state.
type Rewind struct {
	sys      *System
	steps    []RewindStep
	position int

	interval uint64
	alarm    *clocks.Alarm
}

// the maximum number of steps to store before the earliest steps are
// forgotten.
const maxRewindSteps = 100

// NewRewind creates a rewind timeline for the system. A snapshot is taken
// every interval cycles. The timeline starts with a snapshot of the current
// state.
func NewRewind(sys *System, interval uint64) *Rewind {
	r := &Rewind{
		sys:      sys,
		steps:    make([]RewindStep, 0, maxRewindSteps),
		interval: max(interval, 1),
	}
	r.alarm = sys.Clock.NewAlarm("REWIND", r.record)
	r.Reset()
	return r
}

// Reset rewind system to zero, taking a snapshot of the current state.
func (r *Rewind) Reset() {
	r.steps = r.steps[:0]
	r.position = 0
	r.record()
}

// record is called by the alarm. the alarm is set again for the next
// interval.
func (r *Rewind) record() {
	r.append(RewindStep{
		Cycle: r.sys.Clock.Now(),
		state: r.sys.Snapshot(),
	})
	r.alarm.Set(r.sys.Clock.Now() + r.interval)
}

// CurrentState adds a snapshot of the current state to the end of the
// timeline. The entry is replaced by the next regular snapshot.
func (r *Rewind) CurrentState() {
	r.append(RewindStep{
		Cycle:     r.sys.Clock.Now(),
		state:     r.sys.Snapshot(),
		isCurrent: true,
	})
}

func (r *Rewind) append(s RewindStep) {
	if r.position == len(r.steps) {
		r.trim()
		r.steps = append(r.steps, s)
	} else {
		r.steps = append(r.steps[:r.position], s)
	}

	// maintain maximum length
	if len(r.steps) > maxRewindSteps {
		r.steps = r.steps[1:]
	}

	r.position = len(r.steps)
}

func (r *Rewind) trim() {
	if len(r.steps) < 1 {
		return
	}

	if r.steps[len(r.steps)-1].isCurrent {
		r.steps = r.steps[:len(r.steps)-1]
		r.position = len(r.steps)
	}
}

// State returns the current state of the rewind. First return value is total
// number of states and the second value is the current position.
func (r *Rewind) State() (int, int) {
	return len(r.steps), r.position - 1
}

// Steps returns the entries of the timeline.
func (r *Rewind) Steps() []RewindStep {
	return r.steps
}

// SetPosition moves the timeline to the specified position and plumbs the
// snapshot into the system. Subsequent snapshots replace the entries after
// the position.
func (r *Rewind) SetPosition(pos int) error {
	pos = max(0, min(pos, len(r.steps)-1))

	s := r.steps[pos]
	if err := r.sys.Plumb(s.state); err != nil {
		return err
	}
	r.alarm.Set(s.Cycle + r.interval)

	r.position = pos + 1
	return nil
}

// GotoCurrent sets the position to the last in the timeline.
func (r *Rewind) GotoCurrent() error {
	return r.SetPosition(len(r.steps))
}

// GotoCycle searches the timeline for the entry taken at the cycle. Goes to
// the nearest earlier entry if there is no exact match. Returns true if the
// exact cycle was found.
func (r *Rewind) GotoCycle(cycle uint64) (bool, error) {
	// binary search for cycle
	b := 0
	t := len(r.steps) - 1
	for b <= t {
		m := (t + b) / 2

		if r.steps[m].Cycle == cycle {
			return true, r.SetPosition(m)
		}

		if r.steps[m].Cycle < cycle {
			b = m + 1
		} else {
			t = m - 1
		}
	}

	return false, r.SetPosition(t)
}
