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
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/govern"
)

// Slice is the number of cycles the clock is advanced by between calls to
// the continue check of Run(). Every component catches up lazily so the
// size of the slice has no effect on the emulation, only on how quickly the
// run loop responds to a change of state.
const Slice = 1000

// Run advances the clock until the continue check returns govern.Ending. The
// clock does not move while the state is govern.Paused.
func (sys *System) Run(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	var err error

	state := govern.Running

	for state != govern.Ending && state != govern.Initialising {
		switch state {
		case govern.Running:
			sys.Clock.Advance(Slice)
		case govern.Stepping:
			sys.Step()
		case govern.Paused:
		default:
			return curated.Errorf("hardware: unsupported emulation state (%s) in Run() function", state)
		}

		state, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}

// RunFor advances the clock by the number of cycles. The continue check is
// called after every slice and the run ends early if it returns
// govern.Ending.
func (sys *System) RunFor(cycles uint64, continueCheck func(now uint64) (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func(_ uint64) (govern.State, error) { return govern.Running, nil }
	}

	target := sys.Clock.Now() + cycles

	state := govern.Running
	for sys.Clock.Now() < target && state != govern.Ending {
		sys.Clock.AdvanceTo(min(target, sys.Clock.Now()+Slice))

		var err error
		state, err = continueCheck(sys.Clock.Now())
		if err != nil {
			return err
		}
	}

	return nil
}

// Step advances the clock to the next pending alarm and dispatches it. If no
// alarm is pending the clock is advanced by one cycle. Returns the new cycle
// count.
func (sys *System) Step() uint64 {
	next, ok := sys.Clock.Next()
	if !ok || next <= sys.Clock.Now() {
		next = sys.Clock.Now() + 1
	}
	sys.Clock.AdvanceTo(next)
	return sys.Clock.Now()
}
