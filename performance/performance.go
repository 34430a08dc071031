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

package performance

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/hardware/govern"
	"github.com/jetsetilly/gopherdrive/performance/limiter"
)

// sentinal error returned by Run() loop.
var timedOut = errors.New("performance timed out")

// leadtime before measurement begins
const leadtime = 500 * time.Millisecond

// CalcSpeed takes the number of emulated cycles and the duration (in seconds)
// and returns the emulated clock speed in MHz and the accuracy of that value
// as a percentage of the clock speed of the hardware.
func CalcSpeed(cycles uint64, duration float64, mhz int) (speed float64, accuracy float64) {
	if duration <= 0 {
		return 0, 0
	}
	speed = float64(cycles) / duration / 1000000
	if mhz > 0 {
		accuracy = 100 * speed / float64(mhz)
	}
	return speed, accuracy
}

// Check the performance of the emulator by running the system for the
// specified duration. The units of the system should be prepared before
// calling the function.
//
// If capped is true then the emulation is limited to the speed of the real
// hardware.
func Check(output io.Writer, profile Profile, sys *hardware.System, capped bool, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	var lim *limiter.Limiter
	if capped {
		lim = limiter.NewLimiter(sys.Clock.MHz(), hardware.Slice)
	}

	startCycle := sys.Clock.Now()

	runner := func() error {
		// signals false when the leadtime has elapsed and true when the
		// measurement period has finished
		timerChan := make(chan bool, 2)
		time.AfterFunc(leadtime, func() {
			timerChan <- false
			time.AfterFunc(dur, func() {
				timerChan <- true
			})
		})

		return sys.Run(func() (govern.State, error) {
			if lim != nil {
				lim.Wait()
			}
			select {
			case v := <-timerChan:
				if v {
					return govern.Ending, timedOut
				}
				startCycle = sys.Clock.Now()
			default:
			}
			return govern.Running, nil
		})
	}

	err = RunProfiler(profile, "performance", runner)
	if err != nil && !errors.Is(err, timedOut) {
		return curated.Errorf("performance: %v", err)
	}

	cycles := sys.Clock.Now() - startCycle
	speed, accuracy := CalcSpeed(cycles, dur.Seconds(), sys.Clock.MHz())
	fmt.Fprintf(output, "%.2f MHz (%d cycles in %.2f seconds) %.1f%%\n", speed, cycles, dur.Seconds(), accuracy)

	return nil
}
