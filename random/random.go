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

package random

import (
	"math/rand/v2"
	"time"
)

// the base seed for all random numbers
var baseSeed uint64

func init() {
	baseSeed = uint64(time.Now().UnixNano())
}

// Clock is the source of the emulation time.
type Clock interface {
	Now() uint64
}

// Random is a random number generator that is sensitive to time within the
// emulation.
type Random struct {
	clk Clock

	// use zero seed rather than the random base seed. this is only really
	// useful for normalised instances where random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(clk Clock) *Random {
	return &Random{
		clk: clk,
	}
}

func (rnd *Random) rand(salt uint64) *rand.Rand {
	seed := salt
	if !rnd.ZeroSeed {
		seed += baseSeed
	}
	var now uint64
	if rnd.clk != nil {
		now = rnd.clk.Now()
	}
	return rand.New(rand.NewPCG(seed, now))
}

// IntN returns a random number in the range [0,n) for the current cycle.
func (rnd *Random) IntN(n int) int {
	return rnd.rand(0).IntN(n)
}

// Fill the slice with random bytes. The salt allows different areas of
// memory to be filled with different values at the same cycle.
func (rnd *Random) Fill(b []uint8, salt uint64) {
	r := rnd.rand(salt)
	for i := range b {
		b[i] = uint8(r.Uint32())
	}
}
