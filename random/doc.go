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

// Package random should be used in preference to the math/rand package when a
// random number is required inside the emulation.
//
// Random numbers are derived from the cycle count of the host clock. The same
// cycle count always produces the same number for the lifetime of the
// program, which means that two drive units running in lockstep (for example a
// drive unit and a unit restored from a snapshot of it) see the same values.
//
// The base seed is taken from the time the program started. If the same
// random numbers are required every single time then set ZeroSeed to true.
// This is useful for testing purposes.
package random
