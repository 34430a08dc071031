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

// Package pc8477 emulates the PC8477 and DP8473 floppy disk controllers of
// the CMD FD2000 and FD4000 drives.
//
// The controller talks to the host through a command phase, an optional
// execution phase and a result phase, all through the one data register.
// Sector data passes through a FIFO during execution so that the host need
// not keep pace with the disk byte for byte. Reads and writes that the host
// fails to keep up with end with an overrun.
//
// Like the wd1770 package, the controller catches up with the host clock
// lazily on every register access. Seeking is the exception: step pulses are
// issued from a clock alarm shared by all four drives.
package pc8477
