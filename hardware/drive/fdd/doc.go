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

// Package fdd emulates the floppy disk mechanism shared by the 1581, FD2000
// and FD4000 drives.
//
// The mechanism holds a single raw track, decoded from the attached disk
// image whenever the head moves to a new track or side, and written back to
// the image when it has been changed. Each position on the raw track holds a
// 9 bit value (see the mfm package) and the track rotates one position every
// byte time.
//
// Methods can be called on a nil Drive. This is how a controller with fewer
// than four mechanisms attached sees the empty drive bays.
package fdd
