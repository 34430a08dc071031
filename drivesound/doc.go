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

// Package drivesound records the mechanical noises of the floppy drives. The
// Recorder is attached to the mechanism of a drive as a listener and mixes a
// step sample for every movement of the head and a looped motor sample while
// the spindle motor is running.
//
// The audio is buffered in memory in its entirity and written as a WAV file
// with the Write() function. The default samples are synthesised but custom
// samples can be loaded from WAV or MP3 files.
package drivesound
