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

// Package fdcdriver drives the floppy disk controllers from the side of the
// drive CPU. Commands are written to the registers of the controller and the
// status registers are polled while the clock is advanced, in the same way
// as the drive ROM would.
//
// The package is used by the command line tools that format and read disk
// images through an emulated controller.
package fdcdriver
