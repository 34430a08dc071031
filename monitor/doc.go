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

// Package monitor is an interactive command line for the drive emulation.
// Commands are read from a terminal.Terminal and act on a hardware.System.
// The HELP command lists the commands that are available.
//
// Numbers can be given in decimal, in hex with the 0x or $ prefix, or in
// binary with the 0b prefix.
package monitor
