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

// Package cmdbus emulates the CMD parallel bus that connects the host to CMD
// drives through a parallel cable.
//
// Every participant drives an 8-bit data value and an 8-bit control value.
// All lines are open collector: the bus carries the AND of every value that
// is allowed onto the bus. A participant only drives the bus while bit 0 of
// its control value is set. A drive must also have a parallel cable.
//
// The control lines are active low:
//
//	0x80 /PREADY
//	0x40 /PCLK
//	0x20 /PATN
//	0x10 /PEXT
package cmdbus
