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

// Package script runs Lua scripts against the drive emulation. A script has
// access to the global table "drive" which contains functions to add drives,
// access the memory map of the drive CPU, drive the serial bus from the host
// side and advance the clock.
//
//	drive.add("1581", 8)
//	drive.attach(8, "disk.d81")
//	drive.host(0x08)
//	drive.run(1000)
//	print(drive.bus())
//
// Addresses and values are Lua numbers. Errors raised by the emulation are
// raised as Lua errors and end the script unless caught with pcall().
package script
