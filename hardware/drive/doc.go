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

// Package drive assembles complete drive units from the chip, controller and
// bus packages. Each unit presents the memory map seen by the drive CPU: RAM,
// the interface chips, the disk controller and the ROM. The CPU itself is not
// emulated; the owner of the unit calls Read() and Write() for every access
// and advances the shared clock.
//
// The floppy units are the 1581 (CIA and WD1770) and the FD2000 and FD4000
// (VIA and PC8477). The hard disk unit is the CMD-HD, see the cmdhd package.
//
// Every unit attaches itself to the IEC bus with the unit number given to
// NewUnit(). The CMD-HD also attaches itself to the CMD parallel bus.
package drive
