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

// Package wd1770 emulates the WD1770 and WD1772 floppy disk controllers as
// used in the 1581 disk drive.
//
// The controller does not run on its own. Every register access first
// catches up with the host clock by running the microcode of the active
// command for as many byte times as have elapsed. Each command type is a
// micro program with an explicit step counter so that it can stop at any
// point where it has to wait (for the head to settle, for a step pulse, for
// the next byte to come around) and carry on from the same place on the next
// register access.
package wd1770
