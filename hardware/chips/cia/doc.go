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

// Package cia emulates the MOS 6526 Complex Interface Adapter as used in the
// 1581 disk drive.
//
// Like the VIA, the timers are lazy. A timer counting clock cycles is kept as
// the cycle of its next underflow and an alarm on the host clock raises the
// interrupt when that cycle arrives. Timers counting CNT edges or timer A
// underflows are stepped directly.
//
// The time of day clock is stored but does not tick. Writes to the TOD
// registers are compared with the TOD alarm.
package cia
