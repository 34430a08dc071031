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

// Package hardware is the base package for the drive emulation. It and its
// sub-packages contain everything required for a headless emulation.
//
// The System type is the root of the emulation. It contains the host clock,
// the IEC serial bus, the CMD parallel bus and up to four drive units. From
// here the emulation can either be run continuously (with a callback to check
// for continuation) or stepped from one alarm to the next.
//
// The host computer is represented only by the value it writes to its serial
// port. See System.WriteHost().
package hardware
