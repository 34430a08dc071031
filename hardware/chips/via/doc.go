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

// Package via emulates the MOS 6522 Versatile Interface Adapter.
//
// The VIA does not step with the clock. The timers are kept as the cycle on
// which they next underflow and their counters are calculated from the
// current time when they are read. Clock alarms set at the underflow cycles
// raise the timer interrupts on time.
//
// The chip is connected to the rest of the drive through the Ports interface.
// The VIA is not an owner of any of the lines it drives; it tells the Ports
// implementation whenever an output changes and asks it for the state of an
// input when the CPU reads a port.
//
// Input latching and the shift register clocking are not emulated. The shift
// register can be loaded from outside with ShiftIn().
package via
