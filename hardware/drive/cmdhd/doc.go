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

// Package cmdhd emulates the controller board of the CMD-HD hard drive. The
// board carries two 6522 VIAs, an 8255A PPI, a 72421 real time clock and a
// SCSI host adapter. VIA9 drives the SCSI bus, VIA10 drives the IEC bus and
// the PPI connects the CMD parallel bus, the front panel buttons and the
// memory map controls.
//
// There is no CPU in the package. The owner calls Read() and Write() for
// every memory access of the drive CPU and services the interrupt line given
// to NewController().
//
// The first SCSI unit is the .dhd image. The controller watches the blocks
// that pass between the SCSI target and the image so that the device number
// stored in the system area of the image always matches the unit number of
// the drive.
package cmdhd
