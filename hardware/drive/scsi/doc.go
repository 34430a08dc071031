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

// Package scsi implements a SCSI target that presents block files as hard
// disks. It is the disk side of the CMD-HD controller.
//
// The target knows nothing of timing. The owner sets the input lines (Sel,
// Rst, Atn, Ack and BsyI), places bytes on the bus with SetBus() and then
// calls either ProcessNoAck() or ProcessAck(). ProcessNoAck() deals with
// reset and selection. ProcessAck() completes one REQ/ACK handshake and so
// moves the transfer along by exactly one byte.
//
// As on the real cable the data bus is active low. Bus() and SetBus() deal
// in the inverted value.
//
// Up to 56 images can be attached, one for every combination of the seven
// target IDs and eight logical units. Images are 512 byte blocks in any
// diskimage.BlockFile.
package scsi
