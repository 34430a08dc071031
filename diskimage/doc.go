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

// Package diskimage is the store for the disk images attached to the drive
// mechanisms and the SCSI controller.
//
// An image is a sequence of 256 byte image sectors. The drive mechanism
// addresses the image by track and sector, with tracks numbered from one,
// in the same way as a CBM DOS would. Geometry, including the number of
// sectors in a track, is a property of the image type and is decoded here.
// The bit level encoding of those sectors on a raw track is the concern of
// the fdd package.
//
// Hard disk images are accessed by linear block address through the
// BlockFile interface.
package diskimage
