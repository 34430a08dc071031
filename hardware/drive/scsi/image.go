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

package scsi

import (
	"errors"
	"io"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Sentinal error patterns for the scsi package.
const (
	NoImage          = "scsi: no image for target %d lun %d"
	InvalidUnit      = "scsi: invalid unit (%d)"
	ReadError        = "scsi: error reading target %d at block %#x: %v"
	WriteError       = "scsi: error writing target %d at block %#x: %v"
	TargetOutOfRange = "scsi: no target selected"
)

// Unit returns the image number for a target ID and logical unit.
func Unit(target int, lun int) int {
	return target<<3 | lun
}

// Attach a block file as the image for unit. Any image already attached to
// the unit is replaced.
func (t *Target) Attach(unit int, f diskimage.BlockFile) error {
	if unit < 0 || unit >= MaxUnits {
		return curated.Errorf(InvalidUnit, unit)
	}
	t.files[unit] = f
	return nil
}

// Detach the image from unit. Returns false if there was no image attached.
func (t *Target) Detach(unit int) bool {
	if unit < 0 || unit >= MaxUnits || t.files[unit] == nil {
		return false
	}
	t.files[unit] = nil
	return true
}

// DetachAll images.
func (t *Target) DetachAll() {
	clear(t.files[:])
}

// Image returns the block file attached to unit. Returns nil if there is no
// image.
func (t *Target) Image(unit int) diskimage.BlockFile {
	if unit < 0 || unit >= MaxUnits {
		return nil
	}
	return t.files[unit]
}

// Units returns the unit numbers that have an image attached.
func (t *Target) Units() []int {
	var u []int
	for i, f := range t.files {
		if f != nil {
			u = append(u, i)
		}
	}
	return u
}

func (t *Target) unit() int {
	return Unit(int(t.target), int(t.lun))
}

// returns an error if the currently addressed unit does not have an image.
func (t *Target) imageCheck() error {
	if t.target >= MaxTargets || t.lun >= MaxLUNs {
		return curated.Errorf(TargetOutOfRange)
	}

	if t.files[t.unit()] == nil {
		if t.target == 0 && t.lun == 0 && !t.warnedNoDisk {
			logger.Logf(t.perm, t.name, "no image attached to disk 0")
			t.warnedNoDisk = true
		}
		return curated.Errorf(NoImage, t.target, t.lun)
	}

	return nil
}

// the size of the currently addressed unit in blocks.
func (t *Target) maxSize() uint32 {
	if t.imageCheck() != nil {
		return 0
	}
	if t.MaxImageSize != 0 {
		return t.MaxImageSize
	}
	sz := t.files[t.unit()].Size()
	return uint32((sz + BlockSize - 1) / BlockSize)
}

// Address returns the block address of the current transfer.
func (t *Target) Address() uint32 {
	return t.address
}

// SetAddress changes the block address used by the next call to ReadBlock()
// or WriteBlock().
func (t *Target) SetAddress(address uint32) {
	t.address = address
}

// Data returns the block buffer. Changes to the returned slice change the
// buffer.
func (t *Target) Data() []uint8 {
	return t.data[:]
}

// ReadBlock reads the block at the current address of the addressed unit into
// the data buffer. Reading beyond the end of the image is not an error and
// fills the buffer with zeros. The Read() function of the User is called
// after the block has been read.
func (t *Target) ReadBlock() error {
	if err := t.imageCheck(); err != nil {
		return err
	}

	n, err := t.files[t.unit()].ReadAt(t.data[:], int64(t.address)*BlockSize)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Logf(t.perm, t.name, "error reading disk %d at block %#x", t.target, t.address)
			return curated.Errorf(ReadError, t.target, t.address, err)
		}
		clear(t.data[n:])
	}

	if t.User != nil {
		t.User.Read(t)
	}

	return nil
}

// WriteBlock writes the data buffer to the block at the current address of
// the addressed unit. The Write() function of the User is called before the
// block is written.
func (t *Target) WriteBlock() error {
	if err := t.imageCheck(); err != nil {
		return err
	}

	if t.User != nil {
		t.User.Write(t)
	}

	_, err := t.files[t.unit()].WriteAt(t.data[:], int64(t.address)*BlockSize)
	if err != nil {
		logger.Logf(t.perm, t.name, "error writing disk %d at block %#x", t.target, t.address)
		return curated.Errorf(WriteError, t.target, t.address, err)
	}

	return nil
}
