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

package cmdhd

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/logger"
)

// the system area of an HD partition starts with the signature block. the
// signature is at offset 0xf0 of the second half of the block
var signature = []uint8{
	'C', 'M', 'D', ' ', 'H', 'D', ' ', ' ',
	0x8d, 0x03, 0x88, 0x8e, 0x02, 0x88, 0xea, 0x60,
}

const (
	signatureOffset = 0xf0

	// the signature block is this many blocks into the partition area
	signatureBlock = 2

	// the partition area starts on a multiple of this many blocks
	baseLBAStep = 128

	// the device number is stored twice in the signature block
	unitOffsetA = 0x1e1
	unitOffsetB = 0x1e4
)

const invalidBaseLBA = math.MaxUint32

func lbaString(lba uint32) string {
	if lba == invalidBaseLBA {
		return "none"
	}
	return fmt.Sprintf("%#x", lba)
}

// hasSignature returns true if the 256 bytes of buf end with the signature.
func hasSignature(buf []uint8) bool {
	if len(buf) < signatureOffset+len(signature) {
		return false
	}
	return bytes.Equal(buf[signatureOffset:signatureOffset+len(signature)], signature)
}

// BaseLBA returns the first block of the HD partition area. The boolean is
// false if no signature was found.
func (c *Controller) BaseLBA() (uint32, bool) {
	return c.baseLBA, c.baseLBA != invalidBaseLBA
}

// findBaseLBA searches the first unit for the signature block.
func (c *Controller) findBaseLBA() {
	c.baseLBA = invalidBaseLBA

	img := c.scsi.Image(0)
	if img == nil {
		return
	}

	var buf [256]uint8
	for lba := uint32(signatureBlock); lba < c.imageSize; lba += baseLBAStep {
		n, _ := img.ReadAt(buf[:], int64(lba)*scsi.BlockSize+256)
		if n < len(buf) {
			return
		}
		if hasSignature(buf[:]) {
			c.baseLBA = lba - signatureBlock
			return
		}
	}
}

// position of a block as a track on a 200 track scale.
func (c *Controller) setTrack(address uint32) {
	t := uint64(address) * 200 / (uint64(c.imageSize) + 1)
	c.track = int(min(t, 199))
}

// hooks implements the scsi.User interface.
type hooks struct {
	c *Controller
}

// the device number is not stored by a switch or in an EEPROM but in the
// signature block on the disk. it is corrected as the block is read so that
// an image can be used with any unit number
func (h *hooks) Read(t *scsi.Target) {
	c := h.c
	c.setTrack(t.Address())

	if id, lun, ok := t.Selected(); !ok || id != 0 || lun != 0 {
		return
	}
	if c.baseLBA == invalidBaseLBA || t.Address() != c.baseLBA+signatureBlock {
		return
	}

	data := t.Data()
	if !hasSignature(data[256:]) {
		c.baseLBA = invalidBaseLBA
		return
	}

	unit := uint8(c.unit)
	if data[unitOffsetA] != unit || data[unitOffsetB] != unit {
		logger.Logf(c.perm, c.name, "drive number is now %d. was %d in config block", unit, data[unitOffsetA])
		data[unitOffsetA] = unit
		data[unitOffsetB] = unit
	}
}

func (h *hooks) Write(t *scsi.Target) {
	c := h.c
	if t.Address()+1 > c.imageSize {
		c.imageSize = t.Address() + 1
	}
	c.setTrack(t.Address())
}

// the disk is not formatted. only the signature is removed
func (h *hooks) Format(t *scsi.Target) {
	c := h.c

	if id, lun, ok := t.Selected(); !ok || id != 0 || lun != 0 {
		return
	}

	lba := uint32(signatureBlock)
	if c.baseLBA != invalidBaseLBA {
		if c.baseLBA < c.imageSize {
			lba = c.baseLBA + signatureBlock
		} else {
			c.baseLBA = invalidBaseLBA
		}
	}

	for ; lba < c.imageSize; lba += baseLBAStep {
		t.SetAddress(lba)
		if err := t.ReadBlock(); err != nil {
			break
		}
		data := t.Data()
		if hasSignature(data[256:]) {
			c.baseLBA = lba - signatureBlock
			clear(data[256+signatureOffset : 256+signatureOffset+len(signature)])
			if err := t.WriteBlock(); err != nil {
				logger.Log(c.perm, c.name, err)
			}
			break
		}
	}
}
