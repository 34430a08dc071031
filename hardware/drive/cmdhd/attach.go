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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Attach a .dhd image as the first SCSI unit. Files in the same directory
// with the same base name and an extension of .Sxy, where x is a SCSI ID from
// 0 to 6 and y is a logical unit from 0 to 7, are attached as additional
// units. Any existing images are detached first.
func (c *Controller) Attach(filename string) error {
	ext := filepath.Ext(filename)
	if !strings.EqualFold(ext, ".dhd") {
		return curated.Errorf(NotDHD, filename)
	}

	f, readOnly, err := diskimage.OpenFile(filename)
	if err != nil {
		return err
	}
	if readOnly {
		logger.Logf(c.perm, c.name, "%s is read only", filepath.Base(filename))
	}

	c.Detach()
	c.files = append(c.files, f)
	c.attachPrimary(f)

	for _, sib := range siblings(filename) {
		sf, err := os.OpenFile(sib.name, os.O_RDWR, 0)
		if err != nil {
			continue
		}
		bf, err := diskimage.NewFile(sf)
		if err != nil || bf.Size()%scsi.BlockSize != 0 {
			sf.Close()
			continue
		}
		c.files = append(c.files, bf)
		_ = c.scsi.Attach(sib.unit, bf)
		logger.Logf(c.perm, c.name, "attached %s as SCSI ID %d LUN %d", filepath.Base(sib.name), sib.unit>>3, sib.unit&7)
	}

	c.attached()
	return nil
}

// AttachImage attaches a block file as the first SCSI unit. Any existing
// images are detached first.
func (c *Controller) AttachImage(f diskimage.BlockFile) {
	c.Detach()
	c.attachPrimary(f)
	c.attached()
}

// AttachUnit attaches a block file as an additional SCSI unit. The first unit
// should be attached with Attach() or AttachImage().
func (c *Controller) AttachUnit(id int, lun int, f diskimage.BlockFile) error {
	if id == 0 && lun == 0 {
		return curated.Errorf(scsi.InvalidUnit, 0)
	}
	if id < 0 || id >= scsi.MaxTargets || lun < 0 || lun >= scsi.MaxLUNs {
		return curated.Errorf(scsi.InvalidUnit, scsi.Unit(id, lun))
	}
	return c.scsi.Attach(scsi.Unit(id, lun), f)
}

func (c *Controller) attachPrimary(f diskimage.BlockFile) {
	c.imageSize = uint32(f.Size() / scsi.BlockSize)
	_ = c.scsi.Attach(0, f)
	c.findBaseLBA()
}

// HDDOS is not designed to notice that the image has changed
func (c *Controller) attached() {
	c.numAttached++
	if c.numAttached > 1 {
		logger.Logf(c.perm, c.name, "attaching a new image normally requires the drive to be reset")
	}
}

// Detach every image. Files opened by Attach() are closed.
func (c *Controller) Detach() {
	c.scsi.DetachAll()
	for _, f := range c.files {
		f.Close()
	}
	c.files = c.files[:0]
	c.imageSize = 0
	c.baseLBA = invalidBaseLBA
	c.cmd.Release(c.unit)
}

// ImageSize returns the size of the first unit in blocks.
func (c *Controller) ImageSize() uint32 {
	return c.imageSize
}

type sibling struct {
	unit int
	name string
}

// siblings returns the existing files that can be used as additional SCSI
// units for a .dhd image, in unit order.
func siblings(filename string) []sibling {
	base := filename[:len(filename)-len(".dhd")]

	// the case of the extension is kept
	s := "S"
	if filename[len(base)+1] == 'd' {
		s = "s"
	}

	var found []sibling
	for id := 0; id < scsi.MaxTargets; id++ {
		for lun := 0; lun < scsi.MaxLUNs; lun++ {
			if id == 0 && lun == 0 {
				continue
			}
			name := fmt.Sprintf("%s.%s%d%d", base, s, id, lun)
			if st, err := os.Stat(name); err == nil && st.Mode().IsRegular() {
				found = append(found, sibling{unit: scsi.Unit(id, lun), name: name})
			}
		}
	}
	return found
}
