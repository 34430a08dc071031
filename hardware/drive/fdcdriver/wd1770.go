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

package fdcdriver

import (
	"fmt"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/wd1770"
)

// WD1770 drives the WD1770 controller of the 1581.
type WD1770 struct {
	wd  *wd1770.WD1770
	clk *clocks.Clock

	// number of cycles between polls of the status register
	Poll uint64

	// maximum number of polls before a command is considered hung. the
	// default is twenty revolutions of the disk polled every half byte time
	MaxPolls int
}

// NewWD1770 starts the motor of the mechanism and selects side 0.
func NewWD1770(wd *wd1770.WD1770, clk *clocks.Clock) *WD1770 {
	wd.SetMotor(true)
	wd.SetSide(0)
	return &WD1770{
		wd:       wd,
		clk:      clk,
		Poll:     32,
		MaxPolls: 20 * 6250 * 2,
	}
}

// Command writes the command register and polls the status register until
// the command has completed. The drq function is called whenever the status
// register shows a data request. Returns the final status.
func (d *WD1770) Command(cmd uint8, drq func()) (uint8, error) {
	d.wd.Write(wd1770.RegCommand, cmd)
	for range d.MaxPolls {
		d.clk.Advance(d.Poll)
		st := d.wd.Read(wd1770.RegStatus)
		if st&wd1770.StatusDRQ == wd1770.StatusDRQ && drq != nil {
			drq()
		}
		if d.wd.Type() <= wd1770.TypeIdle {
			return st, nil
		}
	}
	return 0, curated.Errorf(Hung, cmd)
}

// Seek moves the head to the track with the head load flag set.
func (d *WD1770) Seek(track uint8) error {
	d.wd.Write(wd1770.RegData, track)
	st, err := d.Command(0x18, nil)
	if err != nil {
		return err
	}
	if st&wd1770.StatusSE == wd1770.StatusSE {
		return curated.Errorf(Failed, "seek", fmt.Sprintf("status %02x", st))
	}
	return nil
}

// ReadSector reads a single sector from the side. The head must already be
// on the track.
func (d *WD1770) ReadSector(side uint8, sector uint8) ([]uint8, error) {
	d.wd.SetSide(int(side & 1))
	d.wd.Write(wd1770.RegSector, sector)

	var data []uint8
	st, err := d.Command(0x88, func() {
		data = append(data, d.wd.Read(wd1770.RegData))
	})
	if err != nil {
		return nil, err
	}
	if st&(wd1770.StatusCRC|wd1770.StatusRNF|wd1770.StatusLD) != 0 {
		return data, curated.Errorf(Failed, "read", fmt.Sprintf("status %02x", st))
	}
	return data, nil
}

// WriteSector writes a single sector to the side. The head must already be
// on the track.
func (d *WD1770) WriteSector(side uint8, sector uint8, data []uint8) error {
	d.wd.SetSide(int(side & 1))
	d.wd.Write(wd1770.RegSector, sector)

	i := 0
	st, err := d.Command(0xa8, func() {
		if i < len(data) {
			d.wd.Write(wd1770.RegData, data[i])
			i++
		} else {
			d.wd.Write(wd1770.RegData, 0)
		}
	})
	if err != nil {
		return err
	}
	if st&(wd1770.StatusWP|wd1770.StatusCRC|wd1770.StatusRNF|wd1770.StatusLD) != 0 {
		return curated.Errorf(Failed, "write", fmt.Sprintf("status %02x", st))
	}
	return nil
}
