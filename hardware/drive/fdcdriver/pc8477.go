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
	"github.com/jetsetilly/gopherdrive/hardware/drive/pc8477"
)

// Sentinal error patterns.
const (
	Hung   = "fdcdriver: command %#02x did not complete"
	Failed = "fdcdriver: %s failed (%s)"
)

// PhysicalSectorSize is the size of the sectors on the media. Sector size
// code 2.
const PhysicalSectorSize = 512

// HeadID is the head number recorded in the sector IDs for the side of the
// mechanism. The mechanism records the head number inverted.
func HeadID(side uint8) uint8 {
	return (side & 1) ^ 1
}

// PC8477 drives the PC8477 controller of the FD2000 and FD4000.
type PC8477 struct {
	pc  *pc8477.PC8477
	clk *clocks.Clock

	// number of cycles between polls of the main status register
	Poll uint64

	// maximum number of polls before a command is considered hung
	MaxPolls int
}

// the drive select value for the side of the built in mechanism
func pcDrive(side uint8) uint8 {
	return pc8477.MechanismDrive | (side&1)<<2
}

// NewPC8477 takes the controller out of reset with the motor of the built in
// mechanism running. The controller is put into non-DMA mode.
func NewPC8477(pc *pc8477.PC8477, clk *clocks.Clock) (*PC8477, error) {
	d := &PC8477{
		pc:       pc,
		clk:      clk,
		Poll:     16,
		MaxPolls: 1000000,
	}

	d.pc.Write(pc8477.RegDOR, 0x04|0x20|pc8477.MechanismDrive)
	d.pc.Write(pc8477.RegDRR, 2)

	// acknowledge the reset interrupt
	if _, err := d.Exec(nil, nil, 0x08); err != nil {
		return nil, err
	}

	// specify command. non-DMA mode so that the execution phase shows in
	// the status register
	if _, err := d.Exec(nil, nil, 0x03, 0xdf, 0x03); err != nil {
		return nil, err
	}

	return d, nil
}

// Exec sends a command and runs it to completion, supplying data to the FIFO
// with the write function and taking data from it with the read function.
// Either function can be nil, in which case the FIFO is not serviced in that
// direction. Returns the result bytes.
func (d *PC8477) Exec(read func(uint8), write func() uint8, cmd ...uint8) ([]uint8, error) {
	for _, b := range cmd {
		d.pc.Write(pc8477.RegData, b)
	}

	var res []uint8
	for range d.MaxPolls {
		msr := d.pc.Read(pc8477.RegMSR)
		if msr&pc8477.MSRBusy == 0 {
			return res, nil
		}
		if msr&pc8477.MSRRQM == pc8477.MSRRQM {
			switch {
			case msr&pc8477.MSRNonDMA == pc8477.MSRNonDMA && msr&pc8477.MSRDIO == pc8477.MSRDIO:
				if read != nil {
					read(d.pc.Read(pc8477.RegData))
					continue
				}
			case msr&pc8477.MSRNonDMA == pc8477.MSRNonDMA:
				if write != nil {
					d.pc.Write(pc8477.RegData, write())
					continue
				}
			case msr&pc8477.MSRDIO == pc8477.MSRDIO:
				res = append(res, d.pc.Read(pc8477.RegData))
				continue
			}
		}
		d.clk.Advance(d.Poll)
	}

	return nil, curated.Errorf(Hung, cmd[0])
}

// Seek moves the head to the track and waits for the seek to complete.
// Returns the result of the sense interrupt command.
func (d *PC8477) Seek(track uint8) ([]uint8, error) {
	if _, err := d.Exec(nil, nil, 0x0f, pcDrive(0), track); err != nil {
		return nil, err
	}
	for range d.MaxPolls {
		if d.pc.IRQ() {
			return d.Exec(nil, nil, 0x08)
		}
		d.clk.Advance(1000)
	}
	return nil, curated.Errorf(Hung, 0x0f)
}

// check the result phase of a read, write or format command. the end of
// track bit is expected at the end of a transfer that stops at the EOT
// sector.
func checkResult(op string, res []uint8, transfer bool) error {
	if len(res) != 7 {
		return curated.Errorf(Failed, op, "short result")
	}
	st0 := res[0] & pc8477.ST0Interrupts
	st1 := res[1]
	if transfer && st0 == pc8477.ST0Abnormal && st1 == pc8477.ST1EN {
		st0 = 0
		st1 = 0
	}
	if st0 != 0 || st1 != 0 || res[2] != 0 {
		return curated.Errorf(Failed, op, statusString(res))
	}
	return nil
}

func statusString(res []uint8) string {
	return fmt.Sprintf("ST0 %02x ST1 %02x ST2 %02x", res[0], res[1], res[2])
}

// ReadSectors reads the sectors from first to last on the track. The head
// must already be on the track.
func (d *PC8477) ReadSectors(track uint8, side uint8, first uint8, last uint8) ([]uint8, error) {
	var data []uint8
	res, err := d.Exec(func(v uint8) {
		data = append(data, v)
	}, nil, 0x46, pcDrive(side), track, HeadID(side), first, 2, last, 0x1b, 0xff)
	if err != nil {
		return nil, err
	}
	return data, checkResult("read", res, true)
}

// WriteSector writes a single sector. The head must already be on the track.
func (d *PC8477) WriteSector(track uint8, side uint8, sector uint8, data []uint8) error {
	i := 0
	res, err := d.Exec(nil, func() uint8 {
		if i >= len(data) {
			return 0
		}
		i++
		return data[i-1]
	}, 0x45, pcDrive(side), track, HeadID(side), sector, 2, sector, 0x1b, 0xff)
	if err != nil {
		return err
	}
	return checkResult("write", res, true)
}

// FormatTrack writes a new track with the number of sectors, numbered from
// one, filled with the filler byte. The head must already be on the track.
func (d *PC8477) FormatTrack(track uint8, side uint8, sectors int, filler uint8) error {
	var ids []uint8
	for s := range sectors {
		ids = append(ids, track, HeadID(side), uint8(s+1), 2)
	}
	i := 0
	res, err := d.Exec(nil, func() uint8 {
		if i >= len(ids) {
			return 0
		}
		i++
		return ids[i-1]
	}, 0x4d, pcDrive(side), 2, uint8(sectors), 32, filler)
	if err != nil {
		return err
	}
	return checkResult("format", res, false)
}

// ReadID returns the C, H, R and N of the next sector ID under the head.
func (d *PC8477) ReadID(side uint8) ([]uint8, error) {
	res, err := d.Exec(nil, nil, 0x4a, pcDrive(side))
	if err != nil {
		return nil, err
	}
	if err := checkResult("read id", res, false); err != nil {
		return nil, err
	}
	return res[3:], nil
}
