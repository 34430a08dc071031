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
	"encoding/binary"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Sentinal error patterns for the Initiator type.
const (
	NoSelection    = "scsi: target %d did not respond to selection"
	Stalled        = "scsi: target did not release the bus"
	CheckCondition = "scsi: check condition (sense key %#02x asc %#02x)"
)

// Status byte values as seen by the initiator.
const (
	StatusGood           = 0x00
	StatusCheckCondition = 0x01
)

// Initiator drives a target the way a host adapter would. Used by tools
// that access an image through the target rather than directly.
type Initiator struct {
	tgt *Target

	// the maximum number of bus transfers in a single command
	MaxTransfers int
}

// NewInitiator is the preferred method of initialisation for the Initiator
// type.
func NewInitiator(tgt *Target) *Initiator {
	return &Initiator{
		tgt:          tgt,
		MaxTransfers: 1 << 24,
	}
}

func (in *Initiator) ack() {
	in.tgt.Ack = true
	in.tgt.ProcessAck()
	in.tgt.Ack = false
}

// the data bus is inverted on the wire
func (in *Initiator) send(v uint8) {
	in.tgt.SetBus(v ^ 0xff)
	in.ack()
}

// selection with the initiator as ID 7
func (in *Initiator) selectTarget(id int) error {
	in.tgt.SetBus(^(0x80 | uint8(1<<id)))
	in.tgt.Sel = true
	in.tgt.ProcessNoAck()
	if !in.tgt.BSY() {
		in.tgt.Sel = false
		in.tgt.ProcessNoAck()
		return curated.Errorf(NoSelection, id)
	}
	in.tgt.Sel = false
	in.tgt.ProcessNoAck()
	return nil
}

// Command issues a command to the target and runs it to completion. Data for
// the DATAOUT phase is taken from out. Returns the data from the DATAIN phase
// and the status byte.
func (in *Initiator) Command(id int, out []uint8, cdb ...uint8) ([]uint8, uint8, error) {
	if err := in.selectTarget(id); err != nil {
		return nil, 0, err
	}

	for _, v := range cdb {
		if in.tgt.Phase() != Command {
			break
		}
		in.send(v)
	}

	var data []uint8
	var status uint8

	for range in.MaxTransfers {
		switch in.tgt.Phase() {
		case BusFree:
			return data, status, nil
		case DataIn:
			data = append(data, in.tgt.Bus()^0xff)
			in.ack()
		case DataOut:
			var v uint8
			if len(out) > 0 {
				v = out[0]
				out = out[1:]
			}
			in.send(v)
		case Status:
			status = (in.tgt.Bus() ^ 0xff) >> 1
			in.ack()
		case MessageIn:
			in.ack()
		case Command:
			// linked command. the target is waiting for the next CDB
			return data, status, nil
		}
	}

	return data, status, curated.Errorf(Stalled)
}

// check runs the command and turns a check condition status into an error
// using the sense data.
func (in *Initiator) check(id int, out []uint8, cdb ...uint8) ([]uint8, error) {
	data, status, err := in.Command(id, out, cdb...)
	if err != nil {
		return nil, err
	}
	if status == StatusCheckCondition {
		sense, err := in.RequestSense(id)
		if err != nil {
			return nil, err
		}
		if len(sense) < 13 {
			return nil, curated.Errorf(CheckCondition, 0, 0)
		}
		return nil, curated.Errorf(CheckCondition, sense[2]&0x0f, sense[12])
	}
	return data, nil
}

// RequestSense returns the 18 bytes of sense data for the previous command.
func (in *Initiator) RequestSense(id int) ([]uint8, error) {
	data, _, err := in.Command(id, nil, 0x03, 0, 0, 0, 18, 0)
	return data, err
}

// TestUnitReady returns nil if the target has an image for the logical unit.
func (in *Initiator) TestUnitReady(id int, lun int) error {
	_, err := in.check(id, nil, 0x00, uint8(lun<<5), 0, 0, 0, 0)
	return err
}

// Inquiry returns the standard inquiry data of the logical unit.
func (in *Initiator) Inquiry(id int, lun int) ([]uint8, error) {
	return in.check(id, nil, 0x12, uint8(lun<<5), 0, 0, 36, 0)
}

// ReadCapacity returns the address of the last block and the block size.
func (in *Initiator) ReadCapacity(id int, lun int) (uint32, uint32, error) {
	data, err := in.check(id, nil, 0x25, uint8(lun<<5), 0, 0, 0, 0, 0, 0, 0, 0)
	if err != nil {
		return 0, 0, err
	}
	if len(data) < 8 {
		return 0, 0, curated.Errorf(CheckCondition, 0, 0)
	}
	return binary.BigEndian.Uint32(data[0:]), binary.BigEndian.Uint32(data[4:]), nil
}

// Read the blocks using the READ(10) command.
func (in *Initiator) Read(id int, lun int, lba uint32, count uint16) ([]uint8, error) {
	cdb := []uint8{0x28, uint8(lun << 5), 0, 0, 0, 0, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint16(cdb[7:], count)
	return in.check(id, nil, cdb...)
}

// Write the blocks using the WRITE(10) command.
func (in *Initiator) Write(id int, lun int, lba uint32, data []uint8) error {
	cdb := []uint8{0x2a, uint8(lun << 5), 0, 0, 0, 0, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint16(cdb[7:], uint16(len(data)/BlockSize))
	_, err := in.check(id, data, cdb...)
	return err
}
