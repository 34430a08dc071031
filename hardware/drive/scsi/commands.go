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
	"fmt"

	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/version"
)

// command opcodes
const (
	cmdTestUnitReady  = 0x00
	cmdRezeroUnit     = 0x01
	cmdRequestSense   = 0x03
	cmdFormatUnit     = 0x04
	cmdReassignBlocks = 0x07
	cmdRead6          = 0x08
	cmdWrite6         = 0x0a
	cmdInquiry        = 0x12
	cmdModeSense6     = 0x1a
	cmdStartStop      = 0x1b
	cmdSendDiagnostic = 0x1d
	cmdReadCapacity   = 0x25
	cmdRead10         = 0x28
	cmdWrite10        = 0x2a
	cmdWriteVerify    = 0x2e
	cmdVerify         = 0x2f
	cmdModeSense10    = 0x5a
)

// identification returned by INQUIRY
const (
	vendorID  = "GOPHERDR"
	productID = "SCSI Image File "
)

// the mode page that carries the revision string
const modePageRevision = 0x20

// length of the command descriptor block for each opcode. zero for
// unsupported commands.
func cdbLength(op uint8) int {
	switch op {
	case cmdTestUnitReady, cmdRezeroUnit, cmdRequestSense, cmdFormatUnit,
		cmdReassignBlocks, cmdRead6, cmdWrite6, cmdInquiry, cmdModeSense6,
		cmdStartStop, cmdSendDiagnostic:
		return 6
	case cmdReadCapacity, cmdRead10, cmdWrite10, cmdModeSense10,
		cmdWriteVerify, cmdVerify:
		return 10
	}
	return 0
}

func (t *Target) commandByte(data uint8) {
	t.io = false
	t.cd = true
	t.cmd[t.seq] = data

	if t.seq == 0 {
		t.command = data
		t.cmdSize = cdbLength(data)
		if t.cmdSize == 0 {
			logger.Logf(t.perm, t.name, "unknown command %#02x", data)
			t.cmdSize = len(t.cmd)
			t.check(senseIllegalRequest, 0)
			return
		}
	}

	t.seq++
	if t.seq < t.cmdSize {
		return
	}

	cdb := t.cmd[:t.cmdSize]
	t.lun = (cdb[1] >> 5) & 0x07
	t.link = cdb[t.cmdSize-1]&0x01 == 0x01

	switch t.command {
	case cmdTestUnitReady:
		if err := t.imageCheck(); err != nil {
			t.check(senseIllegalRequest, t.asc)
			return
		}
		t.finish(statusGood)

	case cmdRequestSense:
		t.dataMax = int(cdb[4])
		if t.dataMax == 0 {
			t.dataMax = 4
		}
		t.dataMax = min(t.dataMax, 18)
		clear(t.data[:])
		t.data[0] = 0x80 | 0x70
		t.data[2] = t.senseKey
		t.data[7] = 10
		t.data[12] = t.asc

		// sense data is cleared once it has been reported
		t.senseKey = 0
		t.asc = 0
		t.startDataIn()

	case cmdReassignBlocks:
		t.startDataOut(4)

	case cmdRead6, cmdRead10:
		if !t.transferParameters() {
			t.finish(statusGood)
			return
		}
		t.dataMax = BlockSize
		if t.address >= t.maxSize() {
			t.check(senseIllegalRequest, ascLBAOutOfRange)
			return
		}
		if err := t.ReadBlock(); err != nil {
			t.finish(statusCheckCondition)
			return
		}
		t.startDataIn()

	case cmdWrite6, cmdWrite10, cmdWriteVerify:
		if !t.transferParameters() {
			t.finish(statusGood)
			return
		}
		if t.address >= t.maxSize() {
			t.check(senseIllegalRequest, ascLBAOutOfRange)
			return
		}
		if err := t.imageCheck(); err != nil {
			t.finish(statusCheckCondition)
			return
		}
		t.startDataOut(BlockSize)

	case cmdInquiry:
		t.dataMax = int(cdb[4])
		clear(t.data[:])
		if err := t.imageCheck(); err != nil {
			// peripheral qualifier: logical unit not present
			t.data[0] = 0x60
		}
		t.data[2] = 0x01
		t.data[3] = 0x02
		t.data[4] = 92
		copy(t.data[8:16], vendorID)
		copy(t.data[16:32], productID)
		copy(t.data[32:36], version.Short(4))
		t.startDataIn()

	case cmdReadCapacity:
		t.dataMax = 8
		last := t.maxSize()
		var size uint32
		if last > 0 {
			last = min(last, t.LimitImageSize)
			last--
			size = BlockSize
		}
		clear(t.data[:8])
		putDW(t.data[0:], last)
		putDW(t.data[4:], size)
		t.startDataIn()

	case cmdModeSense6, cmdModeSense10:
		if t.command == cmdModeSense6 {
			t.dataMax = int(cdb[4])
		} else {
			t.dataMax = min(int(cdb[7])<<8|int(cdb[8]), 255)
		}
		clear(t.data[:])

		if cdb[2]&0x3f != modePageRevision {
			t.check(senseIllegalRequest, ascInvalidFieldInCDB)
			return
		}

		// header, block descriptor length of zero and then the page. the
		// page is the revision string
		v, _, _ := version.Version()
		rev := fmt.Sprintf("%s-SCSI", v)
		const page = 3 + 1 + 3
		n := 0
		for ; n < len(rev) && n < t.dataMax-page; n++ {
			t.data[page+n] = rev[n]
		}
		t.data[3] = 1
		t.data[page-1] = uint8(n)
		t.startDataIn()

	case cmdFormatUnit:
		switch cdb[1] & 0x17 {
		case 0x10:
			// format data follows. only the defect list header is read
			t.startDataOut(4)
		case 0x00:
			t.format()
		default:
			t.check(senseIllegalRequest, ascInvalidFieldParamList)
		}

	case cmdRezeroUnit, cmdStartStop, cmdSendDiagnostic, cmdVerify:
		t.finish(statusGood)
	}
}

// read address and block count from a READ or WRITE command. returns false
// if there is nothing to transfer.
func (t *Target) transferParameters() bool {
	if t.cmdSize == 6 {
		t.address = uint32(t.cmd[1]&0x1f)<<16 | uint32(t.cmd[2])<<8 | uint32(t.cmd[3])
		t.blocks = uint32(t.cmd[4])
		if t.blocks == 0 {
			t.blocks = 256
		}
		return true
	}
	t.address = uint32(t.cmd[2])<<24 | uint32(t.cmd[3])<<16 | uint32(t.cmd[4])<<8 | uint32(t.cmd[5])
	t.blocks = uint32(t.cmd[7])<<8 | uint32(t.cmd[8])
	return t.blocks != 0
}

func (t *Target) startDataIn() {
	t.phase = DataIn
	t.seq = 0
}

func (t *Target) startDataOut(n int) {
	t.phase = DataOut
	t.seq = 0
	t.dataMax = n
}

// format finishes the FORMAT UNIT command.
func (t *Target) format() {
	if t.User != nil {
		t.finish(statusGood)
		t.User.Format(t)
		return
	}

	// without a user hook the first block is cleared
	t.address = 0
	clear(t.data[:])
	if err := t.WriteBlock(); err != nil {
		t.check(senseMediumError, ascWriteFault)
		return
	}
	t.finish(statusGood)
}

func putDW(b []uint8, v uint32) {
	b[0] = uint8(v >> 24)
	b[1] = uint8(v >> 16)
	b[2] = uint8(v >> 8)
	b[3] = uint8(v)
}
