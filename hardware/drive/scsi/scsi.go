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

	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/logger"
)

// BlockSize is the size of every block in an attached image.
const BlockSize = 512

const (
	// MaxTargets is the number of addressable target IDs. ID 7 is reserved
	// for the initiator.
	MaxTargets = 7

	// MaxLUNs is the number of logical units per target.
	MaxLUNs = 8

	// MaxUnits is the number of images that can be attached.
	MaxUnits = MaxTargets * MaxLUNs
)

// the default size limits of an image in blocks (512MB)
const defaultImageSize = 512 * 1024 * 1024 / BlockSize

// Phase of the bus from the point of view of the target.
type Phase int

// List of valid Phase values. Arbitration and selection are part of the
// BusFree phase and are distinguished by the state of the BSY line.
const (
	BusFree Phase = iota
	Command
	DataIn
	DataOut
	Status
	MessageIn
)

func (p Phase) String() string {
	switch p {
	case BusFree:
		return "BUSFREE"
	case Command:
		return "COMMAND"
	case DataIn:
		return "DATAIN"
	case DataOut:
		return "DATAOUT"
	case Status:
		return "STATUS"
	case MessageIn:
		return "MESSAGEIN"
	}
	return "unknown phase"
}

// status byte values
const (
	statusGood           = 0x00
	statusCheckCondition = 0x01
)

// sense keys and additional sense codes
const (
	senseMediumError    = 0x03
	senseIllegalRequest = 0x05

	ascWriteFault            = 0x03
	ascLBAOutOfRange         = 0x21
	ascInvalidFieldInCDB     = 0x24
	ascInvalidFieldParamList = 0x26
)

// User is implemented by owners of the target that need to inspect or modify
// blocks as they pass between the host and the image.
type User interface {
	// Read is called after a block has been read into the data buffer and
	// before it is sent to the host
	Read(t *Target)

	// Write is called with a block from the host before it is written
	Write(t *Target)

	// Format is called by a FORMAT UNIT command. The target itself does not
	// change the image
	Format(t *Target)
}

// Logger is the permission used when logging. The environment.Environment
// type satisfies it.
type Logger = logger.Permission

// Target is a SCSI target with up to 56 attached images.
type Target struct {
	name string
	perm Logger

	// input lines. set by the owner before calling ProcessAck() or
	// ProcessNoAck()
	Sel  bool
	Rst  bool
	Atn  bool
	Ack  bool
	BsyI bool

	// MsgAfterStatus moves the bus to MESSAGEIN rather than BUSFREE at the
	// end of the STATUS phase
	MsgAfterStatus bool

	// MaxImageSize is the size of every image in blocks. A value of zero
	// means the size is taken from the length of the file
	MaxImageSize uint32

	// LimitImageSize is the largest size reported by READ CAPACITY
	LimitImageSize uint32

	// User hooks. can be nil
	User User

	phase Phase

	// selected target ID. 0xff when nothing is selected
	target uint8
	lun    uint8

	// the data bus as seen on the wire (inverted)
	databus uint8

	// output lines
	req  bool
	bsyo bool
	cd   bool
	io   bool
	msg  bool

	link    bool
	status  uint8
	command uint8

	senseKey uint8
	asc      uint8

	seq     int
	cmdSize int
	address uint32
	blocks  uint32
	dataMax int

	cmd  [256]uint8
	data [BlockSize]uint8

	files [MaxUnits]diskimage.BlockFile

	// missing disk 0 has been logged
	warnedNoDisk bool
}

// NewTarget is the preferred method of initialisation for the Target type.
// The name is used for logging and as the snapshot module name.
func NewTarget(perm Logger, name string) *Target {
	if perm == nil {
		perm = logger.Allow
	}
	t := &Target{
		name:           name,
		perm:           perm,
		MaxImageSize:   defaultImageSize,
		LimitImageSize: defaultImageSize,
	}
	t.Reset()
	return t
}

func (t *Target) String() string {
	return fmt.Sprintf("%s: %s target=%d lun=%d cmd=%02x seq=%d", t.name, t.phase,
		t.target, t.lun, t.command, t.seq)
}

// Reset the bus state of the target. Attached images and the configuration
// fields are unaffected.
func (t *Target) Reset() {
	t.Rst = true
	t.ProcessNoAck()
	t.Rst = false
	t.warnedNoDisk = false
}

// Bus returns the value of the data bus as seen on the wire.
func (t *Target) Bus() uint8 {
	return t.databus
}

// SetBus puts a value onto the data bus. The value is ignored if the target
// is driving the bus. Returns false if the value was ignored.
func (t *Target) SetBus(v uint8) bool {
	if t.io {
		return false
	}
	t.databus = v
	return true
}

// Phase returns the current bus phase.
func (t *Target) Phase() Phase {
	return t.phase
}

// Req returns the state of the REQ line.
func (t *Target) Req() bool {
	return t.req
}

// BSY returns true if the target is asserting BSY.
func (t *Target) BSY() bool {
	return t.bsyo
}

// CD returns the state of the C/D line.
func (t *Target) CD() bool {
	return t.cd
}

// IO returns the state of the I/O line.
func (t *Target) IO() bool {
	return t.io
}

// MSG returns the state of the MSG line.
func (t *Target) MSG() bool {
	return t.msg
}

// Selected returns the target ID and logical unit currently being addressed.
// The boolean is false if no target is selected.
func (t *Target) Selected() (int, int, bool) {
	if t.target >= MaxTargets {
		return 0, 0, false
	}
	return int(t.target), int(t.lun), true
}

// ProcessNoAck updates the target after a change of the input lines that
// does not complete a handshake. It handles bus reset and the selection
// sequence.
func (t *Target) ProcessNoAck() {
	if t.Rst {
		t.cmdSize = len(t.cmd)
		t.target = 0xff
		t.bsyo = false
		t.req = false
		t.io = false
		t.cd = false
		t.msg = false
		t.seq = 0
		t.link = false
		t.phase = BusFree
		return
	}

	if t.phase != BusFree {
		return
	}

	switch {
	case t.Sel && !t.bsyo:
		// the initiator ID is removed from the list. only a single target
		// ID is accepted
		ids := (t.databus ^ 0xff) & 0x7f
		n := 0
		for i := 0; ids != 0; i++ {
			if ids&1 == 1 {
				t.target = uint8(i)
				n++
			}
			ids >>= 1
		}
		if n == 1 {
			t.bsyo = true
			t.req = false
			t.seq = 0
		} else {
			t.target = 0xff
			t.cmdSize = len(t.cmd)
		}

	case t.Sel && t.bsyo:
		// asserting BSY and waiting for SEL to be released

	case !t.Sel && t.bsyo:
		t.phase = Command
		t.cmdSize = len(t.cmd)
		t.req = true
		t.cd = true
	}
}

// ProcessAck completes a REQ/ACK handshake. Depending on the phase this
// consumes the byte on the data bus or places the next byte on it. A
// handshake while the target is not requesting is ignored.
func (t *Target) ProcessAck() {
	if t.phase == BusFree || !t.req {
		return
	}

	data := t.databus ^ 0xff

	switch t.phase {
	case Status:
		t.cd = true
		if t.link {
			// linked command. the next command starts with the next handshake
			t.seq = 0
			t.phase = Command
			t.io = false
			return
		}
		if t.MsgAfterStatus {
			t.phase = MessageIn
			t.io = true
			t.msg = true
			t.databus = 0xff
		} else {
			t.busFree()
		}
		t.bsyo = false
		return

	case MessageIn:
		t.busFree()
		t.bsyo = false
		return

	case DataOut:
		t.dataOut(data)

	case Command:
		t.commandByte(data)
	}

	if t.phase == DataIn {
		t.dataIn()
	}

	switch t.phase {
	case Status:
		t.io = true
		t.cd = true
		t.databus = (t.status << 1) ^ 0xff
	case DataOut:
		t.cd = false
	}
}

func (t *Target) busFree() {
	t.phase = BusFree
	t.req = false
	t.io = false
	t.msg = false
	t.cd = false
}

// finish the command and move to the STATUS phase.
func (t *Target) finish(status uint8) {
	t.status = status
	t.phase = Status
}

// finish the command with CHECK CONDITION and the supplied sense data.
func (t *Target) check(key uint8, asc uint8) {
	t.senseKey = key
	t.asc = asc
	t.finish(statusCheckCondition)
}

func (t *Target) dataOut(data uint8) {
	t.io = false
	t.cd = false
	t.data[t.seq] = data
	t.seq++
	if t.seq < t.dataMax {
		return
	}

	switch t.command {
	case cmdWrite6, cmdWrite10, cmdWriteVerify:
		if err := t.WriteBlock(); err != nil {
			t.finish(statusCheckCondition)
			return
		}
		t.seq = 0
		t.blocks--
		t.address++
		if t.blocks == 0 {
			t.finish(statusGood)
			return
		}
		if t.address >= t.maxSize() {
			t.check(senseIllegalRequest, ascLBAOutOfRange)
		}

	case cmdFormatUnit:
		// the defect list header must be all zeros
		for _, v := range t.data[:4] {
			if v != 0 {
				t.check(senseIllegalRequest, ascInvalidFieldParamList)
				return
			}
		}
		t.format()

	case cmdReassignBlocks:
		// the defect list is accepted but nothing is done with it
		if t.dataMax == 4 {
			n := int(t.data[0])<<24 | int(t.data[1])<<16 | int(t.data[2])<<8 | int(t.data[3])
			t.dataMax = min(n+4, len(t.data))
			if t.seq < t.dataMax {
				return
			}
		}
		t.finish(statusGood)

	default:
		t.finish(statusGood)
	}
}

func (t *Target) dataIn() {
	if t.seq >= t.dataMax {
		if t.command != cmdRead6 && t.command != cmdRead10 {
			t.finish(statusGood)
			return
		}

		t.seq = 0
		t.blocks--
		t.address++
		if t.blocks == 0 {
			t.finish(statusGood)
			return
		}
		if t.address >= t.maxSize() {
			t.check(senseIllegalRequest, ascLBAOutOfRange)
			return
		}
		if err := t.ReadBlock(); err != nil {
			t.finish(statusCheckCondition)
			return
		}
	}

	t.databus = t.data[t.seq] ^ 0xff
	t.seq++
	t.io = true
	t.cd = false
}
