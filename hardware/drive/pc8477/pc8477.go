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

package pc8477

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/fdd"
	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/logger"
)

// UnsupportedImage is returned by Attach() for images the controller cannot
// read.
const UnsupportedImage = "pc8477: unsupported image type (%s)"

// MechanismDrive is the drive select value of the built in mechanism.
const MechanismDrive = 1

// one of the four drive outputs of the controller
type drive struct {
	fdd *fdd.Drive
	num int

	// motor output and the function it drives
	motor    func(on bool)
	motorOut bool

	// track register. 16 bits wide with SET TRACK
	track int

	seekPulses    int
	seeking       bool
	recalibrating bool
	perpendicular bool
}

// PC8477 is the floppy disk controller with its built in mechanism on drive
// select 1. The other drive outputs have no mechanism.
type PC8477 struct {
	env  *environment.Environment
	name string
	clk  *clocks.Clock

	command  Command
	phase    Phase
	cmdFlags uint8

	// micro program state
	intStep   int
	subStep   int
	byteCount int
	crc       uint16
	scan      mfm.Sync

	drives  [4]drive
	current int
	headSel int

	seekAlarm     *clocks.Alarm
	seekingActive bool

	irq bool

	// the time up to which the micro program has been run
	clkRun uint64

	// registers
	st  [4]uint8
	dor uint8
	tdr uint8

	// SPECIFY values
	stepRate     int
	motorOffTime int
	motorOnTime  int
	nodma        bool

	// CONFIGURE values as written
	config uint8
	pretrk uint8

	// data rate in kbit/s
	rate int

	sector uint8
	is8477 bool

	fifo fifo

	cmd     [9]uint8
	cmdp    int
	cmdSize int
	res     [10]uint8
	resp    int
	resSize int
}

// NewPC8477 is the preferred method of initialisation for the PC8477 type.
func NewPC8477(env *environment.Environment, number int, clk *clocks.Clock) *PC8477 {
	pc := &PC8477{
		env:    env,
		name:   fmt.Sprintf("PC8477_%d", number),
		clk:    clk,
		is8477: true,
	}
	for i := range pc.drives {
		pc.drives[i].num = i
	}

	mech := fdd.NewDrive(4*number + MechanismDrive)
	pc.drives[MechanismDrive].fdd = mech
	pc.drives[MechanismDrive].motor = mech.SetMotor

	if env != nil && env.Prefs != nil {
		pc.is8477 = env.Prefs.PC8477.Get().(bool)
	}

	pc.seekAlarm = clk.NewAlarm(fmt.Sprintf("%sEXEC", pc.name), pc.seekStep)
	pc.Reset()
	return pc
}

func (pc *PC8477) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", pc.name, pc.phase))
	if pc.phase != PhaseWait {
		s.WriteString(fmt.Sprintf(" %s step %d", pc.command, pc.intStep))
	}
	s.WriteString(fmt.Sprintf(" ST0=%#02x ST1=%#02x ST2=%#02x drive %d", pc.st[0], pc.st[1], pc.st[2], pc.current))
	if pc.irq {
		s.WriteString(" IRQ")
	}
	return s.String()
}

// Set8477 selects between the PC8477 and the older DP8473, which lacks the
// VERSION, NSC, DUMPREG, PERPENDICULAR MODE and CONFIGURE commands.
func (pc *PC8477) Set8477(is8477 bool) {
	pc.is8477 = is8477
}

// Drive returns the built in mechanism.
func (pc *PC8477) Drive() *fdd.Drive {
	return pc.drives[MechanismDrive].fdd
}

// SetMotorOutput sets the function driven by the motor output of a drive
// select. The FD drives use the output of drive 0 for the drive LED.
func (pc *PC8477) SetMotorOutput(drive int, fn func(on bool)) {
	pc.drives[drive&3].motor = fn
}

// IRQ returns the state of the interrupt request output.
func (pc *PC8477) IRQ() bool {
	return pc.irq
}

// Phase returns the current protocol phase.
func (pc *PC8477) Phase() Phase {
	return pc.phase
}

func (pc *PC8477) cur() *drive {
	return &pc.drives[pc.current]
}

func (pc *PC8477) fdd() *fdd.Drive {
	return pc.drives[pc.current].fdd
}

// timing in host cycles
func (pc *PC8477) freq() uint64 {
	return uint64(pc.clk.MHz())
}

func (pc *PC8477) byteRate() uint64 {
	return pc.freq() * 8000 / uint64(pc.rate)
}

func (pc *PC8477) stepTime() uint64 {
	return uint64(16-pc.stepRate) * pc.freq() * 500000 / uint64(pc.rate)
}

// rotate the current disk for the elapsed time, in whole byte times
func (pc *PC8477) rotate() {
	now := pc.clk.Now()
	if now <= pc.clkRun {
		return
	}
	b := pc.byteRate()
	pc.clkRun += uint64(pc.fdd().Rotate(int((now-pc.clkRun)/b))) * b
}

// Reset the controller. Any change to the track under the head of the
// mechanism is written back to the image.
func (pc *PC8477) Reset() {
	for i := range pc.drives {
		d := &pc.drives[i]
		_ = d.fdd.Flush()
		d.track = 0
		d.seeking = false
		d.seekPulses = 0
		d.recalibrating = false
		d.perpendicular = false
		if d.motor != nil {
			d.motor(false)
		}
		d.motorOut = false
	}
	pc.current = 0
	pc.headSel = 0
	pc.dor = 0
	pc.tdr = 0
	pc.rate = 250
	pc.stepRate = 0
	pc.motorOffTime = 0
	pc.motorOnTime = 0
	pc.nodma = false
	pc.config = 0
	pc.pretrk = 0
	pc.fifo.reset()
	pc.seekAlarm.Unset()
	pc.seekingActive = false
	pc.clkRun = pc.clk.Now()
	pc.softwareReset()
}

func (pc *PC8477) softwareReset() {
	pc.st = [4]uint8{ST0Interrupts, 0, 0, 0}
	pc.phase = PhaseWait
	pc.command = Invalid
	pc.irq = true
}

// catch up with the host clock if a command is executing
func (pc *PC8477) run() {
	switch pc.phase {
	case PhaseExec, PhaseRead, PhaseWrite:
		pc.phase = pc.execute()
	}
}

// Write a value to a register.
func (pc *PC8477) Write(addr uint16, v uint8) {
	pc.run()

	switch addr & 7 {
	case RegDOR:
		if v&dorReset == dorReset && pc.dor&dorReset == 0 {
			logger.Log(pc.env, pc.name, "reset")
			pc.softwareReset()
		}
		pc.dor = v
		pc.rotate()
		for i := range pc.drives {
			d := &pc.drives[i]
			on := v&(dorMotor<<i) != 0
			if on != d.motorOut && d.motor != nil {
				d.motor(on)
			}
			d.motorOut = on
		}
		pc.current = int(v & dorSelect)
	case RegTDR:
		pc.tdr = v
	case RegData:
		pc.writeData(v)
	case RegDRR:
		for i := range pc.drives {
			pc.drives[i].fdd.SetRate(int(v))
		}
		pc.rate = fdd.DataRates[v&3]
	}
}

func (pc *PC8477) writeData(v uint8) {
	switch pc.phase {
	case PhaseWait:
		c := decode(v)
		pc.cmdp = 0
		pc.resp = 0
		pc.command = c.command
		pc.cmdSize = c.params
		pc.resSize = c.results
		pc.cmdFlags = c.flags
		pc.phase = PhaseCommand
		fallthrough
	case PhaseCommand:
		if pc.cmdp < pc.cmdSize {
			pc.cmd[pc.cmdp] = v
			pc.cmdp++
		}
		if pc.cmdp < pc.cmdSize {
			return
		}
		pc.start()
	case PhaseWrite:
		pc.fifo.hostWrite(v)
	case PhaseExec:
		// a write during execution aborts the command
		pc.st[0] |= ST0Abnormal
		pc.phase = PhaseResult
	}
}

// start the command once all parameter bytes have been received
func (pc *PC8477) start() {
	if pc.command != SenseInterrupt {
		pc.st[1] = 0
		pc.st[2] = 0
		if pc.cmdFlags&flagDS == flagDS {
			pc.current = int(pc.cmd[1] & 3)
		}
		if pc.cmdFlags&flagHDS == flagHDS {
			pc.headSel = int(pc.cmd[1]>>2) & 1
			pc.fdd().SelectHead(pc.headSel)
		}
		pc.st[3] = uint8(pc.current | pc.headSel<<2)
		pc.st[0] = pc.st[3]
		pc.irq = false
	}
	clear(pc.res[:])
	pc.intStep = 0
	pc.fifo.restart()
	pc.rotate()
	pc.fdd().IndexCountReset()
	pc.phase = pc.execute()
}

// Read a value from a register. Registers that are not readable return the
// high byte of the address.
func (pc *PC8477) Read(addr uint16) uint8 {
	pc.run()

	float := uint8(addr >> 8)

	switch addr & 7 {
	case RegDOR:
		if pc.is8477 {
			return pc.dor
		}
	case RegTDR:
		if pc.is8477 {
			return float&0xfc | pc.tdr&0x03
		}
	case RegMSR:
		return pc.msr()
	case RegData:
		switch pc.phase {
		case PhaseRead:
			return pc.fifo.hostRead()
		case PhaseResult:
			if pc.resp == 0 {
				pc.result()
				pc.irq = false
			}
			v := pc.res[pc.resp]
			pc.resp++
			if pc.resp >= pc.resSize || pc.resp >= len(pc.res) {
				pc.phase = PhaseWait
			}
			return v
		}
	case RegDKR:
		v := float & 0x7f
		if pc.fdd().DiskChange() {
			v |= 0x80
		}
		return v
	}
	return float
}

func (pc *PC8477) msr() uint8 {
	var v uint8
	for i := range pc.drives {
		if pc.drives[i].seeking {
			v |= 1 << i
		}
	}
	if pc.phase != PhaseWait {
		v |= MSRBusy
	}
	if pc.nodma && (pc.phase == PhaseRead || pc.phase == PhaseWrite) {
		v |= MSRNonDMA
	}
	if pc.phase == PhaseRead || pc.phase == PhaseResult {
		v |= MSRDIO
	}
	switch pc.phase {
	case PhaseExec:
	case PhaseRead:
		if pc.fifo.fill > 0 {
			v |= MSRRQM
		}
	case PhaseWrite:
		if !pc.fifo.full() {
			v |= MSRRQM
		}
	default:
		v |= MSRRQM
	}
	return v
}

// Peek returns the main status register without running the controller.
func (pc *PC8477) Peek() uint8 {
	return pc.msr()
}

// result fills the result bytes of the finished command
func (pc *PC8477) result() {
	switch pc.command {
	case SenseInterrupt:
		pc.res[0] = pc.st[0]
		pc.res[1] = uint8(pc.cur().track)
	case Version:
		pc.res[0] = 0x90
	case NSC:
		pc.res[0] = 0x72
	case SenseDriveStatus:
		v := pc.st[3] | ST3RDY
		if pc.is8477 {
			v |= ST3TS
		}
		if pc.fdd().Track0() {
			v |= ST3TK0
		}
		if pc.fdd().WriteProtect() {
			v |= ST3WP
		}
		pc.res[0] = v
	case ReadID:
		copy(pc.res[:3], pc.st[:3])
	case Dumpreg:
		for i := range pc.drives {
			pc.res[i] = uint8(pc.drives[i].track)
			if pc.drives[i].perpendicular {
				pc.res[7] |= 0x02 << i
			}
		}
		pc.res[4] = uint8(pc.stepRate<<4 | pc.motorOffTime)
		pc.res[5] = uint8(pc.motorOnTime << 1)
		if pc.nodma {
			pc.res[5] |= 0x01
		}
		pc.res[6] = pc.sector
		pc.res[8] = pc.config
		pc.res[9] = pc.pretrk
	case SetTrack:
		t := pc.cur().track
		if pc.cmd[1]&0x04 == 0x04 {
			t >>= 8
		}
		pc.res[0] = uint8(t)
	case ReadData, WriteData, FormatTrack:
		copy(pc.res[:3], pc.st[:3])
		copy(pc.res[3:7], pc.cmd[2:6])
	default:
		pc.res[0] = pc.st[0]
	}
}

// seekStep is the seek alarm. one step pulse is issued to the first drive
// with outstanding pulses and the alarm is set again until no drive has
// any pulses left
func (pc *PC8477) seekStep() {
	pulsed := false
	for i := range pc.drives {
		d := &pc.drives[i]
		if d.seekPulses < 0 {
			if d.fdd.Track0() {
				continue
			}
			d.fdd.SeekPulse(false)
			d.seekPulses++
			d.seeking = true
			if d.recalibrating && d.seekPulses == 0 && !d.fdd.Track0() {
				pc.st[0] |= ST0EC
			}
			pulsed = true
			break
		}
		if d.seekPulses > 0 {
			d.fdd.SeekPulse(true)
			d.seekPulses--
			d.seeking = true
			pulsed = true
			break
		}
	}

	if !pulsed {
		pc.seekingActive = false
		pc.st[0] |= ST0SE
		pc.irq = true
		return
	}
	pc.seekAlarm.Set(pc.clk.Now() + pc.stepTime())
}

func (pc *PC8477) startSeek() {
	if pc.seekingActive {
		return
	}
	pc.seekAlarm.Set(pc.clk.Now() + pc.stepTime())
	pc.seekingActive = true
}

// Attach a disk image to the mechanism.
func (pc *PC8477) Attach(img diskimage.Image) error {
	switch img.Type() {
	case diskimage.TypeD81, diskimage.TypeD1M, diskimage.TypeD2M, diskimage.TypeD4M:
	default:
		return curated.Errorf(UnsupportedImage, img.Type())
	}
	pc.Drive().Attach(img)
	logger.Logf(pc.env, pc.name, "attached %s image", img.Type())
	return nil
}

// Detach the disk image. A command in progress on the mechanism ends with
// abnormal termination and a missing address mark.
func (pc *PC8477) Detach() {
	if pc.Drive().Image() == nil {
		return
	}
	pc.run()
	if pc.current == MechanismDrive {
		switch pc.phase {
		case PhaseExec, PhaseRead, PhaseWrite:
			pc.st[0] |= ST0Abnormal
			pc.st[1] |= ST1MA
			pc.phase = PhaseResult
		}
	}
	pc.Drive().Detach()
	logger.Log(pc.env, pc.name, "detached image")
}
