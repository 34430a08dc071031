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

package wd1770

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
const UnsupportedImage = "wd1770: unsupported image type (%s)"

// WD1770 is the floppy disk controller and its single mechanism.
type WD1770 struct {
	env  *environment.Environment
	name string
	clk  *clocks.Clock

	// registers
	data   uint8
	track  uint8
	sector uint8
	status uint8
	cmd    uint8
	crc    uint16

	command Command
	typ     Type

	fdd *fdd.Drive

	// micro program state
	step      int
	byteCount int
	tmp       int
	direction bool

	// the time up to which the micro program has been run
	clkRun uint64

	irq bool

	// FM recording. the mechanism only produces MFM tracks so this is
	// always false in practice
	dden bool

	// the previous byte read was a sync byte. used when searching for marks
	// in FM mode and for the CRC of a data field
	sync bool

	// MFM mark scanner
	scan mfm.Sync

	is1772 bool
}

// NewWD1770 is the preferred method of initialisation for the WD1770 type.
func NewWD1770(env *environment.Environment, number int, clk *clocks.Clock) *WD1770 {
	wd := &WD1770{
		env:  env,
		name: fmt.Sprintf("WD1770%d", number),
		clk:  clk,
		fdd:  fdd.NewDrive(4 * number),
	}
	if env != nil && env.Prefs != nil {
		wd.is1772 = env.Prefs.WD1772.Get().(bool)
	}
	wd.Reset()
	return wd
}

func (wd *WD1770) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", wd.name, wd.typ))
	if wd.typ > TypeIdle {
		s.WriteString(fmt.Sprintf(" %s step %d", wd.command, wd.step))
	}
	s.WriteString(fmt.Sprintf(" ST=%#02x TR=%d SR=%d DR=%#02x", wd.status, wd.track, wd.sector, wd.data))
	if wd.irq {
		s.WriteString(" IRQ")
	}
	return s.String()
}

// Set1772 selects the step rate table of the WD1772.
func (wd *WD1770) Set1772(is1772 bool) {
	wd.is1772 = is1772
}

// Drive returns the mechanism.
func (wd *WD1770) Drive() *fdd.Drive {
	return wd.fdd
}

// IRQ returns the state of the interrupt request output.
func (wd *WD1770) IRQ() bool {
	return wd.irq
}

// Type returns the type of the active micro program.
func (wd *WD1770) Type() Type {
	return wd.typ
}

// timing in host cycles
func (wd *WD1770) freq() uint64 {
	return uint64(wd.clk.MHz())
}

func (wd *WD1770) settling() uint64 {
	return wd.freq() * 30000
}

func (wd *WD1770) byteRate() uint64 {
	return wd.freq() * 8000 / 250
}

func (wd *WD1770) stepRate() uint64 {
	i := 0
	if wd.is1772 {
		i = 1
	}
	return wd.freq() * stepRates[i][wd.cmd&flagR]
}

func (wd *WD1770) prepare() uint64 {
	return wd.freq() * 24
}

// waiting returns true if less than d cycles have elapsed since clkRun
func (wd *WD1770) waiting(d uint64) bool {
	return wd.clk.Now() < wd.clkRun+d
}

// rotate the disk for the elapsed time, in whole byte times
func (wd *WD1770) rotate() {
	now := wd.clk.Now()
	if now <= wd.clkRun {
		return
	}
	b := wd.byteRate()
	wd.clkRun += uint64(wd.fdd.Rotate(int((now-wd.clkRun)/b))) * b
}

// byteDue consumes one byte time if it has elapsed
func (wd *WD1770) byteDue() bool {
	if wd.waiting(wd.byteRate()) {
		return false
	}
	wd.clkRun += wd.byteRate()
	return true
}

// setDRQ sets DRQ or lost data if DRQ is already set
func (wd *WD1770) setDRQ() {
	if wd.status&StatusDRQ == StatusDRQ {
		wd.status |= StatusLD
	} else {
		wd.status |= StatusDRQ
	}
}

// isIDMark checks the value read from the disk for an ID address mark
func (wd *WD1770) isIDMark(v uint16) bool {
	if wd.dden {
		return v == mfm.SyncFlag|mfm.IDAM
	}
	m, ok := wd.scan.Feed(v)
	return ok && m == mfm.IDAM
}

// result of a micro program run
type result int

const (
	// waiting for time to pass
	wait result = iota

	// command finished
	done

	// type changed, run the new type immediately
	again
)

// execute runs the microcode up to the current time.
func (wd *WD1770) execute() {
	for {
		var r result

		switch wd.typ {
		case TypeStatus:
			wd.status &^= StatusWP | StatusIP | StatusT0
			if wd.fdd.Index() {
				wd.status |= StatusIP
			}
			if wd.fdd.Track0() {
				wd.status |= StatusT0
			}
			if wd.fdd.WriteProtect() {
				wd.status |= StatusWP
			}
			wd.idle()
			return
		case TypeIdle:
			wd.idle()
			return
		case Type1:
			r = wd.type1()
		case Type2:
			r = wd.type2()
		case Type3:
			r = wd.type3()
		case Type4:
			r = wd.type4()
		}

		switch r {
		case wait:
			return
		case done:
			wd.cmd = 0
			wd.irq = true
			wd.fdd.IndexCountReset()
		}
	}
}

func (wd *WD1770) idle() {
	if wd.waiting(wd.prepare()) {
		return
	}
	wd.status &^= StatusBSY
	wd.rotate()
	if wd.fdd.IndexCount() >= 10 {
		wd.status &^= StatusMO
	}
	if wd.cmd&flagI2 == flagI2 && wd.fdd.IndexCount() != wd.tmp {
		wd.irq = true
		wd.tmp = wd.fdd.IndexCount()
	}
}

// spinUp is the motor on sequence shared by all command types. returns true
// when the motor is up to speed. the step counter is on entry the step of
// the first part of the sequence
func (wd *WD1770) spinUp(first int) bool {
	if wd.step == first {
		if wd.cmd&flagH == flagH || wd.status&StatusMO == StatusMO {
			wd.status |= StatusMO
			wd.step += 2
			return true
		}
		wd.status |= StatusMO
		wd.fdd.IndexCountReset()
		wd.step++
	}
	wd.rotate()
	if wd.fdd.IndexCount() < 6 {
		return false
	}
	wd.step++
	return true
}

// restore, seek and step commands
func (wd *WD1770) type1() result {
	for {
		switch wd.step {
		case 0:
			if wd.waiting(wd.prepare()) {
				return wait
			}
			wd.clkRun += wd.prepare()
			wd.status |= StatusBSY
			wd.status &^= StatusCRC | StatusSE | StatusDRQ
			wd.irq = false
			wd.step++
			fallthrough
		case 1, 2:
			if !wd.spinUp(1) {
				return wait
			}
			continue
		case 3:
			switch wd.command {
			case Step:
			case StepIn:
				wd.direction = true
			case StepOut:
				wd.direction = false
			case Restore:
				wd.track = 0xff
				wd.data = 0x00
				wd.step++
				continue
			default:
				wd.step++
				continue
			}
			if wd.cmd&flagU == flagU {
				wd.step = 5
			} else {
				wd.step = 6
			}
			continue
		case 4:
			if wd.data == wd.track {
				wd.step = 8
				continue
			}
			wd.direction = wd.data > wd.track
			wd.step++
			fallthrough
		case 5:
			if wd.direction {
				wd.track++
			} else {
				wd.track--
			}
			wd.step++
			fallthrough
		case 6:
			if wd.fdd.Track0() && !wd.direction {
				wd.track = 0
				wd.step = 8
				continue
			}
			wd.fdd.SeekPulse(wd.direction)
			wd.step++
			fallthrough
		case 7:
			if wd.waiting(wd.stepRate()) {
				return wait
			}
			wd.clkRun += wd.stepRate()
			if Command(wd.cmd) < Step {
				wd.step = 4
				continue
			}
			wd.step++
			fallthrough
		case 8:
			if wd.cmd&flagV != flagV {
				wd.typ = TypeStatus
				return done
			}
			wd.step++
			fallthrough
		case 9:
			if wd.waiting(wd.settling()) {
				return wait
			}
			wd.clkRun += wd.settling()
			wd.fdd.IndexCountReset()
			wd.sync = false
			wd.scan.Reset()
			wd.step++
			fallthrough
		case 10:
			if wd.fdd.IndexCount() >= 6 {
				wd.status |= StatusSE
				wd.typ = TypeStatus
				return done
			}
			if !wd.byteDue() {
				return wait
			}
			if !wd.isIDMark(wd.fdd.Read()) {
				continue
			}
			wd.crc = mfm.SeedID
			wd.byteCount = 6
			wd.step++
			fallthrough
		case 11:
			if !wd.byteDue() {
				return wait
			}
			v := wd.fdd.Read()
			if wd.byteCount == 6 && v != uint16(wd.track) {
				wd.step--
				continue
			}
			wd.crc = mfm.CRC(wd.crc, uint8(v))
			wd.byteCount--
			if wd.byteCount > 0 {
				continue
			}
			if wd.crc != 0 {
				wd.status |= StatusCRC
				wd.step--
				continue
			}
			wd.status &^= StatusCRC
			wd.typ = TypeStatus
			return done
		}
	}
}

// read sector and write sector commands
func (wd *WD1770) type2() result {
	for {
		switch wd.step {
		case 0:
			if wd.waiting(wd.prepare()) {
				return wait
			}
			wd.clkRun += wd.prepare()
			wd.status |= StatusBSY
			wd.status &^= StatusDRQ | StatusLD | StatusRNF | StatusRT | StatusWP
			wd.step++
			fallthrough
		case 1, 2:
			if !wd.spinUp(1) {
				return wait
			}
			continue
		case 3:
			if wd.cmd&flagE != flagE {
				wd.step += 2
				continue
			}
			wd.step++
			fallthrough
		case 4:
			if wd.waiting(wd.settling()) {
				return wait
			}
			wd.clkRun += wd.settling()
			wd.step++
			fallthrough
		case 5:
			if wd.command == WriteSector && wd.fdd.WriteProtect() {
				wd.status |= StatusWP
				wd.typ = TypeIdle
				return done
			}
			wd.fdd.IndexCountReset()
			wd.sync = false
			wd.scan.Reset()
			wd.step++
			fallthrough
		case 6:
			if wd.fdd.IndexCount() >= 5 {
				wd.status |= StatusRNF
				wd.typ = TypeIdle
				return done
			}
			if !wd.byteDue() {
				return wait
			}
			if !wd.isIDMark(wd.fdd.Read()) {
				continue
			}
			wd.crc = mfm.SeedID
			wd.byteCount = 6
			wd.step++
			fallthrough
		case 7:
			if !wd.byteDue() {
				return wait
			}
			v := wd.fdd.Read()
			if wd.byteCount == 6 && v != uint16(wd.track) {
				wd.step--
				continue
			}
			if wd.byteCount == 4 && v != uint16(wd.sector) {
				wd.step--
				continue
			}
			if wd.byteCount == 3 {
				wd.tmp = int(v & 0x03)
			}
			wd.crc = mfm.CRC(wd.crc, uint8(v))
			wd.byteCount--
			if wd.byteCount > 0 {
				continue
			}
			if wd.crc != 0 {
				wd.status |= StatusCRC
				wd.step--
				continue
			}
			wd.status &^= StatusCRC
			wd.crc = mfm.SeedFull
			if wd.command == WriteSector {
				wd.byteCount = 0
				wd.step = 10
				continue
			}
			wd.byteCount = 43
			wd.sync = false
			wd.step++
			fallthrough
		case 8:
			if wd.waiting(wd.byteRate()) {
				return wait
			}
			if wd.byteCount == 0 {
				// no data mark. look for the next ID
				wd.step -= 2
				wd.scan.Reset()
				continue
			}
			wd.byteCount--
			wd.clkRun += wd.byteRate()
			v := wd.fdd.Read()
			if !wd.isDataMark(v) {
				if !wd.sync {
					wd.crc = mfm.SeedFull
				}
				wd.crc = mfm.CRC(wd.crc, uint8(v))
				wd.sync = v == mfm.SyncByte
				continue
			}
			wd.crc = mfm.CRC(wd.crc, uint8(v))
			if uint8(v) == mfm.DeletedDAM {
				wd.status |= StatusRT
			}
			wd.byteCount = (128 << wd.tmp) + 2
			wd.step++
			fallthrough
		case 9:
			if !wd.byteDue() {
				return wait
			}
			v := uint8(wd.fdd.Read())
			if wd.byteCount > 2 {
				wd.setDRQ()
				wd.data = v
			}
			wd.crc = mfm.CRC(wd.crc, v)
			wd.byteCount--
			if wd.byteCount > 0 {
				continue
			}
			if wd.crc != 0 {
				wd.status |= StatusCRC
				wd.typ = TypeIdle
				return done
			}
			if wd.cmd&flagM == flagM {
				wd.sector++
				wd.step = 5
				continue
			}
			wd.typ = TypeIdle
			return done
		case 10:
			if !wd.byteDue() {
				return wait
			}
			wd.byteCount++
			if wd.byteCount == 2 {
				wd.status |= StatusDRQ
			}
			if wd.byteCount == 2+9 && wd.status&StatusDRQ == StatusDRQ {
				wd.status ^= StatusDRQ | StatusLD
				wd.typ = TypeIdle
				return done
			}
			// gap2 is read and then rewritten with zeros from the DRQ
			// deadline onwards
			readEnd, zeroEnd := 11, 11+12
			if wd.dden {
				readEnd, zeroEnd = 0, 6
			}
			if wd.byteCount <= readEnd+2+9 {
				wd.fdd.Read()
				continue
			}
			if wd.byteCount <= zeroEnd+2+9 {
				wd.fdd.Write(0)
				continue
			}
			if !wd.dden && wd.byteCount <= 11+12+2+9+3 {
				wd.fdd.Write(mfm.SyncByte)
				wd.crc = mfm.CRC(wd.crc, mfm.SyncData)
				continue
			}
			mark := uint16(mfm.DAM)
			if wd.cmd&flagA == flagA {
				mark = mfm.DeletedDAM
			}
			if wd.dden {
				mark |= mfm.SyncFlag
			}
			wd.fdd.Write(mark)
			wd.crc = mfm.CRC(wd.crc, uint8(mark))
			wd.byteCount = (128 << wd.tmp) + 3
			wd.step++
			fallthrough
		case 11:
			if !wd.byteDue() {
				return wait
			}
			wd.byteCount--
			switch wd.byteCount {
			case 0:
				wd.fdd.Write(0xff)
			case 1:
				wd.fdd.Write(wd.crc & 0xff)
				continue
			case 2:
				wd.fdd.Write(wd.crc >> 8)
				continue
			default:
				wd.setDRQ()
				wd.crc = mfm.CRC(wd.crc, wd.data)
				wd.fdd.Write(uint16(wd.data))
				wd.data = 0
				continue
			}
			if wd.cmd&flagM == flagM {
				wd.sector++
				wd.step = 5
				continue
			}
			wd.typ = TypeIdle
			return done
		}
	}
}

// isDataMark checks the value read from the disk for a data address mark
// following a sync byte
func (wd *WD1770) isDataMark(v uint16) bool {
	if wd.dden {
		return v == mfm.SyncFlag|mfm.DAM || v == mfm.SyncFlag|mfm.DeletedDAM
	}
	return wd.sync && (v == mfm.DAM || v == mfm.DeletedDAM)
}

// read address, read track and write track commands
func (wd *WD1770) type3() result {
	for {
		switch wd.step {
		case 0:
			if wd.waiting(wd.prepare()) {
				return wait
			}
			wd.clkRun += wd.prepare()
			wd.status |= StatusBSY
			wd.status &^= StatusDRQ | StatusLD | StatusRNF | StatusCRC
			wd.step++
			fallthrough
		case 1, 2:
			if !wd.spinUp(1) {
				return wait
			}
			continue
		case 3:
			if wd.cmd&flagE != flagE {
				wd.step += 2
				continue
			}
			wd.step++
			fallthrough
		case 4:
			if wd.waiting(wd.settling()) {
				return wait
			}
			wd.clkRun += wd.settling()
			wd.step++
			fallthrough
		case 5:
			wd.fdd.IndexCountReset()
			wd.sync = false
			wd.scan.Reset()
			wd.step++
			switch wd.command {
			case WriteTrack:
				if wd.fdd.WriteProtect() {
					wd.status |= StatusWP
					wd.typ = TypeIdle
					return done
				}
				wd.status |= StatusDRQ
				wd.byteCount = 3
				wd.step = 9
				continue
			case ReadTrack:
			default:
				wd.step++
				continue
			}
			fallthrough
		case 6:
			// read track starts at the index hole
			if wd.fdd.IndexCount() < 1 {
				wd.rotate()
				return wait
			}
			if wd.fdd.IndexCount() > 1 {
				wd.typ = TypeIdle
				return done
			}
			if !wd.byteDue() {
				return wait
			}
			wd.data = uint8(wd.fdd.Read())
			wd.setDRQ()
			continue
		case 7:
			if wd.fdd.IndexCount() >= 6 {
				wd.status |= StatusRNF
				wd.typ = TypeIdle
				return done
			}
			if !wd.byteDue() {
				return wait
			}
			if !wd.isIDMark(wd.fdd.Read()) {
				continue
			}
			wd.crc = mfm.SeedID
			wd.byteCount = 6
			wd.step++
			fallthrough
		case 8:
			if wd.waiting(wd.byteRate()) {
				return wait
			}
			wd.setDRQ()
			wd.clkRun += wd.byteRate()
			wd.data = uint8(wd.fdd.Read())
			if wd.byteCount == 6 {
				wd.sector = wd.data
			}
			wd.crc = mfm.CRC(wd.crc, wd.data)
			wd.byteCount--
			if wd.byteCount > 0 {
				continue
			}
			if wd.crc != 0 {
				wd.status |= StatusCRC
			}
			wd.typ = TypeIdle
			return done
		case 9:
			// the first byte must be written to the data register within
			// three byte times
			if !wd.byteDue() {
				return wait
			}
			wd.fdd.Read()
			wd.byteCount--
			if wd.byteCount > 0 {
				continue
			}
			if wd.status&StatusDRQ == StatusDRQ {
				wd.status ^= StatusDRQ | StatusLD
				wd.typ = TypeIdle
				return done
			}
			wd.byteCount = 0
			wd.tmp = 0
			wd.step++
			fallthrough
		case 10:
			// write track starts at the index hole
			if wd.fdd.IndexCount() < 1 {
				wd.rotate()
				return wait
			}
			if wd.fdd.IndexCount() > 1 {
				wd.status &^= StatusDRQ
				wd.typ = TypeIdle
				return done
			}
			if !wd.byteDue() {
				return wait
			}
			if wd.byteCount > 0 {
				wd.fdd.Write(wd.crc & 0xff)
				wd.byteCount--
				continue
			}
			wd.setDRQ()
			wd.fdd.Write(wd.translate(wd.data))
			wd.data = 0
			continue
		}
	}
}

// translate a byte written to the data register during write track into
// the value recorded on the disk. special values produce sync bytes, marks
// and the CRC
func (wd *WD1770) translate(d uint8) uint16 {
	v := uint16(d)

	if !wd.dden {
		switch d {
		case 0xf5:
			v = mfm.SyncByte
			if wd.tmp == 0 {
				wd.crc = mfm.SeedFull
				wd.tmp = 1
			}
		case 0xf6:
			v = 0x1c2
		case 0xf7:
			wd.byteCount = 1
			v = wd.crc >> 8
			wd.tmp = 0
		}
	} else {
		switch d {
		case 0xf7:
			wd.byteCount = 1
			v = wd.crc >> 8
			wd.tmp = 0
		case 0xf8, 0xf9, 0xfa, 0xfb, 0xfe:
			if wd.tmp == 0 {
				wd.crc = mfm.SeedFull
				wd.tmp = 1
			}
			v |= mfm.SyncFlag
		case 0xfc:
			v |= mfm.SyncFlag
		}
	}

	if wd.tmp != 0 {
		wd.crc = mfm.CRC(wd.crc, uint8(v))
	}
	return v
}

// force interrupt
func (wd *WD1770) type4() result {
	if wd.waiting(wd.prepare()) {
		return wait
	}
	wd.clkRun += wd.prepare()
	wd.status &= StatusBSY
	if wd.cmd&flagI3 == flagI3 {
		wd.irq = true
	}
	wd.fdd.IndexCountReset()
	wd.tmp = wd.fdd.IndexCount()
	if wd.status&StatusBSY == StatusBSY {
		wd.typ = TypeIdle
	} else {
		wd.typ = TypeStatus
	}
	return again
}

// Write a value to a register. The address is masked to the four registers.
func (wd *WD1770) Write(addr uint16, v uint8) {
	wd.execute()

	switch addr & 3 {
	case RegCommand:
		wd.cmd = v
		wd.command, wd.typ = decode(v)
		wd.rotate()
		wd.step = 0
		wd.execute()
	case RegTrack:
		wd.track = v
	case RegSector:
		wd.sector = v
	case RegData:
		wd.status &^= StatusDRQ
		wd.data = v
	}
}

// Read a value from a register. The address is masked to the four registers.
func (wd *WD1770) Read(addr uint16) uint8 {
	wd.execute()

	switch addr & 3 {
	case RegStatus:
		wd.irq = false
		return wd.status
	case RegTrack:
		return wd.track
	case RegSector:
		return wd.sector
	case RegData:
		wd.status &^= StatusDRQ
		return wd.data
	}
	return 0
}

// Peek returns the value of a register without side effects and without
// running the microcode.
func (wd *WD1770) Peek(addr uint16) uint8 {
	switch addr & 3 {
	case RegStatus:
		return wd.status
	case RegTrack:
		return wd.track
	case RegSector:
		return wd.sector
	}
	return wd.data
}

// Reset the controller. The mechanism is not affected except that any
// change to the track under the head is written back to the image.
func (wd *WD1770) Reset() {
	_ = wd.fdd.Flush()
	wd.typ = TypeIdle
	wd.status = 0
	wd.track = 0
	wd.sector = 0
	wd.data = 0
	wd.cmd = 0
	wd.step = -1
	wd.clkRun = wd.clk.Now()
}

// Attach a disk image. Only D81 and D1M images are supported by the
// controller.
func (wd *WD1770) Attach(img diskimage.Image) error {
	switch img.Type() {
	case diskimage.TypeD81, diskimage.TypeD1M:
	default:
		return curated.Errorf(UnsupportedImage, img.Type())
	}
	wd.fdd.Attach(img)
	logger.Logf(wd.env, wd.name, "attached %s image", img.Type())
	return nil
}

// Detach the disk image. A command in progress is aborted with record not
// found and the controller returns to idle.
func (wd *WD1770) Detach() {
	if wd.fdd.Image() == nil {
		return
	}
	wd.execute()
	if wd.typ > TypeIdle {
		wd.status |= StatusRNF
		wd.status &^= StatusBSY | StatusDRQ
		wd.typ = TypeIdle
		wd.cmd = 0
		wd.irq = true
	}
	wd.fdd.Detach()
	logger.Log(wd.env, wd.name, "detached image")
}

// SetSide selects the side of the disk.
func (wd *WD1770) SetSide(side int) {
	wd.fdd.SelectHead(side)
}

// SetMotor turns the mechanism motor on or off.
func (wd *WD1770) SetMotor(on bool) {
	wd.fdd.SetMotor(on)
}

// DiskChange returns the disk change signal of the mechanism.
func (wd *WD1770) DiskChange() bool {
	return wd.fdd.DiskChange()
}
