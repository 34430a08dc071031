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
	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/logger"
)

// results of findSync() other than a mark
const (
	syncTimeout = -1
	syncPending = 0x200
)

// findSync reads from the disk until a mark following a run of sync bytes
// is found. returns the mark, syncPending if the elapsed time ran out or
// syncTimeout on the second index pulse
func (pc *PC8477) findSync() int {
	drv := pc.fdd()
	br := pc.byteRate()
	for pc.clk.Now() >= pc.clkRun+br {
		if drv.IndexCount() > 1 {
			return syncTimeout
		}
		pc.clkRun += br
		if m, ok := pc.scan.Feed(drv.Read()); ok {
			pc.scan.Reset()
			return int(m)
		}
	}
	return syncPending
}

// results of readIDField()
const (
	idPending = iota
	idDone
	idTimeout
)

// readIDField reads the four bytes and the CRC of an ID field into bytes 3
// to 6 of the result
func (pc *PC8477) readIDField() int {
	drv := pc.fdd()
	br := pc.byteRate()
	for pc.clk.Now() >= pc.clkRun+br {
		pc.clkRun += br
		b := uint8(drv.Read())
		pc.crc = mfm.CRC(pc.crc, b)
		if pc.subStep < 4 {
			pc.res[3+pc.subStep] = b
		}
		pc.subStep++
		if pc.subStep == 6 {
			pc.st[1] &^= ST1MA
			return idDone
		}
		if drv.IndexCount() > 1 {
			return idTimeout
		}
	}
	return idPending
}

func (pc *PC8477) abnormal() Phase {
	pc.st[0] |= ST0Abnormal
	return PhaseResult
}

func (pc *PC8477) invalid() Phase {
	logger.Logf(pc.env, pc.name, "invalid command %#02x", pc.cmd[0])
	pc.command = Invalid
	pc.st[0] = pc.st[3] | ST0Invalid
	pc.resSize = 1
	return PhaseResult
}

// execute runs the active command up to the current time and returns the
// new phase.
func (pc *PC8477) execute() Phase {
	switch pc.command {
	case Specify:
		pc.stepRate = int(pc.cmd[1] >> 4)
		pc.motorOffTime = int(pc.cmd[1] & 0x0f)
		pc.motorOnTime = int(pc.cmd[2] >> 1)
		pc.nodma = pc.cmd[2]&0x01 == 0x01
		return PhaseWait

	case SenseInterrupt:
		if !pc.irq {
			break
		}
		pc.irq = false
		pc.cur().seeking = false
		return PhaseResult

	case Version, NSC, Dumpreg:
		if !pc.is8477 {
			break
		}
		return PhaseResult

	case SenseDriveStatus:
		return PhaseResult

	case ReadID:
		return pc.readID()

	case Recalibrate:
		d := pc.cur()
		d.seekPulses = -85
		if pc.is8477 {
			d.seekPulses = -77
		}
		d.track = 0
		d.recalibrating = true
		pc.startSeek()
		return PhaseWait

	case Seek:
		d := pc.cur()
		d.seekPulses = int(pc.cmd[2]) - d.track
		d.track = int(pc.cmd[2])
		d.recalibrating = false
		pc.startSeek()
		return PhaseWait

	case PerpendicularMode:
		if !pc.is8477 {
			break
		}
		if pc.cmd[1]&0x80 == 0x80 {
			for i := range pc.drives {
				pc.drives[i].perpendicular = (pc.cmd[1]>>(2+i))&1 == 1
			}
		}
		return PhaseWait

	case Configure:
		if !pc.is8477 {
			break
		}
		pc.config = pc.cmd[2]
		pc.pretrk = pc.cmd[3]
		if pc.config&0x20 == 0x20 {
			pc.fifo.configure(1)
		} else {
			pc.fifo.configure(int(pc.config&0x0f) + 1)
		}
		return PhaseWait

	case SetTrack:
		if pc.cmd[1]&0xf8 != 0x30 {
			break
		}
		if pc.cmd[0]&0x40 == 0x40 {
			d := pc.cur()
			if pc.cmd[1]&0x04 == 0x04 {
				d.track = d.track&0xff | int(pc.cmd[2])<<8
			} else {
				d.track = d.track&0xff00 | int(pc.cmd[2])
			}
		}
		return PhaseResult

	case ReadData:
		return pc.readData()

	case WriteData:
		return pc.writeSectors()

	case FormatTrack:
		return pc.formatTrack()
	}

	return pc.invalid()
}

func (pc *PC8477) readID() Phase {
	switch pc.intStep {
	case 0:
		pc.st[1] |= ST1MA
		pc.scan.Reset()
		pc.intStep++
		fallthrough
	case 1:
		for {
			m := pc.findSync()
			if m == syncTimeout {
				return pc.abnormal()
			}
			if m == syncPending {
				return PhaseExec
			}
			if m == mfm.IDAM {
				break
			}
		}
		pc.subStep = 0
		pc.crc = mfm.SeedID
		pc.intStep++
		fallthrough
	case 2:
		switch pc.readIDField() {
		case idPending:
			return PhaseExec
		case idTimeout:
			return pc.abnormal()
		}
		if pc.crc != 0 {
			pc.st[1] |= ST1CE
			return pc.abnormal()
		}
		return PhaseResult
	}
	return PhaseExec
}

// matchID checks the track of the ID just read by READ DATA or WRITE DATA.
// returns the phase to end the command with and false if the command has
// ended
func (pc *PC8477) matchID() (Phase, bool) {
	if pc.res[3] == 0xff {
		pc.st[2] = ST2BT
		return pc.abnormal(), false
	}
	if pc.cmd[2] != pc.res[3] {
		pc.st[2] = ST2WT
		return pc.abnormal(), false
	}
	return PhaseWait, true
}

// the remaining ID fields match the command
func (pc *PC8477) sameID() bool {
	return pc.crc == 0 && pc.cmd[3] == pc.res[4] && pc.sector == pc.res[5] && pc.cmd[5] == pc.res[6]
}

// steps of READ DATA and WRITE DATA
const (
	rwStart = iota
	rwFindID
	rwReadID
	rwFindData
	rwData
	rwCRCHi
	rwCRCLo
	rwNext
)

func (pc *PC8477) readData() Phase {
	drv := pc.fdd()
	br := pc.byteRate()

	for pc.clk.Now() >= pc.clkRun+br {
		switch pc.intStep {
		case rwStart:
			pc.sector = pc.cmd[4]
			pc.st[1] |= ST1MA
			pc.scan.Reset()
			pc.intStep++
			fallthrough
		case rwFindID:
			m := pc.findSync()
			if m == syncTimeout {
				return pc.abnormal()
			}
			if m != mfm.IDAM {
				continue
			}
			pc.st[1] &^= ST1MA
			pc.st[1] |= ST1ND
			pc.subStep = 0
			pc.crc = mfm.SeedID
			pc.intStep++
			fallthrough
		case rwReadID:
			switch pc.readIDField() {
			case idPending:
				continue
			case idTimeout:
				return pc.abnormal()
			}
			if ph, ok := pc.matchID(); !ok {
				return ph
			}
			if !pc.sameID() {
				pc.intStep = rwFindID
				continue
			}
			pc.byteCount = 128 << (pc.res[6] & 0x07)
			pc.intStep++
			fallthrough
		case rwFindData:
			m := pc.findSync()
			if m == syncTimeout {
				return pc.abnormal()
			}
			if m == syncPending {
				continue
			}
			if m == mfm.DeletedDAM {
				pc.st[2] |= ST2CM
				return pc.abnormal()
			}
			if m != mfm.DAM {
				pc.st[2] |= ST2MD
				return pc.abnormal()
			}
			pc.st[1] &^= ST1ND
			pc.crc = mfm.SeedData
			pc.intStep++
		case rwData:
			pc.clkRun += br
			v := uint8(drv.Read())
			pc.crc = mfm.CRC(pc.crc, v)
			if !pc.fifo.push(v) {
				pc.st[1] |= ST1OR
				return pc.abnormal()
			}
			pc.byteCount--
			if pc.byteCount == 0 {
				pc.intStep++
			}
		case rwCRCHi, rwCRCLo:
			pc.clkRun += br
			pc.crc = mfm.CRC(pc.crc, uint8(drv.Read()))
			pc.intStep++
			if pc.intStep == rwNext && pc.crc != 0 {
				pc.st[1] |= ST1CE
				pc.st[2] |= ST2DD
				return pc.abnormal()
			}
		case rwNext:
			// the host must empty the FIFO before the next sector
			if pc.fifo.fill > 0 {
				pc.rotate()
				return PhaseRead
			}
			if pc.cmd[6] != pc.sector {
				pc.sector++
				drv.IndexCountReset()
				pc.intStep = rwFindID
				continue
			}
			pc.st[1] |= ST1EN
			return pc.abnormal()
		}
	}
	return PhaseRead
}

func (pc *PC8477) writeSectors() Phase {
	drv := pc.fdd()
	br := pc.byteRate()

	for pc.clk.Now() >= pc.clkRun+br {
		switch pc.intStep {
		case rwStart:
			pc.sector = pc.cmd[4]
			pc.st[1] |= ST1MA
			pc.scan.Reset()
			pc.intStep++
			fallthrough
		case rwFindID:
			m := pc.findSync()
			if m == syncTimeout {
				return pc.abnormal()
			}
			if m != mfm.IDAM {
				continue
			}
			pc.st[1] &^= ST1MA
			pc.st[1] |= ST1ND
			pc.subStep = 0
			pc.crc = mfm.SeedID
			pc.intStep++
			fallthrough
		case rwReadID:
			switch pc.readIDField() {
			case idPending:
				continue
			case idTimeout:
				return pc.abnormal()
			}
			if ph, ok := pc.matchID(); !ok {
				return ph
			}
			if drv.WriteProtect() {
				pc.st[1] |= ST1NW
				return pc.abnormal()
			}
			if !pc.sameID() {
				pc.intStep = rwFindID
				continue
			}
			pc.byteCount = 128 << (pc.res[6] & 0x07)
			pc.intStep++
			fallthrough
		case rwFindData:
			m := pc.findSync()
			if m == syncTimeout {
				return pc.abnormal()
			}
			if m == syncPending {
				continue
			}
			if m != mfm.DAM {
				pc.st[2] |= ST2MD
				return pc.abnormal()
			}
			pc.st[1] &^= ST1ND
			pc.crc = mfm.SeedData
			pc.intStep++
		case rwData:
			v, ok := pc.fifo.pop()
			if !ok {
				pc.st[1] |= ST1OR
				return pc.abnormal()
			}
			drv.Write(uint16(v))
			pc.clkRun += br
			pc.crc = mfm.CRC(pc.crc, v)
			pc.byteCount--
			if pc.byteCount == 0 {
				pc.intStep++
			}
		case rwCRCHi:
			drv.Write(pc.crc >> 8)
			pc.clkRun += br
			pc.intStep++
		case rwCRCLo:
			drv.Write(pc.crc & 0xff)
			pc.clkRun += br
			pc.intStep++
		case rwNext:
			if pc.cmd[6] != pc.sector {
				pc.sector++
				drv.IndexCountReset()
				pc.intStep = rwFindID
				continue
			}
			pc.st[1] |= ST1EN
			return pc.abnormal()
		}
	}
	return PhaseWrite
}

// steps of FORMAT A TRACK
const (
	fmtStart = iota
	fmtIndex
	fmtGap4a
	fmtIndexZeros
	fmtIndexSync
	fmtIAM
	fmtGap
	fmtIDZeros
	fmtIDSync
	fmtIDAM
	fmtID
	fmtIDCRCHi
	fmtIDCRCLo
	fmtGap2
	fmtDataZeros
	fmtDataSync
	fmtDAM
	fmtData
	fmtDataCRCHi
	fmtDataCRCLo
	fmtGap4b
)

// put writes one byte of a field. when the field is complete the next step
// starts with a new byte count
func (pc *PC8477) put(v uint16, next int, count int) {
	pc.fdd().Write(v)
	pc.clkRun += pc.byteRate()
	pc.byteCount--
	if pc.byteCount <= 0 {
		pc.intStep = next
		pc.byteCount = count
	}
}

func (pc *PC8477) formatTrack() Phase {
	drv := pc.fdd()
	br := pc.byteRate()

	for pc.clk.Now() >= pc.clkRun+br {
		switch pc.intStep {
		case fmtStart:
			pc.sector = 0
			pc.intStep++
			fallthrough
		case fmtIndex:
			// formatting starts at the index hole
			pc.clkRun += br
			drv.Read()
			if drv.IndexCount() == 0 {
				continue
			}
			if drv.WriteProtect() {
				pc.st[1] |= ST1NW
				return pc.abnormal()
			}
			pc.intStep = fmtGap4a
			pc.byteCount = mfm.Gap4a
		case fmtGap4a:
			pc.put(mfm.Gap, fmtIndexZeros, mfm.SyncZeros)
		case fmtIndexZeros:
			pc.put(mfm.Zero, fmtIndexSync, mfm.SyncCount)
		case fmtIndexSync:
			pc.put(mfm.SyncByte, fmtIAM, 1)
		case fmtIAM:
			pc.put(mfm.IAM, fmtGap, mfm.GapIndexMark)
		case fmtGap:
			pc.put(mfm.Gap, fmtIDZeros, mfm.SyncZeros)
		case fmtIDZeros:
			pc.put(mfm.Zero, fmtIDSync, mfm.SyncCount)
		case fmtIDSync:
			pc.put(mfm.SyncByte, fmtIDAM, 1)
		case fmtIDAM:
			pc.crc = mfm.SeedID
			pc.put(mfm.IDAM, fmtID, 4)
		case fmtID:
			v, ok := pc.fifo.pop()
			if !ok {
				pc.st[1] |= ST1OR
				return pc.abnormal()
			}
			pc.crc = mfm.CRC(pc.crc, v)
			pc.put(uint16(v), fmtIDCRCHi, 1)
		case fmtIDCRCHi:
			pc.put(pc.crc>>8, fmtIDCRCLo, 1)
		case fmtIDCRCLo:
			gap2 := 22
			if pc.rate == 1000 && pc.cur().perpendicular {
				gap2 = 41
			}
			pc.put(pc.crc&0xff, fmtGap2, gap2)
		case fmtGap2:
			pc.put(mfm.Gap, fmtDataZeros, mfm.SyncZeros)
		case fmtDataZeros:
			pc.put(mfm.Zero, fmtDataSync, mfm.SyncCount)
		case fmtDataSync:
			pc.put(mfm.SyncByte, fmtDAM, 1)
		case fmtDAM:
			pc.crc = mfm.SeedData
			pc.put(mfm.DAM, fmtData, 128<<(pc.cmd[2]&0x07))
		case fmtData:
			pc.crc = mfm.CRC(pc.crc, pc.cmd[5])
			pc.put(uint16(pc.cmd[5]), fmtDataCRCHi, 1)
		case fmtDataCRCHi:
			pc.put(pc.crc>>8, fmtDataCRCLo, 1)
		case fmtDataCRCLo:
			pc.sector++
			if pc.sector < pc.cmd[3] {
				pc.put(pc.crc&0xff, fmtGap, int(pc.cmd[4]))
			} else {
				pc.put(pc.crc&0xff, fmtGap4b, 1)
			}
		case fmtGap4b:
			drv.Write(mfm.Gap)
			pc.clkRun += br
		}

		if drv.IndexCount() > 1 {
			pc.rotate()
			short := pc.sector < pc.cmd[3]
			pc.cmd[3] = pc.sector
			if short {
				return pc.abnormal()
			}
			return PhaseResult
		}
	}
	return PhaseWrite
}
