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

package pc8477_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/pc8477"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type harness struct {
	t   *testing.T
	clk *clocks.Clock
	env *environment.Environment
	pc  *pc8477.PC8477
	dsk *diskimage.Disk

	// number of cycles between polls of the main status register
	poll uint64
}

// drive 1 with the head on side 0
const drive = pc8477.MechanismDrive

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, poll: 16}
	h.clk = clocks.NewClock(clocks.DefaultMHz)

	var err error
	h.env, err = environment.NewEnvironment(h.clk, preferences.NewDefaultPreferences())
	test.DemandSuccess(t, err)

	h.dsk, err = diskimage.Blank(diskimage.TypeD81)
	test.DemandSuccess(t, err)

	h.pc = pc8477.NewPC8477(h.env, 0, h.clk)
	test.DemandSuccess(t, h.pc.Attach(h.dsk))

	// leave reset with the motor of the mechanism on
	h.pc.Write(pc8477.RegDOR, 0x04|0x20|drive)
	h.pc.Write(pc8477.RegDRR, 2)

	// acknowledge the reset interrupt
	res := h.exec(nil, 0x08)
	test.DemandEquality(t, len(res), 2)

	// non-DMA mode so that the execution phase shows in the status register
	h.exec(nil, 0x03, 0xdf, 0x03)
	return h
}

// maximum number of polls before a command is considered hung
const maxPolls = 1000000

// execData sends a command and runs it to completion, supplying data to the
// FIFO with the write function and taking data from it with the read
// function. Either function can be nil, in which case the host does not
// service the FIFO in that direction. Returns the result bytes.
func (h *harness) execData(read func(uint8), write func() uint8, cmd ...uint8) []uint8 {
	h.t.Helper()
	for _, b := range cmd {
		h.pc.Write(pc8477.RegData, b)
	}

	var res []uint8
	for range maxPolls {
		msr := h.pc.Read(pc8477.RegMSR)
		if msr&pc8477.MSRBusy == 0 {
			return res
		}
		if msr&pc8477.MSRRQM == pc8477.MSRRQM {
			switch {
			case msr&pc8477.MSRNonDMA == pc8477.MSRNonDMA && msr&pc8477.MSRDIO == pc8477.MSRDIO:
				if read != nil {
					read(h.pc.Read(pc8477.RegData))
					continue
				}
			case msr&pc8477.MSRNonDMA == pc8477.MSRNonDMA:
				if write != nil {
					h.pc.Write(pc8477.RegData, write())
					continue
				}
			case msr&pc8477.MSRDIO == pc8477.MSRDIO:
				res = append(res, h.pc.Read(pc8477.RegData))
				continue
			}
		}
		h.clk.Advance(h.poll)
	}
	h.t.Fatalf("command %v did not complete: %s", cmd, h.pc)
	return nil
}

func (h *harness) exec(read func(uint8), cmd ...uint8) []uint8 {
	h.t.Helper()
	return h.execData(read, nil, cmd...)
}

// wait for the interrupt of a seek and sense it
func (h *harness) senseSeek() []uint8 {
	h.t.Helper()
	for range maxPolls {
		if h.pc.IRQ() {
			return h.exec(nil, 0x08)
		}
		h.clk.Advance(1000)
	}
	h.t.Fatalf("seek did not complete: %s", h.pc)
	return nil
}

func (h *harness) seek(track uint8) []uint8 {
	h.t.Helper()
	h.exec(nil, 0x0f, drive, track)
	return h.senseSeek()
}

// a source of bytes for the FIFO
func feeder(data []uint8) func() uint8 {
	i := 0
	return func() uint8 {
		if i >= len(data) {
			return 0
		}
		i++
		return data[i-1]
	}
}

func (h *harness) readSector(track, side, sector uint8) ([]uint8, []uint8) {
	h.t.Helper()
	var data []uint8
	res := h.exec(func(v uint8) {
		data = append(data, v)
	}, 0x46, drive, track, side, sector, 2, sector, 0x1b, 0xff)
	return data, res
}

func (h *harness) writeSector(track, side, sector uint8, data []uint8) []uint8 {
	h.t.Helper()
	return h.execData(nil, feeder(data), 0x45, drive, track, side, sector, 2, sector, 0x1b, 0xff)
}

// the only ST1 bit expected at the end of a transfer is end of track
func expectTransferOK(t *testing.T, res []uint8) {
	t.Helper()
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, pc8477.ST0Abnormal)
	test.ExpectEquality(t, res[1], pc8477.ST1EN)
	test.ExpectEquality(t, res[2], 0)
}

func TestResetInterrupt(t *testing.T) {
	clk := clocks.NewClock(clocks.DefaultMHz)
	pc := pc8477.NewPC8477(nil, 0, clk)
	test.ExpectSuccess(t, pc.IRQ())

	pc.Write(pc8477.RegDOR, 0x04)
	pc.Write(pc8477.RegData, 0x08)
	test.ExpectEquality(t, pc.Read(pc8477.RegData), pc8477.ST0Interrupts)
	test.ExpectEquality(t, pc.Read(pc8477.RegData), 0)
	test.ExpectEquality(t, pc.Phase(), pc8477.PhaseWait)
	test.ExpectFailure(t, pc.IRQ())

	// a second sense interrupt with no interrupt pending is invalid
	pc.Write(pc8477.RegData, 0x08)
	test.ExpectEquality(t, pc.Read(pc8477.RegData), pc8477.ST0Invalid)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	res := h.exec(nil, 0x10)
	test.DemandEquality(t, len(res), 1)
	test.ExpectEquality(t, res[0], 0x90)

	res = h.exec(nil, 0x18)
	test.ExpectEquality(t, res[0], 0x72)

	h.pc.Set8477(false)
	res = h.exec(nil, 0x10)
	test.DemandEquality(t, len(res), 1)
	test.ExpectEquality(t, res[0]&pc8477.ST0Invalid, pc8477.ST0Invalid)
}

func TestInvalidCommand(t *testing.T) {
	h := newHarness(t)
	res := h.exec(nil, 0x1e)
	test.DemandEquality(t, len(res), 1)
	test.ExpectEquality(t, res[0]&pc8477.ST0Invalid, pc8477.ST0Invalid)
}

func TestSeekAndRecalibrate(t *testing.T) {
	h := newHarness(t)

	h.exec(nil, 0x0f, drive, 10)

	// past the first step pulse
	h.clk.Advance(13000)
	msr := h.pc.Read(pc8477.RegMSR)
	test.ExpectEquality(t, msr&(1<<drive), 1<<drive)

	res := h.senseSeek()
	test.DemandEquality(t, len(res), 2)
	test.ExpectEquality(t, res[0]&pc8477.ST0SE, pc8477.ST0SE)
	test.ExpectEquality(t, res[1], 10)
	test.ExpectEquality(t, h.pc.Drive().Track(), 10)

	// seeking flag is cleared by sense interrupt
	msr = h.pc.Read(pc8477.RegMSR)
	test.ExpectEquality(t, msr&(1<<drive), 0)

	h.exec(nil, 0x07, drive)
	res = h.senseSeek()
	test.ExpectEquality(t, res[0]&(pc8477.ST0SE|pc8477.ST0EC), pc8477.ST0SE)
	test.ExpectEquality(t, res[1], 0)
	test.ExpectSuccess(t, h.pc.Drive().Track0())

	// sense drive status shows track zero
	res = h.exec(nil, 0x04, drive)
	test.DemandEquality(t, len(res), 1)
	test.ExpectEquality(t, res[0]&pc8477.ST3TK0, pc8477.ST3TK0)
	test.ExpectEquality(t, res[0]&0x03, drive)
}

func TestDiskChange(t *testing.T) {
	h := newHarness(t)
	test.ExpectEquality(t, h.pc.Read(pc8477.RegDKR)&0x80, 0x80)
	h.seek(1)
	test.ExpectEquality(t, h.pc.Read(pc8477.RegDKR)&0x80, 0)

	// unreadable registers float
	test.ExpectEquality(t, h.pc.Read(0xab06), 0xab)
}

func TestReadID(t *testing.T) {
	h := newHarness(t)
	h.seek(5)
	res := h.exec(nil, 0x4a, drive)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, 0)
	test.ExpectEquality(t, res[1], 0)
	test.ExpectEquality(t, res[3], 5)
	test.ExpectEquality(t, res[4], 1)
	test.ExpectEquality(t, res[6], 2)
}

func TestFormatThenRead(t *testing.T) {
	h := newHarness(t)

	// C, H, R and N for each of the ten sectors. side 0 of the mechanism
	// records a head number of 1
	var ids []uint8
	for s := range 10 {
		ids = append(ids, 0, 1, uint8(s+1), 2)
	}

	res := h.execData(nil, feeder(ids), 0x4d, drive, 2, 10, 32, 0xe5)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, 0)
	test.ExpectEquality(t, res[1], 0)
	test.ExpectEquality(t, res[2], 0)
	test.ExpectEquality(t, res[4], 10)

	data, res := h.readSector(0, 1, 1)
	expectTransferOK(t, res)
	test.DemandEquality(t, len(data), 512)
	for i, v := range data {
		if v != 0xe5 {
			t.Fatalf("unexpected value at %d: %#02x", i, v)
		}
	}

	// the formatted track is written back to the image on reset
	h.pc.Reset()
	buf := make([]uint8, diskimage.SectorSize)
	test.DemandSuccess(t, h.dsk.ReadSector(diskimage.Address{Track: 1, Sector: 20}, buf))
	test.ExpectEquality(t, buf[0], 0xe5)
	test.ExpectEquality(t, buf[255], 0xe5)
}

func TestWriteThenRead(t *testing.T) {
	h := newHarness(t)
	h.seek(30)

	out := make([]uint8, 512)
	for i := range out {
		out[i] = uint8(i ^ 0x5a)
	}
	res := h.writeSector(30, 1, 4, out)
	expectTransferOK(t, res)

	in, res := h.readSector(30, 1, 4)
	expectTransferOK(t, res)
	test.DemandEquality(t, len(in), 512)
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("data mismatch at %d: %#02x != %#02x", i, in[i], out[i])
		}
	}
}

func TestMultiSectorRead(t *testing.T) {
	h := newHarness(t)
	var data []uint8
	res := h.exec(func(v uint8) {
		data = append(data, v)
	}, 0x46, drive, 0, 1, 2, 2, 4, 0x1b, 0xff)
	expectTransferOK(t, res)
	test.ExpectEquality(t, len(data), 3*512)
}

func TestWrongTrack(t *testing.T) {
	h := newHarness(t)
	_, res := h.readSector(7, 1, 1)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, pc8477.ST0Abnormal)
	test.ExpectEquality(t, res[2]&pc8477.ST2WT, pc8477.ST2WT)
}

func TestWriteProtect(t *testing.T) {
	h := newHarness(t)
	ro, err := diskimage.NewDisk(diskimage.NewMemory(819200), diskimage.TypeD81, true)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.pc.Attach(ro))

	res := h.writeSector(0, 1, 1, make([]uint8, 512))
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[1]&pc8477.ST1NW, pc8477.ST1NW)
}

func TestOverrun(t *testing.T) {
	h := newHarness(t)

	// the host never reads the data
	res := h.exec(nil, 0x46, drive, 0, 1, 1, 2, 1, 0x1b, 0xff)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, pc8477.ST0Abnormal)
	test.ExpectEquality(t, res[1]&pc8477.ST1OR, pc8477.ST1OR)
}

func TestUnderrun(t *testing.T) {
	h := newHarness(t)

	// the host never supplies the data
	res := h.execData(nil, nil, 0x45, drive, 0, 1, 1, 2, 1, 0x1b, 0xff)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[1]&pc8477.ST1OR, pc8477.ST1OR)
}

func TestConfiguredFIFO(t *testing.T) {
	h := newHarness(t)
	h.exec(nil, 0x13, 0x00, 0x0f, 0x00)

	res := h.exec(nil, 0x0e)
	test.DemandEquality(t, len(res), 10)
	test.ExpectEquality(t, res[8], 0x0f)

	// polling every eight byte times overruns a single byte FIFO but not a
	// sixteen byte one
	h.poll = 64 * 8
	data, res := h.readSector(0, 1, 1)
	expectTransferOK(t, res)
	test.ExpectEquality(t, len(data), 512)
}

func TestSyncNotFound(t *testing.T) {
	h := newHarness(t)

	// the media is recorded at 250kbit/s so nothing can be read at 500kbit/s
	h.pc.Write(pc8477.RegDRR, 0)

	start := h.clk.Now()
	res := h.exec(nil, 0x4a, drive)
	elapsed := h.clk.Now() - start

	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, pc8477.ST0Abnormal)
	test.ExpectEquality(t, res[1]&pc8477.ST1MA, pc8477.ST1MA)

	// the search gives up on the second index pulse. 32 cycles per byte and
	// 6250 bytes per revolution
	rev := uint64(32 * 6250)
	test.ExpectSuccess(t, elapsed >= rev)
	test.ExpectSuccess(t, elapsed <= 2*rev+1000)
}

func TestSetTrack(t *testing.T) {
	h := newHarness(t)
	res := h.exec(nil, 0x61, 0x30|drive, 42)
	test.DemandEquality(t, len(res), 1)
	test.ExpectEquality(t, res[0], 42)

	// read back without writing
	res = h.exec(nil, 0x21, 0x30|drive, 0)
	test.ExpectEquality(t, res[0], 42)

	res = h.exec(nil, 0x0e)
	test.DemandEquality(t, len(res), 10)
	test.ExpectEquality(t, res[drive], 42)
	test.ExpectEquality(t, res[4], 0xdf)
	test.ExpectEquality(t, res[5], 0x03)
}

func TestMotorOutput(t *testing.T) {
	h := newHarness(t)
	var led []bool
	h.pc.SetMotorOutput(0, func(on bool) {
		led = append(led, on)
	})
	h.pc.Write(pc8477.RegDOR, 0x04|0x10|0x20|drive)
	h.pc.Write(pc8477.RegDOR, 0x04|0x20|drive)
	test.DemandEquality(t, len(led), 2)
	test.ExpectSuccess(t, led[0])
	test.ExpectFailure(t, led[1])
	test.ExpectSuccess(t, h.pc.Drive().Motor())
}

func TestDetachMidCommand(t *testing.T) {
	h := newHarness(t)
	for _, b := range []uint8{0x46, drive, 0, 1, 9, 2, 9, 0x1b, 0xff} {
		h.pc.Write(pc8477.RegData, b)
	}
	h.clk.Advance(1000)
	test.ExpectEquality(t, h.pc.Phase(), pc8477.PhaseRead)

	h.pc.Detach()
	test.ExpectEquality(t, h.pc.Phase(), pc8477.PhaseResult)
	res := h.exec(nil)
	test.DemandEquality(t, len(res), 7)
	test.ExpectEquality(t, res[0]&pc8477.ST0Interrupts, pc8477.ST0Abnormal)
	test.ExpectEquality(t, res[1]&pc8477.ST1MA, pc8477.ST1MA)
}

func TestUnsupportedImage(t *testing.T) {
	h := newHarness(t)
	dsk, err := diskimage.NewDisk(diskimage.NewMemory(0), diskimage.TypeDHD, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, curated.Is(h.pc.Attach(dsk), pc8477.UnsupportedImage))
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t)
	h.seek(3)
	h.exec(nil, 0x13, 0x00, 0x07, 0x00)

	s := snapshot.NewFile("FD4000")
	h.pc.Snapshot(s)

	cp := pc8477.NewPC8477(h.env, 0, h.clk)
	test.DemandSuccess(t, cp.Attach(h.dsk))
	test.DemandSuccess(t, cp.Restore(s))
	test.ExpectEquality(t, cp.String(), h.pc.String())
	test.ExpectEquality(t, cp.Peek(), h.pc.Peek())
	test.ExpectEquality(t, cp.Drive().Track(), 3)

	// registers of the copy match the original
	h.pc = cp
	res := h.exec(nil, 0x0e)
	test.DemandEquality(t, len(res), 10)
	test.ExpectEquality(t, res[drive], 3)
	test.ExpectEquality(t, res[8], 0x07)

	// a newer major version is rejected and leaves the controller untouched
	s.Create("PC8477_0", 2, 0)
	err := cp.Restore(s)
	test.ExpectSuccess(t, curated.Is(err, snapshot.VersionMismatch))
	test.ExpectEquality(t, cp.Drive().Track(), 3)
}

// corrupt replaces a byte of the named module with the value
func corrupt(t *testing.T, s *snapshot.File, name string, offset int, v uint8) {
	t.Helper()
	m, major, minor, err := s.Open(name)
	test.DemandSuccess(t, err)
	data := make([]uint8, m.Len())
	m.ReadBA(data)
	test.DemandSuccess(t, m.Err())
	data[offset] = v
	s.Create(name, major, minor).WriteBA(data)
}

func TestSnapshotBadSyncState(t *testing.T) {
	h := newHarness(t)
	h.seek(2)

	s := snapshot.NewFile("FD4000")
	h.pc.Snapshot(s)

	// the scanner state follows the command, phase, flags, counters and crc
	corrupt(t, s, "PC8477_0", 17, 7)

	cp := pc8477.NewPC8477(h.env, 0, h.clk)
	test.DemandSuccess(t, cp.Attach(h.dsk))
	test.DemandSuccess(t, cp.Restore(s))

	h.pc = cp
	data, res := h.readSector(2, 0, 1)
	expectTransferOK(t, res)
	test.ExpectEquality(t, len(data), 512)
}
