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

package wd1770_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/wd1770"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/test"
)

type harness struct {
	t   *testing.T
	clk *clocks.Clock
	env *environment.Environment
	wd  *wd1770.WD1770
	dsk *diskimage.Disk
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t}
	h.clk = clocks.NewClock(clocks.DefaultMHz)

	var err error
	h.env, err = environment.NewEnvironment(h.clk, preferences.NewDefaultPreferences())
	test.DemandSuccess(t, err)

	h.dsk, err = diskimage.Blank(diskimage.TypeD81)
	test.DemandSuccess(t, err)

	h.wd = wd1770.NewWD1770(h.env, 0, h.clk)
	test.DemandSuccess(t, h.wd.Attach(h.dsk))
	h.wd.SetMotor(true)
	h.wd.SetSide(0)
	return h
}

// maximum number of polls before a command is considered hung. twenty
// revolutions of the disk polled every half byte time
const maxPolls = 20 * 6250 * 2

// command writes the command register and polls the status register until
// the command has completed. the drq function is called whenever the status
// register shows a data request
func (h *harness) command(cmd uint8, drq func()) uint8 {
	h.t.Helper()
	h.wd.Write(wd1770.RegCommand, cmd)
	for range maxPolls {
		h.clk.Advance(32)
		st := h.wd.Read(wd1770.RegStatus)
		if st&wd1770.StatusDRQ == wd1770.StatusDRQ && drq != nil {
			drq()
		}
		if h.wd.Type() <= wd1770.TypeIdle {
			return st
		}
	}
	h.t.Fatalf("command %#02x did not complete: %s", cmd, h.wd)
	return 0
}

// seek to the track with the head load flag set
func (h *harness) seek(track uint8) uint8 {
	h.wd.Write(wd1770.RegData, track)
	return h.command(0x18, nil)
}

func (h *harness) readSector(sector uint8) ([]uint8, uint8) {
	h.wd.Write(wd1770.RegSector, sector)
	var data []uint8
	st := h.command(0x88, func() {
		data = append(data, h.wd.Read(wd1770.RegData))
	})
	return data, st
}

func (h *harness) writeSector(sector uint8, data []uint8) uint8 {
	h.wd.Write(wd1770.RegSector, sector)
	i := 0
	return h.command(0xa8, func() {
		if i < len(data) {
			h.wd.Write(wd1770.RegData, data[i])
			i++
		} else {
			h.wd.Write(wd1770.RegData, 0)
		}
	})
}

func TestRestoreAndSeek(t *testing.T) {
	h := newHarness(t)

	st := h.seek(10)
	test.ExpectEquality(t, h.wd.Read(wd1770.RegTrack), 10)
	test.ExpectEquality(t, h.wd.Drive().Track(), 10)
	test.ExpectEquality(t, st&wd1770.StatusSE, 0)
	test.ExpectEquality(t, st&wd1770.StatusMO, wd1770.StatusMO)

	// restore without the head load flag spins the motor up first. the motor
	// on status was set by the seek so no spin up is required
	h.command(0x00, nil)
	test.ExpectEquality(t, h.wd.Read(wd1770.RegTrack), 0)
	test.ExpectSuccess(t, h.wd.Drive().Track0())

	// idle status shows track zero
	h.clk.Advance(1000)
	st = h.wd.Read(wd1770.RegStatus)
	test.ExpectEquality(t, st&wd1770.StatusT0, wd1770.StatusT0)
	test.ExpectEquality(t, st&wd1770.StatusBSY, 0)
}

func TestStep(t *testing.T) {
	h := newHarness(t)

	// step in with update
	h.command(0x58, nil)
	h.command(0x58, nil)
	test.ExpectEquality(t, h.wd.Read(wd1770.RegTrack), 2)
	test.ExpectEquality(t, h.wd.Drive().Track(), 2)

	// step with update keeps the previous direction
	h.command(0x38, nil)
	test.ExpectEquality(t, h.wd.Read(wd1770.RegTrack), 3)

	// step out without update moves the head only
	h.command(0x68, nil)
	test.ExpectEquality(t, h.wd.Read(wd1770.RegTrack), 3)
	test.ExpectEquality(t, h.wd.Drive().Track(), 2)
}

func TestVerify(t *testing.T) {
	h := newHarness(t)

	h.wd.Write(wd1770.RegData, 3)
	st := h.command(0x1c, nil)
	test.ExpectEquality(t, st&(wd1770.StatusSE|wd1770.StatusCRC), 0)

	// track register does not agree with the disk
	h.wd.Write(wd1770.RegTrack, 5)
	h.wd.Write(wd1770.RegData, 5)
	st = h.command(0x1c, nil)
	test.ExpectEquality(t, st&wd1770.StatusSE, wd1770.StatusSE)
	test.ExpectEquality(t, h.wd.Drive().Track(), 3)
}

func TestReadSector(t *testing.T) {
	h := newHarness(t)

	// track 0 side 0 of a 1581 disk is image side 1. sector 1 starts at the
	// twentieth image sector
	buf := make([]uint8, diskimage.SectorSize)
	for i := range buf {
		buf[i] = uint8(255 - i)
	}
	test.DemandSuccess(t, h.dsk.WriteSector(diskimage.Address{Track: 1, Sector: 20}, buf))

	data, st := h.readSector(1)
	test.ExpectEquality(t, len(data), 512)
	test.ExpectEquality(t, st&(wd1770.StatusCRC|wd1770.StatusRNF|wd1770.StatusLD), 0)
	test.ExpectEquality(t, data[0], 255)
	test.ExpectEquality(t, data[255], 0)
	test.ExpectEquality(t, data[256], 0)
}

func TestRecordNotFound(t *testing.T) {
	h := newHarness(t)
	_, st := h.readSector(11)
	test.ExpectEquality(t, st&wd1770.StatusRNF, wd1770.StatusRNF)
}

func TestWriteThenRead(t *testing.T) {
	h := newHarness(t)
	h.seek(20)
	h.wd.Write(wd1770.RegTrack, 20)

	out := make([]uint8, 512)
	for i := range out {
		out[i] = uint8(i*3 + 1)
	}
	st := h.writeSector(7, out)
	test.ExpectEquality(t, st&(wd1770.StatusWP|wd1770.StatusRNF|wd1770.StatusLD), 0)

	in, st := h.readSector(7)
	test.ExpectEquality(t, st&(wd1770.StatusCRC|wd1770.StatusRNF), 0)
	test.DemandEquality(t, len(in), 512)
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("data mismatch at %d: %#02x != %#02x", i, in[i], out[i])
		}
	}

	// reset writes the track back to the image
	h.wd.Reset()
	lin := ((20*2+1)*10 + 6) * 2
	buf := make([]uint8, diskimage.SectorSize)
	test.DemandSuccess(t, h.dsk.ReadSector(diskimage.Address{Track: lin/40 + 1, Sector: lin % 40}, buf))
	test.ExpectEquality(t, buf[10], out[10])
}

func TestWriteProtect(t *testing.T) {
	h := newHarness(t)
	ro, err := diskimage.NewDisk(diskimage.NewMemory(819200), diskimage.TypeD81, true)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, h.wd.Attach(ro))

	st := h.writeSector(1, make([]uint8, 512))
	test.ExpectEquality(t, st&wd1770.StatusWP, wd1770.StatusWP)
}

func TestReadAddress(t *testing.T) {
	h := newHarness(t)
	h.seek(4)

	var id []uint8
	st := h.command(0xc8, func() {
		id = append(id, h.wd.Read(wd1770.RegData))
	})
	test.ExpectEquality(t, st&wd1770.StatusCRC, 0)
	test.DemandEquality(t, len(id), 6)
	test.ExpectEquality(t, id[0], 4)
	test.ExpectEquality(t, id[1], 1)
	test.ExpectEquality(t, id[3], 2)

	// the track number of the ID is copied to the sector register
	test.ExpectEquality(t, h.wd.Read(wd1770.RegSector), 4)
}

func TestWriteTrack(t *testing.T) {
	h := newHarness(t)
	h.seek(2)

	// ISO layout of a 1581 track with a fill byte of 0xe5
	var stream []uint8
	add := func(v uint8, n int) {
		for range n {
			stream = append(stream, v)
		}
	}
	add(0x4e, 32)
	for s := range 10 {
		add(0x00, 12)
		add(0xf5, 3)
		stream = append(stream, 0xfe, 2, 1, uint8(s+1), 2, 0xf7)
		add(0x4e, 22)
		add(0x00, 12)
		add(0xf5, 3)
		add(0xfb, 1)
		add(0xe5, 512)
		add(0xf7, 1)
		add(0x4e, 35)
	}

	i := 0
	st := h.command(0xf8, func() {
		if i < len(stream) {
			h.wd.Write(wd1770.RegData, stream[i])
			i++
		} else {
			h.wd.Write(wd1770.RegData, 0x4e)
		}
	})
	test.ExpectEquality(t, st&(wd1770.StatusWP|wd1770.StatusLD), 0)
	test.ExpectEquality(t, i, len(stream))

	data, st := h.readSector(3)
	test.ExpectEquality(t, st&(wd1770.StatusCRC|wd1770.StatusRNF), 0)
	test.DemandEquality(t, len(data), 512)
	test.ExpectEquality(t, data[0], 0xe5)
	test.ExpectEquality(t, data[511], 0xe5)

	// the formatted track is written back to the image on reset
	h.wd.Reset()
	lin := ((2*2+1)*10 + 2) * 2
	buf := make([]uint8, diskimage.SectorSize)
	test.DemandSuccess(t, h.dsk.ReadSector(diskimage.Address{Track: lin/40 + 1, Sector: lin % 40}, buf))
	test.ExpectEquality(t, buf[100], 0xe5)
}

func TestForceInterrupt(t *testing.T) {
	h := newHarness(t)
	h.wd.Write(wd1770.RegCommand, 0xd8)
	h.clk.Advance(100)
	h.wd.Read(wd1770.RegTrack)
	test.ExpectSuccess(t, h.wd.IRQ())

	// reading status clears the interrupt
	h.wd.Read(wd1770.RegStatus)
	test.ExpectFailure(t, h.wd.IRQ())
}

func TestDetachMidCommand(t *testing.T) {
	h := newHarness(t)
	h.wd.Write(wd1770.RegSector, 5)
	h.wd.Write(wd1770.RegCommand, 0x88)
	h.clk.Advance(5000)
	h.wd.Read(wd1770.RegTrack)
	test.ExpectEquality(t, h.wd.Type(), wd1770.Type2)

	h.wd.Detach()
	test.ExpectEquality(t, h.wd.Type(), wd1770.TypeIdle)
	st := h.wd.Peek(wd1770.RegStatus)
	test.ExpectEquality(t, st&wd1770.StatusRNF, wd1770.StatusRNF)
	test.ExpectEquality(t, st&wd1770.StatusDRQ, 0)
	test.ExpectSuccess(t, h.wd.DiskChange())
}

func TestUnsupportedImage(t *testing.T) {
	h := newHarness(t)
	dsk, err := diskimage.Blank(diskimage.TypeD2M)
	test.DemandSuccess(t, err)
	err = h.wd.Attach(dsk)
	test.ExpectSuccess(t, curated.Is(err, wd1770.UnsupportedImage))
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t)
	h.seek(6)
	h.wd.Write(wd1770.RegSector, 2)
	h.wd.Write(wd1770.RegCommand, 0x88)
	h.clk.Advance(20000)
	h.wd.Read(wd1770.RegTrack)

	s := snapshot.NewFile("1581")
	h.wd.Snapshot(s)

	cp := wd1770.NewWD1770(h.env, 0, h.clk)
	test.DemandSuccess(t, cp.Attach(h.dsk))
	test.DemandSuccess(t, cp.Restore(s))
	test.ExpectEquality(t, cp.String(), h.wd.String())
	test.ExpectEquality(t, cp.Drive().Track(), 6)
	for r := range uint16(4) {
		test.ExpectEquality(t, cp.Peek(r), h.wd.Peek(r))
	}

	// controller module requires an exact version
	s.Create("WD17700", 1, 1)
	err := cp.Restore(s)
	test.ExpectSuccess(t, curated.Is(err, snapshot.VersionMismatch))
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

	s := snapshot.NewFile("1581")
	h.wd.Snapshot(s)

	// the scanner state is the last byte of the controller module
	m, _, _, err := s.Open("WD17700")
	test.DemandSuccess(t, err)
	corrupt(t, s, "WD17700", m.Len()-1, 7)

	cp := wd1770.NewWD1770(h.env, 0, h.clk)
	test.DemandSuccess(t, cp.Attach(h.dsk))
	test.DemandSuccess(t, cp.Restore(s))

	// the restored controller still finds sectors
	h.wd = cp
	data, st := h.readSector(1)
	test.ExpectEquality(t, st&(wd1770.StatusRNF|wd1770.StatusCRC), 0)
	test.ExpectEquality(t, len(data), 512)
}
