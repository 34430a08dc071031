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

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/test"
)

func TestParseUnitList(t *testing.T) {
	specs, err := parseUnitList("8:1581, 9:fd2000=work.d81,12:cmdhd")
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(specs), 3)
	test.ExpectEquality(t, specs[0], unitSpec{unit: 8, kind: drive.Kind1581})
	test.ExpectEquality(t, specs[1], unitSpec{unit: 9, kind: drive.KindFD2000, image: "work.d81"})
	test.ExpectEquality(t, specs[2], unitSpec{unit: 12, kind: drive.KindCMDHD})

	specs, err = parseUnitList("")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(specs), 0)

	_, err = parseUnitList("8")
	test.ExpectFailure(t, err)
	_, err = parseUnitList("x:1581")
	test.ExpectFailure(t, err)
	_, err = parseUnitList("8:1541")
	test.ExpectSuccess(t, curated.Is(err, drive.UnknownKind))
}

func TestParseImageType(t *testing.T) {
	k, err := parseImageType("d81")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, k, diskimage.TypeD81)

	k, err = parseImageType(".D4M")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, k, diskimage.TypeD4M)

	_, err = parseImageType("DHD")
	test.ExpectSuccess(t, curated.Is(err, diskimage.UnknownImage))
}

func TestNewSystem(t *testing.T) {
	specs, err := parseUnitList("8:1581,10:fd4000")
	test.DemandSuccess(t, err)
	sys, err := newSystem(preferences.NewDefaultPreferences(), specs)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(sys.Units()), 2)

	u, err := sys.Unit(10)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, u.Kind(), drive.KindFD4000)

	specs, err = parseUnitList("8:1581=missing.d81")
	test.DemandSuccess(t, err)
	_, err = newSystem(preferences.NewDefaultPreferences(), specs)
	test.ExpectFailure(t, err)
}

func TestHexdump(t *testing.T) {
	out := &strings.Builder{}
	data := make([]uint8, 18)
	for i := range data {
		data[i] = uint8(i)
	}
	hexdump(out, 0x200, data)
	test.ExpectEquality(t, out.String(),
		"00000200: 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f\n"+
			"00000210: 10 11\n")
}

func TestFormatAndRead(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "blank.d81")
	out := &strings.Builder{}
	test.DemandSuccess(t, formatImage(out, fn, diskimage.TypeD81, 0xe5, false))
	test.ExpectSuccess(t, strings.Contains(out.String(), "formatted with 0xe5"))

	// the file exists so a second format must be forced
	test.ExpectFailure(t, formatImage(out, fn, diskimage.TypeD81, 0xe5, false))

	dsk, err := diskimage.Open(fn, true)
	test.DemandSuccess(t, err)
	defer dsk.Close()
	test.ExpectEquality(t, dsk.Type(), diskimage.TypeD81)

	for _, c := range []string{"WD1770", "PC8477"} {
		data, err := readPhysical(dsk, c, 79, 1, 10)
		test.DemandSuccess(t, err)
		test.DemandEquality(t, len(data), 512)
		test.ExpectEquality(t, data[0], 0xe5)
		test.ExpectEquality(t, data[511], 0xe5)
	}

	_, err = readPhysical(dsk, "WD1793", 0, 0, 1)
	test.ExpectFailure(t, err)
}

func TestFormatWritesLastTrack(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "last.d81")
	test.DemandSuccess(t, formatImage(&strings.Builder{}, fn, diskimage.TypeD81, 0xe5, false))

	dsk, err := diskimage.Open(fn, true)
	test.DemandSuccess(t, err)
	defer dsk.Close()

	// logical track 80 holds both sides of the final physical track
	buf := make([]uint8, diskimage.SectorSize)
	for sec := 0; sec < 40; sec++ {
		test.DemandSuccess(t, dsk.ReadSector(diskimage.Address{Track: 80, Sector: sec}, buf))
		test.ExpectEquality(t, buf[0], 0xe5)
		test.ExpectEquality(t, buf[diskimage.SectorSize-1], 0xe5)
	}
}

func TestFormatFill(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "blank.d1m")
	out := &strings.Builder{}
	test.DemandSuccess(t, formatImage(out, fn, diskimage.TypeD1M, 0x5a, false))

	dsk, err := diskimage.Open(fn, true)
	test.DemandSuccess(t, err)
	defer dsk.Close()

	buf := make([]uint8, diskimage.SectorSize)
	test.DemandSuccess(t, dsk.ReadSector(diskimage.Address{Track: 13, Sector: 0}, buf))
	test.ExpectEquality(t, buf[0], 0x5a)
}

func TestQueryTarget(t *testing.T) {
	img := diskimage.NewMemory(4 * scsi.BlockSize)
	tgt := scsi.NewTarget(logger.Allow, "SCSI")
	tgt.MaxImageSize = 0
	test.DemandSuccess(t, tgt.Attach(scsi.Unit(0, 0), img))

	out := &strings.Builder{}
	test.DemandSuccess(t, queryTarget(out, scsi.NewInitiator(tgt), 0, 0, 1, 1))

	s := out.String()
	test.ExpectSuccess(t, strings.HasPrefix(s, "target 0 lun 0: GOPHERDR SCSI Image File"))
	test.ExpectSuccess(t, strings.Contains(s, "capacity: 4 blocks of 512 bytes\n"))
	test.ExpectSuccess(t, strings.Contains(s, "00000200: 00 00"))
	test.ExpectSuccess(t, strings.HasSuffix(s, "000003f0: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n"))
}
