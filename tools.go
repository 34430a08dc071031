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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/hardware/drive/fdcdriver"
	"github.com/jetsetilly/gopherdrive/hardware/drive/pc8477"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/hardware/drive/wd1770"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/prefs"
	"github.com/jetsetilly/gopherdrive/snapshot"
)

// unitSpec is a single entry of the -units flag.
type unitSpec struct {
	unit  int
	kind  drive.Kind
	image string
}

// parseUnitList parses a comma separated list of unit:kind[=image] entries.
func parseUnitList(s string) ([]unitSpec, error) {
	var specs []unitSpec

	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		var spec unitSpec

		if i := strings.Index(e, "="); i >= 0 {
			spec.image = e[i+1:]
			e = e[:i]
		}

		n, k, ok := strings.Cut(e, ":")
		if !ok {
			return nil, curated.Errorf("bad unit (%s)", e)
		}

		u, err := strconv.Atoi(n)
		if err != nil {
			return nil, curated.Errorf("bad unit number (%s)", n)
		}
		spec.unit = u

		spec.kind, err = drive.ParseKind(k)
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

func parseImageType(s string) (diskimage.Type, error) {
	s = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, t := range []diskimage.Type{diskimage.TypeD81, diskimage.TypeD1M, diskimage.TypeD2M, diskimage.TypeD4M} {
		if s == t.String() {
			return t, nil
		}
	}
	return diskimage.TypeNone, curated.Errorf(diskimage.UnknownImage, s)
}

// prepareSystem creates a new system with the units of the list attached.
// The preferences override string is applied to the preferences while they
// are loaded.
func prepareSystem(override string, units string) (*hardware.System, error) {
	specs, err := parseUnitList(units)
	if err != nil {
		return nil, err
	}

	prefs.PushCommandLineStack(override)
	p, err := preferences.NewPreferences()
	unused := prefs.PopCommandLineStack()
	if err != nil {
		return nil, err
	}
	if unused != "" {
		fmt.Printf("! unused preferences: %s\n", unused)
	}

	return newSystem(p, specs)
}

func newSystem(p *preferences.Preferences, specs []unitSpec) (*hardware.System, error) {
	sys, err := hardware.NewSystemWithPreferences(p)
	if err != nil {
		return nil, err
	}

	for _, s := range specs {
		if _, err := sys.AddUnit(s.kind, s.unit); err != nil {
			return nil, err
		}
		if s.image != "" {
			if err := sys.AttachImage(s.unit, s.image); err != nil {
				return nil, err
			}
		}
	}

	return sys, nil
}

func writeInfo(output io.Writer, dsk *diskimage.Disk) {
	g := dsk.Geometry()
	fmt.Fprintf(output, "%s: %s\n", dsk.Filename, dsk)
	fmt.Fprintf(output, "  tracks %d, sectors per track %d, sector size %d\n", g.Tracks, g.SectorsPerTrack, diskimage.SectorSize)
}

// the controllers are driven with a private clock. the environment is only
// used for logging and the preferences of the controller
func controllerEnvironment() (*clocks.Clock, *environment.Environment, error) {
	clk := clocks.NewClock(clocks.DefaultMHz)
	env, err := environment.NewEnvironment(clk, preferences.NewDefaultPreferences())
	if err != nil {
		return nil, nil, err
	}
	return clk, env, nil
}

// physical geometry of a 1581 format disk
const (
	physicalTracks  = 80
	physicalSides   = 2
	physicalSectors = 10
)

// formatImage creates a new image file of the type. D81 images are
// formatted through the PC8477 controller. The larger images are filled
// directly.
func formatImage(output io.Writer, filename string, t diskimage.Type, fill uint8, force bool) error {
	g, ok := diskimage.GeometryOf(t)
	if !ok {
		return curated.Errorf(diskimage.UnknownImage, t)
	}

	flag := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if force {
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(filename, flag, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(int64(g.Blocks * diskimage.SectorSize)); err != nil {
		return err
	}

	bf, err := diskimage.NewFile(f)
	if err != nil {
		return err
	}

	dsk, err := diskimage.NewDisk(bf, t, false)
	if err != nil {
		return err
	}
	dsk.Filename = filename

	if t != diskimage.TypeD81 {
		buf := make([]uint8, diskimage.SectorSize)
		for i := range buf {
			buf[i] = fill
		}
		for trk := 1; trk <= g.Tracks; trk++ {
			for sec := 0; sec < g.SectorsPerTrack; sec++ {
				if (trk-1)*g.SectorsPerTrack+sec >= g.Blocks {
					break
				}
				if err := dsk.WriteSector(diskimage.Address{Track: trk, Sector: sec}, buf); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(output, "%s: %s filled with %#02x\n", filename, dsk, fill)
		return nil
	}

	clk, env, err := controllerEnvironment()
	if err != nil {
		return err
	}

	pc := pc8477.NewPC8477(env, 0, clk)
	if err := pc.Attach(dsk); err != nil {
		return err
	}
	d, err := fdcdriver.NewPC8477(pc, clk)
	if err != nil {
		return err
	}

	for trk := range physicalTracks {
		if _, err := d.Seek(uint8(trk)); err != nil {
			return err
		}
		for side := range physicalSides {
			if err := d.FormatTrack(uint8(trk), uint8(side), physicalSectors, fill); err != nil {
				return err
			}
		}
	}

	// the last track formatted is still held by the drive
	if err := pc.Drive().Flush(); err != nil {
		return err
	}
	pc.Detach()

	fmt.Fprintf(output, "%s: %s formatted with %#02x\n", filename, dsk, fill)
	return nil
}

// readPhysical reads a single physical sector of the disk through the named
// controller.
func readPhysical(dsk *diskimage.Disk, controller string, track uint8, side uint8, sector uint8) ([]uint8, error) {
	clk, env, err := controllerEnvironment()
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(controller) {
	case "WD1770", "WD1772":
		wd := wd1770.NewWD1770(env, 0, clk)
		if err := wd.Attach(dsk); err != nil {
			return nil, err
		}
		d := fdcdriver.NewWD1770(wd, clk)
		if err := d.Seek(track); err != nil {
			return nil, err
		}
		return d.ReadSector(side, sector)

	case "PC8477":
		pc := pc8477.NewPC8477(env, 0, clk)
		if err := pc.Attach(dsk); err != nil {
			return nil, err
		}
		d, err := fdcdriver.NewPC8477(pc, clk)
		if err != nil {
			return nil, err
		}
		if _, err := d.Seek(track); err != nil {
			return nil, err
		}
		return d.ReadSectors(track, side, sector, sector)
	}

	return nil, curated.Errorf("unknown controller (%s)", controller)
}

// queryTarget prints the inquiry data and capacity of a SCSI logical unit
// and dumps the requested blocks.
func queryTarget(output io.Writer, in *scsi.Initiator, id int, lun int, lba uint32, count uint16) error {
	inq, err := in.Inquiry(id, lun)
	if err != nil {
		return err
	}
	if len(inq) >= 36 {
		fmt.Fprintf(output, "target %d lun %d: %s %s %s\n", id, lun,
			strings.TrimSpace(string(inq[8:16])), strings.TrimSpace(string(inq[16:32])), strings.TrimSpace(string(inq[32:36])))
	}

	if err := in.TestUnitReady(id, lun); err != nil {
		return err
	}

	last, size, err := in.ReadCapacity(id, lun)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "capacity: %d blocks of %d bytes\n", uint64(last)+1, size)

	if count == 0 {
		return nil
	}

	data, err := in.Read(id, lun, lba, count)
	if err != nil {
		return err
	}
	hexdump(output, uint64(lba)*scsi.BlockSize, data)

	return nil
}

func writeSnapshot(output io.Writer, s *snapshot.File) {
	fmt.Fprintln(output, s)
}

// hexdump writes the data sixteen bytes to a line. Each line starts with the
// address of the first byte, offset by base.
func hexdump(output io.Writer, base uint64, data []uint8) {
	for i := 0; i < len(data); i += 16 {
		s := strings.Builder{}
		fmt.Fprintf(&s, "%08x:", base+uint64(i))
		for _, v := range data[i:min(i+16, len(data))] {
			fmt.Fprintf(&s, " %02x", v)
		}
		fmt.Fprintln(output, s.String())
	}
}
