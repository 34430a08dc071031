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

package diskimage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gopherdrive/archivefs"
	"github.com/jetsetilly/gopherdrive/curated"
)

// Sentinal error patterns.
const (
	UnknownImage     = "diskimage: unknown image type (%s)"
	SectorOutOfRange = "diskimage: sector out of range (track %d sector %d)"
	ImageReadOnly    = "diskimage: image is read only"
	ImageShort       = "diskimage: image is too short (%d bytes)"
)

// SectorSize is the size of an image sector.
const SectorSize = 256

// Type of disk image.
type Type int

// List of valid Type values.
const (
	TypeNone Type = iota
	TypeD81
	TypeD1M
	TypeD2M
	TypeD4M
	TypeDHD
)

func (t Type) String() string {
	switch t {
	case TypeD81:
		return "D81"
	case TypeD1M:
		return "D1M"
	case TypeD2M:
		return "D2M"
	case TypeD4M:
		return "D4M"
	case TypeDHD:
		return "DHD"
	}
	return "none"
}

// Geometry of an image type.
type Geometry struct {
	// number of tracks in the image. tracks are numbered from one
	Tracks int

	// number of 256 byte sectors in an image track. the last image track
	// may be short
	SectorsPerTrack int

	// number of image sectors in the image
	Blocks int

	// optional error information appended to some images
	ErrorInfo int
}

// geometry for each of the floppy image types. the DHD type is sized by its
// file
var geometries = map[Type]Geometry{
	TypeD81: {Tracks: 80, SectorsPerTrack: 40, Blocks: 3200, ErrorInfo: 3200},
	TypeD1M: {Tracks: 13, SectorsPerTrack: 256, Blocks: 3240, ErrorInfo: 3240},
	TypeD2M: {Tracks: 26, SectorsPerTrack: 256, Blocks: 6480, ErrorInfo: 6480},
	TypeD4M: {Tracks: 51, SectorsPerTrack: 256, Blocks: 12960, ErrorInfo: 12960},
}

// GeometryOf returns the geometry for the image type.
func GeometryOf(t Type) (Geometry, bool) {
	g, ok := geometries[t]
	return g, ok
}

// Address of a sector in an image. Tracks are numbered from one and sectors
// from zero.
type Address struct {
	Track  int
	Sector int
}

func (a Address) String() string {
	return fmt.Sprintf("T%d S%d", a.Track, a.Sector)
}

// Image is the interface to a disk image used by the drive mechanism.
type Image interface {
	ReadSector(adr Address, buf []uint8) error
	WriteSector(adr Address, buf []uint8) error
	Blocks() int
	ReadOnly() bool
	Type() Type
}

// BlockFile is random access storage for an image.
type BlockFile interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// Disk implements the Image interface for any BlockFile.
type Disk struct {
	Filename string

	file     BlockFile
	kind     Type
	geometry Geometry
	readOnly bool
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(file BlockFile, kind Type, readOnly bool) (*Disk, error) {
	dsk := &Disk{
		file:     file,
		kind:     kind,
		readOnly: readOnly,
	}

	if kind == TypeDHD {
		dsk.geometry = Geometry{
			Tracks:          1,
			SectorsPerTrack: int(file.Size() / SectorSize),
			Blocks:          int(file.Size() / SectorSize),
		}
		return dsk, nil
	}

	g, ok := geometries[kind]
	if !ok {
		return nil, curated.Errorf(UnknownImage, kind)
	}
	if file.Size() < int64(g.Blocks*SectorSize) {
		return nil, curated.Errorf(ImageShort, file.Size())
	}
	dsk.geometry = g

	return dsk, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s %d blocks", dsk.kind, dsk.geometry.Blocks))
	if dsk.readOnly {
		s.WriteString(" (read only)")
	}
	if dsk.Filename != "" {
		s.WriteString(fmt.Sprintf(" [%s]", filepath.Base(dsk.Filename)))
	}
	return s.String()
}

// Geometry returns the geometry of the disk.
func (dsk *Disk) Geometry() Geometry {
	return dsk.geometry
}

// File returns the underlying BlockFile.
func (dsk *Disk) File() BlockFile {
	return dsk.file
}

func (dsk *Disk) offset(adr Address) (int64, error) {
	if adr.Track < 1 || adr.Sector < 0 || adr.Sector >= dsk.geometry.SectorsPerTrack {
		return 0, curated.Errorf(SectorOutOfRange, adr.Track, adr.Sector)
	}
	n := (adr.Track-1)*dsk.geometry.SectorsPerTrack + adr.Sector
	if n >= dsk.geometry.Blocks {
		return 0, curated.Errorf(SectorOutOfRange, adr.Track, adr.Sector)
	}
	return int64(n) * SectorSize, nil
}

// ReadSector implements the Image interface.
func (dsk *Disk) ReadSector(adr Address, buf []uint8) error {
	o, err := dsk.offset(adr)
	if err != nil {
		return err
	}
	_, err = dsk.file.ReadAt(buf[:SectorSize], o)
	if err != nil && err != io.EOF {
		return curated.Errorf("diskimage: %v", err)
	}
	return nil
}

// WriteSector implements the Image interface.
func (dsk *Disk) WriteSector(adr Address, buf []uint8) error {
	if dsk.readOnly {
		return curated.Errorf(ImageReadOnly)
	}
	o, err := dsk.offset(adr)
	if err != nil {
		return err
	}
	_, err = dsk.file.WriteAt(buf[:SectorSize], o)
	if err != nil {
		return curated.Errorf("diskimage: %v", err)
	}
	return nil
}

// Blocks implements the Image interface.
func (dsk *Disk) Blocks() int {
	return dsk.geometry.Blocks
}

// ReadOnly implements the Image interface.
func (dsk *Disk) ReadOnly() bool {
	return dsk.readOnly
}

// Type implements the Image interface.
func (dsk *Disk) Type() Type {
	return dsk.kind
}

// Close the underlying file if it can be closed.
func (dsk *Disk) Close() error {
	if c, ok := dsk.file.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Blank creates a new in memory disk of the specified type. Every sector is
// zero.
func Blank(kind Type) (*Disk, error) {
	g, ok := geometries[kind]
	if !ok {
		return nil, curated.Errorf(UnknownImage, kind)
	}
	return NewDisk(NewMemory(int64(g.Blocks*SectorSize)), kind, false)
}

// Open the named file as a disk image. The type of image is decided by the
// file extension and confirmed by the size of the file.
//
// The file can be inside a zip archive, in which case the image is loaded
// into memory and is always read only.
func Open(filename string, readOnly bool) (*Disk, error) {
	var afs archivefs.Path
	if err := afs.Set(filename); err == nil && afs.InArchive() && !afs.IsDir() {
		afs.Close()
		return openArchived(filename)
	}
	afs.Close()

	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(filename, flag, 0)
	if err != nil && !readOnly && os.IsPermission(err) {
		f, err = os.Open(filename)
		readOnly = true
	}
	if err != nil {
		return nil, curated.Errorf("diskimage: %v", err)
	}

	bf, err := NewFile(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	kind, err := Probe(filename, bf.Size())
	if err != nil {
		f.Close()
		return nil, err
	}

	dsk, err := NewDisk(bf, kind, readOnly)
	if err != nil {
		f.Close()
		return nil, err
	}
	dsk.Filename = filename

	return dsk, nil
}

func openArchived(filename string) (*Disk, error) {
	data, _, err := archivefs.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf("diskimage: %v", err)
	}

	kind, err := Probe(filename, int64(len(data)))
	if err != nil {
		return nil, err
	}

	dsk, err := NewDisk(NewMemoryFromData(data), kind, true)
	if err != nil {
		return nil, err
	}
	dsk.Filename = filename

	return dsk, nil
}

// Probe the filename and size of an image and return its type.
func Probe(filename string, size int64) (Type, error) {
	ext := strings.ToUpper(filepath.Ext(filename))

	switch ext {
	case ".DHD":
		return TypeDHD, nil
	case ".D81", ".D1M", ".D2M", ".D4M":
	default:
		// hard disk unit files are named .Sxy where x is the SCSI id and y
		// is the logical unit number
		if len(ext) == 4 && ext[1] == 'S' && isDigit(ext[2]) && isDigit(ext[3]) {
			return TypeDHD, nil
		}
	}

	for t, g := range geometries {
		n := int64(g.Blocks * SectorSize)
		if size == n || size == n+int64(g.ErrorInfo) {
			if ext == "."+t.String() || ext == "" {
				return t, nil
			}
		}
	}

	return TypeNone, curated.Errorf(UnknownImage, filepath.Base(filename))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
