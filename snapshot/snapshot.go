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

package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Sentinal error patterns.
const (
	VersionMismatch = "snapshot: %s: version %d.%d is newer than supported %d.%d"
	ModuleNotFound  = "snapshot: module not found (%s)"
	ModuleShort     = "snapshot: %s: module data too short"
	ModuleExists    = "snapshot: module already exists (%s)"
	NotSnapshot     = "snapshot: not a snapshot file"
)

const (
	magic = "Gopherdrive Snapshot\x1a"

	fileMajor = 1
	fileMinor = 0

	// NameLength is the maximum length of a module or machine name
	NameLength = 16

	// Extension is added to generated snapshot filenames
	Extension = ".gds"
)

// File is a collection of modules.
type File struct {
	Machine string

	modules []*Module
}

// NewFile is the preferred method of initialisation for the File type.
func NewFile(machine string) *File {
	return &File{
		Machine: machine,
	}
}

func (f *File) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %d modules", f.Machine, len(f.modules)))
	for _, m := range f.modules {
		s.WriteString("\n  ")
		s.WriteString(m.String())
	}
	return s.String()
}

// Modules returns the names of all modules in the file, in the order they
// were created.
func (f *File) Modules() []string {
	n := make([]string, 0, len(f.modules))
	for _, m := range f.modules {
		n = append(n, m.Name)
	}
	return n
}

func (f *File) find(name string) *Module {
	for _, m := range f.modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Create a new module. Names longer than NameLength are truncated. A module
// with the same name as an existing module replaces it.
func (f *File) Create(name string, major, minor uint8) *Module {
	if len(name) > NameLength {
		name = name[:NameLength]
	}
	m := &Module{
		Name:  name,
		Major: major,
		Minor: minor,
	}
	for i := range f.modules {
		if f.modules[i].Name == name {
			f.modules[i] = m
			return m
		}
	}
	f.modules = append(f.modules, m)
	return m
}

// Open an existing module for reading. The version numbers of the module are
// returned so that the caller can decide how to read the data.
func (f *File) Open(name string) (*Module, uint8, uint8, error) {
	if len(name) > NameLength {
		name = name[:NameLength]
	}
	m := f.find(name)
	if m == nil {
		return nil, 0, 0, curated.Errorf(ModuleNotFound, name)
	}
	m.rd = bytes.NewReader(m.data.Bytes())
	m.err = nil
	return m, m.Major, m.Minor, nil
}

// OpenVersion opens a module and checks that its version is not newer than
// the major and minor version supported by the caller.
func (f *File) OpenVersion(name string, major, minor uint8) (*Module, error) {
	m, vmajor, vminor, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	if vmajor > major || (vmajor == major && vminor > minor) {
		return nil, curated.Errorf(VersionMismatch, m.Name, vmajor, vminor, major, minor)
	}
	return m, nil
}

// Save the file to the io.Writer.
func (f *File) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(magic)
	bw.WriteByte(fileMajor)
	bw.WriteByte(fileMinor)
	bw.Write(padName(f.Machine))

	for _, m := range f.modules {
		bw.Write(padName(m.Name))
		bw.WriteByte(m.Major)
		bw.WriteByte(m.Minor)
		var sz [4]uint8
		binary.LittleEndian.PutUint32(sz[:], uint32(m.data.Len()))
		bw.Write(sz[:])
		bw.Write(m.data.Bytes())
	}

	if err := bw.Flush(); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}
	return nil
}

// SaveFile saves the snapshot to the named file.
func (f *File) SaveFile(filename string) error {
	o, err := os.Create(filename)
	if err != nil {
		return curated.Errorf("snapshot: %v", err)
	}
	defer o.Close()
	return f.Save(o)
}

// Load a snapshot from the io.Reader.
func Load(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	hdr := make([]uint8, len(magic)+2+NameLength)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, curated.Errorf(NotSnapshot)
	}
	if string(hdr[:len(magic)]) != magic {
		return nil, curated.Errorf(NotSnapshot)
	}
	if hdr[len(magic)] > fileMajor {
		return nil, curated.Errorf(VersionMismatch, "file", hdr[len(magic)], hdr[len(magic)+1], fileMajor, fileMinor)
	}

	f := &File{
		Machine: unpadName(hdr[len(magic)+2:]),
	}

	mhdr := make([]uint8, NameLength+6)
	for {
		_, err := io.ReadFull(br, mhdr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, curated.Errorf("snapshot: %v", err)
		}

		m := &Module{
			Name:  unpadName(mhdr[:NameLength]),
			Major: mhdr[NameLength],
			Minor: mhdr[NameLength+1],
		}
		sz := binary.LittleEndian.Uint32(mhdr[NameLength+2:])
		if _, err := io.CopyN(&m.data, br, int64(sz)); err != nil {
			return nil, curated.Errorf(ModuleShort, m.Name)
		}
		f.modules = append(f.modules, m)
	}

	return f, nil
}

// LoadFile loads a snapshot from the named file.
func LoadFile(filename string) (*File, error) {
	i, err := os.Open(filename)
	if err != nil {
		return nil, curated.Errorf("snapshot: %v", err)
	}
	defer i.Close()
	return Load(i)
}

func padName(s string) []uint8 {
	b := make([]uint8, NameLength)
	copy(b, s)
	return b
}

func unpadName(b []uint8) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
