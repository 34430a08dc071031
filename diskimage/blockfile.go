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
	"io"
	"os"
	"sync"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Memory is a BlockFile held entirely in memory.
type Memory struct {
	crit sync.Mutex
	data []uint8
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory(size int64) *Memory {
	return &Memory{
		data: make([]uint8, size),
	}
}

// NewMemoryFromData creates a Memory BlockFile using the supplied data. The
// data is not copied.
func NewMemoryFromData(data []uint8) *Memory {
	return &Memory{
		data: data,
	}
}

// ReadAt implements the io.ReaderAt interface. Reading past the end of the
// data returns zero bytes and io.EOF.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.crit.Lock()
	defer m.crit.Unlock()

	if off >= int64(len(m.data)) {
		clear(p)
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		clear(p[n:])
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements the io.WriterAt interface. The data grows as required.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.crit.Lock()
	defer m.crit.Unlock()

	if off < 0 {
		return 0, curated.Errorf("diskimage: negative offset")
	}
	if end := off + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]uint8, end-int64(len(m.data)))...)
	}
	return copy(m.data[off:], p), nil
}

// Size implements the BlockFile interface.
func (m *Memory) Size() int64 {
	m.crit.Lock()
	defer m.crit.Unlock()
	return int64(len(m.data))
}

// Data returns a copy of the data.
func (m *Memory) Data() []uint8 {
	m.crit.Lock()
	defer m.crit.Unlock()
	d := make([]uint8, len(m.data))
	copy(d, m.data)
	return d
}

// File is a BlockFile backed by an os.File.
type File struct {
	*os.File
	size int64
}

// NewFile is the preferred method of initialisation for the File type.
func NewFile(f *os.File) (*File, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, curated.Errorf("diskimage: %v", err)
	}
	return &File{File: f, size: st.Size()}, nil
}

// OpenFile opens the named file as a BlockFile. If the file cannot be
// opened for writing it is opened read only and the second return value is
// true.
func OpenFile(filename string) (*File, bool, error) {
	readOnly := false
	f, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		f, err = os.Open(filename)
		if err != nil {
			return nil, false, curated.Errorf("diskimage: %v", err)
		}
		readOnly = true
	}
	bf, err := NewFile(f)
	if err != nil {
		f.Close()
		return nil, false, err
	}
	return bf, readOnly, nil
}

// ReadAt implements the io.ReaderAt interface. Reading past the end of the
// file returns zero bytes.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.File.ReadAt(p, off)
	if n < len(p) {
		clear(p[n:])
	}
	return n, err
}

// WriteAt implements the io.WriterAt interface.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	n, err := f.File.WriteAt(p, off)
	if off+int64(n) > f.size {
		f.size = off + int64(n)
	}
	return n, err
}

// Size implements the BlockFile interface.
func (f *File) Size() int64 {
	return f.size
}
