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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Module is a single named record in the snapshot file.
//
// Read and write errors are sticky. Once an error has occurred all further
// reads return zero and the error is returned by Err().
type Module struct {
	Name  string
	Major uint8
	Minor uint8

	data bytes.Buffer
	rd   *bytes.Reader
	err  error
}

func (m *Module) String() string {
	return fmt.Sprintf("%s v%d.%d (%d bytes)", m.Name, m.Major, m.Minor, m.data.Len())
}

// Err returns the first error that occurred while reading the module.
func (m *Module) Err() error {
	return m.err
}

// Len returns the size of the module data.
func (m *Module) Len() int {
	return m.data.Len()
}

// WriteB writes a byte.
func (m *Module) WriteB(v uint8) {
	m.data.WriteByte(v)
}

// WriteBool writes a boolean as a single byte.
func (m *Module) WriteBool(v bool) {
	if v {
		m.data.WriteByte(1)
	} else {
		m.data.WriteByte(0)
	}
}

// WriteW writes a 16 bit word.
func (m *Module) WriteW(v uint16) {
	m.data.Write(binary.LittleEndian.AppendUint16(nil, v))
}

// WriteDW writes a 32 bit double word.
func (m *Module) WriteDW(v uint32) {
	m.data.Write(binary.LittleEndian.AppendUint32(nil, v))
}

// WriteQW writes a 64 bit quad word. Used for clock values.
func (m *Module) WriteQW(v uint64) {
	m.data.Write(binary.LittleEndian.AppendUint64(nil, v))
}

// WriteBA writes a byte array. The length is not stored.
func (m *Module) WriteBA(v []uint8) {
	m.data.Write(v)
}

// WriteString writes a length prefixed string.
func (m *Module) WriteString(s string) {
	m.WriteW(uint16(len(s)))
	m.data.WriteString(s)
}

func (m *Module) read(n int) []uint8 {
	if m.err != nil {
		return make([]uint8, n)
	}
	if m.rd == nil {
		m.rd = bytes.NewReader(m.data.Bytes())
	}
	b := make([]uint8, n)
	if _, err := io.ReadFull(m.rd, b); err != nil {
		m.err = curated.Errorf(ModuleShort, m.Name)
		return make([]uint8, n)
	}
	return b
}

// ReadB reads a byte.
func (m *Module) ReadB() uint8 {
	return m.read(1)[0]
}

// ReadBool reads a boolean.
func (m *Module) ReadBool() bool {
	return m.read(1)[0] != 0
}

// ReadW reads a 16 bit word.
func (m *Module) ReadW() uint16 {
	return binary.LittleEndian.Uint16(m.read(2))
}

// ReadDW reads a 32 bit double word.
func (m *Module) ReadDW() uint32 {
	return binary.LittleEndian.Uint32(m.read(4))
}

// ReadQW reads a 64 bit quad word.
func (m *Module) ReadQW() uint64 {
	return binary.LittleEndian.Uint64(m.read(8))
}

// ReadBA fills the byte array.
func (m *Module) ReadBA(v []uint8) {
	if len(v) == 0 {
		return
	}
	copy(v, m.read(len(v)))
}

// ReadString reads a length prefixed string.
func (m *Module) ReadString() string {
	n := int(m.ReadW())
	return string(m.read(n))
}
