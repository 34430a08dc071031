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

// FIFOCapacity is the size of the data FIFO. The threshold set by CONFIGURE
// limits how much of it is used.
const FIFOCapacity = 16

// fifo between the host and the disk. during a read the controller pushes
// at the ctrl index and the host pops at the host index. during a write it
// is the other way round
type fifo struct {
	data [FIFOCapacity]uint8
	size int
	fill int
	host int
	ctrl int
}

func (f *fifo) reset() {
	clear(f.data[:])
	f.size = 1
	f.fill = 0
	f.host = 0
	f.ctrl = 0
}

// configure the threshold. a size outside the capacity disables the FIFO,
// leaving a single byte buffer
func (f *fifo) configure(size int) {
	if size < 1 || size > FIFOCapacity {
		size = 1
	}
	f.size = size
	f.fill = 0
	f.host = 0
	f.ctrl = 0
}

// restart empties the FIFO at the start of a command
func (f *fifo) restart() {
	f.fill = 0
	f.ctrl = f.host
}

func (f *fifo) next(p int) int {
	p++
	if p >= f.size {
		p = 0
	}
	return p
}

func (f *fifo) full() bool {
	return f.fill >= f.size
}

// push a byte read from the disk. returns false on overrun
func (f *fifo) push(v uint8) bool {
	if f.full() {
		return false
	}
	f.data[f.ctrl] = v
	f.ctrl = f.next(f.ctrl)
	f.fill++
	return true
}

// pop a byte to write to the disk. returns false on underrun
func (f *fifo) pop() (uint8, bool) {
	if f.fill == 0 {
		return 0, false
	}
	v := f.data[f.ctrl]
	f.ctrl = f.next(f.ctrl)
	f.fill--
	return v, true
}

// hostWrite is a write to the data register by the host. a write to a full
// FIFO is lost
func (f *fifo) hostWrite(v uint8) {
	if f.full() {
		return
	}
	f.data[f.host] = v
	f.host = f.next(f.host)
	f.fill++
}

// hostRead is a read of the data register by the host. reading an empty
// FIFO returns the last value again
func (f *fifo) hostRead() uint8 {
	v := f.data[f.host]
	if f.fill > 0 {
		f.fill--
		f.host = f.next(f.host)
	}
	return v
}
