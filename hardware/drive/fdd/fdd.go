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

package fdd

import (
	"fmt"

	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/hardware/drive/mfm"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Listener is notified of mechanical events. Used by the drive sound
// recorder.
type Listener interface {
	Step(track int)
	Motor(on bool)
}

// rawTrack is the decoded form of the track under the head.
type rawTrack struct {
	// rotational position
	head int

	size int

	// track*2+side of the decoded data or -1 if nothing is decoded
	trackHead int
	dirty     bool

	data []uint8

	// one bit per position in data. most significant bit first
	sync []uint8
}

func (r *rawTrack) isSync(p int) bool {
	return r.sync[p>>3]&(0x80>>(p&7)) != 0
}

func (r *rawTrack) set(p int, v uint16) {
	r.data[p] = uint8(v)
	if v&mfm.SyncFlag == mfm.SyncFlag {
		r.sync[p>>3] |= 0x80 >> (p & 7)
	} else {
		r.sync[p>>3] &^= 0x80 >> (p & 7)
	}
}

func (r *rawTrack) get(p int) uint16 {
	v := uint16(r.data[p])
	if r.isSync(p) {
		v |= mfm.SyncFlag
	}
	return v
}

// Drive is a single floppy disk mechanism.
type Drive struct {
	name   string
	number int

	// output signals
	diskChange   bool
	writeProtect bool

	// physical head position
	track int

	head  int
	motor bool
	rate  int

	geometry   Geometry
	headInvert int

	indexCount int

	image diskimage.Image
	raw   rawTrack

	listener Listener
}

// NewDrive is the preferred method of initialisation for the Drive type.
func NewDrive(number int) *Drive {
	drv := &Drive{
		name:         fmt.Sprintf("FDD%d", number),
		number:       number & 3,
		geometry:     geometries[diskimage.TypeD81],
		headInvert:   1,
		diskChange:   true,
		writeProtect: true,
		rate:         2,
	}
	drv.allocRaw()
	return drv
}

func (drv *Drive) allocRaw() {
	drv.raw.size = TrackLength(drv.geometry.DiskRate)
	drv.raw.data = make([]uint8, drv.raw.size)
	drv.raw.sync = make([]uint8, (drv.raw.size+7)>>3)
	drv.raw.trackHead = -1
	drv.raw.dirty = false
	drv.raw.head = 0
}

func (drv *Drive) String() string {
	if drv == nil {
		return "no drive"
	}
	s := fmt.Sprintf("%s: track %d side %d", drv.name, drv.track, drv.head)
	if drv.motor {
		s = fmt.Sprintf("%s motor", s)
	}
	if drv.image == nil {
		return fmt.Sprintf("%s (empty)", s)
	}
	return fmt.Sprintf("%s [%s]", s, drv.image.Type())
}

// SetListener sets the listener for mechanical events. A nil value removes
// the listener.
func (drv *Drive) SetListener(l Listener) {
	if drv == nil {
		return
	}
	drv.listener = l
}

// Attach a disk image to the drive. The geometry of the media is set by
// the image type.
func (drv *Drive) Attach(img diskimage.Image) {
	if drv == nil {
		return
	}
	drv.Detach()
	drv.image = img
	drv.geometry = GeometryOf(img.Type())
	drv.allocRaw()
	drv.diskChange = true
	drv.writeProtect = img.ReadOnly()
}

// Detach the disk image. Any changes to the track under the head are written
// back to the image first.
func (drv *Drive) Detach() {
	if drv == nil || drv.image == nil {
		return
	}
	_ = drv.flushRaw()
	drv.image = nil
	drv.raw.trackHead = -1
	drv.diskChange = true
	drv.writeProtect = true
}

// Image returns the attached image or nil.
func (drv *Drive) Image() diskimage.Image {
	if drv == nil {
		return nil
	}
	return drv.image
}

// Geometry of the current media.
func (drv *Drive) Geometry() Geometry {
	if drv == nil {
		return Geometry{}
	}
	return drv.geometry
}

// Number returns the drive number as set on creation.
func (drv *Drive) Number() int {
	if drv == nil {
		return 0
	}
	return drv.number
}

// imageAddress returns the address of the first image sector of a physical
// sector. trackHead is the track*2+side as recorded on the media
func (drv *Drive) imageAddress(trackHead int, sector int) diskimage.Address {
	i := trackHead*drv.geometry.Sectors + sector
	i <<= drv.geometry.SectorSize - 1
	return diskimage.Address{
		Track:  i/drv.geometry.ImageSectors + 1,
		Sector: i % drv.geometry.ImageSectors,
	}
}

func (drv *Drive) nextAddress(adr diskimage.Address) diskimage.Address {
	adr.Sector = (adr.Sector + 1) % drv.geometry.ImageSectors
	if adr.Sector == 0 {
		adr.Track++
	}
	return adr
}

// rawWriter lays down a track from the start of the buffer
type rawWriter struct {
	raw *rawTrack
	p   int
}

func (w *rawWriter) Write(v uint16) bool {
	w.raw.set(w.p, v)
	w.p++
	if w.p >= w.raw.size {
		w.p = 0
	}
	return true
}

func (w *rawWriter) byte(v uint8) {
	w.Write(uint16(v))
}

// updateRaw decodes the track under the head if it is not already decoded.
func (drv *Drive) updateRaw() {
	th := drv.track*2 + drv.head
	if th == drv.raw.trackHead {
		return
	}
	if drv.raw.dirty {
		_ = drv.flushRaw()
	}
	drv.raw.trackHead = th

	for i := range drv.raw.data {
		drv.raw.data[i] = mfm.Gap
	}
	clear(drv.raw.sync)

	// tracks beyond the end of the image are blank
	if drv.track >= drv.geometry.Tracks || drv.image == nil {
		return
	}

	side := drv.head ^ drv.headInvert
	adr := drv.imageAddress(drv.track*2+side, 0)

	w := &rawWriter{raw: &drv.raw}
	if drv.geometry.ISO {
		w.p = mfm.Gap4aISO
	} else {
		w.p = mfm.Gap4a
		mfm.Preamble(w, mfm.IAM)
		for range mfm.GapIndexMark {
			w.byte(mfm.Gap)
		}
	}

	buffer := make([]uint8, diskimage.SectorSize)

	for s := range drv.geometry.Sectors {
		mfm.Preamble(w, mfm.IDAM)
		id := []uint8{uint8(drv.track), uint8(side), uint8(s + 1), uint8(drv.geometry.SectorSize)}
		for _, v := range id {
			w.byte(v)
		}
		crc := mfm.CRCBytes(mfm.SeedID, id)
		w.byte(uint8(crc >> 8))
		w.byte(uint8(crc))
		for range drv.geometry.Gap2 {
			w.byte(mfm.Gap)
		}

		crc = mfm.SeedData
		for j := 0; j < 1<<drv.geometry.SectorSize; j += 2 {
			if err := drv.image.ReadSector(adr, buffer); err != nil {
				logger.Logf(logger.Allow, drv.name, "read %s: %v", adr, err)
				return
			}
			if j == 0 {
				mfm.Preamble(w, mfm.DAM)
			}
			for _, v := range buffer {
				w.byte(v)
			}
			crc = mfm.CRCBytes(crc, buffer)
			adr = drv.nextAddress(adr)
		}
		w.byte(uint8(crc >> 8))
		w.byte(uint8(crc))
		for range drv.geometry.Gap3 {
			w.byte(mfm.Gap)
		}
	}
}

// flush states. see flushRaw()
const (
	flushIDZeros = iota
	flushIDSync
	flushIDMark
	flushTrack
	flushSide
	flushSector
	flushSize
	flushCRCHi
	flushCRCLo
	flushDataZeros
	flushDataSync
	flushDataMark
	flushData
	flushDataCRCHi
	flushDataCRCLo
)

// flushRaw parses the raw track and writes every sector found back to the
// image. Sectors are expected in the same layout produced by updateRaw() or
// by a controller formatting the track.
func (drv *Drive) flushRaw() error {
	if !drv.raw.dirty {
		return nil
	}
	drv.raw.dirty = false

	// tracks beyond the end of the image are never written back
	if drv.raw.trackHead/2 >= drv.geometry.Tracks || drv.image == nil {
		return nil
	}

	var werr error

	size := 128 << drv.geometry.SectorSize
	data := make([]uint8, size)

	p := 0
	for s := range drv.geometry.Sectors {
		step := flushIDZeros
		d := 0

		for i := 0; i < drv.raw.size*2; i++ {
			w := drv.raw.get(p)
			p++
			if p >= drv.raw.size {
				p = 0
			}

			switch step {
			case flushIDZeros:
				if w == mfm.Zero {
					step++
				}
				continue
			case flushIDSync:
				if w == mfm.Zero {
					continue
				}
				if w == mfm.SyncByte {
					step++
					continue
				}
			case flushIDMark:
				if w == mfm.SyncByte {
					continue
				}
				if w == mfm.IDAM {
					step++
					continue
				}
			case flushTrack:
				if int(w) == drv.raw.trackHead/2 {
					step++
					continue
				}
			case flushSide:
				if int(w) == (drv.raw.trackHead&1)^drv.headInvert {
					step++
					continue
				}
			case flushSector:
				if int(w) == s+1 {
					step++
					continue
				}
			case flushSize:
				if int(w) == drv.geometry.SectorSize {
					step++
					continue
				}
			case flushCRCHi, flushCRCLo:
				step++
				continue
			case flushDataZeros:
				if w == mfm.Zero {
					step++
				}
				continue
			case flushDataSync:
				if w == mfm.Zero {
					continue
				}
				if w == mfm.SyncByte {
					step++
					continue
				}
				step = flushDataZeros
				continue
			case flushDataMark:
				if w == mfm.SyncByte {
					continue
				}
				if w == mfm.DAM {
					step++
					continue
				}
			case flushData:
				data[d] = uint8(w)
				d++
				if d >= size {
					step++
				}
				continue
			case flushDataCRCHi:
				step++
				continue
			case flushDataCRCLo:
				adr := drv.imageAddress((drv.raw.trackHead ^ drv.headInvert), s)
				for j := 0; j < 1<<drv.geometry.SectorSize; j += 2 {
					o := j * 128
					if err := drv.image.WriteSector(adr, data[o:o+diskimage.SectorSize]); err != nil {
						logger.Logf(logger.Allow, drv.name, "write %s: %v", adr, err)
						if werr == nil {
							werr = err
						}
					}
					adr = drv.nextAddress(adr)
				}
				i = drv.raw.size * 2
			}

			// mismatch or sector written. start looking for the next ID
			step = flushIDZeros
		}
	}

	return werr
}

// Flush writes any changes to the track under the head back to the image.
// The first failed sector write is returned.
func (drv *Drive) Flush() error {
	if drv == nil {
		return nil
	}
	return drv.flushRaw()
}

// Rotate the disk by the number of byte times. Returns the number of byte
// times consumed, which is always the number requested. The disk only turns
// when the motor is on and a disk is inserted.
func (drv *Drive) Rotate(bytes int) int {
	if drv == nil || !drv.motor || drv.image == nil {
		return bytes
	}
	drv.indexCount += (drv.raw.head + bytes) / drv.raw.size
	drv.raw.head = (drv.raw.head + bytes) % drv.raw.size
	return bytes
}

// Index returns true if the index hole is under the sensor.
func (drv *Drive) Index() bool {
	if drv == nil {
		return false
	}
	return drv.raw.head < mfm.IndexLength
}

// IndexCountReset resets the count of index pulses.
func (drv *Drive) IndexCountReset() {
	if drv == nil {
		return
	}
	drv.indexCount = 0
}

// IndexCount returns the number of index pulses since the last reset.
func (drv *Drive) IndexCount() int {
	if drv == nil {
		return 0
	}
	return drv.indexCount
}

// Track0 returns true if the head is at track zero.
func (drv *Drive) Track0() bool {
	if drv == nil {
		return false
	}
	return drv.track == 0
}

// Track returns the physical position of the head.
func (drv *Drive) Track() int {
	if drv == nil {
		return 0
	}
	return drv.track
}

// WriteProtect returns the state of the write protect sensor. A drive with
// no disk reports write protect.
func (drv *Drive) WriteProtect() bool {
	if drv == nil {
		return false
	}
	return drv.writeProtect
}

// DiskChange returns the disk change latch. The latch is set when a disk is
// attached or detached and cleared by the first step pulse with a disk
// inserted.
func (drv *Drive) DiskChange() bool {
	if drv == nil {
		return false
	}
	return drv.diskChange
}

func (drv *Drive) advance() {
	drv.raw.head++
	if drv.raw.head >= drv.raw.size {
		drv.raw.head = 0
		drv.indexCount++
	}
}

// Read the value under the head and advance the rotation by one byte time.
// Bit 8 of the value indicates a sync byte.
//
// With no disk inserted the value is 0xff and the disk does not turn. When
// the data rate is not the rate of the media the value is zero.
func (drv *Drive) Read() uint16 {
	if drv == nil {
		return 0xff
	}
	if !drv.motor {
		return 0
	}
	if drv.image == nil {
		return 0xff
	}

	var v uint16
	if drv.geometry.DiskRate == drv.rate {
		drv.updateRaw()
		v = drv.raw.get(drv.raw.head)
	}
	drv.advance()
	return v
}

// Write the value under the head and advance the rotation by one byte time.
// Returns false if there is no disk or the motor is off.
func (drv *Drive) Write(v uint16) bool {
	if drv == nil || !drv.motor || drv.image == nil {
		return false
	}
	drv.updateRaw()
	if drv.geometry.DiskRate == drv.rate {
		drv.raw.set(drv.raw.head, v)
		drv.raw.dirty = true
	}
	drv.advance()
	return true
}

// SeekPulse moves the head by one track. A direction of true moves the head
// towards the centre of the disk. The head is only moved when the motor is
// on and is clamped to the physical stops.
func (drv *Drive) SeekPulse(in bool) {
	if drv == nil {
		return
	}
	if drv.motor {
		if in {
			drv.track++
		} else {
			drv.track--
		}
	}
	if drv.image != nil {
		drv.diskChange = false
	}
	drv.track = max(0, min(MaxTrack, drv.track))
	if drv.listener != nil {
		drv.listener.Step(drv.track)
	}
}

// SelectHead selects the side of the disk.
func (drv *Drive) SelectHead(head int) {
	if drv == nil {
		return
	}
	drv.head = head & 1
}

// SetMotor turns the spindle motor on or off.
func (drv *Drive) SetMotor(on bool) {
	if drv == nil {
		return
	}
	if drv.motor != on && drv.listener != nil {
		drv.listener.Motor(on)
	}
	drv.motor = on
}

// Motor returns the state of the spindle motor.
func (drv *Drive) Motor() bool {
	if drv == nil {
		return false
	}
	return drv.motor
}

// SetRate sets the data rate selector. See DataRates.
func (drv *Drive) SetRate(rate int) {
	if drv == nil {
		return
	}
	drv.rate = rate & 3
}
