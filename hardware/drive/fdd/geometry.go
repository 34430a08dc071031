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
	"github.com/jetsetilly/gopherdrive/diskimage"
)

// DataRates in kbit/s, indexed by the rate selector.
var DataRates = [4]int{500, 300, 250, 1000}

// MaxTrack is the highest track the head can physically reach.
const MaxTrack = 82

// Geometry of the physical media for an image type.
type Geometry struct {
	Tracks     int
	Sectors    int
	SectorSize int
	DiskRate   int
	ISO        bool
	Gap2       int
	Gap3       int

	// number of image sectors in an image track
	ImageSectors int
}

var geometries = map[diskimage.Type]Geometry{
	diskimage.TypeD81: {Tracks: 80, Sectors: 10, SectorSize: 2, DiskRate: 2, ISO: true, Gap2: 22, Gap3: 35, ImageSectors: 40},
	diskimage.TypeD1M: {Tracks: 81, Sectors: 10, SectorSize: 2, DiskRate: 2, Gap2: 22, Gap3: 35, ImageSectors: 256},
	diskimage.TypeD2M: {Tracks: 81, Sectors: 10, SectorSize: 3, DiskRate: 0, Gap2: 22, Gap3: 100, ImageSectors: 256},
	diskimage.TypeD4M: {Tracks: 81, Sectors: 20, SectorSize: 3, DiskRate: 3, Gap2: 41, Gap3: 100, ImageSectors: 256},
}

// GeometryOf returns the physical geometry for an image type. Unknown types
// are treated as D81.
func GeometryOf(t diskimage.Type) Geometry {
	if g, ok := geometries[t]; ok {
		return g
	}
	return geometries[diskimage.TypeD81]
}

// TrackLength returns the number of raw bytes on a track at the data rate.
func TrackLength(rate int) int {
	return 25 * DataRates[rate&3]
}
