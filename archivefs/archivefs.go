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

// Package archivefs gives access to disk images stored inside archive files.
// A path can pass through an archive as though it were a directory:
//
//	images/collection.zip/games/work.d81
//
// Files inside an archive are always read only.
package archivefs

import (
	"io"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Open and return an io.ReadSeeker for the specified filename. Filename can be
// inside an archive supported by archivefs.
//
// Returns the io.ReadSeeker, the size of the data behind the ReadSeeker and any
// errors.
func Open(filename string) (io.ReadSeeker, int, error) {
	var afs Path
	err := afs.Set(filename)
	if err != nil {
		return nil, 0, err
	}
	defer afs.Close()
	return afs.Open()
}

// ReadFile returns the entire contents of the file, which can be inside an
// archive. The second return value is true if the file was in an archive.
func ReadFile(filename string) ([]uint8, bool, error) {
	var afs Path
	if err := afs.Set(filename); err != nil {
		return nil, false, err
	}
	defer afs.Close()

	if afs.IsDir() {
		return nil, false, curated.Errorf(NotAFile, filename)
	}

	r, _, err := afs.Open()
	if err != nil {
		return nil, false, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, curated.Errorf("archivefs: %v", err)
	}

	return data, afs.InArchive(), nil
}
