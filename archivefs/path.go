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

package archivefs

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
)

// Sentinal error patterns.
const (
	NotAFile = "archivefs: not a file (%s)"
	BadPath  = "archivefs: %v"
)

// Entry represents a single part of a full path.
type Entry struct {
	Name string

	// a directory has the the field of IsDir set to true
	IsDir bool

	// a recognised archive file has IsArchive set to true. note that an
	// archive file is also considered to be directory
	IsArchive bool
}

func (e Entry) String() string {
	return e.Name
}

// Sort entries according to the archivefs rules, which are simply: case
// insensitive and directories at the top of the listing.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i int, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

// Path represents a single destination in the file system.
type Path struct {
	current string
	isDir   bool

	zf *zip.ReadCloser

	// if the path is inside a zip file, we split the in-zip path into the path
	// to a file and the file itself
	inZipPath string
	inZipFile string
}

// String returns the current path.
func (afs Path) String() string {
	return afs.current
}

// Base returns the last element of the current path.
func (afs Path) Base() string {
	return filepath.Base(afs.current)
}

// Dir returns all but the last element of path.
func (afs Path) Dir() string {
	if afs.isDir {
		return afs.current
	}
	return filepath.Dir(afs.current)
}

// IsDir returns true if Path is currently set to a directory. For the purposes
// of archivefs, the root of an archive is treated as a directory.
func (afs Path) IsDir() bool {
	return afs.isDir
}

// InArchive returns true if path is currently inside an archive.
func (afs Path) InArchive() bool {
	return afs.zf != nil
}

// zip files always use forward slashes
func zipJoin(elem ...string) string {
	var s []string
	for _, e := range elem {
		if e != "" {
			s = append(s, e)
		}
	}
	return strings.Join(s, "/")
}

// Open and return an io.ReadSeeker for the filename previously set by the Set()
// function. A file outside of an archive is returned as an *os.File which
// should be closed by the caller.
//
// Returns the io.ReadSeeker, the size of the data behind the ReadSeeker and any
// errors.
func (afs Path) Open() (io.ReadSeeker, int, error) {
	if afs.zf != nil {
		f, err := afs.zf.Open(zipJoin(afs.inZipPath, afs.inZipFile))
		if err != nil {
			return nil, 0, curated.Errorf(BadPath, err)
		}
		defer f.Close()

		b, err := io.ReadAll(f)
		if err != nil {
			return nil, 0, curated.Errorf(BadPath, err)
		}

		return bytes.NewReader(b), len(b), nil
	}

	f, err := os.Open(afs.current)
	if err != nil {
		return nil, 0, curated.Errorf(BadPath, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, curated.Errorf(BadPath, err)
	}

	return f, int(info.Size()), nil
}

// Close any open zip files and reset path.
func (afs *Path) Close() {
	afs.current = ""
	afs.isDir = false
	afs.inZipPath = ""
	afs.inZipFile = ""
	if afs.zf != nil {
		afs.zf.Close()
		afs.zf = nil
	}
}

// List returns the child entries for the current path location. If the current
// path is a file then the list will be the contents of the containing directory
// of that file.
func (afs *Path) List() ([]Entry, error) {
	var ent []Entry

	if afs.zf != nil {
		for _, f := range afs.zf.File {
			name := strings.TrimSuffix(f.Name, "/")
			dir := ""
			if i := strings.LastIndex(name, "/"); i >= 0 {
				dir = name[:i]
			}
			if dir != afs.inZipPath {
				continue
			}

			fi := f.FileInfo()
			ent = append(ent, Entry{
				Name:  fi.Name(),
				IsDir: fi.IsDir(),
			})
		}
	} else {
		path := afs.current
		if !afs.isDir {
			path = filepath.Dir(path)
		}

		dir, err := os.ReadDir(path)
		if err != nil {
			return nil, curated.Errorf(BadPath, err)
		}

		for _, d := range dir {
			// using os.Stat() to get file information otherwise links to
			// directories do not have the IsDir() property
			p := filepath.Join(path, d.Name())
			fi, err := os.Stat(p)
			if err != nil {
				continue
			}

			if fi.IsDir() {
				ent = append(ent, Entry{Name: d.Name(), IsDir: true})
				continue
			}

			if zf, err := zip.OpenReader(p); err == nil {
				zf.Close()
				ent = append(ent, Entry{Name: d.Name(), IsDir: true, IsArchive: true})
			} else {
				ent = append(ent, Entry{Name: d.Name()})
			}
		}
	}

	Sort(ent)

	return ent, nil
}

// Set the path. Any component of the path can be an archive file, after
// which the remaining components are looked for inside the archive.
func (afs *Path) Set(path string) error {
	afs.Close()

	path = filepath.Clean(path)
	lst := strings.Split(path, string(filepath.Separator))

	// strings.Split will remove a leading filepath.Separator. we need to add
	// one back so that filepath.Join() works as expected
	if lst[0] == "" {
		lst[0] = string(filepath.Separator)
	}

	path = ""

	for _, l := range lst {
		path = filepath.Join(path, l)

		if afs.zf != nil {
			p := zipJoin(afs.inZipPath, l)

			zf, err := afs.zf.Open(p)
			if err != nil {
				afs.Close()
				return curated.Errorf(BadPath, err)
			}

			zfi, err := zf.Stat()
			zf.Close()
			if err != nil {
				afs.Close()
				return curated.Errorf(BadPath, err)
			}

			afs.isDir = zfi.IsDir()
			if afs.isDir {
				afs.inZipPath = p
				afs.inZipFile = ""
			} else {
				afs.inZipFile = l
			}

		} else {
			fi, err := os.Stat(path)
			if err != nil {
				afs.Close()
				return curated.Errorf(BadPath, err)
			}

			afs.isDir = fi.IsDir()
			if afs.isDir {
				continue
			}

			afs.zf, err = zip.OpenReader(path)
			if err == nil {
				// the root of an archive file is considered to be a directory
				afs.isDir = true
				continue
			}
			afs.zf = nil

			if !errors.Is(err, zip.ErrFormat) {
				afs.Close()
				return curated.Errorf(BadPath, err)
			}
		}
	}

	afs.current = filepath.Clean(path)

	return nil
}
