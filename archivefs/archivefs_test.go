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

package archivefs_test

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherdrive/archivefs"
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/test"
)

// the test directory contains a plain file and an archive
func makeTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "plain.d81"), []byte("plain contents\n"), 0o644))

	f, err := os.Create(filepath.Join(dir, "collection.zip"))
	test.DemandSuccess(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range []struct {
		name     string
		contents string
	}{
		{"work.d81", "work contents\n"},
		{"games/", ""},
		{"games/disk.d2m", "disk contents\n"},
		{"readme.txt", "readme\n"},
	} {
		w, err := zw.Create(e.name)
		test.DemandSuccess(t, err)
		_, err = io.WriteString(w, e.contents)
		test.DemandSuccess(t, err)
	}
	test.DemandSuccess(t, zw.Close())

	return dir
}

func TestPath(t *testing.T) {
	dir := makeTestDir(t)

	var afs archivefs.Path
	defer afs.Close()

	// non-existant file
	err := afs.Set(filepath.Join(dir, "foo"))
	test.ExpectSuccess(t, curated.Is(err, archivefs.BadPath))
	test.ExpectEquality(t, afs.String(), "")

	// a real directory
	test.DemandSuccess(t, afs.Set(dir))
	test.ExpectSuccess(t, afs.IsDir())
	test.ExpectFailure(t, afs.InArchive())

	entries, err := afs.List()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprintf("%s", entries), "[collection.zip plain.d81]")
	test.ExpectSuccess(t, entries[0].IsArchive)

	// a real file lists the containing directory
	path := filepath.Join(dir, "plain.d81")
	test.DemandSuccess(t, afs.Set(path))
	test.ExpectEquality(t, afs.String(), path)
	test.ExpectFailure(t, afs.IsDir())
	test.ExpectEquality(t, afs.Base(), "plain.d81")
	test.ExpectEquality(t, afs.Dir(), dir)

	// the archive is a directory
	path = filepath.Join(dir, "collection.zip")
	test.DemandSuccess(t, afs.Set(path))
	test.ExpectSuccess(t, afs.IsDir())
	test.ExpectSuccess(t, afs.InArchive())

	entries, err = afs.List()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprintf("%s", entries), "[games readme.txt work.d81]")

	// a directory inside the archive
	test.DemandSuccess(t, afs.Set(filepath.Join(path, "games")))
	test.ExpectSuccess(t, afs.IsDir())
	entries, err = afs.List()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprintf("%s", entries), "[disk.d2m]")

	// a file inside the archive
	test.DemandSuccess(t, afs.Set(filepath.Join(path, "games", "disk.d2m")))
	test.ExpectFailure(t, afs.IsDir())
	test.ExpectSuccess(t, afs.InArchive())
	test.ExpectEquality(t, afs.Base(), "disk.d2m")

	// missing file inside the archive
	err = afs.Set(filepath.Join(path, "missing.d81"))
	test.ExpectFailure(t, err)
	test.ExpectFailure(t, afs.InArchive())
}

func TestReadFile(t *testing.T) {
	dir := makeTestDir(t)

	d, inArchive, err := archivefs.ReadFile(filepath.Join(dir, "collection.zip", "work.d81"))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, inArchive)
	test.ExpectEquality(t, string(d), "work contents\n")

	d, inArchive, err = archivefs.ReadFile(filepath.Join(dir, "plain.d81"))
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, inArchive)
	test.ExpectEquality(t, string(d), "plain contents\n")

	_, _, err = archivefs.ReadFile(filepath.Join(dir, "collection.zip"))
	test.ExpectSuccess(t, curated.Is(err, archivefs.NotAFile))

	r, sz, err := archivefs.Open(filepath.Join(dir, "collection.zip", "games", "disk.d2m"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sz, 14)
	d, err = io.ReadAll(r)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(d), "disk contents\n")
}

func TestExtensions(t *testing.T) {
	test.ExpectEquality(t, archivefs.TrimArchiveExt("games.zip"), "games")
	test.ExpectEquality(t, archivefs.TrimArchiveExt("games.ZIP"), "games")
	test.ExpectEquality(t, archivefs.TrimArchiveExt("work.d81"), "work.d81")
	test.ExpectEquality(t, archivefs.RemoveArchiveExt("games.zip/work.d81"), "games/work.d81")
}
