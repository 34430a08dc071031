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
	"path/filepath"
	"slices"
	"strings"
)

// ArchiveExtensions lists the file extensions of the supported archive types.
// Extensions are compared without regard to case.
var ArchiveExtensions = []string{".ZIP"}

// IsArchiveExt returns true if the filename has the extension of a supported
// archive type.
func IsArchiveExt(fn string) bool {
	return slices.Contains(ArchiveExtensions, strings.ToUpper(filepath.Ext(fn)))
}

// RemoveArchiveExt removes the first archive extension found anywhere in the
// string. Used to turn a path into an archive into a plain path.
func RemoveArchiveExt(s string) string {
	u := strings.ToUpper(s)
	for _, ext := range ArchiveExtensions {
		if before, after, ok := strings.Cut(u, ext); ok {
			return s[:len(before)] + s[len(u)-len(after):]
		}
	}
	return s
}

// TrimArchiveExt removes the archive extension from the end of the string.
func TrimArchiveExt(s string) string {
	if IsArchiveExt(s) {
		return strings.TrimSuffix(s, filepath.Ext(s))
	}
	return s
}
