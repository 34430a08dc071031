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

package paths

import (
	"path/filepath"
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

// UniqueFilename returns a filename made from the prefix, the base name of the
// disk image and the current time. For example:
//
//	snapshot_demo_20260102_150405
//
// The image name is omitted if it is empty. The function does not check
// whether the file already exists.
func UniqueFilename(prefix string, imageName string) string {
	parts := []string{prefix}

	img := filepath.Base(strings.TrimSpace(imageName))
	img = strings.TrimSuffix(img, filepath.Ext(img))
	if img != "" && img != "." && img != string(filepath.Separator) {
		parts = append(parts, img)
	}

	parts = append(parts, time.Now().Format(timestampLayout))
	return strings.Join(parts, "_")
}
