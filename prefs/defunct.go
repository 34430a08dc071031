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

package prefs

// keys of preferences that were once saved but are no longer used. these are
// dropped silently when loading a preferences file
var defunct = map[string]bool{
	"drive.truedrive": true,
	"cmdhd.rtcsave":   true,
}

func isDefunct(key string) bool {
	return defunct[key]
}
