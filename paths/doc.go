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

// Package paths contains functions to prepare paths to gopherdrive resources.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the config directory. For example, the
// following will return the path to the preferences file.
//
//	p, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
//
// The policy of ResourcePath() depends on the build. Development builds use
// the ".gopherdrive" directory in the current working directory. Builds with
// the "release" tag use the user's config directory, as returned by
// os.UserConfigDir(). In both cases the directory (and sub-directory) is
// created if it does not exist.
package paths
