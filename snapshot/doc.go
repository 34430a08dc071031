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

// Package snapshot is the container for saved drive state. A snapshot file is
// a sequence of named modules, each with a major and minor version number and
// a fixed layout binary record written by the component that owns it.
//
// Modules are found by name. A module that cannot be restored, because its
// version is newer than the component supports, does not affect the restoring
// of any other module.
//
// Multi-byte values are stored little-endian.
package snapshot
