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

// Package version reports the version of the program. The version number is
// set at link time with:
//
//	go build -ldflags "-X github.com/jetsetilly/gopherdrive/version.number=v0.1.0"
//
// Without a version number the version string is "unreleased" if the build
// has VCS information and "local" if it does not, which is the case for
// "go run ."
package version

import (
	"runtime/debug"
	"strings"
)

// ApplicationName is the name to use when referring to the program.
const ApplicationName = "Gopherdrive"

// set by the linker
var number string

var (
	version  string
	revision string
)

// Version returns the version string, the VCS revision and whether this is a
// numbered release.
func Version() (string, string, bool) {
	return version, revision, number != "" && version == number
}

// Short returns the version string padded with spaces or truncated to
// width. Used for fixed width identification fields.
func Short(width int) string {
	if len(version) >= width {
		return version[:width]
	}
	return version + strings.Repeat(" ", width-len(version))
}

func init() {
	version, revision = fromBuildInfo(number)
}

func fromBuildInfo(number string) (string, string) {
	settings := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
	}

	rev, ok := settings["vcs.revision"]
	if !ok || rev == "" {
		rev = "no revision information"
	} else if settings["vcs.modified"] == "true" {
		rev += "+dirty"
	}

	if number != "" {
		return number, rev
	}
	if _, ok := settings["vcs"]; ok {
		return "unreleased", rev
	}
	return "local", rev
}
