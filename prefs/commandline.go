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

import (
	"sort"
	"strings"
	"sync"
)

// preference values given on the command line are held in a stack of groups.
// each group is consulted when a preference is added to a Disk. values are
// removed from the group as they are used so that unused values can be
// reported when the group is popped.
var commandLine struct {
	crit  sync.Mutex
	stack []map[string]string
}

// separators used by the command line preference string. for example:
//
//	drive.clockmhz::2; sound.enabled::true
const (
	commandLineSep    = ";"
	commandLineKeyVal = "::"
)

// SizeCommandLineStack returns the number of groups that have been added
// with PushCommandLineStack().
func SizeCommandLineStack() int {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()
	return len(commandLine.stack)
}

// PushCommandLineStack parses a preferences string and adds it as a new
// group. Entries that are not of the form key::value are ignored.
func PushCommandLineStack(prefs string) {
	grp := make(map[string]string)
	for _, p := range strings.Split(prefs, commandLineSep) {
		k, v, ok := strings.Cut(p, commandLineKeyVal)
		if !ok {
			continue
		}
		grp[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()
	commandLine.stack = append(commandLine.stack, grp)
}

// PopCommandLineStack forgets the most recent group added by
// PushCommandLineStack().
//
// Returns the unused preferences of the group as a preferences string,
// sorted by key.
func PopCommandLineStack() string {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	if len(commandLine.stack) == 0 {
		return ""
	}

	grp := commandLine.stack[len(commandLine.stack)-1]
	commandLine.stack = commandLine.stack[:len(commandLine.stack)-1]

	unused := make([]string, 0, len(grp))
	for k, v := range grp {
		unused = append(unused, k+commandLineKeyVal+v)
	}
	sort.Strings(unused)

	return strings.Join(unused, commandLineSep+" ")
}

// GetCommandLinePref returns the value for key from the most recent group.
// The value is removed from the group once it has been returned.
func GetCommandLinePref(key string) (bool, Value) {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	if len(commandLine.stack) == 0 {
		return false, nil
	}

	grp := commandLine.stack[len(commandLine.stack)-1]
	if v, ok := grp[key]; ok {
		delete(grp, key)
		return true, v
	}

	return false, nil
}
