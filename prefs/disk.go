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
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is written to the head of every preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// NoPrefsFile is returned by Load() when the preferences file does not yet
// exist.
const NoPrefsFile = "prefs: no prefs file (%s)"

// separator between key and value in the preferences file.
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

func (dsk *Disk) String() string {
	keys := dsk.keys()
	s := strings.Builder{}
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

func (dsk *Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the preferences file.
//
// If the command line stack contains the key then the command line value is
// set immediately.
func (dsk *Disk) Add(key string, p pref) error {
	for _, r := range key {
		if !(r == '.' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return fmt.Errorf("prefs: illegal character [%c] in key string [%s]", r, key)
		}
	}
	dsk.entries[key] = p

	if ok, v := GetCommandLinePref(key); ok {
		if err := p.Set(v); err != nil {
			return fmt.Errorf("prefs: %w", err)
		}
	}

	return nil
}

// Reset all preference values to their zero value.
func (dsk *Disk) Reset() error {
	for _, v := range dsk.entries {
		if err := v.Reset(); err != nil {
			return fmt.Errorf("prefs: %w", err)
		}
	}
	return nil
}

// read the preferences file into a map of key/value strings.
func (dsk *Disk) read() (map[string]string, error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	data := make(map[string]string)

	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanLines)

	// check validity of file by checking the first line
	scanner.Scan()
	if len(scanner.Text()) > 0 && scanner.Text() != WarningBoilerPlate {
		return nil, fmt.Errorf("prefs: not a valid prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), keySep)
		if !ok {
			continue
		}
		if isDefunct(k) {
			continue
		}
		data[k] = v
	}

	return data, scanner.Err()
}

// Save current preference values to disk. Values in the preferences file
// that have not been added to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	data, err := dsk.read()
	if err != nil {
		if !curated.Is(err, NoPrefsFile) {
			return err
		}
		data = make(map[string]string)
	}

	for k, v := range dsk.entries {
		data[k] = v.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := io.WriteString(w, fmt.Sprintf("%s\n", WarningBoilerPlate)); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	for _, k := range keys {
		if _, err := io.WriteString(w, fmt.Sprintf("%s%s%s\n", k, keySep, data[k])); err != nil {
			return fmt.Errorf("prefs: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	return nil
}

// Load preference values from disk. The saveOnFail flag causes the Save()
// function to be called if the preferences file could not be read.
func (dsk *Disk) Load(saveOnFail bool) error {
	data, err := dsk.read()
	if err != nil {
		if saveOnFail && curated.Is(err, NoPrefsFile) {
			return dsk.Save()
		}
		return err
	}

	for k, v := range data {
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}

	return nil
}
