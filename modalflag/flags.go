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

package modalflag

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// Flags for the next call to Parse() are added with the Add*() functions. The
// returned pointer is valid after Parse() has returned ParseContinue.

// AddBool flag for next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddDuration flag for next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddFloat64 flag for next call to Parse().
func (md *Modes) AddFloat64(name string, value float64, usage string) *float64 {
	return md.flags.Float64(name, value, usage)
}

// AddInt flag for next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag for next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddUint flag for next call to Parse().
func (md *Modes) AddUint(name string, value uint, usage string) *uint {
	return md.flags.Uint(name, value, usage)
}

// hexValue implements the flag.Value interface for numbers that may be
// given with a hex prefix ("0x" or "$"). Register values and filler bytes
// are normally written this way.
type hexValue uint64

func (h *hexValue) String() string {
	if h == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*h), 10)
}

func (h *hexValue) Set(s string) error {
	base := 0
	if v, ok := strings.CutPrefix(s, "$"); ok {
		s = v
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return err
	}
	*h = hexValue(v)
	return nil
}

// AddHex flag for next call to Parse(). The value can be specified as a
// decimal, as a hex number with the "0x" or "$" prefix, or as an octal number
// with a leading zero.
func (md *Modes) AddHex(name string, value uint64, usage string) *uint64 {
	h := hexValue(value)
	md.flags.Var(&h, name, usage)
	return (*uint64)(&h)
}

// Visit visits the flags in lexicographical order, calling fn for each. It
// visits only those flags that have been set.
func (md *Modes) Visit(fn func(flag string)) {
	md.flags.Visit(func(f *flag.Flag) {
		fn(f.Name)
	})
}
