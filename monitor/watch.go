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

package monitor

import (
	"os"

	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/terminal/easyterm"
)

// the keys used by Watch() to toggle the host side of the serial bus
var watchKeys = map[byte]uint8{
	'a': 0x08,
	'c': 0x10,
	'd': 0x20,
}

// Watch is a live view of the serial bus. The terminal is put into cbreak
// mode and single key presses toggle the host lines: 'a' for ATN, 'c' for
// CLK and 'd' for DATA. Space advances the clock by one slice and 'q' or
// escape ends the watch.
//
// Both input and output must be a real terminal.
func Watch(sys *hardware.System, input *os.File, output *os.File) error {
	var et easyterm.Terminal
	if err := et.Initialise(input, output); err != nil {
		return err
	}
	defer et.CleanUp()

	et.CBreakMode()

	host := uint8(0)
	sys.WriteHost(host)

	for {
		et.Print("%s%d  %s  host %02x", easyterm.ClearLine, sys.Clock.Now(), sys.IEC, sys.ReadHost())

		k, err := et.ReadKey()
		if err != nil {
			return err
		}

		switch k {
		case 'q', easyterm.KeyEsc, easyterm.KeyInterrupt:
			et.Print("\n")
			return nil
		case ' ':
			if err := sys.RunFor(hardware.Slice, nil); err != nil {
				return err
			}
		default:
			if b, ok := watchKeys[k]; ok {
				host ^= b
				sys.WriteHost(host)
			}
		}
	}
}
