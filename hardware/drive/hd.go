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

package drive

import (
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/hardware/bus/cmdbus"
	"github.com/jetsetilly/gopherdrive/hardware/bus/iecbus"
	"github.com/jetsetilly/gopherdrive/hardware/clocks"
	"github.com/jetsetilly/gopherdrive/hardware/drive/cmdhd"
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
)

// CMDHD is the CMD-HD drive. The memory map is decoded by the controller
// board.
type CMDHD struct {
	*cmdhd.Controller
	irq *clocks.IRQLine
}

// NewCMDHD is the preferred method of initialisation for the CMDHD type.
func NewCMDHD(env *environment.Environment, unit int, clk *clocks.Clock, iec *iecbus.Bus, cmd *cmdbus.Bus) (*CMDHD, error) {
	var prefs *preferences.Preferences
	if env != nil {
		prefs = env.Prefs
	}
	if cmd == nil {
		cmd = cmdbus.NewBus()
	}

	d := &CMDHD{
		irq: clocks.NewIRQLine(),
	}

	var err error
	d.Controller, err = cmdhd.NewController(env, unit, clk, d.irq, iec, cmd, prefs)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Kind implements the Unit interface.
func (d *CMDHD) Kind() Kind {
	return KindCMDHD
}

// Number implements the Unit interface.
func (d *CMDHD) Number() int {
	return d.Unit()
}

// IRQ implements the Unit interface.
func (d *CMDHD) IRQ() bool {
	return d.irq.Active()
}
