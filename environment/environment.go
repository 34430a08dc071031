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

package environment

import (
	"github.com/jetsetilly/gopherdrive/hardware/preferences"
	"github.com/jetsetilly/gopherdrive/random"
)

// Label names an environment. The empty label is the main emulation.
type Label string

// MainEmulation is the label of the environment that owns the drives being
// controlled by the user.
const MainEmulation Label = ""

// Environment is the context shared by every component of a system of drives.
// Components take their randomness and their preferences from here rather
// than from package level state.
type Environment struct {
	Label Label

	Random *random.Random
	Prefs  *preferences.Preferences
}

// NewEnvironment creates the environment for the main emulation. The clock
// seeds the random number generator. If prefs is nil the preferences are
// loaded from disk.
func NewEnvironment(clk random.Clock, prefs *preferences.Preferences) (*Environment, error) {
	if prefs == nil {
		var err error
		if prefs, err = preferences.NewPreferences(); err != nil {
			return nil, err
		}
	}
	return &Environment{
		Label:  MainEmulation,
		Random: random.NewRandom(clk),
		Prefs:  prefs,
	}, nil
}

// Normalise puts the environment into a repeatable state. Random numbers are
// produced from a zero seed and the preferences are the defaults.
func (env *Environment) Normalise() {
	env.Random.ZeroSeed = true
	env.Prefs.SetDefaults()
}

// IsEmulation returns true if the environment has the label.
func (env *Environment) IsEmulation(label Label) bool {
	return env.Label == label
}

// AllowLogging implements the logger.Permission interface. Secondary
// environments are silent.
func (env *Environment) AllowLogging() bool {
	return env == nil || env.Label == MainEmulation
}
