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

package clocks

import (
	"slices"
	"strings"
)

// Interrupt is implemented by anything that can receive an interrupt
// request. Chips identify themselves with the source string so that more
// than one chip can hold the line active at the same time.
type Interrupt interface {
	SetIRQ(source string, active bool)
}

// IRQLine is an open-collector interrupt line. The line is active while any
// source holds it active.
type IRQLine struct {
	sources map[string]bool

	// number of inactive to active transitions of the line
	edges int
}

// NewIRQLine is the preferred method of initialisation for the IRQLine type.
func NewIRQLine() *IRQLine {
	return &IRQLine{sources: make(map[string]bool)}
}

// SetIRQ implements the Interrupt interface.
func (l *IRQLine) SetIRQ(source string, active bool) {
	before := l.Active()
	if active {
		l.sources[source] = true
	} else {
		delete(l.sources, source)
	}
	if !before && l.Active() {
		l.edges++
	}
}

// Active returns true if any source is holding the line.
func (l *IRQLine) Active() bool {
	return len(l.sources) > 0
}

// Edges returns the number of times the line has become active.
func (l *IRQLine) Edges() int {
	return l.edges
}

func (l *IRQLine) String() string {
	if !l.Active() {
		return "IRQ: -"
	}
	s := make([]string, 0, len(l.sources))
	for k := range l.sources {
		s = append(s, k)
	}
	slices.Sort(s)
	return "IRQ: " + strings.Join(s, ", ")
}
