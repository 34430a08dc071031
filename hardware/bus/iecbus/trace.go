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

package iecbus

import "strings"

// Trace records the state of a bus line and the state immediately before
// the most recent change. A value of true is a released (high) line.
//
// Edges are derived from the two most recent states:
//
//	if atn.Falling() {
//		// ATN has been asserted
//	}
type Trace struct {
	Label string

	// recent states of the line, oldest first
	activity [traceLength]bool
	head     int

	from bool
	to   bool
}

const traceLength = 64

// NewTrace is the preferred method of initialisation for the Trace type. A
// new trace is released.
func NewTrace(label string) Trace {
	tr := Trace{
		Label: label,
		from:  true,
		to:    true,
	}
	for i := range tr.activity {
		tr.activity[i] = true
	}
	return tr
}

// Tick adds a new state to the trace.
func (tr *Trace) Tick(v bool) {
	tr.from = tr.to
	tr.to = v
	tr.activity[tr.head] = v
	tr.head = (tr.head + 1) % traceLength
}

// Changed returns true if the most recent Tick() changed the line.
func (tr *Trace) Changed() bool {
	return tr.from != tr.to
}

// Falling returns true if the most recent Tick() pulled the line low.
func (tr *Trace) Falling() bool {
	return tr.from && !tr.to
}

// Rising returns true if the most recent Tick() released the line.
func (tr *Trace) Rising() bool {
	return !tr.from && tr.to
}

// Hi returns true if the line is released.
func (tr *Trace) Hi() bool {
	return tr.to
}

// Lo returns true if the line is pulled low.
func (tr *Trace) Lo() bool {
	return !tr.to
}

// Activity returns the recent states of the line, oldest first.
func (tr *Trace) Activity() []bool {
	a := make([]bool, 0, traceLength)
	a = append(a, tr.activity[tr.head:]...)
	a = append(a, tr.activity[:tr.head]...)
	return a
}

// String renders the recent activity of the line.
func (tr *Trace) String() string {
	s := strings.Builder{}
	s.WriteString(tr.Label)
	s.WriteString(" ")
	for _, v := range tr.Activity() {
		if v {
			s.WriteRune('‾')
		} else {
			s.WriteRune('_')
		}
	}
	return s.String()
}
