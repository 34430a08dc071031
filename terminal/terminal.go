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

package terminal

import (
	"os"
)

// Style is used to indicate the type of text being sent to the terminal.
type Style int

// List of terminal styles.
const (
	// the text that has been input by the user
	StyleEcho Style = iota

	// information that has been requested by the user
	StyleFeedback

	// information from the help command
	StyleHelp

	// output of the bus trace
	StyleTrace

	// an error has occurred
	StyleError
)

// Sentinal errors. Returned by TermRead() if caught whilst waiting for input.
const (
	UserInterrupt = "user interrupt"
	UserAbort     = "user abort"
)

// ReadEvents should be monitored during a TermRead().
type ReadEvents struct {
	// interrupt signals from the operating system
	IntEvents chan os.Signal
}

// Input defines the operations required by an interface that allows input.
type Input interface {
	// TermRead returns a single line of input, without the trailing newline.
	TermRead(prompt Prompt, events *ReadEvents) (string, error)

	// IsInteractive should return true for implementations that require
	// user interaction.
	IsInteractive() bool
}

// Output defines the operations required by an interface that allows output.
type Output interface {
	TermPrintLine(Style, string)
}

// Terminal defines the operations required by the command line interface.
type Terminal interface {
	Input
	Output

	// Initialise the terminal. not all terminal implementations will need to
	// do anything.
	Initialise() error

	// Restore the terminal to it's original state, if possible.
	CleanUp()

	// Silence all output except error messages.
	Silence(silenced bool)
}
