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

// Package plainterm implements the Terminal interface for the drive monitor.
// It's a simple as simple can be and offers no special features.
package plainterm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/terminal"
	"golang.org/x/term"
)

// PlainTerminal is the default, most basic terminal interface. It keeps the
// terminal in whatever mode it started, probably cooked mode.
type PlainTerminal struct {
	input      *bufio.Reader
	output     io.Writer
	realInput  bool
	realOutput bool
	silenced   bool
}

// NewPlainTerminal creates a terminal for the input and output. If either is
// nil then the standard input or output is used.
func NewPlainTerminal(input io.Reader, output io.Writer) *PlainTerminal {
	pt := &PlainTerminal{}
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	if f, ok := input.(*os.File); ok {
		pt.realInput = term.IsTerminal(int(f.Fd()))
	}
	if f, ok := output.(*os.File); ok {
		pt.realOutput = term.IsTerminal(int(f.Fd()))
	}
	pt.input = bufio.NewReader(input)
	pt.output = output
	return pt
}

// Initialise implements the terminal.Terminal interface.
func (pt *PlainTerminal) Initialise() error {
	return nil
}

// CleanUp implements the terminal.Terminal interface.
func (pt *PlainTerminal) CleanUp() {
}

// Silence implements the terminal.Terminal interface.
func (pt *PlainTerminal) Silence(silenced bool) {
	pt.silenced = silenced
}

// TermPrintLine implements the terminal.Output interface.
func (pt *PlainTerminal) TermPrintLine(style terminal.Style, s string) {
	if pt.silenced && style != terminal.StyleError {
		return
	}

	// we don't need to echo user input for this type of terminal
	if style == terminal.StyleEcho {
		return
	}

	if style == terminal.StyleError {
		s = fmt.Sprintf("* %s", s)
	}

	io.WriteString(pt.output, s)
	io.WriteString(pt.output, "\n")
}

// TermRead implements the terminal.Input interface.
func (pt *PlainTerminal) TermRead(prompt terminal.Prompt, events *terminal.ReadEvents) (string, error) {
	// insert prompt into output stream
	if pt.realInput && !pt.silenced {
		io.WriteString(pt.output, prompt.String())
	}

	s, err := pt.input.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}

	// an interrupt may have arrived while we were waiting for input
	if events != nil {
		select {
		case <-events.IntEvents:
			return "", curated.Errorf(terminal.UserInterrupt)
		default:
		}
	}

	return strings.TrimRight(s, "\r\n"), nil
}

// IsInteractive implements the terminal.Input interface.
func (pt *PlainTerminal) IsInteractive() bool {
	return pt.realInput && pt.realOutput
}
