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

// Package easyterm is a wrapper for "github.com/pkg/term/termios". it provides
// some features not present in the third-party package, such as terminal
// geometry, and wraps termios methods in functions with friendlier names.
package easyterm

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the main container for posix terminals.
type Terminal struct {
	input  *os.File
	output *os.File

	// dimensions of the output terminal
	Geometry unix.Winsize

	canAttr    unix.Termios
	rawAttr    unix.Termios
	cbreakAttr unix.Termios

	// sig/ack channels to control signal handler
	terminateHandlerSig chan bool
	terminateHandlerAck chan bool

	// functions called from the signal handler take the lock
	mu sync.Mutex
}

// IsTerminal returns true if both files are connected to a terminal.
func IsTerminal(input, output *os.File) bool {
	return term.IsTerminal(int(input.Fd())) && term.IsTerminal(int(output.Fd()))
}

// Initialise the fields in the Terminal struct.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	if inputFile == nil {
		return fmt.Errorf("easyterm: terminal requires an input file")
	}
	if outputFile == nil {
		return fmt.Errorf("easyterm: terminal requires an output file")
	}
	if !IsTerminal(inputFile, outputFile) {
		return fmt.Errorf("easyterm: input and output must be a terminal")
	}

	pt.input = inputFile
	pt.output = outputFile

	// prepare the attributes for the different terminal modes
	if err := termios.Tcgetattr(pt.input.Fd(), &pt.canAttr); err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}
	pt.cbreakAttr = pt.canAttr
	termios.Cfmakecbreak(&pt.cbreakAttr)
	pt.rawAttr = pt.canAttr
	termios.Cfmakeraw(&pt.rawAttr)

	_ = pt.UpdateGeometry()

	pt.terminateHandlerSig = make(chan bool)
	pt.terminateHandlerAck = make(chan bool)

	go func() {
		sigwinch := make(chan os.Signal, 1)
		signal.Notify(sigwinch, syscall.SIGWINCH)
		defer func() {
			signal.Stop(sigwinch)
			pt.terminateHandlerAck <- true
		}()

		for {
			select {
			case <-sigwinch:
				_ = pt.UpdateGeometry()
			case <-pt.terminateHandlerSig:
				return
			}
		}
	}()

	return nil
}

// CleanUp returns the terminal to canonical mode and closes resources created
// in the Initialise() function.
func (pt *Terminal) CleanUp() {
	pt.CanonicalMode()
	pt.terminateHandlerSig <- true
	<-pt.terminateHandlerAck
}

// Print writes the formatted string to the output file.
func (pt *Terminal) Print(s string, a ...any) {
	pt.output.WriteString(fmt.Sprintf(s, a...))
	pt.output.Sync()
}

// UpdateGeometry gets the current dimensions (in characters and pixels) of the
// output terminal.
func (pt *Terminal) UpdateGeometry() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	ws, err := unix.IoctlGetWinsize(int(pt.output.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return fmt.Errorf("easyterm: error updating terminal geometry information (%w)", err)
	}
	pt.Geometry = *ws
	return nil
}

// CanonicalMode puts terminal into normal, everyday canonical mode.
func (pt *Terminal) CanonicalMode() {
	termios.Tcsetattr(pt.input.Fd(), termios.TCIFLUSH, &pt.canAttr)
}

// RawMode puts terminal into raw mode.
func (pt *Terminal) RawMode() {
	termios.Tcsetattr(pt.input.Fd(), termios.TCIFLUSH, &pt.rawAttr)
}

// CBreakMode puts terminal into cbreak mode.
func (pt *Terminal) CBreakMode() {
	termios.Tcsetattr(pt.input.Fd(), termios.TCIFLUSH, &pt.cbreakAttr)
}

// ReadKey waits for a single byte of input. Only useful in raw or cbreak
// mode.
func (pt *Terminal) ReadKey() (byte, error) {
	b := make([]byte, 1)
	_, err := pt.input.Read(b)
	return b[0], err
}

// Flush makes sure the terminal's input/output buffers are empty.
func (pt *Terminal) Flush() error {
	if err := termios.Tcflush(pt.input.Fd(), termios.TCIFLUSH); err != nil {
		return err
	}
	if err := termios.Tcflush(pt.output.Fd(), termios.TCOFLUSH); err != nil {
		return err
	}
	return nil
}
