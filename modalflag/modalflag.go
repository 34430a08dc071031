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
	"io"
	"strings"
)

const modeSeparator = "/"

// Modes handles command line arguments that are divided into modes. Each
// mode has its own flags and a list of sub-modes. For example:
//
//	gopherdrive FORMAT -type D81 work.d81
//
// The Output field should be specified before calling Parse() or help
// messages will not be seen.
type Modes struct {
	// where to print help messages
	Output io.Writer

	// whether Parse() has been called since the most recent NewMode()
	parsed bool

	// a new flagset is created on every call to NewMode()
	flags *flag.FlagSet

	// the argument list as specified by the NewArgs() function and the index
	// of the first argument not yet consumed by a mode
	args    []string
	argsIdx int

	// sub-modes for the next call to Parse(). the first entry is the
	// default
	subModes []string

	// the sub-modes found by every call to Parse() since NewArgs()
	path []string

	// verbose explanation added to the help message of the current mode
	additionalHelp string
}

func (md *Modes) String() string {
	return md.Path()
}

// Mode returns the last mode to be encountered.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// Path returns all the modes encountered during parsing, separated by a
// slash.
func (md *Modes) Path() string {
	return strings.Join(md.path, modeSeparator)
}

// NewArgs with a list of arguments (from the command line for example). The
// path of modes is reset.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.argsIdx = 0
	md.path = md.path[:0]
	md.NewMode()
}

// NewMode indicates that further arguments should be considered part of a new
// mode.
func (md *Modes) NewMode() {
	md.subModes = md.subModes[:0]
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.parsed = false
	md.additionalHelp = ""
}

// AdditionalHelp allows you to add extensive help text to be displayed in
// addition to the regular help on available flags.
func (md *Modes) AdditionalHelp(help string) {
	md.additionalHelp = help
}

// Parsed returns false if Parse() has not yet been called since either a call
// to NewArgs() or NewMode(). A Modes struct is considered to be Parsed() even
// if Parse() results in an error.
func (md *Modes) Parsed() bool {
	return md.parsed
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	// Continue with command line processing. If sub-modes were specified
	// then Mode() returns the selected sub-mode.
	ParseContinue ParseResult = iota

	// Help was requested and has been printed.
	ParseHelp

	// An error has occurred and is returned as the second return value.
	ParseError
)

// Parse the arguments for the current mode. Help messages are printed
// automatically and ParseHelp returned. The idiomatic usage is:
//
//	p, err := md.Parse()
//	if err != nil || p != modalflag.ParseContinue {
//		return err
//	}
func (md *Modes) Parse() (ParseResult, error) {
	md.parsed = true

	help := &strings.Builder{}
	md.flags.SetOutput(help)

	err := md.flags.Parse(md.args[md.argsIdx:])
	if err == flag.ErrHelp {
		writeHelp(md.Output, help.String(), md.Path(), md.subModes, md.additionalHelp)
		return ParseHelp, nil
	}

	if len(md.subModes) == 0 {
		if err != nil {
			return ParseError, err
		}
		return ParseContinue, nil
	}

	// unrecognised flags select the default sub-mode. the flags will be
	// parsed again by the sub-mode
	mode := md.subModes[0]
	if err == nil {
		arg := strings.ToUpper(md.flags.Arg(0))
		for _, m := range md.subModes {
			if m == arg {
				mode = m
				md.argsIdx++
				break
			}
		}
	}
	md.path = append(md.path, mode)

	return ParseContinue, nil
}

// RemainingArgs after a call to Parse() ie. arguments that aren't flags or a
// listed sub-mode.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered argument that isn't a flag or listed sub-mode.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

// AddSubModes to list of submodes for next parse. The first sub-mode in the
// list is considered to be the default sub-mode. Sub-mode comparisons are
// case insensitive.
func (md *Modes) AddSubModes(submodes ...string) {
	for _, m := range submodes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
}

// AddDefaultSubMode to list of sub-modes.
func (md *Modes) AddDefaultSubMode(defSubMode string) {
	md.subModes = append([]string{strings.ToUpper(defSubMode)}, md.subModes...)
}
