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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Unlike flag.FlagSet, arguments are given to NewArgs() and Parse() is
// called without arguments. This allows the same argument list to be parsed
// in layers, one layer per mode:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("INFO", "READ", "FORMAT")
//	p, err := md.Parse()
//	if err != nil || p != modalflag.ParseContinue {
//		return err
//	}
//
//	switch md.Mode() {
//	case "READ":
//		md.NewMode()
//		track := md.AddHex("track", 1, "track number")
//		...
//	}
//
// Sub-mode comparisons are case insensitive. The first sub-mode added with
// AddSubModes() is the default sub-mode unless AddDefaultSubMode() is used.
// When Parse() finds the name of a sub-mode as the first non-flag argument,
// the mode is added to the path and the remaining arguments are those after
// the mode selector.
//
// Non-flag arguments are retrieved with RemainingArgs() or GetArg().
//
// Help is handled automatically. The return value ParseHelp indicates that
// help has been printed to the Output writer and that the program should
// stop without printing anything further.
//
// The AddHex() flag type accepts decimal numbers and hex numbers with either
// the "0x" or "$" prefix. The dollar prefix is the common notation for
// addresses and register values on the machines being emulated.
package modalflag
