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
	"fmt"
	"io"
	"strings"
)

// the help output of the flag package begins with this line. if there is
// nothing else then there are no flags defined
const flagBanner = "Usage:"

// writeHelp amends the help output of the flag package with the name of the
// mode, the list of sub-modes and any additional help.
func writeHelp(output io.Writer, flagHelp string, mode string, subModes []string, additionalHelp string) {
	if output == nil {
		return
	}

	lines := strings.Split(flagHelp, "\n")
	noFlags := strings.TrimSpace(flagHelp) == flagBanner

	s := &strings.Builder{}
	defer func() {
		io.WriteString(output, s.String())
	}()

	if noFlags && len(subModes) == 0 {
		s.WriteString("No help available")
		if mode != "" {
			fmt.Fprintf(s, " for %s", mode)
		}
		s.WriteString("\n")
		return
	}

	s.WriteString(lines[0])
	if mode != "" {
		fmt.Fprintf(s, " for %s mode", mode)
	}
	s.WriteString("\n")

	if len(lines) > 1 {
		s.WriteString(strings.Join(lines[1:], "\n"))
	}

	if len(subModes) > 0 {
		if !noFlags {
			s.WriteString("\n")
		}
		fmt.Fprintf(s, "  available sub-modes: %s\n", strings.Join(subModes, ", "))
		fmt.Fprintf(s, "    default: %s\n", subModes[0])
	}

	if additionalHelp != "" {
		fmt.Fprintf(s, "\n%s\n", additionalHelp)
	}
}
