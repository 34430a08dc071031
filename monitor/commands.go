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

package monitor

import (
	"fmt"
	"sort"
	"strings"
)

// Sentinal error patterns.
const (
	UnknownCommand  = "monitor: unknown command (%s)"
	MissingArgument = "monitor: missing argument (%s)"
	BadArgument     = "monitor: bad %s (%s)"
	TooManyArgs     = "monitor: too many arguments (%s)"
	NoSound         = "monitor: drive sound recording is not enabled"
)

// List of monitor commands.
const (
	KeywordHelp     = "HELP"
	KeywordQuit     = "QUIT"
	KeywordReset    = "RESET"
	KeywordAdd      = "ADD"
	KeywordRemove   = "REMOVE"
	KeywordUnits    = "UNITS"
	KeywordAttach   = "ATTACH"
	KeywordDetach   = "DETACH"
	KeywordPeek     = "PEEK"
	KeywordPoke     = "POKE"
	KeywordHost     = "HOST"
	KeywordBus      = "BUS"
	KeywordTrace    = "TRACE"
	KeywordRun      = "RUN"
	KeywordStep     = "STEP"
	KeywordClock    = "CLOCK"
	KeywordLEDs     = "LEDS"
	KeywordSnapshot = "SNAPSHOT"
	KeywordRewind   = "REWIND"
	KeywordLog      = "LOG"
	KeywordScript   = "SCRIPT"
	KeywordSound    = "SOUND"
)

// Help contains the help text for the monitor commands.
var Help = map[string]string{
	KeywordHelp:     "Lists commands and provides help for individual commands",
	KeywordQuit:     "Exits the monitor",
	KeywordReset:    "Reset every drive, or the drive given by unit number",
	KeywordAdd:      "Add a drive (1581, FD2000, FD4000 or CMDHD) as the unit number",
	KeywordRemove:   "Remove the drive with the unit number",
	KeywordUnits:    "List the attached drives",
	KeywordAttach:   "Insert a disk image (from file) into the drive",
	KeywordDetach:   "Remove the disk image from the drive",
	KeywordPeek:     "Inspect the memory map of a drive. Optional number of bytes to show",
	KeywordPoke:     "Write one or more bytes to the memory map of a drive",
	KeywordHost:     "Write the host serial port (ATN 0x08, CLK 0x10, DATA 0x20). No value reads the port",
	KeywordBus:      "Display the state of the serial bus",
	KeywordTrace:    "Display the recent activity of the serial bus lines",
	KeywordRun:      "Advance the clock by the number of cycles",
	KeywordStep:     "Advance the clock to the next scheduled event",
	KeywordClock:    "Display the clock and the pending events",
	KeywordLEDs:     "Display the front panel LEDs of the drive",
	KeywordSnapshot: "Save or load the state of the emulation. A saved file is named after the attached image if no filename is given",
	KeywordRewind:   "Return to an earlier state (BACK n|CYCLE c|CURRENT). No argument shows the rewind state",
	KeywordLog:      "Show the most recent log entries",
	KeywordScript:   "Run a Lua script (from file)",
	KeywordSound:    "Write the recorded drive noises to a WAV file (SAVE [file]) or restart the recording (CLEAR)",
}

// usage of each command.
var usage = map[string]string{
	KeywordHelp:     "[command]",
	KeywordQuit:     "",
	KeywordReset:    "[unit]",
	KeywordAdd:      "<kind> <unit>",
	KeywordRemove:   "<unit>",
	KeywordUnits:    "",
	KeywordAttach:   "<unit> <file>",
	KeywordDetach:   "<unit>",
	KeywordPeek:     "<unit> <address> [count]",
	KeywordPoke:     "<unit> <address> <value> [value...]",
	KeywordHost:     "[value]",
	KeywordBus:      "",
	KeywordTrace:    "",
	KeywordRun:      "<cycles>",
	KeywordStep:     "",
	KeywordClock:    "",
	KeywordLEDs:     "<unit>",
	KeywordSnapshot: "SAVE [file] | LOAD <file>",
	KeywordRewind:   "[BACK <n>|CYCLE <cycle>|CURRENT]",
	KeywordLog:      "[count]",
	KeywordScript:   "<file>",
	KeywordSound:    "SAVE [file] | CLEAR",
}

// Keywords returns the sorted list of commands.
func Keywords() []string {
	k := make([]string, 0, len(Help))
	for c := range Help {
		k = append(k, c)
	}
	sort.Strings(k)
	return k
}

func helpText(keyword string) (string, bool) {
	keyword = strings.ToUpper(keyword)
	h, ok := Help[keyword]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s %s\n  %s", keyword, usage[keyword], h), true
}
