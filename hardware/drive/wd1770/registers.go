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

package wd1770

import "fmt"

// Registers. The status and command registers share an address.
const (
	RegStatus  = 0
	RegCommand = 0
	RegTrack   = 1
	RegSector  = 2
	RegData    = 3
)

// Command flags.
const (
	flagA  = 0x01
	flagR  = 0x03
	flagV  = 0x04
	flagE  = 0x04
	flagH  = 0x08
	flagU  = 0x10
	flagM  = 0x10
	flagI2 = 0x04
	flagI3 = 0x08
)

// Status bits. The meaning of some bits depends on the command type.
const (
	StatusMO  = 0x80
	StatusWP  = 0x40
	StatusSU  = 0x20
	StatusRT  = 0x20
	StatusSE  = 0x10
	StatusRNF = 0x10
	StatusCRC = 0x08
	StatusT0  = 0x04
	StatusLD  = 0x04
	StatusIP  = 0x02
	StatusDRQ = 0x02
	StatusBSY = 0x01
)

// Command is a decoded controller command.
type Command uint8

// List of valid Command values.
const (
	Restore        Command = 0x00
	Seek           Command = 0x10
	Step           Command = 0x20
	StepIn         Command = 0x40
	StepOut        Command = 0x60
	ReadSector     Command = 0x80
	WriteSector    Command = 0xa0
	ReadAddress    Command = 0xc0
	ForceInterrupt Command = 0xd0
	ReadTrack      Command = 0xe0
	WriteTrack     Command = 0xf0
)

func (c Command) String() string {
	switch c {
	case Restore:
		return "RESTORE"
	case Seek:
		return "SEEK"
	case Step:
		return "STEP"
	case StepIn:
		return "STEP IN"
	case StepOut:
		return "STEP OUT"
	case ReadSector:
		return "READ SECTOR"
	case WriteSector:
		return "WRITE SECTOR"
	case ReadAddress:
		return "READ ADDRESS"
	case ForceInterrupt:
		return "FORCE INTERRUPT"
	case ReadTrack:
		return "READ TRACK"
	case WriteTrack:
		return "WRITE TRACK"
	}
	return "unknown"
}

// Type of the active micro program.
type Type int

// List of valid Type values.
const (
	// idle, updating the type 1 status bits from the mechanism first
	TypeStatus Type = -1

	TypeIdle Type = 0
	Type1    Type = 1
	Type2    Type = 2
	Type3    Type = 3
	Type4    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeStatus:
		return "status"
	case TypeIdle:
		return "idle"
	}
	return fmt.Sprintf("type %d", int(t))
}

// the command table. the first entry that matches wins
var commands = []struct {
	mask    uint8
	command Command
	typ     Type
}{
	{0xf0, Restore, Type1},
	{0xf0, Seek, Type1},
	{0xe0, Step, Type1},
	{0xe0, StepIn, Type1},
	{0xe0, StepOut, Type1},
	{0xe0, ReadSector, Type2},
	{0xe0, WriteSector, Type2},
	{0xf0, ReadAddress, Type3},
	{0xf0, ReadTrack, Type3},
	{0xf0, ForceInterrupt, Type4},
	{0xf0, WriteTrack, Type3},
}

func decode(v uint8) (Command, Type) {
	for _, c := range commands {
		if Command(v&c.mask) == c.command {
			return c.command, c.typ
		}
	}

	// every value matches one of the table entries so this is unreachable
	return ForceInterrupt, Type4
}

// step rates in cycles of a 1MHz clock indexed by the r bits of the
// command. the 1772 has faster rates for the last two entries
var stepRates = [2][4]uint64{
	{6000, 12000, 20000, 30000},
	{6000, 12000, 2000, 3000},
}
