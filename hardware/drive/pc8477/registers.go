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

package pc8477

import "fmt"

// Registers. Addresses are masked to three bits.
const (
	RegDOR  = 2
	RegTDR  = 3
	RegMSR  = 4
	RegData = 5
	RegDRR  = 7
	RegDKR  = 7
)

// Bits of the main status register. The low four bits show which drives are
// seeking.
const (
	MSRBusy   = 0x10
	MSRNonDMA = 0x20
	MSRDIO    = 0x40
	MSRRQM    = 0x80
)

// Digital output register bits. The motor enable for drive n is bit 4+n.
const (
	dorSelect = 0x03
	dorReset  = 0x04
	dorMotor  = 0x10
)

// Status register 0.
const (
	ST0Head       = 0x04
	ST0EC         = 0x10
	ST0SE         = 0x20
	ST0Abnormal   = 0x40
	ST0Invalid    = 0x80
	ST0Interrupts = 0xc0
)

// Status register 1.
const (
	ST1MA = 0x01
	ST1NW = 0x02
	ST1ND = 0x04
	ST1OR = 0x10
	ST1CE = 0x20
	ST1EN = 0x80
)

// Status register 2.
const (
	ST2MD = 0x01
	ST2BT = 0x02
	ST2WT = 0x10
	ST2DD = 0x20
	ST2CM = 0x40
)

// Status register 3.
const (
	ST3TK0 = 0x10
	ST3TS  = 0x08
	ST3RDY = 0x20
	ST3WP  = 0x40
)

// Command opcodes, after masking with the entry of the command table.
type Command uint8

// List of valid Command values.
const (
	Invalid           Command = 0x00
	ReadTrack         Command = 0x02
	Specify           Command = 0x03
	SenseDriveStatus  Command = 0x04
	WriteData         Command = 0x05
	ReadData          Command = 0x06
	Recalibrate       Command = 0x07
	SenseInterrupt    Command = 0x08
	ReadID            Command = 0x0a
	FormatTrack       Command = 0x0d
	Dumpreg           Command = 0x0e
	Seek              Command = 0x0f
	Version           Command = 0x10
	PerpendicularMode Command = 0x12
	Configure         Command = 0x13
	NSC               Command = 0x18
	SetTrack          Command = 0x21
)

func (c Command) String() string {
	switch c {
	case Invalid:
		return "INVALID"
	case ReadTrack:
		return "READ A TRACK"
	case Specify:
		return "SPECIFY"
	case SenseDriveStatus:
		return "SENSE DRIVE STATUS"
	case WriteData:
		return "WRITE DATA"
	case ReadData:
		return "READ DATA"
	case Recalibrate:
		return "RECALIBRATE"
	case SenseInterrupt:
		return "SENSE INTERRUPT"
	case ReadID:
		return "READ ID"
	case FormatTrack:
		return "FORMAT A TRACK"
	case Dumpreg:
		return "DUMPREG"
	case Seek:
		return "SEEK"
	case Version:
		return "VERSION"
	case PerpendicularMode:
		return "PERPENDICULAR MODE"
	case Configure:
		return "CONFIGURE"
	case NSC:
		return "NSC"
	case SetTrack:
		return "SET TRACK"
	}
	return fmt.Sprintf("%#02x", uint8(c))
}

// command flags. drive select and head select are taken from the second
// byte of the command
const (
	flagDS  = 0x01
	flagHDS = 0x02
	flagMOT = 0x04
)

type commandEntry struct {
	mask    uint8
	command Command
	params  int
	results int
	flags   uint8
}

// the command table. the first entry that matches wins and the last entry
// matches everything
var commands = []commandEntry{
	{0x1f, ReadData, 9, 7, flagDS | flagHDS | flagMOT},
	{0xbf, ReadID, 2, 7, flagDS | flagHDS | flagMOT},
	{0xbf, FormatTrack, 6, 7, flagDS | flagHDS | flagMOT},
	{0x3f, WriteData, 9, 7, flagDS | flagHDS | flagMOT},
	{0xff, SenseDriveStatus, 2, 1, flagDS | flagHDS},
	{0xff, Specify, 3, 0, 0},
	{0xff, Seek, 3, 0, flagDS | flagHDS | flagMOT},
	{0xff, Recalibrate, 2, 0, flagDS},
	{0xbf, SetTrack, 3, 1, flagDS},
	{0xff, SenseInterrupt, 1, 2, 0},
	{0xff, Version, 1, 1, 0},
	{0xff, NSC, 1, 1, 0},
	{0xff, Dumpreg, 1, 10, 0},
	{0xff, PerpendicularMode, 2, 0, 0},
	{0xff, Configure, 4, 0, 0},
	{0x00, Invalid, 1, 1, 0},
}

func decode(v uint8) commandEntry {
	for _, c := range commands {
		if Command(v&c.mask) == c.command {
			return c
		}
	}
	return commands[len(commands)-1]
}

// Phase of the command protocol.
type Phase int

// List of valid Phase values.
const (
	PhaseWait Phase = iota
	PhaseCommand
	PhaseRead
	PhaseWrite
	PhaseExec
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseWait:
		return "wait"
	case PhaseCommand:
		return "command"
	case PhaseRead:
		return "read"
	case PhaseWrite:
		return "write"
	case PhaseExec:
		return "exec"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}
