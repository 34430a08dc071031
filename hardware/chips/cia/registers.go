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

package cia

// List of register addresses.
const (
	PRA = iota
	PRB
	DDRA
	DDRB
	TAL
	TAH
	TBL
	TBH
	TODTen
	TODSec
	TODMin
	TODHr
	SDR
	ICR
	CRA
	CRB
)

// NumRegisters is the number of addressable registers.
const NumRegisters = 16

// RegisterNames are the names of each register in address order.
var RegisterNames = [NumRegisters]string{
	"PRA", "PRB", "DDRA", "DDRB", "TAL", "TAH", "TBL", "TBH",
	"TOD10", "TODSEC", "TODMIN", "TODHR", "SDR", "ICR", "CRA", "CRB",
}

// Interrupt control register bits.
const (
	IntTA   = 0x01
	IntTB   = 0x02
	IntTOD  = 0x04
	IntSP   = 0x08
	IntFLAG = 0x10
	IntIR   = 0x80
)

// control register bits common to CRA and CRB
const (
	crStart   = 0x01
	crPBOn    = 0x02
	crToggle  = 0x04
	crOneShot = 0x08
	crLoad    = 0x10
)

// CRA only
const (
	craCNT   = 0x20
	craSPOut = 0x40
)

// CRB only. the input mode of timer B is two bits
const (
	crbMode  = 0x60
	crbCNT   = 0x20
	crbTA    = 0x40
	crbTACNT = 0x60
	crbAlarm = 0x80
)
