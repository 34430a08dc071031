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

package via

// List of register addresses.
const (
	PRB = iota
	PRA
	DDRB
	DDRA
	T1CL
	T1CH
	T1LL
	T1LH
	T2CL
	T2CH
	SR
	ACR
	PCR
	IFR
	IER
	PRANHS
)

// NumRegisters is the number of addressable registers.
const NumRegisters = 16

// RegisterNames are the names of each register in address order.
var RegisterNames = [NumRegisters]string{
	"PRB", "PRA", "DDRB", "DDRA", "T1CL", "T1CH", "T1LL", "T1LH",
	"T2CL", "T2CH", "SR", "ACR", "PCR", "IFR", "IER", "PRA_NHS",
}

// Interrupt flag and enable bits.
const (
	IntCA2 = 0x01
	IntCA1 = 0x02
	IntSR  = 0x04
	IntCB2 = 0x08
	IntCB1 = 0x10
	IntT2  = 0x20
	IntT1  = 0x40
	IntIRQ = 0x80
)

// auxiliary control register bits
const (
	acrPB7       = 0x80
	acrFreeRun   = 0x40
	acrPulseT2   = 0x20
	acrShiftOut  = 0x10
	acrShiftMode = 0x0c
)

// Line is one of the four control lines.
type Line int

// List of valid Line values.
const (
	CA1 Line = iota
	CA2
	CB1
	CB2
)

func (l Line) String() string {
	switch l {
	case CA1:
		return "CA1"
	case CA2:
		return "CA2"
	case CB1:
		return "CB1"
	case CB2:
		return "CB2"
	}
	return "unknown line"
}

// peripheral control register modes for CA2. the CB2 modes are the same bits
// shifted left by four.
func ca2IndependentInput(pcr uint8) bool {
	return pcr&0x0a == 0x02
}

func ca2Handshake(pcr uint8) bool {
	return pcr&0x0c == 0x08
}

func ca2Pulse(pcr uint8) bool {
	return pcr&0x0e == 0x0a
}

func ca2Toggle(pcr uint8) bool {
	return pcr&0x0e == 0x08
}
