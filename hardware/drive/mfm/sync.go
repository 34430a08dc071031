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

package mfm

// SyncState is the state of the sync scanner.
type SyncState int

// List of valid SyncState values.
const (
	StateZeros SyncState = iota
	StateLeadIn
	StateSync
)

// Valid returns false if the value is not one of the listed states.
func (st SyncState) Valid() bool {
	return st >= StateZeros && st <= StateSync
}

// input classes of the sync scanner
const (
	classZero = iota
	classSync
	classOther
	numClasses
)

func classify(v uint16) int {
	switch v {
	case Zero:
		return classZero
	case SyncByte:
		return classSync
	}
	return classOther
}

// transition table. the found column indicates that the value is the mark
// byte following a run of sync bytes
var syncTable = [3][numClasses]struct {
	next  SyncState
	found bool
}{
	StateZeros: {
		classZero:  {next: StateLeadIn},
		classSync:  {next: StateZeros},
		classOther: {next: StateZeros},
	},
	StateLeadIn: {
		classZero:  {next: StateLeadIn},
		classSync:  {next: StateSync},
		classOther: {next: StateZeros},
	},
	StateSync: {
		classZero:  {next: StateZeros, found: true},
		classSync:  {next: StateSync},
		classOther: {next: StateZeros, found: true},
	},
}

// Sync scans a stream of raw values for a run of zero bytes, followed by one
// or more sync bytes, followed by a mark. The mark is the first value after
// the sync bytes.
type Sync struct {
	State SyncState
}

// Reset the scanner to look for a new run of zeros.
func (s *Sync) Reset() {
	s.State = StateZeros
}

// Feed the next raw value to the scanner. Returns the mark and true if the
// value completes a sync sequence.
func (s *Sync) Feed(v uint16) (uint16, bool) {
	t := syncTable[s.State][classify(v)]
	s.State = t.next
	return v, t.found
}

// Source is a rotating stream of raw values with an index pulse counter.
// The fdd.Drive type satisfies this interface.
type Source interface {
	Read() uint16
	IndexCount() int
}

// FindSync reads from the source until a mark is found or until the index
// counter reaches limit. The index counter is not reset by this function so
// a caller that resets the counter at the index hole and uses a limit of one
// will scan exactly one revolution.
//
// A source that is not rotating (no disk or motor off) will never reach the
// limit so the search also gives up after limit revolutions of the longest
// possible track.
func FindSync(src Source, limit int) (uint16, bool) {
	var s Sync
	for n := 0; src.IndexCount() < limit && n < limit*MaxTrackLength; n++ {
		if m, ok := s.Feed(src.Read()); ok {
			return m, true
		}
	}
	return 0, false
}
