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
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
)

// tokens represents tokenised input. This can be used to walk through the
// input string (using get()) for eas(ier) parsing.
type tokens struct {
	input  string
	tokens []string
	curr   int
}

func (tk *tokens) String() string {
	return tk.input
}

// isEnd returns true if we're at the end of the token list.
func (tk *tokens) isEnd() bool {
	return tk.curr >= len(tk.tokens)
}

// remaining returns the count of remaining tokens in the token list.
func (tk *tokens) remaining() int {
	return len(tk.tokens) - tk.curr
}

// get returns the next token in the list and a success boolean. If the end
// of the token list has been reached the boolean is false.
func (tk *tokens) get() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	tk.curr++
	return tk.tokens[tk.curr-1], true
}

// peek returns the next token in the list without advancing the list.
func (tk *tokens) peek() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	return tk.tokens[tk.curr], true
}

// number returns the next token as an unsigned value that fits into the
// number of bits.
func (tk *tokens) number(name string, bits int) (uint64, error) {
	s, ok := tk.get()
	if !ok {
		return 0, curated.Errorf(MissingArgument, name)
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, curated.Errorf(BadArgument, name, s)
	}
	return v, nil
}

// tokenise creates and returns a new tokens instance.
func tokenise(input string) *tokens {
	tk := &tokens{
		input:  strings.TrimSpace(input),
		tokens: strings.Fields(input),
	}

	// normalise hex notation
	for i := range tk.tokens {
		if tk.tokens[i][0] == '$' {
			tk.tokens[i] = "0x" + tk.tokens[i][1:]
		}
	}

	return tk
}
