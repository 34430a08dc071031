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

package test

import "strings"

// CompareWriter is an io.Writer that captures output for comparison with an
// expected string. Output from the logger and the monitor is written one line
// at a time so the captured output can also be inspected line by line.
type CompareWriter struct {
	buffer strings.Builder
}

// Write implements the io.Writer interface.
func (tw *CompareWriter) Write(p []byte) (n int, err error) {
	return tw.buffer.Write(p)
}

// Clear empties the buffer.
func (tw *CompareWriter) Clear() {
	tw.buffer.Reset()
}

// Compare buffered output with the expected string.
func (tw *CompareWriter) Compare(s string) bool {
	return s == tw.buffer.String()
}

// Lines returns the buffered output split into lines. A trailing newline
// does not create an empty final line.
func (tw *CompareWriter) Lines() []string {
	s := strings.TrimSuffix(tw.buffer.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (tw *CompareWriter) String() string {
	return tw.buffer.String()
}
