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

package curated

import (
	"fmt"
	"strings"
)

// curated errors keep the pattern and values that created them. the message
// is only formatted when Error() is called.
type curated struct {
	pattern string
	values  []any
}

// Errorf creates a new curated error. The pattern is the identity of the
// error and is compared by Is() and Has(). Unlike fmt.Errorf() the error
// values are not flattened into the message until Error() is called.
func Errorf(pattern string, values ...any) error {
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// partSep separates the parts of an error message in a chain of errors
const partSep = ": "

// Error implements the error interface. Adjacent duplicate parts at the head
// of the message are collapsed so that wrapping with the same prefix as the
// wrapped error does not repeat the prefix.
func (er curated) Error() string {
	s := fmt.Sprintf(er.pattern, er.values...)

	parts := strings.SplitN(s, partSep, 3)
	if len(parts) > 1 && parts[0] == parts[1] {
		parts = parts[1:]
	}
	return strings.Join(parts, partSep)
}

// Unwrap returns any error values. This means that errors.Is() and
// errors.As() will find uncurated errors that have been wrapped by a curated
// error, an os.ErrNotExist for example.
func (er curated) Unwrap() []error {
	var errs []error
	for _, v := range er.values {
		if e, ok := v.(error); ok {
			errs = append(errs, e)
		}
	}
	return errs
}

// IsAny checks if the error is a curated error.
func IsAny(err error) bool {
	_, ok := err.(curated)
	return ok
}

// Is checks if error is a curated error with a specific pattern.
func Is(err error, pattern string) bool {
	er, ok := err.(curated)
	return ok && er.pattern == pattern
}

// Has checks if the pattern occurs anywhere in the chain of curated errors.
// The chain is not followed through uncurated errors.
func Has(err error, pattern string) bool {
	er, ok := err.(curated)
	if !ok {
		return false
	}
	if er.pattern == pattern {
		return true
	}
	for _, v := range er.values {
		if e, ok := v.(error); ok && Has(e, pattern) {
			return true
		}
	}
	return false
}
