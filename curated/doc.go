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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error. The pattern is kept with the error
// and is what distinguishes one curated error from another. For that reason
// packages export their patterns as string constants:
//
//	const UnknownImage = "diskimage: unknown image: %s"
//
//	err := curated.Errorf(UnknownImage, filename)
//	if curated.Is(err, UnknownImage) {
//		...
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain. Errors are chained by using one curated error as a value
// of another:
//
//	e := curated.Errorf(snapshot.VersionMismatch, "FDD0", 2, 0)
//	f := curated.Errorf("restore: %v", e)
//
//	curated.Has(f, snapshot.VersionMismatch) == true
//	curated.Is(f, snapshot.VersionMismatch) == false
//
// The IsAny() function answers whether the error was created by
// curated.Errorf(). Uncurated errors are those that come from outside the
// emulation, from the os package for example, and are usually the errors that
// are reported to the user without further interpretation.
//
// The Error() function implementation for curated errors ensures that the
// error chain is normalised. Specifically, that the chain does not contain
// duplicate adjacent parts. This means that a function can wrap an error with
// the same prefix as the error it received without the prefix appearing twice
// in the final message.
package curated
