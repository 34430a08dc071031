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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failure with t.Errorf() and allow the test
// to continue. The Demand*() functions stop the test with t.Fatalf(). Use the
// Demand variants when later parts of the test depend on the value being
// correct, for example when a drive unit must be created before any register
// can be exercised.
//
// ExpectSuccess and ExpectFailure interpret bool and error values. It is
// worth describing how nil is handled because it is not obvious. The nil
// type is considered a success and consequently will cause ExpectFailure to
// fail and ExpectSuccess to succeed. This is how errors usually work (nil to
// indicate no error) so we interpret nil in this way.
//
// Tags can be added to any of the functions. The tags are printed with the
// failure message and are useful to identify which iteration of a loop
// failed.
//
// The CompareWriter type is an io.Writer implementation useful for testing
// output written by the logger or by the bus monitor.
package test
