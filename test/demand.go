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

import "testing"

// DemandEquality is the fatal form of ExpectEquality. Useful when the values
// being tested are used later in the test, for example the length of a
// sector buffer before its contents are compared.
func DemandEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) {
	t.Helper()
	if !ExpectEquality(t, v, expectedValue, tags...) {
		t.FailNow()
	}
}

// DemandInequality is the fatal form of ExpectInequality.
func DemandInequality[T comparable](t *testing.T, v T, notExpectedValue T, tags ...any) {
	t.Helper()
	if !ExpectInequality(t, v, notExpectedValue, tags...) {
		t.FailNow()
	}
}

// DemandSuccess is the fatal form of ExpectSuccess.
func DemandSuccess(t *testing.T, v any, tags ...any) {
	t.Helper()
	if !ExpectSuccess(t, v, tags...) {
		t.FailNow()
	}
}

// DemandFailure is the fatal form of ExpectFailure.
func DemandFailure(t *testing.T, v any, tags ...any) {
	t.Helper()
	if !ExpectFailure(t, v, tags...) {
		t.FailNow()
	}
}

// DemandImplements tests whether an instance is an implementation of type T.
// The implements argument is only used to name the type and is normally a
// nil value of the interface type.
func DemandImplements[T any](t *testing.T, instance any, implements T, tags ...any) {
	t.Helper()
	if _, ok := instance.(T); !ok {
		t.Fatalf("%simplementation test failed: type %T does not implement %T", id(tags...), instance, implements)
	}
}
