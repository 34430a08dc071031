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

package logger

// Permission is implemented by anything that decides whether a log request
// should be honoured. The environment of an emulation is the usual
// implementation.
type Permission interface {
	AllowLogging() bool
}

type fixed bool

func (f fixed) AllowLogging() bool {
	return bool(f)
}

// Allow and Deny are for packages that have no environment to ask.
var (
	Allow Permission = fixed(true)
	Deny  Permission = fixed(false)
)
