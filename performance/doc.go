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

// Package performance measures how fast the drive emulation runs on the
// host.
//
// Check() runs a system for a period of wall clock time and reports the
// effective clock speed of the emulation. The run can be capped to the speed
// of the real hardware with the limiter sub-package, and it can be profiled.
//
// The profile types are named by ParseProfileString() and collected by
// RunProfiler(), which wraps any function and writes one file per profile
// type.
//
// CalcSpeed() turns a count of cycles and a duration into MHz, and into an
// accuracy relative to the nominal clock of the drive.
package performance
