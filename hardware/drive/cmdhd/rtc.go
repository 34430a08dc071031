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

package cmdhd

import (
	"time"

	"github.com/jetsetilly/gopherdrive/snapshot"
)

// registers of the 72421. every register is a single BCD digit
const (
	rtcSeconds = iota
	rtcSeconds10
	rtcMinutes
	rtcMinutes10
	rtcHours
	rtcHours10
	rtcDays
	rtcDays10
	rtcMonths
	rtcMonths10
	rtcYears
	rtcYears10
	rtcWeekday
	rtcCtrlD
	rtcCtrlE
	rtcCtrlF
)

// bits of control register F
const (
	rtcStop   = 0x02
	rtcHour24 = 0x04
)

// bit of the tens of hours register in 12 hour mode
const rtcPM = 0x04

// rtc is a 72421 real time clock. the time is kept as an offset from the
// host clock so the time advances even when the emulation is not running.
type rtc struct {
	name string
	now  func() time.Time

	offset time.Duration

	// the time is frozen at latch while the clock is stopped
	stop  bool
	latch time.Time

	hour24 bool
}

func newRTC(name string, now func() time.Time) *rtc {
	return &rtc{
		name: name,
		now:  now,
	}
}

func (r *rtc) current() time.Time {
	if r.stop {
		return r.latch
	}
	return r.now().Add(r.offset)
}

func (r *rtc) set(t time.Time) {
	if r.stop {
		r.latch = t
		return
	}
	r.offset = t.Sub(r.now())
}

// hour in 12 hour format
func hour12(h int) (int, bool) {
	pm := h >= 12
	h %= 12
	if h == 0 {
		h = 12
	}
	return h, pm
}

func (r *rtc) read(reg int) uint8 {
	t := r.current()

	switch reg & 0x0f {
	case rtcSeconds:
		return uint8(t.Second() % 10)
	case rtcSeconds10:
		return uint8(t.Second() / 10)
	case rtcMinutes:
		return uint8(t.Minute() % 10)
	case rtcMinutes10:
		return uint8(t.Minute() / 10)
	case rtcHours:
		if r.hour24 {
			return uint8(t.Hour() % 10)
		}
		h, _ := hour12(t.Hour())
		return uint8(h % 10)
	case rtcHours10:
		if r.hour24 {
			return uint8(t.Hour() / 10)
		}
		h, pm := hour12(t.Hour())
		v := uint8(h / 10)
		if pm {
			v |= rtcPM
		}
		return v
	case rtcDays:
		return uint8(t.Day() % 10)
	case rtcDays10:
		return uint8(t.Day() / 10)
	case rtcMonths:
		return uint8(int(t.Month()) % 10)
	case rtcMonths10:
		return uint8(int(t.Month()) / 10)
	case rtcYears:
		return uint8(t.Year() % 10)
	case rtcYears10:
		return uint8(t.Year() / 10 % 10)
	case rtcWeekday:
		return uint8(t.Weekday())
	case rtcCtrlF:
		var v uint8
		if r.hour24 {
			v |= rtcHour24
		}
		if r.stop {
			v |= rtcStop
		}
		return v
	}
	return 0
}

// replace the units or the tens of a two digit value
func units(v int, d int) int {
	return v/10*10 + min(d, 9)
}

func tens(v int, d int) int {
	return v%10 + d*10
}

func (r *rtc) write(reg int, data uint8) {
	t := r.current()
	d := int(data & 0x0f)

	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	mon := int(month)

	switch reg & 0x0f {
	case rtcSeconds:
		second = units(second, d)
	case rtcSeconds10:
		second = tens(second, d&0x07)
	case rtcMinutes:
		minute = units(minute, d)
	case rtcMinutes10:
		minute = tens(minute, d&0x07)
	case rtcHours:
		if r.hour24 {
			hour = units(hour, d)
		} else {
			h, pm := hour12(hour)
			hour = units(h, d) % 12
			if pm {
				hour += 12
			}
		}
	case rtcHours10:
		if r.hour24 {
			hour = tens(hour, d&0x03)
		} else {
			h, _ := hour12(hour)
			hour = tens(h, d&0x01) % 12
			if d&rtcPM == rtcPM {
				hour += 12
			}
		}
	case rtcDays:
		day = units(day, d)
	case rtcDays10:
		day = tens(day, d&0x03)
	case rtcMonths:
		mon = units(mon, d)
	case rtcMonths10:
		mon = tens(mon, d&0x01)
	case rtcYears:
		year = year/100*100 + units(year%100, d)
	case rtcYears10:
		year = year/100*100 + tens(year%100, d)
	case rtcWeekday:
		day += d&0x07 - int(t.Weekday())
	case rtcCtrlF:
		r.hour24 = d&rtcHour24 == rtcHour24
		if d&rtcStop == rtcStop {
			if !r.stop {
				r.latch = t
				r.stop = true
			}
		} else if r.stop {
			r.stop = false
			r.offset = r.latch.Sub(r.now())
		}
		return
	default:
		return
	}

	r.set(time.Date(year, time.Month(mon), day, hour, minute, second, t.Nanosecond(), t.Location()))
}

func (r *rtc) snapshot(s *snapshot.File) {
	m := s.Create(r.name, 0, 0)
	m.WriteBool(r.stop)
	m.WriteBool(r.hour24)
	m.WriteQW(uint64(r.latch.UnixNano()))
	m.WriteQW(uint64(r.offset))
}

func (r *rtc) restore(s *snapshot.File) error {
	m, err := s.OpenVersion(r.name, 0, 0)
	if err != nil {
		return err
	}
	stop := m.ReadBool()
	hour24 := m.ReadBool()
	latch := int64(m.ReadQW())
	offset := time.Duration(m.ReadQW())
	if err := m.Err(); err != nil {
		return err
	}
	r.stop = stop
	r.hour24 = hour24
	r.latch = time.Unix(0, latch)
	r.offset = offset
	return nil
}
