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

package via

// the number of cycles between underflows of timer 1 in free running mode.
// the counter spends one cycle at 0xffff and one cycle being reloaded.
func (v *VIA) t1Period() uint64 {
	return uint64(v.t1Latch()) + 2
}

func (v *VIA) t1Latch() uint16 {
	return uint16(v.regs[T1LH])<<8 | uint16(v.regs[T1LL])
}

func (v *VIA) t2Latch() uint16 {
	return uint16(v.regs[T2CH])<<8 | uint16(v.regs[T2CL])
}

// the latch has changed. a pending alarm beyond the current period must move
// with the new reload value.
func (v *VIA) relatchT1() {
	if v.t1Alarm.Pending() {
		v.t1Alarm.Set(v.t1Next())
	}
}

// bring the timer 1 underflow cycle up to date. the counter is reloaded from
// the latch after every underflow in both timer modes.
func (v *VIA) catchUpT1() {
	now := v.clk.Now()
	if now <= v.t1Under {
		return
	}
	p := v.t1Period()
	k := (now-v.t1Under-1)/p + 1
	v.t1Under += k * p
}

// the cycle of the next timer 1 underflow that has not yet happened.
func (v *VIA) t1Next() uint64 {
	v.catchUpT1()
	if v.t1Under > v.clk.Now() {
		return v.t1Under
	}
	return v.t1Under + v.t1Period()
}

// T1 returns the current value of the timer 1 counter.
func (v *VIA) T1() uint16 {
	v.catchUpT1()
	return uint16(v.t1Under - v.clk.Now() - 1)
}

// T2 returns the current value of the timer 2 counter.
func (v *VIA) T2() uint16 {
	if v.regs[ACR]&acrPulseT2 == acrPulseT2 {
		return v.t2Count
	}
	// timer 2 is not reloaded after an underflow so the counter wraps
	return uint16(v.t2Under - v.clk.Now() - 1)
}

func (v *VIA) startT1() {
	v.t1Under = v.clk.Now() + v.t1Period()
	v.t1Armed = true
	v.ifr &^= IntT1
	v.update()
	if v.regs[ACR]&acrPB7 == acrPB7 {
		v.pb7 = false
	}
	v.t1Alarm.Set(v.t1Under)
}

func (v *VIA) startT2() {
	v.t2Count = v.t2Latch()
	v.t2Under = v.clk.Now() + uint64(v.t2Count) + 2
	v.t2Armed = true
	v.ifr &^= IntT2
	v.update()
	if v.regs[ACR]&acrPulseT2 == acrPulseT2 {
		v.t2Alarm.Unset()
	} else {
		v.t2Alarm.Set(v.t2Under)
	}
}

// t1Underflow is called by the clock on the underflow cycle.
func (v *VIA) t1Underflow() {
	v.catchUpT1()
	freeRun := v.regs[ACR]&acrFreeRun == acrFreeRun

	if freeRun {
		v.pb7 = !v.pb7
		v.ifr |= IntT1
		v.update()
		v.t1Alarm.Set(v.t1Under + v.t1Period())
		return
	}

	if v.t1Armed {
		v.t1Armed = false
		v.pb7 = true
		v.ifr |= IntT1
		v.update()
	}
}

// t2Underflow is called by the clock on the underflow cycle.
func (v *VIA) t2Underflow() {
	if v.t2Armed && v.regs[ACR]&acrPulseT2 == 0 {
		v.t2Armed = false
		v.ifr |= IntT2
		v.update()
	}
}

func (v *VIA) writeACR(data uint8) {
	v.catchUpT1()
	old := v.regs[ACR]
	v.regs[ACR] = data

	// timer 1 raises an interrupt on every underflow in free running mode
	if data&acrFreeRun == acrFreeRun {
		if !v.t1Alarm.Pending() {
			v.t1Alarm.Set(v.t1Next())
		}
	} else if !v.t1Armed {
		v.t1Alarm.Unset()
	}

	switch {
	case old&acrPulseT2 == 0 && data&acrPulseT2 == acrPulseT2:
		// counter freezes at its current value until the next pulse
		v.t2Count = uint16(v.t2Under - v.clk.Now() - 1)
		v.t2Alarm.Unset()
	case old&acrPulseT2 == acrPulseT2 && data&acrPulseT2 == 0:
		v.t2Under = v.clk.Now() + uint64(v.t2Count) + 1
		if v.t2Armed {
			v.t2Alarm.Set(v.t2Under)
		}
	}

	if old&(acrShiftOut|acrShiftMode) != data&(acrShiftOut|acrShiftMode) {
		v.shiftState = 0
	}
}
