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

package cia

import "github.com/jetsetilly/gopherdrive/hardware/clocks"

// timer is one of the two interval timers. the control register for the timer
// is kept in the register array of the CIA.
type timer struct {
	latch uint16

	// counter value when the timer is not counting clock cycles
	count uint16

	// when phi2 is true the counter is counting clock cycles and is
	// calculated from the cycle of the next underflow
	phi2  bool
	under uint64

	// state of the toggle output
	toggle bool

	// the cycle after the most recent underflow. zero if the timer has not
	// underflowed since it was started
	pulse uint64

	icr   uint8
	alarm *clocks.Alarm
}

func (t *timer) reset() {
	t.latch = 0xffff
	t.count = 0xffff
	t.phi2 = false
	t.toggle = false
	t.pulse = 0
	t.alarm.Unset()
}

// number of cycles between underflows. the counter shows zero for a cycle
// before reloading.
func (t *timer) period() uint64 {
	return uint64(t.latch) + 1
}

// output of the timer on PB6 or PB7. in pulse mode the output is high for
// the cycle of the underflow only.
func (t *timer) output(cr uint8, now uint64) bool {
	if cr&crToggle == crToggle {
		return t.toggle
	}
	return t.pulse == now+1
}

// value of the counter at cycle now. now is never beyond the next underflow
// when the timer is counting clock cycles.
func (t *timer) value(now uint64) uint16 {
	if !t.phi2 {
		return t.count
	}
	t.catchUp(now)
	return uint16(t.under - now - 1)
}

func (t *timer) catchUp(now uint64) {
	if now < t.under {
		return
	}
	p := t.period()
	k := (now-t.under)/p + 1
	t.under += k * p
}

// stop counting clock cycles and keep the current value in the counter.
func (t *timer) freeze(now uint64) {
	if !t.phi2 {
		return
	}
	t.count = t.value(now)
	t.phi2 = false
	t.alarm.Unset()
}

// start counting clock cycles from the current counter value.
func (t *timer) run(now uint64) {
	t.phi2 = true
	t.under = now + uint64(t.count) + 1
	t.alarm.Set(t.under)
}

// countsPhi2 returns true if the control register value selects clock cycles
// as the input of the timer.
func countsPhi2(reg int, cr uint8) bool {
	if cr&crStart == 0 {
		return false
	}
	if reg == CRA {
		return cr&craCNT == 0
	}
	return cr&crbMode == 0
}

// TA returns the current value of timer A.
func (c *CIA) TA() uint16 {
	return c.ta.value(c.clk.Now())
}

// TB returns the current value of timer B.
func (c *CIA) TB() uint16 {
	return c.tb.value(c.clk.Now())
}

func (c *CIA) writeLatch(t *timer, latch uint16, cr uint8, high bool) {
	if t.phi2 {
		t.catchUp(c.clk.Now())
	}
	t.latch = latch
	if !high {
		return
	}

	// writing the high byte of a stopped timer loads the counter. a timer in
	// one shot mode is also started
	if cr&crStart == 0 {
		t.count = latch
		if cr&crOneShot == crOneShot {
			reg := CRA
			if t == &c.tb {
				reg = CRB
			}
			c.writeCR(t, reg, cr|crStart)
		}
	}
}

func (c *CIA) writeCR(t *timer, reg int, data uint8) {
	now := c.clk.Now()
	t.freeze(now)

	old := c.regs[reg]
	if data&crLoad == crLoad {
		t.count = t.latch
	}
	c.regs[reg] = data &^ crLoad

	if old&crStart == 0 && data&crStart == crStart {
		t.toggle = true
		t.pulse = 0
	}

	if countsPhi2(reg, data) {
		t.run(now)
	}
}

// phi2Underflow is called by the clock on the underflow cycle of a timer
// counting clock cycles.
func (c *CIA) phi2Underflow(t *timer) {
	now := c.clk.Now()
	t.catchUp(now)
	c.underflow(t)
	if t.phi2 {
		t.alarm.Set(t.under)
	}
}

// count a CNT edge or a timer A underflow on a timer not counting clock
// cycles.
func (c *CIA) count(t *timer) {
	if t.count > 0 {
		t.count--
		return
	}
	t.count = t.latch
	c.underflow(t)
}

func (c *CIA) underflow(t *timer) {
	reg := CRA
	if t == &c.tb {
		reg = CRB
	}

	t.toggle = !t.toggle
	t.pulse = c.clk.Now() + 1
	c.interrupt(t.icr)

	if c.regs[reg]&crOneShot == crOneShot {
		c.regs[reg] &^= crStart
		if t.phi2 {
			t.phi2 = false
			t.count = t.latch
			t.alarm.Unset()
		}
	}

	if t != &c.ta {
		return
	}

	// timer A drives the serial port in output mode. a bit is shifted out on
	// every other underflow
	if c.regs[CRA]&craSPOut == craSPOut && c.srBits > 0 {
		c.srBits--
		if c.srBits == 0 {
			c.interrupt(IntSP)
		}
	}

	// timer B counting timer A underflows
	crb := c.regs[CRB]
	if crb&crStart == crStart {
		switch crb & crbMode {
		case crbTA:
			c.count(&c.tb)
		case crbTACNT:
			if c.cnt {
				c.count(&c.tb)
			}
		}
	}
}
