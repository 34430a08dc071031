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

package drivesound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/test"
)

type clock struct {
	now uint64
}

func (c *clock) Now() uint64 {
	return c.now
}

func (c *clock) MHz() int {
	return 2
}

const second = 2000000

func TestRecorder(t *testing.T) {
	clk := &clock{}
	r := NewRecorder(nil, clk)

	r.Step(1)
	test.ExpectEquality(t, r.Len(), len(defaultStep(SampleRate).Data))
	test.ExpectInequality(t, r.buffer[0], 0)

	clk.now = second
	test.ExpectEquality(t, r.Len(), SampleRate)

	// two motors running at once
	r.Motor(true)
	r.Motor(true)
	clk.now = second + second/4
	r.Motor(false)
	clk.now = second + second/2
	r.Motor(false)

	// more motor off events than motor on events are ignored
	r.Motor(false)

	test.ExpectEquality(t, r.Len(), SampleRate+SampleRate/2)

	var hum bool
	for _, v := range r.buffer[SampleRate:] {
		if v != 0 {
			hum = true
			break
		}
	}
	test.ExpectSuccess(t, hum)

	// nothing after the motor stopped
	clk.now = 2 * second
	test.ExpectEquality(t, r.Len(), 2*SampleRate)
	for _, v := range r.buffer[SampleRate+SampleRate/2:] {
		test.DemandEquality(t, v, 0)
	}

	r.Reset()
	test.ExpectEquality(t, r.Len(), 0)
	clk.now = 3 * second
	test.ExpectEquality(t, r.Len(), SampleRate)
}

func TestWrite(t *testing.T) {
	clk := &clock{}
	r := NewRecorder(nil, clk)
	r.Step(0)
	clk.now = second / 10
	r.Step(1)
	clk.now = second / 5

	fn := filepath.Join(t.TempDir(), "sound.wav")
	f, err := os.Create(fn)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, r.Write(f))
	test.DemandSuccess(t, f.Close())

	s, err := LoadSample(nil, fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Rate, SampleRate)
	test.ExpectEquality(t, len(s.Data), SampleRate/5)
	test.ExpectInequality(t, s.Data[0], 0)
	test.ExpectEquality(t, s.Data[len(s.Data)-1], 0)
}

func TestSamples(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSample(nil, filepath.Join(dir, "missing.wav"))
	test.ExpectFailure(t, err)

	fn := filepath.Join(dir, "step.ogg")
	test.DemandSuccess(t, os.WriteFile(fn, []byte{0}, 0644))
	_, err = LoadSample(nil, fn)
	test.ExpectSuccess(t, curated.Is(err, UnsupportedSample))
	test.ExpectEquality(t, findSample(dir, "step"), "")

	fn = filepath.Join(dir, "motor.wav")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("not a wav file"), 0644))
	test.ExpectEquality(t, findSample(dir, "motor"), fn)
	_, err = LoadSample(nil, fn)
	test.ExpectSuccess(t, curated.Is(err, BadSample))

	s := Sample{Rate: 22050, Data: []float32{1, 2, 3}}
	test.ExpectEquality(t, len(s.resample(44100)), 6)
	test.ExpectEquality(t, s.resample(44100)[5], float32(3))
}
