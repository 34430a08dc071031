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
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/logger"
)

// SampleRate of the recording.
const SampleRate = 44100

const bitDepth = 16

// Clock is the source of time for the recorder. Events are placed in the
// recording at the time given by the clock.
type Clock interface {
	Now() uint64
	MHz() int
}

// Recorder implements the fdd.Listener interface. More than one drive
// mechanism can share the same recorder.
type Recorder struct {
	env *environment.Environment
	clk Clock

	step  []float32
	motor []float32

	// the clock cycle at the start of the recording
	start uint64

	buffer []float32

	// number of motors running and the cycle the oldest started
	motors    int
	motorFrom uint64
}

// NewRecorder is the preferred method of initialisation for the Recorder
// type. Custom samples are loaded from the directory named in the
// sound.samples preference. The directory should contain files named step and
// motor with either the .wav or .mp3 extension. Missing or unreadable files
// are replaced by the default samples.
func NewRecorder(env *environment.Environment, clk Clock) *Recorder {
	r := &Recorder{
		env:   env,
		clk:   clk,
		start: clk.Now(),
		step:  defaultStep(SampleRate).Data,
		motor: defaultMotor(SampleRate).Data,
	}

	if env != nil && env.Prefs != nil {
		if dir := env.Prefs.SoundSamples.Get().(string); dir != "" {
			r.step = r.custom(dir, "step", r.step)
			r.motor = r.custom(dir, "motor", r.motor)
		}
	}

	return r
}

func (r *Recorder) custom(dir string, name string, def []float32) []float32 {
	fn := findSample(dir, name)
	if fn == "" {
		return def
	}
	s, err := LoadSample(r.env, fn)
	if err != nil {
		logger.Log(r.env, logTag, err)
		return def
	}
	if len(s.Data) == 0 {
		return def
	}
	return s.resample(SampleRate)
}

// position in the buffer of the clock cycle.
func (r *Recorder) position(cycle uint64) int {
	if cycle < r.start {
		return 0
	}
	return int((cycle - r.start) * SampleRate / (uint64(r.clk.MHz()) * 1000000))
}

// mix the sample data into the buffer at the position. the buffer is
// extended as required.
func (r *Recorder) mix(pos int, data []float32) {
	if n := pos + len(data); n > len(r.buffer) {
		r.buffer = append(r.buffer, make([]float32, n-len(r.buffer))...)
	}
	for i, v := range data {
		r.buffer[pos+i] += v
	}
}

// the motor sample is looped from the motorFrom cycle to the cycle.
func (r *Recorder) mixMotor(to uint64) {
	if len(r.motor) == 0 {
		return
	}
	from := r.position(r.motorFrom)
	for pos := from; pos < r.position(to); pos += len(r.motor) {
		end := min(len(r.motor), r.position(to)-pos)
		r.mix(pos, r.motor[:end])
	}
	r.motorFrom = to
}

// Step implements the fdd.Listener interface.
func (r *Recorder) Step(track int) {
	r.mix(r.position(r.clk.Now()), r.step)
}

// Motor implements the fdd.Listener interface.
func (r *Recorder) Motor(on bool) {
	now := r.clk.Now()
	if on {
		if r.motors == 0 {
			r.motorFrom = now
		}
		r.motors++
		return
	}
	if r.motors == 0 {
		return
	}
	r.mixMotor(now)
	r.motors--
}

// Len returns the length of the recording in samples.
func (r *Recorder) Len() int {
	r.flush()
	return len(r.buffer)
}

// flush motor noise up to the current time.
func (r *Recorder) flush() {
	if r.motors > 0 {
		r.mixMotor(r.clk.Now())
	}
	if n := r.position(r.clk.Now()); n > len(r.buffer) {
		r.buffer = append(r.buffer, make([]float32, n-len(r.buffer))...)
	}
}

// Reset discards the recording. The new recording starts at the current
// time of the clock.
func (r *Recorder) Reset() {
	r.buffer = r.buffer[:0]
	r.start = r.clk.Now()
	r.motorFrom = r.start
}

// Write the recording as a mono 16 bit WAV file.
func (r *Recorder) Write(w io.WriteSeeker) error {
	r.flush()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, len(r.buffer)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range r.buffer {
		v = max(-1, min(v, 1))
		buf.Data[i] = int(v * 32767)
	}

	enc := wav.NewEncoder(w, SampleRate, bitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return curated.Errorf(BadSample, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(BadSample, err)
	}

	logger.Logf(r.env, logTag, "wrote %d samples", len(r.buffer))

	return nil
}
