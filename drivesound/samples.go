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
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/environment"
	"github.com/jetsetilly/gopherdrive/logger"
)

// Sentinal error patterns.
const (
	UnsupportedSample = "drivesound: unsupported sample file (%s)"
	BadSample         = "drivesound: %v"
)

const logTag = "drivesound"

// Sample is mono audio data with values in the range -1.0 to 1.0.
type Sample struct {
	Rate int
	Data []float32
}

// resample to the rate using the nearest sample.
func (s Sample) resample(rate int) []float32 {
	if s.Rate == rate || s.Rate == 0 {
		return s.Data
	}
	n := len(s.Data) * rate / s.Rate
	d := make([]float32, n)
	for i := range d {
		d[i] = s.Data[i*s.Rate/rate]
	}
	return d
}

// LoadSample reads a WAV or MP3 file. The file type is decided by the file
// extension. Only the first channel of stereo files is used.
func LoadSample(env *environment.Environment, filename string) (Sample, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Sample{}, curated.Errorf(BadSample, err)
	}
	defer f.Close()

	var s Sample

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		s, err = decodeWAV(f)
	case ".mp3":
		s, err = decodeMP3(f)
	default:
		return s, curated.Errorf(UnsupportedSample, filename)
	}
	if err != nil {
		return s, err
	}

	logger.Logf(env, logTag, "%s: %d samples at %dHz", filepath.Base(filename), len(s.Data), s.Rate)

	return s, nil
}

func decodeWAV(r io.ReadSeeker) (Sample, error) {
	var s Sample

	dec := wav.NewDecoder(r)
	if dec == nil || !dec.IsValidFile() {
		return s, curated.Errorf(BadSample, "wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return s, curated.Errorf(BadSample, fmt.Errorf("wav: %w", err))
	}

	chans := max(int(dec.NumChans), 1)
	scale := float32(int(1) << (max(dec.BitDepth, 1) - 1))

	// copy first channel only
	s.Data = make([]float32, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		s.Data = append(s.Data, float32(buf.Data[i])/scale)
	}
	s.Rate = int(dec.SampleRate)

	return s, nil
}

func decodeMP3(r io.Reader) (Sample, error) {
	var s Sample

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return s, curated.Errorf(BadSample, fmt.Errorf("mp3: %w", err))
	}

	// the decoded stream is always 16bit little endian with two channels.
	// only the left channel is used
	chunk := make([]byte, 4096)
	for err != io.EOF {
		var n int
		n, err = dec.Read(chunk)
		if err != nil && err != io.EOF {
			return s, curated.Errorf(BadSample, fmt.Errorf("mp3: %w", err))
		}
		for i := 0; i+1 < n; i += 4 {
			v := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			s.Data = append(s.Data, float32(v)/32768)
		}
	}
	s.Rate = dec.SampleRate()

	return s, nil
}

// the synthesised step is a short burst of decaying square wave
func defaultStep(rate int) Sample {
	n := rate * 3 / 1000
	s := Sample{Rate: rate, Data: make([]float32, n)}
	period := max(rate/2000, 2)
	for i := range s.Data {
		v := float32(0.8)
		if (i/(period/2))&1 == 1 {
			v = -v
		}
		s.Data[i] = v * float32(n-i) / float32(n)
	}
	return s
}

// the synthesised motor is one cycle of a low hum. the sample is looped
// while the motor is running
func defaultMotor(rate int) Sample {
	const hz = 50
	n := rate / hz
	s := Sample{Rate: rate, Data: make([]float32, n)}
	for i := range s.Data {
		s.Data[i] = 0.1 * float32(math.Sin(2*math.Pi*float64(i)/float64(n)))
	}
	return s
}

// findSample looks for a sample file with the name and either the WAV or MP3
// extension in the directory.
func findSample(dir string, name string) string {
	for _, ext := range []string{".wav", ".mp3"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
