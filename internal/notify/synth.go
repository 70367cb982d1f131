package notify

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Waveform of an oscillator.
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
)

// RampFloor is the gain every tone decays to.
const RampFloor = 0.01

// DefaultSampleRate of rendered tones.
const DefaultSampleRate = 44100

// Note is one oscillator of a tone, starting Offset after the tone begins.
type Note struct {
	Frequency float64
	Offset    time.Duration
}

// Tone is the fixed recipe of a built-in sound. Each note starts at gain
// volume*Gain and ramps exponentially to RampFloor over Ramp, then stops.
// Duration is how long playback of the whole tone lasts.
type Tone struct {
	ID       string
	Name     string
	Waveform Waveform
	Notes    []Note
	Gain     float64
	Ramp     time.Duration
	Duration time.Duration
}

// Built-in tones.
var (
	DefaultBeepTone = Tone{
		ID:       "default",
		Name:     "Default Beep",
		Waveform: Sine,
		Notes:    []Note{{Frequency: 800}},
		Gain:     0.3,
		Ramp:     500 * time.Millisecond,
		Duration: 500 * time.Millisecond,
	}
	ChimeTone = Tone{
		ID:       "chime",
		Name:     "Chime",
		Waveform: Sine,
		Notes: []Note{
			{Frequency: 523.25},
			{Frequency: 659.25, Offset: 100 * time.Millisecond},
			{Frequency: 783.99, Offset: 200 * time.Millisecond},
		},
		Gain:     0.2,
		Ramp:     400 * time.Millisecond,
		Duration: 700 * time.Millisecond,
	}
	BellTone = Tone{
		ID:       "bell",
		Name:     "Bell",
		Waveform: Triangle,
		Notes:    []Note{{Frequency: 1000}},
		Gain:     0.4,
		Ramp:     time.Second,
		Duration: time.Second,
	}
)

// BuiltInTones in display order.
func BuiltInTones() []Tone {
	return []Tone{DefaultBeepTone, ChimeTone, BellTone}
}

// BuiltInTone looks up a tone by ID.
func BuiltInTone(id string) (Tone, bool) {
	for _, t := range BuiltInTones() {
		if t.ID == id {
			return t, true
		}
	}
	return Tone{}, false
}

// AudioSynthesizer renders the built-in tones at a volume in [0,1].
type AudioSynthesizer interface {
	DefaultBeep(volume float64) []float64
	Chime(volume float64) []float64
	Bell(volume float64) []float64
}

// PCMSynthesizer renders tones as mono float samples in [-1,1].
type PCMSynthesizer struct {
	SampleRate int
}

func NewPCMSynthesizer() *PCMSynthesizer {
	return &PCMSynthesizer{SampleRate: DefaultSampleRate}
}

func (s *PCMSynthesizer) DefaultBeep(volume float64) []float64 { return s.Render(DefaultBeepTone, volume) }
func (s *PCMSynthesizer) Chime(volume float64) []float64       { return s.Render(ChimeTone, volume) }
func (s *PCMSynthesizer) Bell(volume float64) []float64        { return s.Render(BellTone, volume) }

// Render produces Duration worth of samples for tone.
func (s *PCMSynthesizer) Render(tone Tone, volume float64) []float64 {
	rate := float64(s.SampleRate)
	n := int(tone.Duration.Seconds() * rate)
	out := make([]float64, n)

	peak := ClampVolume(volume) * tone.Gain
	if peak <= 0 {
		return out
	}

	ramp := tone.Ramp.Seconds()
	for _, note := range tone.Notes {
		start := note.Offset.Seconds()
		for i := int(start * rate); i < n; i++ {
			t := float64(i)/rate - start
			if t < 0 {
				continue
			}
			if t >= ramp {
				break
			}
			gain := ToneGain(peak, t, ramp)
			out[i] += gain * oscillate(tone.Waveform, 2*math.Pi*note.Frequency*t)
		}
	}

	for i, v := range out {
		out[i] = math.Max(-1, math.Min(1, v))
	}
	return out
}

// ToneGain is the exponential ramp from peak at t=0 to RampFloor at t=ramp.
func ToneGain(peak, t, ramp float64) float64 {
	if ramp <= 0 {
		return peak
	}
	return peak * math.Pow(RampFloor/peak, t/ramp)
}

func oscillate(w Waveform, phase float64) float64 {
	if w == Triangle {
		return 2 / math.Pi * math.Asin(math.Sin(phase))
	}
	return math.Sin(phase)
}

// ClampVolume limits v to [0,1]; NaN becomes 0.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EncodeWAV writes samples as a 16-bit mono PCM WAV file.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	const (
		bitsPerSample = 16
		channels      = 1
	)
	dataSize := uint32(len(samples) * bitsPerSample / 8)
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)

	buf := bytes.NewBuffer(make([]byte, 0, 44+int(dataSize)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	for _, v := range samples {
		_ = binary.Write(buf, binary.LittleEndian, int16(math.Round(v*math.MaxInt16)))
	}
	return buf.Bytes()
}
