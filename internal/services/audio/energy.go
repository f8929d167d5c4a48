package audio

import (
	"math"
)

const (
	// Short-time analysis windows for the energy VAD
	energyFrameSeconds = 0.03 // 30ms frames
	energyHopSeconds   = 0.01 // 10ms hop
)

// EnergyVAD is the fallback voice-activity detector: short-time RMS energy
// in dB relative to the clip's peak, thresholded at a fixed offset.
type EnergyVAD struct {
	ThresholdDB float64 // e.g. -40
}

func (v *EnergyVAD) Name() string { return "energy" }

func (v *EnergyVAD) DetectSegments(samples []float64, sampleRate int) ([]Segment, error) {
	frameLength := int(float64(sampleRate) * energyFrameSeconds)
	hopLength := int(float64(sampleRate) * energyHopSeconds)
	if frameLength < 1 || hopLength < 1 || len(samples) < frameLength {
		return nil, nil
	}

	numFrames := 1 + (len(samples)-frameLength)/hopLength
	energy := make([]float64, numFrames)
	peak := 0.0
	for i := 0; i < numFrames; i++ {
		start := i * hopLength
		energy[i] = rms(samples[start : start+frameLength])
		peak = math.Max(peak, energy[i])
	}

	if peak == 0 {
		return nil, nil
	}

	// dB relative to peak, threshold at the fixed offset
	flags := make([]bool, numFrames)
	for i, e := range energy {
		db := amplitudeToDB(e, peak)
		flags[i] = db > v.ThresholdDB
	}

	return coalesceFlags(flags, energyHopSeconds), nil
}

// EnergyPerFrame computes the per-video-frame RMS amplitude: each frame's
// energy is taken over the sample window matching that frame's duration
// (samples_per_frame = sample_rate / fps). This is the cheap loudness signal
// the lip-sync correlator consumes, independent of the VAD.
func EnergyPerFrame(samples []float64, sampleRate int, fps float64) []float64 {
	samplesPerFrame := int(float64(sampleRate) / fps)
	if samplesPerFrame < 1 {
		return nil
	}
	numFrames := len(samples) / samplesPerFrame

	energy := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * samplesPerFrame
		energy[i] = rms(samples[start : start+samplesPerFrame])
	}
	return energy
}

func rms(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, s := range window {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(window)))
}

// amplitudeToDB converts an amplitude to dB relative to ref, floored to
// avoid log(0).
func amplitudeToDB(amp, ref float64) float64 {
	const floor = 1e-10
	if amp < floor {
		amp = floor
	}
	return 20 * math.Log10(amp/ref)
}
