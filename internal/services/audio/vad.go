package audio

import (
	"log"
)

// Segment is a time interval (seconds) during which speech is present.
type Segment struct {
	Start float64
	End   float64
}

// VoiceActivityDetector classifies which spans of a waveform contain speech.
// The variant is selected once at construction based on availability, not
// re-checked per call.
type VoiceActivityDetector interface {
	// DetectSegments returns non-overlapping, sorted speech segments.
	DetectSegments(samples []float64, sampleRate int) ([]Segment, error)
	Name() string
}

// NewVoiceActivityDetector returns the Silero ONNX detector when the model
// can be loaded, otherwise the energy-threshold fallback.
func NewVoiceActivityDetector(modelPath, ortLibPath string, thresholdDB float64) VoiceActivityDetector {
	silero, err := NewSileroVAD(modelPath, ortLibPath)
	if err != nil {
		log.Printf("[AUDIO] Silero VAD unavailable, using energy VAD: %v", err)
		return &EnergyVAD{ThresholdDB: thresholdDB}
	}
	log.Printf("[AUDIO] Using Silero VAD (%s)", modelPath)
	return silero
}

// coalesceFlags turns a per-subframe speech flag sequence into contiguous
// segments. frameDuration is the duration of one subframe in seconds.
func coalesceFlags(flags []bool, frameDuration float64) []Segment {
	var segments []Segment
	speaking := false
	var start float64

	for i, speech := range flags {
		timestamp := float64(i) * frameDuration
		if speech && !speaking {
			start = timestamp
			speaking = true
		} else if !speech && speaking {
			segments = append(segments, Segment{Start: start, End: timestamp})
			speaking = false
		}
	}

	if speaking {
		segments = append(segments, Segment{Start: start, End: float64(len(flags)) * frameDuration})
	}

	return segments
}
