package audio

import (
	"log"
	"sort"
)

// NoSpeaker marks frames outside every diarization turn.
const NoSpeaker = -1

// Timeline holds the precomputed per-video-frame audio signals. It is built
// once per video before the frame loop begins and never mutated afterward.
// The three arrays are parallel and equally sized.
type Timeline struct {
	Energy      []float64 // per-frame RMS amplitude
	VoiceActive []bool    // per-frame speech presence
	Speaker     []int     // per-frame speaker index, NoSpeaker outside turns

	Segments    []Segment // voice-activity segments (sorted, non-overlapping)
	NumSpeakers int
}

// Frames returns the number of video frames covered by the timeline.
func (t *Timeline) Frames() int {
	return len(t.Energy)
}

// EnergyAt returns the frame's energy, or 0 past the end of the audio.
func (t *Timeline) EnergyAt(frameIdx int) float64 {
	if t == nil || frameIdx < 0 || frameIdx >= len(t.Energy) {
		return 0
	}
	return t.Energy[frameIdx]
}

// SpeakerAt returns the frame's diarization label, or NoSpeaker.
func (t *Timeline) SpeakerAt(frameIdx int) int {
	if t == nil || frameIdx < 0 || frameIdx >= len(t.Speaker) {
		return NoSpeaker
	}
	return t.Speaker[frameIdx]
}

// Analyzer derives the per-frame audio timeline from a waveform: energy,
// voice activity and speaker labels.
type Analyzer struct {
	vad        VoiceActivityDetector
	diarizer   *DiarizerClient
	sampleRate int
}

func NewAnalyzer(vad VoiceActivityDetector, diarizer *DiarizerClient, sampleRate int) *Analyzer {
	return &Analyzer{
		vad:        vad,
		diarizer:   diarizer,
		sampleRate: sampleRate,
	}
}

// Build runs the whole-waveform batch analysis. audioPath points at the
// extracted wav for the diarization sidecar. All signal failures are
// absorbed: a timeline is always returned, possibly with zero speakers.
func (a *Analyzer) Build(samples []float64, fps float64, totalFrames int, audioPath string) *Timeline {
	energy := EnergyPerFrame(samples, a.sampleRate, fps)

	// Pad or trim to the video's frame count so all arrays stay parallel
	if len(energy) > totalFrames {
		energy = energy[:totalFrames]
	}
	for len(energy) < totalFrames {
		energy = append(energy, 0)
	}

	segments, err := a.vad.DetectSegments(samples, a.sampleRate)
	if err != nil {
		log.Printf("[AUDIO] VAD failed (%s), treating clip as silent: %v", a.vad.Name(), err)
		segments = nil
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })

	turns, numSpeakers := diarizeOrFallback(a.diarizer, audioPath, segments)

	tl := &Timeline{
		Energy:      energy,
		VoiceActive: speechMask(segments, fps, totalFrames),
		Speaker:     speakerPerFrame(turns, fps, totalFrames),
		Segments:    segments,
		NumSpeakers: numSpeakers,
	}

	log.Printf("[AUDIO] Timeline built: %d frames, %d speech segments, %d speakers",
		totalFrames, len(segments), numSpeakers)
	return tl
}

// speechMask expands voice-activity segments into a per-frame boolean array.
func speechMask(segments []Segment, fps float64, totalFrames int) []bool {
	mask := make([]bool, totalFrames)
	for _, seg := range segments {
		start, end := frameRange(seg.Start, seg.End, fps, totalFrames)
		for i := start; i < end; i++ {
			mask[i] = true
		}
	}
	return mask
}

// speakerPerFrame expands diarization turns into a per-frame label array.
// Speaker names are mapped to small integers in order of first appearance.
func speakerPerFrame(turns []SpeakerTurn, fps float64, totalFrames int) []int {
	labels := make([]int, totalFrames)
	for i := range labels {
		labels[i] = NoSpeaker
	}

	ids := map[string]int{}
	for _, turn := range turns {
		id, ok := ids[turn.Speaker]
		if !ok {
			id = len(ids)
			ids[turn.Speaker] = id
		}
		start, end := frameRange(turn.Start, turn.End, fps, totalFrames)
		for i := start; i < end; i++ {
			labels[i] = id
		}
	}
	return labels
}

func frameRange(startSec, endSec, fps float64, totalFrames int) (int, int) {
	if totalFrames == 0 {
		return 0, 0
	}
	start := int(startSec * fps)
	end := int(endSec * fps)
	if start < 0 {
		start = 0
	}
	if start > totalFrames-1 {
		start = totalFrames - 1
	}
	if end < 0 {
		end = 0
	}
	if end > totalFrames {
		end = totalFrames
	}
	return start, end
}
