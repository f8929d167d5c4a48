package lipsync

import (
	"sort"

	"smart-cropper/internal/services/face"
)

// minActiveConfidence is the floor below which the top score does not
// qualify as an active speaker.
const minActiveConfidence = 0.2

// NoSpeaker means no face qualified as the active speaker this frame.
const NoSpeaker = -1

// Score pairs a face slot with its speaking confidence.
type Score struct {
	FaceID     int
	Confidence float64
}

// MultiPerson manages one lip-sync detector per tracked face slot. Face
// identity is positional: slot i always feeds detector i, so each detector's
// window stays consistent with one face track.
type MultiPerson struct {
	detectors []*Detector
}

// NewMultiPerson creates detectors for up to numFaces tracked faces.
func NewMultiPerson(numFaces, windowSize int, threshold, minMouthOpening float64) *MultiPerson {
	detectors := make([]*Detector, numFaces)
	for i := range detectors {
		detectors[i] = NewDetector(windowSize, threshold, minMouthOpening)
	}
	return &MultiPerson{detectors: detectors}
}

// AnalyzeFrame feeds this frame's observations into the per-slot detectors
// and returns the raw active-speaker vote (highest confidence above the
// floor, NoSpeaker otherwise) along with every slot's score, sorted by
// confidence descending.
func (m *MultiPerson) AnalyzeFrame(faces []face.FaceObservation, audioEnergy float64) (int, []Score) {
	if len(faces) == 0 {
		return NoSpeaker, nil
	}

	n := len(faces)
	if n > len(m.detectors) {
		n = len(m.detectors)
	}

	scores := make([]Score, 0, n)
	for i := 0; i < n; i++ {
		opening := MouthOpening(faces[i].Landmarks)
		result := m.detectors[i].Observe(opening, audioEnergy)
		scores = append(scores, Score{FaceID: i, Confidence: result.Confidence})
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Confidence > scores[j].Confidence })

	active := NoSpeaker
	if len(scores) > 0 && scores[0].Confidence > minActiveConfidence {
		active = scores[0].FaceID
	}
	return active, scores
}

// Reset clears every detector's history.
func (m *MultiPerson) Reset() {
	for _, d := range m.detectors {
		d.Reset()
	}
}
