package audio

import (
	"errors"
	"testing"
)

type stubVAD struct {
	segments []Segment
	err      error
}

func (s *stubVAD) DetectSegments([]float64, int) ([]Segment, error) { return s.segments, s.err }
func (s *stubVAD) Name() string                                     { return "stub" }

func TestBuildTimelineSingleSpeakerFallback(t *testing.T) {
	vad := &stubVAD{segments: []Segment{{Start: 1, End: 2}, {Start: 3, End: 4}}}
	analyzer := NewAnalyzer(vad, nil, 16000)

	tl := analyzer.Build(make([]float64, 5*16000), 30, 150, "")

	if tl.Frames() != 150 {
		t.Fatalf("timeline frames: got %d, want 150", tl.Frames())
	}
	if tl.NumSpeakers != 1 {
		t.Errorf("no diarizer should degrade to one speaker, got %d", tl.NumSpeakers)
	}

	// Frames inside VAD segments carry voice activity and the implicit speaker
	if !tl.VoiceActive[45] || tl.SpeakerAt(45) != 0 {
		t.Errorf("frame 45 (1.5s): active=%v speaker=%d", tl.VoiceActive[45], tl.SpeakerAt(45))
	}
	if tl.VoiceActive[75] || tl.SpeakerAt(75) != NoSpeaker {
		t.Errorf("frame 75 (2.5s): active=%v speaker=%d", tl.VoiceActive[75], tl.SpeakerAt(75))
	}
}

func TestBuildTimelineVADFailure(t *testing.T) {
	vad := &stubVAD{err: errors.New("model exploded")}
	analyzer := NewAnalyzer(vad, nil, 16000)

	tl := analyzer.Build(make([]float64, 16000), 30, 30, "")

	if tl == nil {
		t.Fatal("VAD failure must still yield a timeline")
	}
	if tl.NumSpeakers != 0 || len(tl.Segments) != 0 {
		t.Errorf("failed VAD should read as silence, got %d speakers, %d segments",
			tl.NumSpeakers, len(tl.Segments))
	}
	for i, active := range tl.VoiceActive {
		if active {
			t.Fatalf("frame %d active in a silent timeline", i)
		}
	}
}

func TestBuildTimelineEnergyPadding(t *testing.T) {
	vad := &stubVAD{}
	analyzer := NewAnalyzer(vad, nil, 16000)

	// One second of audio against three seconds of video
	tl := analyzer.Build(make([]float64, 16000), 30, 90, "")

	if len(tl.Energy) != 90 || len(tl.VoiceActive) != 90 || len(tl.Speaker) != 90 {
		t.Fatalf("arrays must stay parallel at the video frame count: %d/%d/%d",
			len(tl.Energy), len(tl.VoiceActive), len(tl.Speaker))
	}
	if tl.EnergyAt(80) != 0 {
		t.Errorf("padded frames should read zero energy, got %v", tl.EnergyAt(80))
	}
}

func TestTimelineNilSafety(t *testing.T) {
	var tl *Timeline
	if tl.EnergyAt(0) != 0 {
		t.Error("nil timeline energy should be 0")
	}
	if tl.SpeakerAt(0) != NoSpeaker {
		t.Error("nil timeline speaker should be NoSpeaker")
	}
}

func TestSpeakerPerFrameMapsNamesInOrder(t *testing.T) {
	turns := []SpeakerTurn{
		{Start: 0, End: 1, Speaker: "SPEAKER_01"},
		{Start: 1, End: 2, Speaker: "SPEAKER_00"},
		{Start: 2, End: 3, Speaker: "SPEAKER_01"},
	}
	labels := speakerPerFrame(turns, 10, 30)

	if labels[5] != 0 || labels[15] != 1 || labels[25] != 0 {
		t.Errorf("first-appearance mapping broken: %v %v %v", labels[5], labels[15], labels[25])
	}
}
