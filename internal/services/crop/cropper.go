package crop

import (
	"fmt"
	"log"

	"smart-cropper/internal/config"
	"smart-cropper/internal/services/audio"
	"smart-cropper/internal/services/face"
	"smart-cropper/internal/services/lipsync"
)

// DebugInfo describes one frame's cropping decision, intended for debug
// overlays and diagnostics.
type DebugInfo struct {
	NumFaces        int
	ActiveSpeaker   int // NoSpeaker when none
	CropRect        Rect
	AudioEnergy     float64
	TimelineSpeaker int // diarization label for this frame, audio.NoSpeaker outside turns
}

// SmartCropper is the per-frame driver: it fuses face geometry, audio
// activity and lip-sync correlation into one crop decision per frame.
// Instances are not safe for concurrent use; batch processing across clips
// gets one independent SmartCropper per clip.
type SmartCropper struct {
	cfg      *config.Config
	detector face.Detector
	analyzer *audio.Analyzer

	timeline     *audio.Timeline
	trackers     []*face.Tracker
	lipSync      *lipsync.MultiPerson
	arbitrator   *Arbitrator
	compositor   *Compositor
	cropSmoother *face.TemporalSmoother
}

// New wires a cropper from its collaborators. analyzer may be nil when the
// caller loads a prebuilt timeline instead of running Preprocess.
func New(cfg *config.Config, detector face.Detector, analyzer *audio.Analyzer) *SmartCropper {
	trackers := make([]*face.Tracker, cfg.MaxTrackedFaces)
	for i := range trackers {
		trackers[i] = face.NewTracker(cfg.SmoothingWindow)
	}

	return &SmartCropper{
		cfg:      cfg,
		detector: detector,
		analyzer: analyzer,
		trackers: trackers,
		lipSync: lipsync.NewMultiPerson(
			cfg.MaxTrackedFaces, cfg.LipSyncWindow, cfg.LipSyncThreshold, cfg.MinMouthOpening),
		arbitrator: NewArbitrator(cfg.MinSpeakerSwitchFrames),
		compositor: &Compositor{
			TargetAspect:     cfg.TargetAspect(),
			HorizontalMargin: cfg.HorizontalMargin,
			VerticalMargin:   cfg.VerticalMargin,
			MinCropWidth:     cfg.MinCropWidth,
			MaxZoom:          cfg.MaxZoom,
			FaceVerticalPos:  cfg.FaceVerticalPosition,
		},
		cropSmoother: face.NewTemporalSmoother(cfg.SmoothingWindow, 4),
	}
}

// Preprocess runs the one-shot audio batch analysis before the frame loop:
// extract the waveform, detect voice activity, diarize, and build the
// per-frame timeline. limitSeconds > 0 truncates the analysis for testing.
// Only a failed extraction is fatal; every signal failure degrades.
func (s *SmartCropper) Preprocess(videoPath string, fps float64, totalFrames int, limitSeconds float64) (*audio.Timeline, error) {
	samples, wavPath, err := audio.ExtractAudio(videoPath, s.cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	if limitSeconds > 0 {
		if maxSamples := int(limitSeconds * float64(s.cfg.SampleRate)); len(samples) > maxSamples {
			samples = samples[:maxSamples]
		}
		if maxFrames := int(limitSeconds * fps); totalFrames > maxFrames {
			totalFrames = maxFrames
		}
	}

	s.timeline = s.analyzer.Build(samples, fps, totalFrames, wavPath)
	return s.timeline, nil
}

// LoadTimeline installs a prebuilt audio timeline, bypassing Preprocess.
func (s *SmartCropper) LoadTimeline(tl *audio.Timeline) {
	s.timeline = tl
}

// ProcessFrame decides the crop rectangle for one frame. rgb is the packed
// RGB pixel buffer of the source frame. Returns the smoothed, clamped crop
// rectangle plus diagnostics. Zero frame dimensions are the only fatal
// condition; missing faces and audio are absorbed.
func (s *SmartCropper) ProcessFrame(rgb []byte, width, height, frameIdx int) (Rect, DebugInfo, error) {
	if width <= 0 || height <= 0 {
		return Rect{}, DebugInfo{}, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}

	timestampMS := int64(float64(frameIdx) / float64(s.cfg.OutputFPS) * 1000)

	detected, err := s.detector.Detect(rgb, width, height, timestampMS)
	if err != nil {
		// Missing detection is non-fatal, trackers carry forward
		log.Printf("[CROP] Detection failed at frame %d: %v", frameIdx, err)
		detected = nil
	}
	detected = face.FilterObservations(detected)
	if len(detected) > len(s.trackers) {
		detected = detected[:len(s.trackers)]
	}

	frameFaces := s.updateTracks(detected)

	energy := s.timeline.EnergyAt(frameIdx)
	vote, _ := s.lipSync.AnalyzeFrame(frameFaces, energy)
	vote = s.gateVote(vote, frameIdx)

	active := s.arbitrator.Decide(vote, len(frameFaces))

	// Frame the active speaker; with no committed speaker yet, frame the
	// most prominent face rather than cutting away to center
	var target *face.FaceObservation
	switch {
	case active >= 0 && active < len(frameFaces):
		target = &frameFaces[active]
	case len(frameFaces) > 0:
		target = &frameFaces[face.SelectPrimary(frameFaces)]
	}

	rect := s.compositor.Compose(target, width, height)

	smoothed := s.cropSmoother.Push([]float64{
		float64(rect.X), float64(rect.Y), float64(rect.Width), float64(rect.Height),
	})
	rect = Rect{
		X:      int(smoothed[0]),
		Y:      int(smoothed[1]),
		Width:  int(smoothed[2]),
		Height: int(smoothed[3]),
	}
	rect = clampToFrame(rect, width, height)

	info := DebugInfo{
		NumFaces:        len(frameFaces),
		ActiveSpeaker:   active,
		CropRect:        rect,
		AudioEnergy:     energy,
		TimelineSpeaker: s.timeline.SpeakerAt(frameIdx),
	}
	return rect, info, nil
}

// Reset clears all temporal state: trackers, lip-sync windows, arbitration
// and crop history. Must be called when processing starts on a new source
// video, never in the middle of one continuous shot.
func (s *SmartCropper) Reset() {
	for _, t := range s.trackers {
		t.Reset()
	}
	s.lipSync.Reset()
	s.arbitrator.Reset()
	s.cropSmoother.Reset()
	s.timeline = nil
}

// updateTracks feeds this frame's detections into the per-slot trackers and
// returns the smoothed observations. When nothing was detected the first
// still-live track is carried forward, so a momentary detection dropout
// holds the last known position instead of snapping to center.
func (s *SmartCropper) updateTracks(detected []face.FaceObservation) []face.FaceObservation {
	var frameFaces []face.FaceObservation

	if len(detected) > 0 {
		for i, tracker := range s.trackers {
			if i < len(detected) {
				if sm := tracker.Update(&detected[i]); sm != nil {
					frameFaces = append(frameFaces, *sm)
				}
			} else {
				tracker.Update(nil)
			}
		}
		return frameFaces
	}

	for _, tracker := range s.trackers {
		sm := tracker.Update(nil)
		if sm != nil && frameFaces == nil {
			frameFaces = append(frameFaces, *sm)
		}
	}
	return frameFaces
}

// gateVote suppresses the lip-sync vote on frames the VAD marked silent.
// Skipped when VAD produced nothing at all, so a silent-classified clip
// still arbitrates on lip sync alone.
func (s *SmartCropper) gateVote(vote, frameIdx int) int {
	if vote == lipsync.NoSpeaker || s.timeline == nil || len(s.timeline.Segments) == 0 {
		return vote
	}
	if frameIdx < len(s.timeline.VoiceActive) && !s.timeline.VoiceActive[frameIdx] {
		return NoSpeaker
	}
	return vote
}

func clampToFrame(r Rect, frameWidth, frameHeight int) Rect {
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > frameWidth {
		r.Width = frameWidth - r.X
	}
	if r.Y+r.Height > frameHeight {
		r.Height = frameHeight - r.Y
	}
	return r
}
