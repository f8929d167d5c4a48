package workers

import (
	"log"
	"path/filepath"

	"smart-cropper/internal/config"
	"smart-cropper/internal/services/audio"
	"smart-cropper/internal/services/crop"
	"smart-cropper/internal/services/face"
	"smart-cropper/internal/services/video"
)

// StartWorker consumes the job queue. The voice-activity detector is built
// once and shared across jobs; every job gets its own cropper so no temporal
// state leaks between videos.
func StartWorker(cfg *config.Config) {
	vad := audio.NewVoiceActivityDetector(cfg.SileroModelPath, cfg.ORTLibraryPath, cfg.VADThresholdDB)
	diarizer := audio.NewDiarizerClient(cfg.DiarizerURL)

	go func() {
		for job := range JobQueue {
			log.Println("[WORKER] Processing job:", job.ID)
			updateStatus(job.ID, func(st *JobStatus) { st.State = StateProcessing })

			err := runJob(cfg, vad, diarizer, job)
			if err != nil {
				log.Printf("[WORKER] Job %s failed: %v", job.ID, err)
				updateStatus(job.ID, func(st *JobStatus) {
					st.State = StateFailed
					st.Error = err.Error()
				})
				continue
			}

			log.Println("[WORKER] Job done:", job.ID)
			updateStatus(job.ID, func(st *JobStatus) {
				st.State = StateDone
				st.OutputPath = job.OutputPath
			})
		}
	}()
}

func runJob(cfg *config.Config, vad audio.VoiceActivityDetector, diarizer *audio.DiarizerClient, job Job) error {
	detector := buildDetector(cfg)
	analyzer := audio.NewAnalyzer(vad, diarizer, cfg.SampleRate)
	cropper := crop.New(cfg, detector, analyzer)

	processor := video.NewProcessor(cfg, cropper)
	if job.Annotate {
		dir := filepath.Join(filepath.Dir(job.OutputPath), "annotated")
		annotator, err := video.NewAnnotator(dir, 30)
		if err != nil {
			log.Printf("[WORKER] Annotation disabled: %v", err)
		} else {
			processor.Annotator = annotator
		}
	}

	return processor.ProcessClip(job.VideoPath, job.OutputPath, func(done, total int) {
		updateStatus(job.ID, func(st *JobStatus) {
			st.FramesDone = done
			st.TotalFrames = total
		})
	})
}

// buildDetector chains the landmark sidecar with the pure-Go fallback. With
// no socket configured the fallback runs alone.
func buildDetector(cfg *config.Config) face.Detector {
	fallback := &face.PigoDetector{}
	if cfg.LandmarkSocket == "" {
		return fallback
	}
	primary := face.NewLandmarkDetector(face.NewLandmarkClient(cfg.LandmarkSocket))
	return face.NewChainDetector(primary, fallback)
}
