package video

import (
	"fmt"
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"

	"smart-cropper/internal/config"
	"smart-cropper/internal/services/crop"
	"smart-cropper/internal/utils"
)

// ProgressFunc reports frame-loop progress: frames done out of total.
type ProgressFunc func(done, total int)

// Processor runs the full clip pipeline: audio preprocessing, the per-frame
// crop loop, and the final audio mux.
type Processor struct {
	cfg     *config.Config
	cropper *crop.SmartCropper

	// Annotator is optional; when set every annotateEvery-th frame is saved
	// with the decision overlay for debugging.
	Annotator *Annotator
}

func NewProcessor(cfg *config.Config, cropper *crop.SmartCropper) *Processor {
	return &Processor{cfg: cfg, cropper: cropper}
}

// ProcessClip converts one source video into a speaker-following vertical
// clip. progress may be nil.
func (p *Processor) ProcessClip(inputPath, outputPath string, progress ProgressFunc) error {
	reader, err := OpenReader(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	p.cropper.Reset()
	if _, err := p.cropper.Preprocess(inputPath, reader.FPS, reader.FrameCount, 0); err != nil {
		return fmt.Errorf("audio preprocessing failed: %w", err)
	}

	// Encode video-only first, mux the source audio back in afterwards
	silentPath := outputPath + ".video.mp4"
	writer, err := NewWriter(silentPath, reader.FPS, p.cfg.OutputWidth, p.cfg.OutputHeight)
	if err != nil {
		return err
	}
	defer os.Remove(silentPath)

	if err := p.frameLoop(reader, writer, progress); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize video stream: %w", err)
	}

	if err := muxAudio(silentPath, inputPath, outputPath); err != nil {
		return err
	}

	log.Printf("[VIDEO] Clip written to %s", outputPath)
	return nil
}

func (p *Processor) frameLoop(reader *Reader, writer *Writer, progress ProgressFunc) error {
	frame := gocv.NewMat()
	defer frame.Close()
	rgb := gocv.NewMat()
	defer rgb.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	outputSize := image.Pt(p.cfg.OutputWidth, p.cfg.OutputHeight)

	for idx := 0; reader.Read(&frame); idx++ {
		gocv.CvtColor(frame, &rgb, gocv.ColorBGRToRGB)
		pixels := rgb.ToBytes()

		rect, info, err := p.cropper.ProcessFrame(pixels, frame.Cols(), frame.Rows(), idx)
		if err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
		if rect.Width <= 0 || rect.Height <= 0 {
			return fmt.Errorf("frame %d: degenerate crop %+v", idx, rect)
		}

		region := frame.Region(image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height))
		gocv.Resize(region, &resized, outputSize, 0, 0, gocv.InterpolationLinear)
		region.Close()

		if err := writer.Write(resized); err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}

		if p.Annotator != nil {
			p.Annotator.MaybeSave(frame, info, idx)
		}
		if progress != nil {
			progress(idx+1, reader.FrameCount)
		}
	}
	return nil
}

// muxAudio copies the encoded video stream and the source's audio stream
// into the final container. Sources without audio still produce output.
func muxAudio(videoPath, sourcePath, outputPath string) error {
	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", videoPath,
		"-i", sourcePath,
		"-map", "0:v",
		"-map", "1:a?",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}

	output, err := utils.Exec(cmd...)
	if err != nil {
		log.Printf("[ERROR] FFmpeg mux failed. Output: %s", output)
		return fmt.Errorf("audio mux failed: %w", err)
	}
	return nil
}
