package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"smart-cropper/internal/utils"
)

// ExtractAudio pulls the audio track out of a video file as 16 kHz mono PCM
// and returns it as float64 samples in [-1, 1] together with the path of the
// extracted wav (kept around for the diarization sidecar).
func ExtractAudio(videoPath string, sampleRate int) ([]float64, string, error) {
	tmpDir, err := os.MkdirTemp("", "smartcrop-audio")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	wavPath := filepath.Join(tmpDir, "audio.wav")
	rawPath := filepath.Join(tmpDir, "audio.raw")

	// Wav copy for the diarizer, raw s16le for our own decoding
	cmd := []string{
		"ffmpeg", "-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		wavPath,
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		rawPath,
	}

	output, err := utils.Exec(cmd...)
	if err != nil {
		return nil, "", fmt.Errorf("audio extraction failed: %s: %w", output, err)
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read extracted audio: %w", err)
	}

	return pcmToFloat64(raw), wavPath, nil
}

// pcmToFloat64 converts PCM s16le bytes to float64 samples normalized to
// [-1, 1]. Divides by 32768 so the full int16 range stays within bounds.
func pcmToFloat64(buf []byte) []float64 {
	n := len(buf) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
		samples[i] = float64(int16(u)) / 32768.0
	}
	return samples
}
