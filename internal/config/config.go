package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Output video settings
	OutputWidth  int
	OutputHeight int
	OutputFPS    int

	// Crop positioning
	FaceVerticalPosition float64 // 0.0=top, 1.0=bottom; 0.35 keeps the face in the upper third
	HorizontalMargin     float64 // multiplier for face width
	VerticalMargin       float64 // multiplier for face height

	// Safety bounds
	MinCropWidth int
	MaxZoom      float64

	// Smoothing
	SmoothingWindow int // frames of history for crop/geometry smoothing

	// Lip sync
	LipSyncWindow    int
	LipSyncThreshold float64
	MinMouthOpening  float64

	// Speaker arbitration
	MinSpeakerSwitchFrames int
	MaxTrackedFaces        int

	// Audio
	SampleRate     int
	VADThresholdDB float64

	// External services and models
	SileroModelPath string
	ORTLibraryPath  string
	LandmarkSocket  string
	DiarizerURL     string
	PigoCascadePath string
}

func Load() *Config {
	// Missing .env is fine, env vars may come from the environment directly
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		OutputWidth:  getEnvInt("OUTPUT_WIDTH", 1080),
		OutputHeight: getEnvInt("OUTPUT_HEIGHT", 1920),
		OutputFPS:    getEnvInt("OUTPUT_FPS", 30),

		FaceVerticalPosition: getEnvFloat("FACE_VERTICAL_POSITION", 0.35),
		HorizontalMargin:     getEnvFloat("HORIZONTAL_MARGIN", 1.5),
		VerticalMargin:       getEnvFloat("VERTICAL_MARGIN", 2.0),

		MinCropWidth: getEnvInt("MIN_CROP_WIDTH", 480),
		MaxZoom:      getEnvFloat("MAX_ZOOM", 2.0),

		SmoothingWindow: getEnvInt("SMOOTHING_WINDOW", 15),

		LipSyncWindow:    getEnvInt("LIPSYNC_WINDOW", 10),
		LipSyncThreshold: getEnvFloat("LIPSYNC_THRESHOLD", 0.3),
		MinMouthOpening:  getEnvFloat("MIN_MOUTH_OPENING", 0.15),

		MinSpeakerSwitchFrames: getEnvInt("MIN_SPEAKER_SWITCH_FRAMES", 15),
		MaxTrackedFaces:        getEnvInt("MAX_TRACKED_FACES", 4),

		SampleRate:     getEnvInt("AUDIO_SAMPLE_RATE", 16000),
		VADThresholdDB: getEnvFloat("VAD_THRESHOLD_DB", -40),

		SileroModelPath: getEnv("SILERO_MODEL_PATH", "models/silero_vad.onnx"),
		ORTLibraryPath:  getEnv("ORT_LIBRARY_PATH", ""),
		LandmarkSocket:  getEnv("LANDMARK_SOCKET", "/tmp/landmarker.sock"),
		DiarizerURL:     getEnv("DIARIZER_URL", ""),
		PigoCascadePath: getEnv("PIGO_CASCADE_PATH", "models/facefinder"),
	}
}

// TargetAspect returns the output width/height ratio (e.g. 9:16 = 0.5625).
func (c *Config) TargetAspect() float64 {
	return float64(c.OutputWidth) / float64(c.OutputHeight)
}

func getEnv(k, d string) string {
	if val, ok := os.LookupEnv(k); ok {
		return val
	}
	return d
}

func getEnvInt(k string, d int) int {
	if val, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return d
}

func getEnvFloat(k string, d float64) float64 {
	if val, ok := os.LookupEnv(k); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return d
}
