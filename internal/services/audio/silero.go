package audio

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// sileroWindowSize is the number of float32 samples per inference call.
	// Silero VAD v5 at 16 kHz requires exactly 512 samples (32 ms).
	sileroWindowSize = 512

	// sileroStateSize is the hidden state dimension per layer.
	// Silero VAD v5 uses a combined state tensor of shape [2, 1, 128].
	sileroStateSize = 128

	// sileroSampleRate is the only sample rate the model accepts.
	sileroSampleRate = 16000

	// sileroSpeechThreshold is the speech probability cutoff per window.
	sileroSpeechThreshold = 0.5
)

// ortInitOnce ensures the ONNX Runtime environment is initialized exactly
// once; the error is kept so later constructions surface the same failure.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// SileroVAD runs Silero VAD v5 inference via ONNX Runtime over a full
// waveform, one 512-sample window at a time, carrying the RNN state forward.
type SileroVAD struct {
	session *ort.AdvancedSession

	inputTensor *ort.Tensor[float32] // [1, 512]
	stateTensor *ort.Tensor[float32] // [2, 1, 128]
	srTensor    *ort.Tensor[int64]   // scalar

	outputTensor *ort.Tensor[float32] // [1, 1]
	stateNTensor *ort.Tensor[float32] // [2, 1, 128]
}

// NewSileroVAD loads the Silero model from modelPath. ortLibPath optionally
// points at the onnxruntime shared library; when empty the default lookup is
// used. Any failure here is non-fatal to the pipeline — callers fall back to
// the energy VAD.
func NewSileroVAD(modelPath, ortLibPath string) (*SileroVAD, error) {
	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("silero: read model: %w", err)
	}

	ortInitOnce.Do(func() {
		if ortLibPath != "" {
			ort.SetSharedLibraryPath(ortLibPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("silero: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, sileroWindowSize))
	if err != nil {
		return nil, fmt.Errorf("silero: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("silero: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{sileroSampleRate})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("silero: create sr tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("silero: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("silero: create stateN tensor: %w", err)
	}

	// onnxruntime_go may not guarantee zeroed tensor memory
	clearFloat32Slice(stateTensor.GetData())
	clearFloat32Slice(stateNTensor.GetData())

	session, err := ort.NewAdvancedSessionWithONNXData(
		modelData,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("silero: create session: %w", err)
	}

	return &SileroVAD{
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
	}, nil
}

func (v *SileroVAD) Name() string { return "silero" }

// DetectSegments classifies the waveform window by window and coalesces
// consecutive speech windows into segments.
func (v *SileroVAD) DetectSegments(samples []float64, sampleRate int) ([]Segment, error) {
	if sampleRate != sileroSampleRate {
		return nil, fmt.Errorf("silero: unsupported sample rate %d, need %d", sampleRate, sileroSampleRate)
	}

	// Fresh RNN state per clip
	clearFloat32Slice(v.stateTensor.GetData())

	numWindows := len(samples) / sileroWindowSize
	flags := make([]bool, numWindows)
	window := make([]float32, sileroWindowSize)

	for i := 0; i < numWindows; i++ {
		for j := 0; j < sileroWindowSize; j++ {
			window[j] = float32(samples[i*sileroWindowSize+j])
		}
		prob, err := v.infer(window)
		if err != nil {
			return nil, err
		}
		flags[i] = prob >= sileroSpeechThreshold
	}

	frameDuration := float64(sileroWindowSize) / float64(sampleRate)
	return coalesceFlags(flags, frameDuration), nil
}

// Close releases ONNX Runtime resources. Safe to call multiple times.
func (v *SileroVAD) Close() {
	if v.session != nil {
		v.session.Destroy()
		v.session = nil
	}
	for _, t := range []*ort.Tensor[float32]{v.inputTensor, v.stateTensor, v.outputTensor, v.stateNTensor} {
		if t != nil {
			t.Destroy()
		}
	}
	if v.srTensor != nil {
		v.srTensor.Destroy()
		v.srTensor = nil
	}
	v.inputTensor, v.stateTensor, v.outputTensor, v.stateNTensor = nil, nil, nil, nil
}

// infer runs a single inference on exactly 512 samples and carries the
// hidden state forward.
func (v *SileroVAD) infer(window []float32) (float32, error) {
	copy(v.inputTensor.GetData(), window)

	if err := v.session.Run(); err != nil {
		return 0, fmt.Errorf("silero: inference: %w", err)
	}

	prob := v.outputTensor.GetData()[0]
	copy(v.stateTensor.GetData(), v.stateNTensor.GetData())

	return prob, nil
}

func clearFloat32Slice(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
