package audio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SpeakerTurn is one diarization turn: a speaker label active over a time
// interval (seconds).
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// DiarizerClient talks to the diarization sidecar over HTTP. Failures are
// non-fatal by design: the caller degrades to a single implicit speaker.
type DiarizerClient struct {
	baseURL string
	client  *http.Client
}

// NewDiarizerClient returns nil when no sidecar URL is configured, which
// downstream treats the same as a diarization failure.
func NewDiarizerClient(baseURL string) *DiarizerClient {
	if baseURL == "" {
		return nil
	}
	return &DiarizerClient{
		baseURL: baseURL,
		// Diarization over a whole clip can take a while
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// Diarize submits the extracted audio file and returns the speaker turns.
func (c *DiarizerClient) Diarize(audioPath string) ([]SpeakerTurn, error) {
	payload, err := json.Marshal(map[string]string{"path": audioPath})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/diarize", c.baseURL)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to call diarizer service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarizer service returned status: %d", resp.StatusCode)
	}

	var turns []SpeakerTurn
	if err := json.NewDecoder(resp.Body).Decode(&turns); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return turns, nil
}

// diarizeOrFallback runs diarization when a client is available; on any
// failure it degrades to a single implicit speaker covering the detected
// voice-activity segments.
func diarizeOrFallback(client *DiarizerClient, audioPath string, vadSegments []Segment) ([]SpeakerTurn, int) {
	if client != nil {
		turns, err := client.Diarize(audioPath)
		if err == nil {
			speakers := map[string]bool{}
			for _, t := range turns {
				speakers[t.Speaker] = true
			}
			return turns, len(speakers)
		}
		log.Printf("[AUDIO] Diarization failed, degrading to single speaker: %v", err)
	}

	if len(vadSegments) == 0 {
		return nil, 0
	}

	turns := make([]SpeakerTurn, len(vadSegments))
	for i, seg := range vadSegments {
		turns[i] = SpeakerTurn{Start: seg.Start, End: seg.End, Speaker: "SPEAKER_00"}
	}
	return turns, 1
}
