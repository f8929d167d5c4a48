package face

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// LandmarkClient communicates with the face-landmarker sidecar via Unix
// socket. The sidecar runs the landmark model in video mode and must be
// called with strictly increasing timestamps per video.
type LandmarkClient struct {
	socketPath string
	timeout    time.Duration
}

// landmarkRequest is sent to the sidecar
type landmarkRequest struct {
	Height      int    `msgpack:"h"`
	Width       int    `msgpack:"w"`
	TimestampMS int64  `msgpack:"t"`
	Data        []byte `msgpack:"d"` // RGB uint8, row-major, shape (H, W, 3)
}

// landmarkFace is one detected face from the sidecar
type landmarkFace struct {
	Points []float32 `msgpack:"p"` // flat [x1,y1, x2,y2, ...], normalized 0-1
}

// landmarkResponse is received from the sidecar
type landmarkResponse struct {
	Faces       []landmarkFace `msgpack:"faces"`
	InferenceMs float32        `msgpack:"inference_ms"`
}

// NewLandmarkClient creates a client for the landmarker sidecar.
func NewLandmarkClient(socketPath string) *LandmarkClient {
	return &LandmarkClient{
		socketPath: socketPath,
		timeout:    200 * time.Millisecond,
	}
}

// Detect sends a frame to the sidecar and returns one landmark point set per
// detected face, in normalized image coordinates.
func (c *LandmarkClient) Detect(frameData []byte, width, height int, timestampMS int64) ([][]Point, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to landmarker service: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	req := landmarkRequest{
		Height:      height,
		Width:       width,
		TimestampMS: timestampMS,
		Data:        frameData,
	}

	reqData, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp landmarkResponse
	if err := msgpack.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	faces := make([][]Point, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		points := make([]Point, len(f.Points)/2)
		for i := range points {
			points[i] = Point{
				X: float64(f.Points[i*2]),
				Y: float64(f.Points[i*2+1]),
			}
		}
		faces = append(faces, points)
	}

	return faces, nil
}
