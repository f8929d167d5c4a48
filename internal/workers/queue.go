package workers

import (
	"sync"

	"github.com/google/uuid"
)

// Job is one crop request: turn VideoPath into a speaker-following vertical
// clip at OutputPath.
type Job struct {
	ID         string
	VideoPath  string
	OutputPath string
	Annotate   bool
}

// JobState is the lifecycle of a queued job.
type JobState string

const (
	StateQueued     JobState = "queued"
	StateProcessing JobState = "processing"
	StateDone       JobState = "done"
	StateFailed     JobState = "failed"
)

// JobStatus is the externally visible progress of one job.
type JobStatus struct {
	ID          string   `json:"id"`
	State       JobState `json:"state"`
	FramesDone  int      `json:"framesDone"`
	TotalFrames int      `json:"totalFrames"`
	OutputPath  string   `json:"outputPath,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// JobQueue feeds the processing worker. Bounded so a flood of requests
// back-pressures at the API instead of piling up in memory.
var JobQueue = make(chan Job, 100)

var (
	statusMu sync.RWMutex
	statuses = map[string]*JobStatus{}
)

// Enqueue registers a new job and puts it on the queue. Returns the job ID,
// or false when the queue is full.
func Enqueue(videoPath, outputPath string, annotate bool) (string, bool) {
	job := Job{
		ID:         uuid.NewString(),
		VideoPath:  videoPath,
		OutputPath: outputPath,
		Annotate:   annotate,
	}

	statusMu.Lock()
	statuses[job.ID] = &JobStatus{ID: job.ID, State: StateQueued}
	statusMu.Unlock()

	select {
	case JobQueue <- job:
		return job.ID, true
	default:
		statusMu.Lock()
		delete(statuses, job.ID)
		statusMu.Unlock()
		return "", false
	}
}

// Status returns a copy of the job's status.
func Status(id string) (JobStatus, bool) {
	statusMu.RLock()
	defer statusMu.RUnlock()
	st, ok := statuses[id]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

func updateStatus(id string, fn func(*JobStatus)) {
	statusMu.Lock()
	defer statusMu.Unlock()
	if st, ok := statuses[id]; ok {
		fn(st)
	}
}
