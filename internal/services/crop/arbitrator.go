// Package crop decides, for every output frame, which region of the source
// frame follows the active speaker into the vertical output format.
package crop

import (
	"log"
)

// NoSpeaker means the arbitration state machine has no active speaker.
const NoSpeaker = -1

// Arbitrator is the per-video active-speaker state machine. The vote must
// differ from the current speaker for minSwitchFrames consecutive frames
// before a switch commits, hysteresis against rapid back-and-forth cropping
// when two people briefly overlap in speech. Sustained no-votes release the
// current speaker the same way.
type Arbitrator struct {
	current         int
	stability       int
	minSwitchFrames int
}

func NewArbitrator(minSwitchFrames int) *Arbitrator {
	return &Arbitrator{
		current:         NoSpeaker,
		minSwitchFrames: minSwitchFrames,
	}
}

// Decide consumes this frame's raw vote and returns the committed active
// speaker. With one tracked face arbitration is a no-op; with zero faces the
// state is NoSpeaker.
func (a *Arbitrator) Decide(vote, numFaces int) int {
	switch {
	case numFaces == 0:
		a.current = NoSpeaker
		a.stability = 0
		return NoSpeaker
	case numFaces == 1:
		a.current = 0
		a.stability = 0
		return 0
	}

	if vote == a.current {
		a.stability = 0
		return a.current
	}

	if a.current == NoSpeaker && vote != NoSpeaker {
		// Nothing to protect with hysteresis, adopt the first vote
		a.current = vote
		a.stability = 0
		return a.current
	}

	// Any differing vote counts, a no-vote included: between syllables the
	// lip-sync signal drops out, and those frames must not stall a switch
	a.stability++
	if a.stability >= a.minSwitchFrames {
		log.Printf("[CROP] Speaker switch %d -> %d after %d frames", a.current, vote, a.stability)
		a.current = vote
		a.stability = 0
	}
	return a.current
}

// Current returns the committed active speaker without voting.
func (a *Arbitrator) Current() int {
	return a.current
}

// Reset clears the state for a new video.
func (a *Arbitrator) Reset() {
	a.current = NoSpeaker
	a.stability = 0
}
