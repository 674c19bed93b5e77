// Package mastery holds the pure arithmetic behind per-topic mastery: the
// exponential-moving-average update applied after every graded attempt and
// the next-action decision derived from it. Nothing here touches storage.
package mastery

import "math"

const (
	baseWeight     = 0.3
	minWeight      = 0.1
	alpha          = 0.3
	optimalSeconds = 120

	// Mastered is the level at which a topic counts as done for path planning.
	Mastered = 85.0
	// PracticeFloor is the lowest level that still counts as "practice" rather than remediation.
	PracticeFloor = 40.0
	practiceCeil  = 60.0
	// RemediationAttempts forces remediation regardless of level.
	RemediationAttempts = 3
)

// Update blends raw (0-100) into old (0-100). Only the blended result is
// clamped; the weighted score itself may exceed 100.
func Update(old, raw float64, attempt, timeTakenSec int) float64 {
	if attempt < 1 {
		attempt = 1
	}
	attemptWeight := math.Max(minWeight, baseWeight/float64(attempt))

	timeWeight := 1.0
	if timeTakenSec > 0 {
		switch {
		case timeTakenSec < optimalSeconds:
			timeWeight = 1.2
		case timeTakenSec > optimalSeconds*2:
			timeWeight = 0.8
		}
	}

	weighted := raw * attemptWeight * timeWeight
	return Clamp((1-alpha)*old + alpha*weighted)
}

// Clamp bounds v to [0,100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type Action string

const (
	ActionRemediation Action = "remediation"
	ActionPractice    Action = "practice"
	ActionAdvance     Action = "advance"
	ActionContinue    Action = "continue"
)

type Difficulty string

const (
	Easier Difficulty = "easier"
	Same   Difficulty = "same"
	Harder Difficulty = "harder"
)

// NextAction is the pedagogical recommendation returned with every grade.
type NextAction struct {
	Action           Action     `json:"action"`
	Reason           string     `json:"reason"`
	Difficulty       Difficulty `json:"difficulty"`
	SuggestedContent string     `json:"suggested_content"`
}

// Decide picks the next action. Remediation is checked first, so a high
// level reached after several attempts is never advanced.
func Decide(level float64, attempt int) NextAction {
	switch {
	case level < PracticeFloor || attempt >= RemediationAttempts:
		return NextAction{
			Action:           ActionRemediation,
			Reason:           "Low mastery level or too many attempts",
			Difficulty:       Easier,
			SuggestedContent: "Review basic concepts and provide scaffolded practice",
		}
	case level < practiceCeil:
		return NextAction{
			Action:           ActionPractice,
			Reason:           "Need more practice at current level",
			Difficulty:       Same,
			SuggestedContent: "Continue practice with similar difficulty",
		}
	case level >= Mastered && attempt == 1:
		return NextAction{
			Action:           ActionAdvance,
			Reason:           "High mastery with first attempt",
			Difficulty:       Harder,
			SuggestedContent: "Move to next topic or increase difficulty",
		}
	default:
		return NextAction{
			Action:           ActionContinue,
			Reason:           "Steady progress, continue current path",
			Difficulty:       Same,
			SuggestedContent: "Continue with current difficulty level",
		}
	}
}
