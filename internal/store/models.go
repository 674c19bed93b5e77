package store

import "time"

type ReadingLevel string

const (
	ReadingBasic        ReadingLevel = "basic"
	ReadingIntermediate ReadingLevel = "intermediate"
	ReadingAdvanced     ReadingLevel = "advanced"
)

type LearningPace string

const (
	PaceSlow     LearningPace = "slow"
	PaceModerate LearningPace = "moderate"
	PaceFast     LearningPace = "fast"
)

// Student is the learner profile. Grade 0 and empty levels mean "not set".
type Student struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Grade        int          `json:"grade,omitempty"`
	ReadingLevel ReadingLevel `json:"reading_level,omitempty"`
	LearningPace LearningPace `json:"learning_pace,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Teacher struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Subjects     []string  `json:"subjects"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfilePatch carries optional profile edits; nil fields are left alone.
type ProfilePatch struct {
	Name         *string
	Grade        *int
	ReadingLevel *ReadingLevel
	LearningPace *LearningPace
}

// MasteryRecord is unique per (StudentID, Subject, Topic). Version is bumped
// on every update and checked to detect lost updates.
type MasteryRecord struct {
	ID            int64     `json:"-"`
	StudentID     string    `json:"student_id"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	MasteryLevel  float64   `json:"mastery_level"`
	TotalAttempts int       `json:"total_attempts"`
	LastPracticed time.Time `json:"last_practiced"`
	Version       int64     `json:"-"`
}

// AssessmentRecord is append-only.
type AssessmentRecord struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	Score         float64   `json:"score"`
	TimeTaken     int       `json:"time_taken"`
	AttemptNumber int       `json:"attempt_number"`
	Errors        []string  `json:"errors"`
	CompletedAt   time.Time `json:"completed_at"`
}

// AssessmentFilter narrows ListAssessments; empty fields do not filter.
type AssessmentFilter struct {
	StudentID string
	Subject   string
	Topic     string
	Limit     int
}

// StrugglingRow is a low-mastery record joined with its student.
type StrugglingRow struct {
	StudentID     string       `json:"student_id"`
	StudentName   string       `json:"student_name"`
	Grade         int          `json:"grade,omitempty"`
	Topic         string       `json:"topic"`
	MasteryLevel  float64      `json:"mastery_level"`
	TotalAttempts int          `json:"total_attempts"`
	LastPracticed time.Time    `json:"last_practiced"`
	LearningPace  LearningPace `json:"learning_pace,omitempty"`
	ReadingLevel  ReadingLevel `json:"reading_level,omitempty"`
}

// ScoredRow is one assessment with its student's grade, for class analytics.
type ScoredRow struct {
	Subject string
	Topic   string
	Score   float64
	Grade   int
}
