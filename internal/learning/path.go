package learning

import (
	"context"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-adaptive/internal/mastery"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

const (
	// DefaultTopic is the current topic for a student with no records.
	DefaultTopic   = "Introduction"
	maxNextLessons = 3
	hoursPerTopic  = 2.0
)

type LearningPath struct {
	StudentID           string     `json:"student_id"`
	Subject             string     `json:"subject"`
	CurrentTopic        string     `json:"current_topic"`
	OverallProgress     float64    `json:"overall_progress"`
	NextLessons         []string   `json:"next_lessons"`
	RecommendedPractice []string   `json:"recommended_practice"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

// GetLearningPath plans from the student's mastery records for subject.
func (e *Engine) GetLearningPath(ctx context.Context, studentID, subject string) (LearningPath, error) {
	const op = "learning path"
	if strings.TrimSpace(subject) == "" {
		return LearningPath{}, invalid(op, "subject is required")
	}
	st, err := e.requireStudent(ctx, op, studentID)
	if err != nil {
		return LearningPath{}, err
	}
	records, err := e.store.ListMastery(ctx, studentID, subject)
	if err != nil {
		return LearningPath{}, newErr(KindInternal, op, err)
	}
	p := Plan(records, st.LearningPace, e.now())
	p.StudentID = studentID
	p.Subject = subject
	return p, nil
}

// RecommendedLesson is a practice topic suggested from the learning path.
type RecommendedLesson struct {
	Topic    string `json:"topic"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

type LessonRecommendations struct {
	StudentID          string              `json:"student_id"`
	Subject            string              `json:"subject"`
	RecommendedLessons []RecommendedLesson `json:"recommended_lessons"`
	CurrentTopic       string              `json:"current_topic"`
	OverallProgress    float64             `json:"overall_progress"`
}

// RecommendedLessons turns the first practice topics of the learning path
// into lesson suggestions. The first is high priority, the rest medium.
func (e *Engine) RecommendedLessons(ctx context.Context, studentID, subject string) (LessonRecommendations, error) {
	p, err := e.GetLearningPath(ctx, studentID, subject)
	if err != nil {
		return LessonRecommendations{}, err
	}
	out := LessonRecommendations{
		StudentID:          studentID,
		Subject:            subject,
		RecommendedLessons: []RecommendedLesson{},
		CurrentTopic:       p.CurrentTopic,
		OverallProgress:    p.OverallProgress,
	}
	for i, topic := range p.RecommendedPractice {
		if i == maxNextLessons {
			break
		}
		priority := "medium"
		if i == 0 {
			priority = "high"
		}
		out.RecommendedLessons = append(out.RecommendedLessons, RecommendedLesson{
			Topic:    topic,
			Reason:   "Based on your current progress",
			Priority: priority,
		})
	}
	return out, nil
}

// Plan is the pure planning step. records must be in insertion order.
func Plan(records []store.MasteryRecord, pace store.LearningPace, now time.Time) LearningPath {
	p := LearningPath{
		CurrentTopic:        currentTopic(records),
		NextLessons:         []string{},
		RecommendedPractice: []string{},
	}
	if len(records) == 0 {
		return p
	}

	var sum float64
	remaining := 0
	for _, r := range records {
		sum += r.MasteryLevel
		if r.MasteryLevel < mastery.Mastered {
			remaining++
			if len(p.NextLessons) < maxNextLessons {
				p.NextLessons = append(p.NextLessons, r.Topic)
			}
			if r.MasteryLevel >= mastery.PracticeFloor {
				p.RecommendedPractice = append(p.RecommendedPractice, r.Topic)
			}
		}
	}
	p.OverallProgress = sum / float64(len(records))

	eta := now
	if remaining > 0 {
		hours := float64(remaining) * hoursPerTopic * paceMultiplier(pace)
		eta = now.Add(time.Duration(hours * float64(time.Hour)))
	}
	p.EstimatedCompletion = &eta
	return p
}

// currentTopic prefers the weakest started topic, then the first unstarted
// one, then the most recently practiced. Ties keep insertion order.
func currentTopic(records []store.MasteryRecord) string {
	if len(records) == 0 {
		return DefaultTopic
	}
	var weakest *store.MasteryRecord
	for i := range records {
		r := &records[i]
		if r.MasteryLevel > 0 && r.MasteryLevel < mastery.Mastered {
			if weakest == nil || r.MasteryLevel < weakest.MasteryLevel {
				weakest = r
			}
		}
	}
	if weakest != nil {
		return weakest.Topic
	}
	for _, r := range records {
		if r.MasteryLevel == 0 {
			return r.Topic
		}
	}
	latest := records[0]
	for _, r := range records[1:] {
		if r.LastPracticed.After(latest.LastPracticed) {
			latest = r
		}
	}
	return latest.Topic
}

func paceMultiplier(p store.LearningPace) float64 {
	switch p {
	case store.PaceSlow:
		return 1.5
	case store.PaceFast:
		return 0.7
	default:
		return 1.0
	}
}

// Mastery lists raw mastery records; empty subject lists all subjects.
func (e *Engine) Mastery(ctx context.Context, studentID, subject string) ([]store.MasteryRecord, error) {
	const op = "mastery"
	if _, err := e.requireStudent(ctx, op, studentID); err != nil {
		return nil, err
	}
	recs, err := e.store.ListMastery(ctx, studentID, subject)
	if err != nil {
		return nil, newErr(KindInternal, op, err)
	}
	return recs, nil
}
