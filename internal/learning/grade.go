package learning

import (
	"context"
	"errors"
	"strings"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/events"
	"github.com/mind-engage/mindengage-adaptive/internal/grading"
	"github.com/mind-engage/mindengage-adaptive/internal/mastery"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// regenerateDifficulty is used when a submission carries no exercise-set id.
const regenerateDifficulty = "medium"

type GradeRequest struct {
	StudentID string
	Subject   string
	Topic     string
	Answers   []string
	TimeTaken int // seconds
	// ExerciseSetID selects a persisted answer key. When empty the key is
	// regenerated for (Subject, Topic) at medium difficulty.
	ExerciseSetID string
}

type MasteryUpdate struct {
	Topic      string             `json:"topic"`
	OldMastery float64            `json:"old_mastery"`
	NewMastery float64            `json:"new_mastery"`
	NextAction mastery.NextAction `json:"next_action"`
}

type GradingResult struct {
	AssessmentID   string           `json:"assessment_id"`
	Score          float64          `json:"score"`
	PointsEarned   float64          `json:"total_points"`
	PointsPossible float64          `json:"possible_points"`
	AttemptNumber  int              `json:"attempt_number"`
	GradedAnswers  []grading.Detail `json:"graded_answers"`
	Errors         []string         `json:"errors"`
	MasteryUpdate  MasteryUpdate    `json:"mastery_update"`
	TimeTaken      int              `json:"time_taken"`
}

// Grade scores a submission, appends an assessment and updates mastery.
// The assessment, the mastery change and the event are committed together.
func (e *Engine) Grade(ctx context.Context, req GradeRequest) (GradingResult, error) {
	const op = "grade"
	if err := validateGrade(op, req); err != nil {
		return GradingResult{}, err
	}
	if _, err := e.requireStudent(ctx, op, req.StudentID); err != nil {
		return GradingResult{}, err
	}
	key, err := e.answerKey(ctx, op, req)
	if err != nil {
		return GradingResult{}, err
	}
	sheet := grading.Score(e.grader, key, req.Answers)

	var res GradingResult
	err = e.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		res, err = e.gradeTx(ctx, tx, req.StudentID, req.Subject, req.Topic, sheet, req.TimeTaken)
		return err
	})
	if err != nil {
		e.log.Error("grade failed", "student_id", req.StudentID, "subject", req.Subject, "topic", req.Topic, "error", err)
		return GradingResult{}, newErr(KindGrading, op, err)
	}
	e.logMasteryUpdate(req.StudentID, req.Subject, res)
	return res, nil
}

// logMasteryUpdate runs only once the grading transaction has committed.
func (e *Engine) logMasteryUpdate(studentID, subject string, r GradingResult) {
	e.log.Info("mastery updated",
		"student_id", studentID, "subject", subject, "topic", r.MasteryUpdate.Topic,
		"attempt", r.AttemptNumber, "score", r.Score, "old", r.MasteryUpdate.OldMastery,
		"new", r.MasteryUpdate.NewMastery, "action", r.MasteryUpdate.NextAction.Action)
}

func validateGrade(op string, req GradeRequest) error {
	switch {
	case strings.TrimSpace(req.StudentID) == "":
		return invalid(op, "student id is required")
	case strings.TrimSpace(req.Subject) == "":
		return invalid(op, "subject is required")
	case strings.TrimSpace(req.Topic) == "":
		return invalid(op, "topic is required")
	case len(req.Answers) == 0:
		return invalid(op, "answers must not be empty")
	case req.TimeTaken < 0:
		return invalid(op, "time taken must be >= 0")
	}
	return nil
}

func (e *Engine) answerKey(ctx context.Context, op string, req GradeRequest) ([]grading.Q, error) {
	var qs []content.Question
	if req.ExerciseSetID != "" {
		set, err := e.sets.Get(ctx, req.ExerciseSetID)
		if errors.Is(err, content.ErrSetNotFound) {
			return nil, newErr(KindNotFound, op, err)
		}
		if err != nil {
			return nil, newErr(KindInternal, op, err)
		}
		if set.StudentID != req.StudentID || set.Subject != req.Subject || set.Topic != req.Topic {
			return nil, invalid(op, "exercise set %s does not match this submission", req.ExerciseSetID)
		}
		qs = set.Questions
	} else {
		var err error
		qs, err = e.provider.ExerciseKey(ctx, req.Subject, req.Topic, regenerateDifficulty)
		if err != nil {
			return nil, newErr(KindGeneration, op, err)
		}
	}
	qs, err := content.Validate(qs)
	if err != nil {
		return nil, newErr(KindGeneration, op, err)
	}
	return toGradingKey(qs), nil
}

func toGradingKey(qs []content.Question) []grading.Q {
	out := make([]grading.Q, len(qs))
	for i, q := range qs {
		out[i] = grading.Q{
			Prompt:      q.Question,
			Type:        q.Type,
			Points:      q.Points,
			Answer:      q.CorrectAnswer,
			Explanation: q.Explanation,
		}
	}
	return out
}

// gradeTx numbers the attempt, appends the assessment and applies the
// mastery update. A concurrent writer surfaces as store.ErrConflict.
func (e *Engine) gradeTx(ctx context.Context, tx *store.Store, studentID, subject, topic string, sheet grading.Sheet, timeTaken int) (GradingResult, error) {
	now := e.now()
	score := sheet.Percentage()

	last, err := tx.LastAttemptNumber(ctx, studentID, subject, topic)
	if err != nil {
		return GradingResult{}, err
	}
	attempt := last + 1

	rec := store.AssessmentRecord{
		ID:            e.newID(),
		StudentID:     studentID,
		Subject:       subject,
		Topic:         topic,
		Score:         score,
		TimeTaken:     timeTaken,
		AttemptNumber: attempt,
		Errors:        sheet.Errors,
		CompletedAt:   now,
	}
	if err := tx.CreateAssessment(ctx, rec); err != nil {
		return GradingResult{}, err
	}

	m, err := tx.GetMastery(ctx, studentID, subject, topic)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return GradingResult{}, err
	}
	old := m.MasteryLevel
	level := mastery.Update(old, score, attempt, timeTaken)
	next := mastery.Decide(level, attempt)

	if found {
		m.MasteryLevel = level
		m.TotalAttempts++
		m.LastPracticed = now
		err = tx.UpdateMastery(ctx, m)
	} else {
		err = tx.InsertMastery(ctx, store.MasteryRecord{
			StudentID:     studentID,
			Subject:       subject,
			Topic:         topic,
			MasteryLevel:  level,
			TotalAttempts: 1,
			LastPracticed: now,
		})
	}
	if err != nil {
		return GradingResult{}, err
	}

	if err := tx.AppendEvent(ctx, events.AssessmentGraded, rec.ID, map[string]any{
		"student_id":     studentID,
		"subject":        subject,
		"topic":          topic,
		"score":          score,
		"attempt_number": attempt,
		"old_mastery":    old,
		"new_mastery":    level,
		"action":         next.Action,
	}); err != nil {
		return GradingResult{}, err
	}

	return GradingResult{
		AssessmentID:   rec.ID,
		Score:          score,
		PointsEarned:   sheet.Earned,
		PointsPossible: sheet.Possible,
		AttemptNumber:  attempt,
		GradedAnswers:  sheet.Details,
		Errors:         sheet.Errors,
		MasteryUpdate: MasteryUpdate{
			Topic:      topic,
			OldMastery: old,
			NewMastery: level,
			NextAction: next,
		},
		TimeTaken: timeTaken,
	}, nil
}
