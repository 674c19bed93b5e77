package learning

import (
	"context"
	"strings"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/events"
)

const (
	MinExercises = 1
	MaxExercises = 20
)

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

type ExerciseRequest struct {
	StudentID  string
	Subject    string
	Topic      string
	Difficulty string
	Count      int
}

// GenerateExerciseSet issues a set of questions and persists its answer key.
// The returned set has answers and explanations stripped.
func (e *Engine) GenerateExerciseSet(ctx context.Context, req ExerciseRequest) (content.ExerciseSet, error) {
	const op = "generate exercise set"
	switch {
	case strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Topic) == "":
		return content.ExerciseSet{}, invalid(op, "subject and topic are required")
	case !difficulties[req.Difficulty]:
		return content.ExerciseSet{}, invalid(op, "difficulty must be one of easy, medium, hard")
	case req.Count < MinExercises || req.Count > MaxExercises:
		return content.ExerciseSet{}, invalid(op, "count must be between %d and %d", MinExercises, MaxExercises)
	}
	if _, err := e.requireStudent(ctx, op, req.StudentID); err != nil {
		return content.ExerciseSet{}, err
	}

	qs, err := e.provider.ExerciseKey(ctx, req.Subject, req.Topic, req.Difficulty)
	if err != nil {
		return content.ExerciseSet{}, newErr(KindGeneration, op, err)
	}
	if qs, err = content.Validate(qs); err != nil {
		return content.ExerciseSet{}, newErr(KindGeneration, op, err)
	}
	if len(qs) > req.Count {
		qs = qs[:req.Count]
	}

	set := content.ExerciseSet{
		ID:         e.newID(),
		StudentID:  req.StudentID,
		Subject:    req.Subject,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  qs,
		CreatedAt:  e.now(),
	}
	for _, q := range qs {
		set.TotalPoints += q.Points
		set.EstimatedTime += content.TimeBudget(q.Type)
	}

	if err := e.sets.Put(ctx, set); err != nil {
		return content.ExerciseSet{}, newErr(KindInternal, op, err)
	}
	if err := e.store.AppendEvent(ctx, events.ExerciseSetCreated, set.ID, map[string]any{
		"student_id": set.StudentID,
		"subject":    set.Subject,
		"topic":      set.Topic,
		"difficulty": set.Difficulty,
		"questions":  len(set.Questions),
	}); err != nil {
		return content.ExerciseSet{}, newErr(KindInternal, op, err)
	}
	e.log.Debug("exercise set issued", "student_id", set.StudentID, "set", set.ID, "questions", len(qs))
	return set.Public(), nil
}
