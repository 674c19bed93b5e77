package learning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/mastery"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

func TestGradeFirstAttemptHalfCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, store.PaceModerate)

	res, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "algebra", Answers: answers(2, 1)})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, res.Score, 1e-9)
	assert.Equal(t, 1, res.AttemptNumber)
	assert.Equal(t, 1.0, res.PointsEarned)
	assert.Equal(t, 2.0, res.PointsPossible)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Question 2: q2", res.Errors[0])
	assert.Len(t, res.GradedAnswers, 2)
	assert.Equal(t, 0.0, res.MasteryUpdate.OldMastery)
	assert.Equal(t, mastery.Update(0, 50, 1, 0), res.MasteryUpdate.NewMastery)
	assert.Equal(t, mastery.ActionRemediation, res.MasteryUpdate.NextAction.Action)

	m, err := f.store.GetMastery(ctx, sid, "mathematics", "algebra")
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalAttempts)
	assert.Equal(t, res.MasteryUpdate.NewMastery, m.MasteryLevel)

	hist, err := f.store.ListAssessments(ctx, store.AssessmentFilter{StudentID: sid})
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, res.AssessmentID, hist[0].ID)
	assert.Equal(t, []string{"Question 2: q2"}, hist[0].Errors)

	evs, err := f.store.Events(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "assessment.graded", evs[0].Type)
}

func TestGradeRepeatedHighScoresRemediateOnFourthAttempt(t *testing.T) {
	f := newFixture(t)
	f.provider.key = mcqKey(10)
	ctx := context.Background()
	sid := f.student(t, "")

	var res GradingResult
	level := 0.0
	for i := 1; i <= 4; i++ {
		var err error
		res, err = f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "science", Topic: "physics", Answers: answers(10, 9), TimeTaken: 90})
		require.NoError(t, err)
		assert.Equal(t, i, res.AttemptNumber)
		assert.InDelta(t, 90.0, res.Score, 1e-9)
		level = mastery.Update(level, 90, i, 90)
		assert.Equal(t, level, res.MasteryUpdate.NewMastery)
	}
	assert.Equal(t, mastery.ActionRemediation, res.MasteryUpdate.NextAction.Action)

	m, err := f.store.GetMastery(ctx, sid, "science", "physics")
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalAttempts)
	assert.Equal(t, level, m.MasteryLevel)
}

func TestGradeAttemptBeyondThreeAlwaysRemediates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, "")

	require.NoError(t, f.store.InsertMastery(ctx, store.MasteryRecord{StudentID: sid, Subject: "english", Topic: "grammar", MasteryLevel: 100, TotalAttempts: 3, LastPracticed: f.clock.Now()}))
	for i := 1; i <= 3; i++ {
		require.NoError(t, f.store.CreateAssessment(ctx, store.AssessmentRecord{
			ID: f.engine.newID(), StudentID: sid, Subject: "english", Topic: "grammar", Score: 100, AttemptNumber: i, CompletedAt: f.clock.Now(),
		}))
	}

	res, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "english", Topic: "grammar", Answers: answers(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, 4, res.AttemptNumber)
	assert.Equal(t, mastery.ActionRemediation, res.MasteryUpdate.NextAction.Action)
}

func TestGradeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, "")

	cases := []GradeRequest{
		{StudentID: sid, Subject: "mathematics", Topic: "algebra"},
		{StudentID: sid, Subject: "mathematics", Topic: "algebra", Answers: []string{"a1"}, TimeTaken: -1},
		{StudentID: sid, Topic: "algebra", Answers: []string{"a1"}},
		{StudentID: sid, Subject: "mathematics", Answers: []string{"a1"}},
	}
	for _, req := range cases {
		_, err := f.engine.Grade(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestGradeUnknownStudent(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Grade(context.Background(), GradeRequest{StudentID: "ghost", Subject: "s", Topic: "t", Answers: []string{"a"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGradeProviderFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, "")

	f.provider.err = errors.New("model offline")
	_, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "s", Topic: "t", Answers: []string{"a"}})
	assert.ErrorIs(t, err, ErrGeneration)

	f.provider.err = nil
	f.provider.key = []content.Question{{Question: "q", Type: "mcq"}}
	_, err = f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "s", Topic: "t", Answers: []string{"a"}})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, content.ErrMalformed)
}

func TestGradeFailureLeavesNoPartialState(t *testing.T) {
	f := newFixture(t, WithIDs(func() string { return "same-id" }))
	ctx := context.Background()
	sid := f.student(t, "")
	req := GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "geometry", Answers: answers(2, 2)}

	first, err := f.engine.Grade(ctx, req)
	require.NoError(t, err)

	_, err = f.engine.Grade(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGrading)
	assert.ErrorIs(t, err, store.ErrConflict)

	m, err := f.store.GetMastery(ctx, sid, "mathematics", "geometry")
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalAttempts)
	assert.Equal(t, first.MasteryUpdate.NewMastery, m.MasteryLevel)

	n, err := f.store.LastAttemptNumber(ctx, sid, "mathematics", "geometry")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGradeWithPersistedExerciseSet(t *testing.T) {
	c, err := content.DefaultCatalog()
	require.NoError(t, err)
	f := newFixture(t)
	f.engine.provider = content.NewTemplateProvider(c)
	ctx := context.Background()
	sid := f.student(t, "")

	issued, err := f.engine.GenerateExerciseSet(ctx, ExerciseRequest{StudentID: sid, Subject: "mathematics", Topic: "arithmetic", Difficulty: "easy", Count: 5})
	require.NoError(t, err)
	for _, q := range issued.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	stored, err := f.sets.Get(ctx, issued.ID)
	require.NoError(t, err)
	var ans []string
	for _, q := range stored.Questions {
		ans = append(ans, q.CorrectAnswer)
	}

	res, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "arithmetic", Answers: ans, ExerciseSetID: issued.ID})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.Score, 1e-9)
	assert.Empty(t, res.Errors)

	_, err = f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "algebra", Answers: ans, ExerciseSetID: issued.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "arithmetic", Answers: ans, ExerciseSetID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateExerciseSet(t *testing.T) {
	f := newFixture(t)
	f.provider.key = []content.Question{
		{Question: "q1", Type: "mcq", CorrectAnswer: "a", Explanation: "e", Points: 2},
		{Question: "q2", Type: "problem_solving", CorrectAnswer: "b"},
		{Question: "q3", Type: "short_answer", CorrectAnswer: "c"},
	}
	ctx := context.Background()
	sid := f.student(t, "")

	set, err := f.engine.GenerateExerciseSet(ctx, ExerciseRequest{StudentID: sid, Subject: "science", Topic: "chemistry", Difficulty: "hard", Count: 2})
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, 3.0, set.TotalPoints)
	assert.Equal(t, 60+300, set.EstimatedTime)
	assert.Empty(t, set.Questions[0].CorrectAnswer)
	assert.Empty(t, set.Questions[0].Explanation)

	stored, err := f.sets.Get(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", stored.Questions[0].CorrectAnswer)
}

func TestGenerateExerciseSetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, "")

	bad := []ExerciseRequest{
		{StudentID: sid, Subject: "science", Topic: "physics", Difficulty: "extreme", Count: 1},
		{StudentID: sid, Subject: "science", Topic: "physics", Difficulty: "easy", Count: 0},
		{StudentID: sid, Subject: "science", Topic: "physics", Difficulty: "easy", Count: 21},
		{StudentID: sid, Subject: "", Topic: "physics", Difficulty: "easy", Count: 1},
	}
	for _, req := range bad {
		_, err := f.engine.GenerateExerciseSet(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := f.engine.GenerateExerciseSet(ctx, ExerciseRequest{StudentID: "ghost", Subject: "science", Topic: "physics", Difficulty: "easy", Count: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	f.provider.key = nil
	_, err = f.engine.GenerateExerciseSet(ctx, ExerciseRequest{StudentID: sid, Subject: "science", Topic: "physics", Difficulty: "easy", Count: 1})
	assert.ErrorIs(t, err, ErrGeneration)
}
