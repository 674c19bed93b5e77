package learning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// newestFirst builds records from chronological scores, newest first.
func newestFirst(scores []float64, timeTaken int) []store.AssessmentRecord {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]store.AssessmentRecord, len(scores))
	for i, s := range scores {
		out[len(scores)-1-i] = store.AssessmentRecord{
			Topic:       "algebra",
			Score:       s,
			TimeTaken:   timeTaken,
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func types(in []Intervention) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.Type
	}
	return out
}

func TestAnalyzeRecentVelocity(t *testing.T) {
	// older five at 80, newer five at 40
	a := analyzeRecent(newestFirst([]float64{80, 80, 80, 80, 80, 40, 40, 40, 40, 40}, 60))
	assert.InDelta(t, -40.0, a.LearningVelocity, 1e-9)
	assert.InDelta(t, 60.0, a.AverageScore, 1e-9)
	assert.Len(t, a.RecentScores, 10)
	assert.Equal(t, 40.0, a.RecentScores[0])

	few := analyzeRecent(newestFirst([]float64{10, 90, 10, 90, 10}, 60))
	assert.Equal(t, 0.0, few.LearningVelocity)

	window := analyzeRecent(newestFirst([]float64{0, 0, 0, 100, 100, 100, 100, 100, 100, 100, 100, 100}, 0))
	assert.Len(t, window.RecentScores, 10)
	assert.Equal(t, 12, window.TotalAssessments)
	assert.Equal(t, 0.0, window.AverageTime)
}

func TestRecommendInterventions(t *testing.T) {
	slowing := analyzeRecent(newestFirst([]float64{80, 80, 80, 80, 80, 40, 40, 40, 40, 40}, 700))
	assert.Equal(t, []string{"pace_adjustment", "time_management"}, types(recommendInterventions(slowing)))

	weak := analyzeRecent(newestFirst([]float64{20, 30}, 100))
	got := recommendInterventions(weak)
	require.Len(t, got, 1)
	assert.Equal(t, "remediation", got[0].Type)
	assert.Equal(t, "high", got[0].Priority)
	assert.Len(t, got[0].Actions, 3)

	fine := analyzeRecent(newestFirst([]float64{70, 90}, 100))
	assert.Empty(t, recommendInterventions(fine))
}

func TestInterventionsWithoutAssessments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := f.student(t, "")

	got, err := f.engine.Interventions(ctx, sid, "mathematics")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = f.engine.Interventions(ctx, "ghost", "mathematics")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPerformanceSummary(t *testing.T) {
	f := newFixture(t)
	f.provider.key = mcqKey(4)
	ctx := context.Background()
	sid := f.student(t, "")

	for _, correct := range []int{1, 2, 4, 3} {
		_, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "algebra", Answers: answers(4, correct), TimeTaken: 100})
		require.NoError(t, err)
	}
	_, err := f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "geometry", Answers: answers(4, 0), TimeTaken: 300})
	require.NoError(t, err)

	s, err := f.engine.PerformanceSummary(ctx, sid, "mathematics")
	require.NoError(t, err)
	assert.Equal(t, 5, s.TotalAssessments)
	assert.InDelta(t, 50.0, s.AverageScore, 1e-9)
	assert.Equal(t, 100.0, s.BestScore)
	assert.Equal(t, 0.0, s.WorstScore)
	assert.InDelta(t, 62.5, s.TopicPerformance["algebra"], 1e-9)
	assert.Equal(t, 0.0, s.TopicPerformance["geometry"])
	assert.InDelta(t, 140.0, s.AverageTime, 1e-9)
	// first 25, last 0
	assert.InDelta(t, -25.0, s.ImprovementTrend, 1e-9)

	_, err = f.engine.PerformanceSummary(ctx, sid, "science")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.engine.PerformanceSummary(ctx, sid, "")
	assert.ErrorIs(t, err, ErrValidation)

	hist, err := f.engine.History(ctx, sid, "mathematics", "algebra")
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, 4, hist[0].AttemptNumber)
}

func TestStrugglingStudentsAndClassAnalytics(t *testing.T) {
	f := newFixture(t)
	f.provider.key = mcqKey(4)
	ctx := context.Background()
	weak := f.student(t, "")
	strong := f.student(t, "")

	for i := 0; i < 2; i++ {
		_, err := f.engine.Grade(ctx, GradeRequest{StudentID: weak, Subject: "science", Topic: "cells", Answers: answers(4, 0), TimeTaken: 60})
		require.NoError(t, err)
		_, err = f.engine.Grade(ctx, GradeRequest{StudentID: strong, Subject: "science", Topic: "cells", Answers: answers(4, 4), TimeTaken: 60})
		require.NoError(t, err)
	}

	// grading alone keeps mastery low, so both fall under the default
	all, err := f.engine.StrugglingStudents(ctx, "science", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rows, err := f.engine.StrugglingStudents(ctx, "science", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, weak, rows[0].StudentID)
	assert.Equal(t, 2, rows[0].TotalAttempts)

	_, err = f.engine.StrugglingStudents(ctx, "", 0)
	assert.ErrorIs(t, err, ErrValidation)

	ca, err := f.engine.ClassAnalytics(ctx, "science", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, ca.TotalAssessments)
	assert.InDelta(t, 50.0, ca.AverageScore, 1e-9)
	assert.Equal(t, map[string]int{"science": 4}, ca.SubjectDistribution)
	assert.Equal(t, map[int]int{9: 4}, ca.GradeDistribution)
	assert.InDelta(t, 50.0, ca.TopicPerformance["cells"], 1e-9)

	none, err := f.engine.ClassAnalytics(ctx, "english", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, none.TotalAssessments)
}

func TestErrorKinds(t *testing.T) {
	err := newErr(KindNotFound, "op", store.ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "op")
}
