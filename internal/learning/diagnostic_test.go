package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		rl    store.ReadingLevel
		lp    store.LearningPace
	}{
		{90, store.ReadingAdvanced, store.PaceFast},
		{85, store.ReadingAdvanced, store.PaceFast},
		{82, store.ReadingAdvanced, store.PaceModerate},
		{65, store.ReadingIntermediate, store.PaceModerate},
		{60, store.ReadingIntermediate, store.PaceModerate},
		{59.9, store.ReadingBasic, store.PaceSlow},
		{30, store.ReadingBasic, store.PaceSlow},
	}
	for _, tc := range cases {
		rl, lp := Classify(tc.score)
		assert.Equal(t, tc.rl, rl, "score %v", tc.score)
		assert.Equal(t, tc.lp, lp, "score %v", tc.score)
	}
}

func TestRecommendations(t *testing.T) {
	low := Recommendations(30, store.PaceSlow)
	require.Len(t, low, 4)
	assert.Equal(t, "Focus on foundational concepts", low[0])
	assert.Equal(t, "Don't rush - take time to understand each concept fully", low[3])

	mid := Recommendations(65, store.PaceModerate)
	require.Len(t, mid, 3)
	assert.Equal(t, "Review basic concepts before advancing", mid[0])

	high := Recommendations(90, store.PaceFast)
	require.Len(t, high, 4)
	assert.Equal(t, "You're ready for more challenging content", high[0])
	assert.Equal(t, "Make sure to review and reinforce what you've learned", high[3])
}

func TestAnalyzeDiagnostic(t *testing.T) {
	f := newFixture(t)
	f.provider.key = mcqKey(10)
	ctx := context.Background()
	sid := f.student(t, "")

	// an existing record must survive seeding
	require.NoError(t, f.store.InsertMastery(ctx, store.MasteryRecord{StudentID: sid, Subject: "mathematics", Topic: "algebra", MasteryLevel: 12, LastPracticed: f.clock.Now()}))

	res, err := f.engine.AnalyzeDiagnostic(ctx, sid, "mathematics", answers(10, 9))
	require.NoError(t, err)
	assert.InDelta(t, 90.0, res.OverallScore, 1e-9)
	assert.Equal(t, store.ReadingAdvanced, res.ReadingLevel)
	assert.Equal(t, store.PaceFast, res.LearningPace)
	assert.Equal(t, []string{"arithmetic", "geometry"}, res.SeededTopics)
	assert.Len(t, res.Recommendations, 4)
	assert.Equal(t, content.DiagnosticTopic, res.Grading.MasteryUpdate.Topic)

	st, err := f.store.GetStudent(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, store.ReadingAdvanced, st.ReadingLevel)
	assert.Equal(t, store.PaceFast, st.LearningPace)

	arith, err := f.store.GetMastery(ctx, sid, "mathematics", "arithmetic")
	require.NoError(t, err)
	assert.InDelta(t, 70.0, arith.MasteryLevel, 1e-9)
	assert.Equal(t, 0, arith.TotalAttempts)

	alg, err := f.store.GetMastery(ctx, sid, "mathematics", "algebra")
	require.NoError(t, err)
	assert.Equal(t, 12.0, alg.MasteryLevel)

	diag, err := f.store.ListAssessments(ctx, store.AssessmentFilter{StudentID: sid, Topic: content.DiagnosticTopic})
	require.NoError(t, err)
	require.Len(t, diag, 1)
	assert.Equal(t, 0, diag[0].TimeTaken)
}

func TestAnalyzeDiagnosticScoreBands(t *testing.T) {
	cases := []struct {
		correct int
		rl      store.ReadingLevel
		lp      store.LearningPace
		seed    float64
	}{
		{9, store.ReadingAdvanced, store.PaceFast, 70},
		{3, store.ReadingBasic, store.PaceSlow, 10},
		{1, store.ReadingBasic, store.PaceSlow, 0},
	}
	for _, tc := range cases {
		f := newFixture(t)
		f.provider.key = mcqKey(10)
		ctx := context.Background()
		sid := f.student(t, "")

		res, err := f.engine.AnalyzeDiagnostic(ctx, sid, "science", answers(10, tc.correct))
		require.NoError(t, err)
		assert.Equal(t, tc.rl, res.ReadingLevel)
		assert.Equal(t, tc.lp, res.LearningPace)

		m, err := f.store.GetMastery(ctx, sid, "science", "geometry")
		require.NoError(t, err)
		assert.InDelta(t, tc.seed, m.MasteryLevel, 1e-9)
	}
}

func TestAnalyzeDiagnosticSixtyFive(t *testing.T) {
	f := newFixture(t)
	f.provider.key = mcqKey(20)
	ctx := context.Background()
	sid := f.student(t, "")

	res, err := f.engine.AnalyzeDiagnostic(ctx, sid, "english", answers(20, 13))
	require.NoError(t, err)
	assert.InDelta(t, 65.0, res.OverallScore, 1e-9)
	assert.Equal(t, store.ReadingIntermediate, res.ReadingLevel)
	assert.Equal(t, store.PaceModerate, res.LearningPace)
	assert.Len(t, res.Recommendations, 3)
}

func TestAnalyzeDiagnosticRollsBack(t *testing.T) {
	f := newFixture(t, WithIDs(func() string { return "fixed" }))
	f.provider.key = mcqKey(2)
	ctx := context.Background()
	sid := f.student(t, "")

	_, err := f.engine.AnalyzeDiagnostic(ctx, sid, "mathematics", answers(2, 2))
	require.NoError(t, err)
	before, err := f.store.ListMastery(ctx, sid, "mathematics")
	require.NoError(t, err)

	// second run collides on the assessment id
	_, err = f.engine.AnalyzeDiagnostic(ctx, sid, "mathematics", answers(2, 0))
	assert.ErrorIs(t, err, ErrGrading)

	after, err := f.store.ListMastery(ctx, sid, "mathematics")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	st, err := f.store.GetStudent(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, store.PaceFast, st.LearningPace)
}

func TestAnalyzeDiagnosticUnknownStudent(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.AnalyzeDiagnostic(context.Background(), "ghost", "science", []string{"a"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiagnosticAssessmentHidesAnswers(t *testing.T) {
	c, err := content.DefaultCatalog()
	require.NoError(t, err)
	f := newFixture(t)
	f.engine.provider = content.NewTemplateProvider(c)

	d, err := f.engine.DiagnosticAssessment(context.Background(), 10, "science")
	require.NoError(t, err)
	require.NotEmpty(t, d.Questions)
	for _, q := range d.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}
}

func TestMasteryLoggedOnlyAfterCommit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := newFixture(t, WithLogger(logger.FromZap(zap.New(core))))
	f.provider.key = mcqKey(2)
	ctx := context.Background()
	sid := f.student(t, "")

	_, err := f.db.ExecContext(ctx, `CREATE TRIGGER reject_diagnostic BEFORE INSERT ON event_log
		WHEN NEW.typ = 'diagnostic.completed'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = f.engine.AnalyzeDiagnostic(ctx, sid, "mathematics", answers(2, 2))
	assert.ErrorIs(t, err, ErrGrading)
	assert.Zero(t, logs.FilterMessage("mastery updated").Len())
	recs, err := f.store.ListMastery(ctx, sid, "mathematics")
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = f.db.ExecContext(ctx, `DROP TRIGGER reject_diagnostic`)
	require.NoError(t, err)

	_, err = f.engine.AnalyzeDiagnostic(ctx, sid, "mathematics", answers(2, 2))
	require.NoError(t, err)
	_, err = f.engine.Grade(ctx, GradeRequest{StudentID: sid, Subject: "mathematics", Topic: "algebra", Answers: answers(2, 1), TimeTaken: 30})
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("mastery updated").Len())
}
