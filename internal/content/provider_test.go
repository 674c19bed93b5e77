package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *TemplateProvider {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return NewTemplateProvider(c)
}

func TestDiagnosticTopics(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"arithmetic", "algebra", "geometry"}, c.DiagnosticTopics("mathematics"))
	assert.Equal(t, []string{"grammar", "reading_comprehension", "writing"}, c.DiagnosticTopics("english"))
	assert.Equal(t, []string{"biology", "chemistry", "physics"}, c.DiagnosticTopics("science"))
	assert.Equal(t, []string{"introduction"}, c.DiagnosticTopics("history"))
}

func TestExerciseKeyFiltersByDifficulty(t *testing.T) {
	p := newProvider(t)
	qs, err := p.ExerciseKey(context.Background(), "mathematics", "algebra", "medium")
	require.NoError(t, err)
	require.NotEmpty(t, qs)
	for _, q := range qs {
		assert.Equal(t, "medium", q.Difficulty)
		assert.NotEmpty(t, q.CorrectAnswer)
		assert.Positive(t, q.Points)
	}
}

func TestExerciseKeyIsDeterministic(t *testing.T) {
	p := newProvider(t)
	a, err := p.ExerciseKey(context.Background(), "science", "biology", "easy")
	require.NoError(t, err)
	b, err := p.ExerciseKey(context.Background(), "science", "biology", "easy")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExerciseKeyFallsBackToWholeBank(t *testing.T) {
	p := newProvider(t)
	qs, err := p.ExerciseKey(context.Background(), "english", "reading_comprehension", "hard")
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}

func TestExerciseKeyUnknownTopic(t *testing.T) {
	p := newProvider(t)
	qs, err := p.ExerciseKey(context.Background(), "mathematics", "calculus", "medium")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Option A", qs[0].CorrectAnswer)
	assert.Equal(t, "mcq", qs[0].Type)
}

func TestDiagnosticMatchesGradingKey(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()
	d, err := p.DiagnosticAssessment(ctx, 9, "mathematics")
	require.NoError(t, err)
	assert.Equal(t, "Grade 9 mathematics Diagnostic Assessment", d.Title)
	assert.Equal(t, 20, d.TimeLimit)
	assert.Len(t, d.Questions, 6)

	key, err := p.ExerciseKey(ctx, "mathematics", DiagnosticTopic, "medium")
	require.NoError(t, err)
	assert.Equal(t, d.Questions, key)

	var total float64
	for _, q := range key {
		total += q.Points
	}
	assert.Equal(t, total, d.TotalPoints)
}

func TestValidate(t *testing.T) {
	_, err := Validate(nil)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Validate([]Question{{Question: "q", CorrectAnswer: " "}})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Validate([]Question{{Question: "q", CorrectAnswer: "a", Points: -1}})
	assert.ErrorIs(t, err, ErrMalformed)

	qs, err := Validate([]Question{{Question: "q", CorrectAnswer: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, qs[0].Points)
	assert.Equal(t, "short_answer", qs[0].Type)
}

func TestTimeBudget(t *testing.T) {
	assert.Equal(t, 60, TimeBudget("mcq"))
	assert.Equal(t, 120, TimeBudget("short_answer"))
	assert.Equal(t, 300, TimeBudget("problem_solving"))
	assert.Equal(t, 120, TimeBudget("essay"))
}

func TestParseCatalogRejectsGarbage(t *testing.T) {
	_, err := ParseCatalog([]byte("subjects: [unterminated"))
	assert.Error(t, err)
}
