package learning

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/db"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

type fakeProvider struct {
	key  []content.Question
	err  error
	diag content.Diagnostic
}

func (f *fakeProvider) ExerciseKey(context.Context, string, string, string) ([]content.Question, error) {
	return f.key, f.err
}

func (f *fakeProvider) DiagnosticAssessment(context.Context, int, string) (content.Diagnostic, error) {
	return f.diag, f.err
}

type fixedTopics []string

func (t fixedTopics) DiagnosticTopics(string) []string { return t }

// stepClock advances one minute per call so records order deterministically.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	db       *sql.DB
	store    *store.Store
	sets     *content.SQLSetStore
	provider *fakeProvider
	clock    *stepClock
	engine   *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	f := &fixture{
		db:       h,
		store:    store.New(h, db.DriverSQLite),
		sets:     content.NewSQLSetStore(h),
		provider: &fakeProvider{key: mcqKey(2)},
		clock:    &stepClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.engine = New(f.store, f.provider, f.sets, fixedTopics{"arithmetic", "algebra", "geometry"}, opts...)
	return f
}

func (f *fixture) student(t *testing.T, pace store.LearningPace) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, f.store.CreateStudent(context.Background(), store.Student{
		ID: id, Name: "Student " + id[:4], Email: id + "@example.com", PasswordHash: "x", Grade: 9, LearningPace: pace,
	}))
	return id
}

// mcqKey returns n one-point mcq questions whose answers are "a1".."an".
func mcqKey(n int) []content.Question {
	out := make([]content.Question, n)
	for i := range out {
		out[i] = content.Question{
			Question:      fmt.Sprintf("q%d", i+1),
			Type:          "mcq",
			CorrectAnswer: fmt.Sprintf("a%d", i+1),
			Points:        1,
		}
	}
	return out
}

// answers returns n answers of which the first correct ones match mcqKey.
func answers(n, correct int) []string {
	out := make([]string, n)
	for i := range out {
		if i < correct {
			out[i] = fmt.Sprintf("a%d", i+1)
		} else {
			out[i] = "wrong"
		}
	}
	return out
}
