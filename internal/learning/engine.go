// Package learning is the adaptive core: it grades submissions, keeps
// per-topic mastery, plans learning paths and places new students with a
// diagnostic. One Engine is built at startup and shared by all handlers.
package learning

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/grading"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// TopicLister names the topics a diagnostic seeds for a subject.
type TopicLister interface {
	DiagnosticTopics(subject string) []string
}

type Engine struct {
	store    *store.Store
	provider content.Provider
	sets     content.SetStore
	topics   TopicLister
	grader   grading.Grader
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }
func WithGrader(g grading.Grader) Option    { return func(e *Engine) { e.grader = g } }
func WithLogger(l *logger.Logger) Option    { return func(e *Engine) { e.log = l } }
func WithIDs(f func() string) Option        { return func(e *Engine) { e.newID = f } }

func New(st *store.Store, p content.Provider, sets content.SetStore, topics TopicLister, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		provider: p,
		sets:     sets,
		topics:   topics,
		grader:   grading.NewDefaultGrader(),
		log:      logger.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("service", "learning")
	return e
}

// requireStudent loads the student or returns a NotFound error for op.
func (e *Engine) requireStudent(ctx context.Context, op, id string) (store.Student, error) {
	st, err := e.store.GetStudent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Student{}, newErr(KindNotFound, op, errors.New("student not found"))
	}
	if err != nil {
		return store.Student{}, newErr(KindInternal, op, err)
	}
	return st, nil
}
