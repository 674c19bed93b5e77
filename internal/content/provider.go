// Package content supplies answer keys: the question lists shown to students
// and later used to grade them. Issued sets are persisted so grading uses
// the exact key the student saw.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const DiagnosticTopic = "diagnostic"

// ErrMalformed marks provider output that cannot be graded.
var ErrMalformed = errors.New("content: malformed answer key")

type Question struct {
	Question      string   `json:"question" yaml:"question"`
	Type          string   `json:"type" yaml:"type"`
	Options       []string `json:"options,omitempty" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty" yaml:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation"`
	Hints         []string `json:"hints,omitempty" yaml:"hints"`
	Difficulty    string   `json:"difficulty" yaml:"difficulty"`
	Points        float64  `json:"points" yaml:"points"`
}

// Public returns a copy without the answer and explanation.
func (q Question) Public() Question {
	q.CorrectAnswer = ""
	q.Explanation = ""
	return q
}

// Diagnostic is the one-shot placement assessment for a subject.
type Diagnostic struct {
	Title        string     `json:"assessment_title"`
	Instructions string     `json:"instructions"`
	Questions    []Question `json:"questions"`
	TotalPoints  float64    `json:"total_points"`
	TimeLimit    int        `json:"time_limit"` // minutes
}

// Provider produces answer keys.
type Provider interface {
	ExerciseKey(ctx context.Context, subject, topic, difficulty string) ([]Question, error)
	DiagnosticAssessment(ctx context.Context, grade int, subject string) (Diagnostic, error)
}

// TemplateProvider builds keys deterministically from a Catalog.
type TemplateProvider struct {
	catalog *Catalog
}

func NewTemplateProvider(c *Catalog) *TemplateProvider {
	return &TemplateProvider{catalog: c}
}

// ExerciseKey returns the topic's questions at difficulty, or all of the
// topic's questions when none match. Unknown topics get a generic item.
func (p *TemplateProvider) ExerciseKey(_ context.Context, subject, topic, difficulty string) ([]Question, error) {
	if topic == DiagnosticTopic {
		return Validate(p.diagnosticQuestions(subject))
	}
	bank := p.catalog.Questions(subject, topic)
	if len(bank) == 0 {
		return Validate([]Question{fallbackQuestion()})
	}
	var picked []Question
	for _, q := range bank {
		if strings.EqualFold(q.Difficulty, difficulty) {
			picked = append(picked, q)
		}
	}
	if len(picked) == 0 {
		picked = bank
	}
	return Validate(picked)
}

func (p *TemplateProvider) DiagnosticAssessment(_ context.Context, grade int, subject string) (Diagnostic, error) {
	qs, err := Validate(p.diagnosticQuestions(subject))
	if err != nil {
		return Diagnostic{}, err
	}
	d := Diagnostic{
		Title:        fmt.Sprintf("Grade %d %s Diagnostic Assessment", grade, subject),
		Instructions: "Answer all questions to the best of your ability.",
		Questions:    qs,
		TimeLimit:    20,
	}
	for _, q := range qs {
		d.TotalPoints += q.Points
	}
	return d, nil
}

// diagnosticQuestions takes the first two questions of each diagnostic topic.
func (p *TemplateProvider) diagnosticQuestions(subject string) []Question {
	var out []Question
	for _, topic := range p.catalog.DiagnosticTopics(subject) {
		bank := p.catalog.Questions(subject, topic)
		if len(bank) > 2 {
			bank = bank[:2]
		}
		out = append(out, bank...)
	}
	if len(out) == 0 {
		q := fallbackQuestion()
		q.Question = fmt.Sprintf("Sample %s question", subject)
		out = append(out, q)
	}
	return out
}

func fallbackQuestion() Question {
	return Question{
		Question:      "Sample question with Sierra Leone context",
		Type:          "mcq",
		Options:       []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectAnswer: "Option A",
		Explanation:   "Explanation of the correct answer",
		Hints:         []string{"Hint 1", "Hint 2"},
		Difficulty:    "medium",
		Points:        1,
	}
}

// Validate checks a key and fills defaults: missing type becomes
// short_answer and zero points become 1.
func Validate(qs []Question) ([]Question, error) {
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformed)
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("%w: question %d has no correct answer", ErrMalformed, i+1)
		}
		if q.Points < 0 {
			return nil, fmt.Errorf("%w: question %d has negative points", ErrMalformed, i+1)
		}
		if q.Points == 0 {
			q.Points = 1
		}
		if q.Type == "" {
			q.Type = "short_answer"
		}
		out[i] = q
	}
	return out, nil
}

// TimeBudget is the expected seconds spent on one question of type t.
func TimeBudget(t string) int {
	switch t {
	case "mcq":
		return 60
	case "short_answer":
		return 120
	case "problem_solving":
		return 300
	default:
		return 120
	}
}
