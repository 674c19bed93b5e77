package grading

import (
	"fmt"
	"strings"
)

// Question types understood by the default grader.
const (
	TypeMCQ            = "mcq"
	TypeShortAnswer    = "short_answer"
	TypeProblemSolving = "problem_solving"
)

// Q is the slice of an answer-key entry needed for grading.
type Q struct {
	Prompt      string
	Type        string
	Points      float64
	Answer      string
	Explanation string
}

// Result is the outcome of grading a single question response.
type Result struct {
	Correct   bool
	Points    float64 // points awarded
	MaxPoints float64
}

// Strategy compares a normalized response with a normalized key.
type Strategy interface {
	Match(response, key string) bool
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, response string) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
	fallback   Strategy
}

func (g *defaultGrader) Grade(q Q, response string) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		s = g.fallback
	}
	res := Result{MaxPoints: q.Points}
	if s.Match(normalize(response), normalize(q.Answer)) {
		res.Correct = true
		res.Points = q.Points
	}
	return res
}

// Engine options

type Option func(*config)

type config struct {
	StopWords []string
	// NumericTol < 0 disables numeric equivalence.
	NumericTol  float64
	RejectEmpty bool
}

// WithStopWords replaces the words dropped before problem_solving comparison.
func WithStopWords(words ...string) Option { return func(c *config) { c.StopWords = words } }

// WithNumericTolerance also accepts short_answer and problem_solving
// responses whose leading number is within tol of the key's. Off by default.
func WithNumericTolerance(tol float64) Option { return func(c *config) { c.NumericTol = tol } }

// WithRejectEmpty makes short_answer and problem_solving responses that are
// empty after normalization (and, for problem_solving, stop-word removal)
// incorrect unless the key is empty too. Off by default: an empty string is
// contained in every key.
func WithRejectEmpty() Option { return func(c *config) { c.RejectEmpty = true } }

// NewDefaultGrader installs built-in strategies. Unknown types use exact match.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{StopWords: defaultStopWords, NumericTol: -1}
	for _, o := range opts {
		o(cfg)
	}
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	g := &defaultGrader{
		strategies: map[string]Strategy{
			TypeMCQ:            exactStrategy{},
			TypeShortAnswer:    containsStrategy{rejectEmpty: cfg.RejectEmpty},
			TypeProblemSolving: cleanedContainsStrategy{stop: stop, rejectEmpty: cfg.RejectEmpty},
		},
		fallback: exactStrategy{},
	}
	if cfg.NumericTol >= 0 {
		for _, t := range []string{TypeShortAnswer, TypeProblemSolving} {
			g.strategies[t] = numericStrategy{inner: g.strategies[t], tol: cfg.NumericTol}
		}
	}
	return g
}

// --- Strategies ---

type exactStrategy struct{}

func (exactStrategy) Match(response, key string) bool { return response == key }

// containsStrategy accepts when either side contains the other.
type containsStrategy struct{ rejectEmpty bool }

func (s containsStrategy) Match(response, key string) bool {
	if s.rejectEmpty && response == "" {
		return key == ""
	}
	return strings.Contains(key, response) || strings.Contains(response, key)
}

type cleanedContainsStrategy struct {
	stop        map[string]struct{}
	rejectEmpty bool
}

func (s cleanedContainsStrategy) Match(response, key string) bool {
	return containsStrategy{rejectEmpty: s.rejectEmpty}.Match(clean(response, s.stop), clean(key, s.stop))
}

// Sheet aggregates the grading of an ordered answer list against a key.
type Sheet struct {
	Earned   float64
	Possible float64
	Details  []Detail
	Errors   []string
}

// Detail is the per-question breakdown returned to students.
type Detail struct {
	Index          int     `json:"question_index"`
	StudentAnswer  string  `json:"student_answer"`
	CorrectAnswer  string  `json:"correct_answer"`
	Correct        bool    `json:"is_correct"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	Explanation    string  `json:"explanation"`
}

// Percentage is 100*earned/possible, or 0 when nothing was gradable.
func (s Sheet) Percentage() float64 {
	if s.Possible <= 0 {
		return 0
	}
	return s.Earned / s.Possible * 100
}

// Score grades answers position by position. Answers beyond the key, and
// key entries beyond the answers, are ignored.
func Score(g Grader, key []Q, answers []string) Sheet {
	n := min(len(key), len(answers))
	sheet := Sheet{Details: make([]Detail, 0, n), Errors: []string{}}
	for i := 0; i < n; i++ {
		q := key[i]
		res := g.Grade(q, answers[i])
		if !res.Correct {
			sheet.Errors = append(sheet.Errors, fmt.Sprintf("Question %d: %s", i+1, q.Prompt))
		}
		sheet.Earned += res.Points
		sheet.Possible += res.MaxPoints
		sheet.Details = append(sheet.Details, Detail{
			Index:          i,
			StudentAnswer:  answers[i],
			CorrectAnswer:  q.Answer,
			Correct:        res.Correct,
			PointsEarned:   res.Points,
			PointsPossible: res.MaxPoints,
			Explanation:    q.Explanation,
		})
	}
	return sheet
}
