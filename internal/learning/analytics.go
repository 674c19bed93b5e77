package learning

import (
	"context"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

const (
	DefaultStrugglingThreshold = 40.0
	strugglingMinAttempts      = 2
	recentWindow               = 10
	velocityWindow             = 5
	trendWindow                = 5
)

// History lists a student's assessments newest first. Empty subject or
// topic does not filter.
func (e *Engine) History(ctx context.Context, studentID, subject, topic string) ([]store.AssessmentRecord, error) {
	const op = "history"
	if _, err := e.requireStudent(ctx, op, studentID); err != nil {
		return nil, err
	}
	recs, err := e.store.ListAssessments(ctx, store.AssessmentFilter{StudentID: studentID, Subject: subject, Topic: topic})
	if err != nil {
		return nil, newErr(KindInternal, op, err)
	}
	return recs, nil
}

type PerformanceSummary struct {
	TotalAssessments int                `json:"total_assessments"`
	AverageScore     float64            `json:"average_score"`
	BestScore        float64            `json:"best_score"`
	WorstScore       float64            `json:"worst_score"`
	TopicPerformance map[string]float64 `json:"topic_performance"`
	AverageTime      float64            `json:"average_time_per_assessment"`
	ImprovementTrend float64            `json:"improvement_trend"`
	LastAssessment   time.Time          `json:"last_assessment"`
}

// PerformanceSummary aggregates every assessment of a student in subject.
func (e *Engine) PerformanceSummary(ctx context.Context, studentID, subject string) (PerformanceSummary, error) {
	const op = "performance summary"
	recs, err := e.subjectAssessments(ctx, op, studentID, subject)
	if err != nil {
		return PerformanceSummary{}, err
	}
	// chronological
	chrono := make([]store.AssessmentRecord, len(recs))
	for i, r := range recs {
		chrono[len(recs)-1-i] = r
	}

	s := PerformanceSummary{
		TotalAssessments: len(chrono),
		BestScore:        chrono[0].Score,
		WorstScore:       chrono[0].Score,
		TopicPerformance: topicAverages(chrono),
		AverageTime:      averageTime(chrono),
		LastAssessment:   chrono[len(chrono)-1].CompletedAt,
	}
	var sum float64
	for _, r := range chrono {
		sum += r.Score
		s.BestScore = max(s.BestScore, r.Score)
		s.WorstScore = min(s.WorstScore, r.Score)
	}
	s.AverageScore = sum / float64(len(chrono))

	tail := chrono[max(0, len(chrono)-trendWindow):]
	if len(tail) >= 2 {
		s.ImprovementTrend = tail[len(tail)-1].Score - tail[0].Score
	}
	return s, nil
}

type PerformanceAnalytics struct {
	TotalAssessments int                `json:"total_assessments"`
	AverageScore     float64            `json:"average_score"`
	AverageTime      float64            `json:"average_time_per_assessment"`
	RecentScores     []float64          `json:"recent_scores"`
	TopicPerformance map[string]float64 `json:"topic_performance"`
	LearningVelocity float64            `json:"learning_velocity"`
	LastAssessment   time.Time          `json:"last_assessment"`
}

// PerformanceAnalytics looks at the most recent assessments to estimate
// whether a student is improving.
func (e *Engine) PerformanceAnalytics(ctx context.Context, studentID, subject string) (PerformanceAnalytics, error) {
	const op = "performance analytics"
	recs, err := e.subjectAssessments(ctx, op, studentID, subject)
	if err != nil {
		return PerformanceAnalytics{}, err
	}
	return analyzeRecent(recs), nil
}

// analyzeRecent expects recs newest first and non-empty.
func analyzeRecent(recs []store.AssessmentRecord) PerformanceAnalytics {
	n := min(len(recs), recentWindow)
	recent := make([]float64, n)
	for i := 0; i < n; i++ {
		recent[i] = recs[i].Score
	}
	a := PerformanceAnalytics{
		TotalAssessments: len(recs),
		AverageScore:     mean(recent),
		AverageTime:      averageTime(recs),
		RecentScores:     recent,
		TopicPerformance: topicAverages(recs),
		LastAssessment:   recs[0].CompletedAt,
	}
	if n > velocityWindow {
		a.LearningVelocity = mean(recent[:velocityWindow]) - mean(recent[velocityWindow:])
	}
	return a
}

type Intervention struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// Interventions recommends teacher actions. A student without assessments
// in subject gets none.
func (e *Engine) Interventions(ctx context.Context, studentID, subject string) ([]Intervention, error) {
	const op = "interventions"
	a, err := e.PerformanceAnalytics(ctx, studentID, subject)
	if errors.Is(err, ErrNotFound) {
		if _, serr := e.requireStudent(ctx, op, studentID); serr != nil {
			return nil, serr
		}
		return []Intervention{}, nil
	}
	if err != nil {
		return nil, err
	}
	return recommendInterventions(a), nil
}

func recommendInterventions(a PerformanceAnalytics) []Intervention {
	out := []Intervention{}
	if a.AverageScore < 50 {
		out = append(out, Intervention{
			Type:        "remediation",
			Priority:    "high",
			Description: "Student needs foundational support",
			Actions: []string{
				"Provide easier content with more scaffolding",
				"Focus on basic concepts before advancing",
				"Increase practice time with immediate feedback",
			},
		})
	}
	if a.LearningVelocity < -10 {
		out = append(out, Intervention{
			Type:        "pace_adjustment",
			Priority:    "medium",
			Description: "Student is falling behind expected pace",
			Actions: []string{
				"Reduce content complexity",
				"Provide more practice opportunities",
				"Consider one-on-one support",
			},
		})
	}
	if a.AverageTime > 600 {
		out = append(out, Intervention{
			Type:        "time_management",
			Priority:    "medium",
			Description: "Student takes too long on assessments",
			Actions: []string{
				"Provide time management strategies",
				"Break down complex problems",
				"Offer timed practice sessions",
			},
		})
	}
	return out
}

// StrugglingStudents lists records below threshold with repeated attempts.
// A threshold <= 0 uses DefaultStrugglingThreshold.
func (e *Engine) StrugglingStudents(ctx context.Context, subject string, threshold float64) ([]store.StrugglingRow, error) {
	const op = "struggling students"
	if subject == "" {
		return nil, invalid(op, "subject is required")
	}
	if threshold <= 0 {
		threshold = DefaultStrugglingThreshold
	}
	rows, err := e.store.StrugglingStudents(ctx, subject, threshold, strugglingMinAttempts)
	if err != nil {
		return nil, newErr(KindInternal, op, err)
	}
	return rows, nil
}

type ClassAnalytics struct {
	TotalAssessments    int                `json:"total_assessments"`
	AverageScore        float64            `json:"average_score"`
	SubjectDistribution map[string]int     `json:"subject_distribution"`
	GradeDistribution   map[int]int        `json:"grade_distribution"`
	TopicPerformance    map[string]float64 `json:"topic_performance"`
}

// ClassAnalytics aggregates all assessments, optionally by subject and grade.
func (e *Engine) ClassAnalytics(ctx context.Context, subject string, grade int) (ClassAnalytics, error) {
	rows, err := e.store.ScoredAssessments(ctx, subject, grade)
	if err != nil {
		return ClassAnalytics{}, newErr(KindInternal, "class analytics", err)
	}
	a := ClassAnalytics{
		TotalAssessments:    len(rows),
		SubjectDistribution: map[string]int{},
		GradeDistribution:   map[int]int{},
		TopicPerformance:    map[string]float64{},
	}
	if len(rows) == 0 {
		return a, nil
	}
	var sum float64
	topicSum := map[string]float64{}
	topicN := map[string]int{}
	for _, r := range rows {
		sum += r.Score
		a.SubjectDistribution[r.Subject]++
		if r.Grade > 0 {
			a.GradeDistribution[r.Grade]++
		}
		topicSum[r.Topic] += r.Score
		topicN[r.Topic]++
	}
	a.AverageScore = sum / float64(len(rows))
	for t, s := range topicSum {
		a.TopicPerformance[t] = s / float64(topicN[t])
	}
	return a, nil
}

func (e *Engine) subjectAssessments(ctx context.Context, op, studentID, subject string) ([]store.AssessmentRecord, error) {
	if subject == "" {
		return nil, invalid(op, "subject is required")
	}
	recs, err := e.store.ListAssessments(ctx, store.AssessmentFilter{StudentID: studentID, Subject: subject})
	if err != nil {
		return nil, newErr(KindInternal, op, err)
	}
	if len(recs) == 0 {
		return nil, newErr(KindNotFound, op, errors.New("no assessments found"))
	}
	return recs, nil
}

func topicAverages(recs []store.AssessmentRecord) map[string]float64 {
	sum := map[string]float64{}
	n := map[string]int{}
	for _, r := range recs {
		sum[r.Topic] += r.Score
		n[r.Topic]++
	}
	out := make(map[string]float64, len(sum))
	for t, s := range sum {
		out[t] = s / float64(n[t])
	}
	return out
}

// averageTime ignores assessments with no recorded time.
func averageTime(recs []store.AssessmentRecord) float64 {
	var sum float64
	n := 0
	for _, r := range recs {
		if r.TimeTaken > 0 {
			sum += float64(r.TimeTaken)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
