package learning

import (
	"context"
	"math"

	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/events"
	"github.com/mind-engage/mindengage-adaptive/internal/grading"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// seedOffset is subtracted from the diagnostic score to seed topic mastery.
const seedOffset = 20.0

type DiagnosticResult struct {
	OverallScore    float64            `json:"overall_score"`
	ReadingLevel    store.ReadingLevel `json:"reading_level"`
	LearningPace    store.LearningPace `json:"learning_pace"`
	Recommendations []string           `json:"recommendations"`
	SeededTopics    []string           `json:"seeded_topics"`
	Grading         GradingResult      `json:"grading"`
}

// DiagnosticAssessment returns the placement questions without answers.
func (e *Engine) DiagnosticAssessment(ctx context.Context, grade int, subject string) (content.Diagnostic, error) {
	const op = "diagnostic assessment"
	d, err := e.provider.DiagnosticAssessment(ctx, grade, subject)
	if err != nil {
		return content.Diagnostic{}, newErr(KindGeneration, op, err)
	}
	for i, q := range d.Questions {
		d.Questions[i] = q.Public()
	}
	return d, nil
}

// AnalyzeDiagnostic grades a diagnostic, classifies the student and seeds
// mastery for the subject's starting topics, all in one transaction.
// Existing mastery records are never overwritten by seeding.
func (e *Engine) AnalyzeDiagnostic(ctx context.Context, studentID, subject string, answers []string) (DiagnosticResult, error) {
	const op = "analyze diagnostic"
	req := GradeRequest{StudentID: studentID, Subject: subject, Topic: content.DiagnosticTopic, Answers: answers}
	if err := validateGrade(op, req); err != nil {
		return DiagnosticResult{}, err
	}
	if _, err := e.requireStudent(ctx, op, studentID); err != nil {
		return DiagnosticResult{}, err
	}
	key, err := e.answerKey(ctx, op, req)
	if err != nil {
		return DiagnosticResult{}, err
	}
	sheet := grading.Score(e.grader, key, answers)
	topics := e.topics.DiagnosticTopics(subject)

	var out DiagnosticResult
	err = e.store.WithTx(ctx, func(tx *store.Store) error {
		graded, err := e.gradeTx(ctx, tx, studentID, subject, content.DiagnosticTopic, sheet, 0)
		if err != nil {
			return err
		}
		score := graded.Score
		rl, lp := Classify(score)
		if err := tx.SetClassification(ctx, studentID, rl, lp); err != nil {
			return err
		}

		seed := math.Max(0, score-seedOffset)
		seeded := []string{}
		for _, topic := range topics {
			ok, err := tx.InsertMasteryIfAbsent(ctx, store.MasteryRecord{
				StudentID:     studentID,
				Subject:       subject,
				Topic:         topic,
				MasteryLevel:  seed,
				LastPracticed: e.now(),
			})
			if err != nil {
				return err
			}
			if ok {
				seeded = append(seeded, topic)
			}
		}

		if err := tx.AppendEvent(ctx, events.DiagnosticCompleted, studentID, map[string]any{
			"subject":       subject,
			"score":         score,
			"reading_level": rl,
			"learning_pace": lp,
			"seeded":        seeded,
		}); err != nil {
			return err
		}

		out = DiagnosticResult{
			OverallScore:    score,
			ReadingLevel:    rl,
			LearningPace:    lp,
			Recommendations: Recommendations(score, lp),
			SeededTopics:    seeded,
			Grading:         graded,
		}
		return nil
	})
	if err != nil {
		e.log.Error("diagnostic failed", "student_id", studentID, "subject", subject, "error", err)
		return DiagnosticResult{}, newErr(KindGrading, op, err)
	}
	e.logMasteryUpdate(studentID, subject, out.Grading)
	e.log.Info("diagnostic classified", "student_id", studentID, "subject", subject,
		"score", out.OverallScore, "reading_level", out.ReadingLevel, "learning_pace", out.LearningPace)
	return out, nil
}

// Classify maps a diagnostic score to reading level and pace. The two
// threshold sets are independent.
func Classify(score float64) (store.ReadingLevel, store.LearningPace) {
	rl := store.ReadingBasic
	switch {
	case score >= 80:
		rl = store.ReadingAdvanced
	case score >= 60:
		rl = store.ReadingIntermediate
	}
	lp := store.PaceSlow
	switch {
	case score >= 85:
		lp = store.PaceFast
	case score >= 60:
		lp = store.PaceModerate
	}
	return rl, lp
}

func Recommendations(score float64, pace store.LearningPace) []string {
	var recs []string
	switch {
	case score < 50:
		recs = []string{
			"Focus on foundational concepts",
			"Take extra time to understand each topic",
			"Ask for help when needed",
		}
	case score < 70:
		recs = []string{
			"Review basic concepts before advancing",
			"Practice regularly to build confidence",
			"Use the chatbot for additional support",
		}
	default:
		recs = []string{
			"You're ready for more challenging content",
			"Try to complete exercises quickly and accurately",
			"Explore advanced topics when ready",
		}
	}
	switch pace {
	case store.PaceSlow:
		recs = append(recs, "Don't rush - take time to understand each concept fully")
	case store.PaceFast:
		recs = append(recs, "Make sure to review and reinforce what you've learned")
	}
	return recs
}
