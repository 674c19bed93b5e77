package store

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

const assessmentCols = `id, student_id, subject, topic, score, time_taken, attempt_number, errors_json, completed_at`

// LastAttemptNumber is the highest attempt number recorded for the triple, 0 if none.
func (s *Store) LastAttemptNumber(ctx context.Context, studentID, subject, topic string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(attempt_number), 0) FROM assessments WHERE student_id=$1 AND subject=$2 AND topic=$3`,
		studentID, subject, topic).Scan(&n)
	if err != nil {
		return 0, wrap("last attempt", err)
	}
	return n, nil
}

// CreateAssessment appends a record. A duplicate attempt number for the
// same triple yields ErrConflict.
func (s *Store) CreateAssessment(ctx context.Context, a AssessmentRecord) error {
	if a.Errors == nil {
		a.Errors = []string{}
	}
	ej, err := json.Marshal(a.Errors)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO assessments (`+assessmentCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.StudentID, a.Subject, a.Topic, a.Score, a.TimeTaken, a.AttemptNumber, string(ej), ms(a.CompletedAt))
	return wrap("create assessment", err)
}

// ListAssessments returns matching records newest first.
func (s *Store) ListAssessments(ctx context.Context, f AssessmentFilter) ([]AssessmentRecord, error) {
	where := []string{}
	args := []any{}
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, col+"=$"+strconv.Itoa(len(args)))
	}
	add("student_id", f.StudentID)
	add("subject", f.Subject)
	add("topic", f.Topic)

	q := `SELECT ` + assessmentCols + ` FROM assessments`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY completed_at DESC, attempt_number DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("list assessments", err)
	}
	defer rows.Close()

	out := []AssessmentRecord{}
	for rows.Next() {
		var (
			a         AssessmentRecord
			ej        string
			completed int64
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Subject, &a.Topic, &a.Score, &a.TimeTaken, &a.AttemptNumber, &ej, &completed); err != nil {
			return nil, wrap("list assessments", err)
		}
		if err := json.Unmarshal([]byte(ej), &a.Errors); err != nil {
			return nil, wrap("list assessments", err)
		}
		a.CompletedAt = fromMS(completed)
		out = append(out, a)
	}
	return out, wrap("list assessments", rows.Err())
}
