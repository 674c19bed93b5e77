package store

import (
	"context"
	"database/sql"
	"strconv"
)

// StrugglingStudents lists mastery records in subject below threshold with
// at least minAttempts attempts, joined with their student.
func (s *Store) StrugglingStudents(ctx context.Context, subject string, threshold float64, minAttempts int) ([]StrugglingRow, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT m.student_id, st.name, st.grade, m.topic, m.mastery_level, m.total_attempts, m.last_practiced,
		        st.learning_pace, st.reading_level
		 FROM topic_mastery m JOIN students st ON st.id = m.student_id
		 WHERE m.subject=$1 AND m.mastery_level < $2 AND m.total_attempts >= $3
		 ORDER BY m.id`,
		subject, threshold, minAttempts)
	if err != nil {
		return nil, wrap("struggling students", err)
	}
	defer rows.Close()

	out := []StrugglingRow{}
	for rows.Next() {
		var (
			r      StrugglingRow
			grade  sql.NullInt64
			lp, rl sql.NullString
			last   int64
		)
		if err := rows.Scan(&r.StudentID, &r.StudentName, &grade, &r.Topic, &r.MasteryLevel, &r.TotalAttempts, &last, &lp, &rl); err != nil {
			return nil, wrap("struggling students", err)
		}
		r.Grade = int(grade.Int64)
		r.LearningPace = LearningPace(lp.String)
		r.ReadingLevel = ReadingLevel(rl.String)
		r.LastPracticed = fromMS(last)
		out = append(out, r)
	}
	return out, wrap("struggling students", rows.Err())
}

// ScoredAssessments returns every assessment score with its student's grade.
// Empty subject and zero grade do not filter.
func (s *Store) ScoredAssessments(ctx context.Context, subject string, grade int) ([]ScoredRow, error) {
	q := `SELECT a.subject, a.topic, a.score, st.grade
	      FROM assessments a JOIN students st ON st.id = a.student_id WHERE 1=1`
	args := []any{}
	if subject != "" {
		args = append(args, subject)
		q += ` AND a.subject=$` + strconv.Itoa(len(args))
	}
	if grade > 0 {
		args = append(args, grade)
		q += ` AND st.grade=$` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY a.completed_at`

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("scored assessments", err)
	}
	defer rows.Close()

	out := []ScoredRow{}
	for rows.Next() {
		var (
			sr ScoredRow
			g  sql.NullInt64
		)
		if err := rows.Scan(&sr.Subject, &sr.Topic, &sr.Score, &g); err != nil {
			return nil, wrap("scored assessments", err)
		}
		sr.Grade = int(g.Int64)
		out = append(out, sr)
	}
	return out, wrap("scored assessments", rows.Err())
}
