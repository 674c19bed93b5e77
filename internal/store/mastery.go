package store

import (
	"context"
	"fmt"
)

const masteryCols = `id, student_id, subject, topic, mastery_level, total_attempts, last_practiced, version`

func (s *Store) GetMastery(ctx context.Context, studentID, subject, topic string) (MasteryRecord, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+masteryCols+` FROM topic_mastery WHERE student_id=$1 AND subject=$2 AND topic=$3`,
		studentID, subject, topic)
	m, err := scanMastery(row)
	return m, wrap("get mastery", err)
}

// ListMastery returns a student's records for subject in insertion order.
// An empty subject lists every subject.
func (s *Store) ListMastery(ctx context.Context, studentID, subject string) ([]MasteryRecord, error) {
	q := `SELECT ` + masteryCols + ` FROM topic_mastery WHERE student_id=$1`
	args := []any{studentID}
	if subject != "" {
		q += ` AND subject=$2`
		args = append(args, subject)
	}
	q += ` ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("list mastery", err)
	}
	defer rows.Close()

	out := []MasteryRecord{}
	for rows.Next() {
		m, err := scanMastery(rows)
		if err != nil {
			return nil, wrap("list mastery", err)
		}
		out = append(out, m)
	}
	return out, wrap("list mastery", rows.Err())
}

// InsertMastery creates a record. A record already present for the triple
// yields ErrConflict.
func (s *Store) InsertMastery(ctx context.Context, m MasteryRecord) error {
	ok, err := s.insertMastery(ctx, m)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("insert mastery: %w", ErrConflict)
	}
	return nil
}

// InsertMasteryIfAbsent creates a record unless one exists; it never overwrites.
func (s *Store) InsertMasteryIfAbsent(ctx context.Context, m MasteryRecord) (bool, error) {
	return s.insertMastery(ctx, m)
}

func (s *Store) insertMastery(ctx context.Context, m MasteryRecord) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO topic_mastery (student_id, subject, topic, mastery_level, total_attempts, last_practiced, version)
		 VALUES ($1,$2,$3,$4,$5,$6,0)
		 ON CONFLICT (student_id, subject, topic) DO NOTHING`,
		m.StudentID, m.Subject, m.Topic, m.MasteryLevel, m.TotalAttempts, ms(m.LastPracticed))
	if err != nil {
		return false, wrap("insert mastery", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("insert mastery", err)
	}
	return n > 0, nil
}

// UpdateMastery writes level, attempts and last_practiced if the stored
// version still equals m.Version; otherwise it returns ErrConflict.
func (s *Store) UpdateMastery(ctx context.Context, m MasteryRecord) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE topic_mastery
		 SET mastery_level=$1, total_attempts=$2, last_practiced=$3, version=version+1
		 WHERE student_id=$4 AND subject=$5 AND topic=$6 AND version=$7`,
		m.MasteryLevel, m.TotalAttempts, ms(m.LastPracticed), m.StudentID, m.Subject, m.Topic, m.Version)
	if err != nil {
		return wrap("update mastery", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update mastery", err)
	}
	if n == 0 {
		return fmt.Errorf("update mastery %s/%s: %w", m.Subject, m.Topic, ErrConflict)
	}
	return nil
}

func scanMastery(r scanner) (MasteryRecord, error) {
	var (
		m    MasteryRecord
		last int64
	)
	if err := r.Scan(&m.ID, &m.StudentID, &m.Subject, &m.Topic, &m.MasteryLevel, &m.TotalAttempts, &last, &m.Version); err != nil {
		return MasteryRecord{}, err
	}
	m.LastPracticed = fromMS(last)
	return m, nil
}
