package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const studentCols = `id, name, email, password_hash, grade, reading_level, learning_pace, created_at, updated_at`

func (s *Store) CreateStudent(ctx context.Context, st Student) error {
	now := time.Now()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO students (`+studentCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		st.ID, st.Name, strings.ToLower(st.Email), st.PasswordHash,
		nullInt(st.Grade), nullStr(string(st.ReadingLevel)), nullStr(string(st.LearningPace)),
		ms(st.CreatedAt), ms(st.CreatedAt))
	return wrap("create student", err)
}

func (s *Store) GetStudent(ctx context.Context, id string) (Student, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id=$1`, id)
	st, err := scanStudent(row)
	return st, wrap("get student", err)
}

func (s *Store) GetStudentByEmail(ctx context.Context, email string) (Student, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE email=$1`, strings.ToLower(email))
	st, err := scanStudent(row)
	return st, wrap("get student by email", err)
}

// ListStudents returns students ordered by name; grade 0 lists every grade.
func (s *Store) ListStudents(ctx context.Context, grade int) ([]Student, error) {
	q := `SELECT ` + studentCols + ` FROM students`
	var args []any
	if grade > 0 {
		q += ` WHERE grade=$1`
		args = append(args, grade)
	}
	q += ` ORDER BY name, id`
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("list students", err)
	}
	defer rows.Close()

	out := []Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, wrap("list students", err)
		}
		out = append(out, st)
	}
	return out, wrap("list students", rows.Err())
}

func (s *Store) UpdateStudentProfile(ctx context.Context, id string, p ProfilePatch) (Student, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+"=$"+strconv.Itoa(len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Grade != nil {
		add("grade", nullInt(*p.Grade))
	}
	if p.ReadingLevel != nil {
		add("reading_level", nullStr(string(*p.ReadingLevel)))
	}
	if p.LearningPace != nil {
		add("learning_pace", nullStr(string(*p.LearningPace)))
	}
	add("updated_at", ms(time.Now()))
	args = append(args, id)

	res, err := s.q.ExecContext(ctx,
		`UPDATE students SET `+strings.Join(sets, ", ")+` WHERE id=$`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return Student{}, wrap("update student", err)
	}
	if err := oneRow("update student", res); err != nil {
		return Student{}, err
	}
	return s.GetStudent(ctx, id)
}

// SetClassification stores the diagnostic reading level and pace.
func (s *Store) SetClassification(ctx context.Context, id string, rl ReadingLevel, lp LearningPace) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE students SET reading_level=$1, learning_pace=$2, updated_at=$3 WHERE id=$4`,
		string(rl), string(lp), ms(time.Now()), id)
	if err != nil {
		return wrap("set classification", err)
	}
	if err := oneRow("set classification", res); err != nil {
		return err
	}
	return nil
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return wrap("delete student", err)
	}
	if err := oneRow("delete student", res); err != nil {
		return err
	}
	return nil
}

const teacherCols = `id, name, email, password_hash, subjects_json, created_at`

func (s *Store) CreateTeacher(ctx context.Context, t Teacher) error {
	if t.Subjects == nil {
		t.Subjects = []string{}
	}
	subj, err := json.Marshal(t.Subjects)
	if err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO teachers (`+teacherCols+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Name, strings.ToLower(t.Email), t.PasswordHash, string(subj), ms(t.CreatedAt))
	return wrap("create teacher", err)
}

func (s *Store) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+teacherCols+` FROM teachers WHERE id=$1`, id)
	t, err := scanTeacher(row)
	return t, wrap("get teacher", err)
}

func (s *Store) GetTeacherByEmail(ctx context.Context, email string) (Teacher, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+teacherCols+` FROM teachers WHERE email=$1`, strings.ToLower(email))
	t, err := scanTeacher(row)
	return t, wrap("get teacher by email", err)
}

// EmailTaken reports whether any student or teacher uses email.
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM students WHERE email=$1) + (SELECT COUNT(*) FROM teachers WHERE email=$1)`,
		strings.ToLower(email)).Scan(&n)
	if err != nil {
		return false, wrap("email taken", err)
	}
	return n > 0, nil
}

// AssignStudent links a student to a teacher for a subject. Re-assigning is a no-op.
func (s *Store) AssignStudent(ctx context.Context, teacherID, studentID, subject string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO class_assignments (teacher_id, student_id, subject, created_at)
		 VALUES ($1,$2,$3,$4) ON CONFLICT (teacher_id, student_id, subject) DO NOTHING`,
		teacherID, studentID, subject, ms(time.Now()))
	return wrap("assign student", err)
}

// AssignedStudentIDs lists the students assigned to a teacher; empty subject means any.
func (s *Store) AssignedStudentIDs(ctx context.Context, teacherID, subject string) ([]string, error) {
	q := `SELECT DISTINCT student_id FROM class_assignments WHERE teacher_id=$1`
	args := []any{teacherID}
	if subject != "" {
		q += ` AND subject=$2`
		args = append(args, subject)
	}
	q += ` ORDER BY student_id`
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("assigned students", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("assigned students", err)
		}
		out = append(out, id)
	}
	return out, wrap("assigned students", rows.Err())
}

type scanner interface{ Scan(dest ...any) error }

func scanStudent(r scanner) (Student, error) {
	var (
		st      Student
		grade   sql.NullInt64
		rl, lp  sql.NullString
		created int64
		updated int64
	)
	if err := r.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &grade, &rl, &lp, &created, &updated); err != nil {
		return Student{}, err
	}
	st.Grade = int(grade.Int64)
	st.ReadingLevel = ReadingLevel(rl.String)
	st.LearningPace = LearningPace(lp.String)
	st.CreatedAt = fromMS(created)
	st.UpdatedAt = fromMS(updated)
	return st, nil
}

func scanTeacher(r scanner) (Teacher, error) {
	var (
		t       Teacher
		subj    string
		created int64
	)
	if err := r.Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &subj, &created); err != nil {
		return Teacher{}, err
	}
	if err := json.Unmarshal([]byte(subj), &t.Subjects); err != nil {
		return Teacher{}, err
	}
	t.CreatedAt = fromMS(created)
	return t, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
