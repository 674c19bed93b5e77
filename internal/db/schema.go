package db

// Times are unix milliseconds in BIGINT columns on both drivers.

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  grade INTEGER CHECK (grade IS NULL OR (grade BETWEEN 7 AND 12)),
  reading_level TEXT,
  learning_pace TEXT,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS teachers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  subjects_json TEXT NOT NULL DEFAULT '[]',
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS class_assignments (
  teacher_id TEXT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  PRIMARY KEY (teacher_id, student_id, subject)
)`,
	`CREATE TABLE IF NOT EXISTS topic_mastery (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  mastery_level REAL NOT NULL DEFAULT 0 CHECK (mastery_level >= 0 AND mastery_level <= 100),
  total_attempts INTEGER NOT NULL DEFAULT 0,
  last_practiced BIGINT NOT NULL,
  version INTEGER NOT NULL DEFAULT 0,
  UNIQUE (student_id, subject, topic)
)`,
	`CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  score REAL NOT NULL,
  time_taken INTEGER NOT NULL DEFAULT 0,
  attempt_number INTEGER NOT NULL,
  errors_json TEXT NOT NULL DEFAULT '[]',
  completed_at BIGINT NOT NULL,
  UNIQUE (student_id, subject, topic, attempt_number)
)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_student_subject ON assessments (student_id, subject, completed_at)`,
	`CREATE TABLE IF NOT EXISTS exercise_sets (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  grade INTEGER CHECK (grade IS NULL OR (grade BETWEEN 7 AND 12)),
  reading_level TEXT,
  learning_pace TEXT,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS teachers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  subjects_json TEXT NOT NULL DEFAULT '[]',
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS class_assignments (
  teacher_id TEXT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  PRIMARY KEY (teacher_id, student_id, subject)
)`,
	`CREATE TABLE IF NOT EXISTS topic_mastery (
  id BIGSERIAL PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  mastery_level DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (mastery_level >= 0 AND mastery_level <= 100),
  total_attempts INTEGER NOT NULL DEFAULT 0,
  last_practiced BIGINT NOT NULL,
  version BIGINT NOT NULL DEFAULT 0,
  UNIQUE (student_id, subject, topic)
)`,
	`CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  time_taken INTEGER NOT NULL DEFAULT 0,
  attempt_number INTEGER NOT NULL,
  errors_json TEXT NOT NULL DEFAULT '[]',
  completed_at BIGINT NOT NULL,
  UNIQUE (student_id, subject, topic, attempt_number)
)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_student_subject ON assessments (student_id, subject, completed_at)`,
	`CREATE TABLE IF NOT EXISTS exercise_sets (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
}
