package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSetNotFound is returned for unknown or expired exercise sets.
var ErrSetNotFound = errors.New("content: exercise set not found")

// ExerciseSet is an issued set of questions together with its answer key.
type ExerciseSet struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	Subject       string     `json:"subject"`
	Topic         string     `json:"topic"`
	Difficulty    string     `json:"difficulty"`
	Questions     []Question `json:"exercises"`
	TotalPoints   float64    `json:"total_points"`
	EstimatedTime int        `json:"estimated_time"` // seconds
	CreatedAt     time.Time  `json:"created_at"`
}

// Public returns a copy safe to send to the student.
func (s ExerciseSet) Public() ExerciseSet {
	qs := make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		qs[i] = q.Public()
	}
	s.Questions = qs
	return s
}

// SetStore persists issued exercise sets by id.
type SetStore interface {
	Put(ctx context.Context, s ExerciseSet) error
	Get(ctx context.Context, id string) (ExerciseSet, error)
}

// --- SQL ---

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSetStore keeps sets in the exercise_sets table.
type SQLSetStore struct{ db execQuerier }

func NewSQLSetStore(db execQuerier) *SQLSetStore { return &SQLSetStore{db: db} }

func (s *SQLSetStore) Put(ctx context.Context, set ExerciseSet) error {
	buf, err := json.Marshal(set)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exercise_sets (id, student_id, subject, topic, difficulty, payload_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		set.ID, set.StudentID, set.Subject, set.Topic, set.Difficulty, string(buf), set.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put exercise set: %w", err)
	}
	return nil
}

func (s *SQLSetStore) Get(ctx context.Context, id string) (ExerciseSet, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload_json FROM exercise_sets WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ExerciseSet{}, ErrSetNotFound
	}
	if err != nil {
		return ExerciseSet{}, fmt.Errorf("get exercise set: %w", err)
	}
	var set ExerciseSet
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		return ExerciseSet{}, fmt.Errorf("decode exercise set: %w", err)
	}
	return set, nil
}

// --- Redis ---

// KV is the subset of redis.Cmdable used by RedisSetStore.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSetStore keeps sets as JSON under exercise_set:<id> with a TTL.
type RedisSetStore struct {
	rdb KV
	ttl time.Duration
}

func NewRedisSetStore(rdb KV, ttl time.Duration) *RedisSetStore {
	return &RedisSetStore{rdb: rdb, ttl: ttl}
}

func setKey(id string) string { return "exercise_set:" + id }

func (s *RedisSetStore) Put(ctx context.Context, set ExerciseSet) error {
	buf, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, setKey(set.ID), buf, s.ttl).Err(); err != nil {
		return fmt.Errorf("put exercise set: %w", err)
	}
	return nil
}

func (s *RedisSetStore) Get(ctx context.Context, id string) (ExerciseSet, error) {
	buf, err := s.rdb.Get(ctx, setKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ExerciseSet{}, ErrSetNotFound
	}
	if err != nil {
		return ExerciseSet{}, fmt.Errorf("get exercise set: %w", err)
	}
	var set ExerciseSet
	if err := json.Unmarshal(buf, &set); err != nil {
		return ExerciseSet{}, fmt.Errorf("decode exercise set: %w", err)
	}
	return set, nil
}

// NewRedisClient connects to addr and verifies it with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
