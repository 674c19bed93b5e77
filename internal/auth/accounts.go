package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidSignup      = errors.New("auth: invalid signup")
)

// StudentSignup doubles as the request body of POST /auth/students.
type StudentSignup struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Grade    int    `json:"grade" validate:"required,min=7,max=12"`
}

type TeacherSignup struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Subjects []string `json:"subjects" validate:"dive,oneof=mathematics english science"`
}

// Session is what a successful login returns.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Principal   Principal `json:"principal"`
}

// Accounts registers and authenticates students and teachers.
type Accounts struct {
	store    *store.Store
	tokens   *Tokens
	cost     int
	validate *validator.Validate
	log      *logger.Logger
}

func NewAccounts(st *store.Store, t *Tokens, bcryptCost int, log *logger.Logger) *Accounts {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Accounts{store: st, tokens: t, cost: bcryptCost, validate: validator.New(), log: log}
}

func (a *Accounts) RegisterStudent(ctx context.Context, in StudentSignup) (store.Student, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := a.validate.Struct(in); err != nil {
		return store.Student{}, fmt.Errorf("%w: %v", ErrInvalidSignup, err)
	}
	hash, err := a.hash(ctx, in.Email, in.Password)
	if err != nil {
		return store.Student{}, err
	}
	now := time.Now().UTC()
	st := store.Student{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Grade:        in.Grade,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateStudent(ctx, st); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.Student{}, ErrEmailTaken
		}
		return store.Student{}, err
	}
	a.log.Info("student registered", "student_id", st.ID, "grade", st.Grade)
	return st, nil
}

func (a *Accounts) RegisterTeacher(ctx context.Context, in TeacherSignup) (store.Teacher, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := a.validate.Struct(in); err != nil {
		return store.Teacher{}, fmt.Errorf("%w: %v", ErrInvalidSignup, err)
	}
	hash, err := a.hash(ctx, in.Email, in.Password)
	if err != nil {
		return store.Teacher{}, err
	}
	t := store.Teacher{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Subjects:     in.Subjects,
		CreatedAt:    time.Now().UTC(),
	}
	if t.Subjects == nil {
		t.Subjects = []string{}
	}
	if err := a.store.CreateTeacher(ctx, t); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.Teacher{}, ErrEmailTaken
		}
		return store.Teacher{}, err
	}
	a.log.Info("teacher registered", "teacher_id", t.ID, "subjects", t.Subjects)
	return t, nil
}

// Login checks the password against the account of the given kind and
// issues an access token.
func (a *Accounts) Login(ctx context.Context, email, password string, kind Kind) (Session, error) {
	email = normalizeEmail(email)
	var p Principal
	var hash string
	switch kind {
	case KindStudent:
		st, err := a.store.GetStudentByEmail(ctx, email)
		if err != nil {
			return Session{}, a.lookupErr(err)
		}
		p, hash = Principal{Kind: KindStudent, ID: st.ID, Email: st.Email}, st.PasswordHash
	case KindTeacher:
		t, err := a.store.GetTeacherByEmail(ctx, email)
		if err != nil {
			return Session{}, a.lookupErr(err)
		}
		p, hash = Principal{Kind: KindTeacher, ID: t.ID, Email: t.Email}, t.PasswordHash
	default:
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		a.log.Warn("login rejected", "user_id", p.ID, "role", p.Kind)
		return Session{}, ErrInvalidCredentials
	}
	tok, err := a.tokens.Issue(p)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int(a.tokens.TTL().Seconds()),
		Principal:   p,
	}, nil
}

func (a *Accounts) hash(ctx context.Context, email, password string) (string, error) {
	taken, err := a.store.EmailTaken(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrEmailTaken
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (a *Accounts) lookupErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
