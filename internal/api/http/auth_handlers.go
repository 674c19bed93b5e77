package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-adaptive/internal/apierr"
	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/rbac"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// POST /auth/students
func RegisterStudentHandler(acc *auth.Accounts, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.StudentSignup
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		st, err := acc.RegisterStudent(r.Context(), req)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, st)
	}
}

// POST /auth/teachers
func RegisterTeacherHandler(acc *auth.Accounts, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.TeacherSignup
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		t, err := acc.RegisterTeacher(r.Context(), req)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, t)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
}

// POST /auth/login
func LoginHandler(acc *auth.Accounts, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		sess, err := acc.Login(r.Context(), req.Email, req.Password, auth.Kind(req.Role))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, sess)
	}
}

// GET /me
func MeHandler(st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())
		out := map[string]any{
			"principal":   p,
			"permissions": rbac.Permissions(string(p.Kind)),
		}
		var err error
		switch p.Kind {
		case auth.KindStudent:
			out["profile"], err = st.GetStudent(r.Context(), p.ID)
		case auth.KindTeacher:
			out["profile"], err = st.GetTeacher(r.Context(), p.ID)
		}
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

type profileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Grade        *int    `json:"grade" validate:"omitempty,min=7,max=12"`
	ReadingLevel *string `json:"reading_level" validate:"omitempty,oneof=basic intermediate advanced"`
	LearningPace *string `json:"learning_pace" validate:"omitempty,oneof=slow moderate fast"`
}

// PATCH /me/profile
func UpdateProfileHandler(st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		patch := store.ProfilePatch{Name: req.Name, Grade: req.Grade}
		if req.ReadingLevel != nil {
			rl := store.ReadingLevel(*req.ReadingLevel)
			patch.ReadingLevel = &rl
		}
		if req.LearningPace != nil {
			lp := store.LearningPace(*req.LearningPace)
			patch.LearningPace = &lp
		}
		p, _ := auth.PrincipalFrom(r.Context())
		updated, err := st.UpdateStudentProfile(r.Context(), p.ID, patch)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}
