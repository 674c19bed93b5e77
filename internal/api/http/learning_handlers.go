package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-adaptive/internal/apierr"
	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/learning"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

const defaultExerciseCount = 5

type exerciseSetRequest struct {
	Subject    string `json:"subject" validate:"required,max=64"`
	Topic      string `json:"topic" validate:"required,max=128"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Count      *int   `json:"count" validate:"omitnil,min=1,max=20"`
}

// POST /exercise-sets
func GenerateExerciseSetHandler(eng *learning.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exerciseSetRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		count := defaultExerciseCount
		if req.Count != nil {
			count = *req.Count
		}
		set, err := eng.GenerateExerciseSet(r.Context(), learning.ExerciseRequest{
			StudentID:  ownID(r),
			Subject:    req.Subject,
			Topic:      req.Topic,
			Difficulty: req.Difficulty,
			Count:      count,
		})
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, set)
	}
}

// answerList accepts answers as plain strings or as {"answer": "..."} objects.
type answerList []string

func (a *answerList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		if err := json.Unmarshal(item, &out[i]); err == nil {
			continue
		}
		var obj struct {
			Answer *string `json:"answer"`
		}
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&obj); err != nil || obj.Answer == nil {
			return errors.New("answers must be strings or objects with an answer field")
		}
		out[i] = *obj.Answer
	}
	*a = out
	return nil
}

type gradeRequest struct {
	Subject       string     `json:"subject" validate:"required,max=64"`
	Topic         string     `json:"topic" validate:"required,max=128"`
	Answers       answerList `json:"answers" validate:"required,min=1"`
	TimeTaken     int        `json:"time_taken" validate:"min=0"`
	ExerciseSetID string     `json:"exercise_set_id" validate:"omitempty,max=64"`
}

// POST /assessments
func GradeHandler(eng *learning.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		res, err := eng.Grade(r.Context(), learning.GradeRequest{
			StudentID:     ownID(r),
			Subject:       req.Subject,
			Topic:         req.Topic,
			Answers:       req.Answers,
			TimeTaken:     req.TimeTaken,
			ExerciseSetID: req.ExerciseSetID,
		})
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, res)
	}
}

// GET /assessments, GET /students/{studentID}/assessments
func HistoryHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		recs, err := eng.History(r.Context(), who(r), q.Get("subject"), q.Get("topic"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, recs)
	}
}

// GET /assessments/performance, GET /students/{studentID}/performance
func PerformanceHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := eng.PerformanceSummary(r.Context(), who(r), r.URL.Query().Get("subject"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, sum)
	}
}

type diagnosticQuery struct {
	Grade   int    `query:"grade" validate:"min=7,max=12"`
	Subject string `query:"subject" validate:"required,max=64"`
}

// GET /diagnostics?subject=&grade=
// grade defaults to the student's profile grade.
func DiagnosticHandler(eng *learning.Engine, st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := diagnosticQuery{Subject: r.URL.Query().Get("subject")}
		if raw := r.URL.Query().Get("grade"); raw != "" {
			g, err := strconv.Atoi(raw)
			if err != nil {
				apierr.Write(w, apierr.Validation(map[string]string{"grade": "grade must be a number"}))
				return
			}
			q.Grade = g
		} else {
			p, _ := auth.PrincipalFrom(r.Context())
			s, err := st.GetStudent(r.Context(), p.ID)
			if err != nil {
				respondError(w, log, err)
				return
			}
			q.Grade = s.Grade
		}
		if aerr := validateStruct(&q); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		d, err := eng.DiagnosticAssessment(r.Context(), q.Grade, q.Subject)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

type diagnosticRequest struct {
	Subject string     `json:"subject" validate:"required,max=64"`
	Answers answerList `json:"answers" validate:"required,min=1"`
}

// POST /diagnostics
func AnalyzeDiagnosticHandler(eng *learning.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req diagnosticRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		res, err := eng.AnalyzeDiagnostic(r.Context(), ownID(r), req.Subject, req.Answers)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// GET /learning-path, GET /students/{studentID}/learning-path
func LearningPathHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := eng.GetLearningPath(r.Context(), who(r), r.URL.Query().Get("subject"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// GET /learning-path/recommended, GET /students/{studentID}/learning-path/recommended
func RecommendedLessonsHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := eng.RecommendedLessons(r.Context(), who(r), r.URL.Query().Get("subject"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// GET /mastery, GET /students/{studentID}/mastery
func MasteryHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := eng.Mastery(r.Context(), who(r), r.URL.Query().Get("subject"))
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, recs)
	}
}

// GET /interventions, GET /students/{studentID}/interventions
func InterventionsHandler(eng *learning.Engine, log *logger.Logger, who studentIDFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := r.URL.Query().Get("subject")
		if subject == "" {
			apierr.Write(w, apierr.Validation(map[string]string{"subject": "subject is a required field"}))
			return
		}
		out, err := eng.Interventions(r.Context(), who(r), subject)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"student_id":    who(r),
			"subject":       subject,
			"interventions": out,
		})
	}
}
