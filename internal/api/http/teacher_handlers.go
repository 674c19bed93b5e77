package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-adaptive/internal/apierr"
	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/learning"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// queryInt parses an optional integer query parameter; missing means def.
func queryInt(r *http.Request, key string, def int) (int, *apierr.Error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation(map[string]string{key: key + " must be a number"})
	}
	return n, nil
}

// GET /students?grade=&assigned=true
func ListStudentsHandler(st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grade, aerr := queryInt(r, "grade", 0)
		if aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		students, err := st.ListStudents(r.Context(), grade)
		if err != nil {
			respondError(w, log, err)
			return
		}
		if r.URL.Query().Get("assigned") == "true" {
			p, _ := auth.PrincipalFrom(r.Context())
			ids, err := st.AssignedStudentIDs(r.Context(), p.ID, r.URL.Query().Get("subject"))
			if err != nil {
				respondError(w, log, err)
				return
			}
			keep := make(map[string]bool, len(ids))
			for _, id := range ids {
				keep[id] = true
			}
			filtered := students[:0]
			for _, s := range students {
				if keep[s.ID] {
					filtered = append(filtered, s)
				}
			}
			students = filtered
		}
		respondJSON(w, http.StatusOK, students)
	}
}

// GET /students/struggling?subject=&threshold=
func StrugglingStudentsHandler(eng *learning.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold := learning.DefaultStrugglingThreshold
		if raw := r.URL.Query().Get("threshold"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v <= 0 || v > 100 {
				apierr.Write(w, apierr.Validation(map[string]string{"threshold": "threshold must be a number in (0, 100]"}))
				return
			}
			threshold = v
		}
		rows, err := eng.StrugglingStudents(r.Context(), r.URL.Query().Get("subject"), threshold)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

type assignRequest struct {
	Subject string `json:"subject" validate:"required,oneof=mathematics english science"`
}

// POST /students/{studentID}/assignments
func AssignStudentHandler(st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignRequest
		if aerr := decode(w, r, &req); aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		studentID := chi.URLParam(r, "studentID")
		if _, err := st.GetStudent(r.Context(), studentID); err != nil {
			respondError(w, log, err)
			return
		}
		p, _ := auth.PrincipalFrom(r.Context())
		if err := st.AssignStudent(r.Context(), p.ID, studentID, req.Subject); err != nil {
			respondError(w, log, err)
			return
		}
		log.Info("student assigned", "teacher_id", p.ID, "student_id", studentID, "subject", req.Subject)
		respondJSON(w, http.StatusCreated, map[string]string{
			"teacher_id": p.ID,
			"student_id": studentID,
			"subject":    req.Subject,
		})
	}
}

// GET /analytics?subject=&grade=
func ClassAnalyticsHandler(eng *learning.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grade, aerr := queryInt(r, "grade", 0)
		if aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		a, err := eng.ClassAnalytics(r.Context(), r.URL.Query().Get("subject"), grade)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

type eventView struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// GET /events?after=&limit=
func EventsHandler(st *store.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, aerr := queryInt(r, "after", 0)
		if aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		limit, aerr := queryInt(r, "limit", 100)
		if aerr != nil {
			apierr.Write(w, aerr)
			return
		}
		if limit < 1 || limit > 500 {
			apierr.Write(w, apierr.Validation(map[string]string{"limit": "limit must be between 1 and 500"}))
			return
		}
		evs, err := st.Events(r.Context(), int64(after), limit)
		if err != nil {
			respondError(w, log, err)
			return
		}
		out := make([]eventView, 0, len(evs))
		for _, e := range evs {
			out = append(out, eventView{
				Seq:       e.Seq,
				Type:      e.Type,
				Key:       e.Key,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: time.UnixMilli(e.CreatedAt).UTC(),
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}
