// Package http exposes the adaptive learning engine over a chi router.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/learning"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/rbac"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

type Deps struct {
	Engine   *learning.Engine
	Accounts *auth.Accounts
	Tokens   *auth.Tokens
	Store    *store.Store
	Log      *logger.Logger
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
	// Middlewares run before routing, e.g. CORS.
	Middlewares []func(http.Handler) http.Handler
}

func NewRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}
	for _, mw := range d.Middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", ReadyHandler(d.Store))

	r.Post("/auth/students", RegisterStudentHandler(d.Accounts, d.Log))
	r.Post("/auth/teachers", RegisterTeacherHandler(d.Accounts, d.Log))
	r.Post("/auth/login", LoginHandler(d.Accounts, d.Log))

	// Protected API (JWT → principal + role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Tokens))

		pr.Get("/me", MeHandler(d.Store, d.Log))
		pr.With(rbac.Require(rbac.ProfileEditOwn)).
			Patch("/me/profile", UpdateProfileHandler(d.Store, d.Log))

		// Student flow
		pr.With(rbac.Require(rbac.ExerciseGenerate)).
			Post("/exercise-sets", GenerateExerciseSetHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.AssessmentSubmit)).
			Post("/assessments", GradeHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.AssessmentViewOwn)).
			Get("/assessments", HistoryHandler(d.Engine, d.Log, ownID))
		pr.With(rbac.Require(rbac.AssessmentViewOwn)).
			Get("/assessments/performance", PerformanceHandler(d.Engine, d.Log, ownID))
		pr.With(rbac.Require(rbac.DiagnosticTake)).
			Get("/diagnostics", DiagnosticHandler(d.Engine, d.Store, d.Log))
		pr.With(rbac.Require(rbac.DiagnosticTake)).
			Post("/diagnostics", AnalyzeDiagnosticHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.PathViewOwn)).
			Get("/learning-path", LearningPathHandler(d.Engine, d.Log, ownID))
		pr.With(rbac.Require(rbac.PathViewOwn)).
			Get("/learning-path/recommended", RecommendedLessonsHandler(d.Engine, d.Log, ownID))
		pr.With(rbac.Require(rbac.MasteryViewOwn)).
			Get("/mastery", MasteryHandler(d.Engine, d.Log, ownID))
		pr.With(rbac.Require(rbac.InterventionsOwn)).
			Get("/interventions", InterventionsHandler(d.Engine, d.Log, ownID))

		// Teacher views; a student may read their own record through them too.
		pr.With(rbac.Require(rbac.StudentsView)).
			Get("/students", ListStudentsHandler(d.Store, d.Log))
		pr.With(rbac.RequireAny(rbac.StudentsView, rbac.AnalyticsView)).
			Get("/students/struggling", StrugglingStudentsHandler(d.Engine, d.Log))
		pr.Route("/students/{studentID}", func(sr chi.Router) {
			sr.With(rbac.RequireOwnerOr(rbac.AssessmentViewAll, isSelf)).
				Get("/assessments", HistoryHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireOwnerOr(rbac.AssessmentViewAll, isSelf)).
				Get("/performance", PerformanceHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireOwnerOr(rbac.AssessmentViewAll, isSelf)).
				Get("/interventions", InterventionsHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireOwnerOr(rbac.PathViewAll, isSelf)).
				Get("/learning-path", LearningPathHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireOwnerOr(rbac.PathViewAll, isSelf)).
				Get("/learning-path/recommended", RecommendedLessonsHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireOwnerOr(rbac.MasteryViewAll, isSelf)).
				Get("/mastery", MasteryHandler(d.Engine, d.Log, pathID))
			sr.With(rbac.RequireAll(rbac.StudentsView, rbac.StudentsAssign)).
				Post("/assignments", AssignStudentHandler(d.Store, d.Log))
		})
		pr.With(rbac.Require(rbac.AnalyticsView)).
			Get("/analytics", ClassAnalyticsHandler(d.Engine, d.Log))
		pr.With(rbac.Require(rbac.EventsView)).
			Get("/events", EventsHandler(d.Store, d.Log))
	})
	return r
}

// studentIDFunc picks whose data a handler reads.
type studentIDFunc func(r *http.Request) string

func ownID(r *http.Request) string {
	p, _ := auth.PrincipalFrom(r.Context())
	return p.ID
}

func pathID(r *http.Request) string { return chi.URLParam(r, "studentID") }

// isSelf reports whether a student is addressing their own record.
func isSelf(r *http.Request) bool {
	p, ok := auth.PrincipalFrom(r.Context())
	return ok && p.IsStudent() && p.ID == pathID(r)
}

func ReadyHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if st == nil || st.Ping(ctx) != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
