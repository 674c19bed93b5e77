package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has("student", ExerciseGenerate))
	assert.True(t, c.Has("student", AssessmentViewOwn))
	assert.False(t, c.Has("student", AssessmentViewAll))
	assert.False(t, c.Has("student", AnalyticsView))

	assert.True(t, c.Has("teacher", AnalyticsView))
	assert.True(t, c.Has("teacher", StudentsAssign), "wildcard")
	assert.False(t, c.Has("teacher", AssessmentSubmit))

	assert.False(t, c.Has("admin", ExerciseGenerate))
	assert.True(t, c.Any("student", AnalyticsView, PathViewOwn))
	assert.False(t, c.All("student", PathViewOwn, PathViewAll))
	assert.True(t, c.All("teacher", StudentsView, StudentsAssign))
	assert.True(t, c.Has("teacher", EventsView))
}

func TestMatchPerm(t *testing.T) {
	assert.True(t, matchPerm("*", "anything"))
	assert.True(t, matchPerm("students:*", "students:view"))
	assert.False(t, matchPerm("students:*", "student:view"))
	assert.False(t, matchPerm("students:view", "students:assign"))
}

func serve(h http.Handler, role string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithRole(req.Context(), role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	h := Require(AnalyticsView)(ok)
	assert.Equal(t, http.StatusOK, serve(h, "teacher"))
	assert.Equal(t, http.StatusForbidden, serve(h, "student"))
	assert.Equal(t, http.StatusForbidden, serve(h, ""))

	either := RequireAny(AssessmentViewOwn, AssessmentViewAll)(ok)
	assert.Equal(t, http.StatusOK, serve(either, "student"))
	assert.Equal(t, http.StatusOK, serve(either, "teacher"))

	both := RequireAll(StudentsView, StudentsAssign)(ok)
	assert.Equal(t, http.StatusOK, serve(both, "teacher"))
	assert.Equal(t, http.StatusForbidden, serve(both, "student"))
	assert.Equal(t, http.StatusForbidden, serve(RequireAll(StudentsView, AssessmentSubmit)(ok), "teacher"))

	owner := RequireOwnerOr(AssessmentViewAll, func(*http.Request) bool { return false })(ok)
	assert.Equal(t, http.StatusForbidden, serve(owner, "student"))
	assert.Equal(t, http.StatusOK, serve(owner, "teacher"))

	self := RequireOwnerOr(AssessmentViewAll, func(*http.Request) bool { return true })(ok)
	assert.Equal(t, http.StatusOK, serve(self, "student"))
}

func TestPermissionsSorted(t *testing.T) {
	got := Permissions("teacher")
	assert.Equal(t, []string{"analytics:*", AssessmentViewAll, MasteryViewAll, PathViewAll, "students:*"}, got)
	assert.Empty(t, Permissions("nobody"))
}
