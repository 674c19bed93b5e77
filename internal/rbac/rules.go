package rbac

const (
	ExerciseGenerate  = "exercise:generate"
	AssessmentSubmit  = "assessment:submit"
	AssessmentViewOwn = "assessment:view-own"
	AssessmentViewAll = "assessment:view-all"
	PathViewOwn       = "path:view-own"
	PathViewAll       = "path:view-all"
	DiagnosticTake    = "diagnostic:take"
	ProfileEditOwn    = "profile:edit-own"
	MasteryViewOwn    = "mastery:view-own"
	MasteryViewAll    = "mastery:view-all"
	InterventionsOwn  = "interventions:view-own"
	AnalyticsView     = "analytics:view"
	EventsView        = "analytics:events"
	StudentsView      = "students:view"
	StudentsAssign    = "students:assign"
)

// RolePermissions is the default policy. Patterns ending in "*" match by prefix.
var RolePermissions = map[string][]string{
	"student": {
		ExerciseGenerate,
		AssessmentSubmit,
		AssessmentViewOwn,
		PathViewOwn,
		DiagnosticTake,
		ProfileEditOwn,
		MasteryViewOwn,
		InterventionsOwn,
	},
	"teacher": {
		AssessmentViewAll,
		PathViewAll,
		MasteryViewAll,
		"analytics:*",
		"students:*",
	},
}
