package auth

import "context"

// Kind tags which account table a principal lives in. It doubles as the
// RBAC role.
type Kind string

const (
	KindStudent Kind = "student"
	KindTeacher Kind = "teacher"
)

func (k Kind) Valid() bool { return k == KindStudent || k == KindTeacher }

// Principal is the authenticated caller, resolved from the bearer token
// before any handler runs.
type Principal struct {
	Kind  Kind   `json:"role"`
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

func (p Principal) IsStudent() bool { return p.Kind == KindStudent }
func (p Principal) IsTeacher() bool { return p.Kind == KindTeacher }

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
