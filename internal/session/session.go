// Package session owns sign-in against the backend credentials endpoint, the
// signed session cookie, and the single shared current-user provider. Pages
// never issue their own "who am I" calls; they read the session from context
// and ask this package for the profile.
package session

import (
	"context"
)

// Session is the authenticated state carried by the cookie: who the operator
// is plus the backend bearer token used for every API call on their behalf.
type Session struct {
	UserID string
	Email  string
	Name   string
	Role   string
	Token  string
}

func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

type sessionCtxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok
}

// Profile is the /api/me response: the signed-in user's record including the
// position that gates approval affordances.
type Profile struct {
	ID        string           `json:"id"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	Image     string           `json:"image"`
	Role      string           `json:"role"`
	Position  *ProfilePosition `json:"position"`
}

type ProfilePosition struct {
	ID            int64 `json:"id"`
	DepartmentID  int64 `json:"department_id"`
	DesignationID int64 `json:"designation_id"`
	SectionHead   bool  `json:"section_head"`
}

// IsSectionHead reports whether the operator's position carries folder
// approval authority.
func (p *Profile) IsSectionHead() bool {
	return p.Position != nil && p.Position.SectionHead
}

func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.FirstName + " " + p.LastName
}
