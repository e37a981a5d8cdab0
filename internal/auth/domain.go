package auth

import "github.com/educontrol/educontrol/internal/rbac"

// Identity is the authenticated principal of one browser session. Empty
// strings mean absent; Role is anonymous exactly when UserID is empty.
type Identity struct {
	UserID      string
	Role        rbac.Role
	DisplayName string
	// SubjectID is the student's RUT, used to scope student-specific queries.
	SubjectID string
}

// Anonymous is the identity of a visitor who has not logged in.
var Anonymous = Identity{}

// Authenticated reports whether the identity carries a role.
func (i Identity) Authenticated() bool {
	return i.Role.Authenticated()
}

// PrincipalID implements rbac.Principal.
func (i Identity) PrincipalID() string {
	return i.UserID
}

// CurrentRole implements rbac.Principal.
func (i Identity) CurrentRole() rbac.Role {
	return i.Role
}

// VisibleSections lists the sections the identity may navigate to.
func (i Identity) VisibleSections() []rbac.Section {
	return rbac.VisibleSections(i.Role)
}

var _ rbac.Principal = Identity{}
