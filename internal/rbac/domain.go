package rbac

import "strings"

// Role is the closed set of portal roles. The zero value is anonymous.
type Role uint8

const (
	// RoleAnonymous marks a visitor without an authenticated identity.
	RoleAnonymous Role = iota
	// RoleAdmin is the school administrator.
	RoleAdmin
	// RoleSubAdmin is the sub-administrator: everything but role management.
	RoleSubAdmin
	// RoleStudent is an enrolled student.
	RoleStudent
)

// ParseRole maps the wire value returned by the school API to a Role.
func ParseRole(raw string) (Role, bool) {
	switch strings.TrimSpace(raw) {
	case "admi":
		return RoleAdmin, true
	case "subAdmi":
		return RoleSubAdmin, true
	case "alumno":
		return RoleStudent, true
	default:
		return RoleAnonymous, false
	}
}

// String returns the wire value. Anonymous renders as the empty string.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admi"
	case RoleSubAdmin:
		return "subAdmi"
	case RoleStudent:
		return "alumno"
	default:
		return ""
	}
}

// Label returns the display name shown in the header.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleSubAdmin:
		return "Subadministrador"
	case RoleStudent:
		return "Alumno"
	default:
		return "Invitado"
	}
}

// Authenticated reports whether the role belongs to a logged-in identity.
func (r Role) Authenticated() bool {
	return r != RoleAnonymous
}

// Section is a navigable area of the portal.
type Section uint8

const (
	SectionCourses Section = iota + 1
	SectionAttendance
	SectionUserManagement
	SectionEnrollment
	SectionRoleManagement
	SectionFinance
	SectionScholarships
	SectionProfile
)

// sections lists every routed section in navigation order.
var sections = []Section{
	SectionCourses,
	SectionAttendance,
	SectionUserManagement,
	SectionEnrollment,
	SectionRoleManagement,
	SectionFinance,
	SectionScholarships,
	SectionProfile,
}

// Sections returns every routed section in navigation order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// Slug returns a stable machine name for the section.
func (s Section) Slug() string {
	switch s {
	case SectionCourses:
		return "courses"
	case SectionAttendance:
		return "attendance"
	case SectionUserManagement:
		return "user-management"
	case SectionEnrollment:
		return "enrollment"
	case SectionRoleManagement:
		return "role-management"
	case SectionFinance:
		return "finance"
	case SectionScholarships:
		return "scholarships"
	case SectionProfile:
		return "profile"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (s Section) String() string {
	return s.Slug()
}

// Path returns the route the section is mounted on.
func (s Section) Path() string {
	switch s {
	case SectionCourses:
		return "/cursos"
	case SectionAttendance:
		return "/asistencia"
	case SectionUserManagement:
		return "/crear-usuario"
	case SectionEnrollment:
		return "/matricula-alumno"
	case SectionRoleManagement:
		return "/nuevo-tipo-usuario"
	case SectionFinance:
		return "/finanzas"
	case SectionScholarships:
		return "/becas"
	case SectionProfile:
		return "/perfil"
	default:
		return ""
	}
}

// Label returns the navigation caption.
func (s Section) Label() string {
	switch s {
	case SectionCourses:
		return "Cursos"
	case SectionAttendance:
		return "Asistencia"
	case SectionUserManagement:
		return "Crear Usuario"
	case SectionEnrollment:
		return "Matricular Alumno"
	case SectionRoleManagement:
		return "Añadir Tipo de Usuario"
	case SectionFinance:
		return "Finanzas"
	case SectionScholarships:
		return "Becas"
	case SectionProfile:
		return "Perfil"
	default:
		return ""
	}
}

// Principal describes the authenticated actor as seen by authorization code.
type Principal interface {
	PrincipalID() string
	CurrentRole() Role
}

// NavItem is one navigation link.
type NavItem struct {
	Section Section
	Label   string
	Path    string
}
