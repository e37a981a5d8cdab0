package rbac

// VisibleSections returns the sections a role may navigate to, in
// navigation order. Anonymous visitors see nothing.
func VisibleSections(role Role) []Section {
	switch role {
	case RoleAdmin:
		return []Section{
			SectionCourses,
			SectionAttendance,
			SectionUserManagement,
			SectionEnrollment,
			SectionRoleManagement,
			SectionFinance,
			SectionScholarships,
		}
	case RoleSubAdmin:
		return []Section{
			SectionCourses,
			SectionAttendance,
			SectionUserManagement,
			SectionEnrollment,
			SectionFinance,
			SectionScholarships,
		}
	case RoleStudent:
		return []Section{
			SectionFinance,
			SectionScholarships,
			SectionProfile,
		}
	case RoleAnonymous:
		return nil
	default:
		return nil
	}
}

// CanAccess reports whether section is part of the role's capability set.
func CanAccess(role Role, section Section) bool {
	for _, s := range VisibleSections(role) {
		if s == section {
			return true
		}
	}
	return false
}

// Navigation builds the navigation links for role.
func Navigation(role Role) []NavItem {
	visible := VisibleSections(role)
	items := make([]NavItem, 0, len(visible))
	for _, s := range visible {
		items = append(items, NavItem{Section: s, Label: s.Label(), Path: s.Path()})
	}
	return items
}
