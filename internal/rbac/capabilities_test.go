package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"admi", RoleAdmin, true},
		{"subAdmi", RoleSubAdmin, true},
		{"alumno", RoleStudent, true},
		{" alumno ", RoleStudent, true},
		{"Admi", RoleAnonymous, false},
		{"admin", RoleAnonymous, false},
		{"", RoleAnonymous, false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.raw)
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %q", tc.raw)
	}
}

func TestRoleStringRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleSubAdmin, RoleStudent} {
		parsed, ok := ParseRole(role.String())
		require.True(t, ok)
		assert.Equal(t, role, parsed)
		assert.True(t, role.Authenticated())
	}
	assert.Empty(t, RoleAnonymous.String())
	assert.False(t, RoleAnonymous.Authenticated())
}

func TestVisibleSectionsStudent(t *testing.T) {
	got := VisibleSections(RoleStudent)
	assert.ElementsMatch(t, []Section{SectionFinance, SectionScholarships, SectionProfile}, got)
	for _, hidden := range []Section{SectionCourses, SectionAttendance, SectionUserManagement} {
		assert.NotContains(t, got, hidden)
	}
}

func TestVisibleSectionsAdmin(t *testing.T) {
	got := VisibleSections(RoleAdmin)
	assert.ElementsMatch(t, []Section{
		SectionEnrollment,
		SectionFinance,
		SectionScholarships,
		SectionAttendance,
		SectionCourses,
		SectionUserManagement,
		SectionRoleManagement,
	}, got)
}

func TestVisibleSectionsSubAdminIsAdminWithoutRoleManagement(t *testing.T) {
	admin := VisibleSections(RoleAdmin)
	sub := VisibleSections(RoleSubAdmin)

	var expected []Section
	for _, s := range admin {
		if s != SectionRoleManagement {
			expected = append(expected, s)
		}
	}
	assert.Equal(t, expected, sub)
	assert.NotContains(t, sub, SectionRoleManagement)
}

func TestVisibleSectionsAnonymous(t *testing.T) {
	assert.Empty(t, VisibleSections(RoleAnonymous))
	assert.Empty(t, Navigation(RoleAnonymous))
}

func TestVisibleSectionsAreRouted(t *testing.T) {
	routed := Sections()
	paths := make(map[string]Section, len(routed))
	for _, s := range routed {
		require.NotEmpty(t, s.Path(), "section %d has no path", s)
		require.NotEmpty(t, s.Label())
		_, dup := paths[s.Path()]
		require.False(t, dup, "duplicate path %s", s.Path())
		paths[s.Path()] = s
	}
	for _, role := range []Role{RoleAdmin, RoleSubAdmin, RoleStudent} {
		for _, s := range VisibleSections(role) {
			assert.Contains(t, routed, s, "role %s sees unrouted section %s", role, s)
		}
	}
}

func TestNavigationMatchesVisibleSections(t *testing.T) {
	items := Navigation(RoleSubAdmin)
	visible := VisibleSections(RoleSubAdmin)
	require.Len(t, items, len(visible))
	for i, item := range items {
		assert.Equal(t, visible[i], item.Section)
		assert.Equal(t, visible[i].Path(), item.Path)
		assert.Equal(t, visible[i].Label(), item.Label)
	}
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(RoleAdmin, SectionRoleManagement))
	assert.False(t, CanAccess(RoleSubAdmin, SectionRoleManagement))
	assert.True(t, CanAccess(RoleStudent, SectionProfile))
	assert.False(t, CanAccess(RoleStudent, SectionCourses))
	assert.False(t, CanAccess(RoleAnonymous, SectionFinance))
}
