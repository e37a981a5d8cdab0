package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educontrol/educontrol/internal/rbac"
	"github.com/educontrol/educontrol/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLayoutForAnonymousViewer(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/section.html", TemplateData{
		Title: "Finanzas",
		Data:  map[string]any{"Section": "finance", "Summary": "Resumen"},
	})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Contains(t, body, "Acceder")
	assert.NotContains(t, body, "Cerrar sesión")
	assert.NotContains(t, body, `class="navbar"`)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestRenderNavigationForViewer(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/home.html", TemplateData{
		Title:       "Inicio",
		CSRFToken:   "tok",
		CurrentPath: "/becas",
		Flash:       &shared.FlashMessage{Kind: "success", Message: "Bienvenido"},
		Viewer: Viewer{
			Authenticated: true,
			DisplayName:   "Ana",
			RoleLabel:     rbac.RoleStudent.Label(),
			Nav:           rbac.Navigation(rbac.RoleStudent),
		},
	})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Contains(t, body, "Cerrar sesión")
	assert.Contains(t, body, `href="/finanzas"`)
	assert.Contains(t, body, `href="/perfil"`)
	assert.NotContains(t, body, `href="/cursos"`)
	assert.Contains(t, body, "flash-success")
	assert.Contains(t, body, `name="csrf_token" value="tok"`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/missing.html", TemplateData{}))

	var nilEngine *Engine
	assert.Error(t, nilEngine.Render(httptest.NewRecorder(), "pages/home.html", TemplateData{}))
}

func TestFormatRUT(t *testing.T) {
	cases := map[string]string{
		"11111111-1":   "11.111.111-1",
		"7654321-k":    "7.654.321-K",
		"12.345.678-9": "12.345.678-9",
		" 9876543-2 ":  "9.876.543-2",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatRUT(in), in)
	}

	for _, raw := range []string{"", "-", "abc", "12345678", "12345678-", "12345678-99", "1234-x", "-1-1", "+1234567-1", "9223372036854775808-1", "1234567890-1"} {
		assert.Equal(t, raw, FormatRUT(raw), raw)
	}
}

func TestRenderProfileFormatsRUT(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, "pages/profile.html", TemplateData{
		Title:  "Perfil",
		Viewer: Viewer{Authenticated: true, RoleLabel: "Alumno", SubjectID: "11111111-1"},
	}))
	assert.Contains(t, rr.Body.String(), "11.111.111-1")
}
