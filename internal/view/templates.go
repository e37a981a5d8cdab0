package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/educontrol/educontrol/internal/rbac"
	"github.com/educontrol/educontrol/internal/shared"
	"github.com/educontrol/educontrol/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// Viewer is the read-only identity snapshot the layout needs to draw the
// header and the navigation.
type Viewer struct {
	Authenticated bool
	UserID        string
	DisplayName   string
	SubjectID     string
	RoleLabel     string
	Nav           []rbac.NavItem
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Viewer      Viewer
	Data        any
}

var chilean = message.NewPrinter(language.MustParse("es-CL"))

// FormatRUT renders a Chilean RUT with thousands separators, e.g.
// "12345678-9" as "12.345.678-9". Anything that is not a RUT is returned
// unchanged.
func FormatRUT(rut string) string {
	body, dv, ok := strings.Cut(strings.ReplaceAll(strings.TrimSpace(rut), ".", ""), "-")
	if !ok || len(body) == 0 || len(body) > 9 || len(dv) != 1 || !strings.ContainsAny(dv, "0123456789kK") {
		return rut
	}
	n, err := strconv.ParseUint(body, 10, 32)
	if err != nil {
		return rut
	}
	return chilean.Sprint(number.Decimal(int64(n))) + "-" + strings.ToUpper(dv)
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatRUT": FormatRUT,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
