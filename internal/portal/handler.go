package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/educontrol/educontrol/internal/auth"
	"github.com/educontrol/educontrol/internal/rbac"
	"github.com/educontrol/educontrol/internal/shared"
	"github.com/educontrol/educontrol/internal/view"
)

// Handler serves the pages behind the login.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, templates: templates, csrf: csrf, rbac: guard}
}

// legacyProfilePath is where the previous front-end mounted the profile.
const legacyProfilePath = "/perfilA"

// MountRoutes registers the home page and one page per section.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(legacyProfilePath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rbac.SectionProfile.Path(), http.StatusMovedPermanently)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireIdentity)
		r.Get("/", h.showHome)
		for _, section := range rbac.Sections() {
			r.Get(section.Path(), h.showSection(section))
		}
	})
}

var summaries = map[rbac.Section]string{
	rbac.SectionCourses:        "Listado de cursos, profesores y alumnos inscritos.",
	rbac.SectionAttendance:     "Registro diario de asistencia por curso.",
	rbac.SectionUserManagement: "Alta de usuarios del sistema.",
	rbac.SectionEnrollment:     "Matrícula de alumnos y datos del apoderado.",
	rbac.SectionRoleManagement: "Definición de nuevos tipos de usuario.",
	rbac.SectionFinance:        "Aranceles, pagos y saldos pendientes.",
	rbac.SectionScholarships:   "Postulación y estado de becas.",
	rbac.SectionProfile:        "Datos del usuario conectado.",
}

func (h *Handler) showHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/home.html", "Inicio", nil)
}

func (h *Handler) showSection(section rbac.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if section == rbac.SectionProfile {
			h.render(w, r, "pages/profile.html", section.Label(), nil)
			return
		}
		h.render(w, r, "pages/section.html", section.Label(), map[string]any{
			"Section": section.Slug(),
			"Summary": summaries[section],
		})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Viewer:      auth.ViewerFromContext(r.Context()),
		Data:        data,
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
