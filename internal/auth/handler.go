package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/educontrol/educontrol/internal/platform/httpx"
	"github.com/educontrol/educontrol/internal/shared"
	"github.com/educontrol/educontrol/internal/view"
)

// MessageInvalidCredentials is the only failure message shown on login;
// rejected credentials and an unreachable API look the same to the user.
const MessageInvalidCredentials = "Credenciales incorrectas"

// MessageSessionUnavailable is shown when the credentials were accepted but
// the session cannot outlive the request.
const MessageSessionUnavailable = "No es posible mantener la sesión en este momento. Intente nuevamente más tarde."

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	events      EventPublisher
	loginLimit  int
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance. events may be nil; loginLimit
// caps login submissions per IP and minute, zero disables the cap.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, events EventPublisher, loginLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		templates:   templates,
		csrfManager: csrf,
		events:      events,
		loginLimit:  loginLimit,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	if h.loginLimit > 0 {
		r.With(httprate.Limit(h.loginLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/logout", h.handleLogout)
	r.Get("/api/session", h.showSession)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if IdentityFromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{Form: loginForm{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	gate := GateFromContext(r.Context())
	if gate == nil {
		h.logger.Error("gate missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				errors[fieldErr.Field()] = fieldMessage(fieldErr)
			}
		} else {
			errors["general"] = MessageInvalidCredentials
		}
	}

	if len(errors) == 0 {
		if gate.Login(r.Context(), form.Email, form.Password) {
			identity := gate.Identity()
			h.publish(r, SessionEvent{Kind: EventLogin, UserID: identity.UserID, Role: identity.Role.String()})
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.Ephemeral() {
				h.logger.Warn("login accepted without durable session", slog.String("user_id", identity.UserID))
				form.Password = ""
				h.renderLogin(w, r, loginPageData{Form: form, Errors: map[string]string{"general": MessageSessionUnavailable}}, http.StatusServiceUnavailable)
				return
			}
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: welcomeMessage(identity)})
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.publish(r, SessionEvent{Kind: EventLoginFailed, Credential: form.Email})
		errors["general"] = MessageInvalidCredentials
	}

	form.Password = ""
	h.renderLogin(w, r, loginPageData{Form: form, Errors: errors}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if gate := GateFromContext(r.Context()); gate != nil {
		previous := gate.Identity()
		gate.Logout()
		if previous.Authenticated() {
			h.publish(r, SessionEvent{Kind: EventLogout, UserID: previous.UserID, Role: previous.Role.String()})
		}
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "info", Message: "Sesión cerrada"})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type sessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"userId,omitempty"`
	Role          string   `json:"role,omitempty"`
	DisplayName   string   `json:"displayName,omitempty"`
	SubjectID     string   `json:"subjectId,omitempty"`
	Sections      []string `json:"sections"`
}

func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	visible := identity.VisibleSections()
	sections := make([]string, 0, len(visible))
	for _, s := range visible {
		sections = append(sections, s.Slug())
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: identity.Authenticated(),
		UserID:        identity.UserID,
		Role:          identity.Role.String(),
		DisplayName:   identity.DisplayName,
		SubjectID:     identity.SubjectID,
		Sections:      sections,
	})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Iniciar Sesión",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Viewer:      ViewerFromContext(r.Context()),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

func (h *Handler) publish(r *http.Request, event SessionEvent) {
	if h.events == nil {
		return
	}
	event.RemoteAddr = r.RemoteAddr
	event.UserAgent = r.UserAgent()
	event.OccurredAt = time.Now().UTC()
	if err := h.events.PublishSessionEvent(r.Context(), event); err != nil {
		h.logger.Warn("publish session event", slog.String("kind", event.Kind), slog.Any("error", err))
	}
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "Campo obligatorio"
	case "email":
		return "Correo no válido"
	default:
		return err.Error()
	}
}

func welcomeMessage(id Identity) string {
	if id.DisplayName == "" {
		return "Bienvenido"
	}
	return "Bienvenido, " + id.DisplayName
}
