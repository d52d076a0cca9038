// Package admin serves the server-rendered administration pages: entity
// forms, relation panels and the live game play page. Page interaction state
// travels in the URL (see uistate); only the game play selection is stored
// per client.
package admin

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/vladpavlovski/phm-sub006/internal/boundary"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/form"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/panel"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
	"github.com/vladpavlovski/phm-sub006/internal/routes"
)

//go:embed templates/*.html
var templateFS embed.FS

// ClientCookie identifies a browser for stored preferences.
const ClientCookie = "phm_client"

// Raw HTML in descriptions is escaped: WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Deps are the collaborators of the admin pages.
type Deps struct {
	Store    graph.Store
	Catalog  *catalog.Catalog
	Prefs    prefs.Store
	Boundary *boundary.Boundary
	Logger   *slog.Logger
}

// Handler serves the admin surface.
type Handler struct {
	store  graph.Store
	cat    *catalog.Catalog
	prefs  prefs.Store
	engine *panel.Engine
	bnd    *boundary.Boundary
	logger *slog.Logger
	pages  map[string]*template.Template
}

// New parses the page templates.
func New(d Deps) (*Handler, error) {
	h := &Handler{
		store:  d.Store,
		cat:    d.Catalog,
		prefs:  d.Prefs,
		engine: panel.New(d.Store, d.Catalog),
		bnd:    d.Boundary,
		logger: d.Logger,
		pages:  map[string]*template.Template{},
	}
	if h.bnd == nil {
		h.bnd = boundary.New(boundary.LogReporter{Logger: d.Logger})
	}
	funcs := template.FuncMap{
		"control":  form.HTML,
		"markdown": renderMarkdown,
	}
	for _, name := range []string{"dashboard", "list", "entity", "game"} {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		h.pages[name] = tpl
	}
	return h, nil
}

// Routes returns the admin router, to be mounted at routes.Prefix.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.bnd.Middleware)
	r.Use(clientCookie)

	r.Get("/{org}", h.dashboard)
	r.Get("/{org}/games/{id}/play", h.gamePlay)
	r.Post("/{org}/games/{id}/play/period", h.setPeriod)
	r.Get("/{org}/{entity}", h.list)
	r.Post("/{org}/{entity}", h.create)
	r.Get("/{org}/{entity}/{id}", h.detail)
	r.Post("/{org}/{entity}/{id}", h.update)
	r.Post("/{org}/{entity}/{id}/delete", h.remove)
	r.Post("/{org}/{entity}/{id}/relations/{relation}/{action}", h.relationAction)
	return r
}

// --------------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------------

// page is the data shared by every template.
type page struct {
	Title     string
	Org       string
	OrgLink   string
	CSRFField template.HTML
	Flash     string
}

func (h *Handler) newPage(r *http.Request, title string) page {
	org := chi.URLParam(r, "org")
	return page{
		Title:     title,
		Org:       org,
		OrgLink:   routes.Organization(org),
		CSRFField: csrf.TemplateField(r),
	}
}

// render executes a page under the error boundary: a template failure shows
// the fallback page instead of a half-written document.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tpl := h.pages[name]
	h.bnd.Render(w, r, func(w http.ResponseWriter) error {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		return tpl.ExecuteTemplate(w, "layout", data)
	})
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// statusFor maps a failed operation to the status of the re-rendered page.
func statusFor(err error) int {
	switch {
	case form.IsFieldError(err),
		errors.Is(err, panel.ErrMissingTarget),
		errors.Is(err, panel.ErrNotConnected),
		errors.Is(err, panel.ErrUnknownAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrUnknownEntity), errors.Is(err, graph.ErrUnknownRelation):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// --------------------------------------------------------------------------
// Client identity
// --------------------------------------------------------------------------

type clientKey struct{}

// clientCookie issues the client id cookie on first visit and exposes the id
// through the request context.
func clientCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     routes.Prefix,
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, id)))
	})
}

// ClientID returns the client id set by the admin router.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientKey{}).(string)
	return id
}
