package http

import (
	"log/slog"
	"net/http"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/config"
	"github.com/devie/nexaflow-crm/internal/currency"
	"github.com/devie/nexaflow-crm/internal/dashboard"
	"github.com/devie/nexaflow-crm/internal/http/handler"
	mw "github.com/devie/nexaflow-crm/internal/http/middleware"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, conv *currency.Converter, invSvc *invoice.Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger(log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	contacts := &handler.ContactHandler{DB: db}
	projects := &handler.ProjectHandler{DB: db, Summary: &project.SummaryService{DB: db}}
	milestones := &handler.MilestoneHandler{DB: db}
	assignments := &handler.ProjectContactHandler{DB: db}
	invoices := &handler.InvoiceHandler{DB: db}
	workflow := &handler.InvoiceWorkflowHandler{Svc: invSvc}
	dash := &handler.DashboardHandler{DB: db, Svc: &dashboard.Service{DB: db, Converter: conv}}
	currencies := &handler.CurrencyHandler{Converter: conv}
	logs := &handler.CommLogHandler{DB: db}

	// The pixel endpoint is hit from email clients with no credentials.
	r.Get("/track/open/{token}", workflow.TrackOpen)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/me", me.Me)
		r.Patch("/me", me.Update)

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", contacts.Create)
			r.Get("/", contacts.List)
			r.Get("/{id}", contacts.Get)
			r.Put("/{id}", contacts.Update)
			r.Delete("/{id}", contacts.Delete)
			r.Get("/{id}/history", logs.ContactHistory)
			r.Get("/{id}/projects", assignments.ContactProjects)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projects.Create)
			r.Get("/", projects.List)
			r.Get("/{id}", projects.Get)
			r.Put("/{id}", projects.Update)
			r.Delete("/{id}", projects.Delete)
			r.Get("/{id}/summary", projects.Summarize)
			r.Get("/{id}/history", logs.ProjectHistory)

			r.Post("/{id}/milestones", milestones.Create)
			r.Get("/{id}/milestones", milestones.List)
			r.Put("/{id}/milestones/{milestoneID}", milestones.Update)
			r.Delete("/{id}/milestones/{milestoneID}", milestones.Delete)
			r.Patch("/{id}/milestones/{milestoneID}/complete", milestones.Complete)

			r.Post("/{id}/contacts", assignments.Assign)
			r.Get("/{id}/contacts", assignments.List)
			r.Put("/{id}/contacts/{contactID}", assignments.UpdateRole)
			r.Delete("/{id}/contacts/{contactID}", assignments.Remove)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", invoices.Create)
			r.Get("/", invoices.List)
			r.Get("/{id}", invoices.Get)
			r.Put("/{id}", invoices.Update)
			r.Delete("/{id}", invoices.Delete)

			r.Post("/{id}/line-items", workflow.AddLineItem)
			r.Get("/{id}/line-items", workflow.ListLineItems)
			r.Delete("/{id}/line-items/{itemID}", workflow.RemoveLineItem)

			r.Get("/{id}/preview", workflow.Preview)
			r.Get("/{id}/pdf", workflow.PDF)
			r.Post("/{id}/send", workflow.Send)
		})

		r.Get("/dashboard", dash.Stats)

		r.Get("/currencies/supported", currencies.Supported)
		r.Get("/currencies/rates", currencies.Rates)

		r.Post("/communication-log", logs.Create)
	})

	return r
}
