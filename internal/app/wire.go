package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/guard"
	"github.com/rosterdesk/platform/internal/handler"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/service"
	"github.com/rosterdesk/platform/internal/tenant"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store  datastore.Store
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	// Events receives domain events; nil drops them.
	Events service.EventPublisher

	CORSOrigins     []string
	InviteTTL       time.Duration
	InviteRateLimit int // per organization per hour
	OrgCacheSize    int
	OrgCacheTTL     time.Duration

	// Now and NewToken default to time.Now and uuid.NewString.
	Now      func() time.Time
	NewToken func() string
}

// Router is the assembled HTTP surface plus the services background jobs need.
type Router struct {
	chi.Router
	Invitations *service.InvitationService
	Memberships *tenant.CachedLookup
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) *Router {
	logger := deps.Logger
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newToken := deps.NewToken
	if newToken == nil {
		newToken = uuid.NewString
	}

	// Repositories
	repos := repository.New(deps.Store, now)
	memberships := tenant.NewCachedLookup(repos.Members, deps.OrgCacheSize, deps.OrgCacheTTL)

	// Services
	orgSvc := service.NewOrganizationService(repos.Organizations, repos.Members, deps.Events, memberships, now, logger)
	athleteSvc := service.NewAthleteService(repos.Athletes, logger)
	contactSvc := service.NewContactService(repos.Contacts, logger)
	contractSvc := service.NewContractService(repos.Contracts, repos.Athletes, deps.Events, now, logger)
	calendarSvc := service.NewCalendarService(repos.Calendar, repos.Contacts, repos.Athletes, logger)
	invitationSvc := service.NewInvitationService(repos.Invitations, repos.Members, deps.Events, memberships,
		service.InvitationConfig{TTL: deps.InviteTTL, Now: now, NewToken: newToken}, logger)

	// Guards
	invitesPerOrg := guard.NewRateLimiter(deps.InviteRateLimit, time.Hour).WithClock(now)
	publicInvites := guard.NewRateLimiter(30, time.Minute).WithClock(now)

	// Handlers
	orgHandler := handler.NewOrganizationHandler(orgSvc, memberships)
	athleteHandler := handler.NewAthleteHandler(athleteSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	contractHandler := handler.NewContractHandler(contractSvc, now)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	invitationHandler := handler.NewInvitationHandler(invitationSvc, invitesPerOrg)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(handler.JSONContentType)

	// Health + metrics (no auth)
	r.Get("/health", handler.HealthHandler(deps.Store))
	r.Method(http.MethodGet, "/metrics", handler.MetricsHandler())

	// Public invitation flow
	r.Route("/invitations/{token}", func(r chi.Router) {
		r.Use(handler.RateLimit("invitations", publicInvites))
		r.Get("/", invitationHandler.Preview)
		r.With(auth.Authenticate(deps.JWTMgr)).Post("/accept", invitationHandler.Accept)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(deps.JWTMgr))

		// Token only: callers may not belong to an organization yet.
		r.Post("/organizations", orgHandler.Create)
		r.Get("/organizations", orgHandler.ListMine)

		r.Group(func(r chi.Router) {
			r.Use(handler.ResolveTenant(memberships, logger))
			can := func(p auth.Permission) func(http.Handler) http.Handler {
				return auth.RequirePermission(tenant.RoleFromContext, p)
			}

			r.Get("/me", orgHandler.Me)
			r.Post("/me/refresh", orgHandler.Refresh)

			r.Route("/organization", func(r chi.Router) {
				r.Get("/", orgHandler.Get)
				r.With(can(auth.PermManageOrganization)).Patch("/", orgHandler.Update)
				r.Route("/members", func(r chi.Router) {
					r.Use(can(auth.PermManageMembers))
					r.Get("/", orgHandler.Members)
					r.Patch("/{id}", orgHandler.ChangeMemberRole)
					r.Delete("/{id}", orgHandler.RemoveMember)
				})
			})

			r.Route("/athletes", func(r chi.Router) {
				r.With(can(auth.PermViewAthletes)).Get("/", athleteHandler.List)
				r.With(can(auth.PermManageAthletes)).Post("/", athleteHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.With(can(auth.PermViewAthletes)).Get("/", athleteHandler.Get)
					r.With(can(auth.PermManageAthletes)).Put("/", athleteHandler.Update)
					r.With(can(auth.PermDeleteAthletes)).Delete("/", athleteHandler.Delete)
					r.With(can(auth.PermManageAthletes)).Patch("/events/{index}/fulfilled", athleteHandler.ToggleEventFulfilled)
					r.With(can(auth.PermViewAthletes)).Get("/scouting-reports", athleteHandler.ScoutingReports)
				})
			})

			r.Route("/contacts", func(r chi.Router) {
				r.With(can(auth.PermViewContacts)).Get("/", contactHandler.List)
				r.With(can(auth.PermManageContacts)).Post("/", contactHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.With(can(auth.PermViewContacts)).Get("/", contactHandler.Get)
					r.With(can(auth.PermManageContacts)).Put("/", contactHandler.Update)
					r.With(can(auth.PermManageContacts)).Delete("/", contactHandler.Delete)
				})
			})

			r.Route("/contracts", func(r chi.Router) {
				r.With(can(auth.PermViewContracts)).Get("/", contractHandler.List)
				r.With(can(auth.PermManageContracts)).Post("/", contractHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.With(can(auth.PermViewContracts)).Get("/", contractHandler.Get)
					r.With(can(auth.PermManageContracts)).Put("/", contractHandler.Update)
					r.With(can(auth.PermManageContracts)).Delete("/", contractHandler.Delete)
					r.With(can(auth.PermManageContracts)).Patch("/payments/{index}/paid", contractHandler.TogglePaymentPaid)
					r.With(can(auth.PermViewFinancials)).Get("/pdf", contractHandler.PDF)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.With(can(auth.PermViewCalendar)).Get("/", calendarHandler.Month)
				r.With(can(auth.PermViewCalendar)).Get("/overview", calendarHandler.Overview)

				r.Route("/events", func(r chi.Router) {
					r.With(can(auth.PermManageCalendar)).Post("/", calendarHandler.CreateEvent)
					r.Route("/{id}", func(r chi.Router) {
						r.With(can(auth.PermViewCalendar)).Get("/", calendarHandler.GetEvent)
						r.Group(func(r chi.Router) {
							r.Use(can(auth.PermManageCalendar))
							r.Put("/", calendarHandler.UpdateEvent)
							r.Delete("/", calendarHandler.DeleteEvent)
							r.Patch("/fulfilled", calendarHandler.ToggleEventFulfilled)
							r.Post("/attending-members", calendarHandler.AddAttendingMember)
							r.Delete("/attending-members/{contactID}", calendarHandler.RemoveAttendingMember)
						})
					})
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Use(can(auth.PermManageCalendar))
					r.Post("/", calendarHandler.CreateTask)
					r.Put("/{id}", calendarHandler.UpdateTask)
					r.Delete("/{id}", calendarHandler.DeleteTask)
					r.Patch("/{id}/completed", calendarHandler.ToggleTaskCompleted)
				})
			})

			r.Route("/invitations", func(r chi.Router) {
				r.Use(can(auth.PermInviteMembers))
				r.Post("/", invitationHandler.Create)
				r.Get("/", invitationHandler.ListPending)
				r.Delete("/{id}", invitationHandler.Revoke)
			})
		})
	})

	return &Router{Router: r, Invitations: invitationSvc, Memberships: memberships}
}
