package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dispatch-console/api/routegroups"
	"dispatch-console/config"
	"dispatch-console/core/auth"
	"dispatch-console/core/mailer"
	"dispatch-console/core/rbac"
	"dispatch-console/core/realtime"
	"dispatch-console/core/reports"
	"dispatch-console/core/storage"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type ServerDeps struct {
	Users         store.UsersStore
	Sessions      store.SessionStore
	Audits        store.AuditStore
	Reports       store.ReportsStore
	Officers      store.OfficersStore
	Categories    store.CategoriesStore
	Directory     store.DirectoryStore
	Notifications store.NotificationsStore

	Workbench      *reports.Workbench
	AttachSvc      *storage.Service
	Downloader     *storage.Downloader
	LocalResolver  *storage.LocalResolver
	MailSvc        *mailer.Service
	Hub            *realtime.Hub
	SessionManager *auth.SessionManager
	Policy         *rbac.Policy
}

type Server struct {
	cfg             *config.AppConfig
	logger          *utils.Logger
	activityTracker *sessionActivity

	users         store.UsersStore
	sessions      store.SessionStore
	audits        store.AuditStore
	reportsStore  store.ReportsStore
	officers      store.OfficersStore
	categories    store.CategoriesStore
	directory     store.DirectoryStore
	notifications store.NotificationsStore

	bench          *reports.Workbench
	attachSvc      *storage.Service
	downloader     *storage.Downloader
	localResolver  *storage.LocalResolver
	mailSvc        *mailer.Service
	hub            *realtime.Hub
	sessionManager *auth.SessionManager
	policy         *rbac.Policy
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Server{
		cfg:             cfg,
		logger:          logger,
		activityTracker: newSessionActivity(),
		users:           deps.Users,
		sessions:        deps.Sessions,
		audits:          deps.Audits,
		reportsStore:    deps.Reports,
		officers:        deps.Officers,
		categories:      deps.Categories,
		directory:       deps.Directory,
		notifications:   deps.Notifications,
		bench:           deps.Workbench,
		attachSvc:       deps.AttachSvc,
		downloader:      deps.Downloader,
		localResolver:   deps.LocalResolver,
		mailSvc:         deps.MailSvc,
		hub:             deps.Hub,
		sessionManager:  deps.SessionManager,
		policy:          deps.Policy,
	}
}

// Router assembles the full HTTP surface.
func (s *Server) Router() http.Handler {
	h := s.newRouteHandlers()
	guards := routegroups.Guards{
		WithSession: s.withSession,
		RequirePermission: func(p string) func(http.HandlerFunc) http.HandlerFunc {
			return s.requirePermission(rbac.Permission(p))
		},
	}

	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(s.jsonMiddleware)

		apiRouter.MethodFunc("POST", "/auth/login", s.rateLimitMiddleware(h.auth.Login))
		apiRouter.MethodFunc("POST", "/auth/logout", s.withSession(h.auth.Logout))
		apiRouter.MethodFunc("GET", "/auth/me", s.withSession(h.auth.Me))
		apiRouter.MethodFunc("POST", "/auth/change-password", s.withSession(h.auth.ChangePassword))
		apiRouter.MethodFunc("POST", "/auth/ping", s.withSession(h.auth.Ping))

		routegroups.RegisterReports(apiRouter, guards, h.reports)
		routegroups.RegisterOfficers(apiRouter, guards, h.officers)
		routegroups.RegisterCategories(apiRouter, guards, h.categories)
		routegroups.RegisterDirectory(apiRouter, guards, h.directory)
		routegroups.RegisterUsers(apiRouter, guards, h.users)
		routegroups.RegisterDashboard(apiRouter, guards, h.dashboard, h.notifications, h.events)

		// signed link token carries its own auth
		if h.files != nil {
			apiRouter.MethodFunc("GET", "/files", h.files.Serve)
		}
	})

	return r
}
