package api

import "dispatch-console/api/handlers"

type routeHandlers struct {
	auth          *handlers.AuthHandler
	reports       *handlers.ReportsHandler
	officers      *handlers.OfficersHandler
	categories    *handlers.CategoriesHandler
	directory     *handlers.DirectoryHandler
	users         *handlers.UsersHandler
	dashboard     *handlers.DashboardHandler
	notifications *handlers.NotificationsHandler
	events        *handlers.EventsHandler
	files         *handlers.FilesHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	h := routeHandlers{
		auth:          handlers.NewAuthHandler(s.cfg, s.users, s.sessions, s.sessionManager, s.audits, s.logger),
		reports:       handlers.NewReportsHandler(s.cfg, s.reportsStore, s.categories, s.bench, s.attachSvc, s.downloader, s.audits, s.logger),
		officers:      handlers.NewOfficersHandler(s.officers, s.mailSvc, s.audits, s.logger),
		categories:    handlers.NewCategoriesHandler(s.categories, s.audits, s.logger),
		directory:     handlers.NewDirectoryHandler(s.directory, s.audits, s.logger),
		users:         handlers.NewUsersHandler(s.users, s.audits, s.logger),
		dashboard:     handlers.NewDashboardHandler(s.cfg, s.reportsStore, s.officers, s.sessions, s.bench, s.audits, s.logger),
		notifications: handlers.NewNotificationsHandler(s.notifications, s.hub, s.logger),
		events:        handlers.NewEventsHandler(s.hub, s.logger),
	}
	if s.localResolver != nil {
		h.files = handlers.NewFilesHandler(s.localResolver, s.logger)
	}
	return h
}
