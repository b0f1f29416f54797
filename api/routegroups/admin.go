package routegroups

import (
	"github.com/go-chi/chi/v5"

	"dispatch-console/api/handlers"
)

func RegisterOfficers(apiRouter chi.Router, g Guards, officers *handlers.OfficersHandler) {
	apiRouter.Route("/officers", func(officersRouter chi.Router) {
		officersRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", officers.List))
		officersRouter.MethodFunc("POST", "/", g.SessionPerm("officers.manage", officers.Create))
		officersRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("reports.view", officers.Get))
		officersRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("officers.manage", officers.Update))
		officersRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("officers.manage", officers.Delete))
	})
	apiRouter.MethodFunc("POST", "/send-officer-email", g.SessionPerm("officers.manage", officers.SendEmail))
}

func RegisterCategories(apiRouter chi.Router, g Guards, categories *handlers.CategoriesHandler) {
	apiRouter.Route("/categories", func(categoriesRouter chi.Router) {
		categoriesRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", categories.List))
		categoriesRouter.MethodFunc("POST", "/", g.SessionPerm("directory.edit", categories.Create))
		categoriesRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("reports.view", categories.Get))
		categoriesRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("directory.edit", categories.Update))
		categoriesRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("directory.edit", categories.Delete))
	})
}

func RegisterDirectory(apiRouter chi.Router, g Guards, directory *handlers.DirectoryHandler) {
	apiRouter.Route("/barangays", func(barangaysRouter chi.Router) {
		barangaysRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", directory.ListBarangays))
		barangaysRouter.MethodFunc("POST", "/", g.SessionPerm("directory.edit", directory.CreateBarangay))
		barangaysRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("directory.edit", directory.UpdateBarangay))
		barangaysRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("directory.edit", directory.DeleteBarangay))
	})
	apiRouter.Route("/hotlines", func(hotlinesRouter chi.Router) {
		hotlinesRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", directory.ListHotlines))
		hotlinesRouter.MethodFunc("POST", "/", g.SessionPerm("directory.edit", directory.CreateHotline))
		hotlinesRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("directory.edit", directory.UpdateHotline))
		hotlinesRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("directory.edit", directory.DeleteHotline))
	})
}

func RegisterUsers(apiRouter chi.Router, g Guards, users *handlers.UsersHandler) {
	apiRouter.Route("/users", func(usersRouter chi.Router) {
		usersRouter.MethodFunc("GET", "/", g.SessionPerm("users.manage", users.List))
		usersRouter.MethodFunc("POST", "/", g.SessionPerm("users.manage", users.Create))
		usersRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("users.manage", users.Update))
		usersRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("users.manage", users.Deactivate))
	})
}

func RegisterDashboard(apiRouter chi.Router, g Guards, dashboard *handlers.DashboardHandler, notifications *handlers.NotificationsHandler, events *handlers.EventsHandler) {
	apiRouter.MethodFunc("GET", "/dashboard/stats", g.SessionPerm("reports.view", dashboard.Stats))
	apiRouter.MethodFunc("GET", "/audit", g.SessionPerm("audit.view", dashboard.AuditLog))
	apiRouter.Route("/notifications", func(notificationsRouter chi.Router) {
		notificationsRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", notifications.List))
		notificationsRouter.MethodFunc("POST", "/", g.SessionPerm("reports.manage", notifications.Send))
		notificationsRouter.MethodFunc("POST", "/{id:[0-9]+}/read", g.SessionPerm("reports.view", notifications.MarkRead))
	})
	apiRouter.MethodFunc("GET", "/events", g.SessionPerm("reports.view", events.Stream))
}
