package routegroups

import (
	"github.com/go-chi/chi/v5"

	"dispatch-console/api/handlers"
)

func RegisterReports(apiRouter chi.Router, g Guards, reports *handlers.ReportsHandler) {
	apiRouter.Route("/reports", func(reportsRouter chi.Router) {
		reportsRouter.MethodFunc("GET", "/", g.SessionPerm("reports.view", reports.List))
		reportsRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("reports.view", reports.Get))
		reportsRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("reports.manage", reports.Update))
		reportsRouter.MethodFunc("POST", "/{id:[0-9]+}/archive", g.SessionPerm("reports.manage", reports.Archive))
		reportsRouter.MethodFunc("POST", "/{id:[0-9]+}/restore", g.SessionPerm("reports.manage", reports.Restore))
		reportsRouter.MethodFunc("POST", "/{id:[0-9]+}/assign", g.SessionPerm("officers.manage", reports.AssignOfficers))
		reportsRouter.MethodFunc("DELETE", "/{id:[0-9]+}/assign/{officer_id:[0-9]+}", g.SessionPerm("officers.manage", reports.ReleaseOfficer))
		reportsRouter.MethodFunc("GET", "/{id:[0-9]+}/witnesses", g.SessionPerm("reports.view", reports.ListWitnesses))
		reportsRouter.MethodFunc("POST", "/{id:[0-9]+}/witnesses", g.SessionPerm("reports.manage", reports.AddWitness))
		reportsRouter.MethodFunc("DELETE", "/{id:[0-9]+}/witnesses/{witness_id:[0-9]+}", g.SessionPerm("reports.manage", reports.DeleteWitness))
		reportsRouter.MethodFunc("GET", "/{id:[0-9]+}/attachments", g.SessionPerm("reports.view", reports.Attachments))
		reportsRouter.MethodFunc("GET", "/{id:[0-9]+}/attachments/download", g.SessionPerm("reports.view", reports.Download))
		reportsRouter.MethodFunc("GET", "/{id:[0-9]+}/attachments/thumbnails", g.SessionPerm("reports.view", reports.Thumbnails))
		reportsRouter.MethodFunc("GET", "/merge", g.SessionPerm("reports.merge", reports.MergeState))
		reportsRouter.MethodFunc("POST", "/merge/begin", g.SessionPerm("reports.merge", reports.MergeBegin))
		reportsRouter.MethodFunc("POST", "/merge/cancel", g.SessionPerm("reports.merge", reports.MergeCancel))
		reportsRouter.MethodFunc("POST", "/merge/toggle/{id:[0-9]+}", g.SessionPerm("reports.merge", reports.MergeToggle))
		reportsRouter.MethodFunc("POST", "/merge/confirm", g.SessionPerm("reports.merge", reports.MergeConfirm))
		reportsRouter.MethodFunc("POST", "/merge/commit", g.SessionPerm("reports.merge", reports.MergeCommit))
	})
}
