package appbootstrap

import (
	"database/sql"

	"dispatch-console/api"
	"dispatch-console/config"
	"dispatch-console/core/auth"
	"dispatch-console/core/mailer"
	"dispatch-console/core/rbac"
	"dispatch-console/core/realtime"
	"dispatch-console/core/reports"
	"dispatch-console/core/scheduler"
	"dispatch-console/core/storage"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	hub        *realtime.Hub
	scheduler  *scheduler.Scheduler
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audits := store.NewAuditStore(db)
	reportsStore := store.NewReportsStore(db)
	officers := store.NewOfficersStore(db)
	categories := store.NewCategoriesStore(db)
	directory := store.NewDirectoryStore(db)
	notifications := store.NewNotificationsStore(db)

	hub := realtime.NewHub(logger)
	bench := reports.NewWorkbench(reportsStore, officers, hub, logger)

	var (
		resolver storage.Resolver
		local    *storage.LocalResolver
		err      error
	)
	if cfg.Storage.Endpoint != "" {
		resolver, err = storage.NewMinioResolver(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		local, err = storage.NewLocalResolver(cfg)
		if err != nil {
			return nil, err
		}
		resolver = local
	}
	attachSvc := storage.NewService(resolver, logger)
	downloader := storage.NewDownloader(cfg.Reports.DownloadChunk, logger)

	mailSvc := mailer.NewService(mailer.NewSMTPSender(cfg.SMTP), logger)
	policy, err := rbac.NewPolicy(rbac.DefaultRoles())
	if err != nil {
		return nil, err
	}
	sched := scheduler.New(cfg.Scheduler, bench, sessions, logger)

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Users:          users,
			Sessions:       sessions,
			Audits:         audits,
			Reports:        reportsStore,
			Officers:       officers,
			Categories:     categories,
			Directory:      directory,
			Notifications:  notifications,
			Workbench:      bench,
			AttachSvc:      attachSvc,
			Downloader:     downloader,
			LocalResolver:  local,
			MailSvc:        mailSvc,
			Hub:            hub,
			SessionManager: auth.NewSessionManager(sessions, cfg, logger),
			Policy:         policy,
		},
		hub:       hub,
		scheduler: sched,
	}, nil
}
