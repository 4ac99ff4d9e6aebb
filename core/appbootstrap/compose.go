package appbootstrap

import (
	"database/sql"

	"github.com/Wazadriano/bow-tavira-sub002/api"
	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/importer"
	"github.com/Wazadriano/bow-tavira-sub002/core/notify"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type runtimeComposition struct {
	serverDeps   api.ServerDeps
	sessions     store.SessionStore
	importRunner *importer.Runner
	workers      []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audits := store.NewAuditStore(db)
	risks := store.NewRisksStore(db)
	workItems := store.NewWorkItemsStore(db)
	governance := store.NewGovernanceItemsStore(db)
	suppliers := store.NewSuppliersStore(db)
	notifications := store.NewNotificationsStore(db)

	sessionManager := auth.NewSessionManager(sessions, cfg, logger)
	policy := rbac.NewPolicy(rbac.DefaultRoles())
	notifySvc := notify.NewService(notifications, logger)

	importDeps := importer.Deps{
		Risks:      risks,
		WorkItems:  workItems,
		Governance: governance,
		Suppliers:  suppliers,
		Users:      users,
		Audits:     audits,
		Notify:     notifySvc,
	}
	importProgress := importer.NewProgressStore(cfg.Imports.ProgressTTL)
	importRunner := importer.NewRunner(importDeps, importProgress, cfg.Imports.ErrorCap, logger)

	reminders := notify.NewReminders(cfg.Reminders, workItems, governance, risks, notifySvc, logger)

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Users:          users,
			Sessions:       sessions,
			Audits:         audits,
			Risks:          risks,
			WorkItems:      workItems,
			Governance:     governance,
			Suppliers:      suppliers,
			Notifications:  notifications,
			SessionManager: sessionManager,
			Policy:         policy,
			ImportRunner:   importRunner,
			ImportProgress: importProgress,
			ImportDeps:     importDeps,
		},
		sessions:     sessions,
		importRunner: importRunner,
		workers:      []api.BackgroundWorker{reminders},
	}, nil
}
