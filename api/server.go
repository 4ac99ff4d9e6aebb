package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/importer"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

// ServerDeps is everything the HTTP layer needs, composed at startup.
type ServerDeps struct {
	Users          store.UsersStore
	Sessions       store.SessionStore
	Audits         store.AuditStore
	Risks          store.RisksStore
	WorkItems      store.WorkItemsStore
	Governance     store.WorkItemsStore
	Suppliers      store.SuppliersStore
	Notifications  store.NotificationsStore
	SessionManager *auth.SessionManager
	Policy         *rbac.Policy
	ImportRunner   *importer.Runner
	ImportProgress *importer.ProgressStore
	ImportDeps     importer.Deps
}

// BackgroundWorker is anything with a lifecycle tied to the server's.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context)
}

type Server struct {
	cfg    *config.AppConfig
	logger *utils.Logger

	users          store.UsersStore
	sessions       store.SessionStore
	audits         store.AuditStore
	risks          store.RisksStore
	workItems      store.WorkItemsStore
	governance     store.WorkItemsStore
	suppliers      store.SuppliersStore
	notifications  store.NotificationsStore
	sessionManager *auth.SessionManager
	policy         *rbac.Policy
	importRunner   *importer.Runner
	importProgress *importer.ProgressStore
	importDeps     importer.Deps

	activityTracker *sessionActivity
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{
		cfg:             cfg,
		logger:          logger,
		users:           deps.Users,
		sessions:        deps.Sessions,
		audits:          deps.Audits,
		risks:           deps.Risks,
		workItems:       deps.WorkItems,
		governance:      deps.Governance,
		suppliers:       deps.Suppliers,
		notifications:   deps.Notifications,
		sessionManager:  deps.SessionManager,
		policy:          deps.Policy,
		importRunner:    deps.ImportRunner,
		importProgress:  deps.ImportProgress,
		importDeps:      deps.ImportDeps,
		activityTracker: newSessionActivity(),
	}
}

// Handler builds the full chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(s.jsonMiddleware)
		h := s.newRouteHandlers()
		s.registerAuthRoutes(apiRouter, h)
		s.registerRiskRoutes(apiRouter, h)
		s.registerWorkItemRoutes(apiRouter, h)
		s.registerSupplierRoutes(apiRouter, h)
		s.registerImportRoutes(apiRouter, h)
		s.registerDirectoryRoutes(apiRouter, h)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}
