package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Wazadriano/bow-tavira-sub002/api/routegroups"
	"github.com/Wazadriano/bow-tavira-sub002/core/rbac"
)

func (s *Server) guards() routegroups.Guards {
	return routegroups.Guards{
		WithSession: s.withSession,
		RequirePermission: func(p string) func(http.HandlerFunc) http.HandlerFunc {
			return s.requirePermission(rbac.Permission(p))
		},
	}
}

func (s *Server) registerAuthRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/auth", func(authRouter chi.Router) {
		authRouter.MethodFunc("POST", "/login", s.rateLimitMiddleware(h.auth.Login))
		authRouter.MethodFunc("POST", "/logout", s.withSession(h.auth.Logout))
		authRouter.MethodFunc("GET", "/me", s.withSession(h.auth.Me))
		authRouter.MethodFunc("POST", "/ping", s.withSession(h.auth.Ping))
		authRouter.MethodFunc("POST", "/change-password", s.withSession(h.auth.ChangePassword))
	})
}

func (s *Server) registerRiskRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterRisks(apiRouter, s.guards(), h.risks)
}

func (s *Server) registerWorkItemRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterWorkItems(apiRouter, s.guards(), h.workItems, h.governance)
}

func (s *Server) registerSupplierRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterSuppliers(apiRouter, s.guards(), h.suppliers)
}

func (s *Server) registerImportRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterImports(apiRouter, s.guards(), h.imports)
}

func (s *Server) registerDirectoryRoutes(apiRouter chi.Router, h routeHandlers) {
	routegroups.RegisterDirectory(apiRouter, s.guards(), h.users, h.notifications, h.dashboard, h.logs)
}
