package api

import "github.com/Wazadriano/bow-tavira-sub002/api/handlers"

type routeHandlers struct {
	auth          *handlers.AuthHandler
	users         *handlers.UsersHandler
	risks         *handlers.RisksHandler
	workItems     *handlers.WorkItemsHandler
	governance    *handlers.WorkItemsHandler
	suppliers     *handlers.SuppliersHandler
	imports       *handlers.ImportsHandler
	notifications *handlers.NotificationsHandler
	dashboard     *handlers.DashboardHandler
	logs          *handlers.LogsHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		auth:          handlers.NewAuthHandler(s.cfg, s.users, s.sessions, s.sessionManager, s.policy, s.audits, s.logger),
		users:         handlers.NewUsersHandler(s.cfg, s.users, s.policy, s.audits, s.logger),
		risks:         handlers.NewRisksHandler(s.cfg, s.risks, s.users, s.policy, s.audits, s.logger),
		workItems:     handlers.NewWorkItemsHandler(s.workItems, s.users, s.policy, s.audits, s.logger, false),
		governance:    handlers.NewWorkItemsHandler(s.governance, s.users, s.policy, s.audits, s.logger, true),
		suppliers:     handlers.NewSuppliersHandler(s.suppliers, s.users, s.policy, s.audits, s.logger),
		imports:       handlers.NewImportsHandler(s.cfg, s.importRunner, s.importProgress, s.importDeps, s.audits, s.logger),
		notifications: handlers.NewNotificationsHandler(s.notifications),
		dashboard:     handlers.NewDashboardHandler(s.cfg, s.risks, s.workItems, s.governance, s.suppliers, s.logger),
		logs:          handlers.NewLogsHandler(s.audits),
	}
}
