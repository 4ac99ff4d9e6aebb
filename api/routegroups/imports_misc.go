package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/Wazadriano/bow-tavira-sub002/api/handlers"
)

func RegisterImports(apiRouter chi.Router, g Guards, imports *handlers.ImportsHandler) {
	apiRouter.Route("/imports", func(importsRouter chi.Router) {
		importsRouter.MethodFunc("POST", "/preview", g.SessionPerm("imports.run", imports.Preview))
		importsRouter.MethodFunc("POST", "/confirm", g.SessionPerm("imports.run", imports.Confirm))
		importsRouter.MethodFunc("GET", "/status/{job_id}", g.SessionPerm("imports.run", imports.Status))
	})
}

func RegisterDirectory(apiRouter chi.Router, g Guards, users *handlers.UsersHandler, notifications *handlers.NotificationsHandler, dashboard *handlers.DashboardHandler, logs *handlers.LogsHandler) {
	apiRouter.Route("/users", func(usersRouter chi.Router) {
		usersRouter.MethodFunc("GET", "/", g.SessionPerm("users.view", users.List))
		usersRouter.MethodFunc("POST", "/", g.SessionPerm("users.manage", users.Create))
		usersRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("users.view", users.Get))
		usersRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("users.manage", users.Update))
	})

	apiRouter.Route("/notifications", func(notifRouter chi.Router) {
		notifRouter.MethodFunc("GET", "/", g.SessionPerm("notifications.view", notifications.List))
		notifRouter.MethodFunc("POST", "/{id:[0-9]+}/read", g.SessionPerm("notifications.view", notifications.MarkRead))
	})

	apiRouter.MethodFunc("GET", "/dashboard/summary", g.SessionPerm("dashboard.view", dashboard.Summary))

	apiRouter.Route("/logs", func(logsRouter chi.Router) {
		logsRouter.MethodFunc("GET", "/", g.SessionPerm("audit.view", logs.List))
		logsRouter.MethodFunc("GET", "/export", g.SessionPerm("audit.view", logs.Export))
	})
}
