package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/Wazadriano/bow-tavira-sub002/api/handlers"
)

func RegisterRisks(apiRouter chi.Router, g Guards, risks *handlers.RisksHandler) {
	apiRouter.Route("/risks", func(risksRouter chi.Router) {
		risksRouter.MethodFunc("GET", "/", g.SessionPerm("risks.view", risks.List))
		risksRouter.MethodFunc("POST", "/", g.SessionPerm("risks.manage", risks.Create))
		risksRouter.MethodFunc("GET", "/heatmap", g.SessionPerm("risks.view", risks.Heatmap))
		risksRouter.MethodFunc("GET", "/themes", g.SessionPerm("risks.view", risks.ListThemes))
		risksRouter.MethodFunc("POST", "/themes", g.SessionPerm("risks.manage", risks.CreateTheme))
		risksRouter.MethodFunc("DELETE", "/themes/{id:[0-9]+}", g.SessionPerm("risks.manage", risks.DeleteTheme))
		risksRouter.MethodFunc("GET", "/categories", g.SessionPerm("risks.view", risks.ListCategories))
		risksRouter.MethodFunc("POST", "/categories", g.SessionPerm("risks.manage", risks.CreateCategory))
		risksRouter.MethodFunc("PUT", "/categories/{id:[0-9]+}", g.SessionPerm("risks.manage", risks.UpdateCategory))
		risksRouter.MethodFunc("DELETE", "/categories/{id:[0-9]+}", g.SessionPerm("risks.manage", risks.DeleteCategory))
		risksRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("risks.view", risks.Get))
		risksRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("risks.manage", risks.Update))
		risksRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("risks.manage", risks.Delete))
		risksRouter.MethodFunc("GET", "/{id:[0-9]+}/controls", g.SessionPerm("risks.view", risks.ListControls))
		risksRouter.MethodFunc("POST", "/{id:[0-9]+}/controls", g.SessionPerm("risks.manage", risks.CreateControl))
		risksRouter.MethodFunc("PUT", "/{id:[0-9]+}/controls/{control_id:[0-9]+}", g.SessionPerm("risks.manage", risks.UpdateControl))
		risksRouter.MethodFunc("DELETE", "/{id:[0-9]+}/controls/{control_id:[0-9]+}", g.SessionPerm("risks.manage", risks.DeleteControl))
		risksRouter.MethodFunc("GET", "/{id:[0-9]+}/actions", g.SessionPerm("risks.view", risks.ListActions))
		risksRouter.MethodFunc("POST", "/{id:[0-9]+}/actions", g.SessionPerm("risks.manage", risks.CreateAction))
		risksRouter.MethodFunc("PUT", "/{id:[0-9]+}/actions/{action_id:[0-9]+}", g.SessionPerm("risks.manage", risks.UpdateAction))
		risksRouter.MethodFunc("DELETE", "/{id:[0-9]+}/actions/{action_id:[0-9]+}", g.SessionPerm("risks.manage", risks.DeleteAction))
	})
}
