package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/Wazadriano/bow-tavira-sub002/api/handlers"
)

func RegisterWorkItems(apiRouter chi.Router, g Guards, work, governance *handlers.WorkItemsHandler) {
	register := func(prefix string, h *handlers.WorkItemsHandler) {
		apiRouter.Route(prefix, func(itemsRouter chi.Router) {
			itemsRouter.MethodFunc("GET", "/", g.SessionPerm("workitems.view", h.List))
			itemsRouter.MethodFunc("POST", "/", g.SessionPerm("workitems.manage", h.Create))
			itemsRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("workitems.view", h.Get))
			itemsRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("workitems.manage", h.Update))
			itemsRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("workitems.manage", h.Delete))
		})
	}
	register("/work-items", work)
	register("/governance-items", governance)
}

func RegisterSuppliers(apiRouter chi.Router, g Guards, suppliers *handlers.SuppliersHandler) {
	apiRouter.Route("/suppliers", func(suppliersRouter chi.Router) {
		suppliersRouter.MethodFunc("GET", "/", g.SessionPerm("suppliers.view", suppliers.List))
		suppliersRouter.MethodFunc("POST", "/", g.SessionPerm("suppliers.manage", suppliers.Create))
		suppliersRouter.MethodFunc("GET", "/{id:[0-9]+}", g.SessionPerm("suppliers.view", suppliers.Get))
		suppliersRouter.MethodFunc("PUT", "/{id:[0-9]+}", g.SessionPerm("suppliers.manage", suppliers.Update))
		suppliersRouter.MethodFunc("DELETE", "/{id:[0-9]+}", g.SessionPerm("suppliers.manage", suppliers.Delete))
		suppliersRouter.MethodFunc("GET", "/{id:[0-9]+}/contracts", g.SessionPerm("suppliers.view", suppliers.ListContracts))
		suppliersRouter.MethodFunc("POST", "/{id:[0-9]+}/contracts", g.SessionPerm("suppliers.manage", suppliers.CreateContract))
		suppliersRouter.MethodFunc("PUT", "/{id:[0-9]+}/contracts/{contract_id:[0-9]+}", g.SessionPerm("suppliers.manage", suppliers.UpdateContract))
		suppliersRouter.MethodFunc("DELETE", "/{id:[0-9]+}/contracts/{contract_id:[0-9]+}", g.SessionPerm("suppliers.manage", suppliers.DeleteContract))
		suppliersRouter.MethodFunc("GET", "/contracts/{contract_id:[0-9]+}/invoices", g.SessionPerm("suppliers.view", suppliers.ListInvoices))
		suppliersRouter.MethodFunc("POST", "/contracts/{contract_id:[0-9]+}/invoices", g.SessionPerm("suppliers.manage", suppliers.CreateInvoice))
		suppliersRouter.MethodFunc("PUT", "/invoices/{invoice_id:[0-9]+}", g.SessionPerm("suppliers.manage", suppliers.UpdateInvoice))
	})
}
