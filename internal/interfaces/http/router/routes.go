package router

import (
	"github.com/viaticos/backend/internal/interfaces/http/handler"
)

// Handlers bundles every API handler
type Handlers struct {
	System     *handler.SystemHandler
	Rates      *handler.RateHandler
	Requests   *handler.RequestHandler
	Renditions *handler.RenditionHandler
	Workforce  *handler.WorkforceHandler
}

// Groups returns the route groups of the API
func (h Handlers) Groups() []RouteRegistrar {
	rates := NewDomainGroup("rates", "/rates").
		POST("", h.Rates.SetRate).
		GET("", h.Rates.ListRates).
		GET("/current", h.Rates.CurrentRate)

	adjustments := NewDomainGroup("adjustments", "/adjustments").
		GET("", h.Rates.ListBatches).
		GET("/:id", h.Rates.GetBatch).
		POST("/:id/apply", h.Rates.ApplyBatch)

	requests := NewDomainGroup("requests", "/requests").
		POST("", h.Requests.Create).
		GET("", h.Requests.List).
		GET("/:id", h.Requests.Get)
	requests.Group("workflow", "/:id").
		POST("/submit", h.Requests.Submit).
		POST("/review", h.Requests.BeginReview).
		POST("/standardize", h.Requests.Standardize).
		POST("/correction/begin", h.Requests.BeginCorrection).
		POST("/corrections", h.Requests.CreateCorrection).
		POST("/sign", h.Requests.Sign).
		POST("/payment", h.Requests.MarkPaid).
		POST("/correction-requests", h.Requests.RequestCorrection).
		POST("/cancel", h.Requests.Cancel)

	renditions := NewDomainGroup("renditions", "/renditions").
		PUT("/bulk", h.Renditions.UpsertBulk).
		PUT("/:request_worker_id", h.Renditions.Upsert)

	workers := NewDomainGroup("workers", "/workers").
		POST("", h.Workforce.CreateWorker).
		GET("", h.Workforce.ListWorkers).
		GET("/:id/balance", h.Workforce.WorkerBalance).
		GET("/:id/ledger", h.Workforce.WorkerLedger)

	areas := NewDomainGroup("areas", "/areas").
		GET("", h.Workforce.ListAreas)

	users := NewDomainGroup("users", "/users").
		POST("", h.Workforce.CreateUser).
		GET("", h.Workforce.ListUsers)

	return []RouteRegistrar{h.System, rates, adjustments, requests, renditions, workers, areas, users}
}
