package viatico

import (
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/workforce"
	"go.uber.org/zap"
)

// Dependencies are the ports every service is built from
type Dependencies struct {
	Scope       TransactionScope
	Requests    request.Repository
	Rates       rate.Repository
	Ledger      ledger.Repository
	Adjustments adjustment.Repository
	Workers     workforce.WorkerRepository
	Areas       workforce.AreaRepository
	Users       identity.UserRepository
	Audit       audit.Sink
	Cache       RateCache
	Locker      Locker
	Settings    Settings
	Logger      *zap.Logger
}

// Services holds the application services of the viatico workflow
type Services struct {
	Rates       *RateService
	Adjustments *AdjustmentService
	Requests    *RequestService
	Workflow    *WorkflowService
	Renditions  *RenditionService
	Workers     *WorkerService
	Users       *UserService
}

// NewServices wires the services. Actors are resolved from the user store.
func NewServices(d Dependencies) *Services {
	resolver := identity.NewRepositoryResolver(d.Users)
	rates := NewRateService(d.Scope, d.Rates, resolver, d.Cache, d.Audit, d.Settings, d.Logger)
	requests := NewRequestService(d.Scope, d.Requests, resolver, rates, d.Audit, d.Settings, d.Logger)
	if d.Locker != nil {
		requests.SetLocker(d.Locker)
	}

	return &Services{
		Rates:       rates,
		Adjustments: NewAdjustmentService(d.Scope, d.Adjustments, resolver, d.Audit, d.Logger),
		Requests:    requests,
		Workflow:    NewWorkflowService(d.Scope, resolver, d.Audit, d.Logger),
		Renditions:  NewRenditionService(d.Scope, resolver, d.Audit, d.Logger),
		Workers:     NewWorkerService(d.Scope, d.Workers, d.Areas, d.Ledger, resolver, d.Audit, d.Logger),
		Users:       NewUserService(d.Users, resolver, d.Audit, d.Logger),
	}
}
