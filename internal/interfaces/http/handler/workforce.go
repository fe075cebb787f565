package handler

import (
	"github.com/gin-gonic/gin"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/workforce"
)

// WorkforceHandler handles workers, areas and users
type WorkforceHandler struct {
	BaseHandler
	workers *appviatico.WorkerService
	users   *appviatico.UserService
}

// NewWorkforceHandler creates a new WorkforceHandler
func NewWorkforceHandler(workers *appviatico.WorkerService, users *appviatico.UserService) *WorkforceHandler {
	return &WorkforceHandler{workers: workers, users: users}
}

// CreateWorkerRequest registers a field worker
type CreateWorkerRequest struct {
	Legajo   string `json:"legajo" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=200"`
	DNI      string `json:"dni" binding:"max=20"`
	CBU      string `json:"cbu" binding:"max=30"`
	Bank     string `json:"bank" binding:"max=100"`
	Province string `json:"province" binding:"max=100"`
}

// CreateUserRequest registers an application user
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email,max=200"`
	Role  string `json:"role" binding:"required,oneof=ADMIN JEFE_AREA TESORERIA COLABORADOR"`
}

// ListUsersQuery filters users by role
type ListUsersQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=ADMIN JEFE_AREA TESORERIA COLABORADOR"`
}

// CreateWorker registers a worker
func (h *WorkforceHandler) CreateWorker(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req CreateWorkerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.workers.CreateWorker(c.Request.Context(), actorID, workforce.WorkerInput{
		Legajo:   req.Legajo,
		Name:     req.Name,
		DNI:      req.DNI,
		CBU:      req.CBU,
		Bank:     req.Bank,
		Province: req.Province,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListWorkers lists workers by name
func (h *WorkforceHandler) ListWorkers(c *gin.Context) {
	workers, err := h.workers.ListWorkers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, workers)
}

// WorkerBalance returns the running balance of a worker
func (h *WorkforceHandler) WorkerBalance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.workers.WorkerBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// WorkerLedger returns the ledger entries of a worker
func (h *WorkforceHandler) WorkerLedger(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.workers.WorkerLedger(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// ListAreas lists areas by name
func (h *WorkforceHandler) ListAreas(c *gin.Context) {
	areas, err := h.workers.ListAreas(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, areas)
}

// CreateUser registers a user; the actor must be an administrator
func (h *WorkforceHandler) CreateUser(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.users.CreateUser(c.Request.Context(), actorID, appviatico.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListUsers lists users, optionally of one role
func (h *WorkforceHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var role *identity.Role
	if q.Role != "" {
		r := identity.Role(q.Role)
		role = &r
	}

	users, err := h.users.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}
