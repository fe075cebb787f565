package workforce

import (
	"strings"

	"github.com/viaticos/backend/internal/domain/shared"
)

// WorkerStatus represents whether a worker can be assigned to new requests
type WorkerStatus string

const (
	WorkerStatusActive   WorkerStatus = "ACTIVE"
	WorkerStatusInactive WorkerStatus = "INACTIVE"
)

// Worker is a person who receives per-diem allowances.
// Workers are never hard-deleted; they are deactivated instead.
type Worker struct {
	shared.BaseEntity
	Legajo   string // Payroll file number, unique
	Name     string
	DNI      string
	CBU      string // Bank account key for transfers
	Bank     string
	Province string
	Status   WorkerStatus
}

// WorkerInput carries the fields of a new worker
type WorkerInput struct {
	Legajo   string
	Name     string
	DNI      string
	CBU      string
	Bank     string
	Province string
}

// NewWorker creates an active worker. Name and legajo are required.
func NewWorker(in WorkerInput) (*Worker, error) {
	legajo := strings.TrimSpace(in.Legajo)
	name := strings.TrimSpace(in.Name)
	if name == "" || legajo == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Name and legajo are required")
	}
	return &Worker{
		BaseEntity: shared.NewBaseEntity(),
		Legajo:     legajo,
		Name:       name,
		DNI:        strings.TrimSpace(in.DNI),
		CBU:        strings.TrimSpace(in.CBU),
		Bank:       strings.TrimSpace(in.Bank),
		Province:   strings.TrimSpace(in.Province),
		Status:     WorkerStatusActive,
	}, nil
}

// IsActive returns true if the worker can be assigned
func (w *Worker) IsActive() bool {
	return w.Status == WorkerStatusActive
}

// Deactivate flips the worker to inactive
func (w *Worker) Deactivate() {
	w.Status = WorkerStatusInactive
	w.Touch()
}

// Area is a flat organizational unit that owns requests
type Area struct {
	shared.BaseEntity
	Name string
}

// NewArea creates an area with a trimmed, non-empty name
func NewArea(name string) (*Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Area name cannot be empty")
	}
	return &Area{BaseEntity: shared.NewBaseEntity(), Name: name}, nil
}
