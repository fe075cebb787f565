package models

import (
	"github.com/viaticos/backend/internal/domain/workforce"
)

// AreaModel is the persistence model for an organizational area
type AreaModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (AreaModel) TableName() string {
	return "areas"
}

// ToDomain converts the persistence model to a domain Area
func (m *AreaModel) ToDomain() *workforce.Area {
	return &workforce.Area{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// AreaModelFromDomain creates a persistence model from a domain Area
func AreaModelFromDomain(a *workforce.Area) *AreaModel {
	m := &AreaModel{Name: a.Name}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// WorkerModel is the persistence model for a worker
type WorkerModel struct {
	BaseModel
	Legajo   string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string                 `gorm:"type:varchar(200);not null;index"`
	DNI      string                 `gorm:"column:dni;type:varchar(20)"`
	CBU      string                 `gorm:"column:cbu;type:varchar(30)"`
	Bank     string                 `gorm:"type:varchar(100)"`
	Province string                 `gorm:"type:varchar(100)"`
	Status   workforce.WorkerStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (WorkerModel) TableName() string {
	return "workers"
}

// ToDomain converts the persistence model to a domain Worker
func (m *WorkerModel) ToDomain() *workforce.Worker {
	return &workforce.Worker{
		BaseEntity: m.BaseModel.ToDomain(),
		Legajo:     m.Legajo,
		Name:       m.Name,
		DNI:        m.DNI,
		CBU:        m.CBU,
		Bank:       m.Bank,
		Province:   m.Province,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain Worker
func (m *WorkerModel) FromDomain(w *workforce.Worker) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.Legajo = w.Legajo
	m.Name = w.Name
	m.DNI = w.DNI
	m.CBU = w.CBU
	m.Bank = w.Bank
	m.Province = w.Province
	m.Status = w.Status
}

// WorkerModelFromDomain creates a persistence model from a domain Worker
func WorkerModelFromDomain(w *workforce.Worker) *WorkerModel {
	m := &WorkerModel{}
	m.FromDomain(w)
	return m
}
