// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities are free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Calendar dates are stored as DATE columns (time.Time at UTC midnight) and
// converted to valueobject.Date at the boundary. Money and day counts are
// decimal columns mapped to shopspring/decimal.
//
// Structure:
// - base.go: BaseModel, AggregateModel and date helpers
// - identity.go: users
// - workforce.go: areas and workers
// - rate.go: rate history
// - request.go: requests, versions and their children
// - ledger.go: worker balance ledger
// - adjustment.go: adjustment batches and items
// - rendition.go: renditions and legs
// - audit.go: audit log rows
package models
