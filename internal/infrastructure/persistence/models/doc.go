// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - client.go: Client aggregate (clients table)
// - transaction_event.go: Sales and payments in a single table, discriminated by tipo
package models
