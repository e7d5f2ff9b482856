// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns: domain types carry no GORM tags, the models here carry all table
// mappings, and each model knows how to convert to and from its domain counterpart.
//
// Structure:
// - base.go: shared embedded models (entity fields, optimistic-lock version)
// - ledger.go: titles and movements
// - commission.go: commission rules, records and payouts
// - banking.go: bank statements and bank transactions
//
// Monetary amounts are stored as NUMERIC(18,4) and surface in Go as
// decimal.Decimal; the mappers translate them into the domain Money type.
package models
