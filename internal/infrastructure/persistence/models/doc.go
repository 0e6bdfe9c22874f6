// Package models contains GORM-specific persistence models that map to
// the universal tables. These models are separate from domain entities to
// keep the domain layer pure and free from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, OrgAggregateModel)
// - core.go: core_organizations, core_entities, core_dynamic_data, core_relationships
// - ledger.go: universal_transactions, universal_transaction_lines
// - smartcode.go: smart_code_policies
package models
