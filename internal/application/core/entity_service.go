package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/relationship"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"go.uber.org/zap"
)

// EntityService handles master-data operations on the polymorphic entity
// store. Every write path runs the smart-code checker first.
type EntityService struct {
	entities      entity.Repository
	relationships relationship.Repository
	transactions  ledger.Repository
	codes         *smartcode.Checker
	logger        *zap.Logger
}

// NewEntityService creates a new EntityService
func NewEntityService(
	entities entity.Repository,
	relationships relationship.Repository,
	transactions ledger.Repository,
	codes *smartcode.Checker,
	logger *zap.Logger,
) *EntityService {
	return &EntityService{
		entities:      entities,
		relationships: relationships,
		transactions:  transactions,
		codes:         codes,
		logger:        logger,
	}
}

// Create creates a new entity after validating its smart code and entity
// code uniqueness within (organization, type).
func (s *EntityService) Create(ctx context.Context, organizationID uuid.UUID, req CreateEntityRequest) (*EntityResponse, error) {
	if _, err := s.codes.Check(ctx, req.SmartCode); err != nil {
		return nil, err
	}

	if req.EntityCode != "" {
		existing, err := s.entities.FindByTypeAndCode(ctx, organizationID, req.EntityType, req.EntityCode)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.ErrDuplicateEntityCode
		}
	}

	e, err := entity.New(organizationID, req.EntityType, req.EntityName, req.EntityCode, req.SmartCode)
	if err != nil {
		return nil, err
	}
	if req.Metadata != nil {
		e.Metadata = req.Metadata.Copy()
	}

	if err := s.entities.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("entity created",
		zap.String("organization_id", organizationID.String()),
		zap.String("entity_id", e.ID.String()),
		zap.String("entity_type", e.EntityType),
		zap.String("smart_code", e.SmartCode))

	return NewEntityResponse(e), nil
}

// Read finds an entity by ID within the organization
func (s *EntityService) Read(ctx context.Context, organizationID, id uuid.UUID) (*EntityResponse, error) {
	e, err := s.entities.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	return NewEntityResponse(e), nil
}

// ReadByCode finds an entity by (type, code) within the organization
func (s *EntityService) ReadByCode(ctx context.Context, organizationID uuid.UUID, entityType, entityCode string) (*EntityResponse, error) {
	e, err := s.entities.FindByTypeAndCode(ctx, organizationID, entityType, entityCode)
	if err != nil {
		return nil, err
	}
	return NewEntityResponse(e), nil
}

// List returns entities of a type matching the filter
func (s *EntityService) List(ctx context.Context, organizationID uuid.UUID, entityType string, filter shared.Filter) (*shared.Paginated[EntityResponse], error) {
	items, total, err := s.entities.List(ctx, organizationID, entityType, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]EntityResponse, len(items))
	for i := range items {
		responses[i] = *NewEntityResponse(&items[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.Limit())
	return &page, nil
}

// Update applies a merge-patch. Organization ID and entity ID never change.
func (s *EntityService) Update(ctx context.Context, organizationID, id uuid.UUID, req UpdateEntityRequest) (*EntityResponse, error) {
	e, err := s.entities.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if req.SmartCode != nil {
		if _, err := s.codes.Check(ctx, *req.SmartCode); err != nil {
			return nil, err
		}
	}

	patch := entity.Patch{
		EntityName: req.EntityName,
		SmartCode:  req.SmartCode,
		Metadata:   req.Metadata,
	}
	if req.Status != nil {
		status := entity.Status(*req.Status)
		patch.Status = &status
	}
	if err := e.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.entities.Update(ctx, e); err != nil {
		return nil, err
	}
	return NewEntityResponse(e), nil
}

// SetDynamicField upserts one typed attribute on an entity. The populated
// value must match the declared type.
func (s *EntityService) SetDynamicField(ctx context.Context, organizationID, entityID uuid.UUID, req SetDynamicFieldRequest) (*DynamicFieldResponse, error) {
	if _, err := s.codes.Check(ctx, req.SmartCode); err != nil {
		return nil, err
	}
	if _, err := s.entities.FindByID(ctx, organizationID, entityID); err != nil {
		return nil, err
	}

	value := entity.FieldValue{
		Type:    entity.FieldType(req.FieldType),
		Text:    req.Text,
		Number:  req.Number,
		Boolean: req.Boolean,
		Date:    req.Date,
		JSON:    req.JSON,
	}
	f, err := entity.NewDynamicField(organizationID, entityID, req.FieldName, req.SmartCode, value)
	if err != nil {
		return nil, err
	}

	if err := s.entities.UpsertDynamicField(ctx, f); err != nil {
		return nil, err
	}

	resp := NewDynamicFieldResponse(f)
	return &resp, nil
}

// GetDynamicFields returns all typed attributes of an entity
func (s *EntityService) GetDynamicFields(ctx context.Context, organizationID, entityID uuid.UUID) ([]DynamicFieldResponse, error) {
	if _, err := s.entities.FindByID(ctx, organizationID, entityID); err != nil {
		return nil, err
	}

	fields, err := s.entities.FindDynamicFields(ctx, organizationID, entityID)
	if err != nil {
		return nil, err
	}

	responses := make([]DynamicFieldResponse, len(fields))
	for i := range fields {
		responses[i] = NewDynamicFieldResponse(&fields[i])
	}
	return responses, nil
}

// SoftDelete transitions an entity to deleted. Refused while any active
// relationship or non-voided transaction line still references it.
func (s *EntityService) SoftDelete(ctx context.Context, organizationID, id uuid.UUID) error {
	e, err := s.entities.FindByID(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if e.IsDeleted() {
		return nil
	}

	edges, err := s.relationships.CountActiveForEntity(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if edges > 0 {
		return shared.NewDomainError(shared.KindDependency, shared.ErrEntityInUse.Code,
			fmt.Sprintf("Entity is referenced by %d active relationship(s)", edges))
	}

	lines, err := s.transactions.CountNonVoidedLinesForEntity(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if lines > 0 {
		return shared.NewDomainError(shared.KindDependency, shared.ErrEntityInUse.Code,
			fmt.Sprintf("Entity is referenced by %d transaction line(s)", lines))
	}

	e.SoftDelete()
	return s.entities.Update(ctx, e)
}
