package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/relationship"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"go.uber.org/zap"
)

// RelationshipService manages the typed directed edges between entities
type RelationshipService struct {
	relationships relationship.Repository
	entities      entity.Repository
	codes         *smartcode.Checker
	logger        *zap.Logger
}

// NewRelationshipService creates a new RelationshipService
func NewRelationshipService(
	relationships relationship.Repository,
	entities entity.Repository,
	codes *smartcode.Checker,
	logger *zap.Logger,
) *RelationshipService {
	return &RelationshipService{
		relationships: relationships,
		entities:      entities,
		codes:         codes,
		logger:        logger,
	}
}

// Create associates two entities. Both endpoints must be visible inside the
// organization; an endpoint belonging to another organization is
// indistinguishable from a missing one and is rejected as cross-tenant.
func (s *RelationshipService) Create(ctx context.Context, organizationID uuid.UUID, req CreateRelationshipRequest) (*RelationshipResponse, error) {
	if _, err := s.codes.Check(ctx, req.SmartCode); err != nil {
		return nil, err
	}

	for _, endpoint := range []uuid.UUID{req.FromEntityID, req.ToEntityID} {
		if _, err := s.entities.FindByID(ctx, organizationID, endpoint); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrCrossTenantReference
			}
			return nil, err
		}
	}

	r, err := relationship.New(organizationID, req.FromEntityID, req.ToEntityID, req.RelationshipType, req.SmartCode, req.RelationshipData)
	if err != nil {
		return nil, err
	}
	if req.Strength != nil {
		r.SetStrength(*req.Strength)
	}
	r.EffectiveDate = req.EffectiveDate

	if err := s.relationships.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("relationship created",
		zap.String("organization_id", organizationID.String()),
		zap.String("relationship_id", r.ID.String()),
		zap.String("type", r.RelationshipType))

	return NewRelationshipResponse(r), nil
}

// Deactivate ends an association. The edge row stays for audit.
func (s *RelationshipService) Deactivate(ctx context.Context, organizationID, id uuid.UUID) (*RelationshipResponse, error) {
	r, err := s.relationships.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	r.Deactivate()
	if err := s.relationships.Update(ctx, r); err != nil {
		return nil, err
	}
	return NewRelationshipResponse(r), nil
}

// Traverse returns the entities connected to entityID through active edges
// of one type, single hop. An entity invisible to the organization yields
// an empty result, never another tenant's data.
func (s *RelationshipService) Traverse(ctx context.Context, organizationID, entityID uuid.UUID, relationshipType string, direction relationship.Direction, limit int) ([]TraverseResponse, error) {
	if !direction.IsValid() {
		return nil, shared.NewValidationError("INVALID_DIRECTION", "Direction must be forward, inverse or both")
	}

	if _, err := s.entities.FindByID(ctx, organizationID, entityID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []TraverseResponse{}, nil
		}
		return nil, err
	}

	steps, err := s.relationships.Traverse(ctx, organizationID, entityID, relationshipType, direction, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]TraverseResponse, len(steps))
	for i, step := range steps {
		responses[i] = TraverseResponse{
			EntityID:         step.EntityID,
			RelationshipID:   step.RelationshipID,
			Direction:        string(step.Direction),
			RelationshipType: relationshipType,
		}
	}
	return responses, nil
}
