package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/organization"
	"github.com/hera/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CreateOrganizationRequest provisions a new tenant
type CreateOrganizationRequest struct {
	Name                 string `json:"name" binding:"required"`
	Currency             string `json:"currency"`
	FiscalYearStartMonth int    `json:"fiscal_year_start_month"`
}

// OrganizationResponse is the API view of an organization
type OrganizationResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Status               string    `json:"status"`
	Currency             string    `json:"currency"`
	FiscalYearStartMonth int       `json:"fiscal_year_start_month"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewOrganizationResponse maps the aggregate to its API view
func NewOrganizationResponse(o *organization.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:                   o.ID,
		Name:                 o.Name,
		Status:               string(o.Status),
		Currency:             string(o.Settings.Currency),
		FiscalYearStartMonth: o.Settings.FiscalYearStartMonth,
		CreatedAt:            o.CreatedAt,
	}
}

// OrganizationService provisions and reads tenancy roots
type OrganizationService struct {
	organizations organization.Repository
	logger        *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(organizations organization.Repository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{organizations: organizations, logger: logger}
}

// Create provisions a new organization
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := organization.New(req.Name, organization.Settings{
		Currency:             valueobject.Currency(req.Currency),
		FiscalYearStartMonth: req.FiscalYearStartMonth,
	})
	if err != nil {
		return nil, err
	}

	if err := s.organizations.Save(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization provisioned",
		zap.String("organization_id", org.ID.String()),
		zap.String("name", org.Name))

	return NewOrganizationResponse(org), nil
}

// Read returns one organization
func (s *OrganizationService) Read(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.organizations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewOrganizationResponse(org), nil
}
