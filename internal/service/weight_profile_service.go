package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-assign-api/internal/models"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
)

type weightProfileRepository interface {
	List(ctx context.Context) ([]models.WeightProfile, error)
	FindByID(ctx context.Context, id string) (*models.WeightProfile, error)
	FindByName(ctx context.Context, name string) (*models.WeightProfile, error)
	Create(ctx context.Context, profile *models.WeightProfile) error
	Update(ctx context.Context, profile *models.WeightProfile) error
	Delete(ctx context.Context, id string) error
}

// WeightProfileRequest represents payload for creating or updating profiles.
type WeightProfileRequest struct {
	Name       string  `json:"name" validate:"required"`
	Equality   float64 `json:"equality" validate:"min=0,max=100"`
	Continuity float64 `json:"continuity" validate:"min=0,max=100"`
	Loyalty    float64 `json:"loyalty" validate:"min=0,max=100"`
}

// WeightProfileService orchestrates scoring weight profile operations.
type WeightProfileService struct {
	repo      weightProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightProfileService constructs a WeightProfileService.
func NewWeightProfileService(repo weightProfileRepository, validate *validator.Validate, logger *zap.Logger) *WeightProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightProfileService{repo: repo, validator: validate, logger: logger}
}

// List returns every weight profile.
func (s *WeightProfileService) List(ctx context.Context) ([]models.WeightProfile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weight profiles")
	}
	return profiles, nil
}

// Get returns a weight profile by id.
func (s *WeightProfileService) Get(ctx context.Context, id string) (*models.WeightProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weight profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight profile")
	}
	return profile, nil
}

// GetByName returns a weight profile by its unique name.
func (s *WeightProfileService) GetByName(ctx context.Context, name string) (*models.WeightProfile, error) {
	profile, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weight profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight profile")
	}
	return profile, nil
}

// Create registers a new weight profile after validating the distribution.
func (s *WeightProfileService) Create(ctx context.Context, req WeightProfileRequest) (*models.WeightProfile, error) {
	profile := &models.WeightProfile{}
	if err := s.applyPayload(profile, req); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByName(ctx, profile.Name); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "weight profile name already used")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check profile name")
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create weight profile")
	}
	return profile, nil
}

// Update modifies an existing weight profile.
func (s *WeightProfileService) Update(ctx context.Context, id string, req WeightProfileRequest) (*models.WeightProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weight profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight profile")
	}
	if err := s.applyPayload(profile, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update weight profile")
	}
	return profile, nil
}

// Delete removes a weight profile.
func (s *WeightProfileService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "weight profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight profile")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete weight profile")
	}
	return nil
}

func (s *WeightProfileService) applyPayload(profile *models.WeightProfile, req WeightProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weight profile payload")
	}

	profile.Name = strings.TrimSpace(req.Name)
	profile.Equality = req.Equality
	profile.Continuity = req.Continuity
	profile.Loyalty = req.Loyalty

	settings := profile.WeightSettings()
	if err := settings.Validate(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "component weights must sum to 100")
	}
	return nil
}
