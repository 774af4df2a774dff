package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-assign-api/internal/models"
)

// WeightProfileRepository manages persistence for scoring weight profiles.
type WeightProfileRepository struct {
	db *sqlx.DB
}

// NewWeightProfileRepository constructs a WeightProfileRepository.
func NewWeightProfileRepository(db *sqlx.DB) *WeightProfileRepository {
	return &WeightProfileRepository{db: db}
}

const weightProfileColumns = "id, name, equality, continuity, loyalty, created_at, updated_at"

// List returns every weight profile ordered by name.
func (r *WeightProfileRepository) List(ctx context.Context) ([]models.WeightProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM weight_profiles ORDER BY name", weightProfileColumns)
	var profiles []models.WeightProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list weight profiles: %w", err)
	}
	return profiles, nil
}

// FindByID fetches a weight profile by ID.
func (r *WeightProfileRepository) FindByID(ctx context.Context, id string) (*models.WeightProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM weight_profiles WHERE id = $1", weightProfileColumns)
	var profile models.WeightProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByName fetches a weight profile by its unique name.
func (r *WeightProfileRepository) FindByName(ctx context.Context, name string) (*models.WeightProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM weight_profiles WHERE name = $1", weightProfileColumns)
	var profile models.WeightProfile
	if err := r.db.GetContext(ctx, &profile, query, name); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new weight profile.
func (r *WeightProfileRepository) Create(ctx context.Context, profile *models.WeightProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO weight_profiles (id, name, equality, continuity, loyalty, created_at, updated_at)
		VALUES (:id, :name, :equality, :continuity, :loyalty, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create weight profile: %w", err)
	}
	return nil
}

// Update modifies an existing weight profile.
func (r *WeightProfileRepository) Update(ctx context.Context, profile *models.WeightProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE weight_profiles SET name = :name, equality = :equality, continuity = :continuity, loyalty = :loyalty, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update weight profile: %w", err)
	}
	return nil
}

// Delete removes a weight profile.
func (r *WeightProfileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM weight_profiles WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete weight profile: %w", err)
	}
	return nil
}
