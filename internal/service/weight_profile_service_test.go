package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-assign-api/internal/models"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
)

type mockWeightProfileRepo struct {
	items   map[string]*models.WeightProfile
	byName  map[string]string
	deleted []string
}

func (m *mockWeightProfileRepo) List(ctx context.Context) ([]models.WeightProfile, error) {
	out := make([]models.WeightProfile, 0, len(m.items))
	for _, profile := range m.items {
		out = append(out, *profile)
	}
	return out, nil
}

func (m *mockWeightProfileRepo) FindByID(ctx context.Context, id string) (*models.WeightProfile, error) {
	if profile, ok := m.items[id]; ok {
		cp := *profile
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWeightProfileRepo) FindByName(ctx context.Context, name string) (*models.WeightProfile, error) {
	if id, ok := m.byName[name]; ok {
		return m.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockWeightProfileRepo) Create(ctx context.Context, profile *models.WeightProfile) error {
	if m.items == nil {
		m.items = make(map[string]*models.WeightProfile)
	}
	if m.byName == nil {
		m.byName = make(map[string]string)
	}
	if profile.ID == "" {
		profile.ID = "generated"
	}
	cp := *profile
	m.items[profile.ID] = &cp
	m.byName[profile.Name] = profile.ID
	return nil
}

func (m *mockWeightProfileRepo) Update(ctx context.Context, profile *models.WeightProfile) error {
	cp := *profile
	m.items[profile.ID] = &cp
	return nil
}

func (m *mockWeightProfileRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func TestWeightProfileServiceCreate(t *testing.T) {
	repo := &mockWeightProfileRepo{}
	service := NewWeightProfileService(repo, validator.New(), zap.NewNop())

	profile, err := service.Create(context.Background(), WeightProfileRequest{
		Name:       "balanced",
		Equality:   40,
		Continuity: 30,
		Loyalty:    30,
	})
	require.NoError(t, err)
	assert.Equal(t, "balanced", profile.Name)
	assert.Len(t, repo.items, 1)
}

func TestWeightProfileServiceCreateRejectsBadSum(t *testing.T) {
	repo := &mockWeightProfileRepo{}
	service := NewWeightProfileService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), WeightProfileRequest{
		Name:       "lopsided",
		Equality:   80,
		Continuity: 30,
		Loyalty:    30,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
	assert.Empty(t, repo.items)
}

func TestWeightProfileServiceCreateDuplicateName(t *testing.T) {
	repo := &mockWeightProfileRepo{}
	service := NewWeightProfileService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), WeightProfileRequest{
		Name: "balanced", Equality: 40, Continuity: 30, Loyalty: 30,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), WeightProfileRequest{
		Name: "balanced", Equality: 34, Continuity: 33, Loyalty: 33,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestWeightProfileServiceUpdate(t *testing.T) {
	repo := &mockWeightProfileRepo{
		items: map[string]*models.WeightProfile{
			"wp1": {ID: "wp1", Name: "balanced", Equality: 40, Continuity: 30, Loyalty: 30},
		},
		byName: map[string]string{"balanced": "wp1"},
	}
	service := NewWeightProfileService(repo, validator.New(), zap.NewNop())

	updated, err := service.Update(context.Background(), "wp1", WeightProfileRequest{
		Name: "fairness-first", Equality: 70, Continuity: 20, Loyalty: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "fairness-first", updated.Name)
	assert.Equal(t, float64(70), updated.Equality)
}

func TestWeightProfileServiceDelete(t *testing.T) {
	repo := &mockWeightProfileRepo{
		items: map[string]*models.WeightProfile{
			"wp1": {ID: "wp1", Name: "balanced", Equality: 40, Continuity: 30, Loyalty: 30},
		},
	}
	service := NewWeightProfileService(repo, validator.New(), zap.NewNop())

	require.NoError(t, service.Delete(context.Background(), "wp1"))
	assert.Equal(t, []string{"wp1"}, repo.deleted)

	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
}
