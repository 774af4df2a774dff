package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-assign-api/internal/dto"
	"github.com/noah-isme/edu-assign-api/internal/engine"
	"github.com/noah-isme/edu-assign-api/internal/models"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
)

type optimizerTeacherRepository interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type optimizerCourseRepository interface {
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Course, error)
}

type optimizerAssignmentRepository interface {
	ListCurrent(ctx context.Context) ([]models.Assignment, error)
	CreateBatch(ctx context.Context, assignments []models.Assignment) error
}

type optimizerProfileRepository interface {
	FindByName(ctx context.Context, name string) (*models.WeightProfile, error)
}

// OptimizationConfig tunes the orchestrated optimization flow.
type OptimizationConfig struct {
	ExactSolverMaxSize             int
	WorkloadSpreadThresholdMinutes int
	MaxAssignmentsPerTeacher       int
	DefaultProfile                 string
	CacheTTL                       time.Duration
}

// OptimizeRequest selects the weight profile for one run.
type OptimizeRequest struct {
	Profile string `json:"profile"`
	Persist bool   `json:"-"`
}

// OptimizationService loads persistence snapshots, invokes the engine and
// publishes the outcome. The engine itself is pure; everything stateful
// lives here.
type OptimizationService struct {
	teachers    optimizerTeacherRepository
	courses     optimizerCourseRepository
	assignments optimizerAssignmentRepository
	profiles    optimizerProfileRepository
	cache       *CacheService
	metrics     *MetricsService
	rationale   RationaleProvider
	engine      *engine.Engine
	config      OptimizationConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewOptimizationService constructs an OptimizationService.
func NewOptimizationService(
	teachers optimizerTeacherRepository,
	courses optimizerCourseRepository,
	assignments optimizerAssignmentRepository,
	profiles optimizerProfileRepository,
	cache *CacheService,
	metrics *MetricsService,
	rationale RationaleProvider,
	config OptimizationConfig,
	logger *zap.Logger,
) *OptimizationService {
	if config.DefaultProfile == "" {
		config.DefaultProfile = "balanced"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizationService{
		teachers:    teachers,
		courses:     courses,
		assignments: assignments,
		profiles:    profiles,
		cache:       cache,
		metrics:     metrics,
		rationale:   rationale,
		engine: engine.New(engine.Config{
			ExactSolverMaxSize:             config.ExactSolverMaxSize,
			WorkloadSpreadThresholdMinutes: config.WorkloadSpreadThresholdMinutes,
		}),
		config: config,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one optimization over the current persistence snapshot.
func (s *OptimizationService) Run(ctx context.Context, req OptimizeRequest) (*dto.OptimizationResponse, error) {
	profileName := req.Profile
	if profileName == "" {
		profileName = s.config.DefaultProfile
	}

	profile, err := s.profiles.FindByName(ctx, profileName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("weight profile %q not found", profileName))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight profile")
	}

	input, err := s.loadSnapshot(ctx, profile)
	if err != nil {
		return nil, err
	}

	started := s.now()
	result, err := s.engine.Optimize(*input)
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.ObserveOptimizationRun("failed", elapsed)
		switch {
		case errors.Is(err, engine.ErrNoTeachers):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active teachers available for optimization")
		case errors.Is(err, engine.ErrNoCourses):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses awaiting assignment")
		case errors.Is(err, engine.ErrInvalidWeights):
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "stored weight profile is invalid")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "optimization failed")
		}
	}
	s.metrics.ObserveOptimizationRun("success", elapsed)
	s.recordOutcome(result)
	s.applyRationale(ctx, result)

	response := dto.FromEngineResult(profileName, result, s.now())

	if req.Persist {
		if err := s.persist(ctx, result); err != nil {
			return nil, err
		}
		response.Persisted = true
	}

	if err := s.cache.Set(ctx, previewCacheKey(profileName), response, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache optimization result", zap.String("profile", profileName), zap.Error(err))
	}

	s.logger.Info("optimization run finished",
		zap.String("profile", profileName),
		zap.Int("assignments", len(response.Results)),
		zap.Int("unassigned", len(response.Unassigned)),
		zap.Bool("persisted", response.Persisted),
		zap.Duration("elapsed", elapsed),
	)
	return response, nil
}

// Preview returns the most recent cached run for the profile, if any.
func (s *OptimizationService) Preview(ctx context.Context, profileName string) (*dto.OptimizationResponse, error) {
	if profileName == "" {
		profileName = s.config.DefaultProfile
	}
	var cached dto.OptimizationResponse
	hit, err := s.cache.Get(ctx, previewCacheKey(profileName), &cached)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read cached optimization result")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no cached optimization result for profile %q", profileName))
	}
	return &cached, nil
}

// loadSnapshot reads and converts the current persistence state into the
// engine's immutable input shape.
func (s *OptimizationService) loadSnapshot(ctx context.Context, profile *models.WeightProfile) (*engine.Input, error) {
	teacherRecords, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	courseRecords, err := s.courses.ListUpcoming(ctx, s.now().Truncate(24*time.Hour))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	assignmentRecords, err := s.assignments.ListCurrent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	assignedCourses := make(map[string]bool, len(assignmentRecords))
	for _, record := range assignmentRecords {
		if record.Status != models.AssignmentStatusCancelled {
			assignedCourses[record.CourseID] = true
		}
	}

	input := &engine.Input{
		Weights:     profile.WeightSettings(),
		Constraints: engine.Constraints{MaxAssignmentsPerTeacher: s.config.MaxAssignmentsPerTeacher},
	}
	for i := range teacherRecords {
		teacher, err := teacherRecords[i].EngineSnapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored teacher record is invalid")
		}
		input.Teachers = append(input.Teachers, teacher)
	}
	for i := range courseRecords {
		if assignedCourses[courseRecords[i].ID] {
			continue
		}
		input.Courses = append(input.Courses, courseRecords[i].EngineSnapshot())
	}
	for i := range assignmentRecords {
		assignment, err := assignmentRecords[i].EngineSnapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored assignment record is invalid")
		}
		input.ExistingAssignments = append(input.ExistingAssignments, assignment)
	}
	return input, nil
}

// applyRationale lets the optional collaborator refine rationales. Failures
// keep the engine's deterministic text and never fail the run.
func (s *OptimizationService) applyRationale(ctx context.Context, result *engine.Result) {
	if s.rationale == nil {
		return
	}
	for i := range result.Results {
		text, err := s.rationale.Explain(ctx, result.Results[i])
		if err != nil {
			s.logger.Warn("rationale provider failed, keeping formulaic rationale",
				zap.String("assignment_id", result.Results[i].Assignment.ID), zap.Error(err))
			continue
		}
		if text != "" {
			result.Results[i].Assignment.Rationale = text
		}
	}
}

func (s *OptimizationService) recordOutcome(result *engine.Result) {
	for _, entry := range result.Results {
		s.metrics.RecordAssignment(entry.Assignment.Fallback)
		for _, conflict := range entry.Conflicts {
			s.metrics.RecordConflict(string(conflict.Type))
		}
	}
	for _, conflict := range result.Conflicts {
		s.metrics.RecordConflict(string(conflict.Type))
	}
	s.metrics.RecordUnassigned(len(result.Unassigned))
}

// persist stores the produced assignments in one transaction.
func (s *OptimizationService) persist(ctx context.Context, result *engine.Result) error {
	records := make([]models.Assignment, 0, len(result.Results))
	for _, entry := range result.Results {
		slots, err := models.EncodeSlots(entry.Assignment.Slots)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode assignment slots")
		}
		score := entry.Score
		records = append(records, models.Assignment{
			ID:        entry.Assignment.ID,
			TeacherID: entry.Assignment.TeacherID,
			CourseID:  entry.Assignment.CourseID,
			Slots:     slots,
			Status:    string(entry.Assignment.Status),
			Score:     &score,
			Rationale: entry.Assignment.Rationale,
			Fallback:  entry.Assignment.Fallback,
		})
	}
	if err := s.assignments.CreateBatch(ctx, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
	}
	if err := s.cache.Invalidate(ctx, "optimize:preview:*"); err != nil {
		s.logger.Warn("failed to invalidate preview cache", zap.Error(err))
	}
	return nil
}

func previewCacheKey(profile string) string {
	return "optimize:preview:" + profile
}
