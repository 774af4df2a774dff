package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeightSettingsValidate(t *testing.T) {
	cases := []struct {
		name    string
		weights WeightSettings
		wantErr bool
	}{
		{name: "balanced", weights: WeightSettings{Equality: 40, Continuity: 30, Loyalty: 30}},
		{name: "single factor", weights: WeightSettings{Equality: 100}},
		{name: "within tolerance", weights: WeightSettings{Equality: 33.3, Continuity: 33.3, Loyalty: 33.45}},
		{name: "sum too low", weights: WeightSettings{Equality: 30, Continuity: 30, Loyalty: 30}, wantErr: true},
		{name: "sum too high", weights: WeightSettings{Equality: 50, Continuity: 40, Loyalty: 30}, wantErr: true},
		{name: "negative weight", weights: WeightSettings{Equality: -10, Continuity: 60, Loyalty: 50}, wantErr: true},
		{name: "above hundred", weights: WeightSettings{Equality: 110, Continuity: 0, Loyalty: -10}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.weights.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidWeights)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEqualityScoreLevelPopulationIsPerfect(t *testing.T) {
	workloads := map[string]int{"t-1": 300, "t-2": 300, "t-3": 300}
	assert.Equal(t, 1.0, equalityScore("t-2", 120, workloads))
}

func TestEqualityScoreRewardsUnderloadedTeacher(t *testing.T) {
	workloads := map[string]int{"t-busy": 900, "t-idle": 0}
	idle := equalityScore("t-idle", 120, workloads)
	busy := equalityScore("t-busy", 120, workloads)
	assert.Greater(t, idle, busy)
	assert.GreaterOrEqual(t, idle, 0.0)
	assert.LessOrEqual(t, idle, 1.0)
}

func TestContinuityScore(t *testing.T) {
	monday := day("2026-01-05")

	t.Run("single lesson is neutral", func(t *testing.T) {
		slots := []TimeSlot{{Date: monday, StartMinute: 480, EndMinute: 540}}
		assert.Equal(t, 0.5, continuityScore(slots))
	})

	t.Run("back to back scores one", func(t *testing.T) {
		slots := []TimeSlot{
			{Date: monday, StartMinute: 480, EndMinute: 540},
			{Date: monday, StartMinute: 540, EndMinute: 600},
			{Date: monday, StartMinute: 600, EndMinute: 660},
		}
		assert.Equal(t, 1.0, continuityScore(slots))
	})

	t.Run("scattered days score zero", func(t *testing.T) {
		slots := []TimeSlot{
			{Date: monday, StartMinute: 480, EndMinute: 540},
			{Date: day("2026-01-06"), StartMinute: 480, EndMinute: 540},
		}
		assert.Equal(t, 0.0, continuityScore(slots))
	})

	t.Run("order independent", func(t *testing.T) {
		slots := []TimeSlot{
			{Date: monday, StartMinute: 540, EndMinute: 600},
			{Date: monday, StartMinute: 480, EndMinute: 540},
		}
		assert.Equal(t, 1.0, continuityScore(slots))
	})
}

func TestLoyaltyScoreLadder(t *testing.T) {
	teacher := Teacher{ID: "t-1", Qualifications: []string{"Mathematics"}}
	course := Course{ID: "c-1", Topic: "Mathematics"}

	t.Run("prior assignment", func(t *testing.T) {
		existing := []Assignment{{TeacherID: "t-1", CourseID: "c-1", Status: AssignmentStatusCompleted}}
		assert.Equal(t, loyaltyPriorCourse, loyaltyScore(teacher, course, existing))
	})

	t.Run("cancelled history does not count", func(t *testing.T) {
		existing := []Assignment{{TeacherID: "t-1", CourseID: "c-1", Status: AssignmentStatusCancelled}}
		assert.Equal(t, loyaltyQualified, loyaltyScore(teacher, course, existing))
	})

	t.Run("qualification only", func(t *testing.T) {
		assert.Equal(t, loyaltyQualified, loyaltyScore(teacher, course, nil))
	})

	t.Run("keyword overlap", func(t *testing.T) {
		other := Teacher{ID: "t-2", Qualifications: []string{"Applied Mathematics"}}
		unrelated := Course{ID: "c-2", Topic: "Mathematics Foundations"}
		assert.Equal(t, loyaltyKeywordOverlap, loyaltyScore(other, unrelated, nil))
	})

	t.Run("no affinity", func(t *testing.T) {
		other := Teacher{ID: "t-3", Qualifications: []string{"History"}}
		assert.Equal(t, loyaltyNone, loyaltyScore(other, course, nil))
	})
}

func TestScorerScoreStaysWithinBounds(t *testing.T) {
	monday := day("2026-01-05")
	scorer := NewScorer(WeightSettings{Equality: 40, Continuity: 30, Loyalty: 30})
	teacher := Teacher{ID: "t-1", Qualifications: []string{"Mathematics"}}
	course := Course{ID: "c-1", Topic: "Mathematics", LessonsCount: 2, LessonDurationMinutes: 60}
	slots := []TimeSlot{
		{Date: monday, StartMinute: 480, EndMinute: 540},
		{Date: monday, StartMinute: 540, EndMinute: 600},
	}
	workloads := map[string]int{"t-1": 0, "t-2": 0}

	score := scorer.Score(teacher, course, slots, workloads, nil)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	// level population, perfect continuity, qualification loyalty
	assert.InDelta(t, 40+30+0.7*30, score, 0.001)
}
