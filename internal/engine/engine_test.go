package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedWeights() WeightSettings {
	return WeightSettings{Profile: "balanced", Equality: 40, Continuity: 30, Loyalty: 30}
}

func weekCourse(id, topic string, lessons int) Course {
	return Course{
		ID:                    id,
		Name:                  topic,
		Topic:                 topic,
		LessonsCount:          lessons,
		LessonDurationMinutes: 60,
		StartDate:             day("2026-01-05"),
		EndDate:               day("2026-01-09"),
	}
}

func TestOptimizeValidatesInput(t *testing.T) {
	eng := New(Config{})

	t.Run("no teachers", func(t *testing.T) {
		_, err := eng.Optimize(Input{
			Courses: []Course{weekCourse("c-1", "Mathematics", 1)},
			Weights: balancedWeights(),
		})
		assert.ErrorIs(t, err, ErrNoTeachers)
	})

	t.Run("no courses", func(t *testing.T) {
		_, err := eng.Optimize(Input{
			Teachers: []Teacher{allDayTeacher("t-1", "Mathematics")},
			Weights:  balancedWeights(),
		})
		assert.ErrorIs(t, err, ErrNoCourses)
	})

	t.Run("weights must sum to 100", func(t *testing.T) {
		_, err := eng.Optimize(Input{
			Teachers: []Teacher{allDayTeacher("t-1", "Mathematics")},
			Courses:  []Course{weekCourse("c-1", "Mathematics", 1)},
			Weights:  WeightSettings{Profile: "broken", Equality: 50, Continuity: 30, Loyalty: 30},
		})
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})
}

func TestOptimizeAssignsQualifiedTeachers(t *testing.T) {
	input := Input{
		Teachers: []Teacher{
			allDayTeacher("t-1", "Mathematics", "Physics"),
			allDayTeacher("t-2", "English"),
			allDayTeacher("t-3", "Biology"),
		},
		Courses: []Course{
			weekCourse("c-art", "Art", 1),
			weekCourse("c-eng", "English", 2),
			weekCourse("c-math", "Mathematics", 2),
			weekCourse("c-phys", "Physics", 2),
		},
		Weights: balancedWeights(),
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	byCourse := make(map[string]AssignmentResult)
	for _, entry := range result.Results {
		byCourse[entry.Course.ID] = entry
	}
	assert.Equal(t, "t-1", byCourse["c-math"].Teacher.ID)
	assert.Equal(t, "t-1", byCourse["c-phys"].Teacher.ID)
	assert.Equal(t, "t-2", byCourse["c-eng"].Teacher.ID)

	for _, entry := range result.Results {
		assert.Equal(t, AssignmentStatusActive, entry.Assignment.Status)
		assert.Empty(t, entry.Conflicts)
		assert.False(t, entry.Assignment.Fallback)
		assert.NotEmpty(t, entry.Assignment.Rationale)
		assert.GreaterOrEqual(t, entry.Score, 0.0)
		assert.LessOrEqual(t, entry.Score, 100.0)
	}

	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, "c-art", result.Unassigned[0].Course.ID)
	assert.Contains(t, result.Unassigned[0].Reason, "Art")
	assert.NotEmpty(t, result.Recommendations)
}

func TestOptimizeHoldingTwoCoursesNeverOverlaps(t *testing.T) {
	input := Input{
		Teachers: []Teacher{allDayTeacher("t-1", "Mathematics", "Physics")},
		Courses: []Course{
			weekCourse("c-math", "Mathematics", 3),
			weekCourse("c-phys", "Physics", 3),
		},
		Weights: balancedWeights(),
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	var slots []TimeSlot
	for _, entry := range result.Results {
		slots = append(slots, entry.Assignment.Slots...)
	}
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			assert.False(t, slots[i].Overlaps(slots[j]), "slots %v and %v overlap", slots[i], slots[j])
		}
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	input := Input{
		Teachers: []Teacher{
			allDayTeacher("t-2", "Mathematics"),
			allDayTeacher("t-1", "Mathematics"),
			allDayTeacher("t-3", "English"),
		},
		Courses: []Course{
			weekCourse("c-2", "Mathematics", 2),
			weekCourse("c-1", "English", 1),
			weekCourse("c-3", "Mathematics", 2),
		},
		Weights: balancedWeights(),
	}

	eng := New(Config{})
	first, err := eng.Optimize(input)
	require.NoError(t, err)
	second, err := eng.Optimize(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOptimizeEqualityWeightPrefersIdleTeacher(t *testing.T) {
	existing := Assignment{
		ID: "a-existing", TeacherID: "t-busy", CourseID: "c-old", Status: AssignmentStatusActive,
		Slots: []TimeSlot{
			{Date: day("2026-01-05"), StartMinute: 8 * 60, EndMinute: 16 * 60},
		},
	}
	input := Input{
		Teachers: []Teacher{
			allDayTeacher("t-busy", "Mathematics"),
			allDayTeacher("t-idle", "Mathematics"),
		},
		Courses:             []Course{weekCourse("c-1", "Mathematics", 2)},
		ExistingAssignments: []Assignment{existing},
		Weights:             WeightSettings{Profile: "fairness", Equality: 100, Continuity: 0, Loyalty: 0},
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "t-idle", result.Results[0].Teacher.ID)
}

func TestOptimizeSurfacesOverlapBetweenExistingAssignments(t *testing.T) {
	teacher := allDayTeacher("t-1", "Mathematics")
	existing := []Assignment{
		{
			ID: "a-1", TeacherID: "t-1", CourseID: "c-x", Status: AssignmentStatusActive,
			Slots: []TimeSlot{{Date: day("2026-01-05"), StartMinute: 9 * 60, EndMinute: 10 * 60}},
		},
		{
			ID: "a-2", TeacherID: "t-1", CourseID: "c-y", Status: AssignmentStatusActive,
			Slots: []TimeSlot{{Date: day("2026-01-05"), StartMinute: 9*60 + 30, EndMinute: 10*60 + 30}},
		},
	}
	input := Input{
		Teachers:            []Teacher{teacher},
		Courses:             []Course{weekCourse("c-1", "Mathematics", 1)},
		ExistingAssignments: existing,
		Weights:             balancedWeights(),
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)

	require.NotEmpty(t, result.Conflicts, "overlap between existing assignments must not vanish")
	assert.Equal(t, ConflictTimeOverlap, result.Conflicts[0].Type)
	assert.Equal(t, SeverityCritical, result.Conflicts[0].Severity)

	var overlapResolution *Resolution
	for i := range result.Resolutions {
		if result.Resolutions[i].Conflict.Type == ConflictTimeOverlap {
			overlapResolution = &result.Resolutions[i]
		}
	}
	require.NotNil(t, overlapResolution)
	assert.False(t, overlapResolution.Resolved)
}

func TestOptimizeMarksShortfallPending(t *testing.T) {
	teacher := Teacher{
		ID:             "t-1",
		Qualifications: []string{"Mathematics"},
		WorkingTimes: map[time.Weekday]ClockRange{
			time.Monday: {StartMinute: 8 * 60, EndMinute: 16 * 60},
		},
	}
	course := Course{
		ID: "c-1", Topic: "Mathematics", LessonsCount: 3, LessonDurationMinutes: 60,
		StartDate: day("2026-01-05"), EndDate: day("2026-01-16"), // two Mondays only
	}
	input := Input{
		Teachers: []Teacher{teacher},
		Courses:  []Course{course},
		Weights:  balancedWeights(),
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	entry := result.Results[0]
	assert.Equal(t, AssignmentStatusPending, entry.Assignment.Status)
	assert.Len(t, entry.Assignment.Slots, 2)

	require.NotEmpty(t, entry.Conflicts)
	assert.Equal(t, ConflictAvailability, entry.Conflicts[0].Type)
	assert.Equal(t, SeverityHigh, entry.Conflicts[0].Severity)
}

func TestOptimizeFallbackAssignment(t *testing.T) {
	input := Input{
		Teachers: []Teacher{allDayTeacher("t-1", "Mathematics")},
		Courses:  []Course{weekCourse("c-1", "Advanced Mathematics", 1)},
		Weights:  balancedWeights(),
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Unassigned)

	entry := result.Results[0]
	assert.True(t, entry.Assignment.Fallback)
	assert.LessOrEqual(t, entry.Score, 50.0)
	assert.Greater(t, entry.Score, 0.0)
	assert.Contains(t, entry.Assignment.Rationale, "manual review")

	var mismatch bool
	for _, conflict := range entry.Conflicts {
		if conflict.Type == ConflictQualificationMismatch {
			mismatch = true
			assert.Equal(t, SeverityCritical, conflict.Severity)
		}
	}
	assert.True(t, mismatch, "fallback pairing still carries the mismatch conflict")
	assert.Equal(t, AssignmentStatusPending, entry.Assignment.Status)
}

func TestOptimizeRespectsAssignmentLimit(t *testing.T) {
	input := Input{
		Teachers: []Teacher{allDayTeacher("t-1", "Mathematics")},
		Courses: []Course{
			weekCourse("c-1", "Mathematics", 1),
			weekCourse("c-2", "Mathematics", 1),
		},
		Weights:     balancedWeights(),
		Constraints: Constraints{MaxAssignmentsPerTeacher: 1},
	}

	result, err := New(Config{}).Optimize(input)
	require.NoError(t, err)
	assert.Len(t, result.Results, 1)
	require.Len(t, result.Unassigned, 1)
	assert.Contains(t, result.Unassigned[0].Reason, "assignment limit")
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	teachers := []Teacher{
		allDayTeacher("t-2", "Mathematics"),
		allDayTeacher("t-1", "Mathematics"),
	}
	courses := []Course{
		weekCourse("c-2", "Mathematics", 1),
		weekCourse("c-1", "Mathematics", 1),
	}
	input := Input{Teachers: teachers, Courses: courses, Weights: balancedWeights()}

	_, err := New(Config{}).Optimize(input)
	require.NoError(t, err)

	assert.Equal(t, "t-2", teachers[0].ID, "caller slice order is preserved")
	assert.Equal(t, "c-2", courses[0].ID)
}
