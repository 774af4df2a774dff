package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOverlapReschedulesCandidate(t *testing.T) {
	teacher := allDayTeacher("t-1", "Mathematics")
	course := Course{
		ID: "c-2", Topic: "Mathematics", LessonsCount: 1, LessonDurationMinutes: 60,
		StartDate: day("2026-01-05"), EndDate: day("2026-01-09"),
	}
	existingSlot := TimeSlot{Date: day("2026-01-05"), StartMinute: 8 * 60, EndMinute: 9 * 60}
	candidate := &Assignment{
		ID: "opt-c-2-t-1", TeacherID: "t-1", CourseID: "c-2", Status: AssignmentStatusActive,
		Slots: []TimeSlot{{Date: day("2026-01-05"), StartMinute: 8 * 60, EndMinute: 9 * 60}},
	}
	conflict := Conflict{
		Type:          ConflictTimeOverlap,
		Severity:      SeverityCritical,
		AssignmentIDs: []string{"a-existing", "opt-c-2-t-1"},
	}

	resolutions := ResolveConflicts(
		[]Conflict{conflict},
		map[string]*Assignment{candidate.ID: candidate},
		map[string]Teacher{"t-1": teacher},
		map[string]Course{"c-2": course},
		func(string) []TimeSlot { return []TimeSlot{existingSlot} },
	)

	require.Len(t, resolutions, 1)
	assert.True(t, resolutions[0].Resolved)
	require.Len(t, candidate.Slots, 1)
	assert.Equal(t, 9*60, candidate.Slots[0].StartMinute, "slot moved past the existing lesson")
}

func TestResolveOverlapBetweenExistingAssignmentsStaysUnresolved(t *testing.T) {
	conflict := Conflict{
		Type:          ConflictTimeOverlap,
		Severity:      SeverityCritical,
		AssignmentIDs: []string{"a-1", "a-2"},
	}
	resolutions := ResolveConflicts([]Conflict{conflict}, map[string]*Assignment{}, nil, nil, func(string) []TimeSlot { return nil })
	require.Len(t, resolutions, 1)
	assert.False(t, resolutions[0].Resolved)
	assert.Contains(t, resolutions[0].Action, "manual review")
}

func TestResolveAvailabilityMarksPending(t *testing.T) {
	candidate := &Assignment{ID: "a-1", Status: AssignmentStatusActive}
	conflict := Conflict{Type: ConflictAvailability, Severity: SeverityHigh, AssignmentIDs: []string{"a-1"}}

	resolutions := ResolveConflicts([]Conflict{conflict}, map[string]*Assignment{"a-1": candidate}, nil, nil, func(string) []TimeSlot { return nil })
	require.Len(t, resolutions, 1)
	assert.False(t, resolutions[0].Resolved)
	assert.Equal(t, AssignmentStatusPending, candidate.Status)
}

func TestResolveQualificationMismatchNeverResolves(t *testing.T) {
	candidate := &Assignment{ID: "a-1", Status: AssignmentStatusActive}
	conflict := Conflict{Type: ConflictQualificationMismatch, Severity: SeverityCritical, AssignmentIDs: []string{"a-1"}}

	resolutions := ResolveConflicts([]Conflict{conflict}, map[string]*Assignment{"a-1": candidate}, nil, nil, func(string) []TimeSlot { return nil })
	require.Len(t, resolutions, 1)
	assert.False(t, resolutions[0].Resolved)
	assert.Contains(t, resolutions[0].Action, "blocking")
	assert.Equal(t, AssignmentStatusPending, candidate.Status)
}

func TestResolveWorkloadExceededRecommendsRerun(t *testing.T) {
	conflict := Conflict{Type: ConflictWorkloadExceeded, Severity: SeverityHigh, AssignmentIDs: []string{"a-1"}}
	resolutions := ResolveConflicts([]Conflict{conflict}, map[string]*Assignment{}, nil, nil, func(string) []TimeSlot { return nil })
	require.Len(t, resolutions, 1)
	assert.False(t, resolutions[0].Resolved)
	assert.Contains(t, resolutions[0].Action, "equality weight")
}

func TestResolveConflictsNeverDropsInput(t *testing.T) {
	conflicts := []Conflict{
		{Type: ConflictTimeOverlap, AssignmentIDs: []string{"a-1", "a-2"}},
		{Type: ConflictAvailability, AssignmentIDs: []string{"a-3"}},
		{Type: ConflictWorkloadExceeded, AssignmentIDs: []string{"a-1"}},
		{Type: ConflictQualificationMismatch, AssignmentIDs: []string{"a-4"}},
	}
	resolutions := ResolveConflicts(conflicts, map[string]*Assignment{}, nil, nil, func(string) []TimeSlot { return nil })
	assert.Len(t, resolutions, len(conflicts))
}
