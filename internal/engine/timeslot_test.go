package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayOnlyTeacher() Teacher {
	return Teacher{
		ID: "t-1",
		WorkingTimes: map[time.Weekday]ClockRange{
			time.Monday: {StartMinute: 8 * 60, EndMinute: 16 * 60},
		},
	}
}

func TestGenerateSlotsOneLessonPerWorkingDay(t *testing.T) {
	teacher := Teacher{
		ID: "t-1",
		WorkingTimes: map[time.Weekday]ClockRange{
			time.Monday:  {StartMinute: 8 * 60, EndMinute: 16 * 60},
			time.Tuesday: {StartMinute: 9 * 60, EndMinute: 12 * 60},
		},
	}
	course := Course{
		ID:                    "c-1",
		LessonsCount:          2,
		LessonDurationMinutes: 90,
		StartDate:             day("2026-01-05"), // Monday
		EndDate:               day("2026-01-09"),
	}

	generated := GenerateSlots(teacher, course)
	require.Len(t, generated.Slots, 2)
	assert.Zero(t, generated.Shortfall)

	assert.Equal(t, day("2026-01-05"), generated.Slots[0].Date)
	assert.Equal(t, 8*60, generated.Slots[0].StartMinute)
	assert.Equal(t, 8*60+90, generated.Slots[0].EndMinute)

	assert.Equal(t, day("2026-01-06"), generated.Slots[1].Date)
	assert.Equal(t, 9*60, generated.Slots[1].StartMinute)
}

func TestGenerateSlotsReportsShortfall(t *testing.T) {
	course := Course{
		ID:                    "c-1",
		LessonsCount:          3,
		LessonDurationMinutes: 60,
		StartDate:             day("2026-01-05"),
		EndDate:               day("2026-01-16"), // only two Mondays inside
	}

	generated := GenerateSlots(mondayOnlyTeacher(), course)
	assert.Len(t, generated.Slots, 2)
	assert.Equal(t, 1, generated.Shortfall, "exhausted range must be reported, not truncated")
}

func TestGenerateSlotsSkipsTooShortWindows(t *testing.T) {
	teacher := Teacher{
		ID: "t-1",
		WorkingTimes: map[time.Weekday]ClockRange{
			time.Monday: {StartMinute: 8 * 60, EndMinute: 8*60 + 30},
		},
	}
	course := Course{
		ID:                    "c-1",
		LessonsCount:          1,
		LessonDurationMinutes: 60,
		StartDate:             day("2026-01-05"),
		EndDate:               day("2026-01-05"),
	}

	generated := GenerateSlots(teacher, course)
	assert.Empty(t, generated.Slots)
	assert.Equal(t, 1, generated.Shortfall)
}

func TestGenerateSlotsAvoidingBusyBlocks(t *testing.T) {
	course := Course{
		ID:                    "c-1",
		LessonsCount:          1,
		LessonDurationMinutes: 60,
		StartDate:             day("2026-01-05"),
		EndDate:               day("2026-01-05"),
	}
	busy := []TimeSlot{{Date: day("2026-01-05"), StartMinute: 8 * 60, EndMinute: 9 * 60}}

	generated := GenerateSlotsAvoiding(mondayOnlyTeacher(), course, busy)
	require.Len(t, generated.Slots, 1)
	assert.Equal(t, 9*60, generated.Slots[0].StartMinute, "lesson shifts past the busy block")
}

func TestGenerateSlotsAvoidingFullDay(t *testing.T) {
	course := Course{
		ID:                    "c-1",
		LessonsCount:          1,
		LessonDurationMinutes: 60,
		StartDate:             day("2026-01-05"),
		EndDate:               day("2026-01-05"),
	}
	busy := []TimeSlot{{Date: day("2026-01-05"), StartMinute: 8 * 60, EndMinute: 16 * 60}}

	generated := GenerateSlotsAvoiding(mondayOnlyTeacher(), course, busy)
	assert.Empty(t, generated.Slots)
	assert.Equal(t, 1, generated.Shortfall)
}

func TestGenerateSlotsZeroLessons(t *testing.T) {
	generated := GenerateSlots(mondayOnlyTeacher(), Course{LessonsCount: 0, LessonDurationMinutes: 60})
	assert.Empty(t, generated.Slots)
	assert.Zero(t, generated.Shortfall)
}
