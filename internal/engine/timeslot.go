package engine

import "time"

// SlotGeneration carries generated lesson slots plus any lessons the date
// range could not accommodate.
type SlotGeneration struct {
	Slots     []TimeSlot
	Shortfall int
}

// GenerateSlots distributes the course's lessons across its date range. One
// lesson is placed per working day at the start of the teacher's window.
// A non-zero Shortfall means the range was exhausted first; callers must
// surface that as an availability conflict rather than truncating silently.
func GenerateSlots(teacher Teacher, course Course) SlotGeneration {
	return GenerateSlotsAvoiding(teacher, course, nil)
}

// GenerateSlotsAvoiding behaves like GenerateSlots but skips over busy
// blocks, pushing a lesson later within the same working window when its
// preferred position is taken. Used for conflict remediation.
func GenerateSlotsAvoiding(teacher Teacher, course Course, busy []TimeSlot) SlotGeneration {
	remaining := course.LessonsCount
	duration := course.LessonDurationMinutes
	if remaining <= 0 || duration <= 0 {
		return SlotGeneration{}
	}

	var slots []TimeSlot
	for day := dateOnly(course.StartDate); !day.After(dateOnly(course.EndDate)) && remaining > 0; day = day.AddDate(0, 0, 1) {
		window, ok := teacher.WindowFor(day.Weekday())
		if !ok {
			continue
		}
		start, placed := placeInWindow(day, window, duration, busy)
		if !placed {
			continue
		}
		slot := TimeSlot{Date: day, StartMinute: start, EndMinute: start + duration}
		slots = append(slots, slot)
		busy = append(busy, slot)
		remaining--
	}
	return SlotGeneration{Slots: slots, Shortfall: remaining}
}

// placeInWindow finds the earliest start inside the window where the lesson
// does not collide with a busy block on the same date.
func placeInWindow(day time.Time, window ClockRange, duration int, busy []TimeSlot) (int, bool) {
	start := window.StartMinute
	for start+duration <= window.EndMinute {
		collision := false
		for _, block := range busy {
			if !sameDate(block.Date, day) {
				continue
			}
			if start < block.EndMinute && block.StartMinute < start+duration {
				if block.EndMinute > start {
					start = block.EndMinute
				}
				collision = true
				break
			}
		}
		if !collision {
			return start, true
		}
	}
	return 0, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
