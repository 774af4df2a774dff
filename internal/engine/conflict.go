package engine

import (
	"fmt"
	"sort"
)

// DetectorConfig tunes workload-spread detection.
type DetectorConfig struct {
	// WorkloadSpreadThresholdMinutes is the tolerated gap between the most
	// and least loaded teacher. Twice the threshold escalates to critical.
	WorkloadSpreadThresholdMinutes int
}

// DefaultWorkloadSpreadThreshold is one full teaching day in minutes.
const DefaultWorkloadSpreadThreshold = 480

// DetectConflicts scans an assignment set (candidates plus pre-existing
// active ones) for scheduling problems. Detection is pure; the returned list
// is sorted by descending severity and stable across invocations.
func DetectConflicts(teachers []Teacher, courses []Course, assignments []Assignment, cfg DetectorConfig) []Conflict {
	teacherByID := make(map[string]Teacher, len(teachers))
	for _, teacher := range teachers {
		teacherByID[teacher.ID] = teacher
	}
	courseByID := make(map[string]Course, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}

	var conflicts []Conflict
	conflicts = append(conflicts, detectTimeOverlaps(assignments)...)
	conflicts = append(conflicts, detectQualificationMismatches(assignments, teacherByID, courseByID)...)
	conflicts = append(conflicts, detectAvailabilityViolations(assignments, teacherByID)...)
	conflicts = append(conflicts, detectWorkloadSpread(teachers, assignments, cfg)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Severity.Rank() != conflicts[j].Severity.Rank() {
			return conflicts[i].Severity.Rank() > conflicts[j].Severity.Rank()
		}
		if conflicts[i].Type != conflicts[j].Type {
			return conflicts[i].Type < conflicts[j].Type
		}
		return conflicts[i].Description < conflicts[j].Description
	})
	return conflicts
}

func detectTimeOverlaps(assignments []Assignment) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			a, b := assignments[i], assignments[j]
			if a.TeacherID != b.TeacherID {
				continue
			}
			if a.Status == AssignmentStatusCancelled || b.Status == AssignmentStatusCancelled {
				continue
			}
			if slot, other, overlapping := firstOverlap(a.Slots, b.Slots); overlapping {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictTimeOverlap,
					Severity: SeverityCritical,
					Description: fmt.Sprintf("teacher %s double-booked on %s: %s overlaps %s",
						a.TeacherID, slot.Date.Format("2006-01-02"), formatSlot(slot), formatSlot(other)),
					AssignmentIDs: []string{a.ID, b.ID},
				})
			}
		}
	}
	return conflicts
}

func firstOverlap(a, b []TimeSlot) (TimeSlot, TimeSlot, bool) {
	for _, slotA := range a {
		for _, slotB := range b {
			if slotA.Overlaps(slotB) {
				return slotA, slotB, true
			}
		}
	}
	return TimeSlot{}, TimeSlot{}, false
}

func detectQualificationMismatches(assignments []Assignment, teachers map[string]Teacher, courses map[string]Course) []Conflict {
	var conflicts []Conflict
	for _, assignment := range assignments {
		if assignment.Status == AssignmentStatusCancelled {
			continue
		}
		teacher, okTeacher := teachers[assignment.TeacherID]
		course, okCourse := courses[assignment.CourseID]
		if !okTeacher || !okCourse {
			continue
		}
		if !teacher.QualifiedFor(course.Topic) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictQualificationMismatch,
				Severity: SeverityCritical,
				Description: fmt.Sprintf("teacher %s is not qualified for topic %q of course %s",
					teacher.ID, course.Topic, course.ID),
				AssignmentIDs: []string{assignment.ID},
			})
		}
	}
	return conflicts
}

func detectAvailabilityViolations(assignments []Assignment, teachers map[string]Teacher) []Conflict {
	var conflicts []Conflict
	for _, assignment := range assignments {
		if assignment.Status == AssignmentStatusCancelled {
			continue
		}
		teacher, ok := teachers[assignment.TeacherID]
		if !ok {
			continue
		}
		severity := SeverityHigh
		if assignment.Status == AssignmentStatusActive {
			// Already-live assignments need review, not blocking.
			severity = SeverityMedium
		}
		for _, slot := range assignment.Slots {
			window, working := teacher.WindowFor(slot.Date.Weekday())
			if working && window.Contains(slot.StartMinute, slot.EndMinute) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Type:     ConflictAvailability,
				Severity: severity,
				Description: fmt.Sprintf("slot %s on %s falls outside teacher %s working hours",
					formatSlot(slot), slot.Date.Format("2006-01-02"), teacher.ID),
				AssignmentIDs: []string{assignment.ID},
			})
			break
		}
	}
	return conflicts
}

func detectWorkloadSpread(teachers []Teacher, assignments []Assignment, cfg DetectorConfig) []Conflict {
	if len(teachers) < 2 {
		return nil
	}
	threshold := cfg.WorkloadSpreadThresholdMinutes
	if threshold <= 0 {
		threshold = DefaultWorkloadSpreadThreshold
	}

	minutes := make(map[string]int, len(teachers))
	for _, teacher := range teachers {
		minutes[teacher.ID] = 0
	}
	affected := make(map[string][]string)
	for _, assignment := range assignments {
		if assignment.Status == AssignmentStatusCancelled {
			continue
		}
		if _, ok := minutes[assignment.TeacherID]; !ok {
			continue
		}
		minutes[assignment.TeacherID] += assignment.ScheduledMinutes()
		affected[assignment.TeacherID] = append(affected[assignment.TeacherID], assignment.ID)
	}

	var most, least Teacher
	first := true
	for _, teacher := range teachers {
		if first {
			most, least = teacher, teacher
			first = false
			continue
		}
		if minutes[teacher.ID] > minutes[most.ID] || (minutes[teacher.ID] == minutes[most.ID] && teacher.ID < most.ID) {
			most = teacher
		}
		if minutes[teacher.ID] < minutes[least.ID] || (minutes[teacher.ID] == minutes[least.ID] && teacher.ID < least.ID) {
			least = teacher
		}
	}

	spread := minutes[most.ID] - minutes[least.ID]
	if spread <= threshold {
		return nil
	}
	severity := SeverityHigh
	if spread > 2*threshold {
		severity = SeverityCritical
	}
	ids := append([]string{}, affected[most.ID]...)
	sort.Strings(ids)
	return []Conflict{{
		Type:     ConflictWorkloadExceeded,
		Severity: severity,
		Description: fmt.Sprintf("workload spread of %d minutes between teacher %s (%d) and teacher %s (%d) exceeds threshold %d",
			spread, most.ID, minutes[most.ID], least.ID, minutes[least.ID], threshold),
		AssignmentIDs: ids,
	}}
}

func formatSlot(slot TimeSlot) string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", slot.StartMinute/60, slot.StartMinute%60, slot.EndMinute/60, slot.EndMinute%60)
}
