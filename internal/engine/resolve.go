package engine

import "fmt"

// ResolveConflicts attempts automatic remediation per conflict type. Only
// time overlaps are auto-resolvable (by regenerating slots around the other
// assignment); everything else is downgraded to pending and surfaced for
// manual review. Qualification mismatches are never resolved.
//
// The assignments map holds the candidate assignments produced this run,
// keyed by ID; resolution mutates their slots and status in place. Conflicts
// are never dropped: every input conflict yields a Resolution entry.
func ResolveConflicts(
	conflicts []Conflict,
	candidates map[string]*Assignment,
	teachers map[string]Teacher,
	courses map[string]Course,
	busyOutside func(assignmentID string) []TimeSlot,
) []Resolution {
	resolutions := make([]Resolution, 0, len(conflicts))
	for _, conflict := range conflicts {
		switch conflict.Type {
		case ConflictTimeOverlap:
			resolutions = append(resolutions, resolveOverlap(conflict, candidates, teachers, courses, busyOutside))
		case ConflictAvailability:
			markPending(conflict.AssignmentIDs, candidates)
			resolutions = append(resolutions, Resolution{
				Conflict: conflict,
				Resolved: false,
				Action:   "requires a different teacher or adjusted course dates; flagged for manual review",
			})
		case ConflictWorkloadExceeded:
			markPending(conflict.AssignmentIDs, candidates)
			resolutions = append(resolutions, Resolution{
				Conflict: conflict,
				Resolved: false,
				Action:   "rebalancing requires reassigning courses to a different teacher; rerun optimization with a higher equality weight",
			})
		case ConflictQualificationMismatch:
			markPending(conflict.AssignmentIDs, candidates)
			resolutions = append(resolutions, Resolution{
				Conflict: conflict,
				Resolved: false,
				Action:   "blocking: qualification mismatches are never auto-resolved",
			})
		default:
			resolutions = append(resolutions, Resolution{Conflict: conflict, Resolved: false, Action: "no automatic remediation available"})
		}
	}
	return resolutions
}

// resolveOverlap regenerates slots for the candidate assignment involved in
// the overlap, avoiding every other slot the teacher already holds.
func resolveOverlap(
	conflict Conflict,
	candidates map[string]*Assignment,
	teachers map[string]Teacher,
	courses map[string]Course,
	busyOutside func(assignmentID string) []TimeSlot,
) Resolution {
	target := pickRegenTarget(conflict.AssignmentIDs, candidates)
	if target == nil {
		// Both assignments pre-exist this run; nothing the engine may mutate.
		return Resolution{
			Conflict: conflict,
			Resolved: false,
			Action:   "overlap between existing assignments; flagged for manual review",
		}
	}

	teacher, okTeacher := teachers[target.TeacherID]
	course, okCourse := courses[target.CourseID]
	if !okTeacher || !okCourse {
		target.Status = AssignmentStatusPending
		return Resolution{Conflict: conflict, Resolved: false, Action: "snapshot incomplete; assignment marked pending"}
	}

	regenerated := GenerateSlotsAvoiding(teacher, course, busyOutside(target.ID))
	if regenerated.Shortfall > 0 {
		target.Status = AssignmentStatusPending
		return Resolution{
			Conflict: conflict,
			Resolved: false,
			Action: fmt.Sprintf("rescheduling failed: %d lesson(s) cannot fit within the course date range; assignment marked pending",
				regenerated.Shortfall),
		}
	}

	target.Slots = regenerated.Slots
	return Resolution{
		Conflict: conflict,
		Resolved: true,
		Action:   fmt.Sprintf("assignment %s rescheduled around the conflicting slots", target.ID),
	}
}

// pickRegenTarget prefers the lexicographically later candidate so the
// earlier assignment keeps its original slots.
func pickRegenTarget(ids []string, candidates map[string]*Assignment) *Assignment {
	var target *Assignment
	for _, id := range ids {
		if assignment, ok := candidates[id]; ok {
			if target == nil || assignment.ID > target.ID {
				target = assignment
			}
		}
	}
	return target
}

func markPending(ids []string, candidates map[string]*Assignment) {
	for _, id := range ids {
		if assignment, ok := candidates[id]; ok {
			assignment.Status = AssignmentStatusPending
		}
	}
}
