package engine

import "sort"

// Loyalty ladder per prior relationship strength.
const (
	loyaltyPriorCourse    = 1.0
	loyaltyQualified      = 0.7
	loyaltyKeywordOverlap = 0.4
	loyaltyNone           = 0.1
)

// continuityNeutral applies when a course has at most one lesson.
const continuityNeutral = 0.5

// Scorer computes the weighted three-factor score for candidate pairings.
// All factors are deterministic functions of the snapshot.
type Scorer struct {
	weights WeightSettings
}

// NewScorer constructs a scorer for validated weights.
func NewScorer(weights WeightSettings) *Scorer {
	return &Scorer{weights: weights}
}

// Score combines equality, continuity and loyalty into a 0-100 score.
// workloads maps teacher ID to currently scheduled minutes; slots are the
// would-be lesson slots for this pairing.
func (s *Scorer) Score(teacher Teacher, course Course, slots []TimeSlot, workloads map[string]int, existing []Assignment) float64 {
	equality := equalityScore(teacher.ID, course.LessonsCount*course.LessonDurationMinutes, workloads)
	continuity := continuityScore(slots)
	loyalty := loyaltyScore(teacher, course, existing)

	combined := equality*s.weights.Equality/100 +
		continuity*s.weights.Continuity/100 +
		loyalty*s.weights.Loyalty/100
	return clampScore(combined * 100)
}

// Factors returns the individual factor scores, used for rationale text.
func (s *Scorer) Factors(teacher Teacher, course Course, slots []TimeSlot, workloads map[string]int, existing []Assignment) (equality, continuity, loyalty float64) {
	equality = equalityScore(teacher.ID, course.LessonsCount*course.LessonDurationMinutes, workloads)
	continuity = continuityScore(slots)
	loyalty = loyaltyScore(teacher, course, existing)
	return equality, continuity, loyalty
}

// equalityScore rewards teachers below the population average workload after
// hypothetically adding the course. An exactly level population scores 1.0
// for everyone.
func equalityScore(teacherID string, addedMinutes int, workloads map[string]int) float64 {
	if len(workloads) == 0 {
		return 1
	}
	total := 0
	level := true
	var reference int
	first := true
	for _, minutes := range workloads {
		total += minutes
		if first {
			reference = minutes
			first = false
		} else if minutes != reference {
			level = false
		}
	}
	if level {
		return 1
	}

	n := float64(len(workloads))
	average := (float64(total) + float64(addedMinutes)) / n
	after := float64(workloads[teacherID] + addedMinutes)
	deviation := after - average

	scale := average
	if scale < float64(addedMinutes) {
		scale = float64(addedMinutes)
	}
	if scale <= 0 {
		scale = 1
	}
	return clamp01(0.5 - deviation/(2*scale))
}

// continuityScore is the fraction of lessons scheduled back-to-back with the
// previous lesson on the same day. Single-lesson courses score neutral.
func continuityScore(slots []TimeSlot) float64 {
	if len(slots) <= 1 {
		return continuityNeutral
	}
	ordered := make([]TimeSlot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].StartMinute < ordered[j].StartMinute
	})

	adjacent := 0
	for i := 0; i < len(ordered)-1; i++ {
		if sameDate(ordered[i].Date, ordered[i+1].Date) && ordered[i].EndMinute == ordered[i+1].StartMinute {
			adjacent++
		}
	}
	return float64(adjacent) / float64(len(ordered)-1)
}

// loyaltyScore prefers teachers with a prior non-cancelled assignment to the
// same course, then exact qualification, then keyword affinity.
func loyaltyScore(teacher Teacher, course Course, existing []Assignment) float64 {
	for _, assignment := range existing {
		if assignment.TeacherID == teacher.ID && assignment.CourseID == course.ID && assignment.Status != AssignmentStatusCancelled {
			return loyaltyPriorCourse
		}
	}
	if teacher.QualifiedFor(course.Topic) {
		return loyaltyQualified
	}
	if keywordOverlap(course.Topic, teacher.Qualifications) > 0 {
		return loyaltyKeywordOverlap
	}
	return loyaltyNone
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
