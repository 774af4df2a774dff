package engine

import (
	"fmt"
	"time"
)

// AssignmentStatus tracks the lifecycle of a produced assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// ConflictType classifies detected scheduling problems.
type ConflictType string

const (
	ConflictTimeOverlap           ConflictType = "time_overlap"
	ConflictQualificationMismatch ConflictType = "qualification_mismatch"
	ConflictWorkloadExceeded      ConflictType = "workload_exceeded"
	ConflictAvailability          ConflictType = "availability_conflict"
)

// Severity orders conflicts from low to critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of the severity, higher is worse.
func (s Severity) Rank() int {
	return severityRank[s]
}

// ClockRange is a daily working window expressed in minutes from midnight.
type ClockRange struct {
	StartMinute int
	EndMinute   int
}

// Contains reports whether the given minute range fits inside the window.
func (r ClockRange) Contains(start, end int) bool {
	return start >= r.StartMinute && end <= r.EndMinute
}

// Teacher is a read-only instructor snapshot for one optimization run.
type Teacher struct {
	ID             string
	FullName       string
	Qualifications []string
	WorkingTimes   map[time.Weekday]ClockRange
}

// QualifiedFor reports whether the teacher holds the exact topic qualification.
func (t Teacher) QualifiedFor(topic string) bool {
	for _, q := range t.Qualifications {
		if q == topic {
			return true
		}
	}
	return false
}

// WindowFor returns the working window for a weekday, if any.
func (t Teacher) WindowFor(day time.Weekday) (ClockRange, bool) {
	window, ok := t.WorkingTimes[day]
	return window, ok
}

// Course is a read-only course snapshot for one optimization run.
type Course struct {
	ID                    string
	Name                  string
	Topic                 string
	LessonsCount          int
	LessonDurationMinutes int
	StartDate             time.Time
	EndDate               time.Time
}

// TimeSlot is a single scheduled lesson block.
type TimeSlot struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// DurationMinutes returns the slot length.
func (s TimeSlot) DurationMinutes() int {
	return s.EndMinute - s.StartMinute
}

// Overlaps reports whether two slots collide on the same date.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if !sameDate(s.Date, other.Date) {
		return false
	}
	return s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Assignment binds a teacher to a course with generated lesson slots.
type Assignment struct {
	ID        string
	TeacherID string
	CourseID  string
	Slots     []TimeSlot
	Status    AssignmentStatus
	Rationale string
	Fallback  bool
}

// ScheduledMinutes sums the duration of all slots.
func (a Assignment) ScheduledMinutes() int {
	total := 0
	for _, slot := range a.Slots {
		total += slot.DurationMinutes()
	}
	return total
}

// WeightSettings holds the three optimization factor percentages.
type WeightSettings struct {
	Profile    string
	Equality   float64
	Continuity float64
	Loyalty    float64
}

// Validate checks bounds and the sum-to-100 invariant (±0.1 tolerance).
func (w WeightSettings) Validate() error {
	for name, value := range map[string]float64{
		"equality":   w.Equality,
		"continuity": w.Continuity,
		"loyalty":    w.Loyalty,
	} {
		if value < 0 || value > 100 {
			return fmt.Errorf("%w: %s weight %.1f outside [0,100]", ErrInvalidWeights, name, value)
		}
	}
	sum := w.Equality + w.Continuity + w.Loyalty
	if sum < 99.9 || sum > 100.1 {
		return fmt.Errorf("%w: weights sum to %.1f, expected 100", ErrInvalidWeights, sum)
	}
	return nil
}

// Conflict describes one detected problem within an assignment set.
type Conflict struct {
	Type          ConflictType
	Severity      Severity
	Description   string
	AssignmentIDs []string
}

// Resolution records the outcome of one conflict remediation attempt.
type Resolution struct {
	Conflict Conflict
	Resolved bool
	Action   string
}

// AssignmentResult bundles one pairing with its conflicts and score.
type AssignmentResult struct {
	Teacher    Teacher
	Course     Course
	Assignment Assignment
	Conflicts  []Conflict
	Score      float64
}

// UnassignedCourse reports a course no teacher could take, with the reason.
type UnassignedCourse struct {
	Course Course
	Reason string
}

// Constraints carries optional caller-supplied limits for one run.
type Constraints struct {
	MaxAssignmentsPerTeacher int
}

// Input is the immutable snapshot consumed by one optimization run.
type Input struct {
	Teachers            []Teacher
	Courses             []Course
	ExistingAssignments []Assignment
	Weights             WeightSettings
	Constraints         Constraints
}

// Result is the full outcome of one optimization run. Conflicts holds
// problems that involve only pre-existing assignments and therefore attach
// to no produced AssignmentResult.
type Result struct {
	Results         []AssignmentResult
	Unassigned      []UnassignedCourse
	Conflicts       []Conflict
	Resolutions     []Resolution
	Recommendations []string
}
