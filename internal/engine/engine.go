// Package engine implements the assignment optimization core: qualification
// matching, weighted scoring, cost-matrix solving, time-slot generation and
// conflict handling. The engine is purely computational: it holds no state
// between calls, performs no I/O and never mutates caller-supplied
// snapshots, so concurrent runs over independent inputs are safe.
package engine

import (
	"fmt"
	"sort"
	"strings"
)

// fallbackPenalty halves the score of keyword-matched assignments.
const fallbackPenalty = 0.5

// Config tunes a single engine instance.
type Config struct {
	// ExactSolverMaxSize is the largest matrix side solved exactly; larger
	// instances fall back to the greedy heuristic. Zero disables the exact
	// solver entirely.
	ExactSolverMaxSize int
	// WorkloadSpreadThresholdMinutes feeds the workload-exceeded detector.
	WorkloadSpreadThresholdMinutes int
}

// Engine runs the optimization pipeline over immutable snapshots.
type Engine struct {
	cfg Config
}

// New constructs an engine, applying defaults for zero-valued knobs.
func New(cfg Config) *Engine {
	if cfg.ExactSolverMaxSize < 0 {
		cfg.ExactSolverMaxSize = 0
	}
	if cfg.WorkloadSpreadThresholdMinutes <= 0 {
		cfg.WorkloadSpreadThresholdMinutes = DefaultWorkloadSpreadThreshold
	}
	return &Engine{cfg: cfg}
}

// Optimize executes one full run: validate, match, solve, schedule, detect,
// resolve, fall back. Identical inputs always yield identical results.
func (e *Engine) Optimize(input Input) (*Result, error) {
	if len(input.Teachers) == 0 {
		return nil, ErrNoTeachers
	}
	if len(input.Courses) == 0 {
		return nil, ErrNoCourses
	}
	if err := input.Weights.Validate(); err != nil {
		return nil, err
	}

	teachers := sortedTeachers(input.Teachers)
	courses := sortedCourses(input.Courses)
	existing := append([]Assignment(nil), input.ExistingAssignments...)

	teacherByID := make(map[string]Teacher, len(teachers))
	for _, teacher := range teachers {
		teacherByID[teacher.ID] = teacher
	}
	courseByID := make(map[string]Course, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}

	run := &optimizationRun{
		engine:      e,
		scorer:      NewScorer(input.Weights),
		weights:     input.Weights,
		constraints: input.Constraints,
		teachers:    teachers,
		teacherByID: teacherByID,
		courseByID:  courseByID,
		existing:    existing,
		workloads:   activeWorkloads(teachers, existing),
		busy:        activeBusySlots(existing),
		counts:      activeAssignmentCounts(existing),
		slotCache:   make(map[string][]TimeSlot),
	}

	var matchable, unmatched []Course
	for _, course := range courses {
		if len(QualifiedTeachers(course, teachers)) > 0 {
			matchable = append(matchable, course)
		} else {
			unmatched = append(unmatched, course)
		}
	}

	run.solveRounds(matchable)
	run.applyFallback(unmatched)
	run.detectAndResolve()

	return run.buildResult(), nil
}

// optimizationRun carries the mutable working state of a single Optimize
// call. It lives on the stack of one invocation and is never shared.
type optimizationRun struct {
	engine      *Engine
	scorer      *Scorer
	weights     WeightSettings
	constraints Constraints

	teachers    []Teacher
	teacherByID map[string]Teacher
	courseByID  map[string]Course
	existing    []Assignment

	workloads map[string]int
	busy      map[string][]TimeSlot
	counts    map[string]int
	slotCache map[string][]TimeSlot

	candidates  []*Assignment
	results     map[string]*AssignmentResult
	unassigned  []UnassignedCourse
	resolutions []Resolution
	orphaned    []Conflict
}

// solveRounds repeatedly builds a cost matrix over the remaining courses and
// lets the solver pick one course per teacher per round, so a teacher may
// hold several courses without ever being double-selected within a round.
func (r *optimizationRun) solveRounds(courses []Course) {
	remaining := append([]Course(nil), courses...)
	for len(remaining) > 0 {
		eligible := r.eligibleTeachers()
		if len(eligible) == 0 {
			break
		}

		matrix := BuildCostMatrix(eligible, remaining, r.weights, r.workloads, r.existing, r.estimatedSlots)
		solver := SelectSolver(matrix, r.engine.cfg.ExactSolverMaxSize)
		pairs := solver.Solve(matrix)
		if len(pairs) == 0 {
			break
		}

		roundWorkloads := copyWorkloads(r.workloads)
		taken := make(map[string]bool, len(pairs))
		for _, pair := range pairs {
			teacher := r.teacherByID[matrix.TeacherIDs[pair.TeacherIndex]]
			course := r.courseByID[matrix.CourseIDs[pair.CourseIndex]]
			r.commitPairing(teacher, course, roundWorkloads, false)
			taken[course.ID] = true
		}

		next := remaining[:0]
		for _, course := range remaining {
			if !taken[course.ID] {
				next = append(next, course)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}

	for _, course := range remaining {
		r.unassigned = append(r.unassigned, UnassignedCourse{
			Course: course,
			Reason: "all qualified teachers have reached their assignment limit",
		})
	}
}

// applyFallback handles courses with zero exact qualification matches via
// keyword-overlap ranking. Courses without any overlap stay unassigned.
func (r *optimizationRun) applyFallback(courses []Course) {
	for _, course := range courses {
		teacher, overlap, ok := fallbackCandidate(course, r.eligibleTeachers())
		if !ok {
			r.unassigned = append(r.unassigned, UnassignedCourse{
				Course: course,
				Reason: fmt.Sprintf("no teacher qualifies for topic %q, not even by keyword overlap", course.Topic),
			})
			continue
		}
		result := r.commitPairing(teacher, course, copyWorkloads(r.workloads), true)
		result.Score = clampScore(result.Score * fallbackPenalty)
		result.Assignment.Rationale = fmt.Sprintf(
			"fallback assignment: no exactly qualified teacher for topic %q; teacher %s matched %d topic keyword(s) in other qualifications; score penalized by 50%%; requires manual review",
			course.Topic, teacher.ID, overlap)
		result.Assignment.Fallback = true
	}
}

// commitPairing generates slots, scores the pairing and records a candidate
// assignment. scoreWorkloads is the workload view the scorer should see,
// frozen at round start so in-round ordering cannot influence scores.
func (r *optimizationRun) commitPairing(teacher Teacher, course Course, scoreWorkloads map[string]int, fallback bool) *AssignmentResult {
	generated := GenerateSlotsAvoiding(teacher, course, r.busy[teacher.ID])
	score := r.scorer.Score(teacher, course, generated.Slots, scoreWorkloads, r.existing)
	equality, continuity, loyalty := r.scorer.Factors(teacher, course, generated.Slots, scoreWorkloads, r.existing)

	assignment := &Assignment{
		ID:        fmt.Sprintf("opt-%s-%s", course.ID, teacher.ID),
		TeacherID: teacher.ID,
		CourseID:  course.ID,
		Slots:     generated.Slots,
		Status:    AssignmentStatusActive,
		Fallback:  fallback,
		Rationale: fmt.Sprintf(
			"assigned via weighted optimization (profile %q): equality %.2f, continuity %.2f, loyalty %.2f; score %.1f/100",
			r.weights.Profile, equality, continuity, loyalty, score),
	}

	result := &AssignmentResult{
		Teacher:    teacher,
		Course:     course,
		Assignment: *assignment,
		Score:      score,
	}
	if generated.Shortfall > 0 {
		assignment.Status = AssignmentStatusPending
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:     ConflictAvailability,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("course %s: %d of %d lessons cannot be scheduled within %s..%s given teacher %s availability",
				course.ID, generated.Shortfall, course.LessonsCount,
				course.StartDate.Format("2006-01-02"), course.EndDate.Format("2006-01-02"), teacher.ID),
			AssignmentIDs: []string{assignment.ID},
		})
		result.Assignment = *assignment
	}

	r.candidates = append(r.candidates, assignment)
	if r.results == nil {
		r.results = make(map[string]*AssignmentResult)
	}
	r.results[assignment.ID] = result

	r.workloads[teacher.ID] += assignment.ScheduledMinutes()
	r.busy[teacher.ID] = append(r.busy[teacher.ID], generated.Slots...)
	r.counts[teacher.ID]++
	return result
}

// detectAndResolve runs conflict detection over candidates plus existing
// assignments, attempts remediation, then re-detects so resolved overlaps
// drop out and stubborn ones surface again.
func (r *optimizationRun) detectAndResolve() {
	all := r.allAssignments()
	conflicts := DetectConflicts(r.teachers, r.courseValues(), all, DetectorConfig{
		WorkloadSpreadThresholdMinutes: r.engine.cfg.WorkloadSpreadThresholdMinutes,
	})
	if len(conflicts) == 0 {
		return
	}

	candidateByID := make(map[string]*Assignment, len(r.candidates))
	for _, candidate := range r.candidates {
		candidateByID[candidate.ID] = candidate
	}

	r.resolutions = ResolveConflicts(conflicts, candidateByID, r.teacherByID, r.courseByID, func(assignmentID string) []TimeSlot {
		return r.busyExcluding(assignmentID)
	})

	final := DetectConflicts(r.teachers, r.courseValues(), r.allAssignments(), DetectorConfig{
		WorkloadSpreadThresholdMinutes: r.engine.cfg.WorkloadSpreadThresholdMinutes,
	})
	for _, conflict := range final {
		attached := false
		for _, id := range conflict.AssignmentIDs {
			if result, ok := r.results[id]; ok {
				result.Conflicts = append(result.Conflicts, conflict)
				attached = true
				if conflict.Severity == SeverityCritical || conflict.Severity == SeverityHigh {
					candidate := candidateByID[id]
					if candidate != nil {
						candidate.Status = AssignmentStatusPending
						result.Assignment.Status = AssignmentStatusPending
					}
				}
			}
		}
		if !attached {
			r.orphaned = append(r.orphaned, conflict)
		}
	}

	// Slots may have been regenerated during resolution.
	for id, result := range r.results {
		if candidate, ok := candidateByID[id]; ok {
			result.Assignment.Slots = candidate.Slots
			result.Assignment.Status = candidate.Status
		}
	}
}

func (r *optimizationRun) buildResult() *Result {
	results := make([]AssignmentResult, 0, len(r.results))
	for _, result := range r.results {
		results = append(results, *result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Course.ID != results[j].Course.ID {
			return results[i].Course.ID < results[j].Course.ID
		}
		return results[i].Teacher.ID < results[j].Teacher.ID
	})
	sort.Slice(r.unassigned, func(i, j int) bool {
		return r.unassigned[i].Course.ID < r.unassigned[j].Course.ID
	})

	return &Result{
		Results:         results,
		Unassigned:      r.unassigned,
		Conflicts:       r.orphaned,
		Resolutions:     r.resolutions,
		Recommendations: r.recommendations(results),
	}
}

// recommendations distills aggregate observations into display-ready text.
func (r *optimizationRun) recommendations(results []AssignmentResult) []string {
	var notes []string

	spread := false
	for _, result := range results {
		for _, conflict := range result.Conflicts {
			if conflict.Type == ConflictWorkloadExceeded {
				spread = true
			}
		}
	}
	for _, conflict := range r.orphaned {
		if conflict.Type == ConflictWorkloadExceeded {
			spread = true
		}
	}
	if spread {
		if r.weights.Equality < 30 {
			notes = append(notes, fmt.Sprintf("Teaching load is unevenly distributed; the %q profile weighs equality at only %.0f%%. Consider a profile with a higher equality weight and rerun.", r.weights.Profile, r.weights.Equality))
		} else {
			notes = append(notes, "Teaching load remains unevenly distributed despite the equality weight; consider hiring or redistributing qualifications.")
		}
	}

	fallbacks := 0
	for _, result := range results {
		if result.Assignment.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		notes = append(notes, fmt.Sprintf("%d course(s) were assigned via keyword fallback matching and need manual qualification review.", fallbacks))
	}

	if len(r.unassigned) > 0 {
		topics := make([]string, 0, len(r.unassigned))
		for _, entry := range r.unassigned {
			topics = append(topics, entry.Course.Topic)
		}
		notes = append(notes, fmt.Sprintf("%d course(s) could not be assigned; missing qualifications for: %s.", len(r.unassigned), strings.Join(topics, ", ")))
	}
	return notes
}

func (r *optimizationRun) eligibleTeachers() []Teacher {
	max := r.constraints.MaxAssignmentsPerTeacher
	if max <= 0 {
		return r.teachers
	}
	eligible := make([]Teacher, 0, len(r.teachers))
	for _, teacher := range r.teachers {
		if r.counts[teacher.ID] < max {
			eligible = append(eligible, teacher)
		}
	}
	return eligible
}

// estimatedSlots memoizes clean-calendar slot generation used for the
// continuity term of the cost matrix.
func (r *optimizationRun) estimatedSlots(teacher Teacher, course Course) []TimeSlot {
	key := teacher.ID + "\x00" + course.ID
	if slots, ok := r.slotCache[key]; ok {
		return slots
	}
	slots := GenerateSlots(teacher, course).Slots
	r.slotCache[key] = slots
	return slots
}

func (r *optimizationRun) allAssignments() []Assignment {
	all := make([]Assignment, 0, len(r.existing)+len(r.candidates))
	all = append(all, r.existing...)
	for _, candidate := range r.candidates {
		all = append(all, *candidate)
	}
	return all
}

// busyExcluding returns every non-cancelled slot held by the teacher owning
// the given assignment, minus that assignment's own slots.
func (r *optimizationRun) busyExcluding(assignmentID string) []TimeSlot {
	var teacherID string
	for _, assignment := range r.allAssignments() {
		if assignment.ID == assignmentID {
			teacherID = assignment.TeacherID
			break
		}
	}
	var slots []TimeSlot
	for _, assignment := range r.allAssignments() {
		if assignment.ID == assignmentID || assignment.TeacherID != teacherID {
			continue
		}
		if assignment.Status == AssignmentStatusCancelled {
			continue
		}
		slots = append(slots, assignment.Slots...)
	}
	return slots
}

func (r *optimizationRun) courseValues() []Course {
	courses := make([]Course, 0, len(r.courseByID))
	for _, course := range r.courseByID {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func sortedTeachers(teachers []Teacher) []Teacher {
	out := append([]Teacher(nil), teachers...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedCourses(courses []Course) []Course {
	out := append([]Course(nil), courses...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func activeWorkloads(teachers []Teacher, existing []Assignment) map[string]int {
	workloads := make(map[string]int, len(teachers))
	for _, teacher := range teachers {
		workloads[teacher.ID] = 0
	}
	for _, assignment := range existing {
		if assignment.Status != AssignmentStatusActive {
			continue
		}
		if _, ok := workloads[assignment.TeacherID]; ok {
			workloads[assignment.TeacherID] += assignment.ScheduledMinutes()
		}
	}
	return workloads
}

func activeBusySlots(existing []Assignment) map[string][]TimeSlot {
	busy := make(map[string][]TimeSlot)
	for _, assignment := range existing {
		if assignment.Status == AssignmentStatusCancelled {
			continue
		}
		busy[assignment.TeacherID] = append(busy[assignment.TeacherID], assignment.Slots...)
	}
	return busy
}

func activeAssignmentCounts(existing []Assignment) map[string]int {
	counts := make(map[string]int)
	for _, assignment := range existing {
		if assignment.Status == AssignmentStatusActive {
			counts[assignment.TeacherID]++
		}
	}
	return counts
}

func copyWorkloads(workloads map[string]int) map[string]int {
	out := make(map[string]int, len(workloads))
	for id, minutes := range workloads {
		out[id] = minutes
	}
	return out
}
