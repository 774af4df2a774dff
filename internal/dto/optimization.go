// Package dto holds JSON-facing shapes for the optimization endpoints,
// keeping the engine's internal types off the wire.
package dto

import (
	"time"

	"github.com/noah-isme/edu-assign-api/internal/engine"
	"github.com/noah-isme/edu-assign-api/internal/models"
)

// SlotDTO is one scheduled lesson block.
type SlotDTO struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AssignmentDTO is the wire shape of one produced assignment.
type AssignmentDTO struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	CourseID  string    `json:"course_id"`
	Slots     []SlotDTO `json:"slots"`
	Status    string    `json:"status"`
	Rationale string    `json:"rationale"`
	Fallback  bool      `json:"fallback"`
}

// ConflictDTO describes one detected scheduling problem.
type ConflictDTO struct {
	Type          string   `json:"type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	AssignmentIDs []string `json:"assignment_ids"`
}

// ResolutionDTO records the outcome of one remediation attempt.
type ResolutionDTO struct {
	Conflict ConflictDTO `json:"conflict"`
	Resolved bool        `json:"resolved"`
	Action   string      `json:"action"`
}

// AssignmentResultDTO bundles one pairing with its conflicts and score.
type AssignmentResultDTO struct {
	TeacherID   string        `json:"teacher_id"`
	TeacherName string        `json:"teacher_name"`
	CourseID    string        `json:"course_id"`
	CourseName  string        `json:"course_name"`
	Assignment  AssignmentDTO `json:"assignment"`
	Conflicts   []ConflictDTO `json:"conflicts,omitempty"`
	Score       float64       `json:"score"`
}

// UnassignedCourseDTO reports a course no teacher could take.
type UnassignedCourseDTO struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Topic      string `json:"topic"`
	Reason     string `json:"reason"`
}

// OptimizationResponse is the full outcome of one optimization run.
type OptimizationResponse struct {
	Profile         string                `json:"profile"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Results         []AssignmentResultDTO `json:"results"`
	Unassigned      []UnassignedCourseDTO `json:"unassigned"`
	Conflicts       []ConflictDTO         `json:"conflicts,omitempty"`
	Resolutions     []ResolutionDTO       `json:"resolutions,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
	Persisted       bool                  `json:"persisted"`
}

// FromEngineResult converts an engine outcome into the wire shape.
func FromEngineResult(profile string, result *engine.Result, generatedAt time.Time) *OptimizationResponse {
	response := &OptimizationResponse{
		Profile:         profile,
		GeneratedAt:     generatedAt,
		Results:         make([]AssignmentResultDTO, 0, len(result.Results)),
		Unassigned:      make([]UnassignedCourseDTO, 0, len(result.Unassigned)),
		Recommendations: result.Recommendations,
	}

	for _, entry := range result.Results {
		response.Results = append(response.Results, AssignmentResultDTO{
			TeacherID:   entry.Teacher.ID,
			TeacherName: entry.Teacher.FullName,
			CourseID:    entry.Course.ID,
			CourseName:  entry.Course.Name,
			Assignment:  assignmentDTO(entry.Assignment),
			Conflicts:   conflictDTOs(entry.Conflicts),
			Score:       entry.Score,
		})
	}
	for _, entry := range result.Unassigned {
		response.Unassigned = append(response.Unassigned, UnassignedCourseDTO{
			CourseID:   entry.Course.ID,
			CourseName: entry.Course.Name,
			Topic:      entry.Course.Topic,
			Reason:     entry.Reason,
		})
	}
	response.Conflicts = conflictDTOs(result.Conflicts)
	for _, resolution := range result.Resolutions {
		response.Resolutions = append(response.Resolutions, ResolutionDTO{
			Conflict: conflictDTO(resolution.Conflict),
			Resolved: resolution.Resolved,
			Action:   resolution.Action,
		})
	}
	return response
}

func assignmentDTO(assignment engine.Assignment) AssignmentDTO {
	slots := make([]SlotDTO, 0, len(assignment.Slots))
	for _, slot := range assignment.Slots {
		slots = append(slots, SlotDTO{
			Date:  slot.Date.Format("2006-01-02"),
			Start: models.FormatClock(slot.StartMinute),
			End:   models.FormatClock(slot.EndMinute),
		})
	}
	return AssignmentDTO{
		ID:        assignment.ID,
		TeacherID: assignment.TeacherID,
		CourseID:  assignment.CourseID,
		Slots:     slots,
		Status:    string(assignment.Status),
		Rationale: assignment.Rationale,
		Fallback:  assignment.Fallback,
	}
}

func conflictDTO(conflict engine.Conflict) ConflictDTO {
	return ConflictDTO{
		Type:          string(conflict.Type),
		Severity:      string(conflict.Severity),
		Description:   conflict.Description,
		AssignmentIDs: conflict.AssignmentIDs,
	}
}

func conflictDTOs(conflicts []engine.Conflict) []ConflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]ConflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, conflictDTO(conflict))
	}
	return out
}
