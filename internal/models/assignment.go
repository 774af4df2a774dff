package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/edu-assign-api/internal/engine"
)

// Assignment statuses stored in the assignments table. Values mirror the
// engine's assignment lifecycle.
const (
	AssignmentStatusPending   = string(engine.AssignmentStatusPending)
	AssignmentStatusActive    = string(engine.AssignmentStatusActive)
	AssignmentStatusCompleted = string(engine.AssignmentStatusCompleted)
	AssignmentStatusCancelled = string(engine.AssignmentStatusCancelled)
)

// Assignment links a teacher to a course with concrete lesson slots.
type Assignment struct {
	ID        string         `db:"id" json:"id"`
	TeacherID string         `db:"teacher_id" json:"teacher_id"`
	CourseID  string         `db:"course_id" json:"course_id"`
	Slots     types.JSONText `db:"slots" json:"slots"`
	Status    string         `db:"status" json:"status"`
	Score     *float64       `db:"score" json:"score,omitempty"`
	Rationale string         `db:"rationale" json:"rationale"`
	Fallback  bool           `db:"fallback" json:"fallback"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter captures filtering options for listing assignments.
type AssignmentFilter struct {
	TeacherID string
	CourseID  string
	Status    string
	Page      int
	PageSize  int
}

// SlotRecord is the JSON shape of one lesson slot.
type SlotRecord struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ValidStatus reports whether raw is a known assignment status.
func ValidStatus(raw string) bool {
	switch raw {
	case AssignmentStatusPending, AssignmentStatusActive, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// SlotList decodes the slots column.
func (a *Assignment) SlotList() ([]SlotRecord, error) {
	if len(a.Slots) == 0 {
		return nil, nil
	}
	var slots []SlotRecord
	if err := json.Unmarshal(a.Slots, &slots); err != nil {
		return nil, fmt.Errorf("decode slots for assignment %s: %w", a.ID, err)
	}
	return slots, nil
}

// EngineSnapshot converts the record into the engine's assignment shape.
func (a *Assignment) EngineSnapshot() (engine.Assignment, error) {
	records, err := a.SlotList()
	if err != nil {
		return engine.Assignment{}, err
	}

	slots := make([]engine.TimeSlot, 0, len(records))
	for _, record := range records {
		date, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			return engine.Assignment{}, fmt.Errorf("assignment %s: invalid slot date %q: %w", a.ID, record.Date, err)
		}
		start, err := ParseClock(record.Start)
		if err != nil {
			return engine.Assignment{}, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		end, err := ParseClock(record.End)
		if err != nil {
			return engine.Assignment{}, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		slots = append(slots, engine.TimeSlot{Date: date.UTC(), StartMinute: start, EndMinute: end})
	}

	return engine.Assignment{
		ID:        a.ID,
		TeacherID: a.TeacherID,
		CourseID:  a.CourseID,
		Slots:     slots,
		Status:    engine.AssignmentStatus(a.Status),
		Rationale: a.Rationale,
		Fallback:  a.Fallback,
	}, nil
}

// EncodeSlots serializes engine slots into the JSON column shape.
func EncodeSlots(slots []engine.TimeSlot) (types.JSONText, error) {
	records := make([]SlotRecord, 0, len(slots))
	for _, slot := range slots {
		records = append(records, SlotRecord{
			Date:  slot.Date.Format("2006-01-02"),
			Start: FormatClock(slot.StartMinute),
			End:   FormatClock(slot.EndMinute),
		})
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode slots: %w", err)
	}
	return types.JSONText(payload), nil
}
