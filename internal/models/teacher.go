package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/edu-assign-api/internal/engine"
)

// Teacher represents an instructor record. Qualifications and working times
// are stored as JSONB columns.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	Email          string         `db:"email" json:"email"`
	FullName       string         `db:"full_name" json:"full_name"`
	Qualifications types.JSONText `db:"qualifications" json:"qualifications"`
	WorkingTimes   types.JSONText `db:"working_times" json:"working_times"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// WorkingWindow is the JSON shape of one weekday's availability.
type WorkingWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// QualificationList decodes the qualifications column.
func (t *Teacher) QualificationList() ([]string, error) {
	if len(t.Qualifications) == 0 {
		return nil, nil
	}
	var qualifications []string
	if err := json.Unmarshal(t.Qualifications, &qualifications); err != nil {
		return nil, fmt.Errorf("decode qualifications for teacher %s: %w", t.ID, err)
	}
	return qualifications, nil
}

// WorkingWindows decodes the working_times column keyed by weekday name.
func (t *Teacher) WorkingWindows() (map[string]WorkingWindow, error) {
	if len(t.WorkingTimes) == 0 {
		return nil, nil
	}
	var windows map[string]WorkingWindow
	if err := json.Unmarshal(t.WorkingTimes, &windows); err != nil {
		return nil, fmt.Errorf("decode working times for teacher %s: %w", t.ID, err)
	}
	return windows, nil
}

// EngineSnapshot converts the record into the engine's teacher shape.
func (t *Teacher) EngineSnapshot() (engine.Teacher, error) {
	qualifications, err := t.QualificationList()
	if err != nil {
		return engine.Teacher{}, err
	}
	windows, err := t.WorkingWindows()
	if err != nil {
		return engine.Teacher{}, err
	}

	working := make(map[time.Weekday]engine.ClockRange, len(windows))
	for name, window := range windows {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return engine.Teacher{}, fmt.Errorf("teacher %s: unknown weekday %q", t.ID, name)
		}
		start, err := ParseClock(window.Start)
		if err != nil {
			return engine.Teacher{}, fmt.Errorf("teacher %s, %s: %w", t.ID, name, err)
		}
		end, err := ParseClock(window.End)
		if err != nil {
			return engine.Teacher{}, fmt.Errorf("teacher %s, %s: %w", t.ID, name, err)
		}
		if end <= start {
			return engine.Teacher{}, fmt.Errorf("teacher %s, %s: window end %q not after start %q", t.ID, name, window.End, window.Start)
		}
		working[weekday] = engine.ClockRange{StartMinute: start, EndMinute: end}
	}

	return engine.Teacher{
		ID:             t.ID,
		FullName:       t.FullName,
		Qualifications: qualifications,
		WorkingTimes:   working,
	}, nil
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(raw string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", raw, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
