package models

import (
	"time"

	"github.com/noah-isme/edu-assign-api/internal/engine"
)

// Course represents a scheduled offering needing an instructor.
type Course struct {
	ID                    string    `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	Topic                 string    `db:"topic" json:"topic"`
	LessonsCount          int       `db:"lessons_count" json:"lessons_count"`
	LessonDurationMinutes int       `db:"lesson_duration_minutes" json:"lesson_duration_minutes"`
	StartDate             time.Time `db:"start_date" json:"start_date"`
	EndDate               time.Time `db:"end_date" json:"end_date"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	Topic     string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// EngineSnapshot converts the record into the engine's course shape.
func (c *Course) EngineSnapshot() engine.Course {
	return engine.Course{
		ID:                    c.ID,
		Name:                  c.Name,
		Topic:                 c.Topic,
		LessonsCount:          c.LessonsCount,
		LessonDurationMinutes: c.LessonDurationMinutes,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
	}
}
