package engine

import "errors"

// Input validation failures abort the whole run; per-course problems are
// reported through UnassignedCourse entries instead.
var (
	ErrNoTeachers     = errors.New("optimization requires at least one teacher")
	ErrNoCourses      = errors.New("optimization requires at least one course")
	ErrInvalidWeights = errors.New("invalid weight settings")
)
