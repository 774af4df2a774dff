package models

import (
	"time"

	"github.com/noah-isme/edu-assign-api/internal/engine"
)

// WeightProfile stores a named scoring weight distribution. The three
// component weights are percentages and must sum to 100.
type WeightProfile struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Equality   float64   `db:"equality" json:"equality"`
	Continuity float64   `db:"continuity" json:"continuity"`
	Loyalty    float64   `db:"loyalty" json:"loyalty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WeightSettings converts the profile into the engine's weight shape.
func (p *WeightProfile) WeightSettings() engine.WeightSettings {
	return engine.WeightSettings{
		Profile:    p.Name,
		Equality:   p.Equality,
		Continuity: p.Continuity,
		Loyalty:    p.Loyalty,
	}
}
