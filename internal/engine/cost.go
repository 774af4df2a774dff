package engine

// ForbiddenCost marks a non-qualifying pairing in the cost matrix. Solvers
// must never select a pair carrying it.
const ForbiddenCost = 1e9

// bonusScale converts 0-1 factor scores into cost units.
const bonusScale = 100.0

// CostMatrix is a teachers x courses cost table. Lower cost is better.
type CostMatrix struct {
	TeacherIDs []string
	CourseIDs  []string
	Costs      [][]float64
}

// Allowed reports whether the pair at (row, col) is selectable.
func (m CostMatrix) Allowed(row, col int) bool {
	return m.Costs[row][col] < ForbiddenCost
}

// BuildCostMatrix derives solver input from the snapshot. Qualifying pairs
// start at zero, earn negative adjustments for continuity and loyalty, and
// pay a penalty proportional to the teacher's workload deviation above the
// population average.
func BuildCostMatrix(
	teachers []Teacher,
	courses []Course,
	weights WeightSettings,
	workloads map[string]int,
	existing []Assignment,
	slotsFor func(teacher Teacher, course Course) []TimeSlot,
) CostMatrix {
	matrix := CostMatrix{
		TeacherIDs: make([]string, len(teachers)),
		CourseIDs:  make([]string, len(courses)),
		Costs:      make([][]float64, len(teachers)),
	}
	for i, teacher := range teachers {
		matrix.TeacherIDs[i] = teacher.ID
	}
	for j, course := range courses {
		matrix.CourseIDs[j] = course.ID
	}

	average := averageWorkload(workloads)

	for i, teacher := range teachers {
		row := make([]float64, len(courses))
		for j, course := range courses {
			if !teacher.QualifiedFor(course.Topic) {
				row[j] = ForbiddenCost
				continue
			}
			cost := 0.0
			cost -= continuityScore(slotsFor(teacher, course)) * weights.Continuity / 100 * bonusScale
			cost -= loyaltyScore(teacher, course, existing) * weights.Loyalty / 100 * bonusScale
			if deviation := float64(workloads[teacher.ID]) - average; deviation > 0 {
				scale := average
				if scale <= 0 {
					scale = 1
				}
				cost += deviation / scale * weights.Equality / 100 * bonusScale
			}
			row[j] = cost
		}
		matrix.Costs[i] = row
	}
	return matrix
}

func averageWorkload(workloads map[string]int) float64 {
	if len(workloads) == 0 {
		return 0
	}
	total := 0
	for _, minutes := range workloads {
		total += minutes
	}
	return float64(total) / float64(len(workloads))
}
