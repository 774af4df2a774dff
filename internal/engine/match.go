package engine

import (
	"sort"
	"strings"
)

// QualifiedTeachers filters teachers whose qualification set contains the
// course topic verbatim. Matching is exact and case-sensitive.
func QualifiedTeachers(course Course, teachers []Teacher) []Teacher {
	matched := make([]Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if teacher.QualifiedFor(course.Topic) {
			matched = append(matched, teacher)
		}
	}
	return matched
}

// topicKeywords splits a topic into lowercase words longer than two characters.
func topicKeywords(topic string) []string {
	fields := strings.FieldsFunc(topic, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ',' || r == '&'
	})
	keywords := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) > 2 {
			keywords = append(keywords, strings.ToLower(field))
		}
	}
	return keywords
}

// keywordOverlap counts topic keywords appearing as substrings within any of
// the teacher's qualifications.
func keywordOverlap(topic string, qualifications []string) int {
	count := 0
	for _, keyword := range topicKeywords(topic) {
		for _, qualification := range qualifications {
			if strings.Contains(strings.ToLower(qualification), keyword) {
				count++
				break
			}
		}
	}
	return count
}

// fallbackCandidate ranks teachers by keyword overlap with the course topic
// and returns the best match. Teachers with zero overlap never qualify.
func fallbackCandidate(course Course, teachers []Teacher) (Teacher, int, bool) {
	type ranked struct {
		teacher Teacher
		overlap int
	}
	candidates := make([]ranked, 0, len(teachers))
	for _, teacher := range teachers {
		if overlap := keywordOverlap(course.Topic, teacher.Qualifications); overlap > 0 {
			candidates = append(candidates, ranked{teacher: teacher, overlap: overlap})
		}
	}
	if len(candidates) == 0 {
		return Teacher{}, 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].teacher.ID < candidates[j].teacher.ID
	})
	best := candidates[0]
	return best.teacher, best.overlap, true
}
