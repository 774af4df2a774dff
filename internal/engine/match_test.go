package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedTeachersExactMatch(t *testing.T) {
	teachers := []Teacher{
		{ID: "t-1", Qualifications: []string{"Mathematics", "Physics"}},
		{ID: "t-2", Qualifications: []string{"mathematics"}},
		{ID: "t-3", Qualifications: []string{"English"}},
	}
	course := Course{ID: "c-1", Topic: "Mathematics"}

	matched := QualifiedTeachers(course, teachers)
	require.Len(t, matched, 1, "matching is case-sensitive and exact")
	assert.Equal(t, "t-1", matched[0].ID)
}

func TestQualifiedTeachersNoMatches(t *testing.T) {
	teachers := []Teacher{{ID: "t-1", Qualifications: []string{"Biology"}}}
	assert.Empty(t, QualifiedTeachers(Course{Topic: "Art"}, teachers))
}

func TestTopicKeywords(t *testing.T) {
	assert.Equal(t, []string{"advanced", "mathematics"}, topicKeywords("Advanced Mathematics"))
	assert.Equal(t, []string{"art"}, topicKeywords("Art"))
	assert.Empty(t, topicKeywords("IT"), "two-letter words are ignored")
}

func TestKeywordOverlap(t *testing.T) {
	qualifications := []string{"Applied Mathematics", "Statistics"}
	assert.Equal(t, 1, keywordOverlap("Mathematics Foundations", qualifications))
	assert.Equal(t, 2, keywordOverlap("Applied Statistics", qualifications))
	assert.Equal(t, 0, keywordOverlap("History", qualifications))
}

func TestFallbackCandidateRanking(t *testing.T) {
	teachers := []Teacher{
		{ID: "t-b", Qualifications: []string{"Applied Mathematics"}},
		{ID: "t-a", Qualifications: []string{"Mathematics Foundations", "Statistics for Mathematics"}},
		{ID: "t-c", Qualifications: []string{"History"}},
	}
	course := Course{Topic: "Advanced Mathematics Statistics"}

	teacher, overlap, ok := fallbackCandidate(course, teachers)
	require.True(t, ok)
	assert.Equal(t, "t-a", teacher.ID, "highest keyword overlap wins")
	assert.Equal(t, 2, overlap)
}

func TestFallbackCandidateTieBreaksByID(t *testing.T) {
	teachers := []Teacher{
		{ID: "t-z", Qualifications: []string{"Mathematics"}},
		{ID: "t-a", Qualifications: []string{"Mathematics"}},
	}
	teacher, _, ok := fallbackCandidate(Course{Topic: "Advanced Mathematics"}, teachers)
	require.True(t, ok)
	assert.Equal(t, "t-a", teacher.ID)
}

func TestFallbackCandidateNoOverlap(t *testing.T) {
	teachers := []Teacher{{ID: "t-1", Qualifications: []string{"History"}}}
	_, _, ok := fallbackCandidate(Course{Topic: "Art"}, teachers)
	assert.False(t, ok)
}
