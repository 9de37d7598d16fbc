package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0.0, s.Average)
	assert.Equal(t, 0, s.Count)
}

func TestSummarizeRoundsToOneDecimal(t *testing.T) {
	s := Summarize([]int{5, 4, 4})
	assert.Equal(t, 4.3, s.Average)
	assert.Equal(t, 3, s.Count)

	s = Summarize([]int{1, 2})
	assert.Equal(t, 1.5, s.Average)
	assert.Equal(t, 2, s.Count)
}

func TestSummarizeSingleReview(t *testing.T) {
	s := Summarize([]int{3})
	assert.Equal(t, 3.0, s.Average)
	assert.Equal(t, 1, s.Count)
}
