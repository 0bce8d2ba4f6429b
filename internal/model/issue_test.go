package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, NextID(nil))
	assert.Equal(t, 0, NextID([]Issue{}))
}

func TestNextID_UsesMax(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 4, NextID([]Issue{{ID: 0}, {ID: 3}}))
	// order does not matter, the highest id wins
	assert.Equal(t, 8, NextID([]Issue{{ID: 7}, {ID: 2}}))
	// gaps are not filled
	assert.Equal(t, 11, NextID([]Issue{{ID: 10}}))
}

func TestValidate_MissingTitle(t *testing.T) {
	t.Parallel()
	errs, ok := Validate(Draft{Title: "", Description: "x"})
	assert.False(t, ok)
	assert.True(t, errs.Title)
	assert.False(t, errs.Description)
}

func TestValidate_MissingBoth(t *testing.T) {
	t.Parallel()
	errs, ok := Validate(Draft{})
	assert.False(t, ok)
	assert.Equal(t, FieldErrors{Title: true, Description: true}, errs)
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	errs, ok := Validate(Draft{Title: "A", Description: "B"})
	assert.True(t, ok)
	assert.False(t, errs.Any())
}

func TestWithinLimits(t *testing.T) {
	t.Parallel()
	ok := Draft{Title: strings.Repeat("é", TitleMaxLen), Description: strings.Repeat("x", DescriptionMaxLen)}
	assert.False(t, WithinLimits(ok).Any())

	long := Draft{Title: strings.Repeat("a", TitleMaxLen+1), Description: "d"}
	errs := WithinLimits(long)
	assert.True(t, errs.Title)
	assert.False(t, errs.Description)
}

func TestNew_NotCompleted(t *testing.T) {
	t.Parallel()
	got := New(4, Draft{Title: "C", Description: "D"})
	assert.Equal(t, Issue{ID: 4, Title: "C", Description: "D", Completed: false}, got)
}

func TestStats(t *testing.T) {
	t.Parallel()
	done, pending := Stats([]Issue{{Completed: true}, {}, {}})
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}
