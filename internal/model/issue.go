package model

import "unicode/utf8"

// Input limits enforced by every host that collects a Draft.
const (
	TitleMaxLen       = 50
	DescriptionMaxLen = 300
)

// Issue is one entry of a product's issue list.
type Issue struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Draft is what the user typed into the form before submitting.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FieldErrors flags the missing fields of a Draft.
type FieldErrors struct {
	Title       bool `json:"title"`
	Description bool `json:"description"`
}

// Any reports whether at least one field is flagged.
func (e FieldErrors) Any() bool { return e.Title || e.Description }

// Validate returns ok only if both title and description are non-empty.
func Validate(d Draft) (FieldErrors, bool) {
	errs := FieldErrors{
		Title:       d.Title == "",
		Description: d.Description == "",
	}
	return errs, !errs.Any()
}

// WithinLimits reports whether the draft fits the input limits.
// Interactive hosts enforce this with character limits on the inputs;
// hosts that accept raw payloads check it explicitly.
func WithinLimits(d Draft) FieldErrors {
	return FieldErrors{
		Title:       utf8.RuneCountInString(d.Title) > TitleMaxLen,
		Description: utf8.RuneCountInString(d.Description) > DescriptionMaxLen,
	}
}

// NextID returns 0 for an empty list, otherwise the highest id plus one.
// Gaps are never reused.
func NextID(issues []Issue) int {
	if len(issues) == 0 {
		return 0
	}
	highest := issues[0].ID
	for _, it := range issues[1:] {
		if it.ID > highest {
			highest = it.ID
		}
	}
	return highest + 1
}

// New builds the Issue a valid draft turns into.
func New(id int, d Draft) Issue {
	return Issue{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Completed:   false,
	}
}

// Stats counts completed and pending issues.
func Stats(issues []Issue) (done, pending int) {
	for _, it := range issues {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
