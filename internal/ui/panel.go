package ui

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/idilsaglam/issuetracker/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

func visibleWidth(s string) int { return utf8.RuneCountInString(stripANSI(s)) }

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelString frames lines in a box using the current theme.
func PanelString(lines []string) string {
	br := Current().Border
	maxw := 0
	for _, ln := range lines {
		if w := visibleWidth(ln); w > maxw {
			maxw = w
		}
	}
	var b strings.Builder
	b.WriteString(br.TL + strings.Repeat(br.H, maxw+2) + br.TR + "\n")
	for _, ln := range lines {
		pad := strings.Repeat(" ", maxw-visibleWidth(ln))
		b.WriteString(br.V + " " + ln + pad + " " + br.V + "\n")
	}
	b.WriteString(br.BL + strings.Repeat(br.H, maxw+2) + br.BR + "\n")
	return b.String()
}

// Panel prints PanelString to stdout.
func Panel(lines []string) {
	fmt.Fprint(stdout, PanelString(lines))
}

// IssuePanelLines builds the plain listing of a product's issues: a header
// with counts, a progress bar and one line per issue.
func IssuePanelLines(productID string, issues []model.Issue) []string {
	t := Current()
	d, p := model.Stats(issues)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Issues"),
		C(t.Success, symCheck), d,
		C(t.Pending, "•"), p,
		C(t.Accent, "Total"), len(issues),
	)
	lines := []string{
		header,
		C(t.Muted, productID),
		C(t.Muted, ProgressBar(d, d+p, 28)),
		"",
	}
	if len(issues) == 0 {
		lines = append(lines, C(t.Muted, "no issues"))
		return lines
	}
	for _, it := range issues {
		box, color := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			C(t.Muted, fmt.Sprintf("#%-3d", it.ID)), C(color, box), it.Title))
		if it.Description != "" {
			lines = append(lines, "      "+C(t.Muted, Truncate(it.Description, 72)))
		}
	}
	return lines
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
