package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/issuetracker/internal/model"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
}

func TestPanelString_AlignsRows(t *testing.T) {
	SetColorForcing(false, true)
	t.Cleanup(func() { SetColorForcing(false, false) })

	out := PanelString([]string{"ab", "abcd"})
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, visibleWidth(rows[0]), visibleWidth(r))
	}
}

func TestIssuePanelLines(t *testing.T) {
	SetColorForcing(false, true)
	t.Cleanup(func() { SetColorForcing(false, false) })

	lines := IssuePanelLines("gid://shopify/Product/1", []model.Issue{
		{ID: 0, Title: "Broken zipper", Description: "Left pocket", Completed: true},
		{ID: 3, Title: "Wrong color"},
	})
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Total 2")
	assert.Contains(t, joined, "#0")
	assert.Contains(t, joined, "Broken zipper")
	assert.Contains(t, joined, "Left pocket")
	assert.Contains(t, joined, "#3")

	empty := IssuePanelLines("p", nil)
	assert.Contains(t, strings.Join(empty, "\n"), "no issues")
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { _ = SetTheme(DefaultTheme) })

	assert.Equal(t, []string{"classic", "mono", "neon"}, Themes())

	require.NoError(t, SetTheme("MONO"))
	assert.Equal(t, "[x]", Current().BoxChecked)
	assert.Equal(t, "plain", C(Current().Success, "plain"))
	assert.True(t, strings.HasPrefix(PanelString([]string{"x"}), "+-"))

	err := SetTheme("solarized")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classic, mono, neon")
	assert.Equal(t, "[x]", Current().BoxChecked)

	require.NoError(t, SetTheme(""))
	assert.Equal(t, "☑", Current().BoxChecked)
}
