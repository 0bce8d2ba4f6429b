package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// ListAction is what the user asked for when leaving the list.
type ListAction int

const (
	ListQuit ListAction = iota
	ListCreate
)

// listItem adapts model.Issue to bubbles/list.Item
type listItem struct {
	issue model.Issue
}

func (i listItem) Title() string       { return i.issue.Title }
func (i listItem) Description() string { return i.issue.Description }
func (i listItem) FilterValue() string { return i.issue.Title + " " + i.issue.Description }

// Custom delegate: id, checkbox and title on one line, description muted below.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := ui.MutedStyle.Render(ui.BoxUnchecked)
	title := it.issue.Title
	if it.issue.Completed {
		box = ui.SuccessStyle.Render(ui.BoxChecked)
		title = ui.DoneStyle.Render(title)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	id := ui.MutedStyle.Render(fmt.Sprintf("#%-3d", it.issue.ID))
	fmt.Fprintf(w, "%s%s %s %s\n", prefix, id, box, title)
	fmt.Fprintf(w, "        %s", ui.MutedStyle.Render(ui.Truncate(it.issue.Description, max(m.Width()-10, 20))))
}

var addBinding = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add issue"))

// ListModel is a read-only browser over a product's issues.
type ListModel struct {
	list   list.Model
	action ListAction
}

// NewListModel builds the list screen for one product.
func NewListModel(productID string, issues []model.Issue) ListModel {
	li := make([]list.Item, 0, len(issues))
	for _, it := range issues {
		li = append(li, listItem{issue: it})
	}

	l := list.New(li, itemDelegate{}, 0, 0)

	// Header title with live counts
	dn, pn := model.Stats(issues)
	l.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		ui.TitleStyle.Render("Issues "+productID),
		ui.SuccessStyle.Render("✔"), dn,
		ui.PendingStyle.Render("•"), pn,
		ui.AccentStyle.Render("Total"), len(issues),
	)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.TitleStyle
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("issue", "issues")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBinding} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBinding} }

	return ListModel{list: l}
}

// Action reports how the user left the list.
func (m ListModel) Action() ListAction { return m.action }

func (m ListModel) Init() tea.Cmd { return nil }

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-2)
		return m, nil
	case tea.KeyMsg:
		// keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, addBinding):
			m.action = ListCreate
			return m, tea.Quit
		case msg.String() == "q", msg.String() == "esc", msg.String() == "ctrl+c":
			m.action = ListQuit
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListModel) View() string {
	return ui.Frame(m.list.View())
}

// RunList shows the issues until the user quits or asks to add one.
func RunList(productID string, issues []model.Issue) (ListAction, error) {
	p := tea.NewProgram(NewListModel(productID, issues), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return ListQuit, err
	}
	if lm, ok := final.(ListModel); ok {
		return lm.Action(), nil
	}
	return ListQuit, nil
}
