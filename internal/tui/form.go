package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/issuetracker/internal/issueform"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// Host is the terminal's side of the form's capability pair.
type Host struct {
	ProductID string
	closed    atomic.Bool
}

func (h *Host) SelectedProductID() string { return h.ProductID }
func (h *Host) Close()                    { h.closed.Store(true) }

// Closed reports whether the form asked to be dismissed.
func (h *Host) Closed() bool { return h.closed.Load() }

type focusArea int

const (
	focusTitle focusArea = iota
	focusDescription
	focusCreate
	focusCancel
	focusCount
)

type loadedMsg struct{ issues []model.Issue }

type submittedMsg struct{ res issueform.Result }

var formKeys = struct {
	next, prev, submit, cancel key.Binding
}{
	next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create")),
	cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// FormModel is the Bubble Tea screen for the create-issue form.
type FormModel struct {
	ctx  context.Context
	form *issueform.Form
	host *Host

	title textinput.Model
	desc  textarea.Model
	focus focusArea

	loading    bool
	submitting bool
	errs       model.FieldErrors
	result     *issueform.Result
	width      int
}

// NewFormModel builds the screen for form; host must be the form's host.
func NewFormModel(ctx context.Context, form *issueform.Form, host *Host) FormModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Short summary"
	ti.CharLimit = model.TitleMaxLen
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "What is wrong with this product?"
	ta.CharLimit = model.DescriptionMaxLen
	ta.ShowLineNumbers = false
	ta.SetHeight(5)

	return FormModel{
		ctx:     ctx,
		form:    form,
		host:    host,
		title:   ti,
		desc:    ta,
		focus:   focusTitle,
		loading: true,
		width:   60,
	}
}

// Result is set once a submit went through; nil after a cancel.
func (m FormModel) Result() *issueform.Result { return m.result }

func (m FormModel) load() tea.Msg {
	return loadedMsg{issues: m.form.Load(m.ctx)}
}

func (m FormModel) submit(d model.Draft) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{res: m.form.Submit(m.ctx, d)}
	}
}

func (m FormModel) draft() model.Draft {
	return model.Draft{Title: m.title.Value(), Description: m.desc.Value()}
}

func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load)
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(min(msg.Width-4, 80), 24)
		m.title.Width = m.width - 4
		m.desc.SetWidth(m.width - 2)
		return m, nil

	case loadedMsg:
		m.loading = false
		return m, nil

	case submittedMsg:
		m.submitting = false
		m.errs = msg.res.Errors
		if msg.res.Created != nil {
			res := msg.res
			m.result = &res
		}
		if m.host.Closed() {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, formKeys.cancel):
			m.form.Cancel()
			return m, tea.Quit
		case key.Matches(msg, formKeys.submit):
			return m.trySubmit()
		case key.Matches(msg, formKeys.next):
			return m.setFocus((m.focus + 1) % focusCount)
		case key.Matches(msg, formKeys.prev):
			return m.setFocus((m.focus + focusCount - 1) % focusCount)
		case msg.Type == tea.KeyEnter:
			switch m.focus {
			case focusTitle:
				return m.setFocus(focusDescription)
			case focusCreate:
				return m.trySubmit()
			case focusCancel:
				m.form.Cancel()
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusDescription:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m FormModel) trySubmit() (tea.Model, tea.Cmd) {
	// the working list must be in place before an id is computed
	if m.loading || m.submitting {
		return m, nil
	}
	d := m.draft()
	if errs, ok := model.Validate(d); !ok {
		m.errs = errs
		return m, nil
	}
	m.errs = model.FieldErrors{}
	m.submitting = true
	return m, m.submit(d)
}

func (m FormModel) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	var cmd tea.Cmd
	switch f {
	case focusTitle:
		cmd = m.title.Focus()
	case focusDescription:
		cmd = m.desc.Focus()
	}
	return m, cmd
}

func (m FormModel) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Create an issue"))
	b.WriteString("\n")
	b.WriteString(ui.MutedStyle.Render(m.form.ProductID()))
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("Title", m.focus == focusTitle))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n")
	if m.errs.Title {
		b.WriteString(ui.ErrorStyle.Render("Please enter a title"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(fieldLabel("Description", m.focus == focusDescription))
	b.WriteString(ui.MutedStyle.Render(fmt.Sprintf("  %d/%d", len([]rune(m.desc.Value())), model.DescriptionMaxLen)))
	b.WriteString("\n")
	b.WriteString(m.desc.View())
	b.WriteString("\n")
	if m.errs.Description {
		b.WriteString(ui.ErrorStyle.Render("Please enter a description"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		button("Create", ui.PrimaryButton, m.focus == focusCreate),
		"  ",
		button("Cancel", ui.SecondaryButton, m.focus == focusCancel),
	))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(ui.MutedStyle.Render("Loading issues…"))
	case m.submitting:
		b.WriteString(ui.MutedStyle.Render("Saving…"))
	default:
		b.WriteString(ui.HelpStyle.Render("tab next • shift+tab prev • ctrl+s create • esc cancel"))
	}
	return ui.Frame(b.String())
}

func fieldLabel(s string, focused bool) string {
	if focused {
		return ui.AccentStyle.Render(s)
	}
	return s
}

func button(label string, style lipgloss.Style, focused bool) string {
	if focused {
		style = ui.FocusedButton.Inherit(style)
	}
	return style.Render(label)
}

// RunForm shows the form full-screen until it is submitted or cancelled.
// The returned result is nil when the user cancelled.
func RunForm(ctx context.Context, form *issueform.Form, host *Host) (*issueform.Result, error) {
	p := tea.NewProgram(NewFormModel(ctx, form, host), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(FormModel)
	if !ok {
		return nil, nil
	}
	return fm.Result(), nil
}
