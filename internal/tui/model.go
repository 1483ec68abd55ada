// Package tui is a terminal front-end for the New Contact form. It drives the
// same contact.Form as the web page: every keystroke is a field change,
// ctrl+s submits and esc cancels.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conneroisu/contactform/internal/contact"
)

// inputOrder is the on-screen order of the single-line controls.
var inputOrder = []struct {
	field       contact.Field
	label       string
	placeholder string
}{
	{contact.FieldFirstName, "First Name", ""},
	{contact.FieldLastName, "Last Name", ""},
	{contact.FieldCompany, "Company", ""},
	{contact.FieldEmail, "Email", "example@example.com"},
	{contact.FieldPhoneNumber, "Phone", "999-999-9999"},
}

// noteIndex is the focus index of the note textarea, after every input.
var noteIndex = len(inputOrder)

const charLimit = 256

// submittedMsg carries the outcome of one OnSubmit.
type submittedMsg struct {
	result contact.SubmitResult
}

// navigatedMsg is sent once OnCancel has run.
type navigatedMsg struct {
	location string
	err      error
}

// Navigator records where the form asked to go. The terminal has nowhere to
// go, so the program quits and the caller reports the location.
type Navigator struct {
	mu       sync.Mutex
	location string
}

// Navigate implements contact.Navigator.
func (n *Navigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	n.location = path
	n.mu.Unlock()
	return nil
}

// Location returns the last navigated path, or "" if none.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Model is the bubbletea model of the form.
type Model struct {
	ctx    context.Context
	form   *contact.Form
	nav    *Navigator
	styles Styles

	inputs []textinput.Model
	note   textarea.Model
	focus  int

	submitting int
	last       *contact.SubmitResult
	err        error
	location   string
	width      int
}

// New mounts a form backed by creator and returns its model. Form options
// such as contact.WithPolicy are passed through.
func New(ctx context.Context, creator contact.Creator, opts ...contact.Option) Model {
	nav := &Navigator{}
	m := Model{
		ctx:    ctx,
		form:   contact.NewForm(creator, nav, opts...),
		nav:    nav,
		styles: DefaultStyles(),
	}

	for _, in := range inputOrder {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = in.placeholder
		ti.CharLimit = charLimit
		ti.Width = 40
		m.inputs = append(m.inputs, ti)
	}

	m.note = textarea.New()
	m.note.ShowLineNumbers = false
	m.note.Placeholder = "Note"
	m.note.SetHeight(3)
	m.note.SetWidth(40)

	m.inputs[0].Focus()
	return m
}

// Form exposes the mounted form.
func (m Model) Form() *contact.Form {
	return m.form
}

// Location is the path the form navigated to before the program quit.
func (m Model) Location() string {
	return m.location
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submittedMsg:
		m.submitting--
		m.last = &msg.result
		return m, nil

	case navigatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.location = msg.location
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, m.cancel()
		case "ctrl+s":
			m.submitting++
			return m, m.submit()
		case "tab":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab":
			return m, m.setFocus(m.focus - 1)
		case "enter":
			if m.focus != noteIndex {
				return m, m.setFocus(m.focus + 1)
			}
		}
	}

	return m, m.updateFocused(msg)
}

// updateFocused forwards msg to the focused control and reports a changed
// value to the form.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == noteIndex {
		before := m.note.Value()
		m.note, cmd = m.note.Update(msg)
		if after := m.note.Value(); after != before {
			m.form.OnFieldChange(contact.Change(contact.FieldNote, after))
		}
		return cmd
	}

	in := &m.inputs[m.focus]
	before := in.Value()
	*in, cmd = in.Update(msg)
	if after := in.Value(); after != before {
		m.form.OnFieldChange(contact.Change(inputOrder[m.focus].field, after))
	}
	return cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.inputs) + 1
	i = ((i % n) + n) % n

	if m.focus == noteIndex {
		m.note.Blur()
	} else {
		m.inputs[m.focus].Blur()
	}
	m.focus = i
	if i == noteIndex {
		return m.note.Focus()
	}
	return m.inputs[i].Focus()
}

func (m Model) submit() tea.Cmd {
	ctx, form := m.ctx, m.form
	return func() tea.Msg {
		return submittedMsg{result: form.OnSubmit(ctx)}
	}
}

func (m Model) cancel() tea.Cmd {
	ctx, form, nav := m.ctx, m.form, m.nav
	return func() tea.Msg {
		if err := form.OnCancel(ctx); err != nil {
			return navigatedMsg{err: err}
		}
		return navigatedMsg{location: nav.Location()}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.location != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("New Contact"))
	b.WriteString("\n")

	validated := m.form.Validated()
	validity := m.form.Validity()

	row := func(i int, field contact.Field, label, control string) {
		style := m.styles.Label
		if i == m.focus {
			style = m.styles.FocusedLabel
		}
		if field.Required() {
			label += m.styles.Required.Render("*")
		}
		b.WriteString(style.Render(label))
		b.WriteString(control)
		b.WriteString("\n")
		if state, bad := validity.Fields[field.Name()]; validated && bad {
			b.WriteString(m.styles.Feedback.Render(state.Message(field.InputType())))
			b.WriteString("\n")
		}
	}

	for i, in := range inputOrder {
		row(i, in.field, in.label, m.inputs[i].View())
	}
	row(noteIndex, contact.FieldNote, "Note", "\n"+m.note.View())

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Feedback.UnsetPaddingLeft().Render(m.err.Error()))
	case m.submitting > 0:
		b.WriteString(m.styles.Status.Render("Saving..."))
	case m.last != nil && !m.last.Attempted:
		b.WriteString(m.styles.Status.Render(fmt.Sprintf("Not sent: %d invalid field(s)", len(m.last.Validity.Fields))))
	case m.last != nil:
		b.WriteString(m.styles.Sent.Render("Submitted"))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("tab/shift+tab move · ctrl+s save · esc cancel · ctrl+c quit"))

	frame := m.styles.Frame
	if m.width > 0 {
		frame = frame.MaxWidth(m.width)
	}
	return frame.Render(b.String())
}
