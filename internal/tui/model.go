// Package tui is the full-screen task page: a task list, the draft form,
// an inline delete confirmation and the assistant chat panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"evotodo/internal/chat"
	"evotodo/internal/draft"
	"evotodo/internal/gateway"
	"evotodo/internal/output"
	"evotodo/internal/service"
	"evotodo/internal/taskpage"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeChat
)

const (
	focusTitle = iota
	focusDescription
	focusPriority
	focusCount
)

var priorities = []service.Priority{service.PriorityLow, service.PriorityMedium, service.PriorityHigh}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	doneStyle     = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8")).Strikethrough(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	agentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// loadedMsg reports the end of a reload.
type loadedMsg struct {
	err error
}

// mutatedMsg reports the end of a mutation and its follow-up reload.
// fromDraft marks a form submit; only those close the form.
type mutatedMsg struct {
	done      string
	err       error
	fromDraft bool
}

// chatMsg reports the end of one chat turn.
type chatMsg struct {
	turn chat.Turn
	err  error
}

// Model is the bubbletea model for the task page.
type Model struct {
	ctx     context.Context
	page    *taskpage.Page
	editor  *draft.Editor
	channel *chat.Channel

	tasks  []service.Task
	cursor int
	mode   mode

	title       textinput.Model
	description textinput.Model
	priority    service.Priority
	focus       int

	chatInput textinput.Model
	spinner   spinner.Model

	pendingDelete *service.Task

	// In-flight work. Toggles and deletes are not serialized against each
	// other or against chat; only the form and the chat input are gated.
	reloading  bool
	submitting bool
	chatting   bool
	mutations  int

	status    string
	statusErr bool
	quitting  bool
}

// New builds the model. channel may be nil when the backend has no agent.
func New(ctx context.Context, page *taskpage.Page, channel *chat.Channel) Model {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 256
	title.Width = 48

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 1024
	description.Width = 48

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask the assistant..."
	chatInput.CharLimit = 2000
	chatInput.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		page:        page,
		editor:      page.Draft(),
		channel:     channel,
		tasks:       page.Tasks(),
		title:       title,
		description: description,
		priority:    service.DefaultPriority,
		chatInput:   chatInput,
		spinner:     sp,
		status:      "a add, e edit, space toggle, d delete, c chat, q quit",
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, page *taskpage.Page, channel *chat.Channel) error {
	p := tea.NewProgram(New(ctx, page, channel), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init loads the task list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), m.spinner.Tick)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeChat:
			return m.updateChat(msg)
		}
		return m.updateList(msg)

	case loadedMsg:
		m.reloading = false
		m.refresh()
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, nil

	case mutatedMsg:
		if msg.fromDraft {
			m.submitting = false
		} else if m.mutations > 0 {
			m.mutations--
		}
		m.refresh()
		switch {
		case msg.err == nil:
			m.setStatus(msg.done)
		case service.IsStale(msg.err):
			m.setError(fmt.Errorf("%s, but %w", msg.done, msg.err))
		default:
			m.setError(msg.err)
			if msg.fromDraft {
				// keep the form open so the input can be corrected
				return m, nil
			}
		}
		if msg.fromDraft && m.mode == modeForm {
			m.closeForm()
		}
		return m, nil

	case chatMsg:
		m.chatting = false
		m.refresh()
		switch {
		case msg.err != nil:
			// a failed turn is already in the transcript as the failure text
			m.setError(msg.err)
		case msg.turn.Refreshed:
			m.setStatus("tasks refreshed")
		default:
			m.setStatus("")
		}
		return m, nil

	case tea.WindowSizeMsg:
		width := max(msg.Width-10, 20)
		m.title.Width = width
		m.description.Width = width
		m.chatInput.Width = width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "r":
		if m.reloading {
			return m, nil
		}
		m.reloading = true
		return m, m.reload()
	case "a", "n":
		m.editor.BeginCreate()
		m.openForm(m.editor.Current())
		return m, textinput.Blink
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editor.BeginEdit(task)
		m.openForm(m.editor.Current())
		return m, textinput.Blink
	case " ", "t", "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mutations++
		page, ctx := m.page, m.ctx
		return m, func() tea.Msg {
			updated, err := page.Toggle(ctx, task)
			return mutatedMsg{done: fmt.Sprintf("marked %q %s", task.Title, strings.ToLower(string(updated.Status))), err: err}
		}
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = &task
		m.mode = modeConfirmDelete
		m.setStatus(fmt.Sprintf("Delete %q? This cannot be undone. y/n", task.Title))
	case "c":
		if m.channel == nil {
			m.setError(taskpage.ErrNoAgent)
			return m, nil
		}
		m.mode = modeChat
		m.chatInput.Focus()
		m.setStatus("")
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Cancel()
		m.closeForm()
		m.setStatus("cancelled")
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case "enter":
		if m.submitting {
			return m, nil
		}
		m.editor.SetTitle(m.title.Value())
		m.editor.SetDescription(m.description.Value())
		m.editor.SetPriority(m.priority)
		verb := "added"
		if m.editor.Current().Mode.IsEditing() {
			verb = "saved"
		}
		m.submitting = true
		editor, ctx := m.editor, m.ctx
		return m, func() tea.Msg {
			task, err := editor.Submit(ctx)
			return mutatedMsg{done: fmt.Sprintf("%s %q", verb, task.Title), err: err, fromDraft: true}
		}
	}

	if m.focus == focusPriority {
		switch msg.String() {
		case "left", "h":
			m.priority = shiftPriority(m.priority, -1)
		case "right", "l", " ":
			m.priority = shiftPriority(m.priority, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task := m.pendingDelete
	m.pendingDelete = nil
	m.mode = modeList
	if task == nil {
		return m, nil
	}

	switch msg.String() {
	case "y", "Y":
		m.mutations++
		page, ctx := m.page, m.ctx
		return m, func() tea.Msg {
			err := page.Delete(ctx, task.ID, gateway.Confirmed)
			return mutatedMsg{done: fmt.Sprintf("deleted %q", task.Title), err: err}
		}
	default:
		m.setStatus(gateway.ErrDeclined.Error())
		return m, nil
	}
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.chatInput.Blur()
		m.setStatus("")
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.chatting {
			return m, nil
		}
		m.chatInput.SetValue("")
		m.chatting = true
		channel, ctx := m.channel, m.ctx
		return m, func() tea.Msg {
			turn, err := channel.Send(ctx, text)
			return chatMsg{turn: turn, err: err}
		}
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) openForm(d draft.Draft) {
	m.mode = modeForm
	m.title.SetValue(d.Title)
	m.description.SetValue(d.Description)
	m.priority = d.Priority
	if !m.priority.Valid() {
		m.priority = service.DefaultPriority
	}
	m.setFocus(focusTitle)
	m.setStatus("")
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.title.SetValue("")
	m.description.SetValue("")
	m.title.Blur()
	m.description.Blur()
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	switch f {
	case focusTitle:
		m.title.Focus()
	case focusDescription:
		m.description.Focus()
	}
}

// refresh copies the page snapshot and keeps the cursor on the list.
func (m *Model) refresh() {
	m.tasks = m.page.Tasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
}

func (m Model) selected() (service.Task, bool) {
	if len(m.tasks) == 0 {
		return service.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// busy reports whether any remote call started here is still running.
func (m Model) busy() bool {
	return m.reloading || m.submitting || m.chatting || m.mutations > 0
}

func (m Model) reload() tea.Cmd {
	page, ctx := m.page, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: page.Reload(ctx)}
	}
}

func shiftPriority(p service.Priority, by int) service.Priority {
	for i, q := range priorities {
		if q == p {
			return priorities[(i+by+len(priorities))%len(priorities)]
		}
	}
	return service.DefaultPriority
}

// View renders the page.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("evotodo"))
	if m.busy() {
		s.WriteString(" " + m.spinner.View())
	}
	s.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		s.WriteString(m.formView())
	case modeChat:
		s.WriteString(m.chatView())
	default:
		s.WriteString(m.listView())
	}

	s.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			s.WriteString(errorStyle.Render("error: "+m.status) + "\n")
		} else {
			s.WriteString(statusStyle.Render(m.status) + "\n")
		}
	}
	s.WriteString(helpStyle.Render(m.help()) + "\n")
	return s.String()
}

func (m Model) listView() string {
	if len(m.tasks) == 0 {
		return itemStyle.Render("No tasks yet. Press a to add one.") + "\n"
	}

	var s strings.Builder
	for i, task := range m.tasks {
		var line strings.Builder
		output.FormatTask(&line, i+1, task)
		text := strings.TrimRight(line.String(), "\n")
		switch {
		case i == m.cursor:
			s.WriteString(selectedStyle.Render("> " + text))
		case task.Done():
			s.WriteString(doneStyle.Render("  " + text))
		default:
			s.WriteString(itemStyle.Render("  " + text))
		}
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) formView() string {
	heading := "New task"
	if id, ok := m.editor.Current().Mode.TaskID(); ok {
		heading = "Edit task " + id
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render(heading) + "\n\n")
	body.WriteString("Title\n" + m.title.View() + "\n\n")
	body.WriteString("Description\n" + m.description.View() + "\n\n")

	marker := "  "
	if m.focus == focusPriority {
		marker = "> "
	}
	var opts []string
	for _, p := range priorities {
		if p == m.priority {
			opts = append(opts, selectedStyle.UnsetPaddingLeft().Render("["+string(p)+"]"))
		} else {
			opts = append(opts, " "+string(p)+" ")
		}
	}
	body.WriteString("Priority\n" + marker + strings.Join(opts, " "))
	return panelStyle.Render(body.String()) + "\n"
}

func (m Model) chatView() string {
	var s strings.Builder
	for _, msg := range m.channel.Messages() {
		if msg.Role == chat.RoleUser {
			s.WriteString(userStyle.Render("you") + "> " + msg.Text + "\n")
		} else {
			s.WriteString(agentStyle.Render("assistant") + "> " + msg.Text + "\n")
		}
	}
	if m.channel.State() == chat.Pending {
		s.WriteString(agentStyle.Render("assistant") + "> " + m.spinner.View() + "\n")
	}
	s.WriteString("\n" + m.chatInput.View() + "\n")
	return panelStyle.Render(s.String()) + "\n"
}

func (m Model) help() string {
	switch m.mode {
	case modeForm:
		return "tab next field, left/right priority, enter save, esc cancel"
	case modeConfirmDelete:
		return "y delete, any other key keeps the task"
	case modeChat:
		return "enter send, esc back to tasks"
	}
	return "a add, e edit, space toggle, d delete, r reload, c chat, q quit"
}
