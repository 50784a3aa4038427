package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tudu/internal/app"
	"github.com/hylla/tudu/internal/domain"
)

// Session represents the state owner driven by this package.
type Session interface {
	State() domain.State
	Dispatch(context.Context, domain.Intent) (domain.State, error)
	Undo() (domain.State, error)
	Redo() (domain.State, error)
	Activity(context.Context, int) ([]domain.ChangeEvent, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeConfirmDelete
	modeActivityLog
)

// activityLogMaxItems caps the activity overlay when config does not say otherwise.
const activityLogMaxItems = 20

const defaultWelcomeMarkdown = `# Welcome

Pick an item on the left and press **enter** to edit it, or press **n** to write a new one.`

// listBG and related colours echo the red list container of the original window.
var (
	listBG     = lipgloss.Color("#F92814")
	listBorder = lipgloss.Color("#E51400")
	listText   = lipgloss.Color("#FFFFFF")
)

// activityEntry represents one row in the activity overlay.
type activityEntry struct {
	At      time.Time
	Summary string
	Target  string
}

// Model represents model data used by this package.
type Model struct {
	svc Session
	ctx context.Context

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	title           string
	header          string
	welcomeMarkdown string
	showActivity    bool
	activityLimit   int
	confirmDelete   bool

	state      domain.State
	cursor     int
	draftInput textinput.Model

	mode          inputMode
	pendingDelete int
	activityLog   []activityEntry

	markdown       *markdownRenderer
	clipboardWrite ClipboardWriter
}

// activityLogLoadedMsg carries activity rows loaded from the session journal.
type activityLogLoadedMsg struct {
	entries []activityEntry
	err     error
}

// yankedMsg reports the outcome of a clipboard write.
type yankedMsg struct {
	text string
	err  error
}

// NewModel constructs a new value for this package.
func NewModel(svc Session, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	draftInput := textinput.New()
	draftInput.Prompt = "› "
	draftInput.Placeholder = "what needs doing?"
	draftInput.CharLimit = 0
	defaults := DefaultRuntimeConfig()
	m := Model{
		svc:             svc,
		ctx:             context.Background(),
		status:          "ready",
		help:            h,
		keys:            newKeyMap(),
		title:           defaults.Title,
		header:          defaults.Header,
		welcomeMarkdown: defaults.WelcomeMarkdown,
		showActivity:    defaults.ShowActivity,
		activityLimit:   defaults.ActivityLimit,
		draftInput:      draftInput,
		activityLog:     []activityEntry{},
		markdown:        &markdownRenderer{},
		clipboardWrite:  defaultClipboardWriter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.state = svc.State()
	_ = m.syncEditor()
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	if m.editing() {
		return m.draftInput.Focus()
	}
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		m.draftInput.SetWidth(max(10, m.rightPaneWidth()-8))
		return m, nil

	case activityLogLoadedMsg:
		if m.mode != modeActivityLog {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.status = "activity log unavailable"
			return m, nil
		}
		m.err = nil
		m.activityLog = msg.entries
		return m, nil

	case yankedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("copied %q", truncate(msg.text, 32))
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	default:
		if m.editing() {
			return m.updateDraftInput(msg)
		}
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	content := "loading..."
	if m.ready {
		content = m.render()
	}
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	v.WindowTitle = m.title
	return v
}

// editing reports whether the editor pane is open.
func (m Model) editing() bool {
	_, ok := m.state.Editor()
	return ok
}

// handleKey routes one key press by mode and focus.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modeActivityLog:
		return m.handleActivityKey(msg)
	}
	if m.editing() {
		return m.handleEditorKey(msg)
	}
	return m.handleListKey(msg)
}

// handleListKey handles keys while the list has focus.
func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.newItem):
		cmd := m.apply(domain.StartCreate{})
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		if m.state.Len() == 0 {
			m.status = "nothing to edit"
			return m, nil
		}
		cmd := m.apply(domain.StartEdit{Index: m.cursor})
		return m, cmd
	case key.Matches(msg, m.keys.deleteItem):
		if m.state.Len() == 0 {
			m.status = "nothing to delete"
			return m, nil
		}
		return m.requestDelete(m.cursor)
	case key.Matches(msg, m.keys.yank):
		item, ok := m.state.Item(m.cursor)
		if !ok {
			m.status = "nothing to copy"
			return m, nil
		}
		return m, m.yankCmd(item.Value)
	case key.Matches(msg, m.keys.activityLog):
		if !m.showActivity {
			m.status = "activity log disabled"
			return m, nil
		}
		cmd := m.openActivityLog()
		return m, cmd
	case key.Matches(msg, m.keys.undo):
		return m.undo()
	case key.Matches(msg, m.keys.redo):
		return m.redo()
	default:
		return m, nil
	}
}

// handleEditorKey handles keys while the editor has focus.
func (m Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		cmd := m.apply(domain.Cancel{})
		return m, cmd
	case key.Matches(msg, m.keys.submit):
		cmd := m.apply(domain.Submit{})
		return m, cmd
	case key.Matches(msg, m.keys.deleteTarget):
		editor, _ := m.state.Editor()
		target, ok := editor.Target()
		if !ok {
			m.status = "new items cannot be deleted"
			return m, nil
		}
		return m.requestDelete(target)
	}
	return m.updateDraftInput(msg)
}

// updateDraftInput forwards msg to the draft input and dispatches the new text
// whenever the input value changed, so pastes reach the editor draft too.
func (m Model) updateDraftInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.draftInput.Value()
	var cmd tea.Cmd
	m.draftInput, cmd = m.draftInput.Update(msg)
	if after := m.draftInput.Value(); after != before {
		if applyCmd := m.apply(domain.ChangeDraftText{Text: after}); applyCmd != nil {
			cmd = tea.Batch(cmd, applyCmd)
		}
	}
	return m, cmd
}

// handleConfirmKey resolves a pending delete confirmation.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirmYes):
		m.mode = modeNone
		cmd := m.apply(domain.Delete{Index: m.pendingDelete})
		return m, cmd
	case key.Matches(msg, m.keys.confirmNo):
		m.mode = modeNone
		m.status = "delete cancelled"
		return m, nil
	default:
		return m, nil
	}
}

// handleActivityKey closes the activity overlay.
func (m Model) handleActivityKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) || key.Matches(msg, m.keys.activityLog) || key.Matches(msg, m.keys.quit) {
		m.mode = modeNone
		m.status = "ready"
	}
	return m, nil
}

// requestDelete deletes the item directly or asks for confirmation first.
func (m Model) requestDelete(index int) (tea.Model, tea.Cmd) {
	item, ok := m.state.Item(index)
	if !ok {
		return m, nil
	}
	if m.confirmDelete {
		m.mode = modeConfirmDelete
		m.pendingDelete = index
		m.status = fmt.Sprintf("delete %q? y/n", truncate(item.Value, 32))
		return m, nil
	}
	cmd := m.apply(domain.Delete{Index: index})
	return m, cmd
}

// apply dispatches one intent and syncs the view state with the result.
func (m *Model) apply(in domain.Intent) tea.Cmd {
	before := m.state
	next, err := m.svc.Dispatch(m.ctx, in)
	m.state = next
	if in.Kind() != domain.IntentChangeDraftText {
		m.status = statusFor(in, before, next)
	}
	m.err = err
	if err != nil {
		m.status = "activity journal: " + err.Error()
	}
	return m.syncEditor()
}

// statusFor describes the outcome of one intent for the status line.
func statusFor(in domain.Intent, before, after domain.State) string {
	_, editingAfter := after.Editor()
	switch in := in.(type) {
	case domain.Submit:
		editor, ok := before.Editor()
		switch {
		case !ok:
			return "nothing to submit"
		case editingAfter:
			return "item text is required"
		case editor.Creating():
			return "item added"
		default:
			return "item updated"
		}
	case domain.StartEdit:
		if !editingAfter {
			return "no such item"
		}
		return fmt.Sprintf("editing item %d", in.Index+1)
	default:
		return domain.NewChangeEvent("", in, before, after, time.Time{}).Summary()
	}
}

// undo restores the previous list.
func (m Model) undo() (tea.Model, tea.Cmd) {
	next, err := m.svc.Undo()
	if err != nil {
		if errors.Is(err, app.ErrNothingToUndo) {
			m.status = "nothing to undo"
			return m, nil
		}
		m.err = err
		m.status = "undo failed: " + err.Error()
		return m, nil
	}
	m.state = next
	m.status = "undo"
	cmd := m.syncEditor()
	return m, cmd
}

// redo reapplies the last undone list change.
func (m Model) redo() (tea.Model, tea.Cmd) {
	next, err := m.svc.Redo()
	if err != nil {
		if errors.Is(err, app.ErrNothingToRedo) {
			m.status = "nothing to redo"
			return m, nil
		}
		m.err = err
		m.status = "redo failed: " + err.Error()
		return m, nil
	}
	m.state = next
	m.status = "redo"
	cmd := m.syncEditor()
	return m, cmd
}

// syncEditor aligns cursor and draft input with the current state.
func (m *Model) syncEditor() tea.Cmd {
	if selected, ok := m.state.Selected(); ok {
		m.cursor = selected
	}
	m.cursor = clamp(m.cursor, 0, max(0, m.state.Len()-1))

	editor, ok := m.state.Editor()
	if !ok {
		m.draftInput.Blur()
		m.draftInput.Reset()
		return nil
	}
	if draft := editor.Draft().Value; m.draftInput.Value() != draft {
		m.draftInput.SetValue(draft)
		m.draftInput.CursorEnd()
	}
	if m.draftInput.Focused() {
		return nil
	}
	return m.draftInput.Focus()
}

// moveCursor moves the list cursor by delta rows.
func (m *Model) moveCursor(delta int) {
	if m.state.Len() == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, m.state.Len()-1)
}

// yankCmd copies text through the configured clipboard writer.
func (m Model) yankCmd(text string) tea.Cmd {
	write := m.clipboardWrite
	return func() tea.Msg {
		return yankedMsg{text: text, err: write(text)}
	}
}

// loadActivityLog loads recent journal events.
func (m Model) loadActivityLog() tea.Msg {
	events, err := m.svc.Activity(m.ctx, m.activityLimit)
	if err != nil {
		return activityLogLoadedMsg{err: err}
	}
	return activityLogLoadedMsg{entries: mapChangeEventsToActivityEntries(events, m.activityLimit)}
}

// openActivityLog enters activity-log mode and triggers an activity fetch.
func (m *Model) openActivityLog() tea.Cmd {
	m.mode = modeActivityLog
	m.status = "activity log"
	m.activityLog = []activityEntry{}
	return m.loadActivityLog
}

// mapChangeEventsToActivityEntries converts newest-first journal events into overlay rows.
func mapChangeEventsToActivityEntries(events []domain.ChangeEvent, limit int) []activityEntry {
	if len(events) == 0 {
		return []activityEntry{}
	}
	if limit <= 0 {
		limit = activityLogMaxItems
	}
	entries := make([]activityEntry, 0, len(events))
	// Journal events are newest-first; the overlay reads top to bottom in time order.
	for idx := len(events) - 1; idx >= 0; idx-- {
		entries = append(entries, mapChangeEventToActivityEntry(events[idx]))
	}
	if len(entries) > limit {
		entries = append([]activityEntry(nil), entries[len(entries)-limit:]...)
	}
	return entries
}

// mapChangeEventToActivityEntry derives a compact activity row from one event.
func mapChangeEventToActivityEntry(event domain.ChangeEvent) activityEntry {
	target := strings.TrimSpace(event.Text)
	if target == "" && event.Index != domain.NoIndex {
		target = fmt.Sprintf("#%d", event.Index+1)
	}
	if target == "" {
		target = "-"
	}
	return activityEntry{
		At:      event.OccurredAt.UTC(),
		Summary: event.Summary(),
		Target:  target,
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || m.editing() {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.moveCursor(-1)
	case tea.MouseWheelDown:
		m.moveCursor(1)
	}
	return m, nil
}

// handleMouseClick maps a click on a list row to editing that row.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.X < 0 || msg.X >= m.listPaneWidth()+2 {
		return m, nil
	}
	row := msg.Y - m.listTop()
	start, end := windowBounds(m.state.Len(), m.cursor, m.listRows())
	idx := start + row
	if row < 0 || idx >= end {
		return m, nil
	}
	m.cursor = idx
	cmd := m.apply(domain.StartEdit{Index: idx})
	return m, cmd
}

// render builds the full screen for the current state.
func (m Model) render() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	header := m.renderHeader(accent, muted)
	footer := m.renderFooter(muted, dim)
	bodyHeight := max(3, m.height-lipgloss.Height(header)-lipgloss.Height(footer))

	list := m.renderList(bodyHeight)
	right := m.renderRightPane(accent, muted, bodyHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", right)
	return header + "\n" + fitLines(body, bodyHeight) + "\n" + footer
}

// renderHeader renders the title and header line.
func (m Model) renderHeader(accent, muted color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	line := titleStyle.Render(m.title)
	if m.header != "" {
		line += "  " + lipgloss.NewStyle().Foreground(muted).Render(m.header)
	}
	return line
}

// renderFooter renders the status line and help bubble.
func (m Model) renderFooter(muted, dim color.Color) string {
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	if m.err != nil {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	}
	var helpView string
	if m.editing() && m.mode == modeNone {
		editor, _ := m.state.Editor()
		helpView = m.help.View(editorKeyMap{keys: m.keys, canDelete: domain.EditingPane{Editor: editor}.CanDelete()})
	} else {
		helpView = m.help.View(m.keys)
	}
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpView)
	return statusStyle.Render(m.status) + "\n" + helpLine
}

// renderList renders the red list container with one line per row.
func (m Model) renderList(height int) string {
	width := m.listPaneWidth()
	rows := m.state.Rows()
	editing := m.editing()
	start, end := windowBounds(len(rows), m.cursor, m.listRows())

	rowStyle := lipgloss.NewStyle().Foreground(listText)
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(listBG).Background(listText)
	lines := make([]string, 0, end-start)
	for _, row := range rows[start:end] {
		marker := "  "
		if row.Index == m.cursor && !editing {
			marker = "› "
		}
		value := row.Value
		if value == "" {
			value = "(blank)"
		}
		line := marker + truncate(value, max(1, width-4))
		if row.Selected {
			lines = append(lines, selectedStyle.Render(line))
			continue
		}
		lines = append(lines, rowStyle.Render(line))
	}
	if len(rows) == 0 {
		lines = append(lines, rowStyle.Render("  (no items)"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(listBorder).
		Background(listBG).
		Foreground(listText).
		Width(width).
		Height(max(1, height-2)).
		Render(fitLines(strings.Join(lines, "\n"), max(1, height-2)))
}

// renderRightPane renders welcome content, the editor, or an overlay.
func (m Model) renderRightPane(accent, muted color.Color, height int) string {
	width := m.rightPaneWidth()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	var content string
	switch {
	case m.mode == modeActivityLog:
		content = m.renderActivityLog(titleStyle, hintStyle, width-4)
	case m.mode == modeConfirmDelete:
		item, _ := m.state.Item(m.pendingDelete)
		content = strings.Join([]string{
			titleStyle.Render("Delete item?"),
			"",
			truncate(item.Value, max(1, width-4)),
			"",
			hintStyle.Render("y confirm • n keep"),
		}, "\n")
	default:
		switch pane := m.state.Pane().(type) {
		case domain.EditingPane:
			content = m.renderEditor(pane, titleStyle, hintStyle)
		default:
			content = m.markdown.render(m.welcomeMarkdown, width-4)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Height(max(1, height-2)).
		Render(fitLines(content, max(1, height-2)))
}

// renderEditor renders the draft input and its affordances.
func (m Model) renderEditor(pane domain.EditingPane, titleStyle, hintStyle lipgloss.Style) string {
	heading := "New item"
	if target, ok := pane.Editor.Target(); ok {
		heading = fmt.Sprintf("Edit item %d", target+1)
	}
	hints := "enter submit • esc cancel"
	if pane.CanDelete() {
		hints += " • ctrl+d delete"
	}
	return strings.Join([]string{
		titleStyle.Render(heading),
		"",
		m.draftInput.View(),
		"",
		hintStyle.Render(hints),
	}, "\n")
}

// renderActivityLog renders recent journal rows.
func (m Model) renderActivityLog(titleStyle, hintStyle lipgloss.Style, width int) string {
	lines := []string{titleStyle.Render("Activity"), ""}
	if len(m.activityLog) == 0 {
		lines = append(lines, hintStyle.Render("no activity yet"))
	}
	for _, entry := range m.activityLog {
		line := fmt.Sprintf("%s  %-14s %s", formatActivityTimestamp(entry.At), entry.Summary, entry.Target)
		lines = append(lines, truncate(line, max(1, width)))
	}
	lines = append(lines, "", hintStyle.Render("esc close"))
	return strings.Join(lines, "\n")
}

// formatActivityTimestamp formats activity timestamps for compact rendering.
func formatActivityTimestamp(at time.Time) string {
	if at.IsZero() {
		return "--:--:--"
	}
	local := at.Local()
	now := time.Now().In(local.Location())
	if local.Year() != now.Year() || local.YearDay() != now.YearDay() {
		return local.Format("01-02 15:04")
	}
	return local.Format("15:04:05")
}

// listPaneWidth returns the inner width of the list container.
func (m Model) listPaneWidth() int {
	if m.width <= 0 {
		return 24
	}
	return clamp(m.width/3, 24, 48)
}

// rightPaneWidth returns the width left for the editor pane.
func (m Model) rightPaneWidth() int {
	return max(24, m.width-m.listPaneWidth()-3)
}

// listTop returns the screen row of the first list item.
func (m Model) listTop() int {
	// header line + list top border
	return 2
}

// listRows returns how many items fit inside the list container.
func (m Model) listRows() int {
	if m.height <= 0 {
		return max(1, m.state.Len())
	}
	// header, top/bottom borders, status line, help border and help line
	return max(1, m.height-6)
}

// windowBounds returns the visible [start, end) range that keeps selected in view.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	half := windowSize / 2
	start := selected - half
	if start < 0 {
		start = 0
	}
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
