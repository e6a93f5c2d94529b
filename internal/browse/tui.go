// Package browse is the interactive inventory browser.
//
// It lists sessions and their panes from an inventory snapshot, shows a
// capture of the pane under the cursor, and drives the tmux façade for
// selecting panes, sending keys, and toggling synchronized input. Every
// action goes through the façade, so hooks and call logging see it.
package browse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/panectl/internal/events"
	"github.com/timvw/panectl/internal/inventory"
	"github.com/timvw/panectl/internal/model"
	"github.com/timvw/panectl/internal/mux"
)

type viewMode int

const (
	modeList viewMode = iota
	modeTextInput
)

type itemKind int

const (
	itemSession itemKind = iota
	itemPane
)

// listItem is a row in the list: a session header or a pane.
type listItem struct {
	kind   itemKind
	target model.Target // Session only for headers
}

// messages
type refreshMsg struct{ err error }

type tickMsg struct{}

type captureMsg struct {
	target model.Target
	text   string
	err    error
}

type actionMsg struct {
	text string
	err  error
}

type syncMsg struct {
	window string
	on     bool
	err    error
}

// Browser runs the interactive inventory browser.
type Browser struct {
	Mux             mux.Controller
	Inventory       *inventory.Inventory
	RefreshInterval time.Duration // 0 disables auto-refresh
	Theme           Theme
	Events          *events.Store // optional; shows the last call per pane
}

type tuiModel struct {
	mux             mux.Controller
	inv             *inventory.Inventory
	events          *events.Store
	ctx             context.Context
	refreshInterval time.Duration
	st              styles

	mode     viewMode
	items    []listItem
	expanded map[string]bool // session -> expanded
	cursor   int

	// windows with synchronize-panes switched on from this browser
	synced map[string]bool

	preview       string
	previewTarget model.Target
	autoCapture   bool

	textInput  textinput.Model
	textTarget model.Target

	width  int
	height int

	refreshing bool
	message    string
	failed     bool
}

func newModel(ctx context.Context, b *Browser) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Keys to send, Enter to submit..."
	ti.CharLimit = 2048
	ti.Width = 80

	return &tuiModel{
		mux:             b.Mux,
		inv:             b.Inventory,
		events:          b.Events,
		ctx:             ctx,
		refreshInterval: b.RefreshInterval,
		st:              newStyles(b.Theme),
		expanded:        make(map[string]bool),
		synced:          make(map[string]bool),
		autoCapture:     true,
		textInput:       ti,
	}
}

// Run starts the browser and blocks until the user quits.
func (b *Browser) Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(ctx, b), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	m.refreshing = true
	return m.doRefresh()
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh
// interval, or nil when auto-refresh is disabled.
func (m *tuiModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *tuiModel) doRefresh() tea.Cmd {
	inv, ctx := m.inv, m.ctx
	return func() tea.Msg {
		return refreshMsg{err: inv.Refresh(ctx)}
	}
}

func (m *tuiModel) doCapture(t model.Target) tea.Cmd {
	ctl, ctx := m.mux, m.ctx
	return func() tea.Msg {
		text, err := ctl.CapturePane(ctx, t)
		return captureMsg{target: t, text: text, err: err}
	}
}

func (m *tuiModel) doSelect(t model.Target) tea.Cmd {
	ctl, ctx := m.mux, m.ctx
	return func() tea.Msg {
		if err := ctl.SelectPane(ctx, t); err != nil {
			return actionMsg{err: fmt.Errorf("select %s: %w", t, err)}
		}
		return actionMsg{text: "Selected " + t.String()}
	}
}

func (m *tuiModel) doSendKeys(t model.Target, keys string) tea.Cmd {
	ctl, ctx := m.mux, m.ctx
	return func() tea.Msg {
		if err := ctl.SendKeys(ctx, t, keys); err != nil {
			return actionMsg{err: fmt.Errorf("send to %s: %w", t, err)}
		}
		return actionMsg{text: fmt.Sprintf("Sent '%s' to %s", truncate(keys, 40), t)}
	}
}

func (m *tuiModel) doSync(t model.Target, on bool) tea.Cmd {
	ctl, ctx := m.mux, m.ctx
	return func() tea.Msg {
		return syncMsg{window: t.WindowTarget(), on: on, err: ctl.SyncPanes(ctx, t, on)}
	}
}

// rebuildItems rebuilds the visible rows from the latest snapshot. New
// sessions start expanded.
func (m *tuiModel) rebuildItems() {
	m.items = nil
	snap := m.inv.Snapshot()
	targets := snap.Targets()
	for _, sess := range sessionsInOrder(snap) {
		if _, seen := m.expanded[sess]; !seen {
			m.expanded[sess] = true
		}
		m.items = append(m.items, listItem{kind: itemSession, target: model.Target{Session: sess}})
		if !m.expanded[sess] {
			continue
		}
		for _, t := range targets {
			if t.Session == sess {
				m.items = append(m.items, listItem{kind: itemPane, target: t})
			}
		}
	}
}

func sessionsInOrder(snap inventory.Snapshot) []string {
	names := make([]string, 0, len(snap.Sessions))
	for i := 0; len(names) < len(snap.Sessions); i++ {
		if s, ok := snap.Sessions[i]; ok {
			names = append(names, s)
		}
	}
	return names
}

// selected returns the pane under the cursor.
func (m *tuiModel) selected() (model.Target, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) || m.items[m.cursor].kind != itemPane {
		return model.Target{}, false
	}
	return m.items[m.cursor].target, true
}

// restoreCursor puts the cursor back on target after a rebuild, or clamps it.
func (m *tuiModel) restoreCursor(target model.Target) {
	for i, it := range m.items {
		if it.target == target {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// captureSelected captures the pane under the cursor when auto-capture is
// on and the preview shows something else.
func (m *tuiModel) captureSelected() tea.Cmd {
	t, ok := m.selected()
	if !ok || !m.autoCapture || t == m.previewTarget {
		return nil
	}
	return m.doCapture(t)
}

func (m *tuiModel) setResult(text string, err error) {
	if err != nil {
		m.message = err.Error()
		m.failed = true
		return
	}
	m.message = text
	m.failed = false
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeTextInput {
			return m.handleTextInputKey(msg)
		}
		return m.handleListKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setResult("", fmt.Errorf("refresh: %w", msg.err))
		}
		var prev model.Target
		if m.cursor < len(m.items) {
			prev = m.items[m.cursor].target
		}
		m.rebuildItems()
		m.restoreCursor(prev)
		// land on the first pane rather than a session header
		if prev.IsZero() && len(m.items) > 1 && m.items[1].kind == itemPane {
			m.cursor = 1
		}
		m.previewTarget = model.Target{}
		return m, tea.Batch(m.scheduleTick(), m.captureSelected())

	case tickMsg:
		if m.refreshing || m.mode == modeTextInput {
			return m, m.scheduleTick()
		}
		m.refreshing = true
		return m, m.doRefresh()

	case captureMsg:
		if msg.err != nil {
			m.setResult("", fmt.Errorf("capture %s: %w", msg.target, msg.err))
			return m, nil
		}
		m.preview = msg.text
		m.previewTarget = msg.target
		return m, nil

	case actionMsg:
		m.setResult(msg.text, msg.err)
		return m, nil

	case syncMsg:
		if msg.err != nil {
			m.setResult("", fmt.Errorf("sync %s: %w", msg.window, msg.err))
			return m, nil
		}
		m.synced[msg.window] = msg.on
		state := "off"
		if msg.on {
			state = "on"
		}
		m.setResult(fmt.Sprintf("Synchronized input %s for %s", state, msg.window), nil)
		return m, nil
	}
	return m, nil
}

func (m *tuiModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.captureSelected()

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, m.captureSelected()

	case "left", "h":
		if m.cursor >= len(m.items) {
			return m, nil
		}
		it := m.items[m.cursor]
		if it.kind == itemPane {
			// jump to the session header
			for m.cursor > 0 && m.items[m.cursor].kind != itemSession {
				m.cursor--
			}
			return m, nil
		}
		m.expanded[it.target.Session] = false
		m.rebuildItems()
		m.restoreCursor(it.target)
		return m, nil

	case "right", "l":
		if m.cursor < len(m.items) && m.items[m.cursor].kind == itemSession {
			it := m.items[m.cursor]
			m.expanded[it.target.Session] = true
			m.rebuildItems()
			m.restoreCursor(it.target)
		}
		return m, nil

	case "enter":
		if m.cursor >= len(m.items) {
			return m, nil
		}
		it := m.items[m.cursor]
		if it.kind == itemSession {
			m.expanded[it.target.Session] = !m.expanded[it.target.Session]
			m.rebuildItems()
			m.restoreCursor(it.target)
			return m, nil
		}
		return m, m.doSelect(it.target)

	case "c":
		if t, ok := m.selected(); ok {
			return m, m.doCapture(t)
		}
		return m, nil

	case "a":
		m.autoCapture = !m.autoCapture
		if m.autoCapture {
			m.message = "Auto-capture on"
		} else {
			m.message = "Auto-capture off"
		}
		m.failed = false
		return m, m.captureSelected()

	case "s", "t":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeTextInput
		m.textTarget = t
		m.textInput.Reset()
		return m, m.textInput.Focus()

	case "y":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.doSync(t, !m.synced[t.WindowTarget()])

	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.message = ""
		return m, m.doRefresh()
	}
	return m, nil
}

func (m *tuiModel) handleTextInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.textInput.Blur()
		return m, nil

	case "enter":
		text := m.textInput.Value()
		target := m.textTarget
		m.mode = modeList
		m.textInput.Blur()
		if text == "" {
			return m, nil
		}
		m.previewTarget = model.Target{}
		return m, tea.Sequence(m.doSendKeys(target, text), m.doCapture(target))
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.mode == modeTextInput {
		return m.viewTextInput()
	}
	return m.viewList()
}

func (m *tuiModel) viewList() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("panectl"))
	b.WriteString("  ")
	b.WriteString(m.st.dim.Render("Enter=select  c=capture  a=auto-capture  s=send  y=sync  r=refresh  q=quit"))
	if m.refreshing {
		b.WriteString("  ")
		b.WriteString(m.st.synced.Render("refreshing..."))
	}
	b.WriteString("\n")

	if len(m.items) == 0 {
		if m.refreshing {
			b.WriteString("  Listing panes...\n")
		} else {
			b.WriteString("  No panes found.\n")
		}
		b.WriteString(m.viewStatus())
		return b.String()
	}

	listWidth := m.width * 35 / 100
	if listWidth < 20 {
		listWidth = 20
	}
	bodyHeight := m.height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	left := m.listLines(listWidth)
	right := m.previewLines(m.width - listWidth - 3)

	// keep the cursor row visible
	offset := 0
	if m.cursor >= bodyHeight {
		offset = m.cursor - bodyHeight + 1
	}
	sep := m.st.header.Render("│")
	for row := 0; row < bodyHeight; row++ {
		l, r := "", ""
		if i := row + offset; i < len(left) {
			l = left[i]
		}
		if row < len(right) {
			r = right[row]
		}
		if l == "" && r == "" && row >= len(left)-offset {
			break
		}
		b.WriteString(padRight(l, listWidth))
		b.WriteString(" " + sep + " ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m *tuiModel) listLines(width int) []string {
	cur := m.mux.Current()
	lines := make([]string, 0, len(m.items))
	for i, it := range m.items {
		var line string
		switch it.kind {
		case itemSession:
			marker := "▾"
			if !m.expanded[it.target.Session] {
				marker = "▸"
			}
			line = fmt.Sprintf("%s %s", marker, it.target.Session)
		case itemPane:
			line = fmt.Sprintf("    %s.%s", it.target.Window, it.target.Pane)
			if m.synced[it.target.WindowTarget()] {
				line += " " + m.st.synced.Render("sync")
			}
			if op := m.lastOp(it.target); op != "" {
				line += " " + m.st.dim.Render(op)
			}
		}
		line = truncate(line, width)
		switch {
		case i == m.cursor:
			line = m.st.selected.Render(line)
		case it.kind == itemPane && it.target == cur:
			line = m.st.current.Render(line)
		case it.kind == itemSession:
			line = m.st.text.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// lastOp returns the most recent call recorded for t, if any.
func (m *tuiModel) lastOp(t model.Target) string {
	if m.events == nil {
		return ""
	}
	e, ok := m.events.Get(t.String(), time.Now())
	if !ok {
		return ""
	}
	return e.Op
}

func (m *tuiModel) previewLines(width int) []string {
	if m.previewTarget.IsZero() {
		return []string{m.st.dim.Render("no capture")}
	}
	lines := []string{m.st.title.Render(m.previewTarget.String())}
	for _, l := range strings.Split(strings.TrimRight(m.preview, "\n"), "\n") {
		lines = append(lines, truncate(l, width))
	}
	return lines
}

func (m *tuiModel) viewStatus() string {
	if m.message == "" {
		return ""
	}
	if m.failed {
		return m.st.err.Render(m.message) + "\n"
	}
	return m.st.ok.Render(m.message) + "\n"
}

func (m *tuiModel) viewTextInput() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("  Send Keys"))
	b.WriteString("\n")
	b.WriteString(m.st.header.Render("  ─────────────────────────────────────────"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Target: %s\n", m.textTarget))
	b.WriteString("\n")
	b.WriteString(m.st.dim.Render("  Enter=send  Escape=cancel"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.textInput.View())
	b.WriteString("\n")

	return b.String()
}

// truncate cuts a string to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads a string with spaces to reach the desired visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
