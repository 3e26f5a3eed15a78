// Package tui is the interactive terminal dashboard. Cards can be reordered by
// picking one up, moving it with the arrow keys and dropping it; the new order is
// only persisted on drop.
package tui

import (
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State is what the keyboard currently drives.
type State int

const (
	StateDashboard State = iota
	StateDragging
	StateEditLayout
	StateAdding
)

// Model holds the dashboard state.
type Model struct {
	lastError  error
	formatter  *privacy.Formatter
	renderer   *dashboard.Renderer
	keymap     KeyMap
	status     string
	selectedID string
	period     timewindow.Period
	config     Config
	view       dashboard.View
	input      textinput.Model
	ids        []string
	drag       []string
	entries    []model.LayoutEntry
	txns       []model.Transaction
	help       help.Model
	selected   int
	editCursor int
	width      int
	height     int
	state      State
	online     bool
	quitting   bool
}

// New creates a dashboard model over the given collaborators.
func New(l Ledger, r *layout.Reconciler, e *analytics.Engine, opts ...Option) Model {
	cfg := defaultConfig()
	cfg.Ledger, cfg.Layout, cfg.Engine = l, r, e
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "12.50 lunch #want @cc"
	input.CharLimit = 120

	m := Model{
		config:    cfg,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		input:     input,
		formatter: privacy.New(cfg.Privacy),
		renderer:  dashboard.NewRenderer(cfg.Width, cfg.Styles),
		period:    cfg.Period,
		width:     cfg.Width,
		height:    cfg.Height,
		txns:      l.Snapshot(),
		ids:       r.OrderedVisibleIDs(),
		online:    true,
	}
	m.help.ShowAll = cfg.ShowHelp
	if cfg.Monitor != nil {
		m.online = cfg.Monitor.Online()
	}
	m.recompute()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer = dashboard.NewRenderer(msg.Width, m.config.Styles)
		m.help.Width = msg.Width

	case ledgerChangedMsg:
		m.txns = msg.txns
		m.recompute()

	case layoutChangedMsg:
		m.ids = msg.ids
		if m.state == StateEditLayout {
			m.loadEntries()
		}
		m.recompute()

	case connectivityMsg:
		m.online = msg.online

	case layoutSavedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.ids = m.config.Layout.OrderedVisibleIDs()
			if m.state == StateEditLayout {
				m.loadEntries()
			}
			m.recompute()
			return m, nil
		}
		m.lastError = nil
		m.status = "Layout saved (" + msg.action + ")"

	case transactionAddedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.status = fmt.Sprintf("Added %s %s", msg.txn.Type, m.formatter.Amount(msg.txn.Amount))
		m.txns = m.config.Ledger.Snapshot()
		m.recompute()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateDragging:
		return m.handleDragKey(msg)
	case StateEditLayout:
		return m.handleEditKey(msg)
	case StateAdding:
		return m.handleAddKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.Prev):
		m.selectAt(m.selected - 1)
	case key.Matches(msg, m.keymap.Next):
		m.selectAt(m.selected + 1)
	case key.Matches(msg, m.keymap.Grab):
		if len(m.view.Cards) == 0 {
			return m, nil
		}
		m.state = StateDragging
		m.drag = m.renderedIDs()
		m.status = "Moving " + m.selectedID + ": arrows to move, Space to drop, Esc to cancel"
	case key.Matches(msg, m.keymap.Hide):
		if m.selectedID == "" {
			return m, nil
		}
		return m, m.setVisible(m.selectedID, false)
	case key.Matches(msg, m.keymap.EditLayout):
		m.state = StateEditLayout
		m.editCursor = 0
		m.loadEntries()
	case key.Matches(msg, m.keymap.Reset):
		return m, m.resetLayout()
	case key.Matches(msg, m.keymap.Period):
		i := slices.Index(timewindow.Periods, m.period)
		m.period = timewindow.Periods[(i+1)%len(timewindow.Periods)]
		m.recompute()
	case key.Matches(msg, m.keymap.Privacy):
		s := m.formatter.Settings()
		s.HideAmounts = !s.HideAmounts
		m.formatter = privacy.New(s)
		m.recompute()
	case key.Matches(msg, m.keymap.Add):
		m.state = StateAdding
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Prev):
		m.moveDragged(-1)
	case key.Matches(msg, m.keymap.Next):
		m.moveDragged(1)
	case key.Matches(msg, m.keymap.Grab):
		dropped := m.drag
		m.ids = placeInSlots(m.ids, dropped)
		m.drag = nil
		m.state = StateDashboard
		m.status = ""
		m.recompute()
		return m, m.saveOrder(dropped)
	case key.Matches(msg, m.keymap.Cancel):
		m.drag = nil
		m.state = StateDashboard
		m.status = ""
		m.recompute()
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel), key.Matches(msg, m.keymap.EditLayout):
		m.state = StateDashboard
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Prev):
		m.editCursor = max(m.editCursor-1, 0)
	case key.Matches(msg, m.keymap.Next):
		m.editCursor = min(m.editCursor+1, len(m.entries)-1)
	case key.Matches(msg, m.keymap.Grab), key.Matches(msg, m.keymap.Hide):
		if m.editCursor < 0 || m.editCursor >= len(m.entries) {
			return m, nil
		}
		e := &m.entries[m.editCursor]
		e.Visible = !e.Visible
		return m, m.setVisible(e.ID, e.Visible)
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateDashboard
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		txn, err := parseQuickAdd(m.input.Value(), m.config.Modes, time.Now())
		if err != nil {
			m.lastError = err
			return m, nil
		}
		m.state = StateDashboard
		m.input.Blur()
		return m, m.addTransaction(txn)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// recompute rebuilds the view from the current transactions, period and order.
// While a card is held the order being previewed comes from the drag.
func (m *Model) recompute() {
	ids := m.ids
	if m.state == StateDragging {
		ids = placeInSlots(m.ids, m.drag)
	}
	m.view = dashboard.Compose(m.config.Engine, m.period, m.formatter, m.txns, ids)

	for i, rc := range m.view.Cards {
		if string(rc.Spec.ID) == m.selectedID {
			m.selected = i
			return
		}
	}
	m.selectAt(m.selected)
}

func (m *Model) selectAt(i int) {
	n := len(m.view.Cards)
	if n == 0 {
		m.selected, m.selectedID = 0, ""
		return
	}
	m.selected = min(max(i, 0), n-1)
	m.selectedID = string(m.view.Cards[m.selected].Spec.ID)
}

func (m *Model) moveDragged(delta int) {
	from := slices.Index(m.drag, m.selectedID)
	to := from + delta
	if from < 0 || to < 0 || to >= len(m.drag) {
		return
	}
	m.drag[from], m.drag[to] = m.drag[to], m.drag[from]
	m.recompute()
}

func (m Model) renderedIDs() []string {
	ids := make([]string, len(m.view.Cards))
	for i, rc := range m.view.Cards {
		ids[i] = string(rc.Spec.ID)
	}
	return ids
}

// loadEntries lists the registry's cards in layout order for the editor.
func (m *Model) loadEntries() {
	var entries []model.LayoutEntry
	for _, e := range m.config.Layout.Entries() {
		if dashboard.IsKnown(e.ID) {
			entries = append(entries, e)
		}
	}
	m.entries = entries
	slices.SortStableFunc(m.entries, func(a, b model.LayoutEntry) int { return a.Order - b.Order })
	m.editCursor = min(m.editCursor, max(len(m.entries)-1, 0))
}

// placeInSlots returns all with the slots held by members of order refilled in
// the sequence order gives. Ids of all that order does not mention stay put.
func placeInSlots(all, order []string) []string {
	inAll := make(map[string]struct{}, len(all))
	for _, id := range all {
		inAll[id] = struct{}{}
	}
	moving := make(map[string]struct{}, len(order))
	queue := make([]string, 0, len(order))
	for _, id := range order {
		if _, ok := inAll[id]; ok {
			moving[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	out := make([]string, len(all))
	for i, id := range all {
		if _, ok := moving[id]; ok {
			out[i], queue = queue[0], queue[1:]
			continue
		}
		out[i] = id
	}
	return out
}
