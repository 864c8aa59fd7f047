package ui

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rolodex/internal/browser"
	"github.com/five82/rolodex/internal/config"
	"github.com/five82/rolodex/internal/contacts"
	"github.com/five82/rolodex/internal/imageloader"
	"github.com/five82/rolodex/internal/listbind"
	"github.com/five82/rolodex/internal/logtail"
	"github.com/five82/rolodex/internal/prefs"
	"github.com/five82/rolodex/internal/selection"
	"github.com/five82/rolodex/internal/state"
)

// Screen is the content shown below the header.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenLogs
)

// detailSlot is the image slot of the detail portrait. List rows use
// slots 0..n-1 for the on-screen lines.
const detailSlot imageloader.Slot = -1

// DetailSource loads the fields shown for one contact.
type DetailSource interface {
	Lookup(ctx context.Context, id int64) (contacts.Detail, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Browser   *browser.Browser
	Bridge    *Bridge
	Details   DetailSource
	Config    *config.Config
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	browser   *browser.Browser
	bridge    *Bridge
	details   DetailSource
	config    *config.Config
	prefsPath string

	// UI state
	theme   Theme
	keys    keyMap
	screen  Screen
	width   int
	height  int
	ready   bool
	twoPane bool

	// Data state
	snapshot  state.Snapshot
	rows      []listbind.Row
	selection selection.Selection

	// List state
	cursor   int
	offset   int
	bound    map[imageloader.Slot]string
	thumbs   map[imageloader.Slot]image.Image
	flingSeq int

	// Search
	search    textinput.Model
	searching bool

	// Detail state
	detailURI   contacts.URI
	detail      contacts.Detail
	detailErr   error
	detailImage image.Image

	// Log state
	logViewport viewport.Model
	logErr      error

	// Help overlay
	showHelp bool
}

// Messages

type (
	syncMsg      struct{}
	refreshedMsg state.Snapshot
	flingEndMsg  int
	detailMsg    struct {
		uri    contacts.URI
		detail contacts.Detail
		err    error
	}
	logsMsg struct {
		entries []logtail.Entry
		err     error
	}
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "Search contacts"
	ti.CharLimit = searchCharLimit

	m := Model{
		ctx:       ctx,
		browser:   opts.Browser,
		bridge:    opts.Bridge,
		details:   opts.Details,
		config:    cfg,
		prefsPath: prefsPath,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		screen:    ScreenList,
		bound:     make(map[imageloader.Slot]string),
		thumbs:    make(map[imageloader.Slot]image.Image),
		search:    ti,
	}
	if term := m.browser.QueryState().SearchTerm; term != "" {
		m.search.SetValue(term)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bridge.listen(),
		func() tea.Msg { return syncMsg{} },
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		twoPane := m.width >= m.config.TwoPaneMinWidth
		if !m.ready || twoPane != m.twoPane {
			m.twoPane = twoPane
			m.browser.SetTwoPane(twoPane)
			if twoPane && m.screen == ScreenDetail {
				m.screen = ScreenList
			}
		}
		if !m.ready {
			m.logViewport = viewport.New(m.width, m.bodyHeight())
		} else {
			m.logViewport.Width = m.width
			m.logViewport.Height = m.bodyHeight()
		}
		m.ready = true
		m.ensureVisible()
		cmd := m.sync()
		return m, cmd

	case tea.FocusMsg:
		m.browser.OnResume(m.ctx)
		cmd := m.sync()
		return m, cmd

	case tea.BlurMsg:
		m.browser.OnPause()
		return m, nil

	case syncMsg:
		cmd := m.sync()
		return m, cmd

	case imageMsg:
		d := imageloader.Delivery(msg)
		if m.browser.AcceptImage(d) {
			if d.Slot == detailSlot {
				m.detailImage = d.Image
			} else {
				m.thumbs[d.Slot] = d.Image
			}
		}
		return m, m.bridge.listen()

	case snapshotMsg:
		cmd := m.applySnapshot(state.Snapshot(msg))
		return m, tea.Batch(cmd, m.bridge.listen())

	case refreshedMsg:
		cmd := m.applySnapshot(state.Snapshot(msg))
		return m, cmd

	case flingEndMsg:
		if int(msg) == m.flingSeq {
			m.browser.ScrollStateChanged(false)
		}
		return m, nil

	case detailMsg:
		if msg.uri != m.detailURI {
			return m, nil
		}
		m.detail = msg.detail
		m.detailErr = msg.err
		m.detailImage = nil
		if msg.err == nil {
			res := m.browser.BindSlot(detailSlot, listbind.Row{Record: msg.detail.Record})
			m.detailImage = res.Image
		}
		return m, nil

	case logsMsg:
		m.logErr = msg.err
		if msg.err == nil {
			m.logViewport.SetContent(m.formatLogs(msg.entries))
			m.logViewport.GotoBottom()
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs) && m.screen != ScreenLogs:
		m.screen = ScreenLogs
		return m, m.loadLogs()
	}

	switch m.screen {
	case ScreenDetail:
		return m.handleDetailKey(msg)
	case ScreenLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := max(1, m.listHeight())

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveTo(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveTo(m.cursor + 1)
	case key.Matches(msg, m.keys.PageUp):
		cmd := m.fling(m.cursor - page)
		return m, cmd
	case key.Matches(msg, m.keys.PageDown):
		cmd := m.fling(m.cursor + page)
		return m, cmd
	case key.Matches(msg, m.keys.HalfPageUp):
		cmd := m.fling(m.cursor - page/2)
		return m, cmd
	case key.Matches(msg, m.keys.HalfPageDown):
		cmd := m.fling(m.cursor + page/2)
		return m, cmd
	case key.Matches(msg, m.keys.Top):
		cmd := m.fling(0)
		return m, cmd
	case key.Matches(msg, m.keys.Bottom):
		cmd := m.fling(len(m.rows) - 1)
		return m, cmd
	case key.Matches(msg, m.keys.NextSection):
		m.jumpSection(1)
	case key.Matches(msg, m.keys.PrevSection):
		m.jumpSection(-1)

	case key.Matches(msg, m.keys.Open):
		if m.browser.ItemTapped(m.cursor) {
			cmd := m.sync()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Search):
		if m.browser.QueryState().IsSearchResultView {
			return m, nil
		}
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		cmd := m.collapseSearch()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		cmd := m.collapseSearch()
		return m, cmd
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		m.searching = false
		m.search.Blur()
		return m.handleListKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.browser.SearchTermChanged(strings.TrimSpace(m.search.Value())) {
		return m, tea.Batch(cmd, m.refresh())
	}
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.screen = ScreenList
		m.clearDetail()
	}
	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ViewLogs):
		m.screen = ScreenList
		if !m.twoPane && m.detailURI != "" {
			m.screen = ScreenDetail
		}
		return m, nil
	case key.Matches(msg, m.keys.RefreshLogs):
		return m, m.loadLogs()
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// collapseSearch clears the search field and re-queries when a term was
// active.
func (m *Model) collapseSearch() tea.Cmd {
	if m.browser.QueryState().IsSearchResultView {
		return nil
	}
	m.search.SetValue("")
	if m.browser.SearchCollapsed() {
		return tea.Batch(m.sync(), m.refresh())
	}
	return m.sync()
}

// applySnapshot hands a query result to the browser and collects the
// events it produced.
func (m *Model) applySnapshot(snap state.Snapshot) tea.Cmd {
	if snap.Term == m.browser.QueryState().SearchTerm {
		m.snapshot = snap
	}
	m.browser.Apply(snap)
	return m.sync()
}

// sync collects the events recorded by the bridge during the last browser
// call and brings the model in line with them.
func (m *Model) sync() tea.Cmd {
	ev := m.bridge.take()
	var cmds []tea.Cmd

	if ev.rowsChanged {
		m.rows = m.browser.Rows()
		m.cursor = min(m.cursor, max(0, len(m.rows)-1))
		// Force every visible slot to bind again: keys that failed before
		// may have been forgotten since.
		clear(m.bound)
	}
	if ev.selection != nil {
		m.selection = *ev.selection
		if m.selection.State == selection.TwoPaneSelected && m.selection.Index >= 0 {
			m.cursor = m.selection.Index
		}
	}
	if ev.clearDetail {
		m.clearDetail()
	}
	if ev.showDetail != nil {
		cmds = append(cmds, m.loadDetail(*ev.showDetail))
	}
	if ev.open != nil {
		m.screen = ScreenDetail
		cmds = append(cmds, m.loadDetail(*ev.open))
	}

	m.ensureVisible()
	return tea.Batch(cmds...)
}

// rebind attaches each on-screen row to its slot and releases slots that
// scrolled out of view.
func (m *Model) rebind() {
	visible := 0
	for i := 0; i < m.listHeight() && m.offset+i < len(m.rows); i++ {
		row := m.rows[m.offset+i]
		slot := imageloader.Slot(i)
		visible++
		if prev, ok := m.bound[slot]; ok && prev == row.PhotoRef() {
			continue
		}
		res := m.browser.BindSlot(slot, row)
		m.bound[slot] = row.PhotoRef()
		m.thumbs[slot] = res.Image
	}
	for slot := range m.bound {
		if int(slot) >= visible {
			m.browser.UnbindSlot(slot)
			delete(m.bound, slot)
			delete(m.thumbs, slot)
		}
	}
}

func (m *Model) moveTo(index int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(index, len(m.rows)-1))
	m.ensureVisible()
}

// ensureVisible scrolls so the cursor is on screen and rebinds slots.
func (m *Model) ensureVisible() {
	h := max(1, m.listHeight())
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-h))
	m.rebind()
}

// fling moves the cursor by a large step. Decode work is held until the
// list settles.
func (m *Model) fling(target int) tea.Cmd {
	m.browser.ScrollStateChanged(true)
	m.moveTo(target)
	m.flingSeq++
	seq := m.flingSeq
	return tea.Tick(flingSettle, func(time.Time) tea.Msg {
		return flingEndMsg(seq)
	})
}

// jumpSection moves to the first row of the next or previous non-empty
// index section.
func (m *Model) jumpSection(delta int) {
	sections := m.browser.Sections()
	if len(m.rows) == 0 || len(sections) == 0 {
		return
	}
	s := m.browser.SectionForPosition(m.cursor)
	if delta > 0 {
		for s++; s < len(sections); s++ {
			if p := m.browser.PositionForSection(s); p > m.cursor && p < len(m.rows) {
				m.moveTo(p)
				return
			}
		}
		return
	}
	for ; s >= 0; s-- {
		if p := m.browser.PositionForSection(s); p < m.cursor {
			m.moveTo(p)
			return
		}
	}
}

func (m *Model) loadDetail(uri contacts.URI) tea.Cmd {
	m.detailURI = uri
	m.detail = contacts.Detail{}
	m.detailErr = nil
	m.detailImage = nil

	_, id, err := contacts.ParseURI(uri)
	if err != nil {
		m.detailErr = err
		return nil
	}
	details, ctx := m.details, m.ctx
	return func() tea.Msg {
		lookupCtx, cancel := context.WithTimeout(ctx, detailLookupTimeout)
		defer cancel()
		d, err := details.Lookup(lookupCtx, id)
		return detailMsg{uri: uri, detail: d, err: err}
	}
}

func (m *Model) clearDetail() {
	m.detailURI = ""
	m.detail = contacts.Detail{}
	m.detailErr = nil
	m.detailImage = nil
	m.browser.UnbindSlot(detailSlot)
}

// refresh re-runs the query off the UI goroutine.
func (m Model) refresh() tea.Cmd {
	b, ctx := m.browser, m.ctx
	return func() tea.Msg {
		return refreshedMsg(b.Refresh(ctx))
	}
}

func (m Model) loadLogs() tea.Cmd {
	path := m.config.LogFile
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, LogFetchLimit)
		return logsMsg{entries: entries, err: err}
	}
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, Session: m.browser.SaveState()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		slog.Warn("save preferences failed", "path", m.prefsPath, "error", err)
	}
}

func (m Model) bodyHeight() int {
	return max(1, m.height-headerHeight-commandBarHeight)
}

func (m Model) listHeight() int {
	if !m.ready {
		return 0
	}
	return m.bodyHeight()
}

// Run starts the Bubble Tea program and saves preferences when it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(m.ctx),
		tea.WithReportFocus(),
	)
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		err = nil
	}
	if fm, ok := final.(Model); ok {
		fm.savePrefs()
	}
	return err
}
