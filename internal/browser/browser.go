package browser

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/rolodex/internal/contacts"
	"github.com/five82/rolodex/internal/imageloader"
	"github.com/five82/rolodex/internal/listbind"
	"github.com/five82/rolodex/internal/prefs"
	"github.com/five82/rolodex/internal/selection"
	"github.com/five82/rolodex/internal/state"
)

// Source is the record provider queried for the current term.
// *contacts.Adapter implements it.
type Source interface {
	Query(ctx context.Context, term string) ([]contacts.Record, error)
}

// Callbacks are the host notifications. Each is optional.
//
// RecordsChanged and SelectionChanged run on the goroutine that called the
// event or Apply. ImageReady runs on a loader worker; the host must move the
// delivery to its display thread and pass it to AcceptImage there.
type Callbacks struct {
	RecordsChanged   func(rows []listbind.Row)
	ImageReady       func(d imageloader.Delivery)
	SelectionChanged func(sel selection.Selection)
}

// QueryState is the search state owned by the browser.
type QueryState struct {
	SearchTerm             string
	PreviousSelectionIndex int
	IsSearchResultView     bool
}

// Config wires a Browser. Source, Decoder, Presenter and Navigator are
// required.
type Config struct {
	Source Source
	// Store holds the latest query result. A new Store is used when nil.
	Store *state.Store

	Decoder     imageloader.Decoder
	Cache       imageloader.Cache
	Workers     int
	MissTTL     time.Duration
	Placeholder image.Image

	// Alphabet is the section index bucket list.
	Alphabet string

	TwoPane   bool
	Presenter selection.Presenter
	Navigator selection.Navigator

	// SearchResultView fixes the search to SearchTerm for the lifetime of
	// the browser. Search events are ignored in this mode.
	SearchResultView bool
	SearchTerm       string

	Callbacks Callbacks
	Logger    *slog.Logger
}

// ConfigError reports a missing required capability.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("browser: %s is required", e.Field)
}

// ErrClosed is returned by operations attempted after Teardown.
var ErrClosed = errors.New("browser torn down")

// Browser ties the contacts source, list binder, section indexer, image
// loader and selection coordinator together behind the host events.
type Browser struct {
	source    Source
	store     *state.Store
	loader    *imageloader.Loader
	coord     *selection.Coordinator
	callbacks Callbacks
	logger    *slog.Logger

	mu           sync.Mutex
	query        QueryState
	queryChanged bool
	applied      uint64
	rows         []listbind.Row
	indexer      *listbind.Indexer
	resumed      bool
	torn         bool
}

// New validates cfg, builds the engine components and starts the image
// loader pool. Nothing is queried until Initialize.
func New(cfg Config) (*Browser, error) {
	if cfg.Source == nil {
		return nil, &ConfigError{Field: "Source"}
	}
	if cfg.Decoder == nil {
		return nil, &ConfigError{Field: "Decoder"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := cfg.Store
	if store == nil {
		store = &state.Store{}
	}

	b := &Browser{
		source:    cfg.Source,
		store:     store,
		callbacks: cfg.Callbacks,
		logger:    logger,
		indexer:   listbind.NewIndexer(cfg.Alphabet),
		rows:      []listbind.Row{},
		query: QueryState{
			IsSearchResultView: cfg.SearchResultView,
		},
	}
	if cfg.SearchResultView {
		b.query.SearchTerm = cfg.SearchTerm
	}

	coord, err := selection.New(selection.Config{
		TwoPane:   cfg.TwoPane,
		Presenter: cfg.Presenter,
		Navigator: cfg.Navigator,
		OnChange:  b.selectionChanged,
	})
	if err != nil {
		return nil, err
	}
	b.coord = coord

	loader, err := imageloader.New(imageloader.Config{
		Decoder:     cfg.Decoder,
		Deliver:     b.imageReady,
		Cache:       cfg.Cache,
		Workers:     cfg.Workers,
		MissTTL:     cfg.MissTTL,
		Placeholder: cfg.Placeholder,
		Logger:      logger.With("component", "imageloader"),
	})
	if err != nil {
		return nil, err
	}
	b.loader = loader
	return b, nil
}

func (b *Browser) selectionChanged(sel selection.Selection) {
	if b.callbacks.SelectionChanged != nil {
		b.callbacks.SelectionChanged(sel)
	}
}

func (b *Browser) imageReady(d imageloader.Delivery) {
	if b.callbacks.ImageReady != nil {
		b.callbacks.ImageReady(d)
	}
}

// Initialize runs the first query and applies it. A restored session is
// treated as a fresh search so its selection can be re-established.
func (b *Browser) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.torn {
		b.mu.Unlock()
		return ErrClosed
	}
	b.queryChanged = true
	b.resumed = true
	b.mu.Unlock()

	b.Apply(b.Refresh(ctx))
	return nil
}

// OnResume re-queries when the host comes back to the foreground, since the
// contacts may have changed in the meantime.
func (b *Browser) OnResume(ctx context.Context) {
	b.mu.Lock()
	if b.torn || b.resumed {
		b.mu.Unlock()
		return
	}
	b.resumed = true
	b.mu.Unlock()

	b.Apply(b.Refresh(ctx))
}

// OnPause is called when the host leaves the foreground. Decode work is
// released so a pause left behind by an interrupted fling cannot wedge the
// queue.
func (b *Browser) OnPause() {
	b.mu.Lock()
	b.resumed = false
	b.mu.Unlock()
	b.PauseRequested()
}

// PauseRequested releases any held decode work.
func (b *Browser) PauseRequested() {
	b.loader.SetPauseWork(false)
}

// Teardown stops the image loader. It is safe to call more than once.
func (b *Browser) Teardown() error {
	b.mu.Lock()
	if b.torn {
		b.mu.Unlock()
		return nil
	}
	b.torn = true
	b.mu.Unlock()
	return b.loader.Close()
}

// QueryState returns the current search state.
func (b *Browser) QueryState() QueryState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// SearchTermChanged records a new search term and reports whether a
// re-query is needed. Repeating the current term, including empty to
// empty, is a no-op. In search-result view the term is fixed.
func (b *Browser) SearchTermChanged(term string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.torn || b.query.IsSearchResultView {
		return false
	}
	if term == b.query.SearchTerm {
		return false
	}
	b.query.SearchTerm = term
	b.queryChanged = true
	return true
}

// SearchCollapsed clears the search term. An active two-pane selection is
// cleared when a term was set. It reports whether a re-query is needed.
func (b *Browser) SearchCollapsed() bool {
	b.mu.Lock()
	if b.torn || b.query.IsSearchResultView {
		b.mu.Unlock()
		return false
	}
	hadTerm := b.query.SearchTerm != ""
	b.query.SearchTerm = ""
	if hadTerm {
		b.queryChanged = true
	}
	b.mu.Unlock()

	b.coord.SearchCollapsed(hadTerm)
	return hadTerm
}

// ScrollStateChanged pauses decoding during a fling and resumes it for
// any other scroll state.
func (b *Browser) ScrollStateChanged(fling bool) {
	b.loader.SetPauseWork(fling)
}

// ItemTapped forwards a tap on row index to the selection coordinator.
// Taps outside the current rows are ignored.
func (b *Browser) ItemTapped(index int) bool {
	b.mu.Lock()
	if b.torn || index < 0 || index >= len(b.rows) {
		b.mu.Unlock()
		return false
	}
	rec := b.rows[index].Record
	if b.coord.TwoPane() {
		b.query.PreviousSelectionIndex = index
	}
	b.mu.Unlock()

	b.coord.Tap(index, rec)
	return true
}

// SetTwoPane switches the pane layout. Any selection is dropped.
func (b *Browser) SetTwoPane(twoPane bool) {
	b.coord.SetTwoPane(twoPane)
}

// Selection returns the coordinator state.
func (b *Browser) Selection() selection.Selection {
	return b.coord.Snapshot()
}

// Refresh queries the source for the current term and records the result
// in the store. Query failures are kept in the snapshot and are not
// returned; a cancelled context leaves the store untouched.
func (b *Browser) Refresh(ctx context.Context) state.Snapshot {
	b.mu.Lock()
	term := b.query.SearchTerm
	b.mu.Unlock()

	records, err := b.source.Query(ctx, term)
	if err != nil && ctx.Err() != nil {
		b.logger.Debug("contacts refresh cancelled", "term", term)
		return b.store.Snapshot()
	}
	b.store.Update(term, records, err)
	return b.store.Snapshot()
}

// Apply binds snap to the list. Snapshots for a term that is no longer
// current, or that were already applied, are ignored. It reports whether
// the rows were rebuilt.
func (b *Browser) Apply(snap state.Snapshot) bool {
	b.mu.Lock()
	if b.torn {
		b.mu.Unlock()
		return false
	}
	if snap.Term != b.query.SearchTerm {
		b.mu.Unlock()
		b.logger.Debug("stale contacts snapshot dropped", "term", snap.Term)
		return false
	}
	if snap.Version == 0 || (snap.Version == b.applied && !b.queryChanged) {
		b.mu.Unlock()
		return false
	}
	b.applied = snap.Version

	rows := listbind.Bind(snap.Records, snap.Term)
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.Record.SortKey
	}
	b.indexer.SetSortKeys(keys)
	b.rows = rows
	changed := b.queryChanged
	b.queryChanged = false
	b.mu.Unlock()

	if b.callbacks.RecordsChanged != nil {
		b.callbacks.RecordsChanged(append([]listbind.Row(nil), rows...))
	}
	b.coord.ResultsLoaded(snap.Records, snap.Term, changed)
	return true
}

// Rows returns the currently bound rows.
func (b *Browser) Rows() []listbind.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]listbind.Row(nil), b.rows...)
}

// Sections returns the section index labels.
func (b *Browser) Sections() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexer.Sections()
}

// PositionForSection returns the first row of section s.
func (b *Browser) PositionForSection(s int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexer.PositionForSection(s)
}

// SectionForPosition returns the section containing row p.
func (b *Browser) SectionForPosition(p int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexer.SectionForPosition(p)
}

// BindSlot asks the loader for row's thumbnail on behalf of slot.
func (b *Browser) BindSlot(slot imageloader.Slot, row listbind.Row) imageloader.Result {
	return b.loader.LoadImage(row.PhotoRef(), slot)
}

// UnbindSlot releases slot so pending deliveries for it are dropped.
func (b *Browser) UnbindSlot(slot imageloader.Slot) {
	b.loader.Unbind(slot)
}

// AcceptImage is the display-thread check that d is still wanted.
func (b *Browser) AcceptImage(d imageloader.Delivery) bool {
	return b.loader.Accept(d)
}

// ForgetImageMisses lets previously failed thumbnails be retried.
func (b *Browser) ForgetImageMisses() {
	b.loader.ForgetMisses()
}

// LoaderStats reports image loader activity.
func (b *Browser) LoaderStats() imageloader.Stats {
	return b.loader.Stats()
}

// SaveState captures the restorable session.
func (b *Browser) SaveState() prefs.Session {
	b.mu.Lock()
	term := b.query.SearchTerm
	resultView := b.query.IsSearchResultView
	b.mu.Unlock()

	sess := prefs.Session{}
	if !resultView {
		sess.SearchTerm = term
	}
	if sel := b.coord.Snapshot(); sel.State == selection.TwoPaneSelected && sel.Index >= 0 {
		sess.SelectedIndex = sel.Index
	}
	return sess
}

// RestoreState restores a saved session before Initialize. The selected
// index is re-applied once, after the next search query completes.
func (b *Browser) RestoreState(sess prefs.Session) {
	b.mu.Lock()
	if b.torn {
		b.mu.Unlock()
		return
	}
	if !b.query.IsSearchResultView {
		b.query.SearchTerm = sess.SearchTerm
	}
	b.query.PreviousSelectionIndex = sess.SelectedIndex
	b.queryChanged = true
	b.mu.Unlock()

	b.coord.ArmRestore(sess.SelectedIndex)
}
