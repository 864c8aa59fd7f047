package browser

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/rolodex/internal/contacts"
	"github.com/five82/rolodex/internal/imageloader"
	"github.com/five82/rolodex/internal/listbind"
	"github.com/five82/rolodex/internal/prefs"
	"github.com/five82/rolodex/internal/selection"
)

var people = []contacts.Record{
	{ID: 1, LookupKey: "alice", DisplayName: "Alice", SortKey: "ALICE", PhotoRef: "alice.png"},
	{ID: 2, LookupKey: "bob", DisplayName: "Bob", SortKey: "BOB"},
	{ID: 3, LookupKey: "carla", DisplayName: "Carla", SortKey: "CARLA", PhotoRef: "carla.png"},
	{ID: 4, LookupKey: "dave", DisplayName: "Dave", SortKey: "DAVE"},
}

type fakeSource struct {
	mu      sync.Mutex
	records []contacts.Record
	err     error
	terms   []string
}

func (f *fakeSource) Query(_ context.Context, term string) ([]contacts.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = append(f.terms, term)
	if f.err != nil {
		return []contacts.Record{}, f.err
	}
	out := []contacts.Record{}
	for _, r := range f.records {
		if term == "" || strings.Contains(strings.ToLower(r.DisplayName), strings.ToLower(term)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type host struct {
	mu         sync.Mutex
	shown      []contacts.URI
	cleared    int
	opened     []contacts.URI
	rows       [][]listbind.Row
	selections []selection.Selection
	images     chan imageloader.Delivery
}

func newHost() *host {
	return &host{images: make(chan imageloader.Delivery, 8)}
}

func (h *host) ShowContact(uri contacts.URI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown = append(h.shown, uri)
}

func (h *host) ShowNoContact() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleared++
}

func (h *host) OpenContact(uri contacts.URI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, uri)
}

func (h *host) callbacks() Callbacks {
	return Callbacks{
		RecordsChanged: func(rows []listbind.Row) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.rows = append(h.rows, rows)
		},
		ImageReady: func(d imageloader.Delivery) { h.images <- d },
		SelectionChanged: func(sel selection.Selection) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.selections = append(h.selections, sel)
		},
	}
}

var placeholder = image.NewRGBA(image.Rect(0, 0, 1, 1))

func solidDecoder() imageloader.Decoder {
	return imageloader.DecoderFunc(func(context.Context, string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	})
}

func newBrowser(t *testing.T, twoPane bool, mutate func(*Config)) (*Browser, *fakeSource, *host) {
	t.Helper()
	src := &fakeSource{records: people}
	h := newHost()
	cfg := Config{
		Source:      src,
		Decoder:     solidDecoder(),
		Workers:     1,
		Placeholder: placeholder,
		Alphabet:    "ABCD",
		TwoPane:     twoPane,
		Presenter:   h,
		Navigator:   h,
		Callbacks:   h.callbacks(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = b.Teardown() })
	return b, src, h
}

func names(rows []listbind.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record.DisplayName
	}
	return out
}

func TestNew_MissingCapability(t *testing.T) {
	h := newHost()
	var cfgErr *ConfigError
	if _, err := New(Config{Decoder: solidDecoder(), Presenter: h, Navigator: h}); !errors.As(err, &cfgErr) || cfgErr.Field != "Source" {
		t.Fatalf("New without Source error = %v, want ConfigError{Source}", err)
	}
	if _, err := New(Config{Source: &fakeSource{}, Presenter: h, Navigator: h}); !errors.As(err, &cfgErr) || cfgErr.Field != "Decoder" {
		t.Fatalf("New without Decoder error = %v, want ConfigError{Decoder}", err)
	}
	var selErr *selection.ConfigError
	if _, err := New(Config{Source: &fakeSource{}, Decoder: solidDecoder(), Navigator: h}); !errors.As(err, &selErr) {
		t.Fatalf("New without Presenter error = %v, want selection.ConfigError", err)
	}
}

func TestInitialize_BindsRowsAndSections(t *testing.T) {
	b, _, h := newBrowser(t, false, nil)
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	got := names(b.Rows())
	if strings.Join(got, ",") != "Alice,Bob,Carla,Dave" {
		t.Fatalf("rows = %v, want Alice,Bob,Carla,Dave", got)
	}
	if len(h.rows) != 1 {
		t.Fatalf("RecordsChanged calls = %d, want 1", len(h.rows))
	}
	if got := b.Sections(); strings.Join(got, "") != "ABCD" {
		t.Fatalf("Sections = %v, want A B C D", got)
	}
	if got := b.PositionForSection(2); got != 2 {
		t.Fatalf("PositionForSection(C) = %d, want 2", got)
	}
	if got := b.SectionForPosition(3); got != 3 {
		t.Fatalf("SectionForPosition(3) = %d, want 3", got)
	}
	for _, row := range b.Rows() {
		if row.ShowSecondary {
			t.Fatalf("row %q shows secondary line without a term", row.Record.DisplayName)
		}
	}
}

func TestSearchTermChanged_Dedupe(t *testing.T) {
	b, _, _ := newBrowser(t, false, nil)
	if b.SearchTermChanged("") {
		t.Fatal("empty to empty should not re-query")
	}
	if !b.SearchTermChanged("a") {
		t.Fatal("new term should re-query")
	}
	if b.SearchTermChanged("a") {
		t.Fatal("same term should not re-query")
	}
	if got := b.QueryState().SearchTerm; got != "a" {
		t.Fatalf("SearchTerm = %q, want %q", got, "a")
	}
}

func TestSearchResultView_FixesTerm(t *testing.T) {
	b, src, _ := newBrowser(t, false, func(c *Config) {
		c.SearchResultView = true
		c.SearchTerm = "bo"
	})
	if b.SearchTermChanged("x") {
		t.Fatal("search change accepted in result view")
	}
	if b.SearchCollapsed() {
		t.Fatal("collapse accepted in result view")
	}
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if got := names(b.Rows()); len(got) != 1 || got[0] != "Bob" {
		t.Fatalf("rows = %v, want [Bob]", got)
	}
	if src.terms[0] != "bo" {
		t.Fatalf("queried term = %q, want %q", src.terms[0], "bo")
	}
	if sess := b.SaveState(); sess.SearchTerm != "" {
		t.Fatalf("saved SearchTerm = %q, want empty in result view", sess.SearchTerm)
	}
}

func TestApply_DropsStaleSnapshot(t *testing.T) {
	b, _, h := newBrowser(t, false, nil)
	ctx := context.Background()
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	b.SearchTermChanged("a")
	snap := b.Refresh(ctx)
	b.SearchTermChanged("ca")
	if b.Apply(snap) {
		t.Fatal("Apply accepted a snapshot for a superseded term")
	}
	if len(h.rows) != 1 {
		t.Fatalf("RecordsChanged calls = %d, want 1", len(h.rows))
	}

	if !b.Apply(b.Refresh(ctx)) {
		t.Fatal("Apply rejected the current snapshot")
	}
	if got := names(b.Rows()); len(got) != 1 || got[0] != "Carla" {
		t.Fatalf("rows = %v, want [Carla]", got)
	}
	if b.Apply(b.Refresh(ctx)) {
		t.Fatal("Apply rebuilt rows for an unchanged snapshot")
	}
}

func TestSearch_HighlightAndSecondaryLine(t *testing.T) {
	b, _, _ := newBrowser(t, false, nil)
	ctx := context.Background()
	b.SearchTermChanged("ar")
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	rows := b.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want [Carla]", names(rows))
	}
	if !rows[0].HasHighlight || rows[0].Highlight != (listbind.Range{Start: 1, End: 3}) {
		t.Fatalf("highlight = %+v (%v), want [1,3)", rows[0].Highlight, rows[0].HasHighlight)
	}
	if rows[0].ShowSecondary {
		t.Fatal("secondary line shown for a name match")
	}
}

func TestTwoPaneSearch_SelectsFirstRow(t *testing.T) {
	b, _, h := newBrowser(t, true, nil)
	ctx := context.Background()
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if got := b.Selection().State; got != selection.NoSelection {
		t.Fatalf("State after unfiltered load = %v, want %v", got, selection.NoSelection)
	}

	b.SearchTermChanged("a")
	b.Apply(b.Refresh(ctx))

	sel := b.Selection()
	if sel.State != selection.TwoPaneSelected || sel.URI != people[0].URI() {
		t.Fatalf("selection = %+v, want Alice selected", sel)
	}
	if len(h.shown) != 1 || h.shown[0] != people[0].URI() {
		t.Fatalf("presenter shown = %v, want [%v]", h.shown, people[0].URI())
	}
}

func TestRestoreState_OneShot(t *testing.T) {
	b, _, h := newBrowser(t, true, nil)
	ctx := context.Background()
	b.RestoreState(prefs.Session{SearchTerm: "a", SelectedIndex: 1})
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	// "a" matches Alice, Carla, Dave.
	sel := b.Selection()
	if sel.URI != people[2].URI() || sel.Index != 1 {
		t.Fatalf("restored selection = %+v, want Carla at 1", sel)
	}
	if got := b.QueryState().PreviousSelectionIndex; got != 1 {
		t.Fatalf("PreviousSelectionIndex = %d, want 1", got)
	}

	b.SearchTermChanged("d")
	b.Apply(b.Refresh(ctx))
	if sel := b.Selection(); sel.URI != people[3].URI() || sel.Index != 0 {
		t.Fatalf("selection after second search = %+v, want Dave at 0", sel)
	}
	if len(h.shown) != 2 {
		t.Fatalf("presenter shown %d times, want 2", len(h.shown))
	}
}

func TestRestoreState_OutOfRangeClears(t *testing.T) {
	b, _, h := newBrowser(t, true, nil)
	b.RestoreState(prefs.Session{SearchTerm: "bo", SelectedIndex: 5})
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if got := b.Selection().State; got != selection.NoSelection {
		t.Fatalf("State = %v, want %v", got, selection.NoSelection)
	}
	if h.cleared != 1 {
		t.Fatalf("ShowNoContact calls = %d, want 1", h.cleared)
	}
}

func TestSearchCollapsed_ClearsTwoPaneSelection(t *testing.T) {
	b, src, h := newBrowser(t, true, nil)
	ctx := context.Background()
	b.SearchTermChanged("bo")
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if got := b.Selection().State; got != selection.TwoPaneSelected {
		t.Fatalf("State = %v, want %v", got, selection.TwoPaneSelected)
	}

	if !b.SearchCollapsed() {
		t.Fatal("collapse with an active term should re-query")
	}
	if got := b.Selection().State; got != selection.NoSelection {
		t.Fatalf("State after collapse = %v, want %v", got, selection.NoSelection)
	}
	if h.cleared != 1 {
		t.Fatalf("ShowNoContact calls = %d, want 1", h.cleared)
	}
	b.Apply(b.Refresh(ctx))
	if got := src.terms[len(src.terms)-1]; got != "" {
		t.Fatalf("last queried term = %q, want empty", got)
	}
	if got := len(b.Rows()); got != len(people) {
		t.Fatalf("rows after collapse = %d, want %d", got, len(people))
	}
	if b.SearchCollapsed() {
		t.Fatal("collapse without a term should not re-query")
	}
}

func TestItemTapped(t *testing.T) {
	t.Run("single pane navigates", func(t *testing.T) {
		b, _, h := newBrowser(t, false, nil)
		if err := b.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		if !b.ItemTapped(1) {
			t.Fatal("ItemTapped(1) = false, want true")
		}
		if len(h.opened) != 1 || h.opened[0] != people[1].URI() {
			t.Fatalf("opened = %v, want [%v]", h.opened, people[1].URI())
		}
		if got := b.Selection().State; got != selection.SinglePane {
			t.Fatalf("State = %v, want %v", got, selection.SinglePane)
		}
		if b.ItemTapped(9) {
			t.Fatal("ItemTapped out of range = true, want false")
		}
	})

	t.Run("two pane selects and saves", func(t *testing.T) {
		b, _, h := newBrowser(t, true, nil)
		if err := b.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		b.ItemTapped(2)
		if len(h.shown) != 1 || h.shown[0] != people[2].URI() {
			t.Fatalf("shown = %v, want [%v]", h.shown, people[2].URI())
		}
		if len(h.selections) == 0 || h.selections[len(h.selections)-1].Index != 2 {
			t.Fatalf("SelectionChanged = %v, want index 2 last", h.selections)
		}
		if sess := b.SaveState(); sess.SelectedIndex != 2 {
			t.Fatalf("saved SelectedIndex = %d, want 2", sess.SelectedIndex)
		}
	})
}

func TestRefresh_FailureKeepsRows(t *testing.T) {
	b, src, _ := newBrowser(t, false, nil)
	ctx := context.Background()
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	src.fail(errors.New("database is locked"))
	snap := b.Refresh(ctx)
	if snap.LastError == nil {
		t.Fatal("LastError = nil, want the query error")
	}
	if len(snap.Records) != len(people) {
		t.Fatalf("snapshot records = %d, want %d", len(snap.Records), len(people))
	}
	b.Apply(snap)
	if got := len(b.Rows()); got != len(people) {
		t.Fatalf("rows after failure = %d, want %d", got, len(people))
	}
}

func TestScrollAndPause(t *testing.T) {
	b, _, _ := newBrowser(t, false, nil)
	b.ScrollStateChanged(true)
	if !b.LoaderStats().Paused {
		t.Fatal("loader not paused during fling")
	}
	b.ScrollStateChanged(false)
	if b.LoaderStats().Paused {
		t.Fatal("loader still paused after fling")
	}
	b.ScrollStateChanged(true)
	b.OnPause()
	if b.LoaderStats().Paused {
		t.Fatal("loader still paused after OnPause")
	}
}

func TestBindSlot(t *testing.T) {
	b, _, h := newBrowser(t, false, nil)
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	rows := b.Rows()

	res := b.BindSlot(1, rows[1])
	if res.Pending || res.Image != image.Image(placeholder) {
		t.Fatalf("no-photo row result = %+v, want placeholder without work", res)
	}

	res = b.BindSlot(0, rows[0])
	if !res.Pending {
		t.Fatalf("photo row result = %+v, want pending", res)
	}
	select {
	case d := <-h.images:
		if d.Key != "alice.png" || d.Placeholder {
			t.Fatalf("delivery = %+v, want decoded alice.png", d)
		}
		if !b.AcceptImage(d) {
			t.Fatal("AcceptImage rejected a current delivery")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no image delivered")
	}

	res = b.BindSlot(2, rows[0])
	if !res.Hit {
		t.Fatalf("second bind result = %+v, want cache hit", res)
	}
}

func TestTeardown(t *testing.T) {
	b, _, _ := newBrowser(t, false, nil)
	if err := b.Teardown(); err != nil {
		t.Fatalf("Teardown returned error: %v", err)
	}
	if err := b.Teardown(); err != nil {
		t.Fatalf("second Teardown returned error: %v", err)
	}
	if err := b.Initialize(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Initialize after Teardown error = %v, want ErrClosed", err)
	}
	if b.SearchTermChanged("a") {
		t.Fatal("SearchTermChanged accepted after Teardown")
	}
}
