package selection

import (
	"fmt"
	"sync"

	"github.com/five82/rolodex/internal/contacts"
)

// State is the coordinator's mode.
type State int

const (
	// NoSelection: two-pane layout with nothing shown in the detail pane.
	NoSelection State = iota
	// SinglePane: detail is a navigation target; nothing is retained here.
	SinglePane
	// TwoPaneSelected: the detail pane shows Selection.URI.
	TwoPaneSelected
)

func (s State) String() string {
	switch s {
	case NoSelection:
		return "none"
	case SinglePane:
		return "single-pane"
	case TwoPaneSelected:
		return "selected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Selection is a snapshot of the coordinator.
type Selection struct {
	State State
	URI   contacts.URI
	// Index is the row of the selected record in the current results, or
	// -1 when nothing is selected.
	Index int
}

// Presenter drives the detail pane in two-pane mode.
type Presenter interface {
	ShowContact(uri contacts.URI)
	ShowNoContact()
}

// Navigator opens the detail view in single-pane mode.
type Navigator interface {
	OpenContact(uri contacts.URI)
}

// Config wires a Coordinator. Presenter and Navigator are both required
// because the layout can change at runtime.
type Config struct {
	TwoPane   bool
	Presenter Presenter
	Navigator Navigator

	// OnChange, if set, receives every selection change.
	OnChange func(Selection)
}

// ConfigError reports a missing capability.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("selection: %s is required", e.Field)
}

// Coordinator tracks the single selection across pane layouts.
type Coordinator struct {
	presenter Presenter
	navigator Navigator
	onChange  func(Selection)

	mu      sync.Mutex
	twoPane bool
	sel     Selection
	restore int // -1 when no restore is armed
}

// New validates cfg and returns a Coordinator in its initial state.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Presenter == nil {
		return nil, &ConfigError{Field: "Presenter"}
	}
	if cfg.Navigator == nil {
		return nil, &ConfigError{Field: "Navigator"}
	}
	c := &Coordinator{
		presenter: cfg.Presenter,
		navigator: cfg.Navigator,
		onChange:  cfg.OnChange,
		twoPane:   cfg.TwoPane,
		restore:   -1,
	}
	c.sel = c.empty()
	return c, nil
}

func (c *Coordinator) empty() Selection {
	if c.twoPane {
		return Selection{State: NoSelection, Index: -1}
	}
	return Selection{State: SinglePane, Index: -1}
}

// Snapshot returns the current selection.
func (c *Coordinator) Snapshot() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// TwoPane reports the layout mode.
func (c *Coordinator) TwoPane() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twoPane
}

// Tap handles a tap on row index. In two-pane mode the record becomes the
// selection and the presenter shows it; in single-pane mode the navigator
// opens it and no selection is kept.
func (c *Coordinator) Tap(index int, rec contacts.Record) {
	uri := rec.URI()
	c.mu.Lock()
	if !c.twoPane {
		c.sel = Selection{State: SinglePane, Index: -1}
		c.mu.Unlock()
		c.navigator.OpenContact(uri)
		return
	}
	c.sel = Selection{State: TwoPaneSelected, URI: uri, Index: index}
	sel := c.sel
	c.mu.Unlock()

	c.presenter.ShowContact(uri)
	c.notify(sel)
}

// SearchCollapsed handles the search box closing. When a term had been
// active in two-pane mode the selection is cleared.
func (c *Coordinator) SearchCollapsed(hadTerm bool) {
	c.mu.Lock()
	if !c.twoPane || !hadTerm {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.clear()
}

// SetTwoPane switches layout. Any selection is dropped; a two-pane
// selection is cleared from the presenter first.
func (c *Coordinator) SetTwoPane(twoPane bool) {
	c.mu.Lock()
	if c.twoPane == twoPane {
		c.mu.Unlock()
		return
	}
	wasSelected := c.sel.State == TwoPaneSelected
	c.twoPane = twoPane
	c.sel = c.empty()
	sel := c.sel
	c.mu.Unlock()

	if wasSelected {
		c.presenter.ShowNoContact()
	}
	c.notify(sel)
}

// ArmRestore records a row index to select after the next search
// re-query. It is consumed once.
func (c *Coordinator) ArmRestore(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 {
		c.restore = -1
		return
	}
	c.restore = index
}

// Restore returns the armed restore index, or -1.
func (c *Coordinator) Restore() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restore
}

// ResultsLoaded reconciles the selection with a new result set. After a
// search re-query in two-pane mode the armed restore row (row 0 when none
// is armed) is selected if present, otherwise the selection is cleared;
// the restore is consumed either way. For other loads a selection whose
// record is gone is cleared and a surviving one follows its new row.
func (c *Coordinator) ResultsLoaded(records []contacts.Record, term string, queryChanged bool) {
	c.mu.Lock()
	if !c.twoPane {
		c.mu.Unlock()
		return
	}

	if queryChanged && term != "" {
		idx := 0
		if c.restore >= 0 {
			idx = c.restore
		}
		c.restore = -1
		c.mu.Unlock()
		if idx < len(records) {
			c.Tap(idx, records[idx])
		} else {
			c.clear()
		}
		return
	}

	if c.sel.State != TwoPaneSelected {
		c.mu.Unlock()
		return
	}
	for i, rec := range records {
		if rec.URI() == c.sel.URI {
			moved := c.sel.Index != i
			c.sel.Index = i
			sel := c.sel
			c.mu.Unlock()
			if moved {
				c.notify(sel)
			}
			return
		}
	}
	c.mu.Unlock()
	c.clear()
}

func (c *Coordinator) clear() {
	c.mu.Lock()
	if !c.twoPane {
		c.mu.Unlock()
		return
	}
	c.sel = Selection{State: NoSelection, Index: -1}
	sel := c.sel
	c.mu.Unlock()

	c.presenter.ShowNoContact()
	c.notify(sel)
}

func (c *Coordinator) notify(sel Selection) {
	if c.onChange != nil {
		c.onChange(sel)
	}
}
