package ui

import (
	"image"
	"image/color"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rolodex/internal/browser"
	"github.com/five82/rolodex/internal/contacts"
	"github.com/five82/rolodex/internal/imageloader"
	"github.com/five82/rolodex/internal/listbind"
	"github.com/five82/rolodex/internal/selection"
	"github.com/five82/rolodex/internal/state"
)

const bridgeBuffer = 256

// Messages produced off the UI goroutine.
type (
	imageMsg    imageloader.Delivery
	snapshotMsg state.Snapshot
)

// Bridge connects the browser engine to the Bubble Tea program. Image
// deliveries and polled snapshots arrive on other goroutines and are queued
// as messages. Presenter, navigator and list callbacks only ever fire from
// browser calls made inside Update, so they are recorded and collected by
// the model after each call.
type Bridge struct {
	msgs      chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending pendingEvents
}

type pendingEvents struct {
	rowsChanged bool
	selection   *selection.Selection
	showDetail  *contacts.URI
	clearDetail bool
	open        *contacts.URI
}

// NewBridge returns a Bridge ready to be wired into a browser.
func NewBridge() *Bridge {
	return &Bridge{
		msgs: make(chan tea.Msg, bridgeBuffer),
		done: make(chan struct{}),
	}
}

// Callbacks returns the browser callbacks routed through the bridge.
func (b *Bridge) Callbacks() browser.Callbacks {
	return browser.Callbacks{
		RecordsChanged: func([]listbind.Row) {
			b.mu.Lock()
			b.pending.rowsChanged = true
			b.mu.Unlock()
		},
		ImageReady: func(d imageloader.Delivery) {
			b.send(imageMsg(d))
		},
		SelectionChanged: func(sel selection.Selection) {
			b.mu.Lock()
			b.pending.selection = &sel
			b.mu.Unlock()
		},
	}
}

// ShowContact implements selection.Presenter.
func (b *Bridge) ShowContact(uri contacts.URI) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.showDetail = &uri
	b.pending.clearDetail = false
}

// ShowNoContact implements selection.Presenter.
func (b *Bridge) ShowNoContact() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.showDetail = nil
	b.pending.clearDetail = true
}

// OpenContact implements selection.Navigator.
func (b *Bridge) OpenContact(uri contacts.URI) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.open = &uri
}

// PublishSnapshot queues a polled snapshot for the UI goroutine.
func (b *Bridge) PublishSnapshot(snap state.Snapshot) {
	b.send(snapshotMsg(snap))
}

// Close releases any goroutine blocked in a send. It is safe to call more
// than once.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	case <-b.done:
	}
}

// take returns and resets the recorded events.
func (b *Bridge) take() pendingEvents {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := b.pending
	b.pending = pendingEvents{}
	return ev
}

// listen waits for the next queued message.
func (b *Bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Placeholder is the image bound to rows whose photo is missing or still
// loading. Rendering recognizes it and draws initials instead.
func Placeholder() image.Image {
	return placeholderImage
}

var placeholderImage = func() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{A: 0})
	return img
}()
