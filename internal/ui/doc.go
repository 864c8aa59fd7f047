// Package ui provides the terminal user interface for rolodex.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program hosting a browser.Browser. The browser owns
// the query cycle, list binding, section index, image loading and selection;
// the model owns the cursor, scroll offset, the search field and rendering.
//
// # Package Structure
//
//   - model.go: Model, Update, key handling and the Run entry point
//   - bridge.go: Bridge, which turns browser callbacks into messages
//   - header.go: status bar, command bar and content composition
//   - list.go: contact rows with section gutter and search highlight
//   - detail.go: detail pane with portrait and contact fields
//   - thumbnail.go: half-block rendering of thumbnails and initials fallback
//   - logs.go: application log viewer
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: color themes and background helpers
//
// # Event Flow
//
//  1. app.Run builds the browser with a Bridge as its presenter, navigator
//     and callback sink, then calls Run.
//  2. Browser calls made from Update record their events on the Bridge;
//     sync collects them after each call.
//  3. Image deliveries and polled snapshots arrive from other goroutines as
//     messages on the Bridge channel.
//  4. Rows on screen are bound to image slots by line; scrolling rebinds
//     slots, and a stale delivery is rejected by AcceptImage.
//  5. Page jumps pause decode work until the list settles.
//
// # Layouts
//
// Terminals at least config.TwoPaneMinWidth wide show the list and the detail
// pane side by side. Narrower terminals show the list alone and open the
// detail screen on enter.
//
// # Key Bindings
//
//   - j/k, up/down: Move the cursor
//   - pgup/pgdown, ctrl+u/ctrl+d, g/G: Jump through the list
//   - [ / ]: Previous / next index letter
//   - enter: Open the contact under the cursor
//   - /: Search (disabled in result view)
//   - esc: Clear search or go back
//   - l: Logs
//   - T: Cycle theme
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
