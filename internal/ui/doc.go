// Package ui implements an interactive terminal client using bubbletea's Elm architecture.
//
// The TUI walks through a three-view workflow:
//  1. [SearchView] : Type a seed song
//  2. [StreamView] : Watch related songs arrive while discovery runs
//  3. [DetailView] : Inspect one related song (artists, featuring, artwork, audio URL)
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Songs flow through a channel fed by a [Source], either discovery running in-process ([LocalSource]) or
// the event stream of a running server ([RemoteSource]).
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
