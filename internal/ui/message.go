package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytradio/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// run ties a message to the search that produced it so late messages from a replaced search are dropped.
type Msg struct {
	kind MsgKind
	run  int
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSeedFound MsgKind = iota
	MsgEventReceived
)

type seedResult struct {
	details *models.SongDetails
	err     error
}

// seedFoundMsg is the constructor for [MsgSeedFound]
func seedFoundMsg(run int, details *models.SongDetails, err error) Msg {
	return Msg{kind: MsgSeedFound, run: run, data: seedResult{details, err}}
}

// eventReceivedMsg is the constructor for [MsgEventReceived]
func eventReceivedMsg(run int, event models.ChannelEvent) Msg {
	return Msg{kind: MsgEventReceived, run: run, data: event}
}
