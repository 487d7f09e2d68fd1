package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

var _ list.Item = songItem{}

// songItem wraps [models.EnrichedSong] to implement [list.Item].
type songItem struct {
	song models.EnrichedSong
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return fmt.Sprintf("%d. %s", i.song.Index, i.song.Title) }
func (i songItem) Description() string {
	desc := shared.JoinArtists(i.song.Artists)
	if len(i.song.Featuring) > 0 {
		desc = fmt.Sprintf("%s • feat. %s", desc, strings.Join(i.song.Featuring, ", "))
	}
	if !i.song.HasAudio() {
		desc += " • no audio"
	}
	return desc
}
