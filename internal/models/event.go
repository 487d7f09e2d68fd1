package models

// EventKind tags a [ChannelEvent].
type EventKind string

const (
	EventRelatedSong EventKind = "related_song"
	EventError       EventKind = "error"
	EventComplete    EventKind = "complete"
)

// Terminal reports whether no further events follow this kind.
func (k EventKind) Terminal() bool {
	return k == EventError || k == EventComplete
}

// ChannelEvent is the unit pushed through a session's delivery channel.
type ChannelEvent struct {
	Kind    EventKind
	Song    *EnrichedSong
	Message string
}

// MessagePayload is the body of error and complete events.
type MessagePayload struct {
	Message string `json:"message"`
}

// RelatedSongEvent wraps a song with its 1-based rank among emitted items.
func RelatedSongEvent(song EnrichedSong, index int) ChannelEvent {
	indexed := song.WithIndex(index)
	return ChannelEvent{Kind: EventRelatedSong, Song: &indexed}
}

func ErrorEvent(message string) ChannelEvent {
	return ChannelEvent{Kind: EventError, Message: message}
}

func CompleteEvent(message string) ChannelEvent {
	return ChannelEvent{Kind: EventComplete, Message: message}
}

// Terminal reports whether this is the last event of a session.
func (e ChannelEvent) Terminal() bool {
	return e.Kind.Terminal()
}

// Payload returns the value serialized as the event's data.
func (e ChannelEvent) Payload() any {
	if e.Kind == EventRelatedSong && e.Song != nil {
		song := *e.Song
		if song.Featuring == nil {
			song.Featuring = []string{}
		}
		if song.Artists == nil {
			song.Artists = []string{}
		}
		return song
	}
	return MessagePayload{Message: e.Message}
}
