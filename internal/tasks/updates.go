package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	CompleteMessage  = "Related songs processing complete"
	NoRelatedMessage = "No related songs found"
)

// Discovery phase enumeration, used to tag log entries.
type Phase int

const (
	SearchSeed Phase = iota
	EnrichSeed
	FetchRelated
	EnrichRelated
)

func (p Phase) String() string {
	switch p {
	case SearchSeed:
		return "search_seed"
	case EnrichSeed:
		return "enrich_seed"
	case FetchRelated:
		return "fetch_related"
	case EnrichRelated:
		return "enrich_related"
	default:
		return ""
	}
}

// phaseError records the phase a pipeline-level failure happened in.
type phaseError struct {
	phase Phase
	err   error
}

func (e *phaseError) Error() string { return e.err.Error() }
func (e *phaseError) Unwrap() error { return e.err }

func failAt(phase Phase, err error) error {
	return &phaseError{phase: phase, err: err}
}

func phaseOf(err error) string {
	var pe *phaseError
	if errors.As(err, &pe) {
		return pe.phase.String()
	}
	return ""
}

func completeEvent() models.ChannelEvent {
	return models.CompleteEvent(CompleteMessage)
}

// failureEvent converts a pipeline-level failure into the terminal error event.
func failureEvent(err error) models.ChannelEvent {
	if errors.Is(err, shared.ErrTrackNotFound) || errors.Is(err, shared.ErrInvalidCandidate) {
		return models.ErrorEvent(NoRelatedMessage)
	}
	return models.ErrorEvent(err.Error())
}

func panicEvent(r any) models.ChannelEvent {
	return models.ErrorEvent(fmt.Sprintf("Error processing related songs: %v", r))
}
