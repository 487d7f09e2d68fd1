package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrMediaUnavailable   = fmt.Errorf("media URL unavailable")
	ErrInvalidCandidate   = fmt.Errorf("candidate missing title, id or artists")
	ErrDiscoveryFailed    = fmt.Errorf("discovery failed")

	// Session errors
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrSessionBusy     = fmt.Errorf("session already has an active stream")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
