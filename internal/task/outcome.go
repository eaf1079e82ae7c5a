package task

import (
	"errors"

	"github.com/phrazzld/trackbot/internal/domain"
)

// OutcomeKind classifies the result of processing one work item.
type OutcomeKind int

// Possible per-item outcomes.
const (
	OutcomeDelivered OutcomeKind = iota
	OutcomeNoResults
	OutcomeFailed
)

// String returns the name used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one work item. The worker loop consumes
// it instead of letting per-item errors escape.
type Outcome struct {
	Kind OutcomeKind

	// Path and Title describe the delivered file
	Path  string
	Title string

	// Err is set for OutcomeFailed and OutcomeNoResults
	Err error
}

func delivered(path, title string) Outcome {
	return Outcome{Kind: OutcomeDelivered, Path: path, Title: title}
}

func noResults(err error) Outcome {
	return Outcome{Kind: OutcomeNoResults, Err: err}
}

// failed classifies err: anything wrapping domain.ErrNoResults becomes a
// no-results outcome, everything else a failure.
func failed(err error) Outcome {
	if errors.Is(err, domain.ErrNoResults) {
		return noResults(err)
	}
	return Outcome{Kind: OutcomeFailed, Err: err}
}
