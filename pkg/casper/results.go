package casper

// Outcome describes how a navigation ended.
type Outcome int

const (
	OutcomeLoaded     Outcome = iota // A different page was loaded and activated
	OutcomeReused                    // Same page, the new query was forwarded to it
	OutcomeNotFound                  // Nothing matched (or the page failed to load), not-found page shown
	OutcomeUnchanged                 // Nothing matched, the current page stays in place
	OutcomeSuperseded                // A newer navigation started while this one was loading
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeReused:
		return "reused"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}
