package pipeline

import "fmt"

// Kind classifies a per-unit failure so the orchestrator's continue-vs-abort
// policy is explicit rather than buried in control flow.
type Kind int

const (
	// KindConfiguration aborts the whole run before any processing.
	KindConfiguration Kind = iota
	// KindTransport ends one window's pagination; its partial set is kept.
	KindTransport
	// KindSpatialInput skips one area for all windows.
	KindSpatialInput
	// KindAggregation leaves one (window, area) pair out of the summary.
	KindAggregation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindSpatialInput:
		return "spatial input"
	case KindAggregation:
		return "aggregation"
	default:
		return "unknown"
	}
}

// UnitError is the outcome of one failed window or (window, area) unit.
// Unit errors never abort sibling units.
type UnitError struct {
	Kind   Kind
	Window string // window label, empty for area-wide failures
	Area   string // empty for window-level failures
	Err    error
}

func (e *UnitError) Error() string {
	scope := e.Window
	if e.Area != "" {
		if scope != "" {
			scope += " "
		}
		scope += e.Area
	}
	return fmt.Sprintf("%s error (%s): %v", e.Kind, scope, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }
