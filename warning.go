package revgraph

import (
	"errors"
	"fmt"

	"github.com/etnz/revgraph/date"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoData is returned when there is nothing at all to build curves from.
	ErrNoData = errors.New("no cash flow, trade or performance data")
	// ErrUnknownKind is returned for event labels outside of the four known kinds.
	ErrUnknownKind = errors.New("unknown event kind")
	// ErrDegenerateBase is returned when converting a percentage against a zero or negative base.
	ErrDegenerateBase = errors.New("committed capital is zero or negative")
	// ErrMissingRate is returned when a currency has no exchange rate.
	ErrMissingRate = errors.New("missing exchange rate")
	// ErrMissingPrice is returned when a symbol has no market price at all.
	ErrMissingPrice = errors.New("missing market price")
)

// WarningKind classifies the local, non fatal, failures of the engine.
type WarningKind int

const (
	// MalformedRecord is a cash-flow or trade record that could not be used; it is skipped.
	MalformedRecord WarningKind = iota + 1
	// MissingPriceData is a trade without market history; the latest known
	// market price was used instead, with low confidence.
	MissingPriceData
	// DegenerateBase is a sample skipped because committed capital was not positive.
	DegenerateBase
	// MissingAdjustmentTarget is an adjustment dated after the last sample; it is ignored.
	MissingAdjustmentTarget
)

func (k WarningKind) String() string {
	switch k {
	case MalformedRecord:
		return "malformed record"
	case MissingPriceData:
		return "missing price data"
	case DegenerateBase:
		return "degenerate base"
	case MissingAdjustmentTarget:
		return "missing adjustment target"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning reports a record or a sample that was skipped or degraded while
// building the curves.
type Warning struct {
	Kind    WarningKind
	Date    date.Date
	Subject string // what the warning is about, e.g. a symbol or "manual"
	Err     error
}

func (w Warning) Error() string {
	if w.Date.IsZero() {
		return fmt.Sprintf("%s: %s: %v", w.Kind, w.Subject, w.Err)
	}
	return fmt.Sprintf("%s: %s on %s: %v", w.Kind, w.Subject, w.Date, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// warnings accumulates warnings and logs them as they come.
type warnings []Warning

func (ws *warnings) add(kind WarningKind, on date.Date, subject string, err error) {
	w := Warning{Kind: kind, Date: on, Subject: subject, Err: err}
	log.Warn().Str("kind", kind.String()).Stringer("date", on).Str("subject", subject).Err(err).Msg("reconciliation warning")
	*ws = append(*ws, w)
}
