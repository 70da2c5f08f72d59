package revgraph

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the type of a cash-flow event.
type Kind int

const (
	Deposit    Kind = iota + 1 // securities delivered into the account
	Withdrawal                 // securities delivered out of the account
	Buy
	Sell
)

// kindLabels maps every recognized label to its Kind. German labels are the
// ones used by the broker's transaction tables.
var kindLabels = map[string]Kind{
	"deposit":      Deposit,
	"einlieferung": Deposit,
	"withdrawal":   Withdrawal,
	"auslieferung": Withdrawal,
	"buy":          Buy,
	"kauf":         Buy,
	"sell":         Sell,
	"verkauf":      Sell,
}

// ParseKind returns the Kind for a label, case insensitive.
func ParseKind(label string) (Kind, error) {
	k, ok := kindLabels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, label)
	}
	return k, nil
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool { return k >= Deposit && k <= Sell }

// Sign is +1 when money is committed to the account (Deposit, Buy) and -1
// when it is taken back (Withdrawal, Sell).
func (k Kind) Sign() decimal.Decimal {
	switch k {
	case Deposit, Buy:
		return decimal.NewFromInt(1)
	case Withdrawal, Sell:
		return decimal.NewFromInt(-1)
	default:
		return decimal.Zero
	}
}

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
