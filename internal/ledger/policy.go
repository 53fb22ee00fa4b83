package ledger

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

// StockPolicy names whose quantity is compared against the book stock. The
// counters are compared with each other regardless of policy.
type StockPolicy string

const (
	// StockPolicyCounterA treats counter A as the primary counter. This is
	// the default and matches how existing cycles were reconciled.
	StockPolicyCounterA StockPolicy = "counter_a"
	StockPolicyCounterB StockPolicy = "counter_b"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return StockPolicyCounterA, nil
	case StockPolicyCounterA, StockPolicyCounterB:
		return p, nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}

func (p StockPolicy) quantity(d *model.ProductCountDetail) int64 {
	if p == StockPolicyCounterB {
		return d.B.Quantity
	}
	return d.A.Quantity
}
