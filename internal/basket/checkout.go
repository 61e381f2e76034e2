package basket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Fixed user-facing payment messages. The texts are part of the API
// contract and asserted by clients; do not reword them.
const (
	msgSettled      = "Transaction was successfull"
	msgInsufficient = "The sum of money you have sent is not enough"
)

func msgOverpaid(change decimal.Decimal) string {
	return fmt.Sprintf("You still have some money: %s! Would you like to buy something else?",
		change.StringFixed(2))
}

// Pay validates the tendered amount against the priced basket and settles
// on an exact match. Trichotomy per attempt:
//
//	tendered == total -> Settled, basket closed (the only closing path)
//	tendered <  total -> Insufficient, no mutation
//	tendered >  total -> Overpaid, change reported, basket stays active
//
// The basket staying active on overpayment mirrors the long-standing
// behavior of this API; clients compensate by paying the exact total.
//
// The empty-basket precondition is checked before any pricing, so an absent
// or empty basket never reaches the comparison.
func (s *Service) Pay(ctx context.Context, ownerID int64, tendered decimal.Decimal) (Outcome, error) {
	b, items, err := s.activeContents(ctx, ownerID)
	if err != nil {
		return Outcome{}, err
	}

	// Discount is re-read on every attempt; a committed discount update is
	// visible to the very next payment.
	discount, err := s.store.Discount(ctx, ownerID)
	if err != nil {
		return Outcome{}, err
	}

	total := Quantize(ComputeTotal(items, discount))

	switch tendered.Cmp(total) {
	case 0:
		// Settle guards on active = 1, so two racing exact payments cannot
		// both close the basket: the loser gets ErrAlreadySettled.
		if err := s.store.Settle(ctx, b.ID); err != nil {
			return Outcome{}, err
		}
		slog.InfoContext(ctx, "basket settled",
			"owner_id", ownerID, "basket_id", b.ID, "total", total.StringFixed(2))
		return Outcome{State: StateSettled, Total: total, Message: msgSettled}, nil

	case -1:
		return Outcome{State: StateInsufficient, Total: total, Message: msgInsufficient}, nil

	default:
		change := Quantize(tendered.Sub(total))
		return Outcome{
			State:   StateOverpaid,
			Total:   total,
			Change:  change,
			Message: msgOverpaid(change),
		}, nil
	}
}
