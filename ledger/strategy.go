package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"splitledger-backend/models"
)

// Evaluate computes the signed balance deltas one spending applies, keyed by
// user. Amounts are in the smallest currency unit and all arithmetic is
// integer arithmetic: each participant is charged a whole number of units and
// the payer is credited the sum of the charges, so the deltas always sum to
// zero. With EQUAL_PARTS the division remainder is charged to nobody.
//
// active is the group's active membership including the payer. PERCENTAGE and
// CUSTOM read their per-user parameters from entries; EQUAL_PARTS ignores
// entries and splits across all of active. The payer need not appear in
// entries.
func Evaluate(strategy models.SplitStrategy, amount int64, payerID uuid.UUID, active []uuid.UUID, entries []models.StrategyEntry) (map[uuid.UUID]int64, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	activeSet := make(map[uuid.UUID]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}
	if !activeSet[payerID] {
		return nil, ErrNotAMember
	}

	charges := make(map[uuid.UUID]int64)

	switch strategy {
	case models.StrategyEqualParts:
		share := amount / int64(len(active))
		for _, id := range active {
			charges[id] = share
		}

	case models.StrategyPercentage:
		if err := validateEntries(entries, activeSet); err != nil {
			return nil, err
		}
		var total int64
		for _, e := range entries {
			total += e.Value
		}
		if total != 100 {
			return nil, fmt.Errorf("%w: percentages sum to %d, want 100", ErrInvalidStrategyData, total)
		}
		for _, e := range entries {
			charges[e.UserID] = amount * e.Value / 100
		}

	case models.StrategyCustom:
		if err := validateEntries(entries, activeSet); err != nil {
			return nil, err
		}
		var total int64
		for _, e := range entries {
			total += e.Value
		}
		if total != amount {
			return nil, fmt.Errorf("%w: custom amounts sum to %d, want %d", ErrInvalidStrategyData, total, amount)
		}
		for _, e := range entries {
			charges[e.UserID] = e.Value
		}

	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidStrategyData, strategy)
	}

	deltas := make(map[uuid.UUID]int64, len(charges)+1)
	var credited int64
	for id, charge := range charges {
		deltas[id] -= charge
		credited += charge
	}
	deltas[payerID] += credited

	return deltas, nil
}

func validateEntries(entries []models.StrategyEntry, activeSet map[uuid.UUID]bool) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidStrategyData)
	}
	seen := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		if e.UserID == uuid.Nil {
			return fmt.Errorf("%w: entry without user", ErrInvalidStrategyData)
		}
		if seen[e.UserID] {
			return fmt.Errorf("%w: duplicate entry for user %s", ErrInvalidStrategyData, e.UserID)
		}
		seen[e.UserID] = true
		if e.Value < 0 {
			return fmt.Errorf("%w: negative value for user %s", ErrInvalidStrategyData, e.UserID)
		}
		if !activeSet[e.UserID] {
			return fmt.Errorf("%w: user %s is not an active member", ErrInvalidStrategyData, e.UserID)
		}
	}
	return nil
}
