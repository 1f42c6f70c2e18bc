package engine

import (
	"math/rand"
	"sort"
)

// OrderMode selects how the round-1 draft order is produced.
type OrderMode string

const (
	OrderModeRandom OrderMode = "random"
	OrderModeManual OrderMode = "manual"
)

// PlanOrder computes the round-1 pick order. Random mode is an
// unbiased permutation of the teams; manual mode sorts by the supplied
// positions and fails with ErrIncompleteOrder when any team lacks one
// or two teams share one.
func PlanOrder(teams []TeamID, mode OrderMode, manual map[TeamID]int) ([]TeamID, error) {
	if len(teams) == 0 {
		return nil, ErrIncompleteOrder
	}

	order := make([]TeamID, len(teams))
	copy(order, teams)

	switch mode {
	case OrderModeRandom:
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		return order, nil

	case OrderModeManual:
		seen := make(map[int]bool, len(teams))
		for _, team := range teams {
			pos, ok := manual[team]
			if !ok || seen[pos] {
				return nil, ErrIncompleteOrder
			}
			seen[pos] = true
		}
		sort.Slice(order, func(i, j int) bool {
			return manual[order[i]] < manual[order[j]]
		})
		return order, nil

	default:
		return nil, ErrIncompleteOrder
	}
}

// teamAtSlot maps a 0-based slot in the snake grid to the team that
// owns it: the round-1 order reversed on every odd round index.
func teamAtSlot(order []TeamID, slot int) TeamID {
	n := len(order)
	round := slot / n
	idx := slot % n
	if round%2 == 1 {
		idx = n - 1 - idx
	}
	return order[idx]
}
