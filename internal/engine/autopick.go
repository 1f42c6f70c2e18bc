package engine

// SelectBestAvailable chooses the asset an auto-pick should take for a
// team: among every category the roster still has capacity for, the
// undrafted asset with the highest recent-performance score, ties
// broken by lowest asset id so the choice is deterministic. Returns
// ErrPoolExhausted when no needed category has an undrafted asset
// left; callers must treat that as fatal, not as a no-op, since it
// would stall the draft.
func SelectBestAvailable(roster Roster, catalog Catalog, tracker *Tracker, table ConstraintTable) (Category, Asset, error) {
	var (
		bestCat Category
		best    Asset
		found   bool
	)
	for _, cat := range Categories {
		if table.RemainingCapacity(roster, cat) <= 0 {
			continue
		}
		for _, a := range catalog[cat] {
			if !tracker.IsAvailable(cat, a.ID) {
				continue
			}
			if !found || a.Score > best.Score || (a.Score == best.Score && a.ID < best.ID) {
				bestCat, best, found = cat, a, true
			}
		}
	}
	if !found {
		return "", Asset{}, ErrPoolExhausted
	}
	return bestCat, best, nil
}
