package engine

// ConstraintTable is the static rule for how many assets of each
// category a roster holds, plus one flex slot usable by any category
// once its dedicated slots are full.
type ConstraintTable struct {
	Limits    map[Category]int
	FlexSlots int
}

// DefaultConstraints returns the standard 2/2/2/2/1 + 1 flex table.
func DefaultConstraints() ConstraintTable {
	return ConstraintTable{
		Limits: map[Category]int{
			CategoryManufacturer: 2,
			CategoryStrain:       2,
			CategoryProduct:      2,
			CategoryPharmacy:     2,
			CategoryBrand:        1,
		},
		FlexSlots: 1,
	}
}

// TotalSlots is the number of picks a full roster holds.
func (t ConstraintTable) TotalSlots() int {
	total := t.FlexSlots
	for _, n := range t.Limits {
		total += n
	}
	return total
}

// Roster counts drafted assets per category for one team.
type Roster map[Category]int

// Size is the total number of picks the roster holds.
func (r Roster) Size() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// flexUsed counts picks sitting in the flex slot, i.e. picks beyond a
// category's dedicated limit.
func (t ConstraintTable) flexUsed(r Roster) int {
	used := 0
	for cat, n := range r {
		if over := n - t.Limits[cat]; over > 0 {
			used += over
		}
	}
	return used
}

// RemainingCapacity returns how many more assets of cat the roster may
// still take: open dedicated slots first, then the flex slot.
func (t ConstraintTable) RemainingCapacity(r Roster, cat Category) int {
	dedicated := t.Limits[cat] - r[cat]
	if dedicated < 0 {
		dedicated = 0
	}
	flex := t.FlexSlots - t.flexUsed(r)
	return dedicated + flex
}

// Full reports whether every slot, flex included, is filled.
func (t ConstraintTable) Full(r Roster) bool {
	return r.Size() >= t.TotalSlots()
}
