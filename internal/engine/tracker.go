package engine

// ClaimedAsset is one (category, assetId) pair already drafted.
type ClaimedAsset struct {
	Category Category `json:"category"`
	AssetID  int64    `json:"asset_id"`
}

// Tracker is the authoritative record of claimed assets for one
// session. It is only mutated inside the session's serialized loop;
// it does no locking of its own.
type Tracker struct {
	claimed map[Category]map[int64]bool
}

func NewTracker() *Tracker {
	return &Tracker{claimed: make(map[Category]map[int64]bool)}
}

// TryClaim atomically checks-and-claims a pair. Returns false if the
// pair was already claimed.
func (t *Tracker) TryClaim(cat Category, id int64) bool {
	set := t.claimed[cat]
	if set == nil {
		set = make(map[int64]bool)
		t.claimed[cat] = set
	}
	if set[id] {
		return false
	}
	set[id] = true
	return true
}

// IsAvailable reports whether the pair has not been claimed.
func (t *Tracker) IsAvailable(cat Category, id int64) bool {
	return !t.claimed[cat][id]
}

// Release undoes a claim, for rollback when validation downstream of a
// claim fails.
func (t *Tracker) Release(cat Category, id int64) {
	delete(t.claimed[cat], id)
}

// Claimed returns every claimed pair, for snapshots.
func (t *Tracker) Claimed() []ClaimedAsset {
	var out []ClaimedAsset
	for _, cat := range Categories {
		for id := range t.claimed[cat] {
			out = append(out, ClaimedAsset{Category: cat, AssetID: id})
		}
	}
	return out
}
