// Package projector maintains the client-side view of a draft: the
// confirmed pick log from the server merged with locally-optimistic
// intents, so the acting client's view updates before confirmation
// without diverging once it arrives.
package projector

import (
	"sort"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
)

// Entry is one row of the projection. Confirmed rows come from the
// authoritative log; unconfirmed rows are local intents awaiting the
// server.
type Entry struct {
	Pick      engine.Pick
	Confirmed bool
}

type intent struct {
	team     engine.TeamID
	category engine.Category
	assetID  int64
}

// Projector is a derived, disposable projection. The confirmed log is
// the source of truth; pending intents are reconciled or revoked on
// every authoritative event, never hand-merged.
type Projector struct {
	confirmed map[int]engine.Pick // keyed by pick number
	pending   []intent
}

func New() *Projector {
	return &Projector{confirmed: make(map[int]engine.Pick)}
}

// SubmitIntent records an optimistic local pick so the UI reflects it
// before the server confirms.
func (p *Projector) SubmitIntent(team engine.TeamID, cat engine.Category, assetID int64) {
	for _, in := range p.pending {
		if in.category == cat && in.assetID == assetID {
			return
		}
	}
	p.pending = append(p.pending, intent{team: team, category: cat, assetID: assetID})
}

// ApplyConfirmed reconciles one authoritative pick_made event.
// Reapplying the same pick number is a no-op. A pending intent for the
// same asset is replaced when the confirming team matches and revoked
// when another team's pick confirmed first.
func (p *Projector) ApplyConfirmed(pick engine.Pick) {
	if _, seen := p.confirmed[pick.PickNumber]; seen {
		return
	}
	p.confirmed[pick.PickNumber] = pick

	kept := p.pending[:0]
	for _, in := range p.pending {
		if in.category == pick.Category && in.assetID == pick.AssetID {
			continue // confirmed or revoked either way
		}
		kept = append(kept, in)
	}
	p.pending = kept
}

// ApplySnapshot rebuilds the confirmed log from a resync snapshot,
// dropping any pending intent that conflicts with it.
func (p *Projector) ApplySnapshot(log []engine.Pick) {
	p.confirmed = make(map[int]engine.Pick, len(log))
	for _, pick := range log {
		p.confirmed[pick.PickNumber] = pick
	}
	kept := p.pending[:0]
	for _, in := range p.pending {
		conflict := false
		for _, pick := range log {
			if in.category == pick.Category && in.assetID == pick.AssetID {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, in)
		}
	}
	p.pending = kept
}

// Projection returns confirmed picks in log order followed by pending
// intents.
func (p *Projector) Projection() []Entry {
	nums := make([]int, 0, len(p.confirmed))
	for n := range p.confirmed {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]Entry, 0, len(nums)+len(p.pending))
	for _, n := range nums {
		out = append(out, Entry{Pick: p.confirmed[n], Confirmed: true})
	}
	for _, in := range p.pending {
		out = append(out, Entry{
			Pick:      engine.Pick{TeamID: in.team, Category: in.category, AssetID: in.assetID},
			Confirmed: false,
		})
	}
	return out
}

// Roster counts a team's picks in the projection, optimistic included.
func (p *Projector) Roster(team engine.TeamID) engine.Roster {
	r := engine.Roster{}
	for _, pick := range p.confirmed {
		if pick.TeamID == team {
			r[pick.Category]++
		}
	}
	for _, in := range p.pending {
		if in.team == team {
			r[in.category]++
		}
	}
	return r
}
