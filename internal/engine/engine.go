package engine

import (
	"errors"
	"time"
)

// Rejection errors: expected conditions surfaced to the submitting
// actor only. They never alter session state.
var ErrNotYourTurn = errors.New("not your turn")
var ErrAssetAlreadyDrafted = errors.New("asset already drafted")
var ErrRosterSlotFull = errors.New("roster slot full")
var ErrDraftNotInProgress = errors.New("draft not in progress")
var ErrDraftAlreadyStarted = errors.New("draft already started")
var ErrIncompleteOrder = errors.New("draft order incomplete")
var ErrUnknownAsset = errors.New("unknown asset")
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrPoolExhausted is fatal: an auto-pick found nothing to select,
// which means the catalog cannot fill the remaining slots.
var ErrPoolExhausted = errors.New("asset pool exhausted")

// TeamID identifies one participating team.
type TeamID string

// Status is the lifecycle state of a draft session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusComplete   Status = "complete"
)

// MadeBy records how a pick came to be.
type MadeBy string

const (
	MadeByHuman   MadeBy = "human"
	MadeByAuto    MadeBy = "auto"
	MadeByTimeout MadeBy = "timeout"
)

// Pick is one entry in the append-only draft log. Immutable once
// created; the ordered log fully reconstructs draft state.
type Pick struct {
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	TeamID     TeamID    `json:"team_id"`
	Category   Category  `json:"category"`
	AssetID    int64     `json:"asset_id"`
	AssetName  string    `json:"asset_name"`
	MadeBy     MadeBy    `json:"made_by"`
	PickedAt   time.Time `json:"picked_at"`
}

// CompletedTeamPolicy decides what happens to a team whose roster
// fills before the draft ends: skipped in place in the snake grid, or
// removed so later rounds recompute over the remaining teams. The two
// agree when every team has the same slot count.
type CompletedTeamPolicy string

const (
	PolicySkip   CompletedTeamPolicy = "skip"
	PolicyRemove CompletedTeamPolicy = "remove"
)

// Rules holds per-session configuration.
type Rules struct {
	PickClockSec int
	Policy       CompletedTeamPolicy
}

// State is the full authoritative state of one draft session. It is
// owned by exactly one session loop; Apply must never run concurrently
// for the same State.
type State struct {
	LeagueID    string
	Order       []TeamID
	Rounds      int
	Slot        int // cursor into the snake grid, 0-based
	Status      Status
	Log         []Pick
	Tracker     *Tracker
	Rosters     map[TeamID]Roster
	Constraints ConstraintTable
	Catalog     Catalog
	Rules       Rules
}

// NewState builds a not-started session over a finalized draft order.
func NewState(leagueID string, order []TeamID, catalog Catalog, rules Rules) State {
	if rules.PickClockSec == 0 {
		rules.PickClockSec = 90
	}
	if rules.Policy == "" {
		rules.Policy = PolicySkip
	}
	table := DefaultConstraints()
	rosters := make(map[TeamID]Roster, len(order))
	for _, t := range order {
		rosters[t] = Roster{}
	}
	return State{
		LeagueID:    leagueID,
		Order:       order,
		Rounds:      table.TotalSlots(),
		Status:      StatusNotStarted,
		Tracker:     NewTracker(),
		Rosters:     rosters,
		Constraints: table,
		Catalog:     catalog,
		Rules:       rules,
	}
}

type CommandType string

const (
	CmdStartDraft  CommandType = "StartDraft"
	CmdSubmitPick  CommandType = "SubmitPick"
	CmdTimeoutPick CommandType = "TimeoutPick"
	CmdPauseDraft  CommandType = "PauseDraft"
	CmdResumeDraft CommandType = "ResumeDraft"
)

type Command struct {
	Type     CommandType
	TeamID   TeamID
	Category Category
	AssetID  int64
	At       time.Time
}

type EventType string

const (
	EvtPickMade      EventType = "pick_made"
	EvtTurnAdvanced  EventType = "turn_advanced"
	EvtTimerStarted  EventType = "timer_started"
	EvtTimerPaused   EventType = "timer_paused"
	EvtTimerResumed  EventType = "timer_resumed"
	EvtDraftComplete EventType = "draft_complete"
)

type Event struct {
	Type       EventType
	Pick       *Pick  // pick_made
	TeamID     TeamID // turn_advanced: team now on the clock
	Round      int
	PickNumber int // next overall pick number
	LimitSec   int // timer_started
}

// OnClock returns the team whose turn it is. ok is false once no team
// has an open slot left.
func OnClock(s State) (TeamID, bool) {
	team, _, ok := nextTurn(s)
	return team, ok
}

// nextTurn resolves the current turn from the cursor, honoring the
// completed-team policy.
func nextTurn(s State) (TeamID, int, bool) {
	switch s.Rules.Policy {
	case PolicyRemove:
		// Snake over teams that still have open slots; a team's own
		// pick count is its 0-based round.
		minPicks := -1
		for _, t := range s.Order {
			if s.Constraints.Full(s.Rosters[t]) {
				continue
			}
			if n := s.Rosters[t].Size(); minPicks < 0 || n < minPicks {
				minPicks = n
			}
		}
		if minPicks < 0 {
			return "", s.Slot, false
		}
		var cands []TeamID
		for _, t := range s.Order {
			if !s.Constraints.Full(s.Rosters[t]) && s.Rosters[t].Size() == minPicks {
				cands = append(cands, t)
			}
		}
		pick := cands[0]
		if minPicks%2 == 1 {
			pick = cands[len(cands)-1]
		}
		return pick, s.Slot, true

	default: // PolicySkip
		for slot := s.Slot; slot < s.Rounds*len(s.Order); slot++ {
			team := teamAtSlot(s.Order, slot)
			if !s.Constraints.Full(s.Rosters[team]) {
				return team, slot, true
			}
		}
		return "", s.Slot, false
	}
}

// CurrentRound is 1-based, derived from the cursor.
func CurrentRound(s State) int {
	if len(s.Order) == 0 {
		return 0
	}
	_, slot, ok := nextTurn(s)
	if !ok {
		return s.Rounds
	}
	return slot/len(s.Order) + 1
}

// NextPickNumber is the global 1-based number the next accepted pick
// will carry. Monotonic across the whole session regardless of
// skipped slots.
func NextPickNumber(s State) int {
	return len(s.Log) + 1
}

// Apply validates a command against the current state and returns the
// events it produced, the new state, and a rejection error if any.
// Validation and mutation form one unit; callers serialize Apply per
// session.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStartDraft:
		if s.Status != StatusNotStarted {
			return nil, s, ErrDraftAlreadyStarted
		}
		if len(s.Order) == 0 {
			return nil, s, ErrIncompleteOrder
		}
		s.Status = StatusInProgress
		team, _, _ := nextTurn(s)
		events := []Event{
			{Type: EvtTurnAdvanced, TeamID: team, Round: CurrentRound(s), PickNumber: NextPickNumber(s)},
			{Type: EvtTimerStarted, TeamID: team, LimitSec: s.Rules.PickClockSec},
		}
		return events, s, nil

	case CmdSubmitPick, CmdTimeoutPick:
		return applyPick(s, cmd)

	case CmdPauseDraft:
		if s.Status != StatusInProgress {
			return nil, s, ErrDraftNotInProgress
		}
		s.Status = StatusPaused
		return []Event{{Type: EvtTimerPaused}}, s, nil

	case CmdResumeDraft:
		if s.Status != StatusPaused {
			return nil, s, ErrDraftNotInProgress
		}
		s.Status = StatusInProgress
		return []Event{{Type: EvtTimerResumed}}, s, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyPick(s State, cmd Command) ([]Event, State, error) {
	if s.Status != StatusInProgress {
		return nil, s, ErrDraftNotInProgress
	}

	team, slot, ok := nextTurn(s)
	if !ok {
		return nil, s, ErrDraftNotInProgress
	}
	if cmd.TeamID != team {
		return nil, s, ErrNotYourTurn
	}

	asset, known := s.Catalog.Find(cmd.Category, cmd.AssetID)
	if !known {
		return nil, s, ErrUnknownAsset
	}

	// Claim first, roll back if the roster check fails: availability
	// check and claim must never be two separable steps.
	if !s.Tracker.TryClaim(cmd.Category, cmd.AssetID) {
		return nil, s, ErrAssetAlreadyDrafted
	}
	if s.Constraints.RemainingCapacity(s.Rosters[team], cmd.Category) <= 0 {
		s.Tracker.Release(cmd.Category, cmd.AssetID)
		return nil, s, ErrRosterSlotFull
	}

	madeBy := MadeByHuman
	if cmd.Type == CmdTimeoutPick {
		madeBy = MadeByTimeout
	}
	pick := Pick{
		PickNumber: NextPickNumber(s),
		Round:      slot/len(s.Order) + 1,
		TeamID:     team,
		Category:   cmd.Category,
		AssetID:    asset.ID,
		AssetName:  asset.Name,
		MadeBy:     madeBy,
		PickedAt:   cmd.At,
	}
	s.Log = append(s.Log, pick)
	s.Rosters[team][cmd.Category]++
	s.Slot = slot + 1

	events := []Event{{Type: EvtPickMade, Pick: &pick, TeamID: team, Round: pick.Round, PickNumber: pick.PickNumber}}

	next, _, more := nextTurn(s)
	if !more {
		s.Status = StatusComplete
		events = append(events, Event{Type: EvtDraftComplete, PickNumber: len(s.Log)})
		return events, s, nil
	}
	events = append(events,
		Event{Type: EvtTurnAdvanced, TeamID: next, Round: CurrentRound(s), PickNumber: NextPickNumber(s)},
		Event{Type: EvtTimerStarted, TeamID: next, LimitSec: s.Rules.PickClockSec},
	)
	return events, s, nil
}

// Reduce replays a pick log into a fresh state: the log alone
// reconstructs the session.
func Reduce(base State, log []Pick) State {
	s := NewState(base.LeagueID, base.Order, base.Catalog, base.Rules)
	if len(log) == 0 {
		return s
	}
	s.Status = StatusInProgress
	for _, p := range log {
		s.Tracker.TryClaim(p.Category, p.AssetID)
		s.Rosters[p.TeamID][p.Category]++
		s.Log = append(s.Log, p)
		s.Slot = slotAfter(s.Order, p)
	}
	if _, ok := OnClock(s); !ok {
		s.Status = StatusComplete
	}
	return s
}

// slotAfter is the grid position just past an applied pick.
func slotAfter(order []TeamID, p Pick) int {
	n := len(order)
	round := p.Round - 1
	for i := 0; i < n; i++ {
		if teamAtSlot(order, round*n+i) == p.TeamID {
			return round*n + i + 1
		}
	}
	return round*n + n
}
