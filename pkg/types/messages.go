// Package types holds the wire message shapes shared with clients.
package types

import "time"

// Client -> Server
const (
	MsgSubmitPick  = "submit_pick"
	MsgPauseDraft  = "pause_draft"
	MsgResumeDraft = "resume_draft"
)

type ClientMessage struct {
	Type     string `json:"type"`
	TeamID   string `json:"team_id,omitempty"`
	Category string `json:"category,omitempty"`
	AssetID  int64  `json:"asset_id,omitempty"`
}

// Server -> Client. Event types mirror the engine taxonomy; "snapshot"
// and "error" are transport-level additions.
const (
	MsgPickMade      = "pick_made"
	MsgTurnAdvanced  = "turn_advanced"
	MsgTimerTick     = "timer_tick"
	MsgTimerStarted  = "timer_started"
	MsgTimerPaused   = "timer_paused"
	MsgTimerResumed  = "timer_resumed"
	MsgDraftComplete = "draft_complete"
	MsgSnapshot      = "snapshot"
	MsgError         = "error"
)

type Pick struct {
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	TeamID     string    `json:"team_id"`
	Category   string    `json:"category"`
	AssetID    int64     `json:"asset_id"`
	AssetName  string    `json:"asset_name"`
	MadeBy     string    `json:"made_by"`
	PickedAt   time.Time `json:"picked_at"`
}

type ClaimedAsset struct {
	Category string `json:"category"`
	AssetID  int64  `json:"asset_id"`
}

// Snapshot carries full current state so a reattaching client can
// resync without event replay.
type Snapshot struct {
	Code         string         `json:"code"`
	Status       string         `json:"status"`
	Round        int            `json:"round"`
	PickNumber   int            `json:"pick_number"`
	OnClockTeam  string         `json:"on_clock_team,omitempty"`
	RemainingSec int            `json:"remaining_sec"`
	Order        []string       `json:"order"`
	Claimed      []ClaimedAsset `json:"claimed"`
	Picks        []Pick         `json:"picks"`
}

type ServerMessage struct {
	Type         string    `json:"type"`
	Version      int       `json:"version"`
	TeamID       string    `json:"team_id,omitempty"`
	Round        int       `json:"round,omitempty"`
	PickNumber   int       `json:"pick_number,omitempty"`
	RemainingSec int       `json:"remaining_sec,omitempty"`
	LimitSec     int       `json:"limit_sec,omitempty"`
	Pick         *Pick     `json:"pick,omitempty"`
	Snapshot     *Snapshot `json:"snapshot,omitempty"`
	Error        string    `json:"error,omitempty"`
}
