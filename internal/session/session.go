// Package session runs one draft to completion. Every pick, pause,
// resume and timer signal for a session passes through a single actor
// loop, so validation and state mutation form one serialized critical
// section; sessions for different leagues run fully independently.
package session

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/timer"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/pkg/types"
)

// ErrNotAuthorized rejects pause/resume from a non-commissioner.
var ErrNotAuthorized = errors.New("not authorized")

// Role marks what a connection may do.
type Role string

const (
	RoleMember       Role = "member"
	RoleCommissioner Role = "commissioner"
)

type Msg interface{ isSessionMsg() }

// Attach registers a connection and immediately sends it a snapshot.
type Attach struct {
	ConnID string
	Role   Role
	Outbox chan types.ServerMessage
}

type Detach struct{ ConnID string }

// FromClient carries a decoded command from one connection. Rejections
// go back to that connection only.
type FromClient struct {
	ConnID string
	Cmd    engine.Command
}

// Start begins the draft. Reply receives nil or a rejection error.
type Start struct{ Reply chan error }

// GetView reflects internal state without data races; test-only.
type GetView struct{ Reply chan View }

type Shutdown struct{}

type timerTick struct{ gen, remaining int }
type timerExpired struct{ gen int }

func (Attach) isSessionMsg()       {}
func (Detach) isSessionMsg()       {}
func (FromClient) isSessionMsg()   {}
func (Start) isSessionMsg()        {}
func (GetView) isSessionMsg()      {}
func (Shutdown) isSessionMsg()     {}
func (timerTick) isSessionMsg()    {}
func (timerExpired) isSessionMsg() {}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// PickSink persists the append-only pick log. Writes happen outside
// the critical section; the in-memory log stays authoritative.
type PickSink interface {
	SavePick(ctx context.Context, code, leagueID string, p engine.Pick) error
	MarkComplete(ctx context.Context, code string) error
}

type client struct {
	outbox chan types.ServerMessage
	role   Role
}

type Session struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]client
	timer   *timer.TurnTimer
	clock   clockwork.Clock
	sink    PickSink
	done    func(code string)
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts the session loop. sink may be nil when persistence is
// not configured. done, if non-nil, is called once the draft finished
// and its completion record settled; the registry uses it to retire
// the session.
func New(parent context.Context, code string, initial engine.State, sink PickSink, logger *zap.Logger, clock clockwork.Clock, done func(code string)) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]client),
		clock:   clock,
		sink:    sink,
		done:    done,
		log:     logger.With(zap.String("session", code), zap.String("league", initial.LeagueID)),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.timer = timer.New(clock, timer.Callbacks{
		Tick:   func(gen, remaining int) { s.post(timerTick{gen: gen, remaining: remaining}) },
		Expire: func(gen int) { s.post(timerExpired{gen: gen}) },
	})
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Code() string { return s.code }

// post delivers a timer signal without blocking past shutdown.
func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Attach:
				s.clients[msg.ConnID] = client{outbox: msg.Outbox, role: msg.Role}
				s.send(msg.ConnID, types.ServerMessage{
					Type:     types.MsgSnapshot,
					Version:  s.version,
					Snapshot: s.snapshot(),
				})

			case Detach:
				if c, ok := s.clients[msg.ConnID]; ok {
					close(c.outbox)
					delete(s.clients, msg.ConnID)
				}

			case Start:
				events, newState, err := engine.Apply(s.state, engine.Command{Type: engine.CmdStartDraft, At: s.clock.Now()})
				if err == nil {
					s.state = newState
					s.version++
					s.handleEvents(events)
					s.log.Info("draft started", zap.Int("teams", len(s.state.Order)))
				}
				msg.Reply <- err

			case FromClient:
				s.handleClient(msg)

			case timerTick:
				if msg.gen != s.timer.Gen() {
					break
				}
				s.broadcast(types.ServerMessage{
					Type:         types.MsgTimerTick,
					Version:      s.version,
					RemainingSec: msg.remaining,
				})

			case timerExpired:
				s.handleExpiry(msg.gen)

			case GetView:
				msg.Reply <- View{Version: s.version, NumClients: len(s.clients), State: s.state}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleClient(msg FromClient) {
	cmd := msg.Cmd
	cmd.At = s.clock.Now()

	if cmd.Type == engine.CmdPauseDraft || cmd.Type == engine.CmdResumeDraft {
		if s.clients[msg.ConnID].role != RoleCommissioner {
			s.sendError(msg.ConnID, ErrNotAuthorized)
			return
		}
	}

	events, newState, err := engine.Apply(s.state, cmd)
	if err != nil {
		s.sendError(msg.ConnID, err)
		return
	}
	s.state = newState
	s.version++
	s.handleEvents(events)
}

// handleExpiry runs the auto-pick path for the team on the clock. A
// stale generation means the turn already advanced; the fire is
// dropped. A rejection here is a timing race with a human pick that
// won, also dropped without noise.
func (s *Session) handleExpiry(gen int) {
	if gen != s.timer.Gen() {
		return
	}
	team, ok := engine.OnClock(s.state)
	if !ok || s.state.Status != engine.StatusInProgress {
		return
	}
	cat, asset, err := engine.SelectBestAvailable(s.state.Rosters[team], s.state.Catalog, s.state.Tracker, s.state.Constraints)
	if err != nil {
		s.log.Error("auto-pick found no selectable asset; draft stalled",
			zap.String("team", string(team)), zap.Error(err))
		return
	}
	events, newState, err := engine.Apply(s.state, engine.Command{
		Type:     engine.CmdTimeoutPick,
		TeamID:   team,
		Category: cat,
		AssetID:  asset.ID,
		At:       s.clock.Now(),
	})
	if err != nil {
		s.log.Debug("timeout pick lost a timing race", zap.Error(err))
		return
	}
	s.state = newState
	s.version++
	s.handleEvents(events)
	s.log.Info("timeout pick recorded",
		zap.String("team", string(team)),
		zap.String("category", string(cat)),
		zap.Int64("asset_id", asset.ID))
}

func (s *Session) handleEvents(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtPickMade:
			s.persist(*ev.Pick)
			s.broadcast(types.ServerMessage{
				Type:       types.MsgPickMade,
				Version:    s.version,
				TeamID:     string(ev.TeamID),
				Round:      ev.Round,
				PickNumber: ev.PickNumber,
				Pick:       wirePick(*ev.Pick),
			})

		case engine.EvtTurnAdvanced:
			s.broadcast(types.ServerMessage{
				Type:       types.MsgTurnAdvanced,
				Version:    s.version,
				TeamID:     string(ev.TeamID),
				Round:      ev.Round,
				PickNumber: ev.PickNumber,
			})

		case engine.EvtTimerStarted:
			s.timer.Start(ev.LimitSec)
			s.broadcast(types.ServerMessage{
				Type:     types.MsgTimerStarted,
				Version:  s.version,
				TeamID:   string(ev.TeamID),
				LimitSec: ev.LimitSec,
			})

		case engine.EvtTimerPaused:
			s.timer.Pause()
			s.broadcast(types.ServerMessage{Type: types.MsgTimerPaused, Version: s.version})

		case engine.EvtTimerResumed:
			if s.timer.Expired() {
				// The expiry fired while the pause command was ahead of
				// it in the inbox and the signal was dropped; a frozen
				// timer cannot resume, so rearm a fresh turn clock.
				s.timer.Start(s.state.Rules.PickClockSec)
			} else {
				s.timer.Resume()
			}
			s.broadcast(types.ServerMessage{Type: types.MsgTimerResumed, Version: s.version})

		case engine.EvtDraftComplete:
			s.timer.Stop()
			s.complete()
			s.broadcast(types.ServerMessage{
				Type:       types.MsgDraftComplete,
				Version:    s.version,
				PickNumber: ev.PickNumber,
			})
			s.log.Info("draft complete", zap.Int("picks", len(s.state.Log)))
		}
	}
}

// persist hands the pick to the sink off the critical path. Failures
// are logged; the in-memory log is authoritative.
func (s *Session) persist(p engine.Pick) {
	if s.sink == nil {
		return
	}
	leagueID := s.state.LeagueID
	go func() {
		if err := s.sink.SavePick(s.ctx, s.code, leagueID, p); err != nil {
			s.log.Error("pick persistence failed",
				zap.Int("pick_number", p.PickNumber), zap.Error(err))
		}
	}()
}

// complete records the finished draft and then retires the session
// through done. Retirement waits for the completion write so the
// registry only frees the league once the record settled.
func (s *Session) complete() {
	go func() {
		if s.sink != nil {
			if err := s.sink.MarkComplete(s.ctx, s.code); err != nil {
				s.log.Error("completion persistence failed", zap.Error(err))
			}
		}
		if s.done != nil {
			s.done(s.code)
		}
	}()
}

func (s *Session) send(connID string, msg types.ServerMessage) {
	c, ok := s.clients[connID]
	if !ok {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		close(c.outbox)
		delete(s.clients, connID)
	}
}

func (s *Session) sendError(connID string, err error) {
	s.send(connID, types.ServerMessage{Type: types.MsgError, Version: s.version, Error: err.Error()})
}

func (s *Session) broadcast(msg types.ServerMessage) {
	for id, c := range s.clients {
		select {
		case c.outbox <- msg:
		default:
			// Slow client: drop it, it resyncs via snapshot on reattach.
			close(c.outbox)
			delete(s.clients, id)
		}
	}
}

func (s *Session) snapshot() *types.Snapshot {
	snap := &types.Snapshot{
		Code:       s.code,
		Status:     string(s.state.Status),
		Round:      engine.CurrentRound(s.state),
		PickNumber: engine.NextPickNumber(s.state),
		Order:      make([]string, 0, len(s.state.Order)),
		Picks:      make([]types.Pick, 0, len(s.state.Log)),
	}
	if team, ok := engine.OnClock(s.state); ok {
		snap.OnClockTeam = string(team)
	}
	if s.state.Status == engine.StatusInProgress {
		snap.RemainingSec = s.timer.Remaining()
	}
	for _, t := range s.state.Order {
		snap.Order = append(snap.Order, string(t))
	}
	for _, c := range s.state.Tracker.Claimed() {
		snap.Claimed = append(snap.Claimed, types.ClaimedAsset{Category: string(c.Category), AssetID: c.AssetID})
	}
	for _, p := range s.state.Log {
		snap.Picks = append(snap.Picks, *wirePick(p))
	}
	return snap
}

func (s *Session) shutdown() {
	s.timer.Stop()
	for id, c := range s.clients {
		close(c.outbox)
		delete(s.clients, id)
	}
	s.cancel()
}

func wirePick(p engine.Pick) *types.Pick {
	return &types.Pick{
		PickNumber: p.PickNumber,
		Round:      p.Round,
		TeamID:     string(p.TeamID),
		Category:   string(p.Category),
		AssetID:    p.AssetID,
		AssetName:  p.AssetName,
		MadeBy:     string(p.MadeBy),
		PickedAt:   p.PickedAt,
	}
}
