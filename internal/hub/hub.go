// Package hub owns the registry of live draft sessions, keyed by join
// code. A single loop serializes registry mutation; the sessions
// themselves run independently.
package hub

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/session"
)

// ErrLeagueAlreadyDrafting rejects a second session for the same
// league.
var ErrLeagueAlreadyDrafting = errors.New("league already has a draft session")

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	Code  string
	State engine.State
	Reply chan CreateReply
}

type CreateReply struct {
	Session *session.Session
	Err     error
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

type RemoveSession struct{ Code string }

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	leagues  map[string]string // leagueID -> code
	sink     session.PickSink
	clock    clockwork.Clock
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, sink session.PickSink, logger *zap.Logger, clock clockwork.Clock) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		leagues:  make(map[string]string),
		sink:     sink,
		clock:    clock,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// retire unregisters a finished session so the league can draft
// again. Sessions call it once completion has persisted.
func (h *Hub) retire(code string) {
	select {
	case h.inbox <- RemoveSession{Code: code}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if code, ok := h.leagues[msg.State.LeagueID]; ok {
					h.log.Warn("rejected duplicate draft session",
						zap.String("league", msg.State.LeagueID), zap.String("existing", code))
					msg.Reply <- CreateReply{Err: ErrLeagueAlreadyDrafting}
					break
				}
				if s := h.sessions[msg.Code]; s != nil {
					msg.Reply <- CreateReply{Session: s}
					break
				}
				s := session.New(h.ctx, msg.Code, msg.State, h.sink, h.log, h.clock, h.retire)
				h.sessions[msg.Code] = s
				h.leagues[msg.State.LeagueID] = msg.Code
				msg.Reply <- CreateReply{Session: s}

			case GetSession:
				msg.Reply <- h.sessions[msg.Code] // may be nil

			case RemoveSession:
				if s := h.sessions[msg.Code]; s != nil {
					s.Inbox() <- session.Shutdown{}
					delete(h.sessions, msg.Code)
					for league, code := range h.leagues {
						if code == msg.Code {
							delete(h.leagues, league)
						}
					}
				}

			case ShutdownHub:
				for _, s := range h.sessions {
					s.Inbox() <- session.Shutdown{}
				}
				clear(h.sessions)
				clear(h.leagues)
				h.cancel()
			}
		}
	}
}
