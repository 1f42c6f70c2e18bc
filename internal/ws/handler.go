package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/hub"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/session"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/pkg/types"
)

// Handler upgrades a connection and attaches it to its draft session.
// Query params: code (join code, required), team, role.
func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		team := r.URL.Query().Get("team")
		role := session.RoleMember
		if r.URL.Query().Get("role") == string(session.RoleCommissioner) {
			role = session.RoleCommissioner
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 16)
		connID := uuid.NewString()

		s.Inbox() <- session.Attach{ConnID: connID, Role: role, Outbox: out}
		defer func() { s.Inbox() <- session.Detach{ConnID: connID} }()

		log := logger.With(zap.String("session", code), zap.String("conn", connID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(cm, team)
			if !ok {
				log.Debug("unknown client message", zap.String("type", cm.Type))
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"unknown type"}`))
				continue
			}

			s.Inbox() <- session.FromClient{ConnID: connID, Cmd: cmd}
		}
	}
}

func toCommand(m types.ClientMessage, connTeam string) (engine.Command, bool) {
	switch m.Type {
	case types.MsgSubmitPick:
		team := m.TeamID
		if team == "" {
			team = connTeam
		}
		cat := engine.Category(m.Category)
		if !engine.ValidCategory(cat) {
			return engine.Command{}, false
		}
		return engine.Command{
			Type:     engine.CmdSubmitPick,
			TeamID:   engine.TeamID(team),
			Category: cat,
			AssetID:  m.AssetID,
		}, true
	case types.MsgPauseDraft:
		return engine.Command{Type: engine.CmdPauseDraft}, true
	case types.MsgResumeDraft:
		return engine.Command{Type: engine.CmdResumeDraft}, true
	default:
		return engine.Command{}, false
	}
}
