package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/hub"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/session"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/store"
)

// PickArchive reads the persisted pick log of a finished draft. Live
// sessions serve their log over the socket; retired ones only exist
// here.
type PickArchive interface {
	Picks(ctx context.Context, code string) ([]store.PickRecord, error)
}

// CreateDraftRequest carries everything a session needs from the
// external collaborators: the finalized team list, the order plan and
// the asset catalog.
type CreateDraftRequest struct {
	LeagueID     string                    `json:"league_id"`
	Teams        []string                  `json:"teams"`
	OrderMode    string                    `json:"order_mode"` // "random" | "manual"
	Positions    map[string]int            `json:"positions,omitempty"`
	PickClockSec int                       `json:"pick_clock_sec,omitempty"`
	Policy       string                    `json:"completed_team_policy,omitempty"`
	Catalog      map[string][]engine.Asset `json:"catalog"`
}

type CreateDraftResponse struct {
	Code  string   `json:"code"`
	Order []string `json:"order"`
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateDraft plans the order and registers a new session. A request
// that omits pick_clock_sec gets the server-configured clock. A league
// that already has a live session gets 409.
func CreateDraft(h *hub.Hub, logger *zap.Logger, defaultPickClockSec int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDraftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.LeagueID == "" || len(req.Teams) == 0 {
			http.Error(w, "league_id and teams are required", http.StatusBadRequest)
			return
		}

		teams := make([]engine.TeamID, len(req.Teams))
		for i, t := range req.Teams {
			teams[i] = engine.TeamID(t)
		}
		positions := make(map[engine.TeamID]int, len(req.Positions))
		for t, pos := range req.Positions {
			positions[engine.TeamID(t)] = pos
		}
		order, err := engine.PlanOrder(teams, engine.OrderMode(req.OrderMode), positions)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		catalog := engine.Catalog{}
		for cat, assets := range req.Catalog {
			if !engine.ValidCategory(engine.Category(cat)) {
				http.Error(w, "unknown category: "+cat, http.StatusBadRequest)
				return
			}
			catalog[engine.Category(cat)] = assets
		}

		if req.PickClockSec <= 0 {
			req.PickClockSec = defaultPickClockSec
		}
		state := engine.NewState(req.LeagueID, order, catalog, engine.Rules{
			PickClockSec: req.PickClockSec,
			Policy:       engine.CompletedTeamPolicy(req.Policy),
		})

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *session.Session, 1)
			h.Inbox() <- hub.GetSession{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			logger.Debug("join code collision, regenerating", zap.String("code", c))
		}

		createReply := make(chan hub.CreateReply, 1)
		h.Inbox() <- hub.CreateSession{Code: code, State: state, Reply: createReply}
		res := <-createReply
		if res.Err != nil {
			status := http.StatusInternalServerError
			if errors.Is(res.Err, hub.ErrLeagueAlreadyDrafting) {
				status = http.StatusConflict
			}
			http.Error(w, res.Err.Error(), status)
			return
		}

		orderOut := make([]string, len(order))
		for i, t := range order {
			orderOut[i] = string(t)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateDraftResponse{Code: code, Order: orderOut})
	}
}

// StartDraft flips a session to in_progress and arms the first pick
// clock. Starting twice returns 409.
func StartDraft(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		errCh := make(chan error, 1)
		s.Inbox() <- session.Start{Reply: errCh}
		if err := <-errCh; err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, engine.ErrDraftAlreadyStarted) {
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DraftPicks serves the archived pick log for a session code.
func DraftPicks(archive PickArchive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			http.Error(w, "pick archive not configured", http.StatusServiceUnavailable)
			return
		}
		code := chi.URLParam(r, "code")
		recs, err := archive.Picks(r.Context(), code)
		if err != nil {
			http.Error(w, "failed to load picks", http.StatusInternalServerError)
			return
		}
		if len(recs) == 0 {
			http.Error(w, "no picks for code", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(recs)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
