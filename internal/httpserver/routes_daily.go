// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's daily game
//   - POST /daily/choose      → submit a letter for today's daily game
//   - GET  /daily/leaderboard → fastest wins for today (or ?date=YYYY-MM-DD)
//
// Every daily game for a date starts from the same seeded random source, so
// all players see the same opening rounds. Each player gets one attempt per
// day: the result is persisted on victory or defeat, and replay is refused.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/middlefiddle/internal/daily"
	"github.com/robalobadob/middlefiddle/internal/game"
	"github.com/robalobadob/middlefiddle/internal/scores"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/choose", s.handleDailyChoose)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	State  *game.State `json:"state,omitempty"`
}

// handleDailyNew creates or resumes the caller's daily game.
//   - Already has a result for today → Played=true, no state.
//   - Live daily game for today → its current state.
//   - Otherwise a new seeded game.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	date := daily.DateKey(s.now())

	played, err := s.daily.AlreadyPlayed(r.Context(), s.ownerKey(owner), date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	if g := s.findDaily(r, owner, date); g != nil {
		st := g.State()
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, State: &st})
		return
	}

	g := game.New(s.bank, game.WithRand(daily.Rand(date, s.cfg.DailySalt)), game.WithClock(s.now))
	if err := s.register(r, g, &session{Owner: owner, Mode: scores.ModeDaily, Date: date}); err != nil {
		log.Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	st := g.State()
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, State: &st})
}

// findDaily returns the owner's live daily game for date, if any.
func (s *Server) findDaily(r *http.Request, owner scores.Owner, date string) *game.Game {
	s.mu.Lock()
	var id string
	for gid, sess := range s.sessions {
		if sess.Mode == scores.ModeDaily && sess.Date == date && sess.Owner == owner {
			id = gid
			break
		}
	}
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil
	}
	return g
}

func (s *Server) handleDailyChoose(w http.ResponseWriter, r *http.Request) {
	s.choose(w, r, scores.ModeDaily)
}

// dailyLBRes is returned by /daily/leaderboard.
type dailyLBRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(dailyLBRes{Date: date, Top: rows})
}
