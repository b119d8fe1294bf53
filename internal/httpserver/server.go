// internal/httpserver/server.go
//
// HTTP server wiring for the Middle Fiddle backend.
// Responsibilities:
//   - Router + middleware (zerolog request logging, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/debug/words", "/scores/top".
//   - Game endpoints (optional auth): new, choose, replay, get.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Live games are held in store.Store; history goes to SQLite via scores.Store.
//   - Each live game remembers its owner (user or anonymous cookie) and mode;
//     requests from anyone else get 404.
//   - Response bodies for game routes are game.State.
//   - Games idle longer than GAME_IDLE_MINUTES are evicted by Janitor (sweep.go).

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/middlefiddle/internal/config"
	"github.com/robalobadob/middlefiddle/internal/daily"
	"github.com/robalobadob/middlefiddle/internal/game"
	"github.com/robalobadob/middlefiddle/internal/scores"
	"github.com/robalobadob/middlefiddle/internal/store"
	"github.com/robalobadob/middlefiddle/internal/words"
)

// Server bundles router, live game store, word bank and DB-backed stores.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	store  store.Store
	db     *sql.DB
	bank   *words.Bank
	scores *scores.Store
	daily  *daily.Store
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session // keyed by game ID
}

// session is the server-side metadata of a live game.
type session struct {
	Owner scores.Owner
	Mode  scores.Mode
	Date  string // daily only
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB, bank *words.Bank) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		store:    st,
		db:       db,
		bank:     bank,
		scores:   scores.NewStore(db),
		daily:    daily.NewStore(db),
		now:      time.Now,
		sessions: make(map[string]*session),
	}

	// --- middleware ---
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"middlefiddle","endpoints":["/health","POST /game/new","POST /game/choose","POST /game/replay","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.bank.Stats())
	})

	// Game + daily endpoints, OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/choose", s.handleChoose)
		r.Post("/game/replay", s.handleReplay)
		r.Get("/game/{id}", s.handleGetGame)
		s.mountDaily(r)
	})

	s.r.Get("/scores/top", s.handleTopScores)

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	lvl := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.ErrorLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes {"error":code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ GAME ---------------------------------------

// owner returns the authenticated user, or the anonymous cookie ID.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) scores.Owner {
	if me := userFrom(r); me != nil {
		return scores.Owner{UserID: me.ID}
	}
	return scores.Owner{AnonID: s.ensureAnonID(w, r)}
}

// lookup loads a live game and its session, checking ownership.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string) (*game.Game, *session, bool) {
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, nil, false
	}
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess == nil || sess.Owner != s.owner(w, r) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, nil, false
	}
	return g, sess, true
}

// register saves a new live game and records its first run.
func (s *Server) register(r *http.Request, g *game.Game, sess *session) error {
	if err := s.store.Save(r.Context(), g); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[g.ID] = sess
	s.mu.Unlock()
	st := g.State()
	if err := s.scores.Start(r.Context(), g.ID, st.Run, sess.Owner, sess.Mode, s.now()); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	return nil
}

// handleNewGame creates a classic game for the caller.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	g := game.New(s.bank, game.WithClock(s.now))
	if err := s.register(r, g, &session{Owner: owner, Mode: scores.ModeClassic}); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(g.State())
}

// chooseReq is the payload for POST /game/choose and /daily/choose.
type chooseReq struct {
	GameID string `json:"gameId"`
	Letter string `json:"letter"`
}

// parseLetter accepts exactly one character. Case is folded; anything
// outside a..z is passed through and judged incorrect by the engine.
func parseLetter(s string) (rune, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	s.choose(w, r, scores.ModeClassic)
}

// choose applies one letter to a live game of the given mode and persists
// the outcome when the run ends.
func (s *Server) choose(w http.ResponseWriter, r *http.Request, mode scores.Mode) {
	var req chooseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	letter, ok := parseLetter(req.Letter)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	g, sess, ok := s.lookup(w, r, req.GameID)
	if !ok {
		return
	}
	if sess.Mode != mode {
		writeError(w, http.StatusBadRequest, "wrong_mode")
		return
	}

	before, st, err := g.Choose(letter)
	if errors.Is(err, game.ErrGameEnded) {
		writeError(w, http.StatusConflict, "game_ended")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "choose_failed")
		return
	}

	if st.Phase == game.PhaseEnded {
		s.recordEnd(r.Context(), g.ID, sess, before, st)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// recordEnd persists a finished run (best effort, non-fatal if it fails).
func (s *Server) recordEnd(ctx context.Context, gameID string, sess *session, before, after game.State) {
	status := scores.StatusDefeat
	if after.Result == game.ResultVictory {
		status = scores.StatusVictory
	}
	logger := log.With().Str("gameId", gameID).Int("run", before.Run).Str("status", status).Logger()

	if err := s.scores.Finish(ctx, gameID, before.Run, sess.Owner, status, before.Level, after.ElapsedMs, s.now()); err != nil {
		logger.Warn().Err(err).Msg("finish game")
	}
	if sess.Mode == scores.ModeDaily {
		res := daily.Result{
			UserID:    s.ownerKey(sess.Owner),
			Date:      sess.Date,
			Won:       after.Result == game.ResultVictory,
			ElapsedMs: after.ElapsedMs,
		}
		if err := s.daily.InsertResult(ctx, res); err != nil {
			logger.Warn().Err(err).Msg("insert daily result")
		}
	}
	logger.Info().Int64("elapsedMs", after.ElapsedMs).Int("level", before.Level).Msg("run finished")
}

// replayReq is the payload for POST /game/replay.
type replayReq struct {
	GameID string `json:"gameId"`
}

// handleReplay starts a new run of a classic game.
// An unfinished run is closed as a defeat at its current level.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req replayReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, sess, ok := s.lookup(w, r, req.GameID)
	if !ok {
		return
	}
	if sess.Mode == scores.ModeDaily {
		writeError(w, http.StatusConflict, "daily_locked")
		return
	}
	before, st := g.Restart()
	if before.Phase == game.PhasePlaying {
		if err := s.scores.Finish(r.Context(), g.ID, before.Run, sess.Owner, scores.StatusDefeat, before.Level, 0, s.now()); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("abandon run")
		}
	}
	if err := s.scores.Start(r.Context(), g.ID, st.Run, sess.Owner, sess.Mode, s.now()); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	_ = json.NewEncoder(w).Encode(st)
}

// handleGetGame returns the current state of a live game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, _, ok := s.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(g.State())
}

// handleTopScores returns the fastest classic victories.
func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.scores.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ownerKey flattens an owner into the single ID stored by daily results.
// Anonymous cookie IDs are hashed so they never reach the database.
func (s *Server) ownerKey(o scores.Owner) string {
	if o.UserID != "" {
		return o.UserID
	}
	return daily.AnonKey(o.AnonID, s.cfg.DailySalt)
}
