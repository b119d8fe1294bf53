package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/robalobadob/middlefiddle/internal/game"
	"github.com/robalobadob/middlefiddle/internal/scores"
)

func TestSweep_AbandonsIdleRun(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)
	signup(t, c, ts.URL, "frank")

	var st game.State
	do(t, c, http.MethodPost, ts.URL+"/game/new", nil, &st)
	do(t, c, http.MethodPost, ts.URL+"/game/choose", chooseReq{GameID: st.ID, Letter: bestLetter(st)}, &st)

	if n := s.Sweep(context.Background(), time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("Sweep evicted %d fresh games", n)
	}
	if n := s.Sweep(context.Background(), time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("Sweep evicted %d games, want 1", n)
	}
	if len(s.sessions) != 0 {
		t.Errorf("%d sessions left after sweep", len(s.sessions))
	}

	var out map[string]string
	if code := do(t, c, http.MethodGet, ts.URL+"/game/"+st.ID, nil, &out); code != http.StatusNotFound {
		t.Errorf("GET evicted game status %d, want 404", code)
	}

	var runs []scores.Run
	do(t, c, http.MethodGet, ts.URL+"/games/mine", nil, &runs)
	if len(runs) != 1 || runs[0].Status != scores.StatusDefeat || runs[0].Level != 2 {
		t.Errorf("runs %+v, want one defeat at level 2", runs)
	}
}

func TestSweep_IdleDailyUsesAttempt(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)
	var first dailyNewRes
	do(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &first)

	s.Sweep(context.Background(), time.Now().Add(time.Hour))

	var again dailyNewRes
	do(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &again)
	if !again.Played || again.State != nil {
		t.Errorf("expected played=true after eviction, got %+v", again)
	}
}

func TestSweep_FinishedGameNotRecordedTwice(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)
	signup(t, c, ts.URL, "gina")

	var st game.State
	do(t, c, http.MethodPost, ts.URL+"/game/new", nil, &st)
	won := playToVictory(t, c, ts.URL+"/game/choose", st)
	if won.Result != game.ResultVictory {
		t.Fatalf("Result %q, want victory", won.Result)
	}
	s.Sweep(context.Background(), time.Now().Add(time.Hour))

	var stats map[string]any
	do(t, c, http.MethodGet, ts.URL+"/stats/me", nil, &stats)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) {
		t.Errorf("stats %v, want one win", stats)
	}
}
