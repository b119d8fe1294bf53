// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Phase / Result: where a game is in its lifecycle and how it ended.
//   - State: the read-only snapshot handed to presentation layers.
//   - Rand / Clock: injectable sources of randomness and time.

package game

import (
	"time"

	"github.com/robalobadob/middlefiddle/internal/words"
)

// Phase is the coarse lifecycle state of a game.
//   - "playing": a round is on screen waiting for a choice.
//   - "ended":   the run is over; Result says how.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// Result is set once the phase is PhaseEnded.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
)

const (
	TitleDefault = "Middle Fiddle"
	TitleVictory = "🎉 Victory! 🎉"
	TitleDefeat  = "Game Over! 💔"
)

// Rand is the random source used to pick letters and words.
// *math/rand/v2.Rand satisfies it.
type Rand = words.Rand

// Clock returns the current time.
type Clock func() time.Time

// State is a snapshot of a game, safe to render or encode.
type State struct {
	ID        string `json:"id"`
	Run       int    `json:"run"` // 1 for the first run, +1 per replay
	Phase     Phase  `json:"phase"`
	Result    Result `json:"result,omitempty"`
	Level     int    `json:"level"`
	Target    string `json:"target"`
	Word      string `json:"word"`
	Correct   bool   `json:"correct"`             // outcome of the last choice
	ElapsedMs int64  `json:"elapsedMs,omitempty"` // set on victory
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
}
