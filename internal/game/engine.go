// internal/game/engine.go
//
// Round engine for a single Middle Fiddle run.
// Responsibilities:
//   - Start a run at level 1 with a random target letter and 3-letter word.
//   - Judge each chosen letter against the closest letter of the word.
//   - Advance levels 1..8; eight correct choices in a row is a victory,
//     any incorrect choice is a defeat.
//   - Time the run from the level 1→2 transition to the final correct choice.
//
// Notes:
//   - All state lives on the Game value; nothing is shared between games.
//   - Randomness and time are injected (WithRand, WithClock) for tests and
//     for the daily challenge, which seeds every player identically.
//   - After each choice the next round is prepared unconditionally, so an
//     ended game already holds a fresh level-1 round.
package game

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/middlefiddle/internal/words"
)

const (
	MinLevel = words.MinLevel
	MaxLevel = words.MaxLevel
)

// ErrGameEnded is returned by SubmitChoice once the run is over.
var ErrGameEnded = errors.New("game ended")

// Game holds the state of one run. It is safe for concurrent use.
type Game struct {
	ID string

	mu        sync.Mutex
	run       int // incremented by every StartGame
	bank      *words.Bank
	rng       Rand
	now       Clock
	level     int
	target    rune
	word      string
	phase     Phase
	result    Result
	correct   bool
	startedAt time.Time // set on the level 1→2 transition
	elapsed   time.Duration
	title     string
	subtitle  string
}

// Option configures a Game at construction.
type Option func(*Game)

// WithRand sets the random source for letters and words.
func WithRand(r Rand) Option { return func(g *Game) { g.rng = r } }

// WithClock sets the time source used for scoring.
func WithClock(c Clock) Option { return func(g *Game) { g.now = c } }

// WithID overrides the generated game ID.
func WithID(id string) Option { return func(g *Game) { g.ID = id } }

// New constructs a game and starts its first run.
func New(bank *words.Bank, opts ...Option) *Game {
	g := &Game{
		ID:   uuid.NewString(),
		bank: bank,
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:  time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	g.reset()
	return g
}

// StartGame resets the run to level 1 with a fresh letter and word.
// It is also the replay action after a game has ended.
func (g *Game) StartGame() State {
	_, next := g.Restart()
	return next
}

// Restart is StartGame that also returns the state it replaced, taken under
// the same lock.
func (g *Game) Restart() (prev, next State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev = g.stateLocked()
	g.reset()
	return prev, g.stateLocked()
}

// SubmitChoice judges letter against the current round and moves the game on.
//
// State transitions:
//   - Correct below level 8 → next level, still playing.
//   - Correct at level 8   → ended/victory with the elapsed time.
//   - Incorrect            → ended/defeat.
//
// In every case level is back in 1..8 and a new round is prepared.
func (g *Game) SubmitChoice(letter rune) (State, error) {
	_, next, err := g.Choose(letter)
	return next, err
}

// Choose is SubmitChoice that also returns the round the letter was judged
// against, taken under the same lock.
func (g *Game) Choose(letter rune) (prev, next State, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev = g.stateLocked()
	if g.phase != PhasePlaying {
		return prev, prev, ErrGameEnded
	}

	g.correct = Judge(g.target, g.word, letter)
	if g.correct {
		now := g.now()
		if g.level == MinLevel {
			g.startedAt = now
		}
		g.level++
		if g.level > MaxLevel {
			g.elapsed = now.Sub(g.startedAt)
			g.finish(ResultVictory, TitleVictory, formatElapsed(g.elapsed))
		}
	} else {
		g.finish(ResultDefeat, TitleDefeat, "")
	}

	g.prepareRound()
	return prev, g.stateLocked(), nil
}

// Abandon ends a run in progress as a defeat and returns the state it was
// in. ok is false when the run had already ended.
func (g *Game) Abandon() (prev State, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev = g.stateLocked()
	if g.phase != PhasePlaying {
		return prev, false
	}
	g.correct = false
	g.finish(ResultDefeat, TitleDefeat, "")
	g.prepareRound()
	return prev, true
}

// finish ends the run and resets the level for the next one.
func (g *Game) finish(res Result, title, subtitle string) {
	g.phase = PhaseEnded
	g.result = res
	g.title = title
	g.subtitle = subtitle
	g.level = MinLevel
	g.startedAt = time.Time{}
}

func (g *Game) reset() {
	g.run++
	g.level = MinLevel
	g.phase = PhasePlaying
	g.result = ResultNone
	g.correct = false
	g.startedAt = time.Time{}
	g.elapsed = 0
	g.title = TitleDefault
	g.subtitle = ""
	g.prepareRound()
}

// prepareRound draws the target letter and a word for the current level.
func (g *Game) prepareRound() {
	g.target = rune(Alphabet[g.rng.IntN(len(Alphabet))])
	g.word = g.bank.Random(g.level, g.rng)
}

// formatElapsed renders d as "Time: <seconds>s" with full precision.
func formatElapsed(d time.Duration) string {
	secs := float64(d.Milliseconds()) / 1000
	return "Time: " + strconv.FormatFloat(secs, 'f', -1, 64) + "s"
}

// State returns a snapshot of the game.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() State {
	s := State{
		ID:       g.ID,
		Run:      g.run,
		Phase:    g.phase,
		Result:   g.result,
		Level:    g.level,
		Target:   string(g.target),
		Word:     g.word,
		Correct:  g.correct,
		Title:    g.title,
		Subtitle: g.subtitle,
	}
	if g.result == ResultVictory {
		s.ElapsedMs = g.elapsed.Milliseconds()
	}
	return s
}

// Phase reports whether the game is playing or ended.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Result reports how the last run ended; ResultNone while playing.
func (g *Game) Result() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

func (g *Game) Level() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level
}

func (g *Game) Target() rune {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

func (g *Game) Word() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.word
}

// Elapsed is the victory time of the last run, or zero.
func (g *Game) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result != ResultVictory {
		return 0
	}
	return g.elapsed
}

func (g *Game) Title() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.title
}

func (g *Game) Subtitle() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subtitle
}

