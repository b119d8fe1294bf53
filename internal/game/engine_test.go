package game

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/robalobadob/middlefiddle/internal/words"
)

func testBank(t *testing.T) *words.Bank {
	t.Helper()
	b, err := words.Embedded()
	if err != nil {
		t.Fatalf("words.Embedded: %v", err)
	}
	return b
}

// stepClock returns a clock advancing by step on every call.
func stepClock(step time.Duration) Clock {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// setRound pins the current round so scenarios are exact.
func (g *Game) setRound(target rune, word string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = target
	g.word = word
}

// bestLetter returns a letter of word closest to target.
func bestLetter(target rune, word string) rune {
	best, _ := BestDistance(target, word)
	for _, r := range word {
		if d, _ := Distance(target, r); d == best {
			return r
		}
	}
	return 0
}

// wrongLetter returns a letter strictly farther from target than the word's best.
func wrongLetter(target rune, word string) rune {
	best, _ := BestDistance(target, word)
	for _, r := range Alphabet {
		if d, _ := Distance(target, r); d > best {
			return r
		}
	}
	return '!'
}

func checkInvariants(t *testing.T, s State) {
	t.Helper()
	if s.Level < MinLevel || s.Level > MaxLevel {
		t.Fatalf("level %d out of range", s.Level)
	}
	if len(s.Word) != s.Level+2 {
		t.Fatalf("word %q has length %d at level %d", s.Word, len(s.Word), s.Level)
	}
	if len(s.Target) != 1 || Index(rune(s.Target[0])) < 0 {
		t.Fatalf("target %q not in alphabet", s.Target)
	}
}

func TestNew(t *testing.T) {
	g := New(testBank(t), seeded(1))
	if g.ID == "" {
		t.Error("ID is empty")
	}
	s := g.State()
	if s.Phase != PhasePlaying {
		t.Errorf("Phase %q, want %q", s.Phase, PhasePlaying)
	}
	if s.Result != ResultNone {
		t.Errorf("Result %q, want none", s.Result)
	}
	if s.Level != 1 {
		t.Errorf("Level %d, want 1", s.Level)
	}
	if s.Run != 1 {
		t.Errorf("Run %d, want 1", s.Run)
	}
	if s.Title != TitleDefault || s.Subtitle != "" {
		t.Errorf("Title/Subtitle %q/%q, want %q/empty", s.Title, s.Subtitle, TitleDefault)
	}
	checkInvariants(t, s)
}

func TestNew_WithID(t *testing.T) {
	g := New(testBank(t), WithID("fixed"))
	if g.ID != "fixed" {
		t.Errorf("ID %q, want fixed", g.ID)
	}
}

func TestSubmitChoice_ScenarioAct(t *testing.T) {
	g := New(testBank(t), seeded(2), WithClock(stepClock(time.Second)))
	g.setRound('m', "act")
	s, err := g.SubmitChoice('t')
	if err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if !s.Correct || s.Phase != PhasePlaying || s.Level != 2 {
		t.Errorf("after 't': correct=%v phase=%q level=%d, want true/playing/2", s.Correct, s.Phase, s.Level)
	}
	checkInvariants(t, s)

	g2 := New(testBank(t), seeded(3))
	g2.setRound('m', "act")
	s, err = g2.SubmitChoice('a')
	if err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if s.Correct || s.Phase != PhaseEnded || s.Result != ResultDefeat {
		t.Errorf("after 'a': correct=%v phase=%q result=%q, want false/ended/defeat", s.Correct, s.Phase, s.Result)
	}
}

func TestSubmitChoice_ScenarioZooTies(t *testing.T) {
	g := New(testBank(t), seeded(4))
	g.setRound('a', "zoo")
	if s, _ := g.SubmitChoice('o'); !s.Correct {
		t.Error("choice 'o' should be accepted")
	}
	g = New(testBank(t), seeded(5))
	g.setRound('a', "zoo")
	s, _ := g.SubmitChoice('z')
	if s.Correct || s.Result != ResultDefeat {
		t.Errorf("choice 'z' should be a defeat, got correct=%v result=%q", s.Correct, s.Result)
	}
}

func TestSubmitChoice_TieOnBothSides(t *testing.T) {
	for _, choice := range []rune{'k', 'o'} {
		g := New(testBank(t), seeded(6))
		g.setRound('m', "kiwo")
		if s, _ := g.SubmitChoice(choice); !s.Correct {
			t.Errorf("choice %q ties the minimum and should be accepted", choice)
		}
	}
}

func TestSubmitChoice_NotInAlphabet(t *testing.T) {
	for _, choice := range []rune{'M', '1', ' ', 'ñ'} {
		g := New(testBank(t), seeded(7))
		g.setRound('m', "act")
		s, err := g.SubmitChoice(choice)
		if err != nil {
			t.Fatalf("SubmitChoice(%q): %v", choice, err)
		}
		if s.Correct || s.Result != ResultDefeat {
			t.Errorf("choice %q should fail closed, got correct=%v result=%q", choice, s.Correct, s.Result)
		}
	}
}

func TestSubmitChoice_Victory(t *testing.T) {
	g := New(testBank(t), seeded(8), WithClock(stepClock(1234*time.Millisecond)))
	var s State
	for i := 0; i < MaxLevel; i++ {
		cur := g.State()
		checkInvariants(t, cur)
		if cur.Level != i+1 {
			t.Fatalf("round %d: level %d", i, cur.Level)
		}
		var err error
		s, err = g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word))
		if err != nil {
			t.Fatalf("SubmitChoice: %v", err)
		}
		if !s.Correct {
			t.Fatalf("round %d: best letter judged incorrect", i)
		}
		if i < MaxLevel-1 && s.Phase != PhasePlaying {
			t.Fatalf("round %d: phase %q before final round", i, s.Phase)
		}
	}
	if s.Phase != PhaseEnded || s.Result != ResultVictory {
		t.Fatalf("phase/result %q/%q, want ended/victory", s.Phase, s.Result)
	}
	if s.Level != 1 {
		t.Errorf("Level %d, want reset to 1", s.Level)
	}
	// The clock is read once per correct choice; the timer starts on the
	// first one, so seven steps separate start and finish.
	if s.ElapsedMs != 7*1234 {
		t.Errorf("ElapsedMs %d, want %d", s.ElapsedMs, 7*1234)
	}
	if s.Title != TitleVictory {
		t.Errorf("Title %q, want %q", s.Title, TitleVictory)
	}
	if s.Subtitle != "Time: 8.638s" {
		t.Errorf("Subtitle %q, want %q", s.Subtitle, "Time: 8.638s")
	}
	if g.Elapsed() != 8638*time.Millisecond {
		t.Errorf("Elapsed %v, want 8.638s", g.Elapsed())
	}
	checkInvariants(t, s)
}

func TestSubmitChoice_TimerStartsAfterFirstRound(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var now time.Time
	g := New(testBank(t), seeded(9), WithClock(func() time.Time { return now }))

	// Time spent on level 1 must not count.
	now = base.Add(time.Hour)
	cur := g.State()
	if _, err := g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word)); err != nil {
		t.Fatal(err)
	}
	for i := 2; i <= MaxLevel; i++ {
		now = now.Add(500 * time.Millisecond)
		cur = g.State()
		if _, err := g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word)); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := g.Elapsed(), 7*500*time.Millisecond; got != want {
		t.Errorf("Elapsed %v, want %v", got, want)
	}
	if g.Subtitle() != "Time: 3.5s" {
		t.Errorf("Subtitle %q, want Time: 3.5s", g.Subtitle())
	}
}

func TestSubmitChoice_DefeatAtLevelTwo(t *testing.T) {
	g := New(testBank(t), seeded(10), WithClock(stepClock(time.Second)))
	cur := g.State()
	s, _ := g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word))
	if s.Level != 2 {
		t.Fatalf("Level %d, want 2", s.Level)
	}
	s, err := g.SubmitChoice(wrongLetter(rune(s.Target[0]), s.Word))
	if err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if s.Phase != PhaseEnded || s.Result != ResultDefeat {
		t.Errorf("phase/result %q/%q, want ended/defeat", s.Phase, s.Result)
	}
	if s.Level != 1 {
		t.Errorf("Level %d, want 1", s.Level)
	}
	if s.Subtitle != "" {
		t.Errorf("Subtitle %q, want empty", s.Subtitle)
	}
	if s.Title != TitleDefeat {
		t.Errorf("Title %q, want %q", s.Title, TitleDefeat)
	}
	if s.ElapsedMs != 0 || g.Elapsed() != 0 {
		t.Errorf("elapsed should be zero on defeat, got %d / %v", s.ElapsedMs, g.Elapsed())
	}
	// Next round is already prepared at level 1.
	checkInvariants(t, s)
}

func TestSubmitChoice_DefeatAtEveryLevel(t *testing.T) {
	for fail := 1; fail <= MaxLevel; fail++ {
		g := New(testBank(t), seeded(uint64(100+fail)))
		for lvl := 1; lvl < fail; lvl++ {
			cur := g.State()
			if _, err := g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word)); err != nil {
				t.Fatal(err)
			}
		}
		cur := g.State()
		if cur.Level != fail {
			t.Fatalf("reached level %d, want %d", cur.Level, fail)
		}
		s, _ := g.SubmitChoice(wrongLetter(rune(cur.Target[0]), cur.Word))
		if s.Result != ResultDefeat || s.Level != 1 {
			t.Errorf("fail at %d: result=%q level=%d, want defeat/1", fail, s.Result, s.Level)
		}
	}
}

func TestSubmitChoice_AfterEnd(t *testing.T) {
	g := New(testBank(t), seeded(11))
	g.setRound('m', "act")
	if _, err := g.SubmitChoice('a'); err != nil {
		t.Fatal(err)
	}
	before := g.State()
	after, err := g.SubmitChoice('t')
	if !errors.Is(err, ErrGameEnded) {
		t.Fatalf("err %v, want ErrGameEnded", err)
	}
	if after != before {
		t.Errorf("state changed after rejected choice: %+v -> %+v", before, after)
	}
}

func TestStartGame_Replay(t *testing.T) {
	g := New(testBank(t), seeded(12))
	g.setRound('m', "act")
	_, _ = g.SubmitChoice('a')
	if g.Phase() != PhaseEnded {
		t.Fatal("expected ended game")
	}
	s := g.StartGame()
	if s.Phase != PhasePlaying || s.Result != ResultNone || s.Level != 1 {
		t.Errorf("after replay phase/result/level %q/%q/%d, want playing/none/1", s.Phase, s.Result, s.Level)
	}
	if s.Run != 2 {
		t.Errorf("Run %d after replay, want 2", s.Run)
	}
	if s.Title != TitleDefault || s.Subtitle != "" {
		t.Errorf("after replay title/subtitle %q/%q", s.Title, s.Subtitle)
	}
	checkInvariants(t, s)
}

func TestStartGame_ResetsMidRun(t *testing.T) {
	g := New(testBank(t), seeded(13))
	for i := 0; i < 3; i++ {
		cur := g.State()
		_, _ = g.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word))
	}
	if g.Level() != 4 {
		t.Fatalf("Level %d, want 4", g.Level())
	}
	s := g.StartGame()
	if s.Level != 1 || len(s.Word) != 3 {
		t.Errorf("StartGame level=%d word=%q, want 1 and a 3-letter word", s.Level, s.Word)
	}
}

func TestSameSeedSameRounds(t *testing.T) {
	b := testBank(t)
	g1 := New(b, seeded(99))
	g2 := New(b, seeded(99))
	for i := 0; i < MaxLevel; i++ {
		s1, s2 := g1.State(), g2.State()
		if s1.Target != s2.Target || s1.Word != s2.Word {
			t.Fatalf("round %d diverged: %s/%s vs %s/%s", i, s1.Target, s1.Word, s2.Target, s2.Word)
		}
		l := bestLetter(rune(s1.Target[0]), s1.Word)
		_, _ = g1.SubmitChoice(l)
		_, _ = g2.SubmitChoice(l)
	}
}

func TestGamesDoNotShareState(t *testing.T) {
	b := testBank(t)
	g1 := New(b, seeded(20))
	g2 := New(b, seeded(21))
	cur := g1.State()
	_, _ = g1.SubmitChoice(bestLetter(rune(cur.Target[0]), cur.Word))
	if g1.Level() != 2 {
		t.Fatalf("g1 level %d, want 2", g1.Level())
	}
	if g2.Level() != 1 || g2.Phase() != PhasePlaying {
		t.Errorf("g2 leaked state: level=%d phase=%q", g2.Level(), g2.Phase())
	}
}

func TestAccessorsMatchState(t *testing.T) {
	g := New(testBank(t), seeded(22))
	s := g.State()
	if string(g.Target()) != s.Target || g.Word() != s.Word || g.Level() != s.Level {
		t.Errorf("accessors disagree with State: %q %q %d vs %+v", g.Target(), g.Word(), g.Level(), s)
	}
	if g.Result() != ResultNone || g.Title() != TitleDefault || g.Subtitle() != "" {
		t.Errorf("unexpected result/title/subtitle: %q %q %q", g.Result(), g.Title(), g.Subtitle())
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{12345 * time.Millisecond, "Time: 12.345s"},
		{2 * time.Second, "Time: 2s"},
		{1500 * time.Millisecond, "Time: 1.5s"},
		{7 * time.Millisecond, "Time: 0.007s"},
	}
	for _, tc := range cases {
		if got := formatElapsed(tc.d); got != tc.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestChoose_ReturnsJudgedRound(t *testing.T) {
	g := New(testBank(t), seeded(31), WithClock(stepClock(time.Second)))
	g.setRound('m', "act")
	prev, next, err := g.Choose('t')
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if prev.Target != "m" || prev.Word != "act" || prev.Level != 1 || prev.Phase != PhasePlaying {
		t.Errorf("prev %+v, want the m/act round at level 1", prev)
	}
	if next.Level != 2 || !next.Correct {
		t.Errorf("next %+v, want level 2 after a correct choice", next)
	}
}

func TestChoose_AfterEndReturnsSameState(t *testing.T) {
	g := New(testBank(t), seeded(32))
	g.setRound('m', "act")
	_, _, _ = g.Choose('a')
	prev, next, err := g.Choose('a')
	if !errors.Is(err, ErrGameEnded) {
		t.Fatalf("err %v, want ErrGameEnded", err)
	}
	if prev != next || prev.Phase != PhaseEnded {
		t.Errorf("prev %+v next %+v, want identical ended states", prev, next)
	}
}

func TestRestart_ReturnsReplacedRun(t *testing.T) {
	g := New(testBank(t), seeded(33))
	g.setRound('m', "act")
	_, _ = g.SubmitChoice('t')
	prev, next := g.Restart()
	if prev.Run != 1 || prev.Level != 2 || prev.Phase != PhasePlaying {
		t.Errorf("prev %+v, want run 1 at level 2 still playing", prev)
	}
	if next.Run != 2 || next.Level != 1 || next.Phase != PhasePlaying {
		t.Errorf("next %+v, want run 2 at level 1", next)
	}
}

func TestAbandon(t *testing.T) {
	g := New(testBank(t), seeded(34))
	g.setRound('m', "act")
	_, _ = g.SubmitChoice('t')

	prev, ok := g.Abandon()
	if !ok || prev.Level != 2 || prev.Phase != PhasePlaying {
		t.Fatalf("Abandon = %+v, %v; want the level-2 run", prev, ok)
	}
	s := g.State()
	if s.Phase != PhaseEnded || s.Result != ResultDefeat || s.Title != TitleDefeat || s.Level != 1 {
		t.Errorf("state after Abandon %+v, want ended defeat at level 1", s)
	}
	checkInvariants(t, s)

	if _, ok := g.Abandon(); ok {
		t.Error("second Abandon should report the run already ended")
	}
	if _, err := g.SubmitChoice('a'); !errors.Is(err, ErrGameEnded) {
		t.Errorf("SubmitChoice after Abandon err %v, want ErrGameEnded", err)
	}
}
