// Command middlefiddle plays Middle Fiddle in the terminal.
//
// Letter keys pick a letter from the word, Enter or space replays from the
// end screen, Esc or Ctrl-C quits.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/middlefiddle/internal/game"
	"github.com/robalobadob/middlefiddle/internal/words"
)

func main() {
	seed := flag.Uint64("seed", 0, "seed for a reproducible run (0 = random)")
	wordsDir := flag.String("words", os.Getenv("WORDS_DIR"), "directory with level1.txt … level8.txt")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	// The screen owns stdout; keep diagnostics on stderr and quiet by default.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	bank, err := words.Load(*wordsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	opts := []game.Option{}
	if *seed != 0 {
		opts = append(opts, game.WithRand(rand.New(rand.NewPCG(*seed, *seed))))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("create screen")
	}
	if err := screen.Init(); err != nil {
		log.Fatal().Err(err).Msg("init screen")
	}

	var snd sounder = silent{}
	if !*mute {
		if b, err := newBeeper(); err == nil {
			snd = b
		} else {
			// Non-fatal, game can run without sound
			log.Debug().Err(err).Msg("audio init failed")
		}
	}

	a := newApp(screen, game.New(bank, opts...), snd)
	a.run()
	screen.Fini()

	if st := a.game.State(); st.Result == game.ResultVictory {
		fmt.Println(st.Title, st.Subtitle)
	}
}
