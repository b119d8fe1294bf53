package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// sounder plays feedback cues.
type sounder interface {
	Correct()
}

type silent struct{}

func (silent) Correct() {}

const sampleRate = beep.SampleRate(44100)

type beeper struct{}

func newBeeper() (beeper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return beeper{}, err
	}
	return beeper{}, nil
}

// Correct plays a short 880Hz tone.
func (beeper) Correct() {
	sine, err := generators.SineTone(sampleRate, 880)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(50*time.Millisecond), sine))
}
