package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/robalobadob/middlefiddle/internal/game"
)

var (
	styleText   = tcell.StyleDefault
	styleTarget = tcell.StyleDefault.Bold(true)
	styleLetter = tcell.StyleDefault.Foreground(tcell.NewHexColor(0xD93A00)).Bold(true)
	styleHint   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// line is one centered row of the current page.
type line struct {
	text  string
	style tcell.Style
}

// app is the terminal presentation layer over a round engine.
type app struct {
	screen tcell.Screen
	game   *game.Game
	sound  sounder
}

func newApp(screen tcell.Screen, g *game.Game, snd sounder) *app {
	return &app{screen: screen, game: g, sound: snd}
}

// lines renders the current page as centered rows.
func (a *app) lines() []line {
	st := a.game.State()
	if st.Phase == game.PhaseEnded {
		return []line{
			{st.Title, styleTarget},
			{st.Subtitle, styleText},
			{"", styleText},
			{"[ Play ]", styleLetter},
			{"Enter to play again · Esc to quit", styleHint},
		}
	}
	return []line{
		{"Select closest letter to:", styleText},
		{"", styleText},
		{"' " + st.Target + " '", styleTarget},
		{"", styleText},
		{spaced(st.Word), styleLetter},
		{"(in alphabetical order)", styleHint},
		{"", styleText},
		{fmt.Sprintf("Level %d/%d · Esc to quit", st.Level, game.MaxLevel), styleHint},
	}
}

// spaced puts a space between the letters of w.
func spaced(w string) string {
	return strings.Join(strings.Split(w, ""), " ")
}

func (a *app) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	rows := a.lines()
	y := (height - len(rows)) / 2
	if y < 0 {
		y = 0
	}
	for i, l := range rows {
		x := (width - runewidth.StringWidth(l.text)) / 2
		if x < 0 {
			x = 0
		}
		for _, r := range l.text {
			a.screen.SetContent(x, y+i, r, nil, l.style)
			x += runewidth.RuneWidth(r)
		}
	}
	a.screen.Show()
}

// handle applies one event. It returns false when the app should exit.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return false
		}
		if a.game.Phase() == game.PhaseEnded {
			if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
				a.game.StartGame()
			}
			return true
		}
		if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) == 0 {
			a.choose(ev.Rune())
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func isQuit(ev *tcell.EventKey) bool {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
		return true
	case ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0:
		return ev.Rune() == 'c' || ev.Rune() == 'C'
	}
	return false
}

// choose submits r if it is one of the word's letters; other keys are ignored
// because only rendered letters are selectable.
func (a *app) choose(r rune) {
	r = unicode.ToLower(r)
	if !strings.ContainsRune(a.game.Word(), r) {
		return
	}
	st, err := a.game.SubmitChoice(r)
	if err == nil && st.Correct {
		a.sound.Correct()
	}
}

func (a *app) run() {
	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if !a.handle(ev) {
			return
		}
		a.draw()
	}
}
