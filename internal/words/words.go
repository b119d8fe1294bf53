// internal/words/words.go
//
// Word bank for the round engine.
//
// Responsibilities:
//   - Load the eight per-level word lists from an override directory or the
//     embedded defaults under assets/words.
//   - Keep only lowercase alphabetic words of exactly level+2 letters.
//   - Supply random selection through a caller-provided random source.
//
// Word Lists:
//   - level1.txt … level8.txt, one word per line, '#' starts a comment line.
//   - Level N holds words of length N+2 (3..10 letters).
//
// Environment variables (read by config, passed to Load):
//   WORDS_DIR=/path/to/dir/with/levelN.txt
//
// Constraints:
//   • Every level must end up non-empty, otherwise Load fails with ErrEmptyLevel.
//   • A Bank is immutable after Load and safe for concurrent use.

package words

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/middlefiddle/assets"
)

const (
	MinLevel = 1
	MaxLevel = 8
)

// ErrEmptyLevel is returned by Load when a level has no usable words.
var ErrEmptyLevel = errors.New("words: level has no usable words")

// Rand is the random source used for selection. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// WordLength returns the word length used at level.
func WordLength(level int) int { return level + 2 }

// Bank maps each level to its candidate words.
type Bank struct {
	levels [MaxLevel][]string
}

var (
	embeddedOnce sync.Once
	embeddedBank *Bank
	embeddedErr  error
)

// Embedded returns the bank built from the embedded word lists.
// It is loaded once and shared.
func Embedded() (*Bank, error) {
	embeddedOnce.Do(func() {
		sub, err := fs.Sub(assets.FS, "words")
		if err != nil {
			embeddedErr = err
			return
		}
		embeddedBank, embeddedErr = FromFS(sub)
	})
	return embeddedBank, embeddedErr
}

// Load reads levelN.txt files from dir, or the embedded lists when dir is empty.
func Load(dir string) (*Bank, error) {
	if dir == "" {
		return Embedded()
	}
	return FromFS(os.DirFS(dir))
}

// FromFS builds a bank from level1.txt … level8.txt at the root of fsys.
func FromFS(fsys fs.FS) (*Bank, error) {
	b := &Bank{}
	for level := MinLevel; level <= MaxLevel; level++ {
		lines, err := assets.ReadLines(fsys, assets.LevelFile(level))
		if err != nil {
			return nil, fmt.Errorf("words: read level %d: %w", level, err)
		}
		list := normalize(lines, WordLength(level))
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: level %d", ErrEmptyLevel, level)
		}
		b.levels[level-1] = list
	}
	return b, nil
}

// New builds a bank from in-memory lists, indexed by level-1.
// Lists are validated the same way as files.
func New(lists [MaxLevel][]string) (*Bank, error) {
	b := &Bank{}
	for i, raw := range lists {
		level := i + 1
		lowered := make([]string, 0, len(raw))
		for _, w := range raw {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(w)))
		}
		list := normalize(lowered, WordLength(level))
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: level %d", ErrEmptyLevel, level)
		}
		b.levels[i] = list
	}
	return b, nil
}

// normalize keeps alphabetic words of length n.
func normalize(lines []string, n int) []string {
	out := make([]string, 0, len(lines))
	for _, w := range lines {
		if len(w) == n && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Random returns a uniformly chosen word for level.
// Levels outside 1..8 yield "".
func (b *Bank) Random(level int, rng Rand) string {
	if level < MinLevel || level > MaxLevel {
		return ""
	}
	list := b.levels[level-1]
	return list[rng.IntN(len(list))]
}

// Words returns a copy of the words for level.
func (b *Bank) Words(level int) []string {
	if level < MinLevel || level > MaxLevel {
		return nil
	}
	return append([]string(nil), b.levels[level-1]...)
}

// Contains reports whether w is a candidate word at level.
func (b *Bank) Contains(level int, w string) bool {
	for _, x := range b.Words(level) {
		if x == w {
			return true
		}
	}
	return false
}

// Stats returns the number of words per level, keyed by level.
func (b *Bank) Stats() map[int]int {
	out := make(map[int]int, MaxLevel)
	for i, list := range b.levels {
		out[i+1] = len(list)
	}
	return out
}
