// internal/game/judge.go
//
// Letter distance and the judging rule.
// Responsibilities:
//   - Map letters to alphabet positions (a=0 … z=25).
//   - Find the distance from the target to the closest letter of a word.
//   - Accept a choice when it is no farther from the target than that letter.
//
// Notes:
//   - Anything outside a..z has no position and is never accepted.

package game

// Alphabet defines letter positions 0..25.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Index maps a lowercase ASCII letter to 0..25, or -1 if r is not in Alphabet.
func Index(r rune) int {
	if r < 'a' || r > 'z' {
		return -1
	}
	return int(r - 'a')
}

// Distance is the absolute difference of the alphabet positions of a and b.
// ok is false when either letter is outside the alphabet.
func Distance(a, b rune) (d int, ok bool) {
	i, j := Index(a), Index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	if i > j {
		return i - j, true
	}
	return j - i, true
}

// BestDistance is the smallest distance from target to any letter of word.
// ok is false when no letter of word has a defined distance.
func BestDistance(target rune, word string) (best int, ok bool) {
	for _, r := range word {
		d, valid := Distance(target, r)
		if !valid {
			continue
		}
		if !ok || d < best {
			best, ok = d, true
		}
	}
	return best, ok
}

// Judge reports whether chosen is at least as close to target as the
// closest letter of word. Letters outside the alphabet never pass.
func Judge(target rune, word string, chosen rune) bool {
	d, ok := Distance(target, chosen)
	if !ok {
		return false
	}
	best, ok := BestDistance(target, word)
	if !ok {
		return false
	}
	return d <= best
}
