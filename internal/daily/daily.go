// Package daily derives the shared round sequence for the daily challenge
// and records one attempt per player per day.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic PCG seed pair for date using HMAC(salt, date).
func Seed(date, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(date))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Rand returns the random source every daily game for date starts from.
func Rand(date, salt string) *rand.Rand {
	s1, s2 := Seed(date, salt)
	return rand.New(rand.NewPCG(s1, s2))
}

// AnonKey is the key daily results are stored under for an anonymous player.
// It is a keyed hash so the stored value never reveals the cookie ID.
func AnonKey(anonID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("anon:" + anonID))
	return "anon:" + hex.EncodeToString(h.Sum(nil)[:16])
}
