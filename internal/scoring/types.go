// Package scoring measures ranking quality against observed comparisons and
// renders per-method score summaries.
package scoring

import "errors"

var ErrLength = errors.New("score length does not match comparison matrix")

// Upsets counts ranking violations over the observed pairs of a comparison
// matrix, for a score vector (Forward) and its negation (Reverse).
type Upsets struct {
	Forward     int
	Reverse     int
	Comparisons int
}

// Rate is the fraction of violated comparisons under the better of the two
// orientations. Spectral rankers only determine scores up to sign.
func (u Upsets) Rate() float64 {
	if u.Comparisons == 0 {
		return 0
	}
	return float64(min(u.Forward, u.Reverse)) / float64(u.Comparisons)
}
