// Package rating implements the Elo update applied when a battle
// completes.
package rating

import "math"

// KFactor controls how much a single battle can move a rating.
const KFactor = 32

// Expected returns the logistic expected score of a player rated self
// against a player rated other.
func Expected(self, other float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (other-self)/400.0))
}

// Update computes the paired rating deltas for a finished battle. The
// first argument is the winner-side rating; for a draw either order works
// because each side's delta is computed from its own expected score.
// Deltas are rounded, unclamped and may be negative.
func Update(winnerRating, loserRating int, draw bool) (winnerDelta, loserDelta int) {
	expectedWinner := Expected(float64(winnerRating), float64(loserRating))
	expectedLoser := Expected(float64(loserRating), float64(winnerRating))

	if draw {
		winnerDelta = round(KFactor * (0.5 - expectedWinner))
		loserDelta = round(KFactor * (0.5 - expectedLoser))
		return winnerDelta, loserDelta
	}

	winnerDelta = round(KFactor * (1.0 - expectedWinner))
	loserDelta = round(KFactor * (0.0 - expectedLoser))
	return winnerDelta, loserDelta
}

func round(x float64) int {
	return int(math.Round(x))
}
