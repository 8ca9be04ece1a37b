// Package odds converts American moneyline prices into implied win
// probabilities and removes bookmaker margin from per-market probability
// sets ("de-vigorization").
package odds

import "math"

// PriceToProbability converts an American moneyline price into a raw implied
// probability. Negative prices mark the favorite, non-negative prices the
// underdog:
//
//	-150 → 150/(150+100) = 0.60
//	+150 → 100/(150+100) = 0.40
//
// The returned bool is false when the price is NaN or infinite; a bad price
// yields no value rather than a guess.
func PriceToProbability(price float64) (float64, bool) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	if price < 0 {
		abs := -price
		return abs / (abs + 100), true
	}
	return 100 / (price + 100), true
}

// Devigorize scales a market's raw implied probabilities so the retained
// entries sum to 1. Entries that are zero or negative are dropped. If the
// positive entries sum to zero or less there is nothing sane to normalize
// against, so the result is an empty map rather than a division by zero.
func Devigorize(raw map[string]float64) map[string]float64 {
	sum := 0.0
	for _, p := range raw {
		if p > 0 {
			sum += p
		}
	}

	fair := make(map[string]float64, len(raw))
	if sum <= 0 {
		return fair
	}
	for name, p := range raw {
		if p > 0 {
			fair[name] = p / sum
		}
	}
	return fair
}

// NormalizePair removes the margin from a single head-to-head matchup. When
// the two raw probabilities sum to zero the inputs pass through unchanged;
// degenerate input is not an error here, just not normalizable.
func NormalizePair(a, b float64) (float64, float64) {
	sum := a + b
	if sum == 0 {
		return a, b
	}
	return a / sum, b / sum
}
