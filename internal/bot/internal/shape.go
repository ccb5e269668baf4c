package internal

import "mahjong/internal/domain"

// Weights tunes the discard evaluator. Higher usefulness keeps a tile;
// the discard candidate is the least useful one.
type Weights struct {
	PairBonus       float64 // second copy in hand
	TripletBonus    float64 // third or fourth copy in hand
	AdjacentBonus   float64 // run neighbor at distance one
	GapBonus        float64 // run neighbor at distance two
	LoneHonorPenalty float64 // single wind or dragon
	TerminalPenalty  float64 // 1s and 9s stretch in fewer runs
}

// Usefulness scores how much a kind contributes to the hand's shape.
func Usefulness(counts map[domain.Kind]int, k domain.Kind, w Weights) float64 {
	score := 0.0
	n := counts[k]
	if n >= 2 {
		score += w.PairBonus
	}
	if n >= 3 {
		score += w.TripletBonus
	}
	if k.Suit.IsNumbered() {
		for _, d := range []int{-1, 1} {
			if neighbor(counts, k, d) {
				score += w.AdjacentBonus
			}
		}
		for _, d := range []int{-2, 2} {
			if neighbor(counts, k, d) {
				score += w.GapBonus
			}
		}
		if k.IsTerminal() {
			score -= w.TerminalPenalty
		}
	} else if n == 1 {
		score -= w.LoneHonorPenalty
	}
	return score
}

func neighbor(counts map[domain.Kind]int, k domain.Kind, d int) bool {
	v := k.Value + d
	if v < 1 || v > 9 {
		return false
	}
	return counts[domain.Kind{Suit: k.Suit, Value: v}] > 0
}

// BestDiscard returns the least useful tile in the hand. Ties go to the
// later tile in sort order, which sheds high isolated tiles first among
// equals. The hand must be non-empty.
func BestDiscard(hand []domain.Tile, w Weights) domain.Tile {
	sorted := append([]domain.Tile{}, hand...)
	domain.SortTiles(sorted)
	counts := domain.CountKinds(sorted)

	best := sorted[0]
	bestScore := Usefulness(counts, best.Kind(), w)
	for _, t := range sorted[1:] {
		if s := Usefulness(counts, t.Kind(), w); s <= bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

// KeepsPairIntact reports whether claiming a triplet of the kind still
// leaves the hand a pair candidate elsewhere. Claiming the hand's only
// pair into a meld often strands the wait.
func KeepsPairIntact(hand []domain.Tile, claimed domain.Kind) bool {
	counts := domain.CountKinds(hand)
	for k, n := range counts {
		if k != claimed && n >= 2 {
			return true
		}
	}
	return false
}
