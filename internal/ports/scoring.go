package ports

import "mahjong/internal/domain"

// HandScore values a winning hand for settlement.
type HandScore struct {
	Points    int
	Breakdown []string
}

// Scorer values finished rounds. Implementations pick the best reading
// among the analysis' decompositions; the rules engine reports them
// all without ranking.
type Scorer interface {
	ScoreWin(g *domain.Game, r domain.Result) HandScore
}

// BasicScorer is a flat pattern-count scorer. Special hands score as
// fixed blocks; standard hands start from a base point and collect
// situational bonuses.
type BasicScorer struct {
	Base  int
	Limit int
}

func NewBasicScorer() *BasicScorer {
	return &BasicScorer{Base: 1, Limit: 13}
}

func (s *BasicScorer) ScoreWin(g *domain.Game, r domain.Result) HandScore {
	score := HandScore{Points: s.Base, Breakdown: []string{"base"}}
	add := func(points int, label string) {
		score.Points += points
		score.Breakdown = append(score.Breakdown, label)
	}

	switch {
	case r.Analysis.ThirteenOrphans:
		score = HandScore{Points: s.Limit, Breakdown: []string{"thirteen orphans"}}
		return score
	case r.Analysis.SevenPairs:
		add(2, "seven pairs")
	default:
		if best := bestDecomposition(r.Analysis.Decompositions); best != nil {
			if allTriplets(*best) {
				add(2, "all triplets")
			}
			if n := valueTriplets(g, r.Winner, *best); n > 0 {
				add(n, "value triplets")
			}
		}
	}
	if r.SelfDrawn {
		add(1, "self-drawn")
	}
	if r.RobbedKong {
		add(1, "robbed kong")
	}
	if r.FirstTurn {
		add(s.Limit-score.Points, "first-turn win")
	}
	if n := len(g.Players[r.Winner].Bonus); n > 0 {
		add(n, "bonus tiles")
	}
	if score.Points > s.Limit {
		score.Points = s.Limit
	}
	return score
}

// bestDecomposition picks the reading with the most triplets, which is
// the only axis the flat scorer differentiates on.
func bestDecomposition(decomps []domain.Decomposition) *domain.Decomposition {
	var best *domain.Decomposition
	bestTriplets := -1
	for i := range decomps {
		n := 0
		for _, m := range decomps[i].Melds {
			if m.Kind != domain.MeldRun {
				n++
			}
		}
		if n > bestTriplets {
			best, bestTriplets = &decomps[i], n
		}
	}
	return best
}

func allTriplets(d domain.Decomposition) bool {
	for _, m := range d.Melds {
		if m.Kind == domain.MeldRun {
			return false
		}
	}
	return true
}

// valueTriplets counts triplets of dragons, the round wind and the
// winner's seat wind.
func valueTriplets(g *domain.Game, winner int, d domain.Decomposition) int {
	seatWind := g.Players[winner].SeatWind
	n := 0
	for _, m := range d.Melds {
		if m.Kind == domain.MeldRun {
			continue
		}
		k := m.Tiles[0]
		switch k.Suit {
		case domain.SuitDragons:
			n++
		case domain.SuitWinds:
			if k.Value == int(g.RoundWind) || k.Value == int(seatWind) {
				n++
			}
		}
	}
	return n
}
