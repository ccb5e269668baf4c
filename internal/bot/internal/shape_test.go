package internal

import (
	"testing"

	"mahjong/internal/domain"
)

var testWeights = Weights{
	PairBonus:        2.0,
	TripletBonus:     3.0,
	AdjacentBonus:    1.0,
	GapBonus:         0.4,
	LoneHonorPenalty: 1.5,
	TerminalPenalty:  0.3,
}

func tiles(kinds ...domain.Kind) []domain.Tile {
	out := make([]domain.Tile, len(kinds))
	for i, k := range kinds {
		out[i] = domain.Tile{ID: i + 1, Suit: k.Suit, Value: k.Value}
	}
	return out
}

func TestBestDiscardShedsLoneHonor(t *testing.T) {
	hand := tiles(
		domain.Kind{Suit: domain.SuitDots, Value: 3},
		domain.Kind{Suit: domain.SuitDots, Value: 4},
		domain.Kind{Suit: domain.SuitBamboo, Value: 7},
		domain.Kind{Suit: domain.SuitBamboo, Value: 7},
		domain.Kind{Suit: domain.SuitWinds, Value: int(domain.North)},
	)
	got := BestDiscard(hand, testWeights)
	if got.Suit != domain.SuitWinds {
		t.Fatalf("discard = %s, want the lone wind", got)
	}
}

func TestBestDiscardKeepsPairsAndFragments(t *testing.T) {
	hand := tiles(
		domain.Kind{Suit: domain.SuitCharacters, Value: 2},
		domain.Kind{Suit: domain.SuitCharacters, Value: 3},
		domain.Kind{Suit: domain.SuitDots, Value: 8},
		domain.Kind{Suit: domain.SuitDots, Value: 8},
		domain.Kind{Suit: domain.SuitBamboo, Value: 9},
	)
	got := BestDiscard(hand, testWeights)
	if got.Kind() != (domain.Kind{Suit: domain.SuitBamboo, Value: 9}) {
		t.Fatalf("discard = %s, want the isolated terminal", got)
	}
}

func TestUsefulnessOrdering(t *testing.T) {
	hand := tiles(
		domain.Kind{Suit: domain.SuitDots, Value: 5},
		domain.Kind{Suit: domain.SuitDots, Value: 5},
		domain.Kind{Suit: domain.SuitDots, Value: 6},
		domain.Kind{Suit: domain.SuitBamboo, Value: 1},
	)
	counts := domain.CountKinds(hand)
	pairScore := Usefulness(counts, domain.Kind{Suit: domain.SuitDots, Value: 5}, testWeights)
	loneScore := Usefulness(counts, domain.Kind{Suit: domain.SuitBamboo, Value: 1}, testWeights)
	if pairScore <= loneScore {
		t.Fatalf("pair score %.2f should exceed lone terminal score %.2f", pairScore, loneScore)
	}
}

func TestKeepsPairIntact(t *testing.T) {
	hand := tiles(
		domain.Kind{Suit: domain.SuitDots, Value: 2},
		domain.Kind{Suit: domain.SuitDots, Value: 2},
		domain.Kind{Suit: domain.SuitBamboo, Value: 5},
	)
	if !KeepsPairIntact(hand, domain.Kind{Suit: domain.SuitBamboo, Value: 5}) {
		t.Error("dots pair survives a bamboo claim")
	}
	if KeepsPairIntact(hand, domain.Kind{Suit: domain.SuitDots, Value: 2}) {
		t.Error("claiming the only pair leaves no pair")
	}
}
