package ports

import (
	"testing"

	"mahjong/internal/domain"
)

func scoringGame(roundWind, winnerWind domain.Wind) *domain.Game {
	g := &domain.Game{RoundWind: roundWind}
	for i := range g.Players {
		g.Players[i] = &domain.Player{Seat: i, SeatWind: domain.East}
	}
	g.Players[0].SeatWind = winnerWind
	return g
}

func group(kind domain.MeldKind, kinds ...domain.Kind) domain.DecompGroup {
	return domain.DecompGroup{Kind: kind, Tiles: kinds}
}

func TestBasicScorerScoreWin(t *testing.T) {
	wind := func(w domain.Wind) domain.Kind { return domain.Kind{Suit: domain.SuitWinds, Value: int(w)} }
	dragon := domain.Kind{Suit: domain.SuitDragons, Value: domain.DragonRed}
	bamboo := func(v int) domain.Kind { return domain.Kind{Suit: domain.SuitBamboo, Value: v} }

	tests := []struct {
		name   string
		game   *domain.Game
		result domain.Result
		want   int
	}{
		{
			name: "BaseOnly",
			game: scoringGame(domain.East, domain.South),
			result: domain.Result{Winner: 0, Analysis: domain.HandAnalysis{
				Valid: true,
				Decompositions: []domain.Decomposition{{
					Pair: bamboo(1),
					Melds: []domain.DecompGroup{
						group(domain.MeldRun, bamboo(2), bamboo(3), bamboo(4)),
						group(domain.MeldRun, bamboo(5), bamboo(6), bamboo(7)),
						group(domain.MeldRun, bamboo(2), bamboo(3), bamboo(4)),
						group(domain.MeldTriplet, bamboo(9), bamboo(9), bamboo(9)),
					},
				}},
			}},
			want: 1,
		},
		{
			name: "SevenPairsSelfDrawn",
			game: scoringGame(domain.East, domain.South),
			result: domain.Result{Winner: 0, SelfDrawn: true, Analysis: domain.HandAnalysis{
				Valid: true, SevenPairs: true,
			}},
			want: 4, // base + seven pairs + self-drawn
		},
		{
			name: "ThirteenOrphansIsLimit",
			game: scoringGame(domain.East, domain.South),
			result: domain.Result{Winner: 0, Analysis: domain.HandAnalysis{
				Valid: true, ThirteenOrphans: true,
			}},
			want: 13,
		},
		{
			name: "ValueTripletsCountRoundAndSeatWind",
			game: scoringGame(domain.East, domain.South),
			result: domain.Result{Winner: 0, Analysis: domain.HandAnalysis{
				Valid: true,
				Decompositions: []domain.Decomposition{{
					Pair: bamboo(1),
					Melds: []domain.DecompGroup{
						group(domain.MeldTriplet, wind(domain.East), wind(domain.East), wind(domain.East)),
						group(domain.MeldTriplet, wind(domain.South), wind(domain.South), wind(domain.South)),
						group(domain.MeldTriplet, wind(domain.West), wind(domain.West), wind(domain.West)),
						group(domain.MeldTriplet, dragon, dragon, dragon),
					},
				}},
			}},
			// base + all triplets + east (round), south (seat), dragon
			want: 6,
		},
		{
			name: "FirstTurnTopsUpToLimit",
			game: scoringGame(domain.East, domain.East),
			result: domain.Result{Winner: 0, SelfDrawn: true, FirstTurn: true, Analysis: domain.HandAnalysis{
				Valid: true, SevenPairs: true,
			}},
			want: 13,
		},
	}

	scorer := NewBasicScorer()
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := scorer.ScoreWin(test.game, test.result)
			if got.Points != test.want {
				t.Fatalf("ScoreWin() = %d (%v), want %d", got.Points, got.Breakdown, test.want)
			}
		})
	}
}

func TestBasicScorerPicksTripletHeavyReading(t *testing.T) {
	bamboo := func(v int) domain.Kind { return domain.Kind{Suit: domain.SuitBamboo, Value: v} }
	g := scoringGame(domain.East, domain.South)

	// Same hand read two ways; only the all-triplet reading pays.
	runs := domain.Decomposition{
		Pair: bamboo(9),
		Melds: []domain.DecompGroup{
			group(domain.MeldRun, bamboo(1), bamboo(2), bamboo(3)),
			group(domain.MeldRun, bamboo(1), bamboo(2), bamboo(3)),
			group(domain.MeldRun, bamboo(1), bamboo(2), bamboo(3)),
			group(domain.MeldTriplet, bamboo(5), bamboo(5), bamboo(5)),
		},
	}
	triplets := domain.Decomposition{
		Pair: bamboo(9),
		Melds: []domain.DecompGroup{
			group(domain.MeldTriplet, bamboo(1), bamboo(1), bamboo(1)),
			group(domain.MeldTriplet, bamboo(2), bamboo(2), bamboo(2)),
			group(domain.MeldTriplet, bamboo(3), bamboo(3), bamboo(3)),
			group(domain.MeldTriplet, bamboo(5), bamboo(5), bamboo(5)),
		},
	}
	result := domain.Result{Winner: 0, Analysis: domain.HandAnalysis{
		Valid:          true,
		Decompositions: []domain.Decomposition{runs, triplets},
	}}

	got := NewBasicScorer().ScoreWin(g, result)
	if got.Points != 3 { // base + all triplets
		t.Fatalf("ScoreWin() = %d (%v), want 3", got.Points, got.Breakdown)
	}
}

func TestBasicScorerAddsBonusTiles(t *testing.T) {
	g := scoringGame(domain.East, domain.South)
	g.Players[0].Bonus = []domain.Tile{
		{ID: 1, Suit: domain.SuitFlowers, Value: 1},
		{ID: 2, Suit: domain.SuitSeasons, Value: 3},
	}
	result := domain.Result{Winner: 0, Analysis: domain.HandAnalysis{Valid: true, SevenPairs: true}}

	got := NewBasicScorer().ScoreWin(g, result)
	if got.Points != 5 { // base + seven pairs + two bonus tiles
		t.Fatalf("ScoreWin() = %d (%v), want 5", got.Points, got.Breakdown)
	}
}
