package domain

import "math/rand"

const (
	// TileSetSize is the full set: 4 copies of 34 kinds plus 8 bonus tiles.
	TileSetSize = 144
	// DeadWallSize is the reserve set aside for kong replacements.
	DeadWallSize = 16
	// startingHand is the pre-draw hand size.
	startingHand = 13
)

// NewTileSet returns the full ordered 144-tile set with unique IDs.
func NewTileSet() []Tile {
	tiles := make([]Tile, 0, TileSetSize)
	id := 0
	add := func(s Suit, v int) {
		tiles = append(tiles, Tile{ID: id, Suit: s, Value: v})
		id++
	}
	for _, s := range []Suit{SuitCharacters, SuitDots, SuitBamboo} {
		for v := 1; v <= 9; v++ {
			for c := 0; c < 4; c++ {
				add(s, v)
			}
		}
	}
	for v := int(East); v <= int(North); v++ {
		for c := 0; c < 4; c++ {
			add(SuitWinds, v)
		}
	}
	for v := DragonWhite; v <= DragonRed; v++ {
		for c := 0; c < 4; c++ {
			add(SuitDragons, v)
		}
	}
	for v := 1; v <= 4; v++ {
		add(SuitFlowers, v)
	}
	for v := 1; v <= 4; v++ {
		add(SuitSeasons, v)
	}
	return tiles
}

// Deal shuffles a full set and builds a ready round: dead wall split
// off the tail, thirteen tiles per seat (fourteen for the dealer), and
// bonus tiles pre-extracted to the bonus piles with replacements drawn
// from the wall. The dealer starts in postDraw holding the extra tile.
func Deal(rng *rand.Rand, dealer int, roundWind Wind) *Game {
	tiles := NewTileSet()
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	g := &Game{
		Wall:      tiles[:len(tiles)-DeadWallSize],
		DeadWall:  tiles[len(tiles)-DeadWallSize:],
		Current:   dealer,
		Phase:     PhasePostDraw,
		Turn:      1,
		RoundWind: roundWind,
		Dealer:    dealer,
	}
	for seat := range g.Players {
		g.Players[seat] = &Player{
			Seat:     seat,
			SeatWind: Wind((seat-dealer+4)%4 + 1), // dealer is East
		}
	}

	for offset := 0; offset < len(g.Players); offset++ {
		seat := (dealer + offset) % len(g.Players)
		n := startingHand
		if seat == dealer {
			n = startingHand + 1
		}
		p := g.Players[seat]
		for len(p.Hand) < n && len(g.Wall) > 0 {
			t := g.Wall[0]
			g.Wall = g.Wall[1:]
			if t.IsBonus() {
				p.Bonus = append(p.Bonus, t)
				continue
			}
			p.Hand = append(p.Hand, t)
		}
		SortTiles(p.Hand)
	}
	return g
}
