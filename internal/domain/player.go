package domain

// Player holds one seat's state for a round. Seat index and seat wind
// are fixed when the round is dealt.
type Player struct {
	Seat     int
	SeatWind Wind
	Hand     []Tile // concealed tiles, unordered multiset
	Melds    []Meld // declared melds, in declaration order
	Bonus    []Tile // set-aside bonus tiles
	Discards []Tile // oldest first; claimed discards are retracted
}

// holdsKind returns how many concealed tiles of the kind the player holds.
func (p *Player) holdsKind(k Kind) int {
	n := 0
	for _, t := range p.Hand {
		if t.Kind() == k {
			n++
		}
	}
	return n
}

// exposedTripletIndex returns the index of an exposed triplet of the
// kind, or -1.
func (p *Player) exposedTripletIndex(k Kind) int {
	for i, m := range p.Melds {
		if m.Kind == MeldTriplet && !m.Concealed && m.TileKind() == k {
			return i
		}
	}
	return -1
}

// winningTiles reduces the player's holdings to the 14-tile form the
// decomposition engine expects: concealed hand, any extra tile under
// test, and each declared meld contributing three tiles (a quad counts
// as its triplet; the fourth copy is a replacement bonus, not hand
// structure). Bonus tiles are excluded.
func (p *Player) winningTiles(extra ...Tile) []Tile {
	tiles := make([]Tile, 0, HandSize)
	tiles = append(tiles, p.Hand...)
	tiles = append(tiles, extra...)
	for _, m := range p.Melds {
		tiles = append(tiles, m.Tiles[:3]...)
	}
	return tiles
}

// tileFootprint counts the physical tiles a player is accountable for
// in conservation terms: hand, melds, bonus pile and remaining
// discards.
func (p *Player) tileFootprint() int {
	n := len(p.Hand) + len(p.Bonus) + len(p.Discards)
	for _, m := range p.Melds {
		n += len(m.Tiles)
	}
	return n
}
