package domain

import (
	"fmt"
	"sort"
)

// Suit identifies a tile family. Characters, Dots and Bamboo are the
// numbered suits; Winds and Dragons are honors; Flowers and Seasons are
// bonus tiles that never form melds.
type Suit int

const (
	SuitCharacters Suit = iota
	SuitDots
	SuitBamboo
	SuitWinds
	SuitDragons
	SuitFlowers
	SuitSeasons
)

var suitNames = map[Suit]string{
	SuitCharacters: "characters",
	SuitDots:       "dots",
	SuitBamboo:     "bamboo",
	SuitWinds:      "winds",
	SuitDragons:    "dragons",
	SuitFlowers:    "flowers",
	SuitSeasons:    "seasons",
}

func (s Suit) String() string { return suitNames[s] }

// IsNumbered reports whether the suit carries values 1-9 and can form runs.
func (s Suit) IsNumbered() bool {
	return s == SuitCharacters || s == SuitDots || s == SuitBamboo
}

// Wind is a compass direction, used both for seats and the round wind.
// Wind values double as the tile values of the Winds suit.
type Wind int

const (
	East Wind = iota + 1
	South
	West
	North
)

var windNames = map[Wind]string{East: "east", South: "south", West: "west", North: "north"}

func (w Wind) String() string { return windNames[w] }

// Dragon tile values within SuitDragons.
const (
	DragonWhite = 1
	DragonGreen = 2
	DragonRed   = 3
)

// Kind is a tile's (suit, value) identity, ignoring which physical copy.
// Game rules compare tiles by Kind; physical identity matters only when
// removing a specific tile from a hand.
type Kind struct {
	Suit  Suit
	Value int
}

func (k Kind) String() string { return fmt.Sprintf("%s-%d", k.Suit, k.Value) }

// IsBonus reports whether the kind belongs to a bonus suit.
func (k Kind) IsBonus() bool { return k.Suit == SuitFlowers || k.Suit == SuitSeasons }

// IsHonor reports whether the kind is a wind or dragon.
func (k Kind) IsHonor() bool { return k.Suit == SuitWinds || k.Suit == SuitDragons }

// IsTerminal reports whether the kind is a 1 or 9 of a numbered suit.
func (k Kind) IsTerminal() bool {
	return k.Suit.IsNumbered() && (k.Value == 1 || k.Value == 9)
}

// less orders kinds by (suit, value); the decomposition search depends
// on this being a total order with run successors adjacent.
func (k Kind) less(o Kind) bool {
	if k.Suit != o.Suit {
		return k.Suit < o.Suit
	}
	return k.Value < o.Value
}

// succ returns the next kind in the same numbered suit. Only meaningful
// for numbered kinds with Value < 9.
func (k Kind) succ() Kind { return Kind{Suit: k.Suit, Value: k.Value + 1} }

// Tile is one physical tile. ID distinguishes the four copies of a kind.
type Tile struct {
	ID    int
	Suit  Suit
	Value int
}

// Kind returns the tile's rule identity.
func (t Tile) Kind() Kind { return Kind{Suit: t.Suit, Value: t.Value} }

// IsBonus reports whether the tile is set aside on draw rather than held.
func (t Tile) IsBonus() bool { return t.Kind().IsBonus() }

// IsHonor reports whether the tile is a wind or dragon.
func (t Tile) IsHonor() bool { return t.Kind().IsHonor() }

func (t Tile) String() string { return t.Kind().String() }

// SameKind reports whether two tiles match for game purposes.
func SameKind(a, b Tile) bool { return a.Kind() == b.Kind() }

// SortTiles orders tiles by (suit, value, id) in place.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Kind() != tiles[j].Kind() {
			return tiles[i].Kind().less(tiles[j].Kind())
		}
		return tiles[i].ID < tiles[j].ID
	})
}

// CountKinds folds tiles into a kind -> occurrence count map.
func CountKinds(tiles []Tile) map[Kind]int {
	counts := make(map[Kind]int, len(tiles))
	for _, t := range tiles {
		counts[t.Kind()]++
	}
	return counts
}

// sortedKinds returns the map's keys in (suit, value) order.
func sortedKinds(counts map[Kind]int) []Kind {
	kinds := make([]Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].less(kinds[j]) })
	return kinds
}

// removeTileByID removes the tile with the given ID and returns the
// updated slice plus the removed tile. ok is false if the ID is absent.
func removeTileByID(tiles []Tile, id int) ([]Tile, Tile, bool) {
	for i, t := range tiles {
		if t.ID == id {
			out := append(append([]Tile{}, tiles[:i]...), tiles[i+1:]...)
			return out, t, true
		}
	}
	return tiles, Tile{}, false
}

// takeKind removes up to n tiles of the given kind and returns the
// updated slice plus the removed tiles.
func takeKind(tiles []Tile, k Kind, n int) ([]Tile, []Tile) {
	kept := make([]Tile, 0, len(tiles))
	taken := make([]Tile, 0, n)
	for _, t := range tiles {
		if len(taken) < n && t.Kind() == k {
			taken = append(taken, t)
			continue
		}
		kept = append(kept, t)
	}
	return kept, taken
}
