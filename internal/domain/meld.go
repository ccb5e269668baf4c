package domain

import "fmt"

// MeldKind tags the shape of a melded set.
type MeldKind int

const (
	// MeldRun is three consecutive tiles of one numbered suit.
	MeldRun MeldKind = iota
	// MeldTriplet is three tiles of one kind.
	MeldTriplet
	// MeldQuad is four tiles of one kind.
	MeldQuad
)

var meldKindNames = map[MeldKind]string{MeldRun: "run", MeldTriplet: "triplet", MeldQuad: "quad"}

func (mk MeldKind) String() string { return meldKindNames[mk] }

// Meld is a declared set of 3 or 4 tiles. Concealed is true only for a
// kong declared from the hand without using a discard.
type Meld struct {
	Kind      MeldKind
	Tiles     []Tile
	Concealed bool
}

func (m Meld) String() string {
	return fmt.Sprintf("%s%v", m.Kind, m.Tiles)
}

// TileKind returns the kind shared by a triplet or quad, or the lowest
// kind of a run.
func (m Meld) TileKind() Kind {
	return m.Tiles[0].Kind()
}

// Size returns the number of physical tiles the meld holds.
func (m Meld) Size() int { return len(m.Tiles) }

// validate checks the shape invariants: triplets and quads share one
// kind; runs are three strictly consecutive tiles of one numbered suit.
func (m Meld) validate() error {
	switch m.Kind {
	case MeldTriplet, MeldQuad:
		want := 3
		if m.Kind == MeldQuad {
			want = 4
		}
		if len(m.Tiles) != want {
			return fmt.Errorf("%w: %s holds %d tiles", ErrShapeViolation, m.Kind, len(m.Tiles))
		}
		for _, t := range m.Tiles[1:] {
			if t.Kind() != m.Tiles[0].Kind() {
				return fmt.Errorf("%w: %s mixes kinds", ErrShapeViolation, m.Kind)
			}
		}
	case MeldRun:
		if len(m.Tiles) != 3 {
			return fmt.Errorf("%w: run holds %d tiles", ErrShapeViolation, len(m.Tiles))
		}
		if !isRun(m.Tiles[0], m.Tiles[1], m.Tiles[2]) {
			return fmt.Errorf("%w: tiles do not form a run", ErrShapeViolation)
		}
	default:
		return fmt.Errorf("%w: unknown meld kind %d", ErrShapeViolation, m.Kind)
	}
	return nil
}

// isRun reports whether the three tiles, in any order, are one numbered
// suit with strictly consecutive values.
func isRun(a, b, c Tile) bool {
	if a.Suit != b.Suit || b.Suit != c.Suit || !a.Suit.IsNumbered() {
		return false
	}
	lo, mid, hi := a.Value, b.Value, c.Value
	if lo > mid {
		lo, mid = mid, lo
	}
	if mid > hi {
		mid, hi = hi, mid
	}
	if lo > mid {
		lo, mid = mid, lo
	}
	return mid == lo+1 && hi == mid+1
}

// newRun builds a run meld with tiles sorted by value.
func newRun(tiles [3]Tile, concealed bool) Meld {
	ts := []Tile{tiles[0], tiles[1], tiles[2]}
	SortTiles(ts)
	return Meld{Kind: MeldRun, Tiles: ts, Concealed: concealed}
}
