package domain

import (
	"sort"
	"strings"
)

// HandSize is the tile count of a completed hand.
const HandSize = 14

// DecompGroup is one meld of a decomposition, expressed in kinds rather
// than physical tiles: which copy of a kind fills a slot never matters
// to validity.
type DecompGroup struct {
	Kind  MeldKind
	Tiles []Kind // ascending; length 3, or 4 for a quad
}

// Decomposition is one way to read a hand as four melds plus a pair.
type Decomposition struct {
	Pair  Kind
	Melds []DecompGroup
}

// HandAnalysis is the result of checking a 14-tile hand against the
// three winning-pattern families. The checks are independent; a hand
// can satisfy several at once and pattern selection is left to scoring.
type HandAnalysis struct {
	Valid           bool
	Decompositions  []Decomposition
	SevenPairs      bool
	ThirteenOrphans bool
}

// orphanKinds are the thirteen terminal-or-honor kinds of the
// thirteen-distinct pattern.
var orphanKinds = []Kind{
	{SuitCharacters, 1}, {SuitCharacters, 9},
	{SuitDots, 1}, {SuitDots, 9},
	{SuitBamboo, 1}, {SuitBamboo, 9},
	{SuitWinds, int(East)}, {SuitWinds, int(South)}, {SuitWinds, int(West)}, {SuitWinds, int(North)},
	{SuitDragons, DragonWhite}, {SuitDragons, DragonGreen}, {SuitDragons, DragonRed},
}

// AnalyzeHand determines whether exactly 14 non-bonus tiles form a
// winning hand, returning every structurally distinct standard
// decomposition plus the two closed-form pattern flags. Precondition
// violations (wrong count, bonus tiles) yield an invalid analysis, not
// an error: this is a query, not a command.
func AnalyzeHand(tiles []Tile) HandAnalysis {
	if len(tiles) != HandSize {
		return HandAnalysis{}
	}
	for _, t := range tiles {
		if t.IsBonus() {
			return HandAnalysis{}
		}
	}

	counts := CountKinds(tiles)
	analysis := HandAnalysis{
		Decompositions:  decomposeStandard(counts),
		SevenPairs:      isSevenPairs(counts),
		ThirteenOrphans: isThirteenOrphans(counts),
	}
	analysis.Valid = len(analysis.Decompositions) > 0 || analysis.SevenPairs || analysis.ThirteenOrphans
	return analysis
}

// decomposeStandard enumerates every way to split the counts into four
// melds and a pair. Backtracking always consumes the lexicographically
// smallest kind with a positive count, branching on each locally legal
// consumption. Worst case is exponential in distinct kinds; real hands
// branch rarely enough that no memoization is needed.
func decomposeStandard(counts map[Kind]int) []Decomposition {
	kinds := sortedKinds(counts)
	remaining := make(map[Kind]int, len(counts))
	for k, c := range counts {
		remaining[k] = c
	}

	var (
		found []Decomposition
		melds []DecompGroup
		pair  *Kind
	)

	var search func(idx int)
	search = func(idx int) {
		for idx < len(kinds) && remaining[kinds[idx]] == 0 {
			idx++
		}
		if idx == len(kinds) {
			if pair != nil && len(melds) == 4 {
				found = append(found, snapshot(*pair, melds))
			}
			return
		}
		k := kinds[idx]
		c := remaining[k]

		// The seams between these branches are where ambiguous hands
		// fork; every branch is tried even after one succeeds.
		if pair == nil && c >= 2 {
			remaining[k] -= 2
			pair = &k
			search(idx)
			pair = nil
			remaining[k] += 2
		}
		if len(melds) < 4 && c >= 3 {
			remaining[k] -= 3
			melds = append(melds, DecompGroup{Kind: MeldTriplet, Tiles: []Kind{k, k, k}})
			search(idx)
			melds = melds[:len(melds)-1]
			remaining[k] += 3
		}
		if len(melds) < 4 && c == 4 {
			// A quad in a raw 14-tile hand only arises as the
			// hand-internal concealed case.
			remaining[k] -= 4
			melds = append(melds, DecompGroup{Kind: MeldQuad, Tiles: []Kind{k, k, k, k}})
			search(idx)
			melds = melds[:len(melds)-1]
			remaining[k] += 4
		}
		if len(melds) < 4 && k.Suit.IsNumbered() && k.Value <= 7 {
			s1, s2 := k.succ(), k.succ().succ()
			if remaining[s1] > 0 && remaining[s2] > 0 {
				remaining[k]--
				remaining[s1]--
				remaining[s2]--
				melds = append(melds, DecompGroup{Kind: MeldRun, Tiles: []Kind{k, s1, s2}})
				search(idx)
				melds = melds[:len(melds)-1]
				remaining[k]++
				remaining[s1]++
				remaining[s2]++
			}
		}
	}
	search(0)

	return dedupeDecompositions(found)
}

// snapshot deep-copies the working pair and melds into a result value.
func snapshot(pair Kind, melds []DecompGroup) Decomposition {
	out := Decomposition{Pair: pair, Melds: make([]DecompGroup, len(melds))}
	for i, m := range melds {
		out.Melds[i] = DecompGroup{Kind: m.Kind, Tiles: append([]Kind{}, m.Tiles...)}
	}
	return out
}

// dedupeDecompositions drops structural duplicates. The search can
// reach one decomposition along several branch orders when a kind
// supplies both the pair and a meld.
func dedupeDecompositions(ds []Decomposition) []Decomposition {
	seen := make(map[string]bool, len(ds))
	out := ds[:0]
	for _, d := range ds {
		key := d.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

func (d Decomposition) key() string {
	parts := make([]string, 0, len(d.Melds)+1)
	for _, m := range d.Melds {
		tileNames := make([]string, len(m.Tiles))
		for i, k := range m.Tiles {
			tileNames[i] = k.String()
		}
		parts = append(parts, m.Kind.String()+":"+strings.Join(tileNames, ","))
	}
	sort.Strings(parts)
	return d.Pair.String() + "|" + strings.Join(parts, "|")
}

// isSevenPairs reports whether the counts group into exactly seven
// distinct kinds each appearing exactly twice.
func isSevenPairs(counts map[Kind]int) bool {
	if len(counts) != 7 {
		return false
	}
	for _, c := range counts {
		if c != 2 {
			return false
		}
	}
	return true
}

// isThirteenOrphans reports whether every designated terminal-or-honor
// kind is present, exactly one of them twice, and nothing else at all.
func isThirteenOrphans(counts map[Kind]int) bool {
	if len(counts) != len(orphanKinds) {
		return false
	}
	doubles := 0
	for _, k := range orphanKinds {
		switch counts[k] {
		case 1:
		case 2:
			doubles++
		default:
			return false
		}
	}
	return doubles == 1
}
