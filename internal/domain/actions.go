package domain

import "fmt"

// Action is the closed set of moves a seat can submit. Each variant
// carries exactly the payload its transition needs, so the state
// machine's dispatch can be checked for exhaustiveness.
type Action interface {
	isAction()
	String() string
}

// DrawAction draws the front tile of the live wall.
type DrawAction struct{}

// DiscardAction discards the identified tile from the actor's hand.
type DiscardAction struct{ TileID int }

// ConcealedKongAction declares a concealed quad of the kind from hand.
type ConcealedKongAction struct{ Kind Kind }

// PromoteKongAction adds the fourth tile from hand to an exposed
// triplet of the kind.
type PromoteKongAction struct{ Kind Kind }

// SelfWinAction declares a self-drawn win.
type SelfWinAction struct{}

// ClaimTripletAction claims the pending discard to form an exposed triplet.
type ClaimTripletAction struct{}

// ClaimRunAction claims the pending discard together with the two
// identified hand tiles to form a run. Only the seat after the
// discarder may submit it.
type ClaimRunAction struct{ TileA, TileB int }

// ClaimKongAction claims the pending discard to form an exposed quad.
type ClaimKongAction struct{}

// ClaimWinAction wins off the pending discard or a robbed kong.
type ClaimWinAction struct{}

// PassAction declines to claim.
type PassAction struct{}

func (DrawAction) isAction()          {}
func (DiscardAction) isAction()       {}
func (ConcealedKongAction) isAction() {}
func (PromoteKongAction) isAction()   {}
func (SelfWinAction) isAction()       {}
func (ClaimTripletAction) isAction()  {}
func (ClaimRunAction) isAction()      {}
func (ClaimKongAction) isAction()     {}
func (ClaimWinAction) isAction()      {}
func (PassAction) isAction()          {}

func (DrawAction) String() string            { return "draw" }
func (a DiscardAction) String() string       { return fmt.Sprintf("discard(%d)", a.TileID) }
func (a ConcealedKongAction) String() string { return fmt.Sprintf("concealedKong(%s)", a.Kind) }
func (a PromoteKongAction) String() string   { return fmt.Sprintf("promoteKong(%s)", a.Kind) }
func (SelfWinAction) String() string         { return "selfWin" }
func (ClaimTripletAction) String() string    { return "claimTriplet" }
func (a ClaimRunAction) String() string      { return fmt.Sprintf("claimRun(%d,%d)", a.TileA, a.TileB) }
func (ClaimKongAction) String() string       { return "claimKong" }
func (ClaimWinAction) String() string        { return "claimWin" }
func (PassAction) String() string            { return "pass" }

// Apply executes the action for the seat, dispatching to the matching
// transition. Unknown dynamic types cannot occur: the variant set is
// closed by the unexported marker method.
func (g *Game) Apply(seat int, action Action) ([]Event, error) {
	switch a := action.(type) {
	case DrawAction:
		return g.Draw(seat)
	case DiscardAction:
		return g.Discard(seat, a.TileID)
	case ConcealedKongAction:
		return g.DeclareConcealedKong(seat, a.Kind)
	case PromoteKongAction:
		return g.PromoteKong(seat, a.Kind)
	case SelfWinAction:
		return g.DeclareSelfWin(seat)
	case ClaimTripletAction:
		return g.ClaimTriplet(seat)
	case ClaimRunAction:
		return g.ClaimRun(seat, a.TileA, a.TileB)
	case ClaimKongAction:
		return g.ClaimKong(seat)
	case ClaimWinAction:
		return g.ClaimWin(seat)
	case PassAction:
		// An individual decline is resolved by the claim collector;
		// applying it directly is the all-declined transition.
		return g.PassClaims()
	default:
		return nil, fmt.Errorf("%w: unknown action %T", ErrPhaseViolation, action)
	}
}

// LegalActions enumerates every action the seat may currently submit,
// without mutating state. Seats with no legal move get an empty slice.
// During a claim window a seat with at least one claim also gets
// PassAction; seats with nothing to claim are implicitly passing.
func (g *Game) LegalActions(seat int) []Action {
	var actions []Action
	switch g.Phase {
	case PhaseDraw:
		if seat == g.Current {
			actions = append(actions, DrawAction{})
		}
	case PhasePostDraw:
		if seat != g.Current {
			break
		}
		actions = append(actions, g.discardActions(seat)...)
		p := g.Players[seat]
		for _, k := range sortedKinds(CountKinds(p.Hand)) {
			if p.holdsKind(k) == 4 {
				actions = append(actions, ConcealedKongAction{Kind: k})
			}
			if p.exposedTripletIndex(k) >= 0 && p.holdsKind(k) >= 1 {
				actions = append(actions, PromoteKongAction{Kind: k})
			}
		}
		if AnalyzeHand(p.winningTiles()).Valid {
			actions = append(actions, SelfWinAction{})
		}
	case PhaseDiscard:
		if seat == g.Current {
			actions = append(actions, g.discardActions(seat)...)
		}
	case PhaseClaimWindow:
		actions = append(actions, g.claimActions(seat)...)
	case PhaseRoundOver:
	}
	return actions
}

func (g *Game) discardActions(seat int) []Action {
	p := g.Players[seat]
	actions := make([]Action, 0, len(p.Hand))
	for _, t := range p.Hand {
		actions = append(actions, DiscardAction{TileID: t.ID})
	}
	return actions
}

func (g *Game) claimActions(seat int) []Action {
	if g.Promotion != nil {
		if seat == g.Promotion.Seat {
			return nil
		}
		p := g.Players[seat]
		if AnalyzeHand(p.winningTiles(g.Promotion.Tile)).Valid {
			return []Action{ClaimWinAction{}, PassAction{}}
		}
		return nil
	}

	if seat == g.Discarder {
		return nil
	}
	p := g.Players[seat]
	discard := g.PendingDiscard
	k := discard.Kind()

	var actions []Action
	if AnalyzeHand(p.winningTiles(discard)).Valid {
		actions = append(actions, ClaimWinAction{})
	}
	if p.holdsKind(k) >= 3 {
		actions = append(actions, ClaimKongAction{})
	}
	if p.holdsKind(k) >= 2 {
		actions = append(actions, ClaimTripletAction{})
	}
	if seat == g.nextSeat(g.Discarder) {
		actions = append(actions, g.runClaims(p, discard)...)
	}
	if len(actions) > 0 {
		actions = append(actions, PassAction{})
	}
	return actions
}

// runClaims enumerates the distinct two-tile completions of a run
// around the discard. One representative physical pair per kind pair.
func (g *Game) runClaims(p *Player, discard Tile) []Action {
	if !discard.Suit.IsNumbered() {
		return nil
	}
	byKind := make(map[Kind]Tile)
	for _, t := range p.Hand {
		if _, ok := byKind[t.Kind()]; !ok {
			byKind[t.Kind()] = t
		}
	}
	at := func(offset int) (Tile, bool) {
		v := discard.Value + offset
		if v < 1 || v > 9 {
			return Tile{}, false
		}
		t, ok := byKind[Kind{Suit: discard.Suit, Value: v}]
		return t, ok
	}

	var actions []Action
	for _, pair := range [][2]int{{-2, -1}, {-1, 1}, {1, 2}} {
		a, okA := at(pair[0])
		b, okB := at(pair[1])
		if okA && okB {
			actions = append(actions, ClaimRunAction{TileA: a.ID, TileB: b.ID})
		}
	}
	return actions
}

// ValidateClaim checks a claim-window response without mutating state.
// It accepts any physical tile pair for a run claim, not just the
// representatives LegalActions enumerates.
func (g *Game) ValidateClaim(seat int, action Action) error {
	if g.Phase != PhaseClaimWindow {
		return fmt.Errorf("%w: claim response in phase %s", ErrPhaseViolation, g.Phase)
	}
	switch a := action.(type) {
	case PassAction:
		return nil
	case ClaimWinAction:
		p := g.Players[seat]
		if promo := g.Promotion; promo != nil {
			if seat == promo.Seat {
				return fmt.Errorf("%w: seat %d cannot rob its own kong", ErrPhaseViolation, seat)
			}
			if !AnalyzeHand(p.winningTiles(promo.Tile)).Valid {
				return fmt.Errorf("%w: seat %d cannot win off %s", ErrValidationFailure, seat, promo.Tile)
			}
			return nil
		}
		if err := g.checkDiscardClaim(seat); err != nil {
			return err
		}
		if !AnalyzeHand(p.winningTiles(g.PendingDiscard)).Valid {
			return fmt.Errorf("%w: seat %d cannot win off %s", ErrValidationFailure, seat, g.PendingDiscard)
		}
		return nil
	case ClaimTripletAction:
		if err := g.checkDiscardClaim(seat); err != nil {
			return err
		}
		if g.Players[seat].holdsKind(g.PendingDiscard.Kind()) < 2 {
			return fmt.Errorf("%w: seat %d holds fewer than 2 of %s", ErrOwnershipViolation, seat, g.PendingDiscard.Kind())
		}
		return nil
	case ClaimKongAction:
		if err := g.checkDiscardClaim(seat); err != nil {
			return err
		}
		if g.Players[seat].holdsKind(g.PendingDiscard.Kind()) < 3 {
			return fmt.Errorf("%w: seat %d holds fewer than 3 of %s", ErrOwnershipViolation, seat, g.PendingDiscard.Kind())
		}
		return nil
	case ClaimRunAction:
		if err := g.checkDiscardClaim(seat); err != nil {
			return err
		}
		if seat != g.nextSeat(g.Discarder) {
			return fmt.Errorf("%w: seat %d is not downstream of the discarder", ErrPhaseViolation, seat)
		}
		p := g.Players[seat]
		var tileA, tileB Tile
		var okA, okB bool
		for _, t := range p.Hand {
			if t.ID == a.TileA {
				tileA, okA = t, true
			}
			if t.ID == a.TileB {
				tileB, okB = t, true
			}
		}
		if !okA || !okB || a.TileA == a.TileB {
			return fmt.Errorf("%w: run tiles not in hand of seat %d", ErrOwnershipViolation, seat)
		}
		if !isRun(tileA, tileB, g.PendingDiscard) {
			return fmt.Errorf("%w: %s %s %s is not a run", ErrShapeViolation, tileA, tileB, g.PendingDiscard)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s is not a claim response", ErrPhaseViolation, action)
	}
}

// EligibleClaimants lists the seats that hold at least one claim action
// against the open claim window, in turn order after the discarder.
func (g *Game) EligibleClaimants() []int {
	if g.Phase != PhaseClaimWindow {
		return nil
	}
	origin := g.Discarder
	if g.Promotion != nil {
		origin = g.Promotion.Seat
	}
	var seats []int
	for offset := 1; offset < len(g.Players); offset++ {
		seat := (origin + offset) % len(g.Players)
		if len(g.claimActions(seat)) > 0 {
			seats = append(seats, seat)
		}
	}
	return seats
}
