package domain

import "fmt"

// Phase is the turn state machine's current state.
type Phase string

const (
	// PhaseDraw: the current player must draw from the live wall.
	PhaseDraw Phase = "draw"
	// PhasePostDraw: the current player holds an extra tile and may
	// discard, declare a kong, promote a triplet, or win.
	PhasePostDraw Phase = "postDraw"
	// PhaseDiscard: the current player completed a claim and must discard.
	PhaseDiscard Phase = "discard"
	// PhaseClaimWindow: a discard (or robbable kong promotion) is
	// pending and other seats may respond.
	PhaseClaimWindow Phase = "claimWindow"
	// PhaseRoundOver is terminal and carries a Result.
	PhaseRoundOver Phase = "roundOver"
)

// Promotion records an exposed-triplet upgrade that is still open to
// being robbed for a win before the replacement tile is drawn.
type Promotion struct {
	Seat      int
	MeldIndex int
	Tile      Tile
}

// Result is a round's terminal outcome: a win, or a no-contest draw on
// tile exhaustion.
type Result struct {
	NoContest bool

	Winner    int // seat index; -1 on no-contest
	Discarder int // seat that discarded (or promoted) into the win; -1 if self-drawn
	SelfDrawn bool
	RobbedKong bool
	FirstTurn  bool // the win was the very first action of the round

	Analysis     HandAnalysis // pattern selection is the scorer's job
	WinningTiles []Tile
}

// Game owns one round's state. It is mutated only through its
// transition methods; callers must serialize access.
type Game struct {
	Players   [4]*Player
	Wall      []Tile // live wall, drawable from the front
	DeadWall  []Tile // reserve, drawable from the back, kong replacements only
	Current   int
	Phase     Phase
	Turn      int
	FirstTurnDone bool
	RoundWind Wind
	Dealer    int

	// Claim-window bookkeeping; meaningful only in PhaseClaimWindow.
	PendingDiscard Tile
	Discarder      int
	Promotion      *Promotion

	Result *Result
}

func (g *Game) nextSeat(seat int) int { return (seat + 1) % len(g.Players) }

// Over reports whether the round reached its terminal state.
func (g *Game) Over() bool { return g.Phase == PhaseRoundOver }

// TotalTiles counts every physical tile across hands, melds, bonus
// piles, discards and both walls. It is constant for the lifetime of a
// round.
func (g *Game) TotalTiles() int {
	n := len(g.Wall) + len(g.DeadWall)
	for _, p := range g.Players {
		n += p.tileFootprint()
	}
	return n
}

// Draw moves the front tile of the live wall into the current player's
// hand, shunting bonus tiles into the bonus pile until a non-bonus tile
// arrives. An emptied wall ends the round as a no-contest.
func (g *Game) Draw(seat int) ([]Event, error) {
	if g.Phase != PhaseDraw {
		return nil, fmt.Errorf("%w: draw in phase %s", ErrPhaseViolation, g.Phase)
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d drawing out of turn", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	var events []Event
	for {
		if len(g.Wall) == 0 {
			return append(events, g.endNoContest()...), nil
		}
		t := g.Wall[0]
		g.Wall = g.Wall[1:]
		if t.IsBonus() {
			p.Bonus = append(p.Bonus, t)
			events = append(events, Event{EventBonusDrawn, BonusDrawnPayload{Seat: seat, Tile: t}})
			continue
		}
		p.Hand = append(p.Hand, t)
		g.Phase = PhasePostDraw
		events = append(events,
			Event{EventTileDrawn, TileDrawnPayload{Seat: seat, Tile: t}},
			g.phaseEvent())
		return events, nil
	}
}

// Discard removes the identified tile from the acting player's hand and
// opens the claim window on it.
func (g *Game) Discard(seat int, tileID int) ([]Event, error) {
	if g.Phase != PhasePostDraw && g.Phase != PhaseDiscard {
		return nil, fmt.Errorf("%w: discard in phase %s", ErrPhaseViolation, g.Phase)
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d discarding out of turn", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	hand, t, ok := removeTileByID(p.Hand, tileID)
	if !ok {
		return nil, fmt.Errorf("%w: tile %d not in hand of seat %d", ErrOwnershipViolation, tileID, seat)
	}
	p.Hand = hand
	p.Discards = append(p.Discards, t)
	g.PendingDiscard = t
	g.Discarder = seat
	g.FirstTurnDone = true
	g.Phase = PhaseClaimWindow

	events := []Event{{EventTileDiscarded, TileDiscardedPayload{Seat: seat, Tile: t}}}
	events = append(events, Event{EventClaimWindowOpened, ClaimWindowOpenedPayload{
		Discarder: seat,
		Tile:      t,
		Eligible:  g.EligibleClaimants(),
	}})
	events = append(events, g.phaseEvent())
	return events, nil
}

// PassClaims resolves a claim window in which every eligible seat
// declined. A pending discard stays in the discarder's history and the
// turn passes; a pending promotion completes and draws its replacement.
func (g *Game) PassClaims() ([]Event, error) {
	if g.Phase != PhaseClaimWindow {
		return nil, fmt.Errorf("%w: pass in phase %s", ErrPhaseViolation, g.Phase)
	}
	if promo := g.Promotion; promo != nil {
		g.Promotion = nil
		return g.kongReplacement(promo.Seat), nil
	}
	g.Current = g.nextSeat(g.Discarder)
	g.Phase = PhaseDraw
	g.Turn++
	return []Event{g.phaseEvent()}, nil
}

// ClaimTriplet forms an exposed triplet from the pending discard and
// two matching hand tiles. The claimant becomes current and must discard.
func (g *Game) ClaimTriplet(seat int) ([]Event, error) {
	if err := g.checkDiscardClaim(seat); err != nil {
		return nil, err
	}
	p := g.Players[seat]
	k := g.PendingDiscard.Kind()
	if p.holdsKind(k) < 2 {
		return nil, fmt.Errorf("%w: seat %d holds fewer than 2 of %s", ErrOwnershipViolation, seat, k)
	}
	hand, taken := takeKind(p.Hand, k, 2)
	p.Hand = hand
	meld := Meld{Kind: MeldTriplet, Tiles: append(taken, g.PendingDiscard)}
	p.Melds = append(p.Melds, meld)
	g.retractDiscard()
	g.Current = seat
	g.Phase = PhaseDiscard
	return []Event{
		{EventMeldDeclared, MeldDeclaredPayload{Seat: seat, Meld: meld}},
		g.phaseEvent(),
	}, nil
}

// ClaimRun forms an exposed run from the pending discard and the two
// supplied hand tiles. Only the seat after the discarder may claim it.
func (g *Game) ClaimRun(seat int, tileA, tileB int) ([]Event, error) {
	if err := g.checkDiscardClaim(seat); err != nil {
		return nil, err
	}
	if seat != g.nextSeat(g.Discarder) {
		return nil, fmt.Errorf("%w: seat %d is not downstream of the discarder", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	hand, a, ok := removeTileByID(p.Hand, tileA)
	if !ok {
		return nil, fmt.Errorf("%w: tile %d not in hand of seat %d", ErrOwnershipViolation, tileA, seat)
	}
	hand, b, ok := removeTileByID(hand, tileB)
	if !ok {
		return nil, fmt.Errorf("%w: tile %d not in hand of seat %d", ErrOwnershipViolation, tileB, seat)
	}
	if !isRun(a, b, g.PendingDiscard) {
		return nil, fmt.Errorf("%w: %s %s %s is not a run", ErrShapeViolation, a, b, g.PendingDiscard)
	}
	p.Hand = hand
	meld := newRun([3]Tile{a, b, g.PendingDiscard}, false)
	p.Melds = append(p.Melds, meld)
	g.retractDiscard()
	g.Current = seat
	g.Phase = PhaseDiscard
	return []Event{
		{EventMeldDeclared, MeldDeclaredPayload{Seat: seat, Meld: meld}},
		g.phaseEvent(),
	}, nil
}

// ClaimKong forms an exposed quad from the pending discard and three
// matching hand tiles, then draws the replacement.
func (g *Game) ClaimKong(seat int) ([]Event, error) {
	if err := g.checkDiscardClaim(seat); err != nil {
		return nil, err
	}
	p := g.Players[seat]
	k := g.PendingDiscard.Kind()
	if p.holdsKind(k) < 3 {
		return nil, fmt.Errorf("%w: seat %d holds fewer than 3 of %s", ErrOwnershipViolation, seat, k)
	}
	hand, taken := takeKind(p.Hand, k, 3)
	p.Hand = hand
	meld := Meld{Kind: MeldQuad, Tiles: append(taken, g.PendingDiscard)}
	p.Melds = append(p.Melds, meld)
	g.retractDiscard()
	g.Current = seat
	events := []Event{{EventMeldDeclared, MeldDeclaredPayload{Seat: seat, Meld: meld}}}
	return append(events, g.kongReplacement(seat)...), nil
}

// ClaimWin wins off the pending discard, or robs a pending kong
// promotion. The won tile moves into the winner's hand.
func (g *Game) ClaimWin(seat int) ([]Event, error) {
	if g.Phase != PhaseClaimWindow {
		return nil, fmt.Errorf("%w: win claim in phase %s", ErrPhaseViolation, g.Phase)
	}
	if promo := g.Promotion; promo != nil {
		if seat == promo.Seat {
			return nil, fmt.Errorf("%w: seat %d cannot rob its own kong", ErrPhaseViolation, seat)
		}
		winner := g.Players[seat]
		analysis := AnalyzeHand(winner.winningTiles(promo.Tile))
		if !analysis.Valid {
			return nil, fmt.Errorf("%w: seat %d cannot win off %s", ErrValidationFailure, seat, promo.Tile)
		}
		// The promotion never completes: the meld reverts to its
		// triplet and the fourth tile goes to the winner.
		owner := g.Players[promo.Seat]
		meld := &owner.Melds[promo.MeldIndex]
		meld.Kind = MeldTriplet
		meld.Tiles = meld.Tiles[:3]
		winner.Hand = append(winner.Hand, promo.Tile)
		g.Promotion = nil
		return g.endWin(Result{
			Winner:       seat,
			Discarder:    promo.Seat,
			RobbedKong:   true,
			FirstTurn:    !g.FirstTurnDone,
			Analysis:     analysis,
			WinningTiles: winner.winningTiles(),
		}), nil
	}

	if err := g.checkDiscardClaim(seat); err != nil {
		return nil, err
	}
	winner := g.Players[seat]
	analysis := AnalyzeHand(winner.winningTiles(g.PendingDiscard))
	if !analysis.Valid {
		return nil, fmt.Errorf("%w: seat %d cannot win off %s", ErrValidationFailure, seat, g.PendingDiscard)
	}
	g.retractDiscard()
	winner.Hand = append(winner.Hand, g.PendingDiscard)
	return g.endWin(Result{
		Winner:       seat,
		Discarder:    g.Discarder,
		FirstTurn:    !g.FirstTurnDone,
		Analysis:     analysis,
		WinningTiles: winner.winningTiles(),
	}), nil
}

// DeclareConcealedKong removes four matching hand tiles into a
// concealed quad and draws the replacement.
func (g *Game) DeclareConcealedKong(seat int, k Kind) ([]Event, error) {
	if g.Phase != PhasePostDraw {
		return nil, fmt.Errorf("%w: concealed kong in phase %s", ErrPhaseViolation, g.Phase)
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d acting out of turn", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	if p.holdsKind(k) != 4 {
		return nil, fmt.Errorf("%w: seat %d does not hold four %s", ErrOwnershipViolation, seat, k)
	}
	hand, taken := takeKind(p.Hand, k, 4)
	p.Hand = hand
	meld := Meld{Kind: MeldQuad, Tiles: taken, Concealed: true}
	p.Melds = append(p.Melds, meld)
	events := []Event{{EventMeldDeclared, MeldDeclaredPayload{Seat: seat, Meld: meld}}}
	return append(events, g.kongReplacement(seat)...), nil
}

// PromoteKong upgrades an exposed triplet with the fourth tile from
// hand, then opens a claim window restricted to win claims: other seats
// may rob the promoted tile before the replacement is drawn.
func (g *Game) PromoteKong(seat int, k Kind) ([]Event, error) {
	if g.Phase != PhasePostDraw {
		return nil, fmt.Errorf("%w: kong promotion in phase %s", ErrPhaseViolation, g.Phase)
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d acting out of turn", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	meldIdx := p.exposedTripletIndex(k)
	if meldIdx < 0 {
		return nil, fmt.Errorf("%w: seat %d has no exposed triplet of %s", ErrOwnershipViolation, seat, k)
	}
	tileIdx := -1
	for i, t := range p.Hand {
		if t.Kind() == k {
			tileIdx = i
			break
		}
	}
	if tileIdx < 0 {
		return nil, fmt.Errorf("%w: seat %d does not hold a fourth %s", ErrOwnershipViolation, seat, k)
	}
	t := p.Hand[tileIdx]
	p.Hand = append(append([]Tile{}, p.Hand[:tileIdx]...), p.Hand[tileIdx+1:]...)
	meld := &p.Melds[meldIdx]
	meld.Kind = MeldQuad
	meld.Tiles = append(meld.Tiles, t)
	g.Promotion = &Promotion{Seat: seat, MeldIndex: meldIdx, Tile: t}
	g.Phase = PhaseClaimWindow

	events := []Event{{EventMeldDeclared, MeldDeclaredPayload{Seat: seat, Meld: *meld}}}
	events = append(events, Event{EventClaimWindowOpened, ClaimWindowOpenedPayload{
		Discarder: seat,
		Tile:      t,
		Eligible:  g.EligibleClaimants(),
		Promotion: true,
	}})
	events = append(events, g.phaseEvent())
	return events, nil
}

// DeclareSelfWin ends the round with a self-drawn win.
func (g *Game) DeclareSelfWin(seat int) ([]Event, error) {
	if g.Phase != PhasePostDraw {
		return nil, fmt.Errorf("%w: self-drawn win in phase %s", ErrPhaseViolation, g.Phase)
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d acting out of turn", ErrPhaseViolation, seat)
	}
	p := g.Players[seat]
	analysis := AnalyzeHand(p.winningTiles())
	if !analysis.Valid {
		return nil, fmt.Errorf("%w: seat %d hand does not validate", ErrValidationFailure, seat)
	}
	return g.endWin(Result{
		Winner:       seat,
		Discarder:    -1,
		SelfDrawn:    true,
		FirstTurn:    !g.FirstTurnDone,
		Analysis:     analysis,
		WinningTiles: p.winningTiles(),
	}), nil
}

// kongReplacement draws from the back of the dead wall after any quad
// formation, cascading bonus tiles into the actor's pile. An empty dead
// wall ends the round as a no-contest.
func (g *Game) kongReplacement(seat int) []Event {
	p := g.Players[seat]
	var events []Event
	for {
		if len(g.DeadWall) == 0 {
			return append(events, g.endNoContest()...)
		}
		t := g.DeadWall[len(g.DeadWall)-1]
		g.DeadWall = g.DeadWall[:len(g.DeadWall)-1]
		if t.IsBonus() {
			p.Bonus = append(p.Bonus, t)
			events = append(events, Event{EventBonusDrawn, BonusDrawnPayload{Seat: seat, Tile: t, FromDeadWall: true}})
			continue
		}
		p.Hand = append(p.Hand, t)
		g.Current = seat
		g.Phase = PhasePostDraw
		events = append(events,
			Event{EventKongReplacement, KongReplacementPayload{Seat: seat, Tile: t}},
			g.phaseEvent())
		return events
	}
}

// checkDiscardClaim validates the common preconditions of claims
// against a pending discard.
func (g *Game) checkDiscardClaim(seat int) error {
	if g.Phase != PhaseClaimWindow {
		return fmt.Errorf("%w: claim in phase %s", ErrPhaseViolation, g.Phase)
	}
	if g.Promotion != nil {
		return fmt.Errorf("%w: only win claims may interrupt a kong promotion", ErrPhaseViolation)
	}
	if seat == g.Discarder {
		return fmt.Errorf("%w: seat %d cannot claim its own discard", ErrPhaseViolation, seat)
	}
	return nil
}

// retractDiscard removes the claimed tile from the discarder's history:
// a used discard is no longer part of the visible pond.
func (g *Game) retractDiscard() {
	d := g.Players[g.Discarder]
	d.Discards = d.Discards[:len(d.Discards)-1]
}

func (g *Game) endWin(r Result) []Event {
	g.Result = &r
	g.Phase = PhaseRoundOver
	return []Event{g.phaseEvent(), {EventRoundOver, RoundOverPayload{Result: r}}}
}

func (g *Game) endNoContest() []Event {
	r := Result{NoContest: true, Winner: -1, Discarder: -1}
	g.Result = &r
	g.Phase = PhaseRoundOver
	return []Event{g.phaseEvent(), {EventRoundOver, RoundOverPayload{Result: r}}}
}

func (g *Game) phaseEvent() Event {
	return Event{EventPhaseChanged, PhaseChangedPayload{Phase: g.Phase, Current: g.Current}}
}
