package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"mahjong/internal/domain"
)

var (
	ErrSeatsNotFull     = errors.New("all four seats must be occupied")
	ErrUnknownPlayer    = errors.New("player not found")
	ErrRoundOver        = errors.New("round already over")
	ErrNoClaimWindow    = errors.New("no claim window open")
	ErrNotEligible      = errors.New("seat has no claim on the window")
	ErrAlreadyResponded = errors.New("seat already responded to the window")
)

// Table binds one round of play to the users seated at it.
type Table struct {
	Game    *domain.Game
	UserIDs [4]string

	claims *claimCollector
}

// Seat returns the seat index of the user, or false.
func (t *Table) Seat(userID string) (int, bool) {
	for seat, id := range t.UserIDs {
		if id == userID {
			return seat, true
		}
	}
	return 0, false
}

// UserAt returns the user ID seated at the index.
func (t *Table) UserAt(seat int) string { return t.UserIDs[seat] }

// AwaitingClaims lists the seats whose claim-window response is still
// outstanding. Empty outside a claim window.
func (t *Table) AwaitingClaims() []int {
	if t.claims == nil {
		return nil
	}
	return t.claims.outstanding()
}

// claimCollector gathers one response per eligible seat so the window
// resolves against every claim at once, never first-come-first-served.
type claimCollector struct {
	eligible  []int
	responses map[int]domain.Action
}

func newClaimCollector(eligible []int) *claimCollector {
	return &claimCollector{eligible: eligible, responses: make(map[int]domain.Action, len(eligible))}
}

func (c *claimCollector) submit(seat int, action domain.Action) error {
	found := false
	for _, s := range c.eligible {
		if s == seat {
			found = true
			break
		}
	}
	if !found {
		return ErrNotEligible
	}
	if _, dup := c.responses[seat]; dup {
		return ErrAlreadyResponded
	}
	c.responses[seat] = action
	return nil
}

func (c *claimCollector) complete() bool { return len(c.responses) == len(c.eligible) }

func (c *claimCollector) outstanding() []int {
	var seats []int
	for _, s := range c.eligible {
		if _, ok := c.responses[s]; !ok {
			seats = append(seats, s)
		}
	}
	return seats
}

func (c *claimCollector) collected() []domain.ClaimResponse {
	out := make([]domain.ClaimResponse, 0, len(c.responses))
	for _, s := range c.eligible {
		if a, ok := c.responses[s]; ok {
			out = append(out, domain.ClaimResponse{Seat: s, Action: a})
		}
	}
	return out
}

// Service contains the table use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a
// time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// StartRound deals a fresh round for the seated users. The dealer takes
// East and acts first from the extra fourteenth tile.
func (s *Service) StartRound(userIDs [4]string, dealer int, roundWind domain.Wind) (*Table, []Event, error) {
	for _, id := range userIDs {
		if id == "" {
			return nil, nil, ErrSeatsNotFull
		}
	}
	game := domain.Deal(s.rng, dealer, roundWind)
	table := &Table{Game: game, UserIDs: userIDs}

	var winds [4]domain.Wind
	for seat, p := range game.Players {
		winds[seat] = p.SeatWind
	}
	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Dealer:    dealer,
			RoundWind: roundWind,
			SeatWinds: winds,
			UserIDs:   userIDs,
		},
	}}
	for seat, p := range game.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Seat:  seat,
				Hand:  append([]domain.Tile{}, p.Hand...),
				Bonus: append([]domain.Tile{}, p.Bonus...),
			},
			Recipients: []string{userIDs[seat]},
		})
	}
	events = append(events, Event{
		Kind:    EventTurnChanged,
		Payload: TurnChangedPayload{Phase: game.Phase, Current: game.Current, Turn: game.Turn},
	})
	return table, events, nil
}

// Status is the outcome of a Step call.
type Status int

const (
	// StatusAdvanced means the engine made progress on its own.
	StatusAdvanced Status = iota
	// StatusAwaitingInput means one or more seats must choose an action.
	StatusAwaitingInput
	// StatusRoundOver means the round reached a terminal state.
	StatusRoundOver
)

// Step advances the round through the transitions that need no
// decision: wall draws belong to the engine, not the seat. When the
// round is instead waiting on choices it reports whose, so any runtime
// (tick loop, event loop, single-threaded poller) can drive play.
func (s *Service) Step(t *Table) (Status, []int, []Event, error) {
	g := t.Game
	switch {
	case g.Over():
		return StatusRoundOver, nil, nil, nil
	case g.Phase == domain.PhaseDraw:
		domainEvents, err := g.Apply(g.Current, domain.DrawAction{})
		if err != nil {
			return StatusAwaitingInput, nil, nil, err
		}
		events, err := s.postProcess(t, domainEvents)
		if err != nil {
			return StatusAwaitingInput, nil, nil, err
		}
		if g.Over() {
			return StatusRoundOver, nil, events, nil
		}
		return StatusAdvanced, nil, events, nil
	case g.Phase == domain.PhaseClaimWindow:
		return StatusAwaitingInput, t.AwaitingClaims(), nil, nil
	default:
		return StatusAwaitingInput, []int{g.Current}, nil, nil
	}
}

// HandleAction routes a user's action into the round. Outside a claim
// window the action applies immediately; inside one it is collected and
// the window resolves once every eligible seat has responded.
func (s *Service) HandleAction(t *Table, userID string, action domain.Action) ([]Event, error) {
	seat, ok := t.Seat(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if t.Game.Over() {
		return nil, ErrRoundOver
	}

	if t.Game.Phase == domain.PhaseClaimWindow {
		return s.submitClaim(t, seat, action)
	}

	domainEvents, err := t.Game.Apply(seat, action)
	if err != nil {
		return nil, err
	}
	return s.postProcess(t, domainEvents)
}

// ResolveClaimTimeout closes an open claim window on deadline: seats
// that never responded are treated as declining.
func (s *Service) ResolveClaimTimeout(t *Table) ([]Event, error) {
	if t.claims == nil {
		return nil, ErrNoClaimWindow
	}
	return s.resolveWindow(t)
}

func (s *Service) submitClaim(t *Table, seat int, action domain.Action) ([]Event, error) {
	if t.claims == nil {
		return nil, ErrNoClaimWindow
	}
	if err := t.Game.ValidateClaim(seat, action); err != nil {
		return nil, err
	}
	if err := t.claims.submit(seat, action); err != nil {
		return nil, err
	}
	if !t.claims.complete() {
		return nil, nil
	}
	return s.resolveWindow(t)
}

// resolveWindow arbitrates the collected responses and applies the
// winning claim, or passes the window when every response declined.
func (s *Service) resolveWindow(t *Table) ([]Event, error) {
	origin := t.Game.Discarder
	if t.Game.Promotion != nil {
		origin = t.Game.Promotion.Seat
	}
	responses := t.claims.collected()
	t.claims = nil

	winner, claimed := domain.ResolveClaims(origin, responses)
	var domainEvents []domain.Event
	var err error
	if claimed {
		domainEvents, err = t.Game.Apply(winner.Seat, winner.Action)
	} else {
		domainEvents, err = t.Game.PassClaims()
	}
	if err != nil {
		return nil, fmt.Errorf("resolving claim window: %w", err)
	}
	return s.postProcess(t, domainEvents)
}

// postProcess translates domain events for dispatch and opens or
// auto-passes a fresh claim window. A window nobody can claim resolves
// immediately rather than stalling on a deadline.
func (s *Service) postProcess(t *Table, domainEvents []domain.Event) ([]Event, error) {
	events := s.translate(t, domainEvents)
	if t.Game.Phase != domain.PhaseClaimWindow {
		t.claims = nil
		return events, nil
	}
	eligible := t.Game.EligibleClaimants()
	if len(eligible) == 0 {
		passed, err := t.Game.PassClaims()
		if err != nil {
			return nil, err
		}
		more, err := s.postProcess(t, passed)
		if err != nil {
			return nil, err
		}
		return append(events, more...), nil
	}
	t.claims = newClaimCollector(eligible)
	return events, nil
}

func (s *Service) translate(t *Table, domainEvents []domain.Event) []Event {
	var events []Event
	for _, ev := range domainEvents {
		switch p := ev.Payload.(type) {
		case domain.TileDrawnPayload:
			events = append(events,
				Event{Kind: EventTileDrawn, Payload: TileDrawnPayload{Seat: p.Seat, Tile: p.Tile}, Recipients: []string{t.UserAt(p.Seat)}},
				Event{Kind: EventTileDrawn, Payload: TileDrawnPayload{Seat: p.Seat}})
		case domain.BonusDrawnPayload:
			events = append(events, Event{Kind: EventBonusDrawn, Payload: BonusDrawnPayload{Seat: p.Seat, Tile: p.Tile, FromDeadWall: p.FromDeadWall}})
		case domain.TileDiscardedPayload:
			events = append(events, Event{Kind: EventTileDiscarded, Payload: TileDiscardedPayload{Seat: p.Seat, Tile: p.Tile}})
		case domain.MeldDeclaredPayload:
			events = append(events, Event{Kind: EventMeldDeclared, Payload: MeldDeclaredPayload{Seat: p.Seat, Meld: p.Meld}})
		case domain.KongReplacementPayload:
			events = append(events,
				Event{Kind: EventKongReplacement, Payload: KongReplacementPayload{Seat: p.Seat, Tile: p.Tile}, Recipients: []string{t.UserAt(p.Seat)}},
				Event{Kind: EventKongReplacement, Payload: KongReplacementPayload{Seat: p.Seat}})
		case domain.ClaimWindowOpenedPayload:
			events = append(events, Event{Kind: EventClaimWindow, Payload: ClaimWindowPayload{
				Discarder: p.Discarder,
				Tile:      p.Tile,
				Eligible:  p.Eligible,
				Promotion: p.Promotion,
			}})
		case domain.PhaseChangedPayload:
			events = append(events, Event{Kind: EventTurnChanged, Payload: TurnChangedPayload{
				Phase:   p.Phase,
				Current: p.Current,
				Turn:    t.Game.Turn,
			}})
		case domain.RoundOverPayload:
			var hands [4][]domain.Tile
			for seat, pl := range t.Game.Players {
				hands[seat] = append([]domain.Tile{}, pl.Hand...)
			}
			events = append(events, Event{Kind: EventRoundOver, Payload: RoundOverPayload{Result: p.Result, Hands: hands}})
		}
	}
	return events
}
