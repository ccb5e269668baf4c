package app

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong/internal/domain"
)

var testUsers = [4]string{"u0", "u1", "u2", "u3"}

func tilesOf(startID int, kinds ...domain.Kind) []domain.Tile {
	out := make([]domain.Tile, len(kinds))
	for i, k := range kinds {
		out[i] = domain.Tile{ID: startID + i, Suit: k.Suit, Value: k.Value}
	}
	return out
}

func repKind(k domain.Kind, n int) []domain.Kind {
	out := make([]domain.Kind, n)
	for i := range out {
		out[i] = k
	}
	return out
}

// scriptedTable builds a table around a hand-assembled game so tests
// control every tile.
func scriptedTable() (*Table, *domain.Game) {
	g := &domain.Game{Phase: domain.PhaseDraw, Turn: 1, RoundWind: domain.East}
	for seat := range g.Players {
		g.Players[seat] = &domain.Player{Seat: seat, SeatWind: domain.Wind(seat + 1)}
	}
	return &Table{Game: g, UserIDs: testUsers}, g
}

func TestStartRound(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(11)))

	_, _, err := svc.StartRound([4]string{"u0", "", "u2", "u3"}, 0, domain.East)
	require.ErrorIs(t, err, ErrSeatsNotFull)

	table, events, err := svc.StartRound(testUsers, 1, domain.East)
	require.NoError(t, err)
	require.Equal(t, domain.PhasePostDraw, table.Game.Phase)

	var started, turn int
	dealt := map[string]int{}
	for _, ev := range events {
		switch ev.Kind {
		case EventRoundStarted:
			started++
			payload := ev.Payload.(RoundStartedPayload)
			assert.Equal(t, 1, payload.Dealer)
			assert.Equal(t, domain.East, payload.SeatWinds[1])
			assert.Empty(t, ev.Recipients, "round start is broadcast")
		case EventHandDealt:
			payload := ev.Payload.(HandDealtPayload)
			require.Len(t, ev.Recipients, 1, "hands are private")
			assert.Equal(t, testUsers[payload.Seat], ev.Recipients[0])
			dealt[ev.Recipients[0]] = len(payload.Hand)
		case EventTurnChanged:
			turn++
		}
	}
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, turn)
	require.Len(t, dealt, 4)
	assert.Equal(t, 14, dealt["u1"], "dealer holds the extra tile")
	assert.Equal(t, 13, dealt["u0"])
}

func TestHandleActionDrawRedaction(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	g.Players[0].Hand = tilesOf(1, domain.Kind{Suit: domain.SuitCharacters, Value: 1})
	g.Wall = tilesOf(10, domain.Kind{Suit: domain.SuitDots, Value: 6})
	g.Current = 0

	events, err := svc.HandleAction(table, "u0", domain.DrawAction{})
	require.NoError(t, err)

	var private, public *TileDrawnPayload
	for _, ev := range events {
		if ev.Kind != EventTileDrawn {
			continue
		}
		payload := ev.Payload.(TileDrawnPayload)
		if len(ev.Recipients) == 1 && ev.Recipients[0] == "u0" {
			private = &payload
		} else if len(ev.Recipients) == 0 {
			public = &payload
		}
	}
	require.NotNil(t, private)
	require.NotNil(t, public)
	assert.Equal(t, 10, private.Tile.ID)
	assert.Zero(t, public.Tile, "broadcast copy must not reveal the tile")
}

func TestHandleActionRejectsUnknownUser(t *testing.T) {
	svc := NewService(nil)
	table, _ := scriptedTable()
	_, err := svc.HandleAction(table, "stranger", domain.DrawAction{})
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestClaimWindowCollectsAllResponses(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	dotsFive := domain.Kind{Suit: domain.SuitDots, Value: 5}
	g.Players[0].Hand = tilesOf(1, dotsFive, domain.Kind{Suit: domain.SuitCharacters, Value: 1})
	// Seat 1 downstream can run, seat 2 can triplet.
	g.Players[1].Hand = tilesOf(10,
		domain.Kind{Suit: domain.SuitDots, Value: 4},
		domain.Kind{Suit: domain.SuitDots, Value: 6})
	g.Players[2].Hand = tilesOf(20, dotsFive, dotsFive)
	g.Phase = domain.PhasePostDraw
	g.Current = 0

	_, err := svc.HandleAction(table, "u0", domain.DiscardAction{TileID: 1})
	require.NoError(t, err)
	require.Equal(t, domain.PhaseClaimWindow, g.Phase)
	assert.ElementsMatch(t, []int{1, 2}, table.AwaitingClaims())

	// First response alone must not resolve the window.
	events, err := svc.HandleAction(table, "u1", domain.ClaimRunAction{TileA: 10, TileB: 11})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, []int{2}, table.AwaitingClaims())

	// A duplicate response is rejected.
	_, err = svc.HandleAction(table, "u1", domain.PassAction{})
	require.ErrorIs(t, err, ErrAlreadyResponded)

	// The second response resolves the window as a whole: the triplet
	// outranks the run even though the run arrived first.
	events, err = svc.HandleAction(table, "u2", domain.ClaimTripletAction{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.PhaseDiscard, g.Phase)
	assert.Equal(t, 2, g.Current, "triplet beats the earlier run response")
	require.Len(t, g.Players[2].Melds, 1)
	assert.Equal(t, domain.MeldTriplet, g.Players[2].Melds[0].Kind)
	assert.Empty(t, g.Players[1].Melds)
}

func TestClaimWindowIneligibleSeat(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	g.Players[0].Hand = tilesOf(1, domain.Kind{Suit: domain.SuitDots, Value: 5})
	g.Players[2].Hand = tilesOf(20,
		domain.Kind{Suit: domain.SuitDots, Value: 5},
		domain.Kind{Suit: domain.SuitDots, Value: 5})
	g.Phase = domain.PhasePostDraw
	g.Current = 0

	_, err := svc.HandleAction(table, "u0", domain.DiscardAction{TileID: 1})
	require.NoError(t, err)

	// Seat 3 holds nothing claimable; its pass is not collectable.
	_, err = svc.HandleAction(table, "u3", domain.PassAction{})
	require.ErrorIs(t, err, ErrNotEligible)
}

func TestClaimWindowAutoPassesWhenNobodyCanClaim(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	g.Players[0].Hand = tilesOf(1, domain.Kind{Suit: domain.SuitWinds, Value: int(domain.West)})
	g.Wall = tilesOf(50, domain.Kind{Suit: domain.SuitBamboo, Value: 3})
	g.Phase = domain.PhasePostDraw
	g.Current = 0

	events, err := svc.HandleAction(table, "u0", domain.DiscardAction{TileID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDraw, g.Phase, "unclaimable window resolves immediately")
	assert.Equal(t, 1, g.Current)
	assert.Nil(t, table.AwaitingClaims())

	var sawWindow bool
	for _, ev := range events {
		if ev.Kind == EventClaimWindow {
			sawWindow = true
		}
	}
	assert.True(t, sawWindow, "window open is still announced")
}

func TestResolveClaimTimeout(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	dotsFive := domain.Kind{Suit: domain.SuitDots, Value: 5}
	g.Players[0].Hand = tilesOf(1, dotsFive)
	g.Players[2].Hand = tilesOf(20, dotsFive, dotsFive)
	g.Phase = domain.PhasePostDraw
	g.Current = 0

	_, err := svc.ResolveClaimTimeout(table)
	require.ErrorIs(t, err, ErrNoClaimWindow)

	_, err = svc.HandleAction(table, "u0", domain.DiscardAction{TileID: 1})
	require.NoError(t, err)
	require.Equal(t, []int{2}, table.AwaitingClaims())

	// Deadline: silence counts as declining.
	_, err = svc.ResolveClaimTimeout(table)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDraw, g.Phase)
	assert.Equal(t, 1, g.Current)
	assert.Len(t, g.Players[0].Discards, 1, "unclaimed discard stays in the pond")
}

func TestRoundOverRevealsHands(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	winning := tilesOf(1, append(append(append(
		repKind(domain.Kind{Suit: domain.SuitBamboo, Value: 1}, 3),
		repKind(domain.Kind{Suit: domain.SuitBamboo, Value: 2}, 3)...),
		repKind(domain.Kind{Suit: domain.SuitBamboo, Value: 3}, 3)...),
		repKind(domain.Kind{Suit: domain.SuitDots, Value: 1}, 3)...)...)
	winning = append(winning, tilesOf(40,
		domain.Kind{Suit: domain.SuitDots, Value: 2},
		domain.Kind{Suit: domain.SuitDots, Value: 2})...)
	g.Players[3].Hand = winning
	g.Phase = domain.PhasePostDraw
	g.Current = 3

	events, err := svc.HandleAction(table, "u3", domain.SelfWinAction{})
	require.NoError(t, err)
	require.True(t, g.Over())

	var payload *RoundOverPayload
	for _, ev := range events {
		if ev.Kind == EventRoundOver {
			p := ev.Payload.(RoundOverPayload)
			payload = &p
		}
	}
	require.NotNil(t, payload)
	assert.Equal(t, 3, payload.Result.Winner)
	assert.True(t, payload.Result.SelfDrawn)
	assert.Len(t, payload.Hands[3], 14)
}

func TestStepAdvancesDrawsAndReportsWaits(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	g.Current = 2
	g.Players[2].Hand = tilesOf(1, repKind(domain.Kind{Suit: domain.SuitDots, Value: 1}, 4)...)
	g.Wall = tilesOf(50, domain.Kind{Suit: domain.SuitBamboo, Value: 9})

	status, seats, events, err := svc.Step(table)
	require.NoError(t, err)
	assert.Equal(t, StatusAdvanced, status)
	assert.Empty(t, seats)
	require.NotEmpty(t, events, "the draw must be observable")
	assert.Equal(t, domain.PhasePostDraw, g.Phase)

	// The seat now owes a decision; stepping again makes no progress.
	status, seats, events, err = svc.Step(table)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingInput, status)
	assert.Equal(t, []int{2}, seats)
	assert.Empty(t, events)
	assert.Equal(t, domain.PhasePostDraw, g.Phase, "step is read-only while waiting")
}

func TestStepEndsRoundOnExhaustedWall(t *testing.T) {
	svc := NewService(nil)
	table, g := scriptedTable()
	g.Current = 1

	status, _, events, err := svc.Step(table)
	require.NoError(t, err)
	assert.Equal(t, StatusRoundOver, status)
	require.True(t, g.Over())
	assert.True(t, g.Result.NoContest)
	require.NotEmpty(t, events)

	status, _, _, err = svc.Step(table)
	require.NoError(t, err)
	assert.Equal(t, StatusRoundOver, status, "terminal state is stable")
}
