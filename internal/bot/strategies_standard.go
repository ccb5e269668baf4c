package bot

import (
	"fmt"

	botinternal "mahjong/internal/bot/internal"
	"mahjong/internal/domain"
)

// StandardBrain plays a shape-aware game: wins and kongs are always
// taken, triplet and run claims only when they do not strand the
// hand's pair, and discards come from the usefulness evaluator.
type StandardBrain struct {
	Tuning botinternal.Weights
}

func NewStandardBrain() *StandardBrain {
	return &StandardBrain{Tuning: DefaultTuning}
}

func (b *StandardBrain) Decide(game *domain.Game, seat int, legal []domain.Action) (domain.Action, string, error) {
	if len(legal) == 0 {
		return nil, "", fmt.Errorf("no legal action for seat %d", seat)
	}
	hand := game.Players[seat].Hand

	// Wins and kongs first, in the order LegalActions ranks them.
	for _, a := range legal {
		switch a.(type) {
		case domain.SelfWinAction, domain.ClaimWinAction:
			return a, "winning hand", nil
		case domain.ConcealedKongAction, domain.ClaimKongAction, domain.PromoteKongAction:
			return a, "kong with replacement draw", nil
		}
	}

	if game.Phase == domain.PhaseClaimWindow {
		claimed := game.PendingDiscard.Kind()
		for _, a := range legal {
			switch a.(type) {
			case domain.ClaimTripletAction:
				// Exposing the hand's only pair as a triplet leaves no wait.
				if claimed.IsHonor() || botinternal.KeepsPairIntact(hand, claimed) {
					return a, "triplet keeps hand shape", nil
				}
			case domain.ClaimRunAction:
				if botinternal.KeepsPairIntact(hand, claimed) {
					return a, "run keeps hand shape", nil
				}
			}
		}
		for _, a := range legal {
			if _, ok := a.(domain.PassAction); ok {
				return a, "claim would strand the pair", nil
			}
		}
		return legal[0], "", nil
	}

	for _, a := range legal {
		if _, ok := a.(domain.DrawAction); ok {
			return a, "", nil
		}
	}

	var canDiscard bool
	for _, a := range legal {
		if _, ok := a.(domain.DiscardAction); ok {
			canDiscard = true
			break
		}
	}
	if canDiscard && len(hand) > 0 {
		return domain.DiscardAction{TileID: botinternal.BestDiscard(hand, b.Tuning).ID}, "least useful tile", nil
	}
	return legal[0], "", nil
}
