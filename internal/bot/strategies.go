package bot

import (
	"fmt"

	"mahjong/internal/domain"
)

// EasyBrain plays the minimum viable game: it takes a win when offered,
// declines every other claim, and sheds the first tile it may discard.
type EasyBrain struct{}

func (b *EasyBrain) Decide(game *domain.Game, seat int, legal []domain.Action) (domain.Action, string, error) {
	for _, a := range legal {
		switch a.(type) {
		case domain.SelfWinAction, domain.ClaimWinAction:
			return a, "winning hand", nil
		}
	}
	for _, a := range legal {
		if _, ok := a.(domain.DrawAction); ok {
			return a, "", nil
		}
	}
	for _, a := range legal {
		if _, ok := a.(domain.PassAction); ok {
			return a, "declines claims", nil
		}
	}
	for _, a := range legal {
		if _, ok := a.(domain.DiscardAction); ok {
			return a, "sheds first tile", nil
		}
	}
	if len(legal) == 0 {
		return nil, "", fmt.Errorf("no legal action for seat %d", seat)
	}
	return legal[0], "", nil
}
