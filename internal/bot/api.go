package bot

import "mahjong/internal/domain"

// BotLevel selects a strategy tier.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelStandard
	BotLevelRemote
)

// Brain is the interface that all bot strategies implement. Decide
// picks one of the legal actions for the seat and may attach a short
// human-readable rationale; legal is never empty.
type Brain interface {
	Decide(game *domain.Game, seat int, legal []domain.Action) (domain.Action, string, error)
}

// LevelForDifficulty maps an identity's difficulty label to a tier.
func LevelForDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "hard":
		return BotLevelRemote
	case "medium":
		return BotLevelStandard
	default:
		return BotLevelEasy
	}
}
