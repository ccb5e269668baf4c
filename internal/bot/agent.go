package bot

import "mahjong/internal/domain"

// Agent represents an autonomous seat. Strategy failures degrade to
// Fallback so a flaky remote service never stalls the table.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
	Fallback Brain
}

// NewAgent builds an agent with an EasyBrain fallback.
func NewAgent(id, name string, strategy Brain) *Agent {
	return &Agent{ID: id, Name: name, Strategy: strategy, Fallback: &EasyBrain{}}
}

// Decide picks the agent's action. The primary strategy is consulted
// first; on error the fallback decides instead, and only a double
// failure propagates.
func (a *Agent) Decide(game *domain.Game, seat int, legal []domain.Action) (domain.Action, string, error) {
	if a.Strategy != nil {
		action, rationale, err := a.Strategy.Decide(game, seat, legal)
		if err == nil && action != nil {
			return action, rationale, nil
		}
	}
	if a.Fallback == nil {
		return (&EasyBrain{}).Decide(game, seat, legal)
	}
	return a.Fallback.Decide(game, seat, legal)
}
