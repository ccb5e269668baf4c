package bot

import botinternal "mahjong/internal/bot/internal"

// DefaultTuning balances set preservation against hand flexibility.
// Pairs outweigh run fragments so the evaluator keeps its wait alive;
// lone honors shed first.
var DefaultTuning = botinternal.Weights{
	PairBonus:        2.0,
	TripletBonus:     3.0,
	AdjacentBonus:    1.0,
	GapBonus:         0.4,
	LoneHonorPenalty: 1.5,
	TerminalPenalty:  0.3,
}
