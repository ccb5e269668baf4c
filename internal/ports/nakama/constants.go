package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameMahjong is the authoritative match handler name registered with Nakama.
	MatchNameMahjong = "mahjong_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound int64 = 1
	OpGameAction int64 = 2

	// Server -> Client events
	OpPlayerJoined    int64 = 101
	OpPlayerLeft      int64 = 102
	OpRoundStarted    int64 = 103
	OpHandDealt       int64 = 104 // send privately
	OpTileDrawn       int64 = 105
	OpBonusDrawn      int64 = 106
	OpTileDiscarded   int64 = 107
	OpMeldDeclared    int64 = 108
	OpKongReplacement int64 = 109
	OpClaimWindow     int64 = 110
	OpTurnChanged     int64 = 111
	OpRoundOver       int64 = 112
	OpGameError       int64 = 120
)
