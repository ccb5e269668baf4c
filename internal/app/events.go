package app

import "mahjong/internal/domain"

// EventKind identifies emitted table events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventRoundStarted    EventKind = "round_started"
	EventHandDealt       EventKind = "hand_dealt"
	EventTileDrawn       EventKind = "tile_drawn"
	EventBonusDrawn      EventKind = "bonus_drawn"
	EventTileDiscarded   EventKind = "tile_discarded"
	EventMeldDeclared    EventKind = "meld_declared"
	EventKongReplacement EventKind = "kong_replacement"
	EventClaimWindow     EventKind = "claim_window"
	EventTurnChanged     EventKind = "turn_changed"
	EventRoundOver       EventKind = "round_over"
)

// Event is a table event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
}

type PlayerLeftPayload struct {
	UserID string
	Seat   int
}

type RoundStartedPayload struct {
	Dealer    int
	RoundWind domain.Wind
	SeatWinds [4]domain.Wind
	UserIDs   [4]string
}

// HandDealtPayload is sent only to its owner.
type HandDealtPayload struct {
	Seat  int
	Hand  []domain.Tile
	Bonus []domain.Tile
}

// TileDrawnPayload carries the drawn tile only on the copy targeted at
// the drawer; the broadcast copy leaves Tile zero.
type TileDrawnPayload struct {
	Seat int
	Tile domain.Tile
}

type BonusDrawnPayload struct {
	Seat         int
	Tile         domain.Tile
	FromDeadWall bool
}

type TileDiscardedPayload struct {
	Seat int
	Tile domain.Tile
}

type MeldDeclaredPayload struct {
	Seat int
	Meld domain.Meld
}

// KongReplacementPayload mirrors TileDrawnPayload's redaction: the
// replacement tile rides only the targeted copy.
type KongReplacementPayload struct {
	Seat int
	Tile domain.Tile
}

type ClaimWindowPayload struct {
	Discarder int
	Tile      domain.Tile
	Eligible  []int
	Promotion bool
}

type TurnChangedPayload struct {
	Phase   domain.Phase
	Current int
	Turn    int
}

type RoundOverPayload struct {
	Result domain.Result
	Hands  [4][]domain.Tile // all hands revealed at showdown
}
