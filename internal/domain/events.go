package domain

// EventKind identifies an observable engine occurrence.
type EventKind string

const (
	EventTileDrawn         EventKind = "tile_drawn"
	EventBonusDrawn        EventKind = "bonus_drawn"
	EventTileDiscarded     EventKind = "tile_discarded"
	EventMeldDeclared      EventKind = "meld_declared"
	EventKongReplacement   EventKind = "kong_replacement"
	EventClaimWindowOpened EventKind = "claim_window_opened"
	EventPhaseChanged      EventKind = "phase_changed"
	EventRoundOver         EventKind = "round_over"
)

// Event is a typed notification emitted by a transition, in order, for
// UI and telemetry collaborators. The engine never consumes its own
// events.
type Event struct {
	Kind    EventKind
	Payload any
}

type TileDrawnPayload struct {
	Seat int
	Tile Tile
}

type BonusDrawnPayload struct {
	Seat         int
	Tile         Tile
	FromDeadWall bool
}

type TileDiscardedPayload struct {
	Seat int
	Tile Tile
}

type MeldDeclaredPayload struct {
	Seat int
	Meld Meld
}

type KongReplacementPayload struct {
	Seat int
	Tile Tile
}

// ClaimWindowOpenedPayload announces a pending discard, or a kong
// promotion that may still be robbed, to the seats that may respond.
type ClaimWindowOpenedPayload struct {
	Discarder int
	Tile      Tile
	Eligible  []int
	Promotion bool
}

type PhaseChangedPayload struct {
	Phase   Phase
	Current int
}

type RoundOverPayload struct {
	Result Result
}
