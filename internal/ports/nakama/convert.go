package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"mahjong/internal/app"
	"mahjong/internal/domain"
)

// The wire format is protojson-encoded structpb payloads. Clients see
// stable JSON field names; the server keeps protobuf framing without a
// per-message schema.

func tileMap(t domain.Tile) map[string]interface{} {
	return map[string]interface{}{
		"id":    t.ID,
		"suit":  int(t.Suit),
		"value": t.Value,
	}
}

func tileList(tiles []domain.Tile) []interface{} {
	out := make([]interface{}, len(tiles))
	for i, t := range tiles {
		out[i] = tileMap(t)
	}
	return out
}

func meldMap(m domain.Meld) map[string]interface{} {
	return map[string]interface{}{
		"kind":      m.Kind.String(),
		"tiles":     tileList(m.Tiles),
		"concealed": m.Concealed,
	}
}

func intList(ints []int) []interface{} {
	out := make([]interface{}, len(ints))
	for i, n := range ints {
		out[i] = n
	}
	return out
}

func resultMap(r domain.Result) map[string]interface{} {
	return map[string]interface{}{
		"no_contest":       r.NoContest,
		"winner":           r.Winner,
		"discarder":        r.Discarder,
		"self_drawn":       r.SelfDrawn,
		"robbed_kong":      r.RobbedKong,
		"first_turn":       r.FirstTurn,
		"seven_pairs":      r.Analysis.SevenPairs,
		"thirteen_orphans": r.Analysis.ThirteenOrphans,
		"winning_tiles":    tileList(r.WinningTiles),
	}
}

// eventToWire maps an app event to its opcode and wire payload.
func eventToWire(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		opCode = OpPlayerJoined
		fields = map[string]interface{}{"user_id": p.UserID, "seat": p.Seat}
	case app.PlayerLeftPayload:
		opCode = OpPlayerLeft
		fields = map[string]interface{}{"user_id": p.UserID, "seat": p.Seat}
	case app.RoundStartedPayload:
		winds := make([]interface{}, len(p.SeatWinds))
		for i, w := range p.SeatWinds {
			winds[i] = w.String()
		}
		users := make([]interface{}, len(p.UserIDs))
		for i, id := range p.UserIDs {
			users[i] = id
		}
		opCode = OpRoundStarted
		fields = map[string]interface{}{
			"dealer":     p.Dealer,
			"round_wind": p.RoundWind.String(),
			"seat_winds": winds,
			"user_ids":   users,
		}
	case app.HandDealtPayload:
		opCode = OpHandDealt
		fields = map[string]interface{}{
			"seat":  p.Seat,
			"hand":  tileList(p.Hand),
			"bonus": tileList(p.Bonus),
		}
	case app.TileDrawnPayload:
		opCode = OpTileDrawn
		fields = map[string]interface{}{"seat": p.Seat}
		if p.Tile != (domain.Tile{}) {
			fields["tile"] = tileMap(p.Tile)
		}
	case app.BonusDrawnPayload:
		opCode = OpBonusDrawn
		fields = map[string]interface{}{
			"seat":           p.Seat,
			"tile":           tileMap(p.Tile),
			"from_dead_wall": p.FromDeadWall,
		}
	case app.TileDiscardedPayload:
		opCode = OpTileDiscarded
		fields = map[string]interface{}{"seat": p.Seat, "tile": tileMap(p.Tile)}
	case app.MeldDeclaredPayload:
		opCode = OpMeldDeclared
		fields = map[string]interface{}{"seat": p.Seat, "meld": meldMap(p.Meld)}
	case app.KongReplacementPayload:
		opCode = OpKongReplacement
		fields = map[string]interface{}{"seat": p.Seat}
		if p.Tile != (domain.Tile{}) {
			fields["tile"] = tileMap(p.Tile)
		}
	case app.ClaimWindowPayload:
		opCode = OpClaimWindow
		fields = map[string]interface{}{
			"discarder": p.Discarder,
			"tile":      tileMap(p.Tile),
			"eligible":  intList(p.Eligible),
			"promotion": p.Promotion,
		}
	case app.TurnChangedPayload:
		opCode = OpTurnChanged
		fields = map[string]interface{}{
			"phase":   string(p.Phase),
			"current": p.Current,
			"turn":    p.Turn,
		}
	case app.RoundOverPayload:
		hands := make([]interface{}, len(p.Hands))
		for i, h := range p.Hands {
			hands[i] = tileList(h)
		}
		opCode = OpRoundOver
		fields = map[string]interface{}{
			"result": resultMap(p.Result),
			"hands":  hands,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event payload %T", ev.Payload)
	}

	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("building %s payload: %w", ev.Kind, err)
	}
	data, err := protojson.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling %s payload: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// errorToWire builds the payload for OpGameError.
func errorToWire(code int, message string) ([]byte, error) {
	payload, err := structpb.NewStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(payload)
}

// actionFromWire decodes a client game action. Numeric fields arrive
// as JSON numbers; missing fields decode to zero.
func actionFromWire(data []byte) (domain.Action, error) {
	var payload structpb.Struct
	if err := protojson.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding action: %w", err)
	}
	fields := payload.AsMap()
	name, _ := fields["action"].(string)
	num := func(key string) int {
		f, _ := fields[key].(float64)
		return int(f)
	}
	kind := func() domain.Kind {
		return domain.Kind{Suit: domain.Suit(num("suit")), Value: num("value")}
	}

	switch name {
	case "draw":
		return domain.DrawAction{}, nil
	case "discard":
		return domain.DiscardAction{TileID: num("tile_id")}, nil
	case "concealed_kong":
		return domain.ConcealedKongAction{Kind: kind()}, nil
	case "promote_kong":
		return domain.PromoteKongAction{Kind: kind()}, nil
	case "self_win":
		return domain.SelfWinAction{}, nil
	case "claim_triplet":
		return domain.ClaimTripletAction{}, nil
	case "claim_run":
		return domain.ClaimRunAction{TileA: num("tile_a"), TileB: num("tile_b")}, nil
	case "claim_kong":
		return domain.ClaimKongAction{}, nil
	case "claim_win":
		return domain.ClaimWinAction{}, nil
	case "pass":
		return domain.PassAction{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", name)
	}
}
