package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"mahjong/internal/domain"
)

// RemoteConfig points a RemoteBrain at an external decision service.
type RemoteConfig struct {
	Endpoint string
	Issuer   string
	Secret   string
	Timeout  time.Duration
}

const defaultRemoteTimeout = 2 * time.Second

// RemoteBrain delegates decisions to an external service over HTTP.
// Requests carry a short-lived HS256 token so the service can reject
// unsigned callers. Any transport or protocol failure surfaces as an
// error; the agent falls back to a local brain.
type RemoteBrain struct {
	cfg    RemoteConfig
	client *http.Client
}

func NewRemoteBrain(cfg RemoteConfig) *RemoteBrain {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRemoteTimeout
	}
	return &RemoteBrain{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type remoteRequest struct {
	Seat     int               `json:"seat"`
	Phase    domain.Phase      `json:"phase"`
	Turn     int               `json:"turn"`
	Hand     []remoteTile      `json:"hand"`
	Discards [][]remoteTile    `json:"discards"`
	Legal    []json.RawMessage `json:"legal"`
}

type remoteTile struct {
	ID    int `json:"id"`
	Suit  int `json:"suit"`
	Value int `json:"value"`
}

// remoteDecision is both the wire form of a legal action offered to the
// service and the decision it returns.
type remoteDecision struct {
	Action    string `json:"action"`
	TileID    int    `json:"tile_id,omitempty"`
	TileA     int    `json:"tile_a,omitempty"`
	TileB     int    `json:"tile_b,omitempty"`
	Suit      int    `json:"suit,omitempty"`
	Value     int    `json:"value,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

func (b *RemoteBrain) Decide(game *domain.Game, seat int, legal []domain.Action) (domain.Action, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)
	defer cancel()

	payload, err := b.buildRequest(game, seat, legal)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	token, err := b.signToken(seat)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("remote brain request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("remote brain status %d", resp.StatusCode)
	}
	var decision remoteDecision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, "", fmt.Errorf("remote brain response: %w", err)
	}
	action, err := decision.toAction()
	if err != nil {
		return nil, "", err
	}
	if !actionOffered(legal, action) {
		return nil, "", fmt.Errorf("remote brain chose %s, not offered", decision.Action)
	}
	return action, decision.Rationale, nil
}

func (b *RemoteBrain) buildRequest(game *domain.Game, seat int, legal []domain.Action) ([]byte, error) {
	req := remoteRequest{
		Seat:  seat,
		Phase: game.Phase,
		Turn:  game.Turn,
	}
	for _, t := range game.Players[seat].Hand {
		req.Hand = append(req.Hand, remoteTile{ID: t.ID, Suit: int(t.Suit), Value: t.Value})
	}
	for _, p := range game.Players {
		var pond []remoteTile
		for _, t := range p.Discards {
			pond = append(pond, remoteTile{ID: t.ID, Suit: int(t.Suit), Value: t.Value})
		}
		req.Discards = append(req.Discards, pond)
	}
	for _, a := range legal {
		raw, err := json.Marshal(encodeAction(a))
		if err != nil {
			return nil, err
		}
		req.Legal = append(req.Legal, raw)
	}
	return json.Marshal(req)
}

func (b *RemoteBrain) signToken(seat int) (string, error) {
	claims := jwt.MapClaims{
		"iss": b.cfg.Issuer,
		"sub": fmt.Sprintf("seat-%d", seat),
		"exp": time.Now().Add(time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(b.cfg.Secret))
}

func encodeAction(a domain.Action) remoteDecision {
	switch v := a.(type) {
	case domain.DrawAction:
		return remoteDecision{Action: "draw"}
	case domain.DiscardAction:
		return remoteDecision{Action: "discard", TileID: v.TileID}
	case domain.ConcealedKongAction:
		return remoteDecision{Action: "concealed_kong", Suit: int(v.Kind.Suit), Value: v.Kind.Value}
	case domain.PromoteKongAction:
		return remoteDecision{Action: "promote_kong", Suit: int(v.Kind.Suit), Value: v.Kind.Value}
	case domain.SelfWinAction:
		return remoteDecision{Action: "self_win"}
	case domain.ClaimTripletAction:
		return remoteDecision{Action: "claim_triplet"}
	case domain.ClaimRunAction:
		return remoteDecision{Action: "claim_run", TileA: v.TileA, TileB: v.TileB}
	case domain.ClaimKongAction:
		return remoteDecision{Action: "claim_kong"}
	case domain.ClaimWinAction:
		return remoteDecision{Action: "claim_win"}
	case domain.PassAction:
		return remoteDecision{Action: "pass"}
	}
	return remoteDecision{}
}

func (d remoteDecision) toAction() (domain.Action, error) {
	switch d.Action {
	case "draw":
		return domain.DrawAction{}, nil
	case "discard":
		return domain.DiscardAction{TileID: d.TileID}, nil
	case "concealed_kong":
		return domain.ConcealedKongAction{Kind: domain.Kind{Suit: domain.Suit(d.Suit), Value: d.Value}}, nil
	case "promote_kong":
		return domain.PromoteKongAction{Kind: domain.Kind{Suit: domain.Suit(d.Suit), Value: d.Value}}, nil
	case "self_win":
		return domain.SelfWinAction{}, nil
	case "claim_triplet":
		return domain.ClaimTripletAction{}, nil
	case "claim_run":
		return domain.ClaimRunAction{TileA: d.TileA, TileB: d.TileB}, nil
	case "claim_kong":
		return domain.ClaimKongAction{}, nil
	case "claim_win":
		return domain.ClaimWinAction{}, nil
	case "pass":
		return domain.PassAction{}, nil
	default:
		return nil, fmt.Errorf("remote brain returned unknown action %q", d.Action)
	}
}

// actionOffered checks the decision against the offered list. Run
// claims may use any tile pair, so they match on type alone.
func actionOffered(legal []domain.Action, chosen domain.Action) bool {
	for _, a := range legal {
		if a == chosen {
			return true
		}
		_, offeredRun := a.(domain.ClaimRunAction)
		_, chosenRun := chosen.(domain.ClaimRunAction)
		if offeredRun && chosenRun {
			return true
		}
	}
	return false
}
