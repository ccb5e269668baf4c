package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"mahjong/internal/app"
	"mahjong/internal/bot"
	"mahjong/internal/config"
	"mahjong/internal/domain"
	"mahjong/internal/ports"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [4]string   `json:"seats"`      // Array of user IDs, empty string means seat is empty
	OwnerSeat int         `json:"owner_seat"` // Seat index of the match owner
	Dealer    int         `json:"dealer"`     // Seat that deals the next round
	RoundWind domain.Wind `json:"round_wind"`
	Tick      int64       `json:"tick"`

	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Table     *app.Table                  `json:"-"` // Current active round (nil if in lobby)

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64 `json:"bot_wait_until"`          // Tick when the next bot acts
	ClaimDeadlineTick    int64 `json:"claim_deadline_tick"`     // Tick when an open claim window force-resolves
	LastSinglePlayerTick int64 `json:"last_single_player_tick"` // Tick when a single player started waiting

	Bots        map[string]*bot.Agent `json:"-"`
	RemoteBrain *bot.RemoteConfig     `json:"-"`
	Economy     ports.EconomyPort     `json:"-"`
	Scorer      ports.Scorer          `json:"-"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		OwnerSeat: -1,
		RoundWind: domain.East,
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
		Scorer:    ports.NewBasicScorer(),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["mahjong_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["mahjong_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["mahjong_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["mahjong_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if endpoint, ok := env["mahjong_brain_endpoint"]; ok && endpoint != "" {
		state.RemoteBrain = &bot.RemoteConfig{
			Endpoint: endpoint,
			Issuer:   env["mahjong_brain_issuer"],
			Secret:   env["mahjong_brain_secret"],
		}
	}

	// Defaults if not set
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}
	if cfg := config.GetGameConfig(); cfg != nil && cfg.BotAutoFillDelaySeconds > 0 {
		state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
	}

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to displace (lobby only).
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Table == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	var joined []app.Event
	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := -1
		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				// Reconnect, seat retained.
				assigned = i
				break
			}
		}
		if assigned < 0 {
			for i, seatUserId := range matchState.Seats {
				if seatUserId == "" {
					matchState.Seats[i] = p.GetUserId()
					assigned = i
					break
				}
			}
		}
		if assigned < 0 && matchState.Table == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = i
					break
				}
			}
		}
		if assigned < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
		joined = append(joined, app.Event{
			Kind:    app.EventPlayerJoined,
			Payload: app.PlayerJoinedPayload{UserID: p.GetUserId(), Seat: assigned},
		})
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.dispatchEvents(matchState, dispatcher, logger, joined)

	return matchState
}

// MatchLeave is called when one or more players leave the match. A
// seat vacated mid-round is handed to a bot so the round can finish.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	var left []app.Event
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId != p.GetUserId() {
				continue
			}
			left = append(left, app.Event{
				Kind:    app.EventPlayerLeft,
				Payload: app.PlayerLeftPayload{UserID: p.GetUserId(), Seat: i},
			})
			if matchState.Table != nil && matchState.BotsEnabled {
				if botID := mh.seatBot(matchState, i, logger); botID != "" {
					matchState.Table.UserIDs[i] = botID
					logger.Info("MatchLeave: Bot %s takes over seat %d mid-round.", botID, i)
					break
				}
			}
			matchState.Seats[i] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
			break
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.dispatchEvents(matchState, dispatcher, logger, left)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(ctx, matchState, dispatcher, logger, msg)
		case OpGameAction:
			mh.handleGameAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceClaimDeadline(ctx, matchState, dispatcher, logger)
	mh.pumpEngine(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// pumpEngine advances engine-owned transitions (wall draws) until the
// round waits on seat input or ends.
func (mh *matchHandler) pumpEngine(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for state.Table != nil {
		status, _, events, err := state.App.Step(state.Table)
		if err != nil {
			logger.Error("pumpEngine: %v", err)
			return
		}
		mh.dispatchEvents(state, dispatcher, logger, events)
		if status == app.StatusRoundOver {
			mh.finishRoundIfOver(ctx, state, dispatcher, logger)
			return
		}
		if status != app.StatusAdvanced {
			return
		}
	}
}

// enforceClaimDeadline force-resolves a claim window whose deadline
// passed, treating silent seats as declining.
func (mh *matchHandler) enforceClaimDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Table == nil || len(state.Table.AwaitingClaims()) == 0 {
		state.ClaimDeadlineTick = 0
		return
	}
	if state.ClaimDeadlineTick == 0 {
		state.ClaimDeadlineTick = state.Tick + int64(config.GetClaimWindowSeconds())
		return
	}
	if state.Tick < state.ClaimDeadlineTick {
		return
	}
	state.ClaimDeadlineTick = 0
	events, err := state.App.ResolveClaimTimeout(state.Table)
	if err != nil {
		logger.Error("enforceClaimDeadline: %v", err)
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
	mh.finishRoundIfOver(ctx, state, dispatcher, logger)
}

// seatBot puts a bot agent into the seat and returns its user ID.
func (mh *matchHandler) seatBot(state *MatchState, seat int, logger runtime.Logger) string {
	identity := bot.GetBotIdentity(seat)
	if identity.UserID == "" {
		// Pool entry was never provisioned; fall back to a synthetic id.
		identity = bot.BotIdentity{UserID: fmt.Sprintf("bot-%d", seat), DisplayName: identity.DisplayName, Difficulty: identity.Difficulty}
	}
	agent, err := bot.AgentFor(identity, state.RemoteBrain)
	if err != nil {
		logger.Error("seatBot: Failed to create agent for %s: %v", identity.UserID, err)
		return ""
	}
	state.Seats[seat] = identity.UserID
	state.Bots[identity.UserID] = agent
	return identity.UserID
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots when a lone human waits too long.
	if state.Table == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						if botID := mh.seatBot(state, i, logger); botID != "" {
							logger.Info("processBots: Added bot %s to seat %d", botID, i)
							added = true
						}
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	game := state.Table.Game
	if game.Over() {
		return
	}

	// 2. Claim windows: every awaiting bot seat answers at once.
	if awaiting := state.Table.AwaitingClaims(); len(awaiting) > 0 {
		var botSeats []int
		for _, seat := range awaiting {
			if isBotUserId(state.Table.UserIDs[seat]) {
				botSeats = append(botSeats, seat)
			}
		}
		if len(botSeats) == 0 {
			return
		}
		if !mh.botDelayElapsed(state, logger) {
			return
		}
		for _, seat := range botSeats {
			mh.actAsBot(ctx, state, dispatcher, logger, seat)
			if state.Table == nil || state.Table.Game.Over() {
				return
			}
		}
		return
	}

	// 3. Regular turns.
	currentSeat := game.Current
	if !isBotUserId(state.Table.UserIDs[currentSeat]) {
		state.BotWaitUntil = 0
		return
	}
	if !mh.botDelayElapsed(state, logger) {
		return
	}
	mh.actAsBot(ctx, state, dispatcher, logger, currentSeat)
}

// botDelayElapsed arms a randomized delay on first call and reports
// whether it has passed.
func (mh *matchHandler) botDelayElapsed(state *MatchState, logger runtime.Logger) bool {
	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot acts at tick %d (current %d)", state.BotWaitUntil, state.Tick)
		return false
	}
	if state.Tick < state.BotWaitUntil {
		return false
	}
	state.BotWaitUntil = 0
	return true
}

func (mh *matchHandler) actAsBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	botID := state.Table.UserIDs[seat]
	agent, exists := state.Bots[botID]
	if !exists {
		identity, _ := bot.GetBotConfig(botID)
		var err error
		agent, err = bot.AgentFor(identity, state.RemoteBrain)
		if err != nil {
			logger.Error("actAsBot: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[botID] = agent
	}

	legal := state.Table.Game.LegalActions(seat)
	if len(legal) == 0 {
		return
	}
	action, rationale, err := agent.Decide(state.Table.Game, seat, legal)
	if err != nil {
		logger.Error("actAsBot: Bot %s failed to decide: %v", botID, err)
		return
	}
	if rationale != "" {
		logger.Debug("actAsBot: Bot %s seat %d: %s", botID, seat, rationale)
	}
	events, err := state.App.HandleAction(state.Table, botID, action)
	if err != nil {
		logger.Error("actAsBot: Bot %s action %T rejected: %v", botID, action, err)
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
	mh.finishRoundIfOver(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handleStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := -1
	for i, seatUserId := range state.Seats {
		if seatUserId == senderID {
			senderSeat = i
			break
		}
	}

	logger.Info("StartRound: Request from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Table != nil {
		logger.Warn("StartRound: Round already in progress.")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartRound: User %s tried to start but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	// Fill remaining seats with bots when allowed; a round cannot run
	// short-handed.
	if state.BotsEnabled {
		for i, seat := range state.Seats {
			if seat == "" {
				mh.seatBot(state, i, logger)
			}
		}
	}
	if state.GetOccupiedSeatCount() < app.RequiredPlayers {
		logger.Warn("StartRound: Cannot start with %d players. Need %d.", state.GetOccupiedSeatCount(), app.RequiredPlayers)
		return
	}

	table, events, err := state.App.StartRound(state.Seats, state.Dealer, state.RoundWind)
	if err != nil {
		logger.Error("StartRound: %v", err)
		return
	}
	state.Table = table
	state.ClaimDeadlineTick = 0
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(state, dispatcher, logger, events)
	logger.Info("StartRound: Round started, dealer seat %d, round wind %s.", state.Dealer, state.RoundWind)
}

func (mh *matchHandler) handleGameAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Table == nil {
		logger.Warn("handleGameAction: No round in progress.")
		return
	}

	action, err := actionFromWire(msg.GetData())
	if err != nil {
		logger.Warn("handleGameAction: Bad payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.HandleAction(state.Table, senderID, action)
	if err != nil {
		logger.Warn("handleGameAction: User %s action %T rejected: %v", senderID, action, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(state, dispatcher, logger, events)
	mh.finishRoundIfOver(ctx, state, dispatcher, logger)
}

// finishRoundIfOver settles a terminal round, rotates the deal and
// returns the match to the lobby.
func (mh *matchHandler) finishRoundIfOver(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Table == nil || !state.Table.Game.Over() {
		return
	}
	game := state.Table.Game
	result := game.Result

	if !result.NoContest && state.Scorer != nil && state.Economy != nil {
		score := state.Scorer.ScoreWin(game, *result)
		stake := config.GetBaseStake("")
		winnerID := state.Table.UserAt(result.Winner)
		logger.Info("Settlement: winner %s scores %d points (%v)", winnerID, score.Points, score.Breakdown)

		updates := mh.settlementUpdates(ctx, state, result, score, stake)
		if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("Settlement: Failed to update balances: %v", err)
		}
	}

	// The dealer keeps the deal on a dealer win; otherwise it rotates,
	// and the round wind advances when the deal comes back around.
	if result.NoContest || result.Winner != state.Dealer {
		state.Dealer = (state.Dealer + 1) % 4
		if state.Dealer == 0 {
			if state.RoundWind == domain.North {
				state.RoundWind = domain.East
			} else {
				state.RoundWind++
			}
		}
	}

	state.Table = nil
	state.ClaimDeadlineTick = 0
	state.BotWaitUntil = 0
	mh.updateLabel(state, dispatcher, logger)
}

// settlementUpdates turns a score into wallet deltas: every seat pays
// on a self-drawn win, otherwise the discarder (or robbed promoter)
// pays alone. Bots hold no wallets.
func (mh *matchHandler) settlementUpdates(ctx context.Context, state *MatchState, result *domain.Result, score ports.HandScore, stake int64) []ports.WalletUpdate {
	amount := int64(score.Points) * stake
	meta := func(reason string) map[string]interface{} {
		return map[string]interface{}{
			"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
			"reason":   reason,
		}
	}

	var updates []ports.WalletUpdate
	credit := int64(0)
	debit := func(seat int, amt int64) {
		userID := state.Table.UserAt(seat)
		credit += amt
		if isBotUserId(userID) {
			return
		}
		updates = append(updates, ports.WalletUpdate{UserID: userID, Amount: -amt, Metadata: meta("round_loss")})
	}

	if result.SelfDrawn {
		for seat := range state.Table.UserIDs {
			if seat != result.Winner {
				debit(seat, amount)
			}
		}
	} else {
		debit(result.Discarder, amount)
	}

	winnerID := state.Table.UserAt(result.Winner)
	if !isBotUserId(winnerID) {
		updates = append(updates, ports.WalletUpdate{UserID: winnerID, Amount: credit, Metadata: meta("round_win")})
	}
	return updates
}

// dispatchEvents converts app events to wire payloads and broadcasts
// them, honoring targeted recipients.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, data, err := eventToWire(ev)
		if err != nil {
			logger.Error("dispatchEvents: %v", err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// If we had intended recipients but none are connected
			// (e.g. they are bots), we MUST NOT broadcast to everyone.
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("dispatchEvents: Broadcast failed: %v", err)
		}
	}
}

// sendError sends an error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := errorToWire(code, message)
	if err != nil {
		logger.Error("sendError: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("sendError: Cannot send to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func buildLabel(state *MatchState) (string, error) {
	phase := "lobby"
	if state.Table != nil {
		phase = "playing"
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"state":                 phase,
		"game":                  "mahjong",
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
