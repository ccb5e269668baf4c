package nakama

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"mahjong/internal/app"
	"mahjong/internal/bot"
	"mahjong/internal/domain"
	"mahjong/internal/ports"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

type mockEconomy struct {
	updates [][]ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates)
	return nil
}

// testPresence is a minimal runtime.Presence.
type testPresence struct {
	userID string
}

func (p testPresence) GetUserId() string                 { return p.userID }
func (p testPresence) GetSessionId() string              { return "session-" + p.userID }
func (p testPresence) GetNodeId() string                 { return "node" }
func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return true }
func (p testPresence) GetUsername() string               { return p.userID }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// testMatchData is a minimal runtime.MatchData.
type testMatchData struct {
	testPresence
	opCode int64
	data   []byte
}

func (m testMatchData) GetOpCode() int64      { return m.opCode }
func (m testMatchData) GetData() []byte       { return m.data }
func (m testMatchData) GetReliable() bool     { return true }
func (m testMatchData) GetReceiveTime() int64 { return 0 }

func newLobbyState() *MatchState {
	return &MatchState{
		OwnerSeat: -1,
		RoundWind: domain.East,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		Bots:      make(map[string]*bot.Agent),
	}
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2, "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1, "user-2", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  bool
	}{
		{
			name:  "BotsOnly",
			seats: []string{bot1, bot2, "", ""},
			want:  true,
		},
		{
			name:  "HumansPresent",
			seats: []string{bot1, "user-1", "", ""},
			want:  false,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := shouldTerminateNoHumans(test.seats); got != test.want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestBuildLabel(t *testing.T) {
	tests := []struct {
		name     string
		state    *MatchState
		expected string
	}{
		{
			name: "LobbyState",
			state: &MatchState{
				Seats: [4]string{"user-1", "", "", ""},
			},
			expected: `{"game":"mahjong","open":3,"state":"lobby"}`,
		},
		{
			name: "PlayingState",
			state: &MatchState{
				Seats: [4]string{"user-1", "user-2", "user-3", "user-4"},
				Table: &app.Table{},
			},
			expected: `{"game":"mahjong","open":0,"state":"playing"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			label, err := buildLabel(test.state)
			if err != nil {
				t.Fatalf("buildLabel: %v", err)
			}
			var compact bytes.Buffer
			if err := json.Compact(&compact, []byte(label)); err != nil {
				t.Fatalf("Failed to compact label JSON: %v", err)
			}
			if compact.String() != test.expected {
				t.Errorf("Got %s, want %s", compact.String(), test.expected)
			}
		})
	}
}

func TestProcessBots_FillsSeatsForSoloHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "", "", ""}
	state.BotsEnabled = true
	state.BotAutoFillDelay = 2
	state.LastSinglePlayerTick = 8
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}
	if botCount != 3 {
		t.Fatalf("Expected 3 bots, got %d", botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected no open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected label update after auto-fill")
	}
}

func TestProcessBots_WaitsForAutoFillDelay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "", "", ""}
	state.BotsEnabled = true
	state.BotAutoFillDelay = 5
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.LastSinglePlayerTick != 10 {
		t.Fatalf("Expected timer armed at tick 10, got %d", state.LastSinglePlayerTick)
	}
	if state.GetOpenSeatsCount() != 3 {
		t.Fatalf("Expected no auto-fill before the delay elapses")
	}
}

func TestMatchJoin_AssignsSeatsAndOwner(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()

	result := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{testPresence{userID: "user-1"}, testPresence{userID: "user-2"}})

	matchState := result.(*MatchState)
	if matchState.Seats[0] != "user-1" || matchState.Seats[1] != "user-2" {
		t.Fatalf("Seats = %v", matchState.Seats)
	}
	if matchState.OwnerSeat != 0 {
		t.Fatalf("OwnerSeat = %d, want 0", matchState.OwnerSeat)
	}
	if dispatcher.broadcastCount != 2 {
		t.Fatalf("broadcastCount = %d, want 2 join events", dispatcher.broadcastCount)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected label update on join")
	}
}

func TestMatchLeave_TerminatesWithoutHumans(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "", "", ""}
	state.OwnerSeat = 0
	state.Presences["user-1"] = testPresence{userID: "user-1"}

	result := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state,
		[]runtime.Presence{testPresence{userID: "user-1"}})

	if result != nil {
		t.Fatalf("Expected match termination with no humans left, got %v", result)
	}
}

func TestHandleStartRound_OwnerOnly(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "user-2", "", ""}
	state.OwnerSeat = 0
	state.BotsEnabled = true

	handler.handleStartRound(context.Background(), state, dispatcher, noopLogger{},
		testMatchData{testPresence: testPresence{userID: "user-2"}, opCode: OpStartRound})
	if state.Table != nil {
		t.Fatalf("Non-owner must not start a round")
	}

	handler.handleStartRound(context.Background(), state, dispatcher, noopLogger{},
		testMatchData{testPresence: testPresence{userID: "user-1"}, opCode: OpStartRound})
	if state.Table == nil {
		t.Fatalf("Owner start request was rejected")
	}
	for i, seat := range state.Seats {
		if seat == "" {
			t.Fatalf("Seat %d left empty after bot fill", i)
		}
	}
	// RoundStarted and TurnChanged broadcast; private deals target
	// disconnected users and are suppressed.
	if dispatcher.broadcastCount < 2 {
		t.Fatalf("broadcastCount = %d, want at least 2", dispatcher.broadcastCount)
	}
}

func TestHandleGameAction_BadPayloadSendsError(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "user-2", "user-3", "user-4"}
	state.OwnerSeat = 0
	state.Presences["user-1"] = testPresence{userID: "user-1"}

	table, _, err := state.App.StartRound(state.Seats, 0, domain.East)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	state.Table = table

	handler.handleGameAction(context.Background(), state, dispatcher, noopLogger{},
		testMatchData{testPresence: testPresence{userID: "user-1"}, opCode: OpGameAction, data: []byte("not json")})

	if dispatcher.lastOpCode != OpGameError {
		t.Fatalf("lastOpCode = %d, want %d", dispatcher.lastOpCode, OpGameError)
	}
	if state.Table.Game.Turn != 1 {
		t.Fatalf("Game state advanced on a bad payload")
	}
}

func TestSettlementUpdates(t *testing.T) {
	handler := &matchHandler{}
	state := newLobbyState()
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID
	state.Table = &app.Table{UserIDs: [4]string{"user-1", "user-2", bot1, bot2}}

	t.Run("SelfDrawnEverySeatPays", func(t *testing.T) {
		result := &domain.Result{Winner: 0, Discarder: -1, SelfDrawn: true}
		updates := handler.settlementUpdates(context.Background(), state, result, ports.HandScore{Points: 2}, 100)

		byUser := make(map[string]int64)
		for _, u := range updates {
			byUser[u.UserID] = u.Amount
		}
		if len(updates) != 2 {
			t.Fatalf("updates = %d, want 2 (bots hold no wallets)", len(updates))
		}
		if byUser["user-2"] != -200 {
			t.Errorf("user-2 delta = %d, want -200", byUser["user-2"])
		}
		// Winner collects from all three seats, bots included.
		if byUser["user-1"] != 600 {
			t.Errorf("user-1 delta = %d, want 600", byUser["user-1"])
		}
	})

	t.Run("DiscarderPaysAlone", func(t *testing.T) {
		result := &domain.Result{Winner: 1, Discarder: 0, SelfDrawn: false}
		updates := handler.settlementUpdates(context.Background(), state, result, ports.HandScore{Points: 3}, 100)

		byUser := make(map[string]int64)
		for _, u := range updates {
			byUser[u.UserID] = u.Amount
		}
		if len(updates) != 2 {
			t.Fatalf("updates = %d, want 2", len(updates))
		}
		if byUser["user-1"] != -300 || byUser["user-2"] != 300 {
			t.Errorf("deltas = %v", byUser)
		}
	})

	t.Run("BotDiscarderStillFundsWinner", func(t *testing.T) {
		result := &domain.Result{Winner: 1, Discarder: 2, SelfDrawn: false}
		updates := handler.settlementUpdates(context.Background(), state, result, ports.HandScore{Points: 1}, 100)

		if len(updates) != 1 {
			t.Fatalf("updates = %d, want 1", len(updates))
		}
		if updates[0].UserID != "user-2" || updates[0].Amount != 100 {
			t.Errorf("update = %+v", updates[0])
		}
	})
}

func TestFinishRoundIfOver_RotatesDealAndSettles(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	economy := &mockEconomy{}
	state := newLobbyState()
	state.Seats = [4]string{"user-1", "user-2", "user-3", "user-4"}
	state.Economy = economy
	state.Scorer = ports.NewBasicScorer()
	state.Dealer = 1

	table, _, err := state.App.StartRound(state.Seats, 1, domain.East)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	state.Table = table
	table.Game.Phase = domain.PhaseRoundOver
	table.Game.Result = &domain.Result{NoContest: true, Winner: -1, Discarder: -1}

	handler.finishRoundIfOver(context.Background(), state, dispatcher, noopLogger{})

	if state.Table != nil {
		t.Fatalf("Table not cleared after round end")
	}
	if state.Dealer != 2 {
		t.Fatalf("Dealer = %d, want rotation to 2 on no-contest", state.Dealer)
	}
	if len(economy.updates) != 0 {
		t.Fatalf("No settlement expected for a no-contest draw")
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected label update back to lobby")
	}
}
