package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the bot account pool. Difficulty maps to
// a strategy tier via LevelForDifficulty.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

type identityPool struct {
	identities []BotIdentity
	byUserID   map[string]BotIdentity
}

var (
	pool          identityPool
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("reading bot identities: %w", err)
			return
		}
		if err := json.Unmarshal(data, &pool.identities); err != nil {
			loadErr = fmt.Errorf("unmarshaling bot identities: %w", err)
			return
		}
		pool.byUserID = make(map[string]BotIdentity, len(pool.identities))
		for _, identity := range pool.identities {
			if identity.UserID != "" {
				pool.byUserID[identity.UserID] = identity
			}
		}
	})
	return loadErr
}

// ProvisionBots ensures the pool's accounts exist in Nakama and carry
// the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	provisionOnce.Do(func() {
		for i := range pool.identities {
			identity := &pool.identities[i]
			if identity.DeviceID == "" {
				continue
			}
			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: authenticate %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: update account %s: %v", userID, err)
			}
			pool.byUserID[identity.UserID] = *identity
			logger.Info("ProvisionBots: bot %s (%s) ready, difficulty %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
	return nil
}

// GetBotConfig returns the identity for a bot user ID.
func GetBotConfig(userID string) (BotIdentity, bool) {
	identity, ok := pool.byUserID[userID]
	return identity, ok
}

// GetBotIdentity returns an identity by index (mod pool size). An
// empty pool yields a synthetic identity so local runs still work.
func GetBotIdentity(index int) BotIdentity {
	if len(pool.identities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	return pool.identities[index%len(pool.identities)]
}

// GetBotDisplayName returns the display name for a bot ID, falling
// back to the username, or empty for non-bots.
func GetBotDisplayName(userID string) string {
	identity, ok := pool.byUserID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// IsBot reports whether the user ID belongs to the bot pool. Synthetic
// identities minted by GetBotIdentity carry a "bot-" prefix.
func IsBot(userID string) bool {
	if _, ok := pool.byUserID[userID]; ok {
		return true
	}
	return strings.HasPrefix(userID, "bot-")
}

// AgentFor builds an agent for the identity, wiring its difficulty to
// a strategy tier. remote may be nil.
func AgentFor(identity BotIdentity, remote *RemoteConfig) (*Agent, error) {
	brain, err := NewBrain(LevelForDifficulty(identity.Difficulty), remote)
	if err != nil {
		return nil, err
	}
	return NewAgent(identity.UserID, identity.DisplayName, brain), nil
}
