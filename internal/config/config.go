package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type StakeTier struct {
	ID        string `json:"id"`
	BaseStake int64  `json:"base_stake"`
}

type GameConfig struct {
	DefaultTier string      `json:"default_tier"`
	Tiers       []StakeTier `json:"tiers"`
	// ClaimWindowSeconds bounds how long seats may sit on an open
	// claim window before silence counts as declining.
	ClaimWindowSeconds  int `json:"claim_window_seconds"`
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetClaimWindowSeconds returns the configured claim deadline, with a
// safe default when no config is loaded.
func GetClaimWindowSeconds() int {
	if cfg == nil || cfg.ClaimWindowSeconds <= 0 {
		return 8
	}
	return cfg.ClaimWindowSeconds
}

// GetBaseStake returns the per-point stake for a given tier ID, or the
// default if not found.
func GetBaseStake(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.BaseStake
		}
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.BaseStake
		}
	}
	return 100
}
