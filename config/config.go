package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Relational store. Optional: when empty the ledger runs against the
	// key/value store alone, with the weaker read-modify-write semantics.
	DatabaseURL string

	// Key/value store configuration
	RedisAddr     string
	RedisPassword string

	// MirrorWrites controls whether successful relational balance writes are
	// fanned out to the key/value mirror. Explicit so tests can exercise both
	// paths deterministically.
	MirrorWrites bool

	// Game configuration
	StartingBalance int64
	MaxBalance      int64
	MinSpinStake    int64
	MinDuelAmount   int64
	DuelTTL         time.Duration
	DuelCooldown    time.Duration
	ClaimTTL        time.Duration

	// Environment
	Environment string // "development", "production", or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Stores
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		MirrorWrites:  true,

		// Game settings with defaults
		StartingBalance: 10000,
		MaxBalance:      10000000,
		MinSpinStake:    10,
		MinDuelAmount:   10,
		DuelTTL:         120 * time.Second,
		DuelCooldown:    300 * time.Second,
		ClaimTTL:        5 * time.Second,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.RedisAddr == "" {
		config.RedisAddr = "localhost:6379"
	}
	if os.Getenv("MIRROR_WRITES") == "false" {
		config.MirrorWrites = false
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if max := os.Getenv("MAX_BALANCE"); max != "" {
		if parsed, err := strconv.ParseInt(max, 10, 64); err == nil {
			config.MaxBalance = parsed
		}
	}
	if stake := os.Getenv("MIN_SPIN_STAKE"); stake != "" {
		if parsed, err := strconv.ParseInt(stake, 10, 64); err == nil {
			config.MinSpinStake = parsed
		}
	}
	if min := os.Getenv("MIN_DUEL_AMOUNT"); min != "" {
		if parsed, err := strconv.ParseInt(min, 10, 64); err == nil {
			config.MinDuelAmount = parsed
		}
	}
	if ttl := os.Getenv("DUEL_TTL_SECONDS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil {
			config.DuelTTL = time.Duration(parsed) * time.Second
		}
	}
	if cooldown := os.Getenv("DUEL_COOLDOWN_SECONDS"); cooldown != "" {
		if parsed, err := strconv.Atoi(cooldown); err == nil {
			config.DuelCooldown = time.Duration(parsed) * time.Second
		}
	}
	if claim := os.Getenv("CLAIM_TTL_SECONDS"); claim != "" {
		if parsed, err := strconv.Atoi(claim); err == nil {
			config.ClaimTTL = time.Duration(parsed) * time.Second
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
	}

	return config, nil
}
