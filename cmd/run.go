package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"slotbot/bot"
	"slotbot/config"
	"slotbot/database"
	"slotbot/events"
	"slotbot/repository"
	"slotbot/service"
	"slotbot/slots"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting slotbot...")

	cfg := config.Get()

	// The relational store is optional. Without it the ledger runs against
	// the key/value store alone and history tables are unavailable.
	var db *database.DB
	var playerRepo service.PlayerRepository
	var historyRepo service.BalanceHistoryRepository
	var duelLogRepo service.DuelLogRepository

	if cfg.DatabaseURL != "" {
		log.Info("Connecting to relational store...")
		if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		var err error
		db, err = database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		playerRepo = repository.NewPlayerRepository(db)
		historyRepo = repository.NewBalanceHistoryRepository(db)
		duelLogRepo = repository.NewDuelLogRepository(db)
		log.Info("Relational store connected")
	} else {
		log.Warn("DATABASE_URL not set; running on the key/value store alone")
	}

	log.Info("Connecting to key/value store...")
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Key/value store connected")

	eventBus := events.NewBus()

	cacheRepo := repository.NewBalanceCacheRepository(redisClient)
	duelRepo := repository.NewDuelRepository(redisClient)

	log.Info("Initializing services...")
	ledgerService := service.NewLedgerService(playerRepo, cacheRepo, cfg.MaxBalance, cfg.MirrorWrites)
	playerService := service.NewPlayerService(playerRepo, cacheRepo, historyRepo, ledgerService, eventBus, cfg.StartingBalance)

	gen := slots.NewGenerator(nil)
	spinService := service.NewSpinService(ledgerService, historyRepo, gen, eventBus, cfg.MinSpinStake)
	duelService := service.NewDuelService(duelRepo, ledgerService, duelLogRepo, historyRepo, gen, eventBus, service.DuelConfig{
		MinAmount:    cfg.MinDuelAmount,
		ChallengeTTL: cfg.DuelTTL,
		Cooldown:     cfg.DuelCooldown,
		ClaimTTL:     cfg.ClaimTTL,
	})
	log.Info("Services initialized")

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, playerService, ledgerService, spinService, duelService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized")

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := redisClient.Close(); err != nil {
		log.Errorf("Error closing redis client: %v", err)
	}
	if db != nil {
		log.Info("Closing database connection...")
		db.Close()
	}

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
