package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"slotbot/events"
	"slotbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config        Config
	session       *discordgo.Session
	playerService service.PlayerService
	ledgerService service.LedgerService
	spinService   service.SpinService
	duelService   service.DuelService
	eventBus      *events.Bus
}

func New(config Config, playerService service.PlayerService, ledgerService service.LedgerService, spinService service.SpinService, duelService service.DuelService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:        config,
		session:       dg,
		playerService: playerService,
		ledgerService: ledgerService,
		spinService:   spinService,
		duelService:   duelService,
		eventBus:      eventBus,
	}

	bot.subscribeEvents()

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleDuelInteraction)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// subscribeEvents attaches audit-log handlers to the bus. Game results are
// rendered inline by the command handlers; these subscriptions give operators
// a structured trail of everything that moved money.
func (b *Bot) subscribeEvents() {
	b.eventBus.Subscribe(events.EventTypePlayerCreated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.PlayerCreatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"player":  e.PlayerID,
			"balance": e.InitialBalance,
		}).Info("New player joined")
	})

	b.eventBus.Subscribe(events.EventTypeDuelResolved, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.DuelResolvedEvent)
		if !ok {
			return
		}
		fields := log.Fields{
			"challenger": e.ChallengerID,
			"target":     e.TargetID,
			"amount":     e.Amount,
			"pot":        e.Pot,
			"voided":     e.Voided,
		}
		if e.WinnerID != nil {
			fields["winner"] = *e.WinnerID
		}
		log.WithFields(fields).Info("Duel resolved")
	})

	b.eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"player": e.PlayerID,
			"type":   e.TransactionType,
			"change": e.ChangeAmount,
			"after":  e.NewBalance,
		}).Debug("Balance changed")
	})
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "slots":
		b.handleSlots(s, i)
	case "donate":
		b.handleDonate(s, i)
	case "duel":
		b.handleDuelCommand(s, i)
	case "stats":
		b.handleStats(s, i)
	case "reset":
		b.handleReset(s, i)
	}
}

func (b *Bot) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) != 1 {
		b.respondWithError(s, i, "Invalid command options. Please provide a user.")
		return
	}

	targetUser := options[0].UserValue(s)
	if targetUser == nil {
		b.respondWithError(s, i, "Invalid target user.")
		return
	}

	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing target Discord ID %s: %v", targetUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.ledgerService.Zero(ctx, targetID); err != nil {
		log.Errorf("Error zeroing balance for player %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to reset that player's balance. Please try again.")
		return
	}

	targetName := GetDisplayName(s, i.GuildID, targetUser.ID)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("✅ Reset **%s**'s balance to zero.", targetName),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to reset command: %v", err)
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Get or create player so first contact seeds the starting balance
	player, err := b.playerService.GetOrCreate(ctx, discordID, i.Member.User.Username)
	if err != nil {
		log.Errorf("Error getting player %d: %v", discordID, err)
		b.respondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)

	message := fmt.Sprintf("%s, your current balance: **%s coins**", displayName, FormatBalance(player.Balance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (b *Bot) handleDonate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) != 2 {
		b.respondWithError(s, i, "Invalid command options. Please provide both amount and user.")
		return
	}

	var amount int64
	var recipientUser *discordgo.User
	for _, opt := range options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipientUser = opt.UserValue(s)
		}
	}

	if amount <= 0 {
		b.respondWithError(s, i, "Amount must be positive.")
		return
	}

	if recipientUser == nil {
		b.respondWithError(s, i, "Invalid recipient user.")
		return
	}

	fromDiscordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	toDiscordID, err := strconv.ParseInt(recipientUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing recipient Discord ID %s: %v", recipientUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if fromDiscordID == toDiscordID {
		b.respondWithError(s, i, "You cannot donate to yourself.")
		return
	}

	// Make sure the sender exists before moving anything
	if _, err := b.playerService.GetOrCreate(ctx, fromDiscordID, i.Member.User.Username); err != nil {
		log.Errorf("Error getting player %d: %v", fromDiscordID, err)
		b.respondWithError(s, i, "Unable to process donation. Please try again.")
		return
	}

	result, err := b.playerService.Transfer(ctx, fromDiscordID, toDiscordID, amount)
	if err != nil {
		switch err {
		case service.ErrInsufficientBalance:
			b.respondWithError(s, i, "You don't have enough coins for that donation.")
		case service.ErrRecipientNotFound:
			b.respondWithError(s, i, "That player hasn't played yet.")
		default:
			log.Errorf("Error transferring %d coins from %d to %d: %v", amount, fromDiscordID, toDiscordID, err)
			b.respondWithError(s, i, "Unable to process donation. Please try again.")
		}
		return
	}

	recipientName := GetDisplayName(s, i.GuildID, recipientUser.ID)
	if recipientName == "Unknown" && result.RecipientName != "" {
		recipientName = result.RecipientName
	}

	message := fmt.Sprintf("✅ Donated **%s coins** to **%s**. Your balance: **%s coins**",
		FormatBalance(result.Amount), recipientName, FormatBalance(result.NewBalance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to donate command: %v", err)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}
