package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"slotbot/models"
	"slotbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleDuelCommand handles the /duel slash command
func (b *Bot) handleDuelCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Invalid command usage")
		return
	}

	switch options[0].Name {
	case "challenge":
		b.handleDuelChallenge(s, i)
	case "accept":
		b.handleDuelAccept(s, i)
	case "decline":
		b.handleDuelDecline(s, i)
	case "optout":
		b.handleDuelOptOut(s, i)
	default:
		b.respondWithError(s, i, "Unknown subcommand")
	}
}

// handleDuelChallenge handles the /duel challenge subcommand
func (b *Bot) handleDuelChallenge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) < 2 {
		b.respondWithError(s, i, "Please specify a player and an amount")
		return
	}

	targetUser := options[0].UserValue(s)
	amount := options[1].IntValue()

	if targetUser == nil {
		b.respondWithError(s, i, "Invalid player specified")
		return
	}
	if targetUser.Bot {
		b.respondWithError(s, i, "You cannot challenge a bot")
		return
	}

	challengerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Bootstrap both sides so the wager can be checked against real balances
	if _, err := b.playerService.GetOrCreate(ctx, challengerID, i.Member.User.Username); err != nil {
		log.Errorf("Error getting challenger %d: %v", challengerID, err)
		b.respondWithError(s, i, "Unable to create challenge. Please try again.")
		return
	}
	if _, err := b.playerService.GetOrCreate(ctx, targetID, targetUser.Username); err != nil {
		log.Errorf("Error getting target %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to create challenge. Please try again.")
		return
	}

	challenge, reason, err := b.duelService.Create(ctx, challengerID, targetID, amount)
	if err != nil {
		log.Errorf("Error creating challenge %d -> %d: %v", challengerID, targetID, err)
		b.respondWithError(s, i, "Unable to create challenge. Please try again.")
		return
	}
	if challenge == nil {
		b.respondWithError(s, i, b.duelCreateReasonMessage(ctx, challengerID, reason))
		return
	}

	challengerName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	targetName := GetDisplayName(s, i.GuildID, targetUser.ID)

	embed := buildDuelChallengeEmbed(challenge, challengerName, targetName, b.duelService.ChallengeTTL())
	components := buildDuelChallengeComponents(challengerID)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		log.Errorf("Error responding to duel challenge: %v", err)
	}
}

// duelCreateReasonMessage maps a creation reason to a user-facing message
func (b *Bot) duelCreateReasonMessage(ctx context.Context, challengerID int64, reason service.DuelCreateReason) string {
	switch reason {
	case service.DuelCreateReasonSelfChallenge:
		return "You cannot challenge yourself."
	case service.DuelCreateReasonBelowMinimum:
		return "That wager is below the minimum."
	case service.DuelCreateReasonPendingExists:
		return "You already have a pending challenge. Wait for it to resolve or expire."
	case service.DuelCreateReasonOnCooldown:
		remaining, err := b.duelService.CooldownRemaining(ctx, challengerID)
		if err == nil && remaining > 0 {
			return fmt.Sprintf("You're on cooldown. Try again %s.", FormatDiscordTimestamp(time.Now().Add(remaining), "R"))
		}
		return "You're on cooldown. Try again later."
	case service.DuelCreateReasonTargetOptedOut:
		return "That player has opted out of duels."
	case service.DuelCreateReasonChallengerInsufficient:
		return "You don't have enough coins for that wager."
	case service.DuelCreateReasonTargetInsufficient:
		return "That player doesn't have enough coins for that wager."
	default:
		return "Unable to create challenge."
	}
}

// handleDuelAccept handles the /duel accept subcommand. The registry is
// scanned for a challenge aimed at the accepter; the button path skips the
// scan because the challenger's ID rides in the button's custom ID.
func (b *Bot) handleDuelAccept(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	accepterID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	challenge, err := b.duelService.FindIncoming(ctx, accepterID)
	if err != nil {
		log.Errorf("Error finding incoming challenge for %d: %v", accepterID, err)
		b.respondWithError(s, i, "Unable to look up challenges. Please try again.")
		return
	}
	if challenge == nil {
		b.respondWithError(s, i, "No one has challenged you.")
		return
	}

	// Settlement takes several store round trips; defer to buy time
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Errorf("Error deferring duel accept: %v", err)
		return
	}

	result, err := b.duelService.Accept(ctx, challenge.ChallengerID, accepterID)
	if err != nil {
		log.Errorf("Error accepting challenge from %d: %v", challenge.ChallengerID, err)
		b.followUpWithError(s, i, "Unable to accept the duel. Please try again.")
		return
	}
	if !result.Accepted {
		b.followUpWithError(s, i, acceptReasonMessage(result.Reason))
		return
	}

	challengerName := GetDisplayNameInt64(s, i.GuildID, challenge.ChallengerID)
	targetName := GetDisplayNameInt64(s, i.GuildID, challenge.TargetID)
	embed := buildDuelResultEmbed(result.Duel, challengerName, targetName)

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Errorf("Error sending duel result: %v", err)
	}
}

// acceptReasonMessage maps an accept reason to a user-facing message
func acceptReasonMessage(reason models.AcceptReason) string {
	switch reason {
	case models.AcceptReasonNotFound:
		return "That challenge no longer exists."
	case models.AcceptReasonExpired:
		return "That challenge has expired."
	case models.AcceptReasonAlreadyClaimed, models.AcceptReasonRaceCondition:
		return "Someone else got there first."
	default:
		return "Unable to accept the duel. Please try again."
	}
}

// handleDuelDecline handles the /duel decline subcommand
func (b *Bot) handleDuelDecline(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	declinerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	challenge, err := b.duelService.FindIncoming(ctx, declinerID)
	if err != nil {
		log.Errorf("Error finding incoming challenge for %d: %v", declinerID, err)
		b.respondWithError(s, i, "Unable to look up challenges. Please try again.")
		return
	}
	if challenge == nil {
		b.respondWithError(s, i, "No one has challenged you.")
		return
	}

	declined, err := b.duelService.Decline(ctx, challenge.ChallengerID, declinerID)
	if err != nil {
		log.Errorf("Error declining challenge from %d: %v", challenge.ChallengerID, err)
		b.respondWithError(s, i, "Unable to decline the duel. Please try again.")
		return
	}
	if !declined {
		b.respondWithError(s, i, "That challenge no longer exists.")
		return
	}

	challengerName := GetDisplayNameInt64(s, i.GuildID, challenge.ChallengerID)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("You declined the challenge from **%s**.", challengerName),
		},
	})
	if err != nil {
		log.Errorf("Error responding to duel decline: %v", err)
	}
}

// handleDuelOptOut handles the /duel optout subcommand
func (b *Bot) handleDuelOptOut(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) != 1 {
		b.respondWithError(s, i, "Please specify whether to opt out.")
		return
	}
	optOut := options[0].BoolValue()

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.duelService.SetOptOut(ctx, discordID, optOut); err != nil {
		log.Errorf("Error setting opt-out for %d: %v", discordID, err)
		b.respondWithError(s, i, "Unable to update your duel settings. Please try again.")
		return
	}

	message := "You can now be challenged to duels again."
	if optOut {
		message = "You will no longer receive duel challenges."
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to duel optout: %v", err)
	}
}

// handleDuelInteraction handles the accept and decline buttons on a
// challenge message
func (b *Bot) handleDuelInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	parts := strings.Split(customID, "_")
	if len(parts) != 3 || parts[0] != "duel" {
		return
	}

	challengerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid button data")
		return
	}

	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	switch parts[1] {
	case "accept":
		b.handleDuelButtonAccept(s, i, challengerID, userID)
	case "decline":
		b.handleDuelButtonDecline(s, i, challengerID, userID)
	}
}

func (b *Bot) handleDuelButtonAccept(s *discordgo.Session, i *discordgo.InteractionCreate, challengerID, userID int64) {
	ctx := context.Background()

	// Defer as a message update so the challenge message itself becomes the
	// result announcement
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error deferring duel button: %v", err)
		return
	}

	result, err := b.duelService.Accept(ctx, challengerID, userID)
	if err != nil {
		log.Errorf("Error accepting challenge from %d: %v", challengerID, err)
		b.followUpWithError(s, i, "Unable to accept the duel. Please try again.")
		return
	}
	if !result.Accepted {
		b.followUpWithError(s, i, acceptReasonMessage(result.Reason))
		return
	}

	challengerName := GetDisplayNameInt64(s, i.GuildID, challengerID)
	targetName := GetDisplayNameInt64(s, i.GuildID, result.Duel.Challenge.TargetID)
	embed := buildDuelResultEmbed(result.Duel, challengerName, targetName)

	components := []discordgo.MessageComponent{}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		log.Errorf("Error editing challenge message: %v", err)
	}
}

func (b *Bot) handleDuelButtonDecline(s *discordgo.Session, i *discordgo.InteractionCreate, challengerID, userID int64) {
	ctx := context.Background()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error deferring duel button: %v", err)
		return
	}

	declined, err := b.duelService.Decline(ctx, challengerID, userID)
	if err != nil {
		log.Errorf("Error declining challenge from %d: %v", challengerID, err)
		b.followUpWithError(s, i, "Unable to decline the duel. Please try again.")
		return
	}
	if !declined {
		b.followUpWithError(s, i, "That challenge no longer exists.")
		return
	}

	challengerName := GetDisplayNameInt64(s, i.GuildID, challengerID)
	targetName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	embed := buildDuelDeclinedEmbed(challengerName, targetName)

	components := []discordgo.MessageComponent{}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		log.Errorf("Error editing challenge message: %v", err)
	}
}
