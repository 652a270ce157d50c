package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"slotbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	statsDuelLimit    = 25
	statsHistoryLimit = 5
)

// handleStats displays a player's balance, duel record, and recent activity
func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	// Default to the command issuer unless a user option is given
	targetUser := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			targetUser = opt.UserValue(s)
		}
	}
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

	balance, err := b.ledgerService.GetBalance(ctx, targetID)
	if err != nil {
		log.Errorf("Error getting balance for player %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to retrieve stats. Please try again.")
		return
	}

	duels, err := b.duelService.RecentDuels(ctx, targetID, statsDuelLimit)
	if err != nil {
		log.Errorf("Error getting duel history for player %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to retrieve stats. Please try again.")
		return
	}

	history, err := b.playerService.RecentHistory(ctx, targetID, statsHistoryLimit)
	if err != nil {
		log.Errorf("Error getting balance history for player %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to retrieve stats. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, targetUser.ID)
	embed := buildStatsEmbed(displayName, targetID, balance, duels, history)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error responding to stats command: %v", err)
	}
}

func buildStatsEmbed(displayName string, discordID int64, balance int64, duels []*models.DuelLogEntry, history []*models.BalanceHistory) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Stats for %s", displayName),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("**%s coins**", FormatBalance(balance)),
				Inline: true,
			},
			{
				Name:   "Duel Record",
				Value:  formatDuelRecord(discordID, duels),
				Inline: true,
			},
		},
	}

	if len(history) > 0 {
		var lines strings.Builder
		for _, h := range history {
			sign := "+"
			if h.ChangeAmount < 0 {
				sign = ""
			}
			lines.WriteString(fmt.Sprintf("%s `%s%s` → %s coins (%s)\n",
				transactionLabel(h.TransactionType),
				sign, FormatBalance(h.ChangeAmount),
				FormatBalance(h.BalanceAfter),
				FormatDiscordTimestamp(h.CreatedAt, "R")))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Activity",
			Value: lines.String(),
		})
	}

	return embed
}

// formatDuelRecord tallies wins, losses, and ties from the player's side of
// each log entry
func formatDuelRecord(discordID int64, duels []*models.DuelLogEntry) string {
	if len(duels) == 0 {
		return "No duels yet"
	}

	var wins, losses, ties int
	for _, d := range duels {
		switch {
		case d.WinnerID == nil:
			ties++
		case *d.WinnerID == discordID:
			wins++
		default:
			losses++
		}
	}

	return fmt.Sprintf("%dW / %dL / %dT", wins, losses, ties)
}

func transactionLabel(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeInitial:
		return "🌱 Joined"
	case models.TransactionTypeSpinWin:
		return "🎰 Spin win"
	case models.TransactionTypeSpinLoss:
		return "🎰 Spin loss"
	case models.TransactionTypeDuelWin:
		return "⚔️ Duel win"
	case models.TransactionTypeDuelLoss:
		return "⚔️ Duel loss"
	case models.TransactionTypeTransferIn:
		return "🎁 Received"
	case models.TransactionTypeTransferOut:
		return "🎁 Donated"
	case models.TransactionTypeAdminZero:
		return "🔨 Reset"
	default:
		return string(t)
	}
}
