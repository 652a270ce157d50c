package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"slotbot/models"

	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

// symbolEmoji maps reel faces to their display form
var symbolEmoji = map[string]string{
	"cherry":  "🍒",
	"lemon":   "🍋",
	"orange":  "🍊",
	"grape":   "🍇",
	"bell":    "🔔",
	"bar":     "🍫",
	"seven":   "7️⃣",
	"jackpot": "💎",
}

// FormatGrid renders a space-joined grid string as emoji
func FormatGrid(grid string) string {
	parts := strings.Fields(grid)
	for i, p := range parts {
		if emoji, ok := symbolEmoji[p]; ok {
			parts[i] = emoji
		}
	}
	return strings.Join(parts, " | ")
}

// buildDuelChallengeEmbed creates the public challenge announcement
func buildDuelChallengeEmbed(challenge *models.DuelChallenge, challengerName, targetName string, ttl time.Duration) *discordgo.MessageEmbed {
	expiresAt := challenge.CreatedAt.Add(ttl)
	return &discordgo.MessageEmbed{
		Title: "⚔️ Duel Challenge",
		Description: fmt.Sprintf("**%s** challenges **%s** to a slot duel for **%s coins**!",
			challengerName, targetName, FormatBalance(challenge.Amount)),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Expires",
				Value:  FormatDiscordTimestamp(expiresAt, "R"),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Only %s can accept or decline", targetName),
		},
	}
}

// buildDuelChallengeComponents creates the accept and decline buttons for a
// challenge message. The custom ID carries the challenger's ID; the service
// enforces who may press what.
func buildDuelChallengeComponents(challengerID int64) []discordgo.MessageComponent {
	id := strconv.FormatInt(challengerID, 10)
	return []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: "duel_accept_" + id,
				},
				&discordgo.Button{
					Label:    "Decline",
					Style:    discordgo.DangerButton,
					CustomID: "duel_decline_" + id,
				},
			},
		},
	}
}

// buildDuelResultEmbed creates the settlement announcement
func buildDuelResultEmbed(result *models.DuelResult, challengerName, targetName string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   challengerName,
			Value:  fmt.Sprintf("%s\nScore: **%d**", FormatGrid(result.ChallengerGrid), result.ChallengerScore),
			Inline: true,
		},
		{
			Name:   targetName,
			Value:  fmt.Sprintf("%s\nScore: **%d**", FormatGrid(result.TargetGrid), result.TargetScore),
			Inline: true,
		},
	}

	embed := &discordgo.MessageEmbed{
		Title:  "⚔️ Duel Result",
		Fields: fields,
	}

	switch {
	case result.Voided:
		embed.Color = ColorWarning
		embed.Description = "The duel was **voided**: the loser could no longer cover the wager. No coins moved."
	case result.WinnerID == nil:
		embed.Color = ColorWarning
		embed.Description = "It's a **tie**! Both players keep their stake."
	default:
		winnerName := challengerName
		if *result.WinnerID == result.Challenge.TargetID {
			winnerName = targetName
		}
		embed.Color = ColorSuccess
		embed.Description = fmt.Sprintf("**%s** wins **%s coins**!",
			winnerName, FormatBalance(result.Challenge.Amount))
	}

	return embed
}

// buildDuelDeclinedEmbed creates the declined announcement
func buildDuelDeclinedEmbed(challengerName, targetName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚔️ Duel Declined",
		Description: fmt.Sprintf("**%s** declined the challenge from **%s**.", targetName, challengerName),
		Color:       ColorDanger,
	}
}

// buildSpinEmbed creates the result embed for an ordinary slot spin
func buildSpinEmbed(result *models.SpinResult, playerName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎰 Slots",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   playerName,
				Value:  FormatGrid(result.Grid),
				Inline: false,
			},
		},
	}

	if result.Payout > 0 {
		embed.Color = ColorSuccess
		embed.Description = fmt.Sprintf("**You won %s coins!** Balance: **%s coins**",
			FormatBalance(result.Payout), FormatBalance(result.NewBalance))
	} else {
		embed.Color = ColorDanger
		embed.Description = fmt.Sprintf("No luck. You lost **%s coins**. Balance: **%s coins**",
			FormatBalance(result.Stake), FormatBalance(result.NewBalance))
	}

	return embed
}
