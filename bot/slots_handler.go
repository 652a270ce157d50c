package bot

import (
	"context"
	"strconv"

	"slotbot/slots"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSlots handles the /slots slash command
func (b *Bot) handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) != 1 {
		b.respondWithError(s, i, "Please specify a stake.")
		return
	}
	stake := options[0].IntValue()
	if stake <= 0 {
		b.respondWithError(s, i, "Stake must be positive.")
		return
	}

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.playerService.GetOrCreate(ctx, discordID, i.Member.User.Username); err != nil {
		log.Errorf("Error getting player %d: %v", discordID, err)
		b.respondWithError(s, i, "Unable to process spin. Please try again.")
		return
	}

	result, ok, err := b.spinService.Spin(ctx, discordID, stake, slots.Modifiers{})
	if err != nil {
		log.Errorf("Error spinning for player %d: %v", discordID, err)
		b.respondWithError(s, i, "Unable to process spin. Please try again.")
		return
	}
	if !ok {
		b.respondWithError(s, i, "You don't have enough coins for that stake.")
		return
	}

	playerName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	embed := buildSpinEmbed(result, playerName)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error responding to slots command: %v", err)
	}
}
