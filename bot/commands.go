package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// adminPermission restricts a command to members with Administrator rights.
var adminPermission int64 = discordgo.PermissionAdministrator

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "slots",
			Description: "Spin the slot machine",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "stake",
					Description: "Amount of coins to stake",
					Required:    true,
				},
			},
		},
		{
			Name:        "donate",
			Description: "Transfer coins to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to donate in coins",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to donate to",
					Required:    true,
				},
			},
		},
		{
			Name:        "duel",
			Description: "Challenge other players to slot duels",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "challenge",
					Description: "Challenge another player to a duel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player to challenge",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount to wager in coins",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "accept",
					Description: "Accept a duel challenge aimed at you",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "decline",
					Description: "Decline a duel challenge aimed at you",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "optout",
					Description: "Toggle whether other players can challenge you",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "true to block incoming challenges",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "stats",
			Description: "Show a player's balance, duel record, and recent activity",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player to inspect (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:                     "reset",
			Description:              "Reset a player's balance to zero (moderators only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player whose balance to reset",
					Required:    true,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
	}

	return nil
}
