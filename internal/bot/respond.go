package bot

import (
	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x9b59b6

// MessageEmbed builds the standard embed used for command replies.
func MessageEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       embedColor,
	}
}

// RespondEmbed answers an interaction with an embed visible to everyone.
func RespondEmbed(s *discordgo.Session, i *discordgo.Interaction, description string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{MessageEmbed(description)},
		},
	})
}

// RespondEmbedEphemeral answers an interaction with an embed only the
// invoking user sees.
func RespondEmbedEphemeral(s *discordgo.Session, i *discordgo.Interaction, description string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{MessageEmbed(description)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer acknowledges an interaction so a slow command can follow up later.
func Defer(s *discordgo.Session, i *discordgo.Interaction) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// FollowupEmbed posts a followup embed after a deferred response.
func FollowupEmbed(s *discordgo.Session, i *discordgo.Interaction, description string) error {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{MessageEmbed(description)},
	})
	return err
}

// FollowupEmbedEphemeral posts an ephemeral followup embed.
func FollowupEmbedEphemeral(s *discordgo.Session, i *discordgo.Interaction, description string) error {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{MessageEmbed(description)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	return err
}
