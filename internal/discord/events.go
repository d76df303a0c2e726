package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"bassline/internal/bot"
	"bassline/internal/command"
	"bassline/internal/session"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			log.Info().Str("guild", g.ID).Msg("leaving blacklisted guild")
			if err := s.GuildLeave(g.ID); err != nil {
				log.Error().Str("guild", g.ID).Err(err).Msg("failed to leave guild")
			}
			continue
		}

		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				log.Error().Str("guild", g.ID).Err(err).Msg("slash command registration failed")
			}
		}
	}

	log.Info().Str("user", s.State.User.Username).Int("guilds", len(r.Guilds)).Msg("bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Info().Str("guild", g.Guild.ID).Msg("leaving blacklisted guild")
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Error().Str("guild", g.Guild.ID).Err(err).Msg("failed to leave guild")
		}
		return
	}

	if b.cfg.InitSlashCommands {
		if err := b.registerCommands(g.Guild.ID); err != nil {
			log.Error().Str("guild", g.Guild.ID).Err(err).Msg("slash command registration failed")
		}
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	b.rememberTextChannel(i.GuildID, i.ChannelID)

	ctx := &command.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Error().Str("command", name).Err(err).Msg("command failed")
		_ = bot.RespondEmbedEphemeral(s, i.Interaction, "⚠️ Command failed: "+err.Error())
	}
}

// onVoiceStateUpdate tears the guild session down when the bot itself is
// disconnected from voice (kicked, or the channel was deleted).
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID != s.State.User.ID {
		return
	}
	if v.ChannelID != "" || v.BeforeUpdate == nil {
		return
	}

	err := b.manager.Stop(v.GuildID)
	if err == nil {
		log.Info().Str("guild", v.GuildID).Msg("disconnected from voice, session destroyed")
		b.Notify(v.GuildID, "👢 Disconnected from voice, playback stopped.")
	} else if !errors.Is(err, session.ErrInvalidState) {
		log.Warn().Str("guild", v.GuildID).Err(err).Msg("failed to stop session after disconnect")
	}
}
