// Package discord runs the bot: the gateway session, event handlers, slash
// command registration and the bridge between commands and the per-guild
// playback sessions.
package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"bassline/internal/bot"
	"bassline/internal/command"
	"bassline/internal/command/core"
	"bassline/internal/command/music"
	"bassline/internal/config"
	"bassline/internal/session"
	"bassline/internal/storage"
)

type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	manager *session.Manager

	// textChannels remembers the last channel a guild interacted from, so
	// playback notifications land somewhere sensible.
	mu           sync.RWMutex
	textChannels map[string]string
}

// StartBot connects to Discord and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, resolver session.Resolver) error {
	b := &Bot{
		cfg:          cfg,
		storage:      store,
		textChannels: make(map[string]string),
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.manager = session.NewManager(
		resolver,
		&voiceProvider{dg: dg},
		session.WithNotifier(b),
		session.WithTrackStartHook(b.onTrackStart),
	)

	b.registerAllCommands()

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping sessions")
	b.manager.StopAll()
	return nil
}

// registerAllCommands fills the shared command registry. Music commands get
// the bot itself as their coordinator.
func (b *Bot) registerAllCommands() {
	mws := []command.Middleware{
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	}

	cmds := []command.Command{
		&music.PlayCommand{Coord: b},
		&music.SummonCommand{Coord: b},
		&music.PauseCommand{Coord: b},
		&music.ResumeCommand{Coord: b},
		&music.SkipCommand{Coord: b},
		&music.StopCommand{Coord: b},
		&music.QueueCommand{Coord: b},
		&music.HistoryCommand{},
		&core.AboutCommand{},
	}
	for _, c := range cmds {
		command.Register(command.Apply(c, mws...))
	}
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.GuildBlacklist, guildID)
}

func (b *Bot) rememberTextChannel(guildID, channelID string) {
	if guildID == "" || channelID == "" {
		return
	}
	b.mu.Lock()
	b.textChannels[guildID] = channelID
	b.mu.Unlock()
}

// Notify implements session.Notifier: playback events are posted to the
// guild's last active text channel.
func (b *Bot) Notify(guildID, message string) {
	b.mu.RLock()
	channelID := b.textChannels[guildID]
	b.mu.RUnlock()
	if channelID == "" {
		return
	}
	if _, err := b.dg.ChannelMessageSendEmbed(channelID, bot.MessageEmbed(message)); err != nil {
		log.Warn().Str("guild", guildID).Err(err).Msg("failed to send notification")
	}
}

// onTrackStart records each started track in the guild's play history.
func (b *Bot) onTrackStart(guildID string, req session.PlaybackRequest, src session.AudioSource) {
	rec := storage.TrackHistoryRecord{
		URL:         req.Query,
		Title:       src.Title(),
		RequestedBy: req.RequestedBy,
		PlayedAt:    time.Now(),
	}
	if err := b.storage.AppendTrackToHistory(guildID, rec); err != nil {
		log.Warn().Str("guild", guildID).Err(err).Msg("failed to record track history")
	}
}

// --- bot.Coordinator ---

func (b *Bot) Summon(guildID, channelID string) error {
	return b.manager.Summon(guildID, channelID)
}

func (b *Bot) Play(guildID, channelID string, req session.PlaybackRequest) (bool, error) {
	return b.manager.Play(guildID, channelID, req)
}

func (b *Bot) Pause(guildID string) error  { return b.manager.Pause(guildID) }
func (b *Bot) Resume(guildID string) error { return b.manager.Resume(guildID) }
func (b *Bot) Skip(guildID string) error   { return b.manager.Skip(guildID) }
func (b *Bot) Stop(guildID string) error   { return b.manager.Stop(guildID) }

func (b *Bot) Snapshot(guildID string) (session.Snapshot, bool) {
	return b.manager.Snapshot(guildID)
}

// FindUserVoiceState looks up the voice channel a user currently occupies.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild not in state cache: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs, nil
		}
	}
	return nil, fmt.Errorf("user %s is not in a voice channel", userID)
}
