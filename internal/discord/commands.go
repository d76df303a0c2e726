package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"bassline/internal/command"
)

// registerCommands syncs slash commands for a guild with Discord: deletes
// obsolete ones, creates commands whose definition hash changed. Hashes are
// kept in guild storage so unchanged commands cost no API calls on restart.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Error().Str("guild", guildID).Err(err).Msg("could not list remote commands, skipping obsolete cleanup")
	}

	local := buildCommandDefinitions()
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	cached, err := b.storage.GetCommandHashes(guildID)
	if err != nil {
		cached = map[string]string{}
	}

	for _, rc := range remote {
		if _, exists := localNames[rc.Name]; exists {
			continue
		}
		log.Info().Str("guild", guildID).Str("command", rc.Name).Msg("deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error().Str("guild", guildID).Str("command", rc.Name).Err(err).Msg("delete failed")
		} else {
			delete(cached, rc.Name)
		}
	}

	changed := 0
	for _, d := range local {
		h := hashCommand(d)
		if cached[d.Name] == h {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Error().Str("guild", guildID).Str("command", d.Name).Err(err).Msg("register failed")
			continue
		}
		cached[d.Name] = h
		changed++
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}

	if changed > 0 {
		log.Info().Str("guild", guildID).Int("changed", changed).Msg("slash commands registered")
	}
	return b.storage.SetCommandHashes(guildID, cached)
}

func buildCommandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range command.All() {
		slash, ok := c.(command.SlashProvider)
		if !ok {
			continue
		}
		def := slash.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	return defs
}

// appID returns the bot's application ID, fetching it when the state cache
// has not been populated yet.
func (b *Bot) appID() (string, error) {
	if id := b.dg.State.User.ID; id != "" {
		return id, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}
