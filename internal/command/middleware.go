package command

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"bassline/internal/storage"
)

type Middleware func(Command) Command

// WithGuildOnly drops interactions that arrive outside a guild (DMs).
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger records each invocation in the guild's command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				if v, ok := ctx.(*SlashContext); ok && v.Storage != nil && v.Event.Member != nil {
					user := v.Event.Member.User
					rec := storage.CommandHistoryRecord{
						ChannelID: v.Event.ChannelID,
						UserID:    user.ID,
						Username:  user.Username,
						Command:   cmd.Name(),
						Param:     v.Option("input"),
						Datetime:  time.Now(),
					}
					if e := v.Storage.AppendCommandToHistory(v.Event.GuildID, rec); e != nil {
						log.Warn().Str("command", cmd.Name()).Err(e).Msg("failed to log command")
					}
				}

				return err
			},
		}
	}
}

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func Apply(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
