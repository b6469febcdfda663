package cli

import (
	"fmt"

	"Kashar/internal/api"
	"Kashar/internal/audio"
	"Kashar/internal/chatbot"
	"Kashar/internal/rtc"
	"Kashar/internal/session"
	"Kashar/internal/store"
	"Kashar/internal/tutor"

	"github.com/spf13/cobra"
)

// credentials resolves the bearer token for one-shot commands
func (a *app) credentials() (api.Credentials, error) {
	token, err := a.tokens().Token()
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{Token: token}, nil
}

func newChatCommand(current func() *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive tutoring session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			m, err := session.ParseMode(mode)
			if err != nil {
				return err
			}

			archive, err := store.Open(a.cfg.DBPath, a.logger)
			if err != nil {
				return fmt.Errorf("failed to open session archive: %w", err)
			}
			defer archive.Close()

			opts := tutor.Options{
				API:     a.api,
				Tokens:  a.tokens(),
				Variant: tutor.VoiceVariant(a.cfg.VoiceVariant),
				Player:  audio.NewFilePlayer(a.cfg.AudioDir, a.logger),
				Archive: archive,
				Logger:  a.logger,
			}

			// the user id only seeds the voice uid, so a failed lookup is not fatal
			if user, err := a.auth.CurrentUser(cmd.Context()); err == nil {
				opts.UserID = user.ID
			} else {
				a.logger.Debug("no current user", "error", err)
			}

			if a.cfg.RelayURL != "" {
				sink := audio.NewFileSink(a.cfg.AudioDir)
				defer sink.Close()
				engine, err := rtc.NewRelayEngine(a.cfg.RelayURL, audio.FileMicrophone(a.cfg.MicrophoneFile), sink, a.logger)
				if err != nil {
					return fmt.Errorf("failed to create voice engine: %w", err)
				}
				opts.Engine = engine
			}

			bot, err := chatbot.NewChatBot(opts, m, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return bot.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(session.ModeText), "Session mode (text|voice)")
	return cmd
}
