package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"Kashar/internal/session"
	"Kashar/internal/store"
	"Kashar/internal/tutor"

	"github.com/spf13/cobra"
)

func newHistoryCommand(current func() *app) *cobra.Command {
	var (
		limit  int
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "List archived sessions or show one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			out := cmd.OutOrStdout()

			if remote {
				if len(args) == 0 {
					return fmt.Errorf("--remote needs a session id")
				}
				return printRemoteHistory(cmd, a, args[0])
			}

			archive, err := store.Open(a.cfg.DBPath, a.logger)
			if err != nil {
				return fmt.Errorf("failed to open session archive: %w", err)
			}
			defer archive.Close()

			if len(args) == 1 {
				sess, messages, err := archive.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printTranscript(out, sess, messages)
				return nil
			}

			summaries, err := archive.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printSummaries(out, summaries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to list")
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the server's history of the session")
	return cmd
}

func printSummaries(out io.Writer, summaries []store.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No archived sessions")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tSTARTED\tDURATION\tMESSAGES")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Mode,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.EndedAt.Sub(s.StartedAt).Round(time.Second), s.MessageCount)
	}
	w.Flush()
}

func printTranscript(out io.Writer, sess *session.Session, messages []session.Message) {
	fmt.Fprintf(out, "Session %s (%s), started %s\n\n", sess.ID, sess.Mode, sess.StartedAt.Local().Format(time.RFC1123))
	for _, m := range messages {
		speaker := "Tutor"
		if m.Role == session.RoleUser {
			speaker = "You"
		}
		marker := ""
		if m.IsError {
			marker = " [error]"
		}
		fmt.Fprintf(out, "[%s] %s%s: %s\n", m.Timestamp.Local().Format("15:04:05"), speaker, marker, m.Content)
		if len(m.Sources) > 0 {
			fmt.Fprintf(out, "  sources: %s\n", strings.Join(m.Sources, ", "))
		}
	}
}

func printRemoteHistory(cmd *cobra.Command, a *app, id string) error {
	creds, err := a.credentials()
	if err != nil {
		return errors.New(tutor.Describe(err, "Not signed in"))
	}
	entries, err := a.api.SessionHistory(cmd.Context(), creds, id)
	if err != nil {
		return errors.New(tutor.Describe(err, "Failed to load history"))
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No server history for %s\n", id)
		return nil
	}
	for i, e := range entries {
		fmt.Fprintf(out, "%d. You: %s\n   Tutor: %s\n", i+1, e.UserMessage, e.AIResponse)
	}
	return nil
}

func newVoiceSessionsCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voice-sessions",
		Short: "List your active voice sessions on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			creds, err := a.credentials()
			if err != nil {
				return errors.New(tutor.Describe(err, "Not signed in"))
			}
			sessions, err := a.api.ActiveVoiceSessions(cmd.Context(), creds)
			if err != nil {
				return errors.New(tutor.Describe(err, "Failed to list voice sessions"))
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No active voice sessions")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tCHANNEL\tCREATED\tMESSAGES")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.SessionID, s.ChannelName, s.CreatedAt, s.MessageCount)
			}
			return w.Flush()
		},
	}
}
