// Package chatbot is the terminal front end: a line-oriented REPL over a
// tutoring session with slash commands for voice control.
package chatbot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"Kashar/internal/audio"
	"Kashar/internal/session"
	"Kashar/internal/tutor"
)

// ChatBot represents the interactive application
type ChatBot struct {
	client *tutor.Client
	mode   session.Mode
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	mu     sync.Mutex
}

// NewChatBot creates the REPL and the tutoring client it drives.
// Notifications from the client are printed to out.
func NewChatBot(opts tutor.Options, mode session.Mode, in io.Reader, out io.Writer) (*ChatBot, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cb := &ChatBot{
		mode:   mode,
		in:     in,
		out:    out,
		logger: opts.Logger,
	}
	opts.Notifier = cb

	client, err := tutor.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create tutor client: %w", err)
	}
	cb.client = client
	return cb, nil
}

// Notify prints a client notification
func (cb *ChatBot) Notify(severity tutor.Severity, message string) {
	switch severity {
	case tutor.SeverityError:
		cb.printf("[!] %s\n", message)
	case tutor.SeverityWarning:
		cb.printf("[~] %s\n", message)
	default:
		cb.printf("[i] %s\n", message)
	}
}

func (cb *ChatBot) printf(format string, args ...any) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	fmt.Fprintf(cb.out, format, args...)
}

// Client returns the tutoring client
func (cb *ChatBot) Client() *tutor.Client {
	return cb.client
}

func (cb *ChatBot) start(ctx context.Context, mode session.Mode) error {
	if err := cb.client.StartSession(ctx, mode); err != nil {
		return err
	}
	cb.mode = mode
	sess, _ := cb.client.Session()
	cb.printf("Session: %s (%s)\n", sess.ID, sess.Mode)
	for _, msg := range cb.client.Transcript() {
		cb.printMessage(msg)
	}
	return nil
}

func (cb *ChatBot) printMessage(msg session.Message) {
	prefix := "Tutor"
	if msg.Role == session.RoleUser {
		prefix = "You"
	}
	cb.printf("%s: %s\n", prefix, msg.Content)
	if len(msg.Sources) > 0 {
		cb.printf("  sources: %s\n", strings.Join(msg.Sources, ", "))
	}
}

// handleCommand handles slash commands
func (cb *ChatBot) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		mode := cb.mode
		if len(parts) > 1 {
			m, err := session.ParseMode(parts[1])
			if err != nil {
				return false, err
			}
			mode = m
		}
		if err := cb.client.EndSession(ctx); err != nil {
			cb.logger.Warn("previous session ended with errors", "error", err)
		}
		return false, cb.start(ctx, mode)

	case "/end":
		if err := cb.client.EndSession(ctx); err != nil {
			cb.logger.Warn("session ended with errors", "error", err)
		}
		cb.printf("Session ended. Use /new to start another.\n")
		return false, nil

	case "/voice":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /voice <recording.wav|mp3|m4a>")
		}
		clip, err := audio.LoadClip(parts[1])
		if err != nil {
			return false, err
		}
		cb.printf("Processing voice message...\n")
		reply, err := cb.client.SendVoice(ctx, clip)
		if err != nil {
			return false, err
		}
		msgs := cb.client.Transcript()
		if n := len(msgs); n >= 2 && msgs[n-2].Role == session.RoleUser {
			cb.printMessage(msgs[n-2])
		}
		cb.printMessage(reply)
		return false, nil

	case "/connect":
		if err := cb.client.ConnectVoiceChannel(ctx); err != nil {
			return false, err
		}
		ch := cb.client.VoiceChannel()
		cb.printf("Joined %s as uid %d\n", ch.ChannelName, ch.UID)
		return false, nil

	case "/disconnect":
		if err := cb.client.DisconnectVoiceChannel(ctx); err != nil {
			return false, err
		}
		cb.printf("Left voice channel\n")
		return false, nil

	case "/mute":
		muted, err := cb.client.ToggleMute()
		if err != nil {
			return false, err
		}
		cb.printf("Microphone %s\n", onOff(!muted))
		return false, nil

	case "/speaker":
		on, err := cb.client.ToggleSpeaker()
		if err != nil {
			return false, err
		}
		cb.printf("Speaker %s\n", onOff(on))
		return false, nil

	case "/status":
		cb.printStatus()
		return false, nil

	case "/history":
		sess, ok := cb.client.Session()
		if !ok {
			return false, tutor.ErrNoActiveSession
		}
		entries, err := cb.client.History(ctx, sess.ID)
		if err != nil {
			return false, err
		}
		cb.printf("\nServer history for %s:\n", sess.ID)
		for i, e := range entries {
			cb.printf("%d. You: %s\n   Tutor: %s\n", i+1, e.UserMessage, e.AIResponse)
		}
		cb.printf("\n")
		return false, nil

	case "/help":
		cb.printf("Available commands:\n")
		cb.printf("  /quit, /exit         - Exit (ends the session)\n")
		cb.printf("  /new [text|voice]    - End the session and start a new one\n")
		cb.printf("  /end                 - End the session\n")
		cb.printf("  /voice <file>        - Send a recorded voice message (voice sessions)\n")
		cb.printf("  /connect             - Join the live voice channel\n")
		cb.printf("  /disconnect          - Leave the live voice channel\n")
		cb.printf("  /mute                - Toggle the microphone\n")
		cb.printf("  /speaker             - Toggle tutor audio playback\n")
		cb.printf("  /status              - Show session and voice channel state\n")
		cb.printf("  /history             - Show the server's record of this session\n")
		cb.printf("  /help                - Show this help message\n")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", parts[0])
	}
}

func (cb *ChatBot) printStatus() {
	sess, ok := cb.client.Session()
	cb.printf("Status: %s\n", cb.client.Status())
	if ok {
		cb.printf("Session: %s (%s), %d messages\n", sess.ID, sess.Mode, cb.client.MessageCount())
	}
	ch := cb.client.VoiceChannel()
	if ch.Joined {
		cb.printf("Voice: %s uid %d, mic %s, speaker %s, level %.2f, remote %v\n",
			ch.ChannelName, ch.UID, onOff(!ch.Muted), onOff(ch.SpeakerOn), cb.client.InputLevel(), cb.client.RemoteSpeakers())
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// readLines scans input on its own goroutine so Run can stop on
// cancellation while a read is blocked. The channel closes at end of input.
func (cb *ChatBot) readLines(stop <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cb.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			cb.logger.Error("failed to read input", "error", err)
		}
	}()
	return lines
}

// Run starts a session and reads input until /quit or end of input
func (cb *ChatBot) Run(ctx context.Context) error {
	cb.printf("=== Kashar AI Tutor ===\n")
	cb.printf("Type /help for commands, /quit to exit\n\n")

	if err := cb.start(ctx, cb.mode); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	lines := cb.readLines(stop)
loop:
	for {
		cb.printf("You: ")
		var line string
		select {
		case <-ctx.Done():
			cb.printf("\n")
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			line = l
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(ctx, input)
			if err != nil {
				cb.printf("Error: %v\n", err)
				cb.logger.Error("command error", "command", input, "error", err)
			}
			if shouldQuit {
				break loop
			}
			continue
		}

		reply, err := cb.client.SendText(ctx, input)
		if err != nil {
			// the client already notified the user
			if errors.Is(err, tutor.ErrNoActiveSession) {
				cb.printf("No active session. Use /new to start one.\n")
			}
			continue
		}
		cb.printMessage(reply)
		cb.printf("\n")
	}

	if err := cb.client.EndSession(ctx); err != nil {
		cb.logger.Warn("session ended with errors", "error", err)
	}

	cb.printf("Goodbye!\n")
	return nil
}
