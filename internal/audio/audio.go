// Package audio holds recorded clips, reply playback and raw PCM frame I/O.
package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultUploadName = "voice_message.wav"

// Clip is a recorded voice message ready to upload
type Clip struct {
	Data     []byte
	Filename string
}

// LoadClip reads a recorded message from disk
func LoadClip(path string) (Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to read audio clip: %w", err)
	}
	if len(data) == 0 {
		return Clip{}, fmt.Errorf("audio clip %s is empty", path)
	}
	return Clip{Data: data, Filename: filepath.Base(path)}, nil
}

// Format returns the container format the server will assume for the clip
func (c Clip) Format() string {
	name := strings.ToLower(c.Filename)
	switch {
	case strings.HasSuffix(name, ".mp3"):
		return "mp3"
	case strings.HasSuffix(name, ".m4a"):
		return "m4a"
	default:
		return "wav"
	}
}

// UploadName returns the multipart filename for the clip
func (c Clip) UploadName() string {
	if c.Filename == "" {
		return defaultUploadName
	}
	return c.Filename
}

// Player plays a synthesized reply
type Player interface {
	Play(ctx context.Context, data []byte, format string) error
}

// DecodeReply decodes the base64 audio carried by a voice reply
func DecodeReply(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode reply audio: %w", err)
	}
	return data, nil
}

// FilePlayer "plays" replies by writing them into a directory for an external player
type FilePlayer struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewFilePlayer creates a player that writes into dir
func NewFilePlayer(dir string, logger *slog.Logger) *FilePlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilePlayer{dir: dir, logger: logger, now: time.Now}
}

// Play writes the reply as reply_<timestamp>.<format>
func (p *FilePlayer) Play(_ context.Context, data []byte, format string) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}
	if format == "" {
		format = "mp3"
	}
	path := filepath.Join(p.dir, fmt.Sprintf("reply_%s.%s", p.now().Format("20060102T150405.000"), format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write reply audio: %w", err)
	}
	p.logger.Info("reply audio ready", "path", path, "bytes", len(data))
	return nil
}
