package audio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipFormat(t *testing.T) {
	assert.Equal(t, "mp3", Clip{Filename: "q.MP3"}.Format())
	assert.Equal(t, "m4a", Clip{Filename: "q.m4a"}.Format())
	assert.Equal(t, "wav", Clip{Filename: "q.ogg"}.Format())
	assert.Equal(t, "voice_message.wav", Clip{}.UploadName())
}

func TestLoadClip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "question.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	clip, err := LoadClip(path)
	require.NoError(t, err)
	assert.Equal(t, "question.wav", clip.Filename)

	empty := filepath.Join(dir, "empty.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadClip(empty)
	require.Error(t, err)
}

func TestFilePlayerWritesDecodedReply(t *testing.T) {
	dir := t.TempDir()
	data, err := DecodeReply("aGVsbG8=")
	require.NoError(t, err)

	require.NoError(t, NewFilePlayer(dir, nil).Play(context.Background(), data, "mp3"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = DecodeReply("%%%")
	require.Error(t, err)
}

func TestFileMicrophone(t *testing.T) {
	_, err := FileMicrophone("")()
	require.ErrorIs(t, err, ErrMicrophoneDenied)

	path := filepath.Join(t.TempDir(), "mic.pcm")
	require.NoError(t, os.WriteFile(path, make([]byte, FrameSize+10), 0644))

	src, err := FileMicrophone(path)()
	require.NoError(t, err)
	defer src.Close()

	frame, err := src.ReadFrame()
	require.NoError(t, err)
	assert.Len(t, frame, FrameSize)
	frame, err = src.ReadFrame()
	require.NoError(t, err)
	assert.Len(t, frame, 10)
	_, err = src.ReadFrame()
	require.ErrorIs(t, err, io.EOF)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)
	require.NoError(t, sink.WriteFrame(7, []byte("ab")))
	require.NoError(t, sink.WriteFrame(7, []byte("cd")))
	require.NoError(t, sink.Close())

	got, err := os.ReadFile(filepath.Join(dir, "remote_7.pcm"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(got))
}
