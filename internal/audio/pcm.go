package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ErrMicrophoneDenied means audio capture is not permitted or not available.
var ErrMicrophoneDenied = errors.New("microphone permission denied")

// FrameSize is 20ms of 48kHz mono 16-bit PCM.
const FrameSize = 1920

// Source yields captured microphone frames until io.EOF
type Source interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// Sink receives remote audio frames
type Sink interface {
	WriteFrame(uid uint32, frame []byte) error
	Close() error
}

// Microphone opens a capture source
type Microphone func() (Source, error)

// FileMicrophone captures from a raw PCM file, standing in for a device.
// An empty path behaves like a denied permission prompt.
func FileMicrophone(path string) Microphone {
	return func() (Source, error) {
		if path == "" {
			return nil, fmt.Errorf("%w: no capture device configured", ErrMicrophoneDenied)
		}
		f, err := os.Open(path)
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrMicrophoneDenied, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open capture source: %w", err)
		}
		return &fileSource{f: f}, nil
	}
}

type fileSource struct {
	f *os.File
}

func (s *fileSource) ReadFrame() ([]byte, error) {
	buf := make([]byte, FrameSize)
	n, err := io.ReadFull(s.f, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *fileSource) Close() error {
	return s.f.Close()
}

// FileSink appends remote audio for each uid to remote_<uid>.pcm in a directory
type FileSink struct {
	dir   string
	mu    sync.Mutex
	files map[uint32]*os.File
}

// NewFileSink creates a sink writing into dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir, files: make(map[uint32]*os.File)}
}

// WriteFrame appends one frame for uid
func (s *FileSink) WriteFrame(uid uint32, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[uid]
	if !ok {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return fmt.Errorf("failed to create audio directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(filepath.Join(s.dir, fmt.Sprintf("remote_%d.pcm", uid)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open remote audio file: %w", err)
		}
		s.files[uid] = f
	}
	_, err := f.Write(frame)
	return err
}

// Close closes every open file
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for uid, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close remote audio %d: %w", uid, err)
		}
		delete(s.files, uid)
	}
	return firstErr
}
