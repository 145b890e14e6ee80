package capture

import (
	"context"
	"errors"
	"fmt"
)

// Microphone acquires an exclusive capture stream from an audio device.
type Microphone interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is one open device session.
type Stream interface {
	// Start begins delivering chunks to sink in arrival order. sink must
	// not be called before Start returns.
	Start(sink func(chunk []byte)) error
	// Codec turns the buffered chunks into the payload body.
	Codec() Codec
	// Close releases the device. It must be safe to call after a failed Start.
	Close() error
}

type Codec interface {
	MIMEType() string
	Encode(chunks [][]byte) ([]byte, error)
}

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("not recording")
	ErrBufferFull       = errors.New("recording buffer is full")
	ErrFileTooLarge     = errors.New("audio file is too large")
	ErrEmptyAudio       = errors.New("no audio captured")
	ErrBusy             = errors.New("file upload is disabled while recording")
)

// PermissionError — доступ к микрофону запрещён или устройства нет.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("microphone access denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}
