//go:build !portaudio

package capture

import (
	"context"
	"errors"
)

var errNoPortAudio = errors.New("host microphone support not compiled in (build with -tags portaudio)")

// PortAudioMicrophone without the portaudio build tag: every Open fails,
// which surfaces as a PermissionError.
type PortAudioMicrophone struct {
	SampleRate int
}

func NewPortAudioMicrophone(sampleRate int) *PortAudioMicrophone {
	return &PortAudioMicrophone{SampleRate: sampleRate}
}

func (m *PortAudioMicrophone) Open(context.Context) (Stream, error) {
	return nil, errNoPortAudio
}
