//go:build portaudio

package capture

import (
	"context"
	"encoding/binary"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/multierr"
)

const framesPerBuffer = 1024

// PortAudioMicrophone records mono 16-bit PCM from the host's default input.
type PortAudioMicrophone struct {
	SampleRate int
}

func NewPortAudioMicrophone(sampleRate int) *PortAudioMicrophone {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &PortAudioMicrophone{SampleRate: sampleRate}
}

func (m *PortAudioMicrophone) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &portAudioStream{
		codec: WAVCodec{SampleRate: m.SampleRate, Channels: 1, BitDepth: 16},
	}, nil
}

type portAudioStream struct {
	codec  WAVCodec
	stream *portaudio.Stream
}

func (s *portAudioStream) Start(sink func([]byte)) error {
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.codec.SampleRate), framesPerBuffer,
		func(in []int16) {
			buf := make([]byte, len(in)*2)
			for i, v := range in {
				binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
			}
			sink(buf)
		})
	if err != nil {
		return err
	}
	s.stream = stream
	return stream.Start()
}

func (s *portAudioStream) Codec() Codec {
	return s.codec
}

func (s *portAudioStream) Close() error {
	var err error
	if s.stream != nil {
		err = multierr.Append(s.stream.Stop(), s.stream.Close())
		s.stream = nil
	}
	return multierr.Append(err, portaudio.Terminate())
}
