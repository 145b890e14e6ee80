package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PassthroughCodec concatenates chunks that are already encoded,
// e.g. the webm/ogg fragments a browser recorder emits.
type PassthroughCodec struct {
	MIME string
}

func (c PassthroughCodec) MIMEType() string {
	return c.MIME
}

func (c PassthroughCodec) Encode(chunks [][]byte) ([]byte, error) {
	return bytes.Join(chunks, nil), nil
}

// WAVCodec wraps little-endian signed 16-bit PCM chunks in a WAV container.
type WAVCodec struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (c WAVCodec) MIMEType() string {
	return "audio/wav"
}

func (c WAVCodec) Encode(chunks [][]byte) ([]byte, error) {
	if c.BitDepth != 16 {
		return nil, fmt.Errorf("wav codec: unsupported bit depth %d", c.BitDepth)
	}

	pcm := bytes.Join(chunks, nil)
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	// wav.Encoder needs a seeker to patch the header sizes on Close.
	f, err := os.CreateTemp("", "speech-coach-*.wav")
	if err != nil {
		return nil, fmt.Errorf("wav codec: temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, c.SampleRate, c.BitDepth, c.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.Channels, SampleRate: c.SampleRate},
		Data:           samples,
		SourceBitDepth: c.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav codec: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav codec: close: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav codec: rewind: %w", err)
	}
	return io.ReadAll(f)
}
