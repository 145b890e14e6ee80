package ports

import (
	"bytes"
	"io"
	"time"
)

type AudioSource string

const (
	SourceMicrophone AudioSource = "microphone"
	SourceUpload     AudioSource = "upload"
)

// AudioPayload is a finalized recording ready for transcription.
// It is immutable: the constructor copies the input and accessors never
// expose the backing slice.
type AudioPayload struct {
	data      []byte
	mimeType  string
	source    AudioSource
	createdAt time.Time
}

func NewAudioPayload(data []byte, mimeType string, source AudioSource) *AudioPayload {
	buf := make([]byte, len(data))
	copy(buf, data)

	return &AudioPayload{
		data:      buf,
		mimeType:  mimeType,
		source:    source,
		createdAt: time.Now(),
	}
}

func (p *AudioPayload) MIMEType() string     { return p.mimeType }
func (p *AudioPayload) Source() AudioSource  { return p.source }
func (p *AudioPayload) Size() int            { return len(p.data) }
func (p *AudioPayload) CreatedAt() time.Time { return p.createdAt }

// Reader returns a fresh reader over the payload bytes.
func (p *AudioPayload) Reader() io.Reader {
	return bytes.NewReader(p.data)
}

// Bytes returns a copy of the payload bytes.
func (p *AudioPayload) Bytes() []byte {
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out
}
