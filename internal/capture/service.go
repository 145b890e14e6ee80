package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Controller owns the microphone lifecycle and produces finalized payloads
// from either a recording or an uploaded file.
type Controller struct {
	mic      Microphone
	maxBytes int
	log      *zap.SugaredLogger

	mu         sync.Mutex
	stream     Stream
	buf        *chunkBuffer
	overflowed bool
}

func NewController(mic Microphone, maxBytes int, log *zap.SugaredLogger) *Controller {
	return &Controller{
		mic:      mic,
		maxBytes: maxBytes,
		log:      log,
	}
}

func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return ErrAlreadyRecording
	}

	stream, err := c.mic.Open(ctx)
	if err != nil {
		return &PermissionError{Err: err}
	}

	c.buf = newChunkBuffer(c.maxBytes)
	c.overflowed = false

	if err := stream.Start(c.deviceSink); err != nil {
		c.buf = nil
		return &PermissionError{Err: multierr.Append(err, stream.Close())}
	}

	c.stream = stream
	c.log.Infow("[capture] recording started", "mime", stream.Codec().MIMEType())
	return nil
}

// AppendChunk buffers one chunk of the running recording.
func (c *Controller) AppendChunk(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return ErrNotRecording
	}
	return c.buf.Append(chunk)
}

// deviceSink is handed to the stream; device callbacks have nowhere to
// report errors, so overflow is logged once per recording.
func (c *Controller) deviceSink(chunk []byte) {
	err := c.AppendChunk(chunk)
	if !errors.Is(err, ErrBufferFull) {
		return
	}

	c.mu.Lock()
	first := !c.overflowed
	c.overflowed = true
	c.mu.Unlock()

	if first {
		c.log.Warnw("[capture] buffer full, dropping audio", "limit", humanize.Bytes(uint64(c.maxBytes)))
	}
}

// StopRecording releases the device and flushes the buffer into a payload.
// Returns nil, nil when nothing is being recorded.
func (c *Controller) StopRecording() (*ports.AudioPayload, error) {
	stream, buf := c.detach()
	if stream == nil {
		return nil, nil
	}

	// стрим закрываем без мьютекса: колбэк устройства может ждать его
	if err := stream.Close(); err != nil {
		c.log.Warnw("[capture] release device failed", "err", err)
	}

	chunks := buf.Flush()
	if len(chunks) == 0 {
		return nil, ErrEmptyAudio
	}

	codec := stream.Codec()
	data, err := codec.Encode(chunks)
	if err != nil {
		return nil, fmt.Errorf("encode recording: %w", err)
	}

	payload := ports.NewAudioPayload(data, codec.MIMEType(), ports.SourceMicrophone)
	c.log.Infow("[capture] recording finalized",
		"chunks", len(chunks),
		"size", humanize.Bytes(uint64(payload.Size())),
		"mime", payload.MIMEType(),
	)
	return payload, nil
}

// LoadFromFile builds an upload payload. Disabled while recording.
func (c *Controller) LoadFromFile(name string, r io.Reader) (*ports.AudioPayload, error) {
	if c.IsRecording() {
		return nil, ErrBusy
	}

	var src io.Reader = r
	if c.maxBytes > 0 {
		src = io.LimitReader(r, int64(c.maxBytes)+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	if c.maxBytes > 0 && len(data) > c.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	payload := ports.NewAudioPayload(data, DetectMIME(name, data), ports.SourceUpload)
	c.log.Infow("[capture] file loaded",
		"name", filepath.Base(name),
		"size", humanize.Bytes(uint64(payload.Size())),
		"mime", payload.MIMEType(),
	)
	return payload, nil
}

func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Close releases the device if a recording is still open. Buffered audio
// is discarded.
func (c *Controller) Close() error {
	stream, _ := c.detach()
	if stream == nil {
		return nil
	}
	c.log.Infow("[capture] recording discarded on close")
	return stream.Close()
}

func (c *Controller) detach() (Stream, *chunkBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, buf := c.stream, c.buf
	c.stream, c.buf = nil, nil
	return stream, buf
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".mpga": "audio/mpeg",
	".mpeg": "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
}

var mimeAliases = map[string]string{
	"audio/wave":     "audio/wav",
	"audio/x-wav":    "audio/wav",
	"audio/vnd.wave": "audio/wav",
	"audio/mp3":      "audio/mpeg",
	"audio/x-flac":   "audio/flac",
}

// DetectMIME picks the payload type from the file extension, falling back
// to content sniffing.
func DetectMIME(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := audioTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		t = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		t = mt
	}
	if alias, ok := mimeAliases[t]; ok {
		return alias
	}
	return t
}
