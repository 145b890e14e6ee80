package capture

import "context"

// BrowserMicrophone is fed by the browser's own recorder: the page holds
// the device and pushes encoded fragments through AppendChunk, so the
// stream here only carries the codec.
type BrowserMicrophone struct {
	MIME string
}

func NewBrowserMicrophone(mimeType string) *BrowserMicrophone {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return &BrowserMicrophone{MIME: mimeType}
}

func (m *BrowserMicrophone) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &browserStream{codec: PassthroughCodec{MIME: m.MIME}}, nil
}

type browserStream struct {
	codec PassthroughCodec
}

func (s *browserStream) Start(func([]byte)) error { return nil }
func (s *browserStream) Codec() Codec             { return s.codec }
func (s *browserStream) Close() error             { return nil }
