package delivery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_coach/internal/capture"
	"github.com/Vovarama1992/speech_coach/internal/feedback"
	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePipeline struct {
	startErr  error
	appendErr error
	loadErr   error
	snap      pipeline.Snapshot
	audio     *ports.AudioPayload
	chunks    [][]byte
	uploaded  string
	filename  string
}

func (f *fakePipeline) StartRecording(context.Context) error { return f.startErr }

func (f *fakePipeline) AppendChunk(chunk []byte) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.chunks = append(f.chunks, chunk)
	return nil
}

func (f *fakePipeline) StopRecording(context.Context) (pipeline.Snapshot, error) { return f.snap, nil }

func (f *fakePipeline) LoadFromFile(_ context.Context, name string, r io.Reader) (pipeline.Snapshot, error) {
	if f.loadErr != nil {
		return f.snap, f.loadErr
	}
	data, _ := io.ReadAll(r)
	f.filename = name
	f.uploaded = string(data)
	return f.snap, nil
}

func (f *fakePipeline) Snapshot() pipeline.Snapshot { return f.snap }

func (f *fakePipeline) Audio(id string) (*ports.AudioPayload, bool) {
	if id != "abc" || f.audio == nil {
		return nil, false
	}
	return f.audio, true
}

type fakeTTS struct {
	text string
	err  error
}

func (f *fakeTTS) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.text = text
	return []byte("ID3mp3"), f.err
}

func newRouter(p Pipeline, tts Synthesizer) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewSessionHandler(p, tts, 1<<10, logger.NewZapLogger(zap.NewNop().Sugar())))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStartRecording_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"busy", pipeline.ErrBusy, http.StatusConflict},
		{"denied", &capture.PermissionError{Err: errors.New("NotAllowedError")}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{startErr: tt.err, snap: pipeline.Snapshot{State: pipeline.Recording}}
			rec := do(t, newRouter(p, nil), http.MethodPost, "/recording/start", nil, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAppendChunk(t *testing.T) {
	p := &fakePipeline{}
	h := newRouter(p, nil)

	rec := do(t, h, http.MethodPost, "/recording/chunk", bytes.NewReader([]byte("chunk-1")), "application/octet-stream")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, [][]byte{[]byte("chunk-1")}, p.chunks)

	rec = do(t, h, http.MethodPost, "/recording/chunk", bytes.NewReader(make([]byte, 2<<10)), "application/octet-stream")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	p.appendErr = capture.ErrNotRecording
	rec = do(t, h, http.MethodPost, "/recording/chunk", bytes.NewReader([]byte("x")), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStopRecording_ReturnsFailedSnapshot(t *testing.T) {
	p := &fakePipeline{snap: pipeline.Snapshot{
		State: pipeline.Failed,
		Error: "Error processing audio: transcription failed: 500 - server error",
	}}

	rec := do(t, newRouter(p, nil), http.MethodPost, "/recording/stop", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["state"])
	assert.Equal(t, "Error processing audio: transcription failed: 500 - server error", body["error"])
}

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	p := &fakePipeline{snap: pipeline.Snapshot{
		State:      pipeline.Complete,
		Transcript: "I feel good today",
		Feedback:   &feedback.Report{Sentiment: feedback.Sentiment{Rating: "positive"}},
	}}
	body, ct := multipartBody(t, "file", "note.m4a", []byte("audio"))

	rec := do(t, newRouter(p, nil), http.MethodPost, "/upload", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "note.m4a", p.filename)
	assert.Equal(t, "audio", p.uploaded)

	var snap struct {
		State      string `json:"state"`
		Transcript string `json:"transcript"`
		Feedback   struct {
			Sentiment struct {
				Rating string `json:"rating"`
			} `json:"sentiment"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "complete", snap.State)
	assert.Equal(t, "positive", snap.Feedback.Sentiment.Rating)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		body, ct := multipartBody(t, "other", "a.wav", []byte("x"))
		rec := do(t, newRouter(&fakePipeline{}, nil), http.MethodPost, "/upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := do(t, newRouter(&fakePipeline{}, nil), http.MethodPost, "/upload", bytes.NewReader([]byte("x")), "text/plain")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("while recording", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "a.wav", []byte("x"))
		rec := do(t, newRouter(&fakePipeline{loadErr: capture.ErrBusy}, nil), http.MethodPost, "/upload", body, ct)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please wait")
	})

	t.Run("empty", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "a.wav", nil)
		rec := do(t, newRouter(&fakePipeline{loadErr: capture.ErrEmptyAudio}, nil), http.MethodPost, "/upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetAudio(t *testing.T) {
	p := &fakePipeline{audio: ports.NewAudioPayload([]byte("RIFF"), "audio/wav", ports.SourceUpload)}
	h := newRouter(p, nil)

	rec := do(t, h, http.MethodGet, "/audio/abc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/audio/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFeedbackSpeech(t *testing.T) {
	p := &fakePipeline{}
	tts := &fakeTTS{}
	h := newRouter(p, tts)

	rec := do(t, h, http.MethodGet, "/session/feedback/speech", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	p.snap = pipeline.Snapshot{State: pipeline.Complete, Feedback: &feedback.Report{OverallFeedback: "Well done."}}
	rec = do(t, h, http.MethodGet, "/session/feedback/speech", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Well done.", tts.text)

	tts.err = &ports.ConfigurationError{Setting: "ELEVENLABS_API_KEY"}
	rec = do(t, h, http.MethodGet, "/session/feedback/speech", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSession(t *testing.T) {
	p := &fakePipeline{snap: pipeline.Snapshot{State: pipeline.Processing, RunID: "r1"}}

	rec := do(t, newRouter(p, nil), http.MethodGet, "/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"processing"`)
	assert.Contains(t, rec.Body.String(), `"runId":"r1"`)
}
