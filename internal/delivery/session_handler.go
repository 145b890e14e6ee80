package delivery

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speech_coach/internal/capture"
	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type SessionHandler struct {
	pipeline  Pipeline
	tts       Synthesizer
	maxUpload int64
	log       *logger.ZapLogger
}

func NewSessionHandler(p Pipeline, tts Synthesizer, maxUpload int64, log *logger.ZapLogger) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &SessionHandler{
		pipeline:  p,
		tts:       tts,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (h *SessionHandler) StartRecording(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.StartRecording(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.pipeline.Snapshot())
}

// AppendChunk takes one recorder chunk as the raw request body.
func (h *SessionHandler) AppendChunk(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "chunk is too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.pipeline.AppendChunk(body); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) StopRecording(w http.ResponseWriter, r *http.Request) {
	snap, err := h.pipeline.StopRecording(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, pipeline.UserMessage(capture.ErrFileTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing file", Error: err})
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	snap, err := h.pipeline.LoadFromFile(r.Context(), header.Filename, file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.pipeline.Snapshot())
}

func (h *SessionHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.pipeline.Audio(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "audio not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", audio.MIMEType())
	w.Header().Set("Content-Length", strconv.Itoa(audio.Size()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.Copy(w, audio.Reader())
}

// GetFeedbackSpeech reads the overall feedback of the current run aloud.
func (h *SessionHandler) GetFeedbackSpeech(w http.ResponseWriter, r *http.Request) {
	snap := h.pipeline.Snapshot()
	if snap.Feedback == nil || snap.Feedback.OverallFeedback == "" {
		http.Error(w, "no feedback to read", http.StatusNotFound)
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), snap.Feedback.OverallFeedback)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	_, _ = w.Write(audio)
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to encode response", Error: err})
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Log(logger.LogEntry{Level: "error", Message: "request failed", Error: err})
	}
	h.writeJSON(w, status, map[string]string{"error": pipeline.UserMessage(err)})
}

func statusFor(err error) int {
	var (
		permErr *capture.PermissionError
		cfgErr  *ports.ConfigurationError
	)
	switch {
	case errors.Is(err, pipeline.ErrBusy),
		errors.Is(err, capture.ErrBusy),
		errors.Is(err, capture.ErrAlreadyRecording),
		errors.Is(err, capture.ErrNotRecording):
		return http.StatusConflict
	case errors.As(err, &permErr):
		return http.StatusForbidden
	case errors.Is(err, capture.ErrFileTooLarge), errors.Is(err, capture.ErrBufferFull):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, capture.ErrEmptyAudio):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
