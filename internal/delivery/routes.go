package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, h *SessionHandler) {
	r.Route("/", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		// --- запись и загрузка ---
		pr.Group(func(tr chi.Router) {
			tr.Use(httprate.LimitByIP(30, time.Minute))

			tr.Post("/recording/start", h.StartRecording)
			tr.Post("/recording/stop", h.StopRecording)
			tr.Post("/upload", h.Upload)
		})
		// чанки идут часто, без лимита
		pr.Post("/recording/chunk", h.AppendChunk)

		// --- результаты ---
		pr.Get("/session", h.GetSession)
		pr.Get("/audio/{id}", h.GetAudio)
		pr.Get("/session/feedback/speech", h.GetFeedbackSpeech)
	})
}
