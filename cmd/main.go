package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/speech_coach/internal/capture"
	"github.com/Vovarama1992/speech_coach/internal/delivery"
	"github.com/Vovarama1992/speech_coach/internal/error_notificator"
	"github.com/Vovarama1992/speech_coach/internal/feedback"
	"github.com/Vovarama1992/speech_coach/internal/metrics"
	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/Vovarama1992/speech_coach/internal/speech"
	"github.com/Vovarama1992/speech_coach/internal/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = speech.DefaultBaseURL
	}

	maxBytes := envInt("MAX_RECORDING_BYTES", 25<<20)

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// TELEGRAM BOT (optional)
	// =========================================================================

	var bot *tgbotapi.BotAPI
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		b, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}
		bot = b
		sugar.Infow("[bot] ready", "username", bot.Self.UserName)
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator = error_notificator.NewLogInfra(sugar)
	if adminIDs := envInt64List("TELEGRAM_ADMIN_CHAT_ID"); bot != nil && len(adminIDs) > 0 {
		errInfra = error_notificator.NewTelegramInfra(bot, adminIDs, sugar)
	}
	errService := error_notificator.NewService(errInfra, 10*time.Minute)

	// =========================================================================
	// METRICS
	// =========================================================================

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// =========================================================================
	// CLIENTS (STT / ANALYSIS / TTS)
	// =========================================================================

	openAIKey := ports.EnvCredential("OPENAI_API_KEY")

	whisperClient := speech.NewWhisperClient(openAIKey, baseURL, os.Getenv("TRANSCRIPTION_MODEL"), 2*time.Minute)
	feedbackClient := feedback.NewOpenAIClient(openAIKey, baseURL, os.Getenv("ANALYSIS_MODEL"), 2*time.Minute)
	ttsClient := speech.NewElevenLabsClient(
		ports.EnvCredential("ELEVENLABS_API_KEY"),
		os.Getenv("ELEVENLABS_VOICE_ID"),
		"",
	)

	speechService := speech.NewService(whisperClient, ttsClient)

	// =========================================================================
	// CAPTURE / PIPELINE
	// =========================================================================

	var mic capture.Microphone
	switch strings.ToLower(os.Getenv("MICROPHONE")) {
	case "portaudio":
		mic = capture.NewPortAudioMicrophone(envInt("MICROPHONE_SAMPLE_RATE", 16000))
	default:
		mic = capture.NewBrowserMicrophone(os.Getenv("MICROPHONE_MIME"))
	}

	recorder := capture.NewController(mic, maxBytes, sugar)

	orchestrator := pipeline.NewOrchestrator(recorder, speechService, feedbackClient, sugar, pipeline.Options{
		StageTimeout: 2 * time.Minute,
		Notifier:     errService,
		Observer:     m,
	})
	defer func() {
		if err := orchestrator.Close(); err != nil {
			sugar.Warnw("close orchestrator", "error", err)
		}
	}()

	if bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		botApp := telegram.NewBotApp(bot, orchestrator, speechService, int64(maxBytes), sugar)
		go botApp.Run(ctx, bot.GetUpdatesChan(u))
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	sessionHandler := delivery.NewSessionHandler(orchestrator, speechService, int64(maxBytes), zl)
	delivery.RegisterRoutes(r, sessionHandler)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "speech_coach",
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func envInt(name string, def int) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// envInt64List parses a comma separated list of chat ids.
func envInt64List(name string) []int64 {
	var out []int64
	for _, s := range strings.Split(os.Getenv(name), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
