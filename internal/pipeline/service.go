package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/speech_coach/internal/capture"
	"github.com/Vovarama1992/speech_coach/internal/feedback"
	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const (
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageParse      = "parse"
)

type Options struct {
	// StageTimeout bounds each remote call. Zero means no limit.
	StageTimeout time.Duration
	Notifier     Notifier
	Observer     Observer
}

// Orchestrator drives one session through capture, transcription and
// analysis. At most one run is in flight; HTTP handlers and the bot call it
// concurrently, so the session is guarded by mu.
type Orchestrator struct {
	rec      Recorder
	stt      Transcriber
	analyzer Analyzer
	notifier Notifier
	obs      Observer
	timeout  time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex
	session Snapshot
	audio   *ports.AudioPayload
	audioID string
}

func NewOrchestrator(rec Recorder, stt Transcriber, analyzer Analyzer, log *zap.SugaredLogger, opts Options) *Orchestrator {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Orchestrator{
		rec:      rec,
		stt:      stt,
		analyzer: analyzer,
		notifier: opts.Notifier,
		obs:      opts.Observer,
		timeout:  opts.StageTimeout,
		log:      log,
		session:  Snapshot{State: Idle},
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.clone()
}

// Audio returns the payload of the current run if id matches its playback id.
func (o *Orchestrator) Audio(id string) (*ports.AudioPayload, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.audio == nil || id == "" || id != o.audioID {
		return nil, false
	}
	return o.audio, true
}

func (o *Orchestrator) StartRecording(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Busy() {
		o.obs.ObserveRejected()
		return ErrBusy
	}

	// новый запуск: старые результаты не показываем
	o.resetLocked()

	if err := o.rec.StartRecording(ctx); err != nil {
		o.session.Error = UserMessage(err)
		o.log.Warnw("start recording failed", "error", err)
		return err
	}

	o.session.State = Recording
	o.session.Source = string(ports.SourceMicrophone)
	o.session.StartedAt = time.Now()
	o.log.Infow("recording started")
	return nil
}

func (o *Orchestrator) AppendChunk(chunk []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.State != Recording {
		return capture.ErrNotRecording
	}
	return o.rec.AppendChunk(chunk)
}

// StopRecording finalizes the capture and runs the pipeline on it. It returns
// once the run has completed or failed. Stopping when not recording is a no-op.
func (o *Orchestrator) StopRecording(ctx context.Context) (Snapshot, error) {
	o.mu.Lock()
	if o.session.State != Recording {
		snap := o.session.clone()
		o.mu.Unlock()
		return snap, nil
	}

	payload, err := o.rec.StopRecording()
	if err != nil {
		o.session.State = Failed
		o.session.Error = UserMessage(err)
		o.session.FinishedAt = time.Now()
		snap := o.session.clone()
		o.mu.Unlock()

		o.log.Warnw("stop recording failed", "error", err)
		o.obs.ObserveRun(string(ports.SourceMicrophone), "failed", 0)
		return snap, nil
	}

	runID := o.beginRunLocked(payload)
	o.mu.Unlock()

	return o.process(ctx, runID, payload), nil
}

// LoadFromFile submits an uploaded file. Bad input is returned as an error
// and leaves the session as it was; pipeline failures end up in the snapshot.
// The file is read without holding the session lock, so a slow upload does
// not block readers of the session.
func (o *Orchestrator) LoadFromFile(ctx context.Context, name string, r io.Reader) (Snapshot, error) {
	o.mu.Lock()
	if snap, err := o.rejectLocked(); err != nil {
		o.mu.Unlock()
		return snap, err
	}
	o.mu.Unlock()

	payload, err := o.rec.LoadFromFile(name, r)
	if err != nil {
		return o.Snapshot(), err
	}

	o.mu.Lock()
	// пока читали файл, мог начаться другой запуск
	if snap, err := o.rejectLocked(); err != nil {
		o.mu.Unlock()
		return snap, err
	}
	o.resetLocked()
	runID := o.beginRunLocked(payload)
	o.mu.Unlock()

	return o.process(ctx, runID, payload), nil
}

func (o *Orchestrator) rejectLocked() (Snapshot, error) {
	switch o.session.State {
	case Processing:
		o.obs.ObserveRejected()
		return o.session.clone(), ErrBusy
	case Recording:
		o.obs.ObserveRejected()
		return o.session.clone(), capture.ErrBusy
	}
	return Snapshot{}, nil
}

// Close releases the device if a recording is open. An in-flight run is left
// to finish; its result is discarded.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.rec.Close()
	o.resetLocked()
	return err
}

func (o *Orchestrator) resetLocked() {
	o.session = Snapshot{State: Idle}
	o.audio = nil
	o.audioID = ""
}

func (o *Orchestrator) beginRunLocked(payload *ports.AudioPayload) string {
	runID := uuid.NewString()
	o.audioID = xid.New().String()
	o.audio = payload

	startedAt := o.session.StartedAt
	if startedAt.IsZero() {
		startedAt = payload.CreatedAt()
	}

	o.session = Snapshot{
		RunID:     runID,
		State:     Processing,
		Source:    string(payload.Source()),
		AudioURL:  "/audio/" + o.audioID,
		AudioMIME: payload.MIMEType(),
		AudioSize: payload.Size(),
		StartedAt: startedAt,
	}

	o.log.Infow("run started",
		"run_id", runID,
		"source", payload.Source(),
		"mime", payload.MIMEType(),
		"size", humanize.Bytes(uint64(payload.Size())),
	)
	return runID
}

// process runs transcribe → analyze → parse in order. Remote calls are not
// tied to the caller's cancellation: once issued they run to completion.
func (o *Orchestrator) process(ctx context.Context, runID string, payload *ports.AudioPayload) Snapshot {
	ctx = context.WithoutCancel(ctx)
	log := o.log.With("run_id", runID)

	var transcript string
	err := o.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		var err error
		transcript, err = o.stt.Transcribe(ctx, payload)
		return err
	})
	if err != nil {
		return o.fail(ctx, runID, payload, StageTranscribe, err)
	}

	if strings.TrimSpace(transcript) == "" {
		log.Infow("empty transcript, skipping analysis")
		return o.complete(runID, payload, transcript, nil)
	}

	var raw string
	err = o.stage(ctx, StageAnalyze, func(ctx context.Context) error {
		var err error
		raw, err = o.analyzer.Analyze(ctx, transcript)
		return err
	})
	if err != nil {
		return o.failWithTranscript(ctx, runID, payload, StageAnalyze, transcript, err)
	}

	var report *feedback.Report
	err = o.stage(ctx, StageParse, func(context.Context) error {
		var err error
		report, err = feedback.Parse(raw)
		return err
	})
	if err != nil {
		return o.failWithTranscript(ctx, runID, payload, StageParse, transcript, err)
	}

	if unknown := report.UnknownRatings(); len(unknown) > 0 {
		log.Warnw("ratings outside documented options", "sections", unknown)
		o.obs.ObserveUnknownRatings(unknown)
	}

	return o.complete(runID, payload, transcript, report)
}

func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if o.timeout > 0 && name != StageParse {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	o.obs.ObserveStage(name, time.Since(start), err)
	return err
}

func (o *Orchestrator) complete(runID string, payload *ports.AudioPayload, transcript string, report *feedback.Report) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.obs.ObserveRun(string(payload.Source()), "complete", payload.Size())
	if o.session.RunID != runID {
		return o.session.clone()
	}

	o.session.State = Complete
	o.session.Transcript = transcript
	o.session.Feedback = report
	o.session.FinishedAt = time.Now()

	o.log.Infow("run complete",
		"run_id", runID,
		"duration", o.session.FinishedAt.Sub(o.session.StartedAt),
	)
	return o.session.clone()
}

func (o *Orchestrator) fail(ctx context.Context, runID string, payload *ports.AudioPayload, stage string, err error) Snapshot {
	return o.failWithTranscript(ctx, runID, payload, stage, "", err)
}

// failWithTranscript keeps the transcript when transcription itself succeeded.
func (o *Orchestrator) failWithTranscript(ctx context.Context, runID string, payload *ports.AudioPayload, stage, transcript string, err error) Snapshot {
	o.log.Errorw("run failed", "run_id", runID, "stage", stage, "error", err)
	o.obs.ObserveRun(string(payload.Source()), "failed", payload.Size())

	if o.notifier != nil && !errors.Is(err, feedback.ErrEmptyInput) {
		details := fmt.Sprintf("run=%s stage=%s source=%s size=%s",
			runID, stage, payload.Source(), humanize.Bytes(uint64(payload.Size())))
		if nerr := o.notifier.Notify(ctx, err, details); nerr != nil {
			o.log.Warnw("admin notify failed", "run_id", runID, "error", nerr)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.RunID != runID {
		return o.session.clone()
	}

	o.session.State = Failed
	o.session.Transcript = transcript
	o.session.Error = UserMessage(err)
	o.session.FinishedAt = time.Now()
	return o.session.clone()
}
