package pipeline

import (
	"errors"

	"github.com/Vovarama1992/speech_coach/internal/capture"
	"github.com/Vovarama1992/speech_coach/internal/feedback"
	"github.com/Vovarama1992/speech_coach/internal/ports"
)

// UserMessage turns any pipeline error into the single line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		permErr *capture.PermissionError
		cfgErr  *ports.ConfigurationError
		netErr  *ports.NetworkError
		fbErr   *feedback.MalformedFeedbackError
	)

	switch {
	case errors.As(err, &permErr):
		return "Error accessing microphone: " + permErr.Error()
	case errors.As(err, &cfgErr):
		return "Service is not configured: " + cfgErr.Setting + " is not set"
	case errors.Is(err, capture.ErrEmptyAudio):
		return "No audio was captured. Please try again."
	case errors.Is(err, capture.ErrFileTooLarge), errors.Is(err, capture.ErrBufferFull):
		return "The recording is too large. Please try a shorter one."
	case errors.Is(err, feedback.ErrEmptyInput):
		return "No speech detected in the recording."
	case errors.As(err, &netErr):
		return "Network error while processing audio. Please check your connection and try again."
	case errors.As(err, &fbErr):
		return "Error processing audio: could not read the feedback (" + fbErr.Reason + ")"
	case errors.Is(err, ErrBusy), errors.Is(err, capture.ErrBusy):
		return "Please wait for the current recording to finish."
	default:
		return "Error processing audio: " + err.Error()
	}
}
