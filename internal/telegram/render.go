package telegram

import (
	"strings"

	"github.com/Vovarama1992/speech_coach/internal/feedback"
	"github.com/Vovarama1992/speech_coach/internal/pipeline"
)

// FormatSnapshot renders a finished run as a plain-text chat message.
func FormatSnapshot(snap pipeline.Snapshot) string {
	if snap.State == pipeline.Failed {
		return "⚠️ " + snap.Error
	}
	if strings.TrimSpace(snap.Transcript) == "" {
		return "🤐 No speech detected in the recording."
	}

	var b strings.Builder
	b.WriteString("📝 Transcript:\n")
	b.WriteString(snap.Transcript)

	if snap.Feedback != nil {
		b.WriteString("\n\n")
		writeReport(&b, snap.Feedback)
	}
	return b.String()
}

func writeReport(b *strings.Builder, r *feedback.Report) {
	b.WriteString("🗣 Clarity: " + string(r.Clarity.Rating) + "\n")
	if len(r.Clarity.UnclearWords) > 0 {
		b.WriteString("   Unclear words: " + strings.Join(r.Clarity.UnclearWords, ", ") + "\n")
	}
	writeLine(b, "   ", r.Clarity.PronunciationTips)

	b.WriteString("🎵 Tonality: " + string(r.Tonality.Rating) + "\n")
	writeLine(b, "   ", r.Tonality.EmphasisSuggestions)

	b.WriteString("📚 Vocabulary: " + string(r.Vocabulary.Rating) + "\n")
	for _, s := range r.Vocabulary.Suggestions {
		b.WriteString("   " + s.Original + " → " + s.Alternative + "\n")
	}

	b.WriteString("💬 Sentiment: " + string(r.Sentiment.Rating) + "\n")
	writeLine(b, "   ", r.Sentiment.Comments)

	if r.OverallFeedback != "" {
		b.WriteString("\n⭐ " + r.OverallFeedback)
	}
}

func writeLine(b *strings.Builder, indent, s string) {
	if s = strings.TrimSpace(s); s != "" {
		b.WriteString(indent + s + "\n")
	}
}
