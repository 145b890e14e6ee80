package feedback

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// MalformedFeedbackError means the model response could not be turned into
// a complete report. Partial reports are never returned.
type MalformedFeedbackError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedFeedbackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed feedback: %s: %v", e.Reason, e.Err)
	}
	return "malformed feedback: " + e.Reason
}

func (e *MalformedFeedbackError) Unwrap() error {
	return e.Err
}

// Parse normalizes rawText and decodes it into a Report. Every section in
// RequiredSections must be present and non-null.
func Parse(rawText string) (*Report, error) {
	cleaned := []byte(Normalize(rawText))

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &sections); err != nil {
		return nil, &MalformedFeedbackError{Reason: "response is not a JSON object", Raw: rawText, Err: err}
	}

	var missing []string
	for _, name := range RequiredSections {
		v, ok := sections[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MalformedFeedbackError{
			Reason: "missing sections: " + strings.Join(missing, ", "),
			Raw:    rawText,
		}
	}

	var report Report
	if err := json.Unmarshal(cleaned, &report); err != nil {
		return nil, &MalformedFeedbackError{Reason: "unexpected section shape", Raw: rawText, Err: err}
	}
	return &report, nil
}
