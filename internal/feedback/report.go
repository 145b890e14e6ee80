package feedback

import "slices"

// Rating is passed through as the model wrote it. Known reports whether
// it is one of the documented options; nothing rejects an unknown value.
type Rating string

type Report struct {
	Clarity         Clarity    `json:"clarity"`
	Tonality        Tonality   `json:"tonality"`
	Vocabulary      Vocabulary `json:"vocabulary"`
	Sentiment       Sentiment  `json:"sentiment"`
	OverallFeedback string     `json:"overallFeedback"`
}

type Clarity struct {
	Rating            Rating   `json:"rating"`
	UnclearWords      []string `json:"unclearWords"`
	PronunciationTips string   `json:"pronunciationTips"`
}

type Tonality struct {
	Rating              Rating `json:"rating"`
	EmphasisSuggestions string `json:"emphasisSuggestions"`
}

type Vocabulary struct {
	Rating      Rating           `json:"rating"`
	Suggestions []WordSuggestion `json:"suggestions"`
}

type WordSuggestion struct {
	Original    string `json:"original"`
	Alternative string `json:"alternative"`
}

type Sentiment struct {
	Rating   Rating `json:"rating"`
	Comments string `json:"comments"`
}

// RequiredSections must all be present for a report to be accepted.
var RequiredSections = []string{"clarity", "tonality", "vocabulary", "sentiment"}

var (
	ClarityRatings    = []Rating{"good", "needs improvement", "poor"}
	TonalityRatings   = []Rating{"expressive", "somewhat monotone", "very monotone"}
	VocabularyRatings = []Rating{"varied", "limited", "very limited"}
	SentimentRatings  = []Rating{"positive", "neutral", "negative"}
)

func (r Rating) Known(options []Rating) bool {
	return slices.Contains(options, r)
}

// UnknownRatings lists the sections whose rating is outside the documented
// options, for logging.
func (r *Report) UnknownRatings() []string {
	var out []string
	if !r.Clarity.Rating.Known(ClarityRatings) {
		out = append(out, "clarity")
	}
	if !r.Tonality.Rating.Known(TonalityRatings) {
		out = append(out, "tonality")
	}
	if !r.Vocabulary.Rating.Known(VocabularyRatings) {
		out = append(out, "vocabulary")
	}
	if !r.Sentiment.Rating.Known(SentimentRatings) {
		out = append(out, "sentiment")
	}
	return out
}

// Clone returns a deep copy of r.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Clarity.UnclearWords = slices.Clone(r.Clarity.UnclearWords)
	out.Vocabulary.Suggestions = slices.Clone(r.Vocabulary.Suggestions)
	return &out
}
