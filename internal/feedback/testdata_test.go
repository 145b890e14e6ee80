package feedback

const validReportJSON = `{
  "clarity": {
    "rating": "needs improvement",
    "unclearWords": ["today", "feel"],
    "pronunciationTips": "Slow down on multi-syllable words."
  },
  "tonality": {
    "rating": "somewhat monotone",
    "emphasisSuggestions": "Stress 'good'."
  },
  "vocabulary": {
    "rating": "limited",
    "suggestions": [{"original": "good", "alternative": "wonderful"}]
  },
  "sentiment": {
    "rating": "positive",
    "comments": "An upbeat statement."
  },
  "overallFeedback": "Nice work, keep practicing. \"Small steps every day.\""
}`
