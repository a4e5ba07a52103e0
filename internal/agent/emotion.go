package agent

import (
	"strings"
)

var stressKeywords = []string{"urgent", "emergency", "worried"}

// DetectEmotion tags the user's message. An explicit override always wins.
func DetectEmotion(text, moodOverride string) EmotionResult {
	if moodOverride != "" {
		return EmotionResult{Sentiment: moodOverride, Evidence: "user-selected"}
	}

	lowered := strings.ToLower(text)
	for _, w := range stressKeywords {
		if strings.Contains(lowered, w) {
			return EmotionResult{Sentiment: "stressed", Evidence: "found urgent/worried keywords"}
		}
	}
	return EmotionResult{Sentiment: "calm", Evidence: "no stress keywords"}
}
