package agent

import (
	"testing"
)

func TestDetectEmotion_OverrideWins(t *testing.T) {
	res := DetectEmotion("this is URGENT", "cheerful")
	if res.Sentiment != "cheerful" || res.Evidence != "user-selected" {
		t.Fatalf("got %+v", res)
	}
}

func TestDetectEmotion_StressKeywords(t *testing.T) {
	for _, text := range []string{"this is Urgent!", "family EMERGENCY", "I'm worried about the EMI"} {
		res := DetectEmotion(text, "")
		if res.Sentiment != "stressed" {
			t.Fatalf("text=%q sentiment=%s", text, res.Sentiment)
		}
	}
}

func TestDetectEmotion_Calm(t *testing.T) {
	res := DetectEmotion("I would like a personal loan", "")
	if res.Sentiment != "calm" {
		t.Fatalf("sentiment=%s", res.Sentiment)
	}
}
