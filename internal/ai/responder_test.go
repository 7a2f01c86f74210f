package ai

import (
	"context"
	"testing"

	"mood-ai/internal/domain"
)

func TestParseModelReply_StrictJSON(t *testing.T) {
	content := `{"response": "That's wonderful!", "sentiment": "positive", "mood_score": 0.9}`
	reply := parseModelReply("I feel great", content)
	if reply.Response != "That's wonderful!" {
		t.Fatalf("unexpected response %q", reply.Response)
	}
	if reply.Sentiment != domain.SentimentPositive {
		t.Fatalf("expected POSITIVE, got %s", reply.Sentiment)
	}
	if reply.MoodScore != 0.9 {
		t.Fatalf("expected 0.9, got %v", reply.MoodScore)
	}
}

func TestParseModelReply_FencedJSON(t *testing.T) {
	content := "```json\n{\"response\": \"ok\", \"sentiment\": \"NEGATIVE\", \"mood_score\": 0.1}\n```"
	reply := parseModelReply("bad day", content)
	if reply.Response != "ok" || reply.Sentiment != domain.SentimentNegative {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestParseModelReply_LooseText(t *testing.T) {
	reply := parseModelReply("I am so sad today", "Sorry to hear that, want to talk about it?")
	if reply.Response != "Sorry to hear that, want to talk about it?" {
		t.Fatalf("expected raw content as response, got %q", reply.Response)
	}
	if reply.Sentiment != domain.SentimentNegative {
		t.Fatalf("expected heuristic NEGATIVE, got %s", reply.Sentiment)
	}
}

func TestParseModelReply_ClampsScore(t *testing.T) {
	content := `{"response": "hi", "sentiment": "NEUTRAL", "mood_score": 3.5}`
	reply := parseModelReply("hello", content)
	if reply.MoodScore != 1.0 {
		t.Fatalf("expected clamped 1.0, got %v", reply.MoodScore)
	}
}

func TestHTTPResponder_NoAPIKey(t *testing.T) {
	c := NewHTTPResponder("", "", "gpt-4o-mini", nil)
	reply, err := c.Reply(context.Background(), "I feel happy and great")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Response != unconfiguredResponse {
		t.Fatalf("expected canned response, got %q", reply.Response)
	}
	if reply.Sentiment != domain.SentimentPositive {
		t.Fatalf("expected heuristic POSITIVE, got %s", reply.Sentiment)
	}
}

func TestHeuristicSentiment(t *testing.T) {
	cases := []struct {
		text string
		want domain.Sentiment
	}{
		{"I'm happy and things are great", domain.SentimentPositive},
		{"feeling sad and lonely", domain.SentimentNegative},
		{"just checking in", domain.SentimentNeutral},
		{"", domain.SentimentNeutral},
	}
	for _, c := range cases {
		if got := HeuristicSentiment(c.text); got != c.want {
			t.Fatalf("HeuristicSentiment(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}
