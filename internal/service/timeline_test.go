package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mood-ai/internal/ai"
	"mood-ai/internal/domain"
)

type mockChatRepo struct {
	created    []domain.ChatRecord
	createErr  error
	listData   []domain.ChatRecord
	listErr    error
	createDone chan string
}

func (m *mockChatRepo) Create(_ context.Context, record domain.ChatRecord) error {
	if m.createErr != nil {
		if m.createDone != nil {
			m.createDone <- ""
		}
		return m.createErr
	}
	m.created = append(m.created, record)
	if m.createDone != nil {
		m.createDone <- record.ID
	}
	return nil
}

func (m *mockChatRepo) ListByUserID(_ context.Context, _ string) ([]domain.ChatRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listData, nil
}

func (m *mockChatRepo) ListAll(_ context.Context) ([]domain.ChatRecord, error) {
	return m.listData, m.listErr
}

func (m *mockChatRepo) Delete(_ context.Context, _ string) error               { return nil }
func (m *mockChatRepo) DeleteByIDAndUser(_ context.Context, _, _ string) error { return nil }
func (m *mockChatRepo) DeleteByUserID(_ context.Context, _ string) error { return nil }

func TestTimelineAppendOptimistic_ImmediatelyVisible(t *testing.T) {
	tl := NewTimeline()

	id, err := tl.AppendOptimistic("  I feel great  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tl.Len() != 1 {
		t.Fatalf("expected turn visible synchronously, len=%d", tl.Len())
	}
	if tl.PendingCount() != 1 {
		t.Fatalf("expected 1 pending turn, got %d", tl.PendingCount())
	}

	recs := tl.Records()
	if recs[0].ID != id || recs[0].UserMessage != "I feel great" {
		t.Fatalf("unexpected pending record %+v", recs[0])
	}
	if recs[0].Resolved() || recs[0].HasMoodData() {
		t.Fatalf("pending turn must not have response or mood data")
	}
}

func TestTimelineAppendOptimistic_EmptyMessage(t *testing.T) {
	tl := NewTimeline()
	if _, err := tl.AppendOptimistic("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if tl.Len() != 0 {
		t.Fatalf("empty message must not mutate timeline")
	}
}

func TestTimelineResolve_ExactlyOnce(t *testing.T) {
	tl := NewTimeline()
	id, _ := tl.AppendOptimistic("hola")

	reply := ai.Reply{Response: "hola!", Sentiment: domain.SentimentNeutral, MoodScore: 0.5}
	rec, err := tl.Resolve(id, reply)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.AIResponse != "hola!" || rec.Sentiment != domain.SentimentNeutral {
		t.Fatalf("unexpected resolved record %+v", rec)
	}
	if rec.MoodScore == nil || *rec.MoodScore != 0.5 {
		t.Fatalf("expected mood score 0.5, got %v", rec.MoodScore)
	}
	if tl.PendingCount() != 0 {
		t.Fatalf("expected no pending turns after resolve")
	}

	if _, err := tl.Resolve(id, reply); !errors.Is(err, ErrTurnResolved) {
		t.Fatalf("second resolve must fail with ErrTurnResolved, got %v", err)
	}
	if _, err := tl.Fail(id); !errors.Is(err, ErrTurnResolved) {
		t.Fatalf("fail after resolve must fail with ErrTurnResolved, got %v", err)
	}
}

func TestTimelineResolve_UnknownTurn(t *testing.T) {
	tl := NewTimeline()
	if _, err := tl.Resolve("nope", ai.Reply{}); !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("expected ErrTurnNotFound, got %v", err)
	}
}

func TestTimelineResolve_ClampsScoreAndNormalizesSentiment(t *testing.T) {
	tl := NewTimeline()
	id, _ := tl.AppendOptimistic("hola")

	rec, err := tl.Resolve(id, ai.Reply{Response: "ok", Sentiment: "weird-label", MoodScore: 2.0})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Sentiment != domain.SentimentNeutral {
		t.Fatalf("unrecognized sentiment must map to NEUTRAL, got %s", rec.Sentiment)
	}
	if rec.MoodScore == nil || *rec.MoodScore != 1.0 {
		t.Fatalf("expected clamped score 1.0, got %v", rec.MoodScore)
	}
}

func TestTimelineFail_FallbackWithoutSentiment(t *testing.T) {
	tl := NewTimeline()
	id, _ := tl.AppendOptimistic("test")

	rec, err := tl.Fail(id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.AIResponse != FallbackResponse {
		t.Fatalf("expected fallback text, got %q", rec.AIResponse)
	}
	if rec.Sentiment != "" || rec.MoodScore != nil {
		t.Fatalf("failed turn must not fabricate sentiment or score")
	}
}

func TestTimelineLoadHistory_ReordersChronologically(t *testing.T) {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	repo := &mockChatRepo{listData: []domain.ChatRecord{
		// Mas reciente primero, como lo entrega el store.
		{ID: "c2", UserMessage: "later", AIResponse: "ok", Sentiment: domain.SentimentNeutral, CreatedAt: base.Add(time.Hour), Persisted: true},
		{ID: "c1", UserMessage: "hi", AIResponse: "hello", Sentiment: domain.SentimentNeutral, CreatedAt: base, Persisted: true},
	}}

	tl := NewTimeline()
	if err := tl.LoadHistory(context.Background(), repo, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	recs := tl.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ID != "c1" || recs[1].ID != "c2" {
		t.Fatalf("expected chronological order, got %s then %s", recs[0].ID, recs[1].ID)
	}
}

func TestTimelineLoadHistory_PrependsBeforeLiveTurns(t *testing.T) {
	repo := &mockChatRepo{listData: []domain.ChatRecord{
		{ID: "h1", UserMessage: "old", AIResponse: "ok", CreatedAt: time.Now().UTC().Add(-time.Hour), Persisted: true},
	}}

	tl := NewTimeline()
	liveID, _ := tl.AppendOptimistic("live message")

	if err := tl.LoadHistory(context.Background(), repo, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	recs := tl.Records()
	if recs[0].ID != "h1" || recs[1].ID != liveID {
		t.Fatalf("history must be prepended, got %s then %s", recs[0].ID, recs[1].ID)
	}

	// El turno vivo sigue siendo resoluble despues del merge.
	if _, err := tl.Resolve(liveID, ai.Reply{Response: "ok", Sentiment: domain.SentimentNeutral, MoodScore: 0.5}); err != nil {
		t.Fatalf("expected live turn still resolvable, got %v", err)
	}
	recs = tl.Records()
	if recs[1].AIResponse != "ok" {
		t.Fatalf("resolution applied to wrong record: %+v", recs[1])
	}
}

func TestTimelineLoadHistory_FetchFailureLeavesEmpty(t *testing.T) {
	repo := &mockChatRepo{listErr: errors.New("unauthorized")}
	tl := NewTimeline()

	if err := tl.LoadHistory(context.Background(), repo, "u1"); err == nil {
		t.Fatalf("expected recoverable error")
	}
	if tl.Len() != 0 {
		t.Fatalf("failed load must leave timeline empty, len=%d", tl.Len())
	}

	// La sesion sigue usable.
	if _, err := tl.AppendOptimistic("still works"); err != nil {
		t.Fatalf("expected usable timeline after failed load, got %v", err)
	}
}

func TestTimelineLoadHistory_OnlyOnce(t *testing.T) {
	repo := &mockChatRepo{listData: []domain.ChatRecord{
		{ID: "h1", UserMessage: "old", AIResponse: "ok", CreatedAt: time.Now().UTC(), Persisted: true},
	}}
	tl := NewTimeline()

	if err := tl.LoadHistory(context.Background(), repo, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := tl.LoadHistory(context.Background(), repo, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tl.Len() != 1 {
		t.Fatalf("history must merge once, len=%d", tl.Len())
	}
}

func TestTimelineMarkPersisted(t *testing.T) {
	tl := NewTimeline()
	id, _ := tl.AppendOptimistic("hola")
	tl.Resolve(id, ai.Reply{Response: "ok", Sentiment: domain.SentimentNeutral, MoodScore: 0.5})

	if !tl.MarkPersisted(id) {
		t.Fatalf("expected turn marked persisted")
	}
	if tl.MarkPersisted("unknown") {
		t.Fatalf("unknown id must not be marked")
	}
	if recs := tl.Records(); !recs[0].Persisted {
		t.Fatalf("expected persisted flag set")
	}
}
