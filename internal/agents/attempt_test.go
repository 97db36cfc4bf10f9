package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/state"
)

const clarifyArgs = `{
	"clarification": "This asks how likely you are to recommend the workflow to a colleague, on a 0-10 scale.",
	"examples": ["I'd give it a 7 because scheduling works well"],
	"did_change_meaning": false
}`

func TestClarify(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{toolResult(clarifyArgs, 88)}}
	store := newMemStore()
	agent := NewAttemptAgent(completer, store)

	question := core.Question{ID: "q3", Text: "What is your NPS for the current EHR workflow?", Type: core.QuestionLikert}
	result, tokens, err := agent.Clarify(context.Background(), "sess-1", question, &core.DoctorContext{Specialty: "Cardiology", YearsExperience: 12})
	if err != nil {
		t.Fatalf("Clarify: %v", err)
	}
	if result.QuestionID != "q3" {
		t.Errorf("question id = %q", result.QuestionID)
	}
	if !strings.Contains(result.Clarification, "0-10 scale") {
		t.Errorf("clarification = %q", result.Clarification)
	}
	if tokens != 88 {
		t.Errorf("tokens = %d, want 88", tokens)
	}

	req := completer.requests[0]
	if req.Tool == nil || req.Tool.Name != "clarification_result" {
		t.Fatalf("tool = %+v, want forced clarification_result", req.Tool)
	}
	if req.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", req.Temperature)
	}
	if !strings.Contains(req.User, "Cardiology specialty, 12 years experience") {
		t.Error("prompt missing doctor context")
	}

	// Same question text from another doctor hits the cache.
	cached, tokens, err := agent.Clarify(context.Background(), "sess-2", question, nil)
	if err != nil {
		t.Fatalf("cached Clarify: %v", err)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("provider calls = %d, want 1 (second call cached)", len(completer.requests))
	}
	if tokens != 0 {
		t.Errorf("cached tokens = %d, want 0", tokens)
	}
	if cached.Clarification != result.Clarification {
		t.Error("cached clarification differs")
	}
}

func TestClarify_DefaultDoctorContext(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{toolResult(clarifyArgs, 10)}}
	agent := NewAttemptAgent(completer, newMemStore())

	_, _, err := agent.Clarify(context.Background(), "s", core.Question{ID: "q1", Text: "Rate the portal."}, nil)
	if err != nil {
		t.Fatalf("Clarify: %v", err)
	}
	if !strings.Contains(completer.requests[0].User, "General specialty, unknown years experience") {
		t.Error("prompt should carry default doctor context")
	}
}

func TestClarify_MeaningFlagPinned(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{toolResult(`{
		"clarification": "Rewritten question with a different intent.",
		"did_change_meaning": true
	}`, 10)}}
	agent := NewAttemptAgent(completer, newMemStore())

	result, _, err := agent.Clarify(context.Background(), "s", core.Question{ID: "q1", Text: "Rate the portal."}, nil)
	if err != nil {
		t.Fatalf("Clarify: %v", err)
	}
	if result.DidChangeMeaning {
		t.Error("did_change_meaning must be pinned to false")
	}
}

func TestClarify_CacheReadErrorDegrades(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{toolResult(clarifyArgs, 10)}}
	store := newMemStore()
	store.getErr = errors.New("store down")
	agent := NewAttemptAgent(completer, store)

	_, _, err := agent.Clarify(context.Background(), "s", core.Question{ID: "q1", Text: "Rate the portal."}, nil)
	if err != nil {
		t.Fatalf("Clarify should survive a cache read failure: %v", err)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(completer.requests))
	}
}

func TestClarify_CacheWriteErrorDegrades(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{toolResult(clarifyArgs, 10)}}
	store := newMemStore()
	store.setErr = errors.New("store down")
	agent := NewAttemptAgent(completer, store)

	result, _, err := agent.Clarify(context.Background(), "s", core.Question{ID: "q1", Text: "Rate the portal."}, nil)
	if err != nil {
		t.Fatalf("Clarify should survive a cache write failure: %v", err)
	}
	if result.Clarification == "" {
		t.Error("result should still carry the clarification")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		answered    int
		wantPercent float64
		wantMessage string
	}{
		{"not started", 10, 0, 0, "This survey takes about 3 min. Let's go!"},
		{"early", 10, 2, 20, "Great start! Keep going."},
		{"middle", 10, 5, 50, "Halfway there — only 5 questions left!"},
		{"late", 10, 8, 80, "Almost done! Your input makes a difference."},
		{"last one", 10, 9, 90, "Just 1 more question!"},
		{"last few", 20, 18, 90, "Just 2 more questions!"},
		{"third rounds past the early tier", 3, 1, 33.3, "Halfway there — only 2 questions left!"},
	}
	agent := NewAttemptAgent(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := agent.Progress(tt.total, tt.answered)
			if p.PercentComplete != tt.wantPercent {
				t.Errorf("percent = %v, want %v", p.PercentComplete, tt.wantPercent)
			}
			if p.MotivationalMessage != tt.wantMessage {
				t.Errorf("message = %q, want %q", p.MotivationalMessage, tt.wantMessage)
			}
			wantRemaining := (tt.total - tt.answered) * 18
			if p.EstimatedSecondsRemaining != wantRemaining {
				t.Errorf("seconds remaining = %d, want %d", p.EstimatedSecondsRemaining, wantRemaining)
			}
			if p.QuestionsTotal != tt.total || p.QuestionsAnswered != tt.answered {
				t.Errorf("counts = %d/%d", p.QuestionsAnswered, p.QuestionsTotal)
			}
		})
	}
}

func TestCompletionSummary(t *testing.T) {
	completer := &fakeCompleter{results: []*core.CompletionResult{textResult("```json\n"+`{
		"thank_you_message": "Thank you for sharing your telehealth experience!",
		"aggregate_insight": "Doctors consistently point to scheduling as the biggest win.",
		"next_steps": "Your feedback goes straight to the operations team this week."
	}`+"\n```", 132)}}
	agent := NewAttemptAgent(completer, newMemStore())

	responses := []map[string]any{{"q1": 8, "q2": "Works well on mobile"}}
	summary, tokens, err := agent.CompletionSummary(context.Background(), responses, "Telehealth Experience", 57)
	if err != nil {
		t.Fatalf("CompletionSummary: %v", err)
	}
	if summary.ThankYouMessage == "" || summary.AggregateInsight == "" || summary.NextSteps == "" {
		t.Errorf("summary = %+v", summary)
	}
	if tokens != 132 {
		t.Errorf("tokens = %d, want 132", tokens)
	}

	req := completer.requests[0]
	if !req.JSONOnly {
		t.Error("request should demand a JSON object")
	}
	if req.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", req.Temperature)
	}
	for _, want := range []string{"Survey: Telehealth Experience", "Total responses from all doctors so far: 57"} {
		if !strings.Contains(req.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSaveProgress_MergesAnswers(t *testing.T) {
	store := newMemStore()
	agent := NewAttemptAgent(nil, store)
	ctx := context.Background()

	if err := agent.SaveProgress(ctx, "sess-1", "survey-1", map[string]any{"q1": "first", "q2": float64(3)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := agent.SaveProgress(ctx, "sess-1", "survey-1", map[string]any{"q2": float64(5), "q3": true}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	session, found, err := agent.RestoreSession(ctx, "sess-1")
	if err != nil || !found {
		t.Fatalf("RestoreSession: found=%v err=%v", found, err)
	}
	if session.SurveyID != "survey-1" {
		t.Errorf("survey id = %q", session.SurveyID)
	}
	want := map[string]any{"q1": "first", "q2": float64(5), "q3": true}
	if len(session.Answers) != len(want) {
		t.Fatalf("answers = %v, want %v", session.Answers, want)
	}
	for k, v := range want {
		if session.Answers[k] != v {
			t.Errorf("answers[%q] = %v, want %v", k, session.Answers[k], v)
		}
	}
	if session.LastSaved == 0 {
		t.Error("last saved should be set")
	}
	if ttl := store.ttls[state.SessionKey("sess-1")]; ttl != sessionTTL {
		t.Errorf("session ttl = %v, want %v", ttl, sessionTTL)
	}
}

func TestSaveProgress_CorruptStateResets(t *testing.T) {
	store := newMemStore()
	store.data[state.SessionKey("sess-1")] = []byte("not json")
	agent := NewAttemptAgent(nil, store)

	if err := agent.SaveProgress(context.Background(), "sess-1", "survey-1", map[string]any{"q1": "a"}); err != nil {
		t.Fatalf("SaveProgress should replace corrupt state: %v", err)
	}

	var session core.SessionState
	if err := json.Unmarshal(store.data[state.SessionKey("sess-1")], &session); err != nil {
		t.Fatalf("stored state is not valid JSON: %v", err)
	}
	if len(session.Answers) != 1 || session.Answers["q1"] != "a" {
		t.Errorf("answers = %v", session.Answers)
	}
}

func TestSaveProgress_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("store down")
	agent := NewAttemptAgent(nil, store)

	if err := agent.SaveProgress(context.Background(), "s", "sv", map[string]any{"q1": "a"}); err == nil {
		t.Fatal("SaveProgress must fail when the store is unreachable")
	}
}

func TestRestoreSession_NotFound(t *testing.T) {
	agent := NewAttemptAgent(nil, newMemStore())

	session, found, err := agent.RestoreSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if found || session != nil {
		t.Errorf("found=%v session=%+v, want miss", found, session)
	}
}
