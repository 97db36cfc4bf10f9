package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
)

// setQuality stamps quality scores directly so lifecycle tests can pass the
// launch gate without driving the design agent.
func (h *harness) setQuality(t *testing.T, id, admin string) {
	t.Helper()
	if err := h.surveys.SetQuality(context.Background(), id, admin, 8.0, 72.0, 60); err != nil {
		t.Fatalf("Failed to set quality scores: %v", err)
	}
}

func TestCreateSurvey(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})

	view := h.createDraft(t, "admin-1")
	if view.ID == "" {
		t.Fatal("expected a generated survey ID")
	}
	if view.Status != core.SurveyDraft {
		t.Errorf("status = %q, want draft", view.Status)
	}
	if view.Version != 1 {
		t.Errorf("version = %d, want 1", view.Version)
	}
	if view.EstimatedTimeSeconds != 36 {
		t.Errorf("estimated_time_seconds = %d, want 36 for two questions", view.EstimatedTimeSeconds)
	}
	if view.LaunchedAt != nil {
		t.Error("draft must not carry a launch timestamp")
	}
}

func TestCreateSurveyValidation(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})

	rec := h.do(t, http.MethodPost, "/surveys", asAdmin("admin-1"),
		map[string]any{"title": "No questions yet"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "title and questions are required" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCreateSurveyRejectsPHI(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})

	rec := h.do(t, http.MethodPost, "/surveys", asAdmin("admin-1"), map[string]any{
		"title": "Intake",
		"questions": []map[string]any{
			{"id": "q1", "text": "What is the patient name for this case?", "type": "text"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body struct {
		Error      string           `json:"error"`
		Violations []core.Violation `json:"violations"`
	}
	decodeBody(t, rec, &body)
	if body.Error != "survey contains potential PHI" {
		t.Errorf("error = %q", body.Error)
	}
	if len(body.Violations) != 1 || body.Violations[0].QuestionID != "q1" {
		t.Fatalf("unexpected violations: %+v", body.Violations)
	}
	if body.Violations[0].Recommendation == "" {
		t.Error("violation must carry a recommendation")
	}
}

func TestCreateSurveyStripsMarkup(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})

	rec := h.do(t, http.MethodPost, "/surveys", asAdmin("admin-1"), map[string]any{
		"title":       "<script>alert(1)</script>EHR Satisfaction",
		"description": "Quarterly <b>EHR</b> feedback",
		"questions": []map[string]any{
			{"id": "q1", "text": "How <i>satisfied</i> are you with your EHR system?", "type": "likert"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var view surveyView
	decodeBody(t, rec, &view)
	if view.Title != "EHR Satisfaction" {
		t.Errorf("title = %q, want markup stripped", view.Title)
	}
	if view.Description != "Quarterly EHR feedback" {
		t.Errorf("description = %q, want markup stripped", view.Description)
	}
	if view.Questions[0].Text != "How satisfied are you with your EHR system?" {
		t.Errorf("question text = %q, want markup stripped", view.Questions[0].Text)
	}
}

func TestUpdateSurveyBumpsVersion(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")

	rec := h.do(t, http.MethodPatch, "/surveys/"+survey.ID, asAdmin("admin-1"),
		map[string]any{"title": "EHR Satisfaction Q4"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated surveyView
	decodeBody(t, rec, &updated)
	if updated.Title != "EHR Satisfaction Q4" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
	// Untouched fields survive a partial update.
	if len(updated.Questions) != 2 {
		t.Errorf("questions = %d, want the original 2", len(updated.Questions))
	}
}

func TestUpdateSurveyReplacesQuestions(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")

	rec := h.do(t, http.MethodPatch, "/surveys/"+survey.ID, asAdmin("admin-1"), map[string]any{
		"questions": []map[string]any{
			{"id": "q1", "text": "How usable is the mobile app?", "type": "likert"},
			{"id": "q2", "text": "How usable is the desktop app?", "type": "likert"},
			{"id": "q3", "text": "Which do you prefer?", "type": "mcq", "options": []string{"Mobile", "Desktop"}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated surveyView
	decodeBody(t, rec, &updated)
	if len(updated.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(updated.Questions))
	}
	if updated.EstimatedTimeSeconds != 54 {
		t.Errorf("estimated_time_seconds = %d, want re-estimated 54", updated.EstimatedTimeSeconds)
	}
}

func TestUpdateNonDraftSurvey(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")
	h.activateSurvey(t, survey.ID)

	rec := h.do(t, http.MethodPatch, "/surveys/"+survey.ID, asAdmin("admin-1"),
		map[string]any{"title": "Too late"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Only draft surveys can be edited" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestLaunchRequiresQualityCheck(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")

	rec := h.do(t, http.MethodPost, "/surveys/"+survey.ID+"/launch", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Run AI quality check before launching (/agents/quality-check)" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestLaunchSurvey(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")
	h.setQuality(t, survey.ID, "admin-1")

	rec := h.do(t, http.MethodPost, "/surveys/"+survey.ID+"/launch", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var launched surveyView
	decodeBody(t, rec, &launched)
	if launched.Status != core.SurveyActive {
		t.Errorf("status = %q, want active", launched.Status)
	}
	if launched.LaunchedAt == nil {
		t.Error("expected a launch timestamp")
	}

	// Second launch finds a non-draft survey.
	rec = h.do(t, http.MethodPost, "/surveys/"+survey.ID+"/launch", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("relaunch status = %d, want 409", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Only draft surveys can be launched" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCloseSurveyQueuesInsights(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")
	h.activateSurvey(t, survey.ID)

	rec := h.do(t, http.MethodPost, "/surveys/"+survey.ID+"/close", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var closed surveyView
	decodeBody(t, rec, &closed)
	if closed.Status != core.SurveyClosed {
		t.Errorf("status = %q, want closed", closed.Status)
	}

	if len(h.queue.tasks) != 1 {
		t.Fatalf("queued tasks = %d, want 1", len(h.queue.tasks))
	}
	if h.queue.tasks[0].task != tasks.TaskGenerateInsights {
		t.Errorf("queued task = %q", h.queue.tasks[0].task)
	}
	payload, ok := h.queue.tasks[0].payload.(tasks.InsightsPayload)
	if !ok || payload.SurveyID != survey.ID {
		t.Errorf("unexpected payload: %#v", h.queue.tasks[0].payload)
	}

	// Closing twice is a state conflict, not a repeat enqueue.
	rec = h.do(t, http.MethodPost, "/surveys/"+survey.ID+"/close", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reclose status = %d, want 409", rec.Code)
	}
	if len(h.queue.tasks) != 1 {
		t.Errorf("queued tasks after reclose = %d, want still 1", len(h.queue.tasks))
	}
}

func TestDeleteSurvey(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	draft := h.createDraft(t, "admin-1")

	rec := h.do(t, http.MethodDelete, "/surveys/"+draft.ID, asAdmin("admin-1"), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/surveys/"+draft.ID, asAdmin("admin-1"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted survey still readable: %d", rec.Code)
	}

	active := h.createDraft(t, "admin-1")
	h.activateSurvey(t, active.ID)
	rec = h.do(t, http.MethodDelete, "/surveys/"+active.ID, asAdmin("admin-1"), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("active delete status = %d, want 409", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Only draft surveys can be deleted" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestSurveyOwnership(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	survey := h.createDraft(t, "admin-1")

	rec := h.do(t, http.MethodGet, "/surveys/"+survey.ID, asAdmin("admin-2"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign get status = %d, want 403", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Not your survey" {
		t.Errorf("error = %q", body["error"])
	}

	rec = h.do(t, http.MethodGet, "/surveys/does-not-exist", asAdmin("admin-2"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing get status = %d, want 404", rec.Code)
	}
}

func TestListSurveys(t *testing.T) {
	h := newHarness(t, &fakeCompleter{})
	first := h.createDraft(t, "admin-1")
	h.createDraft(t, "admin-1")
	h.activateSurvey(t, first.ID)

	rec := h.do(t, http.MethodGet, "/surveys", asAdmin("admin-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []surveyView
	decodeBody(t, rec, &all)
	if len(all) != 2 {
		t.Fatalf("surveys = %d, want 2", len(all))
	}

	rec = h.do(t, http.MethodGet, "/surveys?status=draft", asAdmin("admin-1"), nil)
	var drafts []surveyView
	decodeBody(t, rec, &drafts)
	if len(drafts) != 1 || drafts[0].Status != core.SurveyDraft {
		t.Errorf("draft filter returned %+v", drafts)
	}

	// Listing never crosses admin boundaries.
	rec = h.do(t, http.MethodGet, "/surveys", asAdmin("admin-2"), nil)
	var foreign []surveyView
	decodeBody(t, rec, &foreign)
	if len(foreign) != 0 {
		t.Errorf("foreign admin sees %d surveys", len(foreign))
	}
}
