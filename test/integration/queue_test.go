//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/test"
)

func TestQueueRoundTrip(t *testing.T) {
	client := test.RequireBroker(t)
	ctx := context.Background()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test db: %v", err)
	}

	queue := tasks.NewQueue(client)

	payload := tasks.InsightsPayload{SurveyID: "surv-queue-1"}
	if err := queue.Enqueue(ctx, tasks.TaskGenerateInsights, payload); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	env, err := queue.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if env == nil {
		t.Fatal("expected an envelope, got timeout")
	}
	if env.ID == "" {
		t.Error("envelope ID is empty")
	}
	if env.Task != tasks.TaskGenerateInsights {
		t.Errorf("task = %q, want %q", env.Task, tasks.TaskGenerateInsights)
	}

	var got tasks.InsightsPayload
	if err := json.Unmarshal(env.Payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.SurveyID != "surv-queue-1" {
		t.Errorf("survey id = %q, want surv-queue-1", got.SurveyID)
	}
}

func TestQueueDequeueTimeout(t *testing.T) {
	client := test.RequireBroker(t)
	ctx := context.Background()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test db: %v", err)
	}

	queue := tasks.NewQueue(client)

	env, err := queue.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if env != nil {
		t.Fatalf("expected timeout, got envelope for %q", env.Task)
	}
}

func TestQueuePromotesDueTasks(t *testing.T) {
	client := test.RequireBroker(t)
	ctx := context.Background()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test db: %v", err)
	}

	queue := tasks.NewQueue(client)

	payload := tasks.ReminderPayload{SurveyID: "surv-queue-2", DoctorID: "doc-queue"}
	if err := queue.EnqueueIn(ctx, tasks.TaskCompletionReminder, payload, time.Hour); err != nil {
		t.Fatalf("EnqueueIn failed: %v", err)
	}

	// Not due yet: nothing moves and the ready list stays empty.
	moved, err := queue.PromoteDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("PromoteDue failed: %v", err)
	}
	if moved != 0 {
		t.Fatalf("moved = %d before due time, want 0", moved)
	}
	env, err := queue.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if env != nil {
		t.Fatalf("task delivered before due time: %q", env.Task)
	}

	// Past the due time the task promotes and delivers.
	moved, err = queue.PromoteDue(ctx, time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("PromoteDue failed: %v", err)
	}
	if moved != 1 {
		t.Fatalf("moved = %d after due time, want 1", moved)
	}

	env, err = queue.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if env == nil {
		t.Fatal("expected promoted envelope, got timeout")
	}
	if env.Task != tasks.TaskCompletionReminder {
		t.Errorf("task = %q, want %q", env.Task, tasks.TaskCompletionReminder)
	}

	var got tasks.ReminderPayload
	if err := json.Unmarshal(env.Payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.DoctorID != "doc-queue" {
		t.Errorf("doctor id = %q, want doc-queue", got.DoctorID)
	}
}
