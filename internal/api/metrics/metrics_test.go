package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuthAttemptsTotal(t *testing.T) {
	before := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("signin", "invalid"))
	AuthAttemptsTotal.WithLabelValues("signin", "invalid").Inc()

	if got := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("signin", "invalid")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func TestTaskCounters(t *testing.T) {
	created := testutil.ToFloat64(TasksCreatedTotal)
	TasksCreatedTotal.Inc()
	if got := testutil.ToFloat64(TasksCreatedTotal); got != created+1 {
		t.Errorf("tasks_created_total: expected %v, got %v", created+1, got)
	}

	done := testutil.ToFloat64(TaskStatusUpdatesTotal.WithLabelValues("DONE"))
	TaskStatusUpdatesTotal.WithLabelValues("DONE").Inc()
	if got := testutil.ToFloat64(TaskStatusUpdatesTotal.WithLabelValues("DONE")); got != done+1 {
		t.Errorf("task_status_updates_total: expected %v, got %v", done+1, got)
	}
}
