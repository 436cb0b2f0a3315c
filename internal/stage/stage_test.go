package stage

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"camtrap/internal/logging"
	"camtrap/internal/services"
)

type fakeHandler struct {
	report   Report
	err      error
	gotStage string
}

func (f *fakeHandler) Name() string { return "link" }

func (f *fakeHandler) Run(ctx context.Context, _ *slog.Logger) (Report, error) {
	f.gotStage, _ = services.StageFromContext(ctx)
	return f.report, f.err
}

func TestReportCounters(t *testing.T) {
	r := NewReport("link", "total", "linked")
	r.Set("linked", 1)
	r.Set("total", 3)
	r.Set("ambiguous", 1)
	r.Set("linked", 2)

	want := []Counter{{"total", 3}, {"linked", 2}, {"ambiguous", 1}}
	if len(r.Counters) != len(want) {
		t.Fatalf("unexpected counters %+v", r.Counters)
	}
	for i, c := range want {
		if r.Counters[i] != c {
			t.Fatalf("counter %d: got %+v want %+v", i, r.Counters[i], c)
		}
	}
	if r.Get("missing") != 0 {
		t.Fatal("absent counter should read zero")
	}
}

func TestRunAnnotatesStageAndFillsName(t *testing.T) {
	handler := &fakeHandler{report: Report{Counters: []Counter{{"linked", 1}}}}
	report, err := Run(context.Background(), logging.NewNop(), handler)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if handler.gotStage != "link" {
		t.Fatalf("expected stage in context, got %q", handler.gotStage)
	}
	if report.Stage != "link" {
		t.Fatalf("expected report stage name, got %q", report.Stage)
	}
}

func TestRunWrapsFailure(t *testing.T) {
	cause := services.Wrap(services.ErrInputMissing, "link", "read media", "media.csv", nil)
	_, err := Run(context.Background(), nil, &fakeHandler{err: cause})
	if !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected input missing marker, got %v", err)
	}
	if _, err := Run(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
