package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sitequery/sitequery/internal/model"
)

// mockStep is a configurable step for pipeline testing.
type mockStep struct {
	name string
	err  error
	do   func(ctx context.Context, report *model.QueryReport) error
}

func (m *mockStep) Name() string { return m.name }

func (m *mockStep) Do(ctx context.Context, report *model.QueryReport) error {
	if m.do != nil {
		return m.do(ctx, report)
	}
	return m.err
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"first", "second", "third"} {
			p.AddStep(&mockStep{
				name: name,
				do: func(_ context.Context, _ *model.QueryReport) error {
					order = append(order, name)
					return nil
				},
			})
		}

		report := model.NewQueryReport("https://example.com/", "")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"first", "second", "third"}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("expected order %v, got %v", want, order)
		}
		if !reflect.DeepEqual(report.PerformedSteps, want) {
			t.Errorf("expected performed steps %v, got %v", want, report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		ran := false
		p := New()
		p.AddSteps(
			&mockStep{name: "boom", err: errors.New("step failed")},
			&mockStep{
				name: "after",
				do: func(_ context.Context, _ *model.QueryReport) error {
					ran = true
					return nil
				},
			},
		)

		report := model.NewQueryReport("https://example.com/", "")
		if err := p.Execute(context.Background(), report); err == nil {
			t.Error("expected error from pipeline")
		}
		if ran {
			t.Error("expected subsequent step not to run")
		}
		if report.Error == nil || report.ErrorMessage != "step failed" {
			t.Errorf("expected error recorded in report, got %v %q", report.Error, report.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		ran := false
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "boom", err: errors.New("step failed")},
			&mockStep{
				name: "after",
				do: func(_ context.Context, _ *model.QueryReport) error {
					ran = true
					return nil
				},
			},
		)

		report := model.NewQueryReport("https://example.com/", "")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ran {
			t.Error("expected subsequent step to run")
		}
		if len(report.PerformedSteps) != 2 {
			t.Errorf("expected both steps tracked, got %v", report.PerformedSteps)
		}
	})

	t.Run("cancellation marks the report as timed out", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		p := New()
		p.AddSteps(
			&mockStep{
				name: "canceller",
				do: func(_ context.Context, _ *model.QueryReport) error {
					cancel()
					return nil
				},
			},
			&mockStep{name: "never"},
		)

		report := model.NewQueryReport("https://example.com/", "")
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !report.TimedOut {
			t.Error("expected report marked timed out")
		}
		if len(report.PerformedSteps) != 1 {
			t.Errorf("expected only the first step tracked, got %v", report.PerformedSteps)
		}
	})

	t.Run("empty pipeline completes immediately", func(t *testing.T) {
		t.Parallel()

		p := New()
		report := model.NewQueryReport("https://example.com/", "")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.PerformedSteps) != 0 {
			t.Errorf("expected no steps tracked, got %v", report.PerformedSteps)
		}
	})
}

func TestPipelineIntrospection(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "answer"}, &mockStep{name: "save"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}

	want := []string{"crawl", "answer", "save"}
	if !reflect.DeepEqual(p.StepNames(), want) {
		t.Errorf("expected %v, got %v", want, p.StepNames())
	}
}

func TestPipelineStepTiming(t *testing.T) {
	t.Parallel()

	// A slow step must not trip the pre-step cancellation check of the
	// following step when the context has plenty of headroom.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := New()
	p.AddSteps(
		&mockStep{
			name: "slow",
			do: func(_ context.Context, _ *model.QueryReport) error {
				time.Sleep(10 * time.Millisecond)
				return nil
			},
		},
		&mockStep{name: "fast"},
	)

	report := model.NewQueryReport("https://example.com/", "")
	if err := p.Execute(ctx, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.PerformedSteps) != 2 {
		t.Errorf("expected both steps to run, got %v", report.PerformedSteps)
	}
}
