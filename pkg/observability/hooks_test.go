package observability

import (
	"context"
	"testing"
	"time"
)

type recordingHooks struct {
	started   []string
	completed []string
}

func (r *recordingHooks) OnPhaseStart(_ context.Context, phase string) {
	r.started = append(r.started, phase)
}

func (r *recordingHooks) OnPhaseComplete(_ context.Context, phase string, _ int, _ time.Duration, _ error) {
	r.completed = append(r.completed, phase)
}

func TestSetPipelineHooks(t *testing.T) {
	defer SetPipelineHooks(NoopPipelineHooks{})

	rec := &recordingHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnPhaseStart(ctx, "cover")
	Pipeline().OnPhaseComplete(ctx, "cover", 3, time.Millisecond, nil)

	if len(rec.started) != 1 || rec.started[0] != "cover" {
		t.Errorf("started = %v, want [cover]", rec.started)
	}
	if len(rec.completed) != 1 || rec.completed[0] != "cover" {
		t.Errorf("completed = %v, want [cover]", rec.completed)
	}
}

func TestSetPipelineHooks_NilKeepsCurrent(t *testing.T) {
	defer SetPipelineHooks(NoopPipelineHooks{})

	rec := &recordingHooks{}
	SetPipelineHooks(rec)
	SetPipelineHooks(nil)

	Pipeline().OnPhaseStart(context.Background(), "align")
	if len(rec.started) != 1 {
		t.Errorf("nil registration should keep the current hooks")
	}
}

func TestNoopHooksAreSafe(t *testing.T) {
	ctx := context.Background()
	Pipeline().OnPhaseStart(ctx, "x")
	Cache().OnCacheHit(ctx, "poa")
	Cache().OnCacheMiss(ctx, "poa")
	Cache().OnCacheSet(ctx, "poa", 10)
}
