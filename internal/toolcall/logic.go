package toolcall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deepanalytics/reasoning-engines/internal/nemo"
)

// LogicTools adapts a nemo.Worker to the named tool surface. Most
// failures here are reported as descriptive text in the returned string
// rather than as a Go error, so a tool caller always gets a response.
type LogicTools struct {
	Worker *nemo.Worker
}

func (t LogicTools) LoadFact(ctx context.Context, fact string) string {
	res, err := t.Worker.LoadFact(ctx, fact)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("accepted=%v", res.Accepted)
}

func (t LogicTools) LoadRule(ctx context.Context, rule string) string {
	res, err := t.Worker.LoadRule(ctx, rule)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("accepted=%v", res.Accepted)
}

func (t LogicTools) LoadBulk(ctx context.Context, datalog string, atomic bool) string {
	res, err := t.Worker.LoadBulk(ctx, datalog, atomic)
	if err != nil {
		return err.Error()
	}
	if len(res.Errors) > 0 {
		return fmt.Sprintf("added_count=%d rolled_back=%v errors=%s", res.AddedCount, res.RolledBack, strings.Join(res.Errors, "; "))
	}
	return fmt.Sprintf("added_count=%d rolled_back=%v", res.AddedCount, res.RolledBack)
}

func (t LogicTools) Query(ctx context.Context, query string, timeoutMs int) string {
	timeout := time.Duration(timeoutMs) * time.Millisecond
	res, err := t.Worker.Query(ctx, query, timeout)
	if err != nil {
		return err.Error()
	}
	if res.Explanation != "" {
		return fmt.Sprintf("status=%s proven=%v explanation=%s", res.Status, res.Proven, res.Explanation)
	}
	return fmt.Sprintf("status=%s proven=%v bindings=%d", res.Status, res.Proven, len(res.Bindings))
}

func (t LogicTools) Materialize(ctx context.Context, timeoutMs int) string {
	timeout := time.Duration(timeoutMs) * time.Millisecond
	res, err := t.Worker.Materialize(ctx, timeout)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("materialized in %s", res.Duration)
}

func (t LogicTools) GetTraceJSON(ctx context.Context) string {
	snap, err := t.Worker.GetTraceJSON(ctx)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("program_lines=%d annotations=%d history=%d",
		len(strings.Split(strings.TrimSpace(snap.Program), "\n")), len(snap.Annotations), len(snap.History))
}

func (t LogicTools) Reset(ctx context.Context) string {
	if err := t.Worker.Reset(ctx); err != nil {
		return err.Error()
	}
	return "reset ok"
}

func (t LogicTools) ListPremises(ctx context.Context) string {
	premises, err := t.Worker.ListPremises(ctx)
	if err != nil {
		return err.Error()
	}
	return premises
}

func (t LogicTools) ValidateRule(ctx context.Context, rule string) string {
	res, err := t.Worker.ValidateRule(ctx, rule)
	if err != nil {
		return err.Error()
	}
	if res.IsValid {
		return "is_valid=true"
	}
	return fmt.Sprintf("is_valid=false errors=%s", strings.Join(res.Errors, "; "))
}

func (t LogicTools) AddPredicateAnnotation(ctx context.Context, predicate, annotation string) string {
	if err := t.Worker.AddPredicateAnnotation(ctx, predicate, annotation); err != nil {
		return err.Error()
	}
	return "annotation recorded"
}

func (t LogicTools) ExplainInference(ctx context.Context, traceJSON string, short bool) string {
	out, err := t.Worker.ExplainInference(ctx, traceJSON, short)
	if err != nil {
		return err.Error()
	}
	return out
}
