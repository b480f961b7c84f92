package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/engine"
	"github.com/roach88/hoard/internal/store"
	"github.com/roach88/hoard/internal/val"
)

// DefaultSession is the session token used when a scenario does not
// specify one.
const DefaultSession = "scenario"

// Harness drives one scenario run.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Semantic failures (empty heap, quota, reentry) become step outcomes;
// infrastructure failures abort the run with an error.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}

	var opts []engine.Option
	if scenario.Quota > 0 {
		opts = append(opts, engine.WithMaxElements(scenario.Quota))
	}

	ctx := context.Background()
	eng, err := engine.New(ctx, st, engine.NewFixedSource(session), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	h := &Harness{
		store:  st,
		engine: eng,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateFinalChecks(ctx, eng, scenario.Final) {
		result.AddError(msg)
	}

	return result, nil
}

// runStep executes one step and appends its trace line to the result.
// Returns an error only for infrastructure failures; semantic failures
// are recorded as step outcomes.
func (h *Harness) runStep(ctx context.Context, step Step, result *Result) error {
	switch {
	case step.Init != "":
		return h.runInit(ctx, step.Init, result)
	case step.Exec != nil:
		return h.runExec(ctx, step.Exec, result)
	case step.View != nil:
		return h.runView(ctx, step.View, result)
	case step.Verify != "":
		return h.runVerify(ctx, step.Verify, result)
	default:
		return fmt.Errorf("step names no action")
	}
}

func (h *Harness) runInit(ctx context.Context, principal string, result *Result) error {
	err := h.engine.InitializeModule(ctx, principal)
	outcome := engine.OutcomeOf(err)
	if err != nil && outcome == "" {
		return err
	}

	result.AddStep(fmt.Sprintf("init %s", principal), string(outcome))
	h.logger.Info("init step completed", "principal", principal, "outcome", outcome)
	return nil
}

func (h *Harness) runExec(ctx context.Context, step *ExecStep, result *Result) error {
	kind, err := caps.ParseOpKind(step.Op)
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("exec %s %s", step.Principal, kind)

	var arg val.Value
	if step.Arg != nil {
		arg, err = toValue(step.Arg)
		if err != nil {
			return fmt.Errorf("convert arg: %w", err)
		}
		desc += " " + renderValue(arg)
	}

	var top val.Value
	var execErr error
	switch kind {
	case caps.OpInitMax:
		execErr = h.engine.ExecuteInitMax(ctx, step.Principal)
	case caps.OpInitMin:
		execErr = h.engine.ExecuteInitMin(ctx, step.Principal)
	case caps.OpInsert:
		execErr = h.engine.ExecuteInsert(ctx, step.Principal, arg)
	case caps.OpExtract:
		top, execErr = h.engine.ExecuteExtract(ctx, step.Principal)
	}

	outcome := engine.OutcomeOf(execErr)
	if execErr != nil && outcome == "" {
		return execErr
	}
	if execErr == nil && kind == caps.OpExtract {
		desc += " = " + renderValue(top)
	}

	result.AddStep(desc, string(outcome))
	h.logger.Info("exec step completed", "principal", step.Principal, "op", kind, "outcome", outcome)
	return nil
}

func (h *Harness) runView(ctx context.Context, step *ViewStep, result *Result) error {
	desc := fmt.Sprintf("view %s %s", step.Principal, step.Kind)

	var rendered string
	var viewErr error
	switch step.Kind {
	case ViewPeek:
		v, err := h.engine.Peek(ctx, step.Principal)
		viewErr = err
		if err == nil {
			rendered = renderValue(v)
		}
	case ViewSize:
		n, err := h.engine.Size(ctx, step.Principal)
		viewErr = err
		if err == nil {
			rendered = strconv.Itoa(n)
		}
	case ViewIsEmpty:
		empty, err := h.engine.IsEmpty(ctx, step.Principal)
		viewErr = err
		if err == nil {
			rendered = strconv.FormatBool(empty)
		}
	default:
		return fmt.Errorf("unknown view kind %q", step.Kind)
	}

	outcome := engine.OutcomeOf(viewErr)
	if viewErr != nil && outcome == "" {
		return viewErr
	}
	if rendered != "" {
		desc += " = " + rendered
	}

	result.AddStep(desc, string(outcome))
	h.logger.Info("view step completed", "principal", step.Principal, "kind", step.Kind, "outcome", outcome)
	return nil
}

func (h *Harness) runVerify(ctx context.Context, principal string, result *Result) error {
	report, err := h.engine.VerifyPrincipal(ctx, principal)
	if err != nil {
		outcome := engine.OutcomeOf(err)
		if outcome == "" {
			return err
		}
		result.AddStep(fmt.Sprintf("verify %s", principal), string(outcome))
		h.logger.Info("verify step failed", "principal", principal, "outcome", outcome)
		return nil
	}

	if report.Consistent {
		desc := fmt.Sprintf("verify %s (%d records)", principal, report.Records)
		result.AddStep(desc, string(caps.OutcomeOK))
	} else {
		desc := fmt.Sprintf("verify %s (%d records, %d problems)", principal, report.Records, len(report.Problems))
		result.AddStep(desc, OutcomeDivergent)
	}

	h.logger.Info("verify step completed", "principal", principal, "consistent", report.Consistent)
	return nil
}

// toValue converts a YAML-parsed value to a heap element.
// Null, floats, and arrays are rejected: they have no canonical value
// form and would fail later during invocation ID computation.
func toValue(raw interface{}) (val.Value, error) {
	if raw == nil {
		return nil, fmt.Errorf("null values are not storable")
	}

	switch v := raw.(type) {
	case string:
		return val.NewStr(v), nil
	case int:
		return val.NewInt(int64(v)), nil
	case int64:
		return val.NewInt(v), nil
	case float64:
		// YAML numbers sometimes arrive as float64.
		if v == float64(int64(v)) {
			return val.NewInt(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are not storable: %v", v)
	case bool:
		return val.NewBool(v), nil
	case map[string]interface{}:
		pairs := make([]val.Pair, 0, len(v))
		for key, field := range v {
			fv, err := toValue(field)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			pairs = append(pairs, val.F(key, fv))
		}
		return val.NewRec(pairs...), nil
	case []interface{}:
		return nil, fmt.Errorf("arrays are not storable")
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
}

// renderValue renders a heap element for trace lines, using the same
// canonical form that invocation IDs hash.
func renderValue(v val.Value) string {
	b, err := val.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
