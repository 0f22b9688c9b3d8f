package execgraph

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/txn"
)

// This file is the durable, Temporal-backed wiring for the compiled
// execution graph (spec.md §4.9, §9). Pattern evaluation — resolver I/O,
// @expr recomputation, triggers, everything Evaluator.EvalStatement does —
// runs inside RunGraphActivity/ResumeGraphActivity, never in
// RunGraphWorkflowFunc directly: Temporal requires workflow code to be
// deterministic and replay-safe, which resolver calls are not.
// RunGraphWorkflowFunc is a thin orchestrator that calls one activity,
// and, if it comes back suspended, waits on a signal before calling the
// other.
//
// Because RunToCheckpoint only tracks a resume index into the workflow's
// top-level body (see Checkpoint's doc comment), each activity invocation
// commits whatever transactions it opened before returning, whether it
// completed the workflow or merely reached a SUSPEND. That trades the
// single-workflow-wide commit/rollback atomicity spec.md §4.6 describes
// for the ability to checkpoint across stateless activity calls; the
// in-process Walker.RunBlocking path (walker.go) does not make this trade, since it
// never lets go of the Environment's transaction scope.

const (
	// RunGraphWorkflow is the Temporal workflow type name a worker
	// registers RunGraphWorkflowFunc under.
	RunGraphWorkflow = "agentlangRunGraphWorkflow"
	// RunGraphActivityName and ResumeGraphActivityName are the Temporal
	// activity type names Activities.RunGraphActivity/ResumeGraphActivity
	// are registered under.
	RunGraphActivityName    = "RunGraphActivity"
	ResumeGraphActivityName = "ResumeGraphActivity"
	// ResumeSignalName is the signal channel RunGraphWorkflowFunc waits
	// on while a run is suspended.
	ResumeSignalName = "agentlangResume"
)

var defaultActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: time.Hour,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
	},
}

// RunInput is RunGraphWorkflowFunc's input: the workflow to invoke and the
// triggering event instance's attributes, the same binding convention
// eval.Evaluator.InvokeWorkflow uses for the direct-interpreter path.
type RunInput struct {
	Module     string
	Workflow   string
	EventEntry string
	EventAttrs map[string]any
	ActiveUser string
}

// ResumeSignal is delivered on ResumeSignalName to wake a suspended
// RunGraphWorkflowFunc execution. Value becomes the paused SUSPEND
// statement's resume value (Walker.ResumeFromCheckpoint's resumeValue).
type ResumeSignal struct {
	SuspensionID string
	Value        any
}

// RunResult is RunGraphWorkflowFunc's terminal value.
type RunResult struct {
	Value any
}

// ActivityOutput is what RunGraphActivity/ResumeGraphActivity report back
// to the workflow function.
type ActivityOutput struct {
	Suspended    bool
	SuspensionID string
	Value        any
}

// ResumeInput is ResumeGraphActivity's argument.
type ResumeInput struct {
	SuspensionID string
	Value        any
}

// RunGraphWorkflowFunc is the Temporal workflow function a worker
// registers (cmd/agentlang-worker/main.go).
func RunGraphWorkflowFunc(ctx workflow.Context, input RunInput) (RunResult, error) {
	actCtx := workflow.WithActivityOptions(ctx, defaultActivityOptions)

	var out ActivityOutput
	if err := workflow.ExecuteActivity(actCtx, RunGraphActivityName, input).Get(ctx, &out); err != nil {
		return RunResult{}, err
	}

	for out.Suspended {
		sigCh := workflow.GetSignalChannel(ctx, ResumeSignalName)
		var sig ResumeSignal
		for {
			sigCh.Receive(ctx, &sig)
			if sig.SuspensionID == out.SuspensionID {
				break
			}
			// a stray signal for some other suspension id; keep waiting.
		}
		if err := workflow.ExecuteActivity(actCtx, ResumeGraphActivityName, ResumeInput{
			SuspensionID: sig.SuspensionID,
			Value:        sig.Value,
		}).Get(ctx, &out); err != nil {
			return RunResult{}, err
		}
	}
	return RunResult{Value: out.Value}, nil
}

// Activities bundles the dependencies RunGraphActivity/ResumeGraphActivity
// need: a Walker over the shared Evaluator, the module registry workflow
// names resolve against, a SuspensionStore bridging the run and resume
// activity calls, and a factory building the root Environment (with its
// resolvers wired in) each segment starts from.
type Activities struct {
	Walker     *Walker
	Registry   *registry.Registry
	Store      SuspensionStore
	NewRootEnv func(activeModule, activeUser string) *txn.Environment
}

// NewActivities builds an Activities bundle.
func NewActivities(w *Walker, reg *registry.Registry, store SuspensionStore, newRootEnv func(activeModule, activeUser string) *txn.Environment) *Activities {
	return &Activities{Walker: w, Registry: reg, Store: store, NewRootEnv: newRootEnv}
}

// RunGraphActivity runs input.Workflow from the start.
func (a *Activities) RunGraphActivity(ctx context.Context, input RunInput) (ActivityOutput, error) {
	wf, err := a.Registry.ResolveWorkflow(input.Workflow, input.Module)
	if err != nil {
		return ActivityOutput{}, err
	}
	g := Compile(wf)
	root := a.NewRootEnv(input.Module, input.ActiveUser)
	eventInst := model.NewInstance(input.Module, input.EventEntry, input.EventAttrs)

	value, cp, err := a.Walker.InvokeToCheckpoint(ctx, root, g, eventInst)
	return a.finish(ctx, root, value, cp, err)
}

// ResumeGraphActivity continues the run previously checkpointed under
// input.SuspensionID.
func (a *Activities) ResumeGraphActivity(ctx context.Context, input ResumeInput) (ActivityOutput, error) {
	cp, err := a.Store.Take(ctx, input.SuspensionID)
	if err != nil {
		return ActivityOutput{}, err
	}
	wf, err := a.Registry.ResolveWorkflow(cp.Workflow, cp.Module)
	if err != nil {
		return ActivityOutput{}, err
	}
	g := Compile(wf)
	root := a.NewRootEnv(cp.Module, cp.ActiveUser)

	value, next, err := a.Walker.ResumeFromCheckpoint(ctx, root, g, cp, input.Value)
	return a.finish(ctx, root, value, next, err)
}

// finish commits or rolls back the segment's root Environment (see this
// file's top comment on per-segment commit) and shapes the ActivityOutput.
func (a *Activities) finish(ctx context.Context, root *txn.Environment, value any, cp *Checkpoint, err error) (ActivityOutput, error) {
	if err != nil {
		_ = root.Rollback(ctx)
		return ActivityOutput{}, err
	}
	if cp != nil {
		if err := a.Store.Put(ctx, cp); err != nil {
			_ = root.Rollback(ctx)
			return ActivityOutput{}, err
		}
		if err := root.Commit(ctx); err != nil {
			return ActivityOutput{}, err
		}
		return ActivityOutput{Suspended: true, SuspensionID: cp.SuspensionID}, nil
	}
	if err := root.Commit(ctx); err != nil {
		return ActivityOutput{}, err
	}
	return ActivityOutput{Value: value}, nil
}
