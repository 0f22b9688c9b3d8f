// Package execgraph implements the compiled execution-graph tier (spec.md
// §4.9): the same workflow body the direct interpreter (internal/eval)
// walks, but driven by a Walker that can pause at a SUSPEND statement and
// resume later, instead of failing outright the way the uninstrumented
// direct path does.
//
// Two resume models are supported, matching the two ways a caller can
// drive a Graph:
//
//   - RunBlocking parks the calling goroutine across a SUSPEND using a
//     BlockingSuspender, so nested If/ForEach/SUSPEND combinations resume
//     exactly where they left off — the live Go call stack is the only
//     state that needs to survive.
//   - RunToCheckpoint never blocks: it walks one top-level statement at a
//     time and, on SUSPEND, returns a Checkpoint the caller can persist and
//     later feed back into ResumeFromCheckpoint. This is the model the
//     Temporal worker uses (temporal.go), where an activity invocation is
//     stateless once it returns. Only top-level suspend points survive a
//     checkpoint/resume round trip this way; a SUSPEND nested inside an If
//     or ForEach also ends the RunToCheckpoint call, but its Checkpoint
//     resumes at the top-level statement after the enclosing one, so the
//     rest of that If/ForEach is not run
//     (spec.md §9 flags the execution-graph/direct-interpreter SUSPEND
//     divergence as an open question — this is this package's concrete,
//     intentionally narrower resolution for the durable path).
package execgraph

import (
	"github.com/nucleus/agentlang/internal/ast"
)

// Graph is the compiled form of a workflow: spec.md §4.9 describes this as
// a pre-walked statement graph, but because internal/eval's dispatch tree
// already is one, compiling amounts to capturing the workflow definition
// the Walker drives.
type Graph struct {
	Workflow *ast.Workflow
}

// Compile builds a Graph over w. It never fails: the ast tree is already
// validated by the point a Workflow is registered (internal/registry).
func Compile(w *ast.Workflow) *Graph {
	return &Graph{Workflow: w}
}

// FQName is the graph's workflow's fully-qualified name.
func (g *Graph) FQName() string { return g.Workflow.FQName() }
