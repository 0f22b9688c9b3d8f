// Command agentlang-worker hosts the compiled execution graph (spec.md
// §4.9) as a durable Temporal worker: RunGraphWorkflowFunc orchestrates,
// RunGraphActivity/ResumeGraphActivity do the actual pattern evaluation.
//
// Module loading (turning source text into registry.Module/ast.Workflow
// values) is out of this module's scope — the registry this process
// drives workflows against is populated by whatever embeds it; this
// command wires the graph/resolver/Temporal plumbing around an otherwise
// empty registry.New().
package main

import (
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/nucleus/agentlang/internal/config"
	"github.com/nucleus/agentlang/internal/eval"
	"github.com/nucleus/agentlang/internal/execgraph"
	"github.com/nucleus/agentlang/internal/logging"
	"github.com/nucleus/agentlang/internal/registry"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/txn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logging.New("agentlang-worker", cfg.Logging.Level, cfg.Logging.Format)

	reg := registry.New()
	evaluator := eval.New(reg)
	walker := execgraph.NewWalker(evaluator)
	store := execgraph.NewMemoryStore()

	newRootEnv := func(activeModule, activeUser string) *txn.Environment {
		resolvers := map[string]resolver.Resolver{
			"memory": resolver.NewPolicy(resolver.NewMemory(), cfg.Policy()),
		}
		return txn.New(activeModule, activeUser, resolvers)
	}
	activities := execgraph.NewActivities(walker, reg, store, newRootEnv)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.WithError(err).Fatal("create Temporal client")
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(execgraph.RunGraphWorkflowFunc, workflow.RegisterOptions{Name: execgraph.RunGraphWorkflow})
	w.RegisterActivity(activities.RunGraphActivity)
	w.RegisterActivity(activities.ResumeGraphActivity)

	log.WithField("queue", cfg.Temporal.TaskQueue).Info("agentlang execution-graph worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.WithError(err).Fatal("worker stopped")
	}
}
