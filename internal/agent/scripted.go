package agent

import (
	"context"
	"sync"

	"github.com/nucleus/agentlang/internal/agerrors"
)

// Scripted is a deterministic Provider driven by pre-recorded responses,
// one per agent FQ name, consumed in order. It stands in for a real LLM
// adapter in tests and local runs the way resolver.Memory stands in for
// a database.
type Scripted struct {
	mu    sync.Mutex
	turns map[string][]Response
}

// NewScripted builds a Scripted provider. turns maps an agent's
// FQName() to the sequence of Responses successive invocations of that
// agent should return.
func NewScripted(turns map[string][]Response) *Scripted {
	copied := make(map[string][]Response, len(turns))
	for k, v := range turns {
		copied[k] = append([]Response(nil), v...)
	}
	return &Scripted{turns: copied}
}

func (s *Scripted) Invoke(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := req.Agent.FQName()
	queue := s.turns[name]
	if len(queue) == 0 {
		return Response{}, agerrors.New(agerrors.NotFound, "no scripted response left for agent "+name)
	}
	s.turns[name] = queue[1:]
	return queue[0], nil
}

// Echo is a trivial Provider that never generates statements; it answers
// every invocation with the agent's own Instruction text as Result, handy
// for exercising the AgentInvoke wiring without scripting real turns.
type Echo struct{}

func (Echo) Invoke(ctx context.Context, req Request) (Response, error) {
	return Response{Result: req.Agent.Instruction}, nil
}
