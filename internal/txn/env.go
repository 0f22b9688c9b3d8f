// Package txn implements the Environment and per-resolver transaction
// bookkeeping that every pattern evaluation runs inside (spec.md §4.6).
package txn

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/resolver"
)

// BetweenContext carries the information needed to emit a link record once
// both sides of a Between relationship have been evaluated (spec.md §4.4.1).
type BetweenContext struct {
	Relationship *model.Relationship
	Left         *model.Instance
}

// Environment is the evaluation scope threaded through a workflow run
// (spec.md §4.6): parent pointer, active module/user, the "last result"
// register, the containment path being built, between-relationship
// context, and the resolver/transaction maps shared with ancestors.
type Environment struct {
	parent *Environment

	ActiveModule string
	ActiveUser   string

	// LastResult is the "last result" register: the value of the most
	// recently evaluated statement, bound as an implicit reference target
	// for subsequent statements in the same body.
	LastResult any

	// ParentPath is the containment path under construction while
	// evaluating a nested Contains pattern (spec.md §4.4.1).
	ParentPath model.Path

	// Between is set while evaluating the right-hand side of a Between
	// pattern; nil otherwise.
	Between *BetweenContext

	// Upsert, DeleteOp and Kernel are the evaluator's mode flags (spec.md
	// §4.6): Upsert/DeleteOp bias CRUD semantics for the current
	// statement, Kernel bypasses RBAC (used for the auth module's own
	// lookups, spec.md §4.8).
	Upsert   bool
	DeleteOp bool
	Kernel   bool

	// resolvers and txns are shared by reference across the whole
	// Environment chain: only the root owns commit/rollback (spec.md
	// §4.6 "Nested environments share the parent's transaction map; only
	// the outermost owner commits/rolls back").
	resolvers *resolverSet

	// bindings holds this Environment's own @as name -> result bindings.
	// Lookups fall back through parent so an outer alias stays visible to
	// nested bodies, but writes never escape upward — this is what keeps a
	// then-branch's rebinding of a name confined to that branch (spec.md
	// §8 scenario 6).
	bindings map[string]any
}

// resolverSet is the mutable, shared-by-reference state every Environment
// in a chain points at.
type resolverSet struct {
	mu        sync.Mutex
	active    map[string]resolver.Resolver // resolver name -> instance
	txns      map[string]resolver.TxnID    // resolver name -> txn id
	committed bool
}

// New starts a root Environment for activeModule, with no parent. activeUser
// is the acting identity; resolvers supplies every resolver instance the
// evaluation may touch, keyed by name (spec.md §4.3's resolver map).
func New(activeModule, activeUser string, resolvers map[string]resolver.Resolver) *Environment {
	rs := &resolverSet{
		active: resolvers,
		txns:   map[string]resolver.TxnID{},
	}
	return &Environment{
		ActiveModule: activeModule,
		ActiveUser:   activeUser,
		resolvers:    rs,
	}
}

// Child derives a nested Environment inheriting active module/user and the
// shared resolver/transaction maps (spec.md §4.6 "new(eventName, parent?):
// inherits active module/user/transactions/resolvers from parent").
func (e *Environment) Child() *Environment {
	return &Environment{
		parent:       e,
		ActiveModule: e.ActiveModule,
		ActiveUser:   e.ActiveUser,
		ParentPath:   e.ParentPath,
		Between:      e.Between,
		Upsert:       e.Upsert,
		DeleteOp:     e.DeleteOp,
		Kernel:       e.Kernel,
		resolvers:    e.resolvers,
	}
}

// IsRoot reports whether this Environment has no parent.
func (e *Environment) IsRoot() bool { return e.parent == nil }

// SetBinding installs name -> value in this Environment's own scope,
// shadowing (without mutating) any same-named binding on an ancestor.
func (e *Environment) SetBinding(name string, value any) {
	if e.bindings == nil {
		e.bindings = map[string]any{}
	}
	e.bindings[name] = value
}

// Bindings returns a flattened snapshot of every name bound in this
// Environment's own scope (not ancestors) — used by internal/execgraph to
// checkpoint a workflow's top-level bindings across a SUSPEND boundary.
func (e *Environment) Bindings() map[string]any {
	out := make(map[string]any, len(e.bindings))
	for k, v := range e.bindings {
		out[k] = v
	}
	return out
}

// RestoreBindings installs a previously-snapshotted binding set, used when
// resuming a checkpointed Environment (internal/execgraph).
func (e *Environment) RestoreBindings(bindings map[string]any) {
	for k, v := range bindings {
		e.SetBinding(k, v)
	}
}

// ParentRelName returns the "__parentRel" binding set by the evaluator
// while descending into a relationship's children, or "" outside that
// context.
func (e *Environment) ParentRelName() string {
	v, _ := e.Lookup("__parentRel")
	s, _ := v.(string)
	return s
}

// Lookup resolves name against this Environment's own bindings, falling
// back through ancestors, then the ActiveModule/event-entry bindings are
// not modeled here (that is the evaluator's Ref walk responsibility).
func (e *Environment) Lookup(name string) (any, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// WithParentPath returns a child Environment with ParentPath extended,
// used while descending into a Contains pattern's nested children.
func (e *Environment) WithParentPath(p model.Path) *Environment {
	child := e.Child()
	child.ParentPath = p
	return child
}

// WithBetween returns a child Environment carrying between-relationship
// context, used while evaluating the right-hand side of a Between
// pattern.
func (e *Environment) WithBetween(rel *model.Relationship, left *model.Instance) *Environment {
	child := e.Child()
	child.Between = &BetweenContext{Relationship: rel, Left: left}
	return child
}

// Resolver looks up (and, on first use, starts a transaction for) the
// named resolver (spec.md §4.6: "On first use of a resolver,
// startTransaction() is called and the txn id is recorded").
func (e *Environment) Resolver(ctx context.Context, name string) (resolver.Resolver, resolver.TxnID, error) {
	e.resolvers.mu.Lock()
	defer e.resolvers.mu.Unlock()

	r, ok := e.resolvers.active[name]
	if !ok {
		return nil, "", agerrors.New(agerrors.ResolverUnavailable, "no resolver registered for "+name)
	}
	if txn, started := e.resolvers.txns[name]; started {
		return r, txn, nil
	}
	txn, err := r.StartTransaction(ctx)
	if err != nil {
		return nil, "", agerrors.Wrap(agerrors.ResolverUnavailable, "failed to start transaction on resolver "+name, err)
	}
	e.resolvers.txns[name] = txn
	return r, txn, nil
}

// PartialCommitError reports that one or more resolvers committed
// successfully before a later resolver's CommitTransaction failed (spec.md
// §9 Open Question: best-effort multi-resolver commit is documented, not
// silently swallowed). Committed lists the resolver names whose
// transactions are already durable; Failed is the resolver whose commit
// raised Cause. Unwrap reaches Cause, so agerrors.As/KindOf still see the
// underlying ResolverUnavailable error through the normal wrap chain.
type PartialCommitError struct {
	Committed []string
	Failed    string
	Cause     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("commit failed on resolver %q after %v already committed: %v", e.Failed, e.Committed, e.Cause)
}

func (e *PartialCommitError) Unwrap() error { return e.Cause }

// Commit commits every transaction recorded on the shared set, in
// insertion-independent but consistent (map key sorted) order (spec.md
// §4.6: "On workflow success, all recorded transactions are committed in
// an implementation-defined but consistent order"). Only the root
// Environment of a chain may call Commit; calling it from a child is a
// programming error and returns a ConfigError. If a resolver fails to
// commit after one or more earlier resolvers already succeeded, the
// caller gets a *PartialCommitError naming exactly which transactions are
// already durable, rather than a bare wrapped error that looks identical
// to "nothing committed."
func (e *Environment) Commit(ctx context.Context) error {
	if !e.IsRoot() {
		return agerrors.New(agerrors.ConfigError, "Commit called on a non-root Environment")
	}
	e.resolvers.mu.Lock()
	defer e.resolvers.mu.Unlock()
	if e.resolvers.committed {
		return nil
	}
	names := sortedKeys(e.resolvers.txns)
	var committed []string
	for _, name := range names {
		r := e.resolvers.active[name]
		if err := r.CommitTransaction(ctx, e.resolvers.txns[name]); err != nil {
			wrapped := agerrors.Wrap(agerrors.ResolverUnavailable, "failed to commit transaction on resolver "+name, err)
			if len(committed) > 0 {
				return &PartialCommitError{Committed: committed, Failed: name, Cause: wrapped}
			}
			return wrapped
		}
		committed = append(committed, name)
	}
	e.resolvers.committed = true
	return nil
}

// Rollback rolls back every recorded transaction (spec.md §4.6: "On
// uncaught failure in a root environment, all transactions are rolled
// back before the error is re-raised"). Errors from individual rollbacks
// are collected but do not stop the sweep; the first is returned.
func (e *Environment) Rollback(ctx context.Context) error {
	if !e.IsRoot() {
		return agerrors.New(agerrors.ConfigError, "Rollback called on a non-root Environment")
	}
	e.resolvers.mu.Lock()
	defer e.resolvers.mu.Unlock()
	var first error
	names := sortedKeys(e.resolvers.txns)
	for _, name := range names {
		r := e.resolvers.active[name]
		if err := r.RollbackTransaction(ctx, e.resolvers.txns[name]); err != nil && first == nil {
			first = agerrors.Wrap(agerrors.ResolverUnavailable, "failed to roll back transaction on resolver "+name, err)
		}
	}
	e.resolvers.committed = true
	return first
}

func sortedKeys(m map[string]resolver.TxnID) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
