// Package ast defines the typed statement tree the evaluator consumes
// (spec.md §4.4). Producing this tree from source text is a parser's job
// and out of scope (spec.md §1) — the core only walks it.
package ast

// Statement is any of the pattern kinds spec.md §4.4 lists. Concrete types:
// CRUDPattern, JoinPattern, DeletePattern, ForEach, If, Return, Suspend,
// FullTextSearch, plus the Expr kinds which also satisfy Statement via
// ExprStatement.
type Statement interface {
	statementNode()
}

// Alias describes the `@as` binding attached to a statement.
type Alias struct {
	// Name binds the whole result. Empty when Destructure is used.
	Name string
	// Destructure holds `@as [a, b, _, rest]` element names; "_" entries
	// skip, and a trailing plain name (Remainder true) captures the rest
	// of an array result.
	Destructure []DestructureElem
}

// DestructureElem is one slot of a destructuring alias.
type DestructureElem struct {
	Name      string
	Skip      bool // "_"
	Remainder bool // trailing name capturing the rest of the array
}

func (a *Alias) IsZero() bool { return a == nil || (a.Name == "" && len(a.Destructure) == 0) }

// Hints carries the optional annotations a statement may carry (spec.md
// §4.4, §6): @catch, @distinct, @limit, @orderBy, @groupBy, @where,
// @upsert, @from.
type Hints struct {
	Catch   []CatchClause
	Upsert  bool
	From    Expr // @from <expr>, materializes attributes before CRUD classification
	Distinct bool
	Limit   *int
	OrderBy []OrderTerm
	GroupBy []string
}

// CatchClause is one `(kind, recoveryPattern)` entry of a `@catch { ... }`
// hint (spec.md §4.7). Kind is "not_found", "error", or a custom raised
// kind name.
type CatchClause struct {
	Kind    string
	Pattern Statement
}

// OrderTerm is one `@orderBy(ref) [@asc|@desc]` term.
type OrderTerm struct {
	Ref  string
	Desc bool
}

// ExprStatement wraps a pure expression so it can stand alone as a
// top-level workflow statement (spec.md §4.4 rule 1).
type ExprStatement struct {
	Expr  Expr
	Alias *Alias
	Hints *Hints
}

func (*ExprStatement) statementNode() {}

// Workflow is a named, parameterized sequence of statements (spec.md
// GLOSSARY). Parameters bind from the triggering event instance's
// attributes under the event's simple name, the same way §4.7 triggers
// bind the subject instance.
type Workflow struct {
	Module     string
	Name       string
	EventEntry string // the event (or entity, for before/after triggers) that invokes this workflow
	Body       []Statement
}

func (w *Workflow) FQName() string { return w.Module + "/" + w.Name }

// Agent is an LLM-backed handler definition (spec.md §4.10).
type Agent struct {
	Module      string
	Name        string
	Role        string
	Instruction string
	LLM         string
	Tools       []string
	Flows       []string
	Scenarios   []string
	Directives  []string
	Glossary    map[string]string
}

func (a *Agent) FQName() string { return a.Module + "/" + a.Name }

// RBACRule is one `(roles, allow, where?)` triple (spec.md §4.8). Where
// holds the predicate's source text, compiled and run through
// internal/expr with `this` bound to the candidate instance and `auth.user`
// set to the active user id — the same free-form scripting internal/expr
// gives @expr attributes, rather than the constrained pattern-language
// Expr tree.
type RBACRule struct {
	Roles []string // "*" denotes the implicit universal role
	Allow []Op
	Where string
}

// Op is one of the four RBAC-gated operations.
type Op string

const (
	OpCreate Op = "create"
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Trigger describes a `@before`/`@after` entity meta entry (spec.md §4.7).
type Trigger struct {
	When     TriggerWhen
	Op       Op
	Workflow string // fully-qualified workflow name
}

// TriggerWhen is "before" or "after".
type TriggerWhen string

const (
	Before TriggerWhen = "before"
	After  TriggerWhen = "after"
)
