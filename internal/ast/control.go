package ast

// If is the block-structured conditional of spec.md §4.4 rule 7. The last
// statement of the taken branch is the If's result. Like any other
// statement it can carry an @as alias and @catch hints (spec.md §8
// scenario 6: `if (...) {...} else {...} @as r`), bound against the
// taken branch's result the same way evalDispatch binds every other
// statement kind.
type If struct {
	Cond  Expr
	Then  []Statement
	Else  []Statement // nil when there is no else branch; result is `false`
	Alias *Alias
	Hints *Hints
}

func (*If) statementNode() {}

// ForEach evaluates Source (must produce an array), binds Var in a child
// environment per element, and runs Body once per element, collecting
// results (spec.md §4.4 rule 6).
type ForEach struct {
	Var    string
	Source Expr
	Body   []Statement
	Alias  *Alias
	Hints  *Hints
}

func (*ForEach) statementNode() {}

// Return evaluates Inner, sets it as the environment's last result, and
// marks the environment return-pending; the enclosing workflow exits
// (spec.md §4.4 rule 8).
type Return struct {
	Inner Statement
	Alias *Alias
	Hints *Hints
}

func (*Return) statementNode() {}

// Suspend evaluates Inner and hands its value to the eval.Suspender
// installed on the context (internal/execgraph supplies them); with none
// installed the evaluator fails with a SuspensionRequested error carrying
// the partial result (spec.md §9 Open Question, SPEC_FULL.md §C).
type Suspend struct {
	Inner Statement
	Alias *Alias
	Hints *Hints
}

func (*Suspend) statementNode() {}

// AgentInvoke hands control to a named agent (spec.md §4.10): Args bind
// into the invocation the same way a CRUD pattern's set entries bind
// attributes. The evaluator does not call an LLM itself — it hands the
// resolved *Agent and these bound args to an internal/agent.Provider; if
// the provider returns generated statements, they run transactionally in
// the invoking environment (spec.md §4.9 "AGENT sub-graph" row) and the
// last one's value becomes this statement's result, same as EvalBody.
type AgentInvoke struct {
	Agent string
	Args  []AttrEntry
	Alias *Alias
	Hints *Hints
}

func (*AgentInvoke) statementNode() {}
