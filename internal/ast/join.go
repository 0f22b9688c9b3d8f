package ast

// JoinKind is one of the join types spec.md §4.4 rule 4 and §6 list.
type JoinKind string

const (
	InnerJoin JoinKind = "inner_join"
	LeftJoin  JoinKind = "left_join"
	RightJoin JoinKind = "right_join"
	FullJoin  JoinKind = "full_join"
)

// JoinClause is one `@join|@left_join|... OtherEnt {attr? ref}` clause.
// Exactly one equality condition per clause (spec.md §4.4 rule 4).
type JoinClause struct {
	Kind       JoinKind
	Module     string
	Entry      string
	LocalAttr  string // attr on the accumulated join result
	RemoteAttr string // ref on OtherEnt
}

// AggFunc is an `@into` aggregate function.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggCount AggFunc = "count"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// IntoTerm is one `@into` projection term: either a plain aliased column
// reference, or an aggregate function over a column reference.
type IntoTerm struct {
	Alias string
	Ref   string
	Agg   AggFunc // empty when this is a plain column reference
}

// WhereTerm is one `@where { ref? value }` condition applied after the join
// (post-aggregation filter in aggregate queries, row filter otherwise).
type WhereTerm struct {
	Ref   string
	Value Expr
}

// JoinPattern is the compiled `@into`-hinted join/aggregation pattern
// (spec.md §4.4 rule 4): `{Src? {}, @join ..., @into {...}, @where {...},
// @groupBy(...), @orderBy(...) [@asc|@desc]}`. Keyword order is fixed at
// the source level; by the time this tree is built order no longer
// matters for evaluation.
type JoinPattern struct {
	Module string // source entity module
	Entry  string // source entity name
	Query  []AttrEntry

	Joins []JoinClause
	Into  []IntoTerm
	Where []WhereTerm

	GroupBy []string
	OrderBy []OrderTerm
	Distinct bool

	Alias *Alias
}

func (*JoinPattern) statementNode() {}
