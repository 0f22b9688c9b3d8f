package resolver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/query"
)

// Postgres is a database/sql-backed Resolver storing every entity's rows
// in one generic table keyed by (module, entry, id), the schema-free
// analogue of the teacher's per-feature canonical_entities table (spec.md
// §4.3: a Resolver may be "a generic database table keyed by id").
type Postgres struct {
	db   *sql.DB
	txMu sync.Mutex
	tx   map[TxnID]*sql.Tx
}

// NewPostgres opens dsn via the pgx stdlib driver and ensures the backing
// table/indexes exist.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	p := &Postgres{db: db, tx: map[TxnID]*sql.Tx{}}
	if err := p.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

func (p *Postgres) ensureSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS agentlang_instances (
		module TEXT NOT NULL,
		entry TEXT NOT NULL,
		id TEXT NOT NULL,
		attrs JSONB NOT NULL DEFAULT '{}',
		path TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		deleted BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (module, entry, id)
	);

	CREATE INDEX IF NOT EXISTS idx_agentlang_instances_path
		ON agentlang_instances (module, entry, path);
	CREATE INDEX IF NOT EXISTS idx_agentlang_instances_attrs
		ON agentlang_instances USING gin (attrs);
	CREATE INDEX IF NOT EXISTS idx_agentlang_instances_tags
		ON agentlang_instances USING gin (tags);

	CREATE TABLE IF NOT EXISTS agentlang_links (
		module TEXT NOT NULL,
		relationship TEXT NOT NULL,
		a_id TEXT NOT NULL,
		b_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (module, relationship, a_id, b_id)
	);
	`
	_, err := p.db.Exec(schema)
	return err
}

func (p *Postgres) Name() string { return "postgres" }

// StartTransaction opens a *sql.Tx and hands the caller an opaque handle;
// Postgres is the only Resolver whose TxnID actually backs a live
// database transaction (spec.md §4.6 "only the root Environment commits
// or rolls back").
func (p *Postgres) StartTransaction(ctx context.Context) (TxnID, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", agerrors.NewResolverUnavailable(p.Name(), err)
	}
	id := TxnID(fmt.Sprintf("pg-%p", tx))
	p.txMu.Lock()
	p.tx[id] = tx
	p.txMu.Unlock()
	return id, nil
}

func (p *Postgres) CommitTransaction(ctx context.Context, txn TxnID) error {
	tx := p.takeTx(txn)
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

func (p *Postgres) RollbackTransaction(ctx context.Context, txn TxnID) error {
	tx := p.takeTx(txn)
	if tx == nil {
		return nil
	}
	return tx.Rollback()
}

func (p *Postgres) takeTx(txn TxnID) *sql.Tx {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	tx := p.tx[txn]
	delete(p.tx, txn)
	return tx
}

// execer abstracts over *sql.DB and *sql.Tx so every CRUD method can run
// inside whichever scope StartTransaction handed out.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) scope(txn TxnID) execer {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	if tx, ok := p.tx[txn]; ok {
		return tx
	}
	return p.db
}

func (p *Postgres) CreateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	idVal, _ := inst.Attributes.Get(model.SysID)
	id := fmt.Sprint(idVal)
	attrsJSON, err := json.Marshal(inst.Attributes.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	pathVal, _ := inst.Path()

	_, err = p.scope(txn).ExecContext(ctx, `
		INSERT INTO agentlang_instances (module, entry, id, attrs, path, tags, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, inst.Module, inst.Entry, id, attrsJSON, string(pathVal), pq.Array(stringTags(inst.Attributes.Map())))
	if isUniqueViolation(err) {
		return nil, agerrors.NewUniqueViolation(inst.FQName(), []string{model.SysID})
	}
	if err != nil {
		return nil, agerrors.NewResolverUnavailable(p.Name(), err)
	}
	return inst.Clone(), nil
}

func (p *Postgres) UpsertInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	idVal, _ := inst.Attributes.Get(model.SysID)
	id := fmt.Sprint(idVal)
	attrsJSON, err := json.Marshal(inst.Attributes.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	pathVal, _ := inst.Path()

	_, err = p.scope(txn).ExecContext(ctx, `
		INSERT INTO agentlang_instances (module, entry, id, attrs, path, tags, deleted, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NOW())
		ON CONFLICT (module, entry, id) DO UPDATE SET
			attrs = agentlang_instances.attrs || EXCLUDED.attrs,
			path = EXCLUDED.path,
			tags = EXCLUDED.tags,
			updated_at = NOW()
	`, inst.Module, inst.Entry, id, attrsJSON, string(pathVal), pq.Array(stringTags(inst.Attributes.Map())))
	if err != nil {
		return nil, agerrors.NewResolverUnavailable(p.Name(), err)
	}
	return p.getByID(ctx, txn, inst.Module, inst.Entry, id)
}

func (p *Postgres) UpdateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, newAttrs *model.Attrs) (*model.Instance, error) {
	rows, err := p.queryRows(ctx, txn, inst.Module, inst.Entry, false)
	if err != nil {
		return nil, err
	}
	patchJSON, err := json.Marshal(newAttrs.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}
	var first *model.Instance
	for _, existing := range rows {
		if !query.MatchesAll(existing.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		idVal, _ := existing.Attributes.Get(model.SysID)
		id := fmt.Sprint(idVal)
		merged := existing.Clone()
		merged.Attributes.Merge(newAttrs)
		_, err := p.scope(txn).ExecContext(ctx, `
			UPDATE agentlang_instances SET attrs = attrs || $1::jsonb, tags = $2, updated_at = NOW()
			WHERE module = $3 AND entry = $4 AND id = $5
		`, patchJSON, pq.Array(stringTags(merged.Attributes.Map())), inst.Module, inst.Entry, id)
		if err != nil {
			return nil, agerrors.NewResolverUnavailable(p.Name(), err)
		}
		merged, err = p.getByID(ctx, txn, inst.Module, inst.Entry, id)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = merged
		}
	}
	return first, nil
}

func (p *Postgres) QueryInstances(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, queryAll bool) ([]*model.Instance, error) {
	rows, err := p.queryRows(ctx, txn, inst.Module, inst.Entry, false)
	if err != nil {
		return nil, err
	}
	if queryAll {
		return rows, nil
	}
	var out []*model.Instance
	for _, r := range rows {
		if query.MatchesAll(r.Attributes, inst.QueryAttributes, inst.QueryOps) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *Postgres) QueryChildInstances(ctx context.Context, txn TxnID, auth AuthInfo, parentPath model.Path, inst *model.Instance) ([]*model.Instance, error) {
	rows, err := p.queryRows(ctx, txn, inst.Module, inst.Entry, false)
	if err != nil {
		return nil, err
	}
	var out []*model.Instance
	for _, r := range rows {
		rp, ok := r.Path()
		if !ok || !rp.HasPrefix(parentPath) {
			continue
		}
		if query.MatchesAll(r.Attributes, inst.QueryAttributes, inst.QueryOps) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *Postgres) QueryConnectedInstances(ctx context.Context, txn TxnID, auth AuthInfo, rel *model.Relationship, connected *model.Instance, inst *model.Instance) ([]*model.Instance, error) {
	rows, err := p.queryRows(ctx, txn, inst.Module, inst.Entry, false)
	if err != nil {
		return nil, err
	}
	connectedID, _ := connected.Attributes.Get(model.SysID)
	refCol := rel.RefColumn()
	var out []*model.Instance
	for _, r := range rows {
		ref, _ := r.Attributes.Get(refCol)
		if ref != connectedID {
			continue
		}
		if query.MatchesAll(r.Attributes, inst.QueryAttributes, inst.QueryOps) {
			out = append(out, r)
		}
	}
	return out, nil
}

// QueryByJoin is not implemented directly against SQL; internal/eval's
// in-process planner (join.go) reads each side's rows through
// QueryInstances and folds them, the same division of labor the Memory
// resolver uses.
func (p *Postgres) QueryByJoin(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, joins []JoinClause, into IntoSpec, distinct bool, where []WhereClause) ([]map[string]any, error) {
	return nil, agerrors.New(agerrors.JoinPlanningError, "Postgres resolver does not implement queryByJoin; see internal/eval/join.go for the in-process planner used instead")
}

func (p *Postgres) DeleteInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, purge bool) ([]*model.Instance, error) {
	rows, err := p.queryRows(ctx, txn, inst.Module, inst.Entry, false)
	if err != nil {
		return nil, err
	}
	var deleted []*model.Instance
	for _, r := range rows {
		if !query.MatchesAll(r.Attributes, inst.QueryAttributes, inst.QueryOps) {
			continue
		}
		idVal, _ := r.Attributes.Get(model.SysID)
		id := fmt.Sprint(idVal)
		if purge {
			_, err := p.scope(txn).ExecContext(ctx, `
				DELETE FROM agentlang_instances WHERE module = $1 AND entry = $2 AND id = $3
			`, inst.Module, inst.Entry, id)
			if err != nil {
				return nil, agerrors.NewResolverUnavailable(p.Name(), err)
			}
		} else {
			_, err := p.scope(txn).ExecContext(ctx, `
				UPDATE agentlang_instances SET deleted = true, updated_at = NOW()
				WHERE module = $1 AND entry = $2 AND id = $3
			`, inst.Module, inst.Entry, id)
			if err != nil {
				return nil, agerrors.NewResolverUnavailable(p.Name(), err)
			}
		}
		r.Attributes.Set(model.SysDeleted, true)
		deleted = append(deleted, r)
	}
	return deleted, nil
}

func (p *Postgres) ConnectInstances(ctx context.Context, txn TxnID, auth AuthInfo, a, b *model.Instance, rel *model.Relationship, orUpdate bool) (*model.Instance, error) {
	aID, _ := a.Attributes.Get(model.SysID)
	bID, _ := b.Attributes.Get(model.SysID)
	conflictClause := "DO NOTHING"
	if orUpdate {
		conflictClause = "DO UPDATE SET created_at = agentlang_links.created_at"
	}
	_, err := p.scope(txn).ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO agentlang_links (module, relationship, a_id, b_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (module, relationship, a_id, b_id) %s
	`, conflictClause), rel.Module, rel.Name, fmt.Sprint(aID), fmt.Sprint(bID))
	if !orUpdate && isUniqueViolation(err) {
		return nil, agerrors.New(agerrors.ConstraintViolation, "link already exists for "+rel.Name)
	}
	if err != nil {
		return nil, agerrors.NewResolverUnavailable(p.Name(), err)
	}
	return model.NewInstance(rel.Module, fmt.Sprintf("__link_%s", rel.Name), map[string]any{"a": aID, "b": bID}), nil
}

// FullTextSearch uses Postgres's to_tsvector/plainto_tsquery over the
// JSONB attrs column cast to text, the schema-free analogue of the
// teacher's pg_trgm name index (_keep/entity/postgres_registry.go).
func (p *Postgres) FullTextSearch(ctx context.Context, txn TxnID, auth AuthInfo, module, entry, searchText string, opts map[string]any) ([]*model.Instance, error) {
	if exact, _ := opts["exact"].(bool); exact {
		rows, err := p.scope(txn).QueryContext(ctx, `
			SELECT attrs FROM agentlang_instances
			WHERE module = $1 AND entry = $2 AND NOT deleted AND $3 = ANY(tags)
		`, module, entry, searchText)
		if err != nil {
			return nil, agerrors.New(agerrors.SearchUnavailable, err.Error())
		}
		defer rows.Close()
		return scanInstances(rows, module, entry)
	}

	rows, err := p.scope(txn).QueryContext(ctx, `
		SELECT attrs FROM agentlang_instances
		WHERE module = $1 AND entry = $2 AND NOT deleted
		AND to_tsvector('simple', attrs::text) @@ plainto_tsquery('simple', $3)
	`, module, entry, searchText)
	if err != nil {
		return nil, agerrors.New(agerrors.SearchUnavailable, err.Error())
	}
	defer rows.Close()
	return scanInstances(rows, module, entry)
}

// stringTags collects the top-level string attribute values, the
// Postgres analogue of the teacher's alias array (the aliases column in
// _keep/entity/postgres_registry.go), indexed separately from the JSONB
// blob for exact/array-membership search.
func stringTags(attrs map[string]any) []string {
	var tags []string
	for _, v := range attrs {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

func (p *Postgres) queryRows(ctx context.Context, txn TxnID, module, entry string, includeDeleted bool) ([]*model.Instance, error) {
	q := `SELECT attrs FROM agentlang_instances WHERE module = $1 AND entry = $2`
	if !includeDeleted {
		q += ` AND NOT deleted`
	}
	rows, err := p.scope(txn).QueryContext(ctx, q, module, entry)
	if err != nil {
		return nil, agerrors.NewResolverUnavailable(p.Name(), err)
	}
	defer rows.Close()
	return scanInstances(rows, module, entry)
}

func (p *Postgres) getByID(ctx context.Context, txn TxnID, module, entry, id string) (*model.Instance, error) {
	var attrsJSON []byte
	err := p.scope(txn).QueryRowContext(ctx, `
		SELECT attrs FROM agentlang_instances WHERE module = $1 AND entry = $2 AND id = $3
	`, module, entry, id).Scan(&attrsJSON)
	if err == sql.ErrNoRows {
		return nil, agerrors.NewNotFound(module+"/"+entry, id)
	}
	if err != nil {
		return nil, agerrors.NewResolverUnavailable(p.Name(), err)
	}
	var m map[string]any
	if err := json.Unmarshal(attrsJSON, &m); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return model.NewInstance(module, entry, m), nil
}

func scanInstances(rows *sql.Rows, module, entry string) ([]*model.Instance, error) {
	var out []*model.Instance
	for rows.Next() {
		var attrsJSON []byte
		if err := rows.Scan(&attrsJSON); err != nil {
			return nil, fmt.Errorf("scan attrs: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal(attrsJSON, &m); err != nil {
			return nil, fmt.Errorf("unmarshal attrs: %w", err)
		}
		out = append(out, model.NewInstance(module, entry, m))
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// pgx/stdlib surfaces a *pgconn.PgError; checking the textual SQLSTATE
	// avoids importing pgconn just for one error code comparison.
	return containsSQLState(err, "23505")
}

func containsSQLState(err error, code string) bool {
	type sqlStater interface{ SQLState() string }
	var s sqlStater
	for e := err; e != nil; {
		if ss, ok := e.(sqlStater); ok {
			s = ss
			break
		}
		unwrapper, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = unwrapper.Unwrap()
	}
	return s != nil && s.SQLState() == code
}

var _ Resolver = (*Postgres)(nil)
