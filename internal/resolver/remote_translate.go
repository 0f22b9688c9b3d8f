package resolver

import (
	"encoding/json"

	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/resolverpb"
)

// This file translates between the in-process types used throughout
// internal/resolver and their resolverpb wire forms. model.Instance carries
// dynamically-typed attributes, so Attributes/QueryAttributes/QueryOps cross
// the wire as JSON blobs rather than fixed message fields.

func authToMsg(a AuthInfo) *resolverpb.AuthInfoMsg {
	return &resolverpb.AuthInfoMsg{
		UserId:        a.UserID,
		ReadForUpdate: a.ReadForUpdate,
		ReadForDelete: a.ReadForDelete,
	}
}

func msgToAuth(m *resolverpb.AuthInfoMsg) AuthInfo {
	if m == nil {
		return AuthInfo{}
	}
	return AuthInfo{UserID: m.UserId, ReadForUpdate: m.ReadForUpdate, ReadForDelete: m.ReadForDelete}
}

func instanceToMsg(inst *model.Instance) *resolverpb.InstanceMsg {
	if inst == nil {
		return nil
	}
	msg := &resolverpb.InstanceMsg{
		Module:      inst.Module,
		Entry:       inst.Entry,
		QueryAll:    inst.QueryAll,
		AuthContext: inst.AuthContext,
	}
	if inst.Attributes != nil {
		if b, err := json.Marshal(inst.Attributes.Map()); err == nil {
			msg.AttrsJson = b
		}
	}
	if inst.QueryAttributes != nil && inst.QueryAttributes.Len() > 0 {
		if b, err := json.Marshal(inst.QueryAttributes.Map()); err == nil {
			msg.QueryAttrsJson = b
		}
	}
	if len(inst.QueryOps) > 0 {
		if b, err := json.Marshal(inst.QueryOps); err == nil {
			msg.QueryOpsJson = b
		}
	}
	return msg
}

func msgToInstance(msg *resolverpb.InstanceMsg) (*model.Instance, error) {
	if msg == nil {
		return nil, nil
	}
	inst := &model.Instance{
		Module:      msg.Module,
		Entry:       msg.Entry,
		Attributes:  model.EmptyAttrs(),
		QueryAll:    msg.QueryAll,
		AuthContext: msg.AuthContext,
	}
	if len(msg.AttrsJson) > 0 {
		var m map[string]any
		if err := json.Unmarshal(msg.AttrsJson, &m); err != nil {
			return nil, err
		}
		inst.Attributes = model.NewAttrs(m)
	}
	if len(msg.QueryAttrsJson) > 0 {
		var m map[string]any
		if err := json.Unmarshal(msg.QueryAttrsJson, &m); err != nil {
			return nil, err
		}
		inst.QueryAttributes = model.NewAttrs(m)
	}
	if len(msg.QueryOpsJson) > 0 {
		var ops map[string]model.QueryOp
		if err := json.Unmarshal(msg.QueryOpsJson, &ops); err != nil {
			return nil, err
		}
		inst.QueryOps = ops
	}
	return inst, nil
}

func msgsToInstances(msgs []*resolverpb.InstanceMsg) ([]*model.Instance, error) {
	out := make([]*model.Instance, 0, len(msgs))
	for _, m := range msgs {
		inst, err := msgToInstance(m)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func relToMsg(rel *model.Relationship) *resolverpb.RelationshipMsg {
	if rel == nil {
		return nil
	}
	return &resolverpb.RelationshipMsg{
		Module:      rel.Module,
		Name:        rel.Name,
		Kind:        string(rel.Kind),
		From:        rel.From,
		To:          rel.To,
		Cardinality: string(rel.Cardinality),
	}
}

func msgToRel(msg *resolverpb.RelationshipMsg) *model.Relationship {
	if msg == nil {
		return nil
	}
	return &model.Relationship{
		Module:      msg.Module,
		Name:        msg.Name,
		Kind:        model.RelKind(msg.Kind),
		From:        msg.From,
		To:          msg.To,
		Cardinality: model.Cardinality(msg.Cardinality),
	}
}

func joinsToMsg(joins []JoinClause) []*resolverpb.JoinClauseMsg {
	out := make([]*resolverpb.JoinClauseMsg, 0, len(joins))
	for _, j := range joins {
		out = append(out, &resolverpb.JoinClauseMsg{
			Kind:       j.Kind,
			Module:     j.Module,
			Entry:      j.Entry,
			LocalAttr:  j.LocalAttr,
			RemoteAttr: j.RemoteAttr,
		})
	}
	return out
}

func msgToJoins(msgs []*resolverpb.JoinClauseMsg) []JoinClause {
	out := make([]JoinClause, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, JoinClause{Kind: m.Kind, Module: m.Module, Entry: m.Entry, LocalAttr: m.LocalAttr, RemoteAttr: m.RemoteAttr})
	}
	return out
}

func intoToMsg(into IntoSpec) *resolverpb.IntoSpecMsg {
	msg := &resolverpb.IntoSpecMsg{GroupBy: into.GroupBy}
	for _, t := range into.Terms {
		msg.Terms = append(msg.Terms, &resolverpb.IntoTermMsg{Alias: t.Alias, Ref: t.Ref, Agg: t.Agg})
	}
	for _, o := range into.OrderBy {
		msg.OrderBy = append(msg.OrderBy, &resolverpb.OrderTermMsg{Ref: o.Ref, Desc: o.Desc})
	}
	return msg
}

func msgToInto(msg *resolverpb.IntoSpecMsg) IntoSpec {
	if msg == nil {
		return IntoSpec{}
	}
	into := IntoSpec{GroupBy: msg.GroupBy}
	for _, t := range msg.Terms {
		into.Terms = append(into.Terms, IntoTerm{Alias: t.Alias, Ref: t.Ref, Agg: t.Agg})
	}
	for _, o := range msg.OrderBy {
		into.OrderBy = append(into.OrderBy, OrderTerm{Ref: o.Ref, Desc: o.Desc})
	}
	return into
}

func instancesToMsgs(insts []*model.Instance) []*resolverpb.InstanceMsg {
	out := make([]*resolverpb.InstanceMsg, 0, len(insts))
	for _, i := range insts {
		out = append(out, instanceToMsg(i))
	}
	return out
}

func parentPathOf(s string) model.Path { return model.Path(s) }

func decodeAttrsJSON(b []byte) (*model.Attrs, error) {
	if len(b) == 0 {
		return model.EmptyAttrs(), nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return model.NewAttrs(m), nil
}

func decodeOptsJSON(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeRowsJSON(rows []map[string]any) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	return json.Marshal(rows)
}

func msgToWhere(msgs []*resolverpb.WhereClauseMsg) ([]WhereClause, error) {
	out := make([]WhereClause, 0, len(msgs))
	for _, m := range msgs {
		var v any
		if len(m.ValueJson) > 0 {
			if err := json.Unmarshal(m.ValueJson, &v); err != nil {
				return nil, err
			}
		}
		out = append(out, WhereClause{Ref: m.Ref, Value: v})
	}
	return out, nil
}
