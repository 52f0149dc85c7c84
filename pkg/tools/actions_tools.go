package tools

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action is one proposed (never auto-executed) remediation action.
type Action struct {
	ActionID   string    `json:"action_id"`
	CaseID     string    `json:"case_id"`
	ActionType string    `json:"action_type"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
	ProposedAt time.Time `json:"proposed_at"`
}

// ActionLedger is the in-memory, per-case action counter backing
// actions.list/actions.propose (§4.4). Real persistence is an external
// collaborator per spec §1 Non-goals; this tracks only what's needed to
// enforce ActionPolicy.MaxActionsPerCase within one process's lifetime.
type ActionLedger struct {
	mu      sync.Mutex
	actions []Action
}

// NewActionLedger returns an empty ledger.
func NewActionLedger() *ActionLedger {
	return &ActionLedger{}
}

// List returns every action proposed for caseID, in proposal order.
func (l *ActionLedger) List(caseID string) []Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Action
	for _, a := range l.actions {
		if a.CaseID == caseID {
			out = append(out, a)
		}
	}
	return out
}

// Propose records a new action for caseID if the per-case cap isn't already
// reached (the action-type allowlist is checked by toolActionsPropose, not
// here); returns the new action and "" on
// success, or a zero Action and a stable error code on refusal.
func (l *ActionLedger) Propose(caseID, actionType string, detail map[string]interface{}, maxPerCase int) (Action, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, a := range l.actions {
		if a.CaseID == caseID {
			count++
		}
	}
	if maxPerCase > 0 && count >= maxPerCase {
		return Action{}, "case_action_limit_reached"
	}

	action := Action{
		ActionID:   uuid.New().String(),
		CaseID:     caseID,
		ActionType: actionType,
		Detail:     detail,
		ProposedAt: time.Now(),
	}
	l.actions = append(l.actions, action)
	return action, ""
}

func toolActionsList(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Actions == nil {
		return errResult("missing_required_args:case_id")
	}
	if req.CaseID == "" {
		return errResult("missing_required_args:case_id")
	}
	actions := deps.Actions.List(req.CaseID)
	items := make([]map[string]interface{}, 0, len(actions))
	for _, a := range actions {
		items = append(items, map[string]interface{}{
			"action_id":   a.ActionID,
			"action_type": a.ActionType,
			"detail":      a.Detail,
			"proposed_at": a.ProposedAt.Format(time.RFC3339),
		})
	}
	return okResult(map[string]interface{}{"case_id": req.CaseID, "actions": items})
}

func toolActionsPropose(ctx context.Context, req Request, deps Deps) ToolResult {
	if !req.ActionPolicy.Enabled {
		return errResult("tool_not_allowed")
	}
	if deps.Actions == nil {
		return errResult("missing_required_args:case_id")
	}
	if req.CaseID == "" {
		return errResult("missing_required_args:case_id")
	}
	actionType := argString(req.Args, "action_type", "")
	if actionType == "" {
		return errResult("missing_required_args:action_type")
	}
	if len(req.ActionPolicy.ActionTypeAllowlist) > 0 && !req.ActionPolicy.CheckActionType(actionType) {
		return errResult("tool_not_allowed")
	}
	if req.Investigation != nil {
		if len(req.ActionPolicy.NamespaceAllowlist) > 0 && req.Investigation.Target.Namespace != "" && !req.ActionPolicy.CheckNamespace(req.Investigation.Target.Namespace) {
			return errResult("namespace_not_allowed:" + req.Investigation.Target.Namespace)
		}
		if len(req.ActionPolicy.ClusterAllowlist) > 0 && req.Investigation.Target.Cluster != "" && !req.ActionPolicy.CheckCluster(req.Investigation.Target.Cluster) {
			return errResult("cluster_not_allowed:" + req.Investigation.Target.Cluster)
		}
	}

	detail, _ := req.Args["detail"].(map[string]interface{})
	action, errCode := deps.Actions.Propose(req.CaseID, actionType, detail, req.ActionPolicy.MaxActionsPerCase)
	if errCode != "" {
		return errResult(errCode)
	}
	return okResult(map[string]interface{}{"action_id": action.ActionID})
}
