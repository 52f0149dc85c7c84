package collectors

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
)

// OOMKilled is the oom_killed playbook, a sibling of Crashloop: the pod was
// killed by the kernel OOM killer (exit code 137 / reason OOMKilled), so the
// same crashloop evidence (previous logs, crash duration) is directly
// relevant to diagnosing it.
func OOMKilled(ctx context.Context, inv *core.Investigation, deps Deps) error {
	return Crashloop(ctx, inv, deps)
}
