package collectors

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
)

// NonPodBaseline is the fallback playbook for targets that never resolve to
// a pod (service/node/cluster scoped alerts, §4.1 step 6). It delegates to
// the HTTP 5xx signal module, the only evidence gathering that makes sense
// without a concrete pod identity.
func NonPodBaseline(ctx context.Context, inv *core.Investigation, deps Deps) error {
	return HTTP5xx(ctx, inv, deps)
}
