package collectors

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/metrics"
)

// HTTP5xx derives an HTTP 5xx signal for non-pod targets (§4.1 step 9,
// "signal queries"), scoped by whichever identity label the target carries.
func HTTP5xx(ctx context.Context, inv *core.Investigation, deps Deps) error {
	if deps.Metrics == nil {
		inv.AddError("metrics", "unavailable")
		return nil
	}

	workload := inv.Target.Service
	if workload == "" {
		workload = inv.Target.WorkloadName
	}
	if workload == "" {
		workload = inv.Target.Job
	}
	if workload == "" {
		return nil
	}

	series, err := deps.Metrics.QueryRange(ctx, metrics.HTTP5xxQuery(inv.Target.Namespace, workload),
		inv.TimeWindow.StartTime, inv.TimeWindow.EndTime)
	if err != nil {
		inv.AddError("metrics", err.Error())
		return nil
	}
	inv.Evidence.Metrics.HTTP5xx = series
	return nil
}
