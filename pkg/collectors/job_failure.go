package collectors

import (
	"context"
	"fmt"

	"github.com/sreagent/investigator/pkg/core"
)

// JobFailure resolves a failed Job's pod via the job-name label selector and
// runs the pod baseline against it (§4.1 "for Job alerts, pod resolution is
// deferred to collectors").
func JobFailure(ctx context.Context, inv *core.Investigation, deps Deps) error {
	if deps.K8s == nil {
		return fmt.Errorf("k8s:unavailable")
	}
	podName, err := resolvePodName(ctx, deps.K8s, inv)
	if err != nil {
		return fmt.Errorf("job_pod_resolution:%w", err)
	}
	if podName == "" {
		return fmt.Errorf("no_job_pod_found")
	}
	inv.Target.Pod = podName
	return PodBaseline(ctx, inv, deps)
}
