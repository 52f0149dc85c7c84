package k8s

import (
	"bufio"
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
)

// maxOwnerChainDepth bounds the walk in case of a malformed/cyclic owner graph.
const maxOwnerChainDepth = 6

type advancedClient struct {
	*basicClient
}

// GetOwnerChain walks pod.OwnerReferences up through ReplicaSet (if any) to
// the owning Deployment/StatefulSet/DaemonSet/Job, returning the chain plus
// the resolved top-level workload_kind/workload_name (§3 target promotion).
func (c *advancedClient) GetOwnerChain(ctx context.Context, namespace, podName string) (map[string]interface{}, error) {
	pod, err := c.GetPod(ctx, namespace, podName)
	if err != nil {
		return nil, err
	}

	chain := []map[string]interface{}{}
	refs := pod.OwnerReferences
	workloadKind, workloadName := "", ""
	var labels map[string]string

	for depth := 0; depth < maxOwnerChainDepth && len(refs) > 0; depth++ {
		ref := refs[0]
		owner, err := c.GetOwner(ctx, namespace, ref.Kind, ref.Name)
		if err != nil {
			chain = append(chain, map[string]interface{}{"kind": ref.Kind, "name": ref.Name, "error": err.Error()})
			break
		}
		chain = append(chain, map[string]interface{}{"kind": owner.Kind, "name": owner.Name})
		workloadKind, workloadName = owner.Kind, owner.Name
		labels = owner.Labels
		refs = owner.OwnerReferences
	}

	return map[string]interface{}{
		"chain":         chain,
		"workload_kind": workloadKind,
		"workload_name": workloadName,
		"labels":        labels,
	}, nil
}

// GetRolloutStatus fetches one workload's rollout descriptor directly,
// trusted over owner-chain inference per §3 promotion rules.
func (c *advancedClient) GetRolloutStatus(ctx context.Context, namespace, kind, name string) (map[string]interface{}, error) {
	owner, err := c.GetOwner(ctx, namespace, kind, name)
	if err != nil {
		return nil, err
	}
	if owner.Rollout == nil {
		return nil, fmt.Errorf("rollout status not available for kind %q", kind)
	}
	return owner.Rollout, nil
}

// GetPreviousContainerLogs streams the terminated container's previous log
// stream (crashloop collector's previous_container_logs slot, §4.2).
func (c *advancedClient) GetPreviousContainerLogs(ctx context.Context, namespace, podName, container string, limit int64) ([]string, error) {
	req := c.clientset.CoreV1().Pods(namespace).GetLogs(podName, &corev1.PodLogOptions{
		Container: container,
		Previous:  true,
		TailLines: &limit,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("get previous logs %s/%s[%s]: %w", namespace, podName, container, err)
	}
	defer stream.Close()

	var lines []string
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, nil
}
