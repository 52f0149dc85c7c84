package k8s

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// rolloutGVK is the Argo Rollouts CRD GetOwner falls back to for workload
// kinds the typed clientset doesn't carry a generated client for.
var rolloutGVK = schema.GroupVersionKind{Group: "argoproj.io", Version: "v1alpha1", Kind: "Rollout"}

type basicClient struct {
	clientset kubernetes.Interface
	dyn       crclient.Client
	log       *logrus.Entry
	healthy   bool
}

// unstructuredOwner normalizes the handful of workload kinds the owner-chain
// walk cares about (Deployment/ReplicaSet/StatefulSet/DaemonSet/Job) behind
// one shape, so AdvancedClient doesn't need a type switch per caller.
type unstructuredOwner struct {
	Kind            string
	Name            string
	Labels          map[string]string
	OwnerReferences []metav1.OwnerReference
	Rollout         map[string]interface{}
}

func (c *basicClient) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error) {
	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	c.recordHealth(err)
	if err != nil {
		return nil, fmt.Errorf("get pod %s/%s: %w", namespace, name, err)
	}
	return pod, nil
}

func (c *basicClient) ListPodsWithLabel(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error) {
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	c.recordHealth(err)
	if err != nil {
		return nil, fmt.Errorf("list pods %s[%s]: %w", namespace, labelSelector, err)
	}
	return list.Items, nil
}

func (c *basicClient) GetEvents(ctx context.Context, namespace, resourceKind, resourceName string, limit int64) ([]corev1.Event, error) {
	var fieldSelector string
	if resourceName != "" {
		fieldSelector = fmt.Sprintf("involvedObject.name=%s", resourceName)
		if resourceKind != "" {
			fieldSelector += fmt.Sprintf(",involvedObject.kind=%s", resourceKind)
		}
	}
	list, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
		FieldSelector: fieldSelector,
		Limit:         limit,
	})
	c.recordHealth(err)
	if err != nil {
		return nil, fmt.Errorf("list events %s/%s/%s: %w", namespace, resourceKind, resourceName, err)
	}
	return list.Items, nil
}

// GetOwner fetches one workload object by kind/name and normalizes it to the
// subset the owner-chain walk and rollout-status lookup need.
func (c *basicClient) GetOwner(ctx context.Context, namespace, kind, name string) (*unstructuredOwner, error) {
	switch kind {
	case "ReplicaSet":
		rs, err := c.clientset.AppsV1().ReplicaSets(namespace).Get(ctx, name, metav1.GetOptions{})
		c.recordHealth(err)
		if err != nil {
			return nil, err
		}
		return &unstructuredOwner{Kind: kind, Name: rs.Name, Labels: rs.Labels, OwnerReferences: rs.OwnerReferences}, nil
	case "Deployment":
		d, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		c.recordHealth(err)
		if err != nil {
			return nil, err
		}
		return &unstructuredOwner{Kind: kind, Name: d.Name, Labels: d.Labels, Rollout: deploymentRollout(d)}, nil
	case "StatefulSet":
		ss, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		c.recordHealth(err)
		if err != nil {
			return nil, err
		}
		return &unstructuredOwner{Kind: kind, Name: ss.Name, Labels: ss.Labels, Rollout: statefulSetRollout(ss)}, nil
	case "DaemonSet":
		ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		c.recordHealth(err)
		if err != nil {
			return nil, err
		}
		return &unstructuredOwner{Kind: kind, Name: ds.Name, Labels: ds.Labels, Rollout: daemonSetRollout(ds)}, nil
	case "Job":
		job, err := c.clientset.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
		c.recordHealth(err)
		if err != nil {
			return nil, err
		}
		return &unstructuredOwner{Kind: kind, Name: job.Name, Labels: job.Labels, Rollout: jobRollout(job)}, nil
	case "Rollout":
		return c.getRollout(ctx, namespace, name)
	default:
		return nil, fmt.Errorf("unsupported owner kind %q", kind)
	}
}

// getRollout resolves an Argo Rollout via the dynamic client: no generated
// typed clientset exists for it, unlike the built-in workload kinds above.
func (c *basicClient) getRollout(ctx context.Context, namespace, name string) (*unstructuredOwner, error) {
	if c.dyn == nil {
		return nil, fmt.Errorf("dynamic client unavailable for kind %q", "Rollout")
	}

	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(rolloutGVK)
	err := c.dyn.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj)
	c.recordHealth(err)
	if err != nil {
		return nil, fmt.Errorf("get rollout %s/%s: %w", namespace, name, err)
	}

	return &unstructuredOwner{
		Kind:   "Rollout",
		Name:   obj.GetName(),
		Labels: obj.GetLabels(),
		Rollout: map[string]interface{}{
			"kind":             "Rollout",
			"name":             obj.GetName(),
			"replicas":         nestedInt64(obj, "status", "replicas"),
			"ready_replicas":   nestedInt64(obj, "status", "readyReplicas"),
			"updated_replicas": nestedInt64(obj, "status", "updatedReplicas"),
			"phase":            nestedString(obj, "status", "phase"),
			"current_step":     nestedInt64(obj, "status", "currentStepIndex"),
		},
	}, nil
}

func nestedInt64(obj *unstructured.Unstructured, fields ...string) int64 {
	v, found, err := unstructured.NestedInt64(obj.Object, fields...)
	if !found || err != nil {
		return 0
	}
	return v
}

func nestedString(obj *unstructured.Unstructured, fields ...string) string {
	v, found, err := unstructured.NestedString(obj.Object, fields...)
	if !found || err != nil {
		return ""
	}
	return v
}

func (c *basicClient) IsHealthy() bool { return c.healthy }

func (c *basicClient) recordHealth(err error) {
	c.healthy = err == nil
	if err != nil {
		c.log.WithError(err).Debug("k8s API call failed")
	}
}

func deploymentRollout(d *appsv1.Deployment) map[string]interface{} {
	return map[string]interface{}{
		"kind":                "Deployment",
		"name":                d.Name,
		"replicas":            d.Status.Replicas,
		"ready_replicas":      d.Status.ReadyReplicas,
		"updated_replicas":    d.Status.UpdatedReplicas,
		"unavailable_replicas": d.Status.UnavailableReplicas,
		"observed_generation": d.Status.ObservedGeneration,
		"generation":          d.Generation,
		"conditions":          deploymentConditions(d),
	}
}

func deploymentConditions(d *appsv1.Deployment) []map[string]string {
	out := make([]map[string]string, 0, len(d.Status.Conditions))
	for _, cond := range d.Status.Conditions {
		out = append(out, map[string]string{
			"type":    string(cond.Type),
			"status":  string(cond.Status),
			"reason":  cond.Reason,
			"message": cond.Message,
		})
	}
	return out
}

func statefulSetRollout(ss *appsv1.StatefulSet) map[string]interface{} {
	return map[string]interface{}{
		"kind":            "StatefulSet",
		"name":            ss.Name,
		"replicas":        ss.Status.Replicas,
		"ready_replicas":  ss.Status.ReadyReplicas,
		"updated_replicas": ss.Status.UpdatedReplicas,
		"current_revision": ss.Status.CurrentRevision,
		"update_revision":   ss.Status.UpdateRevision,
	}
}

func daemonSetRollout(ds *appsv1.DaemonSet) map[string]interface{} {
	return map[string]interface{}{
		"kind":                     "DaemonSet",
		"name":                     ds.Name,
		"desired_number_scheduled": ds.Status.DesiredNumberScheduled,
		"number_ready":             ds.Status.NumberReady,
		"number_unavailable":       ds.Status.NumberUnavailable,
		"updated_number_scheduled": ds.Status.UpdatedNumberScheduled,
	}
}

func jobRollout(job *batchv1.Job) map[string]interface{} {
	return map[string]interface{}{
		"kind":      "Job",
		"name":      job.Name,
		"active":    job.Status.Active,
		"succeeded": job.Status.Succeeded,
		"failed":    job.Status.Failed,
	}
}
