// Package k8s provides the Kubernetes evidence provider (§4.5): pod state,
// events, and owner-chain/rollout lookups backing the k8s evidence slot and
// the k8s.* chat tools.
//
// The interface is split the way the teacher splits its remediation client:
// BasicClient wraps single-object clientset calls, AdvancedClient composes
// several of them into one evidence-shaped answer, and Client embeds both.
package k8s

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sreagent/investigator/internal/config"
)

// BasicClient wraps single-object Kubernetes API reads.
type BasicClient interface {
	GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error)
	ListPodsWithLabel(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error)
	GetEvents(ctx context.Context, namespace, resourceKind, resourceName string, limit int64) ([]corev1.Event, error)
	GetOwner(ctx context.Context, namespace, kind, name string) (*unstructuredOwner, error)
	IsHealthy() bool
}

// AdvancedClient composes BasicClient calls into evidence-shaped answers.
type AdvancedClient interface {
	GetOwnerChain(ctx context.Context, namespace, podName string) (map[string]interface{}, error)
	GetRolloutStatus(ctx context.Context, namespace, kind, name string) (map[string]interface{}, error)
	GetPreviousContainerLogs(ctx context.Context, namespace, podName, container string, limit int64) ([]string, error)
}

// Client is the full provider surface consumed by collectors and chat tools.
type Client interface {
	BasicClient
	AdvancedClient
}

type client struct {
	*basicClient
	*advancedClient
}

// NewClient builds a Client, resolving cluster connectivity the same way as
// in-cluster services: rest.InClusterConfig() first, falling back to the
// configured (or default) kubeconfig file.
func NewClient(cfg config.K8sConfig, log *logrus.Logger) (Client, error) {
	if log == nil {
		log = logrus.New()
	}

	restConfig, err := resolveRestConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	// The typed clientset above covers every built-in kind GetOwner resolves
	// directly. dyn backs the CRD fallback (Argo Rollouts and similar
	// progressive-delivery controllers, per the chat runtime's
	// AllowArgoCDRead scope) where no generated typed client exists.
	dyn, err := crclient.New(restConfig, crclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller-runtime client: %w", err)
	}

	basic := &basicClient{clientset: clientset, dyn: dyn, log: log.WithField("component", "k8s_client")}
	advanced := &advancedClient{basicClient: basic}
	return &client{basicClient: basic, advancedClient: advanced}, nil
}

func resolveRestConfig(cfg config.K8sConfig) (*rest.Config, error) {
	if cfg.InCluster {
		if restConfig, err := rest.InClusterConfig(); err == nil {
			return restConfig, nil
		}
	}

	kubeconfig := cfg.Kubeconfig
	if kubeconfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
		&clientcmd.ConfigOverrides{CurrentContext: cfg.Context},
	).ClientConfig()
}
