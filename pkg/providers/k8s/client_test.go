package k8s

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/fake"
	fakecrclient "sigs.k8s.io/controller-runtime/pkg/client/fake"
	sigsyaml "sigs.k8s.io/yaml"
	"github.com/sirupsen/logrus"
)

// rolloutFixtureYAML is the Argo Rollout fixture in the form an operator
// would actually author it, decoded with sigs.k8s.io/yaml the way
// controller-runtime fakes are normally seeded from manifests rather than
// built field-by-field with unstructured.SetNestedField.
const rolloutFixtureYAML = `
apiVersion: argoproj.io/v1alpha1
kind: Rollout
metadata:
  name: checkout
  namespace: prod
status:
  replicas: 4
  readyReplicas: 3
  phase: Progressing
`

func decodeRolloutFixture() *unstructured.Unstructured {
	var obj unstructured.Unstructured
	if err := sigsyaml.Unmarshal([]byte(rolloutFixtureYAML), &obj.Object); err != nil {
		panic(err)
	}
	return &obj
}

var _ = Describe("Client", func() {
	var (
		logger    *logrus.Logger
		clientset *fake.Clientset
		c         *client
		ctx       context.Context
	)

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetLevel(logrus.FatalLevel)
		ctx = context.Background()
	})

	Describe("interface compliance", func() {
		It("implements BasicClient, AdvancedClient, and Client", func() {
			basic := &basicClient{clientset: fake.NewSimpleClientset(), log: logger.WithField("component", "test")}
			advanced := &advancedClient{basicClient: basic}
			instance := &client{basicClient: basic, advancedClient: advanced}

			var b BasicClient = instance
			var a AdvancedClient = instance
			var full Client = instance
			Expect(b).NotTo(BeNil())
			Expect(a).NotTo(BeNil())
			Expect(full).NotTo(BeNil())
		})
	})

	Describe("pod reads", func() {
		BeforeEach(func() {
			clientset = fake.NewSimpleClientset(&corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "prod", Labels: map[string]string{"app": "web"}},
			})
			basic := &basicClient{clientset: clientset, log: logger.WithField("component", "test")}
			c = &client{basicClient: basic, advancedClient: &advancedClient{basicClient: basic}}
		})

		It("fetches a pod by name", func() {
			pod, err := c.GetPod(ctx, "prod", "web-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(pod.Name).To(Equal("web-1"))
			Expect(c.IsHealthy()).To(BeTrue())
		})

		It("returns an error for a missing pod and marks unhealthy", func() {
			_, err := c.GetPod(ctx, "prod", "missing")
			Expect(err).To(HaveOccurred())
			Expect(c.IsHealthy()).To(BeFalse())
		})

		It("lists pods by label selector", func() {
			pods, err := c.ListPodsWithLabel(ctx, "prod", "app=web")
			Expect(err).NotTo(HaveOccurred())
			Expect(pods).To(HaveLen(1))
		})
	})

	Describe("owner chain", func() {
		BeforeEach(func() {
			deployment := &appsv1.Deployment{
				ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "prod"},
				Status:     appsv1.DeploymentStatus{Replicas: 3, ReadyReplicas: 2},
			}
			replicaSet := &appsv1.ReplicaSet{
				ObjectMeta: metav1.ObjectMeta{
					Name:      "web-abc123",
					Namespace: "prod",
					OwnerReferences: []metav1.OwnerReference{
						{Kind: "Deployment", Name: "web"},
					},
				},
			}
			pod := &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{
					Name:      "web-abc123-xyz",
					Namespace: "prod",
					OwnerReferences: []metav1.OwnerReference{
						{Kind: "ReplicaSet", Name: "web-abc123"},
					},
				},
			}
			clientset = fake.NewSimpleClientset(deployment, replicaSet, pod)
			basic := &basicClient{clientset: clientset, log: logger.WithField("component", "test")}
			c = &client{basicClient: basic, advancedClient: &advancedClient{basicClient: basic}}
		})

		It("walks pod -> ReplicaSet -> Deployment", func() {
			result, err := c.GetOwnerChain(ctx, "prod", "web-abc123-xyz")
			Expect(err).NotTo(HaveOccurred())
			Expect(result["workload_kind"]).To(Equal("Deployment"))
			Expect(result["workload_name"]).To(Equal("web"))
			chain, ok := result["chain"].([]map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(chain).To(HaveLen(2))
		})

		It("reports rollout status trusted directly from the Deployment", func() {
			status, err := c.GetRolloutStatus(ctx, "prod", "Deployment", "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(status["ready_replicas"]).To(BeEquivalentTo(2))
			Expect(status["replicas"]).To(BeEquivalentTo(3))
		})
	})

	Describe("rollout owner fallback", func() {
		It("resolves an Argo Rollout via the dynamic client", func() {
			rollout := decodeRolloutFixture()

			dyn := fakecrclient.NewClientBuilder().WithRuntimeObjects(rollout).Build()
			basic := &basicClient{clientset: fake.NewSimpleClientset(), dyn: dyn, log: logger.WithField("component", "test")}
			c = &client{basicClient: basic, advancedClient: &advancedClient{basicClient: basic}}

			status, err := c.GetRolloutStatus(ctx, "prod", "Rollout", "checkout")
			Expect(err).NotTo(HaveOccurred())
			Expect(status["ready_replicas"]).To(BeEquivalentTo(3))
			Expect(status["phase"]).To(Equal("Progressing"))
		})
	})

	Describe("events", func() {
		It("lists events scoped to a resource", func() {
			clientset = fake.NewSimpleClientset(&corev1.Event{
				ObjectMeta:     metav1.ObjectMeta{Name: "evt-1", Namespace: "prod"},
				InvolvedObject: corev1.ObjectReference{Kind: "Pod", Name: "web-1", Namespace: "prod"},
				Reason:         "BackOff",
				Message:        "Back-off restarting failed container",
			})
			basic := &basicClient{clientset: clientset, log: logger.WithField("component", "test")}
			c = &client{basicClient: basic, advancedClient: &advancedClient{basicClient: basic}}

			events, err := c.GetEvents(ctx, "prod", "Pod", "web-1", 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Reason).To(Equal("BackOff"))
		})
	})
})
