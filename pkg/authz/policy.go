// Package authz implements the chat/action policy model and the secret
// redaction applied to evidence and tool results (§4.4, §7). It is
// intentionally lightweight: admins drive it entirely through ChatPolicy and
// ActionPolicy values built from config, there is no separate rules engine.
package authz

// ChatPolicy gates which tools the investigation chat may call and what
// scopes/limits apply. Field set and names are fixed by the tool runtime
// contract; every capability flag except AllowArgoCDRead maps to a
// tool-prefix or tool name checked in pkg/tools. AllowArgoCDRead gates no
// tool there.
type ChatPolicy struct {
	Enabled bool

	AllowPromQL      bool
	AllowK8sRead     bool
	AllowK8sEvents   bool
	AllowLogsQuery   bool
	AllowAWSRead     bool
	AllowGitHubRead  bool
	AllowMemoryRead  bool
	AllowReportRerun bool
	AllowArgoCDRead  bool

	RedactSecrets bool

	NamespaceAllowlist   []string
	ClusterAllowlist     []string
	AWSRegionAllowlist   []string
	GitHubRepoAllowlist  []string

	MaxLogLines          int
	MaxPromQLSeries      int
	MaxTimeWindowSeconds int
	MaxSteps             int
	MaxToolCalls         int
}

// ActionPolicy gates whether and how remediation actions may be proposed.
type ActionPolicy struct {
	Enabled bool

	NamespaceAllowlist  []string
	ClusterAllowlist    []string
	ActionTypeAllowlist []string

	MaxActionsPerCase int
}

// allowed reports whether needle is in allowlist, treating a nil/empty
// allowlist as "no restriction" (P9: only enforced when set).
func allowed(allowlist []string, needle string) bool {
	if len(allowlist) == 0 {
		return true
	}
	if needle == "" {
		return true
	}
	for _, v := range allowlist {
		if v == needle {
			return true
		}
	}
	return false
}

// CheckNamespace enforces P9 for the chat policy's namespace allowlist.
func (p ChatPolicy) CheckNamespace(namespace string) bool {
	return allowed(p.NamespaceAllowlist, namespace)
}

// CheckCluster enforces P9 for the chat policy's cluster allowlist.
func (p ChatPolicy) CheckCluster(cluster string) bool {
	return allowed(p.ClusterAllowlist, cluster)
}

// CheckRegion enforces the AWS region allowlist for aws.* tools.
func (p ChatPolicy) CheckRegion(region string) bool {
	return allowed(p.AWSRegionAllowlist, region)
}

// CheckRepo enforces the GitHub repo allowlist for github.* tools.
func (p ChatPolicy) CheckRepo(repo string) bool {
	return allowed(p.GitHubRepoAllowlist, repo)
}

// CheckNamespace enforces the action policy's namespace allowlist.
func (p ActionPolicy) CheckNamespace(namespace string) bool {
	return allowed(p.NamespaceAllowlist, namespace)
}

// CheckCluster enforces the action policy's cluster allowlist.
func (p ActionPolicy) CheckCluster(cluster string) bool {
	return allowed(p.ClusterAllowlist, cluster)
}

// CheckActionType enforces the action-type allowlist (S-series action checks).
func (p ActionPolicy) CheckActionType(actionType string) bool {
	return allowed(p.ActionTypeAllowlist, actionType)
}
