package pipeline

import (
	"time"

	"github.com/sreagent/investigator/pkg/core"
)

// recentCommitWindow bounds how far back a commit can sit before the
// incident start and still count as a plausible trigger (§4.1 step 9).
const recentCommitWindow = 24 * time.Hour

// analyzeChanges flags a recent deploy/commit that may correlate with the
// incident (§4.1 step 9), run only when the target resolves to a concrete
// pod. It inspects whatever GitHub/rollout evidence step 8 already
// collected; it never performs its own I/O.
func analyzeChanges(inv *core.Investigation) {
	var changes core.ChangeAnalysis

	anchor := inv.TimeWindow.EndTime
	if startedAt, ok := inv.Alert.ParseStartsAt(); ok {
		anchor = startedAt
	}

	for _, commit := range inv.Evidence.GitHub.RecentCommits {
		commitTime, ok := commit["date"].(time.Time)
		if !ok {
			continue
		}
		if commitTime.After(anchor) || anchor.Sub(commitTime) > recentCommitWindow {
			continue
		}
		changes.RecentDeploy = true
		changes.DeployedAt = commitTime.Format(time.RFC3339)
		if sha, ok := commit["sha"].(string); ok {
			changes.CommitSHA = sha
		}
		changes.Reasons = append(changes.Reasons, "commit_within_24h_of_incident")
		break
	}

	if rs := inv.Evidence.K8s.RolloutStatus; rs != nil {
		generation, genOK := toInt64(rs["generation"])
		observed, obsOK := toInt64(rs["observed_generation"])
		if genOK && obsOK && generation != observed {
			changes.RecentDeploy = true
			changes.Reasons = append(changes.Reasons, "rollout_generation_mismatch")
		}
	}

	inv.Analysis.Changes = changes
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
