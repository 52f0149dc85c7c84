package pipeline

import "github.com/sreagent/investigator/pkg/core"

// cpuThrottlingNearLimitRatio is the throttled/total CFS period ratio above
// which a container is considered to be running against its CPU limit.
const cpuThrottlingNearLimitRatio = 0.1

// memoryGrowthNearLimitRatio is the last/first working-set sample ratio
// above which memory usage is considered to be trending toward exhaustion;
// there is no limit evidence slot to compare against directly, so this
// looks at growth across the window instead of an absolute threshold.
const memoryGrowthNearLimitRatio = 1.5

// analyzeCapacity flags a pod trending toward resource exhaustion (§4.1
// step 9), run only when the target resolves to a concrete pod.
func analyzeCapacity(inv *core.Investigation) {
	var capacity core.CapacityAnalysis

	if maxSeriesValue(inv.Evidence.Metrics.CPUThrottling) >= cpuThrottlingNearLimitRatio {
		capacity.NearCPULimit = true
		capacity.Reasons = append(capacity.Reasons, "cpu_throttling_ratio_above_threshold")
	}
	if memoryGrewSignificantly(inv.Evidence.Metrics.MemoryUsage) {
		capacity.NearMemoryLimit = true
		capacity.Reasons = append(capacity.Reasons, "memory_usage_trending_up")
	}

	inv.Analysis.Capacity = capacity
}

func maxSeriesValue(series []core.Series) float64 {
	var max float64
	for _, s := range series {
		for _, sample := range s.Samples {
			if sample.Value > max {
				max = sample.Value
			}
		}
	}
	return max
}

func memoryGrewSignificantly(series []core.Series) bool {
	for _, s := range series {
		if len(s.Samples) < 2 {
			continue
		}
		first := s.Samples[0].Value
		last := s.Samples[len(s.Samples)-1].Value
		if first > 0 && last/first >= memoryGrowthNearLimitRatio {
			return true
		}
	}
	return false
}
