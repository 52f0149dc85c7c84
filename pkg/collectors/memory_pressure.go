package collectors

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
)

// MemoryPressure is the memory_pressure playbook: the pod baseline gather
// plus the memory-specific metric series already carried by PodBaseline's
// evidence.metrics.memory_usage slot. It exists as its own named collector
// so the registry can select it by family; it gathers exactly what
// PodBaseline gathers and returns PodBaseline's result.
func MemoryPressure(ctx context.Context, inv *core.Investigation, deps Deps) error {
	return PodBaseline(ctx, inv, deps)
}
