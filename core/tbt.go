package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// getTBTImpact sums the blocking-time impact of script evaluation and
// parse/compile tasks. Any upstream failure is reported, logged and turned
// into an impact of 0 so the bootup measurement itself always completes.
func getTBTImpact(ctx context.Context, src contract.ArtifactSource, metric schema.MetricContext, reporter contract.FaultReporter) float64 {
	tasks, err := src.TBTImpactTasks(ctx, metric)
	if err != nil {
		fault := schema.Fault{
			Audit:    metric.AuditID,
			Level:    "error",
			Source:   src.ID(),
			Message:  err.Error(),
			Occurred: time.Now(),
		}
		if reporter != nil {
			reporter.Report(ctx, fault)
		}
		contract.LogError(fmt.Sprintf("TBT impact unavailable for %s", src.ID()), err)
		return 0
	}
	return sumScriptImpact(tasks)
}

// sumScriptImpact adds up the impact of tasks in the script groups.
func sumScriptImpact(tasks []schema.TBTImpactTask) float64 {
	var impact float64
	for _, t := range tasks {
		if t.Group.IsScript() {
			impact += t.SelfTBTImpact
		}
	}
	return impact
}

// newMetricContext builds what the blocking-impact computation needs.
func newMetricContext(cfg *contract.Config, src contract.ArtifactSource, settings schema.Settings) schema.MetricContext {
	return schema.MetricContext{
		Pass:     cfg.Pass,
		Settings: settings,
		PageURL:  src.PageURL(),
		AuditID:  schema.BootupAuditID,
	}
}
