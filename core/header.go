package core

import (
	"fmt"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// logAuditHeader prints a concise, 2-line header for each audited bundle.
func logAuditHeader(cfg *contract.Config, src contract.ArtifactSource, settings schema.Settings) {
	if cfg.UseEmojis {
		fmt.Printf("🔎 Bundle: %s (Page: %s)\n", src.ID(), src.PageURL())
		fmt.Printf("⚙️  Throttling: %s (x%.1f, threshold: %.0f ms)\n", settings.ThrottlingMethod, settings.Multiplier(), cfg.Options.ThresholdMs)
		return
	}
	fmt.Printf("Bundle: %s (Page: %s)\n", src.ID(), src.PageURL())
	fmt.Printf("Throttling: %s (x%.1f, threshold: %.0f ms)\n", settings.ThrottlingMethod, settings.Multiplier(), cfg.Options.ThresholdMs)
}

// logCompareHeader prints a header for comparison runs.
func logCompareHeader(cfg *contract.Config, base, target string) {
	if cfg.UseEmojis {
		fmt.Printf("📊 Comparing: %s ↔ %s\n", base, target)
		return
	}
	fmt.Printf("Comparing: %s <-> %s\n", base, target)
}

// logBatchHeader prints a header for multi-bundle audits.
func logBatchHeader(cfg *contract.Config, count int) {
	if cfg.UseEmojis {
		fmt.Printf("📦 Auditing %d bundles with %d workers\n", count, cfg.Workers)
		return
	}
	fmt.Printf("Auditing %d bundles with %d workers\n", count, cfg.Workers)
}
