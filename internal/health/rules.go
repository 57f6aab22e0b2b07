package health

import "kvstore/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]float64) RuleResult

// ---------- RULES ----------

// missRateThreshold is the miss ratio above which read traffic is considered
// unhealthy; below minGetsForMissRate the ratio is too noisy to judge.
const (
	missRateThreshold  = 0.9
	minGetsForMissRate = 100
)

// A read load that almost never finds a live entry usually means clients
// keep polling keys whose TTL already passed.
func HighMissRateRule(snapshot map[string]float64) RuleResult {
	gets := snapshot[metrics.GetsTotal]
	misses := snapshot[metrics.MissesTotal]

	if gets >= minGetsForMissRate && misses/gets > missRateThreshold {
		return RuleResult{
			Triggered:      true,
			Signal:         "Most reads find no live entry",
			Recommendation: "Check client TTLs and key naming; readers may be polling expired keys",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Sweeps that each remove a large batch of keys mean expired entries sit in
// memory for a long time between cycles.
func SweepBacklogRule(snapshot map[string]float64) RuleResult {
	runs := snapshot[metrics.SweepRunsTotal]
	removed := snapshot[metrics.SweepRemovedTotal]

	if runs > 0 && removed/runs > 1000 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Sweep cycles remove very large batches of expired keys",
			Recommendation: "Shorten the sweep interval to bound memory held by dead entries",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
