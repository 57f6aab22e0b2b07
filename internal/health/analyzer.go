package health

import (
	"strings"

	"kvstore/internal/logs"
	"kvstore/internal/metrics"
)

// Analyzer converts metrics + logs into a health report.
type Analyzer struct {
	metrics *metrics.Metrics
	logger  *logs.Logger
	rules   []Rule
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(m *metrics.Metrics, logger *logs.Logger) *Analyzer {
	return &Analyzer{
		metrics: m,
		logger:  logger,
		rules: []Rule{
			HighMissRateRule,
			SweepBacklogRule,
		},
	}
}

// Analyze evaluates metrics and recent logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)

		// Escalate status
		if result.Severity == StatusCritical {
			status = StatusCritical
		} else if result.Severity == StatusDegraded && status == StatusOK {
			status = StatusDegraded
		}
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	panicCount := 0
	for _, entry := range a.logger.GetLast(100) {
		if entry.Level == logs.ERROR && strings.Contains(entry.Message, "panic") {
			panicCount++
		}
	}

	if panicCount > 0 {
		signals = append(signals,
			"Handler panics detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect stack traces and stabilize error handling",
		)
		status = StatusCritical
	}

	/* ---------- SUMMARY ---------- */

	summary := "Store is healthy"
	if status != StatusOK {
		summary = "Store health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
